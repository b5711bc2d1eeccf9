package app

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/birdayz/transcode/pkg/codec"
)

// Record is the printable form of one operation, successful or not.
type Record struct {
	ID        string       `json:"id,omitempty" msgpack:"id,omitempty"`
	Scheme    string       `json:"scheme" msgpack:"scheme"`
	Direction string       `json:"direction" msgpack:"direction"`
	Payload   string       `json:"payload" msgpack:"payload"`
	Display   string       `json:"display,omitempty" msgpack:"display,omitempty"`
	Error     *ErrorRecord `json:"error,omitempty" msgpack:"error,omitempty"`
}

type ErrorRecord struct {
	Kind    string `json:"kind" msgpack:"kind"`
	Message string `json:"message" msgpack:"message"`
}

// NewRecord builds a Record. scheme and direction are the names the caller
// asked for; they are kept even when they failed to parse.
func NewRecord(id, scheme, direction string, res codec.Result, err error) Record {
	rec := Record{ID: id, Scheme: scheme, Direction: direction}
	if err != nil {
		rec.Error = NewErrorRecord(err)
		return rec
	}
	rec.Scheme = res.Scheme.String()
	rec.Direction = res.Direction.String()
	rec.Payload = res.Payload
	rec.Display = res.String()
	return rec
}

func NewErrorRecord(err error) *ErrorRecord {
	kind := "error"
	if k := codec.KindOf(err); k != 0 {
		kind = k.String()
	}
	return &ErrorRecord{Kind: kind, Message: err.Error()}
}

// ParseTemplate compiles an output template with the sprig function map.
func ParseTemplate(text string) (*template.Template, error) {
	t, err := template.New("output").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse output template: %w", err)
	}
	return t, nil
}

// WriteRecord prints rec in the configured output format. Safe for
// concurrent use.
func (a *App) WriteRecord(rec Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tmpl != nil {
		var b strings.Builder
		if err := a.tmpl.Execute(&b, rec); err != nil {
			return fmt.Errorf("execute output template: %w", err)
		}
		_, err := fmt.Fprintln(a.OutWriter, b.String())
		return err
	}

	switch a.Output {
	case OutputFormatRaw:
		if rec.Error != nil {
			_, err := fmt.Fprintln(a.ErrWriter, rec.Error.Message)
			return err
		}
		_, err := fmt.Fprintln(a.OutWriter, rec.Payload)
		return err
	case OutputFormatHex:
		if rec.Error != nil {
			_, err := fmt.Fprintln(a.ErrWriter, rec.Error.Message)
			return err
		}
		_, err := fmt.Fprintln(a.OutWriter, hex.EncodeToString([]byte(rec.Payload)))
		return err
	case OutputFormatJSON:
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if pretty, err := a.JSONFmt.Format(b); err == nil {
			b = pretty
		}
		if _, err := a.ColorableOut.Write(b); err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.OutWriter)
		return err
	case OutputFormatJSONEachRow:
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		_, err = fmt.Fprintln(a.OutWriter, string(b))
		return err
	case OutputFormatMsgPack:
		b, err := msgpack.Marshal(&rec)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		_, err = a.OutWriter.Write(b)
		return err
	default:
		if rec.Error != nil {
			_, err := fmt.Fprintln(a.ErrWriter, rec.Error.Message)
			return err
		}
		_, err := fmt.Fprintln(a.OutWriter, rec.Display)
		return err
	}
}
