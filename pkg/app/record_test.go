package app

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/birdayz/transcode/pkg/codec"
)

func newTestApp(format OutputFormat) (*App, *bytes.Buffer, *bytes.Buffer) {
	a := New()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	a.OutWriter = out
	a.ErrWriter = errOut
	a.ColorableOut = out
	a.JSONFmt.DisabledColor = true
	a.Output = format
	return a, out, errOut
}

func encodedRecord(t *testing.T) Record {
	res, err := codec.Run("a b", "url", "encode")
	require.NoError(t, err)
	return NewRecord("1", "url", "encode", res, nil)
}

func TestWriteRecord_Default(t *testing.T) {
	a, out, _ := newTestApp(OutputFormatDefault)
	require.NoError(t, a.WriteRecord(encodedRecord(t)))
	require.Equal(t, "URL Encoded: a%20b\n", out.String())
}

func TestWriteRecord_Raw(t *testing.T) {
	a, out, _ := newTestApp(OutputFormatRaw)
	require.NoError(t, a.WriteRecord(encodedRecord(t)))
	require.Equal(t, "a%20b\n", out.String())
}

func TestWriteRecord_Hex(t *testing.T) {
	a, out, _ := newTestApp(OutputFormatHex)
	require.NoError(t, a.WriteRecord(encodedRecord(t)))
	require.Equal(t, "6125323062\n", out.String())
}

func TestWriteRecord_JSON(t *testing.T) {
	a, out, _ := newTestApp(OutputFormatJSON)
	require.NoError(t, a.WriteRecord(encodedRecord(t)))
	require.JSONEq(t, `{"id":"1","scheme":"url","direction":"encode","payload":"a%20b","display":"URL Encoded: a%20b"}`, out.String())
}

func TestWriteRecord_JSONEachRow(t *testing.T) {
	a, out, _ := newTestApp(OutputFormatJSONEachRow)
	require.NoError(t, a.WriteRecord(encodedRecord(t)))
	require.NoError(t, a.WriteRecord(encodedRecord(t)))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	require.Equal(t, "a%20b", rec.Payload)
}

func TestWriteRecord_MsgPack(t *testing.T) {
	a, out, _ := newTestApp(OutputFormatMsgPack)
	require.NoError(t, a.WriteRecord(encodedRecord(t)))

	var rec Record
	require.NoError(t, msgpack.Unmarshal(out.Bytes(), &rec))
	require.Equal(t, encodedRecord(t), rec)
}

func TestWriteRecord_ErrorGoesToStderr(t *testing.T) {
	a, out, errOut := newTestApp(OutputFormatDefault)
	_, err := codec.Run("abc", "integer", "encode")
	require.NoError(t, a.WriteRecord(NewRecord("", "integer", "encode", codec.Result{}, err)))
	require.Empty(t, out.String())
	require.Contains(t, errOut.String(), "Integer")
	require.Contains(t, errOut.String(), "invalid input")
}

func TestWriteRecord_ErrorInJSON(t *testing.T) {
	a, out, _ := newTestApp(OutputFormatJSONEachRow)
	_, err := codec.Run("x", "rot13", "encode")
	require.NoError(t, a.WriteRecord(NewRecord("", "rot13", "encode", codec.Result{}, err)))

	var rec Record
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	require.Equal(t, "rot13", rec.Scheme)
	require.NotNil(t, rec.Error)
	require.Equal(t, "unknown scheme", rec.Error.Kind)
}

func TestWriteRecord_Template(t *testing.T) {
	a, out, _ := newTestApp(OutputFormatDefault)
	tmpl, err := ParseTemplate(`{{ .Scheme | upper }}={{ .Payload | quote }}`)
	require.NoError(t, err)
	a.tmpl = tmpl

	require.NoError(t, a.WriteRecord(encodedRecord(t)))
	require.Equal(t, "URL=\"a%20b\"\n", out.String())
}

func TestParseTemplate_Invalid(t *testing.T) {
	_, err := ParseTemplate("{{ .Payload ")
	require.ErrorContains(t, err, "parse output template")
}

func TestOutputFormatSet(t *testing.T) {
	var f OutputFormat
	require.NoError(t, f.Set("msgpack"))
	require.Equal(t, OutputFormatMsgPack, f)
	require.Error(t, f.Set("xml"))

	var in InputFormat
	require.NoError(t, in.Set("lines"))
	require.Error(t, in.Set("csv"))
}

func TestReadItems(t *testing.T) {
	a := New()

	items, err := a.ReadItems([]string{"a", "b"}, InputFormatDefault)
	require.NoError(t, err)
	require.Equal(t, []string{"a b"}, items)

	a.InReader = strings.NewReader("one\ntwo\n")
	items, err = a.ReadItems(nil, InputFormatLines)
	require.NoError(t, err)
	require.Equal(t, []string{"one", "two"}, items)

	a.InReader = strings.NewReader("multi\nline\n")
	items, err = a.ReadItems(nil, InputFormatDefault)
	require.NoError(t, err)
	require.Equal(t, []string{"multi\nline"}, items)
}
