// Package stream transcodes the values of Kafka records from one topic into
// another.
package stream

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/birdayz/transcode/pkg/client"
	"github.com/birdayz/transcode/pkg/codec"
)

// Header keys attached to produced records.
const (
	HeaderScheme    = "transcode-scheme"
	HeaderDirection = "transcode-direction"
	HeaderError     = "transcode-error"
	HeaderErrorKind = "transcode-error-kind"
)

// Transcoder reads every record of Source, runs its value through the
// codec and writes the payload to Sink under the same key. Records that
// fail go to DeadLetter when set and are dropped otherwise.
type Transcoder struct {
	Client     *client.Client
	Source     string
	Sink       string
	DeadLetter string
	Scheme     codec.Scheme
	Direction  codec.Direction
	Logger     *zap.Logger

	processed atomic.Int64
	failed    atomic.Int64
}

// Stats is a snapshot of the transcoder counters.
type Stats struct {
	Processed int64
	Failed    int64
}

func (t *Transcoder) Stats() Stats {
	return Stats{Processed: t.processed.Load(), Failed: t.failed.Load()}
}

// ConsumerOpts returns the franz-go options the client passed to the
// Transcoder must be built with. An empty group consumes without committing.
func ConsumerOpts(source, group string, fromStart bool) []kgo.Opt {
	opts := []kgo.Opt{kgo.ConsumeTopics(source)}
	if group != "" {
		opts = append(opts, kgo.ConsumerGroup(group))
	}
	if fromStart {
		opts = append(opts, kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()))
	}
	return opts
}

func (t *Transcoder) logger() *zap.Logger {
	if t.Logger == nil {
		return zap.NewNop()
	}
	return t.Logger
}

// Validate checks the topic configuration.
func (t *Transcoder) Validate() error {
	switch {
	case t.Source == "":
		return errors.New("source topic is required")
	case t.Sink == "":
		return errors.New("sink topic is required")
	case t.Source == t.Sink:
		return fmt.Errorf("source and sink must differ, both are %q", t.Source)
	case t.DeadLetter != "" && (t.DeadLetter == t.Source || t.DeadLetter == t.Sink):
		return fmt.Errorf("dead letter topic %q must differ from source and sink", t.DeadLetter)
	case !t.Scheme.Valid():
		return fmt.Errorf("invalid scheme %v", t.Scheme)
	}
	return nil
}

// Run polls until ctx is cancelled or the client is closed. It returns nil
// on cancellation and an error only when producing fails.
func (t *Transcoder) Run(ctx context.Context) error {
	if err := t.Validate(); err != nil {
		return err
	}
	log := t.logger().With(
		zap.String("source", t.Source),
		zap.String("sink", t.Sink),
		zap.Stringer("scheme", t.Scheme),
		zap.Stringer("direction", t.Direction),
	)
	log.Info("transcoder started")

	for {
		fetches := t.Client.KGO.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			log.Info("transcoder stopped", zap.Int64("processed", t.processed.Load()), zap.Int64("failed", t.failed.Load()))
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			log.Warn("fetch error", zap.String("topic", topic), zap.Int32("partition", partition), zap.Error(err))
		})

		var out []*kgo.Record
		fetches.EachRecord(func(rec *kgo.Record) {
			if r := t.Transform(rec); r != nil {
				out = append(out, r)
			}
		})
		if len(out) == 0 {
			continue
		}
		if err := t.Client.KGO.ProduceSync(ctx, out...).FirstErr(); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("produce transcoded records: %w", err)
		}
	}
}

// Transform maps one consumed record to the record to produce, or nil when
// the record failed and there is no dead letter topic.
func (t *Transcoder) Transform(rec *kgo.Record) *kgo.Record {
	res, err := codec.Dispatch(string(rec.Value), t.Scheme, t.Direction)
	if err == nil {
		t.processed.Add(1)
		return &kgo.Record{
			Topic:   t.Sink,
			Key:     rec.Key,
			Value:   []byte(res.Payload),
			Headers: t.headers(rec.Headers),
		}
	}

	t.failed.Add(1)
	t.logger().Debug("record failed",
		zap.String("topic", rec.Topic),
		zap.Int32("partition", rec.Partition),
		zap.Int64("offset", rec.Offset),
		zap.Error(err))

	if t.DeadLetter == "" {
		return nil
	}
	headers := append(t.headers(rec.Headers),
		kgo.RecordHeader{Key: HeaderError, Value: []byte(err.Error())},
		kgo.RecordHeader{Key: HeaderErrorKind, Value: []byte(codec.KindOf(err).String())},
	)
	return &kgo.Record{
		Topic:   t.DeadLetter,
		Key:     rec.Key,
		Value:   rec.Value,
		Headers: headers,
	}
}

func (t *Transcoder) headers(in []kgo.RecordHeader) []kgo.RecordHeader {
	out := make([]kgo.RecordHeader, 0, len(in)+2)
	out = append(out, in...)
	return append(out,
		kgo.RecordHeader{Key: HeaderScheme, Value: []byte(t.Scheme.String())},
		kgo.RecordHeader{Key: HeaderDirection, Value: []byte(t.Direction.String())},
	)
}
