// Package batch runs many codec operations concurrently and returns their
// outcomes in input order.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/birdayz/transcode/pkg/codec"
)

// Request is one operation. Scheme and Direction are the textual
// identifiers accepted by codec.Run.
type Request struct {
	ID        string `json:"id"`
	Data      string `json:"data"`
	Scheme    string `json:"scheme"`
	Direction string `json:"direction"`
}

// Response pairs a request with its outcome. Exactly one of Result and Err
// is meaningful.
type Response struct {
	Request Request
	Result  codec.Result
	Err     error
}

// Runner dispatches requests on a bounded number of goroutines.
type Runner struct {
	Workers int
	Logger  *zap.Logger
}

// Run processes every request. Per-request failures are reported in the
// response; only cancellation of ctx stops the batch early, in which case
// unprocessed requests carry ctx.Err().
func (r *Runner) Run(ctx context.Context, reqs []Request) []Response {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	out := make([]Response, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, req := range reqs {
		if gctx.Err() != nil {
			out[i] = Response{Request: req, Err: gctx.Err()}
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				out[i] = Response{Request: req, Err: err}
				return nil
			}
			res, err := codec.Run(req.Data, req.Scheme, req.Direction)
			if err != nil {
				logger.Debug("request failed",
					zap.String("id", req.ID),
					zap.String("scheme", req.Scheme),
					zap.String("direction", req.Direction),
					zap.Error(err))
			}
			out[i] = Response{Request: req, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("batch finished", zap.Int("requests", len(reqs)), zap.Int("workers", workers))
	return out
}

// ParseRequests reads one JSON object per line. Blank lines are skipped.
// Missing scheme or direction fall back to the given defaults; a missing id
// gets a random UUID.
func ParseRequests(r io.Reader, defaultScheme, defaultDirection string) ([]Request, error) {
	var reqs []Request
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if !gjson.Valid(text) {
			return nil, fmt.Errorf("line %d: invalid JSON", line)
		}
		obj := gjson.Parse(text)
		if !obj.IsObject() {
			return nil, fmt.Errorf("line %d: expected a JSON object", line)
		}
		data := obj.Get("data")
		if !data.Exists() {
			return nil, fmt.Errorf("line %d: missing \"data\"", line)
		}

		req := Request{
			ID:        obj.Get("id").String(),
			Data:      data.String(),
			Scheme:    obj.Get("scheme").String(),
			Direction: obj.Get("direction").String(),
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		if req.Scheme == "" {
			req.Scheme = defaultScheme
		}
		if req.Direction == "" {
			req.Direction = defaultDirection
		}
		reqs = append(reqs, req)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read requests: %w", err)
	}
	return reqs, nil
}
