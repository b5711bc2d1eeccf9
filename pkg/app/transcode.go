package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/birdayz/transcode/pkg/batch"
)

// Requests turns the command input into batch requests. json-each-row
// input carries its own scheme and direction per line; the given ones are
// only defaults.
func (a *App) Requests(args []string, scheme, direction string, format InputFormat) ([]batch.Request, error) {
	if format == InputFormatJSONEachRow && len(args) == 0 {
		return batch.ParseRequests(a.InReader, scheme, direction)
	}

	items, err := a.ReadItems(args, format)
	if err != nil {
		return nil, err
	}
	reqs := make([]batch.Request, len(items))
	for i, item := range items {
		reqs[i] = batch.Request{Data: item, Scheme: scheme, Direction: direction}
		if format == InputFormatLines {
			reqs[i].ID = strconv.Itoa(i + 1)
		}
	}
	return reqs, nil
}

// Process runs reqs on the configured number of workers and writes one
// record per request, in input order. It fails if any request failed.
func (a *App) Process(ctx context.Context, reqs []batch.Request) error {
	runner := &batch.Runner{Workers: a.Cfg.Workers(), Logger: a.Logger}

	failed := 0
	for _, resp := range runner.Run(ctx, reqs) {
		if resp.Err != nil {
			failed++
		}
		rec := NewRecord(resp.Request.ID, resp.Request.Scheme, resp.Request.Direction, resp.Result, resp.Err)
		if err := a.WriteRecord(rec); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d operations failed", failed, len(reqs))
	}
	return nil
}
