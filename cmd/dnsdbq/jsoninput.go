package main

import (
	"bufio"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/pdnsq/dnsdbq/internal/metrics"
	"github.com/pdnsq/dnsdbq/internal/timefence"
	"github.com/pdnsq/dnsdbq/internal/tstamp"
	"github.com/pdnsq/dnsdbq/internal/writer"
)

// runJSONInput implements -J: records are read directly from a file (or
// stdin, for "-") and fed straight into a writer, bypassing the backend
// adapter, query planner, and reader entirely. Time fencing, dedup sort,
// and presentation all still apply exactly as they would for a backend
// query, since they all live downstream of writer.Record.
func runJSONInput(o *opts, chain *writer.Chain, newPresenter func() (writer.Presenter, error),
	log *zap.Logger, mx *metrics.Metrics) error {

	fence, err := jsonInputFence(o)
	if err != nil {
		return fmt.Errorf("usage: %w", err)
	}
	ks, err := buildSortKeys(o.sortNormal, o.sortReverse, o.sortKeys)
	if err != nil {
		return fmt.Errorf("usage: %w", err)
	}
	p, err := newPresenter()
	if err != nil {
		return err
	}
	w, err := writer.New(fence, ks, o.outputLimit, p, log)
	if err != nil {
		return err
	}
	chain.Register(w)
	defer chain.Fini(w)

	in, closeIn, err := openJSONInput(o.jsonInput)
	if err != nil {
		return err
	}
	defer closeIn()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		record := make([]byte, len(line))
		copy(record, line)
		w.Record(record)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading json input: %w", err)
	}
	if err := w.Finish(); err != nil {
		log.Warn("writer finish failed", zap.Error(err))
	}
	mx.AddRecords(w.Count())
	return nil
}

func jsonInputFence(o *opts) (timefence.Fence, error) {
	var f timefence.Fence
	f.Complete = o.strict
	if o.after != "" {
		ts, err := tstamp.Parse(o.after)
		if err != nil {
			return f, fmt.Errorf("bad -A timestamp: %w", err)
		}
		f.After = ts
	}
	if o.before != "" {
		ts, err := tstamp.Parse(o.before)
		if err != nil {
			return f, fmt.Errorf("bad -B timestamp: %w", err)
		}
		f.Before = ts
	}
	return f, nil
}

func openJSONInput(path string) (*os.File, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening json input %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
