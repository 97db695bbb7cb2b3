// Package batch runs many queries from a script, one per line, with
// optional shared-writer merge semantics across the whole run.
package batch

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/pdnsq/dnsdbq/internal/backend"
	"github.com/pdnsq/dnsdbq/internal/ioengine"
	"github.com/pdnsq/dnsdbq/internal/planner"
	"github.com/pdnsq/dnsdbq/internal/sortbridge"
	"github.com/pdnsq/dnsdbq/internal/timefence"
	"github.com/pdnsq/dnsdbq/internal/writer"
)

// Framing selects how per-line output is demarcated.
type Framing int

const (
	FramingNone Framing = iota
	FramingOriginal
	FramingVerbose
)

// Options configures one batch run.
type Options struct {
	Defaults     Defaults
	Framing      Framing
	Merge        bool
	Verb         string // "lookup" or "summarize"
	MaxInFlight  int
	SortKeys     sortbridge.KeySet
	Cap          int
	NewPresenter func() (writer.Presenter, error)
}

// Validate rejects combinations forbidden at startup: merge requires
// original framing (or none) and is incompatible with verbose framing.
func (o Options) Validate() error {
	if o.Merge && o.Framing == FramingVerbose {
		return errors.New("batch: merge mode cannot be combined with verbose framing")
	}
	return nil
}

// Driver runs a batch script against one backend, sharing one I/O engine
// and writer chain with any other caller in the same invocation.
type Driver struct {
	opts   Options
	be     backend.Backend
	engine *ioengine.Engine
	chain  *writer.Chain
	out    io.Writer
	log    *zap.Logger
}

// New builds a Driver. out receives per-line output framing (records
// themselves go to each line's own presenter, which typically also
// targets out).
func New(opts Options, be backend.Backend, engine *ioengine.Engine, chain *writer.Chain, out io.Writer, log *zap.Logger) (*Driver, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{opts: opts, be: be, engine: engine, chain: chain, out: out, log: log}, nil
}

// Run reads lines from r and drives them to completion, returning the
// first I/O error encountered scanning the input (line-level query errors
// never abort the run).
func (d *Driver) Run(r io.Reader) error {
	fence := timefence.Fence{After: d.opts.Defaults.After, Before: d.opts.Defaults.Before, Complete: d.opts.Defaults.Complete}

	var merged *writer.Writer
	if d.opts.Merge {
		w, err := d.newWriter(fence)
		if err != nil {
			return fmt.Errorf("batch: starting merged writer: %w", err)
		}
		d.chain.Register(w)
		merged = w
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		d.runLine(lineNo, line, fence, merged)
	}

	if d.opts.Merge {
		d.engine.DrainUntil(0)
		if err := merged.Finish(); err != nil {
			d.log.Warn("merged writer finish failed", zap.Error(err))
		}
		d.chain.Fini(merged)
	}
	return scanner.Err()
}

func (d *Driver) runLine(lineNo int, line string, fence timefence.Fence, merged *writer.Writer) {
	if d.opts.Framing == FramingVerbose {
		fmt.Fprintf(d.out, "++ %s\n", line)
	}

	q, err := ParseLine(line, d.opts.Defaults)
	if err != nil {
		d.log.Error("batch line parse error", zap.Int("line", lineNo), zap.Error(err))
		if d.opts.Framing == FramingVerbose {
			fmt.Fprintf(d.out, "-- PARSE_ERROR (%s)\n", err)
		}
		return
	}

	w := merged
	if w == nil {
		nw, err := d.newWriter(fence)
		if err != nil {
			d.log.Error("batch line writer setup failed", zap.Int("line", lineNo), zap.Error(err))
			return
		}
		d.chain.Register(nw)
		w = nw
	}

	readers, err := planner.Plan(d.opts.Verb, q, d.be, w)
	if err != nil {
		d.log.Error("batch line planning failed", zap.Int("line", lineNo), zap.Error(err))
		if w != merged {
			d.chain.Fini(w)
		}
		if d.opts.Framing == FramingVerbose {
			fmt.Fprintf(d.out, "-- PLAN_ERROR (%s)\n", err)
		}
		return
	}
	for _, rd := range readers {
		if err := d.engine.Launch(rd); err != nil {
			d.log.Error("launching reader failed", zap.Int("line", lineNo), zap.Error(err))
		}
	}

	if d.opts.Merge {
		d.engine.DrainUntil(d.opts.MaxInFlight)
		return
	}

	d.engine.DrainUntil(0)
	if err := w.Finish(); err != nil {
		d.log.Warn("writer finish failed", zap.Int("line", lineNo), zap.Error(err))
	}
	label, message, ok := w.LatchedStatus()
	if !ok {
		label, message = "NOERROR", "no error"
	}
	switch d.opts.Framing {
	case FramingOriginal:
		fmt.Fprint(d.out, "--\n")
	case FramingVerbose:
		fmt.Fprintf(d.out, "-- %s (%s)\n", label, message)
	}
	d.chain.Fini(w)
}

func (d *Driver) newWriter(fence timefence.Fence) (*writer.Writer, error) {
	p, err := d.opts.NewPresenter()
	if err != nil {
		return nil, err
	}
	return writer.New(fence, d.opts.SortKeys, d.opts.Cap, p, d.log)
}
