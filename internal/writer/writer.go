// Package writer is the sink for one logical query: it owns that query's
// readers, applies the time fence and (optionally) external sort/dedup to
// each record, and hands surviving records to a presenter.
package writer

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/pdnsq/dnsdbq/internal/collate"
	"github.com/pdnsq/dnsdbq/internal/reader"
	"github.com/pdnsq/dnsdbq/internal/sortbridge"
	"github.com/pdnsq/dnsdbq/internal/timefence"
	"github.com/pdnsq/dnsdbq/internal/tuple"
)

// Presenter renders one surviving raw JSON record. The concrete presenters
// in internal/present all satisfy this.
type Presenter interface {
	Present(record []byte) error
}

// Writer is the sink for one logical query. It satisfies reader.Sink, so
// every reader it owns reports records, status, and warnings back through
// the same three methods without either package importing the other's
// concrete type.
type Writer struct {
	mu sync.Mutex

	Fence     timefence.Fence
	SortKeys  sortbridge.KeySet
	Cap       int // 0 = unlimited; enforced in Record (unsorted) and in Finish (sorted)
	Present   Presenter
	Log       *zap.Logger
	SortPath  string // path to the sort(1) binary, default "sort"

	bridge *sortbridge.Bridge

	readers []*reader.Reader
	count   int

	statusOnce sync.Once
	status     string
	message    string
}

// New constructs a Writer. If ks is non-empty, the external sort process
// is spawned immediately, per §4.6 ("the writer spawns an external sorting
// process at construction time").
func New(fence timefence.Fence, ks sortbridge.KeySet, cap int, present Presenter, log *zap.Logger) (*Writer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Writer{
		Fence:    fence,
		SortKeys: ks.AutoFill(),
		Cap:      cap,
		Present:  present,
		Log:      log,
		SortPath: "sort",
	}
	if len(w.SortKeys) > 0 {
		path := w.SortPath
		if path == "" {
			path = "sort"
		}
		bridge, err := sortbridge.Start(path, w.SortKeys)
		if err != nil {
			return nil, fmt.Errorf("writer: starting sort bridge: %w", err)
		}
		w.bridge = bridge
	}
	return w, nil
}

// Sorted reports whether this writer routes records through external sort.
func (w *Writer) Sorted() bool { return w.bridge != nil }

// AddReader registers r as owned by w.
func (w *Writer) AddReader(r *reader.Reader) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.readers = append(w.readers, r)
}

// Readers returns the readers owned by w.
func (w *Writer) Readers() []*reader.Reader {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*reader.Reader(nil), w.readers...)
}

// LatchedStatus returns the first abnormal backend status latched for this
// writer, if any.
func (w *Writer) LatchedStatus() (label, message string, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status, w.message, w.status != ""
}

// Count returns the number of records handed to the presenter so far (the
// unsorted path only increments this as it happens; the sorted path
// increments it while draining Finish).
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Status implements reader.Sink. Only the first call latches; subsequent
// calls from other readers of the same writer are ignored, per the "once"
// flag in the data model.
func (w *Writer) Status(label, message string) {
	w.statusOnce.Do(func() {
		w.mu.Lock()
		w.status, w.message = label, message
		w.mu.Unlock()
		w.Log.Warn("backend status", zap.String("label", label), zap.String("message", message))
	})
}

// Warnf implements reader.Sink.
func (w *Writer) Warnf(format string, args ...any) {
	w.Log.Sugar().Warnf(format, args...)
}

// Record implements reader.Sink: the full per-record pipeline of §4.5.
func (w *Writer) Record(record []byte) {
	t, err := tuple.Parse(record)
	if err != nil {
		w.Log.Debug("dropping unparseable record", zap.Error(err))
		return
	}
	if t.Rdata.Skipped > 0 {
		w.Log.Warn("rdata array contained non-string elements",
			zap.Int("skipped", t.Rdata.Skipped), zap.String("rrname", t.RRName))
	}

	first, last := t.EffectiveInterval()
	if ok, reason := timefence.Accept(w.Fence, first, last); !ok {
		w.Log.Debug("dropping record outside time fence", zap.String("reason", reason))
		return
	}

	if w.bridge == nil {
		w.mu.Lock()
		capped := w.Cap > 0 && w.count >= w.Cap
		if !capped {
			w.count++
		}
		w.mu.Unlock()
		if capped {
			return
		}
		if err := w.Present.Present(record); err != nil {
			w.Log.Warn("presenter failed", zap.Error(err))
		}
		return
	}

	nameKey := "n/a"
	if w.SortKeys.NeedsName() {
		nameKey = collate.NameKey(t.RRName)
	}
	dataKey := "n/a"
	if w.SortKeys.NeedsData() {
		dataKey = collate.DataKeyForValues(t.RRType, t.Rdata.Values)
	}
	line := fmt.Sprintf("%d %d %d %s %s %s", first, last, t.Count, nameKey, dataKey, record)
	if err := w.bridge.Feed(line); err != nil {
		w.Log.Warn("feeding sort bridge failed", zap.Error(err))
	}
}

// Finish closes the sort bridge's input (if any) and drains its sorted
// output to the presenter, honoring Cap by cancelling the subprocess once
// the cap is reached and draining the remainder to EOF. It is a no-op for
// an unsorted writer.
func (w *Writer) Finish() error {
	if w.bridge == nil {
		return nil
	}
	if err := w.bridge.CloseInput(); err != nil {
		return fmt.Errorf("writer: closing sort bridge input: %w", err)
	}

	var presentErr error
	err := w.bridge.Lines(func(record []byte) {
		w.mu.Lock()
		capped := w.Cap > 0 && w.count >= w.Cap
		if !capped {
			w.count++
		}
		w.mu.Unlock()
		if capped {
			w.bridge.Cancel()
			return
		}
		if presentErr == nil {
			if err := w.Present.Present(record); err != nil {
				presentErr = err
			}
		}
	})
	if err != nil {
		return fmt.Errorf("writer: draining sort bridge output: %w", err)
	}

	cancelled, waitErr := w.bridge.Wait()
	if waitErr != nil && !cancelled {
		w.Log.Warn("sort process exited non-zero", zap.Error(waitErr))
	}
	return presentErr
}
