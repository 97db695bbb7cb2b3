// Package ioengine drives concurrent HTTP transfers for every reader the
// planner or batch driver launches, capping how many run at once and
// collecting terminal transport failures without aborting the rest.
package ioengine

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/pdnsq/dnsdbq/internal/metrics"
	"github.com/pdnsq/dnsdbq/internal/reader"
)

// backoff is the pause between DrainUntil polls when no transfer has
// completed yet, avoiding a busy loop.
const backoff = 100 * time.Millisecond

// Engine multiplexes readers under a fixed concurrency cap. The one true
// suspension point in the pipeline is DrainUntil; nothing else blocks on
// the network.
type Engine struct {
	sem    *semaphore.Weighted
	group  *errgroup.Group
	gctx   context.Context
	client *http.Client
	log    *zap.Logger
	mx     *metrics.Metrics

	mu       sync.Mutex
	inFlight int
	exitCode int
}

// New builds an Engine bounding concurrent transfers at maxInFlight. mx may
// be nil, in which case request/byte/error counters are simply not kept.
func New(ctx context.Context, client *http.Client, maxInFlight int64, log *zap.Logger, mx *metrics.Metrics) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	group, gctx := errgroup.WithContext(ctx)
	return &Engine{
		sem:    semaphore.NewWeighted(maxInFlight),
		group:  group,
		gctx:   gctx,
		client: client,
		log:    log,
		mx:     mx,
	}
}

// Launch acquires a concurrency slot (blocking if maxInFlight transfers are
// already running) and starts r's transfer in its own goroutine.
func (e *Engine) Launch(r *reader.Reader) error {
	if err := e.sem.Acquire(e.gctx, 1); err != nil {
		return err
	}
	e.mu.Lock()
	e.inFlight++
	e.mu.Unlock()

	e.group.Go(func() error {
		defer func() {
			e.sem.Release(1)
			e.mu.Lock()
			e.inFlight--
			e.mu.Unlock()
		}()
		start := time.Now()
		err := r.Run(e.gctx, e.client)
		if e.mx != nil {
			e.mx.ObserveRequest(time.Since(start))
			e.mx.AddBytes(int64(r.BytesRead))
		}
		if err != nil {
			e.reportTransportError(r, err)
		}
		// Transport errors are reported, not propagated: returning a
		// non-nil error here would cancel gctx and abort every other
		// in-flight reader, which §7's propagation rule forbids.
		return nil
	})
	return nil
}

// DrainUntil blocks until at most maxStillInFlight transfers remain
// active. Single-query runs call DrainUntil(0); merge-mode batch calls
// DrainUntil(J) after each added line and DrainUntil(0) once input ends.
//
// It polls rather than waiting on a condition variable, mirroring the
// original multiplexer's own fallback: a short sleep between checks avoids
// a busy loop without needing a wakeup channel threaded through Launch.
func (e *Engine) DrainUntil(maxStillInFlight int) {
	for {
		e.mu.Lock()
		n := e.inFlight
		e.mu.Unlock()
		if n <= maxStillInFlight {
			return
		}
		time.Sleep(backoff)
	}
}

// ExitCode returns 1 if any transport failure was observed, else 0, per
// §7's propagation rule that transport errors set the process exit code
// without aborting in-flight work.
func (e *Engine) ExitCode() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exitCode
}

func (e *Engine) reportTransportError(r *reader.Reader, err error) {
	e.mu.Lock()
	e.exitCode = 1
	e.mu.Unlock()
	if e.mx != nil {
		e.mx.AddTransportError()
	}
	e.log.Error(classifyTransportError(err), zap.String("url", r.URL), zap.Error(err))
}

// classifyTransportError sorts a transport failure into the three
// diagnostics the original CLI distinguishes: a DNS resolution failure, a
// connection failure, and everything else (timeouts, TLS errors, a
// cancelled context, and so on).
func classifyTransportError(err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "could not resolve host"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return "could not connect"
	}
	return "transport failure"
}
