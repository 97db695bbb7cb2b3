// Package reader owns one in-flight HTTP transaction against a backend and
// splits its body into NDJSON records as bytes arrive.
package reader

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

const maxErrorBody = 4096

// Auth attaches whichever credentials a backend requires and labels a
// non-2xx response; it is the subset of backend.Backend a Reader needs,
// kept local so this package never imports backend (which would otherwise
// need to import reader back for richer hooks, recreating the cyclic
// reader<->writer graph the original C source had).
type Auth interface {
	AttachAuth(req *http.Request)
	StatusLabel(resp *http.Response) string
}

// Sink receives the outcomes of one reader's transfer: successfully
// deframed records, a terminal non-2xx status (at most once), and
// diagnostic warnings for malformed or stranded input. Writer implements
// Sink; a Reader never imports the writer package.
type Sink interface {
	Record(record []byte)
	Status(label, message string)
	Warnf(format string, args ...any)
}

// Reader drives one HTTP GET and deframes its NDJSON body into sink.
type Reader struct {
	URL         string
	TraceID     string
	StatusCode  int // 0 until the response headers arrive
	RecordCount int
	BytesRead   int // total response-body bytes read, success or failure

	sink Sink
	auth Auth
}

// New creates a Reader for url, reporting to sink and authenticating with
// auth. A fresh request-trace id is minted for correlating backend-side
// logs with client diagnostics.
func New(url string, sink Sink, auth Auth) *Reader {
	return &Reader{URL: url, TraceID: uuid.NewString(), sink: sink, auth: auth}
}

// Run performs the transfer to completion. A non-nil error indicates a
// transport failure (DNS, connect, or other I/O error) the I/O engine
// should classify and report; a non-2xx HTTP response is not an error
// here — it is reported once to sink via Status and Run returns nil.
func (r *Reader) Run(ctx context.Context, client *http.Client) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return fmt.Errorf("reader: building request for %s: %w", r.URL, err)
	}
	req.Header.Set("X-Request-Id", r.TraceID)
	r.auth.AttachAuth(req)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	r.StatusCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		r.BytesRead += len(body)
		r.sink.Status(r.auth.StatusLabel(resp), firstLine(body))
		return nil
	}

	var d Deframer
	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			r.BytesRead += n
			d.Feed(buf[:n], func(record []byte) {
				if len(record) == 0 {
					return
				}
				r.RecordCount++
				r.sink.Record(append([]byte(nil), record...))
			})
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return readErr
		}
	}
	if stranded := d.Stranded(); len(stranded) > 0 {
		r.sink.Warnf("reader %s: discarding %d stranded byte(s) without a trailing newline", r.URL, len(stranded))
	}
	return nil
}

func firstLine(body []byte) string {
	for i, b := range body {
		if b == '\n' {
			return string(body[:i])
		}
	}
	return string(body)
}
