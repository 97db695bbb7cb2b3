package reader

import "bytes"

// Deframer splits an incrementally-fed byte stream into newline-terminated
// records. Bytes after the last newline are retained until either the next
// Feed completes them or the caller inspects Stranded at end-of-stream.
type Deframer struct {
	buf []byte
}

// Feed appends chunk to the internal buffer and calls emit once per
// complete record found, in arrival order. emit must not retain the slice
// it is given past the call.
func (d *Deframer) Feed(chunk []byte, emit func(record []byte)) {
	d.buf = append(d.buf, chunk...)
	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			break
		}
		emit(d.buf[:i])
		d.buf = d.buf[i+1:]
	}
}

// Stranded returns whatever bytes remain unterminated by a trailing
// newline. Per the NDJSON deframing contract these are never parsed as a
// record; a caller observing a non-empty result at end-of-stream should log
// a warning and discard them.
func (d *Deframer) Stranded() []byte { return d.buf }
