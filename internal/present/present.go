// Package present renders surviving passive-DNS records to an io.Writer in
// one of three formats, for either of the two backend verbs. The six
// combinations are modeled as a closed set of concrete types selected at
// startup, not as late-bound dispatch.
package present

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdnsq/dnsdbq/internal/jsonlib"
	"github.com/pdnsq/dnsdbq/internal/tuple"
)

// Format selects the rendering.
type Format string

const (
	FormatText Format = "dns"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Verb selects which record shape is being rendered.
type Verb string

const (
	VerbLookup    Verb = "lookup"
	VerbSummarize Verb = "summarize"
)

// New returns the concrete presenter for (format, verb), writing to w.
func New(format Format, verb Verb, w io.Writer) (Presenter, error) {
	switch {
	case format == FormatText && verb == VerbLookup:
		return &textLookup{w: w}, nil
	case format == FormatText && verb == VerbSummarize:
		return &textSummarize{w: w}, nil
	case format == FormatCSV && verb == VerbLookup:
		return &csvLookup{w: w}, nil
	case format == FormatCSV && verb == VerbSummarize:
		return &csvSummarize{w: w}, nil
	case format == FormatJSON && verb == VerbLookup:
		return &jsonPassthrough{w: w}, nil
	case format == FormatJSON && verb == VerbSummarize:
		return &jsonPassthrough{w: w}, nil
	default:
		return nil, fmt.Errorf("present: unsupported combination format=%s verb=%s", format, verb)
	}
}

// Presenter renders one surviving raw JSON record. Every concrete type in
// this package, and only those, satisfies it.
type Presenter interface {
	Present(record []byte) error
}

// summaryRecord is the shape of a -V summarize response: aggregate
// counts rather than individual observations.
type summaryRecord struct {
	Count      int64 `json:"count"`
	NumResults int64 `json:"num_results"`
	TimeFirst  int64 `json:"time_first,omitempty"`
	TimeLast   int64 `json:"time_last,omitempty"`
	ZoneFirst  int64 `json:"zone_time_first,omitempty"`
	ZoneLast   int64 `json:"zone_time_last,omitempty"`
}

// jsonPassthrough writes each surviving record verbatim, one per line,
// for the -j shortcut and -p json. No reformatting is needed because the
// record is already well-formed JSON on arrival.
type jsonPassthrough struct{ w io.Writer }

func (p *jsonPassthrough) Present(record []byte) error {
	_, err := fmt.Fprintf(p.w, "%s\n", record)
	return err
}

// textLookup renders one dnsdbq-style human-readable line per observation.
type textLookup struct{ w io.Writer }

func (p *textLookup) Present(record []byte) error {
	t, err := tuple.Parse(record)
	if err != nil {
		return err
	}
	first, last := t.EffectiveInterval()
	var b strings.Builder
	fmt.Fprintf(&b, ";; record times: %s .. %s", formatUnix(first), formatUnix(last))
	if t.Bailiwick != "" {
		fmt.Fprintf(&b, "  (bailiwick: %s)", t.Bailiwick)
	}
	b.WriteByte('\n')
	for _, rdata := range t.Rdata.Values {
		fmt.Fprintf(&b, "%s  %s  %s\n", t.RRName, t.RRType, rdata)
	}
	_, err = io.WriteString(p.w, b.String())
	return err
}

// textSummarize renders one aggregate summary line.
type textSummarize struct{ w io.Writer }

func (p *textSummarize) Present(record []byte) error {
	var s summaryRecord
	if err := jsonlib.Unmarshal(record, &s); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.w, ";; count: %d; num_results: %d\n", s.Count, s.NumResults)
	return err
}

// csvLookup renders one CSV row per rdata value, matching the column
// order a spreadsheet import expects: bailiwick, rrname, rrtype, rdata,
// count, time_first, time_last.
type csvLookup struct {
	w           io.Writer
	wroteHeader bool
}

func (p *csvLookup) Present(record []byte) error {
	if !p.wroteHeader {
		if _, err := io.WriteString(p.w, "bailiwick,rrname,rrtype,rdata,count,time_first,time_last\n"); err != nil {
			return err
		}
		p.wroteHeader = true
	}
	t, err := tuple.Parse(record)
	if err != nil {
		return err
	}
	first, last := t.EffectiveInterval()
	for _, rdata := range t.Rdata.Values {
		_, err := fmt.Fprintf(p.w, "%s,%s,%s,%s,%d,%d,%d\n",
			csvField(t.Bailiwick), csvField(t.RRName), csvField(t.RRType), csvField(rdata), t.Count, first, last)
		if err != nil {
			return err
		}
	}
	return nil
}

// csvSummarize renders one CSV summary row.
type csvSummarize struct {
	w           io.Writer
	wroteHeader bool
}

func (p *csvSummarize) Present(record []byte) error {
	if !p.wroteHeader {
		if _, err := io.WriteString(p.w, "count,num_results\n"); err != nil {
			return err
		}
		p.wroteHeader = true
	}
	var s summaryRecord
	if err := jsonlib.Unmarshal(record, &s); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.w, "%d,%d\n", s.Count, s.NumResults)
	return err
}

// csvField quotes a field if it contains a comma, quote, or newline.
func csvField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
