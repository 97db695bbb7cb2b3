// Package planner decomposes a Query's time fence into one or two
// concurrent backend requests with the correct URL parameters, per the
// decomposition table authoritative in the specification.
package planner

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/pdnsq/dnsdbq/internal/backend"
	"github.com/pdnsq/dnsdbq/internal/query"
	"github.com/pdnsq/dnsdbq/internal/reader"
	"github.com/pdnsq/dnsdbq/internal/urlpath"
	"github.com/pdnsq/dnsdbq/internal/writer"
)

// Plan builds the reader(s) for q against be, registers each with w, and
// returns them for the caller to hand to the I/O engine. verb is "lookup"
// or "summarize".
func Plan(verb string, q query.Query, be backend.Backend, w *writer.Writer) ([]*reader.Reader, error) {
	if err := be.ValidateVerb(verb); err != nil {
		return nil, err
	}
	path, err := urlpath.Build(q)
	if err != nil {
		return nil, err
	}
	fullPath := verb + "/" + path

	paramSets := decompose(q)
	readers := make([]*reader.Reader, 0, len(paramSets))
	for _, params := range paramSets {
		if q.Limit() != 0 {
			params.Set("limit", strconv.Itoa(q.Limit()))
		}
		if q.Offset() != 0 {
			params.Set("offset", strconv.Itoa(q.Offset()))
		}
		u, err := be.BuildURL(fullPath, params)
		if err != nil {
			return nil, fmt.Errorf("planner: %w", err)
		}
		r := reader.New(u, w, be)
		w.AddReader(r)
		readers = append(readers, r)
	}
	return readers, nil
}

// decompose implements the §4.2 table, returning one url.Values per
// backend request.
func decompose(q query.Query) []url.Values {
	after, before, complete := q.After(), q.Before(), q.IsComplete()

	switch {
	case after == 0 && before == 0:
		return []url.Values{{}}
	case after != 0 && before == 0 && !complete:
		return []url.Values{{"time_last_after": {fmtInt(after)}}}
	case after != 0 && before == 0 && complete:
		return []url.Values{{"time_first_after": {fmtInt(after)}}}
	case after == 0 && before != 0 && !complete:
		return []url.Values{{"time_first_before": {fmtInt(before)}}}
	case after == 0 && before != 0 && complete:
		return []url.Values{{"time_last_before": {fmtInt(before)}}}
	case after != 0 && before != 0 && complete:
		return []url.Values{{
			"time_first_after": {fmtInt(after)},
			"time_last_before": {fmtInt(before)},
		}}
	default: // after != 0 && before != 0 && !complete
		return []url.Values{
			{"time_last_after": {fmtInt(after)}},
			{"time_first_before": {fmtInt(before)}},
		}
	}
}

func fmtInt(n int64) string { return strconv.FormatInt(n, 10) }
