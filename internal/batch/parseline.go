package batch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdnsq/dnsdbq/internal/query"
)

// Defaults carries the invocation-wide fence and mode-independent settings
// a batch line falls back to when it doesn't specify its own.
type Defaults struct {
	After    int64
	Before   int64
	Complete bool
	Limit    int
}

// ParseLine parses one batch-file line into a Query, strictly, per the
// five recognized shapes. Any unrecognized token yields a non-nil error
// and leaves d untouched.
func ParseLine(line string, d Defaults) (query.Query, error) {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.Split(line, "/")
	if len(parts) < 3 {
		return query.Query{}, fmt.Errorf("batch: malformed line %q: expected at least verb/kind/thing", line)
	}

	b := query.Builder{After: d.After, Before: d.Before, Complete: d.Complete, Limit: d.Limit}

	switch {
	case parts[0] == "rrset" && parts[1] == "name":
		b.Mode = query.ModeRRsetByName
	case parts[0] == "rrset" && parts[1] == "raw":
		b.Mode = query.ModeRRsetRaw
	case parts[0] == "rdata" && parts[1] == "name":
		b.Mode = query.ModeRdataByName
	case parts[0] == "rdata" && parts[1] == "raw":
		b.Mode = query.ModeRdataRaw
	case parts[0] == "rdata" && parts[1] == "ip":
		b.Mode = query.ModeRdataByIP
	default:
		return query.Query{}, fmt.Errorf("batch: unrecognized line shape %q", line)
	}

	rest := parts[2:]
	if b.Mode == query.ModeRdataByIP {
		if len(rest) != 1 {
			return query.Query{}, fmt.Errorf("batch: rdata/ip line %q takes exactly one component", line)
		}
		addr, pfxlen, err := splitIPComponent(rest[0])
		if err != nil {
			return query.Query{}, fmt.Errorf("batch: %w", err)
		}
		b.Thing = addr
		b.Pfxlen = pfxlen
		return b.Build()
	}

	switch len(rest) {
	case 1:
		b.Thing = rest[0]
	case 2:
		b.Thing, b.RRtype = rest[0], rest[1]
	case 3:
		if b.Mode != query.ModeRRsetByName && b.Mode != query.ModeRRsetRaw {
			return query.Query{}, fmt.Errorf("batch: bailiwick component is only valid for rrset lines: %q", line)
		}
		b.Thing, b.RRtype, b.Bailiwick = rest[0], rest[1], rest[2]
	default:
		return query.Query{}, fmt.Errorf("batch: too many components in line %q", line)
	}
	if b.Thing == "" {
		return query.Query{}, fmt.Errorf("batch: empty thing in line %q", line)
	}
	return b.Build()
}

// splitIPComponent splits "addr" or "addr,pfxlen" per the §4.1 rdata/ip
// shape, which uses a comma rather than a slash.
func splitIPComponent(s string) (addr string, pfxlen int, err error) {
	if i := strings.IndexByte(s, ','); i >= 0 {
		addr = s[:i]
		pfxlen, err = strconv.Atoi(s[i+1:])
		if err != nil {
			return "", 0, fmt.Errorf("invalid prefix length in %q: %w", s, err)
		}
		return addr, pfxlen, nil
	}
	return s, 0, nil
}
