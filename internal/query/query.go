// Package query defines the immutable request-intent value that flows from
// the CLI surface or batch driver into the query planner.
package query

import (
	"errors"
	"fmt"
)

// Mode selects which of the five search shapes a Query represents.
type Mode int

const (
	// ModeRRsetByName looks up an rrset by owner name.
	ModeRRsetByName Mode = iota
	// ModeRdataByName looks up rdata by name (reverse lookup).
	ModeRdataByName
	// ModeRdataByIP looks up rdata by IP address or prefix.
	ModeRdataByIP
	// ModeRRsetRaw looks up an rrset by raw hex rdata.
	ModeRRsetRaw
	// ModeRdataRaw looks up rdata by raw hex value.
	ModeRdataRaw
)

// String renders the mode the way diagnostics and batch-line errors name it.
func (m Mode) String() string {
	switch m {
	case ModeRRsetByName:
		return "rrset-by-name"
	case ModeRdataByName:
		return "rdata-by-name"
	case ModeRdataByIP:
		return "rdata-by-ip"
	case ModeRRsetRaw:
		return "rrset-raw"
	case ModeRdataRaw:
		return "rdata-raw"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Query is a built, immutable request intent. Construct one with Build;
// the zero value is not valid.
type Query struct {
	mode      Mode
	thing     string
	rrtype    string
	bailiwick string
	pfxlen    int
	after     int64
	before    int64
	complete  bool
	limit     int
	offset    int
}

// Builder accumulates the fields of a Query before Build validates them.
type Builder struct {
	Mode      Mode
	Thing     string
	RRtype    string
	Bailiwick string
	Pfxlen    int
	After     int64
	Before    int64
	Complete  bool
	Limit     int
	Offset    int
}

// Build validates the accumulated fields and returns an immutable Query.
//
// Invariants enforced: Bailiwick is only meaningful on an rrset mode;
// Pfxlen is only meaningful on ModeRdataByIP; if both After and Before are
// set, After must not exceed Before.
func (b Builder) Build() (Query, error) {
	if b.Thing == "" {
		return Query{}, errors.New("query: thing is required")
	}
	isRRset := b.Mode == ModeRRsetByName || b.Mode == ModeRRsetRaw
	if b.Bailiwick != "" && !isRRset {
		return Query{}, fmt.Errorf("query: bailiwick is not valid for mode %s", b.Mode)
	}
	if b.Pfxlen != 0 && b.Mode != ModeRdataByIP {
		return Query{}, fmt.Errorf("query: pfxlen is not valid for mode %s", b.Mode)
	}
	if b.After != 0 && b.Before != 0 && b.After > b.Before {
		return Query{}, fmt.Errorf("query: after (%d) must not exceed before (%d)", b.After, b.Before)
	}
	return Query{
		mode:      b.Mode,
		thing:     b.Thing,
		rrtype:    b.RRtype,
		bailiwick: b.Bailiwick,
		pfxlen:    b.Pfxlen,
		after:     b.After,
		before:    b.Before,
		complete:  b.Complete,
		limit:     b.Limit,
		offset:    b.Offset,
	}, nil
}

func (q Query) Mode() Mode         { return q.mode }
func (q Query) Thing() string      { return q.thing }
func (q Query) RRtype() string     { return q.rrtype }
func (q Query) Bailiwick() string  { return q.bailiwick }
func (q Query) Pfxlen() int        { return q.pfxlen }
func (q Query) After() int64       { return q.after }
func (q Query) Before() int64      { return q.before }
func (q Query) IsComplete() bool   { return q.complete }
func (q Query) Limit() int         { return q.limit }
func (q Query) Offset() int        { return q.offset }

// HasFence reports whether either end of the time fence is set.
func (q Query) HasFence() bool { return q.after != 0 || q.before != 0 }
