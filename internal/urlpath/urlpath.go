// Package urlpath builds the RESTful path fragment for a passive-DNS query
// from its (mode, thing, rrtype, bailiwick, pfxlen) tuple.
package urlpath

import (
	"fmt"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/pdnsq/dnsdbq/internal/query"
)

// anyRRtype is the placeholder rrtype emitted when a bailiwick is present
// but no rrtype was given.
const anyRRtype = "ANY"

// Build returns the path fragment for q, e.g. "rrset/name/example.com/ANY/com.".
// Every dynamic segment is escaped exactly once here, using the same "simple"
// path-parameter styling the rest of the corpus's generated clients use, and
// never re-escaped downstream.
func Build(q query.Query) (string, error) {
	switch q.Mode() {
	case query.ModeRRsetByName:
		return rrsetPath("rrset/name", q)
	case query.ModeRRsetRaw:
		return rrsetPath("rrset/raw", q)
	case query.ModeRdataByName:
		return rdataNamePath("rdata/name", q)
	case query.ModeRdataRaw:
		return rdataNamePath("rdata/raw", q)
	case query.ModeRdataByIP:
		return rdataIPPath(q)
	default:
		return "", fmt.Errorf("urlpath: unknown mode %s", q.Mode())
	}
}

func rrsetPath(prefix string, q query.Query) (string, error) {
	thing, err := segment(q.Thing())
	if err != nil {
		return "", err
	}
	parts := []string{prefix, thing}

	rrtype := q.RRtype()
	if rrtype == "" && q.Bailiwick() != "" {
		rrtype = anyRRtype
	}
	if rrtype == "" {
		return strings.Join(parts, "/"), nil
	}
	rrtypeSeg, err := segment(rrtype)
	if err != nil {
		return "", err
	}
	parts = append(parts, rrtypeSeg)

	if q.Bailiwick() != "" {
		bwSeg, err := segment(q.Bailiwick())
		if err != nil {
			return "", err
		}
		parts = append(parts, bwSeg)
	}
	return strings.Join(parts, "/"), nil
}

func rdataNamePath(prefix string, q query.Query) (string, error) {
	thing, err := segment(q.Thing())
	if err != nil {
		return "", err
	}
	parts := []string{prefix, thing}
	if q.RRtype() != "" {
		rrtypeSeg, err := segment(q.RRtype())
		if err != nil {
			return "", err
		}
		parts = append(parts, rrtypeSeg)
	}
	return strings.Join(parts, "/"), nil
}

func rdataIPPath(q query.Query) (string, error) {
	thing, err := segment(q.Thing())
	if err != nil {
		return "", err
	}
	if q.Pfxlen() == 0 {
		return "rdata/ip/" + thing, nil
	}
	// The prefix length shares the address's path segment, joined by a
	// comma rather than a slash, so it is styled and appended in place
	// rather than escaped as its own segment.
	return fmt.Sprintf("rdata/ip/%s,%d", thing, q.Pfxlen()), nil
}

// segment escapes a single path segment using simple, non-exploded styling,
// matching the serialization oapi-codegen-generated clients use for path
// parameters elsewhere in the corpus.
func segment(value string) (string, error) {
	return runtime.StyleParamWithLocation("simple", false, "segment", runtime.ParamLocationPath, value)
}
