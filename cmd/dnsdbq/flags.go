package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdnsq/dnsdbq/internal/query"
	"github.com/pdnsq/dnsdbq/internal/sortbridge"
	"github.com/pdnsq/dnsdbq/internal/tstamp"
)

// modeFlags holds the raw values of the five mutually-exclusive mode
// selectors, in the order they're checked (-r/-n/-i/-N/-R), plus the
// modifiers that either ride along inline (a slash in the argument) or
// arrive separately via -t/-b.
type modeFlags struct {
	rrsetByName string // -r
	rdataByName string // -n
	rdataByIP   string // -i
	rdataRaw    string // -N
	rrsetRaw    string // -R

	rrtype    string // -t
	bailiwick string // -b
}

// selected returns the chosen mode, its inline thing/rrtype/bailiwick (for
// the four slash-delimited selectors) and whether any selector was given.
func (m modeFlags) selected() (mode query.Mode, arg string, ok bool) {
	switch {
	case m.rrsetByName != "":
		return query.ModeRRsetByName, m.rrsetByName, true
	case m.rdataByName != "":
		return query.ModeRdataByName, m.rdataByName, true
	case m.rdataByIP != "":
		return query.ModeRdataByIP, m.rdataByIP, true
	case m.rdataRaw != "":
		return query.ModeRdataRaw, m.rdataRaw, true
	case m.rrsetRaw != "":
		return query.ModeRRsetRaw, m.rrsetRaw, true
	default:
		return 0, "", false
	}
}

// count reports how many of the five selectors were supplied, to enforce
// "at most one" at validation time.
func (m modeFlags) count() int {
	n := 0
	for _, v := range []string{m.rrsetByName, m.rdataByName, m.rdataByIP, m.rdataRaw, m.rrsetRaw} {
		if v != "" {
			n++
		}
	}
	return n
}

// buildQuery turns the mode selectors plus -t/-b/-A/-B/-c/-l/-O into a
// query.Query, reproducing the original CLI's inline slash-splitting for
// -r/-n/-N/-R (thing[/rrtype[/bailiwick]]) and comma convention for -i
// (thing[/pfxlen] on the command line, which the backend instead sees as
// thing,pfxlen).
func buildQuery(mf modeFlags, after, before string, complete bool, limit, offset int) (query.Query, error) {
	mode, arg, ok := mf.selected()
	if !ok {
		return query.Query{}, fmt.Errorf("one of -r, -n, -i, -N, or -R is required")
	}

	b := query.Builder{Mode: mode, Complete: complete, Limit: limit, Offset: offset}

	if mode == query.ModeRdataByIP {
		thing, pfxlen, err := splitInlineIP(arg)
		if err != nil {
			return query.Query{}, err
		}
		b.Thing, b.Pfxlen = thing, pfxlen
	} else {
		thing, rrtype, bailiwick, err := splitInlineRRset(arg)
		if err != nil {
			return query.Query{}, err
		}
		if rrtype != "" && mf.rrtype != "" {
			return query.Query{}, fmt.Errorf("can only specify rrtype one way")
		}
		if bailiwick != "" && mf.bailiwick != "" {
			return query.Query{}, fmt.Errorf("can only specify bailiwick one way")
		}
		b.Thing = thing
		b.RRtype = firstNonEmpty(rrtype, mf.rrtype)
		b.Bailiwick = firstNonEmpty(bailiwick, mf.bailiwick)
	}

	if after != "" {
		ts, err := tstamp.Parse(after)
		if err != nil {
			return query.Query{}, fmt.Errorf("bad -A timestamp: %w", err)
		}
		b.After = ts
	}
	if before != "" {
		ts, err := tstamp.Parse(before)
		if err != nil {
			return query.Query{}, fmt.Errorf("bad -B timestamp: %w", err)
		}
		b.Before = ts
	}

	return b.Build()
}

// splitInlineRRset implements the original CLI's -r/-n/-N/-R inline
// shorthand: "thing", "thing/rrtype", or "thing/rrtype/bailiwick".
func splitInlineRRset(arg string) (thing, rrtype, bailiwick string, err error) {
	parts := strings.SplitN(arg, "/", 3)
	switch len(parts) {
	case 1:
		return parts[0], "", "", nil
	case 2:
		return parts[0], parts[1], "", nil
	case 3:
		return parts[0], parts[1], parts[2], nil
	default:
		return "", "", "", fmt.Errorf("malformed mode argument %q", arg)
	}
}

// splitInlineIP implements -i's "addr" or "addr/pfxlen" shorthand.
func splitInlineIP(arg string) (addr string, pfxlen int, err error) {
	parts := strings.SplitN(arg, "/", 2)
	if len(parts) == 1 {
		return parts[0], 0, nil
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid prefix length in %q: %w", arg, err)
	}
	return parts[0], n, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// buildSortKeys translates -s/-S/-k into a sortbridge.KeySet. -S marks
// every key reverse, including ones auto-filled to complete the five-field
// dedup prefix; -s leaves them all ascending. -k may be omitted entirely
// with -s or -S alone, in which case all five fields sort (so that `-u`
// dedups on the complete collation prefix), matching the original CLI.
func buildSortKeys(sortNormal, sortReverse bool, keysFlag string) (sortbridge.KeySet, error) {
	if !sortNormal && !sortReverse {
		if keysFlag != "" {
			return nil, fmt.Errorf("using -k without -s or -S makes no sense")
		}
		return nil, nil
	}

	explicit, err := sortbridge.ParseKeys(keysFlag)
	if err != nil {
		return nil, err
	}
	if sortReverse {
		for i := range explicit {
			explicit[i].Reverse = true
		}
	}

	filled := explicit.AutoFill()
	if sortReverse {
		for i := range filled {
			filled[i].Reverse = true
		}
	}
	if len(filled) == 0 {
		for _, f := range sortbridge.AllFields() {
			filled = append(filled, sortbridge.Key{Field: f, Reverse: sortReverse})
		}
	}
	return filled, nil
}
