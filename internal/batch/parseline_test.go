package batch

import (
	"testing"

	"github.com/pdnsq/dnsdbq/internal/query"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		line string
		mode query.Mode
		want query.Builder
	}{
		{"rrset/name/a.com", query.ModeRRsetByName, query.Builder{Thing: "a.com"}},
		{"rrset/name/b.com/A", query.ModeRRsetByName, query.Builder{Thing: "b.com", RRtype: "A"}},
		{"rrset/name/b.com/A/com.", query.ModeRRsetByName, query.Builder{Thing: "b.com", RRtype: "A", Bailiwick: "com."}},
		{"rdata/name/c.com", query.ModeRdataByName, query.Builder{Thing: "c.com"}},
		{"rdata/raw/deadbeef", query.ModeRdataRaw, query.Builder{Thing: "deadbeef"}},
		{"rdata/ip/1.2.3.0,24", query.ModeRdataByIP, query.Builder{Thing: "1.2.3.0", Pfxlen: 24}},
		{"rdata/ip/1.2.3.4", query.ModeRdataByIP, query.Builder{Thing: "1.2.3.4"}},
	}
	for _, c := range cases {
		t.Run(c.line, func(t *testing.T) {
			got, err := ParseLine(c.line, Defaults{})
			if err != nil {
				t.Fatalf("ParseLine(%q): %v", c.line, err)
			}
			c.want.Mode = c.mode
			want, err := c.want.Build()
			if err != nil {
				t.Fatalf("building expected query: %v", err)
			}
			if got != want {
				t.Errorf("ParseLine(%q) = %+v, want %+v", c.line, got, want)
			}
		})
	}
}

func TestParseLineRejectsMalformed(t *testing.T) {
	for _, line := range []string{"garbage/", "unknown/kind/thing", "rdata/name/a.com/A/extra"} {
		if _, err := ParseLine(line, Defaults{}); err == nil {
			t.Errorf("ParseLine(%q): expected error", line)
		}
	}
}

func TestParseLineInheritsDefaults(t *testing.T) {
	d := Defaults{After: 100, Before: 200, Complete: true}
	got, err := ParseLine("rrset/name/a.com", d)
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if got.After() != 100 || got.Before() != 200 || !got.IsComplete() {
		t.Errorf("defaults not inherited: %+v", got)
	}
}
