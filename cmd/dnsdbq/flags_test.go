package main

import (
	"testing"

	"github.com/pdnsq/dnsdbq/internal/query"
	"github.com/pdnsq/dnsdbq/internal/sortbridge"
)

func TestModeFlagsSelected(t *testing.T) {
	mf := modeFlags{rdataByIP: "192.0.2.1"}
	mode, arg, ok := mf.selected()
	if !ok || mode != query.ModeRdataByIP || arg != "192.0.2.1" {
		t.Fatalf("selected() = %v, %q, %v", mode, arg, ok)
	}
	if mf.count() != 1 {
		t.Fatalf("count() = %d, want 1", mf.count())
	}
}

func TestModeFlagsCountRejectsMultiple(t *testing.T) {
	mf := modeFlags{rrsetByName: "a.com", rdataByName: "b.com"}
	if mf.count() != 2 {
		t.Fatalf("count() = %d, want 2", mf.count())
	}
}

func TestBuildQueryInlineRRtypeAndBailiwick(t *testing.T) {
	mf := modeFlags{rrsetByName: "www.example.com/A/com."}
	q, err := buildQuery(mf, "", "", false, 0, 0)
	if err != nil {
		t.Fatalf("buildQuery: %v", err)
	}
	if q.Thing() != "www.example.com" || q.RRtype() != "A" || q.Bailiwick() != "com." {
		t.Fatalf("unexpected query %+v", q)
	}
}

func TestBuildQueryRejectsRRtypeSpecifiedTwice(t *testing.T) {
	mf := modeFlags{rrsetByName: "www.example.com/A", rrtype: "NS"}
	if _, err := buildQuery(mf, "", "", false, 0, 0); err == nil {
		t.Error("expected error when rrtype is given both inline and via -t")
	}
}

func TestBuildQueryNoModeSelected(t *testing.T) {
	if _, err := buildQuery(modeFlags{}, "", "", false, 0, 0); err == nil {
		t.Error("expected error when no mode selector is given")
	}
}

func TestSplitInlineIP(t *testing.T) {
	addr, pfxlen, err := splitInlineIP("192.0.2.0/24")
	if err != nil || addr != "192.0.2.0" || pfxlen != 24 {
		t.Fatalf("splitInlineIP = %q, %d, %v", addr, pfxlen, err)
	}
	addr, pfxlen, err = splitInlineIP("192.0.2.1")
	if err != nil || addr != "192.0.2.1" || pfxlen != 0 {
		t.Fatalf("splitInlineIP(no pfxlen) = %q, %d, %v", addr, pfxlen, err)
	}
	if _, _, err := splitInlineIP("192.0.2.1/bogus"); err == nil {
		t.Error("expected error for non-numeric prefix length")
	}
}

func TestBuildSortKeysNoSortRejectsKeys(t *testing.T) {
	if _, err := buildSortKeys(false, false, "name"); err == nil {
		t.Error("expected error for -k without -s or -S")
	}
}

func TestBuildSortKeysEmptyWithSortFillsAllFields(t *testing.T) {
	ks, err := buildSortKeys(true, false, "")
	if err != nil {
		t.Fatalf("buildSortKeys: %v", err)
	}
	if len(ks) != len(sortbridge.AllFields()) {
		t.Fatalf("expected all fields auto-filled, got %d keys", len(ks))
	}
	for _, k := range ks {
		if k.Reverse {
			t.Errorf("plain -s should not mark %s reverse", k.Field)
		}
	}
}

func TestBuildSortKeysReverseMarksAutoFilledKeysToo(t *testing.T) {
	ks, err := buildSortKeys(false, true, "name")
	if err != nil {
		t.Fatalf("buildSortKeys: %v", err)
	}
	if len(ks) != len(sortbridge.AllFields()) {
		t.Fatalf("expected auto-fill to complete the key set, got %d", len(ks))
	}
	for _, k := range ks {
		if !k.Reverse {
			t.Errorf("-S should mark every key reverse, including auto-filled %s", k.Field)
		}
	}
}
