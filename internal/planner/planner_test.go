package planner

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/pdnsq/dnsdbq/internal/query"
	"github.com/pdnsq/dnsdbq/internal/timefence"
	"github.com/pdnsq/dnsdbq/internal/writer"
)

type fakeBackend struct {
	verbOK map[string]bool
}

func (f fakeBackend) Name() string { return "fake" }

func (f fakeBackend) BuildURL(path string, params url.Values) (string, error) {
	u := "https://backend.example/" + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u, nil
}

func (f fakeBackend) AttachAuth(req *http.Request)            {}
func (f fakeBackend) StatusLabel(resp *http.Response) string  { return "" }
func (f fakeBackend) Info() ([]byte, error)                   { return nil, nil }
func (f fakeBackend) ValidateVerb(verb string) error {
	if f.verbOK == nil || f.verbOK[verb] {
		return nil
	}
	return errUnsupportedVerb
}

var errUnsupportedVerb = &verbError{}

type verbError struct{}

func (*verbError) Error() string { return "unsupported verb" }

func newTestWriter(t *testing.T) *writer.Writer {
	t.Helper()
	w, err := writer.New(timefence.Fence{}, nil, 0, noopPresenter{}, nil)
	if err != nil {
		t.Fatalf("writer.New: %v", err)
	}
	return w
}

type noopPresenter struct{}

func (noopPresenter) Present(record []byte) error { return nil }

func TestPlanNoFence(t *testing.T) {
	q, _ := query.Builder{Mode: query.ModeRRsetByName, Thing: "example.com", Limit: 10}.Build()
	w := newTestWriter(t)
	readers, err := Plan("lookup", q, fakeBackend{}, w)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(readers) != 1 {
		t.Fatalf("got %d readers, want 1", len(readers))
	}
	want := "https://backend.example/lookup/rrset/name/example.com?limit=10"
	if readers[0].URL != want {
		t.Errorf("URL = %q, want %q", readers[0].URL, want)
	}
}

func TestPlanNonStrictTwoSidedFenceProducesTwoDisjointRequests(t *testing.T) {
	q, _ := query.Builder{Mode: query.ModeRRsetByName, Thing: "example.com", After: 100, Before: 200}.Build()
	w := newTestWriter(t)
	readers, err := Plan("lookup", q, fakeBackend{}, w)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(readers) != 2 {
		t.Fatalf("got %d readers, want 2", len(readers))
	}
	var sawLastAfter, sawFirstBefore bool
	for _, r := range readers {
		hasLastAfter := strings.Contains(r.URL, "time_last_after=100")
		hasFirstBefore := strings.Contains(r.URL, "time_first_before=200")
		if hasLastAfter && hasFirstBefore {
			t.Fatalf("URL %q should not contain both time parameters", r.URL)
		}
		sawLastAfter = sawLastAfter || hasLastAfter
		sawFirstBefore = sawFirstBefore || hasFirstBefore
	}
	if !sawLastAfter || !sawFirstBefore {
		var got []string
		for _, r := range readers {
			got = append(got, r.URL)
		}
		t.Errorf("expected one URL with time_last_after and one with time_first_before, got %v", got)
	}
}

func TestPlanStrictTwoSidedFenceProducesOneRequest(t *testing.T) {
	q, _ := query.Builder{Mode: query.ModeRRsetByName, Thing: "example.com", After: 100, Before: 200, Complete: true}.Build()
	w := newTestWriter(t)
	readers, err := Plan("lookup", q, fakeBackend{}, w)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(readers) != 1 {
		t.Fatalf("got %d readers, want 1", len(readers))
	}
	if !strings.Contains(readers[0].URL, "time_first_after=100") || !strings.Contains(readers[0].URL, "time_last_before=200") {
		t.Errorf("URL = %q, want both time_first_after=100 and time_last_before=200", readers[0].URL)
	}
}

func TestPlanRejectsUnsupportedVerb(t *testing.T) {
	q, _ := query.Builder{Mode: query.ModeRRsetByName, Thing: "example.com"}.Build()
	w := newTestWriter(t)
	be := fakeBackend{verbOK: map[string]bool{"lookup": true}}
	if _, err := Plan("summarize", q, be, w); err == nil {
		t.Error("expected error for unsupported verb")
	}
}

