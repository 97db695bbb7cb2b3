package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pdnsq/dnsdbq/internal/ioengine"
	"github.com/pdnsq/dnsdbq/internal/metrics"
	"github.com/pdnsq/dnsdbq/internal/present"
	"github.com/pdnsq/dnsdbq/internal/writer"
)

type stubBackend struct {
	srv  *httptest.Server
	body string
}

func (s stubBackend) Name() string { return "stub" }
func (s stubBackend) BuildURL(path string, params url.Values) (string, error) {
	u := s.srv.URL + "/" + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u, nil
}
func (s stubBackend) AttachAuth(req *http.Request)           {}
func (s stubBackend) StatusLabel(resp *http.Response) string { return "HTTP_ERROR" }
func (s stubBackend) Info() ([]byte, error)                  { return []byte(`{"ok":true}`), nil }
func (s stubBackend) ValidateVerb(verb string) error         { return nil }

func newStubBackend(t *testing.T) stubBackend {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"rrname":"a.com","rrtype":"A","rdata":"1.2.3.4","count":1,"time_first":100,"time_last":200}` + "\n"))
	}))
	t.Cleanup(srv.Close)
	return stubBackend{srv: srv}
}

func TestValidateCombinationsRequiresAMode(t *testing.T) {
	o := &opts{}
	if err := validateCombinations(o); err == nil {
		t.Error("expected error when no mode selector, -J, -f, or -I is given")
	}
}

func TestValidateCombinationsRejectsMultipleModes(t *testing.T) {
	o := &opts{mf: modeFlags{rrsetByName: "a.com", rdataByName: "b.com"}}
	if err := validateCombinations(o); err == nil {
		t.Error("expected error for two mode selectors")
	}
}

func TestValidateCombinationsRejectsBareComplete(t *testing.T) {
	o := &opts{mf: modeFlags{rrsetByName: "a.com"}, strict: true}
	if err := validateCombinations(o); err == nil {
		t.Error("expected error for -c without -A or -B")
	}
}

func TestValidateCombinationsRejectsMergeWithoutBatch(t *testing.T) {
	o := &opts{mf: modeFlags{rrsetByName: "a.com"}, merge: true}
	if err := validateCombinations(o); err == nil {
		t.Error("expected error for -m without -f")
	}
}

func TestValidateCombinationsRejectsMaxCountOnLookup(t *testing.T) {
	o := &opts{mf: modeFlags{rrsetByName: "a.com"}, verb: "lookup", maxCount: 10}
	if err := validateCombinations(o); err == nil {
		t.Error("expected error for -M with lookup verb")
	}
}

func TestValidateCombinationsAcceptsInfoAlone(t *testing.T) {
	o := &opts{info: true}
	if err := validateCombinations(o); err != nil {
		t.Errorf("expected -I alone to validate, got %v", err)
	}
}

func TestApplyAutoSortEnablesReverseSortWithWarning(t *testing.T) {
	o := &opts{after: "2020-01-01", before: "2020-06-01"}
	applyAutoSort(o)
	if !o.sortReverse {
		t.Error("expected -A and -B without -c to auto-enable -S")
	}
}

func TestApplyAutoSortSkippedWhenComplete(t *testing.T) {
	o := &opts{after: "2020-01-01", before: "2020-06-01", strict: true}
	applyAutoSort(o)
	if o.sortReverse {
		t.Error("expected -c to suppress the auto-sort fallback")
	}
}

func TestApplyAutoSortSkippedForJSONInput(t *testing.T) {
	o := &opts{after: "2020-01-01", before: "2020-06-01", jsonInput: "-"}
	applyAutoSort(o)
	if o.sortReverse {
		t.Error("expected -J to suppress the auto-sort fallback")
	}
}

func TestApplyAutoSortNoopWithOneFencePoint(t *testing.T) {
	o := &opts{after: "2020-01-01"}
	applyAutoSort(o)
	if o.sortReverse {
		t.Error("expected a single fence endpoint to leave sorting untouched")
	}
}

func TestPresentationFormatJSONShortcut(t *testing.T) {
	o := &opts{jsonShortcut: true, presentation: "dns"}
	if got := presentationFormat(o); got != present.FormatJSON {
		t.Errorf("presentationFormat = %v, want json", got)
	}
}

func TestPresentationFormatDefaultsToText(t *testing.T) {
	o := &opts{presentation: "dns"}
	if got := presentationFormat(o); got != present.FormatText {
		t.Errorf("presentationFormat = %v, want text", got)
	}
}

func TestRunSingleEndToEnd(t *testing.T) {
	be := newStubBackend(t)

	var out bytes.Buffer
	engine := ioengine.New(t.Context(), be.srv.Client(), 4, nil, nil)
	chain := writer.NewChain()
	o := &opts{
		mf:   modeFlags{rrsetByName: "a.com"},
		verb: "lookup",
	}
	newPresenter := func() (writer.Presenter, error) {
		return present.New(present.FormatJSON, present.VerbLookup, &out)
	}
	mx := metrics.New()

	if err := runSingle(o, be, engine, chain, newPresenter, nil, mx); err != nil {
		t.Fatalf("runSingle: %v", err)
	}
	if !strings.Contains(out.String(), "a.com") {
		t.Errorf("expected record in output, got: %s", out.String())
	}
}
