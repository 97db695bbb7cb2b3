package metrics

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSummaryReflectsObservations(t *testing.T) {
	m := New()
	m.ObserveRequest(50 * time.Millisecond)
	m.AddRecords(3)
	m.AddBytes(1024)
	m.AddTransportError()

	got := m.Summary(false)
	for _, want := range []string{"requests=1", "records=3", "bytes=1024", "errors=1"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary %q missing %q", got, want)
		}
	}
}

func TestSummaryGraveledSuppressesOutput(t *testing.T) {
	m := New()
	m.AddRecords(5)
	if got := m.Summary(true); got != "" {
		t.Errorf("graveled summary = %q, want empty", got)
	}
}

func TestHandlerServesExposition(t *testing.T) {
	m := New()
	m.AddRecords(2)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "dnsdbq_records_total") {
		t.Errorf("exposition missing counter name: %s", rec.Body.String())
	}
}

func TestServeExposesMetricsOverHTTP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserving a port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	m := New()
	m.AddRecords(7)
	m.Serve(addr, nil)

	url := fmt.Sprintf("http://%s/metrics", addr)
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestAddRecordsIgnoresNonPositive(t *testing.T) {
	m := New()
	m.AddRecords(0)
	m.AddRecords(-5)
	if got := m.Summary(false); !strings.Contains(got, "records=0") {
		t.Errorf("summary = %q, want records=0", got)
	}
}
