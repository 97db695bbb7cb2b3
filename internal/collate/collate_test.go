package collate

import (
	"testing"

	"github.com/pdnsq/dnsdbq/internal/tuple"
)

func TestNameKeyOrdering(t *testing.T) {
	a := NameKey("a.example.com")
	b := NameKey("b.example.com")
	if !(a < b) {
		t.Errorf("NameKey(a.example.com)=%q should sort before NameKey(b.example.com)=%q", a, b)
	}
}

func TestNameKeyRoot(t *testing.T) {
	if got := NameKey(""); got != "." {
		t.Errorf("NameKey(\"\") = %q, want \".\"", got)
	}
	if got := NameKey("."); got != "." {
		t.Errorf("NameKey(\".\") = %q, want \".\"", got)
	}
}

func TestDataKeyIPNumericOrdering(t *testing.T) {
	a := DataKey("A", "1.2.3.4")
	b := DataKey("A", "1.2.3.10")
	if !(a < b) {
		t.Errorf("DataKey(1.2.3.4)=%q should sort before DataKey(1.2.3.10)=%q", a, b)
	}
}

func TestDataKeyNameTypes(t *testing.T) {
	got := DataKey("NS", "ns1.example.com")
	want := NameKey("ns1.example.com")
	if got != want {
		t.Errorf("DataKey(NS, ...) = %q, want %q", got, want)
	}
}

func TestDataKeyMXUsesTrailingName(t *testing.T) {
	got := DataKey("MX", "10 mail.example.com")
	want := NameKey("mail.example.com")
	if got != want {
		t.Errorf("DataKey(MX, ...) = %q, want %q", got, want)
	}
}

func TestDataKeyMXWithoutSpaceFallsBackToHex(t *testing.T) {
	got := DataKey("MX", "nospace")
	want := hexExpand("nospace")
	if got != want {
		t.Errorf("DataKey(MX, nospace) = %q, want %q", got, want)
	}
}

func TestDataKeyOther(t *testing.T) {
	got := DataKey("TXT", "v=spf1")
	want := hexExpand("v=spf1")
	if got != want {
		t.Errorf("DataKey(TXT, ...) = %q, want %q", got, want)
	}
}

func TestDataKeyMalformedAddressIsZeroBytes(t *testing.T) {
	got := DataKey("A", "not-an-ip")
	want := hexExpand("\x00\x00\x00\x00")
	if got != want {
		t.Errorf("DataKey(A, not-an-ip) = %q, want %q", got, want)
	}
}

// TestDataKeyForValuesSkipsNonStringArrayElements exercises the full path
// from a wire rdata array containing a non-string element through to the
// collation key: the bad element is dropped at tuple.Parse, and the
// remaining strings still key normally.
func TestDataKeyForValuesSkipsNonStringArrayElements(t *testing.T) {
	record := []byte(`{"rrname":"example.com","rrtype":"A","rdata":["1.2.3.4",99,"1.2.3.10"],"time_first":100,"time_last":200}`)
	tup, err := tuple.Parse(record)
	if err != nil {
		t.Fatalf("tuple.Parse: %v", err)
	}
	if tup.Rdata.Skipped != 1 {
		t.Fatalf("Rdata.Skipped = %d, want 1", tup.Rdata.Skipped)
	}
	got := DataKeyForValues(tup.RRType, tup.Rdata.Values)
	want := DataKey("A", "1.2.3.4") + DataKey("A", "1.2.3.10")
	if got != want {
		t.Errorf("DataKeyForValues = %q, want %q", got, want)
	}
}
