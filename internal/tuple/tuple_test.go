package tuple

import "testing"

func TestRawRdataBareString(t *testing.T) {
	var r RawRdata
	if err := r.UnmarshalJSON([]byte(`"1.2.3.4"`)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if len(r.Values) != 1 || r.Values[0] != "1.2.3.4" {
		t.Errorf("Values = %v", r.Values)
	}
	if r.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", r.Skipped)
	}
}

func TestRawRdataStringArray(t *testing.T) {
	var r RawRdata
	if err := r.UnmarshalJSON([]byte(`["10 mail1.example.com","20 mail2.example.com"]`)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if len(r.Values) != 2 {
		t.Fatalf("Values = %v", r.Values)
	}
	if r.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", r.Skipped)
	}
}

func TestRawRdataMixedArraySkipsNonStrings(t *testing.T) {
	var r RawRdata
	err := r.UnmarshalJSON([]byte(`["1.2.3.4", 42, {"nested":true}, "5.6.7.8"]`))
	if err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if len(r.Values) != 2 || r.Values[0] != "1.2.3.4" || r.Values[1] != "5.6.7.8" {
		t.Fatalf("Values = %v, want the two string elements kept in order", r.Values)
	}
	if r.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", r.Skipped)
	}
}

func TestRawRdataNeitherStringNorArray(t *testing.T) {
	var r RawRdata
	if err := r.UnmarshalJSON([]byte(`42`)); err == nil {
		t.Error("expected error for a bare number")
	}
}

func TestParseMixedRdataArrayStillProducesTuple(t *testing.T) {
	record := []byte(`{"rrname":"example.com","rrtype":"TXT","rdata":["v=spf1",7,"include:_spf.example.com"],"time_first":100,"time_last":200}`)
	tup, err := Parse(record)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tup.Rdata.Values) != 2 {
		t.Fatalf("Rdata.Values = %v, want the two string elements", tup.Rdata.Values)
	}
	if tup.Rdata.Skipped != 1 {
		t.Errorf("Rdata.Skipped = %d, want 1", tup.Rdata.Skipped)
	}
}
