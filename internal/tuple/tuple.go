// Package tuple parses one passive-DNS observation from an NDJSON record.
package tuple

import (
	"fmt"

	"github.com/pdnsq/dnsdbq/internal/jsonlib"
)

// Tuple is one parsed passive-DNS observation. It is consumed once by the
// record pipeline and then discarded; nothing retains a Tuple past that.
type Tuple struct {
	Bailiwick  string          `json:"bailiwick,omitempty"`
	RRName     string          `json:"rrname"`
	RRType     string          `json:"rrtype"`
	Rdata      RawRdata        `json:"rdata"`
	Count      int64           `json:"count,omitempty"`
	NumResults int64           `json:"num_results,omitempty"`
	TimeFirst  int64           `json:"time_first,omitempty"`
	TimeLast   int64           `json:"time_last,omitempty"`
	ZoneFirst  int64           `json:"zone_time_first,omitempty"`
	ZoneLast   int64           `json:"zone_time_last,omitempty"`
}

// RawRdata holds the record's rdata field, which the wire format represents
// as either a single string or a list of strings.
type RawRdata struct {
	Values []string
	// Skipped counts array elements that were not strings. Those elements
	// are dropped rather than failing the whole record; the caller decides
	// whether and how to warn about them.
	Skipped int
}

// UnmarshalJSON accepts both a bare string and an array whose elements are
// usually strings. A non-string element in the array is skipped rather than
// failing the whole record, per the on-wire format's tolerance for a stray
// non-string rdata entry; Skipped records how many were dropped.
func (r *RawRdata) UnmarshalJSON(data []byte) error {
	var single string
	if err := jsonlib.Unmarshal(data, &single); err == nil {
		r.Values = []string{single}
		return nil
	}
	var raw []jsonlib.RawMessage
	if err := jsonlib.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("tuple: rdata is neither a string nor an array: %w", err)
	}
	values := make([]string, 0, len(raw))
	skipped := 0
	for _, elem := range raw {
		var s string
		if err := jsonlib.Unmarshal(elem, &s); err != nil {
			skipped++
			continue
		}
		values = append(values, s)
	}
	r.Values = values
	r.Skipped = skipped
	return nil
}

// MarshalJSON round-trips a single-element Values back to a bare string, to
// match the wire shape tests and presenters expect when echoing a tuple.
func (r RawRdata) MarshalJSON() ([]byte, error) {
	if len(r.Values) == 1 {
		return jsonlib.Marshal(r.Values[0])
	}
	return jsonlib.Marshal(r.Values)
}

// Parse decodes one NDJSON record into a Tuple.
func Parse(record []byte) (Tuple, error) {
	var t Tuple
	if err := jsonlib.Unmarshal(record, &t); err != nil {
		return Tuple{}, fmt.Errorf("tuple: parse failed: %w", err)
	}
	if t.TimeFirst == 0 && t.TimeLast == 0 && t.ZoneFirst == 0 && t.ZoneLast == 0 {
		return Tuple{}, fmt.Errorf("tuple: neither on-wire nor zone timestamp pair is populated")
	}
	return t, nil
}

// EffectiveInterval selects the on-wire (time_first, time_last) pair when
// both are non-zero, otherwise the zone-file synthesis pair, per the
// preference rule in the observation's invariant.
func (t Tuple) EffectiveInterval() (first, last int64) {
	if t.TimeFirst != 0 && t.TimeLast != 0 {
		return t.TimeFirst, t.TimeLast
	}
	return t.ZoneFirst, t.ZoneLast
}
