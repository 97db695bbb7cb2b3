// Package sortbridge spawns and drives the external sort(1) process used
// for deduplication and ordering by derived collation keys.
package sortbridge

import (
	"fmt"
	"strings"
)

// Field is one of the five recognized sort-key names.
type Field string

const (
	FieldFirst Field = "first"
	FieldLast  Field = "last"
	FieldCount Field = "count"
	FieldName  Field = "name"
	FieldData  Field = "data"
)

// canonicalOrder is the order auto-added fields are appended in, and the
// column order of the five-field collation prefix on each sort-input line.
var canonicalOrder = []Field{FieldFirst, FieldLast, FieldCount, FieldName, FieldData}

// Key pairs a Field with its sort direction.
type Key struct {
	Field   Field
	Reverse bool
}

// KeySet is a user-selected, ordered, de-duplicated list of sort keys.
type KeySet []Key

// ParseKeys parses a comma-separated key list such as "name,data" or
// "first!,name" (a trailing "!" reverses that key), validating that each
// name is recognized and appears at most once.
func ParseKeys(spec string) (KeySet, error) {
	if spec == "" {
		return nil, nil
	}
	seen := make(map[Field]bool)
	var ks KeySet
	for _, tok := range strings.Split(spec, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		reverse := strings.HasSuffix(tok, "!")
		name := Field(strings.TrimSuffix(tok, "!"))
		if !isRecognized(name) {
			return nil, fmt.Errorf("sortbridge: unrecognized sort key %q", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("sortbridge: sort key %q specified more than once", name)
		}
		seen[name] = true
		ks = append(ks, Key{Field: name, Reverse: reverse})
	}
	return ks, nil
}

// AllFields returns the five recognized sort keys in canonical column
// order, for callers that need to build a full key set explicitly (e.g.
// "-S with no -k" still sorts, and dedups, on every field).
func AllFields() []Field {
	out := make([]Field, len(canonicalOrder))
	copy(out, canonicalOrder)
	return out
}

func isRecognized(f Field) bool {
	for _, c := range canonicalOrder {
		if c == f {
			return true
		}
	}
	return false
}

// AutoFill returns ks with any of the five fields it omits appended, in
// canonical order, so that external sort's uniqueness pass (-u) always
// compares the full five-field collation prefix even when the user asked
// to sort by only a subset of it.
func (ks KeySet) AutoFill() KeySet {
	if len(ks) == 0 {
		return ks
	}
	present := make(map[Field]bool, len(ks))
	for _, k := range ks {
		present[k.Field] = true
	}
	filled := make(KeySet, len(ks), 5)
	copy(filled, ks)
	for _, f := range canonicalOrder {
		if !present[f] {
			filled = append(filled, Key{Field: f})
		}
	}
	return filled
}

// NeedsName reports whether ks requires a DNS-name collation key to be
// derived per record.
func (ks KeySet) NeedsName() bool {
	for _, k := range ks {
		if k.Field == FieldName {
			return true
		}
	}
	return false
}

// NeedsData reports whether ks requires an rdata collation key to be
// derived per record.
func (ks KeySet) NeedsData() bool {
	for _, k := range ks {
		if k.Field == FieldData {
			return true
		}
	}
	return false
}

// sortColumn returns the 1-based column index of f in the fixed five-field
// prefix written to sort's stdin (first last count name data).
func sortColumn(f Field) int {
	for i, c := range canonicalOrder {
		if c == f {
			return i + 1
		}
	}
	return 0
}

// Args builds the sort(1) argument vector for ks: unique mode, then one
// -kN[n][r] flag per key in user-specified priority order. name and data
// columns sort as text (already hex-folded to be byte-comparable); first,
// last, and count sort numerically.
func (ks KeySet) Args() []string {
	args := []string{"-u"}
	for _, k := range ks {
		col := sortColumn(k.Field)
		spec := fmt.Sprintf("-k%d", col)
		switch k.Field {
		case FieldFirst, FieldLast, FieldCount:
			spec += "n"
		}
		if k.Reverse {
			spec += "r"
		}
		args = append(args, spec)
	}
	return args
}
