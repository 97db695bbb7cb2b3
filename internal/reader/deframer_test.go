package reader

import (
	"reflect"
	"strings"
	"testing"
)

func TestDeframerArbitraryChunking(t *testing.T) {
	records := []string{`{"a":1}`, `{"b":2}`, `{"c":3}`}
	whole := strings.Join(records, "\n") + "\n"

	chunkings := [][]int{
		{len(whole)},             // one chunk
		splitEvery(whole, 1),     // byte at a time
		splitEvery(whole, 5),     // five bytes at a time
		splitEvery(whole, 100),   // bigger than input
	}

	for _, sizes := range chunkings {
		var d Deframer
		var got []string
		pos := 0
		for _, n := range sizes {
			end := pos + n
			if end > len(whole) {
				end = len(whole)
			}
			d.Feed([]byte(whole[pos:end]), func(record []byte) {
				got = append(got, string(record))
			})
			pos = end
		}
		if !reflect.DeepEqual(got, records) {
			t.Errorf("chunking %v: got %v, want %v", sizes, got, records)
		}
		if len(d.Stranded()) != 0 {
			t.Errorf("chunking %v: stranded bytes = %q, want none", sizes, d.Stranded())
		}
	}
}

func TestDeframerStrandedBytes(t *testing.T) {
	var d Deframer
	var got []string
	d.Feed([]byte("{\"a\":1}\nstray-no-newline"), func(record []byte) {
		got = append(got, string(record))
	})
	if !reflect.DeepEqual(got, []string{`{"a":1}`}) {
		t.Errorf("got %v, want one record", got)
	}
	if string(d.Stranded()) != "stray-no-newline" {
		t.Errorf("Stranded() = %q, want %q", d.Stranded(), "stray-no-newline")
	}
}

func splitEvery(s string, n int) []int {
	var sizes []int
	for remaining := len(s); remaining > 0; remaining -= n {
		if n < remaining {
			sizes = append(sizes, n)
		} else {
			sizes = append(sizes, remaining)
		}
	}
	return sizes
}
