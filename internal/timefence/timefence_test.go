package timefence

import "testing"

func TestAccept(t *testing.T) {
	cases := []struct {
		name         string
		f            Fence
		first, last  int64
		wantAccepted bool
	}{
		{"no fence", Fence{}, 10, 20, true},
		{"overlap accepted within window", Fence{After: 100, Before: 200}, 150, 180, true},
		{"overlap rejected before window", Fence{After: 100, Before: 200}, 50, 90, false},
		{"overlap accepted spanning window", Fence{After: 100, Before: 200}, 50, 250, true},
		{"strict rejected when interval extends past before", Fence{After: 100, Before: 200, Complete: true}, 150, 250, false},
		{"strict accepted when interval fully inside", Fence{After: 100, Before: 200, Complete: true}, 150, 180, true},
		{"strict rejected when first precedes after", Fence{After: 100, Complete: true}, 50, 150, false},
		{"overlap after only accepted", Fence{After: 100}, 50, 150, true},
		{"overlap after only rejected", Fence{After: 100}, 10, 50, false},
		{"overlap before only accepted", Fence{Before: 200}, 150, 400, true},
		{"overlap before only rejected", Fence{Before: 200}, 250, 400, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, reason := Accept(c.f, c.first, c.last)
			if got != c.wantAccepted {
				t.Errorf("Accept(%+v, %d, %d) = %v (%s), want %v", c.f, c.first, c.last, got, reason, c.wantAccepted)
			}
		})
	}
}
