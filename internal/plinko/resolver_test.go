package plinko

import (
	"math"
	"testing"
)

func TestResolveInsideSlots(t *testing.T) {
	layout, _ := GenerateLayout(600, 800, digitLabels(10), LayoutOptions{})
	cases := []struct {
		x    float64
		want string
	}{
		{2.1, "0"}, // slot 0 band starts at the inset
		{61, "0"},
		{62.1, "1"},
		{300, "4"},
		{302.1, "5"},
		{599.99, "9"},
	}
	for _, tc := range cases {
		r := Resolve(tc.x+1e-9, layout)
		if r.Missed || r.Label != tc.want {
			t.Errorf("Resolve(%v) = %+v, want label %q", tc.x, r, tc.want)
		}
	}
}

func TestResolveIsTotal(t *testing.T) {
	layout, _ := GenerateLayout(600, 800, digitLabels(10), LayoutOptions{})
	for _, x := range []float64{-0.001, 0, 1, 2.09, -1e300, 602.1, 1e300, math.NaN(), math.Inf(1), math.Inf(-1)} {
		r := Resolve(x, layout)
		if !r.Missed || r.Index != -1 {
			t.Errorf("Resolve(%v) = %+v, want missed", x, r)
		}
	}
	if r := Resolve(10, nil); !r.Missed {
		t.Errorf("nil layout should resolve to missed")
	}
}

func TestResolveBoundariesMatchDrawnSlots(t *testing.T) {
	for _, n := range []int{1, 3, 7, 10} {
		layout, err := GenerateLayout(600, 800, digitLabels(n), LayoutOptions{})
		if err != nil {
			t.Fatal(err)
		}
		for _, s := range layout.Slots {
			if r := Resolve(s.XStart, layout); r.Missed || r.Index != s.Index {
				t.Errorf("%d slots: Resolve(XStart=%v) = %+v, want slot %d", n, s.XStart, r, s.Index)
			}
			if s.Index == 0 {
				continue
			}
			if r := Resolve(s.XStart-0.01, layout); r.Index != s.Index-1 {
				t.Errorf("%d slots: just left of slot %d resolved to %+v", n, s.Index, r)
			}
		}
	}
}
