package plinko

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"testing"
)

func digitLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = strconv.Itoa(i)
	}
	return labels
}

func TestGenerateLayoutCounts(t *testing.T) {
	sizes := [][2]float64{{600, 800}, {1200, 1600}, {1, 1}, {37.5, 9000}, {580, 780}}
	for _, size := range sizes {
		for _, n := range []int{1, 3, 10, 25} {
			layout, err := GenerateLayout(size[0], size[1], digitLabels(n), LayoutOptions{})
			if err != nil {
				t.Fatalf("GenerateLayout(%v, %v, %d labels): %v", size[0], size[1], n, err)
			}
			if len(layout.Pegs) != PegRows*PegCols {
				t.Errorf("size %v: got %d pegs, want %d", size, len(layout.Pegs), PegRows*PegCols)
			}
			if len(layout.Slots) != n {
				t.Errorf("size %v: got %d slots, want %d", size, len(layout.Slots), n)
			}
		}
	}
}

func TestGenerateLayoutDeterministic(t *testing.T) {
	a, err := GenerateLayout(600, 800, digitLabels(10), LayoutOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		b, err := GenerateLayout(600, 800, digitLabels(10), LayoutOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("layout differs on regeneration %d", i)
		}
	}
}

func TestGenerateLayoutRejectsBadInput(t *testing.T) {
	cases := []struct {
		name   string
		w, h   float64
		labels []string
		opts   LayoutOptions
		want   error
	}{
		{"zero width", 0, 800, digitLabels(3), LayoutOptions{}, ErrInvalidDimension},
		{"negative height", 600, -1, digitLabels(3), LayoutOptions{}, ErrInvalidDimension},
		{"nan width", math.NaN(), 800, digitLabels(3), LayoutOptions{}, ErrInvalidDimension},
		{"infinite height", 600, math.Inf(1), digitLabels(3), LayoutOptions{}, ErrInvalidDimension},
		{"no labels", 600, 800, nil, LayoutOptions{}, ErrEmptyRewardSet},
		{"negative density", 600, 800, digitLabels(3), LayoutOptions{PegDensity: -2}, ErrInvalidDensity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout, err := GenerateLayout(tc.w, tc.h, tc.labels, tc.opts)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got err %v, want %v", err, tc.want)
			}
			if layout != nil {
				t.Fatalf("expected nil layout on error")
			}
		})
	}
}

func TestGenerateLayoutGeometry(t *testing.T) {
	layout, err := GenerateLayout(600, 800, digitLabels(10), LayoutOptions{})
	if err != nil {
		t.Fatal(err)
	}

	// rows are staggered by half the horizontal spacing
	if d := layout.Pegs[0].X - layout.Pegs[PegCols].X; d != 30 {
		t.Errorf("row 0 vs row 1 offset = %v, want 30", d)
	}
	for i, p := range layout.Pegs {
		if p.Row != i/PegCols || p.Col != i%PegCols {
			t.Errorf("peg %d has row/col %d/%d", i, p.Row, p.Col)
		}
		if p.X <= 0 || p.X >= layout.Width {
			t.Errorf("peg %d x=%v outside board", i, p.X)
		}
		if p.Y >= layout.SlotBandTop {
			t.Errorf("peg %d y=%v inside slot band", i, p.Y)
		}
	}
	// min(60, 66.67) / 6 / 2
	if r := layout.Pegs[0].Radius; r != 5 {
		t.Errorf("peg radius = %v, want 5", r)
	}
	if layout.ChipDiameter != 30 {
		t.Errorf("chip diameter = %v, want 30", layout.ChipDiameter)
	}
	if layout.SlotPitch != 60 {
		t.Errorf("slot pitch = %v, want 60", layout.SlotPitch)
	}
	for i, s := range layout.Slots {
		lo := float64(i) * layout.SlotPitch
		if s.XStart <= lo || s.XStart+s.Width >= lo+layout.SlotPitch {
			t.Errorf("slot %d [%v,%v) not inset inside its pitch", i, s.XStart, s.XStart+s.Width)
		}
	}
	wantBand := 800 - (800.0/12)*1.2
	if math.Abs(layout.SlotBandTop-wantBand) > 1e-9 {
		t.Errorf("slot band top = %v, want %v", layout.SlotBandTop, wantBand)
	}
}

func TestGenerateLayoutDensityScalesPegs(t *testing.T) {
	sparse, _ := GenerateLayout(600, 800, digitLabels(2), LayoutOptions{PegDensity: 12})
	dense, _ := GenerateLayout(600, 800, digitLabels(2), LayoutOptions{PegDensity: 3})
	if sparse.Pegs[0].Radius >= dense.Pegs[0].Radius {
		t.Errorf("higher k should shrink pegs: k=12 r=%v, k=3 r=%v", sparse.Pegs[0].Radius, dense.Pegs[0].Radius)
	}
}

func TestDuplicateLabelsAllowed(t *testing.T) {
	layout, err := GenerateLayout(600, 800, []string{"x", "x", "x"}, LayoutOptions{})
	if err != nil {
		t.Fatalf("duplicate labels rejected: %v", err)
	}
	if got := layout.Labels(); !reflect.DeepEqual(got, []string{"x", "x", "x"}) {
		t.Errorf("labels = %v", got)
	}
}

func TestSlotOriginIsFirstBandEdge(t *testing.T) {
	layout, _ := GenerateLayout(600, 800, digitLabels(10), LayoutOptions{})
	if layout.SlotOrigin != layout.Slots[0].XStart {
		t.Errorf("slot origin %v, first band starts at %v", layout.SlotOrigin, layout.Slots[0].XStart)
	}
	if math.Abs(layout.SlotOrigin-2.1) > 1e-9 {
		t.Errorf("slot origin = %v, want inset 2.1", layout.SlotOrigin)
	}
}

func TestWithPegsLeavesOriginalUntouched(t *testing.T) {
	layout, _ := GenerateLayout(600, 800, digitLabels(10), LayoutOptions{})
	custom := layout.WithPegs([]Peg{{X: 300, Y: 200, Radius: 5}})
	if len(custom.Pegs) != 1 || len(layout.Pegs) != 80 {
		t.Errorf("pegs: custom %d, original %d", len(custom.Pegs), len(layout.Pegs))
	}
	custom.Slots[0].Label = "changed"
	if layout.Slots[0].Label != "0" {
		t.Errorf("slots shared with the original layout")
	}
}
