package plinko

import (
	"math"
	"testing"
)

// Helper to create a narrow board with a hand-placed peg field.
func setupPegField(pegs ...Peg) *BoardLayout {
	layout, err := GenerateLayout(300, 600, []string{"a", "b", "c"}, LayoutOptions{})
	if err != nil {
		panic(err)
	}
	return layout.WithPegs(pegs)
}

func TestResetParamRanges(t *testing.T) {
	layout := setupPegField()
	for seed := uint64(0); seed < 500; seed++ {
		for _, h := range []float64{1, 100, 800, 1600, 1e6} {
			sim := NewSimulator(layout, DefaultTiming())
			p := sim.Reset(layout.Width, h, NewSeededRNG(seed))
			if p.TargetSteps < 180 || p.TargetSteps > 600 {
				t.Fatalf("seed %d: target steps %d outside [180,600]", seed, p.TargetSteps)
			}
			if p.Gravity < MinGravity || p.Gravity > MaxGravity {
				t.Fatalf("seed %d h=%v: gravity %v outside clamp", seed, h, p.Gravity)
			}
			if p.BounceEnergy < MinBounceEnergy || p.BounceEnergy > MaxBounceEnergy {
				t.Fatalf("seed %d: bounce energy %v out of range", seed, p.BounceEnergy)
			}
			if math.Abs(p.Spin) > MaxSpin || math.Abs(p.AngleBias) > MaxAngleBias {
				t.Fatalf("seed %d: spin %v / bias %v out of range", seed, p.Spin, p.AngleBias)
			}
			if sim.LastHitRow() != NoRow || sim.VY() != 0 {
				t.Fatalf("reset left stale state")
			}
		}
	}
}

func TestResetGravityBackSolved(t *testing.T) {
	layout := setupPegField()
	sim := NewSimulator(layout, DefaultTiming())
	// tall enough board that the unclamped value is inside [0.15, 1.5]
	p := sim.Reset(layout.Width, 60000, NewSeededRNG(7))
	want := 2 * 60000 / float64(p.TargetSteps*p.TargetSteps)
	if want >= MinGravity && want <= MaxGravity && p.Gravity != want {
		t.Errorf("gravity = %v, want %v", p.Gravity, want)
	}
}

func TestSeedsChangeTargetSteps(t *testing.T) {
	layout := setupPegField()
	seen := map[int]bool{}
	for seed := uint64(1); seed <= 50; seed++ {
		p := NewSimulator(layout, DefaultTiming()).Reset(layout.Width, layout.Height, NewSeededRNG(seed))
		if p.TargetSteps < 180 || p.TargetSteps > 600 {
			t.Fatalf("seed %d: target steps %d", seed, p.TargetSteps)
		}
		seen[p.TargetSteps] = true
	}
	if len(seen) < 2 {
		t.Errorf("different seeds should draw different target steps, got %v", seen)
	}
}

func TestTimingScalesTargetSteps(t *testing.T) {
	layout := setupPegField()
	timing := Timing{TickRate: 30}
	for seed := uint64(0); seed < 100; seed++ {
		p := NewSimulator(layout, timing).Reset(layout.Width, layout.Height, NewSeededRNG(seed))
		if p.TargetSteps < 90 || p.TargetSteps > 300 {
			t.Fatalf("30 Hz: target steps %d outside [90,300]", p.TargetSteps)
		}
	}
}

func TestStepBouncesUpOffPeg(t *testing.T) {
	layout := setupPegField(Peg{X: 105, Y: 100, Radius: 5, Row: 0})
	sim := NewSimulator(layout, DefaultTiming())
	sim.Reset(layout.Width, layout.Height, NewSeededRNG(3))

	// chip center (105, 95) overlaps the peg
	res := sim.Step(100, 90, 10, 0, 300)
	if !res.HitPeg || res.PegIndex != 0 {
		t.Fatalf("expected a hit on peg 0, got %+v", res)
	}
	if res.VY >= 0 {
		t.Errorf("bounce should leave the chip moving up, vy=%v", res.VY)
	}
	if dx := math.Abs(res.X - 100); dx < MinBounceDX-MaxSpin*SpinJitter-MaxAngleBias {
		t.Errorf("bounce moved chip only %v horizontally", dx)
	}
	if sim.LastHitRow() != 0 {
		t.Errorf("last hit row = %d, want 0", sim.LastHitRow())
	}
}

func TestStepSuppressesSameRow(t *testing.T) {
	layout := setupPegField(
		Peg{X: 105, Y: 100, Radius: 5, Row: 2},
		Peg{X: 106, Y: 100, Radius: 5, Row: 2},
		Peg{X: 105, Y: 101, Radius: 5, Row: 3},
	)
	sim := NewSimulator(layout, DefaultTiming())
	sim.Reset(layout.Width, layout.Height, NewSeededRNG(11))

	first := sim.Step(100, 90, 10, 0, 300)
	if first.PegIndex != 0 {
		t.Fatalf("first match should win, got peg %d", first.PegIndex)
	}
	// same position again: row 2 is suppressed, row 3 still bounces
	second := sim.Step(100, 90, 10, 1, 300)
	if second.PegIndex != 2 {
		t.Fatalf("expected row 3 peg to bounce, got %+v", second)
	}
	// and now row 2 is eligible again
	third := sim.Step(100, 90, 10, 2, 300)
	if third.PegIndex != 0 {
		t.Fatalf("expected row 2 peg to bounce again, got %+v", third)
	}
}

func TestStepGravityWithoutPegs(t *testing.T) {
	layout := setupPegField()
	sim := NewSimulator(layout, DefaultTiming())
	p := sim.Reset(layout.Width, layout.Height, NewSeededRNG(5))

	res := sim.Step(140, 0, 10, 0, 300)
	if res.HitPeg {
		t.Fatalf("no pegs, no hit")
	}
	if res.X != 140 {
		t.Errorf("x drifted to %v", res.X)
	}
	if res.VY != p.Gravity || res.Y != p.Gravity {
		t.Errorf("first step should fall by gravity: y=%v vy=%v g=%v", res.Y, res.VY, p.Gravity)
	}
}

func TestStepDampingNearLanding(t *testing.T) {
	layout := setupPegField()
	a := NewSimulator(layout, DefaultTiming())
	b := NewSimulator(layout, DefaultTiming())
	a.Reset(layout.Width, layout.Height, NewSeededRNG(9))
	b.Reset(layout.Width, layout.Height, NewSeededRNG(9))

	early := a.Step(140, 0, 10, 10, 100)
	late := b.Step(140, 0, 10, 71, 100)
	if late.VY >= early.VY {
		t.Errorf("damped vy %v should be below undamped %v", late.VY, early.VY)
	}
	if math.Abs(late.VY-early.VY*DampingFactor) > 1e-12 {
		t.Errorf("damping factor not applied: %v vs %v", late.VY, early.VY)
	}
}

func TestClampChipX(t *testing.T) {
	cases := []struct {
		x, want float64
	}{
		{-50, 15},  // clamped to 0 then nudged
		{10, 25},   // inside left margin
		{300, 300}, // untouched
		{590, 555}, // clamped to 570 then nudged
		{545, 530}, // inside right margin
	}
	for _, tc := range cases {
		if got := ClampChipX(tc.x, 30, 600); got != tc.want {
			t.Errorf("ClampChipX(%v) = %v, want %v", tc.x, got, tc.want)
		}
	}
}
