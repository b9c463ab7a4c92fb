package plinko

import (
	"errors"
	"reflect"
	"testing"
)

func standardBoard(t *testing.T) *BoardLayout {
	t.Helper()
	layout, err := GenerateLayout(600, 800, digitLabels(10), LayoutOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return layout
}

func runToLanding(t *testing.T, d *Drop) []TickResult {
	t.Helper()
	var frames []TickResult
	for i := 0; ; i++ {
		if i > d.MaxSteps() {
			t.Fatalf("drop did not land within %d steps", d.MaxSteps())
		}
		res, err := d.Tick()
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		frames = append(frames, res)
		if res.Landed {
			return frames
		}
	}
}

func TestDropFallsStraightWithoutPegs(t *testing.T) {
	layout := standardBoard(t).WithPegs(nil)
	d := NewDrop("straight", layout, DefaultTiming(), NewSeededRNG(42))
	if err := d.Release("Tester", "#ff00de", 300); err != nil {
		t.Fatal(err)
	}
	frames := runToLanding(t, d)
	for _, f := range frames {
		if f.HitPeg {
			t.Fatalf("hit a peg on an empty board")
		}
		if f.Position.X != 300 {
			t.Fatalf("chip drifted to x=%v", f.Position.X)
		}
	}

	out, err := d.Outcome()
	if err != nil {
		t.Fatal(err)
	}
	// x=300 is in the inset gap left of slot 5's band, so it belongs to slot 4
	if out.Missed || out.Label != "4" || out.SlotIndex != 4 {
		t.Errorf("outcome = %+v, want slot 4", out)
	}
	if out.Forced {
		t.Errorf("straight fall should reach the slots before the step budget")
	}
	if out.Message() != "Tester landed on: 4" {
		t.Errorf("message = %q", out.Message())
	}
}

func TestDropReleasedOffBoardIsClamped(t *testing.T) {
	layout := standardBoard(t).WithPegs(nil)
	d := NewDrop("edge", layout, DefaultTiming(), NewSeededRNG(1))
	if err := d.Release("Tester", "red", -50); err != nil {
		t.Fatal(err)
	}
	if x := d.Chip().X; x < 0 {
		t.Fatalf("chip left edge %v outside board", x)
	}
	runToLanding(t, d)
	out, _ := d.Outcome()
	if out.Missed || out.SlotIndex != 0 {
		t.Errorf("outcome = %+v, want slot 0", out)
	}
}

func TestDropReproducibleForSeed(t *testing.T) {
	run := func() ([]TickResult, DropOutcome) {
		d := NewDrop("seeded", standardBoard(t), DefaultTiming(), NewSeededRNG(2024))
		if err := d.Release("Tester", "red", 290); err != nil {
			t.Fatal(err)
		}
		frames := runToLanding(t, d)
		out, err := d.Outcome()
		if err != nil {
			t.Fatal(err)
		}
		return frames, out
	}

	frames1, out1 := run()
	frames2, out2 := run()
	if !reflect.DeepEqual(frames1, frames2) {
		t.Fatalf("trajectories differ for the same seed")
	}
	if out1.SlotIndex != out2.SlotIndex || out1.FinalX != out2.FinalX || out1.PegHits != out2.PegHits {
		t.Errorf("outcomes differ: %+v vs %+v", out1, out2)
	}
}

func TestDropAlwaysTerminates(t *testing.T) {
	layout := standardBoard(t)
	for seed := uint64(0); seed < 200; seed++ {
		d := NewDrop("term", layout, DefaultTiming(), NewSeededRNG(seed))
		if err := d.Release("Tester", "red", float64(seed%600)); err != nil {
			t.Fatal(err)
		}
		frames := runToLanding(t, d)
		if len(frames) > d.MaxSteps() {
			t.Fatalf("seed %d: %d ticks exceed budget %d", seed, len(frames), d.MaxSteps())
		}
		out, err := d.Outcome()
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if !out.Missed && (out.SlotIndex < 0 || out.SlotIndex >= 10) {
			t.Fatalf("seed %d: bad slot %d", seed, out.SlotIndex)
		}
	}
}

func TestDropHitsPegsOnStandardBoard(t *testing.T) {
	layout := standardBoard(t)
	hits := 0
	for seed := uint64(0); seed < 20; seed++ {
		d := NewDrop("hits", layout, DefaultTiming(), NewSeededRNG(seed))
		// centered over a row 0 peg
		if err := d.Release("Tester", "red", layout.Pegs[4].X); err != nil {
			t.Fatal(err)
		}
		runToLanding(t, d)
		out, _ := d.Outcome()
		hits += out.PegHits
	}
	if hits == 0 {
		t.Errorf("chips dropped over a peg never bounced")
	}
}

func TestDropForcedLandingWhenBudgetRunsOut(t *testing.T) {
	layout := standardBoard(t).WithPegs(nil)
	d := NewDrop("forced", layout, Timing{TickRate: 1, MinFall: 1, MaxFall: 1, OverrunFactor: 1}, NewSeededRNG(1))
	if err := d.Release("Tester", "red", 300); err != nil {
		t.Fatal(err)
	}
	res, err := d.Tick()
	if err != nil {
		t.Fatal(err)
	}
	if !res.Landed {
		t.Fatalf("one-step budget should force landing")
	}
	out, _ := d.Outcome()
	if !out.Forced {
		t.Errorf("outcome should be marked forced")
	}
	if _, err := d.Tick(); !errors.Is(err, ErrNotFalling) {
		t.Errorf("tick after landing: got %v, want ErrNotFalling", err)
	}
}

func TestDropStateMachine(t *testing.T) {
	layout := standardBoard(t)
	d := NewDrop("sm", layout, DefaultTiming(), NewSeededRNG(1))

	if d.Status() != StatusIdle {
		t.Fatalf("new drop status = %s", d.Status())
	}
	if _, err := d.Tick(); !errors.Is(err, ErrNotFalling) {
		t.Errorf("tick while idle: %v", err)
	}
	if _, err := d.Outcome(); !errors.Is(err, ErrNotLanded) {
		t.Errorf("outcome while idle: %v", err)
	}
	if err := d.Release("   ", "red", 300); !errors.Is(err, ErrMissingPlayer) {
		t.Errorf("blank player: %v", err)
	}
	if err := d.Release("Tester", "red", 300); err != nil {
		t.Fatal(err)
	}
	if err := d.Release("Tester", "red", 300); !errors.Is(err, ErrNotIdle) {
		t.Errorf("double release: %v", err)
	}
	if d.MaxSteps() != d.Params().TargetSteps*DefaultOverrunFactor {
		t.Errorf("max steps = %d for target %d", d.MaxSteps(), d.Params().TargetSteps)
	}
}

func TestDropCancelIsTerminal(t *testing.T) {
	layout := standardBoard(t)
	d := NewDrop("cancel", layout, DefaultTiming(), NewSeededRNG(1))
	if err := d.Release("Tester", "red", 300); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Tick(); err != nil {
		t.Fatal(err)
	}
	if !d.Cancel("board resized") {
		t.Fatalf("cancel of falling drop should succeed")
	}
	if _, err := d.Tick(); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("tick after cancel: %v", err)
	}
	if _, err := d.Outcome(); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("outcome after cancel: %v", err)
	}
	if d.Cancel("again") {
		t.Errorf("second cancel should be a no-op")
	}
	snap := d.Snapshot()
	if snap.Status != StatusCancelled || snap.CancelReason != "board resized" || snap.Outcome != nil {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestLandedDropCannotBeCancelled(t *testing.T) {
	layout := standardBoard(t).WithPegs(nil)
	d := NewDrop("landed", layout, DefaultTiming(), NewSeededRNG(1))
	_ = d.Release("Tester", "red", 100)
	runToLanding(t, d)
	if d.Cancel("late resize") {
		t.Errorf("landed drop must keep its outcome")
	}
	if _, err := d.Outcome(); err != nil {
		t.Errorf("outcome lost: %v", err)
	}
}

func TestMissedMessage(t *testing.T) {
	o := DropOutcome{PlayerName: "Tester", Missed: true}
	if o.Message() != "Tester missed the slots!" {
		t.Errorf("message = %q", o.Message())
	}
}
