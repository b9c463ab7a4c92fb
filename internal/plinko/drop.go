package plinko

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DropOutcome is the terminal result of one drop, produced exactly once.
type DropOutcome struct {
	DropID     string    `json:"drop_id"`
	PlayerName string    `json:"player_name"`
	ChipColor  string    `json:"chip_color"`
	SlotIndex  int       `json:"slot_index"`
	Label      string    `json:"label,omitempty"`
	Missed     bool      `json:"missed"`
	Forced     bool      `json:"forced"` // step budget ran out before the chip reached the slots
	Steps      int       `json:"steps"`
	PegHits    int       `json:"peg_hits"`
	FinalX     float64   `json:"final_x"`
	LandedAt   time.Time `json:"landed_at"`
}

// Message renders the outcome the way the board announces it.
func (o DropOutcome) Message() string {
	if o.Missed {
		return fmt.Sprintf("%s missed the slots!", o.PlayerName)
	}
	return fmt.Sprintf("%s landed on: %s", o.PlayerName, o.Label)
}

// ChipState is the falling chip. X/Y locate its top-left corner.
type ChipState struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Diameter float64 `json:"diameter"`
}

// Center returns the chip's center point.
func (c ChipState) Center() Vec2 {
	return Vec2{X: c.X + c.Diameter/2, Y: c.Y + c.Diameter/2}
}

// TickResult is reported to the driver after each tick.
type TickResult struct {
	Step     int     `json:"step"`
	Position Vec2    `json:"position"` // chip center
	VY       float64 `json:"vy"`
	HitPeg   bool    `json:"hit_peg"`
	PegIndex int     `json:"peg_index"`
	Landed   bool    `json:"landed"`
}

// DropSnapshot is a read-only copy of a drop's state.
type DropSnapshot struct {
	ID           string           `json:"id"`
	Status       DropStatus       `json:"status"`
	PlayerName   string           `json:"player_name"`
	ChipColor    string           `json:"chip_color"`
	Chip         ChipState        `json:"chip"`
	Step         int              `json:"step"`
	MaxSteps     int              `json:"max_steps"`
	PegHits      int              `json:"peg_hits"`
	Params       SimulationParams `json:"params"`
	CancelReason string           `json:"cancel_reason,omitempty"`
	Outcome      *DropOutcome     `json:"outcome,omitempty"`
}

// Drop drives one chip from release to landing.
//
// States: IDLE -> FALLING on Release, FALLING -> FALLING on each Tick until the
// landing condition holds, FALLING -> LANDED once. Any non-terminal state can
// be moved to CANCELLED (board resized or rewards reloaded); a cancelled drop
// never produces an outcome and every later call fails with ErrStaleHandle.
type Drop struct {
	id     string
	layout *BoardLayout
	timing Timing
	rng    RandomSource
	sim    *Simulator

	status       DropStatus
	playerName   string
	chipColor    string
	chip         ChipState
	step         int
	maxSteps     int
	pegHits      int
	cancelReason string
	outcome      *DropOutcome

	now func() time.Time
}

// NewDrop creates an idle drop with the chip parked at the top center.
func NewDrop(id string, layout *BoardLayout, timing Timing, rng RandomSource) *Drop {
	if rng == nil {
		rng = DefaultRNG()
	}
	d := layout.ChipDiameter
	return &Drop{
		id:     id,
		layout: layout,
		timing: timing.Normalize(),
		rng:    rng,
		sim:    NewSimulator(layout, timing),
		status: StatusIdle,
		chip:   ChipState{X: layout.Width/2 - d/2, Y: 0, Diameter: d},
		now:    time.Now,
	}
}

func (d *Drop) ID() string { return d.id }
func (d *Drop) Status() DropStatus { return d.status }
func (d *Drop) Layout() *BoardLayout { return d.layout }
func (d *Drop) Chip() ChipState { return d.chip }
func (d *Drop) MaxSteps() int { return d.maxSteps }
func (d *Drop) Params() SimulationParams { return d.sim.Params() }

// Release starts the fall. startX is where the player let go of the chip's center.
func (d *Drop) Release(playerName, chipColor string, startX float64) error {
	switch d.status {
	case StatusCancelled:
		return ErrStaleHandle
	case StatusIdle:
	default:
		return ErrNotIdle
	}
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return ErrMissingPlayer
	}
	if math.IsNaN(startX) {
		startX = d.layout.Width / 2
	}

	dia := d.chip.Diameter
	d.playerName = playerName
	d.chipColor = chipColor
	d.chip.X = ClampChipX(startX-dia/2, dia, d.layout.Width)
	d.chip.Y = 0

	params := d.sim.Reset(d.layout.Width, d.layout.Height, d.rng)
	d.maxSteps = params.TargetSteps * d.timing.OverrunFactor
	d.status = StatusFalling
	return nil
}

// Tick advances the chip by one step and lands it when the chip reaches the
// slot band or the step budget is exhausted.
func (d *Drop) Tick() (TickResult, error) {
	switch d.status {
	case StatusCancelled:
		return TickResult{}, ErrStaleHandle
	case StatusFalling:
	default:
		return TickResult{}, fmt.Errorf("%w: status %s", ErrNotFalling, d.status)
	}

	target := d.sim.Params().TargetSteps
	res := d.sim.Step(d.chip.X, d.chip.Y, d.chip.Diameter, d.step, target)
	d.step++
	d.chip.X = res.X
	d.chip.Y = res.Y
	if res.HitPeg {
		d.pegHits++
	}

	out := TickResult{
		Step:     d.step,
		Position: d.chip.Center(),
		VY:       res.VY,
		HitPeg:   res.HitPeg,
		PegIndex: res.PegIndex,
	}

	reached := d.chip.Y+d.chip.Diameter >= d.layout.SlotBandTop
	if reached || d.step >= d.maxSteps {
		d.land(!reached)
		out.Landed = true
	}
	return out, nil
}

func (d *Drop) land(forced bool) {
	center := d.chip.Center()
	r := Resolve(center.X, d.layout)
	d.outcome = &DropOutcome{
		DropID:     d.id,
		PlayerName: d.playerName,
		ChipColor:  d.chipColor,
		SlotIndex:  r.Index,
		Label:      r.Label,
		Missed:     r.Missed,
		Forced:     forced,
		Steps:      d.step,
		PegHits:    d.pegHits,
		FinalX:     center.X,
		LandedAt:   d.now(),
	}
	d.status = StatusLanded
}

// Outcome returns the result once the drop has landed.
func (d *Drop) Outcome() (DropOutcome, error) {
	switch d.status {
	case StatusCancelled:
		return DropOutcome{}, ErrStaleHandle
	case StatusLanded:
		return *d.outcome, nil
	default:
		return DropOutcome{}, ErrNotLanded
	}
}

// Cancel abandons a drop that has not landed. It reports whether the drop
// was actually cancelled.
func (d *Drop) Cancel(reason string) bool {
	if d.status.Terminal() {
		return false
	}
	d.status = StatusCancelled
	d.cancelReason = reason
	return true
}

// Snapshot copies the drop state for transport or persistence.
func (d *Drop) Snapshot() DropSnapshot {
	snap := DropSnapshot{
		ID:           d.id,
		Status:       d.status,
		PlayerName:   d.playerName,
		ChipColor:    d.chipColor,
		Chip:         d.chip,
		Step:         d.step,
		MaxSteps:     d.maxSteps,
		PegHits:      d.pegHits,
		Params:       d.sim.Params(),
		CancelReason: d.cancelReason,
	}
	if d.outcome != nil {
		o := *d.outcome
		snap.Outcome = &o
	}
	return snap
}
