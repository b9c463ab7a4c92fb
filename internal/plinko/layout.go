package plinko

import (
	"fmt"
	"math"
)

// Peg is a fixed circular obstacle. Row and Col come from generation order.
type Peg struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Row    int     `json:"row"`
	Col    int     `json:"col"`
}

// Center returns the peg center as a vector.
func (p Peg) Center() Vec2 {
	return Vec2{X: p.X, Y: p.Y}
}

// Slot is one reward band at the bottom of the board.
// XStart/Width describe the drawn band; resolution uses the layout pitch.
type Slot struct {
	Index  int     `json:"index"`
	Label  string  `json:"label"`
	XStart float64 `json:"x_start"`
	Width  float64 `json:"width"`
}

// BoardLayout holds the complete board geometry for one size and label set.
// It is never mutated after GenerateLayout returns, so concurrent drops can share it.
type BoardLayout struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Pegs         []Peg   `json:"pegs"`
	Slots        []Slot  `json:"slots"`
	SlotOrigin   float64 `json:"slot_origin"`
	SlotPitch    float64 `json:"slot_pitch"`
	SlotHeight   float64 `json:"slot_height"`
	SlotBandTop  float64 `json:"slot_band_top"`
	ChipDiameter float64 `json:"chip_diameter"`
	PegDensity   float64 `json:"peg_density"`
}

// LayoutOptions tunes layout generation. Zero values select the defaults.
type LayoutOptions struct {
	// PegDensity is k in pegDiameter = min(spacingX, spacingY) / k.
	PegDensity float64
	// SlotInsetRatio is the fraction of the slot pitch left blank on each side.
	SlotInsetRatio float64
}

func (o LayoutOptions) withDefaults() LayoutOptions {
	if o.PegDensity == 0 {
		o.PegDensity = DefaultPegDensity
	}
	if o.SlotInsetRatio == 0 {
		o.SlotInsetRatio = DefaultSlotInsetRatio
	}
	return o
}

// Labels returns the slot labels in order.
func (l *BoardLayout) Labels() []string {
	labels := make([]string, len(l.Slots))
	for i, s := range l.Slots {
		labels[i] = s.Label
	}
	return labels
}

// WithPegs returns a copy of the layout carrying a different peg set.
// plinko-sim uses it to replay drops against a custom obstacle field.
func (l *BoardLayout) WithPegs(pegs []Peg) *BoardLayout {
	cp := *l
	cp.Pegs = append([]Peg(nil), pegs...)
	cp.Slots = append([]Slot(nil), l.Slots...)
	return &cp
}

// GenerateLayout builds peg and slot geometry for a board of the given size.
// The peg grid is always PegRows x PegCols; only spacing scales with the board.
func GenerateLayout(width, height float64, labels []string, opts LayoutOptions) (*BoardLayout, error) {
	if !positiveFinite(width) || !positiveFinite(height) {
		return nil, fmt.Errorf("%w: got %vx%v", ErrInvalidDimension, width, height)
	}
	if len(labels) == 0 {
		return nil, ErrEmptyRewardSet
	}
	opts = opts.withDefaults()
	if !positiveFinite(opts.PegDensity) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidDensity, opts.PegDensity)
	}

	spacingX := width / PegCols
	spacingY := height / RowDivisions
	radius := math.Min(spacingX, spacingY) / opts.PegDensity / 2
	margin := spacingX / 4

	pegs := make([]Peg, 0, PegRows*PegCols)
	for row := 0; row < PegRows; row++ {
		stagger := 0.0
		if row%2 == 0 {
			stagger = spacingX / 2
		}
		for col := 0; col < PegCols; col++ {
			pegs = append(pegs, Peg{
				X:      margin + float64(col)*spacingX + stagger,
				Y:      float64(row+1) * spacingY,
				Radius: radius,
				Row:    row,
				Col:    col,
			})
		}
	}

	pitch := width / float64(len(labels))
	inset := pitch * opts.SlotInsetRatio
	slots := make([]Slot, len(labels))
	for i, label := range labels {
		slots[i] = Slot{
			Index:  i,
			Label:  label,
			XStart: float64(i)*pitch + inset,
			Width:  pitch - 2*inset,
		}
	}

	slotHeight := spacingY
	return &BoardLayout{
		Width:        width,
		Height:       height,
		Pegs:         pegs,
		Slots:        slots,
		SlotOrigin:   inset,
		SlotPitch:    pitch,
		SlotHeight:   slotHeight,
		SlotBandTop:  height - slotHeight*SlotBandFactor,
		ChipDiameter: math.Min(width/ChipDiameterDivisor, MaxChipDiameter),
		PegDensity:   opts.PegDensity,
	}, nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
