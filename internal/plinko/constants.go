package plinko

import "time"

// Board and physics constants for the plinko board.
// The ranges are mirrored by the browser client's debug overlay; change both together.

const (
	PegRows      = 8
	PegCols      = 10
	RowDivisions = 12 // vertical spacing = height / RowDivisions
	NoRow        = -1

	DefaultPegDensity     = 6.0
	DefaultSlotInsetRatio = 0.035
	SlotBandFactor        = 1.2
	MaxChipDiameter       = 30.0
	ChipDiameterDivisor   = 20.0

	MinGravity      = 0.15
	MaxGravity      = 1.5
	MinBounceEnergy = 0.5
	MaxBounceEnergy = 1.2
	MaxSpin         = 2.0
	MaxAngleBias    = 3.0

	MinBounceDX   = 18.0
	MaxBounceDX   = 32.0
	MinBounceVY   = 18.0
	MaxBounceVY   = 40.0
	SpinJitter    = 0.5
	DampingStart  = 0.7
	DampingFactor = 0.98

	DefaultTickRate      = 60
	DefaultMinFall       = 3 * time.Second
	DefaultMaxFall       = 10 * time.Second
	DefaultOverrunFactor = 2
)
