package plinko

import "math"

// SimulationParams are the per-drop constants drawn once by Reset.
type SimulationParams struct {
	TargetSteps  int     `json:"target_steps"`
	Gravity      float64 `json:"gravity"`
	BounceEnergy float64 `json:"bounce_energy"`
	Spin         float64 `json:"spin"`
	AngleBias    float64 `json:"angle_bias"`
}

// StepResult is the chip state after one tick.
type StepResult struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VY       float64 `json:"vy"`
	HitPeg   bool    `json:"hit_peg"`
	PegIndex int     `json:"peg_index"` // -1 when no peg was struck
}

// Simulator advances one chip through the peg field. It is pseudo-physical:
// a peg hit kicks the chip sideways and upward, gravity pulls it back down.
// One Simulator belongs to exactly one drop and is not safe for concurrent use.
type Simulator struct {
	pegs        []Peg
	boardWidth  float64
	boardHeight float64
	timing      Timing
	rng         RandomSource
	params      SimulationParams

	vy         float64
	lastHitRow int
}

// NewSimulator creates a simulator over the layout's pegs.
func NewSimulator(layout *BoardLayout, timing Timing) *Simulator {
	return &Simulator{
		pegs:        layout.Pegs,
		boardWidth:  layout.Width,
		boardHeight: layout.Height,
		timing:      timing.Normalize(),
		lastHitRow:  NoRow,
	}
}

// Reset draws fresh parameters for a new drop.
// Gravity is back-solved so that n steps of accumulated fall cover the board:
// gravity * n^2 / 2 ~= boardHeight.
func (s *Simulator) Reset(boardWidth, boardHeight float64, rng RandomSource) SimulationParams {
	if rng == nil {
		rng = DefaultRNG()
	}
	s.rng = rng
	s.boardWidth = boardWidth
	s.boardHeight = boardHeight

	target := uniformInt(rng, s.timing.MinSteps(), s.timing.MaxSteps())
	gravity := 2 * boardHeight / float64(target*target)

	s.params = SimulationParams{
		TargetSteps:  target,
		Gravity:      clamp(gravity, MinGravity, MaxGravity),
		BounceEnergy: uniform(rng, MinBounceEnergy, MaxBounceEnergy),
		Spin:         uniform(rng, -MaxSpin, MaxSpin),
		AngleBias:    uniform(rng, -MaxAngleBias, MaxAngleBias),
	}
	s.vy = 0
	s.lastHitRow = NoRow
	return s.params
}

func (s *Simulator) Params() SimulationParams { return s.params }

// VY returns the current vertical velocity (positive is down).
func (s *Simulator) VY() float64 { return s.vy }

// LastHitRow returns the row of the most recent bounce, or NoRow.
func (s *Simulator) LastHitRow() int { return s.lastHitRow }

// Step advances the chip by one tick. chipX/chipY are the chip's top-left corner.
// Only the first colliding peg (in generation order) on a row other than the
// last bounced row is honored per tick.
func (s *Simulator) Step(chipX, chipY, chipDiameter float64, stepIndex, maxSteps int) StepResult {
	if s.rng == nil {
		s.Reset(s.boardWidth, s.boardHeight, nil)
	}
	res := StepResult{PegIndex: -1}
	half := chipDiameter / 2
	center := Vec2{X: chipX + half, Y: chipY + half}

	for i, p := range s.pegs {
		if center.DistanceTo(p.Center()) >= p.Radius+half {
			continue
		}
		if p.Row == s.lastHitRow {
			continue
		}
		dir := coinFlip(s.rng)
		bias := s.params.AngleBias + s.params.Spin*uniform(s.rng, -SpinJitter, SpinJitter)
		chipX += dir*uniform(s.rng, MinBounceDX, MaxBounceDX) + bias
		chipX = s.keepInside(chipX, chipDiameter)

		s.vy = -uniform(s.rng, MinBounceVY, MaxBounceVY) * s.params.BounceEnergy
		s.lastHitRow = p.Row
		res.HitPeg = true
		res.PegIndex = i
		break
	}

	// gravity applies on bounce ticks too
	s.vy += s.params.Gravity
	chipY += s.vy

	chipX = s.keepInside(chipX, chipDiameter)

	if float64(stepIndex) > float64(maxSteps)*DampingStart {
		s.vy *= DampingFactor
	}

	res.X = chipX
	res.Y = chipY
	res.VY = s.vy
	return res
}

// keepInside clamps x to the board and nudges the chip off the walls
// so it cannot stick along an edge.
func (s *Simulator) keepInside(x, d float64) float64 {
	return ClampChipX(x, d, s.boardWidth)
}

// ClampChipX clamps a chip's left edge into [0, boardWidth-d] and nudges it
// inward by half a diameter when within one diameter of either wall.
func ClampChipX(x, d, boardWidth float64) float64 {
	x = clamp(x, 0, math.Max(0, boardWidth-d))
	if x < d {
		x += d * 0.5
	} else if x > boardWidth-2*d {
		x -= d * 0.5
	}
	return x
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
