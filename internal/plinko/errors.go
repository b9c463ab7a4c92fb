package plinko

import "errors"

var (
	// ErrInvalidDimension is returned for a non-positive or non-finite board size.
	ErrInvalidDimension = errors.New("board width and height must be positive")
	// ErrEmptyRewardSet is returned when a layout is requested without labels.
	ErrEmptyRewardSet = errors.New("at least one reward label is required")
	ErrInvalidDensity = errors.New("peg density must be positive")

	// ErrStaleHandle is returned for drops cancelled by a board resize or reload.
	ErrStaleHandle   = errors.New("drop was cancelled by a board change")
	ErrNotIdle       = errors.New("drop already released")
	ErrNotFalling    = errors.New("drop is not falling")
	ErrNotLanded     = errors.New("drop has not landed yet")
	ErrMissingPlayer = errors.New("player name is required")
)
