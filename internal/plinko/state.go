package plinko

// DropStatus represents the lifecycle state of a single drop
type DropStatus string

const (
	StatusIdle      DropStatus = "IDLE"
	StatusFalling   DropStatus = "FALLING"
	StatusLanded    DropStatus = "LANDED"
	StatusCancelled DropStatus = "CANCELLED"
)

// Terminal reports whether no further transition is possible.
func (s DropStatus) Terminal() bool {
	return s == StatusLanded || s == StatusCancelled
}
