package game

import "github.com/playmatatu/plinko/internal/plinko"

// EventType names a board or drop event pushed to connected clients
type EventType string

const (
	EventDropStarted   EventType = "drop_started"
	EventDropFrame     EventType = "drop_frame"
	EventDropLanded    EventType = "drop_landed"
	EventDropCancelled EventType = "drop_cancelled"
	EventBoardChanged  EventType = "board_changed"
)

// Event is the payload fanned out to clients watching the board.
type Event struct {
	Type    EventType            `json:"type"`
	DropID  string               `json:"drop_id,omitempty"`
	Drop    *plinko.DropSnapshot `json:"drop,omitempty"`
	Frame   *plinko.TickResult   `json:"frame,omitempty"`
	Outcome *plinko.DropOutcome  `json:"outcome,omitempty"`
	Message string               `json:"message,omitempty"`
	Reason  string               `json:"reason,omitempty"`
	Layout  *plinko.BoardLayout  `json:"layout,omitempty"`
}

// EventPublisher receives events after the manager releases its lock.
type EventPublisher interface {
	Publish(ev Event)
}
