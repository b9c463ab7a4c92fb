package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/plinko/internal/config"
	"github.com/playmatatu/plinko/internal/plinko"
	"github.com/redis/go-redis/v9"
)

var (
	ErrUnknownHandle = errors.New("unknown drop handle")
	ErrTooManyDrops  = errors.New("too many drops in flight")
)

// BoardManager owns the current board layout and every drop played on it.
//
// The layout is replaced wholesale on resize or reward reload; drops still
// falling at that moment are cancelled and reported, never resolved against
// the new board. Finished drops stay addressable until the retention window
// passes so late ticks get a defined error instead of a stray outcome.
type BoardManager struct {
	layout     *plinko.BoardLayout
	layoutOpts plinko.LayoutOptions
	timing     plinko.Timing
	generation int

	drops     map[string]*dropEntry // keyed by drop handle
	history   []plinko.DropOutcome  // newest first, for deployments without redis/db
	maxActive int
	maxRecent int
	retention time.Duration

	rdb        *redis.Client
	db         *sqlx.DB
	publishers []EventPublisher
	now        func() time.Time
	mu         sync.RWMutex
}

type dropEntry struct {
	drop       *plinko.Drop
	seed       *uint64
	auto       bool
	generation int
	finishedAt time.Time
}

// DropRequest is a player's release of a chip.
type DropRequest struct {
	PlayerName string   `json:"player_name"`
	ChipColor  string   `json:"chip_color"`
	StartX     *float64 `json:"start_x,omitempty"` // chip center; board center when omitted
	Seed       *uint64  `json:"seed,omitempty"`    // replay a specific trajectory
	Auto       bool     `json:"auto"`              // let the drop runner tick it
}

var (
	// Global board manager instance
	Manager *BoardManager
)

// InitializeManager initializes the global board manager with Redis, DB and config
func InitializeManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) error {
	m, err := NewBoardManager(db, rdb, cfg)
	if err != nil {
		return err
	}
	Manager = m
	return nil
}

// NewBoardManager creates a manager with the configured board size and rewards.
func NewBoardManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) (*BoardManager, error) {
	opts := plinko.LayoutOptions{PegDensity: cfg.PegDensity}
	layout, err := plinko.GenerateLayout(cfg.BoardWidth, cfg.BoardHeight, cfg.RewardLabels, opts)
	if err != nil {
		return nil, fmt.Errorf("initial board: %w", err)
	}
	maxActive := cfg.MaxActiveDrops
	if maxActive <= 0 {
		maxActive = 1
	}
	return &BoardManager{
		layout:     layout,
		layoutOpts: opts,
		timing: plinko.Timing{
			TickRate:      cfg.TickRate,
			MinFall:       cfg.MinFall(),
			MaxFall:       cfg.MaxFall(),
			OverrunFactor: cfg.OverrunFactor,
		}.Normalize(),
		drops:     make(map[string]*dropEntry),
		maxActive: maxActive,
		maxRecent: cfg.OutcomeHistorySize,
		retention: cfg.DropRetention(),
		rdb:       rdb,
		db:        db,
		now:       time.Now,
	}, nil
}

// AddPublisher registers a sink for board and drop events.
func (bm *BoardManager) AddPublisher(p EventPublisher) {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	bm.publishers = append(bm.publishers, p)
}

// Timing returns the tick contract drops on this board are built for.
func (bm *BoardManager) Timing() plinko.Timing {
	return bm.timing
}

// Layout returns the current board layout. The layout is immutable.
func (bm *BoardManager) Layout() *plinko.BoardLayout {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	return bm.layout
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// generateDropID generates a unique drop handle
func generateDropID() string {
	return "drop_" + generateToken(8)
}

// Resize regenerates the layout for a new board size. In-flight drops are
// cancelled; their handles are returned.
func (bm *BoardManager) Resize(width, height float64) ([]string, error) {
	return bm.replaceLayout("board resized", func(cur *plinko.BoardLayout) (float64, float64, []string) {
		return width, height, cur.Labels()
	})
}

// ReloadRewards regenerates the layout for a new reward set, cancelling in-flight drops.
func (bm *BoardManager) ReloadRewards(labels []string) ([]string, error) {
	return bm.replaceLayout("rewards reloaded", func(cur *plinko.BoardLayout) (float64, float64, []string) {
		return cur.Width, cur.Height, labels
	})
}

// replaceLayout derives the next board from the current one under the write
// lock, so concurrent resizes and reloads never undo each other.
func (bm *BoardManager) replaceLayout(reason string, next func(cur *plinko.BoardLayout) (float64, float64, []string)) ([]string, error) {
	bm.mu.Lock()
	width, height, labels := next(bm.layout)
	layout, err := plinko.GenerateLayout(width, height, labels, bm.layoutOpts)
	if err != nil {
		bm.mu.Unlock()
		return nil, err
	}

	bm.layout = layout
	bm.generation++
	var cancelled []string
	var events []Event
	now := bm.now()
	for id, e := range bm.drops {
		if !e.drop.Cancel(reason) {
			continue
		}
		e.finishedAt = now
		cancelled = append(cancelled, id)
		snap := e.drop.Snapshot()
		events = append(events, Event{Type: EventDropCancelled, DropID: id, Drop: &snap, Reason: reason})
	}
	events = append(events, Event{Type: EventBoardChanged, Layout: layout, Reason: reason})
	publishers := bm.publishers
	bm.mu.Unlock()

	log.Printf("[BOARD] Layout regenerated (%s): %vx%v, %d slots, %d drops cancelled", reason, width, height, len(labels), len(cancelled))
	for _, id := range cancelled {
		bm.saveDropToRedis(id)
	}
	bm.emit(publishers, events)
	return cancelled, nil
}

// StartDrop creates and releases a new drop on the current board.
func (bm *BoardManager) StartDrop(req DropRequest) (string, error) {
	bm.mu.Lock()

	active := 0
	for _, e := range bm.drops {
		if e.drop.Status() == plinko.StatusFalling {
			active++
		}
	}
	if active >= bm.maxActive {
		bm.mu.Unlock()
		return "", fmt.Errorf("%w: %d of %d", ErrTooManyDrops, active, bm.maxActive)
	}

	var rng plinko.RandomSource
	if req.Seed != nil {
		rng = plinko.NewSeededRNG(*req.Seed)
	} else {
		rng = plinko.DefaultRNG()
	}
	startX := bm.layout.Width / 2
	if req.StartX != nil {
		startX = *req.StartX
	}

	id := generateDropID()
	drop := plinko.NewDrop(id, bm.layout, bm.timing, rng)
	if err := drop.Release(req.PlayerName, req.ChipColor, startX); err != nil {
		bm.mu.Unlock()
		return "", err
	}
	bm.drops[id] = &dropEntry{drop: drop, seed: req.Seed, auto: req.Auto, generation: bm.generation}
	snap := drop.Snapshot()
	publishers := bm.publishers
	bm.mu.Unlock()

	log.Printf("[DROP] %s released by %s at x=%.1f (target %d steps, budget %d)", id, snap.PlayerName, startX, snap.Params.TargetSteps, snap.MaxSteps)
	bm.saveDropToRedis(id)
	bm.emit(publishers, []Event{{Type: EventDropStarted, DropID: id, Drop: &snap}})
	return id, nil
}

// Tick advances one drop by one step.
func (bm *BoardManager) Tick(handle string) (plinko.TickResult, error) {
	bm.mu.Lock()
	e, ok := bm.drops[handle]
	if !ok {
		bm.mu.Unlock()
		return plinko.TickResult{}, ErrUnknownHandle
	}
	res, err := e.drop.Tick()
	if err != nil {
		bm.mu.Unlock()
		return res, err
	}
	events := []Event{{Type: EventDropFrame, DropID: handle, Frame: &res}}
	var outcome *plinko.DropOutcome
	if res.Landed {
		o, _ := e.drop.Outcome()
		outcome = &o
		e.finishedAt = bm.now()
		bm.rememberOutcome(o)
		events = append(events, Event{Type: EventDropLanded, DropID: handle, Outcome: &o, Message: o.Message()})
	}
	publishers := bm.publishers
	seed := e.seed
	width := e.drop.Layout().Width
	bm.mu.Unlock()

	if outcome != nil {
		if outcome.Forced {
			log.Printf("[DROP] %s ran out of steps (%d) and was force-landed at x=%.1f", handle, outcome.Steps, outcome.FinalX)
		}
		log.Printf("[DROP] %s", outcome.Message())
		bm.recordOutcome(*outcome, width, seed)
		bm.saveDropToRedis(handle)
	}
	bm.emit(publishers, events)
	return res, nil
}

// TickAuto advances every falling drop that the runner owns. It returns the
// number of drops ticked.
func (bm *BoardManager) TickAuto() int {
	bm.mu.RLock()
	var ids []string
	for id, e := range bm.drops {
		if e.auto && e.drop.Status() == plinko.StatusFalling {
			ids = append(ids, id)
		}
	}
	bm.mu.RUnlock()

	n := 0
	for _, id := range ids {
		if _, err := bm.Tick(id); err != nil {
			// a resize can cancel the drop between the scan and the tick
			if !errors.Is(err, plinko.ErrStaleHandle) {
				log.Printf("[DROP] auto tick %s failed: %v", id, err)
			}
			continue
		}
		n++
	}
	return n
}

// Outcome returns the outcome of a landed drop.
func (bm *BoardManager) Outcome(handle string) (plinko.DropOutcome, error) {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	e, ok := bm.drops[handle]
	if !ok {
		return plinko.DropOutcome{}, ErrUnknownHandle
	}
	return e.drop.Outcome()
}

// Snapshot returns the current state of a drop.
func (bm *BoardManager) Snapshot(handle string) (plinko.DropSnapshot, error) {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	e, ok := bm.drops[handle]
	if !ok {
		return plinko.DropSnapshot{}, ErrUnknownHandle
	}
	return e.drop.Snapshot(), nil
}

// ActiveDrops returns snapshots of drops that are still falling.
func (bm *BoardManager) ActiveDrops() []plinko.DropSnapshot {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	var out []plinko.DropSnapshot
	for _, e := range bm.drops {
		if e.drop.Status() == plinko.StatusFalling {
			out = append(out, e.drop.Snapshot())
		}
	}
	return out
}

// Prune forgets finished drops older than the retention window.
func (bm *BoardManager) Prune() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	cutoff := bm.now().Add(-bm.retention)
	n := 0
	for id, e := range bm.drops {
		if e.drop.Status().Terminal() && !e.finishedAt.IsZero() && e.finishedAt.Before(cutoff) {
			delete(bm.drops, id)
			n++
		}
	}
	return n
}

// rememberOutcome keeps the in-memory history. Caller holds bm.mu.
func (bm *BoardManager) rememberOutcome(o plinko.DropOutcome) {
	if bm.maxRecent <= 0 {
		return
	}
	bm.history = append([]plinko.DropOutcome{o}, bm.history...)
	if len(bm.history) > bm.maxRecent {
		bm.history = bm.history[:bm.maxRecent]
	}
}

func (bm *BoardManager) emit(publishers []EventPublisher, events []Event) {
	for _, ev := range events {
		for _, p := range publishers {
			p.Publish(ev)
		}
	}
}
