package game

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/playmatatu/plinko/internal/models"
	"github.com/playmatatu/plinko/internal/plinko"
)

const (
	recentOutcomesKey = "plinko:recent_outcomes"
	dropStateTTL      = time.Hour
)

func dropStateKey(id string) string {
	return "drop:" + id + ":state"
}

// recordOutcome stores a landed drop in drop_outcomes and the recent list.
func (bm *BoardManager) recordOutcome(o plinko.DropOutcome, boardWidth float64, seed *uint64) {
	ctx := context.Background()

	if bm.rdb != nil && bm.maxRecent > 0 {
		data, err := json.Marshal(o)
		if err != nil {
			log.Printf("[REDIS] Failed to marshal outcome %s: %v", o.DropID, err)
		} else {
			pipe := bm.rdb.TxPipeline()
			pipe.LPush(ctx, recentOutcomesKey, data)
			pipe.LTrim(ctx, recentOutcomesKey, 0, int64(bm.maxRecent-1))
			if _, err := pipe.Exec(ctx); err != nil {
				log.Printf("[REDIS] Failed to push outcome %s: %v", o.DropID, err)
			}
		}
	}

	if bm.db == nil {
		return
	}
	var seedVal *int64
	if seed != nil {
		v := int64(*seed)
		seedVal = &v
	}
	_, err := bm.db.ExecContext(ctx, `
		INSERT INTO drop_outcomes (drop_id, player_name, chip_color, slot_index, label, missed, forced, steps, peg_hits, final_x, board_width, seed, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (drop_id) DO NOTHING`,
		o.DropID, o.PlayerName, o.ChipColor, o.SlotIndex, o.Label, o.Missed, o.Forced, o.Steps, o.PegHits, o.FinalX, boardWidth, seedVal, o.LandedAt,
	)
	if err != nil {
		log.Printf("[DB] Failed to record outcome for drop %s: %v", o.DropID, err)
	}
}

// saveDropToRedis saves the drop snapshot so other instances can serve it.
func (bm *BoardManager) saveDropToRedis(id string) {
	if bm.rdb == nil {
		return
	}
	snap, err := bm.Snapshot(id)
	if err != nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[REDIS] Failed to marshal drop %s: %v", id, err)
		return
	}
	if err := bm.rdb.SetEx(context.Background(), dropStateKey(id), data, dropStateTTL).Err(); err != nil {
		log.Printf("[REDIS] Failed to save drop %s: %v", id, err)
	}
}

// LoadDropFromRedis returns a snapshot saved by any instance.
func (bm *BoardManager) LoadDropFromRedis(ctx context.Context, id string) (plinko.DropSnapshot, error) {
	var snap plinko.DropSnapshot
	if bm.rdb == nil {
		return snap, ErrUnknownHandle
	}
	data, err := bm.rdb.Get(ctx, dropStateKey(id)).Bytes()
	if err != nil {
		return snap, ErrUnknownHandle
	}
	err = json.Unmarshal(data, &snap)
	return snap, err
}

// RecentOutcomes returns the newest outcomes, from Redis when available,
// then the database, then this instance's memory.
func (bm *BoardManager) RecentOutcomes(ctx context.Context, limit int) ([]plinko.DropOutcome, error) {
	if limit <= 0 || (bm.maxRecent > 0 && limit > bm.maxRecent) {
		limit = bm.maxRecent
	}
	if limit <= 0 {
		return nil, nil
	}

	if bm.rdb != nil {
		raw, err := bm.rdb.LRange(ctx, recentOutcomesKey, 0, int64(limit-1)).Result()
		if err == nil {
			out := make([]plinko.DropOutcome, 0, len(raw))
			for _, r := range raw {
				var o plinko.DropOutcome
				if err := json.Unmarshal([]byte(r), &o); err != nil {
					log.Printf("[REDIS] Skipping bad outcome entry: %v", err)
					continue
				}
				out = append(out, o)
			}
			return out, nil
		}
		log.Printf("[REDIS] Failed to read recent outcomes: %v", err)
	}

	if bm.db != nil {
		var rows []models.DropRecord
		err := bm.db.SelectContext(ctx, &rows, `
			SELECT id, drop_id, player_name, chip_color, slot_index, label, missed, forced, steps, peg_hits, final_x, board_width, seed, created_at
			FROM drop_outcomes ORDER BY created_at DESC LIMIT $1`, limit)
		if err == nil {
			out := make([]plinko.DropOutcome, len(rows))
			for i, r := range rows {
				out[i] = outcomeFromRecord(r)
			}
			return out, nil
		}
		log.Printf("[DB] Failed to read recent outcomes: %v", err)
	}

	bm.mu.RLock()
	defer bm.mu.RUnlock()
	n := limit
	if n > len(bm.history) {
		n = len(bm.history)
	}
	return append([]plinko.DropOutcome(nil), bm.history[:n]...), nil
}

func outcomeFromRecord(r models.DropRecord) plinko.DropOutcome {
	return plinko.DropOutcome{
		DropID:     r.DropID,
		PlayerName: r.PlayerName,
		ChipColor:  r.ChipColor,
		SlotIndex:  r.SlotIndex,
		Label:      r.Label,
		Missed:     r.Missed,
		Forced:     r.Forced,
		Steps:      r.Steps,
		PegHits:    r.PegHits,
		FinalX:     r.FinalX,
		LandedAt:   r.CreatedAt,
	}
}
