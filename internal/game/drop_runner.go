package game

import (
	"context"
	"log"
	"time"
)

// StartDropRunner ticks auto drops at the board's tick rate until ctx is done.
// Finished drops are pruned once a second.
func StartDropRunner(ctx context.Context, bm *BoardManager) {
	if bm == nil {
		log.Println("[RUNNER] Board manager missing; drop runner not started")
		return
	}

	interval := bm.Timing().TickInterval()
	log.Printf("[RUNNER] Drop runner started (tick every %v)", interval)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		pruneTicker := time.NewTicker(time.Second)
		defer pruneTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[RUNNER] Drop runner stopping")
				return
			case <-ticker.C:
				bm.TickAuto()
			case <-pruneTicker.C:
				if n := bm.Prune(); n > 0 {
					log.Printf("[RUNNER] Pruned %d finished drops", n)
				}
			}
		}
	}()
}
