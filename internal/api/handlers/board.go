package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/plinko/internal/game"
	"github.com/playmatatu/plinko/internal/operator"
)

// GetBoard returns the current layout and the drops in flight
func GetBoard(c *gin.Context) {
	if !requireBoard(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"layout": game.Manager.Layout(),
		"timing": gin.H{
			"tick_rate":      game.Manager.Timing().TickRate,
			"min_steps":      game.Manager.Timing().MinSteps(),
			"max_steps":      game.Manager.Timing().MaxSteps(),
			"overrun_factor": game.Manager.Timing().OverrunFactor,
		},
		"active_drops": len(game.Manager.ActiveDrops()),
	})
}

// ResizeBoard regenerates the board for a new width and height
func ResizeBoard(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBoard(c) {
			return
		}
		var req struct {
			Width  float64 `json:"width"`
			Height float64 `json:"height"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "width and height required"})
			return
		}

		username := c.GetString("operator")
		details := map[string]interface{}{"width": req.Width, "height": req.Height}
		cancelled, err := game.Manager.Resize(req.Width, req.Height)
		if err != nil {
			operator.LogAction(db, username, c.ClientIP(), c.FullPath(), "resize_board", details, false)
			respondError(c, err)
			return
		}
		details["cancelled"] = len(cancelled)
		operator.LogAction(db, username, c.ClientIP(), c.FullPath(), "resize_board", details, true)
		log.Printf("[BOARD] %s resized board to %vx%v", username, req.Width, req.Height)

		c.JSON(http.StatusOK, gin.H{
			"layout":    game.Manager.Layout(),
			"cancelled": nonNil(cancelled),
		})
	}
}

// ReloadRewards replaces the reward labels on the board
func ReloadRewards(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBoard(c) {
			return
		}
		var req struct {
			Labels []string `json:"labels"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "labels required"})
			return
		}

		username := c.GetString("operator")
		details := map[string]interface{}{"labels": len(req.Labels)}
		cancelled, err := game.Manager.ReloadRewards(req.Labels)
		if err != nil {
			operator.LogAction(db, username, c.ClientIP(), c.FullPath(), "reload_rewards", details, false)
			respondError(c, err)
			return
		}
		operator.LogAction(db, username, c.ClientIP(), c.FullPath(), "reload_rewards", details, true)

		c.JSON(http.StatusOK, gin.H{
			"layout":    game.Manager.Layout(),
			"cancelled": nonNil(cancelled),
		})
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
