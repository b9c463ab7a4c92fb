package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/plinko/internal/game"
)

// StartDrop releases a chip. With auto set the server ticks it; otherwise the
// caller drives it through the tick endpoint.
func StartDrop(c *gin.Context) {
	if !requireBoard(c) {
		return
	}
	var req game.DropRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid drop request"})
		return
	}

	id, err := game.Manager.StartDrop(req)
	if err != nil {
		respondError(c, err)
		return
	}
	snap, _ := game.Manager.Snapshot(id)
	c.JSON(http.StatusCreated, gin.H{
		"drop_id": id,
		"drop":    snap,
	})
}

// TickDrop advances a caller-driven drop by one step
func TickDrop(c *gin.Context) {
	if !requireBoard(c) {
		return
	}
	res, err := game.Manager.Tick(c.Param("handle"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetDrop returns a drop snapshot. Drops started on another instance are
// served from Redis.
func GetDrop(c *gin.Context) {
	if !requireBoard(c) {
		return
	}
	handle := c.Param("handle")
	snap, err := game.Manager.Snapshot(handle)
	if errors.Is(err, game.ErrUnknownHandle) {
		snap, err = game.Manager.LoadDropFromRedis(c.Request.Context(), handle)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetDropOutcome returns the outcome of a landed drop
func GetDropOutcome(c *gin.Context) {
	if !requireBoard(c) {
		return
	}
	out, err := game.Manager.Outcome(c.Param("handle"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"outcome": out,
		"message": out.Message(),
	})
}

// RecentOutcomes lists the newest landed drops
func RecentOutcomes(c *gin.Context) {
	if !requireBoard(c) {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	outcomes, err := game.Manager.RecentOutcomes(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if outcomes == nil {
		c.JSON(http.StatusOK, gin.H{"outcomes": []interface{}{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": outcomes})
}
