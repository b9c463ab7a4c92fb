package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/plinko/internal/game"
	"github.com/playmatatu/plinko/internal/ws"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck returns server health status
func HealthCheck(c *gin.Context) {
	resp := gin.H{
		"status":   "ok",
		"service":  "plinko-api",
		"version":  version,
		"uptime":   time.Since(startTime).String(),
		"watchers": ws.BoardHub.Count(),
	}
	if game.Manager != nil {
		resp["active_drops"] = len(game.Manager.ActiveDrops())
	}
	c.JSON(http.StatusOK, resp)
}
