package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/plinko/internal/game"
	"github.com/playmatatu/plinko/internal/plinko"
	"github.com/playmatatu/plinko/internal/templates"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, plinko.ErrInvalidDimension),
		errors.Is(err, plinko.ErrEmptyRewardSet),
		errors.Is(err, plinko.ErrInvalidDensity),
		errors.Is(err, plinko.ErrMissingPlayer),
		errors.Is(err, templates.ErrInvalidTemplate),
		errors.Is(err, templates.ErrInvalidName),
		errors.Is(err, templates.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrUnknownHandle),
		errors.Is(err, templates.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, plinko.ErrNotIdle),
		errors.Is(err, plinko.ErrNotFalling),
		errors.Is(err, plinko.ErrNotLanded):
		return http.StatusConflict
	case errors.Is(err, plinko.ErrStaleHandle):
		return http.StatusGone
	case errors.Is(err, game.ErrTooManyDrops):
		return http.StatusTooManyRequests
	case errors.Is(err, templates.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes err with its mapped status. Internal errors are logged
// and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// requireBoard aborts with 503 when the board manager is not initialized
func requireBoard(c *gin.Context) bool {
	if game.Manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "board not ready"})
		return false
	}
	return true
}
