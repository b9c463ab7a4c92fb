package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/plinko/internal/ws"
)

// HandleBoardWebSocket streams board and drop events to viewers
func HandleBoardWebSocket() gin.HandlerFunc {
	return ws.HandleWebSocket
}
