package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/plinko/internal/config"
	"github.com/playmatatu/plinko/internal/models"
	"github.com/playmatatu/plinko/internal/operator"
)

// OperatorLogin validates username/password and issues a session JWT
func OperatorLogin(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "operator accounts unavailable"})
			return
		}

		username := strings.TrimSpace(req.Username)
		acc, err := operator.ValidateCredentials(db, username, req.Password)
		if err != nil {
			operator.LogAction(db, username, c.ClientIP(), c.FullPath(), "login", nil, false)
			if errors.Is(err, operator.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		ttl := time.Duration(cfg.OperatorSessionMin) * time.Minute
		token, exp, err := operator.IssueToken(cfg.JWTSecret, acc.Username, acc.Roles, ttl)
		if err != nil {
			log.Printf("[AUTH] Failed to sign token for %s: %v", acc.Username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		operator.LogAction(db, acc.Username, c.ClientIP(), c.FullPath(), "login", nil, true)
		log.Printf("[AUTH] Operator %s logged in", acc.Username)

		c.JSON(http.StatusOK, gin.H{
			"token":        token,
			"expires_at":   exp.Unix(),
			"display_name": acc.DisplayName,
			"roles":        acc.Roles,
		})
	}
}

// OperatorAuth requires a valid operator bearer token and stores the
// username in the context under "operator"
func OperatorAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "operator token required"})
			return
		}
		claims, err := operator.ParseToken(cfg.JWTSecret, token)
		if err != nil {
			log.Printf("[AUTH] Rejected operator token from %s: %v", c.ClientIP(), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set("operator", claims.Username)
		c.Set("operator_roles", claims.Roles)
		c.Next()
	}
}

// GetAuditLog returns recent operator actions
func GetAuditLog(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit log unavailable"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if limit <= 0 || limit > 500 {
			limit = 50
		}
		if offset < 0 {
			offset = 0
		}
		logs, err := operator.GetAuditLogs(db, limit, offset)
		if err != nil {
			log.Printf("[DB] Failed to read audit log: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if logs == nil {
			logs = []models.OperatorAudit{}
		}
		c.JSON(http.StatusOK, gin.H{"logs": logs, "limit": limit, "offset": offset})
	}
}
