package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/plinko/internal/api/handlers"
	"github.com/playmatatu/plinko/internal/config"
	"github.com/playmatatu/plinko/internal/middleware"
	"github.com/playmatatu/plinko/internal/templates"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	store := templates.NewStore(db, cfg.TemplateDir)
	operatorOnly := handlers.OperatorAuth(cfg)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		// Board
		board := v1.Group("/board")
		{
			board.GET("", handlers.GetBoard)
			board.GET("/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleBoardWebSocket())
			board.PUT("/size", operatorOnly, handlers.ResizeBoard(db))
			board.PUT("/rewards", operatorOnly, handlers.ReloadRewards(db))
		}

		// Drops
		drops := v1.Group("/drops")
		{
			drops.POST("", handlers.StartDrop)
			drops.GET("/:handle", handlers.GetDrop)
			drops.POST("/:handle/tick", handlers.TickDrop)
			drops.GET("/:handle/outcome", handlers.GetDropOutcome)
		}
		v1.GET("/outcomes/recent", handlers.RecentOutcomes)

		// Reward templates
		tpl := v1.Group("/templates")
		{
			tpl.GET("", handlers.ListTemplates(store))
			tpl.GET("/:name", handlers.GetTemplate(store))
			tpl.GET("/:name/export", handlers.ExportTemplate(store))
			tpl.PUT("/:name", operatorOnly, handlers.SaveTemplate(db, store))
			tpl.POST("/:name/apply", operatorOnly, handlers.ApplyTemplate(db, store))
		}

		// Operators
		op := v1.Group("/operator")
		{
			op.POST("/login", handlers.OperatorLogin(db, cfg))
			op.GET("/audit", operatorOnly, handlers.GetAuditLog(db))
		}
	}
}
