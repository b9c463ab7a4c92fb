package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/playmatatu/plinko/internal/api"
	"github.com/playmatatu/plinko/internal/config"
	"github.com/playmatatu/plinko/internal/database"
	"github.com/playmatatu/plinko/internal/game"
	"github.com/playmatatu/plinko/internal/migrations"
	"github.com/playmatatu/plinko/internal/redis"
	"github.com/playmatatu/plinko/internal/ws"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The board runs without Postgres or Redis; outcomes then live in memory only.
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		conn, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Unavailable, outcomes and templates will not be persisted: %v", err)
		} else {
			db = conn
			defer db.Close()
		}
	}

	if db != nil && cfg.MigrateOnStart {
		log.Println("[MIGRATE] Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		conn, err := redis.Connect(cfg.RedisURL)
		if err != nil {
			log.Printf("[REDIS] Unavailable, events stay on this instance: %v", err)
		} else {
			rdb = conn
			defer rdb.Close()
		}
	}

	if err := game.InitializeManager(db, rdb, cfg); err != nil {
		log.Fatalf("Failed to initialize board: %v", err)
	}
	layout := game.Manager.Layout()
	log.Printf("[BOARD] %vx%v board with %d pegs and %d slots", layout.Width, layout.Height, len(layout.Pegs), len(layout.Slots))

	// Events go through Redis when available so every instance's viewers see them
	ws.SetRedisClient(rdb)
	game.Manager.AddPublisher(ws.EventPublisher())
	ws.StartEventSubscriber(ctx)

	game.StartDropRunner(ctx, game.Manager)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, db, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting Plinko server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
