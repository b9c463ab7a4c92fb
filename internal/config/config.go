package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultRewardLabels is the reward set the board ships with.
var DefaultRewardLabels = []string{
	"+5 POGs", "+10 POGs", "Vault Key", "Whiskey", "Loot Crate",
	"+20 HP", "Mystery Box", "+1 INT Buff", "+3 Ammo", "Safe Haven Map",
}

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Board
	BoardWidth   float64
	BoardHeight  float64
	PegDensity   float64
	RewardLabels []string
	TemplateDir  string

	// Drop timing (the driver ticks drops at TickRate per second)
	TickRate             int
	MinFallSeconds       float64
	MaxFallSeconds       float64
	OverrunFactor        int
	MaxActiveDrops       int
	DropRetentionSeconds int
	OutcomeHistorySize   int

	// Security
	JWTSecret          string
	OperatorSessionMin int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/plinko?sslmode=disable"),
		MigrateOnStart: getEnv("MIGRATE_ON_START", "false") == "true",

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Board
		BoardWidth:   getEnvFloat("BOARD_WIDTH", 600),
		BoardHeight:  getEnvFloat("BOARD_HEIGHT", 800),
		PegDensity:   getEnvFloat("PEG_DENSITY", 6),
		RewardLabels: getEnvList("REWARD_LABELS", DefaultRewardLabels),
		TemplateDir:  getEnv("TEMPLATE_DIR", "templates"),

		// Drop timing
		TickRate:             getEnvInt("TICK_RATE", 60),
		MinFallSeconds:       getEnvFloat("MIN_FALL_SECONDS", 3),
		MaxFallSeconds:       getEnvFloat("MAX_FALL_SECONDS", 10),
		OverrunFactor:        getEnvInt("OVERRUN_FACTOR", 2),
		MaxActiveDrops:       getEnvInt("MAX_ACTIVE_DROPS", 4),
		DropRetentionSeconds: getEnvInt("DROP_RETENTION_SECONDS", 300),
		OutcomeHistorySize:   getEnvInt("OUTCOME_HISTORY_SIZE", 50),

		// Security
		JWTSecret:          getEnv("JWT_SECRET", "change-me-in-production"),
		OperatorSessionMin: getEnvInt("OPERATOR_SESSION_MINUTES", 720),
	}
}

// MinFall and MaxFall convert the configured fall range to durations.
func (c *Config) MinFall() time.Duration {
	return time.Duration(c.MinFallSeconds * float64(time.Second))
}

func (c *Config) MaxFall() time.Duration {
	return time.Duration(c.MaxFallSeconds * float64(time.Second))
}

func (c *Config) DropRetention() time.Duration {
	return time.Duration(c.DropRetentionSeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvList reads a comma separated list; blank entries are dropped.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultValue...)
	}
	return out
}
