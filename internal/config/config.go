package config

import (
	"fmt"
	"os"
	"strconv"
)

// Service holds process-level settings for the game server and the
// session service. Everything reads from env with sensible defaults
// so both binaries run out of the box in docker-compose.
type Service struct {
	HTTPAddr       string
	RedisAddr      string
	SessionBaseURL string
	CapacityPolicy string // "fixed" or "memory"
	MaxFish        int
	MaxHeapMB      int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func Load() Service {
	return Service{
		HTTPAddr:       getenv("HTTP_ADDR", ":8083"),
		RedisAddr:      getenv("REDIS_ADDR", "redis:6379"),
		SessionBaseURL: getenv("SESSION_BASE_URL", "http://game-session-service:8082"),
		CapacityPolicy: getenv("CAPACITY_POLICY", "fixed"),
		MaxFish:        getenvInt("MAX_FISH", 25),
		MaxHeapMB:      getenvInt("MAX_HEAP_MB", 512),
	}
}

func LoadSession() Service {
	return Service{
		HTTPAddr: getenv("HTTP_ADDR", ":8082"),
	}
}

// Game is the live-tunable simulation configuration. It has in-process
// defaults and may be overridden through the redis game:config hash.
type Game struct {
	FishSpawnInterval int     `json:"fishSpawnInterval"` // milliseconds
	BulletSpeed       float64 `json:"bulletSpeed"`       // units per second
	HitRate           float64 `json:"hitRate"`
}

func DefaultGame() Game {
	return Game{
		FishSpawnInterval: 2000,
		BulletSpeed:       500,
		HitRate:           0.6,
	}
}

// ValidateGameField checks a single config field against its accepted
// range before it may be written to the store.
func ValidateGameField(key string, value float64) error {
	switch key {
	case "fishSpawnInterval":
		if value < 100 || value > 5000 {
			return fmt.Errorf("fishSpawnInterval must be in [100, 5000] ms, got %v", value)
		}
	case "bulletSpeed":
		if value < 300 || value > 800 {
			return fmt.Errorf("bulletSpeed must be in [300, 800], got %v", value)
		}
	case "hitRate":
		if value < 0.1 || value > 1.0 {
			return fmt.Errorf("hitRate must be in [0.1, 1.0], got %v", value)
		}
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
