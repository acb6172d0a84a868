package main

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	httpapi "fish-arcade/internal/api/http"
	"fish-arcade/internal/api/ws"
	"fish-arcade/internal/config"
	"fish-arcade/internal/game"
	"fish-arcade/internal/store"
	"fish-arcade/internal/syncer"

	// swagger packages
	_ "fish-arcade/docs"
)

// @title Fish Arcade Game Server API
// @version 1.0
// @description Real-time fish shooting game server (Go + Gin + WebSocket)
// @contact.name Backend Team
// @BasePath /
func main() {
	cfg := config.Load()

	client := connectRedis(cfg.RedisAddr)
	stats := store.NewStats(client)
	settings := store.NewSettings(client)
	if client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := settings.Load(ctx); err != nil {
			log.Printf("Failed to load game config from redis: %v", err)
		}
		cancel()
	}

	worker := syncer.New(cfg.SessionBaseURL)
	worker.Start()
	defer worker.Stop()

	reg := game.NewRegistry()
	sim := game.NewSimulator(reg, capacityPolicy(cfg), stats, worker, settings)
	hub := ws.NewHub(sim)
	sim.SetBroadcaster(hub)

	r := httpapi.SetupRouter(sim, stats, settings, hub)

	log.Printf("Game server listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}

// connectRedis returns nil when the store is unreachable; the service
// then runs with stats and live config degraded to defaults.
func connectRedis(addr string) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection failed: %v", err)
		log.Printf("Service will continue without stats/config store")
		return nil
	}
	log.Printf("Redis connected at %s", addr)
	return client
}

func capacityPolicy(cfg config.Service) game.CapacityPolicy {
	if cfg.CapacityPolicy == "memory" {
		return game.ResourceProxy{MaxHeapMB: uint64(cfg.MaxHeapMB)}
	}
	return game.FixedCount{Max: cfg.MaxFish}
}
