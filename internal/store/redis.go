// Package store adapts the external redis instance used for
// cross-instance statistics counters and live-tunable simulation
// config. Every write is best-effort: the simulation never waits on
// redis and failures only produce log lines.
package store

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"fish-arcade/internal/config"
)

const opTimeout = 2 * time.Second

func dayKey(prefix string) string {
	return prefix + time.Now().UTC().Format("2006-01-02")
}

// Stats records per-day shot/hit/collision/payout counters. A nil
// client puts the adapter in degraded mode where every call is a
// no-op and Available reports false.
type Stats struct {
	client *redis.Client
}

func NewStats(client *redis.Client) *Stats {
	return &Stats{client: client}
}

func (s *Stats) Available() bool {
	return s.client != nil
}

func (s *Stats) RecordShot()      { s.incr(dayKey("stats:shots:")) }
func (s *Stats) RecordHit()       { s.incr(dayKey("stats:hits:")) }
func (s *Stats) RecordCollision() { s.incr(dayKey("stats:collisions:")) }

func (s *Stats) RecordPayout(amount float64) {
	if s.client == nil {
		return
	}
	key := dayKey("stats:payout:")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := s.client.IncrByFloat(ctx, key, amount).Err(); err != nil {
			log.Printf("Failed to record payout: %v", err)
		}
	}()
}

func (s *Stats) incr(key string) {
	if s.client == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := s.client.Incr(ctx, key).Err(); err != nil {
			log.Printf("Failed to increment %s: %v", key, err)
		}
	}()
}

// Today aggregates the current UTC day's counters for the admin API.
type Today struct {
	Collisions int     `json:"todayCollisions"`
	Shots      int     `json:"todayShots"`
	Hits       int     `json:"todayHits"`
	HitRate    float64 `json:"hitRate"`
	Payout     float64 `json:"totalPayout"`
}

func (s *Stats) Today(ctx context.Context) (Today, error) {
	var t Today
	if s.client == nil {
		return t, redis.ErrClosed
	}
	t.Collisions = s.getInt(ctx, dayKey("stats:collisions:"))
	t.Shots = s.getInt(ctx, dayKey("stats:shots:"))
	t.Hits = s.getInt(ctx, dayKey("stats:hits:"))
	if t.Shots > 0 {
		t.HitRate = float64(t.Hits) / float64(t.Shots) * 100
	}
	if v, err := s.client.Get(ctx, dayKey("stats:payout:")).Float64(); err == nil {
		t.Payout = v
	}
	return t, nil
}

func (s *Stats) getInt(ctx context.Context, key string) int {
	v, err := s.client.Get(ctx, key).Int()
	if err != nil {
		return 0
	}
	return v
}

// Settings keeps the simulation config: in-process defaults overridden
// by the game:config hash when redis is reachable. Reads during a tick
// come from the local copy; only Load and Update touch redis.
type Settings struct {
	client *redis.Client

	mu  sync.RWMutex
	cur config.Game
}

func NewSettings(client *redis.Client) *Settings {
	return &Settings{client: client, cur: config.DefaultGame()}
}

func (s *Settings) Available() bool {
	return s.client != nil
}

func (s *Settings) Current() config.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// SpawnInterval and BulletSpeed satisfy game.ConfigSource.

func (s *Settings) SpawnInterval() time.Duration {
	return time.Duration(s.Current().FishSpawnInterval) * time.Millisecond
}

func (s *Settings) BulletSpeed() float64 {
	return s.Current().BulletSpeed
}

// Load refreshes the local copy from redis. Missing, malformed or
// out-of-range fields keep their defaults.
func (s *Settings) Load(ctx context.Context) error {
	if s.client == nil {
		return redis.ErrClosed
	}
	fields, err := s.client.HGetAll(ctx, "game:config").Result()
	if err != nil {
		return err
	}
	s.apply(fields)
	return nil
}

// apply merges stored fields into the local copy. Every value passes
// the same range validation as Update: a bad write in the hash, by an
// operator or another instance, must not poison the simulation
// parameters (a zero spawn interval would kill the room loop ticker).
func (s *Settings) apply(fields map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, raw := range fields {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.Printf("Ignoring malformed config field %s=%q", key, raw)
			continue
		}
		if err := config.ValidateGameField(key, v); err != nil {
			log.Printf("Discarding stored config field: %v", err)
			continue
		}
		switch key {
		case "fishSpawnInterval":
			s.cur.FishSpawnInterval = int(v)
		case "bulletSpeed":
			s.cur.BulletSpeed = v
		case "hitRate":
			s.cur.HitRate = v
		}
	}
}

// Update validates one field, writes it to redis and applies it to the
// local copy so running rooms pick it up on their next tick.
func (s *Settings) Update(ctx context.Context, key string, value float64) error {
	if err := config.ValidateGameField(key, value); err != nil {
		return err
	}
	if s.client != nil {
		if err := s.client.HSet(ctx, "game:config", key, formatField(key, value)).Err(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch key {
	case "fishSpawnInterval":
		s.cur.FishSpawnInterval = int(value)
	case "bulletSpeed":
		s.cur.BulletSpeed = value
	case "hitRate":
		s.cur.HitRate = value
	}
	log.Printf("Config updated: %s = %v", key, value)
	return nil
}

func formatField(key string, value float64) string {
	if key == "hitRate" {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	return strconv.Itoa(int(value))
}
