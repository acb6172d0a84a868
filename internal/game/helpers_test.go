package game

import (
	"math"
	"sync"
	"time"
)

// recorder captures broadcast traffic in emission order.
type recordedEvent struct {
	Room    string
	Event   string
	Data    any
	Target  string // userID for directed sends
	Exclude string
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) Broadcast(roomID, event string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Room: roomID, Event: event, Data: data})
}

func (r *recorder) BroadcastExcept(roomID, excludeUserID, event string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Room: roomID, Event: event, Data: data, Exclude: excludeUserID})
}

func (r *recorder) SendToPlayer(roomID, userID, event string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Room: roomID, Event: event, Data: data, Target: userID})
}

func (r *recorder) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Event == event {
			n++
		}
	}
	return n
}

// ordered reports the emission order of the given event names,
// filtered to only those names.
func (r *recorder) ordered(names ...string) []string {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if want[e.Event] {
			out = append(out, e.Event)
		}
	}
	return out
}

type statsRecorder struct {
	mu         sync.Mutex
	shots      int
	hits       int
	collisions int
	payout     float64
}

func (s *statsRecorder) RecordShot() {
	s.mu.Lock()
	s.shots++
	s.mu.Unlock()
}

func (s *statsRecorder) RecordHit() {
	s.mu.Lock()
	s.hits++
	s.mu.Unlock()
}

func (s *statsRecorder) RecordCollision() {
	s.mu.Lock()
	s.collisions++
	s.mu.Unlock()
}

func (s *statsRecorder) RecordPayout(amount float64) {
	s.mu.Lock()
	s.payout += amount
	s.mu.Unlock()
}

func (s *statsRecorder) snapshot() (shots, hits, collisions int, payout float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shots, s.hits, s.collisions, s.payout
}

type statusSync struct {
	RoomID string
	Status string
}

type balanceSync struct {
	UserID  string
	Balance float64
}

type syncRecorder struct {
	mu       sync.Mutex
	balances []balanceSync
	statuses []statusSync
}

func (s *syncRecorder) SyncBalance(userID string, balance float64) {
	s.mu.Lock()
	s.balances = append(s.balances, balanceSync{userID, balance})
	s.mu.Unlock()
}

func (s *syncRecorder) SyncRoomStatus(roomID, status string) {
	s.mu.Lock()
	s.statuses = append(s.statuses, statusSync{roomID, status})
	s.mu.Unlock()
}

func (s *syncRecorder) statusList() []statusSync {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]statusSync(nil), s.statuses...)
}

// staticConfig pins the simulation parameters for deterministic tests.
type staticConfig struct {
	interval time.Duration
	speed    float64
}

func (c staticConfig) SpawnInterval() time.Duration { return c.interval }
func (c staticConfig) BulletSpeed() float64         { return c.speed }

func newTestSimulator(policy CapacityPolicy) (*Simulator, *recorder, *statsRecorder, *syncRecorder) {
	rec := &recorder{}
	stats := &statsRecorder{}
	syncs := &syncRecorder{}
	sim := NewSimulator(NewRegistry(), policy, stats, syncs, staticConfig{interval: time.Hour, speed: 500})
	sim.SetBroadcaster(rec)
	return sim, rec, stats, syncs
}

// testBullet builds a bullet with a precomputed course, bypassing Fire
// so ticks can be driven manually with synthetic clocks.
func testBullet(id, playerID string, startX, startY, targetX, targetY, speed float64, created time.Time) *Bullet {
	b := &Bullet{
		ID:        id,
		PlayerID:  playerID,
		StartX:    startX,
		StartY:    startY,
		TargetX:   targetX,
		TargetY:   targetY,
		Speed:     speed,
		CreatedAt: created.UnixMilli(),
		IsActive:  true,
		created:   created,
	}
	dx := targetX - startX
	dy := targetY - startY
	b.distance = math.Hypot(dx, dy)
	if b.distance > 0 {
		b.dirX = dx / b.distance
		b.dirY = dy / b.distance
	}
	return b
}
