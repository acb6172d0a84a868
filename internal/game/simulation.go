package game

import (
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// ensureLoopLocked starts the room's simulation goroutine if it is not
// already running. Caller holds the room lock. The loop drives fish
// spawning, fish movement and bullet ballistics for this room only, so
// all mutation of the room stays serialized on its mutex and events go
// out in mutation order.
func (s *Simulator) ensureLoopLocked(r *Room) {
	if r.loopRunning {
		return
	}
	r.loopRunning = true
	go s.runLoop(r)
}

func (s *Simulator) runLoop(r *Room) {
	tick := time.NewTicker(time.Second / TickRate)
	spawn := time.NewTicker(s.cfg.SpawnInterval())
	defer tick.Stop()
	defer spawn.Stop()

	for {
		select {
		case <-spawn.C:
			s.spawnTick(r)
			// Pick up live config changes without restarting the loop.
			spawn.Reset(s.cfg.SpawnInterval())
		case <-tick.C:
			if !s.stepRoom(r, time.Now()) {
				return
			}
		}
	}
}

// spawnTick adds one fish if the room is active and the capacity
// policy permits. A blocked spawn emits the policy's notification so
// clients can distinguish it from ordinary quiet.
func (s *Simulator) spawnTick(r *Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.Active {
		return
	}
	if !s.policy.Allow(r) {
		event, data := s.policy.BlockedEvent(r)
		log.Printf("Fish spawn blocked in room %s: %s", r.ID, event)
		s.hub.Broadcast(r.ID, event, data)
		return
	}

	spec := FishSpecs[rand.Intn(len(FishSpecs))]
	angle := rand.Float64() * 2 * math.Pi
	f := &Fish{
		ID:         "fish_" + uuid.NewString(),
		RoomID:     r.ID,
		Type:       spec.Type,
		Value:      spec.Value,
		Size:       spec.Size,
		X:          rand.Float64() * r.Width,
		Y:          rand.Float64() * r.Height,
		DirectionX: math.Cos(angle),
		DirectionY: math.Sin(angle),
		Speed:      spec.Speed,
		CreatedAt:  time.Now().UnixMilli(),
		IsAlive:    true,
	}
	r.Fishes[f.ID] = f
	log.Printf("Fish %s spawned in room %s. Room now has %d fishes.", f.ID, r.ID, len(r.Fishes))
	s.hub.Broadcast(r.ID, "fish-spawned", f)

	// Resource-proxied policies report their reading with every spawn.
	if mp, ok := s.policy.(interface{ MemoryStatus(*Room) map[string]any }); ok {
		s.hub.Broadcast(r.ID, "memory-status", mp.MemoryStatus(r))
	}
}

// stepRoom advances every fish and bullet by one frame. Returns false
// when there is nothing left to simulate, which stops the room loop;
// the next start-game or fire command restarts it.
func (s *Simulator) stepRoom(r *Room, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	const dt = 1.0 / TickRate
	for _, f := range r.Fishes {
		s.moveFishLocked(r, f, dt)
	}
	for _, b := range r.Bullets {
		s.stepBulletLocked(r, b, now)
	}

	if !r.Active && len(r.Bullets) == 0 {
		r.loopRunning = false
		return false
	}
	return true
}

// moveFishLocked advances one fish, reflecting off playfield edges and
// clamping back into bounds.
func (s *Simulator) moveFishLocked(r *Room, f *Fish, dt float64) {
	f.X += f.DirectionX * f.Speed * dt
	f.Y += f.DirectionY * f.Speed * dt

	if f.X <= 0 || f.X >= r.Width {
		f.DirectionX = -f.DirectionX
	}
	if f.Y <= 0 || f.Y >= r.Height {
		f.DirectionY = -f.DirectionY
	}
	f.X = math.Max(0, math.Min(r.Width, f.X))
	f.Y = math.Max(0, math.Min(r.Height, f.Y))

	s.hub.Broadcast(r.ID, "fish-moved", map[string]any{
		"fishId": f.ID,
		"x":      f.X,
		"y":      f.Y,
	})
}
