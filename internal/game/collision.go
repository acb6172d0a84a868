package game

import (
	"log"
	"math"
	"time"
)

// stepBulletLocked advances one bullet along its precomputed course and
// resolves expiry and collisions. Caller holds the room lock.
//
// The bullet either reaches its target distance, leaves the generous
// out-of-bounds margins, or hits the first fish whose collision radius
// (half its size) contains the interpolated position. Only one fish is
// ever credited per bullet.
func (s *Simulator) stepBulletLocked(r *Room, b *Bullet, now time.Time) {
	elapsed := now.Sub(b.created).Seconds()
	travelled := b.Speed * elapsed

	if travelled >= b.distance {
		s.expireBulletLocked(r, b)
		return
	}

	x := b.StartX + b.dirX*travelled
	y := b.StartY + b.dirY*travelled

	// No bottom margin: bullets always travel upward from the firing
	// line and despawn once they clear the sides or the top.
	if x < -BulletMargin || x > r.Width+BulletMargin || y < -BulletMargin {
		log.Printf("Bullet %s out of bounds: (%.1f, %.1f)", b.ID, x, y)
		s.expireBulletLocked(r, b)
		return
	}

	for _, f := range r.Fishes {
		if math.Hypot(x-f.X, y-f.Y) < f.Size/2 {
			s.creditHitLocked(r, b, f)
			return
		}
	}

	s.hub.Broadcast(r.ID, "bullet-moved", map[string]any{
		"bulletId": b.ID,
		"x":        x,
		"y":        y,
	})
}

func (s *Simulator) expireBulletLocked(r *Room, b *Bullet) {
	delete(r.Bullets, b.ID)
	s.hub.Broadcast(r.ID, "bullet-expired", map[string]any{"bulletId": b.ID})
}

// DetectCollision is the request/response variant of hit testing used
// by the REST API: the bullet's target is checked against the fish
// position with a flat 50-unit radius. Both entities are consumed.
func (s *Simulator) DetectCollision(roomID, bulletID, fishID string) (hit bool, reward int, ok bool) {
	r, found := s.reg.Get(roomID)
	if !found {
		return false, 0, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	b, okB := r.Bullets[bulletID]
	f, okF := r.Fishes[fishID]
	if !okB || !okF {
		return false, 0, false
	}

	dist := math.Hypot(b.TargetX-f.X, b.TargetY-f.Y)
	if dist < 50 {
		hit = true
		reward = f.Value
		delete(r.Fishes, fishID)
	}
	delete(r.Bullets, bulletID)
	return hit, reward, true
}
