package game

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// ErrInsufficientBalance rejects a fire command when the player cannot
// cover the shot cost. No state changes on rejection.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrPlayerNotInRoom rejects commands referencing a player the room
// does not hold.
var ErrPlayerNotInRoom = errors.New("player not in room")

// Fire validates the shooter's balance, then atomically debits the
// shot cost and registers the bullet before any asynchronous work.
// Bullets always launch from the center of the firing line regardless
// of the client-reported position.
func (s *Simulator) Fire(roomID, userID string, targetX, targetY float64) (*Bullet, error) {
	r := s.reg.GetOrCreate(roomID)
	r.mu.Lock()

	p, ok := r.Players[userID]
	if !ok {
		r.mu.Unlock()
		return nil, ErrPlayerNotInRoom
	}
	if p.Balance <= 0 {
		r.mu.Unlock()
		s.hub.SendToPlayer(roomID, userID, "insufficient-balance", map[string]any{
			"message": "insufficient balance to fire",
		})
		return nil, ErrInsufficientBalance
	}

	now := time.Now()
	b := &Bullet{
		ID:        "bullet_" + uuid.NewString(),
		PlayerID:  userID,
		StartX:    r.Width / 2,
		StartY:    r.Height - 1,
		TargetX:   targetX,
		TargetY:   targetY,
		Speed:     s.cfg.BulletSpeed(),
		CreatedAt: now.UnixMilli(),
		IsActive:  true,
		created:   now,
	}
	dx := b.TargetX - b.StartX
	dy := b.TargetY - b.StartY
	b.distance = math.Hypot(dx, dy)
	if b.distance > 0 {
		b.dirX = dx / b.distance
		b.dirY = dy / b.distance
	}

	r.Bullets[b.ID] = b
	p.Balance -= ShotCost
	newBalance := p.Balance

	s.hub.Broadcast(roomID, "bullet-fired", b)
	s.hub.SendToPlayer(roomID, userID, "balance-updated", map[string]any{
		"balance": newBalance,
		"change":  -ShotCost,
		"reason":  "bullet_fired",
	})
	s.ensureLoopLocked(r)
	r.mu.Unlock()

	s.stats.RecordShot()
	s.syncer.SyncBalance(userID, newBalance)
	return b, nil
}

// creditHitLocked settles a confirmed collision: the fish's value goes
// to the shooter's score and balance, both entities are consumed, and
// the change propagates to the stats store and the wallet authority on
// a best-effort basis. Caller holds the room lock.
func (s *Simulator) creditHitLocked(r *Room, b *Bullet, f *Fish) {
	reward := f.Value
	var newScore int
	var newBalance float64

	p, hasPlayer := r.Players[b.PlayerID]
	if hasPlayer {
		p.Score += reward
		p.Balance += float64(reward)
		newScore = p.Score
		newBalance = p.Balance
	}

	delete(r.Fishes, f.ID)
	delete(r.Bullets, b.ID)

	s.hub.Broadcast(r.ID, "collision-hit", map[string]any{
		"bulletId":   b.ID,
		"fishId":     f.ID,
		"playerId":   b.PlayerID,
		"reward":     reward,
		"newScore":   newScore,
		"newBalance": newBalance,
	})

	if hasPlayer {
		s.hub.SendToPlayer(r.ID, b.PlayerID, "balance-updated", map[string]any{
			"balance": newBalance,
			"change":  float64(reward),
			"reason":  "fish_caught",
		})
		s.syncer.SyncBalance(b.PlayerID, newBalance)
	}

	s.stats.RecordCollision()
	s.stats.RecordHit()
	s.stats.RecordPayout(float64(reward))
}
