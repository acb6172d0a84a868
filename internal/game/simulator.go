package game

import (
	"log"
	"time"
)

// Simulator owns the room registry and drives every room's simulation.
// It is handed to the websocket hub and the REST handlers; the
// broadcaster is attached after construction because the hub needs the
// simulator first.
type Simulator struct {
	reg    *Registry
	hub    Broadcaster
	policy CapacityPolicy
	stats  StatsRecorder
	syncer CollaboratorSyncer
	cfg    ConfigSource
}

func NewSimulator(reg *Registry, policy CapacityPolicy, stats StatsRecorder, syncer CollaboratorSyncer, cfg ConfigSource) *Simulator {
	return &Simulator{
		reg:    reg,
		hub:    nopBroadcaster{},
		policy: policy,
		stats:  stats,
		syncer: syncer,
		cfg:    cfg,
	}
}

func (s *Simulator) SetBroadcaster(b Broadcaster) {
	s.hub = b
}

func (s *Simulator) Registry() *Registry {
	return s.reg
}

// JoinRoom adds the player to the room, or treats the call as a
// reconnect when the id is already present: score, balance and
// position are preserved and only the connection handle (owned by the
// hub) changes. Returns the full room snapshot for the caller.
func (s *Simulator) JoinRoom(roomID, userID, username string, balance float64) Snapshot {
	r := s.reg.GetOrCreate(roomID)
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.Players[userID]; ok {
		log.Printf("User %s reconnected to room %s", userID, roomID)
		return r.snapshotLocked()
	}

	if username == "" {
		username = "Player_" + userID
	}
	// Zero means omitted; a negative balance is real debt and sticks,
	// the player just cannot fire until it is topped up.
	if balance == 0 {
		balance = DefaultBalance
	}
	p := &Player{
		ID:       userID,
		Username: username,
		RoomID:   roomID,
		X:        DefaultPlayerX,
		Y:        DefaultPlayerY,
		Balance:  balance,
		JoinedAt: time.Now().UnixMilli(),
	}
	r.Players[userID] = p

	s.hub.BroadcastExcept(roomID, userID, "player-joined", map[string]any{
		"playerId": userID,
		"username": username,
		"player":   p,
	})
	log.Printf("User %s joined room %s (new player)", userID, roomID)
	return r.snapshotLocked()
}

// LeaveRoom removes the player. When the last player leaves the room
// goes inactive and its status is synced to the session service; the
// room record itself persists.
func (s *Simulator) LeaveRoom(roomID, userID string) bool {
	r, ok := s.reg.Get(roomID)
	if !ok {
		return false
	}
	r.mu.Lock()
	if _, ok := r.Players[userID]; !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.Players, userID)
	s.hub.BroadcastExcept(roomID, userID, "player-left", map[string]any{"playerId": userID})
	empty := len(r.Players) == 0
	if empty {
		r.Active = false
	}
	r.mu.Unlock()

	if empty {
		s.syncer.SyncRoomStatus(roomID, "waiting")
	}
	log.Printf("User %s left room %s", userID, roomID)
	return true
}

// MovePlayer updates the stored position and relays it to the other
// connections in the room; the sender is not echoed.
func (s *Simulator) MovePlayer(roomID, userID string, x, y float64) bool {
	r, ok := s.reg.Get(roomID)
	if !ok {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Players[userID]
	if !ok {
		return false
	}
	p.X = x
	p.Y = y
	s.hub.BroadcastExcept(roomID, userID, "player-moved", map[string]any{
		"playerId": userID,
		"x":        x,
		"y":        y,
	})
	return true
}

// StartGame transitions the room to active and launches its simulation
// loop. Idempotent: a second start on an active room is a no-op with
// no re-broadcast.
func (s *Simulator) StartGame(roomID string) bool {
	r := s.reg.GetOrCreate(roomID)
	r.mu.Lock()
	if r.Active {
		r.mu.Unlock()
		log.Printf("Cannot start game in room %s - already active", roomID)
		return false
	}
	r.Active = true
	r.StartTime = time.Now().UnixMilli()
	s.hub.Broadcast(roomID, "game-started", map[string]any{
		"roomId":    roomID,
		"startTime": r.StartTime,
	})
	s.ensureLoopLocked(r)
	r.mu.Unlock()

	s.syncer.SyncRoomStatus(roomID, "playing")
	log.Printf("Game started in room %s", roomID)
	return true
}

// RoomState returns a snapshot for the REST state endpoint.
func (s *Simulator) RoomState(roomID string) (Snapshot, bool) {
	r, ok := s.reg.Get(roomID)
	if !ok {
		return Snapshot{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(), true
}

// Aggregate is the in-process half of the admin statistics.
type Aggregate struct {
	ActiveRooms int `json:"activeRooms"`
	FishCount   int `json:"fishCount"`
	BulletCount int `json:"bulletCount"`
}

func (s *Simulator) Aggregate() Aggregate {
	var agg Aggregate
	for _, r := range s.reg.Rooms() {
		r.mu.Lock()
		if r.Active {
			agg.ActiveRooms++
		}
		agg.FishCount += len(r.Fishes)
		agg.BulletCount += len(r.Bullets)
		r.mu.Unlock()
	}
	return agg
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(string, string, any)               {}
func (nopBroadcaster) BroadcastExcept(string, string, string, any) {}
func (nopBroadcaster) SendToPlayer(string, string, string, any)    {}
