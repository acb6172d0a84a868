package game

import (
	"sync"
	"time"
)

const (
	// Fixed playfield shared by every room for its whole lifetime.
	PlayfieldWidth  = 1400.0
	PlayfieldHeight = 700.0

	// Entity and ballistic ticks both run at 60 Hz.
	TickRate = 60

	// Bullets may overshoot the playfield by this margin before they
	// expire, so they visually leave the screen instead of popping.
	BulletMargin = 200.0

	// Every shot costs one balance unit.
	ShotCost = 1.0

	// Where new players appear until their first move command.
	DefaultPlayerX = 500.0
	DefaultPlayerY = 550.0

	DefaultBalance = 1000.0
)

type FishType string

const (
	FishSmall  FishType = "small"
	FishMedium FishType = "medium"
	FishLarge  FishType = "large"
	FishBoss   FishType = "boss"
)

// FishSpec fixes the value, collision size and swim speed of a tier.
type FishSpec struct {
	Type  FishType
	Value int
	Size  float64
	Speed float64
}

var FishSpecs = []FishSpec{
	{Type: FishSmall, Value: 2, Size: 40, Speed: 100},
	{Type: FishMedium, Value: 5, Size: 60, Speed: 80},
	{Type: FishLarge, Value: 10, Size: 80, Speed: 60},
	{Type: FishBoss, Value: 20, Size: 120, Speed: 40},
}

type Player struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	RoomID   string  `json:"roomId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Score    int     `json:"score"`
	Balance  float64 `json:"balance"`
	JoinedAt int64   `json:"joinedAt"`
}

type Fish struct {
	ID         string   `json:"id"`
	RoomID     string   `json:"roomId"`
	Type       FishType `json:"type"`
	Value      int      `json:"value"`
	Size       float64  `json:"size"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	DirectionX float64  `json:"directionX"`
	DirectionY float64  `json:"directionY"`
	Speed      float64  `json:"speed"`
	CreatedAt  int64    `json:"createdAt"`
	IsAlive    bool     `json:"isAlive"`
}

type Bullet struct {
	ID        string  `json:"id"`
	PlayerID  string  `json:"playerId"`
	StartX    float64 `json:"startX"`
	StartY    float64 `json:"startY"`
	TargetX   float64 `json:"targetX"`
	TargetY   float64 `json:"targetY"`
	Speed     float64 `json:"speed"`
	CreatedAt int64   `json:"createdAt"`
	IsActive  bool    `json:"isActive"`

	// Straight-line course, computed once at fire time.
	dirX     float64
	dirY     float64
	distance float64
	created  time.Time
}

// Room is an isolated simulation instance. All mutation happens under
// mu, held for the duration of each command or tick, so a room's state
// is only ever touched by one callback at a time.
type Room struct {
	ID        string
	Players   map[string]*Player
	Fishes    map[string]*Fish
	Bullets   map[string]*Bullet
	Active    bool
	StartTime int64
	Width     float64
	Height    float64

	mu          sync.Mutex
	loopRunning bool
}

func NewRoom(id string) *Room {
	return &Room{
		ID:      id,
		Players: make(map[string]*Player),
		Fishes:  make(map[string]*Fish),
		Bullets: make(map[string]*Bullet),
		Width:   PlayfieldWidth,
		Height:  PlayfieldHeight,
	}
}

// Snapshot is the full room state sent to a joining connection.
type Snapshot struct {
	ID        string             `json:"id"`
	Players   map[string]*Player `json:"players"`
	Fishes    map[string]*Fish   `json:"fishes"`
	Bullets   map[string]*Bullet `json:"bullets"`
	IsActive  bool               `json:"isActive"`
	StartTime int64              `json:"startTime"`
	Width     float64            `json:"gameAreaWidth"`
	Height    float64            `json:"gameAreaHeight"`
}

// snapshotLocked copies the room's collections so the result can be
// serialized after the room lock is released.
func (r *Room) snapshotLocked() Snapshot {
	s := Snapshot{
		ID:        r.ID,
		Players:   make(map[string]*Player, len(r.Players)),
		Fishes:    make(map[string]*Fish, len(r.Fishes)),
		Bullets:   make(map[string]*Bullet, len(r.Bullets)),
		IsActive:  r.Active,
		StartTime: r.StartTime,
		Width:     r.Width,
		Height:    r.Height,
	}
	for id, p := range r.Players {
		cp := *p
		s.Players[id] = &cp
	}
	for id, f := range r.Fishes {
		cf := *f
		s.Fishes[id] = &cf
	}
	for id, b := range r.Bullets {
		cb := *b
		s.Bullets[id] = &cb
	}
	return s
}

// Broadcaster fans room events out to connected clients. Implemented
// by the websocket hub; tests plug in a recorder.
type Broadcaster interface {
	Broadcast(roomID, event string, data any)
	BroadcastExcept(roomID, excludeUserID, event string, data any)
	SendToPlayer(roomID, userID, event string, data any)
}

// StatsRecorder receives best-effort counter updates. Implementations
// must never block the caller.
type StatsRecorder interface {
	RecordShot()
	RecordHit()
	RecordCollision()
	RecordPayout(amount float64)
}

// CollaboratorSyncer propagates balance and room-status changes to the
// session service, fire-and-forget.
type CollaboratorSyncer interface {
	SyncBalance(userID string, balance float64)
	SyncRoomStatus(roomID, status string)
}

// ConfigSource exposes the live-tunable simulation parameters.
type ConfigSource interface {
	SpawnInterval() time.Duration
	BulletSpeed() float64
}
