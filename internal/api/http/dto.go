package http

// StartGameRequest represents the payload for /api/v1/game/start.
type StartGameRequest struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// ShootRequest represents the payload for /api/v1/game/shoot.
type ShootRequest struct {
	RoomID  string  `json:"roomId"`
	UserID  string  `json:"userId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	TargetX float64 `json:"targetX"`
	TargetY float64 `json:"targetY"`
}

// CollisionDetectRequest represents the payload for /api/v1/collision/detect.
type CollisionDetectRequest struct {
	RoomID   string `json:"roomId"`
	BulletID string `json:"bulletId"`
	FishID   string `json:"fishId"`
}

// ConfigUpdateRequest maps config keys to their new values for
// /admin/api/config/update.
type ConfigUpdateRequest map[string]float64
