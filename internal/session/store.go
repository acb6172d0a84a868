// Package session implements the lobby/user/wallet collaborator
// service: plain request/response CRUD over an in-memory store. The
// game server talks to it only through the wallet update-balance and
// lobby update-status endpoints.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserExists      = errors.New("username already exists")
	ErrBadCredentials  = errors.New("invalid username or password")
	ErrUserNotFound    = errors.New("user not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrAlreadyInRoom   = errors.New("player already in room")
	ErrPlayerNotInRoom = errors.New("player not in room")
)

type User struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type LobbyRoom struct {
	ID         string    `json:"roomId"`
	Name       string    `json:"name"`
	Status     string    `json:"status"` // "waiting" or "playing"
	Players    []string  `json:"players"`
	MaxPlayers int       `json:"maxPlayers"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Store struct {
	mu    sync.RWMutex
	users map[string]*User // username -> user
	rooms map[string]*LobbyRoom
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]*User),
		rooms: make(map[string]*LobbyRoom),
	}
}

func (s *Store) Register(username, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return nil, ErrUserExists
	}
	u := &User{
		UserID:    "user_" + uuid.NewString(),
		Username:  username,
		Password:  password,
		Balance:   1000.00,
		CreatedAt: time.Now(),
	}
	s.users[username] = u
	return u, nil
}

func (s *Store) Login(username, password string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok || u.Password != password {
		return nil, ErrBadCredentials
	}
	return u, nil
}

func (s *Store) Balance(userID string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.UserID == userID {
			return u.Balance, true
		}
	}
	return 0, false
}

func (s *Store) UpdateBalance(userID string, balance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.UserID == userID {
			u.Balance = balance
			u.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrUserNotFound
}

func (s *Store) Rooms() []*LobbyRoom {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*LobbyRoom, 0, len(s.rooms))
	for _, r := range s.rooms {
		cp := *r
		cp.Players = append([]string(nil), r.Players...)
		out = append(out, &cp)
	}
	return out
}

func (s *Store) CreateRoom(name string, maxPlayers int) *LobbyRoom {
	if maxPlayers <= 0 {
		maxPlayers = 4
	}
	r := &LobbyRoom{
		ID:         "room_" + uuid.NewString(),
		Name:       name,
		Status:     "waiting",
		MaxPlayers: maxPlayers,
		CreatedAt:  time.Now(),
	}
	s.mu.Lock()
	s.rooms[r.ID] = r
	s.mu.Unlock()
	return r
}

func (s *Store) JoinRoom(roomID, userID string) (*LobbyRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	for _, p := range r.Players {
		if p == userID {
			return nil, ErrAlreadyInRoom
		}
	}
	if len(r.Players) >= r.MaxPlayers {
		return nil, ErrRoomFull
	}
	r.Players = append(r.Players, userID)
	r.UpdatedAt = time.Now()
	return r, nil
}

func (s *Store) LeaveRoom(roomID, userID string) (*LobbyRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	for i, p := range r.Players {
		if p == userID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			r.UpdatedAt = time.Now()
			return r, nil
		}
	}
	return nil, ErrPlayerNotInRoom
}

func (s *Store) UpdateRoomStatus(roomID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	return nil
}

func (s *Store) DeleteRoom(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[roomID]; !ok {
		return ErrRoomNotFound
	}
	delete(s.rooms, roomID)
	return nil
}
