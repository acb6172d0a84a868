package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"fish-arcade/internal/game"
)

// GameService is the command surface the hub drives. Implemented by
// *game.Simulator.
type GameService interface {
	JoinRoom(roomID, userID, username string, balance float64) game.Snapshot
	LeaveRoom(roomID, userID string) bool
	MovePlayer(roomID, userID string, x, y float64) bool
	Fire(roomID, userID string, targetX, targetY float64) (*game.Bullet, error)
	StartGame(roomID string) bool
}

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// client is one websocket connection. Writes are serialized on mu so
// broadcasts from different rooms cannot interleave a frame.
type client struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	roomID string
	userID string
}

func (c *client) send(event string, data any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(map[string]any{"event": event, "data": data})
}

// Hub tracks which connections are joined to which room and fans room
// events out to them. It is the game.Broadcaster implementation.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*client]struct{}
	byPlayer map[string]map[string]*client // roomID -> userID -> client

	game        GameService
	connections atomic.Int64
}

func NewHub(g GameService) *Hub {
	return &Hub{
		rooms:    make(map[string]map[*client]struct{}),
		byPlayer: make(map[string]map[string]*client),
		game:     g,
	}
}

// Connections reports the number of live websocket connections.
func (h *Hub) Connections() int64 {
	return h.connections.Load()
}

// HandleWS upgrades the request and runs the connection's read loop.
// A connection starts unjoined; the first join-room command binds it
// to a room and player.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	cl := &client{conn: conn}
	total := h.connections.Add(1)
	log.Printf("Client connected, total: %d", total)

	defer func() {
		h.disconnect(cl)
		_ = conn.Close()
		log.Printf("Client disconnected, total: %d", h.connections.Add(-1))
	}()

	for {
		var msg envelope
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Error reading message: %v", err)
			}
			return
		}
		h.dispatch(cl, msg)
	}
}

func (h *Hub) dispatch(cl *client, msg envelope) {
	switch msg.Event {
	case "join-room":
		h.handleJoin(cl, msg.Data)
	case "leave-room":
		h.handleLeave(cl, msg.Data)
	case "player-move":
		h.handleMove(cl, msg.Data)
	case "fire-bullet":
		h.handleFire(cl, msg.Data)
	case "start-game":
		h.handleStart(cl, msg.Data)
	default:
		log.Printf("Unknown event: %s", msg.Event)
	}
}

func (h *Hub) handleJoin(cl *client, raw json.RawMessage) {
	var req struct {
		RoomID   string  `json:"roomId"`
		UserID   string  `json:"userId"`
		Username string  `json:"username"`
		Balance  float64 `json:"balance"`
	}
	if err := json.Unmarshal(raw, &req); err != nil || req.RoomID == "" || req.UserID == "" {
		log.Printf("Invalid join-room payload: %v", err)
		return
	}

	// A connection joined elsewhere leaves that room first.
	if roomID, userID := h.sessionOf(cl); roomID != "" && roomID != req.RoomID {
		h.game.LeaveRoom(roomID, userID)
		h.detach(cl)
	}

	h.attach(cl, req.RoomID, req.UserID)
	snap := h.game.JoinRoom(req.RoomID, req.UserID, req.Username, req.Balance)

	if err := cl.send("joined-room", gin.H{
		"roomId":    req.RoomID,
		"userId":    req.UserID,
		"gameState": snap,
	}); err != nil {
		log.Printf("Failed to send room snapshot: %v", err)
	}
}

func (h *Hub) handleLeave(cl *client, raw json.RawMessage) {
	var req struct {
		RoomID string `json:"roomId"`
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return
	}
	if h.game.LeaveRoom(req.RoomID, req.UserID) {
		if roomID, userID := h.sessionOf(cl); roomID == req.RoomID && userID == req.UserID {
			h.detach(cl)
		}
	}
}

func (h *Hub) handleMove(cl *client, raw json.RawMessage) {
	var req struct {
		RoomID string  `json:"roomId"`
		UserID string  `json:"userId"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return
	}
	h.game.MovePlayer(req.RoomID, req.UserID, req.X, req.Y)
}

func (h *Hub) handleFire(cl *client, raw json.RawMessage) {
	var req struct {
		RoomID  string  `json:"roomId"`
		UserID  string  `json:"userId"`
		X       float64 `json:"x"`
		Y       float64 `json:"y"`
		TargetX float64 `json:"targetX"`
		TargetY float64 `json:"targetY"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return
	}
	if _, err := h.game.Fire(req.RoomID, req.UserID, req.TargetX, req.TargetY); err != nil {
		log.Printf("Fire rejected for user %s in room %s: %v", req.UserID, req.RoomID, err)
	}
}

func (h *Hub) handleStart(cl *client, raw json.RawMessage) {
	var req struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(raw, &req); err != nil || req.RoomID == "" {
		return
	}
	h.game.StartGame(req.RoomID)
}

// disconnect mirrors an explicit leave using the connection's last
// known association.
func (h *Hub) disconnect(cl *client) {
	roomID, userID := h.sessionOf(cl)
	if roomID == "" {
		return
	}
	h.game.LeaveRoom(roomID, userID)
	h.detach(cl)
}

// sessionOf reads the connection's room/player binding under the hub
// lock; a reconnect on another connection may clear it concurrently.
func (h *Hub) sessionOf(cl *client) (roomID, userID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return cl.roomID, cl.userID
}

// attach binds a connection to (room, player). A reconnect replaces
// the stored handle and orphans the previous connection so its later
// teardown cannot remove the player again.
func (h *Hub) attach(cl *client, roomID, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.byPlayer[roomID][userID]; ok && prev != cl {
		delete(h.rooms[roomID], prev)
		prev.roomID = ""
		prev.userID = ""
	}

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*client]struct{})
	}
	if h.byPlayer[roomID] == nil {
		h.byPlayer[roomID] = make(map[string]*client)
	}
	h.rooms[roomID][cl] = struct{}{}
	h.byPlayer[roomID][userID] = cl
	cl.roomID = roomID
	cl.userID = userID
}

func (h *Hub) detach(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cl.roomID == "" {
		return
	}
	delete(h.rooms[cl.roomID], cl)
	if cur, ok := h.byPlayer[cl.roomID][cl.userID]; ok && cur == cl {
		delete(h.byPlayer[cl.roomID], cl.userID)
	}
	cl.roomID = ""
	cl.userID = ""
}

// Broadcast sends a room event to every connection joined to the room.
func (h *Hub) Broadcast(roomID, event string, data any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for cl := range h.rooms[roomID] {
		if err := cl.send(event, data); err != nil {
			log.Printf("Failed to send %s: %v", event, err)
		}
	}
}

// BroadcastExcept sends to the room minus one player, used for events
// the origin already knows about.
func (h *Hub) BroadcastExcept(roomID, excludeUserID, event string, data any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	excluded := h.byPlayer[roomID][excludeUserID]
	for cl := range h.rooms[roomID] {
		if cl == excluded {
			continue
		}
		if err := cl.send(event, data); err != nil {
			log.Printf("Failed to send %s: %v", event, err)
		}
	}
}

// SendToPlayer delivers a player-directed event such as a balance
// update to that player's connection only.
func (h *Hub) SendToPlayer(roomID, userID, event string, data any) {
	h.mu.RLock()
	cl := h.byPlayer[roomID][userID]
	h.mu.RUnlock()
	if cl == nil {
		return
	}
	if err := cl.send(event, data); err != nil {
		log.Printf("Failed to send %s to player %s: %v", event, userID, err)
	}
}

// BroadcastAll reaches every connection regardless of room, used for
// global config-update notifications.
func (h *Hub) BroadcastAll(event string, data any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.rooms {
		for cl := range clients {
			if err := cl.send(event, data); err != nil {
				log.Printf("Failed to send %s: %v", event, err)
			}
		}
	}
}
