package session

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// @Summary Service health
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   "game-session-service",
			"version":   "1.0.0",
		})
	}
}

// @Summary Register a user
// @Tags Users
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/users/register [post]
func RegisterHandler(s *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.BindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "username and password required"})
			return
		}
		u, err := s.Register(req.Username, req.Password)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "user registered",
			"data":    gin.H{"userId": u.UserID, "username": u.Username},
		})
	}
}

// @Summary Log a user in
// @Tags Users
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/users/login [post]
func LoginHandler(s *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.BindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "username and password required"})
			return
		}
		u, err := s.Login(req.Username, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "login successful",
			"data": gin.H{
				"token":    "session_" + uuid.NewString(),
				"userId":   u.UserID,
				"username": u.Username,
				"balance":  u.Balance,
			},
		})
	}
}

// @Summary Wallet balance
// @Tags Wallet
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/wallet/balance/{userId} [get]
func BalanceHandler(s *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		balance, ok := s.Balance(c.Param("userId"))
		if !ok {
			balance = 1000.00
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"balance": balance}})
	}
}

// @Summary Update wallet balance
// @Description Called by the game server after every balance mutation
// @Tags Wallet
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/wallet/update-balance [post]
func UpdateBalanceHandler(s *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID  string   `json:"userId"`
			Balance *float64 `json:"balance"`
		}
		if err := c.BindJSON(&req); err != nil || req.UserID == "" || req.Balance == nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "userId and balance required"})
			return
		}
		if err := s.UpdateBalance(req.UserID, *req.Balance); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
			return
		}
		log.Printf("Updated balance for user %s: %v", req.UserID, *req.Balance)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "balance updated",
			"data":    gin.H{"userId": req.UserID, "balance": *req.Balance},
		})
	}
}

// @Summary List lobby rooms
// @Tags Lobby
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/lobby/rooms [get]
func ListRoomsHandler(s *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"rooms": s.Rooms()}})
	}
}

// @Summary Create a lobby room
// @Tags Lobby
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/lobby/rooms/create [post]
func CreateRoomHandler(s *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name       string `json:"name"`
			MaxPlayers int    `json:"maxPlayers"`
		}
		if err := c.BindJSON(&req); err != nil || req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "name required"})
			return
		}
		room := s.CreateRoom(req.Name, req.MaxPlayers)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "room created", "data": gin.H{"room": room}})
	}
}

// @Summary Join a lobby room
// @Tags Lobby
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/lobby/rooms/{roomId}/join [post]
func JoinRoomHandler(s *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID string `json:"userId"`
		}
		if err := c.BindJSON(&req); err != nil || req.UserID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "userId required"})
			return
		}
		room, err := s.JoinRoom(c.Param("roomId"), req.UserID)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, ErrRoomNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "joined room", "data": gin.H{"room": room}})
	}
}

// @Summary Leave a lobby room
// @Tags Lobby
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/lobby/rooms/{roomId}/leave [post]
func LeaveRoomHandler(s *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID string `json:"userId"`
		}
		if err := c.BindJSON(&req); err != nil || req.UserID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "userId required"})
			return
		}
		room, err := s.LeaveRoom(c.Param("roomId"), req.UserID)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, ErrRoomNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "left room", "data": gin.H{"room": room}})
	}
}

// @Summary Update room status
// @Description Called by the game server when a room starts or empties
// @Tags Lobby
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/lobby/rooms/update-status [post]
func UpdateRoomStatusHandler(s *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			RoomID string `json:"roomId"`
			Status string `json:"status"`
		}
		if err := c.BindJSON(&req); err != nil || req.RoomID == "" || req.Status == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "roomId and status required"})
			return
		}
		if err := s.UpdateRoomStatus(req.RoomID, req.Status); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
			return
		}
		log.Printf("Updated room status for room %s: %s", req.RoomID, req.Status)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "room status updated",
			"data":    gin.H{"roomId": req.RoomID, "status": req.Status},
		})
	}
}

// @Summary Delete a lobby room
// @Tags Lobby
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/lobby/rooms/{roomId} [delete]
func DeleteRoomHandler(s *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.DeleteRoom(c.Param("roomId")); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "room deleted"})
	}
}

func SetupRouter(s *Store) *gin.Engine {
	r := gin.Default()

	r.GET("/health", HealthHandler())

	r.POST("/api/v1/users/register", RegisterHandler(s))
	r.POST("/api/v1/users/login", LoginHandler(s))

	r.GET("/api/v1/wallet/balance/:userId", BalanceHandler(s))
	r.POST("/api/v1/wallet/update-balance", UpdateBalanceHandler(s))

	r.GET("/api/v1/lobby/rooms", ListRoomsHandler(s))
	r.POST("/api/v1/lobby/rooms/create", CreateRoomHandler(s))
	r.POST("/api/v1/lobby/rooms/:roomId/join", JoinRoomHandler(s))
	r.POST("/api/v1/lobby/rooms/:roomId/leave", LeaveRoomHandler(s))
	r.POST("/api/v1/lobby/rooms/update-status", UpdateRoomStatusHandler(s))
	r.DELETE("/api/v1/lobby/rooms/:roomId", DeleteRoomHandler(s))

	return r
}
