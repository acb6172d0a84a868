package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fish-arcade/internal/api/ws"
	"fish-arcade/internal/game"
)

// @Summary Service health
// @Description Liveness probe with current connection count
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func HealthHandler(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"service":     "game-server-service",
			"version":     "1.0.0",
			"connections": hub.Connections(),
		})
	}
}

// @Summary Start a game
// @Description Activates the room and launches its fish spawning loop
// @Tags Game
// @Accept json
// @Produce json
// @Param request body StartGameRequest true "Room info"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/game/start [post]
func StartGameHandler(sim *game.Simulator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartGameRequest
		if err := c.BindJSON(&req); err != nil || req.RoomID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "roomId required"})
			return
		}
		sim.StartGame(req.RoomID)
		state, _ := sim.RoomState(req.RoomID)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "game started",
			"data": gin.H{
				"roomId":    req.RoomID,
				"gameState": state,
			},
		})
	}
}

// @Summary Fire a bullet
// @Description Debits the shot cost and launches a bullet toward the target
// @Tags Game
// @Accept json
// @Produce json
// @Param request body ShootRequest true "Shot info"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/game/shoot [post]
func ShootHandler(sim *game.Simulator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ShootRequest
		if err := c.BindJSON(&req); err != nil || req.RoomID == "" || req.UserID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "roomId and userId required"})
			return
		}
		bullet, err := sim.Fire(req.RoomID, req.UserID, req.TargetX, req.TargetY)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "shot fired",
			"data":    gin.H{"bulletId": bullet.ID, "bullet": bullet},
		})
	}
}

// @Summary Detect a collision
// @Description Request/response hit test between a bullet and a fish
// @Tags Game
// @Accept json
// @Produce json
// @Param request body CollisionDetectRequest true "Entities to test"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/collision/detect [post]
func CollisionDetectHandler(sim *game.Simulator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CollisionDetectRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid payload"})
			return
		}
		hit, reward, ok := sim.DetectCollision(req.RoomID, req.BulletID, req.FishID)
		if !ok {
			c.JSON(http.StatusOK, gin.H{
				"success": false,
				"message": "bullet or fish not found",
				"data":    gin.H{"hit": false, "reward": 0},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "collision check complete",
			"data": gin.H{
				"hit":      hit,
				"reward":   reward,
				"fishId":   req.FishID,
				"bulletId": req.BulletID,
			},
		})
	}
}

// @Summary Room state
// @Description Full snapshot of one room's players, fish and bullets
// @Tags Game
// @Produce json
// @Param roomId path string true "Room ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/game/room/{roomId}/state [get]
func RoomStateHandler(sim *game.Simulator) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, ok := sim.RoomState(c.Param("roomId"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "room not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": state})
	}
}
