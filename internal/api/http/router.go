package http

import (
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"

	"fish-arcade/internal/api/ws"
	"fish-arcade/internal/game"
	"fish-arcade/internal/store"
)

func SetupRouter(sim *game.Simulator, stats *store.Stats, settings *store.Settings, hub *ws.Hub) *gin.Engine {
	r := gin.Default()

	// WebSocket command surface
	r.GET("/ws", hub.HandleWS)

	r.GET("/health", HealthHandler(hub))

	// --- GAME ENDPOINTS ---
	r.POST("/api/v1/game/start", StartGameHandler(sim))
	r.POST("/api/v1/game/shoot", ShootHandler(sim))
	r.POST("/api/v1/collision/detect", CollisionDetectHandler(sim))
	r.GET("/api/v1/game/room/:roomId/state", RoomStateHandler(sim))

	// --- ADMIN ENDPOINTS ---
	r.GET("/admin/api/stats", StatsHandler(sim, stats))
	r.GET("/admin/api/config", GetConfigHandler(settings))
	r.POST("/admin/api/config/update", UpdateConfigHandler(settings, hub))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
