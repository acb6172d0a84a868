package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fish-arcade/internal/api/ws"
	"fish-arcade/internal/game"
	"fish-arcade/internal/store"
)

// @Summary Live game statistics
// @Description Aggregates in-process room counts with today's redis counters
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /admin/api/stats [get]
func StatsHandler(sim *game.Simulator, stats *store.Stats) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !stats.Available() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"message": "stats unavailable: store not connected",
			})
			return
		}
		agg := sim.Aggregate()
		today, err := stats.Today(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"activeRooms":     agg.ActiveRooms,
				"fishCount":       agg.FishCount,
				"bulletCount":     agg.BulletCount,
				"todayCollisions": today.Collisions,
				"hitRate":         today.HitRate,
				"totalPayout":     today.Payout,
			},
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary Current simulation config
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /admin/api/config [get]
func GetConfigHandler(settings *store.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !settings.Available() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"message": "config unavailable: store not connected",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"data":      settings.Current(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary Update simulation config
// @Description Validates each key against its accepted range, persists to the store and notifies all clients
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body ConfigUpdateRequest true "Key/value updates"
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /admin/api/config/update [post]
func UpdateConfigHandler(settings *store.Settings, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !settings.Available() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"message": "config unavailable: store not connected",
			})
			return
		}
		var updates ConfigUpdateRequest
		if err := c.BindJSON(&updates); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid payload"})
			return
		}

		results := gin.H{}
		for key, value := range updates {
			if err := settings.Update(c.Request.Context(), key, value); err != nil {
				results[key] = gin.H{"success": false, "error": err.Error()}
				continue
			}
			results[key] = gin.H{"success": true, "value": value}
			hub.BroadcastAll("config-update", gin.H{
				"key":       key,
				"value":     value,
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "config update complete",
			"results": results,
		})
	}
}
