package handlers

import (
	"net/http"

	"github.com/arnavshah/housekeeping-api-go/pkg/database"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetMyUsage returns usage stats for the authenticated API key
func (h *Handler) GetMyUsage(c *gin.Context) {
	apiKey, ok := currentKey(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}

	body := gin.H{
		"key_name":   apiKey.Name,
		"rate_limit": apiKey.RateLimit,
	}
	if h.Limiter != nil {
		today, err := h.Limiter.Peek(c.Request.Context(), apiKey.Name, apiKey.RateLimit)
		if err != nil {
			h.log().Warn("rate limiter unavailable", zap.Error(err))
		} else {
			body["today"] = today
		}
	}
	if h.DB == nil || apiKey.ID == 0 {
		c.JSON(http.StatusOK, body)
		return
	}

	usage, err := database.UsageHistory(h.DB, apiKey.ID, 30)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}

	// Calculate totals
	var totalRequests, totalRooms, totalHousekeepers int64
	for _, u := range usage {
		totalRequests += int64(u.RequestCount)
		totalRooms += int64(u.TotalRooms)
		totalHousekeepers += int64(u.TotalHousekeepers)
	}

	body["usage_history"] = usage
	body["totals"] = gin.H{
		"requests":     totalRequests,
		"rooms":        totalRooms,
		"housekeepers": totalHousekeepers,
	}
	c.JSON(http.StatusOK, body)
}

// ListRuns returns the latest allocation runs of the authenticated key
func (h *Handler) ListRuns(c *gin.Context) {
	apiKey, ok := currentKey(c)
	if !ok || h.DB == nil || apiKey.ID == 0 {
		c.JSON(http.StatusOK, gin.H{"runs": []database.AllocationRun{}})
		return
	}

	runs, err := database.RecentRuns(h.DB, apiKey.ID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
