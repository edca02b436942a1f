package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// BreakerReporter exposes the feed circuit breaker state.
type BreakerReporter interface {
	BreakerState() string
}

type HealthHandler struct {
	feed    FeedReader
	breaker BreakerReporter
}

func NewHealthHandler(feed FeedReader, breaker BreakerReporter) *HealthHandler {
	return &HealthHandler{
		feed:    feed,
		breaker: breaker,
	}
}

// GetHealth is the liveness probe; it answers 200 whenever the server runs
// GET /health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "nba-analytics",
	})
}

// GetStatus reports snapshot freshness and the breaker state
// GET /api/status
func (h *HealthHandler) GetStatus(c *gin.Context) {
	feed := h.feed.Status()

	status := "ok"
	if feed.Today.Stale || feed.Odds.Stale {
		status = "degraded"
	}

	breaker := "unknown"
	if h.breaker != nil {
		breaker = h.breaker.BreakerState()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"feed":      feed,
		"breaker":   breaker,
	})
}
