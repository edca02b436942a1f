package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/SammyBolger/NBA-Analytics/internal/api/middleware"
	"github.com/SammyBolger/NBA-Analytics/internal/models"
	"github.com/SammyBolger/NBA-Analytics/internal/services"
	"github.com/SammyBolger/NBA-Analytics/pkg/database"
)

const modelHealthTTL = 5 * time.Minute

// ModelCache holds the last model health answer. *services.CacheService
// satisfies it.
type ModelCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ModelProxy is the part of the feed client that serves model metrics.
type ModelProxy interface {
	ModelHealth(ctx context.Context) (models.ModelHealth, error)
	Retrain(ctx context.Context) (json.RawMessage, error)
}

type ModelHandler struct {
	proxy  ModelProxy
	cache  ModelCache
	db     *database.DB
	logger *logrus.Logger
}

// NewModelHandler builds the handler. cache may be nil.
func NewModelHandler(proxy ModelProxy, cache ModelCache, db *database.DB, logger *logrus.Logger) *ModelHandler {
	return &ModelHandler{
		proxy:  proxy,
		cache:  cache,
		db:     db,
		logger: logger,
	}
}

// GetModelHealth returns per-model accuracy metrics
// GET /api/model/health
func (h *ModelHandler) GetModelHealth(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cache != nil {
		var cached models.ModelHealth
		err := h.cache.Get(ctx, services.ModelHealthCacheKey(), &cached)
		if err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
		if !errors.Is(err, services.ErrCacheMiss) {
			h.logger.WithError(err).Warn("Model health cache read failed")
		}
	}

	health, err := h.proxy.ModelHealth(ctx)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to fetch model health")
		respondError(c, err)
		return
	}
	if health.Models == nil {
		health.Models = map[string]map[string]models.ModelMetric{}
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, services.ModelHealthCacheKey(), health, modelHealthTTL); err != nil {
			h.logger.WithError(err).Warn("Failed to cache model health")
		}
	}

	c.JSON(http.StatusOK, health)
}

// Retrain asks the provider to retrain and records the run
// POST /api/model/retrain
func (h *ModelHandler) Retrain(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	results, err := h.proxy.Retrain(ctx)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Warn("Retrain request failed")
		respondError(c, err)
		return
	}

	run := models.RetrainRun{
		TriggeredBy: userID,
		Results:     datatypes.JSON(results),
	}
	if err := h.db.WithContext(ctx).Create(&run).Error; err != nil {
		// The provider already retrained; losing the audit row is not fatal.
		h.logger.WithError(err).Error("Failed to record retrain run")
	}

	if h.cache != nil {
		if err := h.cache.Delete(ctx, services.ModelHealthCacheKey()); err != nil {
			h.logger.WithError(err).Warn("Failed to invalidate model health cache")
		}
	}

	h.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"run_id":  run.ID,
	}).Info("Model retrain triggered")

	c.JSON(http.StatusOK, gin.H{
		"status":  "retrained",
		"run_id":  run.ID,
		"results": json.RawMessage(results),
	})
}
