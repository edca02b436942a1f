package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/SammyBolger/NBA-Analytics/internal/api/middleware"
	"github.com/SammyBolger/NBA-Analytics/internal/models"
	"github.com/SammyBolger/NBA-Analytics/internal/predictions"
	"github.com/SammyBolger/NBA-Analytics/pkg/utils"
)

// PickLister loads a user's picks for lock rendering.
type PickLister interface {
	ListPicks(ctx context.Context, userID uint) ([]models.Pick, error)
}

type OddsHandler struct {
	feed   FeedReader
	picks  PickLister
	clock  Clock
	logger *logrus.Logger
}

func NewOddsHandler(feed FeedReader, picks PickLister, clock Clock, logger *logrus.Logger) *OddsHandler {
	return &OddsHandler{
		feed:   feed,
		picks:  picks,
		clock:  clock,
		logger: logger,
	}
}

// GetModelOdds returns every prediction record in the snapshot
// GET /api/model-odds
func (h *OddsHandler) GetModelOdds(c *gin.Context) {
	records, ok := h.feed.Odds()
	if !ok {
		utils.SendServiceUnavailable(c, "Model odds have not been loaded yet")
		return
	}
	if records == nil {
		records = []models.ModelOdds{}
	}
	c.JSON(http.StatusOK, records)
}

// GetOddsBoard returns pre-game predictions in the requested confidence tier,
// with the caller's existing picks marked when a session is present
// GET /api/model-odds/board?tier=all|medium|high
func (h *OddsHandler) GetOddsBoard(c *gin.Context) {
	tier, err := predictions.ParseTier(c.Query("tier"))
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	records, ok := h.feed.Odds()
	if !ok {
		utils.SendServiceUnavailable(c, "Model odds have not been loaded yet")
		return
	}

	var userPicks []models.Pick
	if userID := middleware.UserID(c); userID != 0 {
		userPicks, err = h.picks.ListPicks(c.Request.Context(), userID)
		if err != nil {
			// The board is still useful without lock state.
			h.logger.WithError(err).WithField("user_id", userID).Warn("Failed to load picks for odds board")
			userPicks = nil
		}
	}

	c.JSON(http.StatusOK, predictions.BuildBoard(records, userPicks, tier, h.clock.Location))
}
