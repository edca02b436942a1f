package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/SammyBolger/NBA-Analytics/internal/api/middleware"
	"github.com/SammyBolger/NBA-Analytics/internal/gamestate"
	"github.com/SammyBolger/NBA-Analytics/internal/models"
	"github.com/SammyBolger/NBA-Analytics/internal/picks"
	"github.com/SammyBolger/NBA-Analytics/pkg/logger"
	"github.com/SammyBolger/NBA-Analytics/pkg/utils"
)

// PickService is the reconciler as the handlers use it.
type PickService interface {
	SubmitPick(ctx context.Context, userID uint, req models.PickRequest) (picks.Outcome, error)
	DeletePick(ctx context.Context, userID, pickID uint) error
	ListPicks(ctx context.Context, userID uint) ([]models.Pick, error)
	Record(ctx context.Context, userID uint) ([]models.Pick, picks.Stats, error)
}

type PicksHandler struct {
	picks  PickService
	feed   FeedReader
	clock  Clock
	logger *logrus.Logger
}

type CreatePickRequest struct {
	GameID    int             `json:"game_id" binding:"required"`
	PickType  models.PickType `json:"pick_type"`
	Selection string          `json:"selection" binding:"required"`
	Odds      int             `json:"odds"`
	Stake     *float64        `json:"stake"`
	Notes     string          `json:"notes"`
}

func NewPicksHandler(picks PickService, feed FeedReader, clock Clock, logger *logrus.Logger) *PicksHandler {
	return &PicksHandler{
		picks:  picks,
		feed:   feed,
		clock:  clock,
		logger: logger,
	}
}

// GetPicks returns the caller's picks and record
// GET /api/picks
func (h *PicksHandler) GetPicks(c *gin.Context) {
	list, stats, err := h.picks.Record(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []models.Pick{}
	}
	c.JSON(http.StatusOK, gin.H{
		"picks":  list,
		"stats":  stats,
		"record": stats.Record(),
	})
}

// CreatePick creates or switches the caller's pick on a game
// POST /api/picks
func (h *PicksHandler) CreatePick(c *gin.Context) {
	var req CreatePickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if state, ok := h.gameState(req.GameID); ok && !state.IsScheduled() {
		utils.SendBadRequest(c, "Cannot place picks on live or completed games")
		return
	}

	stake := 1.0
	if req.Stake != nil {
		stake = *req.Stake
	}

	userID := middleware.UserID(c)
	outcome, err := h.picks.SubmitPick(c.Request.Context(), userID, models.PickRequest{
		GameID:    req.GameID,
		PickType:  req.PickType,
		Selection: req.Selection,
		Odds:      req.Odds,
		Stake:     stake,
		Notes:     req.Notes,
	})
	if err != nil {
		logger.WithPickContext(userID, req.GameID, string(req.PickType)).WithError(err).Debug("Pick rejected")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     outcome.Pick.ID,
		"status": outcome.Status,
		"pick":   outcome.Pick,
	})
}

// DeletePick removes one of the caller's pending picks
// DELETE /api/picks/:id
func (h *PicksHandler) DeletePick(c *gin.Context) {
	pickID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || pickID == 0 {
		utils.SendBadRequest(c, "Invalid pick ID")
		return
	}

	if err := h.picks.DeletePick(c.Request.Context(), middleware.UserID(c), uint(pickID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ExportPicks streams the caller's picks as CSV
// GET /api/picks/export
func (h *PicksHandler) ExportPicks(c *gin.Context) {
	list, err := h.picks.ListPicks(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("nba_picks_%s.csv", gamestate.DateKey(h.clock.Today(), h.clock.Location))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)

	if err := picks.WriteCSV(c.Writer, list); err != nil {
		h.logger.WithError(err).Error("Failed to write pick export")
	}
}

// gameState classifies a game from the latest snapshots. Unknown games
// report false.
func (h *PicksHandler) gameState(gameID int) (gamestate.State, bool) {
	if games, ok := h.feed.Today(); ok {
		for _, g := range games {
			if g.ID == gameID {
				return gamestate.Classify(g.Status, h.clock.Location), true
			}
		}
	}
	if records, ok := h.feed.Odds(); ok {
		for _, r := range records {
			if r.GameID == gameID {
				return gamestate.Classify(r.Status, h.clock.Location), true
			}
		}
	}
	return gamestate.State{}, false
}
