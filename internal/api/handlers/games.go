package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/SammyBolger/NBA-Analytics/internal/gamestate"
	"github.com/SammyBolger/NBA-Analytics/internal/models"
	"github.com/SammyBolger/NBA-Analytics/internal/services"
	"github.com/SammyBolger/NBA-Analytics/pkg/utils"
)

// FeedReader serves the latest feed snapshots. *services.FeedPoller
// satisfies it.
type FeedReader interface {
	Today() ([]models.Game, bool)
	Odds() ([]models.ModelOdds, bool)
	Calendar(ctx context.Context) (models.CalendarResponse, error)
	Status() services.FeedStatus
}

// Clock is the dashboard's notion of the current basketball day.
type Clock struct {
	Location   *time.Location
	CutoffHour int
	Now        func() time.Time
}

// Today returns the current basketball day.
func (c Clock) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return gamestate.NBADay(now(), c.Location, c.CutoffHour)
}

type GamesHandler struct {
	feed   FeedReader
	clock  Clock
	logger *logrus.Logger
}

func NewGamesHandler(feed FeedReader, clock Clock, logger *logrus.Logger) *GamesHandler {
	return &GamesHandler{
		feed:   feed,
		clock:  clock,
		logger: logger,
	}
}

// GetTodayGames returns today's games as the feed reported them
// GET /api/games/today
func (h *GamesHandler) GetTodayGames(c *gin.Context) {
	games, ok := h.feed.Today()
	if !ok {
		utils.SendServiceUnavailable(c, "Games have not been loaded yet")
		return
	}
	if games == nil {
		games = []models.Game{}
	}
	c.JSON(http.StatusOK, games)
}

// GetTodayBoard returns today's games split into live, upcoming and final
// GET /api/games/today/board
func (h *GamesHandler) GetTodayBoard(c *gin.Context) {
	games, ok := h.feed.Today()
	if !ok {
		utils.SendServiceUnavailable(c, "Games have not been loaded yet")
		return
	}

	board := gamestate.Order(games, h.clock.Location)
	c.JSON(http.StatusOK, gin.H{
		"date":      gamestate.DateKey(h.clock.Today(), h.clock.Location),
		"live":      board.Live,
		"scheduled": board.Scheduled,
		"final":     board.Final,
		"count":     board.Len(),
	})
}

// GetCalendar returns all known games keyed by date
// GET /api/games/calendar
func (h *GamesHandler) GetCalendar(c *gin.Context) {
	cal, err := h.feed.Calendar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cal)
}

// GetCalendarMonth renders one month grid plus the games of a selected day
// GET /api/games/calendar/month?month=YYYY-MM&selected=YYYY-MM-DD
func (h *GamesHandler) GetCalendarMonth(c *gin.Context) {
	today := h.clock.Today()
	year, month := today.Year(), today.Month()

	if raw := c.Query("month"); raw != "" {
		var err error
		year, month, err = gamestate.ParseMonth(raw)
		if err != nil {
			utils.SendBadRequest(c, err.Error())
			return
		}
	}

	cal, err := h.feed.Calendar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	grid := gamestate.BuildMonth(cal.Dates, year, month, today, h.clock.Location)

	selected := c.Query("selected")
	if selected == "" {
		selected = gamestate.DateKey(today, h.clock.Location)
	}
	selectedKey, ok := gamestate.NormalizeDateKey(selected)
	if !ok {
		utils.SendBadRequest(c, "selected must be a YYYY-MM-DD date")
		return
	}

	games := grid.Lookup(selectedKey)
	if games == nil {
		games = []models.Game{}
	}
	c.JSON(http.StatusOK, gin.H{
		"month": grid,
		"selected": gin.H{
			"date":  selectedKey,
			"games": games,
			"board": gamestate.Order(games, h.clock.Location),
		},
	})
}
