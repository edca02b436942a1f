package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/SammyBolger/NBA-Analytics/internal/models"
	"github.com/SammyBolger/NBA-Analytics/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	celtics = models.Team{ID: 2, Abbreviation: "BOS", FullName: "Boston Celtics"}
	lakers  = models.Team{ID: 14, Abbreviation: "LAL", FullName: "Los Angeles Lakers"}
)

// fakeFeed serves fixed snapshots.
type fakeFeed struct {
	today    []models.Game
	hasToday bool
	odds     []models.ModelOdds
	hasOdds  bool
	calendar models.CalendarResponse
	calErr   error
}

func (f *fakeFeed) Today() ([]models.Game, bool)     { return f.today, f.hasToday }
func (f *fakeFeed) Odds() ([]models.ModelOdds, bool) { return f.odds, f.hasOdds }

func (f *fakeFeed) Calendar(ctx context.Context) (models.CalendarResponse, error) {
	return f.calendar, f.calErr
}

func (f *fakeFeed) Status() services.FeedStatus {
	return services.FeedStatus{}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func chicago(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	return loc
}

// testClock pins the basketball day to 2024-01-15 in Chicago.
func testClock(t *testing.T) Clock {
	loc := chicago(t)
	return Clock{
		Location:   loc,
		CutoffHour: 1,
		Now: func() time.Time {
			return time.Date(2024, time.January, 15, 12, 0, 0, 0, loc)
		},
	}
}

func game(id int, status string) models.Game {
	g := models.Game{ID: id, HomeTeam: celtics, AwayTeam: lakers}
	if status != "" {
		g.Status = models.StatusPtr(status)
	}
	return g
}

func oddsRecord(id int, status string, home float64, conf models.Confidence) models.ModelOdds {
	r := models.ModelOdds{
		GameID:      id,
		HomeTeam:    celtics,
		AwayTeam:    lakers,
		HomeWinProb: home,
		AwayWinProb: 1 - home,
		Confidence:  conf,
	}
	if status != "" {
		r.Status = models.StatusPtr(status)
	}
	return r
}

// withUser stands in for the session middleware.
func withUser(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != 0 {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") && strings.HasPrefix(w.Body.String(), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}
