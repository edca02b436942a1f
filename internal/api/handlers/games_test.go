package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SammyBolger/NBA-Analytics/internal/models"
	"github.com/SammyBolger/NBA-Analytics/internal/providers"
)

func gamesRouter(t *testing.T, feed *fakeFeed) *gin.Engine {
	h := NewGamesHandler(feed, testClock(t), quietLogger())
	r := gin.New()
	r.GET("/games/today", h.GetTodayGames)
	r.GET("/games/today/board", h.GetTodayBoard)
	r.GET("/games/calendar", h.GetCalendar)
	r.GET("/games/calendar/month", h.GetCalendarMonth)
	return r
}

func boardIDs(t *testing.T, v interface{}) []int {
	t.Helper()
	list, ok := v.([]interface{})
	require.True(t, ok, "expected a list, got %T", v)
	ids := make([]int, 0, len(list))
	for _, item := range list {
		ids = append(ids, int(item.(map[string]interface{})["id"].(float64)))
	}
	return ids
}

func TestGetTodayGamesBeforeFirstFetch(t *testing.T) {
	r := gamesRouter(t, &fakeFeed{})

	w, body := doJSON(t, r, http.MethodGet, "/games/today", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Games have not been loaded yet", body["detail"])

	w, _ = doJSON(t, r, http.MethodGet, "/games/today/board", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetTodayGamesEmptySlate(t *testing.T) {
	r := gamesRouter(t, &fakeFeed{hasToday: true})

	w, _ := doJSON(t, r, http.MethodGet, "/games/today", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetTodayBoard(t *testing.T) {
	feed := &fakeFeed{
		hasToday: true,
		today: []models.Game{
			game(1, "Final"),
			game(2, "2024-01-15T19:00:00Z"),
			game(3, "3rd Qtr"),
			game(4, "2024-01-15T17:30:00Z"),
			game(5, "Final/OT"),
		},
	}
	r := gamesRouter(t, feed)

	w, body := doJSON(t, r, http.MethodGet, "/games/today/board", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "2024-01-15", body["date"])
	assert.Equal(t, float64(5), body["count"])
	assert.Equal(t, []int{3, 5}, boardIDs(t, body["live"]))
	assert.Equal(t, []int{4, 2}, boardIDs(t, body["scheduled"]))
	assert.Equal(t, []int{1}, boardIDs(t, body["final"]))
}

func TestGetCalendarFeedDown(t *testing.T) {
	feed := &fakeFeed{calErr: providers.ErrFeedUnavailable}
	r := gamesRouter(t, feed)

	w, _ := doJSON(t, r, http.MethodGet, "/games/calendar", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	feed.calErr = &providers.APIError{StatusCode: http.StatusBadGateway, Detail: "upstream exploded"}
	w, body := doJSON(t, r, http.MethodGet, "/games/calendar", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "upstream exploded", body["detail"])

	feed.calErr = errors.New("boom")
	w, _ = doJSON(t, r, http.MethodGet, "/games/calendar", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetCalendarMonth(t *testing.T) {
	feed := &fakeFeed{
		calendar: models.CalendarResponse{Dates: map[string][]models.Game{
			"2024-01-15":           {game(10, "Final")},
			"2024-01-15T00:00:00Z": {game(11, "2nd Qtr")},
			"2024-01-20":           {game(12, "2024-01-20T19:00:00Z")},
		}},
	}
	r := gamesRouter(t, feed)

	t.Run("defaults to today", func(t *testing.T) {
		w, body := doJSON(t, r, http.MethodGet, "/games/calendar/month", "")
		require.Equal(t, http.StatusOK, w.Code)

		month := body["month"].(map[string]interface{})
		assert.Equal(t, "January 2024", month["title"])
		// January 2024 starts on a Monday.
		cells := month["cells"].([]interface{})
		assert.Len(t, cells, 1+31)

		cell := cells[1+14].(map[string]interface{})
		assert.Equal(t, "2024-01-15", cell["date_key"])
		assert.Equal(t, true, cell["is_today"])
		assert.Equal(t, true, cell["has_live_game"])
		assert.Equal(t, false, cell["all_final"])

		selected := body["selected"].(map[string]interface{})
		assert.Equal(t, "2024-01-15", selected["date"])
		assert.Equal(t, []int{10, 11}, boardIDs(t, selected["games"]))

		board := selected["board"].(map[string]interface{})
		assert.Equal(t, []int{11}, boardIDs(t, board["live"]))
		assert.Equal(t, []int{10}, boardIDs(t, board["final"]))
	})

	t.Run("selected day", func(t *testing.T) {
		w, body := doJSON(t, r, http.MethodGet, "/games/calendar/month?month=2024-01&selected=2024-01-20", "")
		require.Equal(t, http.StatusOK, w.Code)
		selected := body["selected"].(map[string]interface{})
		assert.Equal(t, []int{12}, boardIDs(t, selected["games"]))
	})

	t.Run("day without games", func(t *testing.T) {
		w, body := doJSON(t, r, http.MethodGet, "/games/calendar/month?month=2024-01&selected=2024-01-02", "")
		require.Equal(t, http.StatusOK, w.Code)
		selected := body["selected"].(map[string]interface{})
		assert.Empty(t, selected["games"])
	})

	t.Run("bad input", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodGet, "/games/calendar/month?month=2024-13", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w, _ = doJSON(t, r, http.MethodGet, "/games/calendar/month?selected=yesterday", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
