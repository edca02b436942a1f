package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SammyBolger/NBA-Analytics/internal/models"
)

type fakeGradingStore struct {
	pending []models.Pick
	graded  map[uint]models.PickResult
	payouts map[uint]float64
}

func (s *fakeGradingStore) Pending(ctx context.Context) ([]models.Pick, error) {
	return s.pending, nil
}

func (s *fakeGradingStore) Grade(ctx context.Context, pickID uint, result models.PickResult, payout float64, at time.Time) (bool, error) {
	if _, done := s.graded[pickID]; done {
		return false, nil
	}
	s.graded[pickID] = result
	s.payouts[pickID] = payout
	return true, nil
}

type staticGames struct {
	today    []models.Game
	calendar models.CalendarResponse
}

func (g staticGames) Today() ([]models.Game, bool) {
	return g.today, g.today != nil
}

func (g staticGames) Calendar(ctx context.Context) (models.CalendarResponse, error) {
	return g.calendar, nil
}

var (
	boston = models.Team{ID: 2, Abbreviation: "BOS", FullName: "Boston Celtics"}
	la     = models.Team{ID: 14, Abbreviation: "LAL", FullName: "Los Angeles Lakers"}
)

func finalGame(id, home, away int) models.Game {
	return models.Game{ID: id, Status: models.StatusPtr("Final"), HomeTeam: boston, AwayTeam: la, HomeScore: home, AwayScore: away}
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name   string
		pick   models.Pick
		game   models.Game
		result models.PickResult
		payout float64
	}{
		{"favorite wins", models.Pick{Selection: "Boston Celtics ML", Odds: -200, Stake: 10}, finalGame(1, 110, 100), models.ResultWin, 15},
		{"underdog wins", models.Pick{Selection: "Los Angeles Lakers ML", Odds: 150, Stake: 10}, finalGame(1, 99, 101), models.ResultWin, 25},
		{"loss", models.Pick{Selection: "Los Angeles Lakers ML", Odds: 150, Stake: 10}, finalGame(1, 110, 100), models.ResultLoss, 0},
		{"abbreviation wins", models.Pick{Selection: "LAL ML", Odds: 150, Stake: 10}, finalGame(1, 99, 101), models.ResultWin, 25},
		{"bare team name wins", models.Pick{Selection: "Los Angeles Lakers", Odds: 150, Stake: 10}, finalGame(1, 99, 101), models.ResultWin, 25},
		{"abbreviation loses", models.Pick{Selection: "BOS ML", Odds: -200, Stake: 10}, finalGame(1, 99, 101), models.ResultLoss, 0},
		{"unrelated text loses", models.Pick{Selection: "the over", Odds: -110, Stake: 10}, finalGame(1, 99, 101), models.ResultLoss, 0},
		{"tie stays pending", models.Pick{Selection: "Boston Celtics ML", Odds: -200, Stake: 10}, finalGame(1, 100, 100), models.ResultPending, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, payout := Settle(tt.pick, tt.game)
			assert.Equal(t, tt.result, result)
			assert.Equal(t, tt.payout, payout)
		})
	}
}

func TestGradeOnce(t *testing.T) {
	store := &fakeGradingStore{
		pending: []models.Pick{
			{ID: 1, GameID: 10, Selection: "Boston Celtics ML", Odds: 100, Stake: 10},
			{ID: 2, GameID: 11, Selection: "Boston Celtics ML", Odds: 100, Stake: 10},
			{ID: 3, GameID: 12, Selection: "Boston Celtics ML", Odds: 100, Stake: 10},
		},
		graded:  map[uint]models.PickResult{},
		payouts: map[uint]float64{},
	}
	games := staticGames{
		today: []models.Game{
			finalGame(10, 120, 100),
			{ID: 11, Status: models.StatusPtr("4th Qtr"), HomeTeam: boston, AwayTeam: la},
		},
		calendar: models.CalendarResponse{Dates: map[string][]models.Game{
			"2024-01-14": {finalGame(12, 90, 95)},
		}},
	}

	g := NewGrader(store, games, testLogger(), "")
	n, err := g.GradeOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, models.ResultWin, store.graded[1])
	assert.Equal(t, 20.0, store.payouts[1])
	assert.Equal(t, models.ResultLoss, store.graded[3])
	assert.NotContains(t, store.graded, uint(2))

	// already graded rows are skipped
	n, err = g.GradeOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSettleIgnoresEmptyAbbreviation(t *testing.T) {
	game := finalGame(1, 110, 100)
	game.HomeTeam.Abbreviation = ""
	result, _ := Settle(models.Pick{Selection: "Los Angeles Lakers ML", Odds: 150, Stake: 10}, game)
	assert.Equal(t, models.ResultLoss, result)
}

func TestGradeOnceOvertimeAndTies(t *testing.T) {
	store := &fakeGradingStore{
		pending: []models.Pick{
			{ID: 1, GameID: 20, Selection: "BOS ML", Odds: 100, Stake: 10},
			{ID: 2, GameID: 21, Selection: "BOS ML", Odds: 100, Stake: 10},
		},
		graded:  map[uint]models.PickResult{},
		payouts: map[uint]float64{},
	}
	overtime := finalGame(20, 121, 119)
	overtime.Status = models.StatusPtr("Final/OT")
	games := staticGames{today: []models.Game{overtime, finalGame(21, 0, 0)}}

	g := NewGrader(store, games, testLogger(), "")
	n, err := g.GradeOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, models.ResultWin, store.graded[1])
	assert.Equal(t, 20.0, store.payouts[1])
	assert.NotContains(t, store.graded, uint(2))
}
