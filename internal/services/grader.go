package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/SammyBolger/NBA-Analytics/internal/gamestate"
	"github.com/SammyBolger/NBA-Analytics/internal/models"
	"github.com/SammyBolger/NBA-Analytics/internal/picks"
)

// GradingStore is the part of the pick store the grader writes through.
type GradingStore interface {
	Pending(ctx context.Context) ([]models.Pick, error)
	Grade(ctx context.Context, pickID uint, result models.PickResult, payout float64, at time.Time) (bool, error)
}

// GameSource supplies the games the grader settles against.
type GameSource interface {
	Today() ([]models.Game, bool)
	Calendar(ctx context.Context) (models.CalendarResponse, error)
}

// Grader settles pending moneyline picks once their game is final.
type Grader struct {
	store    GradingStore
	games    GameSource
	logger   *logrus.Logger
	schedule string
	cron     *cron.Cron
	now      func() time.Time

	mu        sync.Mutex
	isRunning bool
}

func NewGrader(store GradingStore, games GameSource, logger *logrus.Logger, schedule string) *Grader {
	if schedule == "" {
		schedule = "@every 5m"
	}
	return &Grader{
		store:    store,
		games:    games,
		logger:   logger,
		schedule: schedule,
		cron:     cron.New(),
		now:      time.Now,
	}
}

func (g *Grader) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.isRunning {
		return fmt.Errorf("grader is already running")
	}

	_, err := g.cron.AddFunc(g.schedule, func() {
		if _, err := g.GradeOnce(context.Background()); err != nil {
			g.logger.WithError(err).Error("Grading run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule grader: %w", err)
	}

	g.cron.Start()
	g.isRunning = true
	g.logger.WithField("schedule", g.schedule).Info("Pick grader started")
	return nil
}

func (g *Grader) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.isRunning {
		return
	}

	ctx := g.cron.Stop()
	<-ctx.Done()

	g.isRunning = false
	g.logger.Info("Pick grader stopped")
}

// GradeOnce grades every pending pick whose game is final in the latest
// snapshots and returns how many were settled.
func (g *Grader) GradeOnce(ctx context.Context) (int, error) {
	pending, err := g.store.Pending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending picks: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	finals := g.finalGames(ctx)
	at := g.now().UTC()
	graded := 0

	for _, p := range pending {
		game, ok := finals[p.GameID]
		if !ok {
			continue
		}

		result, payout := Settle(p, game)
		if result == models.ResultPending {
			g.logger.WithFields(logrus.Fields{
				"pick_id": p.ID,
				"game_id": p.GameID,
			}).Warn("Final game has no winner, leaving pick pending")
			continue
		}
		ok, err := g.store.Grade(ctx, p.ID, result, payout, at)
		if err != nil {
			return graded, err
		}
		if !ok {
			continue
		}
		graded++

		g.logger.WithFields(logrus.Fields{
			"pick_id": p.ID,
			"user_id": p.UserID,
			"game_id": p.GameID,
			"result":  result,
			"payout":  payout,
		}).Info("Pick graded")
	}

	return graded, nil
}

// Settle decides a moneyline pick against a final game. The selection is
// free text: it wins when it names the winner by full name or abbreviation.
// A tied score returns ResultPending, since NBA games cannot end level.
func Settle(p models.Pick, game models.Game) (models.PickResult, float64) {
	winner := game.Winner()
	if winner == nil {
		return models.ResultPending, 0
	}
	if names(p.Selection, *winner) {
		return models.ResultWin, picks.Payout(p.Stake, p.Odds)
	}
	return models.ResultLoss, 0
}

func names(selection string, team models.Team) bool {
	for _, name := range []string{team.FullName, team.Abbreviation} {
		if name != "" && strings.Contains(selection, name) {
			return true
		}
	}
	return false
}

func (g *Grader) finalGames(ctx context.Context) map[int]models.Game {
	finals := map[int]models.Game{}
	add := func(games []models.Game) {
		for _, game := range games {
			if gamestate.Concluded(game.Status) {
				finals[game.ID] = game
			}
		}
	}

	if cal, err := g.games.Calendar(ctx); err == nil {
		for _, games := range cal.Dates {
			add(games)
		}
	} else {
		g.logger.WithError(err).Warn("Grading without calendar snapshot")
	}
	// Today's snapshot is the freshest source for scores.
	if today, ok := g.games.Today(); ok {
		add(today)
	}
	return finals
}
