// Package picks keeps at most one active pick per user, game and pick type.
// A second submission for the same key switches the existing pick instead of
// adding a row.
package picks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/SammyBolger/NBA-Analytics/internal/models"
)

var (
	ErrUnauthorized        = errors.New("not authenticated")
	ErrUnsupportedPickType = errors.New("unsupported pick type")
	ErrInvalidPick         = errors.New("invalid pick")
	ErrPickGraded          = errors.New("pick already graded")
	ErrPickNotFound        = errors.New("pick not found")
	ErrNotOwner            = errors.New("not your pick")
	ErrDuplicatePick       = errors.New("pick already exists")
)

// Store persists picks. Implementations enforce uniqueness of
// (user, game, pick type) and report a lost insert race as ErrDuplicatePick.
type Store interface {
	FindActive(ctx context.Context, userID uint, gameID int, pickType models.PickType) (*models.Pick, error)
	Create(ctx context.Context, pick *models.Pick) error
	Update(ctx context.Context, pick *models.Pick) error
	Get(ctx context.Context, pickID uint) (*models.Pick, error)
	Delete(ctx context.Context, pickID uint) error
	List(ctx context.Context, userID uint) ([]models.Pick, error)
}

// OutcomeStatus says whether a submission inserted or switched a pick.
type OutcomeStatus string

const (
	StatusCreated OutcomeStatus = "created"
	StatusUpdated OutcomeStatus = "updated"
)

// Outcome is the result of SubmitPick.
type Outcome struct {
	Status OutcomeStatus `json:"status"`
	Pick   models.Pick   `json:"pick"`
}

type Reconciler struct {
	store  Store
	logger *logrus.Logger
}

func NewReconciler(store Store, logger *logrus.Logger) *Reconciler {
	return &Reconciler{
		store:  store,
		logger: logger,
	}
}

// SubmitPick creates the user's pick for the game or switches the existing
// one. Game state is not checked here.
func (r *Reconciler) SubmitPick(ctx context.Context, userID uint, req models.PickRequest) (Outcome, error) {
	if userID == 0 {
		return Outcome{}, ErrUnauthorized
	}
	if req.PickType == "" {
		req.PickType = models.PickTypeMoneyline
	}
	if req.PickType != models.PickTypeMoneyline {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnsupportedPickType, req.PickType)
	}
	req.Selection = strings.TrimSpace(req.Selection)
	if req.Selection == "" {
		return Outcome{}, fmt.Errorf("%w: selection is required", ErrInvalidPick)
	}
	if req.Stake < 0 {
		return Outcome{}, fmt.Errorf("%w: stake must not be negative", ErrInvalidPick)
	}

	log := r.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"game_id":   req.GameID,
		"pick_type": req.PickType,
	})

	existing, err := r.store.FindActive(ctx, userID, req.GameID, req.PickType)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to look up pick: %w", err)
	}

	if existing == nil {
		pick := models.Pick{
			UserID:    userID,
			GameID:    req.GameID,
			PickType:  req.PickType,
			Selection: req.Selection,
			Odds:      req.Odds,
			Stake:     req.Stake,
			Notes:     req.Notes,
			Result:    models.ResultPending,
		}
		err := r.store.Create(ctx, &pick)
		if err == nil {
			log.WithField("pick_id", pick.ID).Info("Pick created")
			return Outcome{Status: StatusCreated, Pick: pick}, nil
		}
		if !errors.Is(err, ErrDuplicatePick) {
			return Outcome{}, fmt.Errorf("failed to create pick: %w", err)
		}

		// A concurrent submission won the insert; fall through to a switch.
		log.Debug("Pick insert lost race, switching existing pick")
		existing, err = r.store.FindActive(ctx, userID, req.GameID, req.PickType)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to look up pick: %w", err)
		}
		if existing == nil {
			return Outcome{}, fmt.Errorf("failed to create pick: %w", ErrPickNotFound)
		}
	}

	if existing.IsGraded() {
		return Outcome{}, ErrPickGraded
	}

	existing.Selection = req.Selection
	existing.Odds = req.Odds
	existing.Stake = req.Stake
	existing.Notes = req.Notes
	if err := r.store.Update(ctx, existing); err != nil {
		return Outcome{}, fmt.Errorf("failed to update pick: %w", err)
	}

	log.WithField("pick_id", existing.ID).Info("Pick switched")
	return Outcome{Status: StatusUpdated, Pick: *existing}, nil
}

// DeletePick removes a pending pick owned by the user.
func (r *Reconciler) DeletePick(ctx context.Context, userID, pickID uint) error {
	if userID == 0 {
		return ErrUnauthorized
	}

	pick, err := r.store.Get(ctx, pickID)
	if err != nil {
		return err
	}
	if pick.UserID != userID {
		return ErrNotOwner
	}
	if pick.IsGraded() {
		return ErrPickGraded
	}

	if err := r.store.Delete(ctx, pickID); err != nil {
		return fmt.Errorf("failed to delete pick: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"pick_id": pickID,
	}).Info("Pick deleted")
	return nil
}

// ListPicks returns the user's picks, newest first.
func (r *Reconciler) ListPicks(ctx context.Context, userID uint) ([]models.Pick, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	picks, err := r.store.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}
	return picks, nil
}

// Record returns the user's picks together with their aggregate stats.
func (r *Reconciler) Record(ctx context.Context, userID uint) ([]models.Pick, Stats, error) {
	picks, err := r.ListPicks(ctx, userID)
	if err != nil {
		return nil, Stats{}, err
	}
	return picks, ComputeStats(picks), nil
}
