// Package store implements pick persistence on gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SammyBolger/NBA-Analytics/internal/models"
	"github.com/SammyBolger/NBA-Analytics/internal/picks"
	"github.com/SammyBolger/NBA-Analytics/pkg/database"
)

// PickStore is the gorm-backed picks.Store. The unique index on
// (user_id, game_id, pick_type) is what serializes competing inserts.
type PickStore struct {
	db *database.DB
}

func NewPickStore(db *database.DB) *PickStore {
	return &PickStore{db: db}
}

var _ picks.Store = (*PickStore)(nil)

func (s *PickStore) FindActive(ctx context.Context, userID uint, gameID int, pickType models.PickType) (*models.Pick, error) {
	var pick models.Pick
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND game_id = ? AND pick_type = ?", userID, gameID, pickType).
		First(&pick).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pick, nil
}

func (s *PickStore) Create(ctx context.Context, pick *models.Pick) error {
	err := s.db.WithContext(ctx).Create(pick).Error
	if isDuplicate(err) {
		return picks.ErrDuplicatePick
	}
	return err
}

// Update rewrites the mutable fields of a pending pick. The row is re-read
// under a lock so a concurrent grade is not overwritten.
func (s *PickStore) Update(ctx context.Context, pick *models.Pick) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Pick
		q := tx
		if s.db.IsPostgres() {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&current, pick.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return picks.ErrPickNotFound
			}
			return err
		}
		if current.IsGraded() {
			return picks.ErrPickGraded
		}

		current.Selection = pick.Selection
		current.Odds = pick.Odds
		current.Stake = pick.Stake
		current.Notes = pick.Notes
		current.UpdatedAt = time.Now().UTC()

		err := tx.Model(&current).
			Select("selection", "odds", "stake", "notes", "updated_at").
			Updates(&current).Error
		if err != nil {
			return err
		}

		*pick = current
		return nil
	})
}

func (s *PickStore) Get(ctx context.Context, pickID uint) (*models.Pick, error) {
	var pick models.Pick
	err := s.db.WithContext(ctx).First(&pick, pickID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, picks.ErrPickNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pick, nil
}

func (s *PickStore) Delete(ctx context.Context, pickID uint) error {
	res := s.db.WithContext(ctx).
		Where("result = ?", models.ResultPending).
		Delete(&models.Pick{}, pickID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return picks.ErrPickNotFound
	}
	return nil
}

// List returns the user's picks, newest first.
func (s *PickStore) List(ctx context.Context, userID uint) ([]models.Pick, error) {
	var out []models.Pick
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// Pending returns every ungraded moneyline pick, for the grader.
func (s *PickStore) Pending(ctx context.Context) ([]models.Pick, error) {
	var out []models.Pick
	err := s.db.WithContext(ctx).
		Where("result = ? AND pick_type = ?", models.ResultPending, models.PickTypeMoneyline).
		Order("game_id, id").
		Find(&out).Error
	return out, err
}

// Grade settles a pending pick. It is a no-op returning false when the pick
// was deleted or already graded in the meantime.
func (s *PickStore) Grade(ctx context.Context, pickID uint, result models.PickResult, payout float64, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Pick{}).
		Where("id = ? AND result = ?", pickID, models.ResultPending).
		Updates(map[string]interface{}{
			"result":    result,
			"payout":    payout,
			"graded_at": at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to grade pick %d: %w", pickID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
