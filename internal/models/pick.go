package models

import (
	"time"
)

// PickType is the market a pick is placed on.
type PickType string

const (
	PickTypeMoneyline PickType = "moneyline"
)

// PickResult is the grading outcome of a pick.
type PickResult string

const (
	ResultPending PickResult = "pending"
	ResultWin     PickResult = "win"
	ResultLoss    PickResult = "loss"
	ResultPush    PickResult = "push"
)

// Pick is a user's single wager on a game. At most one row exists per
// (user_id, game_id, pick_type); switching sides rewrites that row.
type Pick struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_user_game_type,priority:1" json:"user_id"`
	GameID    int        `gorm:"not null;uniqueIndex:idx_user_game_type,priority:2" json:"game_id"`
	PickType  PickType   `gorm:"size:20;not null;uniqueIndex:idx_user_game_type,priority:3" json:"pick_type"`
	Selection string     `gorm:"size:120;not null" json:"selection"`
	Odds      int        `json:"odds"`
	Stake     float64    `gorm:"default:0" json:"stake"`
	Notes     string     `gorm:"size:500" json:"notes"`
	Result    PickResult `gorm:"size:10;not null;default:pending;index" json:"result"`
	Payout    float64    `gorm:"default:0" json:"payout"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	GradedAt  *time.Time `json:"graded_at,omitempty"`
}

// TableName specifies the table name for GORM
func (Pick) TableName() string {
	return "user_picks"
}

// IsGraded reports whether the pick has left the pending state.
func (p Pick) IsGraded() bool {
	return p.Result != "" && p.Result != ResultPending
}

// PickRequest is the body of POST /api/picks.
type PickRequest struct {
	GameID    int      `json:"game_id" binding:"required"`
	PickType  PickType `json:"pick_type"`
	Selection string   `json:"selection"`
	Odds      int      `json:"odds"`
	Stake     float64  `json:"stake"`
	Notes     string   `json:"notes"`
}
