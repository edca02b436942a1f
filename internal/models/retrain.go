package models

import (
	"time"

	"gorm.io/datatypes"
)

// RetrainRun records who triggered a model retrain and what the provider
// answered. The result body is stored as-is.
type RetrainRun struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TriggeredBy uint           `gorm:"not null;index" json:"triggered_by"`
	Results     datatypes.JSON `gorm:"type:jsonb" json:"results"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (RetrainRun) TableName() string {
	return "retrain_runs"
}

// AllModels lists every table the migrate command manages, in creation order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Pick{},
		&RetrainRun{},
	}
}
