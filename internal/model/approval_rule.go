package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ApprovalRule maps a job hierarchy level to the minimum discount that requires its sign-off.
// e.g. level 1 >= 0, level 2 >= 10, level 3 >= 25
type ApprovalRule struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	JobLevel    int             `gorm:"not null;index" json:"job_level"`
	MinDiscount decimal.Decimal `gorm:"type:decimal(9,4);not null" json:"min_discount"` // percent
	IsActive    bool            `gorm:"not null;index" json:"is_active"`
	Description string          `gorm:"type:text" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (r *ApprovalRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
