package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProposalHistory is one append-only row of a proposal's status trail.
// For a proposal, rows ordered by Seq satisfy row[i].NewStatus == row[i+1].OldStatus.
type ProposalHistory struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProposalID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_history_proposal_seq" json:"proposal_id"`
	Seq          int            `gorm:"not null;uniqueIndex:idx_history_proposal_seq" json:"seq"`
	OldStatus    ProposalStatus `gorm:"type:varchar(30);not null" json:"old_status"`
	NewStatus    ProposalStatus `gorm:"type:varchar(30);not null" json:"new_status"`
	Event        ProposalEvent  `gorm:"type:varchar(20);not null" json:"event"`
	ActorID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"actor_id"`
	SalesOrderID *uuid.UUID     `gorm:"type:uuid" json:"sales_order_id"`
	Comment      string         `gorm:"type:text" json:"comment"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
}

func (h *ProposalHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
