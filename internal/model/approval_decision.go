package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DecisionOutcome is the result recorded for one approval tier.
type DecisionOutcome string

const (
	DecisionPending   DecisionOutcome = "PENDING"
	DecisionApproved  DecisionOutcome = "APPROVED"
	DecisionRejected  DecisionOutcome = "REJECTED"
	DecisionDiscarded DecisionOutcome = "DISCARDED" // proposal cancelled before this tier decided
)

// ApprovalDecision is the slot for one required tier of a proposal. The set of rows
// created at submission is the proposal's frozen tier snapshot; each row leaves
// PENDING exactly once.
type ApprovalDecision struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ProposalID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_decision_proposal_tier" json:"proposal_id"`
	TierLevel          int             `gorm:"not null;uniqueIndex:idx_decision_proposal_tier" json:"tier_level"`
	Outcome            DecisionOutcome `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"outcome"`
	ApproverID         *uuid.UUID      `gorm:"type:uuid;index" json:"approver_id"`
	ApproverJobLevel   *int            `json:"approver_job_level"`
	Comment            string          `gorm:"type:text" json:"comment"`
	DiscountAtDecision decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0" json:"discount_at_decision"`
	DecidedAt          *time.Time      `json:"decided_at"`
	CreatedAt          time.Time       `json:"created_at"`
}

func (d *ApprovalDecision) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
