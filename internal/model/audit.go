package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateApprovalRule     = "CREATE_APPROVAL_RULE"
	ActionUpdateApprovalRule     = "UPDATE_APPROVAL_RULE"
	ActionDeactivateApprovalRule = "DEACTIVATE_APPROVAL_RULE"
	ActionImportApprovalRules    = "IMPORT_APPROVAL_RULES"

	// Proposal actions that do not move the lifecycle
	ActionCreateProposal    = "CREATE_PROPOSAL"
	ActionUpdateProposal    = "UPDATE_PROPOSAL"
	ActionApproveTier       = "APPROVE_TIER"
	ActionConfirmSalesOrder = "CONFIRM_SALES_ORDER"
)

// AuditLog tracks Who, What, and When for administrative changes that are not
// proposal status transitions (those live in ProposalHistory).
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil for system/CLI actions
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
