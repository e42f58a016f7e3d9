package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProposalStatus is the lifecycle state of a commercial proposal.
type ProposalStatus string

const (
	ProposalStatusDraft           ProposalStatus = "DRAFT"
	ProposalStatusPendingApproval ProposalStatus = "PENDING_APPROVAL"
	ProposalStatusApproved        ProposalStatus = "APPROVED"
	ProposalStatusRejected        ProposalStatus = "REJECTED"
	ProposalStatusCancelled       ProposalStatus = "CANCELLED"
	ProposalStatusConverted       ProposalStatus = "CONVERTED"
)

// ProposalStatuses lists every lifecycle state in declaration order.
var ProposalStatuses = []ProposalStatus{
	ProposalStatusDraft,
	ProposalStatusPendingApproval,
	ProposalStatusApproved,
	ProposalStatusRejected,
	ProposalStatusCancelled,
	ProposalStatusConverted,
}

// IsTerminal reports whether no further tier decision can be accepted in this state.
func (s ProposalStatus) IsTerminal() bool {
	switch s {
	case ProposalStatusApproved, ProposalStatusRejected, ProposalStatusCancelled, ProposalStatusConverted:
		return true
	}
	return false
}

// Proposal is a commercial offer made by a seller to a partner through a sales channel.
// Only the approval engine writes Status; everything else belongs to the CRUD layer.
type Proposal struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SequenceNo   int64           `gorm:"not null;uniqueIndex" json:"sequence_no"`
	RevisionCode string          `gorm:"type:varchar(10);not null;default:'R00'" json:"revision_code"`
	Status       ProposalStatus  `gorm:"type:varchar(30);not null;default:'DRAFT';index" json:"status"`
	Discount     decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0" json:"discount"` // percent, 15 = 15%
	ValidFrom    time.Time       `gorm:"type:date;not null" json:"valid_from"`
	ValidUntil   time.Time       `gorm:"type:date;not null" json:"valid_until"`
	SellerID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"seller_id"`
	PartnerID    *uuid.UUID      `gorm:"type:uuid;index" json:"partner_id"`
	ChannelID    *uuid.UUID      `gorm:"type:uuid;index" json:"channel_id"`
	SalesOrderID *uuid.UUID      `gorm:"type:uuid" json:"sales_order_id"`
	Note         string          `gorm:"type:text" json:"note"`
	Version      int64           `gorm:"not null;default:1" json:"version"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
