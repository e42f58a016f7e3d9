package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SalesOrderStatus is the downstream order state. It is not part of the proposal lifecycle.
type SalesOrderStatus string

const (
	SalesOrderStatusOpen      SalesOrderStatus = "OPEN"
	SalesOrderStatusConfirmed SalesOrderStatus = "CONFIRMED"
	SalesOrderStatusDelivered SalesOrderStatus = "DELIVERED"
	SalesOrderStatusCancelled SalesOrderStatus = "CANCELLED"
)

// SalesOrder is created once a proposal is fully approved. At most one per proposal.
type SalesOrder struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNo     string           `gorm:"type:varchar(30);uniqueIndex;not null" json:"order_no"`
	TrackingKey string           `gorm:"type:varchar(64);uniqueIndex;not null" json:"tracking_key"`
	ProposalID  uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null" json:"proposal_id"`
	Status      SalesOrderStatus `gorm:"type:varchar(20);not null;default:'OPEN';index" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (o *SalesOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
