package repository

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SalesOrderRepository interface {
	Create(ctx context.Context, order *model.SalesOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SalesOrder, error)
	FindByProposalID(ctx context.Context, proposalID uuid.UUID) (*model.SalesOrder, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.SalesOrderStatus) error
	NextOrderNo(ctx context.Context, day time.Time) (string, error)
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error)
}

type salesOrderRepository struct {
	db *gorm.DB
}

func NewSalesOrderRepository(db *gorm.DB) SalesOrderRepository {
	return &salesOrderRepository{db: db}
}

func (r *salesOrderRepository) Create(ctx context.Context, order *model.SalesOrder) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *salesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SalesOrder, error) {
	var order model.SalesOrder
	if err := GetDB(ctx, r.db).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *salesOrderRepository) FindByProposalID(ctx context.Context, proposalID uuid.UUID) (*model.SalesOrder, error) {
	var order model.SalesOrder
	if err := GetDB(ctx, r.db).First(&order, "proposal_id = ?", proposalID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *salesOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SalesOrderStatus) error {
	return GetDB(ctx, r.db).Model(&model.SalesOrder{}).Where("id = ?", id).Update("status", status).Error
}

// NextOrderNo allocates SO-YYYYMMDD-##### for day. Callers must be inside a transaction.
func (r *salesOrderRepository) NextOrderNo(ctx context.Context, day time.Time) (string, error) {
	prefix := "SO-" + day.Format("20060102") + "-"

	db := GetDB(ctx, r.db)
	if err := advisoryLock(db, prefix); err != nil {
		return "", err
	}

	var count int64
	if err := db.Model(&model.SalesOrder{}).
		Where("order_no LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (r *salesOrderRepository) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.SalesOrder{}).
		Where("created_at >= ? AND created_at <= ?", start, end).
		Count(&count).Error
	return count, err
}
