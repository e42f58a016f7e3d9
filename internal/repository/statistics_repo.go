package repository

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatisticsRepository interface {
	CountProposalsByStatus(ctx context.Context, start, end time.Time) ([]model.StatusCount, error)
	ApprovedDiscounts(ctx context.Context, start, end time.Time) ([]decimal.Decimal, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) CountProposalsByStatus(ctx context.Context, start, end time.Time) ([]model.StatusCount, error) {
	var counts []model.StatusCount
	if err := GetDB(ctx, r.db).Model(&model.Proposal{}).
		Select("status, COUNT(*) as count").
		Where("created_at >= ? AND created_at <= ?", start, end).
		Group("status").
		Order("status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count proposals by status: %w", err)
	}
	return counts, nil
}

// ApprovedDiscounts returns the discount of every proposal in range that made it past approval.
func (r *statisticsRepository) ApprovedDiscounts(ctx context.Context, start, end time.Time) ([]decimal.Decimal, error) {
	var discounts []decimal.Decimal
	if err := GetDB(ctx, r.db).Model(&model.Proposal{}).
		Where("status IN ? AND created_at >= ? AND created_at <= ?",
			[]model.ProposalStatus{model.ProposalStatusApproved, model.ProposalStatusConverted}, start, end).
		Pluck("discount", &discounts).Error; err != nil {
		return nil, fmt.Errorf("failed to query approved discounts: %w", err)
	}
	return discounts, nil
}
