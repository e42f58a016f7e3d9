package service

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/shopspring/decimal"
)

type StatisticsService interface {
	GetStatistics(ctx context.Context, startDate, endDate time.Time) (model.PipelineStatistics, error)
}

type statisticsService struct {
	statsRepo      repository.StatisticsRepository
	salesOrderRepo repository.SalesOrderRepository
}

func NewStatisticsService(statsRepo repository.StatisticsRepository, salesOrderRepo repository.SalesOrderRepository) StatisticsService {
	return &statisticsService{statsRepo: statsRepo, salesOrderRepo: salesOrderRepo}
}

// GetStatistics summarizes proposals created in [startDate, endDate]. Every known
// status is reported, including those with a zero count.
func (s *statisticsService) GetStatistics(ctx context.Context, startDate, endDate time.Time) (model.PipelineStatistics, error) {
	if endDate.Before(startDate) {
		return model.PipelineStatistics{}, fmt.Errorf("%w: end_date is before start_date", ErrValidation)
	}

	response := model.PipelineStatistics{
		TimeRangeStartDate: startDate,
		TimeRangeEndDate:   endDate,
	}

	counts, err := s.statsRepo.CountProposalsByStatus(ctx, startDate, endDate)
	if err != nil {
		return model.PipelineStatistics{}, err
	}
	byStatus := make(map[model.ProposalStatus]int64, len(counts))
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}
	response.ProposalsByStatus = make([]model.StatusCount, 0, len(model.ProposalStatuses))
	for _, status := range model.ProposalStatuses {
		response.ProposalsByStatus = append(response.ProposalsByStatus, model.StatusCount{Status: status, Count: byStatus[status]})
		response.TotalProposals += byStatus[status]
	}

	response.SalesOrdersCreated, err = s.salesOrderRepo.CountCreatedBetween(ctx, startDate, endDate)
	if err != nil {
		return model.PipelineStatistics{}, fmt.Errorf("failed to count sales orders: %w", err)
	}

	discounts, err := s.statsRepo.ApprovedDiscounts(ctx, startDate, endDate)
	if err != nil {
		return model.PipelineStatistics{}, err
	}
	response.AverageApprovedDiscount = averageDiscount(discounts).StringFixed(4)

	return response, nil
}

func averageDiscount(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(values[0], values[1:]...).Div(decimal.NewFromInt(int64(len(values))))
}
