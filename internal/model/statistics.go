package model

import (
	"time"
)

// PipelineStatistics summarizes proposal throughput over a time range.
type PipelineStatistics struct {
	ProposalsByStatus       []StatusCount `json:"proposals_by_status"`
	TotalProposals          int64         `json:"total_proposals"`
	SalesOrdersCreated      int64         `json:"sales_orders_created"`
	AverageApprovedDiscount string        `json:"average_approved_discount"`
	TimeRangeStartDate      time.Time     `json:"time_range_start_date"`
	TimeRangeEndDate        time.Time     `json:"time_range_end_date"`
}

// StatusCount is the number of proposals created in range that currently sit in Status.
type StatusCount struct {
	Status ProposalStatus `json:"status"`
	Count  int64          `json:"count"`
}
