package repository

import (
	"context"
	"time"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DecisionFill is the content written into a PENDING decision slot.
type DecisionFill struct {
	Outcome          model.DecisionOutcome
	ApproverID       uuid.UUID
	ApproverJobLevel int
	Comment          string
	Discount         decimal.Decimal
	DecidedAt        time.Time
}

type ApprovalDecisionRepository interface {
	CreateBatch(ctx context.Context, decisions []model.ApprovalDecision) error
	ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]model.ApprovalDecision, error)
	Fill(ctx context.Context, id uuid.UUID, fill DecisionFill) (bool, error)
	DiscardPending(ctx context.Context, proposalID uuid.UUID, at time.Time) (int64, error)
}

type approvalDecisionRepository struct {
	db *gorm.DB
}

func NewApprovalDecisionRepository(db *gorm.DB) ApprovalDecisionRepository {
	return &approvalDecisionRepository{db: db}
}

func (r *approvalDecisionRepository) CreateBatch(ctx context.Context, decisions []model.ApprovalDecision) error {
	if len(decisions) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&decisions).Error
}

// ListByProposal returns the tier slots of a proposal, lowest tier first.
func (r *approvalDecisionRepository) ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]model.ApprovalDecision, error) {
	var decisions []model.ApprovalDecision
	if err := GetDB(ctx, r.db).
		Where("proposal_id = ?", proposalID).
		Order("tier_level ASC").
		Find(&decisions).Error; err != nil {
		return nil, err
	}
	return decisions, nil
}

// Fill writes a decision into a slot only if it is still PENDING.
// It reports false when the slot was already filled.
func (r *approvalDecisionRepository) Fill(ctx context.Context, id uuid.UUID, fill DecisionFill) (bool, error) {
	result := GetDB(ctx, r.db).Model(&model.ApprovalDecision{}).
		Where("id = ? AND outcome = ?", id, model.DecisionPending).
		Updates(map[string]interface{}{
			"outcome":              fill.Outcome,
			"approver_id":          fill.ApproverID,
			"approver_job_level":   fill.ApproverJobLevel,
			"comment":              fill.Comment,
			"discount_at_decision": fill.Discount,
			"decided_at":           fill.DecidedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DiscardPending closes every still-PENDING slot of a proposal.
func (r *approvalDecisionRepository) DiscardPending(ctx context.Context, proposalID uuid.UUID, at time.Time) (int64, error) {
	result := GetDB(ctx, r.db).Model(&model.ApprovalDecision{}).
		Where("proposal_id = ? AND outcome = ?", proposalID, model.DecisionPending).
		Updates(map[string]interface{}{
			"outcome":    model.DecisionDiscarded,
			"decided_at": at,
		})
	return result.RowsAffected, result.Error
}
