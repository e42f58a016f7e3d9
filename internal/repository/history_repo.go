package repository

import (
	"context"
	"errors"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryRepository is append-only: there is no update or delete.
type HistoryRepository interface {
	Append(ctx context.Context, entry *model.ProposalHistory) error
	Last(ctx context.Context, proposalID uuid.UUID) (*model.ProposalHistory, bool, error)
	ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]model.ProposalHistory, error)
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, entry *model.ProposalHistory) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *historyRepository) Last(ctx context.Context, proposalID uuid.UUID) (*model.ProposalHistory, bool, error) {
	var entry model.ProposalHistory
	err := GetDB(ctx, r.db).
		Where("proposal_id = ?", proposalID).
		Order("seq DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &entry, true, nil
}

func (r *historyRepository) ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]model.ProposalHistory, error) {
	var entries []model.ProposalHistory
	if err := GetDB(ctx, r.db).
		Where("proposal_id = ?", proposalID).
		Order("seq ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
