package repository

import (
	"context"
	"time"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProposalRepository interface {
	Create(ctx context.Context, proposal *model.Proposal) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Proposal, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Proposal, error)
	List(ctx context.Context, status model.ProposalStatus, page, limit int) ([]model.Proposal, int64, error)
	UpdateDraftFields(ctx context.Context, proposal *model.Proposal) error
	UpdateStatus(ctx context.Context, proposal *model.Proposal, status model.ProposalStatus) error
	NextSequenceNo(ctx context.Context) (int64, error)
}

type proposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) Create(ctx context.Context, proposal *model.Proposal) error {
	return GetDB(ctx, r.db).Create(proposal).Error
}

func (r *proposalRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Proposal, error) {
	var proposal model.Proposal
	if err := GetDB(ctx, r.db).First(&proposal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

// FindByIDForUpdate loads the proposal holding a row lock until the surrounding transaction ends.
func (r *proposalRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Proposal, error) {
	var proposal model.Proposal
	if err := forUpdate(GetDB(ctx, r.db)).First(&proposal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) List(ctx context.Context, status model.ProposalStatus, page, limit int) ([]model.Proposal, int64, error) {
	var proposals []model.Proposal
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Proposal{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Model(&model.Proposal{})
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("sequence_no DESC").Offset(offset).Limit(limit).Find(&proposals).Error; err != nil {
		return nil, 0, err
	}

	return proposals, total, nil
}

// UpdateDraftFields writes the CRUD-owned columns and bumps the version. Status is never touched here.
func (r *proposalRepository) UpdateDraftFields(ctx context.Context, proposal *model.Proposal) error {
	result := GetDB(ctx, r.db).Model(&model.Proposal{}).
		Where("id = ? AND version = ?", proposal.ID, proposal.Version).
		Updates(map[string]interface{}{
			"revision_code": proposal.RevisionCode,
			"discount":      proposal.Discount,
			"valid_from":    proposal.ValidFrom,
			"valid_until":   proposal.ValidUntil,
			"partner_id":    proposal.PartnerID,
			"channel_id":    proposal.ChannelID,
			"note":          proposal.Note,
			"version":       proposal.Version + 1,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	proposal.Version++
	return nil
}

// UpdateStatus moves the proposal to status (and links its sales order, if set) guarded by
// the version the caller read. proposal is updated in place on success.
func (r *proposalRepository) UpdateStatus(ctx context.Context, proposal *model.Proposal, status model.ProposalStatus) error {
	now := time.Now()
	result := GetDB(ctx, r.db).Model(&model.Proposal{}).
		Where("id = ? AND version = ?", proposal.ID, proposal.Version).
		Updates(map[string]interface{}{
			"status":         status,
			"sales_order_id": proposal.SalesOrderID,
			"version":        proposal.Version + 1,
			"updated_at":     now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	proposal.Status = status
	proposal.Version++
	proposal.UpdatedAt = now
	return nil
}

// NextSequenceNo issues the next proposal number. Callers must be inside a transaction.
func (r *proposalRepository) NextSequenceNo(ctx context.Context) (int64, error) {
	db := GetDB(ctx, r.db)
	if err := advisoryLock(db, "proposals.sequence_no"); err != nil {
		return 0, err
	}

	var maxSeq int64
	if err := db.Model(&model.Proposal{}).Select("COALESCE(MAX(sequence_no), 0)").Row().Scan(&maxSeq); err != nil {
		return 0, err
	}
	return maxSeq + 1, nil
}
