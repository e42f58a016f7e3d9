package repository

import (
	"context"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApprovalRuleRepository interface {
	Create(ctx context.Context, rule *model.ApprovalRule) error
	Update(ctx context.Context, rule *model.ApprovalRule) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalRule, error)
	List(ctx context.Context, activeOnly bool) ([]model.ApprovalRule, error)
	DeactivateAll(ctx context.Context) error
}

type approvalRuleRepository struct {
	db *gorm.DB
}

func NewApprovalRuleRepository(db *gorm.DB) ApprovalRuleRepository {
	return &approvalRuleRepository{db: db}
}

func (r *approvalRuleRepository) Create(ctx context.Context, rule *model.ApprovalRule) error {
	return GetDB(ctx, r.db).Create(rule).Error
}

func (r *approvalRuleRepository) Update(ctx context.Context, rule *model.ApprovalRule) error {
	return GetDB(ctx, r.db).Save(rule).Error
}

func (r *approvalRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalRule, error) {
	var rule model.ApprovalRule
	if err := GetDB(ctx, r.db).First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

// List returns rules ordered by threshold, then job level.
func (r *approvalRuleRepository) List(ctx context.Context, activeOnly bool) ([]model.ApprovalRule, error) {
	var rules []model.ApprovalRule
	query := GetDB(ctx, r.db).Model(&model.ApprovalRule{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("min_discount ASC").Order("job_level ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// DeactivateAll retires the whole catalog; used when a new catalog replaces it.
func (r *approvalRuleRepository) DeactivateAll(ctx context.Context) error {
	return GetDB(ctx, r.db).Model(&model.ApprovalRule{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}
