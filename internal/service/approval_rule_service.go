package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// --- DTOs ---

type CreateApprovalRuleRequest struct {
	JobLevel    int    `json:"job_level" binding:"required,min=1"`
	MinDiscount string `json:"min_discount" binding:"required"` // percent, e.g. "10"
	Description string `json:"description"`
}

type UpdateApprovalRuleRequest struct {
	JobLevel    int    `json:"job_level" binding:"required,min=1"`
	MinDiscount string `json:"min_discount" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type ApprovalRuleResponse struct {
	ID          string `json:"id"`
	JobLevel    int    `json:"job_level"`
	MinDiscount string `json:"min_discount"`
	IsActive    bool   `json:"is_active"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// RuleCatalogFile is the YAML layout accepted by ImportRules.
//
//	replace: true
//	rules:
//	  - job_level: 1
//	    min_discount: "0"
//	    description: sales supervisor
type RuleCatalogFile struct {
	Replace bool              `yaml:"replace"`
	Rules   []RuleCatalogItem `yaml:"rules"`
}

type RuleCatalogItem struct {
	JobLevel    int    `yaml:"job_level"`
	MinDiscount string `yaml:"min_discount"`
	Description string `yaml:"description"`
}

type ImportResult struct {
	Created     int `json:"created"`
	Deactivated int `json:"deactivated"`
}

// --- Interface ---

// ApprovalRuleService manages the rule catalog. Edits only affect proposals submitted
// afterwards; in-flight proposals keep the tiers frozen at submission.
type ApprovalRuleService interface {
	ListRules(ctx context.Context, activeOnly bool) ([]ApprovalRuleResponse, error)
	CreateRule(ctx context.Context, req CreateApprovalRuleRequest, userID *uuid.UUID) (ApprovalRuleResponse, error)
	UpdateRule(ctx context.Context, id uuid.UUID, req UpdateApprovalRuleRequest, userID *uuid.UUID) (ApprovalRuleResponse, error)
	DeactivateRule(ctx context.Context, id uuid.UUID, userID *uuid.UUID) error
	ImportRules(ctx context.Context, data []byte, userID *uuid.UUID) (ImportResult, error)
}

type approvalRuleService struct {
	txManager repository.TransactionManager
	ruleRepo  repository.ApprovalRuleRepository
	auditRepo repository.AuditRepository
}

func NewApprovalRuleService(
	txManager repository.TransactionManager,
	ruleRepo repository.ApprovalRuleRepository,
	auditRepo repository.AuditRepository,
) ApprovalRuleService {
	return &approvalRuleService{txManager: txManager, ruleRepo: ruleRepo, auditRepo: auditRepo}
}

// --- Implementation ---

func (s *approvalRuleService) ListRules(ctx context.Context, activeOnly bool) ([]ApprovalRuleResponse, error) {
	rules, err := s.ruleRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch approval rules: %w", err)
	}

	res := make([]ApprovalRuleResponse, 0, len(rules))
	for _, r := range rules {
		res = append(res, toApprovalRuleResponse(r))
	}
	return res, nil
}

func (s *approvalRuleService) CreateRule(ctx context.Context, req CreateApprovalRuleRequest, userID *uuid.UUID) (ApprovalRuleResponse, error) {
	minDiscount, err := parseRuleFields(req.JobLevel, req.MinDiscount)
	if err != nil {
		return ApprovalRuleResponse{}, err
	}

	rule := model.ApprovalRule{
		JobLevel:    req.JobLevel,
		MinDiscount: minDiscount,
		IsActive:    true,
		Description: req.Description,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.checkLevelTaken(txCtx, rule.JobLevel, nil); err != nil {
			return err
		}
		if err := s.ruleRepo.Create(txCtx, &rule); err != nil {
			return fmt.Errorf("failed to create approval rule: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, model.AuditLog{
			UserID:     userID,
			Action:     model.ActionCreateApprovalRule,
			EntityID:   rule.ID.String(),
			EntityName: ruleLabel(rule),
			Details:    auditDetails(req),
		})
	})
	if err != nil {
		return ApprovalRuleResponse{}, err
	}

	return toApprovalRuleResponse(rule), nil
}

func (s *approvalRuleService) UpdateRule(ctx context.Context, id uuid.UUID, req UpdateApprovalRuleRequest, userID *uuid.UUID) (ApprovalRuleResponse, error) {
	minDiscount, err := parseRuleFields(req.JobLevel, req.MinDiscount)
	if err != nil {
		return ApprovalRuleResponse{}, err
	}

	var rule *model.ApprovalRule
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		rule, err = s.ruleRepo.FindByID(txCtx, id)
		if err != nil {
			return translateRepoErr(err, "approval rule")
		}

		rule.JobLevel = req.JobLevel
		rule.MinDiscount = minDiscount
		rule.Description = req.Description
		if req.IsActive != nil {
			rule.IsActive = *req.IsActive
		}

		if rule.IsActive {
			if err := s.checkLevelTaken(txCtx, rule.JobLevel, &rule.ID); err != nil {
				return err
			}
		}

		if err := s.ruleRepo.Update(txCtx, rule); err != nil {
			return fmt.Errorf("failed to update approval rule: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, model.AuditLog{
			UserID:     userID,
			Action:     model.ActionUpdateApprovalRule,
			EntityID:   rule.ID.String(),
			EntityName: ruleLabel(*rule),
			Details:    auditDetails(req),
		})
	})
	if err != nil {
		return ApprovalRuleResponse{}, err
	}

	return toApprovalRuleResponse(*rule), nil
}

// DeactivateRule retires a rule. Rules are never deleted so audit entries keep resolving.
func (s *approvalRuleService) DeactivateRule(ctx context.Context, id uuid.UUID, userID *uuid.UUID) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		rule, err := s.ruleRepo.FindByID(txCtx, id)
		if err != nil {
			return translateRepoErr(err, "approval rule")
		}
		if !rule.IsActive {
			return nil
		}

		rule.IsActive = false
		if err := s.ruleRepo.Update(txCtx, rule); err != nil {
			return fmt.Errorf("failed to deactivate approval rule: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, model.AuditLog{
			UserID:     userID,
			Action:     model.ActionDeactivateApprovalRule,
			EntityID:   rule.ID.String(),
			EntityName: ruleLabel(*rule),
			Details:    "{}",
		})
	})
}

// ImportRules loads a YAML catalog. With replace set, every active rule is retired
// first so the file becomes the whole active catalog. The import is all or nothing.
func (s *approvalRuleService) ImportRules(ctx context.Context, data []byte, userID *uuid.UUID) (ImportResult, error) {
	var file RuleCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return ImportResult{}, fmt.Errorf("%w: invalid rule catalog: %v", ErrValidation, err)
	}
	if len(file.Rules) == 0 {
		return ImportResult{}, fmt.Errorf("%w: rule catalog is empty", ErrValidation)
	}

	rules := make([]model.ApprovalRule, 0, len(file.Rules))
	levels := make(map[int]struct{}, len(file.Rules))
	for i, item := range file.Rules {
		minDiscount, err := parseRuleFields(item.JobLevel, item.MinDiscount)
		if err != nil {
			return ImportResult{}, fmt.Errorf("rule %d: %w", i+1, err)
		}
		if _, dup := levels[item.JobLevel]; dup {
			return ImportResult{}, fmt.Errorf("%w: rule %d repeats job level %d", ErrValidation, i+1, item.JobLevel)
		}
		levels[item.JobLevel] = struct{}{}

		rules = append(rules, model.ApprovalRule{
			JobLevel:    item.JobLevel,
			MinDiscount: minDiscount,
			IsActive:    true,
			Description: item.Description,
		})
	}

	var result ImportResult
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if file.Replace {
			active, err := s.ruleRepo.List(txCtx, true)
			if err != nil {
				return fmt.Errorf("failed to load approval rules: %w", err)
			}
			if err := s.ruleRepo.DeactivateAll(txCtx); err != nil {
				return fmt.Errorf("failed to retire approval rules: %w", err)
			}
			result.Deactivated = len(active)
		}

		for i := range rules {
			if !file.Replace {
				if err := s.checkLevelTaken(txCtx, rules[i].JobLevel, nil); err != nil {
					return err
				}
			}
			if err := s.ruleRepo.Create(txCtx, &rules[i]); err != nil {
				return fmt.Errorf("failed to create approval rule: %w", err)
			}
			result.Created++
		}

		return writeAudit(txCtx, s.auditRepo, model.AuditLog{
			UserID:     userID,
			Action:     model.ActionImportApprovalRules,
			EntityID:   "approval_rules",
			EntityName: strconv.Itoa(result.Created) + " rules",
			Details:    auditDetails(map[string]interface{}{"replace": file.Replace, "created": result.Created, "deactivated": result.Deactivated}),
		})
	})
	if err != nil {
		return ImportResult{}, err
	}

	return result, nil
}

// --- Helpers ---

func parseRuleFields(jobLevel int, minDiscountStr string) (decimal.Decimal, error) {
	if jobLevel < 1 {
		return decimal.Zero, fmt.Errorf("%w: job_level must be at least 1", ErrValidation)
	}
	minDiscount, err := decimal.NewFromString(minDiscountStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid min_discount %q", ErrValidation, minDiscountStr)
	}
	if minDiscount.IsNegative() || minDiscount.GreaterThan(maxDiscount) {
		return decimal.Zero, fmt.Errorf("%w: min_discount must be between 0 and 100", ErrValidation)
	}
	return minDiscount, nil
}

// checkLevelTaken rejects a second active rule for the same job level.
func (s *approvalRuleService) checkLevelTaken(ctx context.Context, jobLevel int, excludeID *uuid.UUID) error {
	active, err := s.ruleRepo.List(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to load approval rules: %w", err)
	}
	for _, r := range active {
		if r.JobLevel != jobLevel {
			continue
		}
		if excludeID != nil && r.ID == *excludeID {
			continue
		}
		return fmt.Errorf("%w: an active rule for job level %d already exists", ErrValidation, jobLevel)
	}
	return nil
}

func ruleLabel(r model.ApprovalRule) string {
	return "level " + strconv.Itoa(r.JobLevel) + " >= " + r.MinDiscount.String() + "%"
}

func toApprovalRuleResponse(r model.ApprovalRule) ApprovalRuleResponse {
	return ApprovalRuleResponse{
		ID:          r.ID.String(),
		JobLevel:    r.JobLevel,
		MinDiscount: r.MinDiscount.StringFixed(4),
		IsActive:    r.IsActive,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   r.UpdatedAt.Format(time.RFC3339),
	}
}
