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
)

const dateLayout = "2006-01-02"

var maxDiscount = decimal.NewFromInt(100)

// --- DTOs ---

type CreateProposalRequest struct {
	Discount   string `json:"discount" binding:"required"`    // percent, e.g. "15.5"
	ValidFrom  string `json:"valid_from" binding:"required"`  // YYYY-MM-DD
	ValidUntil string `json:"valid_until" binding:"required"` // YYYY-MM-DD
	PartnerID  string `json:"partner_id"`
	ChannelID  string `json:"channel_id"`
	Note       string `json:"note"`
}

type UpdateProposalRequest struct {
	Discount   string `json:"discount" binding:"required"`
	ValidFrom  string `json:"valid_from" binding:"required"`
	ValidUntil string `json:"valid_until" binding:"required"`
	PartnerID  string `json:"partner_id"`
	ChannelID  string `json:"channel_id"`
	Note       string `json:"note"`
	// Version, when set, must match the stored version.
	Version int64 `json:"version"`
}

type ProposalFilter struct {
	Status string
	Page   int
	Limit  int
}

type ProposalResponse struct {
	ID           string  `json:"id"`
	SequenceNo   int64   `json:"sequence_no"`
	RevisionCode string  `json:"revision_code"`
	Status       string  `json:"status"`
	Discount     string  `json:"discount"`
	ValidFrom    string  `json:"valid_from"`
	ValidUntil   string  `json:"valid_until"`
	SellerID     string  `json:"seller_id"`
	PartnerID    *string `json:"partner_id"`
	ChannelID    *string `json:"channel_id"`
	SalesOrderID *string `json:"sales_order_id"`
	Note         string  `json:"note"`
	Version      int64   `json:"version"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// --- Interface ---

// ProposalService owns every proposal field except Status.
type ProposalService interface {
	CreateProposal(ctx context.Context, req CreateProposalRequest, sellerID uuid.UUID) (ProposalResponse, error)
	UpdateProposal(ctx context.Context, id uuid.UUID, req UpdateProposalRequest, userID uuid.UUID) (ProposalResponse, error)
	GetProposal(ctx context.Context, id uuid.UUID) (ProposalResponse, error)
	ListProposals(ctx context.Context, filter ProposalFilter) ([]ProposalResponse, int64, error)
}

type proposalService struct {
	txManager    repository.TransactionManager
	proposalRepo repository.ProposalRepository
	auditRepo    repository.AuditRepository
}

func NewProposalService(
	txManager repository.TransactionManager,
	proposalRepo repository.ProposalRepository,
	auditRepo repository.AuditRepository,
) ProposalService {
	return &proposalService{
		txManager:    txManager,
		proposalRepo: proposalRepo,
		auditRepo:    auditRepo,
	}
}

// --- Implementation ---

func (s *proposalService) CreateProposal(ctx context.Context, req CreateProposalRequest, sellerID uuid.UUID) (ProposalResponse, error) {
	fields, err := parseProposalFields(req.Discount, req.ValidFrom, req.ValidUntil, req.PartnerID, req.ChannelID)
	if err != nil {
		return ProposalResponse{}, err
	}

	proposal := model.Proposal{
		RevisionCode: revisionCode(0),
		Status:       model.InitialProposalStatus,
		Discount:     fields.discount,
		ValidFrom:    fields.validFrom,
		ValidUntil:   fields.validUntil,
		SellerID:     sellerID,
		PartnerID:    fields.partnerID,
		ChannelID:    fields.channelID,
		Note:         req.Note,
		Version:      1,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		seq, err := s.proposalRepo.NextSequenceNo(txCtx)
		if err != nil {
			return fmt.Errorf("failed to generate sequence number: %w", err)
		}
		proposal.SequenceNo = seq

		if err := s.proposalRepo.Create(txCtx, &proposal); err != nil {
			return translateRepoErr(err, "proposal")
		}

		return writeAudit(txCtx, s.auditRepo, model.AuditLog{
			UserID:     &sellerID,
			Action:     model.ActionCreateProposal,
			EntityID:   proposal.ID.String(),
			EntityName: "proposal #" + strconv.FormatInt(seq, 10),
			Details:    auditDetails(req),
		})
	})
	if err != nil {
		return ProposalResponse{}, err
	}

	return ToProposalResponse(proposal), nil
}

// UpdateProposal edits a DRAFT proposal and bumps its revision code. The version
// check fences off a concurrent submission.
func (s *proposalService) UpdateProposal(ctx context.Context, id uuid.UUID, req UpdateProposalRequest, userID uuid.UUID) (ProposalResponse, error) {
	fields, err := parseProposalFields(req.Discount, req.ValidFrom, req.ValidUntil, req.PartnerID, req.ChannelID)
	if err != nil {
		return ProposalResponse{}, err
	}

	var proposal *model.Proposal
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		proposal, err = s.proposalRepo.FindByID(txCtx, id)
		if err != nil {
			return translateRepoErr(err, "proposal")
		}
		if proposal.Status != model.ProposalStatusDraft {
			return fmt.Errorf("%w: only %s proposals can be edited, this one is %s", ErrInvalidState, model.ProposalStatusDraft, proposal.Status)
		}
		if req.Version != 0 && req.Version != proposal.Version {
			return fmt.Errorf("%w: proposal is at version %d, not %d", ErrConcurrencyConflict, proposal.Version, req.Version)
		}

		revision, err := nextRevisionCode(proposal.RevisionCode)
		if err != nil {
			return err
		}

		proposal.RevisionCode = revision
		proposal.Discount = fields.discount
		proposal.ValidFrom = fields.validFrom
		proposal.ValidUntil = fields.validUntil
		proposal.PartnerID = fields.partnerID
		proposal.ChannelID = fields.channelID
		proposal.Note = req.Note

		if err := s.proposalRepo.UpdateDraftFields(txCtx, proposal); err != nil {
			return translateRepoErr(err, "proposal")
		}

		return writeAudit(txCtx, s.auditRepo, model.AuditLog{
			UserID:     &userID,
			Action:     model.ActionUpdateProposal,
			EntityID:   proposal.ID.String(),
			EntityName: "proposal #" + strconv.FormatInt(proposal.SequenceNo, 10) + " " + revision,
			Details:    auditDetails(req),
		})
	})
	if err != nil {
		return ProposalResponse{}, err
	}

	reloaded, err := s.proposalRepo.FindByID(ctx, id)
	if err != nil {
		return ProposalResponse{}, fmt.Errorf("failed to reload proposal: %w", err)
	}
	return ToProposalResponse(*reloaded), nil
}

func (s *proposalService) GetProposal(ctx context.Context, id uuid.UUID) (ProposalResponse, error) {
	proposal, err := s.proposalRepo.FindByID(ctx, id)
	if err != nil {
		return ProposalResponse{}, translateRepoErr(err, "proposal")
	}
	return ToProposalResponse(*proposal), nil
}

func (s *proposalService) ListProposals(ctx context.Context, filter ProposalFilter) ([]ProposalResponse, int64, error) {
	status := model.ProposalStatus(filter.Status)
	if status != "" && !isKnownStatus(status) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrValidation, filter.Status)
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	proposals, total, err := s.proposalRepo.List(ctx, status, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch proposals: %w", err)
	}

	res := make([]ProposalResponse, 0, len(proposals))
	for _, p := range proposals {
		res = append(res, ToProposalResponse(p))
	}
	return res, total, nil
}

// --- Helpers ---

type proposalFields struct {
	discount   decimal.Decimal
	validFrom  time.Time
	validUntil time.Time
	partnerID  *uuid.UUID
	channelID  *uuid.UUID
}

func parseProposalFields(discountStr, fromStr, untilStr, partnerStr, channelStr string) (proposalFields, error) {
	var f proposalFields

	discount, err := decimal.NewFromString(discountStr)
	if err != nil {
		return f, fmt.Errorf("%w: invalid discount %q", ErrValidation, discountStr)
	}
	if discount.IsNegative() || discount.GreaterThan(maxDiscount) {
		return f, fmt.Errorf("%w: discount must be between 0 and 100", ErrValidation)
	}
	f.discount = discount

	if f.validFrom, err = time.Parse(dateLayout, fromStr); err != nil {
		return f, fmt.Errorf("%w: invalid valid_from, expected YYYY-MM-DD", ErrValidation)
	}
	if f.validUntil, err = time.Parse(dateLayout, untilStr); err != nil {
		return f, fmt.Errorf("%w: invalid valid_until, expected YYYY-MM-DD", ErrValidation)
	}
	if f.validUntil.Before(f.validFrom) {
		return f, fmt.Errorf("%w: valid_until is before valid_from", ErrValidation)
	}

	if f.partnerID, err = parseOptionalUUID(partnerStr, "partner_id"); err != nil {
		return f, err
	}
	if f.channelID, err = parseOptionalUUID(channelStr, "channel_id"); err != nil {
		return f, err
	}
	return f, nil
}

func parseOptionalUUID(s, field string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s", ErrValidation, field)
	}
	return &id, nil
}

// revisionCode renders revision n as R00, R01, ...
func revisionCode(n int) string {
	return fmt.Sprintf("R%02d", n)
}

func nextRevisionCode(current string) (string, error) {
	if len(current) < 2 || current[0] != 'R' {
		return "", fmt.Errorf("malformed revision code %q", current)
	}
	n, err := strconv.Atoi(current[1:])
	if err != nil {
		return "", fmt.Errorf("malformed revision code %q", current)
	}
	return revisionCode(n + 1), nil
}

func isKnownStatus(status model.ProposalStatus) bool {
	for _, s := range model.ProposalStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func ToProposalResponse(p model.Proposal) ProposalResponse {
	return ProposalResponse{
		ID:           p.ID.String(),
		SequenceNo:   p.SequenceNo,
		RevisionCode: p.RevisionCode,
		Status:       string(p.Status),
		Discount:     p.Discount.StringFixed(4),
		ValidFrom:    p.ValidFrom.Format(dateLayout),
		ValidUntil:   p.ValidUntil.Format(dateLayout),
		SellerID:     p.SellerID.String(),
		PartnerID:    uuidPtrString(p.PartnerID),
		ChannelID:    uuidPtrString(p.ChannelID),
		SalesOrderID: uuidPtrString(p.SalesOrderID),
		Note:         p.Note,
		Version:      p.Version,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.Format(time.RFC3339),
	}
}
