package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"backoffice/internal/events"
	"backoffice/internal/metrics"
	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// --- DTOs ---

// Approver is the identity deciding a tier, as resolved by the caller's identity provider.
type Approver struct {
	ID       uuid.UUID
	JobLevel int
}

type DecideInput struct {
	ProposalID uuid.UUID
	Approver   Approver
	TierLevel  int
	Outcome    model.DecisionOutcome
	Comment    string
}

type SubmitResult struct {
	Proposal      *model.Proposal
	RequiredTiers []int
}

type DecideResult struct {
	Proposal *model.Proposal
	Decision model.ApprovalDecision
	// Completed is true when this decision moved the proposal out of PENDING_APPROVAL.
	Completed  bool
	SalesOrder *model.SalesOrder
}

type ConvertResult struct {
	Proposal   *model.Proposal
	SalesOrder *model.SalesOrder
}

type DecisionResponse struct {
	ID                 string  `json:"id"`
	TierLevel          int     `json:"tier_level"`
	Outcome            string  `json:"outcome"`
	ApproverID         *string `json:"approver_id"`
	ApproverJobLevel   *int    `json:"approver_job_level"`
	Comment            string  `json:"comment"`
	DiscountAtDecision string  `json:"discount_at_decision"`
	DecidedAt          *string `json:"decided_at"`
}

// --- Interface ---

// ApprovalService is the only writer of Proposal.Status. Every mutating call on a
// proposal is serialized against other calls on the same proposal.
type ApprovalService interface {
	Submit(ctx context.Context, proposalID, actorID uuid.UUID) (SubmitResult, error)
	Decide(ctx context.Context, in DecideInput) (DecideResult, error)
	Cancel(ctx context.Context, proposalID, actorID uuid.UUID, reason string) (*model.Proposal, error)
	Convert(ctx context.Context, proposalID, actorID uuid.UUID) (ConvertResult, error)

	GetStatus(ctx context.Context, proposalID uuid.UUID) (model.ProposalStatus, bool, error)
	GetHistory(ctx context.Context, proposalID uuid.UUID) ([]model.ProposalHistory, error)
	GetPendingTiers(ctx context.Context, proposalID uuid.UUID) ([]int, error)
	GetDecisions(ctx context.Context, proposalID uuid.UUID) ([]model.ApprovalDecision, error)
}

// ApprovalServiceDeps lists every collaborator of the approval service.
type ApprovalServiceDeps struct {
	TxManager    repository.TransactionManager
	ProposalRepo repository.ProposalRepository
	RuleRepo     repository.ApprovalRuleRepository
	DecisionRepo repository.ApprovalDecisionRepository
	AuditRepo    repository.AuditRepository
	History      HistoryRecorder
	Bridge       SalesOrderBridge
	Publisher    events.Publisher
	Metrics      *metrics.Metrics
	Logger       zerolog.Logger
	// LockTimeout bounds the wait for a busy proposal. Zero waits as long as ctx allows.
	LockTimeout time.Duration
}

type approvalService struct {
	txManager    repository.TransactionManager
	proposalRepo repository.ProposalRepository
	ruleRepo     repository.ApprovalRuleRepository
	decisionRepo repository.ApprovalDecisionRepository
	auditRepo    repository.AuditRepository
	history      HistoryRecorder
	bridge       SalesOrderBridge
	publisher    events.Publisher
	metrics      *metrics.Metrics
	log          zerolog.Logger
	locks        *proposalLocks
	lockTimeout  time.Duration
	now          func() time.Time
}

func NewApprovalService(deps ApprovalServiceDeps) ApprovalService {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &approvalService{
		txManager:    deps.TxManager,
		proposalRepo: deps.ProposalRepo,
		ruleRepo:     deps.RuleRepo,
		decisionRepo: deps.DecisionRepo,
		auditRepo:    deps.AuditRepo,
		history:      deps.History,
		bridge:       deps.Bridge,
		publisher:    publisher,
		metrics:      deps.Metrics,
		log:          deps.Logger,
		locks:        newProposalLocks(),
		lockTimeout:  deps.LockTimeout,
		now:          time.Now,
	}
}

// --- Mutations ---

func (s *approvalService) Submit(ctx context.Context, proposalID, actorID uuid.UUID) (SubmitResult, error) {
	var result SubmitResult
	var event events.ProposalEvent

	err := s.mutate(ctx, "submit", proposalID, func(txCtx context.Context) error {
		proposal, err := s.loadForUpdate(txCtx, proposalID)
		if err != nil {
			return err
		}

		next, ok := model.NextStatus(proposal.Status, model.EventSubmit)
		if !ok {
			return fmt.Errorf("%w: cannot submit a %s proposal", ErrInvalidState, proposal.Status)
		}

		rules, err := s.ruleRepo.List(txCtx, true)
		if err != nil {
			return fmt.Errorf("failed to load approval rules: %w", err)
		}
		tiers, err := ResolveTiers(proposal.Discount, rules)
		if err != nil {
			return err
		}

		slots := make([]model.ApprovalDecision, 0, len(tiers))
		for _, tier := range tiers {
			slots = append(slots, model.ApprovalDecision{
				ProposalID:         proposal.ID,
				TierLevel:          tier,
				Outcome:            model.DecisionPending,
				DiscountAtDecision: proposal.Discount,
			})
		}
		if err := s.decisionRepo.CreateBatch(txCtx, slots); err != nil {
			return translateRepoErr(err, "approval decisions")
		}

		old := proposal.Status
		if err := s.transition(txCtx, proposal, next, model.EventSubmit, actorID, ""); err != nil {
			return err
		}

		result = SubmitResult{Proposal: proposal, RequiredTiers: tiers}
		event = s.newEvent(events.ProposalSubmitted, proposal, old, actorID)
		event.PendingTiers = tiers
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}

	s.log.Info().
		Str("proposal_id", proposalID.String()).
		Ints("required_tiers", result.RequiredTiers).
		Msg("proposal submitted for approval")
	s.committed(ctx, model.EventSubmit, event)

	return result, nil
}

func (s *approvalService) Decide(ctx context.Context, in DecideInput) (DecideResult, error) {
	if in.Outcome != model.DecisionApproved && in.Outcome != model.DecisionRejected {
		s.metrics.Failure("decide", string(KindValidation))
		return DecideResult{}, fmt.Errorf("%w: outcome must be %s or %s", ErrValidation, model.DecisionApproved, model.DecisionRejected)
	}

	var result DecideResult
	var event events.ProposalEvent
	var lifecycleEvent model.ProposalEvent

	err := s.mutate(ctx, "decide", in.ProposalID, func(txCtx context.Context) error {
		proposal, err := s.loadForUpdate(txCtx, in.ProposalID)
		if err != nil {
			return err
		}

		if proposal.Status != model.ProposalStatusPendingApproval {
			return fmt.Errorf("%w: proposal is %s, not %s", ErrInvalidState, proposal.Status, model.ProposalStatusPendingApproval)
		}

		slots, err := s.decisionRepo.ListByProposal(txCtx, proposal.ID)
		if err != nil {
			return fmt.Errorf("failed to load approval decisions: %w", err)
		}

		slot, found := findSlot(slots, in.TierLevel)
		if !found {
			return fmt.Errorf("%w: tier %d is not required for this proposal", ErrValidation, in.TierLevel)
		}
		if slot.Outcome != model.DecisionPending {
			return fmt.Errorf("%w: tier %d is already %s", ErrDuplicateDecision, in.TierLevel, slot.Outcome)
		}
		if in.Approver.JobLevel < in.TierLevel {
			return fmt.Errorf("%w: job level %d cannot decide tier %d", ErrUnauthorizedTier, in.Approver.JobLevel, in.TierLevel)
		}

		decidedAt := s.now()
		filled, err := s.decisionRepo.Fill(txCtx, slot.ID, repository.DecisionFill{
			Outcome:          in.Outcome,
			ApproverID:       in.Approver.ID,
			ApproverJobLevel: in.Approver.JobLevel,
			Comment:          in.Comment,
			Discount:         proposal.Discount,
			DecidedAt:        decidedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to record decision: %w", err)
		}
		if !filled {
			return fmt.Errorf("%w: tier %d was decided concurrently", ErrDuplicateDecision, in.TierLevel)
		}

		approverID, jobLevel := in.Approver.ID, in.Approver.JobLevel
		slot.Outcome = in.Outcome
		slot.ApproverID = &approverID
		slot.ApproverJobLevel = &jobLevel
		slot.Comment = in.Comment
		slot.DiscountAtDecision = proposal.Discount
		slot.DecidedAt = &decidedAt
		setSlot(slots, slot)

		result.Decision = slot
		old := proposal.Status

		switch {
		case in.Outcome == model.DecisionRejected:
			if err := s.transition(txCtx, proposal, model.ProposalStatusRejected, model.EventReject, in.Approver.ID, in.Comment); err != nil {
				return err
			}
			lifecycleEvent = model.EventReject
			event = s.newEvent(events.ProposalRejected, proposal, old, in.Approver.ID)
			result.Completed = true

		case allApproved(slots):
			order, err := s.bridge.OnApproved(txCtx, proposal)
			if err != nil {
				return fmt.Errorf("failed to create sales order: %w", err)
			}
			if err := s.transition(txCtx, proposal, model.ProposalStatusApproved, model.EventApprove, in.Approver.ID, in.Comment); err != nil {
				return err
			}
			lifecycleEvent = model.EventApprove
			event = s.newEvent(events.ProposalApproved, proposal, old, in.Approver.ID)
			event.SalesOrderID = order.ID.String()
			result.Completed = true
			result.SalesOrder = order

		default:
			// Intermediate sign-off: status does not move, so it is not a history entry.
			err := writeAudit(txCtx, s.auditRepo, model.AuditLog{
				UserID:     &approverID,
				Action:     model.ActionApproveTier,
				EntityID:   proposal.ID.String(),
				EntityName: "proposal #" + strconv.FormatInt(proposal.SequenceNo, 10),
				Details: auditDetails(map[string]interface{}{
					"tier_level":    in.TierLevel,
					"job_level":     jobLevel,
					"pending_tiers": pendingTiers(slots),
				}),
			})
			if err != nil {
				return err
			}
			event = s.newEvent(events.ProposalTierApproved, proposal, old, in.Approver.ID)
			event.PendingTiers = pendingTiers(slots)
		}

		event.TierLevel = in.TierLevel
		result.Proposal = proposal
		return nil
	})
	if err != nil {
		return DecideResult{}, err
	}

	s.metrics.Decision(strconv.Itoa(in.TierLevel), string(in.Outcome))
	s.log.Info().
		Str("proposal_id", in.ProposalID.String()).
		Int("tier_level", in.TierLevel).
		Str("outcome", string(in.Outcome)).
		Str("status", string(result.Proposal.Status)).
		Msg("approval decision recorded")

	if lifecycleEvent != "" {
		s.committed(ctx, lifecycleEvent, event)
	} else {
		s.publish(ctx, event)
	}

	return result, nil
}

func (s *approvalService) Cancel(ctx context.Context, proposalID, actorID uuid.UUID, reason string) (*model.Proposal, error) {
	var proposal *model.Proposal
	var event events.ProposalEvent

	err := s.mutate(ctx, "cancel", proposalID, func(txCtx context.Context) error {
		var err error
		proposal, err = s.loadForUpdate(txCtx, proposalID)
		if err != nil {
			return err
		}

		next, ok := model.NextStatus(proposal.Status, model.EventCancel)
		if !ok {
			return fmt.Errorf("%w: cannot cancel a %s proposal", ErrInvalidState, proposal.Status)
		}

		if _, err := s.decisionRepo.DiscardPending(txCtx, proposal.ID, s.now()); err != nil {
			return fmt.Errorf("failed to discard pending decisions: %w", err)
		}

		old := proposal.Status
		if err := s.transition(txCtx, proposal, next, model.EventCancel, actorID, reason); err != nil {
			return err
		}
		event = s.newEvent(events.ProposalCancelled, proposal, old, actorID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("proposal_id", proposalID.String()).Msg("proposal cancelled")
	s.committed(ctx, model.EventCancel, event)

	return proposal, nil
}

// Convert hands an approved proposal over to fulfilment: the proposal becomes
// CONVERTED and its sales order is confirmed.
func (s *approvalService) Convert(ctx context.Context, proposalID, actorID uuid.UUID) (ConvertResult, error) {
	var result ConvertResult
	var event events.ProposalEvent

	err := s.mutate(ctx, "convert", proposalID, func(txCtx context.Context) error {
		proposal, err := s.loadForUpdate(txCtx, proposalID)
		if err != nil {
			return err
		}

		next, ok := model.NextStatus(proposal.Status, model.EventConvert)
		if !ok {
			return fmt.Errorf("%w: cannot convert a %s proposal", ErrInvalidState, proposal.Status)
		}

		order, err := s.bridge.Confirm(txCtx, proposal, actorID)
		if err != nil {
			return err
		}

		old := proposal.Status
		if err := s.transition(txCtx, proposal, next, model.EventConvert, actorID, ""); err != nil {
			return err
		}

		result = ConvertResult{Proposal: proposal, SalesOrder: order}
		event = s.newEvent(events.ProposalConverted, proposal, old, actorID)
		event.SalesOrderID = order.ID.String()
		return nil
	})
	if err != nil {
		return ConvertResult{}, err
	}

	s.log.Info().
		Str("proposal_id", proposalID.String()).
		Str("order_no", result.SalesOrder.OrderNo).
		Msg("proposal converted")
	s.committed(ctx, model.EventConvert, event)

	return result, nil
}

// --- Reads (lock-free) ---

func (s *approvalService) GetStatus(ctx context.Context, proposalID uuid.UUID) (model.ProposalStatus, bool, error) {
	proposal, err := s.proposalRepo.FindByID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to fetch proposal: %w", err)
	}
	return proposal.Status, true, nil
}

func (s *approvalService) GetHistory(ctx context.Context, proposalID uuid.UUID) ([]model.ProposalHistory, error) {
	if err := s.ensureExists(ctx, proposalID); err != nil {
		return nil, err
	}
	return s.history.ReadHistory(ctx, proposalID)
}

// GetPendingTiers returns the snapshot tiers still awaiting a decision. It is empty
// once the proposal has left PENDING_APPROVAL.
func (s *approvalService) GetPendingTiers(ctx context.Context, proposalID uuid.UUID) ([]int, error) {
	proposal, err := s.proposalRepo.FindByID(ctx, proposalID)
	if err != nil {
		return nil, translateRepoErr(err, "proposal")
	}
	if proposal.Status != model.ProposalStatusPendingApproval {
		return []int{}, nil
	}

	slots, err := s.decisionRepo.ListByProposal(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approval decisions: %w", err)
	}
	return pendingTiers(slots), nil
}

func (s *approvalService) GetDecisions(ctx context.Context, proposalID uuid.UUID) ([]model.ApprovalDecision, error) {
	if err := s.ensureExists(ctx, proposalID); err != nil {
		return nil, err
	}
	slots, err := s.decisionRepo.ListByProposal(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approval decisions: %w", err)
	}
	return slots, nil
}

// --- Helpers ---

// mutate runs fn in a transaction while holding the proposal's lock.
func (s *approvalService) mutate(ctx context.Context, op string, proposalID uuid.UUID, fn func(txCtx context.Context) error) error {
	start := time.Now()
	defer func() { s.metrics.OperationDuration(op, time.Since(start)) }()

	lockCtx := ctx
	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}

	release, err := s.locks.Acquire(lockCtx, proposalID)
	if err != nil {
		s.fail(op, proposalID, err)
		return err
	}
	defer release()
	s.metrics.LockWait(time.Since(start))

	if err := s.txManager.RunInTx(ctx, fn); err != nil {
		s.fail(op, proposalID, err)
		return err
	}
	return nil
}

func (s *approvalService) fail(op string, proposalID uuid.UUID, err error) {
	kind := KindOf(err)
	s.metrics.Failure(op, string(kind))

	ev := s.log.Warn()
	if kind == KindInternal || kind == KindConfiguration {
		ev = s.log.Error()
	}
	ev.Err(err).
		Str("operation", op).
		Str("proposal_id", proposalID.String()).
		Str("kind", string(kind)).
		Msg("approval operation rejected")
}

func (s *approvalService) loadForUpdate(ctx context.Context, proposalID uuid.UUID) (*model.Proposal, error) {
	proposal, err := s.proposalRepo.FindByIDForUpdate(ctx, proposalID)
	if err != nil {
		return nil, translateRepoErr(err, "proposal")
	}
	return proposal, nil
}

func (s *approvalService) ensureExists(ctx context.Context, proposalID uuid.UUID) error {
	if _, err := s.proposalRepo.FindByID(ctx, proposalID); err != nil {
		return translateRepoErr(err, "proposal")
	}
	return nil
}

// transition writes the new status and its history entry. Both land in the caller's
// transaction or neither does.
func (s *approvalService) transition(
	ctx context.Context,
	proposal *model.Proposal,
	next model.ProposalStatus,
	event model.ProposalEvent,
	actorID uuid.UUID,
	comment string,
) error {
	old := proposal.Status
	if err := s.proposalRepo.UpdateStatus(ctx, proposal, next); err != nil {
		return translateRepoErr(err, "proposal")
	}

	_, err := s.history.Append(ctx, HistoryInput{
		ProposalID:   proposal.ID,
		OldStatus:    old,
		NewStatus:    next,
		Event:        event,
		ActorID:      actorID,
		SalesOrderID: proposal.SalesOrderID,
		Comment:      comment,
		At:           proposal.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

func (s *approvalService) newEvent(t events.Type, p *model.Proposal, old model.ProposalStatus, actorID uuid.UUID) events.ProposalEvent {
	return events.ProposalEvent{
		Type:       t,
		ProposalID: p.ID.String(),
		SequenceNo: p.SequenceNo,
		OldStatus:  string(old),
		NewStatus:  string(p.Status),
		ActorID:    actorID.String(),
		OccurredAt: s.now(),
	}
}

func (s *approvalService) committed(ctx context.Context, lifecycleEvent model.ProposalEvent, event events.ProposalEvent) {
	s.metrics.Transition(string(lifecycleEvent), event.NewStatus)
	s.publish(ctx, event)
}

// publish is best-effort; the transition is already committed.
func (s *approvalService) publish(ctx context.Context, event events.ProposalEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.PublishFailure(string(event.Type))
		s.log.Warn().Err(err).
			Str("event_type", string(event.Type)).
			Str("proposal_id", event.ProposalID).
			Msg("failed to publish proposal event")
	}
}

func findSlot(slots []model.ApprovalDecision, tier int) (model.ApprovalDecision, bool) {
	for _, d := range slots {
		if d.TierLevel == tier {
			return d, true
		}
	}
	return model.ApprovalDecision{}, false
}

func setSlot(slots []model.ApprovalDecision, slot model.ApprovalDecision) {
	for i := range slots {
		if slots[i].ID == slot.ID {
			slots[i] = slot
			return
		}
	}
}

func allApproved(slots []model.ApprovalDecision) bool {
	if len(slots) == 0 {
		return false
	}
	for _, d := range slots {
		if d.Outcome != model.DecisionApproved {
			return false
		}
	}
	return true
}

func pendingTiers(slots []model.ApprovalDecision) []int {
	tiers := make([]int, 0, len(slots))
	for _, d := range slots {
		if d.Outcome == model.DecisionPending {
			tiers = append(tiers, d.TierLevel)
		}
	}
	return tiers
}

func ToDecisionResponse(d model.ApprovalDecision) DecisionResponse {
	resp := DecisionResponse{
		ID:                 d.ID.String(),
		TierLevel:          d.TierLevel,
		Outcome:            string(d.Outcome),
		ApproverJobLevel:   d.ApproverJobLevel,
		Comment:            d.Comment,
		DiscountAtDecision: d.DiscountAtDecision.StringFixed(4),
	}
	if d.ApproverID != nil {
		s := d.ApproverID.String()
		resp.ApproverID = &s
	}
	if d.DecidedAt != nil {
		s := d.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &s
	}
	return resp
}
