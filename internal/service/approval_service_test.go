package service

import (
	"context"
	"sync"
	"testing"

	"backoffice/internal/events"
	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproval_TwoTiersThenApproved(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t)
	ctx := context.Background()

	id := env.newProposal(t, "15")
	res, err := env.approvals.Submit(ctx, id, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, res.RequiredTiers)
	assert.Equal(t, model.ProposalStatusPendingApproval, res.Proposal.Status)

	first, err := env.approvals.Decide(ctx, decide(1, approver(1), id, model.DecisionApproved))
	require.NoError(t, err)
	assert.False(t, first.Completed)
	assert.Nil(t, first.SalesOrder)
	assert.Equal(t, model.ProposalStatusPendingApproval, first.Proposal.Status)

	pending, err := env.approvals.GetPendingTiers(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, pending)

	second, err := env.approvals.Decide(ctx, decide(2, approver(2), id, model.DecisionApproved))
	require.NoError(t, err)
	assert.True(t, second.Completed)
	require.NotNil(t, second.SalesOrder)
	assert.Equal(t, model.ProposalStatusApproved, second.Proposal.Status)
	assert.Equal(t, model.SalesOrderStatusOpen, second.SalesOrder.Status)
	assert.Regexp(t, `^SO-\d{8}-\d{5}$`, second.SalesOrder.OrderNo)

	status, found, err := env.approvals.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, model.ProposalStatusApproved, status)

	var orders int64
	require.NoError(t, env.db.Model(&model.SalesOrder{}).Where("proposal_id = ?", id).Count(&orders).Error)
	assert.EqualValues(t, 1, orders)

	stored, err := env.proposalRepo.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, stored.SalesOrderID)
	assert.Equal(t, second.SalesOrder.ID, *stored.SalesOrderID)

	history, err := env.approvals.GetHistory(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.EventSubmit, history[0].Event)
	assert.Equal(t, model.ProposalStatusDraft, history[0].OldStatus)
	assert.Equal(t, model.EventApprove, history[1].Event)
	assert.Equal(t, model.ProposalStatusApproved, history[1].NewStatus)
	require.NotNil(t, history[1].SalesOrderID)
	assert.Equal(t, second.SalesOrder.ID, *history[1].SalesOrderID)

	tierAudits, _, err := env.auditRepo.List(ctx, repository.AuditFilter{Action: model.ActionApproveTier, EntityID: id.String(), Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, tierAudits, 1)

	var types []events.Type
	for _, e := range env.recorder.Events() {
		types = append(types, e.Type)
	}
	assert.Equal(t, []events.Type{events.ProposalSubmitted, events.ProposalTierApproved, events.ProposalApproved}, types)

	pending, err = env.approvals.GetPendingTiers(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestApproval_RejectionEndsImmediately(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t)
	ctx := context.Background()

	id := env.newProposal(t, "30")
	res, err := env.approvals.Submit(ctx, id, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, res.RequiredTiers)

	_, err = env.approvals.Decide(ctx, decide(1, approver(1), id, model.DecisionApproved))
	require.NoError(t, err)

	rejected, err := env.approvals.Decide(ctx, decide(2, approver(2), id, model.DecisionRejected))
	require.NoError(t, err)
	assert.True(t, rejected.Completed)
	assert.Nil(t, rejected.SalesOrder)
	assert.Equal(t, model.ProposalStatusRejected, rejected.Proposal.Status)

	_, err = env.approvals.Decide(ctx, decide(3, approver(3), id, model.DecisionApproved))
	assert.ErrorIs(t, err, ErrInvalidState)

	var orders int64
	require.NoError(t, env.db.Model(&model.SalesOrder{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestApproval_ZeroDiscountNeedsLowestTier(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t)
	ctx := context.Background()

	id := env.newProposal(t, "0")
	res, err := env.approvals.Submit(ctx, id, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, res.RequiredTiers)

	done, err := env.approvals.Decide(ctx, decide(1, approver(1), id, model.DecisionApproved))
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.Equal(t, model.ProposalStatusApproved, done.Proposal.Status)
}

func TestApproval_ConcurrentFinalDecisions(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t)
	ctx := context.Background()

	id := env.submitted(t, "15")

	var wg sync.WaitGroup
	results := make([]DecideResult, 2)
	errs := make([]error, 2)
	for i, tier := range []int{1, 2} {
		wg.Add(1)
		go func(i, tier int) {
			defer wg.Done()
			results[i], errs[i] = env.approvals.Decide(ctx, decide(tier, approver(tier), id, model.DecisionApproved))
		}(i, tier)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.NotEqual(t, results[0].Completed, results[1].Completed, "exactly one decision completes the proposal")

	history, err := env.approvals.GetHistory(ctx, id)
	require.NoError(t, err)
	approvedEntries := 0
	for _, h := range history {
		if h.NewStatus == model.ProposalStatusApproved {
			approvedEntries++
		}
	}
	assert.Equal(t, 1, approvedEntries)

	var orders int64
	require.NoError(t, env.db.Model(&model.SalesOrder{}).Where("proposal_id = ?", id).Count(&orders).Error)
	assert.EqualValues(t, 1, orders)
}

func TestDecide_Rejections(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t)
	ctx := context.Background()

	t.Run("approver below tier", func(t *testing.T) {
		id := env.submitted(t, "15")
		_, err := env.approvals.Decide(ctx, decide(2, approver(1), id, model.DecisionApproved))
		assert.ErrorIs(t, err, ErrUnauthorizedTier)

		pending, err := env.approvals.GetPendingTiers(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, pending)
	})

	t.Run("higher level may decide a lower tier", func(t *testing.T) {
		id := env.submitted(t, "15")
		_, err := env.approvals.Decide(ctx, decide(1, approver(3), id, model.DecisionApproved))
		assert.NoError(t, err)
	})

	t.Run("tier decided twice", func(t *testing.T) {
		id := env.submitted(t, "15")
		_, err := env.approvals.Decide(ctx, decide(1, approver(1), id, model.DecisionApproved))
		require.NoError(t, err)

		_, err = env.approvals.Decide(ctx, decide(1, approver(2), id, model.DecisionApproved))
		assert.ErrorIs(t, err, ErrDuplicateDecision)
	})

	t.Run("tier outside snapshot", func(t *testing.T) {
		id := env.submitted(t, "15")
		_, err := env.approvals.Decide(ctx, decide(3, approver(3), id, model.DecisionApproved))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("outcome must be a verdict", func(t *testing.T) {
		id := env.submitted(t, "15")
		_, err := env.approvals.Decide(ctx, decide(1, approver(1), id, model.DecisionPending))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("draft proposal", func(t *testing.T) {
		id := env.newProposal(t, "15")
		_, err := env.approvals.Decide(ctx, decide(1, approver(1), id, model.DecisionApproved))
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("unknown proposal", func(t *testing.T) {
		_, err := env.approvals.Decide(ctx, decide(1, approver(1), uuid.New(), model.DecisionApproved))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSubmit_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("twice", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedRules(t)
		id := env.submitted(t, "15")

		_, err := env.approvals.Submit(ctx, id, uuid.New())
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("empty catalog leaves draft untouched", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.newProposal(t, "15")

		_, err := env.approvals.Submit(ctx, id, uuid.New())
		assert.ErrorIs(t, err, ErrConfiguration)

		status, found, err := env.approvals.GetStatus(ctx, id)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, model.ProposalStatusDraft, status)

		decisions, err := env.approvals.GetDecisions(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, decisions)

		history, err := env.approvals.GetHistory(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, history)
		assert.Empty(t, env.recorder.Events())
	})
}

func TestSubmit_SnapshotIgnoresLaterRuleChanges(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t)
	ctx := context.Background()

	id := env.submitted(t, "15")

	// Retire the whole catalog and install one that would demand level 3.
	require.NoError(t, env.ruleRepo.DeactivateAll(ctx))
	env.addRule(t, 3, "0", true)

	pending, err := env.approvals.GetPendingTiers(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, pending)

	_, err = env.approvals.Decide(ctx, decide(1, approver(1), id, model.DecisionApproved))
	require.NoError(t, err)
	done, err := env.approvals.Decide(ctx, decide(2, approver(2), id, model.DecisionApproved))
	require.NoError(t, err)
	assert.Equal(t, model.ProposalStatusApproved, done.Proposal.Status)
}

func TestCancel(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t)
	ctx := context.Background()

	t.Run("draft", func(t *testing.T) {
		id := env.newProposal(t, "15")
		p, err := env.approvals.Cancel(ctx, id, uuid.New(), "customer withdrew")
		require.NoError(t, err)
		assert.Equal(t, model.ProposalStatusCancelled, p.Status)

		history, err := env.approvals.GetHistory(ctx, id)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "customer withdrew", history[0].Comment)
	})

	t.Run("pending discards open tiers", func(t *testing.T) {
		id := env.submitted(t, "15")
		_, err := env.approvals.Decide(ctx, decide(1, approver(1), id, model.DecisionApproved))
		require.NoError(t, err)

		_, err = env.approvals.Cancel(ctx, id, uuid.New(), "")
		require.NoError(t, err)

		decisions, err := env.approvals.GetDecisions(ctx, id)
		require.NoError(t, err)
		require.Len(t, decisions, 2)
		assert.Equal(t, model.DecisionApproved, decisions[0].Outcome)
		assert.Equal(t, model.DecisionDiscarded, decisions[1].Outcome)

		pending, err := env.approvals.GetPendingTiers(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, pending)

		_, err = env.approvals.Decide(ctx, decide(2, approver(2), id, model.DecisionApproved))
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("terminal", func(t *testing.T) {
		id := env.submitted(t, "0")
		_, err := env.approvals.Decide(ctx, decide(1, approver(1), id, model.DecisionRejected))
		require.NoError(t, err)

		_, err = env.approvals.Cancel(ctx, id, uuid.New(), "")
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestConvert(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t)
	ctx := context.Background()

	id := env.submitted(t, "0")

	_, err := env.approvals.Convert(ctx, id, uuid.New())
	assert.ErrorIs(t, err, ErrInvalidState)

	approved, err := env.approvals.Decide(ctx, decide(1, approver(1), id, model.DecisionApproved))
	require.NoError(t, err)

	res, err := env.approvals.Convert(ctx, id, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.ProposalStatusConverted, res.Proposal.Status)
	assert.Equal(t, approved.SalesOrder.ID, res.SalesOrder.ID)
	assert.Equal(t, model.SalesOrderStatusConfirmed, res.SalesOrder.Status)

	_, err = env.approvals.Convert(ctx, id, uuid.New())
	assert.ErrorIs(t, err, ErrInvalidState)

	history, err := env.approvals.GetHistory(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.Equal(t, history[i-1].NewStatus, history[i].OldStatus)
		assert.Equal(t, history[i-1].Seq+1, history[i].Seq)
	}
}

func TestReads_UnknownProposal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := uuid.New()

	status, found, err := env.approvals.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, status)

	_, err = env.approvals.GetHistory(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.approvals.GetPendingTiers(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.approvals.GetDecisions(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproval_WithoutPublisher(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t)
	svc := NewApprovalService(ApprovalServiceDeps{
		TxManager:    env.txManager,
		ProposalRepo: env.proposalRepo,
		RuleRepo:     env.ruleRepo,
		DecisionRepo: env.decisionRepo,
		AuditRepo:    env.auditRepo,
		History:      env.history,
		Bridge:       env.bridge,
	})

	id := env.newProposal(t, "0")
	_, err := svc.Submit(context.Background(), id, uuid.New())
	require.NoError(t, err)
}
