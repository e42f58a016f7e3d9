package service

import (
	"context"
	"testing"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRecorder_Chain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proposalID := uuid.New()
	actor := uuid.New()

	_, err := env.history.Append(ctx, HistoryInput{
		ProposalID: proposalID, OldStatus: model.ProposalStatusPendingApproval,
		NewStatus: model.ProposalStatusApproved, Event: model.EventApprove, ActorID: actor,
	})
	assert.ErrorIs(t, err, ErrInvalidState, "first entry must leave the initial status")

	_, err = env.history.Append(ctx, HistoryInput{
		ProposalID: proposalID, OldStatus: model.ProposalStatusDraft,
		NewStatus: model.ProposalStatusApproved, Event: model.EventSubmit, ActorID: actor,
	})
	assert.ErrorIs(t, err, ErrInvalidState, "event must lead to the new status")

	_, err = env.history.Append(ctx, HistoryInput{
		ProposalID: proposalID, OldStatus: model.ProposalStatusDraft,
		NewStatus: model.ProposalStatusPendingApproval, Event: model.EventSubmit, ActorID: actor,
	})
	require.NoError(t, err)

	_, err = env.history.Append(ctx, HistoryInput{
		ProposalID: proposalID, OldStatus: model.ProposalStatusDraft,
		NewStatus: model.ProposalStatusCancelled, Event: model.EventCancel, ActorID: actor,
	})
	assert.ErrorIs(t, err, ErrInvalidState, "must continue from the last entry")

	_, err = env.history.Append(ctx, HistoryInput{
		ProposalID: proposalID, OldStatus: model.ProposalStatusPendingApproval,
		NewStatus: model.ProposalStatusRejected, Event: model.EventReject, ActorID: actor, Comment: "too deep",
	})
	require.NoError(t, err)

	entries, err := env.history.ReadHistory(ctx, proposalID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Seq)
	assert.Equal(t, 2, entries[1].Seq)
	assert.Equal(t, entries[0].NewStatus, entries[1].OldStatus)

	resp := ToHistoryResponse(entries[1])
	assert.Equal(t, "REJECT", resp.Event)
	assert.Equal(t, "too deep", resp.Comment)
	assert.Nil(t, resp.SalesOrderID)
}

func TestSalesOrderBridge_OnApprovedIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := env.newProposal(t, "5")
	proposal, err := env.proposalRepo.FindByID(ctx, id)
	require.NoError(t, err)

	first, err := env.bridge.OnApproved(ctx, proposal)
	require.NoError(t, err)
	require.NotNil(t, proposal.SalesOrderID)
	assert.Equal(t, first.ID, *proposal.SalesOrderID)

	again, err := env.bridge.OnApproved(ctx, proposal)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.OrderNo, again.OrderNo)

	other := env.newProposal(t, "5")
	otherProposal, err := env.proposalRepo.FindByID(ctx, other)
	require.NoError(t, err)
	second, err := env.bridge.OnApproved(ctx, otherProposal)
	require.NoError(t, err)
	assert.NotEqual(t, first.OrderNo, second.OrderNo)

	confirmed, err := env.bridge.Confirm(ctx, proposal, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.SalesOrderStatusConfirmed, confirmed.Status)

	_, err = env.bridge.Confirm(ctx, proposal, uuid.New())
	assert.ErrorIs(t, err, ErrInvalidState)

	resp := ToSalesOrderResponse(confirmed)
	require.NotNil(t, resp)
	assert.Equal(t, "CONFIRMED", resp.Status)
	assert.Nil(t, ToSalesOrderResponse(nil))
}
