package service

import (
	"context"
	"testing"
	"time"

	"backoffice/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimalOf(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestGetStatistics(t *testing.T) {
	env := newTestEnv(t)
	env.seedRules(t)
	ctx := context.Background()

	for _, d := range []string{"0", "8"} {
		id := env.submitted(t, d)
		_, err := env.approvals.Decide(ctx, decide(1, approver(1), id, model.DecisionApproved))
		require.NoError(t, err)
	}
	env.submitted(t, "15")
	env.newProposal(t, "3")

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	stats, err := env.stats.GetStatistics(ctx, start, end)
	require.NoError(t, err)

	assert.EqualValues(t, 4, stats.TotalProposals)
	assert.EqualValues(t, 2, stats.SalesOrdersCreated)
	assert.Equal(t, "4.0000", stats.AverageApprovedDiscount)

	counts := map[model.ProposalStatus]int64{}
	for _, c := range stats.ProposalsByStatus {
		counts[c.Status] = c.Count
	}
	assert.Len(t, stats.ProposalsByStatus, len(model.ProposalStatuses))
	assert.EqualValues(t, 1, counts[model.ProposalStatusDraft])
	assert.EqualValues(t, 1, counts[model.ProposalStatusPendingApproval])
	assert.EqualValues(t, 2, counts[model.ProposalStatusApproved])
	assert.Zero(t, counts[model.ProposalStatusConverted])
}

func TestGetStatistics_EmptyAndInvalidRange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now()

	stats, err := env.stats.GetStatistics(ctx, now.Add(-time.Hour), now)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalProposals)
	assert.Equal(t, "0.0000", stats.AverageApprovedDiscount)

	_, err = env.stats.GetStatistics(ctx, now, now.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrValidation)
}
