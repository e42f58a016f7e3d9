package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"backoffice/internal/database"
	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbCounter int64

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := database.OpenSQLite(dsn, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func newDraft(t *testing.T, db *gorm.DB, seq int64) *model.Proposal {
	t.Helper()
	p := &model.Proposal{
		SequenceNo:   seq,
		RevisionCode: "R00",
		Status:       model.ProposalStatusDraft,
		Discount:     decimal.NewFromInt(12),
		ValidFrom:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		SellerID:     uuid.New(),
		Version:      1,
	}
	require.NoError(t, NewProposalRepository(db).Create(context.Background(), p))
	return p
}

func TestProposalRepository_UpdateStatusIsVersionGuarded(t *testing.T) {
	db := openTestDB(t)
	repo := NewProposalRepository(db)
	ctx := context.Background()

	p := newDraft(t, db, 1)
	stale := *p

	require.NoError(t, repo.UpdateStatus(ctx, p, model.ProposalStatusPendingApproval))
	assert.EqualValues(t, 2, p.Version)

	err := repo.UpdateStatus(ctx, &stale, model.ProposalStatusCancelled)
	assert.ErrorIs(t, err, ErrVersionConflict)

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProposalStatusPendingApproval, stored.Status)
}

func TestProposalRepository_NextSequenceNo(t *testing.T) {
	db := openTestDB(t)
	repo := NewProposalRepository(db)
	tx := NewTransactionManager(db)

	var first int64
	require.NoError(t, tx.RunInTx(context.Background(), func(txCtx context.Context) error {
		var err error
		first, err = repo.NextSequenceNo(txCtx)
		return err
	}))
	assert.EqualValues(t, 1, first)

	newDraft(t, db, 7)
	require.NoError(t, tx.RunInTx(context.Background(), func(txCtx context.Context) error {
		next, err := repo.NextSequenceNo(txCtx)
		assert.EqualValues(t, 8, next)
		return err
	}))
}

func TestApprovalDecisionRepository_FillOnce(t *testing.T) {
	db := openTestDB(t)
	repo := NewApprovalDecisionRepository(db)
	ctx := context.Background()
	proposalID := uuid.New()

	slots := []model.ApprovalDecision{
		{ProposalID: proposalID, TierLevel: 2, Outcome: model.DecisionPending},
		{ProposalID: proposalID, TierLevel: 1, Outcome: model.DecisionPending},
	}
	require.NoError(t, repo.CreateBatch(ctx, slots))

	listed, err := repo.ListByProposal(ctx, proposalID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, 1, listed[0].TierLevel)

	fill := DecisionFill{Outcome: model.DecisionApproved, ApproverID: uuid.New(), ApproverJobLevel: 1, DecidedAt: time.Now()}
	ok, err := repo.Fill(ctx, listed[0].ID, fill)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Fill(ctx, listed[0].ID, fill)
	require.NoError(t, err)
	assert.False(t, ok, "a decided slot is never overwritten")

	discarded, err := repo.DiscardPending(ctx, proposalID, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, discarded)

	listed, err = repo.ListByProposal(ctx, proposalID)
	require.NoError(t, err)
	assert.Equal(t, model.DecisionApproved, listed[0].Outcome)
	assert.Equal(t, model.DecisionDiscarded, listed[1].Outcome)

	err = repo.CreateBatch(ctx, []model.ApprovalDecision{{ProposalID: proposalID, TierLevel: 1, Outcome: model.DecisionPending}})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestHistoryRepository_LastAndOrder(t *testing.T) {
	db := openTestDB(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()
	proposalID := uuid.New()

	_, found, err := repo.Last(ctx, proposalID)
	require.NoError(t, err)
	assert.False(t, found)

	for seq, step := range [][2]model.ProposalStatus{
		{model.ProposalStatusDraft, model.ProposalStatusPendingApproval},
		{model.ProposalStatusPendingApproval, model.ProposalStatusApproved},
	} {
		require.NoError(t, repo.Append(ctx, &model.ProposalHistory{
			ProposalID: proposalID, Seq: seq + 1, OldStatus: step[0], NewStatus: step[1],
			Event: model.EventSubmit, ActorID: uuid.New(),
		}))
	}

	last, found, err := repo.Last(ctx, proposalID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, last.Seq)

	err = repo.Append(ctx, &model.ProposalHistory{
		ProposalID: proposalID, Seq: 2, OldStatus: model.ProposalStatusApproved, NewStatus: model.ProposalStatusConverted,
		Event: model.EventConvert, ActorID: uuid.New(),
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey, "sequence numbers are unique per proposal")

	all, err := repo.ListByProposal(ctx, proposalID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].Seq)
}

func TestSalesOrderRepository_NextOrderNo(t *testing.T) {
	db := openTestDB(t)
	repo := NewSalesOrderRepository(db)
	tx := NewTransactionManager(db)
	ctx := context.Background()
	day := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	for i := 1; i <= 2; i++ {
		require.NoError(t, tx.RunInTx(ctx, func(txCtx context.Context) error {
			no, err := repo.NextOrderNo(txCtx, day)
			if err != nil {
				return err
			}
			assert.Equal(t, fmt.Sprintf("SO-20261015-%05d", i), no)
			return repo.Create(txCtx, &model.SalesOrder{OrderNo: no, TrackingKey: uuid.NewString(), ProposalID: uuid.New(), Status: model.SalesOrderStatusOpen})
		}))
	}

	require.NoError(t, tx.RunInTx(ctx, func(txCtx context.Context) error {
		no, err := repo.NextOrderNo(txCtx, day.AddDate(0, 0, 1))
		assert.Equal(t, "SO-20261016-00001", no)
		return err
	}))
}

func TestTransactionManager_RollsBackNestedWork(t *testing.T) {
	db := openTestDB(t)
	repo := NewProposalRepository(db)
	tx := NewTransactionManager(db)
	ctx := context.Background()

	err := tx.RunInTx(ctx, func(txCtx context.Context) error {
		p := &model.Proposal{SequenceNo: 1, Status: model.ProposalStatusDraft, SellerID: uuid.New(), Version: 1}
		if err := repo.Create(txCtx, p); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	var count int64
	require.NoError(t, db.Model(&model.Proposal{}).Count(&count).Error)
	assert.Zero(t, count)
}
