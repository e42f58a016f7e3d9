package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"backoffice/internal/database"
	"backoffice/internal/events"
	"backoffice/internal/metrics"
	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbCounter int64

type testEnv struct {
	db        *gorm.DB
	recorder  *events.Recorder
	metrics   *metrics.Metrics
	txManager repository.TransactionManager

	proposalRepo   repository.ProposalRepository
	ruleRepo       repository.ApprovalRuleRepository
	decisionRepo   repository.ApprovalDecisionRepository
	historyRepo    repository.HistoryRepository
	salesOrderRepo repository.SalesOrderRepository
	auditRepo      repository.AuditRepository

	history   HistoryRecorder
	bridge    SalesOrderBridge
	approvals ApprovalService
	proposals ProposalService
	rules     ApprovalRuleService
	stats     StatisticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, atomic.AddInt64(&dbCounter, 1))
	db, err := database.OpenSQLite(dsn, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	env := &testEnv{
		db:             db,
		recorder:       &events.Recorder{},
		metrics:        metrics.New(),
		txManager:      repository.NewTransactionManager(db),
		proposalRepo:   repository.NewProposalRepository(db),
		ruleRepo:       repository.NewApprovalRuleRepository(db),
		decisionRepo:   repository.NewApprovalDecisionRepository(db),
		historyRepo:    repository.NewHistoryRepository(db),
		salesOrderRepo: repository.NewSalesOrderRepository(db),
		auditRepo:      repository.NewAuditRepository(db),
	}
	env.history = NewHistoryRecorder(env.historyRepo)
	env.bridge = NewSalesOrderBridge(env.txManager, env.salesOrderRepo, env.auditRepo)
	env.approvals = NewApprovalService(ApprovalServiceDeps{
		TxManager:    env.txManager,
		ProposalRepo: env.proposalRepo,
		RuleRepo:     env.ruleRepo,
		DecisionRepo: env.decisionRepo,
		AuditRepo:    env.auditRepo,
		History:      env.history,
		Bridge:       env.bridge,
		Publisher:    env.recorder,
		Metrics:      env.metrics,
		Logger:       zerolog.Nop(),
		LockTimeout:  5 * time.Second,
	})
	env.proposals = NewProposalService(env.txManager, env.proposalRepo, env.auditRepo)
	env.rules = NewApprovalRuleService(env.txManager, env.ruleRepo, env.auditRepo)
	env.stats = NewStatisticsService(repository.NewStatisticsRepository(db), env.salesOrderRepo)
	return env
}

// seedRules installs the standard three-level catalog: 1 >= 0, 2 >= 10, 3 >= 25.
func (e *testEnv) seedRules(t *testing.T) {
	t.Helper()
	e.addRule(t, 1, "0", true)
	e.addRule(t, 2, "10", true)
	e.addRule(t, 3, "25", true)
}

func (e *testEnv) addRule(t *testing.T, level int, minDiscount string, active bool) model.ApprovalRule {
	t.Helper()
	rule := model.ApprovalRule{
		JobLevel:    level,
		MinDiscount: decimal.RequireFromString(minDiscount),
		IsActive:    active,
	}
	require.NoError(t, e.ruleRepo.Create(context.Background(), &rule))
	return rule
}

func (e *testEnv) newProposal(t *testing.T, discount string) uuid.UUID {
	t.Helper()
	resp, err := e.proposals.CreateProposal(context.Background(), CreateProposalRequest{
		Discount:   discount,
		ValidFrom:  "2026-01-01",
		ValidUntil: "2026-03-31",
	}, uuid.New())
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func (e *testEnv) submitted(t *testing.T, discount string) uuid.UUID {
	t.Helper()
	id := e.newProposal(t, discount)
	_, err := e.approvals.Submit(context.Background(), id, uuid.New())
	require.NoError(t, err)
	return id
}

func approver(level int) Approver {
	return Approver{ID: uuid.New(), JobLevel: level}
}

func decide(tier int, who Approver, id uuid.UUID, outcome model.DecisionOutcome) DecideInput {
	return DecideInput{ProposalID: id, Approver: who, TierLevel: tier, Outcome: outcome}
}
