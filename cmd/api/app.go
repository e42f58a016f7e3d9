package main

import (
	"context"
	"errors"
	"net/http"

	"backoffice/internal/config"
	"backoffice/internal/database"
	"backoffice/internal/events"
	"backoffice/internal/handler"
	"backoffice/internal/logger"
	"backoffice/internal/metrics"
	"backoffice/internal/middleware"
	"backoffice/internal/notification"
	"backoffice/internal/repository"
	"backoffice/internal/service"
	"backoffice/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// app holds every wired component. Dependencies are passed explicitly
// (Repository -> Service -> Handler).
type app struct {
	cfg     config.Config
	log     zerolog.Logger
	db      *gorm.DB
	nc      *nats.Conn
	metrics *metrics.Metrics
	hub     *websocket.Hub
	auth    *middleware.Auth

	proposalService   service.ProposalService
	approvalService   service.ApprovalService
	ruleService       service.ApprovalRuleService
	auditService      service.AuditService
	statisticsService service.StatisticsService
}

func newApp(envFile string) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:       cfg.Service.LogLevel,
		Environment: cfg.Service.Environment,
		ServiceName: cfg.Service.Name,
		Version:     cfg.Service.Version,
	})

	db, err := database.NewConnection(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("database connection established")

	nc, err := notification.Connect(cfg.NATS.URL, cfg.Service.Name, log)
	if err != nil {
		// Notifications are best-effort; run without them.
		log.Warn().Err(err).Msg("continuing without NATS notifications")
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		db:      db,
		nc:      nc,
		metrics: metrics.New(),
		hub:     websocket.NewHub(log),
		auth:    middleware.NewAuth([]byte(cfg.Auth.JWTSecret)),
	}
	a.wire()
	return a, nil
}

func (a *app) wire() {
	txManager := repository.NewTransactionManager(a.db)
	proposalRepo := repository.NewProposalRepository(a.db)
	ruleRepo := repository.NewApprovalRuleRepository(a.db)
	decisionRepo := repository.NewApprovalDecisionRepository(a.db)
	historyRepo := repository.NewHistoryRepository(a.db)
	salesOrderRepo := repository.NewSalesOrderRepository(a.db)
	auditRepo := repository.NewAuditRepository(a.db)
	statsRepo := repository.NewStatisticsRepository(a.db)

	publishers := []events.Publisher{a.hub}
	if a.nc != nil {
		publishers = append(publishers, notification.NewNATSPublisher(a.nc, a.log))
	}
	fanout := events.NewFanout(a.log, publishers...)
	fanout.OnFailure(func(t events.Type) { a.metrics.PublishFailure(string(t)) })

	a.proposalService = service.NewProposalService(txManager, proposalRepo, auditRepo)
	a.ruleService = service.NewApprovalRuleService(txManager, ruleRepo, auditRepo)
	a.auditService = service.NewAuditService(auditRepo)
	a.statisticsService = service.NewStatisticsService(statsRepo, salesOrderRepo)
	a.approvalService = service.NewApprovalService(service.ApprovalServiceDeps{
		TxManager:    txManager,
		ProposalRepo: proposalRepo,
		RuleRepo:     ruleRepo,
		DecisionRepo: decisionRepo,
		AuditRepo:    auditRepo,
		History:      service.NewHistoryRecorder(historyRepo),
		Bridge:       service.NewSalesOrderBridge(txManager, salesOrderRepo, auditRepo),
		Publisher:    fanout,
		Metrics:      a.metrics,
		Logger:       a.log,
		LockTimeout:  a.cfg.Server.LockTimeout,
	})
}

func (a *app) router() *gin.Engine {
	if a.cfg.Service.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return handler.NewRouter(handler.RouterConfig{
		Logger:      a.log,
		Metrics:     a.metrics,
		Auth:        a.auth,
		Hub:         a.hub,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		Handlers: []handler.Registrar{
			handler.NewProposalHandler(a.proposalService, a.approvalService, a.auth),
			handler.NewApprovalRuleHandler(a.ruleService, a.auth),
			handler.NewAuditHandler(a.auditService, a.auth),
			handler.NewStatisticsHandler(a.statisticsService, a.auth),
		},
	})
}

// Serve runs the API until ctx is cancelled, then drains in-flight requests.
func (a *app) Serve(ctx context.Context) error {
	go a.hub.Run(ctx)

	srv := &http.Server{
		Addr:    ":" + a.cfg.Server.Port,
		Handler: a.router(),
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.log.Info().Msg("shutting down")
		return shutdown(srv)
	}
}

func (a *app) Close() {
	if a.nc != nil {
		if err := a.nc.Drain(); err != nil {
			a.log.Warn().Err(err).Msg("failed to drain nats connection")
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
