package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SalesOrderResponse struct {
	ID          string `json:"id"`
	OrderNo     string `json:"order_no"`
	TrackingKey string `json:"tracking_key"`
	ProposalID  string `json:"proposal_id"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// SalesOrderBridge turns a fully approved proposal into its downstream sales order.
type SalesOrderBridge interface {
	OnApproved(ctx context.Context, proposal *model.Proposal) (*model.SalesOrder, error)
	Confirm(ctx context.Context, proposal *model.Proposal, actorID uuid.UUID) (*model.SalesOrder, error)
}

type salesOrderBridge struct {
	txManager      repository.TransactionManager
	salesOrderRepo repository.SalesOrderRepository
	auditRepo      repository.AuditRepository
	now            func() time.Time
}

func NewSalesOrderBridge(
	txManager repository.TransactionManager,
	salesOrderRepo repository.SalesOrderRepository,
	auditRepo repository.AuditRepository,
) SalesOrderBridge {
	return &salesOrderBridge{
		txManager:      txManager,
		salesOrderRepo: salesOrderRepo,
		auditRepo:      auditRepo,
		now:            time.Now,
	}
}

// OnApproved returns the proposal's existing order when there is one, so a retried
// approval never produces a second order. The proposal's SalesOrderID is set in memory;
// persisting it is the caller's status write.
func (b *salesOrderBridge) OnApproved(ctx context.Context, proposal *model.Proposal) (*model.SalesOrder, error) {
	var order *model.SalesOrder

	err := b.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := b.salesOrderRepo.FindByProposalID(txCtx, proposal.ID)
		if err == nil {
			order = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up sales order: %w", err)
		}

		orderNo, err := b.salesOrderRepo.NextOrderNo(txCtx, b.now())
		if err != nil {
			return fmt.Errorf("failed to generate order number: %w", err)
		}

		created := model.SalesOrder{
			OrderNo:     orderNo,
			TrackingKey: uuid.NewString(),
			ProposalID:  proposal.ID,
			Status:      model.SalesOrderStatusOpen,
		}
		if err := b.salesOrderRepo.Create(txCtx, &created); err != nil {
			return translateRepoErr(err, "sales order")
		}
		order = &created
		return nil
	})
	if err != nil {
		return nil, err
	}

	proposal.SalesOrderID = &order.ID
	return order, nil
}

// Confirm moves the proposal's order from OPEN to CONFIRMED when the proposal is converted.
func (b *salesOrderBridge) Confirm(ctx context.Context, proposal *model.Proposal, actorID uuid.UUID) (*model.SalesOrder, error) {
	var order *model.SalesOrder

	err := b.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := b.salesOrderRepo.FindByProposalID(txCtx, proposal.ID)
		if err != nil {
			return translateRepoErr(err, "sales order")
		}
		if found.Status != model.SalesOrderStatusOpen {
			return fmt.Errorf("%w: sales order %s is %s", ErrInvalidState, found.OrderNo, found.Status)
		}

		if err := b.salesOrderRepo.UpdateStatus(txCtx, found.ID, model.SalesOrderStatusConfirmed); err != nil {
			return fmt.Errorf("failed to confirm sales order: %w", err)
		}
		found.Status = model.SalesOrderStatusConfirmed

		err = writeAudit(txCtx, b.auditRepo, model.AuditLog{
			UserID:     &actorID,
			Action:     model.ActionConfirmSalesOrder,
			EntityID:   found.ID.String(),
			EntityName: found.OrderNo,
			Details:    auditDetails(map[string]interface{}{"proposal_id": proposal.ID.String()}),
		})
		if err != nil {
			return err
		}

		order = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func ToSalesOrderResponse(o *model.SalesOrder) *SalesOrderResponse {
	if o == nil {
		return nil
	}
	return &SalesOrderResponse{
		ID:          o.ID.String(),
		OrderNo:     o.OrderNo,
		TrackingKey: o.TrackingKey,
		ProposalID:  o.ProposalID.String(),
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}
}
