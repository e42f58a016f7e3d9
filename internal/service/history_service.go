package service

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
)

// HistoryInput describes one status transition to record.
type HistoryInput struct {
	ProposalID   uuid.UUID
	OldStatus    model.ProposalStatus
	NewStatus    model.ProposalStatus
	Event        model.ProposalEvent
	ActorID      uuid.UUID
	SalesOrderID *uuid.UUID
	Comment      string
	At           time.Time
}

type HistoryEntryResponse struct {
	ID           string  `json:"id"`
	Seq          int     `json:"seq"`
	OldStatus    string  `json:"old_status"`
	NewStatus    string  `json:"new_status"`
	Event        string  `json:"event"`
	ActorID      string  `json:"actor_id"`
	SalesOrderID *string `json:"sales_order_id"`
	Comment      string  `json:"comment"`
	CreatedAt    string  `json:"created_at"`
}

// HistoryRecorder keeps the append-only status trail of proposals.
type HistoryRecorder interface {
	Append(ctx context.Context, in HistoryInput) (uuid.UUID, error)
	ReadHistory(ctx context.Context, proposalID uuid.UUID) ([]model.ProposalHistory, error)
}

type historyRecorder struct {
	historyRepo repository.HistoryRepository
}

func NewHistoryRecorder(historyRepo repository.HistoryRepository) HistoryRecorder {
	return &historyRecorder{historyRepo: historyRepo}
}

// Append refuses entries that would break the chain: the first entry must leave the
// initial status, every later one must leave the status the previous one entered,
// and the event must be a legal move between the two.
func (h *historyRecorder) Append(ctx context.Context, in HistoryInput) (uuid.UUID, error) {
	next, ok := model.NextStatus(in.OldStatus, in.Event)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %s is not allowed from %s", ErrInvalidState, in.Event, in.OldStatus)
	}
	if next != in.NewStatus {
		return uuid.Nil, fmt.Errorf("%w: %s from %s leads to %s, not %s", ErrInvalidState, in.Event, in.OldStatus, next, in.NewStatus)
	}

	last, found, err := h.historyRepo.Last(ctx, in.ProposalID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to read history tail: %w", err)
	}

	seq := 1
	expected := model.InitialProposalStatus
	if found {
		seq = last.Seq + 1
		expected = last.NewStatus
	}
	if in.OldStatus != expected {
		return uuid.Nil, fmt.Errorf("%w: history expects old status %s, got %s", ErrInvalidState, expected, in.OldStatus)
	}

	at := in.At
	if at.IsZero() {
		at = time.Now()
	}

	entry := model.ProposalHistory{
		ProposalID:   in.ProposalID,
		Seq:          seq,
		OldStatus:    in.OldStatus,
		NewStatus:    in.NewStatus,
		Event:        in.Event,
		ActorID:      in.ActorID,
		SalesOrderID: in.SalesOrderID,
		Comment:      in.Comment,
		CreatedAt:    at,
	}
	if err := h.historyRepo.Append(ctx, &entry); err != nil {
		return uuid.Nil, translateRepoErr(err, "proposal history")
	}

	return entry.ID, nil
}

func (h *historyRecorder) ReadHistory(ctx context.Context, proposalID uuid.UUID) ([]model.ProposalHistory, error) {
	entries, err := h.historyRepo.ListByProposal(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to read proposal history: %w", err)
	}
	return entries, nil
}

func ToHistoryResponse(e model.ProposalHistory) HistoryEntryResponse {
	resp := HistoryEntryResponse{
		ID:        e.ID.String(),
		Seq:       e.Seq,
		OldStatus: string(e.OldStatus),
		NewStatus: string(e.NewStatus),
		Event:     string(e.Event),
		ActorID:   e.ActorID.String(),
		Comment:   e.Comment,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
	if e.SalesOrderID != nil {
		s := e.SalesOrderID.String()
		resp.SalesOrderID = &s
	}
	return resp
}
