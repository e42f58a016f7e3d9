// Package events carries proposal lifecycle notifications to whoever listens after a
// transition has been committed.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Type names the kind of lifecycle change.
type Type string

const (
	ProposalSubmitted    Type = "proposal_submitted"
	ProposalTierApproved Type = "proposal_tier_approved"
	ProposalApproved     Type = "proposal_approved"
	ProposalRejected     Type = "proposal_rejected"
	ProposalCancelled    Type = "proposal_cancelled"
	ProposalConverted    Type = "proposal_converted"
)

// ProposalEvent is the payload published for every committed lifecycle change.
type ProposalEvent struct {
	Type         Type      `json:"type"`
	ProposalID   string    `json:"proposal_id"`
	SequenceNo   int64     `json:"sequence_no"`
	OldStatus    string    `json:"old_status"`
	NewStatus    string    `json:"new_status"`
	ActorID      string    `json:"actor_id"`
	TierLevel    int       `json:"tier_level,omitempty"`
	PendingTiers []int     `json:"pending_tiers,omitempty"`
	SalesOrderID string    `json:"sales_order_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher delivers events. Implementations must not block on slow consumers.
type Publisher interface {
	Publish(ctx context.Context, event ProposalEvent) error
}

// Fanout publishes to every configured publisher. Failures are logged and never
// returned: a committed transition stays committed whether or not anyone heard about it.
type Fanout struct {
	publishers []Publisher
	log        zerolog.Logger
	onFailure  func(Type)
}

func NewFanout(log zerolog.Logger, publishers ...Publisher) *Fanout {
	active := make([]Publisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			active = append(active, p)
		}
	}
	return &Fanout{publishers: active, log: log}
}

// OnFailure registers a hook called once per failed delivery.
func (f *Fanout) OnFailure(fn func(Type)) {
	f.onFailure = fn
}

func (f *Fanout) Publish(ctx context.Context, event ProposalEvent) error {
	for _, p := range f.publishers {
		if err := p.Publish(ctx, event); err != nil {
			f.log.Warn().Err(err).
				Str("event_type", string(event.Type)).
				Str("proposal_id", event.ProposalID).
				Msg("event publish failed (non-fatal)")
			if f.onFailure != nil {
				f.onFailure(event.Type)
			}
		}
	}
	return nil
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, ProposalEvent) error { return nil }

// Recorder keeps published events in memory; handy in tests.
type Recorder struct {
	mu     sync.Mutex
	events []ProposalEvent
}

func (r *Recorder) Publish(_ context.Context, event ProposalEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []ProposalEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ProposalEvent, len(r.events))
	copy(out, r.events)
	return out
}
