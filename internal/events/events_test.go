package events

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, ProposalEvent) error {
	f.calls++
	return errors.New("broker down")
}

func TestFanout_DeliversToEveryPublisher(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	broken := &failingPublisher{}

	var failed []Type
	f := NewFanout(zerolog.Nop(), a, nil, broken, b)
	f.OnFailure(func(t Type) { failed = append(failed, t) })

	err := f.Publish(context.Background(), ProposalEvent{Type: ProposalSubmitted, ProposalID: "p-1"})
	assert.NoError(t, err)

	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, []Type{ProposalSubmitted}, failed)
}

func TestRecorder_EventsIsACopy(t *testing.T) {
	r := &Recorder{}
	_ = r.Publish(context.Background(), ProposalEvent{Type: ProposalApproved})

	got := r.Events()
	got[0].Type = ProposalRejected

	assert.Equal(t, ProposalApproved, r.Events()[0].Type)
	assert.NoError(t, Nop{}.Publish(context.Background(), ProposalEvent{}))
}
