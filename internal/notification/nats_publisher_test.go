package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"backoffice/internal/events"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = data
	return f.err
}

func TestNATSPublisher_Publish(t *testing.T) {
	conn := &fakeConn{}
	p := NewNATSPublisher(conn, zerolog.Nop())

	event := events.ProposalEvent{
		Type:       events.ProposalApproved,
		ProposalID: "0b6c5f59-8a0a-4c53-9a53-6b7c2b2b8f11",
		NewStatus:  "APPROVED",
	}
	require.NoError(t, p.Publish(context.Background(), event))

	assert.Equal(t, "notifications.proposals.proposal_approved", conn.subject)

	var decoded events.ProposalEvent
	require.NoError(t, json.Unmarshal(conn.data, &decoded))
	assert.Equal(t, event.ProposalID, decoded.ProposalID)
	assert.Equal(t, "APPROVED", decoded.NewStatus)
}

func TestNATSPublisher_Errors(t *testing.T) {
	conn := &fakeConn{err: errors.New("nats: connection closed")}
	p := NewNATSPublisher(conn, zerolog.Nop())

	err := p.Publish(context.Background(), events.ProposalEvent{Type: events.ProposalCancelled})
	assert.ErrorIs(t, err, conn.err)

	assert.NoError(t, NewNATSPublisher(nil, zerolog.Nop()).Publish(context.Background(), events.ProposalEvent{}))
}

func TestConnect_EmptyURLDisables(t *testing.T) {
	nc, err := Connect("", "test", zerolog.Nop())
	assert.NoError(t, err)
	assert.Nil(t, nc)
}
