// Package notification publishes proposal lifecycle events to NATS for downstream
// services (mail, dealer portal, reporting).
//
// Subject convention: notifications.proposals.<event_type>
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backoffice/internal/events"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const subjectPrefix = "notifications.proposals."

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

type NATSPublisher struct {
	conn Conn
	log  zerolog.Logger
}

func NewNATSPublisher(conn Conn, log zerolog.Logger) *NATSPublisher {
	return &NATSPublisher{conn: conn, log: log}
}

// Connect dials url with reconnects enabled. An empty url disables publishing and
// returns a nil connection.
func Connect(url, name string, log zerolog.Logger) (*nats.Conn, error) {
	if url == "" {
		return nil, nil
	}
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return nc, nil
}

// Subject returns the subject an event of type t is published on.
func Subject(t events.Type) string {
	return subjectPrefix + string(t)
}

func (p *NATSPublisher) Publish(_ context.Context, event events.ProposalEvent) error {
	if p.conn == nil {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := Subject(event.Type)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}

	p.log.Debug().
		Str("subject", subject).
		Str("proposal_id", event.ProposalID).
		Msg("notification: event published")
	return nil
}
