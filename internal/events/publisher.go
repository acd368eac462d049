// Package events announces changes to spent records.
package events

import (
	"context"       // Publish context
	"encoding/json" // Payload encoding
	"fmt"           // Error wrapping
	"time"          // Connection timeouts

	"github.com/nats-io/nats.go" // NATS client
	"github.com/sirupsen/logrus" // Logging library
)

// Subjects published on successful writes
const (
	SubjectCreated = "spent.created"
	SubjectUpdated = "spent.updated"
	SubjectDeleted = "spent.deleted"
	SubjectCopied  = "spent.copied"
)

// Publisher sends a change notification
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// Nop discards every event
type Nop struct{}

// Publish implements Publisher
func (Nop) Publish(context.Context, string, any) error { return nil }

// NATSPublisher publishes JSON payloads on a NATS connection
type NATSPublisher struct {
	nc *nats.Conn
}

// Connect dials the NATS server at url
func Connect(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("spent-api"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logrus.WithError(err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logrus.WithField("url", c.ConnectedUrl()).Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSPublisher{nc: nc}, nil
}

// Publish implements Publisher
func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	if err := p.nc.Publish(subject, b); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close drains pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}

// Emit publishes and logs failures; events never fail the caller
func Emit(ctx context.Context, p Publisher, subject string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, subject, payload); err != nil {
		logrus.WithFields(logrus.Fields{
			"subject": subject,
			"error":   err.Error(),
		}).Warn("Failed to publish event")
	}
}
