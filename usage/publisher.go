package usage

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the NATS subject usage records are mirrored to.
const DefaultSubject = "plotdeck.usage.records"

// NATSPublisher mirrors ledger records to a NATS subject so external
// consumers can track model spend without polling the usage endpoint.
type NATSPublisher struct {
	nc      *nats.Conn
	subject string
	logger  *slog.Logger
}

// NATSPublisherOption configures a NATSPublisher.
type NATSPublisherOption func(*NATSPublisher)

// WithSubject overrides the publish subject.
func WithSubject(subject string) NATSPublisherOption {
	return func(p *NATSPublisher) {
		p.subject = subject
	}
}

// WithPublisherLogger sets the logger.
func WithPublisherLogger(logger *slog.Logger) NATSPublisherOption {
	return func(p *NATSPublisher) {
		p.logger = logger
	}
}

// NewNATSPublisher creates a publisher over an established connection.
func NewNATSPublisher(nc *nats.Conn, opts ...NATSPublisherOption) *NATSPublisher {
	p := &NATSPublisher{
		nc:      nc,
		subject: DefaultSubject,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal usage record: %w", err)
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish usage record: %w", err)
	}
	return nil
}
