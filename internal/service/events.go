package service

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATS subjects for domain events other services can subscribe to.
const (
	SubjectHomeworkAssigned   = "homework.assigned"
	SubjectSubmissionReceived = "homework.submission.received"
)

// HomeworkAssignedEvent is emitted after a fan-out completes.
type HomeworkAssignedEvent struct {
	SetID           uint      `json:"set_id"`
	GroupID         uint      `json:"group_id"`
	VariantsCreated int       `json:"variants_created"`
	AssignedAt      time.Time `json:"assigned_at"`
}

// SubmissionReceivedEvent is emitted after an answer is stored.
type SubmissionReceivedEvent struct {
	VariantItemID uint      `json:"variant_item_id"`
	StudentID     uint      `json:"student_id"`
	ReceivedAt    time.Time `json:"received_at"`
}

// EventPublisher pushes domain events to the message broker. Publishing is
// best-effort; failures are logged and never propagate to the caller.
type EventPublisher struct {
	nats   *nats.Conn
	logger zerolog.Logger
}

// NewEventPublisher builds a publisher. A nil connection yields a publisher
// that silently drops events, so callers never need a nil check.
func NewEventPublisher(conn *nats.Conn, logger zerolog.Logger) *EventPublisher {
	return &EventPublisher{
		nats:   conn,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

// Publish serializes the payload and sends it on the subject.
func (p *EventPublisher) Publish(subject string, payload interface{}) {
	if p == nil || p.nats == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to marshal event")
		return
	}

	if err := p.nats.Publish(subject, data); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
