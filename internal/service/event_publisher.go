package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Queue event types consumed by waiting-room displays
const (
	EventPatientCheckedIn = "queue.checked_in"
	EventPatientCalled    = "queue.called"
	EventPatientSkipped   = "queue.skipped"
	EventPatientRejoined  = "queue.rejoined"
	EventPatientCompleted = "queue.completed"
	EventPatientNoShow    = "queue.no_show"
	EventConsultExtended  = "queue.extended"
	EventSessionStarted   = "session.started"
	EventSessionEnded     = "session.ended"
	EventDoctorStatus     = "doctor.status_changed"
)

type QueueEvent struct {
	Type        string     `json:"type"`
	ClinicID    uuid.UUID  `json:"clinic_id"`
	DoctorID    uuid.UUID  `json:"doctor_id"`
	EntryID     *uuid.UUID `json:"entry_id,omitempty"`
	SessionName string     `json:"session_name,omitempty"`
	TokenNumber int        `json:"token_number,omitempty"`
	Status      string     `json:"status,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event QueueEvent) error
	Close() error
}

// messageWriter is the part of *kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	log    *logrus.Logger
}

// NewEventPublisher falls back to a no-op publisher when writer is nil
func NewEventPublisher(writer *kafka.Writer, log *logrus.Logger) EventPublisher {
	if writer == nil {
		return noopPublisher{}
	}
	return &kafkaPublisher{writer: writer, log: log}
}

// Publish keys messages by clinic so one clinic's events stay ordered
func (p *kafkaPublisher) Publish(ctx context.Context, event QueueEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode queue event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.ClinicID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warnf("Failed to publish %s event for clinic %s: %+v", event.Type, event.ClinicID, err)
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, QueueEvent) error { return nil }
func (noopPublisher) Close() error                              { return nil }
