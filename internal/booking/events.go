package booking

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Samandar90/Kamilovs-CRM/pkg/config"
	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

// Event types emitted on the appointment stream.
const (
	EventAppointmentCreated = "appointment.created"
	EventAppointmentUpdated = "appointment.updated"
	EventAppointmentDeleted = "appointment.deleted"
)

// AppointmentEvent is the message published for every appointment lifecycle
// change. Consumers are external; nothing in this process reads the stream.
type AppointmentEvent struct {
	Type        string             `json:"type"`
	Appointment *types.Appointment `json:"appointment"`
	At          time.Time          `json:"at"`
}

// Publisher emits appointment lifecycle events. Publishing is best-effort:
// callers log failures but never fail the booking operation over them.
type Publisher interface {
	Publish(ctx context.Context, event AppointmentEvent) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaPublisher creates a Kafka-backed publisher and verifies the broker
// is reachable.
func NewKafkaPublisher(cfg config.KafkaConfig) (Publisher, error) {
	conn, err := kafka.Dial("tcp", cfg.Broker)
	if err != nil {
		return nil, err
	}
	conn.Close()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Broker),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}

	return &kafkaPublisher{writer: writer, topic: cfg.Topic}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, event AppointmentEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.Appointment.ID),
		Value: value,
	})
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// noopPublisher is used when no broker is configured.
type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event.
func NewNoopPublisher() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, AppointmentEvent) error { return nil }
func (noopPublisher) Close() error                                    { return nil }
