package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/prescripto/clinic-platform/pkg/logging"
)

// Publisher emits appointment lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload AppointmentEvent) error
}

// NopPublisher discards events; the default when no broker is configured.
type NopPublisher struct{}

// Publish discards the event.
func (NopPublisher) Publish(ctx context.Context, eventType string, payload AppointmentEvent) error {
	return nil
}

// messageWriter is the slice of kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher writes envelopes to a Kafka topic keyed by appointment id,
// so all events for one appointment land on one partition in order.
type KafkaPublisher struct {
	writer messageWriter
	logger *logging.Logger
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers, topic string, logger *logging.Logger) *KafkaPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	writer := &kafka.Writer{
		Addr:     kafka.TCP(SplitBrokers(brokers)...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

// NewKafkaPublisherWithWriter allows injecting a writer for tests.
func NewKafkaPublisherWithWriter(writer messageWriter, logger *logging.Logger) *KafkaPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

var _ Publisher = (*KafkaPublisher)(nil)

// Publish writes one enveloped event.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, payload AppointmentEvent) error {
	env, err := NewEnvelope(eventType, payload)
	if err != nil {
		return fmt.Errorf("events: marshal payload: %w", err)
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("events: marshal envelope: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(payload.AppointmentID),
		Value: body,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("event publish failed", "error", err, "event_type", eventType, "appointment_id", payload.AppointmentID)
		return fmt.Errorf("events: write message: %w", err)
	}
	return nil
}

// Close releases the underlying writer when it owns one.
func (p *KafkaPublisher) Close() error {
	if closer, ok := p.writer.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// SplitBrokers parses a comma-separated broker list.
func SplitBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if trimmed := strings.TrimSpace(b); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
