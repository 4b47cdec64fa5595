package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *captureWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func TestKafkaPublisherPublish(t *testing.T) {
	writer := &captureWriter{}
	pub := NewKafkaPublisherWithWriter(writer, nil)

	err := pub.Publish(context.Background(), TypeAppointmentBooked, AppointmentEvent{
		AppointmentID: "appt-1",
		UserID:        "user-1",
		ProviderID:    "prov-1",
		SlotDate:      "2024-06-01",
		SlotTime:      "10:00 AM",
		AmountCents:   5000,
	})
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if len(writer.msgs) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(writer.msgs))
	}
	msg := writer.msgs[0]
	if string(msg.Key) != "appt-1" {
		t.Errorf("message key = %q, want appointment id", msg.Key)
	}

	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		t.Fatalf("envelope is not JSON: %v", err)
	}
	if env.EventType != TypeAppointmentBooked {
		t.Errorf("event type = %q", env.EventType)
	}
	var payload AppointmentEvent
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload.ProviderID != "prov-1" || payload.AmountCents != 5000 {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka-1:9092, kafka-2:9092 ,,")
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Errorf("SplitBrokers = %v", got)
	}
	if SplitBrokers("") != nil {
		t.Error("SplitBrokers(\"\") should be nil")
	}
}
