package history

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"faultline/internal/domain"
)

// streamPayload is the JSON shape published to the change-event topic. Field
// names are part of the consumer contract.
type streamPayload struct {
	EventID    string `json:"event_id"`
	ProjectID  string `json:"project_id"`
	IssueID    string `json:"issue_id"`
	Field      string `json:"field"`
	OldValue   string `json:"old_value,omitempty"`
	NewValue   string `json:"new_value,omitempty"`
	ActorID    string `json:"actor_id"`
	OccurredAt string `json:"occurred_at"`
}

// KafkaPublisher streams change events to a Kafka topic, keyed by issue id so
// one issue's events stay ordered within a partition. Delivery is best-effort:
// produce errors are logged and dropped, the history table remains the record
// of truth.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	log    *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, err
	}
	return &KafkaPublisher{client: client, topic: topic, log: log}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event domain.ChangeEvent) {
	payload, err := json.Marshal(streamPayload{
		EventID:    event.ID.String(),
		ProjectID:  event.ProjectID.String(),
		IssueID:    event.IssueID.String(),
		Field:      event.Field,
		OldValue:   event.OldValue,
		NewValue:   event.NewValue,
		ActorID:    event.ActorID.String(),
		OccurredAt: event.OccurredAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		p.log.ErrorContext(ctx, "marshal change event", "error", err)
		return
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.IssueID.String()),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.log.WarnContext(ctx, "change event publish failed",
				"issue_id", event.IssueID.String(),
				"field", event.Field,
				"error", err,
			)
		}
	})
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}
