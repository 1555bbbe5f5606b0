// Package events publishes outbox rows to Kafka.
package events

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"booking-engine/internal/pkg/clock"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type OutboxStore interface {
	WithinOutbox(ctx context.Context, fn func(ctx context.Context, feed shared.OutboxFeed) error) error
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Relay drains the outbox in batches. Each batch is published and marked
// inside one transaction, so a failed write leaves the rows for the next
// tick. Delivery is at-least-once.
type Relay struct {
	store     OutboxStore
	writer    MessageWriter
	clock     clock.Clock
	pollEvery time.Duration
	batchSize int
}

func NewRelay(store OutboxStore, writer MessageWriter, clk clock.Clock, cfg config.KafkaConfig) *Relay {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Relay{
		store:     store,
		writer:    writer,
		clock:     clk,
		pollEvery: cfg.PollEvery,
		batchSize: cfg.BatchSize,
	}
}

func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.pollEvery)
	defer ticker.Stop()

	slog.Info("outbox relay started", "poll_every", r.pollEvery.String(), "batch_size", r.batchSize)
	for {
		select {
		case <-ctx.Done():
			slog.Info("outbox relay stopped")
			return
		case <-ticker.C:
			n, err := r.PublishBatch(ctx)
			if err != nil {
				slog.Error("outbox publish failed", "error", err.Error())
				continue
			}
			if n > 0 {
				slog.Debug("outbox events published", "count", n)
			}
		}
	}
}

// PublishBatch publishes up to one batch and reports how many events went out.
func (r *Relay) PublishBatch(ctx context.Context) (int, error) {
	published := 0
	err := r.store.WithinOutbox(ctx, func(ctx context.Context, feed shared.OutboxFeed) error {
		events, err := feed.FetchUnpublished(ctx, r.batchSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		msgs := make([]kafka.Message, len(events))
		ids := make([]uuid.UUID, len(events))
		for i, e := range events {
			msgs[i] = ToMessage(e)
			ids[i] = e.ID
		}
		if err := r.writer.WriteMessages(ctx, msgs...); err != nil {
			return errs.Wrap(err, "kafka write")
		}
		if err := feed.MarkPublished(ctx, ids, r.clock.Now()); err != nil {
			return err
		}
		published = len(events)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return published, nil
}

// ToMessage keys by aggregate so events of one reservation stay ordered
// within a partition.
func ToMessage(e shared.Event) kafka.Message {
	return kafka.Message{
		Topic: e.EventType,
		Key:   []byte(e.AggregateID.String()),
		Value: e.Payload,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(e.ID.String())},
			{Key: "event_type", Value: []byte(e.EventType)},
			{Key: "aggregate_type", Value: []byte(e.AggregateType)},
		},
	}
}

func SplitBrokers(raw string) []string {
	var out []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// LogWriter stands in for Kafka when no brokers are configured.
type LogWriter struct{}

func (LogWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		slog.Info("event (not published: kafka disabled)", "topic", m.Topic, "key", string(m.Key))
	}
	return nil
}

// NewMessageWriter returns a Kafka writer when brokers are configured and a
// close func for shutdown.
func NewMessageWriter(cfg config.KafkaConfig) (MessageWriter, func() error) {
	brokers := SplitBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		slog.Warn("kafka brokers not configured, outbox events are logged only")
		return LogWriter{}, func() error { return nil }
	}
	w := NewWriter(brokers)
	return w, w.Close
}
