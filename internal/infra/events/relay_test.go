//go:build unit

package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"booking-engine/internal/infra/events"
	"booking-engine/internal/infra/memstore"
	"booking-engine/internal/pkg/clock"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func seedEvents(t *testing.T, store *memstore.Store, n int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, n)
	err := store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		for i := range ids {
			ids[i] = uuid.New()
			if err := tx.Outbox().Append(ctx, shared.Event{
				ID:            ids[i],
				AggregateType: "reservation",
				AggregateID:   uuid.New(),
				EventType:     shared.EventReservationCreated,
				Payload:       []byte(`{"n":1}`),
				OccurredAt:    time.Date(2026, 3, 1, 9, 0, i, 0, time.UTC),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return ids
}

func TestRelay_PublishBatch(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	t.Run("publishes in order and marks rows", func(t *testing.T) {
		store := memstore.New()
		ids := seedEvents(t, store, 3)
		w := &fakeWriter{}
		relay := events.NewRelay(store, w, clk, config.KafkaConfig{BatchSize: 2})

		n, err := relay.PublishBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		require.Len(t, w.msgs, 2)
		assert.Equal(t, shared.EventReservationCreated, w.msgs[0].Topic)
		assert.True(t, store.Published(ids[0]))
		assert.True(t, store.Published(ids[1]))
		assert.False(t, store.Published(ids[2]))

		n, err = relay.PublishBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.True(t, store.Published(ids[2]))

		n, err = relay.PublishBatch(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("write failure leaves rows unpublished", func(t *testing.T) {
		store := memstore.New()
		ids := seedEvents(t, store, 1)
		relay := events.NewRelay(store, &fakeWriter{err: errors.New("broker down")}, clk, config.KafkaConfig{})

		_, err := relay.PublishBatch(ctx)
		require.Error(t, err)
		assert.False(t, store.Published(ids[0]))
	})
}

func TestToMessage(t *testing.T) {
	e := shared.Event{
		ID:            uuid.New(),
		AggregateType: "reservation",
		AggregateID:   uuid.New(),
		EventType:     shared.EventReservationCancelled,
		Payload:       []byte(`{}`),
	}

	msg := events.ToMessage(e)

	assert.Equal(t, e.EventType, msg.Topic)
	assert.Equal(t, e.AggregateID.String(), string(msg.Key))
	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, e.ID.String(), headers["event_id"])
	assert.Equal(t, "reservation", headers["aggregate_type"])
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, events.SplitBrokers(" a:9092, ,b:9092 "))
	assert.Nil(t, events.SplitBrokers(""))
}
