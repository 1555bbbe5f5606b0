package repository

import (
	"context"
	"time"

	"booking-engine/internal/infra"
	"booking-engine/internal/pkg/pgconv"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertOutboxEvent = `
INSERT INTO outbox_events (id, aggregate_type, aggregate_id, event_type, payload, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6)`

// SKIP LOCKED lets several relays drain the table without double-publishing.
const selectUnpublishedEvents = `
SELECT id, aggregate_type, aggregate_id, event_type, payload, occurred_at
FROM outbox_events
WHERE published_at IS NULL
ORDER BY occurred_at, id
LIMIT $1
FOR UPDATE SKIP LOCKED`

const markEventsPublished = `
UPDATE outbox_events SET published_at = $2 WHERE id = ANY($1)`

type OutboxRepository struct {
	db DBTX
}

func NewOutboxRepository(db DBTX) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) Append(ctx context.Context, e shared.Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, insertOutboxEvent,
		e.ID,
		e.AggregateType,
		e.AggregateID,
		e.EventType,
		e.Payload,
		pgconv.TimeToPgtype(e.OccurredAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to append outbox event", err)
	}
	return nil
}

func (r *OutboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]shared.Event, error) {
	rows, err := r.db.Query(ctx, selectUnpublishedEvents, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to fetch outbox events", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (shared.Event, error) {
		var (
			e          shared.Event
			occurredAt pgtype.Timestamptz
		)
		err := row.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Payload, &occurredAt)
		e.OccurredAt = occurredAt.Time
		return e, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan outbox events", err)
	}
	return events, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.Exec(ctx, markEventsPublished, pgconv.UUIDsToPgtype(ids), pgconv.TimeToPgtype(at)); err != nil {
		return infra.WrapRepoErr("failed to mark outbox events published", err)
	}
	return nil
}
