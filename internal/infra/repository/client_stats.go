package repository

import (
	"context"

	"booking-engine/internal/infra"
	"booking-engine/internal/pkg/pgconv"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

// last_visit only moves forward.
const upsertRelationship = `
INSERT INTO client_business_relationships (business_id, client_id, total_bookings, total_spent, cancellations, last_visit)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (business_id, client_id) DO UPDATE SET
    total_bookings = client_business_relationships.total_bookings + EXCLUDED.total_bookings,
    total_spent = client_business_relationships.total_spent + EXCLUDED.total_spent,
    cancellations = client_business_relationships.cancellations + EXCLUDED.cancellations,
    last_visit = GREATEST(client_business_relationships.last_visit, EXCLUDED.last_visit)`

const upsertLifetime = `
INSERT INTO client_stats (client_id, total_bookings, total_spent, cancellations)
VALUES ($1, $2, $3, $4)
ON CONFLICT (client_id) DO UPDATE SET
    total_bookings = client_stats.total_bookings + EXCLUDED.total_bookings,
    total_spent = client_stats.total_spent + EXCLUDED.total_spent,
    cancellations = client_stats.cancellations + EXCLUDED.cancellations`

const claimStats = `
INSERT INTO client_stats_applied (reservation_id, event)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`

type ClientStatsRepository struct {
	db DBTX
}

func NewClientStatsRepository(db DBTX) *ClientStatsRepository {
	return &ClientStatsRepository{db: db}
}

func (r *ClientStatsRepository) UpsertRelationship(ctx context.Context, businessID, clientID uuid.UUID, d shared.StatsDelta) error {
	_, err := r.db.Exec(ctx, upsertRelationship,
		businessID,
		clientID,
		d.Bookings,
		d.Spent,
		d.Cancellations,
		pgconv.TimePtrToPgtype(d.LastVisit),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to upsert client relationship", err)
	}
	return nil
}

func (r *ClientStatsRepository) IncrementLifetime(ctx context.Context, clientID uuid.UUID, d shared.StatsDelta) error {
	_, err := r.db.Exec(ctx, upsertLifetime, clientID, d.Bookings, d.Spent, d.Cancellations)
	if err != nil {
		return infra.WrapRepoErr("failed to update client stats", err)
	}
	return nil
}

func (r *ClientStatsRepository) Claim(ctx context.Context, reservationID uuid.UUID, event shared.StatsEvent) (bool, error) {
	tag, err := r.db.Exec(ctx, claimStats, reservationID, string(event))
	if err != nil {
		return false, infra.WrapRepoErr("failed to claim client stats event", err)
	}
	return tag.RowsAffected() == 1, nil
}
