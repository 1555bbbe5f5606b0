package readstore

import (
	"context"

	"booking-engine/internal/infra"
	"booking-engine/internal/infra/repository"
	"booking-engine/internal/pkg/pgconv"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const selectIdempotencyKey = `
SELECT key, user_id, endpoint, status, request_hash, result_reservation_id, expires_at
FROM idempotency_keys
WHERE key = $1 AND user_id = $2`

type IdempotencyReadStore struct {
	db repository.DBTX
}

func NewIdempotencyReadStore(db repository.DBTX) *IdempotencyReadStore {
	return &IdempotencyReadStore{db: db}
}

func (r *IdempotencyReadStore) Get(ctx context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	var (
		rec       shared.IdempotencyRecord
		status    string
		resultID  pgtype.UUID
		expiresAt pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, selectIdempotencyKey, key, userID).
		Scan(&rec.Key, &rec.UserID, &rec.Endpoint, &status, &rec.RequestHash, &resultID, &expiresAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}

	rec.Status = shared.IdempotencyStatus(status)
	rec.ResultReservationID = pgconv.UUIDPtrFromPgtype(resultID)
	rec.ExpiresAt = expiresAt.Time
	return &rec, nil
}
