package repository

import (
	"context"
	"time"

	"booking-engine/internal/infra"
	"booking-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
)

const tryInsertIdempotencyKey = `
INSERT INTO idempotency_keys (key, user_id, endpoint, status, request_hash, expires_at)
VALUES ($1, $2, $3, 'processing', $4, $5)
ON CONFLICT (key, user_id) DO NOTHING`

const claimExpiredIdempotencyKey = `
UPDATE idempotency_keys
SET status = 'processing', request_hash = $3, result_reservation_id = NULL, expires_at = $4
WHERE key = $1 AND user_id = $2 AND expires_at <= $5`

const completeIdempotencyKey = `
UPDATE idempotency_keys
SET status = 'completed', result_reservation_id = $3
WHERE key = $1 AND user_id = $2`

const deleteIdempotencyKey = `
DELETE FROM idempotency_keys WHERE key = $1 AND user_id = $2`

type IdempotencyRepository struct {
	db DBTX
}

func NewIdempotencyRepository(db DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

func (r *IdempotencyRepository) TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, tryInsertIdempotencyKey, key, userID, endpoint, requestHash, pgconv.TimeToPgtype(expiresAt))
	if err != nil {
		return false, infra.WrapRepoErr("failed to try insert idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) ClaimExpired(ctx context.Context, key, userID uuid.UUID, requestHash string, expiresAt, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, claimExpiredIdempotencyKey, key, userID, requestHash,
		pgconv.TimeToPgtype(expiresAt), pgconv.TimeToPgtype(now))
	if err != nil {
		return false, infra.WrapRepoErr("failed to claim expired idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) Complete(ctx context.Context, key, userID, reservationID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, completeIdempotencyKey, key, userID, reservationID)
	if err != nil {
		return infra.WrapRepoErr("failed to update idempotency key status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *IdempotencyRepository) Release(ctx context.Context, key, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, deleteIdempotencyKey, key, userID); err != nil {
		return infra.WrapRepoErr("failed to release idempotency key", err)
	}
	return nil
}
