package repository

import (
	"context"

	"booking-engine/internal/infra"
	"booking-engine/internal/pkg/pgconv"
	"booking-engine/internal/usecase/shared"
)

const insertPromotionUsage = `
INSERT INTO promotion_usages (promotion_id, reservation_id, user_id, discount, used_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (promotion_id, reservation_id) DO NOTHING`

const incrementPromotionUsage = `
UPDATE promotions SET usage_count = usage_count + 1 WHERE id = $1`

type PromotionRepository struct {
	db DBTX
}

func NewPromotionRepository(db DBTX) *PromotionRepository {
	return &PromotionRepository{db: db}
}

func (r *PromotionRepository) RecordUsage(ctx context.Context, u shared.PromotionUsage) (bool, error) {
	tag, err := r.db.Exec(ctx, insertPromotionUsage,
		u.PromotionID,
		u.ReservationID,
		pgconv.UUIDPtrToPgtype(u.UserID),
		u.Discount,
		pgconv.TimeToPgtype(u.UsedAt),
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to record promotion usage", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := r.db.Exec(ctx, incrementPromotionUsage, u.PromotionID); err != nil {
		return false, infra.WrapRepoErr("failed to increment promotion usage", err)
	}
	return true, nil
}
