package readstore

import (
	"context"

	"booking-engine/internal/domain/promotion"
	"booking-engine/internal/infra"
	"booking-engine/internal/infra/repository"
	"booking-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Codes are stored as entered; lookups compare upper-cased.
const selectPromotionByCode = `
SELECT id, business_id, code, status, discount_type, value, max_discount, valid_from, valid_to,
       min_purchase, service_ids, usage_limit, per_user_limit, usage_count
FROM promotions
WHERE business_id = $1 AND upper(code) = $2`

const countPromotionUsageByUser = `
SELECT count(*) FROM promotion_usages WHERE promotion_id = $1 AND user_id = $2`

type PromotionReadStore struct {
	db repository.DBTX
}

func NewPromotionReadStore(db repository.DBTX) *PromotionReadStore {
	return &PromotionReadStore{db: db}
}

func (r *PromotionReadStore) FindByCode(ctx context.Context, businessID uuid.UUID, code string) (*promotion.Promotion, error) {
	var (
		p                        promotion.Params
		status, discountType     string
		maxDiscount, minPurchase pgtype.Int8
		validFrom, validTo       pgtype.Timestamptz
		serviceIDs               []pgtype.UUID
		usageLimit, perUserLimit pgtype.Int4
	)
	err := r.db.QueryRow(ctx, selectPromotionByCode, businessID, code).Scan(
		&p.ID, &p.BusinessID, &p.Code, &status, &discountType, &p.Value, &maxDiscount,
		&validFrom, &validTo, &minPurchase, &serviceIDs, &usageLimit, &perUserLimit, &p.UsageCount,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("promotion not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find promotion by code", err)
	}

	p.Status = promotion.Status(status)
	p.DiscountType = promotion.DiscountType(discountType)
	p.MaxDiscount = pgconv.Int64PtrFromPgtype(maxDiscount)
	p.MinPurchase = pgconv.Int64PtrFromPgtype(minPurchase)
	p.ValidFrom = pgconv.TimePtrFromPgtype(validFrom)
	p.ValidTo = pgconv.TimePtrFromPgtype(validTo)
	p.ServiceIDs = pgconv.UUIDsFromPgtype(serviceIDs)
	p.UsageLimit = pgconv.IntPtrFromPgtype(usageLimit)
	p.PerUserLimit = pgconv.IntPtrFromPgtype(perUserLimit)

	promo, err := promotion.NewPromotion(p)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid promotion row", err)
	}
	return promo, nil
}

func (r *PromotionReadStore) CountUsageByUser(ctx context.Context, promotionID, userID uuid.UUID) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, countPromotionUsageByUser, promotionID, userID).Scan(&n); err != nil {
		return 0, infra.WrapRepoErr("failed to count promotion usage", err)
	}
	return n, nil
}
