package scheduling

import (
	"context"
	"log/slog"
	"time"

	"booking-engine/internal/domain/promotion"
	"booking-engine/internal/infra"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type DiscountRequest struct {
	Code       string
	BusinessID uuid.UUID
	UserID     *uuid.UUID
	Subtotal   int64
	ServiceIDs []uuid.UUID
}

type AppliedDiscount struct {
	PromotionID uuid.UUID
	Code        string
	Amount      int64
}

// EvaluateDiscount returns nil when the code does not apply. Only lookup
// failures are returned as errors. Nothing is written.
func EvaluateDiscount(ctx context.Context, reads shared.Reads, now time.Time, req DiscountRequest) (*AppliedDiscount, error) {
	code, err := promotion.NewCode(req.Code)
	if err != nil {
		slog.Debug("discount code rejected", "code", req.Code, "reason", err.Error())
		return nil, nil
	}

	promo, err := reads.PromotionByCode(ctx, req.BusinessID, code.String())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, errs.Wrap(err, "failed to load promotion")
	}

	userUsage := 0
	if promo.HasPerUserLimit() && req.UserID != nil {
		userUsage, err = reads.PromotionUsageByUser(ctx, promo.ID(), *req.UserID)
		if err != nil {
			return nil, errs.Wrap(err, "failed to count promotion usage")
		}
	}

	amount, err := promo.Evaluate(now, promotion.Usage{
		Subtotal:       req.Subtotal,
		ServiceIDs:     req.ServiceIDs,
		UserUsageCount: userUsage,
	})
	if err != nil {
		slog.Debug("discount not applicable",
			"code", code.String(),
			"business_id", req.BusinessID.String(),
			"reason", err.Error())
		return nil, nil
	}
	if amount <= 0 {
		return nil, nil
	}

	return &AppliedDiscount{PromotionID: promo.ID(), Code: code.String(), Amount: amount}, nil
}
