package scheduling

import (
	"context"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/catalog"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

// PriceInput is shared by the price preview and booking creation so both
// produce the same numbers.
type PriceInput struct {
	Business *catalog.Business
	Services []catalog.Service
	Code     string
	UserID   *uuid.UUID
}

type PriceQuote struct {
	Lines    []booking.ServiceLine
	Pricing  booking.Pricing
	Discount *AppliedDiscount
}

func Price(ctx context.Context, reads shared.Reads, now time.Time, in PriceInput) (*PriceQuote, error) {
	lines := catalog.Lines(in.Services)
	serviceIDs := make([]uuid.UUID, len(in.Services))
	for i, s := range in.Services {
		serviceIDs[i] = s.ID
	}

	var applied *AppliedDiscount
	if in.Code != "" {
		var err error
		applied, err = EvaluateDiscount(ctx, reads, now, DiscountRequest{
			Code:       in.Code,
			BusinessID: in.Business.ID(),
			UserID:     in.UserID,
			Subtotal:   booking.Subtotal(lines),
			ServiceIDs: serviceIDs,
		})
		if err != nil {
			return nil, err
		}
	}

	var amount int64
	var ref *booking.PromotionRef
	if applied != nil {
		amount = applied.Amount
		ref = &booking.PromotionRef{ID: applied.PromotionID, Code: applied.Code}
	}

	return &PriceQuote{
		Lines:    lines,
		Pricing:  booking.Quote(lines, amount, ref, in.Business.Policy()),
		Discount: applied,
	}, nil
}
