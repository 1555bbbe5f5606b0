//go:build unit || integration

package builder

import (
	"booking-engine/internal/domain/promotion"

	"github.com/google/uuid"
)

type PromotionBuilder struct {
	promotion.Params
}

func NewPromotionBuilder(businessID uuid.UUID) *PromotionBuilder {
	return &PromotionBuilder{Params: promotion.Params{
		ID:           uuid.New(),
		BusinessID:   businessID,
		Code:         "SPRING10",
		Status:       promotion.StatusActive,
		DiscountType: promotion.DiscountPercentage,
		Value:        10,
	}}
}

func (b *PromotionBuilder) With(mutate func(*promotion.Params)) *PromotionBuilder {
	mutate(&b.Params)
	return b
}

func (b *PromotionBuilder) BuildDomain() (*promotion.Promotion, error) {
	return promotion.NewPromotion(b.Params)
}

func (b *PromotionBuilder) MustBuild() *promotion.Promotion {
	p, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	return p
}
