package booking

import "github.com/google/uuid"

// ServiceLine snapshots a service at booking time. Discount is the service's
// own markdown, so Price-Discount is what the client pays for the line.
type ServiceLine struct {
	ServiceID       uuid.UUID `json:"serviceId"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration"`
	Price           int64     `json:"price"`
	Discount        int64     `json:"discount"`
}

func NewServiceLine(id uuid.UUID, name string, duration int, price int64, discountedPrice *int64) ServiceLine {
	line := ServiceLine{
		ServiceID:       id,
		Name:            name,
		DurationMinutes: duration,
		Price:           price,
	}
	if discountedPrice != nil && *discountedPrice >= 0 && *discountedPrice < price {
		line.Discount = price - *discountedPrice
	}
	return line
}

func (l ServiceLine) EffectivePrice() int64 {
	return l.Price - l.Discount
}

type PromotionRef struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}

type Pricing struct {
	Subtotal        int64         `json:"subtotal"`
	DiscountAmount  int64         `json:"discountAmount"`
	Promotion       *PromotionRef `json:"promotion,omitempty"`
	DepositRequired bool          `json:"depositRequired"`
	Deposit         int64         `json:"deposit"`
	DepositPaid     bool          `json:"depositPaid"`
	Tip             int64         `json:"tip"`
	Total           int64         `json:"total"`
}

// Quote is the one pricing computation shared by the price preview and the
// booking commit.
func Quote(lines []ServiceLine, discount int64, promo *PromotionRef, policy Policy) Pricing {
	subtotal := Subtotal(lines)
	if discount < 0 {
		discount = 0
	}
	if discount == 0 {
		promo = nil
	}
	total := subtotal - discount
	if total < 0 {
		total = 0
	}
	deposit := policy.DepositFor(total)
	return Pricing{
		Subtotal:        subtotal,
		DiscountAmount:  discount,
		Promotion:       promo,
		DepositRequired: deposit > 0,
		Deposit:         deposit,
		Total:           total,
	}
}

func Subtotal(lines []ServiceLine) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.EffectivePrice()
	}
	return sum
}

func ServiceMinutes(lines []ServiceLine) int {
	var sum int
	for _, l := range lines {
		sum += l.DurationMinutes
	}
	return sum
}
