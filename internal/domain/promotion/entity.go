package promotion

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotActive          = errors.New("promotion is not active")
	ErrNotYetValid        = errors.New("promotion is not yet valid")
	ErrExpired            = errors.New("promotion has expired")
	ErrUsageLimitReached  = errors.New("promotion usage limit reached")
	ErrUserLimitReached   = errors.New("promotion per-user limit reached")
	ErrMinimumNotMet      = errors.New("subtotal below promotion minimum")
	ErrServicesNotCovered = errors.New("promotion does not apply to the selected services")
)

type Status string

const (
	StatusActive  Status = "active"
	StatusPaused  Status = "paused"
	StatusExpired Status = "expired"
)

type Promotion struct {
	id           uuid.UUID
	businessID   uuid.UUID
	code         Code
	status       Status
	discount     Discount
	validFrom    *time.Time
	validTo      *time.Time
	minPurchase  *int64
	serviceIDs   []uuid.UUID
	usageLimit   *int
	perUserLimit *int
	usageCount   int
}

type Params struct {
	ID           uuid.UUID
	BusinessID   uuid.UUID
	Code         string
	Status       Status
	DiscountType DiscountType
	Value        float64
	MaxDiscount  *int64
	ValidFrom    *time.Time
	ValidTo      *time.Time
	MinPurchase  *int64
	ServiceIDs   []uuid.UUID
	UsageLimit   *int
	PerUserLimit *int
	UsageCount   int
}

func NewPromotion(p Params) (*Promotion, error) {
	code, err := NewCode(p.Code)
	if err != nil {
		return nil, err
	}
	discount, err := NewDiscount(p.DiscountType, p.Value, p.MaxDiscount)
	if err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return &Promotion{
		id:           p.ID,
		businessID:   p.BusinessID,
		code:         code,
		status:       p.Status,
		discount:     discount,
		validFrom:    p.ValidFrom,
		validTo:      p.ValidTo,
		minPurchase:  p.MinPurchase,
		serviceIDs:   p.ServiceIDs,
		usageLimit:   p.UsageLimit,
		perUserLimit: p.PerUserLimit,
		usageCount:   p.UsageCount,
	}, nil
}

func (p *Promotion) ValidateAt(t time.Time) error {
	if p.status != StatusActive {
		return ErrNotActive
	}
	if p.validFrom != nil && t.Before(*p.validFrom) {
		return ErrNotYetValid
	}
	if p.validTo != nil && t.After(*p.validTo) {
		return ErrExpired
	}
	return nil
}

type Usage struct {
	Subtotal       int64
	ServiceIDs     []uuid.UUID
	UserUsageCount int
}

// CheckEligibility runs the usage checks in a fixed order: total usage,
// per-user usage, minimum purchase, then service applicability.
func (p *Promotion) CheckEligibility(u Usage) error {
	if p.usageLimit != nil && p.usageCount >= *p.usageLimit {
		return ErrUsageLimitReached
	}
	if p.perUserLimit != nil && u.UserUsageCount >= *p.perUserLimit {
		return ErrUserLimitReached
	}
	if p.minPurchase != nil && u.Subtotal < *p.minPurchase {
		return ErrMinimumNotMet
	}
	if len(p.serviceIDs) > 0 && !p.appliesToAny(u.ServiceIDs) {
		return ErrServicesNotCovered
	}
	return nil
}

// Evaluate returns the discount for u at now, or the reason none applies.
func (p *Promotion) Evaluate(now time.Time, u Usage) (int64, error) {
	if err := p.ValidateAt(now); err != nil {
		return 0, err
	}
	if err := p.CheckEligibility(u); err != nil {
		return 0, err
	}
	return p.discount.AmountFor(u.Subtotal), nil
}

func (p *Promotion) HasPerUserLimit() bool {
	return p.perUserLimit != nil
}

func (p *Promotion) appliesToAny(ids []uuid.UUID) bool {
	for _, want := range p.serviceIDs {
		for _, id := range ids {
			if id == want {
				return true
			}
		}
	}
	return false
}

func (p *Promotion) ID() uuid.UUID           { return p.id }
func (p *Promotion) BusinessID() uuid.UUID   { return p.businessID }
func (p *Promotion) Code() Code              { return p.code }
func (p *Promotion) Status() Status          { return p.status }
func (p *Promotion) Discount() Discount      { return p.discount }
func (p *Promotion) ValidFrom() *time.Time   { return p.validFrom }
func (p *Promotion) ValidTo() *time.Time     { return p.validTo }
func (p *Promotion) MinPurchase() *int64     { return p.minPurchase }
func (p *Promotion) ServiceIDs() []uuid.UUID { return p.serviceIDs }
func (p *Promotion) UsageLimit() *int        { return p.usageLimit }
func (p *Promotion) PerUserLimit() *int      { return p.perUserLimit }
func (p *Promotion) UsageCount() int         { return p.usageCount }
