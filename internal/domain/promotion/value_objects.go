package promotion

import (
	"errors"
	"math"
	"regexp"
	"strings"
)

var (
	ErrInvalidCode            = errors.New("invalid promotion code format")
	ErrInvalidDiscountAmount  = errors.New("discount amount cannot be negative")
	ErrInvalidDiscountPercent = errors.New("percentage discount must be between 0 and 100")
	ErrInvalidDiscountType    = errors.New("unknown discount type")
)

var codeRegex = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)

type Code string

// NewCode normalizes to upper case so codes match case-insensitively.
func NewCode(code string) (Code, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if !codeRegex.MatchString(code) {
		return Code(""), ErrInvalidCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type Discount struct {
	typ         DiscountType
	value       float64
	maxDiscount *int64
}

func NewDiscount(typ DiscountType, value float64, maxDiscount *int64) (Discount, error) {
	switch typ {
	case DiscountPercentage:
		if value < 0 || value > 100 {
			return Discount{}, ErrInvalidDiscountPercent
		}
	case DiscountFixed:
		if value < 0 {
			return Discount{}, ErrInvalidDiscountAmount
		}
	default:
		return Discount{}, ErrInvalidDiscountType
	}
	return Discount{typ: typ, value: value, maxDiscount: maxDiscount}, nil
}

// AmountFor computes the discount on subtotal. Percentages round half up and
// respect the cap; fixed amounts never exceed the subtotal.
func (d Discount) AmountFor(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	switch d.typ {
	case DiscountPercentage:
		amount := int64(math.Round(float64(subtotal) * d.value / 100))
		if d.maxDiscount != nil && amount > *d.maxDiscount {
			amount = *d.maxDiscount
		}
		return amount
	case DiscountFixed:
		amount := int64(math.Round(d.value))
		if amount > subtotal {
			return subtotal
		}
		return amount
	default:
		return 0
	}
}

func (d Discount) Type() DiscountType  { return d.typ }
func (d Discount) Value() float64      { return d.value }
func (d Discount) MaxDiscount() *int64 { return d.maxDiscount }
