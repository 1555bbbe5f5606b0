//go:build unit

package booking_test

import (
	"testing"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_ValidateAdvance(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	policy := booking.Policy{MinAdvanceHours: 1, MaxAdvanceDays: 30}

	tests := []struct {
		name    string
		start   time.Time
		errIs   error
		wantMsg string
	}{
		{name: "exactly at min notice boundary", start: now.Add(time.Hour)},
		{name: "ten minutes short of min notice", start: now.Add(50 * time.Minute), errIs: booking.ErrTooSoon, wantMsg: "at least 1 hour(s)"},
		{name: "in the past", start: now.Add(-time.Minute), errIs: booking.ErrStartInPast},
		{name: "exactly at max window", start: now.AddDate(0, 0, 30)},
		{name: "past max window", start: now.AddDate(0, 0, 30).Add(time.Minute), errIs: booking.ErrTooFarAhead, wantMsg: "at most 30 day(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.ValidateAdvance(tt.start, now)
			if tt.errIs == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errs.Is(err, tt.errIs))
			kind, msg := errs.KindOf(err)
			assert.Equal(t, errs.KindBadRequest, kind)
			assert.Contains(t, msg, tt.wantMsg)
		})
	}
}

func TestPolicy_ValidateAdvance_NoLimits(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	assert.NoError(t, booking.Policy{}.ValidateAdvance(now.AddDate(2, 0, 0), now))
	assert.NoError(t, booking.Policy{}.ValidateAdvance(now, now))
}

func TestPolicy_DepositFor(t *testing.T) {
	tests := []struct {
		name    string
		deposit booking.DepositPolicy
		total   int64
		want    int64
	}{
		{name: "percentage", deposit: booking.DepositPolicy{Required: true, Type: booking.DepositPercentage, Amount: 20}, total: 1000, want: 200},
		{name: "percentage rounds half up", deposit: booking.DepositPolicy{Required: true, Type: booking.DepositPercentage, Amount: 12.5}, total: 1004, want: 126},
		{name: "fixed below total", deposit: booking.DepositPolicy{Required: true, Type: booking.DepositFixed, Amount: 300}, total: 1000, want: 300},
		{name: "fixed capped at total", deposit: booking.DepositPolicy{Required: true, Type: booking.DepositFixed, Amount: 5000}, total: 1000, want: 1000},
		{name: "not required", deposit: booking.DepositPolicy{Required: false, Type: booking.DepositFixed, Amount: 300}, total: 1000, want: 0},
		{name: "zero total", deposit: booking.DepositPolicy{Required: true, Type: booking.DepositPercentage, Amount: 20}, total: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := booking.Policy{Deposit: tt.deposit}
			assert.Equal(t, tt.want, p.DepositFor(tt.total))
		})
	}
}

func TestCancellationPolicy_Evaluate(t *testing.T) {
	inWindow := booking.CancellationPolicy{Allow: true, PenaltyWindowHours: 24, PenaltyType: booking.PenaltyPercentage, PenaltyAmount: 50}

	tests := []struct {
		name        string
		policy      booking.CancellationPolicy
		hours       float64
		deposit     int64
		depositPaid bool
		want        booking.RefundDecision
	}{
		{
			name: "before notice window refunds the full deposit", policy: inWindow,
			hours: 48, deposit: 200, depositPaid: true,
			want: booking.RefundDecision{RefundAmount: 200},
		},
		{
			name: "inside window applies 50 percent penalty", policy: inWindow,
			hours: 3, deposit: 200, depositPaid: true,
			want: booking.RefundDecision{RefundAmount: 100, PenaltyAmount: 100, PenaltyApplied: true},
		},
		{
			name: "exactly at window edge refunds in full", policy: inWindow,
			hours: 24, deposit: 200, depositPaid: true,
			want: booking.RefundDecision{RefundAmount: 200},
		},
		{
			name:  "fixed penalty capped at deposit",
			hours: 1, deposit: 200, depositPaid: true,
			policy: booking.CancellationPolicy{Allow: true, PenaltyWindowHours: 24, PenaltyType: booking.PenaltyFixed, PenaltyAmount: 500},
			want:   booking.RefundDecision{RefundAmount: 0, PenaltyAmount: 200, PenaltyApplied: true},
		},
		{
			name:  "no penalty type refunds in full",
			hours: 1, deposit: 200, depositPaid: true,
			policy: booking.CancellationPolicy{Allow: true, PenaltyWindowHours: 24, PenaltyType: booking.PenaltyNone},
			want:   booking.RefundDecision{RefundAmount: 200},
		},
		{
			name: "deposit not paid", policy: inWindow,
			hours: 1, deposit: 200, depositPaid: false,
			want: booking.RefundDecision{},
		},
		{
			name:  "cancellation disallowed refunds nothing",
			hours: 72, deposit: 200, depositPaid: true,
			policy: booking.CancellationPolicy{Allow: false},
			want:   booking.RefundDecision{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Evaluate(tt.hours, tt.deposit, tt.depositPaid))
		})
	}
}

func TestPolicy_InitialStatus(t *testing.T) {
	assert.Equal(t, booking.StatusPending, booking.Policy{RequireConfirmation: true}.InitialStatus())
	assert.Equal(t, booking.StatusConfirmed, booking.Policy{}.InitialStatus())
}
