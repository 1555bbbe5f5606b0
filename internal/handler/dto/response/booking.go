package response

import (
	"log/slog"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/usecase/commands"
	"booking-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type ContactResponse struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type StaffResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type ServiceLineResponse struct {
	ServiceID       uuid.UUID `json:"serviceId"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration"`
	Price           int64     `json:"price"`
	Discount        int64     `json:"discount"`
}

type PricingResponse struct {
	Subtotal        int64   `json:"subtotal"`
	DiscountAmount  int64   `json:"discountAmount"`
	PromotionCode   *string `json:"promotionCode,omitempty"`
	DepositRequired bool    `json:"depositRequired"`
	Deposit         int64   `json:"deposit"`
	DepositPaid     bool    `json:"depositPaid"`
	Tip             int64   `json:"tip"`
	Total           int64   `json:"total"`
}

type PaymentResponse struct {
	Status       string `json:"status"`
	AmountPaid   int64  `json:"amountPaid"`
	RefundAmount int64  `json:"refundAmount"`
}

type CancellationResponse struct {
	At            time.Time `json:"at"`
	By            uuid.UUID `json:"by"`
	Initiator     string    `json:"initiator"`
	Reason        string    `json:"reason,omitempty"`
	Refunded      bool      `json:"refunded"`
	RefundAmount  int64     `json:"refundAmount"`
	PenaltyAmount int64     `json:"penaltyAmount"`
}

type BookingResponse struct {
	ID              uuid.UUID             `json:"id"`
	BusinessID      uuid.UUID             `json:"businessId"`
	ClientID        *uuid.UUID            `json:"clientId,omitempty"`
	Client          ContactResponse       `json:"client"`
	Staff           StaffResponse         `json:"staff"`
	Services        []ServiceLineResponse `json:"services"`
	Date            string                `json:"date"`
	StartTime       string                `json:"startTime"`
	EndTime         string                `json:"endTime"`
	StartAt         time.Time             `json:"startAt"`
	EndAt           time.Time             `json:"endAt"`
	TotalDuration   int                   `json:"totalDuration"`
	Pricing         PricingResponse       `json:"pricing"`
	Status          string                `json:"status"`
	Payment         PaymentResponse       `json:"payment"`
	Cancellation    *CancellationResponse `json:"cancellation,omitempty"`
	Source          string                `json:"source"`
	Notes           string                `json:"notes,omitempty"`
	WaitlistEntryID *uuid.UUID            `json:"waitlistEntryId,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

type CreateBookingResponse struct {
	Reservation     *BookingResponse `json:"reservation"`
	RequiresDeposit bool             `json:"requiresDeposit"`
	DepositAmount   int64            `json:"depositAmount"`
}

type CancelBookingResponse struct {
	Reservation    *BookingResponse `json:"reservation"`
	RefundAmount   int64            `json:"refundAmount"`
	PenaltyApplied bool             `json:"penaltyApplied"`
}

type BookingListResponse struct {
	Items      []*BookingResponse `json:"items"`
	NextCursor string             `json:"nextCursor,omitempty"`
}

type PriceResponse struct {
	Services        []ServiceLineResponse `json:"services"`
	Subtotal        int64                 `json:"subtotal"`
	DiscountAmount  int64                 `json:"discountAmount"`
	PromotionCode   *string               `json:"promotionCode,omitempty"`
	Total           int64                 `json:"total"`
	DepositRequired bool                  `json:"depositRequired"`
	Deposit         int64                 `json:"deposit"`
	ServiceMinutes  int                   `json:"serviceMinutes"`
	TotalMinutes    int                   `json:"totalMinutes"`
}

func serviceLines(lines []booking.ServiceLine) []ServiceLineResponse {
	out := make([]ServiceLineResponse, 0, len(lines))
	if err := copier.Copy(&out, &lines); err != nil {
		slog.Error("failed to map service lines", "error", err)
	}
	return out
}

func FromReservation(r *booking.Reservation) *BookingResponse {
	s := r.State()
	resp := &BookingResponse{
		ID:              s.ID,
		BusinessID:      s.BusinessID,
		ClientID:        s.ClientID,
		Client:          ContactResponse{Name: s.Client.Name, Email: s.Client.Email, Phone: s.Client.Phone},
		Staff:           StaffResponse{ID: s.Staff.ID, Name: s.Staff.Name},
		Services:        serviceLines(s.Services),
		Date:            s.Date,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		StartAt:         s.StartAt,
		EndAt:           s.EndAt,
		TotalDuration:   s.TotalDuration,
		Status:          string(s.Status),
		Source:          string(s.Source),
		Notes:           s.Notes,
		WaitlistEntryID: s.WaitlistEntryID,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		Payment: PaymentResponse{
			Status:       string(s.Payment.Status),
			AmountPaid:   s.Payment.AmountPaid,
			RefundAmount: s.Payment.RefundAmount,
		},
	}
	if err := copier.Copy(&resp.Pricing, &s.Pricing); err != nil {
		slog.Error("failed to map pricing", "error", err, "reservation_id", s.ID.String())
	}
	if s.Pricing.Promotion != nil {
		code := s.Pricing.Promotion.Code
		resp.Pricing.PromotionCode = &code
	}
	if c := s.Cancellation; c != nil {
		resp.Cancellation = &CancellationResponse{
			At:            c.At,
			By:            c.By,
			Initiator:     string(c.Initiator),
			Reason:        c.Reason,
			Refunded:      c.Refunded,
			RefundAmount:  c.RefundAmount,
			PenaltyAmount: c.PenaltyAmount,
		}
	}
	return resp
}

func FromCreateResult(res *commands.CreateBookingResult) *CreateBookingResponse {
	return &CreateBookingResponse{
		Reservation:     FromReservation(res.Reservation),
		RequiresDeposit: res.RequiresDeposit,
		DepositAmount:   res.DepositAmount,
	}
}

func FromCancelResult(res *commands.CancelBookingResult) *CancelBookingResponse {
	return &CancelBookingResponse{
		Reservation:    FromReservation(res.Reservation),
		RefundAmount:   res.RefundAmount,
		PenaltyApplied: res.PenaltyApplied,
	}
}

func FromReservations(rs []*booking.Reservation, next string) *BookingListResponse {
	items := make([]*BookingResponse, len(rs))
	for i, r := range rs {
		items[i] = FromReservation(r)
	}
	return &BookingListResponse{Items: items, NextCursor: next}
}

func FromPriceView(v *queries.PriceView) *PriceResponse {
	return &PriceResponse{
		Services:        serviceLines(v.Lines),
		Subtotal:        v.Subtotal,
		DiscountAmount:  v.DiscountAmount,
		PromotionCode:   v.PromotionCode,
		Total:           v.Total,
		DepositRequired: v.DepositRequired,
		Deposit:         v.Deposit,
		ServiceMinutes:  v.ServiceMinutes,
		TotalMinutes:    v.TotalMinutes,
	}
}
