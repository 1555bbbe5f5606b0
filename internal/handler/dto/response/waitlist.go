package response

import (
	"time"

	"booking-engine/internal/domain/waitlist"

	"github.com/google/uuid"
)

type WaitlistOfferResponse struct {
	SentAt        time.Time  `json:"sentAt"`
	ExpiresAt     time.Time  `json:"expiresAt"`
	Status        string     `json:"status"`
	ReservationID *uuid.UUID `json:"reservationId,omitempty"`
	RespondedAt   *time.Time `json:"respondedAt,omitempty"`
}

type WaitlistEntryResponse struct {
	ID          uuid.UUID               `json:"id"`
	BusinessID  uuid.UUID               `json:"businessId"`
	ClientID    uuid.UUID               `json:"clientId"`
	Preferences waitlist.Preferences    `json:"preferences"`
	Priority    string                  `json:"priority"`
	Status      string                  `json:"status"`
	Offers      []WaitlistOfferResponse `json:"offers"`
	ExpiresAt   *time.Time              `json:"expiresAt,omitempty"`
	CreatedAt   time.Time               `json:"createdAt"`
}

func FromWaitlistEntry(e *waitlist.Entry) *WaitlistEntryResponse {
	offers := make([]WaitlistOfferResponse, len(e.Notifications()))
	for i, n := range e.Notifications() {
		offers[i] = WaitlistOfferResponse{
			SentAt:        n.SentAt,
			ExpiresAt:     n.ExpiresAt,
			Status:        string(n.Status),
			ReservationID: n.ReservationID,
			RespondedAt:   n.RespondedAt,
		}
	}
	return &WaitlistEntryResponse{
		ID:          e.ID(),
		BusinessID:  e.BusinessID(),
		ClientID:    e.ClientID(),
		Preferences: e.Preferences(),
		Priority:    string(e.Priority()),
		Status:      string(e.Status()),
		Offers:      offers,
		ExpiresAt:   e.ExpiresAt(),
		CreatedAt:   e.CreatedAt(),
	}
}
