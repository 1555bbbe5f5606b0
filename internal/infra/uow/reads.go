package uow

import (
	"context"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/catalog"
	"booking-engine/internal/domain/promotion"
	"booking-engine/internal/domain/user"
	"booking-engine/internal/domain/waitlist"
	"booking-engine/internal/infra/readstore"
	"booking-engine/internal/infra/repository"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

// pgReads composes the read stores over one connection or transaction.
type pgReads struct {
	catalog      *readstore.CatalogReadStore
	users        *readstore.UserReadStore
	reservations *readstore.ReservationReadStore
	promotions   *readstore.PromotionReadStore
	waitlist     *readstore.WaitlistReadStore
	idempotency  *readstore.IdempotencyReadStore
}

func newReads(db repository.DBTX) *pgReads {
	return &pgReads{
		catalog:      readstore.NewCatalogReadStore(db),
		users:        readstore.NewUserReadStore(db),
		reservations: readstore.NewReservationReadStore(db),
		promotions:   readstore.NewPromotionReadStore(db),
		waitlist:     readstore.NewWaitlistReadStore(db),
		idempotency:  readstore.NewIdempotencyReadStore(db),
	}
}

func (r *pgReads) BusinessByID(ctx context.Context, id uuid.UUID) (*catalog.Business, error) {
	return r.catalog.BusinessByID(ctx, id)
}

func (r *pgReads) ServicesByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]catalog.Service, error) {
	return r.catalog.ServicesByIDs(ctx, businessID, ids)
}

func (r *pgReads) StaffByID(ctx context.Context, businessID, id uuid.UUID) (*catalog.Staff, error) {
	return r.catalog.StaffByID(ctx, businessID, id)
}

func (r *pgReads) StaffByBusiness(ctx context.Context, businessID uuid.UUID) ([]catalog.Staff, error) {
	return r.catalog.StaffByBusiness(ctx, businessID)
}

func (r *pgReads) UserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.users.FindByID(ctx, id)
}

func (r *pgReads) ReservationByID(ctx context.Context, id uuid.UUID) (*booking.Reservation, error) {
	return r.reservations.FindByID(ctx, id)
}

func (r *pgReads) ReservationsByClient(ctx context.Context, clientID uuid.UUID, after *shared.PageCursor, limit int) ([]*booking.Reservation, error) {
	return r.reservations.FindByClient(ctx, clientID, after, limit)
}

func (r *pgReads) FindConflict(ctx context.Context, businessID, staffID uuid.UUID, w booking.Window) (*booking.Reservation, error) {
	return r.reservations.FindConflict(ctx, businessID, staffID, w)
}

func (r *pgReads) OccupyingReservations(ctx context.Context, businessID uuid.UUID, staffIDs []uuid.UUID, from, to time.Time) ([]*booking.Reservation, error) {
	return r.reservations.FindOccupying(ctx, businessID, staffIDs, from, to)
}

func (r *pgReads) PromotionByCode(ctx context.Context, businessID uuid.UUID, code string) (*promotion.Promotion, error) {
	return r.promotions.FindByCode(ctx, businessID, code)
}

func (r *pgReads) PromotionUsageByUser(ctx context.Context, promotionID, userID uuid.UUID) (int, error) {
	return r.promotions.CountUsageByUser(ctx, promotionID, userID)
}

func (r *pgReads) WaitlistEntryByID(ctx context.Context, id uuid.UUID) (*waitlist.Entry, error) {
	return r.waitlist.FindByID(ctx, id)
}

func (r *pgReads) ActiveWaitlistByClient(ctx context.Context, businessID, clientID uuid.UUID) ([]*waitlist.Entry, error) {
	return r.waitlist.FindActiveByClient(ctx, businessID, clientID)
}

func (r *pgReads) IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	return r.idempotency.Get(ctx, key, userID)
}
