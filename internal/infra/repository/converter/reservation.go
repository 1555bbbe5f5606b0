package converter

import (
	"booking-engine/internal/domain/booking"
	"booking-engine/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
)

// Scanner is satisfied by both pgx.Row and pgx.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

const ReservationColumns = `id, business_id, client_id, client, staff_id, staff_name, services,
	date, start_time, end_time, start_at, end_at, total_duration, pricing, status,
	history, cancellation, payment, source, notes, waitlist_entry_id, created_at, updated_at`

// ReservationToArgs returns the column values in ReservationColumns order.
// JSONB columns are passed as Go values and marshalled by pgx.
func ReservationToArgs(st booking.State) []any {
	return []any{
		st.ID,
		st.BusinessID,
		pgconv.UUIDPtrToPgtype(st.ClientID),
		st.Client,
		st.Staff.ID,
		st.Staff.Name,
		st.Services,
		st.Date,
		st.StartTime,
		st.EndTime,
		pgconv.TimeToPgtype(st.StartAt),
		pgconv.TimeToPgtype(st.EndAt),
		st.TotalDuration,
		st.Pricing,
		string(st.Status),
		st.History,
		st.Cancellation,
		st.Payment,
		string(st.Source),
		st.Notes,
		pgconv.UUIDPtrToPgtype(st.WaitlistEntryID),
		pgconv.TimeToPgtype(st.CreatedAt),
		pgconv.TimeToPgtype(st.UpdatedAt),
	}
}

func ScanReservation(row Scanner) (*booking.Reservation, error) {
	var (
		st               booking.State
		clientID         pgtype.UUID
		waitlistEntryID  pgtype.UUID
		status, source   string
		startAt, endAt   pgtype.Timestamptz
		created, updated pgtype.Timestamptz
	)
	err := row.Scan(
		&st.ID,
		&st.BusinessID,
		&clientID,
		&st.Client,
		&st.Staff.ID,
		&st.Staff.Name,
		&st.Services,
		&st.Date,
		&st.StartTime,
		&st.EndTime,
		&startAt,
		&endAt,
		&st.TotalDuration,
		&st.Pricing,
		&status,
		&st.History,
		&st.Cancellation,
		&st.Payment,
		&source,
		&st.Notes,
		&waitlistEntryID,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	st.ClientID = pgconv.UUIDPtrFromPgtype(clientID)
	st.WaitlistEntryID = pgconv.UUIDPtrFromPgtype(waitlistEntryID)
	st.Status = booking.Status(status)
	st.Source = booking.Source(source)
	st.StartAt = startAt.Time
	st.EndAt = endAt.Time
	st.CreatedAt = created.Time
	st.UpdatedAt = updated.Time

	return booking.ReconstructReservation(st), nil
}
