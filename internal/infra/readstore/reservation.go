package readstore

import (
	"context"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/infra"
	"booking-engine/internal/infra/repository"
	"booking-engine/internal/infra/repository/converter"
	"booking-engine/internal/pkg/pgconv"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// occupyingStatuses must match the predicate of reservations_no_overlap.
const occupyingStatuses = `('pending', 'confirmed', 'checked_in', 'in_progress', 'completed')`

const selectReservationByID = `
SELECT ` + converter.ReservationColumns + `
FROM reservations
WHERE id = $1`

const selectReservationsByClientFirstPage = `
SELECT ` + converter.ReservationColumns + `
FROM reservations
WHERE client_id = $1
ORDER BY start_at DESC, id DESC
LIMIT $2`

const selectReservationsByClientKeyset = `
SELECT ` + converter.ReservationColumns + `
FROM reservations
WHERE client_id = $1 AND (start_at, id) < ($2, $3)
ORDER BY start_at DESC, id DESC
LIMIT $4`

const selectConflict = `
SELECT ` + converter.ReservationColumns + `
FROM reservations
WHERE business_id = $1 AND staff_id = $2
  AND status IN ` + occupyingStatuses + `
  AND start_at < $4 AND end_at > $3
ORDER BY start_at
LIMIT 1`

const selectOccupying = `
SELECT ` + converter.ReservationColumns + `
FROM reservations
WHERE business_id = $1
  AND (cardinality($2::uuid[]) = 0 OR staff_id = ANY($2))
  AND status IN ` + occupyingStatuses + `
  AND start_at < $4 AND end_at > $3
ORDER BY start_at`

type ReservationReadStore struct {
	db repository.DBTX
}

func NewReservationReadStore(db repository.DBTX) *ReservationReadStore {
	return &ReservationReadStore{db: db}
}

func (r *ReservationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*booking.Reservation, error) {
	res, err := converter.ScanReservation(r.db.QueryRow(ctx, selectReservationByID, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by ID", err)
	}
	return res, nil
}

func (r *ReservationReadStore) FindByClient(ctx context.Context, clientID uuid.UUID, after *shared.PageCursor, limit int) ([]*booking.Reservation, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if after == nil {
		rows, err = r.db.Query(ctx, selectReservationsByClientFirstPage, clientID, limit)
	} else {
		rows, err = r.db.Query(ctx, selectReservationsByClientKeyset,
			clientID, pgconv.TimeToPgtype(after.StartAt), after.ID, limit)
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find reservations by client", err)
	}
	return collectReservations(rows)
}

func (r *ReservationReadStore) FindConflict(ctx context.Context, businessID, staffID uuid.UUID, w booking.Window) (*booking.Reservation, error) {
	res, err := converter.ScanReservation(r.db.QueryRow(ctx, selectConflict,
		businessID, staffID, pgconv.TimeToPgtype(w.Start), pgconv.TimeToPgtype(w.End)))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to check for conflicting reservations", err)
	}
	return res, nil
}

func (r *ReservationReadStore) FindOccupying(ctx context.Context, businessID uuid.UUID, staffIDs []uuid.UUID, from, to time.Time) ([]*booking.Reservation, error) {
	rows, err := r.db.Query(ctx, selectOccupying,
		businessID, pgconv.UUIDsToPgtype(staffIDs), pgconv.TimeToPgtype(from), pgconv.TimeToPgtype(to))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list occupying reservations", err)
	}
	return collectReservations(rows)
}

func collectReservations(rows pgx.Rows) ([]*booking.Reservation, error) {
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*booking.Reservation, error) {
		return converter.ScanReservation(row)
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan reservations", err)
	}
	return out, nil
}
