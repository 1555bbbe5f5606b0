package repository

import (
	"context"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/infra"
	"booking-engine/internal/infra/repository/converter"
	"booking-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
)

const insertReservation = `
INSERT INTO reservations (` + converter.ReservationColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`

// Only mutable columns are written back.
const updateReservation = `
UPDATE reservations
SET status = $2, history = $3, cancellation = $4, payment = $5, pricing = $6, notes = $7, updated_at = $8
WHERE id = $1`

const selectReservationForUpdate = `
SELECT ` + converter.ReservationColumns + `
FROM reservations
WHERE id = $1
FOR UPDATE`

type ReservationRepository struct {
	db DBTX
}

func NewReservationRepository(db DBTX) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, res *booking.Reservation) error {
	_, err := r.db.Exec(ctx, insertReservation, converter.ReservationToArgs(res.State())...)
	if err != nil {
		return infra.WrapRepoErr("failed to create reservation", err)
	}
	return nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *booking.Reservation) error {
	st := res.State()
	tag, err := r.db.Exec(ctx, updateReservation,
		st.ID,
		string(st.Status),
		st.History,
		st.Cancellation,
		st.Payment,
		st.Pricing,
		st.Notes,
		pgconv.TimeToPgtype(st.UpdatedAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *ReservationRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*booking.Reservation, error) {
	res, err := converter.ScanReservation(r.db.QueryRow(ctx, selectReservationForUpdate, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock reservation", err)
	}
	return res, nil
}
