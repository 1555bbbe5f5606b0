package readstore

import (
	"context"

	"booking-engine/internal/domain/waitlist"
	"booking-engine/internal/infra"
	"booking-engine/internal/infra/repository"
	"booking-engine/internal/infra/repository/converter"
	"booking-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const selectWaitlistEntryByID = `
SELECT ` + converter.WaitlistColumns + `
FROM waitlist_entries
WHERE id = $1`

const selectActiveWaitlistByClient = `
SELECT ` + converter.WaitlistColumns + `
FROM waitlist_entries
WHERE business_id = $1 AND client_id = $2 AND status = 'active'
ORDER BY seq`

type WaitlistReadStore struct {
	db repository.DBTX
}

func NewWaitlistReadStore(db repository.DBTX) *WaitlistReadStore {
	return &WaitlistReadStore{db: db}
}

func (r *WaitlistReadStore) FindByID(ctx context.Context, id uuid.UUID) (*waitlist.Entry, error) {
	e, err := converter.ScanWaitlistEntry(r.db.QueryRow(ctx, selectWaitlistEntryByID, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("waitlist entry not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find waitlist entry by ID", err)
	}
	return e, nil
}

func (r *WaitlistReadStore) FindActiveByClient(ctx context.Context, businessID, clientID uuid.UUID) ([]*waitlist.Entry, error) {
	rows, err := r.db.Query(ctx, selectActiveWaitlistByClient, businessID, clientID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list waitlist entries", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*waitlist.Entry, error) {
		return converter.ScanWaitlistEntry(row)
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan waitlist entries", err)
	}
	return entries, nil
}
