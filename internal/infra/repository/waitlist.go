package repository

import (
	"context"

	"booking-engine/internal/domain/waitlist"
	"booking-engine/internal/infra"
	"booking-engine/internal/infra/repository/converter"
	"booking-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const insertWaitlistEntry = `
INSERT INTO waitlist_entries (id, business_id, client_id, preferences, priority, status, notifications, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const updateWaitlistEntry = `
UPDATE waitlist_entries
SET status = $2, notifications = $3, expires_at = $4, updated_at = $5
WHERE id = $1`

const selectWaitlistEntryForUpdate = `
SELECT ` + converter.WaitlistColumns + `
FROM waitlist_entries
WHERE id = $1
FOR UPDATE`

const selectActiveWaitlistForUpdate = `
SELECT ` + converter.WaitlistColumns + `
FROM waitlist_entries
WHERE business_id = $1 AND status = 'active'
ORDER BY seq
FOR UPDATE`

type WaitlistRepository struct {
	db DBTX
}

func NewWaitlistRepository(db DBTX) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

func (r *WaitlistRepository) Create(ctx context.Context, e *waitlist.Entry) error {
	st := e.State()
	_, err := r.db.Exec(ctx, insertWaitlistEntry,
		st.ID,
		st.BusinessID,
		st.ClientID,
		st.Preferences,
		string(st.Priority),
		string(st.Status),
		notificationsOrEmpty(st.Notifications),
		pgconv.TimePtrToPgtype(st.ExpiresAt),
		pgconv.TimeToPgtype(st.CreatedAt),
		pgconv.TimeToPgtype(st.UpdatedAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create waitlist entry", err)
	}
	return nil
}

func (r *WaitlistRepository) Update(ctx context.Context, e *waitlist.Entry) error {
	st := e.State()
	tag, err := r.db.Exec(ctx, updateWaitlistEntry,
		st.ID,
		string(st.Status),
		notificationsOrEmpty(st.Notifications),
		pgconv.TimePtrToPgtype(st.ExpiresAt),
		pgconv.TimeToPgtype(st.UpdatedAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update waitlist entry", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("waitlist entry not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *WaitlistRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*waitlist.Entry, error) {
	e, err := converter.ScanWaitlistEntry(r.db.QueryRow(ctx, selectWaitlistEntryForUpdate, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("waitlist entry not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock waitlist entry", err)
	}
	return e, nil
}

func (r *WaitlistRepository) ActiveForUpdate(ctx context.Context, businessID uuid.UUID) ([]*waitlist.Entry, error) {
	rows, err := r.db.Query(ctx, selectActiveWaitlistForUpdate, businessID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock active waitlist", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*waitlist.Entry, error) {
		return converter.ScanWaitlistEntry(row)
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan active waitlist", err)
	}
	return entries, nil
}

func notificationsOrEmpty(n []waitlist.Notification) []waitlist.Notification {
	if n == nil {
		return []waitlist.Notification{}
	}
	return n
}
