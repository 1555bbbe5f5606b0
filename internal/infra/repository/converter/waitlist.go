package converter

import (
	"booking-engine/internal/domain/waitlist"
	"booking-engine/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
)

const WaitlistColumns = `id, business_id, client_id, preferences, priority, status,
	notifications, expires_at, seq, created_at, updated_at`

func ScanWaitlistEntry(row Scanner) (*waitlist.Entry, error) {
	var (
		st               waitlist.State
		priority, status string
		expiresAt        pgtype.Timestamptz
		created, updated pgtype.Timestamptz
	)
	err := row.Scan(
		&st.ID,
		&st.BusinessID,
		&st.ClientID,
		&st.Preferences,
		&priority,
		&status,
		&st.Notifications,
		&expiresAt,
		&st.Seq,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	st.Priority = waitlist.Priority(priority)
	st.Status = waitlist.Status(status)
	st.ExpiresAt = pgconv.TimePtrFromPgtype(expiresAt)
	st.CreatedAt = created.Time
	st.UpdatedAt = updated.Time
	if st.Notifications == nil {
		st.Notifications = []waitlist.Notification{}
	}

	return waitlist.ReconstructEntry(st), nil
}
