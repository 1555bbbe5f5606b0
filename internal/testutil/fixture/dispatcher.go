//go:build unit || integration

package fixture

import (
	"context"
	"sync"

	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

// RecordingDispatcher keeps every scheduled notification in memory.
type RecordingDispatcher struct {
	mu        sync.Mutex
	sent      []shared.Notification
	cancelled []uuid.UUID
	Err       error
}

func (d *RecordingDispatcher) Schedule(_ context.Context, n shared.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.sent = append(d.sent, n)
	return nil
}

func (d *RecordingDispatcher) CancelScheduled(_ context.Context, reservationID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.cancelled = append(d.cancelled, reservationID)
	return nil
}

func (d *RecordingDispatcher) Sent() []shared.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]shared.Notification(nil), d.sent...)
}

func (d *RecordingDispatcher) OfType(typ shared.NotificationType) []shared.Notification {
	var out []shared.Notification
	for _, n := range d.Sent() {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func (d *RecordingDispatcher) Cancelled() []uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uuid.UUID(nil), d.cancelled...)
}
