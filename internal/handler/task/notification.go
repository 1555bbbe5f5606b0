package task

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"booking-engine/internal/domain/user"
	"booking-engine/internal/infra"
	"booking-engine/internal/infra/push"
	"booking-engine/internal/infra/queue"
	"booking-engine/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type UserLookup interface {
	UserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// NotificationHandler delivers queued notifications as push messages.
type NotificationHandler struct {
	users  UserLookup
	sender push.Sender
}

func NewNotificationHandler(users UserLookup, sender push.Sender) *NotificationHandler {
	return &NotificationHandler{users: users, sender: sender}
}

func (h *NotificationHandler) Register(mux *asynq.ServeMux) {
	mux.Handle(queue.TypeSendNotification, h)
}

// ProcessTask returns nil for notifications that can never be delivered so
// asynq does not retry them.
func (h *NotificationHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	p, err := queue.ParseNotificationPayload(t)
	if err != nil {
		return fmt.Errorf("invalid notification payload: %v: %w", err, asynq.SkipRetry)
	}

	u, err := h.users.UserByID(ctx, p.UserID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			slog.Warn("notification recipient not found", "user_id", p.UserID.String(), "type", p.Type)
			return nil
		}
		return err
	}
	if !u.IsActive() || u.PushToken() == "" {
		slog.Debug("recipient has no active push token", "user_id", p.UserID.String(), "type", p.Type)
		return nil
	}

	data := make(map[string]string, len(p.Data)+2)
	maps.Copy(data, p.Data)
	data["type"] = p.Type
	if p.ReservationID != nil {
		data["reservation_id"] = p.ReservationID.String()
	}

	err = h.sender.Send(ctx, push.Message{
		Token: u.PushToken(),
		Title: p.Title,
		Body:  p.Body,
		Data:  data,
	})
	if err != nil {
		if errs.Is(err, push.ErrUnregistered) {
			slog.Warn("push token unregistered", "user_id", p.UserID.String())
			return nil
		}
		slog.Error("push delivery failed", "user_id", p.UserID.String(), "type", p.Type, "error", err.Error())
		return err
	}

	slog.Info("notification delivered", "user_id", p.UserID.String(), "type", p.Type)
	return nil
}
