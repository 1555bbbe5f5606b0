package queue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"booking-engine/internal/pkg/clock"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// indexGrace keeps a reservation's task index around a little past its last
// scheduled send.
const indexGrace = 24 * time.Hour

// AsynqDispatcher schedules notifications as asynq tasks and keeps a Redis
// set of task ids per reservation so pending tasks can be deleted when the
// reservation is cancelled.
type AsynqDispatcher struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	rdb       *redis.Client
	queue     string
	clock     clock.Clock
}

func NewAsynqDispatcher(client *asynq.Client, inspector *asynq.Inspector, rdb *redis.Client, queueName string, clk clock.Clock) *AsynqDispatcher {
	return &AsynqDispatcher{
		client:    client,
		inspector: inspector,
		rdb:       rdb,
		queue:     queueName,
		clock:     clk,
	}
}

var _ shared.NotificationDispatcher = (*AsynqDispatcher)(nil)

func indexKey(reservationID uuid.UUID) string {
	return "booking:notification_tasks:" + reservationID.String()
}

func (d *AsynqDispatcher) Schedule(ctx context.Context, n shared.Notification) error {
	task, opts, taskID, err := NewNotificationTask(n, d.queue)
	if err != nil {
		return errs.Wrap(err, "failed to build notification task")
	}

	info, err := d.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			slog.Debug("notification already scheduled", "task_id", taskID, "type", string(n.Type))
			return nil
		}
		return errs.Wrap(err, "failed to enqueue notification")
	}

	slog.Debug("notification enqueued",
		"task_id", info.ID,
		"type", string(n.Type),
		"user_id", n.UserID.String(),
		"state", info.State.String())

	if n.ReservationID == nil || n.SendAt == nil {
		return nil
	}
	return d.track(ctx, *n.ReservationID, taskID, *n.SendAt)
}

func (d *AsynqDispatcher) track(ctx context.Context, reservationID uuid.UUID, taskID string, sendAt time.Time) error {
	key := indexKey(reservationID)
	if err := d.rdb.SAdd(ctx, key, taskID).Err(); err != nil {
		return errs.Wrap(err, "failed to index notification task")
	}

	want := sendAt.Sub(d.clock.Now()) + indexGrace
	ttl, err := d.rdb.TTL(ctx, key).Result()
	if err != nil {
		return errs.Wrap(err, "failed to read task index ttl")
	}
	if ttl < want {
		if err := d.rdb.Expire(ctx, key, want).Err(); err != nil {
			return errs.Wrap(err, "failed to extend task index ttl")
		}
	}
	return nil
}

// CancelScheduled deletes every indexed task that asynq still holds. Tasks
// already delivered or in flight are left alone.
func (d *AsynqDispatcher) CancelScheduled(ctx context.Context, reservationID uuid.UUID) error {
	key := indexKey(reservationID)
	taskIDs, err := d.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return errs.Wrap(err, "failed to read task index")
	}

	var failed int
	for _, id := range taskIDs {
		err := d.inspector.DeleteTask(d.queue, id)
		switch {
		case err == nil:
			slog.Debug("scheduled notification deleted", "task_id", id, "reservation_id", reservationID.String())
		case errors.Is(err, asynq.ErrTaskNotFound), errors.Is(err, asynq.ErrQueueNotFound):
		default:
			failed++
			slog.Warn("failed to delete scheduled notification",
				"task_id", id,
				"reservation_id", reservationID.String(),
				"error", err.Error())
		}
	}

	if err := d.rdb.Del(ctx, key).Err(); err != nil {
		return errs.Wrap(err, "failed to clear task index")
	}
	if failed > 0 {
		return errs.Newf("%d scheduled notifications could not be deleted", failed)
	}
	return nil
}

// LogDispatcher only logs. It stands in when Redis is not configured.
type LogDispatcher struct{}

func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

var _ shared.NotificationDispatcher = (*LogDispatcher)(nil)

func (LogDispatcher) Schedule(_ context.Context, n shared.Notification) error {
	attrs := []any{
		"type", string(n.Type),
		"user_id", n.UserID.String(),
		"title", n.Title,
	}
	if n.SendAt != nil {
		attrs = append(attrs, "send_at", n.SendAt.Format(time.RFC3339))
	}
	slog.Info("notification (not delivered: queue disabled)", attrs...)
	return nil
}

func (LogDispatcher) CancelScheduled(_ context.Context, reservationID uuid.UUID) error {
	slog.Info("scheduled notifications cancelled (queue disabled)", "reservation_id", reservationID.String())
	return nil
}
