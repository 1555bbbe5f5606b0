package components

import (
	"context"
	"log/slog"

	"booking-engine/internal/handler/task"
	"booking-engine/internal/infra/events"
	"booking-engine/internal/infra/push"
	"booking-engine/internal/pkg/clock"
	"booking-engine/internal/pkg/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		func(cfg config.Config) (push.Sender, error) {
			return push.NewSender(context.Background(), cfg.Firebase)
		},
		task.NewNotificationHandler,
		NewRelay,
	),
	fx.Invoke(
		RunNotificationWorker,
		RunOutboxRelay,
	),
)

func NewRelay(lc fx.Lifecycle, store events.OutboxStore, clk clock.Clock, cfg config.Config) *events.Relay {
	writer, closeWriter := events.NewMessageWriter(cfg.Kafka)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return closeWriter()
		},
	})
	return events.NewRelay(store, writer, clk, cfg.Kafka)
}

// RunNotificationWorker starts the asynq server. Without Redis there is no
// queue to consume, so the worker only relays the outbox.
func RunNotificationWorker(lc fx.Lifecycle, cfg config.Config, rdb *redis.Client, h *task.NotificationHandler) {
	if rdb == nil {
		slog.Warn("redis not configured, notification worker disabled")
		return
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Queue.RedisDB,
		},
		asynq.Config{
			Concurrency: cfg.Queue.Concurrency,
			Queues: map[string]int{
				cfg.Queue.Name: 1,
			},
		},
	)
	mux := asynq.NewServeMux()
	h.Register(mux)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			slog.Info("notification worker starting", "queue", cfg.Queue.Name, "concurrency", cfg.Queue.Concurrency)
			return srv.Start(mux)
		},
		OnStop: func(_ context.Context) error {
			srv.Shutdown()
			slog.Info("notification worker stopped")
			return nil
		},
	})
}

func RunOutboxRelay(lc fx.Lifecycle, relay *events.Relay) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				relay.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
