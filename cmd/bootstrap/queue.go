package bootstrap

import (
	"context"

	"booking-engine/internal/infra/lock"
	"booking-engine/internal/infra/queue"
	"booking-engine/internal/pkg/clock"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/usecase/shared"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var QueueModule = fx.Module("queue",
	fx.Provide(
		NewDispatcher,
		NewSlotLocker,
	),
)

func QueueRedisOpt(cfg config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Queue.RedisDB,
	}
}

func NewDispatcher(lc fx.Lifecycle, cfg config.Config, rdb *redis.Client, clk clock.Clock) shared.NotificationDispatcher {
	if rdb == nil {
		return queue.NewLogDispatcher()
	}

	opt := QueueRedisOpt(cfg)
	client := asynq.NewClient(opt)
	inspector := asynq.NewInspector(opt)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			_ = inspector.Close()
			return client.Close()
		},
	})
	return queue.NewAsynqDispatcher(client, inspector, rdb, cfg.Queue.Name, clk)
}

func NewSlotLocker(cfg config.Config, rdb *redis.Client) shared.SlotLocker {
	if rdb == nil {
		return lock.NewLocalLocker(cfg.Booking.SlotLockWait)
	}
	return lock.NewRedisLocker(rdb, cfg.Booking.SlotLockTTL, cfg.Booking.SlotLockWait)
}
