package components

import (
	"booking-engine/internal/handler"
	"booking-engine/internal/handler/api"
	"booking-engine/internal/handler/middleware"
	"booking-engine/internal/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		api.NewAvailabilityHandler,
		api.NewWaitlistHandler,
		middleware.NewAuthMiddleware,
		func(rdb *redis.Client, cfg config.Config) *middleware.RateLimiter {
			return middleware.NewRateLimiter(rdb, cfg.RateLimit)
		},
		func(b *api.BookingHandler, a *api.AvailabilityHandler, w *api.WaitlistHandler) handler.Handlers {
			return handler.Handlers{Booking: b, Availability: a, Waitlist: w}
		},
	),
	fx.Invoke(handler.NewRouter),
)
