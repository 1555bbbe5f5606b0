package components

import (
	"booking-engine/internal/handler/task"
	"booking-engine/internal/infra/events"
	"booking-engine/internal/infra/uow"
	"booking-engine/internal/usecase/shared"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		uow.NewPostgresUoW,
		fx.Annotate(
			func(u *uow.PostgresUoW) *uow.PostgresUoW { return u },
			fx.As(new(shared.UnitOfWork)),
			fx.As(new(events.OutboxStore)),
		),
		func(u *uow.PostgresUoW) task.UserLookup { return u.Reads() },
	),
)
