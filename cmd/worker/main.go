package main

import (
	"context"
	"log/slog"
	"os"

	"booking-engine/cmd/bootstrap"

	"go.uber.org/fx"
)

func main() {
	app := fx.New(bootstrap.WorkerModule)

	if err := app.Start(context.Background()); err != nil {
		slog.Error("worker failed to start", "error", err)
		os.Exit(1)
	}

	<-app.Done()

	if err := app.Stop(context.Background()); err != nil {
		slog.Error("worker failed to stop cleanly", "error", err)
	}

	slog.Info("worker stopped")
}
