package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"mosbookings/internal/adapters/observability"
	"mosbookings/internal/bootstrap"
	"mosbookings/internal/shared"
)

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	root := newRootCmd(func(ctx context.Context) (*bootstrap.App, error) {
		return bootstrap.Build(ctx, cfg)
	})
	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
