package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"mosbookings/internal/adapters/observability"
	"mosbookings/internal/app"
	"mosbookings/internal/bootstrap"
	"mosbookings/internal/shared"
)

// roomloader uploads every room listed in a YAML manifest using the stored
// admin session. Log in as an administrator with the CLI first.
func main() {
	manifest := flag.String("manifest", "rooms.yaml", "path to the room manifest")
	flag.Parse()

	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	a, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()
	observability.Serve(a.Registry, cfg.MetricsAddr)

	if _, err := a.Services.Sessions.RequireAdmin(ctx); err != nil {
		log.Fatal().Err(err).Msg("an admin session is required, log in with `mosbookings login --admin`")
	}

	f, err := os.Open(*manifest)
	if err != nil {
		log.Fatal().Err(err).Msg("open manifest failed")
	}
	m, err := app.ReadManifest(f)
	_ = f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("read manifest failed")
	}

	log.Info().
		Str("base", cfg.APIBase).
		Int("workers", cfg.UploadWorkers).
		Int("rooms", len(m.Rooms)).
		Msg("room upload starting")

	results := a.Uploads.UploadAll(ctx, filepath.Dir(*manifest), m.Rooms)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Info().Int("ok", len(results)-failed).Int("failed", failed).Msg("room upload completed")
	if failed > 0 {
		_ = a.Close()
		os.Exit(1)
	}
}
