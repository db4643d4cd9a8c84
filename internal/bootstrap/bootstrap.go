// Package bootstrap wires adapters and services from a Config. All three
// binaries start here.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"mosbookings/internal/adapters/export"
	"mosbookings/internal/adapters/mosapi"
	"mosbookings/internal/adapters/observability"
	redisad "mosbookings/internal/adapters/redis"
	"mosbookings/internal/app"
	"mosbookings/internal/domain"
	"mosbookings/internal/shared"
	mysqlrepo "mosbookings/internal/storage/mysql"
)

// App holds the wired services and the resources behind them.
type App struct {
	Config   shared.Config
	Registry *prometheus.Registry
	Services app.Services
	Exports  *app.ExportService
	Uploads  *app.UploadService

	closers []func() error
}

// Build connects to redis (required) and MySQL (only when MYSQL_DSN is set).
func Build(ctx context.Context, cfg shared.Config) (*App, error) {
	a := &App{Config: cfg, Registry: observability.InitRegistry()}

	client, err := mosapi.New(cfg.APIBase, mosapi.Options{RPS: cfg.APIRPS, Retries: cfg.APIRetries, Timeout: cfg.APITimeout})
	if err != nil {
		return nil, err
	}

	sessRDB := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisSessionDB)
	prefsRDB := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisPrefsDB)
	a.closers = append(a.closers, sessRDB.Close, prefsRDB.Close)
	for _, c := range []*redis.Client{sessRDB, prefsRDB} {
		if err := redisad.Ping(ctx, c); err != nil {
			_ = a.Close()
			return nil, err
		}
	}
	log.Debug().Str("addr", cfg.RedisAddr).Msg("redis ping ok")

	var history domain.ExportLog
	if cfg.MySQLDSN != "" {
		dsn, err := ExportDSN(cfg.MySQLDSN)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("sql.Open: %w", err)
		}
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pctx)
		cancel()
		if err != nil {
			_ = db.Close()
			log.Warn().Err(err).Msg("export log unavailable, continuing without it")
		} else {
			a.closers = append(a.closers, db.Close)
			history = mysqlrepo.New(db)
			log.Debug().Msg("db ping ok")
		}
	}

	sessions := app.NewSessionService(client,
		redisad.NewSessionStore(sessRDB, cfg.Namespace),
		redisad.NewPreferenceStore(prefsRDB, cfg.Namespace),
		time.Now,
	)
	repo := app.NewRoomRepository(client, sessions)
	a.Services = app.Services{Repo: repo, Sessions: sessions, Now: time.Now}
	a.Exports = app.NewExportService(cfg.ExportDir, history, export.PDF{}, export.XLSX{})
	a.Uploads = app.NewUploadService(repo, cfg.UploadWorkers)
	return a, nil
}

// ExportDSN forces the options the export log depends on: DATETIME columns
// scan into time.Time, read as UTC.
func ExportDSN(raw string) (string, error) {
	c, err := mysql.ParseDSN(raw)
	if err != nil {
		return "", fmt.Errorf("parse MYSQL_DSN: %w", err)
	}
	c.ParseTime = true
	c.Loc = time.UTC
	return c.FormatDSN(), nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
