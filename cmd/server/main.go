// Command server runs the library community API.
//
//	@title						Library Community API
//	@version					1.0
//	@description				Discussions, comments, likes, presence and stats for the library community.
//	@BasePath					/api
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"github.com/tbourn/library-community/internal/config"
	httpapi "github.com/tbourn/library-community/internal/http"
	"github.com/tbourn/library-community/internal/observability"
	"github.com/tbourn/library-community/internal/repo"
	"github.com/tbourn/library-community/internal/services"
	"github.com/tbourn/library-community/internal/sysutil"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	shutdownTimeout = 10 * time.Second
	purgeInterval   = time.Hour
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "server",
		Usage: "Library community API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "Optional dotenv file loaded before reading the environment",
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server (default)",
				Action: serveAction,
			},
			{
				Name:  "migrate",
				Usage: "Create or update the community tables",
				Action: func(_ context.Context, c *cli.Command) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					db, err := openDB(cfg)
					if err != nil {
						return err
					}
					defer closeDB(db)
					log.Info().Str("driver", cfg.DBDriver).Msg("schema up to date")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Insert the test readers",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "print-tokens",
						Usage: "Print a bearer token for every seeded reader",
					},
				},
				Action: seedAction,
			},
		},
	}
	return app.Run(context.Background(), os.Args)
}

func loadConfig(c *cli.Command) (config.Config, error) {
	if err := config.LoadDotEnv(c.String("env-file")); err != nil {
		return config.Config{}, fmt.Errorf("env file: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, nil)
	return cfg, nil
}

// openDB opens the configured store and migrates it.
func openDB(cfg config.Config) (*gorm.DB, error) {
	db, err := repo.OpenDB(repo.Options{
		Driver:      cfg.DBDriver,
		SQLitePath:  cfg.DBPath,
		DatabaseURL: cfg.DatabaseURL,
		Tracing:     cfg.OTEL.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func serveAction(ctx context.Context, c *cli.Command) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.Setup(ctx, cfg.OTEL, sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version))
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	var cache services.StatsCache
	if cfg.RedisURL != "" && cfg.StatsCacheTTL > 0 {
		rdb, err := services.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable; serving stats without cache")
		} else {
			defer func(rdb *redis.Client) { _ = rdb.Close() }(rdb)
			cache = services.NewRedisStatsCache(rdb, cfg.StatsCacheTTL)
		}
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, cfg, cache)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		services.NewPresenceService(db, cfg.Presence.TTL).RunSweeper(ctx, cfg.Presence.SweepInterval)
	})
	wg.Go(func() {
		services.NewIdempotencyService(db, cfg.IdempotencyTTL).RunPurger(ctx, purgeInterval)
	})

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("db", cfg.DBDriver).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		stop()
		wg.Wait()
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown")
	}
	wg.Wait()
	return nil
}
