package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/config"
	"github.com/stayspot/mono-repo/backend/shared/go-repositories"
	"github.com/stayspot/mono-repo/backend/shared/go-repositories/memory"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

const (
	maxRetries       = 5
	connectTimeout   = 5 * time.Second
	initialBackoff   = 500 * time.Millisecond
	migrationTimeout = time.Minute
)

type App struct {
	Config *config.Config
	Store  *repositories.Store
	DB     *pgxpool.Pool // nil with the memory driver
}

func NewApp(cfg *config.Config) (*App, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		utils.Logger.Warn("tenancy-service using the in-memory store; data is lost on restart")
		return &App{Config: cfg, Store: memory.NewStore()}, nil
	}

	var (
		dbPool  *pgxpool.Pool
		err     error
		backoff = initialBackoff
	)

	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		dbPool, err = newDBPool(ctx, cfg.DBUrl)
		cancel()
		if err == nil {
			utils.Logger.Infof("tenancy-service connected to DB on attempt %d", i)
			break
		}

		utils.Logger.WithError(err).Warnf(
			"Failed DB connect on attempt %d/%d. Retrying in %v...",
			i, maxRetries, backoff,
		)

		if i == maxRetries {
			return nil, fmt.Errorf("unable to connect after %d attempts: %w", maxRetries, err)
		}
		time.Sleep(backoff)
		backoff *= 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	defer cancel()
	if err := repositories.Migrate(ctx, dbPool); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	app := &App{
		Config: cfg,
		Store:  repositories.NewPostgresStore(dbPool, dbPool.Ping),
		DB:     dbPool,
	}
	return app, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		utils.Logger.Info("tenancy-service DB connection closed.")
	}
}

func newDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	return pgxpool.ConnectConfig(ctx, cfg)
}
