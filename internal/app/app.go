// Package app wires configuration into the adapters and services shared by
// the server and the CLI.
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/adapters/catalog"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/adapters/credentials"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/adapters/upstream"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/config"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/services"
)

type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Catalog  *domain.BadgeCatalog
	Client   *upstream.Client
	Sessions *services.SessionService
	Access   *services.AccessTokenService
	Badges   *services.BadgeService
	Sync     *services.SyncService

	// DB and Redis are nil unless the badge store needs them.
	DB    *sqlx.DB
	Redis *redis.Client

	// PersistentCredentials is false when the token only lives in memory.
	PersistentCredentials bool
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	cat, err := catalog.Load(cfg.BadgeCatalog)
	if err != nil {
		return nil, err
	}
	a.Catalog = cat

	creds, persistent, err := newCredentialStore(cfg)
	if err != nil {
		return nil, err
	}
	a.PersistentCredentials = persistent

	repo, err := a.newBadgeRepository(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Client = upstream.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, creds, logger)
	a.Sessions = services.NewSessionService(a.Client, creds, logger)
	if a.Access, err = newAccessTokenService(cfg, logger); err != nil {
		a.Close()
		return nil, err
	}
	a.Badges = services.NewBadgeService(repo, cat, logger)
	agg := services.NewStatsAggregator(a.Client, services.FetchStrategy(cfg.FetchStrategy), logger)
	a.Sync = services.NewSyncService(agg, a.Badges, a.Sessions, logger)

	logger.Info("[APP] wired",
		zap.String("upstream", cfg.APIBaseURL),
		zap.String("strategy", cfg.FetchStrategy),
		zap.String("badge_store", cfg.BadgeStore),
		zap.Bool("badge_cache", cfg.BadgeCache),
		zap.Int("catalog_size", cat.Len()),
		zap.Bool("persistent_credentials", persistent),
	)
	return a, nil
}

func newCredentialStore(cfg *config.Config) (domain.CredentialStore, bool, error) {
	if cfg.CredentialPassphrase == "" {
		return credentials.NewInMemoryStore(), false, nil
	}
	store, err := credentials.NewFileStore(cfg.DataDir, cfg.CredentialPassphrase)
	if err != nil {
		return nil, false, fmt.Errorf("app: credential store: %w", err)
	}
	return store, true, nil
}

func (a *App) newBadgeRepository(ctx context.Context) (domain.UnlockedBadgeRepository, error) {
	cfg := a.Config

	if cfg.NeedsRedis() {
		rdb, err := cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		a.Redis = rdb
	}

	switch cfg.BadgeStore {
	case config.StoreFile:
		return repository.NewFileUnlockedBadgeRepository(filepath.Join(cfg.DataDir, "badges"))
	case config.StorePostgres:
		db, err := sqlx.Connect("pgx", cfg.DB.DSN())
		if err != nil {
			return nil, fmt.Errorf("app: failed to connect to database: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		a.DB = db

		pg := repository.NewPostgresUnlockedBadgeRepository(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		if cfg.BadgeCache {
			return repository.NewCachedUnlockedBadgeRepository(pg, a.Redis, a.Logger), nil
		}
		return pg, nil
	case config.StoreRedis:
		return repository.NewRedisUnlockedBadgeRepository(a.Redis), nil
	default:
		return repository.NewInMemoryUnlockedBadgeRepository(), nil
	}
}

// WithStrategy returns a sync service that fetches with strategy. Badges and
// sessions are shared with the default one.
func (a *App) WithStrategy(strategy services.FetchStrategy) *services.SyncService {
	agg := services.NewStatsAggregator(a.Client, strategy, a.Logger)
	return services.NewSyncService(agg, a.Badges, a.Sessions, a.Logger)
}

func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	return errors.Join(errs...)
}

func (a *App) Addr() string {
	return net.JoinHostPort(a.Config.Host, a.Config.Port)
}

func newAccessTokenService(cfg *config.Config, logger *zap.Logger) (*services.AccessTokenService, error) {
	secret := cfg.AccessSecret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("app: generate access secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		logger.Info("[APP] KANSO_ACCESS_SECRET not set, access tokens will not survive a restart")
	}
	return services.NewAccessTokenService(secret, "kanso-stats-gateway", cfg.AccessTTL)
}
