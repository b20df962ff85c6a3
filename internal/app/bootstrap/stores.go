package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/leadflow/internal/auth"
	appconfig "github.com/wolfman30/leadflow/internal/config"
	"github.com/wolfman30/leadflow/internal/leads"
	"github.com/wolfman30/leadflow/pkg/logging"
)

// Stores bundles the storage backends and the handles that own them.
type Stores struct {
	Leads    leads.Repository
	Users    auth.UserStore
	Sessions auth.SessionStore

	Pool  *pgxpool.Pool
	DB    *sql.DB
	Redis *redis.Client
}

// BuildStores connects Postgres and Redis when configured and falls back to
// in-memory stores otherwise.
func BuildStores(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*Stores, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	s := &Stores{}
	pool, err := BuildPostgresPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	db, err := BuildSQLDB(ctx, cfg)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}
	s.Pool, s.DB = pool, db

	if pool != nil && db != nil {
		s.Leads = leads.NewPostgresRepository(pool)
		s.Users = auth.NewPostgresUserStore(db)
	} else {
		logger.Warn("DATABASE_URL not set; using in-memory lead and user stores")
		s.Leads = leads.NewInMemoryRepository()
		s.Users = auth.NewInMemoryUserStore()
	}

	s.Redis = BuildRedisClient(ctx, cfg, logger, true)
	if s.Redis != nil {
		s.Sessions = auth.NewRedisSessionStore(s.Redis)
	} else {
		logger.Warn("redis not configured; token revocations are process-local")
		s.Sessions = auth.NewInMemorySessionStore()
	}
	return s, nil
}

// HealthChecks returns ping functions for the connected backends.
func (s *Stores) HealthChecks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{}
	if s.Pool != nil {
		checks["postgres"] = s.Pool.Ping
	}
	if s.DB != nil {
		checks["sql"] = s.DB.PingContext
	}
	if s.Redis != nil {
		client := s.Redis
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	return checks
}

// Close releases every connected backend.
func (s *Stores) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
	if s.DB != nil {
		_ = s.DB.Close()
	}
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
}
