// Package bootstrap wires the process-level runtime: database, schema, Redis
// and tracing.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"gighub/internal/cache"
	"gighub/internal/config"
	"gighub/internal/database"
	"gighub/internal/middleware"
	"gighub/internal/observability"
	"gighub/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	ApplySchema bool
	// SeedDemo fills an empty development database with demo data.
	SeedDemo bool
}

// Runtime holds the initialized process dependencies.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	// ShutdownTracing flushes and stops the tracer provider.
	ShutdownTracing func(context.Context) error
}

// InitRuntime connects to DB and Redis, starts tracing and optionally applies
// the schema and demo data. A nil Redis client means Redis was unreachable;
// the API then runs without caching.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  "gighub-api",
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: cfg.TracingSamplerRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(db, cfg); err != nil {
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	cache.InitRedis(cfg.RedisURL)

	if opts.SeedDemo {
		if err := seedDemo(ctx, cfg, db); err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	return &Runtime{DB: db, Redis: cache.GetClient(), ShutdownTracing: shutdownTracing}, nil
}

func seedDemo(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg.IsProduction() {
		return fmt.Errorf("refusing to seed demo data in %q", cfg.Env)
	}

	var posts int64
	if err := db.WithContext(ctx).Table("posts").Count(&posts).Error; err != nil {
		return err
	}
	if posts > 0 {
		middleware.Logger.Info("demo seed skipped; posts already present", slog.Int64("posts", posts))
		return nil
	}

	opts := seed.Options{NumUsers: 10, NumPosts: 30, OffersPerPost: 3, AcceptRatio: 0.3}
	_, err := seed.NewSeeder(db, opts).Seed(ctx, opts)
	return err
}
