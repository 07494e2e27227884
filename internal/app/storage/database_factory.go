package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/labcatalog/catalog-sync/internal/config"
	"github.com/labcatalog/catalog-sync/internal/db"
	"github.com/labcatalog/catalog-sync/internal/status"
	"github.com/labcatalog/catalog-sync/internal/storage"
	"github.com/labcatalog/catalog-sync/internal/storage/postgres"
)

// DatabaseFactory creates PostgreSQL-backed storage components sharing one connection pool
type DatabaseFactory struct {
	pool        *pgxpool.Pool
	tracer      trace.Tracer
	poolOptions []db.Option
}

var _ Factory = (*DatabaseFactory)(nil)

// DatabaseFactoryOption is a functional option for configuring the DatabaseFactory
type DatabaseFactoryOption func(*DatabaseFactory)

// WithTracer sets the tracer for the gateway.
// If not set, tracing will be disabled (no-op).
func WithTracer(tracer trace.Tracer) DatabaseFactoryOption {
	return func(f *DatabaseFactory) {
		f.tracer = tracer
	}
}

// WithPoolOptions passes options through to db.NewPool
func WithPoolOptions(opts ...db.Option) DatabaseFactoryOption {
	return func(f *DatabaseFactory) {
		f.poolOptions = append(f.poolOptions, opts...)
	}
}

// NewDatabaseFactory creates a database-backed storage factory.
// It establishes a connection pool to the configured PostgreSQL database.
func NewDatabaseFactory(ctx context.Context, cfg *config.Config, opts ...DatabaseFactoryOption) (*DatabaseFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("database configuration is required for database storage type")
	}

	factory := &DatabaseFactory{}
	for _, opt := range opts {
		opt(factory)
	}

	slog.Info("Creating database-backed storage factory", "host", cfg.Database.Host, "database", cfg.Database.Database)

	pool, err := db.NewPool(ctx, cfg.Database, factory.poolOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	factory.pool = pool

	return factory, nil
}

// CreateGateway creates the PostgreSQL catalog gateway
func (d *DatabaseFactory) CreateGateway(_ context.Context) (storage.Gateway, error) {
	slog.Debug("Creating database-backed gateway")
	var opts []postgres.Option
	if d.tracer != nil {
		opts = append(opts, postgres.WithTracer(d.tracer))
		slog.Debug("Gateway tracing enabled")
	}
	return postgres.NewGateway(d.pool, opts...), nil
}

// CreateRunPersistence creates the run store on the sync_runs table
func (d *DatabaseFactory) CreateRunPersistence(_ context.Context) (status.RunPersistence, error) {
	slog.Debug("Creating database-backed run persistence")
	return postgres.NewRunStore(d.pool), nil
}

// Cleanup closes the connection pool
func (d *DatabaseFactory) Cleanup() {
	if d.pool != nil {
		slog.Info("Closing database connection pool")
		d.pool.Close()
	}
}

// Ping checks that the database answers, for readiness probes
func (d *DatabaseFactory) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}
