package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/labcatalog/catalog-sync/internal/api"
	appstorage "github.com/labcatalog/catalog-sync/internal/app/storage"
	"github.com/labcatalog/catalog-sync/internal/catalog"
	"github.com/labcatalog/catalog-sync/internal/config"
	"github.com/labcatalog/catalog-sync/internal/httpclient"
	"github.com/labcatalog/catalog-sync/internal/sources"
	"github.com/labcatalog/catalog-sync/internal/storage/postgres"
	pkgsync "github.com/labcatalog/catalog-sync/internal/sync"
	"github.com/labcatalog/catalog-sync/internal/sync/coordinator"
	"github.com/labcatalog/catalog-sync/internal/telemetry"
)

const (
	defaultHTTPAddress    = ":8080"
	defaultRequestTimeout = 10 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
)

// SyncAppOption is a function that configures the sync app builder
type SyncAppOption func(*syncAppConfig) error

// syncAppConfig collects the inputs of NewSyncApp. Injected components replace
// the ones built from configuration.
type syncAppConfig struct {
	config *config.Config

	storageFactory appstorage.Factory
	catalog        sources.Catalog
	syncManager    pkgsync.Manager
	telemetry      *telemetry.Telemetry

	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
}

func baseConfig(opts ...SyncAppOption) (*syncAppConfig, error) {
	cfg := &syncAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return cfg, nil
}

// NewSyncApp builds every component described by the configuration
func NewSyncApp(ctx context.Context, opts ...SyncAppOption) (*SyncApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	if cfg.telemetry == nil {
		// No-op providers
		cfg.telemetry, err = telemetry.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create telemetry: %w", err)
		}
	}

	if cfg.storageFactory == nil {
		var storageOpts []appstorage.DatabaseFactoryOption
		if tracer := cfg.telemetry.Tracer(postgres.TracerName); tracer != nil {
			storageOpts = append(storageOpts, appstorage.WithTracer(tracer))
		}
		cfg.storageFactory, err = appstorage.NewStorageFactory(ctx, cfg.config, storageOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage factory: %w", err)
		}
	}

	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			cfg.storageFactory.Cleanup()
		}
	}()

	components, err := buildSyncComponents(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync components: %w", err)
	}

	httpServer, err := buildHTTPServer(ctx, cfg, components)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	cleanupNeeded = false
	return &SyncApp{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		cleanup:    cfg.storageFactory.Cleanup,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) SyncAppOption {
	return func(cfg *syncAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the status API listen address
func WithAddress(addr string) SyncAppOption {
	return func(cfg *syncAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return fmt.Errorf("address is not valid: %w", err)
		}
		n, err := strconv.Atoi(port)
		if err != nil || n < 0 || n > 65535 {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host != "" && host != "localhost" && net.ParseIP(host) == nil {
			return fmt.Errorf("address host must be an IP or localhost: %s", addr)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares replaces the default HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) SyncAppOption {
	return func(cfg *syncAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithStorageFactory injects a storage factory
func WithStorageFactory(f appstorage.Factory) SyncAppOption {
	return func(cfg *syncAppConfig) error {
		cfg.storageFactory = f
		return nil
	}
}

// WithCatalog injects the remote catalog client
func WithCatalog(c sources.Catalog) SyncAppOption {
	return func(cfg *syncAppConfig) error {
		cfg.catalog = c
		return nil
	}
}

// WithSyncManager injects a sync manager
func WithSyncManager(sm pkgsync.Manager) SyncAppOption {
	return func(cfg *syncAppConfig) error {
		cfg.syncManager = sm
		return nil
	}
}

// WithTelemetry sets the telemetry providers used for spans and metrics
func WithTelemetry(t *telemetry.Telemetry) SyncAppOption {
	return func(cfg *syncAppConfig) error {
		cfg.telemetry = t
		return nil
	}
}

// buildSyncComponents builds the run store, sync manager and coordinator
func buildSyncComponents(ctx context.Context, b *syncAppConfig) (*AppComponents, error) {
	slog.Info("Initializing sync components", "storage", b.config.GetStorageType())

	runs, err := b.storageFactory.CreateRunPersistence(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create run persistence: %w", err)
	}

	if b.syncManager == nil {
		gateway, err := b.storageFactory.CreateGateway(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create gateway: %w", err)
		}

		if b.catalog == nil {
			b.catalog, err = buildCatalog(b.config, b.telemetry)
			if err != nil {
				return nil, err
			}
		}

		syncMetrics, err := b.telemetry.SyncMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to create sync metrics: %w", err)
		}

		b.syncManager = pkgsync.NewDefaultSyncManager(
			b.catalog,
			gateway,
			pkgsync.SettingsFromConfig(b.config),
			pkgsync.WithRunPersistence(runs),
			pkgsync.WithSyncMetrics(syncMetrics),
			pkgsync.WithTracer(b.telemetry.Tracer(pkgsync.TracerName)),
		)
	}

	coord := coordinator.New(b.syncManager, runs, b.config)
	slog.Info("Sync components initialized successfully")

	return &AppComponents{
		Manager:     b.syncManager,
		Coordinator: coord,
		Runs:        runs,
	}, nil
}

// buildCatalog builds the transport to both remote services. Fetches are paced by
// the governor each sweep brings along.
func buildCatalog(cfg *config.Config, tel *telemetry.Telemetry) (sources.Catalog, error) {
	session, err := cfg.Academy.GetCredential(config.EnvAcademySession)
	if err != nil {
		return nil, fmt.Errorf("academy credentials: %w", err)
	}
	token, err := cfg.Labs.GetCredential(config.EnvLabsToken)
	if err != nil {
		return nil, fmt.Errorf("labs credentials: %w", err)
	}

	fetchMetrics, err := tel.FetchMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch metrics: %w", err)
	}

	transport := sources.NewTransport(
		httpclient.NewDefaultClient(cfg.Sync.GetRequestTimeout()),
		map[catalog.Service]string{
			catalog.ServiceAcademy: cfg.Academy.BaseURL,
			catalog.ServiceLabs:    cfg.Labs.BaseURL,
		},
		sources.Credentials{AcademySession: session, LabsToken: token},
		sources.WithFetchMetrics(fetchMetrics),
	)

	slog.Info("Remote catalog transport configured",
		"academy", cfg.Academy.BaseURL,
		"academy_delay", cfg.Academy.GetRequestDelay(),
		"labs", cfg.Labs.BaseURL,
		"labs_delay", cfg.Labs.GetRequestDelay(),
	)
	return sources.NewClient(transport), nil
}

// buildHTTPServer builds the status API server with router and middleware
func buildHTTPServer(_ context.Context, b *syncAppConfig, components *AppComponents) (*http.Server, error) {
	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	var instrumentation []func(http.Handler) http.Handler
	if b.telemetry != nil {
		httpMetrics, err := b.telemetry.HTTPMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
		}
		instrumentation = append(instrumentation,
			telemetry.TracingMiddleware(b.telemetry.HTTPTracerProvider()),
			httpMetrics.Middleware,
		)
	}

	serverOpts := []api.ServerOption{
		api.WithMiddlewares(append(instrumentation, b.middlewares...)...),
	}
	if b.telemetry != nil && b.telemetry.MetricsHandler() != nil {
		serverOpts = append(serverOpts, api.WithMetricsHandler(b.telemetry.MetricsHandler()))
	}
	if pinger, ok := b.storageFactory.(interface{ Ping(context.Context) error }); ok {
		serverOpts = append(serverOpts, api.WithReadinessCheck(pinger.Ping))
	}

	router := api.NewServer(components.Coordinator, components.Runs, serverOpts...)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
