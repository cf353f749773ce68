package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"leadscout/internal/config"
	apierrors "leadscout/internal/errors"
	"leadscout/internal/infrastructure"
	"leadscout/internal/leads"
	customMiddleware "leadscout/internal/middleware"
	"leadscout/internal/scheduler"
	"leadscout/internal/sentiment"
	"leadscout/internal/services"
	"leadscout/internal/synthetic"
	handlers "leadscout/internal/transport/http"
	ws "leadscout/internal/websocket"
)

// AppName is reported in startup logs
const AppName = "LeadScout"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Build         services.BuildInfo
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Services      *ServiceContainer
	Scheduler     *scheduler.Scheduler
	ErrorHandler  *apierrors.ErrorHandler

	clock    clockwork.Clock
	stopOnce sync.Once
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Leads     *services.LeadService
	Directory *services.DirectoryService
	Health    *services.HealthService
	Store     *services.DatasetStore
	WebSocket *ws.Hub
}

// Option configures an Application
type Option func(*Application)

// WithClock replaces the real clock, used by tests
func WithClock(clock clockwork.Clock) Option {
	return func(a *Application) { a.clock = clock }
}

// NewApplication loads configuration and the global logger, then builds the
// application
func NewApplication(build services.BuildInfo) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load configuration", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, apierrors.NewConfigError("failed to initialize logger", err)
	}

	return New(cfg, build, logger)
}

// New wires every component from cfg. Nothing is started until Start.
func New(cfg *config.Config, build services.BuildInfo, logger *slog.Logger, opts ...Option) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	a := &Application{
		Config: cfg,
		Build:  build,
		Logger: logger,
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(a)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", build.Version),
		slog.String("commit", build.Commit))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry, build.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	a.OTelProviders = otelProviders

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	a.Metrics = metrics

	a.ErrorHandler = apierrors.NewErrorHandler(logger, cfg.Logging.Development)

	if err := a.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.setupRouter()
	a.createServer()

	return a, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	hub := ws.NewHub(a.Logger, ws.WithClock(a.clock), ws.WithMeter(a.OTelProviders.Meter))

	scorer, err := a.newSentimentScorer()
	if err != nil {
		return err
	}

	engine, err := leads.NewEngine(a.Config.Scoring.Policy(), scorer,
		leads.WithWorkers(a.Config.Scoring.Workers),
		leads.WithBatchSize(a.Config.Scoring.BatchSize),
		leads.WithLogger(a.Logger))
	if err != nil {
		return apierrors.NewConfigError("invalid scoring configuration", err)
	}

	genOpts := []synthetic.Option{
		synthetic.WithClock(a.clock),
		synthetic.WithCount(a.Config.Dataset.SyntheticCount),
		synthetic.WithLogger(a.Logger),
	}
	if a.Config.Dataset.Seed != 0 {
		genOpts = append(genOpts, synthetic.WithSeed(a.Config.Dataset.Seed))
	}

	store := services.NewDatasetStore(a.clock)
	leadService := services.NewLeadService(engine, store,
		services.WithGenerator(synthetic.NewGenerator(genOpts...)),
		services.WithBroadcaster(hub),
		services.WithMetrics(a.Metrics),
		services.WithTopN(a.Config.Scoring.TopN),
		services.WithServiceLogger(a.Logger))

	directoryService, err := services.NewDirectoryServiceFromFile(a.Config.Directory.CompaniesFile, a.Logger)
	if err != nil {
		return apierrors.NewConfigError("failed to load company directory", err).
			WithContext("path", a.Config.Directory.CompaniesFile)
	}

	healthService := services.NewHealthService(a.Build, store, hub, a.clock, a.Logger)

	if spec := a.Config.Dataset.RefreshCron; spec != "" {
		a.Scheduler = scheduler.New(leadService, a.Logger)
		if err := a.Scheduler.Schedule(spec); err != nil {
			return apierrors.NewConfigError("invalid dataset refresh schedule", err)
		}
	}

	a.Services = &ServiceContainer{
		Leads:     leadService,
		Directory: directoryService,
		Health:    healthService,
		Store:     store,
		WebSocket: hub,
	}
	return nil
}

// newSentimentScorer builds the configured polarity provider wrapped with metrics
func (a *Application) newSentimentScorer() (sentiment.Scorer, error) {
	lexicon := sentiment.NewLexicon()
	sc := a.Config.Sentiment

	if sc.Provider != config.SentimentProviderHTTP {
		return services.NewMeteredScorer(lexicon, config.SentimentProviderLexicon, a.Metrics), nil
	}

	var fallback sentiment.Scorer
	if sc.FallbackToLexicon {
		fallback = lexicon
	}
	remote, err := sentiment.NewHTTPScorer(sentiment.HTTPConfig{
		Endpoint:      sc.Endpoint,
		APIKey:        sc.APIKey,
		Timeout:       sc.Timeout,
		RatePerSecond: sc.RatePerSecond,
		Burst:         sc.Burst,
		MaxFailures:   sc.MaxFailures,
		OpenTimeout:   sc.OpenTimeout,
	}, fallback, a.Logger)
	if err != nil {
		return nil, apierrors.NewConfigError("invalid sentiment provider", err)
	}
	return services.NewMeteredScorer(remote, config.SentimentProviderHTTP, a.Metrics), nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// these two leave the ResponseWriter alone so the websocket upgrade works
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).
		Handle("/ws", ws.NewHandler(a.Services.WebSocket, a.Config.WebSocket, a.allowedOrigins(), a.Logger))

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	// RequestID → RealIP → OTel → Logger → Recoverer → headers → CORS → rate limit → Timeout
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))

		secure := customMiddleware.DefaultSecureHeaders()
		secure.DevMode = a.Config.Logging.Development
		r.Use(secure.Handler)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.corsConfig()))
		}

		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.ErrorHandler, a.Logger).Handler)
		}

		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))

		a.setupAPIRoutes(r)
	})

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.AuditLog(a.Logger))
		bodyLimit := max(a.Config.Security.MaxUploadBytes, customMiddleware.DefaultMaxBodySize)
		r.Use(customMiddleware.ValidateJSONBody(bodyLimit, a.ErrorHandler))

		// set before mounting so the sub-routers inherit them
		r.NotFound(a.ErrorHandler.NotFound)
		r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		leadsHandler := handlers.NewLeadsHandler(a.Services.Leads, a.Config.Security.MaxUploadBytes, a.Logger, a.ErrorHandler)
		r.Mount("/leads", leadsHandler.Routes())

		directoryHandler := handlers.NewDirectoryHandler(a.Services.Directory, a.Logger, a.ErrorHandler)
		r.Mount("/companies", directoryHandler.Routes())
	})
}

func (a *Application) allowedOrigins() []string {
	if !a.Config.Security.EnableCORS {
		return nil
	}
	return a.Config.Security.AllowedOrigins
}

func (a *Application) corsConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// LoadInitialDataset publishes the configured start-up dataset: the initial
// file when set, otherwise a synthetic one when generation on start is enabled
func (a *Application) LoadInitialDataset(ctx context.Context) error {
	ds := a.Config.Dataset
	switch {
	case ds.InitialFile != "":
		info, err := a.Services.Leads.LoadFile(ctx, ds.InitialFile)
		if err != nil {
			return apierrors.NewParsingError("failed to load initial dataset", err).
				WithContext("path", ds.InitialFile)
		}
		a.Logger.InfoContext(ctx, "Initial dataset loaded", slog.String("version", info.Version))
	case ds.GenerateOnStart:
		if _, err := a.Services.Leads.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to generate initial dataset: %w", err)
		}
	default:
		a.Logger.InfoContext(ctx, "No initial dataset configured; waiting for upload or generate")
	}
	return nil
}

// Start loads the initial dataset, starts background services and begins
// serving on ln. A nil ln listens on the configured port. Serve errors cancel
// via onError.
func (a *Application) Start(ctx context.Context, ln net.Listener, onError func(error)) error {
	a.Services.WebSocket.Start()

	if err := a.LoadInitialDataset(ctx); err != nil {
		return err
	}

	if a.Scheduler != nil {
		a.Scheduler.Start()
	}

	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", a.Server.Addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", a.Server.Addr, err)
		}
	}

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			if onError != nil {
				onError(err)
			}
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", ln.Addr().String()),
		slog.String("level", a.Config.Logging.Level))
	return nil
}

// Stop gracefully stops the application. Only the first call has an effect.
func (a *Application) Stop(ctx context.Context) error {
	var err error
	a.stopOnce.Do(func() {
		err = a.stop(ctx)
	})
	return err
}

func (a *Application) stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	if a.Scheduler != nil {
		if err := a.Scheduler.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("scheduler shutdown: %w", err))
		}
	}

	a.Services.WebSocket.Stop()

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run serves until ctx is cancelled or the server fails, then shuts down
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if err := a.Start(ctx, nil, func(err error) { cancel(err) }); err != nil {
		_ = a.Stop(context.WithoutCancel(ctx))
		return err
	}

	<-ctx.Done()
	cause := context.Cause(ctx)
	a.Logger.InfoContext(ctx, "Stopping", slog.String("reason", cause.Error()))

	stopCtx, stopCancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout+5*time.Second)
	defer stopCancel()

	if err := a.Stop(stopCtx); err != nil {
		return err
	}
	if errors.Is(cause, context.Canceled) {
		return nil
	}
	return cause
}
