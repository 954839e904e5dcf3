package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jencodes13/course-correction/internal/auth"
	"github.com/jencodes13/course-correction/internal/config"
	"github.com/jencodes13/course-correction/internal/genai"
	"github.com/jencodes13/course-correction/internal/monitoring"
	"github.com/jencodes13/course-correction/internal/server/ratelimit"
	"github.com/jencodes13/course-correction/internal/storage"
)

// localOrigins are always allowed alongside the configured production
// origin, so local clients work against any deployment.
var localOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"http://127.0.0.1:5173",
}

// MetricsFetcher is the monitoring dependency of the cloud-metrics handler.
type MetricsFetcher interface {
	Fetch(ctx context.Context, daysBack int) (*monitoring.Metrics, error)
}

// Server carries the handler dependencies.
type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	log        *zap.Logger
	validate   *validator.Validate

	generator genai.Generator
	resolver  genai.PartResolver
	verifier  auth.Verifier
	usage     auth.Recorder
	limiter   *ratelimit.Limiter
	metrics   MetricsFetcher // nil when monitoring is not configured
}

// New wires the server and its dependencies from configuration.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	client, err := genai.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}

	var downloader storage.Downloader
	if cfg.StorageEndpoint != "" {
		store, err := storage.New(cfg.StorageEndpoint, cfg.StorageAccessKey, cfg.StorageSecretKey, cfg.StorageUseSSL)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		downloader = store
	}

	var recorder auth.Recorder = auth.NopRecorder{}
	if cfg.DatabaseURL != "" {
		pg, err := auth.NewPGRecorder(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create usage recorder: %w", err)
		}
		recorder = pg
	}

	var store ratelimit.Store = ratelimit.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rs, err := ratelimit.NewRedisStore(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
		}
		store = rs
	}

	var metrics MetricsFetcher
	if cfg.MonitoringServiceAccount != "" {
		mc, err := monitoring.NewClient(cfg.MonitoringServiceAccount, cfg.MonitoringProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to create monitoring client: %w", err)
		}
		metrics = mc
	}

	s := &Server{
		cfg:       cfg,
		log:       log,
		validate:  validator.New(),
		generator: client,
		resolver:  genai.NewResolver(client, downloader, log),
		verifier:  auth.NewBackendVerifier(cfg.BackendURL, cfg.BackendServiceKey),
		usage:     recorder,
		limiter: ratelimit.New(store, ratelimit.Config{
			AnonDaily: cfg.RateLimitAnonDaily,
			UserDaily: cfg.RateLimitUserDaily,
			BypassKey: cfg.RateLimitBypassKey,
		}),
		metrics: metrics,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // slide generation makes multiple model calls
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Router builds the route tree with CORS and logging middleware.
func (s *Server) Router() http.Handler {
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  s.allowOrigin,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-RateLimit-Bypass"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	mux.Use(s.withLogging)

	mux.Get("/health", s.handleHealth)
	mux.Post("/analyze-course", s.handleAnalyzeCourse)
	mux.Post("/demo-slides", s.handleDemoSlides)
	mux.Post("/jurisdiction-lookup", s.handleJurisdictionLookup)
	mux.Post("/regulatory-update", s.handleRegulatoryUpdate)
	mux.Post("/visual-transform", s.handleVisualTransform)
	mux.Post("/cloud-metrics", s.handleCloudMetrics)

	return mux
}

// allowOrigin implements the CORS policy: the configured production origin
// plus fixed localhost entries. With no configured origin the request origin
// is echoed permissively, with a warning, so preview deployments work before
// configuration.
func (s *Server) allowOrigin(r *http.Request, origin string) bool {
	for _, local := range localOrigins {
		if origin == local {
			return true
		}
	}
	if s.cfg.AllowedOrigin == "" {
		s.log.Warn("no ALLOWED_ORIGIN configured, echoing request origin",
			zap.String("origin", origin))
		return true
	}
	return origin == s.cfg.AllowedOrigin
}

// withLogging logs one line per completed request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authenticate resolves the request's bearer token to a user id.
func (s *Server) authenticate(r *http.Request) (uuid.UUID, error) {
	token := auth.BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return uuid.Nil, auth.ErrUnauthenticated
	}
	return s.verifier.UserID(r.Context(), token)
}

// recordUsage persists a usage row. Failures are logged, never surfaced: a
// tracking outage must not fail the user's request.
func (s *Server) recordUsage(ctx context.Context, userID uuid.UUID, endpoint, model string, tokens int) {
	if userID == uuid.Nil {
		return
	}
	entry := auth.UsageEntry{UserID: userID, Endpoint: endpoint, Model: model, Tokens: tokens}
	if err := s.usage.Record(ctx, entry); err != nil {
		s.log.Warn("usage recording failed", zap.String("endpoint", endpoint), zap.Error(err))
	}
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	s.log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.limiter.Stop()
	return nil
}
