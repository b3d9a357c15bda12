package router

import (
	"fmt"
	"net/http"

	_ "env-access-broker/docs"
	"env-access-broker/internal/adapters/notebook"
	mem "env-access-broker/internal/adapters/storage/memory"
	"env-access-broker/internal/config"
	"env-access-broker/internal/domain/accessgrants"
	"env-access-broker/internal/domain/envrequests"
	"env-access-broker/internal/middleware"
	"env-access-broker/internal/platform/logger"
	"env-access-broker/internal/platform/metrics"
	"env-access-broker/internal/ports/downstream"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Config config.Config

	Logger  logger.Logger    // nil => descarta
	Metrics *metrics.Metrics // nil => registry propio

	// Opcionales: si no vienen se usan los in-memory / el probe real del notebook.
	EnvRequests envrequests.Repository
	Registry    accessgrants.Registry
	Probe       downstream.Checker
}

// Router es el handler HTTP más los services que el proceso necesita por fuera
// (el sweeper usa Grants).
type Router struct {
	http.Handler

	Grants      *accessgrants.Service
	EnvRequests *envrequests.Service
}

func NewRouter(opts Options) (*Router, error) {
	cfg := opts.Config

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	envRepo := opts.EnvRequests
	if envRepo == nil {
		envRepo = mem.NewEnvRequestRepo()
	}
	registry := opts.Registry
	if registry == nil {
		registry = mem.NewAccessGrantsRegistry()
	}
	probe := opts.Probe
	if probe == nil {
		p, err := notebook.NewProbe(notebook.Config{
			BaseURL:    cfg.NotebookBaseURL,
			HealthPath: cfg.NotebookHealthPath,
			Timeout:    cfg.NotebookHealthTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("router: %w", err)
		}
		probe = p
	}

	// Services por módulo
	envSvc := envrequests.NewService(envRepo)
	grantsSvc := accessgrants.NewService(registry, envSvc, probe, accessgrants.Options{
		AccessMode:        cfg.AccessMode,
		DefaultTTLMinutes: cfg.DefaultTTLMinutes,
		MaxTTLMinutes:     cfg.MaxTTLMinutes,
		PublicBaseURL:     cfg.PublicBaseURL,
		DownstreamBaseURL: cfg.NotebookBaseURL,
		NotebookRelPath:   cfg.NotebookRelPath,
		Logger:            log,
		Metrics:           m,
	})

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.HeaderUserID, chimw.RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Identity)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	envrequests.RegisterRoutes(r, envSvc)
	accessgrants.RegisterRoutes(r, grantsSvc, middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	return &Router{
		Handler:     r,
		Grants:      grantsSvc,
		EnvRequests: envSvc,
	}, nil
}
