package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/tyre-inventory/internal/apperr"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/config"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/http/apierr"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/http/metric"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/http/middleware"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/http/swagger"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/repository"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/service"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg      config.HTTP
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metric.Metrics

	tyreSvc service.TyreService
	health  repository.HealthChecker
}

type CleanupFunc func(ctx context.Context) error

// handlerFunc is an HTTP handler that reports failures by returning them.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	tyreSvc service.TyreService,
	health repository.HealthChecker,
) *Service {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Service{
		cfg:      cfg,
		logger:   log.With(slog.String("service", "http")),
		registry: registry,
		metrics:  metric.New(registry),
		tyreSvc:  tyreSvc,
		health:   health,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r, err := s.Router()
	if err != nil {
		return nil, err
	}

	return s.RunWithServer(ctx, r)
}

// Router builds the complete handler tree: middlewares, docs, metrics,
// health and the API routes under the configured prefix.
func (s *Service) Router() (chi.Router, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		if err := swagger.Register(r); err != nil {
			return nil, fmt.Errorf("register swagger: %w", err)
		}
	}

	s.RegisterHandlers(r)

	return r, nil
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", s.cfg.Port, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	s.logger.InfoContext(ctx, "http server started", slog.String("addr", ln.Addr().String()))

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	h := newTyreHandler(s.tyreSvc)

	api := func(r chi.Router) {
		r.Get("/", s.handle(h.Root))
		r.Route("/tyres", func(r chi.Router) {
			r.Get("/", s.handle(h.ListTyres))
			r.Post("/", s.handle(h.CreateTyre))
			r.Get("/search", s.handle(h.SearchTyres))
			r.Get("/brands", s.handle(h.ListBrands))
			r.Put("/{id}", s.handle(h.UpdateTyre))
			r.Delete("/{id}", s.handle(h.DeleteTyre))
		})
	}

	if prefix := strings.TrimSuffix(s.cfg.PathPrefix, "/"); prefix != "" {
		r.Route(prefix, api)
	} else {
		api(r)
	}

	r.Get(middleware.HealthPath, s.handle(s.healthCheck))

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

func (s *Service) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

func (s *Service) healthCheck(w http.ResponseWriter, r *http.Request) error {
	ok, err := s.health.IsHealthy(r.Context())
	if err != nil {
		return apperr.StoreUnavailableErr.WrapParent(err)
	}
	if !ok {
		return apperr.StoreUnavailableErr
	}

	return writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return nil
}
