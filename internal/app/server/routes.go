package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"allowhost/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Checker evaluates a raw hostname query against the allow-list.
type Checker interface {
	Evaluate(ctx context.Context, raw string) (domain.CheckResult, error)
}

// HostStore exposes the store probes used by /healthz and GraphQL.
type HostStore interface {
	CountHosts(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

type Deps struct {
	Checker Checker
	Hosts   HostStore

	// Registry receives the check metrics. /metrics is served only when
	// ServeMetrics is set.
	Registry     *prometheus.Registry
	ServeMetrics bool
	CORS         bool
}

type Options struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type server struct {
	checker Checker
	hosts   HostStore
	metrics *metrics
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewHandler wires every route onto a fresh mux.
func NewHandler(deps Deps) (http.Handler, error) {
	if deps.Checker == nil {
		return nil, errors.New("server: checker is required")
	}

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	s := &server{
		checker: deps.Checker,
		hosts:   deps.Hosts,
		metrics: newMetrics(registry),
	}

	graphQL, err := newGraphQLHandler(deps.Checker, deps.Hosts)
	if err != nil {
		return nil, fmt.Errorf("server: graphql schema: %w", err)
	}

	router := http.NewServeMux()
	router.HandleFunc("GET /{$}", s.getIndex)
	router.HandleFunc("POST /{$}", s.postIndex)
	router.HandleFunc("GET /api/check", s.apiCheck)
	router.HandleFunc("POST /api/check", s.apiCheck)
	router.Handle("/graphql", graphQL)
	router.HandleFunc("GET /healthz", s.getHealth)
	router.HandleFunc("GET /version", getVersion)

	if deps.ServeMetrics {
		router.Handle("GET /metrics", metricsHandler(registry))
	}

	log.Debug("Routes opened")

	if deps.CORS {
		return enableCORS(router), nil
	}
	return router, nil
}

// OpenRoutes serves until ctx is cancelled, then shuts down gracefully.
func OpenRoutes(ctx context.Context, opts Options, deps Deps) error {
	handler, err := NewHandler(deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      handler,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("Starting allowhost on port :%d", opts.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		timeout := opts.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		log.Info("Shutting down api server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
