// Package rpc serves the read-only query API over the runtime state, the
// archived events and the live event stream.
package rpc

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"shellchain/core/events"
	"shellchain/core/runtime"
	"shellchain/indexer"
	"shellchain/native/incubation"
	"shellchain/native/world"
	"shellchain/observability"
	"shellchain/observability/logging"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Backend is the query surface of the runtime.
type Backend interface {
	World() (runtime.WorldInfo, error)
	Inventory() ([]runtime.InventoryEntry, error)
	Preorder(id uint32) (world.Preorder, bool, error)
	PendingPreordersFrom(start uint32, limit int) ([]world.Preorder, uint32, error)
	PendingPreorderCount() (uint32, error)
	PreorderResults(account [20]byte) ([]world.Preorder, error)
	Balance(account [20]byte) (free, reserved *uint256.Int, err error)
	Owned(collection uint32, account [20]byte) (uint32, error)
	Incubation(collection, nft uint32) (runtime.IncubationStatus, error)
	FoodInfo(account [20]byte) (incubation.FoodInfo, error)
}

// Archive answers historical event queries.
type Archive interface {
	Query(ctx context.Context, f indexer.Filter) ([]indexer.EventRecord, error)
	Count(ctx context.Context, f indexer.Filter) (int64, error)
}

// Subscriber streams committed event records.
type Subscriber interface {
	Subscribe(ctx context.Context, cursor string) (<-chan events.Record, func(), []events.Record)
}

// Config wires the server collaborators. Archive and Stream are optional; the
// matching routes answer 503 without them.
type Config struct {
	Backend   Backend
	Archive   Archive
	Stream    Subscriber
	Logger    *slog.Logger
	RateLimit RateLimit
	// Metrics exposes the default prometheus registry on /metrics.
	Metrics   bool
}

type Server struct {
	backend Backend
	archive Archive
	stream  Subscriber
	logger  *slog.Logger
	limiter *RateLimiter
	metrics bool
}

// NewServer validates cfg and builds a server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Backend == nil {
		return nil, errors.New("rpc: backend required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		backend: cfg.Backend,
		archive: cfg.Archive,
		stream:  cfg.Stream,
		logger:  logger,
		limiter: NewRateLimiter(cfg.RateLimit),
		metrics: cfg.Metrics,
	}, nil
}

// Handler returns the routed, instrumented API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.limiter.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/v1", func(v chi.Router) {
		v.Get("/world", s.observe("world", s.handleWorld))
		v.Get("/inventory", s.observe("inventory", s.handleInventory))
		v.Get("/preorders", s.observe("preorders", s.handlePendingPreorders))
		v.Get("/preorders/{id}", s.observe("preorder", s.handlePreorder))
		v.Get("/accounts/{addr}", s.observe("account", s.handleAccount))
		v.Get("/accounts/{addr}/preorders", s.observe("account_preorders", s.handleAccountPreorders))
		v.Get("/incubation/{collection}/{nft}", s.observe("incubation", s.handleIncubation))
		v.Get("/events", s.observe("events", s.handleEvents))
		v.Get("/events/stream", s.handleEventStream)
	})
	if s.metrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	return otelhttp.NewHandler(r, "shellchain.rpc")
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("query api listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// observe records latency and outcome of a JSON route.
func (s *Server) observe(route string, next func(http.ResponseWriter, *http.Request) int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		status := next(w, r)
		observability.API().Observe(route, status, time.Since(start))
		if status >= http.StatusInternalServerError {
			s.logger.Warn("query failed",
				slog.String("route", route),
				slog.String("path", r.URL.Path),
				slog.Int("status", status))
		}
	}
}
