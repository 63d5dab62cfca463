package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_scheduler/internal/api"
	"github.com/Freeeeeet/tutor_scheduler/internal/metrics"
)

// Pinger проверка доступности базы для /healthz
type Pinger interface {
	Ping(ctx context.Context) error
}

// HTTPOptions параметры HTTP сервера
type HTTPOptions struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewRouter собирает маршруты: /healthz, /metrics и API
func NewRouter(handler *api.Handler, db Pinger, gatherer prometheus.Gatherer, m *metrics.Metrics, logger *zap.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(metricsMiddleware(m))

	r.HandleFunc("/healthz", healthHandler(db, logger)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	handler.Register(r)
	return r
}

// NewHTTPServer создаёт сервер; запуск и остановка на стороне вызывающего
func NewHTTPServer(opts HTTPOptions, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              opts.Addr,
		Handler:           router,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
}

func healthHandler(db Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db unavailable\n"))
			return
		}
		_, _ = w.Write([]byte("ok\n"))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func metricsMiddleware(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.ObserveHTTP(route, r.Method, rec.status, time.Since(started))
		})
	}
}
