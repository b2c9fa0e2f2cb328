// Package metrics содержит Prometheus-метрики сервиса BookHeaven.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bookheaven"

const unmatchedRoute = "unmatched"

// Metrics хранит собственный реестр и все метрики сервиса.
// Методы безопасно вызывать на nil-получателе.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	inFlight        prometheus.Gauge

	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	ordersPlaced  prometheus.Counter
	cartMutations *prometheus.CounterVec
}

// New создаёт реестр и регистрирует в нём метрики сервиса, рантайма Go и процесса.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total catalog cache hits.",
		}, []string{"key"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total catalog cache misses.",
		}, []string{"key"}),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Total number of orders created at checkout.",
		}),
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Cart and favourites mutations by action and outcome.",
		}, []string{"list", "action", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.requestTotal,
		m.inFlight,
		m.cacheHits,
		m.cacheMisses,
		m.ordersPlaced,
		m.cartMutations,
	)

	return m
}

// Registry возвращает реестр метрик.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Middleware записывает длительность, количество и число одновременных запросов.
// Маршрут берётся из шаблона chi, чтобы идентификаторы в пути не раздували кардинальность.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		code := strconv.Itoa(status)
		m.requestDuration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
		m.requestTotal.WithLabelValues(r.Method, route, code).Inc()
	})
}

// CacheHit учитывает попадание в кэш каталога.
func (m *Metrics) CacheHit(key string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(key).Inc()
}

// CacheMiss учитывает промах кэша каталога.
func (m *Metrics) CacheMiss(key string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(key).Inc()
}

// OrdersPlaced учитывает созданные при оформлении заказы.
func (m *Metrics) OrdersPlaced(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ordersPlaced.Add(float64(n))
}

// ListMutation учитывает изменение корзины или избранного.
// changed = false означает, что операция ничего не изменила.
func (m *Metrics) ListMutation(list, action string, changed bool) {
	if m == nil {
		return
	}
	outcome := "changed"
	if !changed {
		outcome = "noop"
	}
	m.cartMutations.WithLabelValues(list, action, outcome).Inc()
}
