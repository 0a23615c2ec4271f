// Package metrics содержит Prometheus-метрики HTTP-сервера и оформления заказов.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmeshcher/tuning-shop/internal/model"
)

const unmatchedRoute = "unmatched"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"code", "method", "path"},
	)

	httpRequestsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed.",
		},
	)

	ordersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shop_orders_created_total",
			Help: "Total number of orders created at checkout.",
		},
	)

	orderRevenue = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shop_order_revenue_roubles_total",
			Help: "Sum of order totals at checkout, in roubles.",
		},
	)

	orderTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_order_status_transitions_total",
			Help: "Order status changes by target status.",
		},
		[]string{"status"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware считает запросы и их длительность. Путь берётся из шаблона маршрута chi,
// чтобы идентификаторы в URL не раздували число серий.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		path := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				path = p
			}
		}

		httpRequestsTotal.WithLabelValues(strconv.Itoa(rw.statusCode), r.Method, path).Inc()
		httpRequestsDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// ObserveOrderCreated учитывает оформленный заказ.
func ObserveOrderCreated(o model.Order) {
	ordersCreated.Inc()
	orderRevenue.Add(float64(o.TotalPrice))
}

// ObserveStatusChange учитывает смену статуса заказа.
func ObserveStatusChange(status model.OrderStatus) {
	orderTransitions.WithLabelValues(string(status)).Inc()
}

// Handler возвращает обработчик эндпоинта /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
