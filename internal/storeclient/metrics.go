// metrics.go — Prometheus-метрики обращений к backend.
package storeclient

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// backendRequestsTotal — попытки запросов к backend по операции и результату.
	backendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "su_backend_requests_total",
			Help: "Количество попыток HTTP-запросов к backend коллекции студентов",
		},
		[]string{"operation", "status"},
	)

	// backendRequestDuration — длительность одной попытки.
	backendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "su_backend_request_duration_seconds",
			Help:    "Длительность одной попытки HTTP-запроса к backend в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// backendRetriesTotal — повторные попытки идемпотентных чтений.
	backendRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "su_backend_retries_total",
			Help: "Количество повторных попыток чтения из backend",
		},
		[]string{"operation"},
	)
)

// observe записывает результат одной попытки. status 0 — ответ не получен.
func observe(operation string, status int, seconds float64) {
	backendRequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	backendRequestDuration.WithLabelValues(operation).Observe(seconds)
}
