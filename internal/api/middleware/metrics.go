// metrics.go — Prometheus HTTP метрики для Student UI.
// Регистрирует метрики: su_http_requests_total, su_http_request_duration_seconds.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "su_http_requests_total",
			Help: "Общее количество HTTP-запросов к Student UI",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "su_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к Student UI в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Нормализуем путь для лейблов метрик
			// (заменяем id записей на {id} для предотвращения кардинальности)
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath заменяет id записей в пути на {id} для предотвращения
// взрывного роста кардинальности метрик.
// /partials/students/42 → /partials/students/{id}
func normalizePath(path string) string {
	// Статические пути — возвращаем как есть
	switch path {
	case "/", "/students",
		"/health/live", "/health/ready", "/metrics",
		"/set-language",
		"/partials/students",
		"/partials/students/refresh",
		"/partials/students-table",
		"/partials/student-form",
		"/partials/toasts":
		return path
	}

	if strings.HasPrefix(path, "/static/") {
		return "/static/*"
	}

	// Динамические пути с id записи
	prefixes := []struct {
		prefix string
		result string
	}{
		{"/partials/students/", "/partials/students/{id}"},
		{"/partials/student-form/", "/partials/student-form/{id}"},
		{"/partials/student-delete/", "/partials/student-delete/{id}"},
	}

	for _, p := range prefixes {
		if len(path) > len(p.prefix) && strings.HasPrefix(path, p.prefix) {
			return p.result
		}
	}

	return "other"
}
