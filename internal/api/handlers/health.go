// health.go — обработчики health endpoints Student UI.
// /health/live — liveness probe (процесс жив)
// /health/ready — readiness probe (backend коллекции студентов доступен)
// /metrics — Prometheus метрики
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	apierrors "github.com/bigkaa/goartstore/student-ui/internal/api/errors"
	"github.com/bigkaa/goartstore/student-ui/internal/config"
	"github.com/bigkaa/goartstore/student-ui/internal/storeclient"
)

// serviceName — имя сервиса в ответах health endpoints.
const serviceName = "student-ui"

// readyTimeout — таймаут проверки backend в readiness probe.
const readyTimeout = 3 * time.Second

// BackendChecker — проверка доступности backend (GET /).
// Реализуется *storeclient.Client.
type BackendChecker interface {
	CheckHealth(ctx context.Context) (string, error)
}

// DependencyHealth — текущее состояние зависимостей из topologymetrics.
// Реализуется *service.DephealthService.
type DependencyHealth interface {
	Health() map[string]bool
}

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	backend     BackendChecker
	deps        DependencyHealth
	promHandler http.Handler
}

// NewHealthHandler создаёт обработчик health endpoints.
// backend может быть nil (readiness вернёт "fail"), deps — nil, если
// topologymetrics не запущен.
func NewHealthHandler(backend BackendChecker, deps DependencyHealth) *HealthHandler {
	return &HealthHandler{
		backend:     backend,
		deps:        deps,
		promHandler: promhttp.Handler(),
	}
}

// healthCheckResult — результат проверки одной зависимости.
type healthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// healthLiveResponse — ответ liveness probe.
type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

// healthReadyResponse — ответ readiness probe.
type healthReadyResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	Checks    struct {
		Backend healthCheckResult `json:"backend"`
	} `json:"checks"`
	// Dependencies — состояние зависимостей по данным topologymetrics
	Dependencies map[string]bool `json:"dependencies,omitempty"`
}

// HealthLive — liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	resp := healthLiveResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// HealthReady — readiness probe. Проверяет backend через GET /.
// Возвращает 200 (ok) или 503 (fail).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	resp := healthReadyResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	}

	if h.backend != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if _, err := h.backend.CheckHealth(ctx); err != nil {
			resp.Checks.Backend = healthCheckResult{Status: "fail", Message: storeclient.Message(err)}
		} else {
			resp.Checks.Backend = healthCheckResult{Status: "ok"}
		}
	} else {
		resp.Checks.Backend = healthCheckResult{Status: "fail", Message: "не инициализирован"}
	}

	if h.deps != nil {
		resp.Dependencies = h.deps.Health()
	}

	resp.Status = resp.Checks.Backend.Status

	w.Header().Set("Content-Type", "application/json")
	if resp.Status == "fail" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

// NotFound — JSON-ответ 404 для неизвестных путей.
func NotFound(w http.ResponseWriter, r *http.Request) {
	apierrors.NotFound(w, "путь не найден: "+r.URL.Path)
}

// MethodNotAllowed — JSON-ответ 405.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	apierrors.MethodNotAllowed(w, "метод "+r.Method+" не поддерживается для "+r.URL.Path)
}
