// Пакет server — HTTP-сервер Student UI с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на Ingress.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goartstore/student-ui/internal/api/handlers"
	"github.com/bigkaa/goartstore/student-ui/internal/api/middleware"
	"github.com/bigkaa/goartstore/student-ui/internal/config"
	uihandlers "github.com/bigkaa/goartstore/student-ui/internal/ui/handlers"
	"github.com/bigkaa/goartstore/student-ui/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/goartstore/student-ui/internal/ui/middleware"
	"github.com/bigkaa/goartstore/student-ui/internal/ui/static"
)

// UIComponents — компоненты HTML-интерфейса.
type UIComponents struct {
	StudentsHandler *uihandlers.StudentsHandler
	ViewSessions    *uimiddleware.ViewSessions
}

// Server — HTTP-сервер Student UI.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// ui может быть nil — тогда доступны только health и metrics.
func New(cfg *config.Config, logger *slog.Logger, health *handlers.HealthHandler, ui *UIComponents) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(logger, health, ui),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает маршруты: health/metrics, статика и страницы UI.
func NewRouter(logger *slog.Logger, health *handlers.HealthHandler, ui *UIComponents) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.RequestID())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.MethodNotAllowed)

	// Health и metrics проверяются Kubernetes напрямую
	router.Get("/health/live", health.HealthLive)
	router.Get("/health/ready", health.HealthReady)
	router.Get("/metrics", health.GetMetrics)

	// Встроенные CSS/JS
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	if ui == nil {
		return router
	}

	router.Group(func(r chi.Router) {
		r.Use(i18n.Middleware())

		r.Post("/set-language", uihandlers.HandleSetLanguage)

		r.Group(func(r chi.Router) {
			r.Use(ui.ViewSessions.Middleware())

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/students", http.StatusFound)
			})

			h := ui.StudentsHandler
			r.Get("/students", h.HandlePage)
			r.Route("/partials", func(r chi.Router) {
				r.Get("/students-table", h.HandleTablePartial)
				r.Post("/students/refresh", h.HandleRefresh)
				r.Post("/students/clear-search", h.HandleClearSearch)
				r.Post("/students", h.HandleCreate)
				r.Put("/students/{id}", h.HandleUpdate)
				r.Delete("/students/{id}", h.HandleDelete)
				r.Get("/student-form", h.HandleAddForm)
				r.Get("/student-form/{id}", h.HandleEditForm)
				r.Get("/student-delete/{id}", h.HandleDeleteConfirm)
				r.Post("/dialog/cancel", h.HandleCancelDialog)
				r.Get("/toasts", h.HandleToasts)
			})
		})
	})

	return router
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
