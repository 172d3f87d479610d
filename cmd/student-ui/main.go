// Точка входа Student UI — веб-интерфейс справочника студентов.
// Загружает конфигурацию, инициализирует i18n и клиент backend коллекции,
// создаёт хранилище сессий просмотра и UI handlers, запускает
// topologymetrics и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/bigkaa/goartstore/student-ui/internal/api/handlers"
	"github.com/bigkaa/goartstore/student-ui/internal/config"
	"github.com/bigkaa/goartstore/student-ui/internal/server"
	"github.com/bigkaa/goartstore/student-ui/internal/service"
	"github.com/bigkaa/goartstore/student-ui/internal/storeclient"
	uihandlers "github.com/bigkaa/goartstore/student-ui/internal/ui/handlers"
	"github.com/bigkaa/goartstore/student-ui/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/goartstore/student-ui/internal/ui/middleware"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Student UI запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("backend_url", cfg.BackendURL),
	)

	// Предупреждения о дефолтных значениях topologymetrics
	if os.Getenv("SU_DEPHEALTH_GROUP") == "" {
		logger.Warn("SU_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Каталоги переводов (en, ru)
	if _, err := i18n.Load(logger); err != nil {
		logger.Error("Ошибка загрузки переводов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. HTTP-клиент backend коллекции студентов
	storeClient, err := storeclient.New(
		cfg.BackendURL,
		cfg.BackendTimeout,
		cfg.BackendCACertPath,
		cfg.ReadRetries,
		logger,
	)
	if err != nil {
		logger.Error("Ошибка создания клиента backend", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.BackendCACertPath != "" {
		logger.Info("CA-сертификат загружен", slog.String("path", cfg.BackendCACertPath))
	}

	// 5. Сессии просмотра: контроллер списка, уведомления и диалоги вкладки
	viewSessions := service.NewViewSessionStore(
		storeClient,
		service.NewValidator(),
		cfg.ViewSessionsMax,
		cfg.ViewSessionTTL,
		cfg.NotifyDuration,
		logger,
	)

	// 6. topologymetrics — мониторинг доступности backend
	ctx := context.Background()
	var deps handlers.DependencyHealth
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"student-ui",
		cfg.DephealthGroup,
		cfg.BackendURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
		dephealthSvc = nil
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics",
			slog.String("error", startErr.Error()),
		)
		dephealthSvc = nil
	} else {
		deps = dephealthSvc
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 7. Health handler (readiness проверяет backend через GET /)
	healthHandler := handlers.NewHealthHandler(storeClient, deps)

	// 8. UI handlers и middleware сессий
	uiComponents := &server.UIComponents{
		StudentsHandler: uihandlers.NewStudentsHandler(logger),
		ViewSessions:    uimiddleware.NewViewSessions(viewSessions, cfg.SecureCookie, logger),
	}
	logger.Info("Student UI инициализирован",
		slog.Int("view_sessions_max", cfg.ViewSessionsMax),
		slog.String("view_session_ttl", cfg.ViewSessionTTL.String()),
		slog.Bool("secure_cookie", cfg.SecureCookie),
	)

	// 9. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, healthHandler, uiComponents)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 10. Остановка фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Student UI остановлен")
}
