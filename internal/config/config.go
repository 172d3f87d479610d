// Пакет config — загрузка и валидация конфигурации Student UI
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Student UI.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// --- Backend коллекции студентов ---

	// Базовый URL backend (без trailing slash)
	BackendURL string
	// Таймаут одной попытки HTTP-запроса к backend
	BackendTimeout time.Duration
	// Путь к CA-сертификату для https backend (опционально)
	BackendCACertPath string
	// Количество дополнительных попыток для чтения (list/get)
	ReadRetries int

	// --- UI ---

	// Длительность показа toast-уведомлений
	NotifyDuration time.Duration
	// Максимальное количество одновременно хранимых view-сессий
	ViewSessionsMax int
	// Время жизни неактивной view-сессии
	ViewSessionTTL time.Duration
	// Флаг Secure у cookie сессии (UI за HTTPS)
	SecureCookie bool

	// --- topologymetrics ---

	// Имя группы в метриках зависимостей
	DephealthGroup string
	// Интервал проверки backend
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// SU_PORT — порт HTTP-сервера (по умолчанию 4200)
	cfg.Port, err = getEnvInt("SU_PORT", 4200)
	if err != nil {
		return nil, fmt.Errorf("SU_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("SU_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// SU_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("SU_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("SU_LOG_LEVEL: %w", err)
	}

	// SU_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("SU_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("SU_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("SU_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SU_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("SU_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SU_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("SU_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SU_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- Backend ---

	// SU_BACKEND_URL — URL коллекции студентов (по умолчанию http://localhost:8084)
	cfg.BackendURL = strings.TrimRight(getEnvDefault("SU_BACKEND_URL", "http://localhost:8084"), "/")
	if err := validateBackendURL(cfg.BackendURL); err != nil {
		return nil, fmt.Errorf("SU_BACKEND_URL: %w", err)
	}

	// SU_BACKEND_TIMEOUT — таймаут одной попытки запроса (по умолчанию 30s)
	cfg.BackendTimeout, err = getEnvDuration("SU_BACKEND_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SU_BACKEND_TIMEOUT: %w", err)
	}
	if cfg.BackendTimeout <= 0 {
		return nil, fmt.Errorf("SU_BACKEND_TIMEOUT: значение должно быть больше нуля")
	}

	// SU_BACKEND_CA_CERT_PATH — CA-сертификат backend (опционально)
	cfg.BackendCACertPath = getEnvDefault("SU_BACKEND_CA_CERT_PATH", "")

	// SU_READ_RETRIES — повторные попытки чтения (по умолчанию 2, всего 3 попытки)
	cfg.ReadRetries, err = getEnvInt("SU_READ_RETRIES", 2)
	if err != nil {
		return nil, fmt.Errorf("SU_READ_RETRIES: %w", err)
	}
	if cfg.ReadRetries < 0 || cfg.ReadRetries > 10 {
		return nil, fmt.Errorf("SU_READ_RETRIES: значение %d вне допустимого диапазона 0-10", cfg.ReadRetries)
	}

	// --- UI ---

	// SU_NOTIFY_DURATION — время показа уведомлений (по умолчанию 4s)
	cfg.NotifyDuration, err = getEnvDuration("SU_NOTIFY_DURATION", 4*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SU_NOTIFY_DURATION: %w", err)
	}

	cfg.ViewSessionsMax, err = getEnvInt("SU_VIEW_SESSIONS_MAX", 1000)
	if err != nil {
		return nil, fmt.Errorf("SU_VIEW_SESSIONS_MAX: %w", err)
	}
	if cfg.ViewSessionsMax < 1 {
		return nil, fmt.Errorf("SU_VIEW_SESSIONS_MAX: значение %d должно быть не меньше 1", cfg.ViewSessionsMax)
	}

	cfg.ViewSessionTTL, err = getEnvDuration("SU_VIEW_SESSION_TTL", 12*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("SU_VIEW_SESSION_TTL: %w", err)
	}
	if cfg.ViewSessionTTL <= 0 {
		return nil, fmt.Errorf("SU_VIEW_SESSION_TTL: значение должно быть больше нуля")
	}

	// SU_SECURE_COOKIE — Secure у cookie сессии (по умолчанию false)
	cfg.SecureCookie, err = getEnvBool("SU_SECURE_COOKIE", false)
	if err != nil {
		return nil, fmt.Errorf("SU_SECURE_COOKIE: %w", err)
	}

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("SU_DEPHEALTH_GROUP", "student-ui")

	cfg.DephealthCheckInterval, err = getEnvDuration("SU_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SU_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	// SU_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("SU_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SU_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// validateBackendURL проверяет, что URL абсолютный и использует http(s).
func validateBackendURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("некорректный URL %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("недопустимая схема %q, допустимые: http, https", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("в URL %q не указан хост", raw)
	}
	return nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
