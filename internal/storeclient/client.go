// Пакет storeclient — HTTP-клиент коллекции студентов на backend.
// Единственный компонент, выполняющий сетевые запросы к backend.
// Операции: ListAll (GET /students), GetByID (GET /students/{id}),
// Create (POST /students), Update (PUT /students/{id}),
// Delete (DELETE /students/{id}), CheckHealth (GET /).
// Чтения повторяются без задержки, изменения не повторяются.
package storeclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bigkaa/goartstore/student-ui/internal/domain/model"
)

// Имена операций для логов и метрик.
const (
	opListAll     = "list_all"
	opGetByID     = "get_by_id"
	opCreate      = "create"
	opUpdate      = "update"
	opDelete      = "delete"
	opCheckHealth = "check_health"
)

// Максимальный размер тела ошибки, сохраняемого для логов.
const maxErrorBody = 4096

// Client — HTTP-клиент backend коллекции студентов.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	readRetries int
	logger      *slog.Logger
}

// New создаёт клиент backend.
// baseURL — адрес backend (например, http://localhost:8084).
// timeout — таймаут одной попытки запроса.
// caCertPath — путь к CA-сертификату для TLS (пустая строка — стандартный пул).
// readRetries — количество дополнительных попыток для ListAll и GetByID.
func New(
	baseURL string,
	timeout time.Duration,
	caCertPath string,
	readRetries int,
	logger *slog.Logger,
) (*Client, error) {
	httpClient := &http.Client{Timeout: timeout}

	if caCertPath != "" {
		tlsConfig, err := buildTLSConfig(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата backend: %w", err)
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
		logger.Info("CA-сертификат backend добавлен в пул доверия",
			slog.String("ca_cert", caCertPath),
		)
	}

	if readRetries < 0 {
		readRetries = 0
	}

	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		readRetries: readRetries,
		logger:      logger.With(slog.String("component", "store_client")),
	}, nil
}

// BaseURL возвращает адрес backend.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListAll запрашивает всю коллекцию студентов.
// Порядок записей — как вернул backend.
func (c *Client) ListAll(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	err := c.withReadRetry(ctx, opListAll, func() error {
		students = nil
		return c.doJSON(ctx, opListAll, http.MethodGet, "/students", nil, &students)
	})
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []model.Student{}
	}
	return students, nil
}

// GetByID запрашивает одного студента.
func (c *Client) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	var student model.Student
	err := c.withReadRetry(ctx, opGetByID, func() error {
		student = model.Student{}
		return c.doJSON(ctx, opGetByID, http.MethodGet, studentPath(id), nil, &student)
	})
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// Create отправляет черновик и возвращает запись с назначенным backend id.
func (c *Client) Create(ctx context.Context, draft model.StudentDraft) (*model.Student, error) {
	var student model.Student
	if err := c.doJSON(ctx, opCreate, http.MethodPost, "/students", draft, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// Update заменяет поля записи с указанным id.
func (c *Client) Update(ctx context.Context, id int64, draft model.StudentDraft) (*model.Student, error) {
	var student model.Student
	if err := c.doJSON(ctx, opUpdate, http.MethodPut, studentPath(id), draft, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// Delete удаляет запись с указанным id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.doJSON(ctx, opDelete, http.MethodDelete, studentPath(id), nil, nil)
}

// CheckHealth запрашивает GET / и возвращает текстовый ответ backend.
// Проверка доступности, не связана с CRUD-операциями.
func (c *Client) CheckHealth(ctx context.Context) (string, error) {
	resp, err := c.send(ctx, opCheckHealth, http.MethodGet, "/", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return "", newDecodeError(resp.StatusCode, fmt.Errorf("чтение ответа %s: %w", opCheckHealth, readErr))
	}
	return string(body), nil
}

// withReadRetry выполняет чтение, повторяя его до readRetries раз при любой ошибке.
// Задержки между попытками нет. Отменённый контекст прекращает повторы.
func (c *Client) withReadRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; attempt <= c.readRetries; attempt++ {
		if attempt > 0 {
			if ctx.Err() != nil {
				break
			}
			backendRetriesTotal.WithLabelValues(op).Inc()
			c.logger.WarnContext(ctx, "Повторная попытка чтения из backend",
				slog.String("operation", op),
				slog.Int("attempt", attempt+1),
				slog.String("error", errorDetail(err)),
			)
		}

		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}

// doJSON выполняет запрос и декодирует JSON-ответ в out (если out != nil).
func (c *Client) doJSON(ctx context.Context, op, method, path string, body, out any) error {
	resp, err := c.send(ctx, op, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		decodeErr := newDecodeError(resp.StatusCode, fmt.Errorf("декодирование ответа %s: %w", op, err))
		c.logError(ctx, op, method, path, decodeErr)
		return decodeErr
	}
	return nil
}

// send выполняет одну попытку запроса. Неуспешный статус закрывает тело
// и возвращается как классифицированная *Error.
func (c *Client) send(ctx context.Context, op, method, path string, body any) (*http.Response, error) {
	reqBody := io.Reader(http.NoBody)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, newClientError(fmt.Errorf("кодирование тела %s: %w", op, err))
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, newClientError(fmt.Errorf("создание запроса %s: %w", op, err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL из конфигурации
	if err != nil {
		observe(op, 0, time.Since(start).Seconds())
		transportErr := newTransportError(fmt.Errorf("запрос %s к %s: %w", op, c.baseURL, err))
		c.logError(ctx, op, method, path, transportErr)
		return nil, transportErr
	}
	observe(op, resp.StatusCode, time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := newStatusError(resp.StatusCode, strings.TrimSpace(string(data)))
		c.logError(ctx, op, method, path, statusErr)
		return nil, statusErr
	}

	return resp, nil
}

// logError пишет в лог исходную причину сбоя.
func (c *Client) logError(ctx context.Context, op, method, path string, err *Error) {
	c.logger.ErrorContext(ctx, "Ошибка запроса к backend",
		slog.String("operation", op),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", err.Status),
		slog.String("error", errorDetail(err)),
	)
}

// errorDetail возвращает исходную причину ошибки для логов.
func errorDetail(err error) string {
	if err == nil {
		return ""
	}
	if storeErr, ok := err.(*Error); ok && storeErr.Err != nil {
		return storeErr.Err.Error()
	}
	return err.Error()
}

// studentPath возвращает путь к записи студента.
func studentPath(id int64) string {
	return fmt.Sprintf("/students/%d", id)
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	caCertPool.AppendCertsFromPEM(caCert)

	return &tls.Config{
		RootCAs:    caCertPool,
		MinVersion: tls.VersionTLS12,
	}, nil
}
