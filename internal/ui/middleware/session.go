// Пакет middleware — HTTP middleware для Student UI.
// session.go — привязка запроса к сессии просмотра (cookie-based).
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bigkaa/goartstore/student-ui/internal/service"
)

// contextKey — тип для ключей контекста UI (избегаем коллизий с API middleware).
type contextKey string

const (
	// ContextKeyViewSession — сессия просмотра в контексте запроса.
	ContextKeyViewSession contextKey = "view_session"
)

// ViewSessionCookieName — cookie с идентификатором сессии просмотра.
const ViewSessionCookieName = "su_view"

// ViewSessions — middleware сессий просмотра.
// Сессия ищется по cookie; отсутствующая или истёкшая создаётся заново.
type ViewSessions struct {
	store  *service.ViewSessionStore
	secure bool
	logger *slog.Logger
}

// NewViewSessions создаёт middleware сессий просмотра.
// secure — выставлять Secure у cookie (UI за HTTPS).
func NewViewSessions(store *service.ViewSessionStore, secure bool, logger *slog.Logger) *ViewSessions {
	return &ViewSessions{
		store:  store,
		secure: secure,
		logger: logger.With(slog.String("component", "ui_view_sessions")),
	}
}

// Middleware возвращает HTTP middleware, помещающий сессию в контекст.
func (vs *ViewSessions) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if cookie, err := r.Cookie(ViewSessionCookieName); err == nil {
				id = cookie.Value
			}

			session, created := vs.store.GetOrCreate(id)
			if created {
				if id != "" {
					vs.logger.Debug("Сессия просмотра не найдена, создана новая",
						slog.String("remote_addr", r.RemoteAddr),
					)
				}
				http.SetCookie(w, &http.Cookie{
					Name:     ViewSessionCookieName,
					Value:    session.ID,
					Path:     "/",
					MaxAge:   int(vs.store.TTL().Seconds()),
					HttpOnly: true,
					Secure:   vs.secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), ContextKeyViewSession, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext извлекает сессию просмотра из контекста запроса.
// Возвращает nil, если запрос не прошёл через ViewSessions middleware.
func SessionFromContext(ctx context.Context) *service.ViewSession {
	session, ok := ctx.Value(ContextKeyViewSession).(*service.ViewSession)
	if !ok {
		return nil
	}
	return session
}

// WithSession помещает сессию в контекст (для тестов и фоновых вызовов).
func WithSession(ctx context.Context, session *service.ViewSession) context.Context {
	return context.WithValue(ctx, ContextKeyViewSession, session)
}
