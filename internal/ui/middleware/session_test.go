package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/student-ui/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestViewSessions() (*ViewSessions, *service.ViewSessionStore) {
	store := service.NewViewSessionStore(nil, nil, 10, time.Hour, time.Second, testLogger())
	return NewViewSessions(store, false, testLogger()), store
}

// TestViewSessions_CreatesAndReuses проверяет выдачу cookie и повторное использование сессии.
func TestViewSessions_CreatesAndReuses(t *testing.T) {
	vs, store := newTestViewSessions()

	var seen []*service.ViewSession
	h := vs.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, SessionFromContext(r.Context()))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != ViewSessionCookieName {
		t.Fatalf("ожидалась cookie %s, получено %v", ViewSessionCookieName, cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("cookie сессии должна быть HttpOnly")
	}
	if seen[0] == nil || seen[0].ID != cookies[0].Value {
		t.Fatal("сессия в контексте не совпадает с cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/partials/toasts", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if len(rec.Result().Cookies()) != 0 {
		t.Error("для существующей сессии cookie не должна выставляться повторно")
	}
	if seen[1] != seen[0] {
		t.Error("ожидалась та же сессия")
	}
	if store.Len() != 1 {
		t.Errorf("ожидалась 1 сессия, получено %d", store.Len())
	}
}

// TestViewSessions_UnknownCookie проверяет замену неизвестной сессии.
func TestViewSessions_UnknownCookie(t *testing.T) {
	vs, _ := newTestViewSessions()

	var got *service.ViewSession
	h := vs.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.AddCookie(&http.Cookie{Name: ViewSessionCookieName, Value: "expired-session"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got == nil || got.ID == "expired-session" {
		t.Fatal("ожидалась новая сессия")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != got.ID {
		t.Errorf("ожидалась cookie новой сессии, получено %v", cookies)
	}
}

// TestSessionFromContext_Missing проверяет nil без middleware.
func TestSessionFromContext_Missing(t *testing.T) {
	if SessionFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()) != nil {
		t.Error("ожидался nil")
	}
}
