// language.go — обработчик переключения языка UI.
package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bigkaa/goartstore/student-ui/internal/ui/i18n"
)

// defaultRedirect — страница после смены языка без Referer.
const defaultRedirect = "/students"

// HandleSetLanguage обрабатывает POST /set-language.
// Устанавливает cookie "lang" и перенаправляет обратно.
// Параметр lang: "en" или "ru" (из query или form).
func HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	lang := r.FormValue("lang")
	if lang == "" {
		lang = r.URL.Query().Get("lang")
	}

	// Валидация: только поддерживаемые языки
	if !i18n.IsSupported(lang) {
		lang = "en"
	}

	// Устанавливаем cookie "lang" на 1 год
	http.SetCookie(w, &http.Cookie{
		Name:     i18n.LangCookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60, // 1 год
		HttpOnly: false,               // JS может читать для UI-логики
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
	})

	http.Redirect(w, r, redirectTarget(r), http.StatusSeeOther)
}

// redirectTarget возвращает путь из Referer того же хоста или /students.
// Внешние Referer не используются (open redirect).
func redirectTarget(r *http.Request) string {
	referer := r.Header.Get("Referer")
	if referer == "" {
		return defaultRedirect
	}
	u, err := url.Parse(referer)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return defaultRedirect
	}
	target := u.EscapedPath()
	if !isLocalPath(u.Path) || !isLocalPath(target) {
		return defaultRedirect
	}
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return target
}

// isLocalPath — абсолютный путь текущего хоста. "//host" и "/\\host"
// браузер трактует как адрес другого хоста.
func isLocalPath(p string) bool {
	if !strings.HasPrefix(p, "/") {
		return false
	}
	return !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}
