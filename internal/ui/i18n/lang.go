// lang.go — язык запроса: cookie "lang", затем Accept-Language, затем en.
package i18n

import (
	"context"
	"net/http"
	"slices"

	"golang.org/x/text/language"
)

// DefaultLang — язык без выбора пользователя и язык fallback-текстов.
const DefaultLang = "en"

// LangCookieName — cookie с выбранным языком.
const LangCookieName = "lang"

// Languages — поддерживаемые языки; первый совпадает с DefaultLang.
var Languages = []string{DefaultLang, "ru"}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Russian})

type langKey struct{}

// WithLang помещает язык в контекст.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFromContext возвращает язык из контекста или DefaultLang.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(langKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}

// IsSupported сообщает, есть ли каталог для языка.
func IsSupported(lang string) bool {
	return slices.Contains(Languages, lang)
}

// MatchLanguage выбирает язык по заголовку Accept-Language.
func MatchLanguage(acceptLanguage string) string {
	_, idx := language.MatchStrings(matcher, acceptLanguage)
	return Languages[idx]
}

// Middleware помещает язык запроса в контекст.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := DefaultLang
			if c, err := r.Cookie(LangCookieName); err == nil && IsSupported(c.Value) {
				lang = c.Value
			} else if accept := r.Header.Get("Accept-Language"); accept != "" {
				lang = MatchLanguage(accept)
			}
			next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), lang)))
		})
	}
}
