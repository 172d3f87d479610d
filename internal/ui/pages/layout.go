package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/bigkaa/goartstore/student-ui/internal/ui/i18n"
)

// htmxScriptURL — HTMX подключается с CDN.
const htmxScriptURL = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"

// Layout — общий каркас страницы: шапка с переключателем языка,
// контейнер модальных окон и контейнер уведомлений.
// Содержимое #toasts передаётся отдельным компонентом.
func Layout(body, toasts templ.Component) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		lang := i18n.LangFromContext(ctx)

		hw.raw(`<!DOCTYPE html><html`)
		hw.attr("lang", lang)
		hw.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		hw.text(i18n.T(ctx, "app.title"))
		hw.raw(`</title><link rel="stylesheet" href="/static/css/app.css">`)
		hw.raw(`<script src="` + htmxScriptURL + `"></script></head><body>`)

		hw.raw(`<header class="topbar"><h1>`)
		hw.text(i18n.T(ctx, "app.title"))
		hw.raw(`</h1>`)
		languageSwitch(ctx, hw, lang)
		hw.raw(`</header><main>`)

		hw.render(ctx, body)

		hw.raw(`</main><div id="modal"></div><div id="toasts" aria-live="polite">`)
		hw.render(ctx, toasts)
		hw.raw(`</div><script src="/static/js/app.js"></script></body></html>`)
	})
}

// languageSwitch рендерит форму выбора языка (POST /set-language).
func languageSwitch(ctx context.Context, hw *htmlWriter, current string) {
	hw.raw(`<form class="lang-switch" method="post" action="/set-language"`)
	hw.attr("aria-label", i18n.T(ctx, "lang.label"))
	hw.raw(`>`)
	for _, lang := range []string{"en", "ru"} {
		hw.raw(`<button type="submit" name="lang"`)
		hw.attr("value", lang)
		if lang == current {
			hw.raw(` class="active"`)
		}
		hw.raw(`>`)
		hw.text(i18n.T(ctx, "lang."+lang))
		hw.raw(`</button>`)
	}
	hw.raw(`</form>`)
}
