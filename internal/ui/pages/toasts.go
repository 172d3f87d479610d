package pages

import (
	"context"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/bigkaa/goartstore/student-ui/internal/notify"
	"github.com/bigkaa/goartstore/student-ui/internal/ui/i18n"
)

// ToastItem — одно уведомление с уже переведённым текстом.
type ToastItem struct {
	Kind notify.Kind
	Text string
}

// ToastsData — уведомления и время их показа.
type ToastsData struct {
	Items    []ToastItem
	Duration time.Duration
}

// Toasts рендерит уведомления; скрытие по data-duration выполняет app.js.
func Toasts(data ToastsData) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		ms := strconv.FormatInt(data.Duration.Milliseconds(), 10)
		for _, item := range data.Items {
			hw.raw(`<div role="status"`)
			hw.attr("class", "toast "+string(item.Kind))
			hw.attr("data-duration", ms)
			hw.raw(`><span>`)
			hw.text(item.Text)
			hw.raw(`</span><button type="button" data-toast-close>`)
			hw.text(i18n.T(ctx, "action.close"))
			hw.raw(`</button></div>`)
		}
	})
}
