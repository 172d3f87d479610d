// Пакет pages — HTML-компоненты Student UI (страница и HTMX-partials).
// Компоненты реализуют templ.Component и собираются через templ.ComponentFunc.
// Тексты берутся из i18n по языку из контекста рендеринга.
package pages

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// htmlWriter пишет HTML, запоминая первую ошибку записи.
type htmlWriter struct {
	w   io.Writer
	err error
}

// raw пишет строку без экранирования.
func (hw *htmlWriter) raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

// text пишет экранированный текст (тело элемента или значение атрибута).
func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

// attr пишет атрибут name="value" с экранированием значения.
func (hw *htmlWriter) attr(name, value string) {
	hw.raw(" " + name + `="`)
	hw.text(value)
	hw.raw(`"`)
}

// render рендерит вложенный компонент.
func (hw *htmlWriter) render(ctx context.Context, c templ.Component) {
	if hw.err != nil || c == nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

// component создаёт templ.Component из функции, пишущей через htmlWriter.
func component(fn func(ctx context.Context, hw *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		fn(ctx, hw)
		return hw.err
	})
}

// studentPath возвращает путь вида prefix/{id}.
func studentPath(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}
