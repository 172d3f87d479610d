// Пакет handlers — HTTP-обработчики Student UI.
// Файл students.go — страница списка студентов и HTMX-partials:
// фильтр, обновление, диалоги добавления/редактирования/удаления, уведомления.
package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goartstore/student-ui/internal/domain/model"
	"github.com/bigkaa/goartstore/student-ui/internal/notify"
	"github.com/bigkaa/goartstore/student-ui/internal/service"
	"github.com/bigkaa/goartstore/student-ui/internal/storeclient"
	"github.com/bigkaa/goartstore/student-ui/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/goartstore/student-ui/internal/ui/middleware"
	"github.com/bigkaa/goartstore/student-ui/internal/ui/pages"
)

// События HTMX (заголовок HX-Trigger), обрабатываемые app.js.
const (
	eventCloseModal    = "close-modal"
	eventToastsUpdated = "toasts-updated"
)

// Ключ и текст уведомления о закрытом диалоге.
const (
	keyDialogClosed     = "error.dialog_closed"
	messageDialogClosed = "This dialog is no longer open."
)

// StudentsHandler — обработчик страницы студентов.
type StudentsHandler struct {
	logger *slog.Logger
}

// NewStudentsHandler создаёт новый StudentsHandler.
func NewStudentsHandler(logger *slog.Logger) *StudentsHandler {
	return &StudentsHandler{
		logger: logger.With(slog.String("component", "ui.students")),
	}
}

// HandlePage обрабатывает GET /students — полная страница.
// Каждое открытие страницы перезагружает коллекцию.
func (h *StudentsHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	ctx := r.Context()

	sess.MarkLoaded()
	// Ошибка загрузки уже в очереди уведомлений сессии
	_ = sess.Roster.Load(ctx)

	data := pages.StudentsPageData{
		Roster: rosterData(sess.Roster.Snapshot()),
		Toasts: h.toastsData(r, sess),
	}
	h.render(w, r, pages.StudentsPage(data), "страницы студентов")
}

// HandleTablePartial обрабатывает GET /partials/students-table?q= — фильтр без запроса к backend.
func (h *StudentsHandler) HandleTablePartial(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	h.ensureLoaded(r, sess)
	sess.Roster.SetSearchTerm(r.URL.Query().Get("q"))

	h.setTriggers(w, sess)
	h.render(w, r, pages.Roster(rosterData(sess.Roster.Snapshot())), "списка студентов")
}

// HandleClearSearch обрабатывает POST /partials/students/clear-search.
// Вместе со списком возвращает пустое поле поиска (hx-swap-oob).
func (h *StudentsHandler) HandleClearSearch(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	h.ensureLoaded(r, sess)
	sess.Roster.ClearSearch()

	h.setTriggers(w, sess)
	roster := pages.Roster(rosterData(sess.Roster.Snapshot()))
	h.render(w, r, concat(roster, pages.SearchSection("", true)), "списка студентов")
}

// HandleRefresh обрабатывает POST /partials/students/refresh.
func (h *StudentsHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	sess.MarkLoaded()
	if err := sess.Roster.Refresh(r.Context()); err != nil && !errors.Is(err, service.ErrStaleLoad) {
		h.logger.Debug("Обновление списка не удалось", slog.String("error", err.Error()))
	}

	h.setTriggers(w, sess)
	h.render(w, r, pages.Roster(rosterData(sess.Roster.Snapshot())), "списка студентов")
}

// HandleAddForm обрабатывает GET /partials/student-form — диалог добавления.
func (h *StudentsHandler) HandleAddForm(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	d := sess.OpenAddDialog()
	h.render(w, r, pages.StudentForm(formData(d, d.Initial(), nil, r)), "формы студента")
}

// HandleEditForm обрабатывает GET /partials/student-form/{id} — диалог редактирования.
// Запись читается из backend заново; при ошибке диалог не открывается.
func (h *StudentsHandler) HandleEditForm(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	id, ok := parseStudentID(w, r)
	if !ok {
		return
	}

	d, err := sess.LoadEditDialog(r.Context(), id)
	if err != nil {
		h.noSwap(w, sess)
		return
	}
	h.render(w, r, pages.StudentForm(formData(d, d.Initial(), nil, r)), "формы студента")
}

// HandleCreate обрабатывает POST /partials/students — отправка диалога добавления.
func (h *StudentsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, service.DialogModeAdd, 0)
}

// HandleUpdate обрабатывает PUT /partials/students/{id} — отправка диалога редактирования.
func (h *StudentsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseStudentID(w, r)
	if !ok {
		return
	}
	h.submit(w, r, service.DialogModeEdit, id)
}

// submit отправляет открытую форму сессии.
// Успех: закрытие модального окна и обновлённый список в #roster.
// Ошибки полей: форма с сообщениями под полями. Ошибка backend: форма
// остаётся открытой с введёнными значениями, текст ошибки в уведомлении.
func (h *StudentsHandler) submit(w http.ResponseWriter, r *http.Request, mode service.DialogMode, id int64) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "некорректные данные формы", http.StatusBadRequest)
		return
	}

	d := sess.Form()
	if d == nil || d.Mode() != mode || (mode == service.DialogModeEdit && d.Original().IDValue() != id) {
		sess.Toasts.Notify(notify.Error(keyDialogClosed, nil, messageDialogClosed))
		h.closeModal(w, sess)
		return
	}

	draft := model.StudentDraft{
		Name:  strings.TrimSpace(r.PostFormValue("name")),
		Email: strings.TrimSpace(r.PostFormValue("email")),
	}

	_, err := d.Submit(r.Context(), draft)
	var fieldErrs service.FieldErrors
	switch {
	case err == nil:
		// Если форма заменена другой, модальное окно принадлежит новой форме
		var events []string
		if sess.ReleaseForm(d) {
			events = append(events, eventCloseModal)
		}
		if loadErr := sess.Roster.AfterMutationSucceeds(r.Context()); loadErr != nil {
			h.logger.Debug("Перезагрузка после изменения не удалась", slog.String("error", loadErr.Error()))
		}
		w.Header().Set("HX-Retarget", "#roster")
		w.Header().Set("HX-Reswap", "innerHTML")
		h.setTriggers(w, sess, events...)
		h.render(w, r, pages.Roster(rosterData(sess.Roster.Snapshot())), "списка студентов")

	case errors.As(err, &fieldErrs):
		h.render(w, r, pages.StudentForm(formData(d, draft, fieldErrs, r)), "формы студента")

	case errors.Is(err, service.ErrSubmitting), errors.Is(err, service.ErrDialogClosed):
		h.noSwap(w, sess)

	case sess.Form() != d:
		// Форма заменена во время отправки: остаётся только уведомление
		h.noSwap(w, sess)

	default:
		h.setTriggers(w, sess)
		h.render(w, r, pages.StudentForm(formData(d, draft, nil, r)), "формы студента")
	}
}

// HandleDeleteConfirm обрабатывает GET /partials/student-delete/{id} — подтверждение удаления.
func (h *StudentsHandler) HandleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	id, ok := parseStudentID(w, r)
	if !ok {
		return
	}
	h.ensureLoaded(r, sess)

	st, found := sess.Roster.Find(id)
	if !found {
		sess.Toasts.Notify(notify.Error(storeclient.KeyNotFound, nil, storeclient.MessageNotFound))
		h.noSwap(w, sess)
		return
	}

	d := sess.OpenDeleteDialog(id, st.Name)
	h.render(w, r, pages.DeleteConfirm(pages.DeleteData{
		ID:       d.ID(),
		Name:     d.Name(),
		Initials: service.Initials(d.Name()),
	}), "подтверждения удаления")
}

// HandleDelete обрабатывает DELETE /partials/students/{id} — подтверждённое удаление.
func (h *StudentsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	id, ok := parseStudentID(w, r)
	if !ok {
		return
	}

	d := sess.TakeDeleteDialog(id)
	if d == nil {
		sess.Toasts.Notify(notify.Error(keyDialogClosed, nil, messageDialogClosed))
		h.closeModal(w, sess)
		return
	}
	if err := d.Confirm(); err != nil {
		h.closeModal(w, sess)
		return
	}

	if err := sess.Roster.DeleteStudent(r.Context(), id); err != nil {
		h.logger.Debug("Удаление не завершено", slog.Int64("id", id), slog.String("error", err.Error()))
	}

	h.setTriggers(w, sess, eventCloseModal)
	h.render(w, r, pages.Roster(rosterData(sess.Roster.Snapshot())), "списка студентов")
}

// HandleCancelDialog обрабатывает POST /partials/dialog/cancel — закрытие диалога без результата.
// Отправляемую форму закрыть нельзя.
func (h *StudentsHandler) HandleCancelDialog(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	if err := sess.CloseForm(); err != nil {
		h.noSwap(w, sess)
		return
	}
	sess.CloseDeleteDialog()
	h.closeModal(w, sess)
}

// HandleToasts обрабатывает GET /partials/toasts — накопленные уведомления.
func (h *StudentsHandler) HandleToasts(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	h.render(w, r, pages.Toasts(h.toastsData(r, sess)), "уведомлений")
}

// --- Вспомогательные методы ---

// session возвращает сессию просмотра или отвечает 500.
func (h *StudentsHandler) session(w http.ResponseWriter, r *http.Request) *service.ViewSession {
	sess := uimiddleware.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("Сессия просмотра отсутствует в контексте", slog.String("path", r.URL.Path))
		http.Error(w, "сессия не инициализирована", http.StatusInternalServerError)
	}
	return sess
}

// ensureLoaded загружает коллекцию, если сессия создана без открытия страницы
// (например, после истечения TTL сессии).
func (h *StudentsHandler) ensureLoaded(r *http.Request, sess *service.ViewSession) {
	if sess.MarkLoaded() {
		_ = sess.Roster.Load(r.Context())
	}
}

// render отдаёт HTML-компонент.
func (h *StudentsHandler) render(w http.ResponseWriter, r *http.Request, c templ.Component, what string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		h.logger.Error("Ошибка рендеринга "+what,
			slog.String("error", err.Error()),
		)
		http.Error(w, "Ошибка рендеринга страницы", http.StatusInternalServerError)
	}
}

// setTriggers выставляет HX-Trigger: переданные события и toasts-updated,
// если в очереди сессии есть уведомления.
func (h *StudentsHandler) setTriggers(w http.ResponseWriter, sess *service.ViewSession, events ...string) {
	if sess.Toasts.Len() > 0 {
		events = append(events, eventToastsUpdated)
	}
	if len(events) > 0 {
		w.Header().Set("HX-Trigger", strings.Join(events, ", "))
	}
}

// noSwap отвечает без изменения страницы (только события).
func (h *StudentsHandler) noSwap(w http.ResponseWriter, sess *service.ViewSession) {
	w.Header().Set("HX-Reswap", "none")
	h.setTriggers(w, sess)
	w.WriteHeader(http.StatusOK)
}

// closeModal закрывает модальное окно без изменения страницы.
func (h *StudentsHandler) closeModal(w http.ResponseWriter, sess *service.ViewSession) {
	w.Header().Set("HX-Reswap", "none")
	h.setTriggers(w, sess, eventCloseModal)
	w.WriteHeader(http.StatusOK)
}

// toastsData забирает уведомления сессии и переводит их тексты.
func (h *StudentsHandler) toastsData(r *http.Request, sess *service.ViewSession) pages.ToastsData {
	pending := sess.Toasts.Drain()
	items := make([]pages.ToastItem, 0, len(pending))
	for _, n := range pending {
		items = append(items, pages.ToastItem{
			Kind: n.Kind,
			Text: i18n.Message(r.Context(), n.Key, n.Message, n.Args...),
		})
	}
	return pages.ToastsData{Items: items, Duration: sess.Toasts.Duration()}
}

// rosterData преобразует снимок контроллера в данные отображения.
func rosterData(snap service.RosterSnapshot) pages.RosterData {
	items := make([]pages.StudentItem, 0, len(snap.Students))
	for _, st := range snap.Students {
		items = append(items, pages.StudentItem{
			ID:       st.IDValue(),
			Name:     st.Name,
			Email:    st.Email,
			Initials: service.Initials(st.Name),
		})
	}
	return pages.RosterData{
		Students: items,
		Total:    snap.Total,
		Term:     snap.Term,
		Loading:  snap.Loading,
		Empty:    snap.Empty,
	}
}

// formData собирает данные формы с переведёнными ошибками полей.
func formData(d *service.StudentFormDialog, values model.StudentDraft, fieldErrs service.FieldErrors, r *http.Request) pages.FormData {
	data := pages.FormData{
		Mode:  d.Mode(),
		ID:    d.Original().IDValue(),
		Name:  values.Name,
		Email: values.Email,
	}
	if len(fieldErrs) > 0 {
		data.Errors = make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			if _, exists := data.Errors[fe.Field]; exists {
				continue
			}
			data.Errors[fe.Field] = i18n.Message(r.Context(), fe.Key(), fe.Message())
		}
	}
	return data
}

// parseStudentID извлекает {id} из URL; при ошибке отвечает 400.
func parseStudentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "некорректный id студента", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// concat последовательно рендерит несколько компонентов.
func concat(components ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, c := range components {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}
