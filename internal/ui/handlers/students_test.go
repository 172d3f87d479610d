package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goartstore/student-ui/internal/domain/model"
	"github.com/bigkaa/goartstore/student-ui/internal/service"
	"github.com/bigkaa/goartstore/student-ui/internal/storeclient"
	"github.com/bigkaa/goartstore/student-ui/internal/storeclient/storetest"
	"github.com/bigkaa/goartstore/student-ui/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/goartstore/student-ui/internal/ui/middleware"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedStudents() []model.Student {
	return []model.Student{
		{ID: model.Int64Ptr(1), Name: "Ada Lovelace", Email: "ada@x.com"},
		{ID: model.Int64Ptr(2), Name: "Bob Jones", Email: "bob@y.org"},
	}
}

// uiHarness — UI поверх тестового backend с cookie одной вкладки браузера.
type uiHarness struct {
	t       *testing.T
	backend *storetest.Server
	router  http.Handler
	cookies []*http.Cookie
}

func setupUI(t *testing.T, seed ...model.Student) *uiHarness {
	t.Helper()

	if _, err := i18n.Load(testLogger()); err != nil {
		t.Fatal(err)
	}

	backend := storetest.New(t, seed...)
	client, err := storeclient.New(backend.URL, 5*time.Second, "", 2, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	sessions := service.NewViewSessionStore(client, nil, 10, time.Hour, 4*time.Second, testLogger())
	h := NewStudentsHandler(testLogger())

	r := chi.NewRouter()
	r.Use(i18n.Middleware())
	r.Use(uimiddleware.NewViewSessions(sessions, false, testLogger()).Middleware())
	r.Get("/students", h.HandlePage)
	r.Get("/partials/students-table", h.HandleTablePartial)
	r.Post("/partials/students/refresh", h.HandleRefresh)
	r.Post("/partials/students/clear-search", h.HandleClearSearch)
	r.Get("/partials/student-form", h.HandleAddForm)
	r.Get("/partials/student-form/{id}", h.HandleEditForm)
	r.Post("/partials/students", h.HandleCreate)
	r.Put("/partials/students/{id}", h.HandleUpdate)
	r.Get("/partials/student-delete/{id}", h.HandleDeleteConfirm)
	r.Delete("/partials/students/{id}", h.HandleDelete)
	r.Post("/partials/dialog/cancel", h.HandleCancelDialog)
	r.Get("/partials/toasts", h.HandleToasts)

	return &uiHarness{t: t, backend: backend, router: r}
}

// do выполняет запрос от имени одной вкладки (cookie сохраняются).
func (u *uiHarness) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	u.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("HX-Request", "true")
	for _, c := range u.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	u.router.ServeHTTP(rec, req)
	u.cookies = append(u.cookies, rec.Result().Cookies()...)
	return rec
}

// toasts возвращает HTML накопленных уведомлений.
func (u *uiHarness) toasts() string {
	u.t.Helper()
	return u.do(http.MethodGet, "/partials/toasts", nil).Body.String()
}

func assertContains(t *testing.T, body string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Errorf("ожидалось %q в ответе:\n%s", w, body)
		}
	}
}

func assertNotContains(t *testing.T, body string, unwanted ...string) {
	t.Helper()
	for _, w := range unwanted {
		if strings.Contains(body, w) {
			t.Errorf("не ожидалось %q в ответе:\n%s", w, body)
		}
	}
}

func assertTrigger(t *testing.T, rec *httptest.ResponseRecorder, events ...string) {
	t.Helper()
	got := rec.Header().Get("HX-Trigger")
	for _, e := range events {
		if !strings.Contains(got, e) {
			t.Errorf("ожидалось событие %q в HX-Trigger, получено %q", e, got)
		}
	}
}

// TestHandlePage проверяет полную страницу со списком.
func TestHandlePage(t *testing.T) {
	ui := setupUI(t, seedStudents()...)

	rec := ui.do(http.MethodGet, "/students", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидался статус 200, получен %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("ожидался text/html, получен %s", ct)
	}
	assertContains(t, rec.Body.String(),
		"<!DOCTYPE html>", "Student Directory", "2 Students",
		"Ada Lovelace", "bob@y.org", `data-student-id="2"`, ">AL<", "mailto:ada@x.com",
	)
	if len(ui.cookies) == 0 || ui.cookies[0].Name != uimiddleware.ViewSessionCookieName {
		t.Error("ожидалась cookie сессии просмотра")
	}
}

// TestHandlePage_Russian проверяет перевод страницы по cookie lang.
func TestHandlePage_Russian(t *testing.T) {
	ui := setupUI(t, seedStudents()...)
	ui.cookies = append(ui.cookies, &http.Cookie{Name: i18n.LangCookieName, Value: "ru"})

	body := ui.do(http.MethodGet, "/students", nil).Body.String()
	assertContains(t, body, `lang="ru"`, "Справочник студентов", "Студентов: 2")
}

// TestHandlePage_BackendFailure проверяет пустое состояние и уведомление при сбое загрузки.
func TestHandlePage_BackendFailure(t *testing.T) {
	ui := setupUI(t, seedStudents()...)
	ui.backend.FailNext(storetest.RouteList, 500, 500, 500)

	body := ui.do(http.MethodGet, "/students", nil).Body.String()
	assertContains(t, body, `data-empty="no_records"`, "No Students Yet", storeclient.MessageInternal, `class="toast error"`)
}

// TestHandlePage_EmptyCollection проверяет состояние "нет записей".
func TestHandlePage_EmptyCollection(t *testing.T) {
	ui := setupUI(t)

	body := ui.do(http.MethodGet, "/students", nil).Body.String()
	assertContains(t, body, "0 Students", "No Students Yet", "Add Your First Student")
}

// TestHandleTablePartial проверяет фильтр без обращения к backend.
func TestHandleTablePartial(t *testing.T) {
	ui := setupUI(t, seedStudents()...)
	ui.do(http.MethodGet, "/students", nil)

	rec := ui.do(http.MethodGet, "/partials/students-table?q=jones", nil)
	body := rec.Body.String()
	assertContains(t, body, "Bob Jones", "2 Students", "1 Results")
	assertNotContains(t, body, "Ada Lovelace", "<!DOCTYPE html>")

	body = ui.do(http.MethodGet, "/partials/students-table?q=zzz", nil).Body.String()
	assertContains(t, body, `data-empty="no_matches"`, "No Results Found", "Clear Search")

	if n := ui.backend.Requests(storetest.RouteList); n != 1 {
		t.Errorf("фильтр не должен обращаться к backend: %d запросов списка", n)
	}
}

// TestHandleTablePartial_NewSession проверяет загрузку для сессии без открытой страницы.
func TestHandleTablePartial_NewSession(t *testing.T) {
	ui := setupUI(t, seedStudents()...)

	body := ui.do(http.MethodGet, "/partials/students-table?q=ada", nil).Body.String()
	assertContains(t, body, "Ada Lovelace")
	if n := ui.backend.Requests(storetest.RouteList); n != 1 {
		t.Errorf("ожидался 1 запрос списка, получено %d", n)
	}
}

// TestHandleClearSearch проверяет сброс поиска и замену поля поиска.
func TestHandleClearSearch(t *testing.T) {
	ui := setupUI(t, seedStudents()...)
	ui.do(http.MethodGet, "/students", nil)
	ui.do(http.MethodGet, "/partials/students-table?q=jones", nil)

	body := ui.do(http.MethodPost, "/partials/students/clear-search", nil).Body.String()
	assertContains(t, body, "Ada Lovelace", "Bob Jones", `hx-swap-oob="true"`, `value=""`)
	assertNotContains(t, body, "Results")
}

// TestHandleRefresh проверяет перезагрузку и уведомление об успехе.
func TestHandleRefresh(t *testing.T) {
	ui := setupUI(t, seedStudents()...)
	ui.do(http.MethodGet, "/students", nil)
	ui.backend.Put(model.Student{Name: "Carl Smith", Email: "carl@z.net"})

	rec := ui.do(http.MethodPost, "/partials/students/refresh", nil)
	assertContains(t, rec.Body.String(), "Carl Smith", "3 Students")
	assertTrigger(t, rec, eventToastsUpdated)
	assertContains(t, ui.toasts(), service.MessageStudentsRefreshed, `class="toast success"`, `data-duration="4000"`)
}

// TestHandleRefresh_Failure проверяет сохранение списка при сбое обновления.
func TestHandleRefresh_Failure(t *testing.T) {
	ui := setupUI(t, seedStudents()...)
	ui.do(http.MethodGet, "/students", nil)
	ui.backend.FailNext(storetest.RouteList, 500, 500, 500)

	rec := ui.do(http.MethodPost, "/partials/students/refresh", nil)
	assertContains(t, rec.Body.String(), "Ada Lovelace", "Bob Jones")
	toasts := ui.toasts()
	assertContains(t, toasts, storeclient.MessageInternal)
	assertNotContains(t, toasts, service.MessageStudentsRefreshed)
}

// TestHandleCreate проверяет добавление через диалог.
func TestHandleCreate(t *testing.T) {
	ui := setupUI(t, seedStudents()...)
	ui.do(http.MethodGet, "/students", nil)

	form := ui.do(http.MethodGet, "/partials/student-form", nil).Body.String()
	assertContains(t, form, "Add New Student", `hx-post="/partials/students"`, `data-mode="add"`)
	assertNotContains(t, form, "Student ID")

	rec := ui.do(http.MethodPost, "/partials/students", url.Values{
		"name":  {"  Carl Smith "},
		"email": {"carl@z.net"},
	})
	if got := rec.Header().Get("HX-Retarget"); got != "#roster" {
		t.Errorf("ожидался HX-Retarget #roster, получен %q", got)
	}
	assertTrigger(t, rec, eventCloseModal, eventToastsUpdated)
	assertContains(t, rec.Body.String(), "Carl Smith", "3 Students")

	bodies := ui.backend.Bodies(storetest.RouteCreate)
	if len(bodies) != 1 || bodies[0].Name != "Carl Smith" {
		t.Errorf("ожидалось имя без пробелов по краям, получено %+v", bodies)
	}
	assertContains(t, ui.toasts(), service.MessageStudentAdded)
}

// TestHandleCreate_Validation проверяет ошибки полей без обращения к backend.
func TestHandleCreate_Validation(t *testing.T) {
	ui := setupUI(t, seedStudents()...)
	ui.do(http.MethodGet, "/partials/student-form", nil)

	rec := ui.do(http.MethodPost, "/partials/students", url.Values{
		"name":  {"John123"},
		"email": {"not-an-email"},
	})
	body := rec.Body.String()
	assertContains(t, body,
		"Name can only contain letters and spaces",
		"Please enter a valid email address",
		`value="John123"`,
	)
	if rec.Header().Get("HX-Trigger") != "" {
		t.Errorf("ошибки полей не должны показываться уведомлением: %q", rec.Header().Get("HX-Trigger"))
	}
	if n := ui.backend.Requests(storetest.RouteCreate); n != 0 {
		t.Errorf("невалидная форма не должна отправляться: %d запросов", n)
	}

	// Форма остаётся открытой: исправленные данные принимаются
	rec = ui.do(http.MethodPost, "/partials/students", url.Values{
		"name":  {"John Smith"},
		"email": {"john@z.net"},
	})
	assertTrigger(t, rec, eventCloseModal)
}

// TestHandleCreate_BackendFailure проверяет, что диалог остаётся открытым при ошибке backend.
func TestHandleCreate_BackendFailure(t *testing.T) {
	ui := setupUI(t, seedStudents()...)
	ui.do(http.MethodGet, "/partials/student-form", nil)
	ui.backend.FailNext(storetest.RouteCreate, 500)

	values := url.Values{"name": {"Carl Smith"}, "email": {"carl@z.net"}}
	rec := ui.do(http.MethodPost, "/partials/students", values)
	assertContains(t, rec.Body.String(), `data-mode="add"`, `value="Carl Smith"`, `value="carl@z.net"`)
	assertTrigger(t, rec, eventToastsUpdated)
	if strings.Contains(rec.Header().Get("HX-Trigger"), eventCloseModal) {
		t.Error("диалог не должен закрываться при ошибке backend")
	}
	assertContains(t, ui.toasts(), storeclient.MessageInternal)

	rec = ui.do(http.MethodPost, "/partials/students", values)
	assertTrigger(t, rec, eventCloseModal)
	if n := ui.backend.Requests(storetest.RouteCreate); n != 2 {
		t.Errorf("ожидалось 2 запроса создания, получено %d", n)
	}
}

// TestHandleCreate_NoOpenDialog проверяет отправку без открытого диалога.
func TestHandleCreate_NoOpenDialog(t *testing.T) {
	ui := setupUI(t, seedStudents()...)

	rec := ui.do(http.MethodPost, "/partials/students", url.Values{"name": {"Carl Smith"}, "email": {"carl@z.net"}})
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Error("ожидался HX-Reswap none")
	}
	assertTrigger(t, rec, eventCloseModal, eventToastsUpdated)
	assertContains(t, ui.toasts(), messageDialogClosed)
	if n := ui.backend.Requests(storetest.RouteCreate); n != 0 {
		t.Errorf("запрос создания не ожидался, получено %d", n)
	}
}

// TestHandleEdit проверяет редактирование по свежей записи backend.
func TestHandleEdit(t *testing.T) {
	ui := setupUI(t, seedStudents()...)
	ui.do(http.MethodGet, "/students", nil)

	form := ui.do(http.MethodGet, "/partials/student-form/2", nil).Body.String()
	assertContains(t, form, "Edit Student", `hx-put="/partials/students/2"`, `value="Bob Jones"`, "Student ID")

	rec := ui.do(http.MethodPut, "/partials/students/2", url.Values{
		"name":  {"Robert Jones"},
		"email": {"bob@y.org"},
	})
	assertTrigger(t, rec, eventCloseModal)
	assertContains(t, rec.Body.String(), "Robert Jones")

	students := ui.backend.Students()
	if students[1].Name != "Robert Jones" {
		t.Errorf("запись в backend не обновлена: %+v", students[1])
	}
	assertContains(t, ui.toasts(), service.MessageStudentUpdated)
}

// TestHandleEdit_WrongRecord проверяет отправку формы другой записи.
func TestHandleEdit_WrongRecord(t *testing.T) {
	ui := setupUI(t, seedStudents()...)
	ui.do(http.MethodGet, "/partials/student-form/2", nil)

	rec := ui.do(http.MethodPut, "/partials/students/1", url.Values{"name": {"Ada King"}, "email": {"ada@x.com"}})
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Error("ожидался HX-Reswap none")
	}
	if n := ui.backend.Requests(storetest.RouteUpdate); n != 0 {
		t.Errorf("запрос обновления не ожидался, получено %d", n)
	}
}

// TestHandleEditForm_NotFound проверяет, что при ошибке чтения диалог не открывается.
func TestHandleEditForm_NotFound(t *testing.T) {
	ui := setupUI(t, seedStudents()...)

	rec := ui.do(http.MethodGet, "/partials/student-form/42", nil)
	if rec.Header().Get("HX-Reswap") != "none" || rec.Body.Len() != 0 {
		t.Errorf("диалог не должен открываться: %q", rec.Body.String())
	}
	assertTrigger(t, rec, eventToastsUpdated)
	assertContains(t, ui.toasts(), storeclient.MessageNotFound)
}

// TestHandleEditForm_InvalidID проверяет некорректный id в URL.
func TestHandleEditForm_InvalidID(t *testing.T) {
	ui := setupUI(t, seedStudents()...)

	rec := ui.do(http.MethodGet, "/partials/student-form/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("ожидался статус 400, получен %d", rec.Code)
	}
}

// TestHandleDelete проверяет подтверждение и удаление.
func TestHandleDelete(t *testing.T) {
	ui := setupUI(t, seedStudents()...)
	ui.do(http.MethodGet, "/students", nil)

	confirm := ui.do(http.MethodGet, "/partials/student-delete/1", nil).Body.String()
	assertContains(t, confirm, "Delete Student", "Ada Lovelace", "Delete Permanently", `hx-delete="/partials/students/1"`)

	rec := ui.do(http.MethodDelete, "/partials/students/1", nil)
	assertTrigger(t, rec, eventCloseModal, eventToastsUpdated)
	body := rec.Body.String()
	assertContains(t, body, "Bob Jones", "1 Students")
	assertNotContains(t, body, "Ada Lovelace")
	assertContains(t, ui.toasts(), service.MessageStudentDeleted)

	if n := len(ui.backend.Students()); n != 1 {
		t.Errorf("ожидалась 1 запись в backend, получено %d", n)
	}
}

// TestHandleDelete_WithoutConfirm проверяет, что удаление без подтверждения не выполняется.
func TestHandleDelete_WithoutConfirm(t *testing.T) {
	ui := setupUI(t, seedStudents()...)
	ui.do(http.MethodGet, "/students", nil)

	rec := ui.do(http.MethodDelete, "/partials/students/1", nil)
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Error("ожидался HX-Reswap none")
	}
	if n := ui.backend.Requests(storetest.RouteDelete); n != 0 {
		t.Errorf("запрос удаления не ожидался, получено %d", n)
	}
}

// TestHandleDelete_BackendFailure проверяет сохранение списка при ошибке удаления.
func TestHandleDelete_BackendFailure(t *testing.T) {
	ui := setupUI(t, seedStudents()...)
	ui.do(http.MethodGet, "/students", nil)
	ui.do(http.MethodGet, "/partials/student-delete/1", nil)
	ui.backend.FailNext(storetest.RouteDelete, 500)

	rec := ui.do(http.MethodDelete, "/partials/students/1", nil)
	assertContains(t, rec.Body.String(), "Ada Lovelace", "Bob Jones")
	toasts := ui.toasts()
	assertContains(t, toasts, storeclient.MessageInternal)
	assertNotContains(t, toasts, service.MessageStudentDeleted)
}

// TestHandleDeleteConfirm_Unknown проверяет подтверждение для отсутствующей записи.
func TestHandleDeleteConfirm_Unknown(t *testing.T) {
	ui := setupUI(t, seedStudents()...)
	ui.do(http.MethodGet, "/students", nil)

	rec := ui.do(http.MethodGet, "/partials/student-delete/42", nil)
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Error("ожидался HX-Reswap none")
	}
	assertContains(t, ui.toasts(), storeclient.MessageNotFound)
}

// TestHandleCancelDialog проверяет закрытие диалога без результата.
func TestHandleCancelDialog(t *testing.T) {
	ui := setupUI(t, seedStudents()...)
	ui.do(http.MethodGet, "/students", nil)
	ui.do(http.MethodGet, "/partials/student-delete/1", nil)

	rec := ui.do(http.MethodPost, "/partials/dialog/cancel", nil)
	assertTrigger(t, rec, eventCloseModal)

	// После отмены подтверждение больше не действует
	ui.do(http.MethodDelete, "/partials/students/1", nil)
	if n := ui.backend.Requests(storetest.RouteDelete); n != 0 {
		t.Errorf("запрос удаления не ожидался, получено %d", n)
	}
}

// TestHandleToasts проверяет, что уведомления выдаются один раз.
func TestHandleToasts(t *testing.T) {
	ui := setupUI(t, seedStudents()...)
	ui.do(http.MethodGet, "/students", nil)
	ui.do(http.MethodPost, "/partials/students/refresh", nil)

	assertContains(t, ui.toasts(), service.MessageStudentsRefreshed)
	assertNotContains(t, ui.toasts(), service.MessageStudentsRefreshed)
}
