package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/student-ui/internal/domain/model"
	"github.com/bigkaa/goartstore/student-ui/internal/notify"
	"github.com/bigkaa/goartstore/student-ui/internal/storeclient"
	"github.com/bigkaa/goartstore/student-ui/internal/storeclient/storetest"
)

// TestViewSessionStore_GetOrCreate проверяет создание и повторное получение сессии.
func TestViewSessionStore_GetOrCreate(t *testing.T) {
	_, client := setupBackend(t)
	store := NewViewSessionStore(client, nil, 10, time.Hour, 4*time.Second, testLogger())

	sess, created := store.GetOrCreate("")
	if !created || sess.ID == "" {
		t.Fatalf("ожидалась новая сессия, получено created=%v id=%q", created, sess.ID)
	}
	if sess.Roster == nil || sess.Toasts == nil {
		t.Fatal("сессия должна содержать контроллер и очередь уведомлений")
	}
	if sess.Toasts.Duration() != 4*time.Second {
		t.Errorf("ожидалась длительность 4s, получено %v", sess.Toasts.Duration())
	}

	again, created := store.GetOrCreate(sess.ID)
	if created || again != sess {
		t.Error("ожидалась та же сессия")
	}

	if _, created := store.GetOrCreate("unknown-id"); !created {
		t.Error("для неизвестного id ожидалась новая сессия")
	}
	if store.Len() != 2 {
		t.Errorf("ожидалось 2 сессии, получено %d", store.Len())
	}
}

// TestViewSessionStore_Eviction проверяет вытеснение старейшей сессии.
func TestViewSessionStore_Eviction(t *testing.T) {
	_, client := setupBackend(t)
	store := NewViewSessionStore(client, nil, 2, time.Hour, 0, testLogger())

	first, _ := store.GetOrCreate("")
	second, _ := store.GetOrCreate("")
	// Обращение продлевает жизнь первой сессии
	if _, ok := store.Get(first.ID); !ok {
		t.Fatal("первая сессия должна существовать")
	}
	store.GetOrCreate("")

	if _, ok := store.Get(second.ID); ok {
		t.Error("вторая сессия должна быть вытеснена")
	}
	if _, ok := store.Get(first.ID); !ok {
		t.Error("первая сессия должна сохраниться")
	}
}

// TestViewSessionStore_TTL проверяет истечение сессии.
func TestViewSessionStore_TTL(t *testing.T) {
	_, client := setupBackend(t)
	store := NewViewSessionStore(client, nil, 10, 50*time.Millisecond, 0, testLogger())

	sess, _ := store.GetOrCreate("")
	time.Sleep(100 * time.Millisecond)

	if _, ok := store.Get(sess.ID); ok {
		t.Error("сессия должна истечь по TTL")
	}
}

// TestViewSession_Dialogs проверяет открытие и замену диалогов сессии.
func TestViewSession_Dialogs(t *testing.T) {
	_, client := setupBackend(t, seedStudents()...)
	store := NewViewSessionStore(client, nil, 10, time.Hour, 0, testLogger())
	sess, _ := store.GetOrCreate("")

	if !sess.MarkLoaded() || sess.MarkLoaded() {
		t.Error("MarkLoaded должен вернуть true только в первый раз")
	}

	add := sess.OpenAddDialog()
	if sess.Form() != add {
		t.Fatal("ожидалась открытая форма добавления")
	}

	edit, err := sess.OpenEditDialog(seedStudents()[0])
	if err != nil {
		t.Fatal(err)
	}
	if sess.Form() != edit {
		t.Fatal("ожидалась открытая форма редактирования")
	}
	if res := <-add.Done(); !res.Dismissed {
		t.Error("замещённая форма должна закрыться без результата")
	}

	if _, err := sess.OpenEditDialog(model.Student{Name: "Draft"}); err == nil {
		t.Error("ожидалась ошибка для записи без id")
	}

	if err := sess.CloseForm(); err != nil {
		t.Fatal(err)
	}
	if sess.Form() != nil {
		t.Error("форма должна быть закрыта")
	}

	confirm := sess.OpenDeleteDialog(2, "Bob Jones")
	if sess.TakeDeleteDialog(1) != nil {
		t.Error("подтверждение другой записи не должно возвращаться")
	}
	if got := sess.TakeDeleteDialog(2); got != confirm {
		t.Error("ожидалось открытое подтверждение")
	}
	if sess.TakeDeleteDialog(2) != nil {
		t.Error("подтверждение должно сниматься с сессии")
	}

	other := sess.OpenDeleteDialog(1, "Ada Lovelace")
	sess.CloseDeleteDialog()
	if res := <-other.Done(); !res.Dismissed {
		t.Error("закрытое подтверждение должно завершиться отменой")
	}
}

// TestViewSession_LoadEditDialog проверяет открытие формы по свежей записи backend.
func TestViewSession_LoadEditDialog(t *testing.T) {
	backend, client := setupBackend(t, seedStudents()...)
	store := NewViewSessionStore(client, nil, 10, time.Hour, 0, testLogger())
	sess, _ := store.GetOrCreate("")

	// Запись изменилась в backend после загрузки списка
	backend.Put(model.Student{ID: model.Int64Ptr(2), Name: "Robert Jones", Email: "bob@y.org"})

	d, err := sess.LoadEditDialog(context.Background(), 2)
	if err != nil {
		t.Fatalf("Ошибка LoadEditDialog: %v", err)
	}
	if d.Mode() != DialogModeEdit || d.Initial().Name != "Robert Jones" {
		t.Errorf("форма должна содержать свежие данные: %+v", d.Initial())
	}
	if sess.Form() != d {
		t.Error("ожидалась открытая форма редактирования")
	}
	if backend.Requests(storetest.RouteGet) != 1 {
		t.Errorf("ожидался 1 запрос GET /students/{id}, получено %d", backend.Requests(storetest.RouteGet))
	}
}

// TestViewSession_LoadEditDialogNotFound проверяет уведомление при ошибке чтения.
func TestViewSession_LoadEditDialogNotFound(t *testing.T) {
	_, client := setupBackend(t, seedStudents()...)
	store := NewViewSessionStore(client, nil, 10, time.Hour, 0, testLogger())
	sess, _ := store.GetOrCreate("")

	_, err := sess.LoadEditDialog(context.Background(), 42)
	if storeclient.StatusOf(err) != http.StatusNotFound {
		t.Fatalf("ожидалась ошибка 404, получено %v", err)
	}
	if sess.Form() != nil {
		t.Error("форма не должна открываться")
	}

	toasts := sess.Toasts.Drain()
	if len(toasts) != 1 || toasts[0].Kind != notify.KindError || toasts[0].Message != storeclient.MessageNotFound {
		t.Errorf("ожидалось уведомление об ошибке, получено %+v", toasts)
	}
}

// TestViewSession_CloseFormWhileSubmitting проверяет, что отправляемая форма не закрывается.
func TestViewSession_CloseFormWhileSubmitting(t *testing.T) {
	backend, client := setupBackend(t)
	store := NewViewSessionStore(client, nil, 10, time.Hour, 0, testLogger())
	sess, _ := store.GetOrCreate("")
	form := sess.OpenAddDialog()

	closeErr := make(chan error, 1)
	backend.OnRequest(storetest.RouteCreate, func() {
		closeErr <- sess.CloseForm()
	})

	if _, err := form.Submit(context.Background(), model.StudentDraft{Name: "Carl Smith", Email: "carl@z.net"}); err != nil {
		t.Fatalf("Ошибка Submit: %v", err)
	}
	if err := <-closeErr; !errors.Is(err, ErrSubmitting) {
		t.Errorf("ожидалась ErrSubmitting, получено %v", err)
	}
	if sess.Form() != form {
		t.Error("форма должна оставаться в сессии до завершения отправки")
	}

	if err := sess.CloseForm(); err != nil {
		t.Errorf("закрытие завершённой формы: %v", err)
	}
	if sess.Form() != nil {
		t.Error("форма должна быть снята с сессии")
	}
}

// TestViewSession_ReplaceFormWhileSubmitting проверяет, что успешная отправка
// заменённой формы не закрывает новую форму сессии.
func TestViewSession_ReplaceFormWhileSubmitting(t *testing.T) {
	backend, client := setupBackend(t)
	store := NewViewSessionStore(client, nil, 10, time.Hour, 0, testLogger())
	sess, _ := store.GetOrCreate("")
	first := sess.OpenAddDialog()

	opened := make(chan *StudentFormDialog, 1)
	backend.OnRequest(storetest.RouteCreate, func() {
		opened <- sess.OpenAddDialog()
	})

	saved, err := first.Submit(context.Background(), model.StudentDraft{Name: "Carl Smith", Email: "carl@z.net"})
	if err != nil {
		t.Fatalf("Ошибка Submit: %v", err)
	}
	second := <-opened

	if sess.ReleaseForm(first) {
		t.Error("заменённая форма не должна сниматься с сессии")
	}
	if sess.Form() != second {
		t.Fatal("в сессии должна остаться новая форма")
	}
	if second.State() != DialogIdle {
		t.Errorf("новая форма должна быть idle, получено %s", second.State())
	}
	if res := <-first.Done(); res.Student == nil || res.Student.IDValue() != saved.IDValue() {
		t.Errorf("первая форма должна выдать сохранённую запись, получено %+v", res)
	}

	backend.OnRequest(storetest.RouteCreate, nil)
	if _, err := second.Submit(context.Background(), model.StudentDraft{Name: "Dana Scully", Email: "dana@x.com"}); err != nil {
		t.Errorf("новая форма должна отправляться: %v", err)
	}
	if !sess.ReleaseForm(second) || sess.Form() != nil {
		t.Error("отправленная открытая форма должна сниматься с сессии")
	}
}

// TestViewSession_ReplaceFormWhileSubmittingFails проверяет, что заменённая
// форма с ошибкой отправки закрывается и выдаёт Dismissed.
func TestViewSession_ReplaceFormWhileSubmittingFails(t *testing.T) {
	backend, client := setupBackend(t)
	store := NewViewSessionStore(client, nil, 10, time.Hour, 0, testLogger())
	sess, _ := store.GetOrCreate("")
	first := sess.OpenAddDialog()

	opened := make(chan *StudentFormDialog, 1)
	backend.OnRequest(storetest.RouteCreate, func() {
		opened <- sess.OpenAddDialog()
	})
	backend.FailNext(storetest.RouteCreate, http.StatusInternalServerError)

	if _, err := first.Submit(context.Background(), model.StudentDraft{Name: "Carl Smith", Email: "carl@z.net"}); storeclient.StatusOf(err) != http.StatusInternalServerError {
		t.Fatalf("ожидалась ошибка 500, получено %v", err)
	}
	second := <-opened

	if first.State() != DialogClosed {
		t.Errorf("заменённая форма должна закрыться, получено %s", first.State())
	}
	select {
	case res := <-first.Done():
		if !res.Dismissed {
			t.Errorf("ожидался Dismissed, получено %+v", res)
		}
	default:
		t.Error("итог заменённой формы должен быть выдан")
	}
	if sess.Form() != second || second.State() != DialogIdle {
		t.Error("новая форма должна остаться открытой")
	}

	toasts := sess.Toasts.Drain()
	if len(toasts) != 1 || toasts[0].Message != storeclient.MessageInternal {
		t.Errorf("ожидалось уведомление об ошибке сервера, получено %+v", toasts)
	}
}
