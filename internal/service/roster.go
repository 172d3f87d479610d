// roster.go — контроллер списка студентов с фильтром.
//
// Контроллер хранит коллекцию последней успешной загрузки и строку поиска.
// Отфильтрованное представление пересчитывается синхронно при изменении
// любого из них. После любого успешного изменения коллекция перезагружается
// целиком, локальных правок нет.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/bigkaa/goartstore/student-ui/internal/domain/model"
	"github.com/bigkaa/goartstore/student-ui/internal/notify"
	"github.com/bigkaa/goartstore/student-ui/internal/storeclient"
)

// Ключи и тексты уведомлений об успехе.
const (
	KeyStudentAdded      = "toast.student_added"
	KeyStudentUpdated    = "toast.student_updated"
	KeyStudentDeleted    = "toast.student_deleted"
	KeyStudentsRefreshed = "toast.students_refreshed"

	MessageStudentAdded      = "Student added successfully"
	MessageStudentUpdated    = "Student updated successfully"
	MessageStudentDeleted    = "Student deleted successfully"
	MessageStudentsRefreshed = "Students refreshed successfully"
)

// StudentStore — операции backend, нужные контроллеру и диалогам.
// Реализуется *storeclient.Client.
type StudentStore interface {
	ListAll(ctx context.Context) ([]model.Student, error)
	GetByID(ctx context.Context, id int64) (*model.Student, error)
	Create(ctx context.Context, draft model.StudentDraft) (*model.Student, error)
	Update(ctx context.Context, id int64, draft model.StudentDraft) (*model.Student, error)
	Delete(ctx context.Context, id int64) error
}

// EmptyState — вариант пустого списка.
type EmptyState string

const (
	// EmptyNone — в представлении есть строки.
	EmptyNone EmptyState = ""
	// EmptyNoRecords — поиск не задан, записей нет («No Students Yet»).
	EmptyNoRecords EmptyState = "no_records"
	// EmptyNoMatches — поиск задан, совпадений нет («No Results Found»).
	EmptyNoMatches EmptyState = "no_matches"
)

// RosterSnapshot — состояние списка для отрисовки.
type RosterSnapshot struct {
	// Students — отфильтрованное представление
	Students []model.Student
	// Total — размер всей коллекции
	Total   int
	Term    string
	Loading bool
	Empty   EmptyState
}

// RosterController — контроллер списка одной сессии просмотра.
type RosterController struct {
	store  StudentStore
	sink   notify.Sink
	logger *slog.Logger

	mu         sync.Mutex
	students   []model.Student
	filtered   []model.Student
	term       string
	loading    bool
	generation uint64
}

// NewRosterController создаёт контроллер с пустой коллекцией.
func NewRosterController(store StudentStore, sink notify.Sink, logger *slog.Logger) *RosterController {
	if sink == nil {
		sink = notify.Discard
	}
	return &RosterController{
		store:    store,
		sink:     sink,
		logger:   logger.With(slog.String("component", "roster")),
		students: []model.Student{},
		filtered: []model.Student{},
	}
}

// Load загружает всю коллекцию из backend.
// Успех заменяет коллекцию и пересчитывает представление.
// Ошибка показывается уведомлением, прежняя коллекция сохраняется.
// Если после начала загрузки стартовала более новая, результат
// отбрасывается и возвращается ErrStaleLoad.
func (c *RosterController) Load(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.loading = true
	c.mu.Unlock()

	students, err := c.store.ListAll(ctx)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "Устаревший результат загрузки отброшен",
			slog.Uint64("generation", gen),
		)
		return ErrStaleLoad
	}
	c.loading = false
	if err == nil {
		c.students = students
		if c.students == nil {
			c.students = []model.Student{}
		}
		c.filtered = FilterStudents(c.students, c.term)
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.WarnContext(ctx, "Не удалось загрузить список студентов",
			slog.String("error", err.Error()),
		)
		c.notifyError(err)
		return err
	}

	c.logger.DebugContext(ctx, "Список студентов загружен",
		slog.Int("count", len(students)),
	)
	return nil
}

// Refresh перезагружает коллекцию и сообщает об успехе.
func (c *RosterController) Refresh(ctx context.Context) error {
	if err := c.Load(ctx); err != nil {
		return err
	}
	c.sink.Notify(notify.Success(KeyStudentsRefreshed, MessageStudentsRefreshed))
	return nil
}

// AfterMutationSucceeds вызывается после успешного изменения: полная перезагрузка.
func (c *RosterController) AfterMutationSucceeds(ctx context.Context) error {
	return c.Load(ctx)
}

// DeleteStudent удаляет запись и перезагружает коллекцию.
// Ошибка удаления показывается уведомлением, коллекция не меняется.
// Ошибка последующей загрузки уже показана Load и возвращается вызывающему.
func (c *RosterController) DeleteStudent(ctx context.Context, id int64) error {
	if err := c.store.Delete(ctx, id); err != nil {
		c.logger.WarnContext(ctx, "Не удалось удалить студента",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		c.notifyError(err)
		return err
	}

	c.sink.Notify(notify.Success(KeyStudentDeleted, MessageStudentDeleted))
	if err := c.AfterMutationSucceeds(ctx); err != nil && !errors.Is(err, ErrStaleLoad) {
		return err
	}
	return nil
}

// SetSearchTerm задаёт строку поиска и пересчитывает представление.
// Обращений к backend нет.
func (c *RosterController) SetSearchTerm(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.term = term
	c.filtered = FilterStudents(c.students, term)
}

// ClearSearch сбрасывает строку поиска.
func (c *RosterController) ClearSearch() {
	c.SetSearchTerm("")
}

// Find возвращает запись коллекции по id.
func (c *RosterController) Find(id int64) (model.Student, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.students {
		if s.ID != nil && *s.ID == id {
			return s, true
		}
	}
	return model.Student{}, false
}

// EmptyState возвращает вариант пустого списка.
func (c *RosterController) EmptyState() EmptyState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.emptyStateLocked()
}

func (c *RosterController) emptyStateLocked() EmptyState {
	switch {
	case len(c.filtered) > 0:
		return EmptyNone
	case c.term == "":
		return EmptyNoRecords
	default:
		return EmptyNoMatches
	}
}

// Snapshot возвращает копию состояния для отрисовки.
func (c *RosterController) Snapshot() RosterSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return RosterSnapshot{
		Students: append([]model.Student(nil), c.filtered...),
		Total:    len(c.students),
		Term:     c.term,
		Loading:  c.loading,
		Empty:    c.emptyStateLocked(),
	}
}

// notifyError показывает классифицированный текст ошибки.
func (c *RosterController) notifyError(err error) {
	key, args, message := storeclient.Describe(err)
	c.sink.Notify(notify.Error(key, args, message))
}

// FilterStudents возвращает записи, чьё имя или email содержат term
// без учёта регистра. Пустой после trim term — копия всей коллекции.
// Порядок записей сохраняется.
func FilterStudents(students []model.Student, term string) []model.Student {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]model.Student, 0, len(students))
	for _, s := range students {
		if needle == "" ||
			strings.Contains(strings.ToLower(s.Name), needle) ||
			strings.Contains(strings.ToLower(s.Email), needle) {
			out = append(out, s)
		}
	}
	return out
}

// Initials возвращает до двух заглавных первых букв слов имени.
// "Ada Lovelace" → "AL", "cher" → "C".
func Initials(name string) string {
	var b strings.Builder
	count := 0
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
		count++
		if count == 2 {
			break
		}
	}
	return b.String()
}
