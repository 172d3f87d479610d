// sessions.go — сессии просмотра (одна на вкладку браузера).
// Каждая сессия владеет своим контроллером списка, очередью уведомлений
// и открытыми диалогами. Хранилище — LRU с TTL поверх
// hashicorp/golang-lru/v2/expirable; обращение к сессии продлевает её TTL.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/student-ui/internal/domain/model"
	"github.com/bigkaa/goartstore/student-ui/internal/notify"
	"github.com/bigkaa/goartstore/student-ui/internal/storeclient"
)

// Prometheus-метрики сессий просмотра.
var (
	viewSessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "su_view_sessions_created_total",
		Help: "Общее количество созданных сессий просмотра.",
	})
	viewSessionsEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "su_view_sessions_evicted_total",
		Help: "Общее количество сессий просмотра, вытесненных из LRU или истёкших по TTL.",
	})
)

// ViewSession — состояние одной вкладки браузера.
type ViewSession struct {
	ID     string
	Roster *RosterController
	Toasts *notify.Queue

	store     StudentStore
	validator *Validator
	logger    *slog.Logger

	mu           sync.Mutex
	loaded       bool
	form         *StudentFormDialog
	deleteDialog *DeleteConfirmDialog
}

// MarkLoaded отмечает первую загрузку списка.
// Возвращает true, если сессия ещё не загружалась.
func (s *ViewSession) MarkLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	first := !s.loaded
	s.loaded = true
	return first
}

// OpenAddDialog открывает диалог добавления, заменяя открытую форму.
func (s *ViewSession) OpenAddDialog() *StudentFormDialog {
	d := NewAddDialog(s.store, s.Toasts, s.validator, s.logger)
	s.replaceForm(d)
	return d
}

// OpenEditDialog открывает диалог редактирования записи.
func (s *ViewSession) OpenEditDialog(original model.Student) (*StudentFormDialog, error) {
	d, err := NewEditDialog(original, s.store, s.Toasts, s.validator, s.logger)
	if err != nil {
		return nil, err
	}
	s.replaceForm(d)
	return d, nil
}

// Form возвращает открытую форму или nil.
func (s *ViewSession) Form() *StudentFormDialog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// CloseForm закрывает открытую форму.
// Во время отправки возвращает ErrSubmitting, форма остаётся открытой.
func (s *ViewSession) CloseForm() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return nil
	}
	if err := s.form.Cancel(); errors.Is(err, ErrSubmitting) {
		return err
	}
	s.form = nil
	return nil
}

// LoadEditDialog заново читает запись id и открывает по ней диалог
// редактирования. Ошибка чтения показывается уведомлением, диалог
// не открывается.
func (s *ViewSession) LoadEditDialog(ctx context.Context, id int64) (*StudentFormDialog, error) {
	st, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "Не удалось загрузить студента для редактирования",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		key, args, message := storeclient.Describe(err)
		s.Toasts.Notify(notify.Error(key, args, message))
		return nil, err
	}
	return s.OpenEditDialog(*st)
}

// ReleaseForm снимает с сессии форму d после её успешной отправки.
// Возвращает false, если d уже заменена другой формой: открытая форма
// при этом не трогается.
func (s *ViewSession) ReleaseForm(d *StudentFormDialog) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form != d {
		return false
	}
	s.form = nil
	return true
}

func (s *ViewSession) replaceForm(d *StudentFormDialog) {
	s.mu.Lock()
	prev := s.form
	s.form = d
	s.mu.Unlock()
	if prev != nil && prev.Abandon() {
		s.logger.Debug("Форма заменена во время отправки, закроется по её завершении",
			slog.String("mode", string(prev.Mode())),
		)
	}
}

// OpenDeleteDialog открывает подтверждение удаления, заменяя открытое.
func (s *ViewSession) OpenDeleteDialog(id int64, name string) *DeleteConfirmDialog {
	d := NewDeleteConfirmDialog(id, name)
	s.mu.Lock()
	prev := s.deleteDialog
	s.deleteDialog = d
	s.mu.Unlock()
	if prev != nil {
		if err := prev.Cancel(); err != nil {
			s.logger.Debug("Заменено уже закрытое подтверждение удаления",
				slog.Int64("id", prev.ID()),
			)
		}
	}
	return d
}

// TakeDeleteDialog возвращает открытое подтверждение для записи id
// и снимает его с сессии. Возвращает nil, если подтверждение не открыто.
func (s *ViewSession) TakeDeleteDialog(id int64) *DeleteConfirmDialog {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteDialog == nil || s.deleteDialog.ID() != id {
		return nil
	}
	d := s.deleteDialog
	s.deleteDialog = nil
	return d
}

// CloseDeleteDialog отменяет открытое подтверждение удаления.
func (s *ViewSession) CloseDeleteDialog() {
	s.mu.Lock()
	d := s.deleteDialog
	s.deleteDialog = nil
	s.mu.Unlock()
	if d != nil {
		if err := d.Cancel(); err != nil {
			s.logger.Debug("Подтверждение удаления уже закрыто",
				slog.Int64("id", d.ID()),
			)
		}
	}
}

// ViewSessionStore — LRU сессий просмотра с TTL.
type ViewSessionStore struct {
	cache          *expirable.LRU[string, *ViewSession]
	ttl            time.Duration
	store          StudentStore
	validator      *Validator
	notifyDuration time.Duration
	logger         *slog.Logger
	// mu сериализует GetOrCreate
	mu sync.Mutex
}

// NewViewSessionStore создаёт хранилище сессий.
// maxSize — максимальное количество сессий, ttl — время жизни без обращений.
func NewViewSessionStore(
	store StudentStore,
	validator *Validator,
	maxSize int,
	ttl time.Duration,
	notifyDuration time.Duration,
	logger *slog.Logger,
) *ViewSessionStore {
	if validator == nil {
		validator = NewValidator()
	}
	onEvict := func(_ string, _ *ViewSession) {
		viewSessionsEvictedTotal.Inc()
	}
	return &ViewSessionStore{
		cache:          expirable.NewLRU[string, *ViewSession](maxSize, onEvict, ttl),
		ttl:            ttl,
		store:          store,
		validator:      validator,
		notifyDuration: notifyDuration,
		logger:         logger.With(slog.String("component", "view_sessions")),
	}
}

// TTL возвращает время жизни сессии.
func (vs *ViewSessionStore) TTL() time.Duration {
	return vs.ttl
}

// Get возвращает сессию по id и продлевает её TTL.
func (vs *ViewSessionStore) Get(id string) (*ViewSession, bool) {
	if id == "" {
		return nil, false
	}
	sess, ok := vs.cache.Get(id)
	if !ok {
		return nil, false
	}
	vs.cache.Add(id, sess)
	return sess, true
}

// GetOrCreate возвращает существующую сессию или создаёт новую.
// Второе значение — true, если сессия создана.
func (vs *ViewSessionStore) GetOrCreate(id string) (*ViewSession, bool) {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if sess, ok := vs.Get(id); ok {
		return sess, false
	}
	return vs.createLocked(), true
}

// Len возвращает количество активных сессий.
func (vs *ViewSessionStore) Len() int {
	return vs.cache.Len()
}

func (vs *ViewSessionStore) createLocked() *ViewSession {
	id := uuid.NewString()
	toasts := notify.NewQueue(vs.notifyDuration)
	logger := vs.logger.With(slog.String("view_session", id))

	sess := &ViewSession{
		ID:        id,
		Roster:    NewRosterController(vs.store, toasts, logger),
		Toasts:    toasts,
		store:     vs.store,
		validator: vs.validator,
		logger:    logger,
	}
	vs.cache.Add(id, sess)
	viewSessionsCreatedTotal.Inc()
	vs.logger.Debug("Создана сессия просмотра", slog.String("view_session", id))
	return sess
}
