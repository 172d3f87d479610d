// dialog.go — модальные диалоги изменения записей.
//
// StudentFormDialog собирает и проверяет поля одной записи и отправляет их
// в backend (создание или обновление). DeleteConfirmDialog только
// подтверждает удаление и сетевой логики не содержит.
//
// Итог диалога доступен через Done(): канал выдаёт ровно одно значение
// при закрытии диалога. Состояния формы:
// idle → submitting → closed (успех) или idle (ошибка, диалог открыт).
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bigkaa/goartstore/student-ui/internal/domain/model"
	"github.com/bigkaa/goartstore/student-ui/internal/notify"
	"github.com/bigkaa/goartstore/student-ui/internal/storeclient"
)

// DialogMode — режим формы.
type DialogMode string

const (
	DialogModeAdd  DialogMode = "add"
	DialogModeEdit DialogMode = "edit"
)

// DialogState — состояние диалога.
type DialogState string

const (
	DialogIdle       DialogState = "idle"
	DialogSubmitting DialogState = "submitting"
	DialogClosed     DialogState = "closed"
)

// Result — итог закрытого диалога.
type Result struct {
	// Student — запись, возвращённая backend (форма, успех)
	Student *model.Student
	// Confirmed — удаление подтверждено (диалог удаления)
	Confirmed bool
	// Dismissed — диалог закрыт без результата
	Dismissed bool
}

// resultGate — одноразовая выдача итога диалога.
type resultGate struct {
	once sync.Once
	ch   chan Result
}

func newResultGate() *resultGate {
	return &resultGate{ch: make(chan Result, 1)}
}

func (g *resultGate) resolve(r Result) {
	g.once.Do(func() {
		g.ch <- r
		close(g.ch)
	})
}

// StudentFormDialog — диалог добавления или редактирования студента.
type StudentFormDialog struct {
	mode      DialogMode
	original  model.Student
	store     StudentStore
	sink      notify.Sink
	validator *Validator
	logger    *slog.Logger

	mu      sync.Mutex
	state   DialogState
	lastErr error
	// abandoned — диалог заменён другим во время отправки
	abandoned bool
	gate      *resultGate
}

// NewAddDialog создаёт диалог добавления.
func NewAddDialog(store StudentStore, sink notify.Sink, validator *Validator, logger *slog.Logger) *StudentFormDialog {
	return newFormDialog(DialogModeAdd, model.Student{}, store, sink, validator, logger)
}

// NewEditDialog создаёт диалог редактирования записи.
// Запись без id редактировать нельзя (ErrMissingID).
func NewEditDialog(
	original model.Student,
	store StudentStore,
	sink notify.Sink,
	validator *Validator,
	logger *slog.Logger,
) (*StudentFormDialog, error) {
	if !original.Persisted() {
		return nil, ErrMissingID
	}
	return newFormDialog(DialogModeEdit, original, store, sink, validator, logger), nil
}

func newFormDialog(
	mode DialogMode,
	original model.Student,
	store StudentStore,
	sink notify.Sink,
	validator *Validator,
	logger *slog.Logger,
) *StudentFormDialog {
	if sink == nil {
		sink = notify.Discard
	}
	if validator == nil {
		validator = NewValidator()
	}
	return &StudentFormDialog{
		mode:      mode,
		original:  original,
		store:     store,
		sink:      sink,
		validator: validator,
		logger:    logger.With(slog.String("component", "student_form"), slog.String("mode", string(mode))),
		state:     DialogIdle,
		gate:      newResultGate(),
	}
}

// Mode возвращает режим формы.
func (d *StudentFormDialog) Mode() DialogMode { return d.mode }

// Original возвращает редактируемую запись (пустую в режиме добавления).
func (d *StudentFormDialog) Original() model.Student { return d.original }

// Initial возвращает начальные значения полей формы.
func (d *StudentFormDialog) Initial() model.StudentDraft { return d.original.Draft() }

// State возвращает текущее состояние.
func (d *StudentFormDialog) State() DialogState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Err возвращает ошибку последней неудачной отправки.
func (d *StudentFormDialog) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// Done возвращает канал с итогом диалога.
func (d *StudentFormDialog) Done() <-chan Result { return d.gate.ch }

// Validate проверяет поля без обращения к backend.
func (d *StudentFormDialog) Validate(draft model.StudentDraft) FieldErrors {
	return d.validator.Validate(draft)
}

// Submit проверяет поля и отправляет их в backend.
// Ошибки полей возвращаются как FieldErrors, запрос не выполняется.
// Ошибка backend показывается уведомлением, диалог остаётся открытым.
// Успех закрывает диалог с записью, возвращённой backend.
func (d *StudentFormDialog) Submit(ctx context.Context, draft model.StudentDraft) (*model.Student, error) {
	d.mu.Lock()
	switch d.state {
	case DialogClosed:
		d.mu.Unlock()
		return nil, ErrDialogClosed
	case DialogSubmitting:
		d.mu.Unlock()
		return nil, ErrSubmitting
	}
	if fieldErrs := d.validator.Validate(draft); fieldErrs != nil {
		d.mu.Unlock()
		return nil, fieldErrs
	}
	d.state = DialogSubmitting
	d.lastErr = nil
	d.mu.Unlock()

	var (
		saved *model.Student
		err   error
	)
	if d.mode == DialogModeAdd {
		saved, err = d.store.Create(ctx, draft)
	} else {
		saved, err = d.store.Update(ctx, d.original.IDValue(), draft)
	}

	if err != nil {
		d.mu.Lock()
		abandoned := d.abandoned
		d.state = DialogIdle
		if abandoned {
			d.state = DialogClosed
		}
		d.lastErr = err
		d.mu.Unlock()

		d.logger.WarnContext(ctx, "Не удалось сохранить студента",
			slog.Int64("id", d.original.IDValue()),
			slog.String("error", err.Error()),
		)
		key, args, message := storeclient.Describe(err)
		d.sink.Notify(notify.Error(key, args, message))
		if abandoned {
			d.gate.resolve(Result{Dismissed: true})
		}
		return nil, fmt.Errorf("сохранение студента: %w", err)
	}

	d.mu.Lock()
	d.state = DialogClosed
	d.mu.Unlock()

	if d.mode == DialogModeAdd {
		d.sink.Notify(notify.Success(KeyStudentAdded, MessageStudentAdded))
	} else {
		d.sink.Notify(notify.Success(KeyStudentUpdated, MessageStudentUpdated))
	}
	d.logger.InfoContext(ctx, "Студент сохранён", slog.Int64("id", saved.IDValue()))

	d.gate.resolve(Result{Student: saved})
	return saved, nil
}

// Cancel закрывает диалог без результата.
// Во время отправки закрыть диалог нельзя.
func (d *StudentFormDialog) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case DialogClosed:
		return ErrDialogClosed
	case DialogSubmitting:
		return ErrSubmitting
	}
	d.state = DialogClosed
	d.gate.resolve(Result{Dismissed: true})
	return nil
}

// Abandon закрывает диалог, который заменён другим.
// Отправляемый диалог закрывается по завершении запроса: успех выдаёт
// запись, ошибка выдаёт Dismissed. Возвращает true, если отправка ещё идёт.
func (d *StudentFormDialog) Abandon() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case DialogClosed:
		return false
	case DialogSubmitting:
		d.abandoned = true
		return true
	}
	d.state = DialogClosed
	d.gate.resolve(Result{Dismissed: true})
	return false
}

// DeleteConfirmDialog — подтверждение удаления записи.
type DeleteConfirmDialog struct {
	id   int64
	name string

	mu     sync.Mutex
	closed bool
	gate   *resultGate
}

// NewDeleteConfirmDialog создаёт диалог подтверждения для записи.
func NewDeleteConfirmDialog(id int64, name string) *DeleteConfirmDialog {
	return &DeleteConfirmDialog{id: id, name: name, gate: newResultGate()}
}

// ID возвращает идентификатор удаляемой записи.
func (d *DeleteConfirmDialog) ID() int64 { return d.id }

// Name возвращает отображаемое имя записи.
func (d *DeleteConfirmDialog) Name() string { return d.name }

// Done возвращает канал с итогом диалога.
func (d *DeleteConfirmDialog) Done() <-chan Result { return d.gate.ch }

// Confirm подтверждает удаление.
func (d *DeleteConfirmDialog) Confirm() error {
	return d.close(Result{Confirmed: true})
}

// Cancel отменяет удаление.
func (d *DeleteConfirmDialog) Cancel() error {
	return d.close(Result{Dismissed: true})
}

func (d *DeleteConfirmDialog) close(r Result) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDialogClosed
	}
	d.closed = true
	d.gate.resolve(r)
	return nil
}
