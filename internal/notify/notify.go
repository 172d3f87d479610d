// Пакет notify — кратковременные уведомления пользователю (toast).
// Уведомление видно NotifyDuration (по умолчанию 4 секунды), затем исчезает.
// Поддерживаются два вида: success и error.
package notify

import (
	"sync"
	"time"
)

// DefaultDuration — время показа уведомления по умолчанию.
const DefaultDuration = 4 * time.Second

// Kind — вид уведомления.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification — одно уведомление.
type Notification struct {
	Kind Kind
	// Key — ключ i18n (может быть пустым)
	Key string
	// Args — аргументы перевода
	Args []any
	// Message — текст по умолчанию (английский)
	Message   string
	CreatedAt time.Time
}

// Success создаёт уведомление об успехе.
func Success(key, message string) Notification {
	return Notification{Kind: KindSuccess, Key: key, Message: message}
}

// Error создаёт уведомление об ошибке.
func Error(key string, args []any, message string) Notification {
	return Notification{Kind: KindError, Key: key, Args: args, Message: message}
}

// Sink — получатель уведомлений.
type Sink interface {
	Notify(n Notification)
}

// SinkFunc — адаптер функции к Sink.
type SinkFunc func(n Notification)

// Notify вызывает f(n).
func (f SinkFunc) Notify(n Notification) { f(n) }

// Discard — Sink, отбрасывающий уведомления.
var Discard Sink = SinkFunc(func(Notification) {})

// Queue — очередь уведомлений одной сессии просмотра.
// Drain отдаёт накопленные уведомления и удаляет их из очереди.
// Потокобезопасна.
type Queue struct {
	mu       sync.Mutex
	items    []Notification
	duration time.Duration
	now      func() time.Time
}

// NewQueue создаёт очередь. duration <= 0 заменяется на DefaultDuration.
func NewQueue(duration time.Duration) *Queue {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Queue{duration: duration, now: time.Now}
}

// Duration возвращает время показа уведомления.
func (q *Queue) Duration() time.Duration {
	return q.duration
}

// Notify добавляет уведомление в очередь.
func (q *Queue) Notify(n Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = q.now()
	}
	q.items = append(q.items, n)
}

// Drain возвращает неистёкшие уведомления и очищает очередь.
// Уведомления старше duration уже не показываются.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	out := make([]Notification, 0, len(q.items))
	for _, n := range q.items {
		if now.Sub(n.CreatedAt) < q.duration {
			out = append(out, n)
		}
	}
	q.items = nil
	return out
}

// Len возвращает количество уведомлений в очереди.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Recorder — Sink для тестов, сохраняющий все уведомления.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify сохраняет уведомление.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All возвращает копию сохранённых уведомлений.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Last возвращает последнее уведомление и признак его наличия.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}
