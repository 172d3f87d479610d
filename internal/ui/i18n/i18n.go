// Пакет i18n — тексты Student UI на английском и русском.
// Каталоги — плоские JSON-файлы locales/<lang>.json, встроенные в бинарник.
// Тексты уведомлений и ошибок полей приходят из сервисного слоя как
// ключ каталога плюс готовый английский текст; Message подставляет перевод,
// а при его отсутствии возвращает этот текст.
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
)

// Catalog — переводы одного языка: ключ → текст.
type Catalog map[string]string

// Bundle — каталоги всех языков.
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[string]Catalog
}

// NewBundle создаёт пустой Bundle.
func NewBundle() *Bundle {
	return &Bundle{catalogs: make(map[string]Catalog, len(Languages))}
}

// Add разбирает JSON-каталог языка lang и заменяет прежний.
func (b *Bundle) Add(lang string, data []byte) error {
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("каталог %s: %w", lang, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.catalogs[lang] = catalog
	return nil
}

// Lookup ищет текст в каталоге lang, затем в каталоге DefaultLang.
func (b *Bundle) Lookup(lang, key string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if msg, ok := b.catalogs[lang][key]; ok {
		return msg, true
	}
	msg, ok := b.catalogs[DefaultLang][key]
	return msg, ok
}

// active — каталоги, по которым рендерится UI.
var active atomic.Pointer[Bundle]

// Use делает b активным Bundle.
func Use(b *Bundle) {
	active.Store(b)
}

// Message возвращает перевод key на язык из ctx с подстановкой args.
// Без перевода (или без активного Bundle) возвращается fallback как есть.
func Message(ctx context.Context, key, fallback string, args ...any) string {
	b := active.Load()
	if b == nil || key == "" {
		return fallback
	}
	msg, ok := b.Lookup(LangFromContext(ctx), key)
	if !ok {
		return fallback
	}
	if len(args) == 0 {
		return msg
	}
	return sprintf(msg, args...)
}

// T — текст интерфейса по ключу. Неизвестный ключ выводится как есть.
func T(ctx context.Context, key string) string {
	return Message(ctx, key, key)
}

// Tf — T с подстановкой args.
func Tf(ctx context.Context, key string, args ...any) string {
	return Message(ctx, key, key, args...)
}

// Шаблоны приходят из JSON, статическая проверка printf для них невозможна.
//
//nolint:govet
var sprintf = fmt.Sprintf
