// catalogs.go — встроенные каталоги переводов.
package i18n

import (
	"embed"
	"fmt"
	"log/slog"
)

//go:embed locales/*.json
var locales embed.FS

// Load читает встроенные каталоги всех языков и делает их активными.
func Load(logger *slog.Logger) (*Bundle, error) {
	b := NewBundle()
	for _, lang := range Languages {
		path := "locales/" + lang + ".json"
		data, err := locales.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("чтение %s: %w", path, err)
		}
		if err := b.Add(lang, data); err != nil {
			return nil, err
		}
	}
	Use(b)

	logger.Info("Каталоги переводов загружены", slog.Any("languages", Languages))
	return b, nil
}
