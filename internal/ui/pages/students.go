package pages

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/bigkaa/goartstore/student-ui/internal/service"
	"github.com/bigkaa/goartstore/student-ui/internal/ui/i18n"
)

// StudentItem — карточка студента в списке.
type StudentItem struct {
	ID       int64
	Name     string
	Email    string
	Initials string
}

// RosterData — данные области списка (#roster).
type RosterData struct {
	Students []StudentItem
	// Total — размер всей коллекции
	Total   int
	Term    string
	Loading bool
	Empty   service.EmptyState
}

// StudentsPageData — данные полной страницы /students.
type StudentsPageData struct {
	Roster RosterData
	Toasts ToastsData
}

// StudentsPage — полная страница списка студентов.
func StudentsPage(data StudentsPageData) templ.Component {
	body := component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<div class="student-container">`)

		hw.raw(`<section class="hero-content"><div class="hero-text"><h2 class="hero-title">`)
		hw.text(i18n.T(ctx, "app.hero.title"))
		hw.raw(`</h2><p class="hero-subtitle">`)
		hw.text(i18n.T(ctx, "app.hero.subtitle"))
		hw.raw(`</p></div><div class="hero-actions">`)
		addButton(ctx, hw, "add-button", "action.add")
		hw.raw(`</div></section>`)

		hw.raw(`<section class="controls-card glass-card">`)
		hw.render(ctx, SearchSection(data.Roster.Term, false))
		hw.raw(`<div class="action-buttons"><button type="button" class="refresh-button"`)
		hw.raw(` hx-post="/partials/students/refresh" hx-target="#roster" hx-indicator="#loading" hx-disabled-elt="this">`)
		hw.text(i18n.T(ctx, "action.refresh"))
		hw.raw(`</button></div></section>`)

		hw.raw(`<div id="loading" class="loading-container`)
		if data.Roster.Loading {
			hw.raw(` active`)
		}
		hw.raw(`"><div class="spinner"></div><p class="loading-text">`)
		hw.text(i18n.T(ctx, "list.loading"))
		hw.raw(`</p></div>`)

		hw.raw(`<section id="roster">`)
		hw.render(ctx, Roster(data.Roster))
		hw.raw(`</section></div>`)
	})
	return Layout(body, Toasts(data.Toasts))
}

// SearchSection — поле поиска с кнопкой очистки.
// oob=true — для замены вне основной цели HTMX (после очистки поиска).
func SearchSection(term string, oob bool) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<div id="search-section" class="search-section"`)
		if oob {
			hw.raw(` hx-swap-oob="true"`)
		}
		hw.raw(`><label for="search">`)
		hw.text(i18n.T(ctx, "search.label"))
		hw.raw(`</label><input id="search" type="search" name="q" autocomplete="off"`)
		hw.attr("value", term)
		hw.attr("placeholder", i18n.T(ctx, "search.placeholder"))
		hw.raw(` hx-get="/partials/students-table" hx-trigger="input changed delay:200ms, search" hx-target="#roster">`)
		hw.raw(`<button type="button" class="clear-button" hx-post="/partials/students/clear-search" hx-target="#roster"`)
		hw.attr("title", i18n.T(ctx, "search.clear"))
		hw.raw(`>&times;</button></div>`)
	})
}

// Roster — содержимое области #roster: счётчики, карточки или пустое состояние.
func Roster(data RosterData) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<div class="stats-chips"><span class="stat-chip" data-stat="total">`)
		hw.text(i18n.Tf(ctx, "stats.total", data.Total))
		hw.raw(`</span>`)
		if data.Term != "" {
			hw.raw(`<span class="stat-chip" data-stat="results">`)
			hw.text(i18n.Tf(ctx, "stats.results", len(data.Students)))
			hw.raw(`</span>`)
		}
		hw.raw(`</div>`)

		if data.Empty != service.EmptyNone {
			emptyState(ctx, hw, data.Empty)
			return
		}

		hw.raw(`<div class="students-grid">`)
		for _, st := range data.Students {
			studentCard(ctx, hw, st)
		}
		hw.raw(`</div>`)
	})
}

// studentCard рендерит карточку одного студента.
func studentCard(ctx context.Context, hw *htmlWriter, st StudentItem) {
	id := strconv.FormatInt(st.ID, 10)

	hw.raw(`<article class="student-card glass-card"`)
	hw.attr("data-student-id", id)
	hw.raw(`><div class="student-header"><div class="student-avatar"><span class="avatar-text">`)
	hw.text(st.Initials)
	hw.raw(`</span></div><div class="student-info"><h3 class="student-name">`)
	hw.text(st.Name)
	hw.raw(`</h3><p class="student-email"><a`)
	hw.attr("href", string(templ.URL("mailto:"+st.Email)))
	hw.raw(`>`)
	hw.text(st.Email)
	hw.raw(`</a></p></div><div class="student-id"><span class="id-badge">#`)
	hw.text(id)
	hw.raw(`</span></div></div>`)

	hw.raw(`<div class="student-actions"><button type="button" class="action-button edit" hx-target="#modal"`)
	hw.attr("hx-get", studentPath("/partials/student-form", st.ID))
	hw.raw(`>`)
	hw.text(i18n.T(ctx, "action.edit"))
	hw.raw(`</button><button type="button" class="action-button delete" hx-target="#modal"`)
	hw.attr("hx-get", studentPath("/partials/student-delete", st.ID))
	hw.raw(`>`)
	hw.text(i18n.T(ctx, "action.delete"))
	hw.raw(`</button></div></article>`)
}

// emptyState рендерит пустой список: "нет записей" или "нет совпадений".
func emptyState(ctx context.Context, hw *htmlWriter, empty service.EmptyState) {
	prefix := "empty." + string(empty)

	hw.raw(`<div class="empty-state glass-card"`)
	hw.attr("data-empty", string(empty))
	hw.raw(`><div class="empty-icon">`)
	if empty == service.EmptyNoMatches {
		hw.raw(`&#x1F50D;`)
	} else {
		hw.raw(`&#x1F4DA;`)
	}
	hw.raw(`</div><h3 class="empty-title">`)
	hw.text(i18n.T(ctx, prefix+".title"))
	hw.raw(`</h3><p class="empty-message">`)
	hw.text(i18n.T(ctx, prefix+".message"))
	hw.raw(`</p><div class="empty-actions">`)

	if empty == service.EmptyNoMatches {
		hw.raw(`<button type="button" class="secondary-button" hx-post="/partials/students/clear-search" hx-target="#roster">`)
		hw.text(i18n.T(ctx, prefix+".action"))
		hw.raw(`</button>`)
	} else {
		addButton(ctx, hw, "primary-button", prefix+".action")
	}
	hw.raw(`</div></div>`)
}

// addButton рендерит кнопку открытия диалога добавления.
func addButton(ctx context.Context, hw *htmlWriter, class, labelKey string) {
	hw.raw(`<button type="button" hx-get="/partials/student-form" hx-target="#modal"`)
	hw.attr("class", class)
	hw.raw(`>`)
	hw.text(i18n.T(ctx, labelKey))
	hw.raw(`</button>`)
}
