package pages

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/bigkaa/goartstore/student-ui/internal/service"
	"github.com/bigkaa/goartstore/student-ui/internal/ui/i18n"
)

// cancelDialogPath — закрытие открытого диалога без результата.
const cancelDialogPath = "/partials/dialog/cancel"

// FormData — данные диалога добавления/редактирования.
type FormData struct {
	Mode service.DialogMode
	// ID — идентификатор записи (только для редактирования)
	ID    int64
	Name  string
	Email string
	// Errors — переведённые ошибки полей: name, email
	Errors map[string]string
}

// StudentForm — модальный диалог формы студента.
func StudentForm(data FormData) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		edit := data.Mode == service.DialogModeEdit
		titleKey, subtitleKey, submitKey := "form.add.title", "form.add.subtitle", "form.submit.add"
		if edit {
			titleKey, subtitleKey, submitKey = "form.edit.title", "form.edit.subtitle", "form.submit.edit"
		}

		hw.raw(`<div class="dialog" role="dialog" aria-modal="true"`)
		hw.attr("data-mode", string(data.Mode))
		hw.raw(`><div class="dialog-header"><div class="header-text"><h2>`)
		hw.text(i18n.T(ctx, titleKey))
		hw.raw(`</h2><p class="header-subtitle">`)
		hw.text(i18n.T(ctx, subtitleKey))
		hw.raw(`</p></div></div>`)

		hw.raw(`<form class="dialog-content" hx-target="#modal" hx-disabled-elt="find button"`)
		if edit {
			hw.attr("hx-put", studentPath("/partials/students", data.ID))
		} else {
			hw.raw(` hx-post="/partials/students"`)
		}
		hw.raw(`><p class="section-title">`)
		hw.text(i18n.T(ctx, "form.section"))
		hw.raw(`</p>`)

		if edit {
			hw.raw(`<div class="form-field"><label for="student-id">`)
			hw.text(i18n.T(ctx, "form.id.label"))
			hw.raw(`</label><input id="student-id" type="text" readonly`)
			hw.attr("value", strconv.FormatInt(data.ID, 10))
			hw.raw(`></div>`)
		}

		formField(ctx, hw, "name", "text", data.Name, data.Errors["name"])
		formField(ctx, hw, "email", "email", data.Email, data.Errors["email"])

		hw.raw(`<div class="dialog-actions"><button type="button" class="cancel-button" data-dialog-cancel hx-swap="none"`)
		hw.attr("hx-post", cancelDialogPath)
		hw.raw(`>`)
		hw.text(i18n.T(ctx, "form.cancel"))
		hw.raw(`</button><button type="submit" class="primary-button"><span class="submit-label">`)
		hw.text(i18n.T(ctx, submitKey))
		hw.raw(`</span><span class="submitting-label">`)
		hw.text(i18n.T(ctx, "form.saving"))
		hw.raw(`</span></button></div></form></div>`)
	})
}

// formField рендерит поле формы с подсказкой или ошибкой.
func formField(ctx context.Context, hw *htmlWriter, name, inputType, value, fieldErr string) {
	id := "student-" + name

	hw.raw(`<div class="form-field`)
	if fieldErr != "" {
		hw.raw(` invalid`)
	}
	hw.raw(`"><label`)
	hw.attr("for", id)
	hw.raw(`>`)
	hw.text(i18n.T(ctx, "form."+name+".label"))
	hw.raw(`</label><input`)
	hw.attr("id", id)
	hw.attr("type", inputType)
	hw.attr("name", name)
	hw.attr("value", value)
	hw.attr("placeholder", i18n.T(ctx, "form."+name+".placeholder"))
	hw.raw(` maxlength="100">`)
	if fieldErr != "" {
		hw.raw(`<p class="field-error"`)
		hw.attr("data-field", name)
		hw.raw(`>`)
		hw.text(fieldErr)
		hw.raw(`</p>`)
	} else {
		hw.raw(`<p class="field-hint">`)
		hw.text(i18n.T(ctx, "form."+name+".hint"))
		hw.raw(`</p>`)
	}
	hw.raw(`</div>`)
}

// DeleteData — данные диалога подтверждения удаления.
type DeleteData struct {
	ID       int64
	Name     string
	Initials string
}

// DeleteConfirm — модальный диалог подтверждения удаления.
func DeleteConfirm(data DeleteData) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<div class="dialog confirm" role="alertdialog" aria-modal="true"><div class="dialog-header">`)
		hw.raw(`<div class="warning-icon">&#x26A0;&#xFE0F;</div><div class="header-text"><h2>`)
		hw.text(i18n.T(ctx, "delete.title"))
		hw.raw(`</h2><p class="header-subtitle">`)
		hw.text(i18n.T(ctx, "delete.subtitle"))
		hw.raw(`</p></div></div>`)

		hw.raw(`<div class="dialog-content"><div class="record-card"><div class="student-avatar"><span class="avatar-text">`)
		hw.text(data.Initials)
		hw.raw(`</span></div><div><strong class="student-name">`)
		hw.text(data.Name)
		hw.raw(`</strong><span class="record-label">`)
		hw.text(i18n.T(ctx, "delete.record"))
		hw.raw(`</span></div></div><div class="consequences"><div class="consequence-item"><span>&#x1F5D1;&#xFE0F;</span><span>`)
		hw.text(i18n.T(ctx, "delete.consequence.data"))
		hw.raw(`</span></div><div class="consequence-item"><span>&#x23F3;</span><span>`)
		hw.text(i18n.T(ctx, "delete.consequence.irreversible"))
		hw.raw(`</span></div></div></div>`)

		hw.raw(`<div class="dialog-actions"><button type="button" class="cancel-button" data-dialog-cancel hx-swap="none"`)
		hw.attr("hx-post", cancelDialogPath)
		hw.raw(`>`)
		hw.text(i18n.T(ctx, "delete.keep"))
		hw.raw(`</button><button type="button" class="delete-button" hx-target="#roster" hx-disabled-elt="this"`)
		hw.attr("hx-delete", studentPath("/partials/students", data.ID))
		hw.raw(`>`)
		hw.text(i18n.T(ctx, "delete.confirm"))
		hw.raw(`</button></div></div>`)
	})
}
