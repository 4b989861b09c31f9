package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"acctdesk/internal/account"
	"acctdesk/internal/element"
	"acctdesk/internal/page"
	"acctdesk/internal/popup"
	"acctdesk/internal/theme"
	"acctdesk/internal/validation"
)

// renderer draws an element tree. Hidden subtrees are skipped.
type renderer struct {
	theme theme.Theme
	focus element.Element
	field textinput.Model
}

// Containers whose children sit side by side.
var inlineClasses = []string{
	page.HeaderClass,
	page.FieldClass,
	page.ButtonsClass,
	account.TitleContainerClass,
	account.DetailsContentClass,
}

func inline(el element.Element) bool {
	for _, c := range inlineClasses {
		if el.HasClass(c) {
			return true
		}
	}
	return false
}

func (r renderer) block(el element.Element) string {
	if el == nil || hidden(el) {
		return ""
	}
	switch el.Tag() {
	case "input":
		return r.input(el)
	case "button":
		return r.button(el)
	}

	var parts []string
	if text := el.Text(); text != "" {
		parts = append(parts, r.text(el, text))
	}
	for _, c := range el.Children() {
		if s := r.block(c); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}

	var out string
	if inline(el) {
		out = lipgloss.JoinHorizontal(lipgloss.Top, spaced(parts)...)
	} else {
		out = lipgloss.JoinVertical(lipgloss.Left, parts...)
	}
	switch {
	case el.HasClass(popup.BaseClass):
		return r.theme.Popup.Render(out)
	case el.HasClass(account.BaseClass) && el.HasClass(account.EditClass):
		return r.theme.Editing.Render(out)
	case el.HasClass(account.BaseClass):
		return r.theme.Record.Render(out)
	}
	return out
}

func (r renderer) text(el element.Element, text string) string {
	switch {
	case el.HasClass(validation.ErrorLabelClass):
		return r.theme.Danger.Render(text)
	case el.HasClass(account.CreatedLabelClass):
		return r.theme.Success.Render(text)
	case el.HasClass(page.CreateTitleClass):
		return r.theme.Subtitle.Render(text)
	case el.HasClass(page.EmptyResultClass):
		return r.theme.Warning.Render(text)
	default:
		return text
	}
}

func (r renderer) input(el element.Element) string {
	label, _ := el.Attr(page.AttrPlaceholder)
	focused := el == r.focus
	value := el.Value()

	var body string
	switch {
	case focused && element.Mutable(el):
		body = r.field.View()
	case focused:
		body = r.theme.Focused.Render(orBlank(value))
	case element.Mutable(el):
		body = r.theme.Field.Render("[" + orBlank(value) + "]")
	default:
		body = r.theme.ReadOnly.Render(value)
	}
	if el.HasClass(account.TitleNameClass) && !element.Mutable(el) && !focused {
		return r.theme.Primary.Bold(true).Render(value)
	}
	return r.theme.FieldLabel.Render(label+":") + " " + body
}

func (r renderer) button(el element.Element) string {
	text := "[" + el.Text() + "]"
	if el == r.focus {
		return r.theme.Focused.Render(text)
	}
	return r.theme.Button.Render(text)
}

func spaced(parts []string) []string {
	out := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			out = append(out, " ")
		}
		out = append(out, p)
	}
	return out
}

func orBlank(v string) string {
	if strings.TrimSpace(v) == "" {
		return "   "
	}
	return v
}
