package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"acctdesk/internal/account"
	"acctdesk/internal/config"
	"acctdesk/internal/element"
	"acctdesk/internal/export"
	"acctdesk/internal/logging"
	"acctdesk/internal/page"
	"acctdesk/internal/popup"
	"acctdesk/internal/theme"
	"acctdesk/internal/transport"
)

type viewState int

const (
	stateBrowse viewState = iota
	stateCommand
)

type model struct {
	ctx      context.Context
	tr       transport.Transport
	cfg      *config.Store
	log      logging.Logger
	schedule element.Scheduler
	theme    theme.Theme
	keys     keyMap

	state  viewState
	width  int
	height int

	page     *page.Page
	registry *account.Registry
	create   *account.CreateForm
	popup    *popup.Popup
	exporter *export.Exporter
	uploader *export.Uploader
	search   string

	focus   element.Element
	field   textinput.Model
	command textinput.Model

	alerts      []string
	infoMessage string
	errMessage  string
}

var _ account.Notifier = (*model)(nil)

func newModel(ctx context.Context, tr transport.Transport, cfg *config.Store, log logging.Logger, schedule element.Scheduler) *model {
	field := textinput.New()
	field.Prompt = ""
	field.CharLimit = 256

	command := textinput.New()
	command.Prompt = ""
	command.Placeholder = "search term, import <path>, export <txt|json|csv>, new, exit."
	command.CharLimit = 256

	m := &model{
		ctx:      ctx,
		tr:       tr,
		cfg:      cfg,
		log:      log,
		schedule: schedule,
		theme:    theme.Default(),
		keys:     defaultKeyMap(),
		field:    field,
		command:  command,
	}
	m.uploader = export.NewUploader(tr, m, log)
	return m
}

// Alert queues a blocking notice; it is shown until dismissed.
func (m *model) Alert(msg string) {
	m.alerts = append(m.alerts, msg)
}

func (m *model) Init() tea.Cmd {
	m.load("")
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if len(m.alerts) > 0 {
			m.dismissAlert(msg)
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case timerMsg:
		msg.fn()
		m.syncFocus()
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case stateCommand:
		cmd = m.updateCommand(msg)
	default:
		cmd = m.updateBrowse(msg)
	}
	return m, cmd
}

func (m *model) dismissAlert(msg tea.KeyMsg) {
	if key.Matches(msg, m.keys.Dismiss) {
		m.alerts = m.alerts[1:]
	}
}

// load fetches the records matching search and mounts a fresh page.
func (m *model) load(search string) {
	records, err := page.Fetch(m.ctx, m.tr, search)
	if err != nil {
		m.log.Warn(m.ctx, "load accounts", "search", search, "err", err)
		m.errMessage = fmt.Sprintf("load accounts: %v", err)
		if m.page == nil {
			m.mount(nil)
		}
		return
	}
	m.search = search
	m.errMessage = ""
	m.mount(records)
}

// mount renders records and binds every collaborator to the new tree.
func (m *model) mount(records []page.Record) {
	p := page.Render(records)
	downloads := m.cfg.Config.DownloadDir

	registry, err := account.NewRegistry(m.ctx, p.Root, account.Deps{
		Transport:   m.tr,
		Notifier:    m,
		Log:         m.log,
		RowTemplate: p.RowTemplate,
		NewExporter: export.Binder(m.tr, downloads, m, m.log),
	})
	if err != nil {
		m.errMessage = err.Error()
		m.log.Error(m.ctx, "bind accounts", "err", err)
		registry = &account.Registry{}
	}

	create, err := account.NewCreateForm(p.Create, account.CreateDeps{
		Transport:   m.tr,
		Log:         m.log,
		RowTemplate: p.RowTemplate,
		Schedule:    m.schedule,
	})
	if err != nil {
		m.errMessage = err.Error()
		return
	}
	create.Init(m.ctx)

	pop, err := popup.New(p.Create, p.Header.Query("."+page.AddLinkClass), p.Create.Query("."+page.CreateCloseClass), popup.Options{
		Timeout:  m.cfg.Config.PopupLock.Std(),
		Schedule: m.schedule,
		Main:     p.Root.Query("." + page.MainClass),
		OnOpen:   create.Reset,
		OnClose:  create.Reset,
	})
	if err != nil {
		m.errMessage = err.Error()
		return
	}
	pop.Init()

	exporter := export.New(p.Results, m.tr, downloads, m, m.log)
	exporter.BindButtons(m.ctx,
		p.Header.Query("."+account.ExportTXTClass),
		p.Header.Query("."+account.ExportJSONClass),
		p.Header.Query("."+account.ExportCSVClass),
	)

	m.page, m.registry, m.create, m.popup, m.exporter = p, registry, create, pop, exporter
	m.focus = nil
	m.syncFocus()
}

// scope is the subtree that currently receives gestures: the open popup, or
// the whole page.
func (m *model) scope() element.Element {
	if m.page == nil {
		return nil
	}
	if m.popup != nil && m.popup.IsOpen() {
		return m.page.Create
	}
	return m.page.Root
}

// ring lists the visible editable inputs and buttons in scope in document order.
func (m *model) ring() []element.Element {
	root := m.scope()
	if root == nil {
		return nil
	}
	return focusables(root, nil)
}

func focusables(el element.Element, out []element.Element) []element.Element {
	if hidden(el) {
		return out
	}
	if el.Tag() == "button" || element.Mutable(el) {
		out = append(out, el)
	}
	for _, c := range el.Children() {
		out = focusables(c, out)
	}
	return out
}

func hidden(el element.Element) bool {
	return el.HasClass(element.HiddenClass) || el.HasClass(element.NoneClass)
}

func (m *model) moveFocus(delta int) {
	ring := m.ring()
	if len(ring) == 0 {
		return
	}
	idx := slices.Index(ring, m.focus)
	if idx < 0 {
		m.setFocus(ring[0])
		return
	}
	m.setFocus(ring[(idx+delta+len(ring))%len(ring)])
}

// setFocus moves focus to el, delivering focusout and focusin so field
// validators see the user leave and enter inputs.
func (m *model) setFocus(el element.Element) {
	if m.focus == el {
		m.bindField()
		return
	}
	old := m.focus
	m.focus = el
	if old != nil && old.Tag() == "input" {
		old.Dispatch(element.FocusOut)
	}
	if el != nil && el.Tag() == "input" {
		el.Dispatch(element.FocusIn)
	}
	m.bindField()
}

// syncFocus keeps focus valid after the tree changed under it.
func (m *model) syncFocus() { m.syncFocusNear(nil) }

// syncFocusNear is syncFocus preferring the first control under anchor when
// the focused one went away.
func (m *model) syncFocusNear(anchor element.Element) {
	ring := m.ring()
	if m.focus != nil && slices.Contains(ring, m.focus) {
		m.bindField()
		return
	}
	m.focus = nil
	for _, el := range ring {
		if anchor != nil && within(el, anchor) {
			m.setFocus(el)
			return
		}
	}
	if len(ring) > 0 {
		m.setFocus(ring[0])
		return
	}
	m.bindField()
}

func within(el, root element.Element) bool {
	for cur := el; cur != nil; cur = cur.Parent() {
		if cur == root {
			return true
		}
	}
	return false
}

// recordOf returns the account base enclosing el, if any.
func recordOf(el element.Element) element.Element {
	for cur := el; cur != nil; cur = cur.Parent() {
		if cur.HasClass(account.BaseClass) {
			return cur
		}
	}
	return nil
}

// bindField points the line editor at the focused input when it is editable.
func (m *model) bindField() {
	if !element.Mutable(m.focus) {
		m.field.Blur()
		return
	}
	m.field.Placeholder, _ = m.focus.Attr(page.AttrPlaceholder)
	m.field.SetValue(m.focus.Value())
	m.field.CursorEnd()
	m.field.Focus()
}

func (m *model) click(el element.Element) {
	anchor := recordOf(el)
	el.Dispatch(element.Click)
	m.syncFocusNear(anchor)
}

func (m *model) updateBrowse(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.field, cmd = m.field.Update(msg)
		return cmd
	}
	switch {
	case key.Matches(keyMsg, m.keys.Next):
		m.moveFocus(1)
		return nil
	case key.Matches(keyMsg, m.keys.Prev):
		m.moveFocus(-1)
		return nil
	case key.Matches(keyMsg, m.keys.Press):
		if m.focus != nil && m.focus.Tag() == "button" {
			m.resetMessages()
			m.click(m.focus)
			return nil
		}
		m.moveFocus(1)
		return nil
	case key.Matches(keyMsg, m.keys.Back):
		if m.popup != nil && m.popup.IsOpen() {
			m.popup.Close()
			m.syncFocus()
			return nil
		}
		return m.enterCommand()
	}

	if element.Mutable(m.focus) {
		var cmd tea.Cmd
		m.field, cmd = m.field.Update(msg)
		m.focus.SetValue(m.field.Value())
		return cmd
	}
	if key.Matches(keyMsg, m.keys.Command) {
		return m.enterCommand()
	}
	return nil
}

func (m *model) enterCommand() tea.Cmd {
	m.state = stateCommand
	m.field.Blur()
	m.command.SetValue("")
	return m.command.Focus()
}

func (m *model) leaveCommand() {
	m.state = stateBrowse
	m.command.SetValue("")
	m.command.Blur()
	m.syncFocus()
}

func (m *model) updateCommand(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.leaveCommand()
			return nil
		case tea.KeyEnter:
			value := m.command.Value()
			m.resetMessages()
			cmd := m.runCommand(value)
			if m.state == stateCommand {
				m.leaveCommand()
			}
			return cmd
		}
	}
	var cmd tea.Cmd
	m.command, cmd = m.command.Update(msg)
	return cmd
}

func (m *model) resetMessages() {
	m.infoMessage = ""
	m.errMessage = ""
}

func (m *model) View() string {
	if m.page == nil {
		return m.theme.Faint.Render("Loading accounts...") + "\n"
	}
	lines := []string{
		m.theme.Title.Render("Account Desk"),
		m.theme.Secondary.Render(m.subtitle()),
	}
	if m.infoMessage != "" {
		lines = append(lines, m.theme.Success.Render(m.infoMessage))
	}
	if m.errMessage != "" {
		lines = append(lines, m.theme.Danger.Render(m.errMessage))
	}
	lines = append(lines, "")

	r := renderer{theme: m.theme, focus: m.focus, field: m.field}
	if m.popup != nil && m.popup.IsOpen() {
		lines = append(lines, r.block(m.page.Header), r.block(m.page.Create))
	} else {
		lines = append(lines, r.block(m.page.Root))
	}
	if len(m.alerts) > 0 {
		lines = append(lines, "", m.theme.Alert.Render(m.alerts[0]+"\n\n"+m.theme.Faint.Render("enter to dismiss")))
	}

	lines = append(lines, "", m.theme.Border.Render(strings.Repeat("─", 40)))
	if m.state == stateCommand {
		lines = append(lines, m.theme.Accent.Render("> ")+m.command.View())
	} else {
		lines = append(lines, m.help())
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m *model) subtitle() string {
	if m.search == "" || m.search == "*" {
		return fmt.Sprintf("%s · all accounts", m.cfg.Config.Name)
	}
	return fmt.Sprintf("%s · search %q", m.cfg.Config.Name, m.search)
}

func (m *model) help() string {
	bindings := m.keys.helpBindings()
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, m.theme.HelpKey.Render(h.Key)+" "+m.theme.HelpValue.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
