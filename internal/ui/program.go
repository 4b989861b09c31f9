package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"acctdesk/internal/config"
	"acctdesk/internal/logging"
	"acctdesk/internal/transport"
)

// Program wraps the Bubble Tea program lifecycle.
type Program struct {
	program *tea.Program
}

// timerMsg carries a scheduled callback back onto the update loop.
type timerMsg struct{ fn func() }

// NewProgram constructs an interactive session against the backend behind tr.
func NewProgram(ctx context.Context, tr transport.Transport, cfg *config.Store, log logging.Logger) *Program {
	p := &Program{}
	schedule := func(d time.Duration, fn func()) {
		time.AfterFunc(d, func() { p.program.Send(timerMsg{fn: fn}) })
	}
	m := newModel(ctx, tr, cfg, log, schedule)
	p.program = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	return p
}

// Run launches the Bubble Tea program and blocks until it exits.
func (p *Program) Run() error {
	if p == nil || p.program == nil {
		return fmt.Errorf("nil program")
	}
	_, err := p.program.Run()
	return err
}
