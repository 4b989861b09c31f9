package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"acctdesk/internal/export"
)

// runCommand executes one line typed at the command prompt. Anything that
// is not a known command is taken as a search term.
func (m *model) runCommand(value string) tea.Cmd {
	v := strings.TrimSpace(value)
	lower := strings.ToLower(v)
	switch {
	case isExitCommand(v):
		return tea.Quit
	case isBackCommand(v), v == "":
		return nil
	case lower == "new":
		m.leaveCommand()
		if m.popup != nil && m.popup.Open() {
			m.syncFocus()
		}
	case lower == "all":
		m.load("*")
	case strings.HasPrefix(lower, "import "):
		m.handleImport(v[len("import "):])
	case strings.HasPrefix(lower, "export "):
		m.handleExport(v[len("export "):])
	case strings.HasPrefix(lower, "search "):
		m.load(strings.TrimSpace(v[len("search "):]))
	default:
		m.load(v)
	}
	return nil
}

func (m *model) handleImport(path string) {
	resolved, err := expandPath(path)
	if err != nil {
		m.errMessage = fmt.Sprintf("import path: %v", err)
		return
	}
	n, err := m.uploader.Upload(m.ctx, resolved)
	if err != nil {
		return
	}
	m.infoMessage = fmt.Sprintf("Imported %d account(s)", n)
	m.load(m.search)
}

func (m *model) handleExport(arg string) {
	format, err := export.ParseFormat(arg)
	if err != nil {
		m.errMessage = err.Error()
		return
	}
	path, err := m.exporter.Export(m.ctx, format)
	switch {
	case errors.Is(err, export.ErrNothingToExport):
		m.errMessage = "Nothing to export"
	case err != nil:
		m.errMessage = err.Error()
	default:
		m.infoMessage = "Saved " + path
	}
}

func expandPath(p string) (string, error) {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		return "", fmt.Errorf("empty path")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			switch {
			case len(trimmed) == 1:
				trimmed = home
			case trimmed[1] == '/', trimmed[1] == '\\':
				trimmed = filepath.Join(home, trimmed[2:])
			}
		}
	}
	return filepath.Abs(trimmed)
}

func isExitCommand(value string) bool {
	v := strings.TrimSpace(strings.ToLower(value))
	return v == "exit." || v == "quit"
}

func isBackCommand(value string) bool {
	v := strings.TrimSpace(strings.ToLower(value))
	return v == "/" || v == "back"
}
