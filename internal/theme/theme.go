package theme

import "github.com/charmbracelet/lipgloss"

// Theme encapsulates the visual palette of the account desk.
type Theme struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Accent    lipgloss.Style
	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Danger    lipgloss.Style
	Faint     lipgloss.Style
	Border    lipgloss.Style
	HelpKey   lipgloss.Style
	HelpValue lipgloss.Style

	// Record boxes; Editing marks a record in an edit session.
	Record  lipgloss.Style
	Editing lipgloss.Style
	Popup   lipgloss.Style
	Alert   lipgloss.Style

	Field      lipgloss.Style
	FieldLabel lipgloss.Style
	ReadOnly   lipgloss.Style
	Button     lipgloss.Style
	Focused    lipgloss.Style
}

// Default returns a high-contrast palette that plays nicely with common terminals.
func Default() Theme {
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	return Theme{
		Title:     lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true).Underline(true),
		Subtitle:  lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Bold(true),
		Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("219")).Bold(true),
		Primary:   lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		Secondary: lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("227")).Bold(true),
		Danger:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		Faint:     lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Border:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		HelpKey:   lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Bold(true),
		HelpValue: lipgloss.NewStyle().Foreground(lipgloss.Color("249")),

		Record:  box.Copy().BorderForeground(lipgloss.Color("240")),
		Editing: box.Copy().BorderForeground(lipgloss.Color("227")),
		Popup:   box.Copy().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("111")),
		Alert:   box.Copy().Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("203")).Padding(1, 2),

		Field:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		FieldLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("111")),
		ReadOnly:   lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
		Button:     lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		Focused:    lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("205")).Bold(true),
	}
}
