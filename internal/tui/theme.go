package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha
const (
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface2 lipgloss.Color = "#585b70"
	colorSurface0 lipgloss.Color = "#313244"
	colorMantle   lipgloss.Color = "#181825"
)

const (
	colorAccent  = colorMauve
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorMuted   = colorSubtext0
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorMuted)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorOverlay1)
	focusStyle    = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)

	headerBarStyle = lipgloss.NewStyle().Background(colorMantle).Foreground(colorText)
	stepOnStyle    = lipgloss.NewStyle().Background(colorMantle).Foreground(colorAccent).Bold(true)
	stepOffStyle   = lipgloss.NewStyle().Background(colorMantle).Foreground(colorOverlay1)
	stepDoneStyle  = lipgloss.NewStyle().Background(colorMantle).Foreground(colorTeal)

	activeTabStyle = lipgloss.NewStyle().
			Background(colorSurface0).
			Foreground(colorAccent).
			Bold(true).
			Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorOverlay1).
				Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface2).
			Padding(0, 1)

	addedStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	removedStyle = lipgloss.NewStyle().Foreground(colorRed)
	hunkStyle    = lipgloss.NewStyle().Foreground(colorBlue)
	warnStyle    = lipgloss.NewStyle().Foreground(colorPeach)

	statusBarStyle    = lipgloss.NewStyle().Foreground(colorSuccess).Background(colorSurface0)
	statusErrBarStyle = lipgloss.NewStyle().Foreground(colorError).Background(colorSurface0)
	footerStyle       = lipgloss.NewStyle().Background(colorMantle)
)
