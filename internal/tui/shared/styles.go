package shared

import "github.com/charmbracelet/lipgloss"

// Layout and key constants.
const (
	// DefaultPadding is the horizontal padding inside prompt boxes
	DefaultPadding = 2
	// ProgressBarWidth is the default width of progress bars
	ProgressBarWidth = 40
	// MaxProgressBarWidth is the maximum width for progress bars
	MaxProgressBarWidth = 100

	KeyCtrlC = "ctrl+c"
	KeyEsc   = "esc"

	// PromptArrow prefixes text input
	PromptArrow = "▶ "
)

// Palette.
const (
	accentColorCode    = "62"  // Blue
	dimColorCode       = "240" // Dark gray
	errorColorCode     = "196" // Red
	highlightColorCode = "86"  // Cyan
	primaryColorCode   = "205" // Pink/purple
	successColorCode   = "42"  // Green
	warningColorCode   = "226" // Yellow
)

// PrimaryColor is used for the title and the spinner.
func PrimaryColor() lipgloss.Color { return lipgloss.Color(primaryColorCode) }

// ErrorStyle is bold red.
func ErrorStyle() lipgloss.Style { return bold(errorColorCode) }

// SuccessStyle is bold green.
func SuccessStyle() lipgloss.Style { return bold(successColorCode) }

// RenderTitle renders the screen title.
func RenderTitle(text string) string {
	return bold(primaryColorCode).MarginBottom(1).Render(text)
}

// RenderBox frames a prompt.
func RenderBox(content string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(accentColorCode)).
		Padding(1, DefaultPadding).
		Render(content)
}

// RenderDim renders secondary text such as key hints.
func RenderDim(text string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(dimColorCode)).Render(text)
}

// RenderLabel renders a prompt question.
func RenderLabel(text string) string { return bold(highlightColorCode).Render(text) }

// RenderError renders a failed result.
func RenderError(text string) string { return ErrorStyle().Render(text) }

// RenderSuccess renders a completed result.
func RenderSuccess(text string) string { return SuccessStyle().Render(text) }

// RenderWarning renders a cancelled or partial result.
func RenderWarning(text string) string { return bold(warningColorCode).Render(text) }

func bold(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}
