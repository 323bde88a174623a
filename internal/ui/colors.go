package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Styles for terminal output. All of them are plain when stdout is not a
// terminal.
var (
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	infoStyle    lipgloss.Style
	dimStyle     lipgloss.Style
	actionStyle  lipgloss.Style
	pathStyle    lipgloss.Style
	stampStyle   lipgloss.Style
	titleStyle   lipgloss.Style
)

func init() {
	initStyles()
}

func initStyles() {
	color := func(c string, bold bool) lipgloss.Style {
		if !IsTerminal() {
			return lipgloss.NewStyle()
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Bold(bold)
	}

	successStyle = color("10", true)
	errorStyle = color("9", true)
	warningStyle = color("11", false)
	infoStyle = color("12", false)
	dimStyle = color("8", false)
	actionStyle = color("12", true)
	pathStyle = color("15", false)
	stampStyle = color("14", false)
	titleStyle = color("13", true)
}

func Success(text string) string { return successStyle.Render(text) }
func Error(text string) string { return errorStyle.Render(text) }
func Warning(text string) string { return warningStyle.Render(text) }
func Info(text string) string { return infoStyle.Render(text) }
func Dim(text string) string { return dimStyle.Render(text) }

// Action renders an operation name such as "rename" or "undo".
func Action(text string) string { return actionStyle.Render(text) }

// Path renders a file or directory path.
func Path(text string) string { return pathStyle.Render(text) }

// Stamp renders a detected timestamp.
func Stamp(text string) string { return stampStyle.Render(text) }

// Confidence renders c as a percentage, green when it would auto-resolve
// at threshold and yellow otherwise.
func Confidence(c, threshold float64) string {
	text := fmt.Sprintf("%.0f%%", c*100)
	if c >= threshold {
		return successStyle.Render(text)
	}
	return warningStyle.Render(text)
}
