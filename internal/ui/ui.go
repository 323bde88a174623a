// Package ui holds terminal output helpers for the stampwatch CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

var (
	// Detect if we're in a terminal
	isTerminal   = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	colorEnabled = true
)

// DisableColors disables all color output
func DisableColors() {
	colorEnabled = false
	isTerminal = false
	initStyles()
}

// IsTerminal checks if stdout is a terminal
func IsTerminal() bool {
	return isTerminal && colorEnabled
}

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return IsTerminal() && isatty.IsTerminal(os.Stdin.Fd())
}

// Section writes a section header to w.
func Section(w io.Writer, title string) {
	if IsTerminal() {
		fmt.Fprintln(w, titleStyle.Render("━━━ "+strings.ToUpper(title)+" ━━━"))
		return
	}
	fmt.Fprintln(w, strings.ToUpper(title))
	fmt.Fprintln(w, strings.Repeat("=", len(title)))
}

// FormatCount formats n with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatAge formats t relative to now, e.g. "3 minutes ago".
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// FormatDuration formats duration to human-readable format
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

// Plural returns "1 file" or "3 files".
func Plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return FormatCount(n) + " " + word + "s"
}

// Confirm prompts for user confirmation
func Confirm(prompt string) bool {
	if !IsInteractive() {
		// Non-interactive: default to no
		return false
	}

	fmt.Print(prompt + " (y/N): ")
	var response string
	fmt.Scanln(&response)
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
