package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/stampwatch/internal/timestamp"
)

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatCount(1234567))
	assert.Equal(t, "1 file", Plural(1, "file"))
	assert.Equal(t, "2,000 files", Plural(2000, "file"))
	assert.Equal(t, "never", FormatAge(time.Time{}))
	assert.Contains(t, FormatAge(time.Now().Add(-3*time.Hour)), "hours ago")

	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "1.5s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "2.0m", FormatDuration(2*time.Minute))
	assert.Equal(t, "1.5h", FormatDuration(90*time.Minute))
}

func TestTable_Fprint(t *testing.T) {
	DisableColors()

	table := NewTable("File", "Timestamp")
	table.AddRow("IMG_20240315_143022.jpg", "2024-03-15 14:30:22")
	table.AddRow("notes.txt")
	require.Equal(t, 2, table.Len())

	var buf bytes.Buffer
	table.Fprint(&buf)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "│ File                    │ Timestamp           │", lines[1])
	assert.Equal(t, "│ notes.txt               │                     │", lines[4])
	for _, l := range lines {
		assert.Equal(t, len([]rune(lines[0])), len([]rune(l)))
	}
}

func TestTable_Truncates(t *testing.T) {
	DisableColors()

	table := NewTable("Path")
	table.SetMaxWidth(16)
	table.AddRow("/photos/2024/holiday/15-03-2024.jpg")

	var buf bytes.Buffer
	table.Fprint(&buf)
	assert.Contains(t, buf.String(), "│ /photos/2... │")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "plain", stripANSI("\x1b[1;32mplain\x1b[0m"))
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m conventionModel, keys ...string) (conventionModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyPress(k))
		m = next.(conventionModel)
	}
	return m, cmd
}

func TestConventionModel(t *testing.T) {
	analysis := timestamp.ContextAnalysis{
		Recommendation: timestamp.MDY,
		Confidence:     0.6,
		Evidence:       []string{"1 file proves month-first order"},
	}

	tests := []struct {
		name   string
		keys   []string
		chosen timestamp.Convention
		quit   bool
	}{
		{"enter takes the suggestion", []string{"enter"}, timestamp.MDY, false},
		{"shortcut d", []string{"d"}, timestamp.DMY, false},
		{"shortcut m", []string{"m"}, timestamp.MDY, false},
		{"cursor moves", []string{"k", "enter"}, timestamp.DMY, false},
		{"cursor stays in range", []string{"down", "j", "enter"}, timestamp.MDY, false},
		{"quit", []string{"q"}, "", true},
		{"escape", []string{"esc"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cmd := press(newConventionModel("photos", analysis), tt.keys...)
			assert.Equal(t, tt.chosen, m.chosen)
			assert.Equal(t, tt.quit, m.quit)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
		})
	}
}

func TestConventionModel_View(t *testing.T) {
	DisableColors()

	m := newConventionModel("/photos/b", timestamp.ContextAnalysis{
		Recommendation: timestamp.DMY,
		Confidence:     0.8,
		Evidence:       []string{"2 files prove day-first order"},
	})
	assert.Equal(t, 0, m.cursor)

	view := m.View()
	assert.Contains(t, view, "/photos/b")
	assert.Contains(t, view, "Suggested: DMY (80% confidence)")
	assert.Contains(t, view, "2 files prove day-first order")
	assert.Contains(t, view, "> day first")

	// Non-key messages are ignored.
	next, cmd := m.Update(tea.WindowSizeMsg{Width: 80})
	assert.Nil(t, cmd)
	assert.Equal(t, m, next)
}

func TestSection_Plain(t *testing.T) {
	var buf bytes.Buffer
	Section(&buf, "Recent scans")
	assert.Equal(t, "RECENT SCANS\n============\n", buf.String())
}
