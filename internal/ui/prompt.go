package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Nomadcxx/stampwatch/internal/timestamp"
)

// ErrPromptCancelled is returned when the user quits the prompt without
// choosing a convention.
var ErrPromptCancelled = errors.New("prompt cancelled")

type promptKeys struct {
	Up     key.Binding
	Down   key.Binding
	DMY    key.Binding
	MDY    key.Binding
	Select key.Binding
	Quit   key.Binding
}

var defaultPromptKeys = promptKeys{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	DMY:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "day first")),
	MDY:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "month first")),
	Select: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "cancel")),
}

var conventionChoices = []struct {
	value timestamp.Convention
	label string
}{
	{timestamp.DMY, "day first   (05-06-2024 is 5 June)"},
	{timestamp.MDY, "month first (05-06-2024 is May 6)"},
}

// conventionModel asks which day/month order a batch of files uses.
type conventionModel struct {
	title    string
	analysis timestamp.ContextAnalysis
	keys     promptKeys
	cursor   int
	chosen   timestamp.Convention
	quit     bool
}

func newConventionModel(title string, analysis timestamp.ContextAnalysis) conventionModel {
	m := conventionModel{title: title, analysis: analysis, keys: defaultPromptKeys}
	for i, c := range conventionChoices {
		if c.value == analysis.Recommendation {
			m.cursor = i
		}
	}
	return m
}

func (m conventionModel) Init() tea.Cmd {
	return nil
}

func (m conventionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quit = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(conventionChoices)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.DMY):
		m.chosen = timestamp.DMY
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.MDY):
		m.chosen = timestamp.MDY
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Select):
		m.chosen = conventionChoices[m.cursor].value
		return m, tea.Quit
	}
	return m, nil
}

func (m conventionModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	if m.analysis.Recommendation != "" {
		fmt.Fprintf(&b, "Suggested: %s (%s confidence)\n",
			Stamp(strings.ToUpper(string(m.analysis.Recommendation))),
			Confidence(m.analysis.Confidence, timestamp.DefaultAutoResolveThreshold))
	}
	for _, line := range m.analysis.Evidence {
		b.WriteString(Dim("  • "+line) + "\n")
	}
	b.WriteString("\n")

	for i, c := range conventionChoices {
		cursor := "  "
		label := c.label
		if i == m.cursor {
			cursor = Action("> ")
			label = Action(label)
		}
		b.WriteString(cursor + label + "\n")
	}

	help := []string{}
	for _, k := range []key.Binding{m.keys.Up, m.keys.Down, m.keys.DMY, m.keys.MDY, m.keys.Select, m.keys.Quit} {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString("\n" + Dim(strings.Join(help, " • ")) + "\n")
	return b.String()
}

// PromptConvention shows the batch analysis and asks the user to pick a
// day/month order.
func PromptConvention(title string, analysis timestamp.ContextAnalysis) (timestamp.Convention, error) {
	final, err := tea.NewProgram(newConventionModel(title, analysis)).Run()
	if err != nil {
		return "", fmt.Errorf("convention prompt failed: %w", err)
	}
	m := final.(conventionModel)
	if m.quit || m.chosen == "" {
		return "", ErrPromptCancelled
	}
	return m.chosen, nil
}
