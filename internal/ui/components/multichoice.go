package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skillmap/internal/store"
	"github.com/abhisek/skillmap/internal/ui/theme"
)

// MultiChoice lets the user pick one option of a question. Answers are
// not known while an assessment is pending, so it only records the pick.
type MultiChoice struct {
	Question store.Question
	Selected int
	Chosen   string
}

// NewMultiChoice preselects a previously chosen option id, if any.
func NewMultiChoice(q store.Question, chosen string) MultiChoice {
	m := MultiChoice{Question: q, Chosen: chosen}
	for i, o := range q.Options {
		if strings.EqualFold(o.ID, chosen) {
			m.Selected = i
		}
	}
	return m
}

// Update moves the cursor with arrows, j/k or the option letter, and
// records the pick on enter.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Question.Options)-1 {
			m.Selected++
		}
	case "enter":
		if len(m.Question.Options) > 0 {
			m.Chosen = m.Question.Options[m.Selected].ID
		}
	default:
		for i, o := range m.Question.Options {
			if strings.EqualFold(o.ID, key) {
				m.Selected = i
			}
		}
	}
	return m, nil
}

// Done reports whether an option has been picked.
func (m MultiChoice) Done() bool {
	return m.Chosen != ""
}

func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(theme.Body.Bold(true).Render(m.Question.Text))
	b.WriteString("\n\n")

	for i, o := range m.Question.Options {
		prefix := "  "
		if i == m.Selected {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, strings.ToUpper(o.ID), o.Text)

		switch {
		case strings.EqualFold(o.ID, m.Chosen):
			b.WriteString(theme.Chosen.Render(line))
		case i == m.Selected:
			b.WriteString(theme.Selected.Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
