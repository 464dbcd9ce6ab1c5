package app

import (
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skillmap/internal/store"
	"github.com/abhisek/skillmap/internal/ui/components"
	"github.com/abhisek/skillmap/internal/ui/layout"
	"github.com/abhisek/skillmap/internal/ui/theme"
)

// ErrAborted is returned by RunQuiz when the user quits before the last
// question is answered.
var ErrAborted = errors.New("quiz aborted")

// QuizModel walks through the questions of a pending assessment and
// collects one option id per question.
type QuizModel struct {
	title   string
	choices []components.MultiChoice
	current int
	done    bool
	aborted bool
	width   int
	height  int
}

// NewQuizModel starts at the first question. Prior answers, if any, are
// preselected.
func NewQuizModel(title string, a *store.Assessment) QuizModel {
	choices := make([]components.MultiChoice, 0, len(a.Questions))
	for _, q := range a.Questions {
		choices = append(choices, components.NewMultiChoice(q, a.Answers[q.ID]))
	}
	return QuizModel{title: title, choices: choices, done: len(choices) == 0}
}

func (m QuizModel) Init() tea.Cmd {
	return nil
}

func (m QuizModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "left", "h":
			if m.current > 0 {
				m.current--
			}
			return m, nil
		}
	}

	if m.done || m.current >= len(m.choices) {
		return m, nil
	}

	var cmd tea.Cmd
	m.choices[m.current], cmd = m.choices[m.current].Update(msg)

	if key, ok := msg.(tea.KeyPressMsg); ok && key.String() == "enter" && m.choices[m.current].Done() {
		if m.current == len(m.choices)-1 {
			m.done = true
			return m, tea.Quit
		}
		m.current++
	}
	return m, cmd
}

// Answers maps question id to the chosen option id. Unanswered
// questions are omitted.
func (m QuizModel) Answers() map[string]string {
	out := make(map[string]string, len(m.choices))
	for _, c := range m.choices {
		if c.Done() {
			out[c.Question.ID] = c.Chosen
		}
	}
	return out
}

func (m QuizModel) Done() bool    { return m.done }
func (m QuizModel) Aborted() bool { return m.aborted }
func (m QuizModel) Current() int  { return m.current }

func (m QuizModel) answered() int {
	n := 0
	for _, c := range m.choices {
		if c.Done() {
			n++
		}
	}
	return n
}

func (m QuizModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	status := fmt.Sprintf("Question %d/%d  ", min(m.current+1, len(m.choices)), len(m.choices))
	header := layout.RenderHeader(m.title, status, m.width)
	footer := layout.RenderFooter([]layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Answer"},
		{Key: "←", Description: "Previous"},
		{Key: "Esc", Description: "Abort"},
	}, m.width)

	progress := components.NewProgressBar("Answered", m.answered(), len(m.choices), m.width-8)
	body := progress.View() + "\n\n"
	if m.current < len(m.choices) {
		body += theme.Card.Width(m.width - 6).Render(m.choices[m.current].View())
	}

	v.SetContent(layout.RenderFrame(header, body, footer, m.width, m.height))
	return v
}

// RunQuiz runs the quiz full screen and returns the collected answers.
func RunQuiz(title string, a *store.Assessment) (map[string]string, error) {
	p := tea.NewProgram(NewQuizModel(title, a))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}

	m, ok := final.(QuizModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model %T", final)
	}
	if m.Aborted() {
		return m.Answers(), ErrAborted
	}
	return m.Answers(), nil
}
