package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillmap/internal/store"
)

func testAssessment() *store.Assessment {
	opts := []store.Option{{ID: "a", Text: "one"}, {ID: "b", Text: "two"}, {ID: "c", Text: "three"}}
	return &store.Assessment{
		ID: "as-1",
		Questions: []store.Question{
			{ID: "q1", Text: "First?", Options: opts},
			{ID: "q2", Text: "Second?", Options: opts},
		},
	}
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func send(t *testing.T, m QuizModel, msgs ...tea.Msg) (QuizModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	var next tea.Model = m
	for _, msg := range msgs {
		next, cmd = next.(QuizModel).Update(msg)
	}
	return next.(QuizModel), cmd
}

func TestQuizCollectsAnswers(t *testing.T) {
	m := NewQuizModel("Go", testAssessment())

	m, cmd := send(t, m, specialKey(tea.KeyDown), specialKey(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.Current())
	assert.False(t, m.Done())

	m, cmd = send(t, m, keyPress('c'), specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.True(t, m.Done())
	assert.False(t, m.Aborted())
	assert.Equal(t, map[string]string{"q1": "b", "q2": "c"}, m.Answers())
}

func TestQuizEscAborts(t *testing.T) {
	m := NewQuizModel("Go", testAssessment())

	m, cmd := send(t, m, specialKey(tea.KeyEnter), specialKey(tea.KeyEscape))
	require.NotNil(t, cmd)
	assert.True(t, m.Aborted())
	assert.Equal(t, map[string]string{"q1": "a"}, m.Answers())
}

func TestQuizGoBackKeepsSelection(t *testing.T) {
	m := NewQuizModel("Go", testAssessment())

	m, _ = send(t, m, specialKey(tea.KeyDown), specialKey(tea.KeyEnter), specialKey(tea.KeyLeft))
	assert.Equal(t, 0, m.Current())
	assert.Equal(t, 1, m.choices[0].Selected)

	m, _ = send(t, m, specialKey(tea.KeyUp), specialKey(tea.KeyEnter))
	assert.Equal(t, "a", m.Answers()["q1"])
	assert.Equal(t, 1, m.Current())
}

func TestQuizPreselectsPriorAnswers(t *testing.T) {
	a := testAssessment()
	a.Answers = map[string]string{"q1": "c"}

	m := NewQuizModel("Go", a)
	assert.Equal(t, 2, m.choices[0].Selected)
	assert.Equal(t, map[string]string{"q1": "c"}, m.Answers())
}

func TestQuizNoQuestionsIsDone(t *testing.T) {
	m := NewQuizModel("Go", &store.Assessment{})
	assert.True(t, m.Done())
	assert.Empty(t, m.Answers())
}

func TestQuizViewUsesAltScreen(t *testing.T) {
	m := NewQuizModel("Go", testAssessment())
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	v := m.View()
	assert.True(t, v.AltScreen)
}
