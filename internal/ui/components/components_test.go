package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"

	"github.com/abhisek/skillmap/internal/store"
)

func TestProgressFraction(t *testing.T) {
	assert.Equal(t, 0.0, NewProgressBar("", 3, 0, 40).Fraction())
	assert.Equal(t, 0.5, NewProgressBar("", 2, 4, 40).Fraction())
	assert.Equal(t, 1.0, NewProgressBar("", 9, 4, 40).Fraction())
}

func TestMultiChoiceLetterSelects(t *testing.T) {
	q := store.Question{ID: "q1", Text: "Pick", Options: []store.Option{
		{ID: "a", Text: "x"}, {ID: "b", Text: "y"}, {ID: "c", Text: "z"},
	}}
	m := NewMultiChoice(q, "")
	assert.False(t, m.Done())

	m, _ = m.Update(tea.KeyPressMsg{Code: 'c', Text: "c"})
	assert.Equal(t, 2, m.Selected)
	assert.False(t, m.Done())

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.True(t, m.Done())
	assert.Equal(t, "c", m.Chosen)
	assert.Contains(t, m.View(), "Pick")
}
