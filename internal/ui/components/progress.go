package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillmap/internal/ui/theme"
)

// ProgressBar shows how many of Total questions are answered.
type ProgressBar struct {
	Label string
	Done  int
	Total int
	Width int
}

func NewProgressBar(label string, done, total, width int) ProgressBar {
	return ProgressBar{Label: label, Done: done, Total: total, Width: width}
}

// Fraction is Done/Total clamped to [0,1].
func (p ProgressBar) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return max(0, min(1, float64(p.Done)/float64(p.Total)))
}

func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result += theme.Body.Render(p.Label) + "  "
	}
	counter := fmt.Sprintf("  %d/%d", p.Done, p.Total)

	barWidth := max(4, p.Width-lipgloss.Width(result)-len(counter))
	filled := int(float64(barWidth) * p.Fraction())

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))
	result += theme.Hint.Render(counter)
	return result
}
