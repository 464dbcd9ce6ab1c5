package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillmap/internal/ui/theme"
)

const (
	MinWidth  = 60
	MinHeight = 16
)

// KeyHint is a key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf("Terminal too small.\n\nResize to at least %d x %d\n(current %d x %d)",
			MinWidth, MinHeight, width, height))
}

// RenderHeader puts the product name left, title centered and status right.
func RenderHeader(title, status string, width int) string {
	left := theme.Title.Render("  skillmap")
	center := theme.Body.Render(title)
	right := theme.Hint.Render(status)

	inner := max(0, width-4)
	leftGap := max(1, (inner-lipgloss.Width(center))/2-lipgloss.Width(left))
	rightGap := max(1, inner-lipgloss.Width(left)-leftGap-lipgloss.Width(center)-lipgloss.Width(right))

	content := left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

func RenderFooter(hints []KeyHint, width int) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, theme.Body.Bold(true).Render(h.Key)+" "+theme.Hint.Render(h.Description))
	}
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render("  " + strings.Join(parts, "   "))
}

// RenderFrame stacks header, content and footer, giving the content all
// remaining height.
func RenderFrame(header, content, footer string, width, height int) string {
	contentHeight := max(0, height-lipgloss.Height(header)-lipgloss.Height(footer))
	body := lipgloss.NewStyle().
		Width(width).
		Height(contentHeight).
		Padding(1, 2).
		Render(content)
	return header + "\n" + body + "\n" + footer
}
