// Package report renders learning plans for sharing outside the tool.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/abhisek/skillmap/internal/pathplan"
	"github.com/abhisek/skillmap/internal/store"
)

var columns = []struct {
	title string
	width float64
}{
	{"#", 10}, {"Skill", 40}, {"Module", 80}, {"Minutes", 20}, {"Gain", 15}, {"Source", 25},
}

// LearningPlanPDF writes the plan as a one-table A4 document.
func LearningPlanPDF(w io.Writer, plan *pathplan.Plan, emp *store.Employee, goal *store.Goal) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Learning plan: "+emp.Name, true)
	pdf.SetCreator("skillmap", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(fmt.Sprintf("Learning plan for %s", emp.Name)))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 6, tr("Goal: "+goal.Title), "", "L", false)
	summary := fmt.Sprintf("%d items, %.2f hours, %.1f%% of budget. Gap index %.2f, similarity %.2f.",
		len(plan.Items), plan.TotalHours, plan.Meta.UtilizationPercent, plan.Meta.GapIndex, plan.Meta.Similarity)
	if plan.Meta.YearsLeft != nil {
		summary += fmt.Sprintf(" %.1f years to the goal horizon.", *plan.Meta.YearsLeft)
	}
	pdf.MultiCell(0, 6, summary, "", "L", false)
	if plan.Meta.Message != "" {
		pdf.MultiCell(0, 6, tr(plan.Meta.Message), "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 240)
	for _, c := range columns {
		pdf.CellFormat(c.width, 8, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, it := range plan.Items {
		source := "catalogue"
		if it.IsGenerated {
			source = "generated"
		}
		minutes := fmt.Sprintf("%d", it.DurationMinutes)
		if it.Truncated {
			minutes += "*"
		}
		row := []string{
			fmt.Sprintf("%d", it.Order),
			clip(pdf, tr(it.SkillName), columns[1].width),
			clip(pdf, tr(it.Title), columns[2].width),
			minutes,
			fmt.Sprintf("%.1f", it.ExpectedGain),
			source,
		}
		for i, c := range columns {
			align := "L"
			if i == 0 || i >= 3 {
				align = "C"
			}
			pdf.CellFormat(c.width, 7, row[i], "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 5, fmt.Sprintf("Generated %s. * truncated to fit the budget.", time.Now().UTC().Format("2006-01-02")))

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render learning plan: %w", err)
	}
	return pdf.Output(w)
}

// clip shortens s with an ellipsis so it fits a cell of the given width.
func clip(pdf *gofpdf.Fpdf, s string, width float64) string {
	const pad = 2
	if pdf.GetStringWidth(s) <= width-pad {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width-pad {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
