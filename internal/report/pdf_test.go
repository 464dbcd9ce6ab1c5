package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillmap/internal/pathplan"
	"github.com/abhisek/skillmap/internal/store"
)

func TestLearningPlanPDF(t *testing.T) {
	years := 3.0
	plan := &pathplan.Plan{
		Items: []pathplan.Item{
			{Order: 1, SkillName: "Kubernetes", Title: "Pods and deployments", DurationMinutes: 45, ExpectedGain: 0.5, IsGenerated: true},
			{Order: 2, SkillName: "Terraform", Title: strings.Repeat("Very long module title ", 10), DurationMinutes: 20, ExpectedGain: 0.5, Truncated: true},
		},
		TotalMinutes: 65,
		TotalHours:   1.08,
		Meta:         pathplan.Meta{GapIndex: 1.4, Similarity: 0.8, UtilizationPercent: 100, YearsLeft: &years},
	}

	var buf bytes.Buffer
	err := LearningPlanPDF(&buf, plan, &store.Employee{Name: "Zoë"}, &store.Goal{Title: "Cloud migration"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestLearningPlanPDFEmptyPlan(t *testing.T) {
	var buf bytes.Buffer
	plan := &pathplan.Plan{Items: []pathplan.Item{}, Meta: pathplan.Meta{Message: "no time budget to allocate"}}
	require.NoError(t, LearningPlanPDF(&buf, plan, &store.Employee{Name: "Ana"}, &store.Goal{Title: "Goal"}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
