package irt

import (
	"github.com/abhisek/skillmap/internal/store"
)

// SkillResponse is a graded item attributed to a skill.
type SkillResponse struct {
	SkillID string
	Response
}

// NewEntry is the starting point for a skill the employee has no record of.
func NewEntry() store.ProfileEntry {
	return store.ProfileEntry{Theta: 0, Alpha: DefaultAlpha, Level: 0}
}

// EntryFromLevel seeds a profile entry from an externally estimated level,
// e.g. one extracted from an employee's description.
func EntryFromLevel(level float64) store.ProfileEntry {
	level = clamp(level, 0, MaxLevel)
	return store.ProfileEntry{Theta: (level - 3) * 0.5, Alpha: DefaultAlpha, Level: level}
}

// ApplyBatch groups responses per skill in first-seen order and updates
// each skill's theta from its own responses. The input profile is not
// modified. It returns the updated profile and the touched skill ids.
func ApplyBatch(p store.Profile, responses []SkillResponse) (store.Profile, []string) {
	out := p.Clone()
	var order []string
	grouped := make(map[string][]Response)
	for _, r := range responses {
		if _, ok := grouped[r.SkillID]; !ok {
			order = append(order, r.SkillID)
		}
		grouped[r.SkillID] = append(grouped[r.SkillID], r.Response)
	}

	for _, skillID := range order {
		entry, ok := out[skillID]
		if !ok {
			entry = NewEntry()
		}
		entry.Theta = Update(entry.Theta, grouped[skillID], DefaultLearningRate, DefaultSteps)
		entry.Level = Level(entry.Theta)
		out[skillID] = entry
	}
	return out, order
}
