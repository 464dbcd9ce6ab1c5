// Package ontology keeps the skill catalogue free of near-duplicates by
// matching new skill mentions against stored skill embeddings before
// creating anything.
package ontology

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/skillmap/internal/apperr"
	"github.com/abhisek/skillmap/internal/embedding"
	"github.com/abhisek/skillmap/internal/logger"
	"github.com/abhisek/skillmap/internal/oracle"
	"github.com/abhisek/skillmap/internal/store"
	"github.com/abhisek/skillmap/internal/vector"
)

// Similarity above which an extracted skill reuses an existing one.
const (
	GoalMatchThreshold     = 0.7
	EmployeeMatchThreshold = 0.75
)

// SkillDraft is a skill mention that may or may not exist yet.
type SkillDraft struct {
	Name        string
	Description string
	Category    string
	Domain      string
	Future      bool
}

// Match is a resolved skill. Reused is set when an existing skill was
// returned instead of a new one.
type Match struct {
	Skill  *store.Skill `json:"skill"`
	Score  float64      `json:"score"`
	Reused bool         `json:"reused"`
}

// Matcher maps free-text skill mentions onto the ontology through
// embedding similarity.
type Matcher struct {
	db       store.Repos
	vectors  vector.Store
	embedder embedding.Embedder
	oracle   oracle.ContentOracle
	log      *logger.Logger

	goalThreshold     float64
	employeeThreshold float64
}

// NewMatcher creates a Matcher with the default goal and employee
// thresholds.
func NewMatcher(db store.Repos, vectors vector.Store, e embedding.Embedder, o oracle.ContentOracle, log *logger.Logger) *Matcher {
	return &Matcher{
		db:                db,
		vectors:           vectors,
		embedder:          e,
		oracle:            o,
		log:               log.With("service", "OntologyMatcher"),
		goalThreshold:     GoalMatchThreshold,
		employeeThreshold: EmployeeMatchThreshold,
	}
}

// WithThresholds overrides the reuse thresholds; zero keeps the default.
func (m *Matcher) WithThresholds(goal, employee float64) *Matcher {
	if goal > 0 {
		m.goalThreshold = goal
	}
	if employee > 0 {
		m.employeeThreshold = employee
	}
	return m
}

// Match returns the closest stored skill when its similarity is strictly
// above threshold, or nil.
func (m *Matcher) Match(ctx context.Context, name, description string, threshold float64) (*Match, error) {
	vec, err := m.embedder.Embed(ctx, strings.TrimSpace(name+" "+description))
	if err != nil {
		return nil, fmt.Errorf("embed %q: %w", name, err)
	}
	hits, err := m.vectors.Query(ctx, vec, 1, nil)
	if err != nil {
		return nil, fmt.Errorf("query skills: %w", err)
	}
	if len(hits) == 0 || hits[0].Score <= threshold {
		return nil, nil
	}
	skill, err := m.db.Skills().Get(ctx, hits[0].ID)
	if apperr.Is(err, apperr.KindNotFound) {
		m.log.Warn("stale skill embedding", "skill_id", hits[0].ID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Match{Skill: skill, Score: hits[0].Score, Reused: true}, nil
}

// Resolve reuses a matching or identically named skill, or creates and
// indexes a new one.
func (m *Matcher) Resolve(ctx context.Context, d SkillDraft, threshold float64) (*Match, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return nil, apperr.Validation("skill name is required")
	}
	match, err := m.Match(ctx, d.Name, d.Description, threshold)
	if err != nil || match != nil {
		return match, err
	}

	if existing, err := m.db.Skills().GetByName(ctx, d.Name); err == nil {
		if err := m.index(ctx, existing); err != nil {
			return nil, err
		}
		return &Match{Skill: existing, Score: 1, Reused: true}, nil
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	skill := &store.Skill{
		Name:          d.Name,
		Description:   d.Description,
		Category:      d.Category,
		Domain:        d.Domain,
		IsFutureSkill: d.Future,
	}
	if err := m.db.Skills().Upsert(ctx, skill); err != nil {
		return nil, err
	}
	if err := m.index(ctx, skill); err != nil {
		return nil, err
	}
	m.log.Info("skill created", "skill_id", skill.ID, "name", skill.Name)
	return &Match{Skill: skill}, nil
}

// index embeds the skill's catalogue text and stores it under its id.
func (m *Matcher) index(ctx context.Context, s *store.Skill) error {
	vec, err := m.embedder.Embed(ctx, catalogueText(s))
	if err != nil {
		return fmt.Errorf("embed skill %s: %w", s.ID, err)
	}
	meta := map[string]any{"name": s.Name, "category": s.Category, "domain": s.Domain}
	if err := m.vectors.Upsert(ctx, s.ID, vec, meta); err != nil {
		return fmt.Errorf("index skill %s: %w", s.ID, err)
	}
	return nil
}

func catalogueText(s *store.Skill) string {
	return strings.TrimSpace(fmt.Sprintf("%s. %s [%s %s]", s.Name, s.Description, s.Domain, s.Category))
}
