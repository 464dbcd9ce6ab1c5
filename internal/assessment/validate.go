package assessment

import (
	"fmt"
	"strings"

	"github.com/abhisek/skillmap/internal/apperr"
	"github.com/abhisek/skillmap/internal/store"
)

const optionsPerQuestion = 4

// checkQuestion enforces the multiple-choice shape: non-empty text,
// exactly four options with distinct ids and texts, a correct id among
// them, and a difficulty in [1,5].
func checkQuestion(i int, q store.Question) error {
	label := fmt.Sprintf("question %d", i+1)
	if strings.TrimSpace(q.Text) == "" {
		return apperr.Malformed(label+": question_text is empty", nil)
	}
	if len(q.Options) != optionsPerQuestion {
		return apperr.Malformed(fmt.Sprintf("%s: expected %d options, got %d", label, optionsPerQuestion, len(q.Options)), nil)
	}
	ids := make(map[string]bool, optionsPerQuestion)
	texts := make(map[string]bool, optionsPerQuestion)
	for _, o := range q.Options {
		id := normalize(o.ID)
		text := normalize(o.Text)
		if id == "" || text == "" {
			return apperr.Malformed(label+": option with empty id or text", nil)
		}
		if ids[id] || texts[text] {
			return apperr.Malformed(label+": options are not distinct", nil)
		}
		ids[id] = true
		texts[text] = true
	}
	if !ids[normalize(q.CorrectAnswerID)] {
		return apperr.Malformed(fmt.Sprintf("%s: correct_answer_id %q is not one of the options", label, q.CorrectAnswerID), nil)
	}
	if q.Difficulty < 1 || q.Difficulty > 5 {
		return apperr.Malformed(fmt.Sprintf("%s: difficulty %g outside [1,5]", label, q.Difficulty), nil)
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// dedupe drops questions whose normalized text was already seen, keeps
// the first occurrence order, and makes question ids unique.
func dedupe(qs []store.Question) []store.Question {
	seenText := make(map[string]bool, len(qs))
	seenID := make(map[string]bool, len(qs))
	out := make([]store.Question, 0, len(qs))
	for _, q := range qs {
		key := normalize(q.Text)
		if seenText[key] {
			continue
		}
		seenText[key] = true
		if q.ID == "" || seenID[q.ID] {
			q.ID = fmt.Sprintf("q%d", len(out)+1)
			for seenID[q.ID] {
				q.ID += "x"
			}
		}
		seenID[q.ID] = true
		out = append(out, q)
	}
	return out
}
