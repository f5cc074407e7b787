package triage

import (
	"sort"

	"triage-service/internal/domain"
)

// VisibleQuestions returns the unanswered questions currently eligible to be
// shown, in catalog declaration order. A question gated on an unanswered
// dependency is never eligible.
func VisibleQuestions(cat *domain.Catalog, answered []domain.AnsweredQuestion, activeBranch string) []domain.QuestionDefinition {
	if cat == nil {
		return nil
	}
	answers := answerIndex(answered)
	visible := make([]domain.QuestionDefinition, 0, cat.Len())
	for _, q := range cat.Questions() {
		if _, done := answers[q.ID]; done {
			continue
		}
		if !eligible(q, answers, activeBranch) {
			continue
		}
		visible = append(visible, q)
	}
	return visible
}

func eligible(q domain.QuestionDefinition, answers map[string]string, activeBranch string) bool {
	if q.Visibility != nil {
		resp, ok := answers[q.Visibility.DependsOn]
		if !ok || !q.Visibility.Allows(resp) {
			return false
		}
	}
	if q.Branch == "" || !q.Level.Scored() {
		return true
	}
	return q.Branch == activeBranch
}

// NextQuestions resolves the active branch from the answers and returns the
// eligible unanswered questions.
func NextQuestions(cat *domain.Catalog, answered []domain.AnsweredQuestion) []domain.QuestionDefinition {
	return VisibleQuestions(cat, answered, ActiveBranch(cat, answered))
}

// InitialQuestions returns the entry questions of a catalog: the fork and
// ungated INFO questions for forked catalogs, otherwise the ungated INFO
// questions followed by the ungated questions of the first severity block.
func InitialQuestions(cat *domain.Catalog) []domain.QuestionDefinition {
	if cat == nil {
		return nil
	}
	all := cat.Questions()
	out := make([]domain.QuestionDefinition, 0, len(all))
	if cat.Forked() {
		for _, q := range all {
			if q.Level == domain.LevelBranch || (q.Level == domain.LevelInfo && q.Visibility == nil) {
				out = append(out, q)
			}
		}
		return out
	}

	first := firstBlock(all)
	for _, q := range all {
		if q.Visibility != nil {
			continue
		}
		if q.Level == domain.LevelInfo || q.Level == domain.LevelBranch || q.Level == first {
			out = append(out, q)
		}
	}
	return out
}

func firstBlock(questions []domain.QuestionDefinition) domain.Level {
	for _, lvl := range domain.SeverityLevels {
		for _, q := range questions {
			if q.Level == lvl {
				return lvl
			}
		}
	}
	return ""
}

// BlockOrder sorts questions into session order: INFO/BRANCH first, then
// severity blocks A to D. Declaration order is kept within a block.
func BlockOrder(questions []domain.QuestionDefinition) []domain.QuestionDefinition {
	out := append([]domain.QuestionDefinition(nil), questions...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Level.Rank() < out[j].Level.Rank()
	})
	return out
}

// NextInSequence returns the question a session should ask next, if any.
func NextInSequence(cat *domain.Catalog, answered []domain.AnsweredQuestion) (domain.QuestionDefinition, bool) {
	ordered := BlockOrder(NextQuestions(cat, answered))
	if len(ordered) == 0 {
		return domain.QuestionDefinition{}, false
	}
	return ordered[0], true
}
