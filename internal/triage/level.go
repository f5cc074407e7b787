package triage

import "triage-service/internal/domain"

// ComputeLevel aggregates an answer set into a severity level. A met level-A
// condition wins immediately; otherwise the most severe met level among B and
// C is kept, and D is the floor. Unknown question ids are skipped.
func ComputeLevel(cat *domain.Catalog, answers []domain.AnsweredQuestion) domain.Level {
	level, _ := classify(cat, answers)
	return level
}

// Classify is ComputeLevel that also returns the id of the first met level-A
// question flagged stopOnTrigger, if any.
func Classify(cat *domain.Catalog, answers []domain.AnsweredQuestion) (domain.Level, string) {
	return classify(cat, answers)
}

func classify(cat *domain.Catalog, answers []domain.AnsweredQuestion) (domain.Level, string) {
	current := domain.LevelD
	levelA := false
	if cat == nil {
		return current, ""
	}
	for _, a := range answers {
		q, ok := cat.Question(a.QuestionID)
		if !ok || !q.Level.Scored() {
			continue
		}
		if !Evaluate(q.Condition, string(a.Response)) {
			continue
		}
		if q.Level == domain.LevelA {
			if q.StopOnTrigger {
				return domain.LevelA, q.ID
			}
			// the level is settled but a later stop question still names the trigger
			levelA = true
			continue
		}
		// D is the floor, so a met D never moves the level
		if q.Level.MoreSevere(current) {
			current = q.Level
		}
	}
	if levelA {
		return domain.LevelA, ""
	}
	return current, ""
}
