package triage

import "triage-service/internal/domain"

var baseMessages = map[domain.Level]string{
	domain.LevelA: "URGENTE: Llame al 112 inmediatamente o acuda a urgencias.",
	domain.LevelB: "PRIORITARIO: Un profesional se pondrá en contacto hoy mismo.",
	domain.LevelC: "NORMAL: Consulta en los próximos días.",
	domain.LevelD: "NO URGENTE: Caso que no requiere atención inmediata.",
}

// Message returns the patient-facing message for a level, preferring the
// catalog's own wording over the base message.
func Message(cat *domain.Catalog, level domain.Level) string {
	if cat != nil {
		if info, ok := cat.Levels[level]; ok && info.Message != "" {
			return info.Message
		}
	}
	return baseMessages[level]
}

// Summarize pairs every answer with its question. Answers to unknown
// questions are dropped.
func Summarize(cat *domain.Catalog, answers []domain.AnsweredQuestion) []domain.SummaryItem {
	out := make([]domain.SummaryItem, 0, len(answers))
	for _, a := range answers {
		q, ok := cat.Question(a.QuestionID)
		if !ok {
			continue
		}
		out = append(out, domain.SummaryItem{
			QuestionID: q.ID,
			Question:   q.Text,
			Response:   string(a.Response),
			Level:      q.Level,
			Triggered:  q.Level.Scored() && Evaluate(q.Condition, string(a.Response)),
		})
	}
	return out
}

// MissingAnswer returns the first visible scoring question left unanswered.
// An answer set that already hit an early stop is never incomplete.
func MissingAnswer(cat *domain.Catalog, answers []domain.AnsweredQuestion) (domain.QuestionDefinition, bool) {
	if _, trigger := Classify(cat, answers); trigger != "" {
		return domain.QuestionDefinition{}, false
	}
	for _, q := range BlockOrder(NextQuestions(cat, answers)) {
		if q.Level == domain.LevelInfo {
			continue
		}
		return q, true
	}
	return domain.QuestionDefinition{}, false
}

// Result assembles the final triage result for an answer set.
func Result(cat *domain.Catalog, answers []domain.AnsweredQuestion) domain.TriageResult {
	level, trigger := Classify(cat, answers)
	info := cat.Levels[level]
	return domain.TriageResult{
		Specialty:            cat.ID(),
		Level:                level,
		TriggeringQuestionID: trigger,
		Classification:       info.Classification,
		Destination:          info.Destination,
		Message:              Message(cat, level),
		Summary:              Summarize(cat, answers),
	}
}
