package triage

import "triage-service/internal/domain"

// ResolveBranch maps a fork answer to its branch tag. Unrecognized answers,
// and catalogs without a fork, yield false.
func ResolveBranch(cat *domain.Catalog, forkAnswer string) (string, bool) {
	if cat == nil || cat.Fork == nil {
		return "", false
	}
	tag, ok := cat.Fork.Branches[forkAnswer]
	return tag, ok
}

// ActiveBranch returns the branch selected by the recorded fork answer, or ""
// when the fork is unanswered or the answer is not recognized.
func ActiveBranch(cat *domain.Catalog, answers []domain.AnsweredQuestion) string {
	if cat == nil || cat.Fork == nil {
		return ""
	}
	resp, ok := answerIndex(answers)[cat.Fork.QuestionID]
	if !ok {
		return ""
	}
	tag, _ := ResolveBranch(cat, resp)
	return tag
}

// answerIndex keeps the first response recorded for each question id.
func answerIndex(answers []domain.AnsweredQuestion) map[string]string {
	idx := make(map[string]string, len(answers))
	for _, a := range answers {
		if _, seen := idx[a.QuestionID]; !seen {
			idx[a.QuestionID] = string(a.Response)
		}
	}
	return idx
}
