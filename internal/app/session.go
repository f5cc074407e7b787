package app

import (
	"fmt"
	"time"

	"triage-service/internal/domain"
	"triage-service/internal/triage"
)

// SessionState is the controller state of a server-held triage session.
type SessionState string

const (
	StateAwaitingBranch SessionState = "awaiting_branch_selection"
	StateInBlock        SessionState = "in_block"
	StateCompleted      SessionState = "completed"
)

// Session is the server-held state of one triage run. It is owned by a
// single client and serialized as a whole by session stores.
type Session struct {
	ID        string                    `json:"id"`
	Specialty string                    `json:"specialty"`
	State     SessionState              `json:"state"`
	Block     domain.Level              `json:"block,omitempty"`
	Index     int                       `json:"index"`
	Current   string                    `json:"currentQuestionId,omitempty"`
	Answers   []domain.AnsweredQuestion `json:"answers"`
	Result    *domain.TriageResult      `json:"result,omitempty"`
	CreatedAt time.Time                 `json:"createdAt"`
	UpdatedAt time.Time                 `json:"updatedAt"`
}

// NewSession creates a session positioned at the catalog's first question.
func NewSession(id string, cat *domain.Catalog, now time.Time) *Session {
	s := &Session{
		ID:        id,
		Specialty: cat.ID(),
		Answers:   []domain.AnsweredQuestion{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.advance(cat)
	return s
}

// Completed reports whether the session reached a final level.
func (s *Session) Completed() bool {
	return s.State == StateCompleted
}

// apply records an answer for the current question and moves the state
// machine. It returns true when the answer triggered an early stop.
func (s *Session) apply(cat *domain.Catalog, questionID string, response domain.Response, now time.Time) (bool, error) {
	if s.Completed() {
		return false, fmt.Errorf("%w: session %s is completed", domain.ErrInvalidTransition, s.ID)
	}
	if questionID != s.Current {
		return false, fmt.Errorf("%w: question %q is not the current question %q", domain.ErrInvalidTransition, questionID, s.Current)
	}
	q, ok := cat.Question(questionID)
	if !ok {
		return false, fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, questionID)
	}

	s.Answers = append(s.Answers, domain.AnsweredQuestion{QuestionID: questionID, Response: response})
	s.UpdatedAt = now

	if stop := triage.CheckEarlyStop(q, string(response)); stop.Stops {
		result := triage.Result(cat, s.Answers)
		result.TriggeringQuestionID = q.ID
		s.complete(result)
		return true, nil
	}

	s.advance(cat)
	return false, nil
}

// advance points the session at the next eligible question, or completes it
// with the aggregate level when none is left.
func (s *Session) advance(cat *domain.Catalog) {
	next, ok := triage.NextInSequence(cat, s.Answers)
	if !ok {
		s.complete(triage.Result(cat, s.Answers))
		return
	}
	s.Current = next.ID
	if cat.Forked() && triage.ActiveBranch(cat, s.Answers) == "" {
		s.State = StateAwaitingBranch
		s.Block = next.Level
		s.Index = 0
		return
	}
	if s.State != StateInBlock || s.Block != next.Level {
		s.Index = 0
	} else {
		s.Index++
	}
	s.State = StateInBlock
	s.Block = next.Level
}

func (s *Session) complete(result domain.TriageResult) {
	s.State = StateCompleted
	s.Block = result.Level
	s.Current = ""
	s.Result = &result
}
