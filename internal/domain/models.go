package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AnswerType describes how a question is answered.
type AnswerType string

const (
	AnswerBoolean AnswerType = "boolean"
	AnswerSelect  AnswerType = "select"
	AnswerNumber  AnswerType = "number"
	AnswerText    AnswerType = "text"
	AnswerInfo    AnswerType = "info"
	AnswerBranch  AnswerType = "branch"
)

// Valid reports whether t is a known answer type.
func (t AnswerType) Valid() bool {
	switch t {
	case AnswerBoolean, AnswerSelect, AnswerNumber, AnswerText, AnswerInfo, AnswerBranch:
		return true
	}
	return false
}

// VisibilityRule gates a question on the recorded answer of an earlier question.
type VisibilityRule struct {
	DependsOn string   `json:"dependsOn"`
	ShowIf    []string `json:"showIf"`
}

// Allows reports whether the dependency's response unlocks the question.
func (r VisibilityRule) Allows(response string) bool {
	for _, v := range r.ShowIf {
		if v == response {
			return true
		}
	}
	return false
}

// QuestionDefinition is an immutable catalog entry.
type QuestionDefinition struct {
	ID            string          `json:"id"`
	Text          string          `json:"text"`
	Description   string          `json:"description,omitempty"`
	Type          AnswerType      `json:"type"`
	Options       []string        `json:"options,omitempty"`
	Level         Level           `json:"level"`
	Condition     Condition       `json:"condition"`
	StopOnTrigger bool            `json:"stopOnTrigger"`
	Visibility    *VisibilityRule `json:"visibility,omitempty"`
	Branch        string          `json:"branch,omitempty"`
	Block         int             `json:"block,omitempty"`
	SubBlock      string          `json:"subBlock,omitempty"`
}

// Response is an answer value. Clients may send it as a JSON string or number.
type Response string

func (r *Response) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*r = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Response(s)
	default:
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return fmt.Errorf("response must be a string or number, got %s", raw)
		}
		*r = Response(raw)
	}
	return nil
}

// AnsweredQuestion is one entry of a session's ordered answer list.
type AnsweredQuestion struct {
	QuestionID string   `json:"questionId"`
	Response   Response `json:"response"`
}

// EarlyStop is the outcome of a per-question stop check.
type EarlyStop struct {
	Stops bool  `json:"stops"`
	Level Level `json:"level,omitempty"`
}

// SummaryItem pairs a recorded answer with its question for display.
type SummaryItem struct {
	QuestionID string `json:"questionId"`
	Question   string `json:"question"`
	Response   string `json:"response"`
	Level      Level  `json:"level"`
	Triggered  bool   `json:"triggered"`
}

// TriageResult is the immutable outcome of a completed triage.
type TriageResult struct {
	ConsultationID       string        `json:"consultationId"`
	Specialty            string        `json:"specialty"`
	Level                Level         `json:"level"`
	TriggeringQuestionID string        `json:"triggeringQuestionId,omitempty"`
	Classification       string        `json:"classification"`
	Destination          string        `json:"destination"`
	Message              string        `json:"message"`
	Summary              []SummaryItem `json:"summary,omitempty"`
}

// Specialty is the public listing entry for a catalog.
type Specialty struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
