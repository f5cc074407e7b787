// Package triage holds the rule-evaluation engine: condition evaluation,
// visibility filtering, branch resolution and level calculation over a
// compiled catalog. Every function is pure and safe for concurrent use.
package triage

import (
	"errors"
	"strconv"
	"strings"

	"triage-service/internal/domain"
)

// Evaluate reports whether response meets the condition. Malformed input is
// never an error; it simply does not meet the condition.
func Evaluate(c domain.Condition, response string) bool {
	switch c.Kind {
	case domain.ConditionAnyOf:
		for _, v := range c.Values {
			if v == response {
				return true
			}
		}
		return false
	case domain.ConditionNonEmptyText:
		return len(strings.TrimSpace(response)) > 0
	case domain.ConditionNumericAbove:
		n, ok := leadingInt(response)
		return ok && n > c.Threshold
	case domain.ConditionExact:
		return response == c.Value
	}
	return false
}

// leadingInt parses the integer prefix of s after leading whitespace, so
// "75", " 75" and "75.5" all yield 75 while "abc" and "" fail.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	// out-of-range prefixes saturate at the int bounds
	n, err := strconv.Atoi(s[:end])
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return n, true
}

// CheckEarlyStop reports whether answering q with response ends the session.
func CheckEarlyStop(q domain.QuestionDefinition, response string) domain.EarlyStop {
	if !q.StopOnTrigger || !q.Level.Scored() || q.Condition.IsZero() {
		return domain.EarlyStop{}
	}
	if !Evaluate(q.Condition, response) {
		return domain.EarlyStop{}
	}
	return domain.EarlyStop{Stops: true, Level: q.Level}
}
