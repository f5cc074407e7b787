package domain

import (
	"encoding/json"
	"strconv"
)

// ConditionKind discriminates the trigger condition variants.
type ConditionKind int

const (
	ConditionNone ConditionKind = iota
	ConditionExact
	ConditionAnyOf
	ConditionNonEmptyText
	ConditionNumericAbove
)

// NonEmptyTextSentinel is the document form of the non-empty text condition.
const NonEmptyTextSentinel = "any_text"

// Condition is the predicate deciding whether an answer counts toward a question's level.
// It is resolved once when a catalog is compiled.
type Condition struct {
	Kind      ConditionKind
	Value     string
	Values    []string
	Threshold int
}

// ExactMatch is met when the response equals value.
func ExactMatch(value string) Condition {
	return Condition{Kind: ConditionExact, Value: value}
}

// AnyOf is met when the response equals one of values.
func AnyOf(values ...string) Condition {
	return Condition{Kind: ConditionAnyOf, Values: append([]string(nil), values...)}
}

// NonEmptyText is met by any response with non-whitespace content.
func NonEmptyText() Condition {
	return Condition{Kind: ConditionNonEmptyText}
}

// NumericThreshold is met when the leading integer of the response is greater than n.
func NumericThreshold(n int) Condition {
	return Condition{Kind: ConditionNumericAbove, Threshold: n}
}

// IsZero reports whether no condition is set.
func (c Condition) IsZero() bool {
	return c.Kind == ConditionNone
}

// String renders the condition in its catalog document form.
func (c Condition) String() string {
	switch c.Kind {
	case ConditionExact:
		return c.Value
	case ConditionNonEmptyText:
		return NonEmptyTextSentinel
	case ConditionNumericAbove:
		return ">" + strconv.Itoa(c.Threshold)
	case ConditionAnyOf:
		b, _ := json.Marshal(c.Values)
		return string(b)
	}
	return ""
}

// MarshalJSON emits the document form: a string, a list of strings, or null.
func (c Condition) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ConditionNone:
		return []byte("null"), nil
	case ConditionAnyOf:
		return json.Marshal(c.Values)
	}
	return json.Marshal(c.String())
}
