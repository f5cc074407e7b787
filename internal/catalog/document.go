// Package catalog parses, validates and compiles question catalog documents.
package catalog

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is the storage form of a catalog, shared by the embedded YAML
// files and the JSONB rows in Postgres.
type Document struct {
	ID          string                   `json:"id" yaml:"id"`
	Name        string                   `json:"name" yaml:"name"`
	Description string                   `json:"description,omitempty" yaml:"description,omitempty"`
	Fork        *ForkDocument            `json:"fork,omitempty" yaml:"fork,omitempty"`
	Levels      map[string]LevelDocument `json:"levels,omitempty" yaml:"levels,omitempty"`
	Questions   []QuestionDocument       `json:"questions" yaml:"questions"`
}

type ForkDocument struct {
	Question string            `json:"question" yaml:"question"`
	Branches map[string]string `json:"branches" yaml:"branches"`
}

type LevelDocument struct {
	Classification string `json:"classification" yaml:"classification"`
	Destination    string `json:"destination" yaml:"destination"`
	Message        string `json:"message,omitempty" yaml:"message,omitempty"`
}

type QuestionDocument struct {
	ID            string        `json:"id" yaml:"id"`
	Text          string        `json:"text" yaml:"text"`
	Description   string        `json:"description,omitempty" yaml:"description,omitempty"`
	Type          string        `json:"type" yaml:"type"`
	Options       []string      `json:"options,omitempty" yaml:"options,omitempty"`
	Level         string        `json:"level" yaml:"level"`
	Condition     *StringOrList `json:"condition,omitempty" yaml:"condition,omitempty"`
	StopOnTrigger bool          `json:"stopOnTrigger,omitempty" yaml:"stopOnTrigger,omitempty"`
	DependsOn     string        `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
	ShowIf        *StringOrList `json:"showIf,omitempty" yaml:"showIf,omitempty"`
	Branch        string        `json:"branch,omitempty" yaml:"branch,omitempty"`
	Block         int           `json:"block,omitempty" yaml:"block,omitempty"`
	SubBlock      string        `json:"subBlock,omitempty" yaml:"subBlock,omitempty"`
}

// StringOrList holds a field that documents write either as a single string
// or as a list of strings. List records which form was used.
type StringOrList struct {
	Values []string
	List   bool
}

// Single returns a scalar StringOrList.
func Single(v string) *StringOrList {
	return &StringOrList{Values: []string{v}}
}

// Many returns a list StringOrList.
func Many(vs ...string) *StringOrList {
	return &StringOrList{Values: vs, List: true}
}

func (s *StringOrList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StringOrList{Values: []string{single}}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*s = StringOrList{Values: list, List: true}
	return nil
}

func (s StringOrList) MarshalJSON() ([]byte, error) {
	if s.List {
		return json.Marshal(s.Values)
	}
	return json.Marshal(s.first())
}

func (s *StringOrList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var single string
		if err := node.Decode(&single); err != nil {
			return err
		}
		*s = StringOrList{Values: []string{single}}
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = StringOrList{Values: list, List: true}
	default:
		return fmt.Errorf("line %d: expected string or list of strings", node.Line)
	}
	return nil
}

func (s StringOrList) MarshalYAML() (interface{}, error) {
	if s.List {
		return s.Values, nil
	}
	return s.first(), nil
}

func (s StringOrList) first() string {
	if len(s.Values) == 0 {
		return ""
	}
	return s.Values[0]
}
