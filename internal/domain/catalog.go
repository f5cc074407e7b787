package domain

import "fmt"

// LevelText holds the per-level wording of a specialty.
type LevelText struct {
	Classification string `json:"classification"`
	Destination    string `json:"destination"`
	Message        string `json:"message,omitempty"`
}

// Fork maps the answers of a branch-select question to branch tags.
type Fork struct {
	QuestionID string            `json:"questionId"`
	Branches   map[string]string `json:"branches"`
}

// Catalog is the compiled, read-only question set of one specialty.
// It is never mutated after construction and may be shared across sessions.
type Catalog struct {
	Specialty Specialty
	Fork      *Fork
	Levels    map[Level]LevelText

	questions []QuestionDefinition
	index     map[string]int
}

// NewCatalog indexes questions in declaration order.
func NewCatalog(specialty Specialty, questions []QuestionDefinition, fork *Fork, levels map[Level]LevelText) (*Catalog, error) {
	index := make(map[string]int, len(questions))
	for i, q := range questions {
		if _, dup := index[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %q", ErrInvalidCatalog, q.ID)
		}
		index[q.ID] = i
	}
	if levels == nil {
		levels = map[Level]LevelText{}
	}
	return &Catalog{
		Specialty: specialty,
		Fork:      fork,
		Levels:    levels,
		questions: append([]QuestionDefinition(nil), questions...),
		index:     index,
	}, nil
}

// ID returns the specialty id of the catalog.
func (c *Catalog) ID() string {
	return c.Specialty.ID
}

// Questions returns a copy of the questions in declaration order.
func (c *Catalog) Questions() []QuestionDefinition {
	return append([]QuestionDefinition(nil), c.questions...)
}

// Len returns the number of questions.
func (c *Catalog) Len() int {
	return len(c.questions)
}

// Question looks up a question by id.
func (c *Catalog) Question(id string) (QuestionDefinition, bool) {
	i, ok := c.index[id]
	if !ok {
		return QuestionDefinition{}, false
	}
	return c.questions[i], true
}

// Forked reports whether the catalog starts with a branch fork.
func (c *Catalog) Forked() bool {
	return c.Fork != nil
}
