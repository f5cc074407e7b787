package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"triage-service/internal/domain"
)

var yesNo = []string{"Sí", "No"}

// Compile turns a document into an immutable, indexed catalog. Conditions and
// visibility rules are resolved here once; every structural invariant is
// checked and a violation is reported as domain.ErrInvalidCatalog.
func Compile(doc Document) (*domain.Catalog, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("%w: missing id", domain.ErrInvalidCatalog)
	}

	var fork *domain.Fork
	tags := map[string]bool{}
	if doc.Fork != nil {
		fork = &domain.Fork{QuestionID: doc.Fork.Question, Branches: make(map[string]string, len(doc.Fork.Branches))}
		for answer, tag := range doc.Fork.Branches {
			fork.Branches[answer] = tag
			tags[tag] = true
		}
	}

	seen := make(map[string]bool, len(doc.Questions))
	questions := make([]domain.QuestionDefinition, 0, len(doc.Questions))
	for _, qd := range doc.Questions {
		q, err := compileQuestion(qd)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", doc.ID, qd.ID, err)
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("%w: %s: duplicate question id %q", domain.ErrInvalidCatalog, doc.ID, q.ID)
		}
		if q.Visibility != nil && !seen[q.Visibility.DependsOn] {
			return nil, invalid(doc.ID, q.ID, "dependsOn %q must reference an earlier question", q.Visibility.DependsOn)
		}
		if q.Branch != "" && !tags[q.Branch] {
			return nil, invalid(doc.ID, q.ID, "branch %q is not produced by the fork", q.Branch)
		}
		seen[q.ID] = true
		questions = append(questions, q)
	}

	if fork != nil {
		if err := checkFork(doc.ID, fork, questions); err != nil {
			return nil, err
		}
	}

	levels := make(map[domain.Level]domain.LevelText, len(doc.Levels))
	for name, ld := range doc.Levels {
		lvl := domain.Level(name)
		if !lvl.Scored() {
			return nil, fmt.Errorf("%w: %s: unknown level %q", domain.ErrInvalidCatalog, doc.ID, name)
		}
		levels[lvl] = domain.LevelText{Classification: ld.Classification, Destination: ld.Destination, Message: ld.Message}
	}

	specialty := domain.Specialty{ID: doc.ID, Name: doc.Name, Description: doc.Description}
	return domain.NewCatalog(specialty, questions, fork, levels)
}

// MustCompile is Compile for documents known to be valid, such as the
// embedded built-ins.
func MustCompile(doc Document) *domain.Catalog {
	cat, err := Compile(doc)
	if err != nil {
		panic(err)
	}
	return cat
}

func compileQuestion(qd QuestionDocument) (domain.QuestionDefinition, error) {
	level := domain.Level(qd.Level)
	if !level.Valid() {
		return domain.QuestionDefinition{}, fmt.Errorf("%w: unknown level %q", domain.ErrInvalidCatalog, qd.Level)
	}
	typ := domain.AnswerType(qd.Type)
	if !typ.Valid() {
		return domain.QuestionDefinition{}, fmt.Errorf("%w: unknown answer type %q", domain.ErrInvalidCatalog, qd.Type)
	}

	options := append([]string(nil), qd.Options...)
	switch typ {
	case domain.AnswerBoolean:
		if len(options) == 0 {
			options = append([]string(nil), yesNo...)
		}
	case domain.AnswerSelect, domain.AnswerBranch:
		if len(options) == 0 {
			return domain.QuestionDefinition{}, fmt.Errorf("%w: %s question needs options", domain.ErrInvalidCatalog, typ)
		}
	case domain.AnswerNumber, domain.AnswerText, domain.AnswerInfo:
		if len(options) > 0 {
			return domain.QuestionDefinition{}, fmt.Errorf("%w: %s question cannot have options", domain.ErrInvalidCatalog, typ)
		}
	}

	cond, err := ParseCondition(qd.Condition)
	if err != nil {
		return domain.QuestionDefinition{}, err
	}
	if level.Scored() && cond.IsZero() {
		return domain.QuestionDefinition{}, fmt.Errorf("%w: level %s question needs a condition", domain.ErrInvalidCatalog, level)
	}
	if !level.Scored() {
		cond = domain.Condition{}
	}
	if qd.StopOnTrigger && level != domain.LevelA {
		return domain.QuestionDefinition{}, fmt.Errorf("%w: stopOnTrigger is only allowed on level A", domain.ErrInvalidCatalog)
	}

	var rule *domain.VisibilityRule
	switch {
	case qd.DependsOn != "" && (qd.ShowIf == nil || len(qd.ShowIf.Values) == 0):
		return domain.QuestionDefinition{}, fmt.Errorf("%w: dependsOn requires showIf", domain.ErrInvalidCatalog)
	case qd.DependsOn == "" && qd.ShowIf != nil:
		return domain.QuestionDefinition{}, fmt.Errorf("%w: showIf requires dependsOn", domain.ErrInvalidCatalog)
	case qd.DependsOn != "":
		rule = &domain.VisibilityRule{DependsOn: qd.DependsOn, ShowIf: append([]string(nil), qd.ShowIf.Values...)}
	}

	return domain.QuestionDefinition{
		ID:            qd.ID,
		Text:          qd.Text,
		Description:   qd.Description,
		Type:          typ,
		Options:       options,
		Level:         level,
		Condition:     cond,
		StopOnTrigger: qd.StopOnTrigger,
		Visibility:    rule,
		Branch:        qd.Branch,
		Block:         qd.Block,
		SubBlock:      qd.SubBlock,
	}, nil
}

// ParseCondition resolves the document form of a trigger condition: a list
// is any-of, "any_text" is non-empty text, ">N" is a numeric threshold and
// any other string is an exact match.
func ParseCondition(spec *StringOrList) (domain.Condition, error) {
	if spec == nil || len(spec.Values) == 0 {
		return domain.Condition{}, nil
	}
	if spec.List {
		return domain.AnyOf(spec.Values...), nil
	}
	raw := spec.Values[0]
	switch {
	case raw == domain.NonEmptyTextSentinel:
		return domain.NonEmptyText(), nil
	case strings.HasPrefix(raw, ">"):
		n, err := strconv.Atoi(strings.TrimSpace(raw[1:]))
		if err != nil {
			return domain.Condition{}, fmt.Errorf("%w: bad numeric threshold %q", domain.ErrInvalidCatalog, raw)
		}
		return domain.NumericThreshold(n), nil
	}
	return domain.ExactMatch(raw), nil
}

func checkFork(catalogID string, fork *domain.Fork, questions []domain.QuestionDefinition) error {
	for _, q := range questions {
		if q.ID != fork.QuestionID {
			continue
		}
		if q.Level != domain.LevelBranch {
			return invalid(catalogID, q.ID, "fork question must have level BRANCH")
		}
		for _, opt := range q.Options {
			if _, ok := fork.Branches[opt]; !ok {
				return invalid(catalogID, q.ID, "fork option %q has no branch", opt)
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %s: fork question %q not found", domain.ErrInvalidCatalog, catalogID, fork.QuestionID)
}

func invalid(catalogID, questionID, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s/%s: %s", domain.ErrInvalidCatalog, catalogID, questionID, fmt.Sprintf(format, args...))
}
