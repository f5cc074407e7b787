package domain

// Level is the severity tier a question contributes to, or a non-scoring marker.
type Level string

const (
	LevelA      Level = "A"
	LevelB      Level = "B"
	LevelC      Level = "C"
	LevelD      Level = "D"
	LevelInfo   Level = "INFO"
	LevelBranch Level = "BRANCH"
)

// SeverityLevels lists the scoring levels in block order.
var SeverityLevels = []Level{LevelA, LevelB, LevelC, LevelD}

// Scored reports whether the level carries severity weight.
func (l Level) Scored() bool {
	switch l {
	case LevelA, LevelB, LevelC, LevelD:
		return true
	}
	return false
}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	return l.Scored() || l == LevelInfo || l == LevelBranch
}

// Rank orders levels for block traversal: INFO/BRANCH first, then A through D.
func (l Level) Rank() int {
	switch l {
	case LevelInfo, LevelBranch:
		return 0
	case LevelA:
		return 1
	case LevelB:
		return 2
	case LevelC:
		return 3
	case LevelD:
		return 4
	}
	return 5
}

// MoreSevere reports whether l outranks other. Non-scoring levels never do.
func (l Level) MoreSevere(other Level) bool {
	if !l.Scored() {
		return false
	}
	if !other.Scored() {
		return true
	}
	return l.Rank() < other.Rank()
}
