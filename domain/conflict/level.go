package conflict

import "fmt"

// Level is the severity tier of the disagreement between two submissions for a variant
type Level int

const (
	LevelUnclassified Level = -1
	LevelNone         Level = 0
	LevelSynonymous   Level = 1
	LevelConfidence   Level = 2
	LevelBenignVsVUS  Level = 3
	LevelCategory     Level = 4
	LevelClinical     Level = 5
)

// MinLevel and MaxLevel bound every valid level
const (
	MinLevel = LevelUnclassified
	MaxLevel = LevelClinical
)

var levelNames = map[Level]string{
	LevelUnclassified: "unclassified",
	LevelNone:         "no conflict",
	LevelSynonymous:   "synonymous conflict",
	LevelConfidence:   "confidence conflict",
	LevelBenignVsVUS:  "benign vs uncertain conflict",
	LevelCategory:     "category conflict",
	LevelClinical:     "clinically significant conflict",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("conflict level %d", int(l))
}

// Valid reports whether l is one of -1..5
func (l Level) Valid() bool {
	return l >= MinLevel && l <= MaxLevel
}

// ConflictLevels returns the levels that count as a real conflict, 1..5
func ConflictLevels() []Level {
	return []Level{LevelSynonymous, LevelConfidence, LevelBenignVsVUS, LevelCategory, LevelClinical}
}

// AnyConflictThreshold is the lowest level counted in the any-conflict total
// for a given minimum-conflict-level filter.
func AnyConflictThreshold(minConflictLevel Level) Level {
	if minConflictLevel < LevelSynonymous {
		return LevelSynonymous
	}
	return minConflictLevel
}
