package risk

import "fmt"

// Level is the risk classification derived from a score.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Score thresholds for the medium and high levels.
const (
	MediumThreshold = 30
	HighThreshold   = 60
)

// LevelFromScore derives the level from a 0-100 score.
func LevelFromScore(score int) Level {
	switch {
	case score >= HighThreshold:
		return LevelHigh
	case score >= MediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// ParseLevel parses a level name.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelLow, LevelMedium, LevelHigh:
		return Level(s), nil
	default:
		return "", fmt.Errorf("invalid risk level: %q", s)
	}
}

// String returns the string representation.
func (l Level) String() string {
	return string(l)
}

// Short returns the abbreviated upper-case form used in badges.
func (l Level) Short() string {
	switch l {
	case LevelHigh:
		return "HIGH"
	case LevelMedium:
		return "MED"
	default:
		return "LOW"
	}
}
