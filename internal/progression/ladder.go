// Package progression advances a learner's reading level along a fixed ladder.
package progression

import (
	"fmt"
	"strings"

	"youngscholars/internal/models"
)

// Rung is one level of a ladder. PromoteAt is the books-read count at which
// a learner on this rung moves to the next one; it is ignored on the top rung.
type Rung struct {
	Level     models.ReadingLevel
	Label     string
	PromoteAt int
}

// Ladder is an ordered list of reading levels, lowest first
type Ladder struct {
	Name  string
	Rungs []Rung
}

// ThreeLevelLadder is the default ladder
func ThreeLevelLadder() Ladder {
	return Ladder{
		Name: "three",
		Rungs: []Rung{
			{Level: "Read-along", Label: "Beginner", PromoteAt: 10},
			{Level: "Guided-reading", Label: "Intermediate", PromoteAt: 25},
			{Level: "Independent-reading", Label: "Advanced"},
		},
	}
}

// FiveLevelLadder uses the level names as their own labels
func FiveLevelLadder() Ladder {
	return Ladder{
		Name: "five",
		Rungs: []Rung{
			{Level: "Beginner", Label: "Beginner", PromoteAt: 5},
			{Level: "Intermediate", Label: "Intermediate", PromoteAt: 12},
			{Level: "Advanced", Label: "Advanced", PromoteAt: 20},
			{Level: "Super Advanced", Label: "Super Advanced", PromoteAt: 30},
			{Level: "Extraordinary", Label: "Extraordinary"},
		},
	}
}

// LadderByName returns a built-in ladder by name
func LadderByName(name string) (Ladder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "three", "3":
		return ThreeLevelLadder(), nil
	case "five", "5":
		return FiveLevelLadder(), nil
	default:
		return Ladder{}, fmt.Errorf("unknown reading ladder %q", name)
	}
}

// Lowest returns the first level of the ladder
func (l Ladder) Lowest() models.ReadingLevel {
	if len(l.Rungs) == 0 {
		return ""
	}
	return l.Rungs[0].Level
}

// Levels returns the ladder's levels in order
func (l Ladder) Levels() []models.ReadingLevel {
	levels := make([]models.ReadingLevel, len(l.Rungs))
	for i, r := range l.Rungs {
		levels[i] = r.Level
	}
	return levels
}

// Normalize maps an unset level to the lowest level
func (l Ladder) Normalize(level models.ReadingLevel) models.ReadingLevel {
	if level == "" {
		return l.Lowest()
	}
	return level
}

// Contains reports whether level is on the ladder
func (l Ladder) Contains(level models.ReadingLevel) bool {
	return l.index(level) >= 0
}

func (l Ladder) index(level models.ReadingLevel) int {
	level = l.Normalize(level)
	for i, r := range l.Rungs {
		if r.Level == level {
			return i
		}
	}
	return -1
}
