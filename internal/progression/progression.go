package progression

import "youngscholars/internal/models"

// NextLevel returns the level after current. The top level and any level not
// on the ladder are returned unchanged; an unset level counts as the lowest.
func (l Ladder) NextLevel(current models.ReadingLevel) models.ReadingLevel {
	i := l.index(current)
	if i < 0 {
		return current
	}
	if i == len(l.Rungs)-1 {
		return l.Rungs[i].Level
	}
	return l.Rungs[i+1].Level
}

// Promote applies the books-read gate: the learner moves up one rung only
// once booksRead reaches the current rung's PromoteAt.
func (l Ladder) Promote(current models.ReadingLevel, booksRead int) models.ReadingLevel {
	i := l.index(current)
	if i < 0 {
		return current
	}
	if i == len(l.Rungs)-1 || booksRead < l.Rungs[i].PromoteAt {
		return l.Rungs[i].Level
	}
	return l.NextLevel(current)
}

// Label returns the display label for a level, or the level itself when unknown
func (l Ladder) Label(level models.ReadingLevel) string {
	i := l.index(level)
	if i < 0 {
		return string(level)
	}
	return l.Rungs[i].Label
}

// NextLabel returns the display label of the level after current
func (l Ladder) NextLabel(current models.ReadingLevel) string {
	return l.Label(l.NextLevel(current))
}

// BooksToNextLevel returns how many more books are needed before Promote
// moves the learner up. It returns 0 on the top rung or for unknown levels.
func (l Ladder) BooksToNextLevel(current models.ReadingLevel, booksRead int) int {
	i := l.index(current)
	if i < 0 || i == len(l.Rungs)-1 {
		return 0
	}
	if remaining := l.Rungs[i].PromoteAt - booksRead; remaining > 0 {
		return remaining
	}
	return 0
}
