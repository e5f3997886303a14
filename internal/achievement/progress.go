package achievement

import "youngscholars/internal/models"

// BadgeProgress shows how close a learner is to one catalog badge
type BadgeProgress struct {
	Badge          models.Badge `json:"badge"`
	Earned         bool         `json:"earned"`
	BooksRemaining int          `json:"booksRemaining"`
}

// Progress lists every catalog badge with the learner's standing against it.
// Earned badges carry the learner's copy, including when it was earned.
func Progress(catalog Catalog, learner *models.Learner) []BadgeProgress {
	earned := make(map[string]models.Badge, len(learner.Badges))
	for _, b := range learner.Badges {
		earned[b.ID] = b
	}

	progress := make([]BadgeProgress, 0, len(catalog.Badges))
	for _, badge := range catalog.Badges {
		if b, ok := earned[badge.ID]; ok {
			progress = append(progress, BadgeProgress{Badge: b, Earned: true})
			continue
		}
		progress = append(progress, BadgeProgress{
			Badge:          badge,
			BooksRemaining: booksRemaining(badge.Condition, learner.BooksRead),
		})
	}
	return progress
}

func booksRemaining(c models.BadgeCondition, booksRead int) int {
	if c.Field != models.FieldBooksRead {
		return 0
	}
	target := c.Threshold
	if c.Operator == models.OpGreaterThan {
		target++
	}
	if remaining := target - booksRead; remaining > 0 {
		return remaining
	}
	return 0
}
