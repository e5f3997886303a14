package achievement

import "youngscholars/internal/models"

// Result is the outcome of evaluating a learner against the catalog.
// NewBadges is empty when nothing was earned, in which case Learner is the
// input learner itself.
type Result struct {
	Learner   *models.Learner
	NewBadges []models.Badge
}

// Evaluate awards every catalog badge whose condition holds and that the
// learner has not earned yet. The input learner is never modified.
func Evaluate(catalog Catalog, learner *models.Learner) Result {
	var newBadges []models.Badge
	for _, badge := range catalog.Badges {
		if badge.Condition.Matches(learner) && !learner.HasBadge(badge.ID) {
			newBadges = append(newBadges, badge)
		}
	}

	if len(newBadges) == 0 {
		return Result{Learner: learner, NewBadges: []models.Badge{}}
	}

	updated := *learner
	updated.Badges = make([]models.Badge, 0, len(learner.Badges)+len(newBadges))
	updated.Badges = append(updated.Badges, learner.Badges...)
	updated.Badges = append(updated.Badges, newBadges...)

	latest := newBadges[len(newBadges)-1]
	updated.LatestBadge = &latest

	return Result{Learner: &updated, NewBadges: newBadges}
}
