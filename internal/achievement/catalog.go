// Package achievement awards badges from a catalog of books-read thresholds.
package achievement

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"youngscholars/internal/models"
)

var (
	ErrEmptyBadgeID      = errors.New("badge id is empty")
	ErrDuplicateBadgeID  = errors.New("duplicate badge id")
	ErrThresholdOrdering = errors.New("badge thresholds must be strictly increasing")
)

// Catalog is the ordered list of badges a learner can earn, lowest threshold first
type Catalog struct {
	Badges []models.Badge `json:"badges"`
}

func booksReadBadge(id, title, description, icon, color string, threshold int) models.Badge {
	return models.Badge{
		ID:          id,
		Title:       title,
		Description: description,
		Icon:        icon,
		Color:       color,
		Condition: models.BadgeCondition{
			Field:     models.FieldBooksRead,
			Operator:  models.OpAtLeast,
			Threshold: threshold,
		},
	}
}

// DefaultCatalog returns the built-in seven badges
func DefaultCatalog() Catalog {
	return Catalog{Badges: []models.Badge{
		booksReadBadge("first-read", "First Read 📖", "Completed your first book!", "📖", "#4ade80", 1),
		booksReadBadge("book-worm", "Book Worm 🐛", "Read 5 books!", "🐛", "#facc15", 5),
		booksReadBadge("streak-starter", "Streak Starter 🔥", "Read 10 books!", "🔥", "#f87171", 10),
		booksReadBadge("fast-reader", "Fast Reader ⚡", "Read 15 books!", "⚡", "#60a5fa", 15),
		booksReadBadge("marathon-reader", "Marathon Reader 🏃‍♂️", "Read 20 books!", "🏃‍♂️", "#c084fc", 20),
		booksReadBadge("super-scholar", "Super Scholar 🏆", "Read 25 books!", "🏆", "#fbbf24", 25),
		booksReadBadge("reading-champion", "Reading Champion 🏆", "Read 30 books!", "🏆", "#fbbf24", 30),
	}}
}

// LoadCatalog reads a JSON catalog file and validates it
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read badge catalog: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse badge catalog: %w", err)
	}

	for i := range catalog.Badges {
		if catalog.Badges[i].Condition.Field == "" {
			catalog.Badges[i].Condition.Field = models.FieldBooksRead
		}
		if catalog.Badges[i].Condition.Operator == "" {
			catalog.Badges[i].Condition.Operator = models.OpAtLeast
		}
	}

	if err := catalog.Validate(); err != nil {
		return Catalog{}, err
	}
	return catalog, nil
}

// Validate checks ids are present and unique and thresholds strictly increase
func (c Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Badges))
	for i, b := range c.Badges {
		if b.ID == "" {
			return fmt.Errorf("badge %d: %w", i, ErrEmptyBadgeID)
		}
		if seen[b.ID] {
			return fmt.Errorf("badge %q: %w", b.ID, ErrDuplicateBadgeID)
		}
		seen[b.ID] = true

		if i > 0 && b.Condition.Threshold <= c.Badges[i-1].Condition.Threshold {
			return fmt.Errorf("badge %q: %w", b.ID, ErrThresholdOrdering)
		}
	}
	return nil
}

// Find returns the catalog badge with the given id
func (c Catalog) Find(id string) (models.Badge, bool) {
	for _, b := range c.Badges {
		if b.ID == id {
			return b, true
		}
	}
	return models.Badge{}, false
}
