package models

import "time"

// ConditionField names the learner statistic a badge condition reads
type ConditionField string

// ConditionOperator compares a learner statistic against a threshold
type ConditionOperator string

const (
	FieldBooksRead ConditionField = "books_read"

	OpAtLeast     ConditionOperator = ">="
	OpGreaterThan ConditionOperator = ">"
	OpEquals      ConditionOperator = "=="
)

// BadgeCondition is a comparison of one learner statistic against a threshold
type BadgeCondition struct {
	Field     ConditionField    `json:"field"`
	Operator  ConditionOperator `json:"operator"`
	Threshold int               `json:"threshold"`
}

// Matches evaluates the condition against a learner. Unknown fields and
// operators never match.
func (c BadgeCondition) Matches(l *Learner) bool {
	var value int
	switch c.Field {
	case FieldBooksRead:
		value = l.BooksRead
	default:
		return false
	}

	switch c.Operator {
	case OpAtLeast:
		return value >= c.Threshold
	case OpGreaterThan:
		return value > c.Threshold
	case OpEquals:
		return value == c.Threshold
	default:
		return false
	}
}

// Badge is an achievement a learner can earn
type Badge struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Color       string         `json:"color"`
	Condition   BadgeCondition `json:"condition"`
	EarnedAt    *time.Time     `json:"earnedAt,omitempty"`
}
