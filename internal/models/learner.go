package models

import "time"

// ReadingLevel is one rung of a reading ladder, e.g. "Read-along"
type ReadingLevel string

// Learner represents a child's reading profile
type Learner struct {
	ID                  int64        `json:"id"`
	ParentID            int64        `json:"parentId"`
	FirstName           string       `json:"firstName"`
	LastName            string       `json:"lastName"`
	NickName            string       `json:"nickName"`
	Age                 int          `json:"age"`
	AvatarColor         string       `json:"avatarColor"`
	ReadingLevel        ReadingLevel `json:"readingLevel"`
	BooksRead           int          `json:"booksRead"`
	TotalReadingMinutes int          `json:"totalReadingMinutes"`
	Badges              []Badge      `json:"badges"`
	LatestBadge         *Badge       `json:"latestBadge"`
	CreatedAt           time.Time    `json:"joinedDate"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// DisplayName returns the nickname when set, otherwise the first name
func (l *Learner) DisplayName() string {
	if l.NickName != "" {
		return l.NickName
	}
	return l.FirstName
}

// HasBadge reports whether a badge with the given id has been earned
func (l *Learner) HasBadge(id string) bool {
	for _, b := range l.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}
