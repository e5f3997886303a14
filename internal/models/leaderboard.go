package models

// LeaderboardPeriod selects the window a leaderboard ranks over
type LeaderboardPeriod string

const (
	PeriodWeek LeaderboardPeriod = "week"
	PeriodAll  LeaderboardPeriod = "all"
)

// LeaderboardEntry is one ranked learner
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	LearnerID   int64  `json:"childId"`
	FirstName   string `json:"firstName"`
	NickName    string `json:"nickName"`
	AvatarColor string `json:"avatarColor"`
	BooksRead   int    `json:"booksRead"`
	Medal       string `json:"medal,omitempty"`
}

// MedalForRank returns the medal shown next to the top three readers
func MedalForRank(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return ""
	}
}
