package credentials

import (
	"crypto/rand"
	"math/big"
)

var adjectives = []string{
	"Happy", "Sunny", "Brave", "Bright", "Curious", "Swift", "Clever", "Jolly",
	"Mighty", "Super", "Starry", "Gentle", "Funny", "Lucky", "Magic", "Bouncy",
	"Cheerful", "Daring", "Eager", "Kind", "Lively", "Merry", "Noble", "Cosmic",
	"Wise", "Quiet", "Dreamy", "Busy", "Friendly", "Sparkly",
}

var nouns = []string{
	"Owl", "Tiger", "Eagle", "Dolphin", "Panda", "Lion", "Fox", "Bear",
	"Otter", "Turtle", "Penguin", "Unicorn", "Rocket", "Wizard", "Explorer", "Dragon",
	"Reader", "Scholar", "Bookworm", "Comet", "Robin", "Koala", "Hedgehog", "Pilot",
	"Astronaut", "Storyteller", "Captain", "Firefly",
}

// avatarColors are the background colors offered for learner avatars
var avatarColors = []string{
	"#7c3aed", "#4ade80", "#facc15", "#f87171", "#60a5fa", "#c084fc", "#fbbf24", "#2dd4bf",
}

// GenerateNickname returns a random two-word nickname such as "Brave Owl"
func GenerateNickname() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}

	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}

	return adjective + " " + noun, nil
}

// RandomAvatarColor picks one of the avatar palette colors
func RandomAvatarColor() (string, error) {
	return randomElement(avatarColors)
}

// IsAvatarColor reports whether color is in the avatar palette
func IsAvatarColor(color string) bool {
	for _, c := range avatarColors {
		if c == color {
			return true
		}
	}
	return false
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}

	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}

	return slice[num.Int64()], nil
}
