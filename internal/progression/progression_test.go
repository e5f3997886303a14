package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"youngscholars/internal/models"
)

func TestNextLevel_WalksTheLadder(t *testing.T) {
	for _, ladder := range []Ladder{ThreeLevelLadder(), FiveLevelLadder()} {
		t.Run(ladder.Name, func(t *testing.T) {
			levels := ladder.Levels()
			for i := 0; i < len(levels)-1; i++ {
				assert.Equal(t, levels[i+1], ladder.NextLevel(levels[i]))
			}
			last := levels[len(levels)-1]
			assert.Equal(t, last, ladder.NextLevel(last))
		})
	}
}

func TestNextLevel_UnsetIsLowest(t *testing.T) {
	ladder := ThreeLevelLadder()
	assert.Equal(t, ladder.NextLevel(ladder.Lowest()), ladder.NextLevel(""))
	assert.Equal(t, models.ReadingLevel("Guided-reading"), ladder.NextLevel(""))
}

func TestNextLevel_UnknownUnchanged(t *testing.T) {
	ladder := ThreeLevelLadder()
	assert.Equal(t, models.ReadingLevel("Super Advanced"), ladder.NextLevel("Super Advanced"))
}

func TestPromote(t *testing.T) {
	ladder := ThreeLevelLadder()

	tests := []struct {
		name      string
		current   models.ReadingLevel
		booksRead int
		want      models.ReadingLevel
	}{
		{name: "first book keeps level", current: "", booksRead: 1, want: "Read-along"},
		{name: "below gate", current: "Read-along", booksRead: 9, want: "Read-along"},
		{name: "on gate", current: "Read-along", booksRead: 10, want: "Guided-reading"},
		{name: "one rung at a time", current: "Read-along", booksRead: 40, want: "Guided-reading"},
		{name: "second gate", current: "Guided-reading", booksRead: 25, want: "Independent-reading"},
		{name: "top rung", current: "Independent-reading", booksRead: 100, want: "Independent-reading"},
		{name: "unknown level", current: "Wizard", booksRead: 100, want: "Wizard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ladder.Promote(tt.current, tt.booksRead))
		})
	}
}

func TestPromote_NeverRegresses(t *testing.T) {
	for _, ladder := range []Ladder{ThreeLevelLadder(), FiveLevelLadder()} {
		t.Run(ladder.Name, func(t *testing.T) {
			level := ladder.Lowest()
			prev := 0
			for books := 0; books <= 50; books++ {
				level = ladder.Promote(level, books)
				idx := ladder.index(level)
				require.GreaterOrEqual(t, idx, prev)
				prev = idx
			}
			assert.Equal(t, ladder.Rungs[len(ladder.Rungs)-1].Level, level)
		})
	}
}

func TestLabels(t *testing.T) {
	ladder := ThreeLevelLadder()

	assert.Equal(t, "Beginner", ladder.Label(""))
	assert.Equal(t, "Intermediate", ladder.Label("Guided-reading"))
	assert.Equal(t, "Intermediate", ladder.NextLabel("Read-along"))
	assert.Equal(t, "Advanced", ladder.NextLabel("Independent-reading"))
	assert.Equal(t, "Mystery", ladder.Label("Mystery"))
}

func TestBooksToNextLevel(t *testing.T) {
	ladder := FiveLevelLadder()

	assert.Equal(t, 5, ladder.BooksToNextLevel("Beginner", 0))
	assert.Equal(t, 0, ladder.BooksToNextLevel("Beginner", 7))
	assert.Equal(t, 8, ladder.BooksToNextLevel("Advanced", 12))
	assert.Equal(t, 0, ladder.BooksToNextLevel("Extraordinary", 12))
}

func TestLadderByName(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "", want: "three"},
		{input: "three", want: "three"},
		{input: "FIVE", want: "five"},
		{input: "seven", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ladder, err := LadderByName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ladder.Name)
		})
	}
}
