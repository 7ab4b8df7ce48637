// Package trivia defines the core domain types for the music trivia game.
// It has zero external dependencies — everything here is pure Go.
package trivia

// Unknown is the sentinel for track metadata the provider did not supply.
const Unknown = "unknown"

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// BasePoints is the award for a correct answer before modifiers.
func (d Difficulty) BasePoints() int {
	switch d {
	case Medium:
		return 2
	case Hard:
		return 3
	default:
		return 1
	}
}

func (d Difficulty) Valid() bool {
	return d == Easy || d == Medium || d == Hard
}

// Track is an immutable value fetched once per round. Missing fields hold
// the Unknown sentinel (or 0 for Year) rather than failing the round.
type Track struct {
	PreviewURL string
	Title      string
	Artist     string
	Album      string
	Genre      string
	Year       int
}

type QuestionType string

const (
	QuestionArtist QuestionType = "artist"
	QuestionAlbum  QuestionType = "album"
	QuestionGenre  QuestionType = "genre"
	QuestionYear   QuestionType = "year"
	QuestionTitle  QuestionType = "title"
)

// Question is derived per round from a Track and a difficulty.
// CorrectAnswer is always one of Options; Options always has exactly
// four distinct entries.
type Question struct {
	Prompt        string
	Type          QuestionType
	Options       []string
	CorrectAnswer string
	Points        int
	Difficulty    Difficulty
}

// RoundOutcome is ephemeral per round and never persisted past cleanup.
type RoundOutcome struct {
	WinnerID      string
	PointsAwarded int
	HintUsed      bool
	ReplayUsed    bool
}
