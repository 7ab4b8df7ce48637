package trivia

import (
	"math/rand/v2"
	"strconv"
	"strings"
)

const optionCount = 4

// fillers pad the option list when distractor sourcing runs dry.
var fillers = []string{"Unknown", "N/A", "Other"}

var prompts = map[QuestionType]string{
	QuestionArtist: "Who is the artist of this song?",
	QuestionAlbum:  "Which album is this song from?",
	QuestionGenre:  "What genre does this song belong to?",
	QuestionYear:   "In what year was this song released?",
	QuestionTitle:  "What is the name of this song?",
}

// typesFor restricts the question pool by difficulty: easy gets the simpler
// metadata, medium targets album/title, hard goes for year.
func typesFor(d Difficulty) []QuestionType {
	switch d {
	case Medium:
		return []QuestionType{QuestionAlbum, QuestionTitle}
	case Hard:
		return []QuestionType{QuestionYear}
	default:
		return []QuestionType{QuestionArtist, QuestionGenre}
	}
}

// Field returns the track's value for a question type, or "" when the
// provider left it unpopulated.
func (t Track) Field(qt QuestionType) string {
	switch qt {
	case QuestionArtist:
		return known(t.Artist)
	case QuestionAlbum:
		return known(t.Album)
	case QuestionGenre:
		return known(t.Genre)
	case QuestionTitle:
		return known(t.Title)
	case QuestionYear:
		if t.Year > 0 {
			return strconv.Itoa(t.Year)
		}
	}
	return ""
}

func known(v string) string {
	if v == Unknown {
		return ""
	}
	return v
}

// NewQuestion builds a four-option multiple-choice question for track.
// The type is drawn at random from the difficulty's pool, skipping types the
// track has no value for and falling back to the title. Wrong answers come
// from the same field on alternates, padded with fillers when fewer than
// three usable distractors exist.
func NewQuestion(rng *rand.Rand, track Track, alternates []Track, d Difficulty) Question {
	available := typesFor(d)

	var qt QuestionType
	var correct string
	for len(available) > 0 {
		i := rng.IntN(len(available))
		qt = available[i]
		if correct = track.Field(qt); correct != "" {
			break
		}
		available = append(available[:i], available[i+1:]...)
	}

	if correct == "" {
		qt = QuestionTitle
		if correct = track.Field(qt); correct == "" {
			correct = Unknown
		}
	}

	options := append([]string{correct}, distractors(rng, qt, correct, alternates)...)
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return Question{
		Prompt:        prompts[qt],
		Type:          qt,
		Options:       options,
		CorrectAnswer: correct,
		Points:        d.BasePoints(),
		Difficulty:    d,
	}
}

func distractors(rng *rand.Rand, qt QuestionType, correct string, alternates []Track) []string {
	// Dedup is case-insensitive so a filler like "Unknown" can never show up
	// next to the "unknown" sentinel as a second distinct choice.
	seen := map[string]bool{strings.ToLower(correct): true}
	var wrongs []string

	order := rng.Perm(len(alternates))
	for _, i := range order {
		if len(wrongs) == optionCount-1 {
			return wrongs
		}
		v := alternates[i].Field(qt)
		if v == "" || seen[strings.ToLower(v)] {
			continue
		}
		seen[strings.ToLower(v)] = true
		wrongs = append(wrongs, v)
	}

	for i := 0; len(wrongs) < optionCount-1; i++ {
		f := "Choice " + strconv.Itoa(i+1)
		if i < len(fillers) {
			f = fillers[i]
		}
		if seen[strings.ToLower(f)] {
			continue
		}
		seen[strings.ToLower(f)] = true
		wrongs = append(wrongs, f)
	}
	return wrongs
}
