package trivia

import (
	"strconv"
	"strings"
)

// Hint derives one clue from the question's type without changing the
// deadline: the first letter of the relevant field, or the first digit for
// release years.
func Hint(track Track, qt QuestionType) string {
	switch qt {
	case QuestionArtist:
		return "Artist starts with **" + firstLetter(track.Artist) + "**"
	case QuestionAlbum:
		return "Album starts with **" + firstLetter(track.Album) + "**"
	case QuestionGenre:
		return "Genre starts with **" + firstLetter(track.Genre) + "**"
	case QuestionTitle:
		return "Title starts with **" + firstLetter(track.Title) + "**"
	case QuestionYear:
		if track.Year > 0 {
			y := strconv.Itoa(track.Year)
			return "Year of release starts with **" + y[:1] + "**"
		}
		return "Year of release is **unknown**"
	}
	return "Artist starts with **" + firstLetter(track.Artist) +
		"**, title starts with **" + firstLetter(track.Title) + "**"
}

func firstLetter(v string) string {
	if v == "" || v == Unknown {
		return "?"
	}
	r := []rune(v)
	return strings.ToUpper(string(r[0]))
}
