package trivia

import (
	"math/rand/v2"
	"strings"
	"testing"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func sampleTrack() Track {
	return Track{
		PreviewURL: "https://example.com/p.m4a",
		Title:      "Midnight City",
		Artist:     "M83",
		Album:      "Hurry Up, We're Dreaming",
		Genre:      "Electronic",
		Year:       2011,
	}
}

func sampleAlternates() []Track {
	return []Track{
		{Title: "Clarity", Artist: "Zedd", Album: "Clarity", Genre: "Dance", Year: 2012},
		{Title: "Breathe", Artist: "Telepopmusik", Album: "Genetic World", Genre: "Downtempo", Year: 2001},
		{Title: "Shelter", Artist: "Porter Robinson", Album: "Shelter", Genre: "Electropop", Year: 2016},
	}
}

func assertWellFormed(t *testing.T, q Question) {
	t.Helper()

	if len(q.Options) != 4 {
		t.Fatalf("expected 4 options, got %d: %v", len(q.Options), q.Options)
	}
	seen := map[string]bool{}
	found := false
	for _, o := range q.Options {
		if seen[o] {
			t.Errorf("duplicate option %q in %v", o, q.Options)
		}
		seen[o] = true
		if o == q.CorrectAnswer {
			found = true
		}
	}
	if !found {
		t.Errorf("correct answer %q not in options %v", q.CorrectAnswer, q.Options)
	}
}

func TestNewQuestionWellFormed(t *testing.T) {
	rng := testRand()
	for i := 0; i < 50; i++ {
		for _, d := range []Difficulty{Easy, Medium, Hard} {
			q := NewQuestion(rng, sampleTrack(), sampleAlternates(), d)
			assertWellFormed(t, q)
			if q.Points != d.BasePoints() {
				t.Errorf("difficulty %s: points = %d, want %d", d, q.Points, d.BasePoints())
			}
		}
	}
}

func TestNewQuestionDifficultyTypes(t *testing.T) {
	rng := testRand()
	allowed := map[Difficulty]map[QuestionType]bool{
		Easy:   {QuestionArtist: true, QuestionGenre: true},
		Medium: {QuestionAlbum: true, QuestionTitle: true},
		Hard:   {QuestionYear: true},
	}
	for d, types := range allowed {
		for i := 0; i < 20; i++ {
			q := NewQuestion(rng, sampleTrack(), sampleAlternates(), d)
			if !types[q.Type] {
				t.Errorf("difficulty %s produced type %s", d, q.Type)
			}
		}
	}
}

func TestNewQuestionPadsWithFillers(t *testing.T) {
	rng := testRand()

	// No alternates at all: three fillers must complete the option set.
	q := NewQuestion(rng, sampleTrack(), nil, Easy)
	assertWellFormed(t, q)

	// Alternates that duplicate the correct answer contribute nothing.
	track := sampleTrack()
	dupes := []Track{{Artist: track.Artist, Genre: track.Genre}}
	q = NewQuestion(rng, track, dupes, Easy)
	assertWellFormed(t, q)
}

func TestNewQuestionFallsBackToTitle(t *testing.T) {
	rng := testRand()

	// Hard wants year, but the track has none.
	track := Track{Title: "Nameless", Artist: Unknown, Album: Unknown, Genre: Unknown}
	q := NewQuestion(rng, track, sampleAlternates(), Hard)
	if q.Type != QuestionTitle {
		t.Fatalf("expected title fallback, got %s", q.Type)
	}
	if q.CorrectAnswer != "Nameless" {
		t.Fatalf("correct answer = %q, want %q", q.CorrectAnswer, "Nameless")
	}
	assertWellFormed(t, q)
}

func TestNewQuestionAllFieldsMissing(t *testing.T) {
	rng := testRand()

	q := NewQuestion(rng, Track{}, nil, Easy)
	if q.CorrectAnswer != Unknown {
		t.Fatalf("correct answer = %q, want %q", q.CorrectAnswer, Unknown)
	}
	assertWellFormed(t, q)

	// The "Unknown" filler must not appear alongside the sentinel as a
	// second, differently-cased choice.
	var unknowns int
	for _, o := range q.Options {
		if strings.EqualFold(o, Unknown) {
			unknowns++
		}
	}
	if unknowns != 1 {
		t.Errorf("options = %v, want exactly one casing of %q", q.Options, Unknown)
	}
}

func TestBasePoints(t *testing.T) {
	if got := Easy.BasePoints(); got != 1 {
		t.Errorf("easy = %d, want 1", got)
	}
	if got := Medium.BasePoints(); got != 2 {
		t.Errorf("medium = %d, want 2", got)
	}
	if got := Hard.BasePoints(); got != 3 {
		t.Errorf("hard = %d, want 3", got)
	}
}
