package itunes

// genreTerms maps a guild's preferred genre to the search terms used when
// picking a round's track. "random" (or anything unrecognized) falls back
// to the generic pool.
var genreTerms = map[string][]string{
	"pop":       {"pop", "dance pop", "synth pop", "electropop"},
	"hiphop":    {"hip hop", "rap", "trap", "boom bap"},
	"rock":      {"rock", "indie rock", "classic rock", "alt rock"},
	"country":   {"country", "country rock", "americana", "bluegrass"},
	"classical": {"classical", "piano", "orchestra", "baroque"},
}

var genericTerms = []string{
	"jazz", "lofi", "edm", "hip hop", "indie", "rock", "pop",
	"soundtrack", "synthwave", "night drive", "chill",
}

func termsFor(genre string) []string {
	if terms, ok := genreTerms[genre]; ok {
		return terms
	}
	return genericTerms
}
