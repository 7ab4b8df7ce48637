// Package itunes fetches round material from the iTunes Search API: a
// term-based track search plus a bounded download of the ~30s preview clip.
//
// The API is rate-limited and unauthenticated, so every operation retries a
// fixed number of attempts with a short backoff. Exhausting the attempts is
// fatal for the round, not for the match.
package itunes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/tunequiz/tunequiz/internal/trivia"
)

const defaultSearchURL = "https://itunes.apple.com/search"

var (
	ErrNoPreviews      = errors.New("no results with a usable preview url")
	ErrRetriesExceeded = errors.New("retries exceeded")
)

type Client struct {
	log       *slog.Logger
	httpc     *http.Client
	searchURL string

	attempts        int
	searchBackoff   time.Duration
	downloadBackoff time.Duration
	searchTimeout   time.Duration
	downloadTimeout time.Duration
	maxBytes        int64
	minPreviewSize  int
	tmpDir          string
}

func New(log *slog.Logger) *Client {
	return &Client{
		log:       log,
		httpc:     &http.Client{CheckRedirect: limitRedirects},
		searchURL: defaultSearchURL,

		attempts:        6,
		searchBackoff:   400 * time.Millisecond,
		downloadBackoff: 600 * time.Millisecond,
		searchTimeout:   25 * time.Second,
		downloadTimeout: 35 * time.Second,
		maxBytes:        12_000_000,
		minPreviewSize:  25_000,
	}
}

type searchResult struct {
	PreviewURL       string `json:"previewUrl"`
	TrackName        string `json:"trackName"`
	ArtistName       string `json:"artistName"`
	CollectionName   string `json:"collectionName"`
	PrimaryGenreName string `json:"primaryGenreName"`
	ReleaseDate      string `json:"releaseDate"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// FetchTrack picks a search term for the genre, queries the API and returns
// one random track with a usable preview locator.
func (c *Client) FetchTrack(ctx context.Context, genre string) (trivia.Track, error) {
	track, _, err := c.FetchRound(ctx, genre)
	return track, err
}

// FetchRound is FetchTrack plus the rest of the search page, which the
// question builder uses as distractor material. Sourcing distractors from
// the same response keeps the round at one API call instead of one per
// wrong answer.
func (c *Client) FetchRound(ctx context.Context, genre string) (trivia.Track, []trivia.Track, error) {
	terms := termsFor(genre)

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		term := terms[rand.IntN(len(terms))]
		c.log.Debug("itunes search", "attempt", attempt, "term", term)

		candidates, err := c.search(ctx, term)
		if err != nil {
			lastErr = err
			c.log.Warn("itunes search failed", "attempt", attempt, "term", term, "error", err)
			if err := sleep(ctx, c.searchBackoff); err != nil {
				return trivia.Track{}, nil, err
			}
			continue
		}

		i := rand.IntN(len(candidates))
		track := toTrack(candidates[i])
		alternates := make([]trivia.Track, 0, len(candidates)-1)
		for j, r := range candidates {
			if j != i {
				alternates = append(alternates, toTrack(r))
			}
		}
		return track, alternates, nil
	}
	return trivia.Track{}, nil, fmt.Errorf("%w: %w", ErrRetriesExceeded, lastErr)
}

func (c *Client) search(ctx context.Context, term string) ([]searchResult, error) {
	q := url.Values{}
	q.Set("term", term)
	q.Set("media", "music")
	q.Set("entity", "song")
	q.Set("limit", "50")
	q.Set("country", "US")

	ctx, cancel := context.WithTimeout(ctx, c.searchTimeout)
	defer cancel()

	body, err := c.fetch(ctx, c.searchURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	candidates := resp.Results[:0:0]
	for _, r := range resp.Results {
		if len(r.PreviewURL) > 4 && r.PreviewURL[:4] == "http" {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoPreviews
	}
	return candidates, nil
}

func toTrack(r searchResult) trivia.Track {
	return trivia.Track{
		PreviewURL: r.PreviewURL,
		Title:      orUnknown(r.TrackName),
		Artist:     orUnknown(r.ArtistName),
		Album:      orUnknown(r.CollectionName),
		Genre:      orUnknown(r.PrimaryGenreName),
		Year:       releaseYear(r.ReleaseDate),
	}
}

func orUnknown(v string) string {
	if v == "" {
		return trivia.Unknown
	}
	return v
}

func releaseYear(date string) int {
	t, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return 0
	}
	return t.Year()
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
