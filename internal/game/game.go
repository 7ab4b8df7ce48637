// Package game is the session orchestration engine: a per-guild state
// machine that drives ten timed rounds of music trivia, arbitrates
// first-correct-wins answers, and guarantees that an administrative
// terminate stops all in-flight work without leaking the preview file or
// the voice connection.
package game

import (
	"context"
	"errors"

	"github.com/tunequiz/tunequiz/internal/trivia"
)

var (
	// ErrMatchActive rejects a start request while a session exists.
	ErrMatchActive = errors.New("a match is already active for this guild")
	// ErrNoSession is returned by Terminate when there is nothing to stop.
	ErrNoSession = errors.New("no active session")
	// ErrTerminated tags the administrative cancellation path. It is a
	// control signal, not a failure.
	ErrTerminated = errors.New("session terminated")
	// ErrInitiatorAbsent aborts a match whose initiator left the voice
	// channel and did not return within the grace bound.
	ErrInitiatorAbsent = errors.New("initiator not present in voice channel")
	// ErrNoTransports is returned by Start before the bot shell has
	// attached the gateway transports.
	ErrNoTransports = errors.New("chat/voice transports not attached")
)

// TrackSource supplies one round's track plus distractor material, and
// downloads the preview clip to a local temp file owned by the caller.
type TrackSource interface {
	FetchRound(ctx context.Context, genre string) (track trivia.Track, alternates []trivia.Track, err error)
	DownloadPreview(ctx context.Context, locator string) (string, error)
}

// Event is published to spectators as rounds progress.
type Event struct {
	Type          string `json:"type"`
	Round         int    `json:"round,omitempty"`
	UserID        string `json:"userId,omitempty"`
	Points        int    `json:"points,omitempty"`
	CorrectAnswer string `json:"correctAnswer,omitempty"`
}

const (
	EventRoundStarted  = "round_started"
	EventAnswer        = "answer_received"
	EventRoundWon      = "round_won"
	EventRoundTimeout  = "round_timeout"
	EventMatchFinished = "match_finished"
	EventTerminated    = "terminated"
)

// EventSink receives guild-keyed game events. Implementations must not
// block; the engine publishes from the match goroutine.
type EventSink interface {
	Publish(guildID string, event Event)
}
