package game

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/tunequiz/tunequiz/internal/discord"
	"github.com/tunequiz/tunequiz/internal/trivia"
)

// Control ids on the round message.
const (
	answerIDPrefix = "trivia_answer_"
	replayID       = "trivia_replay"
	hintID         = "trivia_hint"
)

type resolution int

const (
	resolvedWon resolution = iota
	resolvedTimedOut
	resolvedCancelled
)

// roundCollector runs one round's event intake: it accepts answers until a
// winner is found, the deadline elapses, or termination is signaled.
// It is the round's finite-state machine (awaiting answer → resolved), and
// declareWinner is the single arbitration point for first-correct-wins.
type roundCollector struct {
	log      *slog.Logger
	chat     discord.ChatTransport
	session  *Session
	question trivia.Question
	track    trivia.Track
	round    int

	textChannelID string
	// tickMessageID is the transient "listening" message reused as the
	// countdown display. Edit failures are swallowed.
	tickMessageID string

	replay  func(ctx context.Context) error
	publish func(event Event)

	mu         sync.Mutex
	answered   map[string]bool
	resolved   bool
	winnerID   string
	hintUsed   bool
	replayUsed bool
}

// run consumes interactions until the round resolves. cd is nil when a
// freeze powerup removed the deadline; the nil channels below then never
// fire and only a winner or termination ends the round.
func (rc *roundCollector) run(ctx context.Context, ic discord.InteractionCollector, cd *countdown) (trivia.RoundOutcome, []string, resolution) {
	rc.answered = make(map[string]bool)

	var expired <-chan struct{}
	var ticks <-chan int
	if cd != nil {
		expired = cd.Expired()
		ticks = cd.Ticks()
	}

	for {
		select {
		case <-ctx.Done():
			return rc.finish(ic, cd, "terminated", resolvedCancelled)
		case <-rc.session.Done():
			return rc.finish(ic, cd, "terminated", resolvedCancelled)
		case <-expired:
			return rc.finish(ic, cd, "timeout", resolvedTimedOut)
		case remaining := <-ticks:
			rc.showCountdown(ctx, remaining)
		case in, ok := <-ic.Events():
			if !ok {
				// The transport stopped the collector out from under us;
				// treat it like a cancellation.
				return rc.finish(ic, cd, "terminated", resolvedCancelled)
			}
			if won := rc.handle(ctx, in, cd); won {
				return rc.finish(ic, cd, "resolved", resolvedWon)
			}
		}
	}
}

func (rc *roundCollector) finish(ic discord.InteractionCollector, cd *countdown, reason string, res resolution) (trivia.RoundOutcome, []string, resolution) {
	if cd != nil {
		cd.Stop()
	}
	ic.Stop(reason)

	rc.mu.Lock()
	defer rc.mu.Unlock()
	outcome := trivia.RoundOutcome{
		WinnerID:   rc.winnerID,
		HintUsed:   rc.hintUsed,
		ReplayUsed: rc.replayUsed,
	}
	users := make([]string, 0, len(rc.answered))
	for u := range rc.answered {
		users = append(users, u)
	}
	return outcome, users, res
}

// handle processes one button press. It reports true when the press
// resolved the round with a winner.
func (rc *roundCollector) handle(ctx context.Context, in discord.Interaction, cd *countdown) bool {
	switch {
	case strings.HasPrefix(in.CustomID, answerIDPrefix):
		return rc.handleAnswer(ctx, in)
	case in.CustomID == replayID:
		rc.handleReplay(ctx, in, cd)
	case in.CustomID == hintID:
		rc.handleHint(ctx, in)
	default:
		rc.log.Debug("ignoring unknown interaction", "custom_id", in.CustomID)
	}
	return false
}

func (rc *roundCollector) handleAnswer(ctx context.Context, in discord.Interaction) bool {
	idx, err := strconv.Atoi(strings.TrimPrefix(in.CustomID, answerIDPrefix))
	if err != nil || idx < 0 || idx >= len(rc.question.Options) {
		rc.log.Debug("malformed answer id", "custom_id", in.CustomID)
		return false
	}

	rc.mu.Lock()
	if rc.resolved {
		rc.mu.Unlock()
		return false
	}
	if rc.answered[in.UserID] {
		rc.mu.Unlock()
		rc.whisper(ctx, in.UserID, "You already answered this round.")
		return false
	}
	rc.answered[in.UserID] = true

	correct := rc.question.Options[idx] == rc.question.CorrectAnswer
	if correct {
		// Single critical section for first-correct-wins: marking the
		// round resolved here excludes every later submission.
		rc.resolved = true
		rc.winnerID = in.UserID
	}
	rc.mu.Unlock()

	rc.publish(Event{Type: EventAnswer, Round: rc.round, UserID: in.UserID})

	if !correct {
		rc.whisper(ctx, in.UserID, "❌ Not this one — someone else can still win the round!")
		return false
	}
	return true
}

func (rc *roundCollector) handleReplay(ctx context.Context, in discord.Interaction, cd *countdown) {
	if rc.session.Terminated() || rc.session.tempFile() == "" {
		rc.whisper(ctx, in.UserID, "Replay is not available right now.")
		return
	}

	rc.mu.Lock()
	if rc.replayUsed {
		rc.mu.Unlock()
		rc.whisper(ctx, in.UserID, "The replay was already used this round.")
		return
	}
	rc.replayUsed = true
	rc.mu.Unlock()

	if err := rc.replay(ctx); err != nil {
		rc.log.Warn("replay failed", "guild_id", rc.session.GuildID, "error", err)
		rc.whisper(ctx, in.UserID, "Could not replay the preview.")
		return
	}

	// A replay restores the full answer window.
	if cd != nil {
		cd.Reset()
	}
	rc.say(ctx, "🔁 Replaying the preview — timer reset!")
}

func (rc *roundCollector) handleHint(ctx context.Context, in discord.Interaction) {
	if rc.question.Difficulty == trivia.Hard {
		rc.whisper(ctx, in.UserID, "No hints on hard difficulty.")
		return
	}

	rc.mu.Lock()
	if rc.hintUsed {
		rc.mu.Unlock()
		rc.whisper(ctx, in.UserID, "The hint was already used this round.")
		return
	}
	rc.hintUsed = true
	rc.mu.Unlock()

	rc.say(ctx, "💡 "+trivia.Hint(rc.track, rc.question.Type))
}

func (rc *roundCollector) showCountdown(ctx context.Context, remaining int) {
	if rc.tickMessageID == "" {
		return
	}
	err := rc.chat.Edit(ctx, rc.textChannelID, rc.tickMessageID, "⏳ "+strconv.Itoa(remaining))
	if err != nil {
		rc.log.Debug("countdown edit failed", "error", err)
	}
}

func (rc *roundCollector) whisper(ctx context.Context, userID, content string) {
	if err := rc.chat.Whisper(ctx, rc.textChannelID, userID, content); err != nil {
		rc.log.Debug("whisper failed", "user_id", userID, "error", err)
	}
}

func (rc *roundCollector) say(ctx context.Context, content string) {
	if _, err := rc.chat.Send(ctx, rc.textChannelID, content); err != nil {
		rc.log.Debug("send failed", "error", err)
	}
}
