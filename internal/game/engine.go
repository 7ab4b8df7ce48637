package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/tunequiz/tunequiz/internal/config"
	"github.com/tunequiz/tunequiz/internal/discord"
	"github.com/tunequiz/tunequiz/internal/powerup"
	"github.com/tunequiz/tunequiz/internal/score"
	"github.com/tunequiz/tunequiz/internal/trivia"
)

// Engine drives full matches: one blocking Start call per guild runs the
// ten-round loop, while Terminate may arrive concurrently from the admin
// surface and must stop everything within one polling interval.
type Engine struct {
	log      *slog.Logger
	cfg      config.Game
	registry *Registry
	powerups *powerup.Ledger
	scores   *score.Ledger
	tracks   TrackSource
	sink     EventSink

	// tick is the countdown granularity; one second in production.
	tick time.Duration

	mu      sync.Mutex
	chat    discord.ChatTransport
	voice   discord.VoiceTransport
	locator discord.ChannelLocator
}

func NewEngine(log *slog.Logger, cfg config.Game, registry *Registry, powerups *powerup.Ledger, scores *score.Ledger, tracks TrackSource, sink EventSink) *Engine {
	return &Engine{
		log:      log,
		cfg:      cfg,
		registry: registry,
		powerups: powerups,
		scores:   scores,
		tracks:   tracks,
		sink:     sink,
		tick:     time.Second,
	}
}

// AttachTransports hands the engine its gateway transports. The bot shell
// calls this once the gateway is ready; Start rejects matches before then.
func (e *Engine) AttachTransports(chat discord.ChatTransport, voice discord.VoiceTransport, locator discord.ChannelLocator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chat = chat
	e.voice = voice
	e.locator = locator
}

func (e *Engine) transports() (discord.ChatTransport, discord.VoiceTransport, discord.ChannelLocator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chat, e.voice, e.locator
}

func (e *Engine) publish(guildID string, ev Event) {
	if e.sink != nil {
		e.sink.Publish(guildID, ev)
	}
}

// Registry exposes the session registry for status queries and genre
// preferences.
func (e *Engine) Registry() *Registry { return e.registry }

// Start runs a full match for the guild and blocks until it ends. It is
// rejected with ErrMatchActive while a session exists. Administrative
// termination ends the match early and is not reported as an error.
func (e *Engine) Start(ctx context.Context, guildID, initiatorID string, d trivia.Difficulty) error {
	if !d.Valid() {
		return fmt.Errorf("invalid difficulty %q", d)
	}
	chat, voice, locator := e.transports()
	if chat == nil || voice == nil || locator == nil {
		return ErrNoTransports
	}

	s, err := e.registry.Create(guildID, initiatorID, d)
	if err != nil {
		return err
	}

	m := &match{
		Engine:       e,
		s:            s,
		chat:         chat,
		voice:        voice,
		locator:      locator,
		participants: make(map[string]bool),
	}

	e.log.Info("match starting", "guild_id", guildID, "initiator_id", initiatorID, "difficulty", d)
	err = m.run(ctx)
	switch {
	case errors.Is(err, ErrTerminated):
		e.log.Info("match terminated", "guild_id", guildID)
		return nil
	case errors.Is(err, ErrInitiatorAbsent):
		// waitPresence already posted the cancellation notice.
		e.log.Info("match cancelled", "guild_id", guildID, "reason", "initiator absent")
		return err
	case err != nil:
		e.log.Error("match failed", "guild_id", guildID, "error", err)
		m.say(context.WithoutCancel(ctx), "❌ The match hit a problem and had to stop.")
		return err
	}
	e.log.Info("match finished", "guild_id", guildID)
	return nil
}

// Terminate is the administrative cancel: it flips the session to
// terminated, stops the in-flight round's countdown and collector, halts
// playback, tears down the voice connection, deletes the tracked preview
// file and clears the record. Safe to call with no session and safe to call
// twice.
func (e *Engine) Terminate(guildID string) error {
	s := e.registry.Terminate(guildID)
	if s == nil {
		return ErrNoSession
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	chat, _, _ := e.transports()
	e.release(ctx, s, chat, "terminated")
	e.registry.Clear(guildID, s)

	if _, textID := s.channels(); chat != nil && textID != "" {
		if _, err := chat.Send(ctx, textID, "❌ **Game terminated by administrator.**"); err != nil {
			e.log.Warn("termination notice failed", "guild_id", guildID, "error", err)
		}
	}
	e.publish(guildID, Event{Type: EventTerminated})
	e.log.Info("session terminated", "guild_id", guildID)
	return nil
}

// release tears down everything a session owns. The session's take*
// accessors clear each handle as it is claimed, so the normal and
// termination paths can never free the same resource twice.
func (e *Engine) release(ctx context.Context, s *Session, chat discord.ChatTransport, reason string) {
	if cd := s.takeCountdown(); cd != nil {
		cd.Stop()
	}
	if ic := s.takeCollector(); ic != nil {
		ic.Stop(reason)
	}
	if conn := s.takeVoice(); conn != nil {
		conn.StopPlayback()
		if err := conn.Destroy(); err != nil {
			e.log.Warn("voice teardown failed", "guild_id", s.GuildID, "error", err)
		}
	}
	if p := s.takeTempFile(); p != "" {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			e.log.Warn("preview cleanup failed", "path", p, "error", err)
		}
	}
	if msgID := s.takeRoundMessage(); msgID != "" && chat != nil {
		if _, textID := s.channels(); textID != "" {
			if err := chat.DisableComponents(ctx, textID, msgID); err != nil {
				e.log.Debug("disabling components failed", "error", err)
			}
		}
	}
}

// match carries one running game's wiring.
type match struct {
	*Engine
	s            *Session
	chat         discord.ChatTransport
	voice        discord.VoiceTransport
	locator      discord.ChannelLocator
	textID       string
	voiceID      string
	participants map[string]bool
}

func (m *match) run(ctx context.Context) error {
	defer m.cleanup(ctx)

	guild := m.s.GuildID
	voiceID, textID, err := m.locator.GameChannels(ctx, guild)
	if err != nil {
		return fmt.Errorf("locating game channels: %w", err)
	}
	m.voiceID, m.textID = voiceID, textID
	m.s.setChannels(voiceID, textID)

	if err := m.waitPresence(ctx, m.cfg.PresenceBound); err != nil {
		if errors.Is(err, ErrInitiatorAbsent) {
			m.say(ctx, "❌ Match cancelled — the game host never joined the voice channel.")
		}
		return err
	}

	m.scores.ResetSession(guild)
	m.say(ctx, rulesMessage)

	conn, err := m.voice.Join(ctx, guild, voiceID)
	if err != nil {
		if m.s.Terminated() {
			return ErrTerminated
		}
		return fmt.Errorf("joining voice channel: %w", err)
	}
	m.s.setVoice(conn)

	for round := 1; round <= m.cfg.Rounds; round++ {
		if m.s.Terminated() {
			return ErrTerminated
		}
		if round > 1 {
			if err := m.recheckPresence(ctx); err != nil {
				if errors.Is(err, ErrInitiatorAbsent) {
					m.say(ctx, "❌ Match cancelled — the game host left the voice channel.")
				}
				return err
			}
		}
		if err := m.playRound(ctx, round); err != nil {
			return err
		}
		if round < m.cfg.Rounds {
			if err := m.pause(ctx, m.cfg.InterRoundPause); err != nil {
				return err
			}
		}
	}

	m.finishScoreboard(ctx)
	return nil
}

// cleanup always runs, however the match ended. Resource release is shared
// with the termination protocol; Clear checks session identity, so a late
// cleanup cannot evict a successor match's record.
func (m *match) cleanup(ctx context.Context) {
	m.release(context.WithoutCancel(ctx), m.s, m.chat, "match_end")
	m.s.finish()
	m.registry.Clear(m.s.GuildID, m.s)
}

func (m *match) playRound(ctx context.Context, round int) error {
	guild := m.s.GuildID
	m.s.setRound(round)
	m.publish(guild, Event{Type: EventRoundStarted, Round: round})

	listenID, err := m.chat.Send(ctx, m.textID, fmt.Sprintf("🎶 **Round %d/%d** — listen closely...", round, m.cfg.Rounds))
	if err != nil {
		m.log.Warn("round announcement failed", "guild_id", guild, "error", err)
	}

	track, alternates, err := m.tracks.FetchRound(ctx, m.registry.Genre(guild))
	if err != nil {
		return fmt.Errorf("fetching track: %w", err)
	}
	path, err := m.tracks.DownloadPreview(ctx, track.PreviewURL)
	if err != nil {
		return fmt.Errorf("downloading preview: %w", err)
	}
	m.s.setTrack(&track, path)

	defer func() {
		if p := m.s.takeTempFile(); p != "" {
			if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				m.log.Warn("preview cleanup failed", "path", p, "error", err)
			}
		}
		if listenID != "" && !m.s.Terminated() {
			if err := m.chat.Delete(context.WithoutCancel(ctx), m.textID, listenID); err != nil {
				m.log.Debug("deleting listening message failed", "error", err)
			}
		}
	}()

	if err := m.playPreview(ctx); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	q := trivia.NewQuestion(rng, track, alternates, m.s.Difficulty)

	frozen := m.powerups.Consume(guild, m.s.InitiatorID, powerup.Freeze)

	msgID, err := m.chat.SendEmbed(ctx, m.textID, questionEmbed(q, round, m.cfg.Rounds, frozen), questionButtons(q))
	if err != nil {
		return fmt.Errorf("posting question: %w", err)
	}
	m.s.setRoundMessage(msgID)

	ic := m.chat.CollectInteractions(msgID)
	m.s.setCollector(ic)

	var cd *countdown
	if !frozen {
		cd = newCountdown(m.cfg.AnswerWindow, m.tick)
		m.s.setCountdown(cd)
	}

	rc := &roundCollector{
		log:           m.log,
		chat:          m.chat,
		session:       m.s,
		question:      q,
		track:         track,
		round:         round,
		textChannelID: m.textID,
		tickMessageID: listenID,
		replay:        m.replayPreview,
		publish:       func(ev Event) { m.publish(guild, ev) },
	}
	outcome, answered, res := rc.run(ctx, ic, cd)

	// Handles are stopped by the collector; drop them from the session so
	// neither cleanup path touches them again.
	m.s.takeCollector()
	m.s.takeCountdown()

	for _, u := range answered {
		m.participants[u] = true
		if err := m.scores.AddRoundPlayed(ctx, guild, u); err != nil {
			m.log.Warn("recording round played failed", "user_id", u, "error", err)
		}
	}

	switch res {
	case resolvedCancelled:
		return ErrTerminated

	case resolvedWon:
		points := q.Points
		if m.powerups.Consume(guild, outcome.WinnerID, powerup.DoublePoints) {
			points *= 2
		}
		if err := m.scores.AddPoints(ctx, guild, outcome.WinnerID, points); err != nil {
			m.log.Error("recording points failed", "user_id", outcome.WinnerID, "error", err)
		}
		if err := m.scores.AddRoundWon(ctx, guild, outcome.WinnerID); err != nil {
			m.log.Warn("recording round won failed", "user_id", outcome.WinnerID, "error", err)
		}
		m.say(ctx, fmt.Sprintf("✅ <@%s> got it! The answer was **%s** (+%d point%s).",
			outcome.WinnerID, q.CorrectAnswer, points, plural(points)))
		m.publish(guild, Event{Type: EventRoundWon, Round: round, UserID: outcome.WinnerID, Points: points, CorrectAnswer: q.CorrectAnswer})

	case resolvedTimedOut:
		m.say(ctx, fmt.Sprintf("⏰ Time's up! The answer was **%s**.", q.CorrectAnswer))
		m.publish(guild, Event{Type: EventRoundTimeout, Round: round, CorrectAnswer: q.CorrectAnswer})
	}

	if msgID := m.s.takeRoundMessage(); msgID != "" {
		if err := m.chat.DisableComponents(ctx, m.textID, msgID); err != nil {
			m.log.Debug("disabling components failed", "error", err)
		}
	}
	return nil
}

// playPreview plays the round's clip to completion, hard-stopped at the
// playback bound to cap a nominal 30s preview.
func (m *match) playPreview(ctx context.Context) error {
	conn := m.s.voiceConn()
	if conn == nil {
		return ErrTerminated
	}

	pctx, cancel := m.sessionCtx(ctx)
	defer cancel()

	if err := conn.Play(pctx, m.s.tempFile()); err != nil {
		if m.s.Terminated() {
			return ErrTerminated
		}
		return fmt.Errorf("starting playback: %w", err)
	}

	wctx, wcancel := context.WithTimeout(pctx, m.cfg.PlaybackBound)
	defer wcancel()

	if err := conn.WaitIdle(wctx); err != nil {
		if m.s.Terminated() {
			return ErrTerminated
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(wctx.Err(), context.DeadlineExceeded) {
			m.log.Debug("playback hard stop", "guild_id", m.s.GuildID)
			conn.StopPlayback()
			return nil
		}
		return fmt.Errorf("waiting for playback: %w", err)
	}
	return nil
}

// replayPreview restarts playback from the stored temp file; used by the
// round's replay control.
func (m *match) replayPreview(ctx context.Context) error {
	conn := m.s.voiceConn()
	path := m.s.tempFile()
	if conn == nil || path == "" {
		return errors.New("no preview to replay")
	}
	pctx, cancel := m.sessionCtx(ctx)
	defer cancel()
	return conn.Play(pctx, path)
}

// waitPresence polls until the initiator occupies the game voice channel,
// at the configured interval, up to bound.
func (m *match) waitPresence(ctx context.Context, bound time.Duration) error {
	if m.present() {
		return nil
	}

	ticker := time.NewTicker(m.cfg.PresencePoll)
	defer ticker.Stop()
	deadline := time.NewTimer(bound)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.s.Done():
			return ErrTerminated
		case <-deadline.C:
			return ErrInitiatorAbsent
		case <-ticker.C:
			if m.present() {
				return nil
			}
		}
	}
}

func (m *match) present() bool {
	ch, ok := m.voice.UserChannel(m.s.GuildID, m.s.InitiatorID)
	return ok && ch == m.voiceID
}

// recheckPresence re-confirms the initiator before a round: a short
// re-check window first, then a public nudge and the longer rejoin grace.
func (m *match) recheckPresence(ctx context.Context) error {
	err := m.waitPresence(ctx, m.cfg.RecheckBound)
	if err == nil || !errors.Is(err, ErrInitiatorAbsent) {
		return err
	}
	m.say(ctx, "⚠️ Waiting for the game host to rejoin the voice channel...")
	return m.waitPresence(ctx, m.cfg.RejoinGrace)
}

// pause waits out the inter-round breathing room, still observing
// termination.
func (m *match) pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.s.Done():
		return ErrTerminated
	case <-t.C:
		return nil
	}
}

func (m *match) finishScoreboard(ctx context.Context) {
	guild := m.s.GuildID
	entries := m.scores.SessionScores(guild)

	for u := range m.participants {
		if err := m.scores.AddGamePlayed(ctx, guild, u); err != nil {
			m.log.Warn("recording game played failed", "user_id", u, "error", err)
		}
	}
	if len(entries) > 0 && entries[0].Points > 0 {
		if err := m.scores.AddGameWon(ctx, guild, entries[0].UserID); err != nil {
			m.log.Warn("recording game won failed", "user_id", entries[0].UserID, "error", err)
		}
	}

	if _, err := m.chat.SendEmbed(ctx, m.textID, scoreboardEmbed(entries), nil); err != nil {
		m.log.Warn("scoreboard failed", "guild_id", guild, "error", err)
	}
	m.publish(guild, Event{Type: EventMatchFinished})
}

// sessionCtx derives a context cancelled when the session is terminated,
// so transport waits unwind without their own polling.
func (m *match) sessionCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	cctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-m.s.Done():
			cancel()
		case <-cctx.Done():
		}
	}()
	return cctx, cancel
}

func (m *match) say(ctx context.Context, content string) {
	if m.textID == "" {
		return
	}
	if _, err := m.chat.Send(ctx, m.textID, content); err != nil {
		m.log.Debug("send failed", "guild_id", m.s.GuildID, "error", err)
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
