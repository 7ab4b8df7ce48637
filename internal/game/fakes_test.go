package game

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tunequiz/tunequiz/internal/discord"
	"github.com/tunequiz/tunequiz/internal/trivia"
)

// --- chat transport ---

type sentEmbed struct {
	id      string
	embed   discord.Embed
	buttons []discord.Button
}

type whisper struct {
	userID  string
	content string
}

type fakeChat struct {
	mu        sync.Mutex
	nextID    int
	sent      []string
	embeds    []sentEmbed
	whispers  []whisper
	edits     []string
	deleted   []string
	disabled  []string
	collected chan *fakeCollector
}

func newFakeChat() *fakeChat {
	return &fakeChat{collected: make(chan *fakeCollector, 16)}
}

func (c *fakeChat) id() string {
	c.nextID++
	return "m" + strconv.Itoa(c.nextID)
}

func (c *fakeChat) Send(_ context.Context, _, content string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, content)
	return c.id(), nil
}

func (c *fakeChat) SendEmbed(_ context.Context, _ string, e discord.Embed, buttons []discord.Button) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.id()
	c.embeds = append(c.embeds, sentEmbed{id: id, embed: e, buttons: buttons})
	return id, nil
}

func (c *fakeChat) Edit(_ context.Context, _, _, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edits = append(c.edits, content)
	return nil
}

func (c *fakeChat) Delete(_ context.Context, _, messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, messageID)
	return nil
}

func (c *fakeChat) DisableComponents(_ context.Context, _, messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = append(c.disabled, messageID)
	return nil
}

func (c *fakeChat) Whisper(_ context.Context, _, userID, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.whispers = append(c.whispers, whisper{userID: userID, content: content})
	return nil
}

func (c *fakeChat) CollectInteractions(messageID string) discord.InteractionCollector {
	fc := &fakeCollector{messageID: messageID, events: make(chan discord.Interaction, 16)}
	c.collected <- fc
	return fc
}

func (c *fakeChat) sentContaining(substr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.sent {
		if strings.Contains(s, substr) {
			n++
		}
	}
	return n
}

func (c *fakeChat) whispersTo(userID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, w := range c.whispers {
		if w.userID == userID {
			out = append(out, w.content)
		}
	}
	return out
}

func (c *fakeChat) lastEmbed() (sentEmbed, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.embeds) == 0 {
		return sentEmbed{}, false
	}
	return c.embeds[len(c.embeds)-1], true
}

// --- interaction collector ---

type fakeCollector struct {
	messageID string
	events    chan discord.Interaction

	mu      sync.Mutex
	stopped bool
	reason  string
}

func (fc *fakeCollector) Events() <-chan discord.Interaction { return fc.events }

func (fc *fakeCollector) Stop(reason string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.stopped {
		return
	}
	fc.stopped = true
	fc.reason = reason
}

func (fc *fakeCollector) stopReason() (string, bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.reason, fc.stopped
}

// press delivers a button press unless the collector has been stopped.
func (fc *fakeCollector) press(userID, customID string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.stopped {
		return
	}
	fc.events <- discord.Interaction{UserID: userID, CustomID: customID}
}

// --- voice transport ---

type fakeConn struct {
	mu        sync.Mutex
	plays     []string
	playErr   error
	playDur   time.Duration
	stopped   bool
	destroyed bool
}

func (c *fakeConn) Play(_ context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playErr != nil {
		return c.playErr
	}
	c.plays = append(c.plays, path)
	return nil
}

func (c *fakeConn) WaitIdle(ctx context.Context) error {
	if c.playDur == 0 {
		return nil
	}
	t := time.NewTimer(c.playDur)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *fakeConn) StopPlayback() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
}

func (c *fakeConn) Destroy() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyed = true
	return nil
}

func (c *fakeConn) playCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.plays)
}

type fakeVoice struct {
	mu       sync.Mutex
	channels map[string]string // userID -> voice channel id
	conn     *fakeConn
	joinErr  error
}

func newFakeVoice() *fakeVoice {
	return &fakeVoice{channels: make(map[string]string), conn: &fakeConn{}}
}

func (v *fakeVoice) setUser(userID, channelID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if channelID == "" {
		delete(v.channels, userID)
		return
	}
	v.channels[userID] = channelID
}

func (v *fakeVoice) UserChannel(_, userID string) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	ch, ok := v.channels[userID]
	return ch, ok
}

func (v *fakeVoice) Join(_ context.Context, _, _ string) (discord.VoiceConnection, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.joinErr != nil {
		return nil, v.joinErr
	}
	return v.conn, nil
}

// --- channel locator ---

type fakeLocator struct{ err error }

func (l fakeLocator) GameChannels(context.Context, string) (string, string, error) {
	if l.err != nil {
		return "", "", l.err
	}
	return "vc", "tc", nil
}

// --- track source ---

type fakeSource struct {
	dir        string
	track      trivia.Track
	alternates []trivia.Track

	mu        sync.Mutex
	downloads []string
	fetchErr  error
}

func (s *fakeSource) FetchRound(context.Context, string) (trivia.Track, []trivia.Track, error) {
	if s.fetchErr != nil {
		return trivia.Track{}, nil, s.fetchErr
	}
	return s.track, s.alternates, nil
}

func (s *fakeSource) DownloadPreview(_ context.Context, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join(s.dir, "preview_"+strconv.Itoa(len(s.downloads))+".m4a")
	if err := os.WriteFile(path, []byte("audio"), 0o600); err != nil {
		return "", err
	}
	s.downloads = append(s.downloads, path)
	return path, nil
}

func (s *fakeSource) downloaded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.downloads...)
}

// --- event sink ---

type fakeSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *fakeSink) Publish(_ string, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *fakeSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Type
	}
	return out
}
