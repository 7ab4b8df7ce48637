package game

import (
	"sync"

	"github.com/google/uuid"

	"github.com/tunequiz/tunequiz/internal/discord"
	"github.com/tunequiz/tunequiz/internal/trivia"
)

// Session is the live state of one guild's in-progress match. The session
// exclusively owns its voice connection, collector, countdown and temp
// preview file: the round engine releases them on the normal path, the
// termination protocol on the cancellation path, and the take* accessors
// make those two paths mutually exclusive (a handle can only be taken once).
type Session struct {
	ID          string
	GuildID     string
	InitiatorID string
	Difficulty  trivia.Difficulty

	mu             sync.Mutex
	active         bool
	terminated     bool
	round          int
	track          *trivia.Track
	tempMediaPath  string
	voiceChannelID string
	textChannelID  string
	roundMessageID string
	voice          discord.VoiceConnection
	collector      discord.InteractionCollector
	countdown      *countdown

	// done is closed exactly once, when the session is terminated. Every
	// suspension point in the engine selects on it.
	done chan struct{}
}

func newSession(guildID, initiatorID string, d trivia.Difficulty) *Session {
	return &Session{
		ID:          uuid.NewString(),
		GuildID:     guildID,
		InitiatorID: initiatorID,
		Difficulty:  d,
		active:      true,
		done:        make(chan struct{}),
	}
}

// Done is closed when the session has been terminated.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) Terminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminated
}

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// terminate flips the session to inactive/terminated and signals done.
// It reports whether this call performed the transition.
func (s *Session) terminate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return false
	}
	s.active = false
	s.terminated = true
	close(s.done)
	return true
}

func (s *Session) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

func (s *Session) setRound(r int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.round = r
}

func (s *Session) setChannels(voiceID, textID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voiceChannelID = voiceID
	s.textChannelID = textID
}

func (s *Session) channels() (voiceID, textID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voiceChannelID, s.textChannelID
}

func (s *Session) setTrack(t *trivia.Track, tempPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track = t
	s.tempMediaPath = tempPath
}

func (s *Session) tempFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tempMediaPath
}

// takeTempFile returns the tracked preview path and clears it, so only one
// caller ever deletes the file.
func (s *Session) takeTempFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.tempMediaPath
	s.tempMediaPath = ""
	s.track = nil
	return p
}

func (s *Session) setVoice(v discord.VoiceConnection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voice = v
}

func (s *Session) voiceConn() discord.VoiceConnection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice
}

func (s *Session) takeVoice() discord.VoiceConnection {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.voice
	s.voice = nil
	return v
}

func (s *Session) setCollector(c discord.InteractionCollector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collector = c
}

func (s *Session) takeCollector() discord.InteractionCollector {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collector
	s.collector = nil
	return c
}

func (s *Session) setCountdown(c *countdown) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countdown = c
}

func (s *Session) takeCountdown() *countdown {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.countdown
	s.countdown = nil
	return c
}

func (s *Session) setRoundMessage(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roundMessageID = id
}

func (s *Session) takeRoundMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.roundMessageID
	s.roundMessageID = ""
	return id
}

// Status is a read-only snapshot of a session for status queries.
type Status struct {
	GuildID     string            `json:"guildId"`
	InitiatorID string            `json:"initiatorId"`
	Difficulty  trivia.Difficulty `json:"difficulty"`
	Round       int               `json:"round"`
	Active      bool              `json:"active"`
	Terminated  bool              `json:"terminated"`
}

func (s *Session) status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		GuildID:     s.GuildID,
		InitiatorID: s.InitiatorID,
		Difficulty:  s.Difficulty,
		Round:       s.round,
		Active:      s.active,
		Terminated:  s.terminated,
	}
}
