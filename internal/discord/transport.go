// Package discord declares the interfaces the game engine consumes from the
// chat/UI and voice transports. The concrete gateway implementations live in
// the bot shell; everything in this repo programs against these contracts.
package discord

import "context"

// Embed is the renderable rich message payload.
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedField
	Footer      string
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Button is one interactive control attached to a message. ID comes back in
// the Interaction for presses on this button.
type Button struct {
	ID       string
	Label    string
	Disabled bool
}

// Interaction is a button press scoped to the message a collector watches.
type Interaction struct {
	UserID   string
	CustomID string
}

// InteractionCollector delivers presses for one message until stopped.
// Stop is idempotent and closes Events; reason is surfaced to the transport
// for its own bookkeeping ("resolved", "timeout", "terminated").
type InteractionCollector interface {
	Events() <-chan Interaction
	Stop(reason string)
}

// ChatTransport sends and edits messages in the guild's game text channel.
type ChatTransport interface {
	// Send posts plain content and returns the message id.
	Send(ctx context.Context, channelID, content string) (string, error)
	// SendEmbed posts an embed with optional buttons and returns the message id.
	SendEmbed(ctx context.Context, channelID string, embed Embed, buttons []Button) (string, error)
	Edit(ctx context.Context, channelID, messageID, content string) error
	Delete(ctx context.Context, channelID, messageID string) error
	// DisableComponents greys out every button on a message.
	DisableComponents(ctx context.Context, channelID, messageID string) error
	// Whisper delivers a private, ephemeral notice to one participant.
	Whisper(ctx context.Context, channelID, userID, content string) error
	// CollectInteractions starts receiving button presses on a message.
	CollectInteractions(messageID string) InteractionCollector
}

// VoiceConnection is a live connection to the guild's game voice channel.
// Play returns once playback has started; WaitIdle returns when the current
// resource finishes.
type VoiceConnection interface {
	Play(ctx context.Context, filePath string) error
	WaitIdle(ctx context.Context) error
	StopPlayback()
	Destroy() error
}

// VoiceTransport joins voice channels and reports participant presence.
type VoiceTransport interface {
	// Join connects to a voice channel and waits for it to reach ready.
	Join(ctx context.Context, guildID, channelID string) (VoiceConnection, error)
	// UserChannel reports which voice channel a user currently occupies.
	UserChannel(guildID, userID string) (channelID string, ok bool)
}

// ChannelLocator resolves the guild's designated game channels, typically by
// their conventional names.
type ChannelLocator interface {
	GameChannels(ctx context.Context, guildID string) (voiceChannelID, textChannelID string, err error)
}
