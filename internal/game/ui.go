package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tunequiz/tunequiz/internal/discord"
	"github.com/tunequiz/tunequiz/internal/score"
	"github.com/tunequiz/tunequiz/internal/trivia"
)

// Spotify green, the bot's signature color.
const embedColor = 0x1db954

const rulesMessage = "🎵 **Music Trivia!** A 30 second preview plays each round. " +
	"First correct answer wins the points (easy 1 / medium 2 / hard 3). " +
	"One replay and one hint per round — no hints on hard. Good luck!"

func questionEmbed(q trivia.Question, round, totalRounds int, frozen bool) discord.Embed {
	e := discord.Embed{
		Title:       "🎵 Music Trivia Question",
		Description: q.Prompt,
		Color:       embedColor,
		Fields: []discord.EmbedField{
			{Name: "Round", Value: fmt.Sprintf("%d/%d", round, totalRounds), Inline: true},
			{
				Name: "Difficulty",
				Value: fmt.Sprintf("%s (%d point%s)",
					strings.ToUpper(string(q.Difficulty)), q.Points, plural(q.Points)),
				Inline: true,
			},
		},
		Footer: "Click the button with the correct answer!",
	}
	if frozen {
		e.Fields = append(e.Fields, discord.EmbedField{
			Name: "❄️ Frozen", Value: "No timer this round", Inline: true,
		})
	}
	return e
}

func questionButtons(q trivia.Question) []discord.Button {
	buttons := make([]discord.Button, 0, len(q.Options)+2)
	for i, opt := range q.Options {
		buttons = append(buttons, discord.Button{
			ID:    answerIDPrefix + strconv.Itoa(i),
			Label: opt,
		})
	}
	buttons = append(buttons, discord.Button{ID: replayID, Label: "🔁 Replay"})
	if q.Difficulty != trivia.Hard {
		buttons = append(buttons, discord.Button{ID: hintID, Label: "💡 Hint"})
	}
	return buttons
}

func scoreboardEmbed(entries []score.Entry) discord.Embed {
	var b strings.Builder
	if len(entries) == 0 {
		b.WriteString("No points were scored this match.")
	}
	medals := []string{"🥇", "🥈", "🥉"}
	for i, e := range entries {
		prefix := " "
		if i < len(medals) {
			prefix = medals[i]
		}
		fmt.Fprintf(&b, "%s <@%s> — **%d** point%s\n", prefix, e.UserID, e.Points, plural(e.Points))
	}
	return discord.Embed{
		Title:       "🏁 Final Scoreboard",
		Description: b.String(),
		Color:       embedColor,
	}
}
