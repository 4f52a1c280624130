package engine

import (
	"fmt"
	"strings"

	"github.com/Mlesn1/GeminiDiscordHelper/internal/affect"
)

// StyleContext carries everything the system instruction is composed from:
// the active personality, the conversation's mood and energy, and optional
// topic hints from the title and tags.
type StyleContext struct {
	Personality affect.Personality
	Mood        string
	MoodEmoji   string
	Energy      float64
	Title       string
	Tags        []string
}

// energyTone maps the numeric energy level to a phrasing directive.
func energyTone(level float64) string {
	switch {
	case level >= 4:
		return "high — be lively and enthusiastic"
	case level >= 2:
		return "moderate — be engaged but measured"
	default:
		return "low — be brief and relaxed"
	}
}

// Compose renders the system instruction for a generation call.
func (s StyleContext) Compose() string {
	var b strings.Builder
	b.WriteString("You are a helpful Discord assistant.\n")
	if s.Personality.StyleGuide != "" {
		b.WriteString(s.Personality.StyleGuide)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Current mood: %s %s.\n", s.Mood, s.MoodEmoji)
	fmt.Fprintf(&b, "Energy level: %s.\n", energyTone(s.Energy))
	if s.Title != "" {
		fmt.Fprintf(&b, "Conversation topic: %s.\n", s.Title)
	}
	if len(s.Tags) > 0 {
		fmt.Fprintf(&b, "Conversation tags: %s.\n", strings.Join(s.Tags, ", "))
	}
	b.WriteString("Keep replies under 1500 characters and suitable for a chat channel.")
	return b.String()
}

// ReplyDraft is a generated reply plus the affect decoration the transport
// layer renders around it.
type ReplyDraft struct {
	Text             string
	Prefix           string
	Suffix           string
	Mood             string
	MoodEmoji        string
	EnergyIndicator  string
	Personality      string
	PersonalityEmoji string
}

// Decorated returns the reply text with the mood prefix and suffix
// applied. Both carry their own spacing.
func (d ReplyDraft) Decorated() string {
	return d.Prefix + d.Text + d.Suffix
}
