package discord

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Mlesn1/GeminiDiscordHelper/internal/affect"
	"github.com/Mlesn1/GeminiDiscordHelper/internal/engine"
	"github.com/Mlesn1/GeminiDiscordHelper/internal/memory"
)

// maxMessageLength leaves headroom under Discord's 2000-character cap for
// the decoration around each chunk.
const maxMessageLength = 1900

const responseFooter = "\n\n*Powered by Gemini 1.5 AI*"

// renderReply composes the outgoing message: mood emoji, personality emoji,
// the decorated text, and the energy meter. The mood and energy elements can
// be switched off independently; the footer is appended only when the whole
// message still fits in a single chunk.
func renderReply(d *engine.ReplyDraft, showMood, showEnergy bool) string {
	var sb strings.Builder
	if showMood && d.MoodEmoji != "" {
		sb.WriteString(d.MoodEmoji)
		sb.WriteString(" ")
	}
	if d.PersonalityEmoji != "" {
		sb.WriteString(d.PersonalityEmoji)
		sb.WriteString(" ")
	}
	if showMood {
		sb.WriteString(d.Decorated())
	} else {
		sb.WriteString(d.Text)
	}
	if showEnergy && d.EnergyIndicator != "" {
		sb.WriteString(" ")
		sb.WriteString(d.EnergyIndicator)
	}
	out := sb.String()
	if len(out)+len(responseFooter) <= maxMessageLength {
		out += responseFooter
	}
	return out
}

// chunkMessage splits text into pieces no longer than limit, preferring
// newline and space boundaries so words are not cut mid-way.
func chunkMessage(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(text) > limit {
		cut := limit
		// Never slice mid-rune when no word boundary is available.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			// Degenerate limit smaller than one rune; keep the raw cut
			// rather than loop forever.
			cut = limit
		}
		if i := strings.LastIndex(text[:limit], "\n"); i > limit/2 {
			cut = i
		} else if i := strings.LastIndex(text[:limit], " "); i > limit/2 {
			cut = i
		}
		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

// formatPreview renders the conversation tail for a DM preview.
func formatPreview(msgs []memory.Message) string {
	var sb strings.Builder
	sb.WriteString("**Conversation preview**\n")
	for _, m := range msgs {
		sb.WriteString(formatTurn(m))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatConversation renders the memory overview: affect state, metadata,
// and the last few turns.
func formatConversation(c *memory.Conversation, tail []memory.Message) string {
	var sb strings.Builder
	sb.WriteString("**Conversation memory**\n")
	if c.Title != "" {
		fmt.Fprintf(&sb, "Title: **%s**\n", c.Title)
	}
	fmt.Fprintf(&sb, "Mood: %s · Energy: %s · Personality: %s\n",
		c.Mood, affect.Indicator(c.EnergyLevel), c.Personality)
	if len(c.Tags) > 0 {
		fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(c.Tags, ", "))
	}
	if c.Archived {
		sb.WriteString("Status: archived\n")
	}
	fmt.Fprintf(&sb, "Messages held: %d\n", len(c.Messages))
	if len(tail) > 0 {
		sb.WriteString("\n**Recent turns**\n")
		for _, m := range tail {
			sb.WriteString(formatTurn(m))
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatTurn(m memory.Message) string {
	who := "🤖"
	if m.Role == memory.RoleUser {
		who = "🧑"
		if m.AuthorName != "" {
			who = "🧑 " + m.AuthorName
		}
	}
	content := m.Content
	if r := []rune(content); len(r) > 120 {
		content = string(r[:120]) + "…"
	}
	return fmt.Sprintf("%s: %s", who, content)
}

// formatSettings renders a user's settings block.
func formatSettings(s memory.UserSettings) string {
	var sb strings.Builder
	sb.WriteString("**Your settings**\n")
	fmt.Fprintf(&sb, "personality: %s\n", s.Personality)
	fmt.Fprintf(&sb, "default_mood: %s\n", s.DefaultMood)
	fmt.Fprintf(&sb, "max_memory_messages: %d\n", s.MaxMemoryMessages)
	fmt.Fprintf(&sb, "memory_expiry_days: %d\n", s.MemoryExpiryDays)
	fmt.Fprintf(&sb, "auto_title_conversations: %t\n", s.AutoTitleConversations)
	fmt.Fprintf(&sb, "dm_conversation_preview: %t", s.DMConversationPreview)
	return sb.String()
}
