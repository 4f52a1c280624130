package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/Mlesn1/GeminiDiscordHelper/internal/engine"
	"github.com/Mlesn1/GeminiDiscordHelper/internal/memory"
	"github.com/Mlesn1/GeminiDiscordHelper/internal/version"
)

// dispatchCommand routes a prefixed message. Unknown commands are ignored
// so the bot does not fight other bots sharing the prefix.
func (b *Bot) dispatchCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	body := strings.TrimPrefix(m.Content, b.cfg.CommandPrefix)
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(body, fields[0]))

	// Commands always address the user's own conversation.
	id := memory.UserIdentity(parseSnowflake(m.Author.ID))

	switch name {
	case "ask":
		if rest == "" {
			b.send(s, m.ChannelID, "Usage: "+b.cfg.CommandPrefix+"ask <your question>")
			return
		}
		mc := *m
		mc.Content = rest
		b.respond(s, &mc, id, false)
	case "set_personality":
		b.cmdSetPersonality(s, m, id, args)
	case "clear", "clear_memory":
		b.cmdClear(s, m, id)
	case "memory":
		b.cmdMemory(s, m, id)
	case "tag":
		b.cmdTag(s, m, id, args)
	case "title":
		b.cmdTitle(s, m, id, rest)
	case "archive":
		b.cmdArchive(s, m, id, true)
	case "unarchive":
		b.cmdArchive(s, m, id, false)
	case "settings":
		b.cmdSettings(s, m, args)
	case "about", "help":
		b.cmdAbout(s, m)
	}
}

func (b *Bot) cmdSetPersonality(s *discordgo.Session, m *discordgo.MessageCreate, id memory.Identity, args []string) {
	if !b.cfg.SelectablePersonality {
		b.send(s, m.ChannelID, "Personality selection is disabled on this server.")
		return
	}
	if len(args) == 0 {
		var lines []string
		lines = append(lines, "**Available personalities:**")
		for _, p := range b.engine.Personalities() {
			lines = append(lines, fmt.Sprintf("%s **%s** — %s", p.Emoji, p.Name, p.Description))
		}
		b.send(s, m.ChannelID, strings.Join(lines, "\n"))
		return
	}

	name := args[0]
	if err := b.engine.SetPersonality(id, name); err != nil {
		b.send(s, m.ChannelID, engine.Reason(err)+".")
		return
	}
	p := b.personalityByKey(name)
	b.send(s, m.ChannelID, fmt.Sprintf("%s Personality set to **%s**! Your future interactions will use this personality.", p.Emoji, p.Name))
}

func (b *Bot) personalityByKey(key string) personalityDisplay {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, p := range b.engine.Personalities() {
		if strings.ToLower(p.Name) == key {
			return personalityDisplay{Name: p.Name, Emoji: p.Emoji}
		}
	}
	return personalityDisplay{Name: key}
}

type personalityDisplay struct {
	Name  string
	Emoji string
}

func (b *Bot) cmdClear(s *discordgo.Session, m *discordgo.MessageCreate, id memory.Identity) {
	if b.engine.Clear(id) {
		b.send(s, m.ChannelID, "🧹 Conversation memory cleared. We start fresh!")
	} else {
		b.send(s, m.ChannelID, "There is no conversation to clear.")
	}
}

func (b *Bot) cmdMemory(s *discordgo.Session, m *discordgo.MessageCreate, id memory.Identity) {
	snap, ok := b.engine.Snapshot(id)
	if !ok {
		b.send(s, m.ChannelID, "No active conversation. Say something first!")
		return
	}
	b.send(s, m.ChannelID, formatConversation(snap, b.engine.Preview(id, b.cfg.PreviewLength)))
}

func (b *Bot) cmdTag(s *discordgo.Session, m *discordgo.MessageCreate, id memory.Identity, args []string) {
	usage := "Usage: " + b.cfg.CommandPrefix + "tag add|remove <tags...>"
	if len(args) < 2 {
		b.send(s, m.ChannelID, usage)
		return
	}
	var err error
	switch strings.ToLower(args[0]) {
	case "add":
		err = b.engine.AddTags(id, args[1:])
	case "remove":
		err = b.engine.RemoveTags(id, args[1:])
	default:
		b.send(s, m.ChannelID, usage)
		return
	}
	if err != nil {
		b.send(s, m.ChannelID, engine.Reason(err)+".")
		return
	}
	// The conversation can be swept or cleared between the mutation and
	// this read; treat a vanished snapshot as having no tags.
	snap, ok := b.engine.Snapshot(id)
	b.send(s, m.ChannelID, tagSummary(snap, ok))
}

func tagSummary(snap *memory.Conversation, ok bool) string {
	if !ok || len(snap.Tags) == 0 {
		return "🏷️ No tags on this conversation."
	}
	return "🏷️ Tags: " + strings.Join(snap.Tags, ", ")
}

func (b *Bot) cmdTitle(s *discordgo.Session, m *discordgo.MessageCreate, id memory.Identity, title string) {
	if err := b.engine.SetTitle(id, title); err != nil {
		b.send(s, m.ChannelID, engine.Reason(err)+".")
		return
	}
	b.send(s, m.ChannelID, "📝 Conversation titled **"+title+"**.")
}

func (b *Bot) cmdArchive(s *discordgo.Session, m *discordgo.MessageCreate, id memory.Identity, flag bool) {
	if err := b.engine.Archive(id, flag); err != nil {
		b.send(s, m.ChannelID, engine.Reason(err)+".")
		return
	}
	if flag {
		b.send(s, m.ChannelID, "📦 Conversation archived.")
	} else {
		b.send(s, m.ChannelID, "📂 Conversation unarchived.")
	}
}

func (b *Bot) cmdSettings(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	userID := parseSnowflake(m.Author.ID)
	if len(args) == 0 {
		b.send(s, m.ChannelID, formatSettings(b.engine.Settings(userID)))
		return
	}
	if len(args) != 2 {
		b.send(s, m.ChannelID, "Usage: "+b.cfg.CommandPrefix+"settings [<setting> <value>]")
		return
	}
	updated, err := b.engine.UpdateSetting(userID, args[0], args[1])
	if err != nil {
		b.send(s, m.ChannelID, engine.Reason(err)+".")
		return
	}
	b.send(s, m.ChannelID, "✅ Setting updated.\n"+formatSettings(updated))
}

func (b *Bot) cmdAbout(s *discordgo.Session, m *discordgo.MessageCreate) {
	stats := b.engine.Stats()
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Gemini Discord Helper** %s\n", version.Info())
	sb.WriteString("An AI assistant with conversation memory, moods, and personalities.\n\n")
	sb.WriteString("**Usage**\n")
	p := b.cfg.CommandPrefix
	fmt.Fprintf(&sb, "`%sask <question>` — ask anything\n", p)
	fmt.Fprintf(&sb, "`%sset_personality [name]` — list or pick a personality\n", p)
	fmt.Fprintf(&sb, "`%smemory` — show the current conversation\n", p)
	fmt.Fprintf(&sb, "`%sclear` — forget the current conversation\n", p)
	fmt.Fprintf(&sb, "`%stag add|remove <tags...>`, `%stitle <text>`, `%sarchive` — organize it\n", p, p, p)
	fmt.Fprintf(&sb, "`%ssettings [<setting> <value>]` — view or change your settings\n\n", p)
	fmt.Fprintf(&sb, "Moods: %s\n", strings.Join(b.engine.Moods(), ", "))
	fmt.Fprintf(&sb, "Active conversations: %d users, %d channels\n", stats.Users, stats.Channels)
	b.send(s, m.ChannelID, sb.String())
}
