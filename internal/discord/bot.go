// Package discord is the gateway between Discord traffic and the
// conversation engine. It owns trigger detection (prefix commands,
// mentions, auto-response channels, direct messages), identity mapping,
// and reply rendering; all conversation semantics live in the engine.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/Mlesn1/GeminiDiscordHelper/internal/engine"
	"github.com/Mlesn1/GeminiDiscordHelper/internal/memory"
)

// Config holds the gateway settings.
type Config struct {
	// Token is the bot token. Required.
	Token string

	// CommandPrefix introduces explicit commands. Defaults to "!".
	CommandPrefix string

	// AutoChannelIDs lists channels where every message is answered
	// without a mention or prefix.
	AutoChannelIDs []string

	// RespondToMentions answers messages that @-mention the bot.
	RespondToMentions bool

	// RespondToDMs answers direct messages that are not commands.
	RespondToDMs bool

	// ShowMoodIndicator renders the mood emoji and prefix/suffix around
	// replies.
	ShowMoodIndicator bool

	// ShowEnergyMeter appends the energy bar after replies.
	ShowEnergyMeter bool

	// SelectablePersonality lets users switch their personality preset.
	SelectablePersonality bool

	// PreviewLength is how many trailing turns DM previews and memory
	// overviews show. Defaults to the engine's preview length.
	PreviewLength int
}

// Bot wires a discordgo session to the engine.
type Bot struct {
	session      *discordgo.Session
	engine       *engine.Engine
	cfg          Config
	logger       *slog.Logger
	autoChannels map[string]bool
}

// New creates the bot but does not connect; call Run.
func New(cfg Config, eng *engine.Engine, logger *slog.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, engine.E(engine.CodeConfiguration, "discord token is missing", nil)
	}
	if cfg.CommandPrefix == "" {
		cfg.CommandPrefix = "!"
	}
	if cfg.PreviewLength <= 0 {
		cfg.PreviewLength = engine.DefaultPreviewLength
	}
	if logger == nil {
		logger = slog.Default()
	}

	auto := make(map[string]bool, len(cfg.AutoChannelIDs))
	for _, id := range cfg.AutoChannelIDs {
		if id = strings.TrimSpace(id); id != "" {
			auto[id] = true
		}
	}
	return &Bot{cfg: cfg, engine: eng, logger: logger, autoChannels: auto}, nil
}

// Run opens the gateway session and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	session, err := discordgo.New("Bot " + b.cfg.Token)
	if err != nil {
		return fmt.Errorf("discord: create session: %w", err)
	}
	b.session = session

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)

	if err := session.Open(); err != nil {
		return fmt.Errorf("discord: open session: %w", err)
	}
	defer session.Close()

	<-ctx.Done()
	b.logger.Info("discord gateway shutting down")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("discord gateway ready",
		"user", r.User.Username,
		"guilds", len(r.Guilds),
		"auto_channels", len(b.autoChannels),
	)
}

// trigger classifies why a message deserves a reply.
type trigger int

const (
	triggerNone trigger = iota
	triggerCommand
	triggerDM
	triggerMention
	triggerAutoChannel
)

func (b *Bot) classify(s *discordgo.Session, m *discordgo.MessageCreate) trigger {
	if strings.HasPrefix(m.Content, b.cfg.CommandPrefix) {
		return triggerCommand
	}
	if m.GuildID == "" {
		if b.cfg.RespondToDMs {
			return triggerDM
		}
		return triggerNone
	}
	if b.autoChannels[m.ChannelID] {
		return triggerAutoChannel
	}
	if b.cfg.RespondToMentions {
		for _, u := range m.Mentions {
			if u.ID == s.State.User.ID {
				return triggerMention
			}
		}
	}
	return triggerNone
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}

	switch b.classify(s, m) {
	case triggerCommand:
		b.dispatchCommand(s, m)
	case triggerDM:
		b.respond(s, m, memory.UserIdentity(parseSnowflake(m.Author.ID)), true)
	case triggerMention:
		b.respond(s, m, memory.ChannelIdentity(parseSnowflake(m.ChannelID)), true)
	case triggerAutoChannel:
		b.respond(s, m, memory.ChannelIdentity(parseSnowflake(m.ChannelID)), true)
	}
}

// respond runs a conversation turn and delivers the reply. Ambient
// triggers go through the cooldown gate; explicit commands skip it.
func (b *Bot) respond(s *discordgo.Session, m *discordgo.MessageCreate, id memory.Identity, enforceCooldown bool) {
	content := b.stripOwnMention(s, m.Content)
	if ref := referenceContext(m); ref != "" {
		content = ref + "\n\n" + content
	}
	req := engine.RespondRequest{
		Identity:        id,
		UserID:          parseSnowflake(m.Author.ID),
		ChannelID:       guildChannelID(m),
		AuthorName:      m.Author.Username,
		Content:         content,
		EnforceCooldown: enforceCooldown,
	}

	s.ChannelTyping(m.ChannelID)

	draft, err := b.engine.Respond(context.Background(), req)
	if err != nil {
		b.handleRespondError(s, m, err)
		return
	}

	reply := renderReply(draft, b.cfg.ShowMoodIndicator, b.cfg.ShowEnergyMeter)
	for _, chunk := range chunkMessage(reply, maxMessageLength) {
		if _, err := s.ChannelMessageSend(m.ChannelID, chunk); err != nil {
			b.logger.Error("send reply failed", "channel", m.ChannelID, "error", err)
			return
		}
	}
	b.engine.RecordReply(id, draft.Text)

	b.maybeSendPreview(s, m, id)
}

// maybeSendPreview DMs the conversation tail after a reply, when the user
// has the preview setting on.
func (b *Bot) maybeSendPreview(s *discordgo.Session, m *discordgo.MessageCreate, id memory.Identity) {
	userID := parseSnowflake(m.Author.ID)
	if !b.engine.Settings(userID).DMConversationPreview {
		return
	}
	msgs := b.engine.Preview(id, b.cfg.PreviewLength)
	if len(msgs) == 0 {
		return
	}
	ch, err := s.UserChannelCreate(m.Author.ID)
	if err != nil {
		b.logger.Debug("preview dm channel failed", "user", m.Author.ID, "error", err)
		return
	}
	if _, err := s.ChannelMessageSend(ch.ID, formatPreview(msgs)); err != nil {
		b.logger.Debug("preview dm failed", "user", m.Author.ID, "error", err)
	}
}

func (b *Bot) handleRespondError(s *discordgo.Session, m *discordgo.MessageCreate, err error) {
	switch {
	case engine.IsCode(err, engine.CodeRateLimited):
		if wait := engine.RetryAfter(err); wait > 0 {
			b.send(s, m.ChannelID, fmt.Sprintf("⏳ Please wait %.1fs before asking again.", wait.Seconds()))
		} else {
			b.send(s, m.ChannelID, "⏳ "+engine.Reason(err)+".")
		}
	case engine.IsCode(err, engine.CodeValidation):
		b.send(s, m.ChannelID, engine.Reason(err)+".")
	default:
		b.logger.Error("respond failed", "channel", m.ChannelID, "error", err)
		b.send(s, m.ChannelID, "Sorry, I encountered an error: "+engine.Reason(err)+".")
	}
}

func (b *Bot) send(s *discordgo.Session, channelID, text string) {
	if _, err := s.ChannelMessageSend(channelID, text); err != nil {
		b.logger.Error("send failed", "channel", channelID, "error", err)
	}
}

// stripOwnMention removes the bot's mention tokens so they do not leak
// into the prompt.
func (b *Bot) stripOwnMention(s *discordgo.Session, content string) string {
	if s.State == nil || s.State.User == nil {
		return strings.TrimSpace(content)
	}
	id := s.State.User.ID
	content = strings.ReplaceAll(content, "<@"+id+">", "")
	content = strings.ReplaceAll(content, "<@!"+id+">", "")
	return strings.TrimSpace(content)
}

// referenceContext renders the quoted-message block when the inbound
// message is a reply to someone else's message, so the model sees what is
// being responded to. Replies to bot messages carry no extra context; the
// conversation history already holds them.
func referenceContext(m *discordgo.MessageCreate) string {
	ref := m.ReferencedMessage
	if ref == nil || ref.Author == nil || ref.Author.Bot || ref.Content == "" {
		return ""
	}
	return fmt.Sprintf("[Replying to %s: \"%s\"]", ref.Author.Username, ref.Content)
}

// guildChannelID returns the numeric channel ID for guild messages and
// zero for DMs, matching the cooldown gate's scope rules.
func guildChannelID(m *discordgo.MessageCreate) int64 {
	if m.GuildID == "" {
		return 0
	}
	return parseSnowflake(m.ChannelID)
}

// parseSnowflake converts a Discord ID to int64, returning 0 for malformed
// input so zero-ID skip rules apply.
func parseSnowflake(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
