// Package engine orchestrates a conversation turn: cooldown admission,
// settings lookup, history recording, mood and energy updates, prompt
// composition, and the provider call. Transport layers (Discord, tests)
// talk only to this package.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Mlesn1/GeminiDiscordHelper/internal/affect"
	"github.com/Mlesn1/GeminiDiscordHelper/internal/ai"
	"github.com/Mlesn1/GeminiDiscordHelper/internal/cooldown"
	"github.com/Mlesn1/GeminiDiscordHelper/internal/memory"
)

const (
	// DefaultPreviewLength is how many trailing messages a memory preview
	// shows when the caller does not override it.
	DefaultPreviewLength = 3

	// maxTitleLength bounds user-supplied and auto-derived titles.
	maxTitleLength = 100

	// autoTitleLength is where auto-derived titles are cut.
	autoTitleLength = 40
)

// Deps are the engine's collaborators. Store, Catalog, Registry, and
// Provider are required; Gate and Adapter may be nil to disable cooldowns
// and durable settings, and Rand/Logger default sensibly.
type Deps struct {
	Store    *memory.Store
	Catalog  *affect.Catalog
	Registry *affect.Registry
	Gate     *cooldown.Gate
	Provider ai.Generator
	Adapter  memory.Adapter
	Rand     affect.Rand
	Logger   *slog.Logger
}

// Engine is safe for concurrent use.
type Engine struct {
	store    *memory.Store
	catalog  *affect.Catalog
	registry *affect.Registry
	gate     *cooldown.Gate
	provider ai.Generator
	adapter  memory.Adapter
	rng      affect.Rand
	logger   *slog.Logger
}

// New wires an Engine from its dependencies.
func New(d Deps) (*Engine, error) {
	if d.Store == nil || d.Catalog == nil || d.Registry == nil || d.Provider == nil {
		return nil, E(CodeConfiguration, "engine requires store, catalog, registry, and provider", nil)
	}
	if d.Rand == nil {
		d.Rand = affect.SystemRand()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Engine{
		store:    d.Store,
		catalog:  d.Catalog,
		registry: d.Registry,
		gate:     d.Gate,
		provider: d.Provider,
		adapter:  d.Adapter,
		rng:      d.Rand,
		logger:   d.Logger,
	}, nil
}

// RespondRequest describes one inbound user turn.
type RespondRequest struct {
	// Identity selects the conversation: the channel identity for ambient
	// channel traffic and mentions, the user identity for direct messages
	// and explicit asks.
	Identity memory.Identity

	// UserID and ChannelID feed the cooldown scopes. Either may be zero
	// when not applicable (a DM has no channel ID).
	UserID    int64
	ChannelID int64

	AuthorName string
	Content    string

	// EnforceCooldown gates the request through the multi-tier cooldown.
	// Explicit commands bypass it; ambient channel triggers do not.
	EnforceCooldown bool
}

// Respond runs a full conversation turn and returns the decorated reply
// draft. On success the user's message is in history; the reply is NOT —
// callers confirm delivery with RecordReply so that history only holds
// what was actually sent.
func (e *Engine) Respond(ctx context.Context, req RespondRequest) (*ReplyDraft, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, E(CodeValidation, "message is empty", nil)
	}
	if req.Identity.IsZero() {
		return nil, E(CodeValidation, "conversation identity is missing", nil)
	}

	if req.EnforceCooldown && e.gate != nil {
		if d := e.gate.Check(req.UserID, req.ChannelID); !d.Allowed {
			return nil, &Error{
				Code:       CodeRateLimited,
				Reason:     fmt.Sprintf("on cooldown (%s scope)", d.Scope),
				RetryAfter: d.RetryAfter,
			}
		}
	}

	settings := e.settingsFor(req.UserID)
	seed := e.seedFor(req.Identity, settings)

	e.store.AddMessage(req.Identity, seed, memory.RoleUser, req.Content, req.AuthorName, req.UserID)

	snap, ok := e.store.Snapshot(req.Identity)
	if !ok {
		return nil, E(CodePersistence, "conversation vanished mid-turn", nil)
	}

	if settings.AutoTitleConversations && snap.Title == "" && len(snap.Messages) == 1 {
		if title := deriveTitle(req.Content); title != "" {
			e.store.SetTitle(req.Identity, title)
			snap.Title = title
		}
	}

	// Mood may drift once per turn, before the prompt is composed, so the
	// reply is generated in the mood it will be decorated with.
	if next := e.catalog.MaybeChange(snap.Mood, e.rng); next != snap.Mood {
		e.logger.Debug("mood change", "identity", req.Identity.String(), "from", snap.Mood, "to", next)
		e.store.SetMood(req.Identity, next)
		snap.Mood = next
	}

	personality := e.registry.Get(snap.Personality)
	style := StyleContext{
		Personality: personality,
		Mood:        snap.Mood,
		MoodEmoji:   e.catalog.Mood(snap.Mood).Emoji,
		Energy:      snap.EnergyLevel,
		Title:       snap.Title,
		Tags:        snap.Tags,
	}

	text, err := e.provider.Generate(ctx, ai.Request{
		System:   style.Compose(),
		Messages: toProviderHistory(snap.Messages),
		Params:   personality.Params,
	})
	if err != nil {
		if errors.Is(err, ai.ErrRateLimited) {
			return nil, &Error{
				Code:   CodeRateLimited,
				Reason: "the model is temporarily rate-limited, try again shortly",
				Err:    err,
			}
		}
		return nil, E(CodeProvider, "Failed to generate AI response", err)
	}

	prefix, suffix := e.catalog.Decorate(snap.Mood, e.rng)
	return &ReplyDraft{
		Text:             text,
		Prefix:           prefix,
		Suffix:           suffix,
		Mood:             snap.Mood,
		MoodEmoji:        e.catalog.Mood(snap.Mood).Emoji,
		EnergyIndicator:  affect.Indicator(snap.EnergyLevel),
		Personality:      snap.Personality,
		PersonalityEmoji: personality.Emoji,
	}, nil
}

// RecordReply appends the delivered assistant reply to the conversation
// history. Assistant turns never move the energy level.
func (e *Engine) RecordReply(id memory.Identity, text string) {
	e.store.AddMessage(id, memory.Seed{}, memory.RoleAssistant, text, "", 0)
}

// Clear drops the identity's conversation and resets the user's cooldowns.
// Returns whether a live conversation existed.
func (e *Engine) Clear(id memory.Identity) bool {
	existed := e.store.Clear(id)
	if e.gate != nil && id.Kind == memory.KindUser {
		e.gate.Reset(id.ID)
	}
	return existed
}

// Preview returns the identity's last n messages (DefaultPreviewLength
// when n <= 0), oldest first.
func (e *Engine) Preview(id memory.Identity, n int) []memory.Message {
	if n <= 0 {
		n = DefaultPreviewLength
	}
	return e.store.Preview(id, n)
}

// Snapshot exposes a deep copy of the identity's conversation for display.
func (e *Engine) Snapshot(id memory.Identity) (*memory.Conversation, bool) {
	return e.store.Snapshot(id)
}

// SetPersonality validates and applies a personality to the identity's
// conversation. For user identities the choice is also saved as the user's
// default.
func (e *Engine) SetPersonality(id memory.Identity, name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if !e.registry.Has(name) {
		return E(CodeValidation,
			fmt.Sprintf("unknown personality %q (available: %s)", name, strings.Join(e.registry.Names(), ", ")),
			nil)
	}

	var seed memory.Seed
	if id.Kind == memory.KindUser {
		settings := e.settingsFor(id.ID)
		seed = e.seedFor(id, settings)
		settings.Personality = name
		if e.adapter != nil {
			if err := e.adapter.SaveSettings(id.ID, settings); err != nil {
				return E(CodePersistence, "could not save your settings", err)
			}
		}
	}
	e.store.SetPersonality(id, seed, name)
	return nil
}

// SetMood validates and applies a mood to an existing conversation.
func (e *Engine) SetMood(id memory.Identity, name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if !e.catalog.Has(name) {
		return E(CodeValidation,
			fmt.Sprintf("unknown mood %q (available: %s)", name, strings.Join(e.catalog.Names(), ", ")),
			nil)
	}
	if !e.store.SetMood(id, name) {
		return E(CodeValidation, "no active conversation to set a mood on", nil)
	}
	return nil
}

// SetTitle names the identity's conversation.
func (e *Engine) SetTitle(id memory.Identity, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return E(CodeValidation, "title is empty", nil)
	}
	if len([]rune(title)) > maxTitleLength {
		return E(CodeValidation, fmt.Sprintf("title is longer than %d characters", maxTitleLength), nil)
	}
	if !e.store.SetTitle(id, title) {
		return E(CodeValidation, "no active conversation to title", nil)
	}
	return nil
}

// AddTags unions tags into the conversation's tag set.
func (e *Engine) AddTags(id memory.Identity, tags []string) error {
	tags = normalizeTags(tags)
	if len(tags) == 0 {
		return E(CodeValidation, "no tags given", nil)
	}
	if !e.store.AddTags(id, tags) {
		return E(CodeValidation, "no active conversation to tag", nil)
	}
	return nil
}

// RemoveTags removes tags from the conversation's tag set.
func (e *Engine) RemoveTags(id memory.Identity, tags []string) error {
	tags = normalizeTags(tags)
	if len(tags) == 0 {
		return E(CodeValidation, "no tags given", nil)
	}
	if !e.store.RemoveTags(id, tags) {
		return E(CodeValidation, "none of those tags are on the conversation", nil)
	}
	return nil
}

// Archive flips the archived flag on the identity's conversation.
func (e *Engine) Archive(id memory.Identity, flag bool) error {
	if !e.store.Archive(id, flag) {
		return E(CodeValidation, "no active conversation to archive", nil)
	}
	return nil
}

// Settings returns the user's settings, falling back to defaults when no
// durable storage is configured.
func (e *Engine) Settings(userID int64) memory.UserSettings {
	return e.settingsFor(userID)
}

// UpdateSetting validates and applies a single named setting, returning
// the full updated settings.
func (e *Engine) UpdateSetting(userID int64, key, value string) (memory.UserSettings, error) {
	if e.adapter == nil {
		return memory.UserSettings{}, E(CodePersistence, "settings storage is not configured", nil)
	}
	settings := e.settingsFor(userID)
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	switch key {
	case "personality":
		value = strings.ToLower(value)
		if !e.registry.Has(value) {
			return settings, E(CodeValidation,
				fmt.Sprintf("unknown personality %q (available: %s)", value, strings.Join(e.registry.Names(), ", ")),
				nil)
		}
		settings.Personality = value
	case "default_mood":
		value = strings.ToLower(value)
		if !e.catalog.Has(value) {
			return settings, E(CodeValidation,
				fmt.Sprintf("unknown mood %q (available: %s)", value, strings.Join(e.catalog.Names(), ", ")),
				nil)
		}
		settings.DefaultMood = value
	case "max_memory_messages":
		n, err := strconv.Atoi(value)
		if err != nil || n < memory.MinMemoryMessages || n > memory.MaxMemoryMessages {
			return settings, E(CodeValidation,
				fmt.Sprintf("max_memory_messages must be a number between %d and %d",
					memory.MinMemoryMessages, memory.MaxMemoryMessages),
				nil)
		}
		settings.MaxMemoryMessages = n
	case "memory_expiry_days":
		n, err := strconv.Atoi(value)
		if err != nil || n < memory.MinExpiryDays || n > memory.MaxExpiryDays {
			return settings, E(CodeValidation,
				fmt.Sprintf("memory_expiry_days must be a number between %d and %d",
					memory.MinExpiryDays, memory.MaxExpiryDays),
				nil)
		}
		settings.MemoryExpiryDays = n
	case "auto_title_conversations", "dm_conversation_preview":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return settings, E(CodeValidation, key+" must be true or false", nil)
		}
		if key == "auto_title_conversations" {
			settings.AutoTitleConversations = b
		} else {
			settings.DMConversationPreview = b
		}
	default:
		return settings, E(CodeValidation,
			"unknown setting "+key+" (available: personality, default_mood, max_memory_messages, memory_expiry_days, auto_title_conversations, dm_conversation_preview)",
			nil)
	}

	if err := e.adapter.SaveSettings(userID, settings); err != nil {
		return settings, E(CodePersistence, "could not save your settings", err)
	}
	return settings, nil
}

// Moods lists the available mood names.
func (e *Engine) Moods() []string { return e.catalog.Names() }

// Personalities lists the available personalities.
func (e *Engine) Personalities() []affect.Personality {
	names := e.registry.Names()
	out := make([]affect.Personality, 0, len(names))
	for _, n := range names {
		out = append(out, e.registry.Get(n))
	}
	return out
}

// Stats reports live conversation counts.
func (e *Engine) Stats() memory.Stats {
	return e.store.Stats()
}

func (e *Engine) settingsFor(userID int64) memory.UserSettings {
	if e.adapter == nil || userID == 0 {
		return memory.DefaultSettings()
	}
	settings, err := e.adapter.Settings(userID)
	if err != nil {
		e.logger.Warn("settings lookup failed, using defaults", "user_id", userID, "error", err)
		return memory.DefaultSettings()
	}
	return settings
}

// seedFor maps user settings onto conversation creation defaults. Channel
// conversations are shared, so per-user history and mood preferences only
// apply to user identities.
func (e *Engine) seedFor(id memory.Identity, settings memory.UserSettings) memory.Seed {
	if id.Kind != memory.KindUser {
		return memory.Seed{}
	}
	limit := settings.MaxMemoryMessages
	if limit < memory.MinMemoryMessages {
		limit = memory.MinMemoryMessages
	}
	if limit > memory.MaxMemoryMessages {
		limit = memory.MaxMemoryMessages
	}
	return memory.Seed{
		Mood:         settings.DefaultMood,
		Personality:  settings.Personality,
		HistoryLimit: limit,
	}
}

func toProviderHistory(msgs []memory.Message) []ai.Message {
	out := make([]ai.Message, 0, len(msgs))
	for _, m := range msgs {
		role := ai.RoleUser
		if m.Role == memory.RoleAssistant {
			role = ai.RoleAssistant
		}
		out = append(out, ai.Message{Role: role, Content: m.Content})
	}
	return out
}

// deriveTitle cuts a title out of the opening message: whitespace
// collapsed, truncated on a rune boundary.
func deriveTitle(content string) string {
	title := strings.Join(strings.Fields(content), " ")
	runes := []rune(title)
	if len(runes) > autoTitleLength {
		title = strings.TrimSpace(string(runes[:autoTitleLength])) + "…"
	}
	return title
}

func normalizeTags(tags []string) []string {
	out := tags[:0:0]
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
