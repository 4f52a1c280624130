package memory

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Mlesn1/GeminiDiscordHelper/internal/affect"
)

// Config holds the store tunables. Zero values take the documented
// defaults.
type Config struct {
	// MaxHistory is the per-conversation message cap used when a seed does
	// not override it. Default: 10.
	MaxHistory int

	// Expiry is the idle duration after which a conversation is reaped.
	// Default: 1 hour.
	Expiry time.Duration

	// CleanupInterval is the minimum spacing between expiry sweeps. Sweeps
	// piggyback on read/write calls; there is no dedicated timer.
	// Default: 1 hour.
	CleanupInterval time.Duration

	// DefaultMood and DefaultPersonality seed fresh conversations when the
	// seed leaves them empty.
	DefaultMood        string
	DefaultPersonality string
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxHistory:         10,
		Expiry:             time.Hour,
		CleanupInterval:    time.Hour,
		DefaultMood:        affect.DefaultMood,
		DefaultPersonality: affect.DefaultPersonality,
	}
}

// Seed carries the per-user defaults applied when a conversation is created
// lazily. Zero fields fall back to the store config.
type Seed struct {
	Mood         string
	Personality  string
	HistoryLimit int
}

// initialEnergy is the energy level assigned to fresh conversations.
const initialEnergy = 3.0

// Store owns all live conversations, keyed by identity. It is safe for
// concurrent use: the conversation map and every conversation are guarded
// by one mutex, and no persistence call happens while it is held.
type Store struct {
	mu        sync.Mutex
	cfg       Config
	energy    *affect.EnergyTracker
	adapter   Adapter // nil disables mirroring
	logger    *slog.Logger
	convos    map[string]*Conversation
	lastSweep time.Time
}

// NewStore creates a Store. adapter may be nil for memory-only operation;
// logger may be nil to use slog.Default().
func NewStore(cfg Config, energy *affect.EnergyTracker, adapter Adapter, logger *slog.Logger) *Store {
	def := DefaultConfig()
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = def.MaxHistory
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = def.Expiry
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	if cfg.DefaultMood == "" {
		cfg.DefaultMood = def.DefaultMood
	}
	if cfg.DefaultPersonality == "" {
		cfg.DefaultPersonality = def.DefaultPersonality
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		cfg:     cfg,
		energy:  energy,
		adapter: adapter,
		logger:  logger,
		convos:  make(map[string]*Conversation),
	}
}

// GetOrCreate returns the live conversation for id, creating one seeded
// from the given defaults when absent. Concurrent calls for the same new
// identity observe the same instance — creation is a single
// create-if-absent step under the store lock, never check-then-act.
//
// The returned pointer is owned by the store; callers must treat it as
// read-only and prefer Snapshot for field access outside tests.
func (s *Store) GetOrCreate(id Identity, seed Seed) *Conversation {
	return s.getOrCreateAt(id, seed, time.Now())
}

func (s *Store) getOrCreateAt(id Identity, seed Seed, now time.Time) *Conversation {
	s.mu.Lock()
	s.maybeSweepLocked(now)
	c, created := s.getOrCreateLocked(id, seed, now)
	var st State
	var convID string
	if created {
		st = c.state()
		convID = c.ID
	}
	s.mu.Unlock()

	if created {
		s.mirrorState(id, convID, st)
	}
	return c
}

// getOrCreateLocked is the create-if-absent core. Must be called with the
// store lock held.
func (s *Store) getOrCreateLocked(id Identity, seed Seed, now time.Time) (*Conversation, bool) {
	if c, ok := s.convos[id.String()]; ok {
		return c, false
	}
	c := s.fresh(id, seed, now)
	s.convos[id.String()] = c
	return c, true
}

func (s *Store) fresh(id Identity, seed Seed, now time.Time) *Conversation {
	mood := seed.Mood
	if mood == "" {
		mood = s.cfg.DefaultMood
	}
	personality := seed.Personality
	if personality == "" {
		personality = s.cfg.DefaultPersonality
	}
	limit := seed.HistoryLimit
	if limit <= 0 {
		limit = s.cfg.MaxHistory
	}
	return &Conversation{
		ID:           uuid.New().String(),
		Identity:     id,
		LastActivity: now,
		Mood:         mood,
		EnergyLevel:  initialEnergy,
		Personality:  personality,
		historyLimit: limit,
	}
}

// AddMessage appends a turn to the identity's conversation (creating it
// when absent), trims the history FIFO, and — for user turns — feeds the
// message into the energy tracker.
func (s *Store) AddMessage(id Identity, seed Seed, role Role, content, authorName string, authorID int64) {
	s.addMessageAt(id, seed, role, content, authorName, authorID, time.Now())
}

func (s *Store) addMessageAt(id Identity, seed Seed, role Role, content, authorName string, authorID int64, now time.Time) {
	msg := Message{
		Role:       role,
		Content:    content,
		CreatedAt:  now,
		AuthorName: authorName,
		AuthorID:   authorID,
	}

	s.mu.Lock()
	s.maybeSweepLocked(now)
	c, _ := s.getOrCreateLocked(id, seed, now)
	c.append(msg)
	if role == RoleUser && s.energy != nil {
		c.EnergyLevel = s.energy.Next(c.EnergyLevel, c.Mood, true, content)
	}
	st := c.state()
	convID := c.ID
	s.mu.Unlock()

	if s.adapter != nil {
		if err := s.adapter.AppendMessage(id, convID, msg); err != nil {
			s.logger.Warn("persistence append failed, continuing memory-only",
				"identity", id.String(), "error", err)
		}
	}
	s.mirrorState(id, convID, st)
}

// Clear replaces the identity's conversation with nothing; the next
// GetOrCreate starts fresh. Returns whether a live conversation existed.
// The persistence copy is cleared regardless of the in-memory result.
func (s *Store) Clear(id Identity) bool {
	s.mu.Lock()
	_, existed := s.convos[id.String()]
	delete(s.convos, id.String())
	s.mu.Unlock()

	if s.adapter != nil {
		if err := s.adapter.Clear(id); err != nil {
			s.logger.Warn("persistence clear failed, continuing memory-only",
				"identity", id.String(), "error", err)
		}
	}
	return existed
}

// Preview returns the identity's last n messages in chronological order,
// or nil when no conversation exists.
func (s *Store) Preview(id Identity, n int) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convos[id.String()]
	if !ok {
		return nil
	}
	return c.preview(n)
}

// Snapshot returns a deep copy of the identity's conversation, or false
// when none exists.
func (s *Store) Snapshot(id Identity) (*Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convos[id.String()]
	if !ok {
		return nil, false
	}
	return c.snapshot(), true
}

// SetMood assigns a mood to an existing conversation. Returns false when no
// conversation is live.
func (s *Store) SetMood(id Identity, mood string) bool {
	return s.mutate(id, func(c *Conversation) bool {
		c.Mood = mood
		return true
	})
}

// SetPersonality assigns a personality to the identity's conversation,
// creating it when absent. Name validation is the caller's job.
func (s *Store) SetPersonality(id Identity, seed Seed, name string) {
	now := time.Now()
	s.mu.Lock()
	s.maybeSweepLocked(now)
	c, _ := s.getOrCreateLocked(id, seed, now)
	c.Personality = name
	st := c.state()
	convID := c.ID
	s.mu.Unlock()

	s.mirrorState(id, convID, st)
}

// SetTitle sets the conversation title. Returns false when no conversation
// is live.
func (s *Store) SetTitle(id Identity, title string) bool {
	if title == "" {
		return false
	}
	return s.mutate(id, func(c *Conversation) bool {
		c.Title = title
		return true
	})
}

// AddTags unions tags into the conversation's tag set (idempotent).
// Returns false for an empty tag list or when no conversation is live.
func (s *Store) AddTags(id Identity, tags []string) bool {
	return s.mutate(id, func(c *Conversation) bool {
		return c.addTags(tags)
	})
}

// RemoveTags removes tags from the conversation's tag set. Returns false
// when nothing was removed or no conversation is live.
func (s *Store) RemoveTags(id Identity, tags []string) bool {
	return s.mutate(id, func(c *Conversation) bool {
		return c.removeTags(tags)
	})
}

// Archive flips the archived flag. Returns false when no conversation is
// live.
func (s *Store) Archive(id Identity, flag bool) bool {
	return s.mutate(id, func(c *Conversation) bool {
		c.Archived = flag
		return true
	})
}

// Stats reports live conversation counts for the status page.
type Stats struct {
	Users    int
	Channels int
}

// Stats returns the current live conversation counts.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st Stats
	for _, c := range s.convos {
		switch c.Identity.Kind {
		case KindUser:
			st.Users++
		case KindChannel:
			st.Channels++
		}
	}
	return st
}

// mutate runs fn on the live conversation under the lock and mirrors the
// resulting state when fn reports a change. Returns false when no
// conversation exists or fn made no change.
func (s *Store) mutate(id Identity, fn func(*Conversation) bool) bool {
	s.mu.Lock()
	c, ok := s.convos[id.String()]
	if !ok {
		s.mu.Unlock()
		return false
	}
	changed := fn(c)
	var st State
	var convID string
	if changed {
		st = c.state()
		convID = c.ID
	}
	s.mu.Unlock()

	if changed {
		s.mirrorState(id, convID, st)
	}
	return changed
}

// maybeSweepLocked reaps idle conversations, at most once per
// CleanupInterval. Idle age is evaluated per conversation at delete time,
// under the same lock as creation, so a sweep can never reap a conversation
// created after the sweep started.
func (s *Store) maybeSweepLocked(now time.Time) {
	if now.Sub(s.lastSweep) < s.cfg.CleanupInterval {
		return
	}
	s.lastSweep = now

	reaped := 0
	for key, c := range s.convos {
		if c.expired(now, s.cfg.Expiry) {
			delete(s.convos, key)
			reaped++
		}
	}
	if reaped > 0 {
		s.logger.Info("expired conversations reaped", "count", reaped, "live", len(s.convos))
	}
}

func (s *Store) mirrorState(id Identity, convID string, st State) {
	if s.adapter == nil {
		return
	}
	if err := s.adapter.SaveState(id, convID, st); err != nil {
		s.logger.Warn("persistence state save failed, continuing memory-only",
			"identity", id.String(), "error", err)
	}
}
