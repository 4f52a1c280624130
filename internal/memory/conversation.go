package memory

import (
	"sort"
	"time"
)

// Role marks who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a conversation. Immutable once created.
type Message struct {
	Role       Role
	Content    string
	CreatedAt  time.Time
	AuthorName string
	AuthorID   int64
}

// Conversation is the live state for one identity. Instances are owned
// exclusively by the Store; fields must only be touched while the store
// lock is held. Reads outside the store go through snapshots.
type Conversation struct {
	ID           string // stable UUID, used as the persistence key
	Identity     Identity
	Messages     []Message // oldest first, bounded by historyLimit
	LastActivity time.Time
	Mood         string
	EnergyLevel  float64
	Personality  string
	Title        string
	Tags         []string // sorted, unique
	Archived     bool

	historyLimit int
}

// append adds a message and trims the history FIFO to the limit. Must be
// called with the store lock held.
func (c *Conversation) append(msg Message) {
	c.Messages = append(c.Messages, msg)
	c.LastActivity = msg.CreatedAt
	if excess := len(c.Messages) - c.historyLimit; excess > 0 {
		c.Messages = c.Messages[excess:]
	}
}

// preview returns the last n messages in chronological order. Must be
// called with the store lock held; the result shares no storage with the
// live slice.
func (c *Conversation) preview(n int) []Message {
	if n > len(c.Messages) {
		n = len(c.Messages)
	}
	if n <= 0 {
		return nil
	}
	out := make([]Message, n)
	copy(out, c.Messages[len(c.Messages)-n:])
	return out
}

// expired reports whether the conversation has been idle longer than ttl.
func (c *Conversation) expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(c.LastActivity) > ttl
}

// addTags unions tags into the tag set, keeping it sorted and unique.
// Returns false when the incoming list is empty.
func (c *Conversation) addTags(tags []string) bool {
	if len(tags) == 0 {
		return false
	}
	seen := make(map[string]bool, len(c.Tags)+len(tags))
	for _, t := range c.Tags {
		seen[t] = true
	}
	for _, t := range tags {
		if t != "" {
			seen[t] = true
		}
	}
	c.Tags = c.Tags[:0]
	for t := range seen {
		c.Tags = append(c.Tags, t)
	}
	sort.Strings(c.Tags)
	return true
}

// removeTags drops the given tags from the tag set. Returns false when none
// of them were present.
func (c *Conversation) removeTags(tags []string) bool {
	if len(tags) == 0 || len(c.Tags) == 0 {
		return false
	}
	drop := make(map[string]bool, len(tags))
	for _, t := range tags {
		drop[t] = true
	}
	kept := c.Tags[:0]
	removed := false
	for _, t := range c.Tags {
		if drop[t] {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	c.Tags = kept
	return removed
}

// snapshot returns a deep copy safe to read without the store lock.
func (c *Conversation) snapshot() *Conversation {
	cp := *c
	cp.Messages = make([]Message, len(c.Messages))
	copy(cp.Messages, c.Messages)
	cp.Tags = make([]string, len(c.Tags))
	copy(cp.Tags, c.Tags)
	return &cp
}

// state extracts the mirrorable affect fields. Must be called with the
// store lock held.
func (c *Conversation) state() State {
	tags := make([]string, len(c.Tags))
	copy(tags, c.Tags)
	return State{
		Mood:        c.Mood,
		EnergyLevel: c.EnergyLevel,
		Personality: c.Personality,
		Title:       c.Title,
		Tags:        tags,
		Archived:    c.Archived,
	}
}
