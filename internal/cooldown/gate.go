// Package cooldown rate-limits conversational triggers across three
// scopes: per user, per channel, and per user-within-channel. Each scope
// keeps its own last-trigger timestamp and window; the user+channel pair
// gets the longest window so one person cannot dominate a single room
// even when their global allowance has recovered.
package cooldown

import (
	"strconv"
	"sync"
	"time"
)

// Scope names the cooldown tier that blocked (or would stamp) a trigger.
type Scope string

const (
	ScopeUser        Scope = "user"
	ScopeChannel     Scope = "channel"
	ScopeUserChannel Scope = "user_channel"
)

// DefaultWindow is the base user cooldown when none is configured.
const DefaultWindow = 60 * time.Second

// Decision is the outcome of a gate check. RetryAfter is only meaningful
// when Allowed is false, and names the wait until the blocking scope
// reopens.
type Decision struct {
	Allowed    bool
	Scope      Scope
	RetryAfter time.Duration
}

// Gate tracks last-trigger times per scope. The channel window is half the
// user window and the user+channel window one and a half times it, both
// derived at construction. Safe for concurrent use.
type Gate struct {
	mu          sync.Mutex
	userWindow  time.Duration
	chanWindow  time.Duration
	pairWindow  time.Duration
	users       map[int64]time.Time
	channels    map[int64]time.Time
	userChannel map[string]time.Time
}

// NewGate builds a Gate from the base user window. Non-positive windows
// fall back to DefaultWindow.
func NewGate(window time.Duration) *Gate {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Gate{
		userWindow:  window,
		chanWindow:  window / 2,
		pairWindow:  window + window/2,
		users:       make(map[int64]time.Time),
		channels:    make(map[int64]time.Time),
		userChannel: make(map[string]time.Time),
	}
}

// Check evaluates all applicable scopes for the user/channel pair and, if
// every one is clear, stamps them all in the same critical section. A zero
// userID or channelID skips that identity's scopes (direct messages carry
// no channel ID). Denial reports the first violated scope in user,
// channel, user+channel order and leaves every timestamp untouched.
func (g *Gate) Check(userID, channelID int64) Decision {
	return g.checkAt(userID, channelID, time.Now())
}

func (g *Gate) checkAt(userID, channelID int64, now time.Time) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	if userID != 0 {
		if d, ok := g.blocked(g.users[userID], g.userWindow, now); ok {
			return Decision{Scope: ScopeUser, RetryAfter: d}
		}
	}
	if channelID != 0 {
		if d, ok := g.blocked(g.channels[channelID], g.chanWindow, now); ok {
			return Decision{Scope: ScopeChannel, RetryAfter: d}
		}
	}
	if userID != 0 && channelID != 0 {
		if d, ok := g.blocked(g.userChannel[pairKey(userID, channelID)], g.pairWindow, now); ok {
			return Decision{Scope: ScopeUserChannel, RetryAfter: d}
		}
	}

	if userID != 0 {
		g.users[userID] = now
	}
	if channelID != 0 {
		g.channels[channelID] = now
	}
	if userID != 0 && channelID != 0 {
		g.userChannel[pairKey(userID, channelID)] = now
	}
	return Decision{Allowed: true}
}

// Reset forgets every scope involving the given user, reopening them
// immediately. Channel-only scopes are left alone.
func (g *Gate) Reset(userID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.users, userID)
	prefix := strconv.FormatInt(userID, 10) + "/"
	for key := range g.userChannel {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(g.userChannel, key)
		}
	}
}

func (g *Gate) blocked(last time.Time, window time.Duration, now time.Time) (time.Duration, bool) {
	if last.IsZero() {
		return 0, false
	}
	elapsed := now.Sub(last)
	if elapsed >= window {
		return 0, false
	}
	return window - elapsed, true
}

func pairKey(userID, channelID int64) string {
	return strconv.FormatInt(userID, 10) + "/" + strconv.FormatInt(channelID, 10)
}
