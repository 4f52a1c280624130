// Package memory implements the identity-keyed conversation store: a
// bounded, expiring history per user or channel plus the mutable affect
// fields (mood, energy, personality, tags, title, archived) that ride along
// with it. All state lives in one mutex-guarded map; an optional
// PersistenceAdapter mirrors mutations to durable storage after the lock is
// released.
package memory

import "strconv"

// IdentityKind discriminates the two conversation key spaces. User and
// channel conversations are fully independent; precedence between them is a
// caller decision.
type IdentityKind string

const (
	KindUser    IdentityKind = "user"
	KindChannel IdentityKind = "channel"
)

// Identity is the closed, tagged key for conversation lookup: a user id or
// a channel id, never both.
type Identity struct {
	Kind IdentityKind
	ID   int64
}

// UserIdentity returns the identity for a user conversation.
func UserIdentity(id int64) Identity {
	return Identity{Kind: KindUser, ID: id}
}

// ChannelIdentity returns the identity for a channel conversation.
func ChannelIdentity(id int64) Identity {
	return Identity{Kind: KindChannel, ID: id}
}

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool {
	return i.Kind == "" || i.ID == 0
}

// String renders the identity as the map/log key, e.g. "user:42".
func (i Identity) String() string {
	return string(i.Kind) + ":" + strconv.FormatInt(i.ID, 10)
}
