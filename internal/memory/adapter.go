package memory

// State is the mirrorable affect snapshot of a conversation.
type State struct {
	Mood        string
	EnergyLevel float64
	Personality string
	Title       string
	Tags        []string
	Archived    bool
}

// Adapter mirrors store mutations to durable storage and owns user
// settings. Presence is a runtime configuration choice: the store accepts a
// nil Adapter and degrades to memory-only operation. Implementations must
// be safe for concurrent use and must never be called while the store lock
// is held — mirror writes are eventual, not atomic, with respect to the
// in-memory state.
type Adapter interface {
	// AppendMessage mirrors one turn of the identified conversation.
	AppendMessage(id Identity, conversationID string, msg Message) error

	// SaveState mirrors the conversation's affect fields.
	SaveState(id Identity, conversationID string, st State) error

	// Clear removes the durable copy of the identity's active conversation.
	Clear(id Identity) error

	// Settings returns the user's settings, creating defaults on first
	// reference.
	Settings(userID int64) (UserSettings, error)

	// SaveSettings persists the user's settings.
	SaveSettings(userID int64, s UserSettings) error

	// Close releases the underlying resources.
	Close() error
}
