package memory

// Limits for the user-tunable memory settings. Values outside these ranges
// are rejected, not clamped.
const (
	MinMemoryMessages = 10
	MaxMemoryMessages = 100
	MinExpiryDays     = 1
	MaxExpiryDays     = 30
)

// UserSettings is per-user configuration with a lifetime independent from
// any conversation: it survives clears and expiry sweeps. Owned by the
// configured persistence boundary and accessed only through the adapter.
type UserSettings struct {
	Personality            string
	MaxMemoryMessages      int
	MemoryExpiryDays       int
	DefaultMood            string
	AutoTitleConversations bool
	DMConversationPreview  bool
}

// DefaultSettings returns the settings assigned on first reference.
func DefaultSettings() UserSettings {
	return UserSettings{
		Personality:            "balanced",
		MaxMemoryMessages:      10,
		MemoryExpiryDays:       7,
		DefaultMood:            "thoughtful",
		AutoTitleConversations: true,
		DMConversationPreview:  true,
	}
}
