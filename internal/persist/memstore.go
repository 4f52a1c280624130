package persist

import (
	"sync"

	"github.com/Mlesn1/GeminiDiscordHelper/internal/memory"
)

// MemStore is a memory.Adapter that keeps user settings in a map and
// discards conversation writes. It backs deployments that run without a
// database: settings still behave consistently within a process lifetime,
// they just do not survive a restart.
type MemStore struct {
	mu       sync.Mutex
	settings map[int64]memory.UserSettings
}

// NewMemStore creates an empty in-memory adapter.
func NewMemStore() *MemStore {
	return &MemStore{settings: make(map[int64]memory.UserSettings)}
}

func (m *MemStore) AppendMessage(memory.Identity, string, memory.Message) error { return nil }

func (m *MemStore) SaveState(memory.Identity, string, memory.State) error { return nil }

func (m *MemStore) Clear(memory.Identity) error { return nil }

func (m *MemStore) Settings(userID int64) (memory.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.settings[userID]; ok {
		return s, nil
	}
	return memory.DefaultSettings(), nil
}

func (m *MemStore) SaveSettings(userID int64, s memory.UserSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[userID] = s
	return nil
}

func (m *MemStore) Close() error { return nil }

var _ memory.Adapter = (*MemStore)(nil)
