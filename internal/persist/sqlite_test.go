package persist

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Mlesn1/GeminiDiscordHelper/internal/memory"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s.Close()

	s, err = OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	s.Close()
}

func TestAppendMessageRetention(t *testing.T) {
	s := openTestStore(t)
	id := memory.UserIdentity(42)
	const convID = "conv-1"

	for i := 0; i < MessageRetention+10; i++ {
		msg := memory.Message{
			Role:      memory.RoleUser,
			Content:   "hello",
			CreatedAt: time.Now(),
		}
		if err := s.AppendMessage(id, convID, msg); err != nil {
			t.Fatalf("AppendMessage %d: %v", i, err)
		}
	}

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, convID).Scan(&count)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != MessageRetention {
		t.Errorf("retained %d messages, want %d", count, MessageRetention)
	}
}

func TestClearRemovesIdentityRows(t *testing.T) {
	s := openTestStore(t)
	keep := memory.UserIdentity(1)
	gone := memory.UserIdentity(2)

	for _, fix := range []struct {
		id     memory.Identity
		convID string
	}{{keep, "conv-keep"}, {gone, "conv-gone"}} {
		if err := s.SaveState(fix.id, fix.convID, memory.State{Mood: "thoughtful"}); err != nil {
			t.Fatalf("SaveState: %v", err)
		}
		msg := memory.Message{Role: memory.RoleUser, Content: "hi", CreatedAt: time.Now()}
		if err := s.AppendMessage(fix.id, fix.convID, msg); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}

	if err := s.Clear(gone); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	var convs, msgs int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM conversations`).Scan(&convs); err != nil {
		t.Fatal(err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&msgs); err != nil {
		t.Fatal(err)
	}
	if convs != 1 || msgs != 1 {
		t.Errorf("after clear: %d conversations, %d messages, want 1 and 1", convs, msgs)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s := openTestStore(t)

	// Unsaved users get the defaults.
	got, err := s.Settings(7)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if got != memory.DefaultSettings() {
		t.Errorf("unsaved settings = %+v, want defaults", got)
	}

	want := memory.UserSettings{
		Personality:            "creative",
		MaxMemoryMessages:      25,
		MemoryExpiryDays:       14,
		DefaultMood:            "playful",
		AutoTitleConversations: false,
		DMConversationPreview:  true,
	}
	if err := s.SaveSettings(7, want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	got, err = s.Settings(7)
	if err != nil {
		t.Fatalf("Settings after save: %v", err)
	}
	if got != want {
		t.Errorf("settings = %+v, want %+v", got, want)
	}
}

func TestSaveStateUpsert(t *testing.T) {
	s := openTestStore(t)
	id := memory.ChannelIdentity(9)

	if err := s.SaveState(id, "conv-9", memory.State{Mood: "calm", EnergyLevel: 1}); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	st := memory.State{
		Mood:        "excited",
		EnergyLevel: 4.5,
		Personality: "technical",
		Title:       "deployment chat",
		Tags:        []string{"infra", "release"},
		Archived:    true,
	}
	if err := s.SaveState(id, "conv-9", st); err != nil {
		t.Fatalf("SaveState update: %v", err)
	}

	var (
		mood, tags string
		archived   int
	)
	err := s.db.QueryRow(`SELECT mood, tags, archived FROM conversations WHERE id = ?`, "conv-9").
		Scan(&mood, &tags, &archived)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if mood != "excited" || archived != 1 {
		t.Errorf("row = mood %q archived %d, want excited/1", mood, archived)
	}
	if tags != `["infra","release"]` {
		t.Errorf("tags = %s", tags)
	}
}

func TestPruneOlderThan(t *testing.T) {
	s := openTestStore(t)
	id := memory.UserIdentity(5)

	old := memory.Message{Role: memory.RoleUser, Content: "old", CreatedAt: time.Now().AddDate(0, 0, -10)}
	fresh := memory.Message{Role: memory.RoleUser, Content: "fresh", CreatedAt: time.Now()}
	if err := s.AppendMessage(id, "conv-5", old); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendMessage(id, "conv-5", fresh); err != nil {
		t.Fatal(err)
	}

	n, err := s.PruneOlderThan(7)
	if err != nil {
		t.Fatalf("PruneOlderThan: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d rows, want 1", n)
	}
}
