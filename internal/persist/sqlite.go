// Package persist provides the optional durable mirror behind the
// conversation store: a SQLite-backed adapter for deployments that want
// history and settings to survive restarts, and an in-memory adapter for
// everything else. Adapters are write-behind for conversation data — the
// in-memory store stays authoritative — but are the source of truth for
// per-user settings.
package persist

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Mlesn1/GeminiDiscordHelper/internal/memory"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MessageRetention caps how many messages are kept per conversation row.
// Older rows are trimmed on every append.
const MessageRetention = 50

// opTimeout bounds each database operation. The memory.Adapter interface
// is called from hot paths that must not hang on a locked database file.
const opTimeout = 5 * time.Second

// SQLiteStore is a memory.Adapter backed by a SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path, applies the
// standard pragmas, runs migrations, and returns the adapter. logger may
// be nil to use slog.Default().
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite is single-writer by design. Keep a single shared connection so
	// concurrent callers are serialized by database/sql instead of fighting
	// for write locks across multiple underlying connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AppendMessage stores one message row and trims the conversation to the
// retention cap.
func (s *SQLiteStore) AppendMessage(id memory.Identity, conversationID string, msg memory.Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages
			(conversation_id, identity_kind, identity_id, role, content, author_name, author_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		conversationID,
		string(id.Kind),
		id.ID,
		string(msg.Role),
		msg.Content,
		msg.AuthorName,
		msg.AuthorID,
		msg.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("persist: insert message: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM messages
		WHERE conversation_id = ?
		  AND id NOT IN (
			SELECT id FROM messages
			WHERE conversation_id = ?
			ORDER BY id DESC
			LIMIT ?
		  )`,
		conversationID, conversationID, MessageRetention,
	)
	if err != nil {
		return fmt.Errorf("persist: trim messages: %w", err)
	}
	return nil
}

// SaveState upserts the conversation metadata row.
func (s *SQLiteStore) SaveState(id memory.Identity, conversationID string, st memory.State) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tagsJSON, err := json.Marshal(st.Tags)
	if err != nil {
		return fmt.Errorf("persist: marshal tags: %w", err)
	}
	if st.Tags == nil {
		tagsJSON = []byte("[]")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO conversations
			(id, identity_kind, identity_id, mood, energy_level, personality, title, tags, archived, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		conversationID,
		string(id.Kind),
		id.ID,
		st.Mood,
		st.EnergyLevel,
		st.Personality,
		st.Title,
		string(tagsJSON),
		boolToInt(st.Archived),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("persist: upsert conversation: %w", err)
	}
	return nil
}

// Clear deletes every conversation and message row for the identity.
// Settings are left alone.
func (s *SQLiteStore) Clear(id memory.Identity) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM messages WHERE identity_kind = ? AND identity_id = ?`,
		string(id.Kind), id.ID,
	); err != nil {
		return fmt.Errorf("persist: clear messages: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM conversations WHERE identity_kind = ? AND identity_id = ?`,
		string(id.Kind), id.ID,
	); err != nil {
		return fmt.Errorf("persist: clear conversations: %w", err)
	}
	return nil
}

// Settings returns the stored settings for the user, or the defaults when
// none have been saved yet.
func (s *SQLiteStore) Settings(userID int64) (memory.UserSettings, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		out       memory.UserSettings
		autoTitle int
		dmPreview int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT personality, max_memory_messages, memory_expiry_days, default_mood,
		       auto_title_conversations, dm_conversation_preview
		FROM user_settings WHERE user_id = ?`,
		userID,
	).Scan(&out.Personality, &out.MaxMemoryMessages, &out.MemoryExpiryDays,
		&out.DefaultMood, &autoTitle, &dmPreview)
	if err == sql.ErrNoRows {
		return memory.DefaultSettings(), nil
	}
	if err != nil {
		return memory.UserSettings{}, fmt.Errorf("persist: query settings: %w", err)
	}
	out.AutoTitleConversations = autoTitle != 0
	out.DMConversationPreview = dmPreview != 0
	return out, nil
}

// SaveSettings upserts the user's settings row.
func (s *SQLiteStore) SaveSettings(userID int64, settings memory.UserSettings) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO user_settings
			(user_id, personality, max_memory_messages, memory_expiry_days, default_mood,
			 auto_title_conversations, dm_conversation_preview, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID,
		settings.Personality,
		settings.MaxMemoryMessages,
		settings.MemoryExpiryDays,
		settings.DefaultMood,
		boolToInt(settings.AutoTitleConversations),
		boolToInt(settings.DMConversationPreview),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("persist: save settings: %w", err)
	}
	return nil
}

// PruneOlderThan deletes message rows older than the given number of days.
// Intended to run at startup and from a periodic sweep.
func (s *SQLiteStore) PruneOlderThan(days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM messages WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("persist: prune messages: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// runMigrations applies any pending migrations from the embedded FS, in
// filename order, tracked in schema_migrations.
func (s *SQLiteStore) runMigrations() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			description TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var currentVersion int
	err = s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		parts := strings.SplitN(entry.Name(), "_", 2)
		if len(parts) < 2 {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(parts[0], "%d", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}
		description := strings.TrimSuffix(parts[1], ".sql")

		content, err := migrationsFS.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d: %w", version, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, applied_at, description) VALUES (?, ?, ?)",
			version, time.Now(), description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", version, err)
		}

		s.logger.Info("applied migration", "version", fmt.Sprintf("%04d", version), "description", description)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ memory.Adapter = (*SQLiteStore)(nil)
