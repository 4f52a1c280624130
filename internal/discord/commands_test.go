package discord

import (
	"testing"

	"github.com/Mlesn1/GeminiDiscordHelper/internal/memory"
)

func TestTagSummary(t *testing.T) {
	snap := &memory.Conversation{Tags: []string{"go", "help"}}
	if got := tagSummary(snap, true); got != "🏷️ Tags: go, help" {
		t.Errorf("tagSummary = %q", got)
	}

	// The conversation may be swept between a tag mutation and the
	// follow-up snapshot; a missing snapshot must not be dereferenced.
	if got := tagSummary(nil, false); got != "🏷️ No tags on this conversation." {
		t.Errorf("tagSummary(missing) = %q", got)
	}

	if got := tagSummary(&memory.Conversation{}, true); got != "🏷️ No tags on this conversation." {
		t.Errorf("tagSummary(empty) = %q", got)
	}
}
