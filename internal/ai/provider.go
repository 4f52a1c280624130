// Package ai abstracts the text-generation backend. The engine talks to a
// Generator; the concrete implementation (Gemini over HTTP) lives behind
// it so tests can substitute a stub and the provider can be swapped
// without touching conversation logic.
package ai

import (
	"context"
	"errors"

	"github.com/Mlesn1/GeminiDiscordHelper/internal/affect"
)

// ErrRateLimited is returned when the upstream API reports a rate-limiting
// condition (HTTP 429). Callers should surface a try-again message rather
// than treating it as a hard failure.
var ErrRateLimited = errors.New("ai: upstream rate limit exceeded")

// ErrEmptyResponse is returned when the API call succeeds but yields no
// usable text (no candidates, or a candidate with empty parts — typically
// a safety block).
var ErrEmptyResponse = errors.New("ai: empty response from model")

// Role identifies the author of a prior turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn handed to the model.
type Message struct {
	Role    Role
	Content string
}

// Request is the input to a single generation call. Messages holds the
// conversation in chronological order, ending with the user turn to
// answer. System carries persona and style instructions and may be empty.
type Request struct {
	System   string
	Messages []Message
	Params   affect.GenerationParams
}

// Generator produces a reply for a conversation turn.
//
// Implementations must be safe for concurrent use from multiple
// goroutines and should honor ctx for cancellation and deadlines.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
