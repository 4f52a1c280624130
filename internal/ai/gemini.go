package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultGeminiBase  = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel = "gemini-1.5-flash"
	defaultTimeout     = 30 * time.Second
	defaultMaxTokens   = 1024

	// defaultRequestsPerMinute is the client-side ceiling applied before a
	// request is even attempted, to stay under the API free-tier quota.
	defaultRequestsPerMinute = 30
)

// GeminiConfig configures the Gemini HTTP provider.
type GeminiConfig struct {
	// APIKey authenticates against the Generative Language API. Required.
	APIKey string

	// Model is the generation model. Defaults to gemini-1.5-flash.
	Model string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// Timeout is the HTTP request timeout. Defaults to 30 s.
	Timeout time.Duration

	// RequestsPerMinute throttles calls client-side before they reach the
	// API. Defaults to 30; negative disables throttling.
	RequestsPerMinute int

	// MaxOutputTokens caps the reply length. Defaults to 1024.
	MaxOutputTokens int
}

// geminiProvider implements Generator against the generateContent endpoint
// with a plain HTTP client. No SDK: the wire format is three small structs.
type geminiProvider struct {
	cfg     GeminiConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewGemini returns a Generator backed by the Gemini API. The returned
// provider is safe for concurrent use.
func NewGemini(cfg GeminiConfig) Generator {
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBase
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = defaultRequestsPerMinute
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = defaultMaxTokens
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute)
	}
	return &geminiProvider{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
	}
}

// --- minimal Gemini wire types ---

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Generate calls models/{model}:generateContent and returns the first
// candidate's text. System instructions are injected as a leading
// user/model exchange, which the generateContent API treats as persona
// context.
func (p *geminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("ai: limiter wait: %w", err)
		}
	}

	var contents []geminiContent
	if req.System != "" {
		contents = append(contents,
			geminiContent{Role: "user", Parts: []geminiPart{{Text: req.System}}},
			geminiContent{Role: "model", Parts: []geminiPart{{Text: "Understood."}}},
		)
	}
	for _, m := range req.Messages {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}

	body := geminiRequest{
		Contents: contents,
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Params.Temperature,
			TopP:            req.Params.TopP,
			TopK:            req.Params.TopK,
			MaxOutputTokens: p.cfg.MaxOutputTokens,
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("ai: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.cfg.BaseURL, p.cfg.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("ai: create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ai: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ai: read response body: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}

	var gem geminiResponse
	if err := json.Unmarshal(respBody, &gem); err != nil {
		return "", fmt.Errorf("ai: decode API response (HTTP %d): %w", resp.StatusCode, err)
	}
	if gem.Error != nil {
		if gem.Error.Status == "RESOURCE_EXHAUSTED" {
			return "", ErrRateLimited
		}
		return "", fmt.Errorf("ai: API error (%s): %s", gem.Error.Status, gem.Error.Message)
	}
	if len(gem.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range gem.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
