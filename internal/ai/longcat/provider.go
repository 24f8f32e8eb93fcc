// Package longcat implements the ai.Provider interface against the LongCat
// chat-completion API with ordered credential failover.
package longcat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/genapps/genforge/internal/ai"
	"github.com/genapps/genforge/internal/domain"
	"github.com/genapps/genforge/internal/metrics"
)

const (
	// DefaultBaseURL is the chat-completions endpoint used when no
	// override is configured.
	DefaultBaseURL = "https://api.longcat.chat/openai/v1/chat/completions"

	// DefaultAttemptTimeout bounds a single credential attempt so that
	// rotating through every key still fits the request budget.
	DefaultAttemptTimeout = 45 * time.Second

	requestTemperature = 0.7
	requestMaxTokens   = 16000
)

// Config contains configuration for the LongCat provider.
type Config struct {
	BaseURL        string
	APIKeys        []string // Ordered; tried first to last
	AttemptTimeout time.Duration
}

// Provider implements ai.Provider using the LongCat chat-completion API.
//
// A single logical generation fans out over the configured credentials:
// each key gets one attempt, any non-success response or transport error
// advances to the next key, and only full exhaustion fails the call.
type Provider struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// New creates a new LongCat provider. The credential list must be non-empty;
// an empty list is an operator configuration error, surfaced at startup.
func New(config Config, logger *slog.Logger) (*Provider, error) {
	if len(config.APIKeys) == 0 {
		return nil, ai.EAINoKeys
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.AttemptTimeout == 0 {
		config.AttemptTimeout = DefaultAttemptTimeout
	}

	return &Provider{
		config: config,
		client: &http.Client{Timeout: config.AttemptTimeout},
		logger: logger,
	}, nil
}

// GenerateSite requests a website generation, rotating through credentials
// until one succeeds or the list is exhausted.
func (p *Provider) GenerateSite(ctx context.Context, params ai.GenerateParams) (string, error) {
	model := domain.PolicyFor(params.Plan).Model

	body, err := json.Marshal(apiRequest{
		Model: model,
		Messages: []apiMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: params.Prompt + enhancementPrompt},
		},
		Temperature: requestTemperature,
		MaxTokens:   requestMaxTokens,
	})
	if err != nil {
		return "", ai.WrapError("marshal request", err)
	}

	for i, key := range p.config.APIKeys {
		content, err := p.attempt(ctx, key, body)
		if err == nil {
			return content, nil
		}
		// A parent-context cancellation aborts the rotation outright;
		// everything else just burns this credential.
		if ctx.Err() != nil {
			return "", ai.WrapError("generate site", ctx.Err())
		}
		metrics.UpstreamAttemptsTotal.WithLabelValues("failure").Inc()
		p.logger.Warn("upstream key failed, rotating",
			"key_index", i,
			"model", model,
			"error", err,
		)
	}

	return "", ai.WrapError("generate site", ai.EAIKeysExhausted)
}

// attempt issues one request with one credential.
func (p *Provider) attempt(ctx context.Context, apiKey string, body []byte) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.config.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, p.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transport: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("upstream status %d: %s", resp.StatusCode, truncate(string(respBody), 256))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	content := apiResp.firstContent()
	if strings.TrimSpace(content) == "" {
		// A success status with nothing usable inside must not silently
		// become an empty page.
		return "", ai.EAIEmptyCompletion
	}

	metrics.UpstreamAttemptsTotal.WithLabelValues("success").Inc()
	return content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// API request/response types

type apiRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Choices []apiChoice `json:"choices"`
}

type apiChoice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

func (r *apiResponse) firstContent() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}
