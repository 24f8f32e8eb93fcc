// Package ai defines the interface for AI-powered website generation.
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/genapps/genforge/internal/domain"
)

// Provider defines the interface for generating a website from a prompt.
type Provider interface {
	// GenerateSite produces the raw model output for a website described
	// by prompt, using the model tier appropriate for the caller's plan.
	GenerateSite(ctx context.Context, params GenerateParams) (string, error)
}

// GenerateParams contains parameters for a single generation call.
type GenerateParams struct {
	Prompt string      // User's description of the site (non-empty)
	Plan   domain.Plan // Selects the upstream model tier
	UserID string      // For usage logging only
}

// Error codes for provider operations
var (
	// EAIKeysExhausted indicates every configured credential failed.
	// Retryable: the upstream is currently unavailable, not permanently broken.
	EAIKeysExhausted = errors.New("all upstream API keys failed")

	// EAIEmptyCompletion indicates the upstream returned a well-formed
	// payload with no usable text content.
	EAIEmptyCompletion = errors.New("upstream returned no completion content")

	// EAINoKeys indicates no credentials are configured at all.
	EAINoKeys = errors.New("no upstream API keys configured")
)

// IsRetryable returns true if the error is a transient upstream condition.
func IsRetryable(err error) bool {
	return errors.Is(err, EAIKeysExhausted) || errors.Is(err, EAIEmptyCompletion)
}

// WrapError wraps an error with context about the AI operation.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("ai %s: %w", operation, err)
}
