// Package mock provides a canned ai.Provider for testing and development.
package mock

import (
	"context"
	"log/slog"

	"github.com/genapps/genforge/internal/ai"
)

const defaultSite = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Mock Site</title>
  <script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-slate-950 text-white">
  <main class="flex min-h-screen items-center justify-center">
    <h1 class="text-4xl font-bold">Mock generated site</h1>
  </main>
</body>
</html>`

// Provider is a mock AI provider for testing and development.
type Provider struct {
	logger *slog.Logger

	// Configurable responses for testing
	GenerateSiteResponse string
	GenerateSiteError    error

	// Call tracking for testing
	GenerateSiteCalls int
	LastParams        ai.GenerateParams
}

// New creates a new mock AI provider.
func New(logger *slog.Logger) *Provider {
	return &Provider{logger: logger}
}

// GenerateSite returns the configured response or a canned default site.
func (p *Provider) GenerateSite(ctx context.Context, params ai.GenerateParams) (string, error) {
	p.GenerateSiteCalls++
	p.LastParams = params

	if p.GenerateSiteError != nil {
		return "", p.GenerateSiteError
	}
	if p.GenerateSiteResponse != "" {
		return p.GenerateSiteResponse, nil
	}
	return defaultSite, nil
}

// Reset clears call counters and custom responses for testing.
func (p *Provider) Reset() {
	p.GenerateSiteCalls = 0
	p.GenerateSiteResponse = ""
	p.GenerateSiteError = nil
	p.LastParams = ai.GenerateParams{}
}
