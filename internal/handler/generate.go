// Package handler contains the HTTP handlers for the GenForge API.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/genapps/genforge/internal/auth"
	"github.com/genapps/genforge/internal/domain"
	"github.com/genapps/genforge/internal/service"
)

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateResponse is the success body of POST /api/generate.
// RemainingCredits is a number for metered plans and the string "unlimited"
// for paid plans.
type GenerateResponse struct {
	Success          bool        `json:"success"`
	HTML             string      `json:"html"`
	Plan             domain.Plan `json:"plan"`
	Timestamp        time.Time   `json:"timestamp"`
	RemainingCredits any         `json:"remainingCredits"`
}

// GenerateHandler serves the website generation endpoint.
type GenerateHandler struct {
	generations *service.GenerationService
	logger      *slog.Logger
}

// NewGenerateHandler creates a GenerateHandler.
func NewGenerateHandler(generations *service.GenerationService, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{
		generations: generations,
		logger:      logger,
	}
}

// HandleGenerate handles POST /api/generate. Requires RequireUser middleware.
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, domain.Invalid("handler.generate", "Request body must be JSON with a prompt field"), h.logger)
		return
	}

	result, err := h.generations.Generate(r.Context(), claims.Subject, req.Prompt)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	resp := GenerateResponse{
		Success:   true,
		HTML:      result.HTML,
		Plan:      result.Plan,
		Timestamp: result.Timestamp,
	}
	if result.Unlimited {
		resp.RemainingCredits = domain.UnlimitedCredits
	} else {
		resp.RemainingCredits = result.RemainingCredits
	}

	writeJSON(w, http.StatusOK, resp, h.logger)
}
