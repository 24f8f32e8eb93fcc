package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/genapps/genforge/internal/auth"
	"github.com/genapps/genforge/internal/domain"
	"github.com/genapps/genforge/internal/service"
)

// SnapshotItem is one entry in the history listing.
type SnapshotItem struct {
	ID        uuid.UUID `json:"id"`
	Prompt    string    `json:"prompt"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
}

// SnapshotHandler serves the caller's generation history.
type SnapshotHandler struct {
	generations *service.GenerationService
	logger      *slog.Logger
}

// NewSnapshotHandler creates a SnapshotHandler.
func NewSnapshotHandler(generations *service.GenerationService, logger *slog.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		generations: generations,
		logger:      logger,
	}
}

// HandleList handles GET /api/snapshots. Requires RequireUser middleware.
func (h *SnapshotHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			ErrorResponse(w, r, domain.Invalid("handler.snapshots", "limit must be an integer between 1 and 100"), h.logger)
			return
		}
		limit = n
	}

	snaps, err := h.generations.History(r.Context(), claims.Subject, limit)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	items := make([]SnapshotItem, 0, len(snaps))
	for _, snap := range snaps {
		items = append(items, SnapshotItem{
			ID:        snap.ID,
			Prompt:    snap.Prompt,
			Model:     snap.Model,
			CreatedAt: snap.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"snapshots": items}, h.logger)
}

// HandleGet handles GET /api/snapshots/{id}, returning the archived HTML.
func (h *SnapshotHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, domain.Invalid("handler.snapshots", "id must be a valid UUID"), h.logger)
		return
	}

	data, err := h.generations.SnapshotHTML(r.Context(), claims.Subject, id)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write snapshot response", "error", err)
	}
}
