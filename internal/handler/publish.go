package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/genapps/genforge/internal/auth"
	"github.com/genapps/genforge/internal/domain"
	"github.com/genapps/genforge/internal/publish"
)

// PublishRequest is the body of POST /api/publish. The access token is the
// user's own GitHub OAuth token; the server never stores it.
type PublishRequest struct {
	RepoName    string `json:"repoName"`
	Description string `json:"description"`
	HTML        string `json:"html"`
	AccessToken string `json:"accessToken"`
}

// PublishResponse is the success body of POST /api/publish.
type PublishResponse struct {
	Success bool   `json:"success"`
	RepoURL string `json:"repoUrl"`
	Commit  string `json:"commit"`
}

// PublishHandler serves the GitHub publishing endpoint.
type PublishHandler struct {
	publisher *publish.Publisher
	logger    *slog.Logger
}

// NewPublishHandler creates a PublishHandler.
func NewPublishHandler(publisher *publish.Publisher, logger *slog.Logger) *PublishHandler {
	return &PublishHandler{
		publisher: publisher,
		logger:    logger,
	}
}

// HandlePublish handles POST /api/publish. Requires RequireUser middleware.
func (h *PublishHandler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.ClaimsFromContext(r.Context()); !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, domain.Invalid("handler.publish", "Request body must be JSON"), h.logger)
		return
	}

	switch {
	case req.RepoName == "":
		ErrorResponse(w, r, domain.Invalid("handler.publish", "repoName is required"), h.logger)
		return
	case req.HTML == "":
		ErrorResponse(w, r, domain.Invalid("handler.publish", "html is required"), h.logger)
		return
	case req.AccessToken == "":
		ErrorResponse(w, r, domain.Invalid("handler.publish", "accessToken is required"), h.logger)
		return
	}

	result, err := h.publisher.Publish(r.Context(), req.AccessToken, req.RepoName, req.Description, "Publish site", []publish.File{
		{Path: "index.html", Content: req.HTML},
	})
	if err != nil {
		ErrorResponse(w, r, domain.Internal(err, "handler.publish", "failed to publish site"), h.logger)
		return
	}

	writeJSON(w, http.StatusOK, PublishResponse{
		Success: true,
		RepoURL: result.RepoURL,
		Commit:  result.CommitSHA,
	}, h.logger)
}
