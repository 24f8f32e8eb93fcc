package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/genapps/genforge/internal/billing"
	"github.com/genapps/genforge/internal/domain"
)

// maxWebhookBody bounds the webhook payload size. Subscription events are
// a few KB; anything larger is not from the vendor.
const maxWebhookBody = 1 << 20

// WebhookHandler serves the billing vendor's webhook endpoint.
type WebhookHandler struct {
	billing *billing.Service
	secret  string
	logger  *slog.Logger
}

// NewWebhookHandler creates a WebhookHandler. secret is the shared HMAC
// secret configured with the vendor; empty means the endpoint is
// misconfigured and every delivery fails with a server error.
func NewWebhookHandler(billingService *billing.Service, secret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		billing: billingService,
		secret:  secret,
		logger:  logger,
	}
}

// HandleLemonSqueezy handles POST /api/webhooks/lemonsqueezy.
//
// The signature is verified over the exact raw body before any parsing.
// Verified events that cannot be applied (no linked user) still return 200
// so the vendor does not retry them forever.
func (h *WebhookHandler) HandleLemonSqueezy(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		ErrorResponse(w, r, domain.Config("handler.webhook", "webhook secret not configured"), h.logger)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		ErrorResponse(w, r, domain.Internal(err, "handler.webhook", "failed to read request body"), h.logger)
		return
	}

	signature := r.Header.Get(billing.SignatureHeader)
	if !billing.VerifySignature(h.secret, body, signature) {
		ErrorResponse(w, r, domain.Unauthorized("handler.webhook", "Invalid signature"), h.logger)
		return
	}

	var payload billing.EventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		ErrorResponse(w, r, domain.Invalid("handler.webhook", "Invalid webhook payload"), h.logger)
		return
	}

	if err := h.billing.HandleEvent(r.Context(), &payload); err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true}, h.logger)
}
