// Package billing handles Lemon Squeezy subscription webhooks: signature
// verification, variant-to-plan mapping, and applying plan changes to the
// account ledger.
package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/genapps/genforge/internal/domain"
)

// Webhook event names Lemon Squeezy sends that we act on.
const (
	EventSubscriptionCreated   = "subscription_created"
	EventSubscriptionUpdated   = "subscription_updated"
	EventSubscriptionCancelled = "subscription_cancelled"
)

// SignatureHeader is the request header carrying the hex HMAC of the body.
const SignatureHeader = "X-Signature"

// EventPayload mirrors the Lemon Squeezy webhook body. custom_data.user_id
// is set at checkout time to link the subscription to our account; events
// without it cannot be applied.
type EventPayload struct {
	Meta struct {
		EventName  string `json:"event_name"`
		CustomData struct {
			UserID string `json:"user_id"`
		} `json:"custom_data"`
	} `json:"meta"`
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			UserEmail   string `json:"user_email"`
			VariantName string `json:"variant_name"`
			Status      string `json:"status"`
		} `json:"attributes"`
	} `json:"data"`
}

// VerifySignature checks the vendor's HMAC-SHA256 signature over the exact
// raw request body. The signature header carries the lowercase hex digest.
// Comparison is constant time.
func VerifySignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// PlanFromVariant maps the vendor's human-named subscription variant to a
// plan tier by substring. Plus is checked first since variant names are
// free-form and "plus" wins over "pro" when both appear.
func PlanFromVariant(variantName string) domain.Plan {
	name := strings.ToUpper(variantName)
	if strings.Contains(name, "PLUS") {
		return domain.PlanPlus
	}
	if strings.Contains(name, "PRO") {
		return domain.PlanPro
	}
	return domain.PlanFree
}
