package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/genapps/genforge/internal/domain"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "whsec-test"
	body := []byte(`{"meta":{"event_name":"subscription_created"}}`)

	t.Run("valid signature accepted", func(t *testing.T) {
		assert.True(t, VerifySignature(secret, body, sign(secret, body)))
	})

	t.Run("mutated body rejected", func(t *testing.T) {
		signature := sign(secret, body)
		tampered := []byte(`{"meta":{"event_name":"subscription_cancelled"}}`)
		assert.False(t, VerifySignature(secret, tampered, signature))
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		assert.False(t, VerifySignature(secret, body, sign("other-secret", body)))
	})

	t.Run("empty signature rejected", func(t *testing.T) {
		assert.False(t, VerifySignature(secret, body, ""))
	})

	t.Run("garbage signature rejected", func(t *testing.T) {
		assert.False(t, VerifySignature(secret, body, "not-a-hex-digest"))
	})
}

func TestPlanFromVariant(t *testing.T) {
	testCases := []struct {
		variant string
		want    domain.Plan
	}{
		{"GenForge Plus Monthly", domain.PlanPlus},
		{"GenForge Pro Monthly", domain.PlanPro},
		{"PRO Annual", domain.PlanPro},
		{"plus yearly", domain.PlanPlus},
		{"Pro Plus Bundle", domain.PlanPlus},
		{"Starter", domain.PlanFree},
		{"", domain.PlanFree},
	}

	for _, tc := range testCases {
		t.Run(tc.variant, func(t *testing.T) {
			assert.Equal(t, tc.want, PlanFromVariant(tc.variant))
		})
	}
}
