package domain

import (
	"time"

	"github.com/google/uuid"
)

// UnlimitedCredits is the remainingCredits value reported for paid plans.
const UnlimitedCredits = "unlimited"

// GenerationResult is the outcome of one successful generation request.
type GenerationResult struct {
	HTML             string
	Plan             Plan
	RemainingCredits int  // Meaningful only when Unlimited is false
	Unlimited        bool // Paid plans report "unlimited" instead of a count
	Timestamp        time.Time
}

// SiteSnapshot records a generated site stored for the owner's history.
type SiteSnapshot struct {
	ID         uuid.UUID
	UserID     string
	Prompt     string
	Model      string
	StorageKey string
	CreatedAt  time.Time
}
