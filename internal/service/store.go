// Package service implements the business logic of the generation pipeline:
// credit accounting, plan sync, and the generate/extract/watermark flow.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/genapps/genforge/internal/domain"
)

// AccountStore is the persistence contract the services depend on. The
// Postgres implementation lives in the repository package; tests substitute
// an in-memory fake.
type AccountStore interface {
	// GetOrCreate fetches the account, lazily creating it with free plan
	// defaults on first sight of the identity.
	GetOrCreate(ctx context.Context, userID string) (*domain.Account, error)

	// ResetDailyCredits refills credits and stamps the reset time,
	// returning the refilled balance.
	ResetDailyCredits(ctx context.Context, userID string, credits int, now time.Time) (int, error)

	// DecrementCredit atomically spends one credit with a floor at zero,
	// returning the post-decrement balance. Returns repository.ErrNoCredits
	// when the balance was already zero.
	DecrementCredit(ctx context.Context, userID string) (int, error)

	// UpdatePlan changes the plan, optionally overwriting the balance.
	UpdatePlan(ctx context.Context, userID string, plan domain.Plan, credits *int) error

	// SaveSnapshot records a generated site in the owner's history.
	SaveSnapshot(ctx context.Context, snap domain.SiteSnapshot) error

	// GetSnapshot fetches one snapshot by id, scoped to its owner.
	// Returns repository.ErrSnapshotNotFound when absent.
	GetSnapshot(ctx context.Context, userID string, id uuid.UUID) (*domain.SiteSnapshot, error)

	// ListSnapshots returns the user's most recent snapshots, newest first.
	ListSnapshots(ctx context.Context, userID string, limit int) ([]domain.SiteSnapshot, error)
}
