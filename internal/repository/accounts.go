// Package repository provides Postgres-backed persistence for accounts and
// generation history.
//
// Credit mutations are written as single conditional statements so that two
// racing requests can never drive a balance negative: authorization reads,
// then deduction re-checks inside the UPDATE itself.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/genapps/genforge/internal/domain"
)

// ErrNoCredits is returned by DecrementCredit when the conditional decrement
// matched no row, i.e. the balance was already zero (or the account vanished).
var ErrNoCredits = errors.New("no credits remaining")

// ErrSnapshotNotFound is returned by GetSnapshot when no snapshot with the
// given id belongs to the user.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// AccountStore persists accounts and site snapshots in Postgres.
type AccountStore struct {
	db *sql.DB
}

// NewAccountStore creates an AccountStore on an open database handle.
func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

// GetOrCreate fetches the account for userID, lazily creating it with free
// plan defaults on first sight.
func (s *AccountStore) GetOrCreate(ctx context.Context, userID string) (*domain.Account, error) {
	account, err := s.get(ctx, userID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account: %w", err)
	}

	// First sight of this identity. The insert races benignly with other
	// requests for the same user; ON CONFLICT makes it idempotent.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO accounts (user_id, plan, credits)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING`,
		userID, domain.PlanFree, domain.DailyFreeCredits,
	)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	account, err = s.get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload account: %w", err)
	}
	return account, nil
}

func (s *AccountStore) get(ctx context.Context, userID string) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, plan, credits, last_credit_reset, created_at, updated_at
		FROM accounts
		WHERE user_id = $1`,
		userID,
	)

	var account domain.Account
	var lastReset sql.NullTime
	if err := row.Scan(
		&account.UserID,
		&account.Plan,
		&account.Credits,
		&lastReset,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lastReset.Valid {
		t := lastReset.Time
		account.LastCreditReset = &t
	}
	return &account, nil
}

// ResetDailyCredits refills the account's credits and stamps the reset time.
// Returns the refilled balance.
func (s *AccountStore) ResetDailyCredits(ctx context.Context, userID string, credits int, now time.Time) (int, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE accounts
		SET credits = $2, last_credit_reset = $3, updated_at = now()
		WHERE user_id = $1
		RETURNING credits`,
		userID, credits, now.UTC(),
	)

	var remaining int
	if err := row.Scan(&remaining); err != nil {
		return 0, fmt.Errorf("reset credits: %w", err)
	}
	return remaining, nil
}

// DecrementCredit atomically spends one credit, refusing to go below zero.
// Returns the post-decrement balance, or ErrNoCredits when nothing was left
// to spend.
func (s *AccountStore) DecrementCredit(ctx context.Context, userID string) (int, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE accounts
		SET credits = credits - 1, updated_at = now()
		WHERE user_id = $1 AND credits > 0
		RETURNING credits`,
		userID,
	)

	var remaining int
	if err := row.Scan(&remaining); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNoCredits
		}
		return 0, fmt.Errorf("decrement credit: %w", err)
	}
	return remaining, nil
}

// UpdatePlan changes the account's plan, optionally overwriting the credit
// balance in the same statement (used by the billing webhook).
func (s *AccountStore) UpdatePlan(ctx context.Context, userID string, plan domain.Plan, credits *int) error {
	var err error
	if credits != nil {
		_, err = s.db.ExecContext(ctx, `
			UPDATE accounts
			SET plan = $2, credits = $3, updated_at = now()
			WHERE user_id = $1`,
			userID, plan, *credits,
		)
	} else {
		_, err = s.db.ExecContext(ctx, `
			UPDATE accounts
			SET plan = $2, updated_at = now()
			WHERE user_id = $1`,
			userID, plan,
		)
	}
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	return nil
}

// SaveSnapshot records a generated site in the owner's history.
func (s *AccountStore) SaveSnapshot(ctx context.Context, snap domain.SiteSnapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO site_snapshots (id, user_id, prompt, model, storage_key)
		VALUES ($1, $2, $3, $4, $5)`,
		snap.ID, snap.UserID, snap.Prompt, snap.Model, snap.StorageKey,
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot fetches a single snapshot by id, scoped to its owner. Returns
// ErrSnapshotNotFound when the id does not exist or belongs to another user.
func (s *AccountStore) GetSnapshot(ctx context.Context, userID string, id uuid.UUID) (*domain.SiteSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, prompt, model, storage_key, created_at
		FROM site_snapshots
		WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	var snap domain.SiteSnapshot
	if err := row.Scan(&snap.ID, &snap.UserID, &snap.Prompt, &snap.Model, &snap.StorageKey, &snap.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return &snap, nil
}

// ListSnapshots returns the most recent snapshots for a user, newest first.
func (s *AccountStore) ListSnapshots(ctx context.Context, userID string, limit int) ([]domain.SiteSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, prompt, model, storage_key, created_at
		FROM site_snapshots
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []domain.SiteSnapshot
	for rows.Next() {
		var snap domain.SiteSnapshot
		if err := rows.Scan(&snap.ID, &snap.UserID, &snap.Prompt, &snap.Model, &snap.StorageKey, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}
