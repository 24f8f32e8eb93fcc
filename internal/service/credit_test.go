package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genapps/genforge/internal/domain"
	"github.com/genapps/genforge/internal/repository"
)

// fakeStore is an in-memory AccountStore for service tests. Credit
// mutations take the same conditional form as the Postgres implementation.
type fakeStore struct {
	mu        sync.Mutex
	accounts  map[string]*domain.Account
	snapshots []domain.SiteSnapshot

	resetErr     error
	decrementErr error
	snapshotErr  error

	resetCalls     int
	decrementCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[string]*domain.Account)}
}

func (f *fakeStore) seed(account *domain.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[account.UserID] = account
}

func (f *fakeStore) GetOrCreate(ctx context.Context, userID string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account, ok := f.accounts[userID]; ok {
		copied := *account
		return &copied, nil
	}
	account := &domain.Account{
		UserID:  userID,
		Plan:    domain.PlanFree,
		Credits: domain.DailyFreeCredits,
	}
	f.accounts[userID] = account
	copied := *account
	return &copied, nil
}

func (f *fakeStore) ResetDailyCredits(ctx context.Context, userID string, credits int, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetCalls++
	if f.resetErr != nil {
		return 0, f.resetErr
	}
	account := f.accounts[userID]
	account.Credits = credits
	t := now.UTC()
	account.LastCreditReset = &t
	return account.Credits, nil
}

func (f *fakeStore) DecrementCredit(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decrementCalls++
	if f.decrementErr != nil {
		return 0, f.decrementErr
	}
	account := f.accounts[userID]
	if account == nil || account.Credits <= 0 {
		return 0, repository.ErrNoCredits
	}
	account.Credits--
	return account.Credits, nil
}

func (f *fakeStore) UpdatePlan(ctx context.Context, userID string, plan domain.Plan, credits *int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account := f.accounts[userID]
	if account == nil {
		return errors.New("account not found")
	}
	account.Plan = plan
	if credits != nil {
		account.Credits = *credits
	}
	return nil
}

func (f *fakeStore) SaveSnapshot(ctx context.Context, snap domain.SiteSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapshotErr != nil {
		return f.snapshotErr
	}
	f.snapshots = append(f.snapshots, snap)
	return nil
}

func (f *fakeStore) GetSnapshot(ctx context.Context, userID string, id uuid.UUID) (*domain.SiteSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.snapshots {
		if f.snapshots[i].ID == id && f.snapshots[i].UserID == userID {
			copied := f.snapshots[i]
			return &copied, nil
		}
	}
	return nil, repository.ErrSnapshotNotFound
}

func (f *fakeStore) ListSnapshots(ctx context.Context, userID string, limit int) ([]domain.SiteSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.SiteSnapshot
	for i := len(f.snapshots) - 1; i >= 0 && len(out) < limit; i-- {
		if f.snapshots[i].UserID == userID {
			out = append(out, f.snapshots[i])
		}
	}
	return out, nil
}

func (f *fakeStore) credits(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[userID].Credits
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestAuthorizePaidPlanNeverMetered(t *testing.T) {
	store := newFakeStore()
	svc := NewCreditService(store, testLogger())

	for _, plan := range []domain.Plan{domain.PlanPro, domain.PlanPlus} {
		account := &domain.Account{UserID: "u1", Plan: plan, Credits: 0}
		err := svc.AuthorizeAndMaybeReset(context.Background(), account)
		assert.NoError(t, err, "plan %s should always be authorized", plan)
	}
	assert.Zero(t, store.resetCalls, "paid plans should never trigger a reset")
}

func TestAuthorizeFreshAccountResets(t *testing.T) {
	store := newFakeStore()
	store.seed(&domain.Account{UserID: "u1", Plan: domain.PlanFree, Credits: 0})
	svc := NewCreditService(store, testLogger())

	// No prior reset recorded: the refill itself grants today's quota.
	account, err := store.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	err = svc.AuthorizeAndMaybeReset(context.Background(), account)

	require.NoError(t, err)
	assert.Equal(t, domain.DailyFreeCredits, account.Credits)
	assert.NotNil(t, account.LastCreditReset)
	assert.Equal(t, 1, store.resetCalls)
}

func TestAuthorizePriorDayResets(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.seed(&domain.Account{
		UserID:          "u1",
		Plan:            domain.PlanFree,
		Credits:         0,
		LastCreditReset: timePtr(now.AddDate(0, 0, -1)),
	})
	svc := NewCreditService(store, testLogger())
	svc.now = func() time.Time { return now }

	account, err := store.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	err = svc.AuthorizeAndMaybeReset(context.Background(), account)

	require.NoError(t, err)
	assert.Equal(t, domain.DailyFreeCredits, account.Credits)
	assert.Equal(t, domain.DailyFreeCredits, store.credits("u1"))
}

func TestAuthorizeSameDayWithCredits(t *testing.T) {
	now := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.seed(&domain.Account{
		UserID:          "u1",
		Plan:            domain.PlanFree,
		Credits:         3,
		LastCreditReset: timePtr(now.Add(-6 * time.Hour)),
	})
	svc := NewCreditService(store, testLogger())
	svc.now = func() time.Time { return now }

	account, err := store.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	err = svc.AuthorizeAndMaybeReset(context.Background(), account)

	require.NoError(t, err)
	assert.Equal(t, 3, account.Credits, "same-day authorization must not refill")
	assert.Zero(t, store.resetCalls)
}

func TestAuthorizeSameDayExhausted(t *testing.T) {
	now := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.seed(&domain.Account{
		UserID:          "u1",
		Plan:            domain.PlanFree,
		Credits:         0,
		LastCreditReset: timePtr(now.Add(-1 * time.Hour)),
	})
	svc := NewCreditService(store, testLogger())
	svc.now = func() time.Time { return now }

	account, err := store.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	err = svc.AuthorizeAndMaybeReset(context.Background(), account)

	require.Error(t, err)
	assert.Equal(t, domain.EFORBIDDEN, domain.ErrorCode(err))
}

func TestAuthorizeFailsClosedOnResetError(t *testing.T) {
	store := newFakeStore()
	store.seed(&domain.Account{UserID: "u1", Plan: domain.PlanFree, Credits: 5})
	store.resetErr = errors.New("connection refused")
	svc := NewCreditService(store, testLogger())

	account, err := store.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	err = svc.AuthorizeAndMaybeReset(context.Background(), account)

	require.Error(t, err)
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
}

func TestDeductFreePlan(t *testing.T) {
	now := time.Now()
	store := newFakeStore()
	store.seed(&domain.Account{
		UserID:          "u1",
		Plan:            domain.PlanFree,
		Credits:         3,
		LastCreditReset: timePtr(now),
	})
	svc := NewCreditService(store, testLogger())

	account, err := store.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	remaining := svc.Deduct(context.Background(), account)

	assert.Equal(t, 2, remaining)
	assert.Equal(t, 2, store.credits("u1"), "reported balance must match the persisted one")
}

func TestDeductPaidPlanIsNoop(t *testing.T) {
	store := newFakeStore()
	store.seed(&domain.Account{UserID: "u1", Plan: domain.PlanPro, Credits: 9999})
	svc := NewCreditService(store, testLogger())

	account, err := store.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	remaining := svc.Deduct(context.Background(), account)

	assert.Zero(t, remaining)
	assert.Zero(t, store.decrementCalls)
	assert.Equal(t, 9999, store.credits("u1"))
}

func TestDeductSwallowsStoreError(t *testing.T) {
	now := time.Now()
	store := newFakeStore()
	store.seed(&domain.Account{
		UserID:          "u1",
		Plan:            domain.PlanFree,
		Credits:         3,
		LastCreditReset: timePtr(now),
	})
	store.decrementErr = errors.New("connection refused")
	svc := NewCreditService(store, testLogger())

	account, err := store.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	remaining := svc.Deduct(context.Background(), account)

	// Best effort: the write failed but the caller still gets a balance.
	assert.Equal(t, 2, remaining)
}

func TestDeductFloorsAtZero(t *testing.T) {
	store := newFakeStore()
	store.seed(&domain.Account{UserID: "u1", Plan: domain.PlanFree, Credits: 0})
	svc := NewCreditService(store, testLogger())

	account, err := store.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	remaining := svc.Deduct(context.Background(), account)

	assert.Zero(t, remaining)
	assert.Zero(t, store.credits("u1"), "balance must never go negative")
}
