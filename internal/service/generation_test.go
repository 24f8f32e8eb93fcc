package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genapps/genforge/internal/ai"
	"github.com/genapps/genforge/internal/ai/mock"
	"github.com/genapps/genforge/internal/domain"
	"github.com/genapps/genforge/internal/storage"
)

const testSite = `<!DOCTYPE html>
<html><head><title>Test</title></head>
<body><h1>Landing page</h1></body>
</html>`

func newTestGenerationService(store *fakeStore, provider ai.Provider) *GenerationService {
	logger := testLogger()
	credits := NewCreditService(store, logger)
	return NewGenerationService(store, credits, provider, nil, logger)
}

func TestGenerateFreeUserDeductsCredit(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.seed(&domain.Account{
		UserID:          "u1",
		Plan:            domain.PlanFree,
		Credits:         3,
		LastCreditReset: timePtr(now.Add(-2 * time.Hour)),
	})
	provider := mock.New(testLogger())
	provider.GenerateSiteResponse = testSite

	svc := newTestGenerationService(store, provider)
	svc.credits.now = func() time.Time { return now }
	svc.now = func() time.Time { return now }

	result, err := svc.Generate(context.Background(), "u1", "a landing page")

	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, result.Plan)
	assert.False(t, result.Unlimited)
	assert.Equal(t, 2, result.RemainingCredits)
	assert.Equal(t, 2, store.credits("u1"), "response math must match the persisted balance")
	assert.Equal(t, 1, provider.GenerateSiteCalls)
	assert.Equal(t, domain.PlanFree, provider.LastParams.Plan)
}

func TestGenerateExhaustedCreditsShortCircuits(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.seed(&domain.Account{
		UserID:          "u1",
		Plan:            domain.PlanFree,
		Credits:         0,
		LastCreditReset: timePtr(now.Add(-1 * time.Hour)),
	})
	provider := mock.New(testLogger())

	svc := newTestGenerationService(store, provider)
	svc.credits.now = func() time.Time { return now }

	_, err := svc.Generate(context.Background(), "u1", "a landing page")

	require.Error(t, err)
	assert.Equal(t, domain.EFORBIDDEN, domain.ErrorCode(err))
	assert.Zero(t, provider.GenerateSiteCalls, "no upstream call may happen after a denial")
}

func TestGenerateEmptyPromptRejected(t *testing.T) {
	store := newFakeStore()
	provider := mock.New(testLogger())
	svc := newTestGenerationService(store, provider)

	for _, prompt := range []string{"", "   ", "\n\t"} {
		_, err := svc.Generate(context.Background(), "u1", prompt)
		require.Error(t, err)
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	}
	assert.Zero(t, provider.GenerateSiteCalls)
}

func TestGenerateLazyAccountCreation(t *testing.T) {
	store := newFakeStore()
	provider := mock.New(testLogger())
	provider.GenerateSiteResponse = testSite
	svc := newTestGenerationService(store, provider)

	// First sight of this identity: account is created with the free
	// plan's full quota, and the reset grants today's generation.
	result, err := svc.Generate(context.Background(), "new-user", "a portfolio")

	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, result.Plan)
	assert.Equal(t, domain.DailyFreeCredits-1, result.RemainingCredits)
}

func TestGenerateFreePlanWatermarked(t *testing.T) {
	store := newFakeStore()
	provider := mock.New(testLogger())
	provider.GenerateSiteResponse = testSite
	svc := newTestGenerationService(store, provider)

	result, err := svc.Generate(context.Background(), "u1", "a landing page")

	require.NoError(t, err)
	assert.Contains(t, result.HTML, "Built with GenForge")
	assert.Equal(t, 1, strings.Count(result.HTML, "</body>"))
}

func TestGeneratePaidPlanUnlimitedAndClean(t *testing.T) {
	store := newFakeStore()
	store.seed(&domain.Account{UserID: "u1", Plan: domain.PlanPlus, Credits: 9999})
	provider := mock.New(testLogger())
	provider.GenerateSiteResponse = testSite
	svc := newTestGenerationService(store, provider)

	result, err := svc.Generate(context.Background(), "u1", "a landing page")

	require.NoError(t, err)
	assert.True(t, result.Unlimited)
	assert.NotContains(t, result.HTML, "Built with GenForge")
	assert.Equal(t, 9999, store.credits("u1"), "paid plans are never decremented")
	assert.Equal(t, domain.PlanPlus, provider.LastParams.Plan)
}

func TestGenerateExtractsFencedDocument(t *testing.T) {
	store := newFakeStore()
	provider := mock.New(testLogger())
	provider.GenerateSiteResponse = "Here is your site:\n```html\n" + testSite + "\n```\nEnjoy!"
	svc := newTestGenerationService(store, provider)

	result, err := svc.Generate(context.Background(), "u1", "a landing page")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.HTML, "<!DOCTYPE html>"))
	assert.NotContains(t, result.HTML, "Enjoy!")
}

func TestGenerateUpstreamExhaustionIsRetryable(t *testing.T) {
	store := newFakeStore()
	provider := mock.New(testLogger())
	provider.GenerateSiteError = ai.EAIKeysExhausted
	svc := newTestGenerationService(store, provider)

	_, err := svc.Generate(context.Background(), "u1", "a landing page")

	require.Error(t, err)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
	// The credit was not spent on a failed generation.
	assert.Equal(t, domain.DailyFreeCredits, store.credits("u1"))
}

func TestSnapshotHTMLFetchesBeyondRecentPage(t *testing.T) {
	store := newFakeStore()
	blob, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()}, testLogger())
	require.NoError(t, err)

	logger := testLogger()
	credits := NewCreditService(store, logger)
	svc := NewGenerationService(store, credits, mock.New(logger), blob, logger)

	// Bury the target under far more snapshots than any listing page
	// returns; retrieval is keyed, not a scan of recent history.
	target := domain.SiteSnapshot{
		ID:         uuid.New(),
		UserID:     "u1",
		Prompt:     "the first site",
		Model:      "LongCat-Flash-Chat",
		StorageKey: "sites/u1/first.html",
	}
	require.NoError(t, store.SaveSnapshot(context.Background(), target))
	require.NoError(t, blob.Store(context.Background(), target.StorageKey, []byte("<html>first</html>"), "text/html"))

	for i := 0; i < 150; i++ {
		require.NoError(t, store.SaveSnapshot(context.Background(), domain.SiteSnapshot{
			ID:     uuid.New(),
			UserID: "u1",
		}))
	}

	data, err := svc.SnapshotHTML(context.Background(), "u1", target.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("<html>first</html>"), data)
}

func TestSnapshotHTMLScopedToOwner(t *testing.T) {
	store := newFakeStore()
	blob, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()}, testLogger())
	require.NoError(t, err)

	logger := testLogger()
	svc := NewGenerationService(store, NewCreditService(store, logger), mock.New(logger), blob, logger)

	snap := domain.SiteSnapshot{ID: uuid.New(), UserID: "owner", StorageKey: "sites/owner/a.html"}
	require.NoError(t, store.SaveSnapshot(context.Background(), snap))
	require.NoError(t, blob.Store(context.Background(), snap.StorageKey, []byte("<html></html>"), "text/html"))

	_, err = svc.SnapshotHTML(context.Background(), "intruder", snap.ID)
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))

	_, err = svc.SnapshotHTML(context.Background(), "owner", uuid.New())
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestGenerateTimestampIsUTC(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.FixedZone("JST", 9*3600))
	store := newFakeStore()
	provider := mock.New(testLogger())
	provider.GenerateSiteResponse = testSite

	svc := newTestGenerationService(store, provider)
	svc.now = func() time.Time { return now }

	result, err := svc.Generate(context.Background(), "u1", "a landing page")

	require.NoError(t, err)
	assert.Equal(t, time.UTC, result.Timestamp.Location())
	assert.True(t, result.Timestamp.Equal(now))
}
