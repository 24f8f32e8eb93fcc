package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/genapps/genforge/internal/ai"
	"github.com/genapps/genforge/internal/domain"
	"github.com/genapps/genforge/internal/metrics"
	"github.com/genapps/genforge/internal/repository"
	"github.com/genapps/genforge/internal/storage"
)

// GenerationService orchestrates a single generation request: account load,
// credit authorization, prompt validation, upstream call, document
// extraction, watermarking, and deduction.
type GenerationService struct {
	store    AccountStore
	credits  *CreditService
	provider ai.Provider
	storage  storage.Storage // nil disables snapshot archiving
	logger   *slog.Logger
	now      func() time.Time
}

// NewGenerationService wires the generation pipeline. storage may be nil,
// in which case generated sites are not archived.
func NewGenerationService(store AccountStore, credits *CreditService, provider ai.Provider, store2 storage.Storage, logger *slog.Logger) *GenerationService {
	return &GenerationService{
		store:    store,
		credits:  credits,
		provider: provider,
		storage:  store2,
		logger:   logger,
		now:      time.Now,
	}
}

// Generate runs the full pipeline for an authenticated caller. The stages
// run in a fixed order and each failure short-circuits with a distinct
// error code: forbidden for exhausted credits, invalid for a bad prompt,
// unavailable for upstream exhaustion, internal for everything else.
//
// Once the upstream has produced content, the result is always returned.
// Deduction and snapshot archiving failures are logged, never surfaced.
func (s *GenerationService) Generate(ctx context.Context, userID, prompt string) (*domain.GenerationResult, error) {
	const op = "generation.generate"

	account, err := s.store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load account")
	}

	if err := s.credits.AuthorizeAndMaybeReset(ctx, account); err != nil {
		if domain.ErrorCode(err) == domain.EFORBIDDEN {
			metrics.CreditDenialsTotal.Inc()
			metrics.GenerationsTotal.WithLabelValues(string(account.Plan), "denied").Inc()
		}
		return nil, err
	}

	if strings.TrimSpace(prompt) == "" {
		return nil, domain.Invalid(op, "Prompt is required")
	}

	start := s.now()
	raw, err := s.provider.GenerateSite(ctx, ai.GenerateParams{
		Prompt: prompt,
		Plan:   account.Plan,
		UserID: userID,
	})
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(string(account.Plan), "failure").Inc()
		if ai.IsRetryable(err) {
			return nil, domain.Unavailable(err, op, "Generation is temporarily unavailable. Please try again.")
		}
		return nil, domain.Internal(err, op, "failed to generate website")
	}
	metrics.GenerationDuration.Observe(s.now().Sub(start).Seconds())

	html := ai.ExtractDocument(raw)

	policy := domain.PolicyFor(account.Plan)
	if policy.Watermark {
		html = injectWatermark(html)
	}

	result := &domain.GenerationResult{
		HTML:      html,
		Plan:      account.Plan,
		Unlimited: policy.Unlimited,
		Timestamp: s.now().UTC(),
	}
	if !policy.Unlimited {
		result.RemainingCredits = s.credits.Deduct(ctx, account)
	}

	metrics.GenerationsTotal.WithLabelValues(string(account.Plan), "success").Inc()

	s.archiveSnapshot(ctx, userID, prompt, policy.Model, html)

	return result, nil
}

// History returns the caller's most recent generations, newest first.
func (s *GenerationService) History(ctx context.Context, userID string, limit int) ([]domain.SiteSnapshot, error) {
	snaps, err := s.store.ListSnapshots(ctx, userID, limit)
	if err != nil {
		return nil, domain.Internal(err, "generation.history", "failed to list snapshots")
	}
	return snaps, nil
}

// SnapshotHTML fetches the archived document for one of the caller's
// snapshots. Ownership is checked by the keyed lookup before touching
// storage; another user's snapshot id is indistinguishable from a missing
// one.
func (s *GenerationService) SnapshotHTML(ctx context.Context, userID string, id uuid.UUID) ([]byte, error) {
	const op = "generation.snapshot"

	if s.storage == nil {
		return nil, domain.NotFound(op, "snapshot", id.String())
	}

	snap, err := s.store.GetSnapshot(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			return nil, domain.NotFound(op, "snapshot", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load snapshot")
	}

	data, err := s.storage.Retrieve(ctx, snap.StorageKey)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to retrieve snapshot")
	}
	return data, nil
}

// archiveSnapshot stores the generated document and records it in the
// owner's history. Best effort; failures are logged only.
func (s *GenerationService) archiveSnapshot(ctx context.Context, userID, prompt, model, html string) {
	if s.storage == nil {
		return
	}

	snap := domain.SiteSnapshot{
		ID:     uuid.New(),
		UserID: userID,
		Prompt: prompt,
		Model:  model,
	}
	snap.StorageKey = fmt.Sprintf("sites/%s/%s.html", userID, snap.ID)

	if err := s.storage.Store(ctx, snap.StorageKey, []byte(html), "text/html"); err != nil {
		s.logger.Error("failed to store site snapshot", "user_id", userID, "error", err)
		return
	}
	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		s.logger.Error("failed to record site snapshot", "user_id", userID, "error", err)
	}
}
