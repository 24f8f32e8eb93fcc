package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/genapps/genforge/internal/domain"
)

// CreditService is the credit ledger. It decides whether an account may
// generate right now, applying the daily free-tier refill, and spends
// credits after a successful generation.
//
// Authorization fails closed: a datastore error during the daily reset
// denies the request rather than risking unmetered usage. Deduction is
// best-effort: once content has been produced it is always returned, even
// if the bookkeeping write fails.
type CreditService struct {
	store  AccountStore
	logger *slog.Logger
	now    func() time.Time
}

// NewCreditService creates a credit ledger on the given store.
func NewCreditService(store AccountStore, logger *slog.Logger) *CreditService {
	return &CreditService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// AuthorizeAndMaybeReset checks whether the account may generate, refilling
// the daily quota first when the last reset fell on an earlier UTC day. The
// account's Credits and LastCreditReset fields are updated in place to
// reflect any refill.
//
// Paid plans are always authorized without reading the balance.
func (s *CreditService) AuthorizeAndMaybeReset(ctx context.Context, account *domain.Account) error {
	const op = "credit.authorize"

	policy := domain.PolicyFor(account.Plan)
	if policy.Unlimited {
		return nil
	}

	now := s.now()
	if account.NeedsDailyReset(now) {
		remaining, err := s.store.ResetDailyCredits(ctx, account.UserID, policy.DailyCredits, now)
		if err != nil {
			// Fail closed. Granting a generation on a failed reset
			// would make free usage unbounded under datastore outages.
			return domain.Internal(err, op, "failed to reset daily credits")
		}
		account.Credits = remaining
		account.LastCreditReset = &now
		return nil
	}

	if account.Credits <= 0 {
		return domain.Forbidden(op, "No credits remaining. Free credits reset daily, or upgrade for unlimited generations.")
	}
	return nil
}

// Deduct spends one credit for metered plans and returns the persisted
// balance. For paid plans it is a no-op returning zero.
//
// A failed write is logged and the last known balance minus one is reported
// instead; the generated content has already been paid for upstream and must
// reach the caller regardless.
func (s *CreditService) Deduct(ctx context.Context, account *domain.Account) int {
	policy := domain.PolicyFor(account.Plan)
	if policy.Unlimited {
		return 0
	}

	remaining, err := s.store.DecrementCredit(ctx, account.UserID)
	if err != nil {
		s.logger.Error("credit deduction failed",
			"user_id", account.UserID,
			"error", err,
		)
		if account.Credits > 0 {
			return account.Credits - 1
		}
		return 0
	}
	return remaining
}
