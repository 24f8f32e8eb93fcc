package billing

import (
	"context"
	"log/slog"

	"github.com/genapps/genforge/internal/domain"
	"github.com/genapps/genforge/internal/metrics"
)

// PlanWriter is the slice of the account store the webhook needs.
type PlanWriter interface {
	UpdatePlan(ctx context.Context, userID string, plan domain.Plan, credits *int) error
}

// Service applies verified webhook events to the account ledger.
type Service struct {
	store  PlanWriter
	logger *slog.Logger
}

// NewService creates a billing service on the given plan writer.
func NewService(store PlanWriter, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// HandleEvent applies a verified webhook event. Events without a linked
// user id are accepted and ignored; the vendor cannot always supply the
// link and retrying would not help. Unrecognized event names are ignored.
func (s *Service) HandleEvent(ctx context.Context, payload *EventPayload) error {
	event := payload.Meta.EventName
	userID := payload.Meta.CustomData.UserID

	if userID == "" {
		s.logger.Info("webhook event not linked to a user, skipping", "event", event)
		metrics.WebhookEventsTotal.WithLabelValues(event, "unlinked").Inc()
		return nil
	}

	switch event {
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		plan := PlanFromVariant(payload.Data.Attributes.VariantName)

		// Paid plans are never metered, but a sentinel balance keeps
		// any credit display from showing a stale low count.
		var credits *int
		if domain.PolicyFor(plan).Unlimited {
			sentinel := domain.PaidPlanCreditsSentinel
			credits = &sentinel
		}

		if err := s.store.UpdatePlan(ctx, userID, plan, credits); err != nil {
			metrics.WebhookEventsTotal.WithLabelValues(event, "error").Inc()
			return domain.Internal(err, "billing.handle_event", "failed to update plan")
		}

		s.logger.Info("subscription plan updated",
			"user_id", userID,
			"event", event,
			"plan", plan,
			"variant", payload.Data.Attributes.VariantName,
		)
		metrics.WebhookEventsTotal.WithLabelValues(event, "applied").Inc()
		return nil

	case EventSubscriptionCancelled:
		if err := s.store.UpdatePlan(ctx, userID, domain.PlanFree, nil); err != nil {
			metrics.WebhookEventsTotal.WithLabelValues(event, "error").Inc()
			return domain.Internal(err, "billing.handle_event", "failed to downgrade plan")
		}

		s.logger.Info("subscription cancelled, downgraded to free", "user_id", userID)
		metrics.WebhookEventsTotal.WithLabelValues(event, "applied").Inc()
		return nil

	default:
		s.logger.Debug("ignoring webhook event", "event", event)
		metrics.WebhookEventsTotal.WithLabelValues(event, "ignored").Inc()
		return nil
	}
}
