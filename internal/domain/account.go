// Package domain contains core business types and interfaces.
//
// This file defines the Account type, plan tiers, and the plan policy table
// that governs quota, model selection, and watermarking.
package domain

import (
	"time"
)

// Plan represents the pricing tier of an account.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
	PlanPlus Plan = "plus"
)

// Valid checks if the plan value is one of the known tiers.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanPlus:
		return true
	default:
		return false
	}
}

const (
	// DailyFreeCredits is the number of generations a free account
	// receives on each UTC day boundary.
	DailyFreeCredits = 5

	// PaidPlanCreditsSentinel is written to credits when a subscription
	// upgrade lands. Paid plans never consume credits, so the value is
	// cosmetic, but it keeps dashboards from showing a stale low count.
	PaidPlanCreditsSentinel = 9999
)

// PlanPolicy captures every plan-dependent decision in one place: which
// upstream model to use, whether generations draw down credits, and whether
// output is watermarked.
type PlanPolicy struct {
	Model        string // Upstream model identifier
	DailyCredits int    // Daily quota, meaningful only when not unlimited
	Unlimited    bool   // Paid plans are never metered
	Watermark    bool   // Free-tier output carries an attribution banner
}

// PlanPolicies maps each tier to its policy. Components must consult this
// table instead of branching on the plan value themselves.
var PlanPolicies = map[Plan]PlanPolicy{
	PlanFree: {
		Model:        "LongCat-Flash-Chat",
		DailyCredits: DailyFreeCredits,
		Watermark:    true,
	},
	PlanPro: {
		Model:     "LongCat-Flash-Thinking",
		Unlimited: true,
	},
	PlanPlus: {
		Model:     "LongCat-Flash-Thinking-2601",
		Unlimited: true,
	},
}

// PolicyFor returns the policy for a plan, defaulting to the free tier for
// unknown plan values. Unknown plans must never fail model selection.
func PolicyFor(plan Plan) PlanPolicy {
	if policy, ok := PlanPolicies[plan]; ok {
		return policy
	}
	return PlanPolicies[PlanFree]
}

// Account represents a user account in the credit ledger.
//
// Accounts are created lazily on first authenticated sight of a new
// identity, defaulting to the free plan with a full day's credits. The
// UserID is the subject claim of the identity provider's token, not a
// locally issued identifier.
type Account struct {
	UserID          string
	Plan            Plan
	Credits         int
	LastCreditReset *time.Time // nil until the first daily reset
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsPaid returns true if the account is on a tier that is never metered.
func (a *Account) IsPaid() bool {
	return PolicyFor(a.Plan).Unlimited
}

// NeedsDailyReset reports whether the account's last credit reset happened
// on an earlier UTC calendar day than now (or never happened at all).
func (a *Account) NeedsDailyReset(now time.Time) bool {
	if a.LastCreditReset == nil {
		return true
	}
	return !sameUTCDay(*a.LastCreditReset, now)
}

// sameUTCDay reports whether two instants fall on the same UTC calendar day.
func sameUTCDay(t1, t2 time.Time) bool {
	y1, m1, d1 := t1.UTC().Date()
	y2, m2, d2 := t2.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
