package domain

import (
	"fmt"

	"marketsync/errors"
)

const SubscriptionsTable = "subscriptions"

type PlanTier string

const (
	PlanFree    PlanTier = "free"
	PlanBasic   PlanTier = "basic"
	PlanPremium PlanTier = "premium"
)

type Action string

const (
	ActionCreateService Action = "canCreateService"
	ActionApply         Action = "canApply"
	ActionMessage       Action = "canMessage"
	ActionShowWhatsApp  Action = "canShowWhatsApp"
)

// Unlimited marks a quota without upper bound.
const Unlimited = -1

// Plan holds the limits of a professional subscription tier.
type Plan struct {
	Tier              PlanTier
	ServiceLimit      int
	ApplicationsLimit int
	MessagingEnabled  bool
	WhatsAppEnabled   bool
}

// Usage is what the professional already consumed against the plan.
type Usage struct {
	Services     int
	Applications int
}

var plans = map[PlanTier]Plan{
	PlanFree:    {Tier: PlanFree, ServiceLimit: 1, ApplicationsLimit: 0, MessagingEnabled: false, WhatsAppEnabled: false},
	PlanBasic:   {Tier: PlanBasic, ServiceLimit: 5, ApplicationsLimit: 10, MessagingEnabled: true, WhatsAppEnabled: false},
	PlanPremium: {Tier: PlanPremium, ServiceLimit: Unlimited, ApplicationsLimit: Unlimited, MessagingEnabled: true, WhatsAppEnabled: true},
}

// PlanFor returns the limits of tier, the free plan for unknown tiers.
func PlanFor(tier PlanTier) Plan {
	if p, ok := plans[tier]; ok {
		return p
	}
	return plans[PlanFree]
}

func within(limit, used int) bool {
	return limit == Unlimited || used < limit
}

// CanPerformAction reports whether the plan allows action given the current usage.
func (p Plan) CanPerformAction(action Action, usage Usage) (bool, error) {
	switch action {
	case ActionCreateService:
		return within(p.ServiceLimit, usage.Services), nil
	case ActionApply:
		return within(p.ApplicationsLimit, usage.Applications), nil
	case ActionMessage:
		return p.MessagingEnabled, nil
	case ActionShowWhatsApp:
		return p.WhatsAppEnabled, nil
	default:
		return false, fmt.Errorf("%w: %s", errors.ErrUnknownAction, action)
	}
}

// Require is CanPerformAction turned into an error.
func (p Plan) Require(action Action, usage Usage) error {
	ok, err := p.CanPerformAction(action, usage)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s on %s plan", errors.ErrActionNotAllowed, action, p.Tier)
	}
	return nil
}
