package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"marketsync/contract"
	"marketsync/domain"
	"marketsync/errors"

	"github.com/samber/lo"
)

const (
	checkSubscriptionFunction = "check-subscription"
	createCheckoutFunction    = "create-checkout"
)

// Entitlement is a professional's plan with what was already used against it.
type Entitlement struct {
	Plan  domain.Plan
	Usage domain.Usage
}

// PlanService keeps the entitlements of professionals in memory so that
// gating an action never needs a remote call. Load or Refresh must run first;
// unknown professionals are on the free plan.
type PlanService struct {
	mu           sync.RWMutex
	log          *slog.Logger
	query        contract.Query
	functions    contract.FunctionInvoker
	entitlements map[string]Entitlement
	now          func() time.Time
}

func NewPlanService(log *slog.Logger, query contract.Query, functions contract.FunctionInvoker) *PlanService {
	return &PlanService{
		log:          log,
		query:        query,
		functions:    functions,
		entitlements: make(map[string]Entitlement),
		now:          time.Now,
	}
}

// Load reads the subscription row and the current usage of professionalID.
func (s *PlanService) Load(ctx context.Context, professionalID string) (Entitlement, error) {
	tier := domain.PlanFree
	rows, err := s.query.Select(ctx, domain.SubscriptionsTable, contract.Where(
		contract.Eq("user_id", professionalID),
		contract.Eq("status", "active"),
	), contract.Desc("created_at"))
	if err != nil {
		return Entitlement{}, err
	}
	if len(rows) > 0 {
		tier = domain.PlanTier(rows[0].String("plan"))
	}

	usage, err := s.usage(ctx, professionalID)
	if err != nil {
		return Entitlement{}, err
	}
	entitlement := Entitlement{Plan: domain.PlanFor(tier), Usage: usage}
	s.store(professionalID, entitlement)
	return entitlement, nil
}

// usage counts the services of the professional and the applications sent this month.
func (s *PlanService) usage(ctx context.Context, professionalID string) (domain.Usage, error) {
	services, err := s.query.Select(ctx, domain.ServicesTable, contract.Where(contract.Eq("professional_id", professionalID)), nil)
	if err != nil {
		return domain.Usage{}, err
	}
	applications, err := s.query.Select(ctx, domain.ApplicationsTable, contract.Where(contract.Eq("professional_id", professionalID)), nil)
	if err != nil {
		return domain.Usage{}, err
	}
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	thisMonth := lo.CountBy(applications, func(r contract.Record) bool {
		return !r.Time("created_at").Before(monthStart)
	})
	return domain.Usage{Services: len(services), Applications: thisMonth}, nil
}

// Current returns the cached entitlement, the free plan when nothing was loaded.
func (s *PlanService) Current(professionalID string) Entitlement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entitlements[professionalID]; ok {
		return e
	}
	return Entitlement{Plan: domain.PlanFor(domain.PlanFree)}
}

func (s *PlanService) CanPerformAction(professionalID string, action domain.Action) bool {
	e := s.Current(professionalID)
	ok, err := e.Plan.CanPerformAction(action, e.Usage)
	if err != nil {
		s.log.Warn("Plan check failed", "professional_id", professionalID, "action", action, "error", err)
		return false
	}
	return ok
}

func (s *PlanService) Require(professionalID string, action domain.Action) error {
	e := s.Current(professionalID)
	return e.Plan.Require(action, e.Usage)
}

// RecordUsage accounts for a successful gated action until the next Load.
func (s *PlanService) RecordUsage(professionalID string, action domain.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entitlements[professionalID]
	if !ok {
		e = Entitlement{Plan: domain.PlanFor(domain.PlanFree)}
	}
	switch action {
	case domain.ActionCreateService:
		e.Usage.Services++
	case domain.ActionApply:
		e.Usage.Applications++
	default:
		return
	}
	s.entitlements[professionalID] = e
}

// Refresh asks the payment backend for the live subscription state.
func (s *PlanService) Refresh(ctx context.Context, professionalID, accessToken string) (Entitlement, error) {
	result, err := s.functions.Invoke(ctx, checkSubscriptionFunction, nil, bearer(accessToken))
	if err != nil {
		s.log.Warn("Subscription check failed", "professional_id", professionalID, "error", err)
		return s.Current(professionalID), err
	}
	tier := domain.PlanFree
	if result.Bool("subscribed") {
		tier = domain.PlanTier(result.String("subscription_tier"))
	}
	usage := s.Current(professionalID).Usage
	entitlement := Entitlement{Plan: domain.PlanFor(tier), Usage: usage}
	s.store(professionalID, entitlement)
	s.log.Info("Subscription refreshed", "professional_id", professionalID, "tier", entitlement.Plan.Tier)
	return entitlement, nil
}

// Checkout creates a payment session for tier and returns its URL.
func (s *PlanService) Checkout(ctx context.Context, tier domain.PlanTier, accessToken string) (string, error) {
	result, err := s.functions.Invoke(ctx, createCheckoutFunction, map[string]any{"plan": string(tier)}, bearer(accessToken))
	if err != nil {
		return "", err
	}
	url := result.String("url")
	if url == "" {
		return "", fmt.Errorf("%w: plan %s", errors.ErrNoCheckoutURL, tier)
	}
	return url, nil
}

func (s *PlanService) store(professionalID string, e Entitlement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entitlements[professionalID] = e
}

func bearer(token string) map[string]string {
	if token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + token}
}
