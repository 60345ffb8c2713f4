package runtime

import (
	"context"
	"log/slog"
	"strings"

	"marketsync/auth"
	"marketsync/contract"
	"marketsync/domain"
	"marketsync/errors"

	"google.golang.org/grpc/codes"
)

// Functions plays the payment functions of the hosted backend. There is no
// gateway: a checkout activates the subscription at once.
type Functions struct {
	log         *slog.Logger
	query       contract.Query
	secret      []byte
	checkoutURL string
}

func NewFunctions(log *slog.Logger, query contract.Query, secret []byte, checkoutURL string) *Functions {
	return &Functions{log: log, query: query, secret: secret, checkoutURL: checkoutURL}
}

func (f *Functions) Invoke(ctx context.Context, name string, body any, headers map[string]string) (contract.Record, error) {
	token := strings.TrimPrefix(headers["Authorization"], "Bearer ")
	viewer, err := auth.ViewerFromToken(token, f.secret)
	if err != nil {
		return nil, errors.Backend(codes.Unauthenticated, "%s: %v", name, err)
	}
	f.log.Debug("Function invoked", "name", name, "user_id", viewer.UserID)

	switch name {
	case "check-subscription":
		return f.checkSubscription(ctx, viewer)
	case "create-checkout":
		return f.createCheckout(ctx, viewer, body)
	default:
		return nil, errors.Backend(codes.NotFound, "function %s not found", name)
	}
}

func (f *Functions) checkSubscription(ctx context.Context, viewer domain.Viewer) (contract.Record, error) {
	rows, err := f.query.Select(ctx, domain.SubscriptionsTable, contract.Where(
		contract.Eq("user_id", viewer.UserID),
		contract.Eq("status", "active"),
	), contract.Desc("created_at"))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return contract.Record{"subscribed": false, "subscription_tier": string(domain.PlanFree)}, nil
	}
	return contract.Record{"subscribed": true, "subscription_tier": rows[0].String("plan")}, nil
}

func (f *Functions) createCheckout(ctx context.Context, viewer domain.Viewer, body any) (contract.Record, error) {
	var plan string
	switch b := body.(type) {
	case map[string]any:
		plan, _ = b["plan"].(string)
	case contract.Record:
		plan = b.String("plan")
	}
	tier := domain.PlanTier(plan)
	if tier != domain.PlanBasic && tier != domain.PlanPremium {
		return nil, errors.Backend(codes.InvalidArgument, "unknown plan %q", plan)
	}

	if err := f.query.Update(ctx, domain.SubscriptionsTable, contract.Where(
		contract.Eq("user_id", viewer.UserID),
		contract.Eq("status", "active"),
	), contract.Record{"status": "canceled"}); err != nil {
		return nil, err
	}
	row, err := f.query.Insert(ctx, domain.SubscriptionsTable, contract.Record{
		"user_id": viewer.UserID,
		"plan":    string(tier),
		"status":  "active",
	})
	if err != nil {
		return nil, err
	}
	return contract.Record{"url": strings.TrimSuffix(f.checkoutURL, "/") + "/checkout/" + row.String("id")}, nil
}
