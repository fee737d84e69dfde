package payments

import (
	"context"

	"dinemart/internal/common"
)

// DefaultProvider is used when a request does not name one.
const DefaultProvider = "guidini"

// Registry maps provider names to strategies. It is built once at startup and
// passed by reference into the order coordinator and handlers.
type Registry struct {
	strategies map[string]Strategy
}

func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register adds a provider under the given name, replacing any previous one.
func (r *Registry) Register(name string, strategy Strategy) {
	r.strategies[name] = strategy
}

// Providers returns the registered provider names.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	return names
}

// Initiate validates the amount and dispatches to the named provider.
// Validation failures happen before any network call.
func (r *Registry) Initiate(ctx context.Context, amount int64, provider, currency string, metadata map[string]string) (*InitiateResponse, error) {
	if amount <= 0 {
		return nil, common.BusinessRulef("payment amount must be greater than 0")
	}

	strategy, err := r.lookup(provider)
	if err != nil {
		return nil, err
	}
	return strategy.InitiatePayment(ctx, amount, currency, metadata), nil
}

// Verify dispatches a verification request to the named provider.
func (r *Registry) Verify(ctx context.Context, paymentID, provider string) (*VerifyResponse, error) {
	strategy, err := r.lookup(provider)
	if err != nil {
		return nil, err
	}
	return strategy.VerifyPayment(ctx, paymentID), nil
}

func (r *Registry) lookup(provider string) (Strategy, error) {
	if provider == "" {
		provider = DefaultProvider
	}
	strategy, ok := r.strategies[provider]
	if !ok {
		return nil, common.BusinessRulef("payment provider '%s' is not supported", provider)
	}
	return strategy, nil
}
