package aiusage

import (
	"context"
	"errors"
)

// Service orchestrates AI token-usage logic.
type Service struct {
	store *Store
}

// NewService creates a Service backed by the given Store.
func NewService(store *Store) *Service {
	return &Service{store: store}
}

// UseToken deducts one estimate from the caller's monthly allowance.
// If the caller row does not exist yet it is initialised and the token is immediately consumed.
// Returns ErrInsufficientTokens when the quota for the current month is exhausted.
func (s *Service) UseToken(ctx context.Context, uid string) error {
	err := s.store.UseToken(ctx, uid)
	if !errors.Is(err, ErrInsufficientTokens) {
		return err
	}

	// Row may be missing: try to create it, then retry the deduction once.
	if initErr := s.store.EnsureUser(ctx, uid); initErr != nil {
		return initErr
	}
	return s.store.UseToken(ctx, uid)
}

// Usage reports what the caller has left this month.
func (s *Service) Usage(ctx context.Context, uid string) (Usage, error) {
	return s.store.Get(ctx, uid)
}
