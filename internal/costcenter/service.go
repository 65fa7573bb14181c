package costcenter

import (
	"context"
)

type Repository interface {
	FindMapping(ctx context.Context, payee string) (string, error)
	CreateMapping(ctx context.Context, payeePattern, costCenter string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the cost center usually charged for the given payee.
// Returns empty string if no mapping is known.
func (s *Service) Suggest(ctx context.Context, payee string) (string, error) {
	return s.repo.FindMapping(ctx, payee)
}

// Learn remembers that payees matching the pattern charge the given cost center.
func (s *Service) Learn(ctx context.Context, payeePattern, costCenter string) error {
	return s.repo.CreateMapping(ctx, payeePattern, costCenter)
}
