package branches

import (
	"context"
	"fmt"

	"github.com/fueldesk/fueldesk/internal/distribution"
	"github.com/fueldesk/fueldesk/internal/platform/httpx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Branch, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Branch, error) {
	if id <= 0 {
		return Branch{}, fmt.Errorf("%w: invalid branch id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, branch Branch) (Branch, error) {
	if err := s.validate(branch); err != nil {
		return Branch{}, err
	}
	return s.repo.Create(ctx, branch)
}

func (s *Service) Update(ctx context.Context, id int64, branch Branch) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid branch id", httpx.ErrValidation)
	}
	if err := s.validate(branch); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, branch)
}

// BranchRef satisfies the distribution service's branch lookup port.
func (s *Service) BranchRef(ctx context.Context, id int64) (distribution.BranchRef, error) {
	branch, err := s.Get(ctx, id)
	if err != nil {
		return distribution.BranchRef{}, err
	}
	return distribution.BranchRef{ID: branch.ID, Name: branch.Name}, nil
}
