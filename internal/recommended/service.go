package recommended

import "context"

const (
	defaultLimit = 8
	maxLimit     = 50
)

type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// TopRated clamps limit to (0, maxLimit] and offset to >= 0.
func (s *Service) TopRated(ctx context.Context, limit, offset int) ([]RecommendedItem, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.TopRated(ctx, limit, offset)
}
