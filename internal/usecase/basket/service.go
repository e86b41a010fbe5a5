package basket

import (
	"context"
	"fmt"

	"github.com/rahelarnold98/xreco-nmr/internal/domain"
	dombasket "github.com/rahelarnold98/xreco-nmr/internal/domain/basket"
)

// Service handles basket CRUD and membership.
type Service struct {
	repo Repository
}

// New creates a basket service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new basket under a unique name.
func (s *Service) Create(ctx context.Context, name string) (dombasket.Basket, error) {
	if err := dombasket.ValidateName(name); err != nil {
		return dombasket.Basket{}, domain.BadRequest("%v", err)
	}
	b, err := s.repo.Create(ctx, name)
	if err != nil {
		return dombasket.Basket{}, fmt.Errorf("create basket: %w", err)
	}
	return b, nil
}

// Delete removes a basket together with its elements.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete basket: %w", err)
	}
	return nil
}

// AddElement adds a media resource to a basket.
func (s *Service) AddElement(ctx context.Context, id int64, resourceID string) error {
	if resourceID == "" {
		return domain.BadRequest("media resource id is required")
	}
	if err := s.repo.AddElement(ctx, id, resourceID); err != nil {
		return fmt.Errorf("add element: %w", err)
	}
	return nil
}

// DropElement removes a media resource from a basket.
func (s *Service) DropElement(ctx context.Context, id int64, resourceID string) error {
	if resourceID == "" {
		return domain.BadRequest("media resource id is required")
	}
	if err := s.repo.DropElement(ctx, id, resourceID); err != nil {
		return fmt.Errorf("drop element: %w", err)
	}
	return nil
}

// ListElements returns the media resource ids of a basket.
func (s *Service) ListElements(ctx context.Context, id int64) ([]string, error) {
	elems, err := s.repo.ListElements(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}
	return elems, nil
}

// ListAll returns every basket with its size.
func (s *Service) ListAll(ctx context.Context) ([]dombasket.Preview, error) {
	previews, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list baskets: %w", err)
	}
	return previews, nil
}

// ListByUser is reserved until baskets carry an owner.
func (s *Service) ListByUser(context.Context, string) ([]dombasket.Preview, error) {
	return nil, domain.NotImplemented("listing baskets by user")
}
