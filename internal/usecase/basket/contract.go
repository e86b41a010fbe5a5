package basket

import (
	"context"

	dombasket "github.com/rahelarnold98/xreco-nmr/internal/domain/basket"
)

// Repository defines the storage contract for baskets.
type Repository interface {
	Create(ctx context.Context, name string) (dombasket.Basket, error)
	Delete(ctx context.Context, id int64) error
	AddElement(ctx context.Context, id int64, resourceID string) error
	DropElement(ctx context.Context, id int64, resourceID string) error
	ListElements(ctx context.Context, id int64) ([]string, error)
	ListAll(ctx context.Context) ([]dombasket.Preview, error)
}
