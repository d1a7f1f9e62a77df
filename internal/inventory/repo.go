package inventory

import (
	"context"

	"helio/pharmacy/domain"
)

// Repository persists medicines in insertion order. Ids are never reused.
type Repository interface {
	List(ctx context.Context) ([]domain.Medicine, error)
	Get(ctx context.Context, id int64) (domain.Medicine, error)
	Insert(ctx context.Context, m domain.Medicine) (domain.Medicine, error)
	Replace(ctx context.Context, m domain.Medicine) (domain.Medicine, error)
	// Delete removes id. Missing ids are not an error.
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}
