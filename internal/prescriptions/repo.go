package prescriptions

import (
	"context"
	"errors"

	"helio/pharmacy/domain"
)

var ErrNotFound = errors.New("prescription not found")

type Repository interface {
	List(ctx context.Context) ([]domain.Prescription, error)
	Get(ctx context.Context, id int64) (domain.Prescription, error)
	Insert(ctx context.Context, p domain.Prescription) (domain.Prescription, error)
	SetStatus(ctx context.Context, id int64, status domain.PrescriptionStatus) error
}
