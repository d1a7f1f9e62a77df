package requests

import (
	"context"
	"errors"
	"time"

	"helio/pharmacy/domain"
)

var ErrNotFound = errors.New("patient request not found")

// Repository stores patient requests with their medicine lines.
type Repository interface {
	List(ctx context.Context) ([]domain.PatientRequest, error)
	Get(ctx context.Context, id int64) (domain.PatientRequest, error)
	Insert(ctx context.Context, r domain.PatientRequest) (domain.PatientRequest, error)
	// SetStatus records a workflow transition. completedAt is nil unless the
	// request reached Completed.
	SetStatus(ctx context.Context, id int64, status domain.RequestStatus, completedAt *time.Time, updatedAt time.Time) (domain.PatientRequest, error)
}
