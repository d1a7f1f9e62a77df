package requests

import (
	"context"
	"sync"
	"time"

	"helio/pharmacy/domain"
)

type MemoryRepository struct {
	mu         sync.RWMutex
	items      []domain.PatientRequest
	nextID     int64
	nextLineID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) List(_ context.Context) ([]domain.PatientRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.PatientRequest, len(r.items))
	for i, req := range r.items {
		out[i] = clone(req)
	}
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, id int64) (domain.PatientRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, req := range r.items {
		if req.ID == id {
			return clone(req), nil
		}
	}
	return domain.PatientRequest{}, ErrNotFound
}

func (r *MemoryRepository) Insert(_ context.Context, req domain.PatientRequest) (domain.PatientRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	req = clone(req)
	req.ID = r.nextID
	for i := range req.Medicines {
		r.nextLineID++
		req.Medicines[i].ID = r.nextLineID
		req.Medicines[i].RequestID = req.ID
	}
	r.items = append(r.items, req)
	return clone(req), nil
}

func (r *MemoryRepository) SetStatus(_ context.Context, id int64, status domain.RequestStatus, completedAt *time.Time, updatedAt time.Time) (domain.PatientRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Status = status
			r.items[i].CompletedAt = completedAt
			r.items[i].UpdatedAt = updatedAt
			return clone(r.items[i]), nil
		}
	}
	return domain.PatientRequest{}, ErrNotFound
}

// clone copies the medicine lines so callers never share the stored slice.
func clone(req domain.PatientRequest) domain.PatientRequest {
	lines := make([]domain.RequestedMedicine, len(req.Medicines))
	copy(lines, req.Medicines)
	req.Medicines = lines
	return req
}
