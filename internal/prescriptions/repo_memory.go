package prescriptions

import (
	"context"
	"sync"

	"helio/pharmacy/domain"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	items  []domain.Prescription
	nextID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) List(_ context.Context) ([]domain.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Prescription, len(r.items))
	for i, p := range r.items {
		out[i] = clone(p)
	}
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, id int64) (domain.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.items {
		if p.ID == id {
			return clone(p), nil
		}
	}
	return domain.Prescription{}, ErrNotFound
}

func (r *MemoryRepository) Insert(_ context.Context, p domain.Prescription) (domain.Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p = clone(p)
	p.ID = r.nextID
	r.items = append(r.items, p)
	return clone(p), nil
}

func (r *MemoryRepository) SetStatus(_ context.Context, id int64, status domain.PrescriptionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Status = status
			return nil
		}
	}
	return ErrNotFound
}

func clone(p domain.Prescription) domain.Prescription {
	p.Medicines = append([]string(nil), p.Medicines...)
	return p
}
