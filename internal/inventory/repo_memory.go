package inventory

import (
	"context"
	"sync"
	"time"

	"helio/pharmacy/domain"
)

// MemoryRepository keeps medicines in a slice guarded by a mutex.
type MemoryRepository struct {
	mu     sync.RWMutex
	items  []domain.Medicine
	nextID int64
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

func (r *MemoryRepository) List(_ context.Context) ([]domain.Medicine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Medicine, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, id int64) (domain.Medicine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.index(id); i >= 0 {
		return r.items[i], nil
	}
	return domain.Medicine{}, ErrNotFound
}

func (r *MemoryRepository) Insert(_ context.Context, m domain.Medicine) (domain.Medicine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	now := r.now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	r.items = append(r.items, m)
	return m, nil
}

func (r *MemoryRepository) Replace(_ context.Context, m domain.Medicine) (domain.Medicine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(m.ID)
	if i < 0 {
		return domain.Medicine{}, ErrNotFound
	}
	m.CreatedAt = r.items[i].CreatedAt
	m.UpdatedAt = r.now().UTC()
	r.items[i] = m
	return m, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.index(id); i >= 0 {
		r.items = append(r.items[:i:i], r.items[i+1:]...)
	}
	return nil
}

func (r *MemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}

func (r *MemoryRepository) index(id int64) int {
	for i, m := range r.items {
		if m.ID == id {
			return i
		}
	}
	return -1
}
