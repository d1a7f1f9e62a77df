package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PendingDeletion is the first half of a two-step delete. Nothing is removed
// until the token is confirmed.
type PendingDeletion struct {
	Token      uuid.UUID `json:"token"`
	MedicineID int64     `json:"medicine_id"`
	Name       string    `json:"name"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// RequestDelete issues a confirmation token for removing id.
func (s *Service) RequestDelete(ctx context.Context, id int64) (PendingDeletion, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return PendingDeletion{}, err
	}
	now := s.now()
	p := PendingDeletion{
		Token:      uuid.New(),
		MedicineID: m.ID,
		Name:       m.Name,
		ExpiresAt:  now.Add(s.confirmTTL).UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prunePending(now)
	s.pending[p.Token] = p
	return p, nil
}

// ConfirmDelete consumes token and removes the medicine it names.
func (s *Service) ConfirmDelete(ctx context.Context, token uuid.UUID) (PendingDeletion, error) {
	s.mu.Lock()
	p, ok := s.pending[token]
	delete(s.pending, token)
	s.mu.Unlock()

	if !ok || !s.now().Before(p.ExpiresAt) {
		return PendingDeletion{}, ErrConfirmation
	}
	if err := s.Remove(ctx, p.MedicineID); err != nil {
		return PendingDeletion{}, err
	}
	return p, nil
}

// CancelDelete withdraws a pending deletion.
func (s *Service) CancelDelete(token uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[token]; !ok {
		return ErrConfirmation
	}
	delete(s.pending, token)
	return nil
}

// prunePending drops expired tokens. Callers hold mu.
func (s *Service) prunePending(now time.Time) {
	for token, p := range s.pending {
		if !now.Before(p.ExpiresAt) {
			delete(s.pending, token)
		}
	}
}
