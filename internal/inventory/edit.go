package inventory

import (
	"context"
	"time"

	"helio/pharmacy/domain"
)

// Draft is an editor's uncommitted change set for one medicine. Fields
// previews the changes over Original; the committed record is untouched
// until SaveEdit.
type Draft struct {
	MedicineID int64           `json:"medicine_id"`
	Original   domain.Medicine `json:"original"`
	Fields     domain.Medicine `json:"draft"`
	Changes    Patch           `json:"changes"`
	StartedAt  time.Time       `json:"started_at"`
}

// BeginEdit opens a draft of id for editor. An editor holds at most one
// draft; starting another discards the previous one.
func (s *Service) BeginEdit(ctx context.Context, editor string, id int64) (Draft, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return Draft{}, err
	}
	d := &Draft{MedicineID: id, Original: m, Fields: m, StartedAt: s.now().UTC()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.edits[editor]; ok && prev.MedicineID != id {
		s.log.Debug().Str("editor", editor).Int64("medicine_id", prev.MedicineID).Msg("draft discarded")
	}
	s.edits[editor] = d
	return *d, nil
}

// CurrentEdit returns the editor's open draft, if any.
func (s *Service) CurrentEdit(editor string) (Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.edits[editor]
	if !ok {
		return Draft{}, false
	}
	return *d, true
}

// EditDraft applies p to the draft only.
func (s *Service) EditDraft(editor string, p Patch) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.edits[editor]
	if !ok {
		return Draft{}, ErrNoEdit
	}
	d.Changes = d.Changes.Merge(p)
	d.Fields = d.Changes.Apply(d.Original)
	return *d, nil
}

// SaveEdit applies the draft's changes to the current stored record, so
// updates committed since BeginEdit to fields the editor did not touch are
// kept. On a validation error the draft stays open so it can be corrected.
func (s *Service) SaveEdit(ctx context.Context, editor string) (domain.Medicine, error) {
	d, ok := s.CurrentEdit(editor)
	if !ok {
		return domain.Medicine{}, ErrNoEdit
	}

	s.writeMu.Lock()
	stored, err := s.saveDraft(ctx, d)
	s.writeMu.Unlock()
	if err != nil {
		if IsValidation(err) {
			return domain.Medicine{}, err
		}
		s.CancelEdit(editor)
		return domain.Medicine{}, err
	}
	s.CancelEdit(editor)
	return stored, nil
}

// saveDraft merges d into the latest record. Callers hold writeMu.
func (s *Service) saveDraft(ctx context.Context, d Draft) (domain.Medicine, error) {
	current, err := s.repo.Get(ctx, d.MedicineID)
	if err != nil {
		return domain.Medicine{}, err
	}
	return s.replace(ctx, d.Changes.Apply(current))
}

// CancelEdit discards the editor's draft without touching the collection.
func (s *Service) CancelEdit(editor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.edits, editor)
}

// dropEdits closes drafts targeting a removed medicine.
func (s *Service) dropEdits(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for editor, d := range s.edits {
		if d.MedicineID == id {
			delete(s.edits, editor)
		}
	}
}
