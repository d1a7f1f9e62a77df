package prescriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"helio/pharmacy/domain"
	"helio/pharmacy/internal/search"
	"helio/pharmacy/internal/stock"
)

var (
	ErrInvalid = errors.New("invalid prescription")
	// ErrDispensed is returned when advancing a prescription that has left the pharmacy.
	ErrDispensed = errors.New("prescription already dispensed")
)

type NewPrescription struct {
	Patient   string   `json:"patient"`
	Doctor    string   `json:"doctor"`
	Date      string   `json:"date"`
	Medicines []string `json:"medicines"`
}

type Service struct {
	repo Repository
	log  zerolog.Logger

	// advanceMu serialises the stage check and write in Advance.
	advanceMu sync.Mutex
}

type Option func(*Service)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l.With().Str("component", "prescriptions").Logger() }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new prescription in the Pending stage.
func (s *Service) Create(ctx context.Context, n NewPrescription) (domain.Prescription, error) {
	var problems []string
	patient := strings.TrimSpace(n.Patient)
	doctor := strings.TrimSpace(n.Doctor)
	if patient == "" {
		problems = append(problems, "patient is required")
	}
	if doctor == "" {
		problems = append(problems, "doctor is required")
	}
	date, err := stock.ParseDate(n.Date)
	if err != nil {
		problems = append(problems, "date must be a YYYY-MM-DD date")
	}
	meds := make([]string, 0, len(n.Medicines))
	for _, m := range n.Medicines {
		if m = strings.TrimSpace(m); m != "" {
			meds = append(meds, m)
		}
	}
	if len(meds) == 0 {
		problems = append(problems, "at least one medicine is required")
	}
	if len(problems) > 0 {
		return domain.Prescription{}, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}

	p, err := s.repo.Insert(ctx, domain.Prescription{
		Patient:   patient,
		Doctor:    doctor,
		Date:      date.Format(stock.DateLayout),
		Status:    domain.PrescriptionPending,
		Medicines: meds,
	})
	if err != nil {
		return domain.Prescription{}, err
	}
	s.log.Info().Int64("prescription_id", p.ID).Msg("prescription created")
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Prescription, error) {
	return s.repo.Get(ctx, id)
}

// List returns prescriptions matching the free-text query and, when set,
// the status.
func (s *Service) List(ctx context.Context, query string, status domain.PrescriptionStatus) ([]domain.Prescription, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := search.Filter(all, query, domain.Prescription.SearchFields)
	if status == "" {
		return matched, nil
	}
	out := make([]domain.Prescription, 0, len(matched))
	for _, p := range matched {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

// Advance moves a prescription to the next dispensing stage.
func (s *Service) Advance(ctx context.Context, id int64) (domain.Prescription, error) {
	s.advanceMu.Lock()
	defer s.advanceMu.Unlock()
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Prescription{}, err
	}
	next, ok := p.Status.Next()
	if !ok {
		return domain.Prescription{}, ErrDispensed
	}
	if err := s.repo.SetStatus(ctx, id, next); err != nil {
		return domain.Prescription{}, err
	}
	s.log.Info().Int64("prescription_id", id).Str("status", string(next)).Msg("prescription advanced")
	p.Status = next
	return p, nil
}

// Counts tallies prescriptions per stage.
func (s *Service) Counts(ctx context.Context) (map[domain.PrescriptionStatus]int, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.PrescriptionStatus]int, len(domain.PrescriptionStatuses))
	for _, st := range domain.PrescriptionStatuses {
		counts[st] = 0
	}
	for _, p := range all {
		counts[p.Status]++
	}
	return counts, nil
}
