package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"helio/pharmacy/domain"
	"helio/pharmacy/internal/stock"
	"helio/pharmacy/internal/triage"
)

var (
	ErrInvalid = errors.New("invalid patient request")
	// ErrInvalidTransition is returned for changes out of a Completed request.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// NewLine is one medicine in an intake submission.
type NewLine struct {
	MedicineName         string           `json:"medicine_name"`
	ImageURL             string           `json:"image_url"`
	Description          string           `json:"description"`
	Strength             string           `json:"strength"`
	Manufacturer         string           `json:"manufacturer"`
	Quantity             int64            `json:"quantity"`
	Notes                string           `json:"notes"`
	FoundInStock         bool             `json:"found_in_stock"`
	AlternativeAvailable bool             `json:"alternative_available"`
	EstimatedCost        *decimal.Decimal `json:"estimated_cost"`
}

// NewRequest is an intake submission from the patient facing flow.
type NewRequest struct {
	PatientID     string    `json:"patient_id"`
	PatientName   string    `json:"patient_name"`
	ContactNumber string    `json:"contact_number"`
	Email         string    `json:"email"`
	RequestDate   string    `json:"request_date"`
	Urgency       string    `json:"urgency"`
	Notes         string    `json:"notes"`
	Medicines     []NewLine `json:"medicines"`
}

type Service struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time

	// transitionMu serialises the status check and write in Transition.
	transitionMu sync.Mutex
}

type Option func(*Service)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l.With().Str("component", "requests").Logger() }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates an intake submission and stores it as Pending.
func (s *Service) Create(ctx context.Context, n NewRequest) (domain.PatientRequest, error) {
	req, err := s.build(n)
	if err != nil {
		return domain.PatientRequest{}, err
	}
	stored, err := s.repo.Insert(ctx, req)
	if err != nil {
		return domain.PatientRequest{}, err
	}
	s.log.Info().Int64("request_id", stored.ID).Str("patient_id", stored.PatientID).
		Str("urgency", string(stored.Urgency)).Int("items", stored.TotalItems()).Msg("patient request created")
	return stored, nil
}

func (s *Service) build(n NewRequest) (domain.PatientRequest, error) {
	var problems []string
	name := strings.TrimSpace(n.PatientName)
	if name == "" {
		problems = append(problems, "patient_name is required")
	}
	urgency, err := domain.ParseUrgency(n.Urgency)
	if err != nil {
		problems = append(problems, "urgency must be one of Low, Medium, High, Critical")
	}
	date := strings.TrimSpace(n.RequestDate)
	if date == "" {
		date = s.now().UTC().Format(stock.DateLayout)
	} else if d, err := stock.ParseDate(date); err != nil {
		problems = append(problems, "request_date must be a YYYY-MM-DD date")
	} else {
		date = d.Format(stock.DateLayout)
	}
	if len(n.Medicines) == 0 {
		problems = append(problems, "at least one medicine is required")
	}

	lines := make([]domain.RequestedMedicine, 0, len(n.Medicines))
	for i, l := range n.Medicines {
		medName := strings.TrimSpace(l.MedicineName)
		image := strings.TrimSpace(l.ImageURL)
		if (medName == "") == (image == "") {
			problems = append(problems, fmt.Sprintf("medicines[%d] needs exactly one of medicine_name or image_url", i))
		}
		if l.Quantity <= 0 {
			problems = append(problems, fmt.Sprintf("medicines[%d].quantity must be positive", i))
		}
		if l.EstimatedCost != nil && l.EstimatedCost.IsNegative() {
			problems = append(problems, fmt.Sprintf("medicines[%d].estimated_cost must not be negative", i))
		}
		lines = append(lines, domain.RequestedMedicine{
			MedicineName:         medName,
			ImageURL:             image,
			Description:          l.Description,
			Strength:             l.Strength,
			Manufacturer:         l.Manufacturer,
			Quantity:             l.Quantity,
			Notes:                l.Notes,
			FoundInStock:         l.FoundInStock,
			AlternativeAvailable: l.AlternativeAvailable,
			EstimatedCost:        l.EstimatedCost,
		})
	}
	if len(problems) > 0 {
		return domain.PatientRequest{}, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}

	patientID := strings.TrimSpace(n.PatientID)
	return domain.PatientRequest{
		PatientID:     patientID,
		PatientName:   name,
		ContactNumber: strings.TrimSpace(n.ContactNumber),
		Email:         strings.TrimSpace(n.Email),
		RequestDate:   date,
		Status:        domain.RequestPending,
		Urgency:       urgency,
		Notes:         n.Notes,
		UpdatedAt:     s.now().UTC(),
		Medicines:     lines,
	}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (domain.PatientRequest, error) {
	return s.repo.Get(ctx, id)
}

// List applies the triage criteria over every stored request.
func (s *Service) List(ctx context.Context, c triage.Criteria) ([]domain.PatientRequest, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return triage.Filter(all, c), nil
}

func (s *Service) Summary(ctx context.Context) (triage.Summary, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return triage.Summary{}, err
	}
	return triage.Summarize(all), nil
}

// Transition sets a new workflow status. Staff may move a request to any
// status except out of Completed, which is terminal.
func (s *Service) Transition(ctx context.Context, id int64, status domain.RequestStatus) (domain.PatientRequest, error) {
	s.transitionMu.Lock()
	defer s.transitionMu.Unlock()
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.PatientRequest{}, err
	}
	if current.Status == status {
		return current, nil
	}
	if current.Status == domain.RequestCompleted {
		return domain.PatientRequest{}, fmt.Errorf("%w: request %d is already completed", ErrInvalidTransition, id)
	}
	now := s.now().UTC()
	var completedAt *time.Time
	if status == domain.RequestCompleted {
		completedAt = &now
	}
	updated, err := s.repo.SetStatus(ctx, id, status, completedAt, now)
	if err != nil {
		return domain.PatientRequest{}, err
	}
	s.log.Info().Int64("request_id", id).Str("from", string(current.Status)).
		Str("to", string(status)).Msg("patient request status changed")
	return updated, nil
}
