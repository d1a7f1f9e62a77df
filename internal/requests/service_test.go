package requests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"helio/pharmacy/domain"
	"helio/pharmacy/internal/triage"
)

var testNow = time.Date(2024, 12, 21, 10, 0, 0, 0, time.UTC)

func newTestService() *Service {
	return NewService(NewMemoryRepository(), WithClock(func() time.Time { return testNow }))
}

func cost(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func seed(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	inputs := []NewRequest{
		{PatientID: "PAT-001", PatientName: "Kavin Kumar", Urgency: "High", RequestDate: "2024-12-20",
			Medicines: []NewLine{
				{MedicineName: "Adalimumab 40mg", Description: "Injection for rheumatoid arthritis", Quantity: 4, EstimatedCost: cost(15000)},
				{ImageURL: "/images/prescriptions/kavin-1.jpg", Description: "Prescription image for heart medication", Quantity: 1},
			}},
		{PatientID: "PAT-002", PatientName: "Priya Sharma", Urgency: "critical",
			Medicines: []NewLine{{MedicineName: "Pembrolizumab", Quantity: 1, EstimatedCost: cost(75000)}}},
		{PatientID: "PAT-003", PatientName: "Rajesh Gupta", Urgency: "Low",
			Medicines: []NewLine{{MedicineName: "Rituximab", Quantity: 1}}},
	}
	for _, in := range inputs {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("Create(%s): %v", in.PatientName, err)
		}
	}
}

func TestService_Create(t *testing.T) {
	svc := newTestService()
	seed(t, svc)

	r, err := svc.Get(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Status != domain.RequestPending {
		t.Errorf("new requests start Pending, got %s", r.Status)
	}
	if r.Urgency != domain.UrgencyCritical {
		t.Errorf("urgency should be normalised, got %s", r.Urgency)
	}
	if r.RequestDate != "2024-12-21" {
		t.Errorf("missing date should default to today, got %s", r.RequestDate)
	}

	first, _ := svc.Get(context.Background(), 1)
	if first.TotalItems() != 2 || first.Medicines[1].RequestType() != "image" {
		t.Errorf("unexpected lines %+v", first.Medicines)
	}
	if !first.EstimatedTotal().Equal(decimal.NewFromInt(15000)) {
		t.Errorf("unexpected estimated total %s", first.EstimatedTotal())
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := map[string]NewRequest{
		"no name":       {Urgency: "Low", Medicines: []NewLine{{MedicineName: "X", Quantity: 1}}},
		"bad urgency":   {PatientName: "A", Urgency: "urgent", Medicines: []NewLine{{MedicineName: "X", Quantity: 1}}},
		"no medicines":  {PatientName: "A", Urgency: "Low"},
		"name and img":  {PatientName: "A", Urgency: "Low", Medicines: []NewLine{{MedicineName: "X", ImageURL: "/x.jpg", Quantity: 1}}},
		"neither":       {PatientName: "A", Urgency: "Low", Medicines: []NewLine{{Quantity: 1}}},
		"zero quantity": {PatientName: "A", Urgency: "Low", Medicines: []NewLine{{MedicineName: "X"}}},
		"bad date":      {PatientName: "A", Urgency: "Low", RequestDate: "yesterday", Medicines: []NewLine{{MedicineName: "X", Quantity: 1}}},
		"negative cost": {PatientName: "A", Urgency: "Low", Medicines: []NewLine{{MedicineName: "X", Quantity: 1, EstimatedCost: cost(-5)}}},
	}
	for name, in := range cases {
		if _, err := svc.Create(ctx, in); !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: expected ErrInvalid, got %v", name, err)
		}
	}
	all, _ := svc.List(ctx, triage.Criteria{})
	if len(all) != 0 {
		t.Errorf("invalid requests must not be stored, got %d", len(all))
	}
}

func TestService_ListWithCriteria(t *testing.T) {
	svc := newTestService()
	seed(t, svc)
	ctx := context.Background()

	if _, err := svc.Transition(ctx, 3, domain.RequestAvailable); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := svc.List(ctx, triage.Criteria{Status: "Pending", Urgency: "High"})
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("unexpected result %+v", got)
	}
	got, _ = svc.List(ctx, triage.Criteria{Query: "heart"})
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("nested description should match, got %+v", got)
	}
	got, _ = svc.List(ctx, triage.Criteria{Status: triage.All, Urgency: "Low"})
	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("unexpected result %+v", got)
	}

	s, _ := svc.Summary(ctx)
	if s.Total != 3 || s.Pending != 2 || s.Available != 1 || s.Critical != 1 {
		t.Errorf("unexpected summary %+v", s)
	}
}

func TestService_Transition(t *testing.T) {
	svc := newTestService()
	seed(t, svc)
	ctx := context.Background()

	for _, st := range []domain.RequestStatus{domain.RequestUnderReview, domain.RequestOrdered, domain.RequestReadyForPickup} {
		r, err := svc.Transition(ctx, 1, st)
		if err != nil {
			t.Fatalf("Transition(%s): %v", st, err)
		}
		if r.Status != st || r.CompletedAt != nil {
			t.Errorf("unexpected request %+v", r)
		}
	}

	r, err := svc.Transition(ctx, 1, domain.RequestCompleted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.CompletedAt == nil || !r.CompletedAt.Equal(testNow) {
		t.Errorf("completion should be stamped, got %v", r.CompletedAt)
	}

	if _, err := svc.Transition(ctx, 1, domain.RequestPending); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.Transition(ctx, 1, domain.RequestCompleted); err != nil {
		t.Errorf("repeating the current status is a no-op, got %v", err)
	}
	if _, err := svc.Transition(ctx, 42, domain.RequestOrdered); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	svc := newTestService()
	seed(t, svc)
	ctx := context.Background()

	r, _ := svc.Get(ctx, 1)
	r.Medicines[0].MedicineName = "tampered"
	again, _ := svc.Get(ctx, 1)
	if again.Medicines[0].MedicineName != "Adalimumab 40mg" {
		t.Errorf("stored lines were mutated through a returned copy")
	}
}

// slowRepository widens the gap between reading and writing a status.
type slowRepository struct {
	*MemoryRepository
}

func (r slowRepository) Get(ctx context.Context, id int64) (domain.PatientRequest, error) {
	req, err := r.MemoryRepository.Get(ctx, id)
	time.Sleep(20 * time.Millisecond)
	return req, err
}

func TestService_Transition_CompletedIsTerminalUnderRace(t *testing.T) {
	svc := NewService(slowRepository{NewMemoryRepository()}, WithClock(func() time.Time { return testNow }))
	seed(t, svc)
	ctx := context.Background()

	var wg sync.WaitGroup
	var orderedErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := svc.Transition(ctx, 1, domain.RequestCompleted); err != nil {
			t.Errorf("Transition(Completed): %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		time.Sleep(5 * time.Millisecond)
		_, orderedErr = svc.Transition(ctx, 1, domain.RequestOrdered)
	}()
	wg.Wait()

	if orderedErr != nil && !errors.Is(orderedErr, ErrInvalidTransition) {
		t.Errorf("unexpected error: %v", orderedErr)
	}
	got, _ := svc.Get(ctx, 1)
	if got.Status != domain.RequestCompleted || got.CompletedAt == nil {
		t.Errorf("completed request was reopened: %+v", got)
	}
}
