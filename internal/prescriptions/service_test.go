package prescriptions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"helio/pharmacy/domain"
	"helio/pharmacy/internal/database"
	"helio/pharmacy/internal/migrations"
)

func seed(t *testing.T, svc *Service) {
	t.Helper()
	inputs := []NewPrescription{
		{Patient: "John Doe", Doctor: "Dr. Smith", Date: "2024-12-20", Medicines: []string{"Paracetamol 500mg", "Amoxicillin 250mg"}},
		{Patient: "Jane Smith", Doctor: "Dr. Johnson", Date: "2024-12-19", Medicines: []string{"Ibuprofen 400mg", "Aspirin 100mg"}},
		{Patient: "Bob Wilson", Doctor: "Dr. Brown", Date: "2024-12-18", Medicines: []string{"Metformin 500mg", "Lisinopril 10mg"}},
	}
	for _, in := range inputs {
		if _, err := svc.Create(context.Background(), in); err != nil {
			t.Fatalf("Create(%s): %v", in.Patient, err)
		}
	}
}

func TestService_ListAndAdvance(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	seed(t, svc)
	ctx := context.Background()

	got, _ := svc.List(ctx, "smith", "")
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("expected patient and doctor matches, got %+v", got)
	}
	got, _ = svc.List(ctx, "metformin", "")
	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("medicine names should be searchable, got %+v", got)
	}

	for _, want := range []domain.PrescriptionStatus{domain.PrescriptionProcessing, domain.PrescriptionReady, domain.PrescriptionDispensed} {
		p, err := svc.Advance(ctx, 2)
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		if p.Status != want {
			t.Errorf("expected %s, got %s", want, p.Status)
		}
	}
	if _, err := svc.Advance(ctx, 2); !errors.Is(err, ErrDispensed) {
		t.Errorf("expected ErrDispensed, got %v", err)
	}
	if _, err := svc.Advance(ctx, 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	got, _ = svc.List(ctx, "", domain.PrescriptionDispensed)
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("unexpected status filter result %+v", got)
	}

	counts, _ := svc.Counts(ctx)
	if counts[domain.PrescriptionPending] != 2 || counts[domain.PrescriptionDispensed] != 1 || counts[domain.PrescriptionReady] != 0 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	_, err := svc.Create(context.Background(), NewPrescription{Date: "20/12/2024", Medicines: []string{" "}})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestSQLiteRepository_Prescriptions(t *testing.T) {
	db, err := database.Connect(":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := NewService(NewSQLiteRepository(db))
	seed(t, svc)
	ctx := context.Background()

	p, err := svc.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(p.Medicines) != 2 || p.Medicines[0] != "Paracetamol 500mg" {
		t.Errorf("medicine order not preserved: %v", p.Medicines)
	}
	if _, err := svc.Advance(ctx, 1); err != nil {
		t.Fatalf("advance: %v", err)
	}
	all, err := svc.List(ctx, "", domain.PrescriptionProcessing)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].ID != 1 || len(all[0].Medicines) != 2 {
		t.Errorf("unexpected list %+v", all)
	}
}

// slowRepository widens the gap between reading and writing a status.
type slowRepository struct {
	*MemoryRepository
}

func (r slowRepository) Get(ctx context.Context, id int64) (domain.Prescription, error) {
	p, err := r.MemoryRepository.Get(ctx, id)
	time.Sleep(10 * time.Millisecond)
	return p, err
}

func TestService_Advance_Concurrent(t *testing.T) {
	svc := NewService(slowRepository{NewMemoryRepository()}, WithLogger(zerolog.Nop()))
	ctx := context.Background()
	p, err := svc.Create(ctx, NewPrescription{Patient: "John Doe", Doctor: "Dr. Smith", Date: "2024-12-20", Medicines: []string{"Paracetamol 500mg"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		advanced  int
		dispensed int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Advance(ctx, p.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				advanced++
			case errors.Is(err, ErrDispensed):
				dispensed++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if advanced != 3 || dispensed != 3 {
		t.Errorf("expected 3 advances and 3 rejections, got %d and %d", advanced, dispensed)
	}
	got, _ := svc.Get(ctx, p.ID)
	if got.Status != domain.PrescriptionDispensed {
		t.Errorf("expected Dispensed, got %s", got.Status)
	}
}
