package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"helio/pharmacy/domain"
	"helio/pharmacy/internal/database"
	"helio/pharmacy/internal/migrations"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Connect(":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSQLiteRepository_CRUD(t *testing.T) {
	repo := NewSQLiteRepository(newTestDB(t))
	ctx := context.Background()

	a, err := repo.Insert(ctx, domain.Medicine{Name: "Paracetamol", Stock: 40, ExpiryDate: "2026-03-15"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	b, err := repo.Insert(ctx, domain.Medicine{Name: "Ibuprofen", Stock: 5, ExpiryDate: "2025-11-01", Category: "Analgesics"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if a.ID == 0 || b.ID <= a.ID {
		t.Fatalf("expected increasing ids, got %d and %d", a.ID, b.ID)
	}

	b.Stock = 0
	if _, err := repo.Replace(ctx, b); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err := repo.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Stock != 0 || got.Category != "Analgesics" {
		t.Errorf("unexpected record %+v", got)
	}

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Errorf("repeated delete should be a no-op, got %v", err)
	}
	if _, err := repo.Get(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Replace(ctx, domain.Medicine{ID: 999, Name: "x", ExpiryDate: "2026-01-01"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on replace, got %v", err)
	}

	c, err := repo.Insert(ctx, domain.Medicine{Name: "Cetirizine", Stock: 80, ExpiryDate: "2026-05-05"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if c.ID <= b.ID {
		t.Errorf("ids must not be reused, got %d after %d", c.ID, b.ID)
	}

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].ID != b.ID || items[1].ID != c.ID {
		t.Errorf("unexpected list %+v", items)
	}
}

func TestSQLiteRepository_ServiceRoundTrip(t *testing.T) {
	svc := NewService(NewSQLiteRepository(newTestDB(t)))
	ctx := context.Background()

	m, err := svc.Add(ctx, NewMedicine{Name: "Insulin Glargine", Stock: 15, ExpiryDate: "2026-02-01"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	updated, err := svc.Update(ctx, m.ID, Patch{Stock: int64Ptr(0)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status() != "out-of-stock" {
		t.Errorf("expected out-of-stock, got %s", updated.Status())
	}
}

func TestSQLiteRepository_Count(t *testing.T) {
	repo := NewSQLiteRepository(newTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"A", "B"} {
		if _, err := repo.Insert(ctx, domain.Medicine{Name: name, Stock: 1, ExpiryDate: "2026-01-01"}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if err := repo.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 medicine, got %d", n)
	}
}
