package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"helio/pharmacy/internal/inventory"
	"helio/pharmacy/internal/stock"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/inventory/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/inventory/"+id, nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/inventory/{id}", "404"))
	if got != 3 {
		t.Errorf("expected 3 requests under the route pattern, got %v", got)
	}
	if n := testutil.CollectAndCount(m.requests); n != 1 {
		t.Errorf("expected a single label set, got %d", n)
	}
}

type fakeStats struct {
	stats inventory.Stats
	err   error
}

func (f fakeStats) Stats(context.Context, time.Duration) (inventory.Stats, error) {
	return f.stats, f.err
}

func TestInventoryCollector(t *testing.T) {
	src := fakeStats{stats: inventory.Stats{
		Summary:      stock.Summary{Total: 6, InStock: 3, LowStock: 2, OutOfStock: 1},
		ExpiringSoon: 2,
		Expired:      1,
	}}
	c := NewInventoryCollector(src, 90*24*time.Hour, zerolog.Nop())

	expected := `
# HELP pharmacy_inventory_medicines Number of medicines per stock status
# TYPE pharmacy_inventory_medicines gauge
pharmacy_inventory_medicines{status="in-stock"} 3
pharmacy_inventory_medicines{status="low-stock"} 2
pharmacy_inventory_medicines{status="out-of-stock"} 1
# HELP pharmacy_inventory_expiring_soon Number of medicines expiring within the alert window
# TYPE pharmacy_inventory_expiring_soon gauge
pharmacy_inventory_expiring_soon 2
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"pharmacy_inventory_medicines", "pharmacy_inventory_expiring_soon"); err != nil {
		t.Error(err)
	}

	if n := testutil.CollectAndCount(NewInventoryCollector(fakeStats{err: errors.New("db down")}, time.Hour, zerolog.Nop())); n != 0 {
		t.Errorf("expected no metrics on error, got %d", n)
	}
}

func TestHandler_ExposesRegisteredCollectors(t *testing.T) {
	m := New()
	if err := m.Register(NewInventoryCollector(fakeStats{}, time.Hour, zerolog.Nop())); err != nil {
		t.Fatalf("Register: %v", err)
	}
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if rec.Code != http.StatusOK || !strings.Contains(string(body), "pharmacy_inventory_medicines") {
		t.Errorf("unexpected exposition (%d): %s", rec.Code, body)
	}
}
