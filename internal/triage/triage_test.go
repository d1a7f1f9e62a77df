package triage

import (
	"testing"

	"helio/pharmacy/domain"
)

func sampleRequests() []domain.PatientRequest {
	return []domain.PatientRequest{
		{ID: 1, PatientID: "PAT-001", PatientName: "Kavin Kumar", Status: domain.RequestPending, Urgency: domain.UrgencyHigh,
			Medicines: []domain.RequestedMedicine{{MedicineName: "Adalimumab 40mg", Description: "Injection for rheumatoid arthritis"}}},
		{ID: 2, PatientID: "PAT-002", PatientName: "Priya Sharma", Status: domain.RequestAvailable, Urgency: domain.UrgencyHigh,
			Medicines: []domain.RequestedMedicine{{ImageURL: "/img/p2.jpg", Description: "Prescription for heart medication"}}},
		{ID: 3, PatientID: "PAT-003", PatientName: "Rajesh Gupta", Status: domain.RequestPending, Urgency: domain.UrgencyLow,
			Medicines: []domain.RequestedMedicine{{MedicineName: "Rituximab"}}},
		{ID: 4, PatientID: "PAT-004", PatientName: "Anita Desai", Status: domain.RequestAvailable, Urgency: domain.UrgencyLow},
	}
}

func ids(rs []domain.PatientRequest) []int64 {
	out := make([]int64, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestFilter_Composition(t *testing.T) {
	reqs := sampleRequests()

	got := Filter(reqs, Criteria{Status: "Pending", Urgency: "High"})
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("expected only request 1, got %v", ids(got))
	}

	got = Filter(reqs, Criteria{Status: All, Urgency: "Low"})
	if len(got) != 2 || got[0].ID != 3 || got[1].ID != 4 {
		t.Errorf("status=All should ignore status, got %v", ids(got))
	}

	got = Filter(reqs, Criteria{Status: All, Urgency: All})
	if len(got) != len(reqs) {
		t.Errorf("All/All should return everything, got %v", ids(got))
	}
}

func TestFilter_TextMatchesNestedMedicines(t *testing.T) {
	reqs := sampleRequests()

	cases := map[string][]int64{
		"rituximab": {3},
		"HEART":     {2},
		"pat-004":   {4},
		"kumar":     {1},
		"insulin":   {},
	}
	for q, want := range cases {
		got := ids(Filter(reqs, Criteria{Query: q}))
		if len(got) != len(want) {
			t.Errorf("query %q: got %v, want %v", q, got, want)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("query %q: got %v, want %v", q, got, want)
			}
		}
	}
}

func TestFilter_OrderIndependent(t *testing.T) {
	reqs := sampleRequests()
	c := Criteria{Query: "a", Status: "Available", Urgency: "Low"}

	direct := ids(Filter(reqs, c))
	staged := ids(Filter(Filter(Filter(reqs, Criteria{Urgency: "Low"}), Criteria{Query: "a"}), Criteria{Status: "Available"}))
	if len(direct) != len(staged) {
		t.Fatalf("direct %v vs staged %v", direct, staged)
	}
	for i := range direct {
		if direct[i] != staged[i] {
			t.Errorf("direct %v vs staged %v", direct, staged)
		}
	}
}

func TestNewCriteria(t *testing.T) {
	c, err := NewCriteria("x", "under review", "critical")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != "Under Review" || c.Urgency != "Critical" {
		t.Errorf("unexpected criteria %+v", c)
	}

	c, err = NewCriteria("", "all", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != "" || c.Urgency != "" {
		t.Errorf("All should normalise to empty, got %+v", c)
	}

	if _, err := NewCriteria("", "Shipped", ""); err == nil {
		t.Error("expected error for unknown status")
	}
	if _, err := NewCriteria("", "", "urgent"); err == nil {
		t.Error("expected error for unknown urgency")
	}
}

func TestSummarize(t *testing.T) {
	reqs := sampleRequests()
	reqs = append(reqs, domain.PatientRequest{ID: 5, Status: domain.RequestReadyForPickup, Urgency: domain.UrgencyCritical})

	s := Summarize(reqs)
	if s.Total != 5 || s.Pending != 2 || s.Available != 2 || s.ReadyForPickup != 1 || s.Critical != 1 || s.UnderReview != 0 {
		t.Errorf("unexpected summary %+v", s)
	}
}
