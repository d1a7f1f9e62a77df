package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"helio/pharmacy/domain"
	"helio/pharmacy/internal/prescriptions"
	"helio/pharmacy/internal/requests"
)

type demoRequest struct {
	request requests.NewRequest
	status  domain.RequestStatus
}

func cost(rupees int64) *decimal.Decimal {
	d := decimal.NewFromInt(rupees)
	return &d
}

var demoRequests = []demoRequest{
	{
		request: requests.NewRequest{
			PatientID: "PAT-001", PatientName: "Kavin Kumar", ContactNumber: "+91-9876543210",
			Email: "kavin.kumar@email.com", RequestDate: "2024-12-20", Urgency: "High",
			Medicines: []requests.NewLine{
				{
					MedicineName: "Adalimumab 40mg", Description: "Injection for rheumatoid arthritis, prescribed by Dr. Smith",
					Strength: "40mg/0.8ml", Manufacturer: "AbbVie", Quantity: 4, Notes: "Need for monthly treatment",
					AlternativeAvailable: true, EstimatedCost: cost(15000),
				},
				{
					ImageURL: "/images/prescriptions/kavin-prescription-1.jpg", Description: "Prescription image for heart medication",
					Quantity: 1, Notes: "Urgent - running out of current supply",
				},
			},
		},
		status: domain.RequestPending,
	},
	{
		request: requests.NewRequest{
			PatientID: "PAT-002", PatientName: "Priya Sharma", ContactNumber: "+91-9876543211",
			Email: "priya.sharma@email.com", RequestDate: "2024-12-19", Urgency: "Critical",
			Medicines: []requests.NewLine{
				{
					MedicineName: "Pembrolizumab", Description: "Cancer immunotherapy injection, prescribed by oncologist",
					Strength: "100mg/4ml", Manufacturer: "Merck", Quantity: 1, Notes: "Part of chemotherapy treatment cycle",
					EstimatedCost: cost(75000),
				},
			},
		},
		status: domain.RequestUnderReview,
	},
	{
		request: requests.NewRequest{
			PatientID: "PAT-003", PatientName: "Rajesh Gupta", ContactNumber: "+91-9876543212",
			Email: "rajesh.gupta@email.com", RequestDate: "2024-12-18", Urgency: "Medium",
			Medicines: []requests.NewLine{
				{
					ImageURL: "/images/prescriptions/rajesh-prescription-1.jpg", Description: "Prescription for diabetes medication",
					Quantity: 2, Notes: "Monthly supply needed", FoundInStock: true, AlternativeAvailable: true,
				},
				{
					MedicineName: "Rituximab", Description: "Infusion for autoimmune condition",
					Strength: "100mg/10ml", Manufacturer: "Roche", Quantity: 1, Notes: "Quarterly treatment",
					AlternativeAvailable: true, EstimatedCost: cost(25000),
				},
			},
		},
		status: domain.RequestAvailable,
	},
	{
		request: requests.NewRequest{
			PatientID: "PAT-004", PatientName: "Anita Desai", ContactNumber: "+91-9876543213",
			Email: "anita.desai@email.com", RequestDate: "2024-12-17", Urgency: "Low",
			Medicines: []requests.NewLine{
				{
					MedicineName: "Sofosbuvir", Description: "Hepatitis C treatment tablet",
					Strength: "400mg", Manufacturer: "Gilead", Quantity: 84, Notes: "12-week treatment course",
					FoundInStock: true, EstimatedCost: cost(45000),
				},
			},
		},
		status: domain.RequestReadyForPickup,
	},
}

type demoPrescription struct {
	prescription prescriptions.NewPrescription
	advance      int
}

var demoPrescriptions = []demoPrescription{
	{prescriptions.NewPrescription{Patient: "John Doe", Doctor: "Dr. Smith", Date: "2024-12-20", Medicines: []string{"Paracetamol 500mg", "Amoxicillin 250mg"}}, 0},
	{prescriptions.NewPrescription{Patient: "Jane Smith", Doctor: "Dr. Johnson", Date: "2024-12-19", Medicines: []string{"Ibuprofen 400mg", "Aspirin 100mg"}}, 1},
	{prescriptions.NewPrescription{Patient: "Bob Wilson", Doctor: "Dr. Brown", Date: "2024-12-18", Medicines: []string{"Metformin 500mg", "Lisinopril 10mg"}}, 2},
}

// Demo loads sample patient requests and prescriptions into empty stores.
func Demo(ctx context.Context, reqs *requests.Service, rx *prescriptions.Service, log zerolog.Logger) error {
	summary, err := reqs.Summary(ctx)
	if err != nil {
		return err
	}
	if summary.Total == 0 {
		for _, d := range demoRequests {
			created, err := reqs.Create(ctx, d.request)
			if err != nil {
				return fmt.Errorf("seed request for %s: %w", d.request.PatientName, err)
			}
			if d.status != created.Status {
				if _, err := reqs.Transition(ctx, created.ID, d.status); err != nil {
					return fmt.Errorf("seed request status for %s: %w", d.request.PatientName, err)
				}
			}
		}
		log.Info().Int("requests", len(demoRequests)).Msg("seeded demo patient requests")
	}

	counts, err := rx.Counts(ctx)
	if err != nil {
		return err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total > 0 {
		return nil
	}
	for _, d := range demoPrescriptions {
		created, err := rx.Create(ctx, d.prescription)
		if err != nil {
			return fmt.Errorf("seed prescription for %s: %w", d.prescription.Patient, err)
		}
		for i := 0; i < d.advance; i++ {
			if _, err := rx.Advance(ctx, created.ID); err != nil {
				return fmt.Errorf("seed prescription status for %s: %w", d.prescription.Patient, err)
			}
		}
	}
	log.Info().Int("prescriptions", len(demoPrescriptions)).Msg("seeded demo prescriptions")
	return nil
}
