package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus is the manually driven workflow state of a patient request.
type RequestStatus string

const (
	RequestPending        RequestStatus = "Pending"
	RequestUnderReview    RequestStatus = "Under Review"
	RequestAvailable      RequestStatus = "Available"
	RequestOrdered        RequestStatus = "Ordered"
	RequestReadyForPickup RequestStatus = "Ready for Pickup"
	RequestCompleted      RequestStatus = "Completed"
)

// RequestStatuses lists the workflow states in order.
var RequestStatuses = []RequestStatus{
	RequestPending,
	RequestUnderReview,
	RequestAvailable,
	RequestOrdered,
	RequestReadyForPickup,
	RequestCompleted,
}

// ParseRequestStatus resolves a status label case-insensitively.
func ParseRequestStatus(s string) (RequestStatus, error) {
	for _, st := range RequestStatuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown request status %q", s)
}

// Urgency is the staff-assigned priority of a request.
type Urgency string

const (
	UrgencyLow      Urgency = "Low"
	UrgencyMedium   Urgency = "Medium"
	UrgencyHigh     Urgency = "High"
	UrgencyCritical Urgency = "Critical"
)

// Urgencies lists urgency levels from lowest to highest.
var Urgencies = []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical}

// ParseUrgency resolves an urgency label case-insensitively.
func ParseUrgency(s string) (Urgency, error) {
	for _, u := range Urgencies {
		if strings.EqualFold(string(u), strings.TrimSpace(s)) {
			return u, nil
		}
	}
	return "", fmt.Errorf("unknown urgency %q", s)
}

// RequestedMedicine is a single line of a patient request. Exactly one of
// MedicineName or ImageURL identifies the medicine.
type RequestedMedicine struct {
	ID                   int64            `db:"id" json:"id"`
	RequestID            int64            `db:"request_id" json:"-"`
	MedicineName         string           `db:"medicine_name" json:"medicine_name,omitempty"`
	ImageURL             string           `db:"image_url" json:"image_url,omitempty"`
	Description          string           `db:"description" json:"description,omitempty"`
	Strength             string           `db:"strength" json:"strength,omitempty"`
	Manufacturer         string           `db:"manufacturer" json:"manufacturer,omitempty"`
	Quantity             int64            `db:"quantity" json:"quantity"`
	Notes                string           `db:"notes" json:"notes,omitempty"`
	FoundInStock         bool             `db:"found_in_stock" json:"found_in_stock"`
	AlternativeAvailable bool             `db:"alternative_available" json:"alternative_available"`
	EstimatedCost        *decimal.Decimal `db:"estimated_cost" json:"estimated_cost,omitempty"`
}

// RequestType reports how the medicine was identified: "text" or "image".
func (m RequestedMedicine) RequestType() string {
	if m.ImageURL != "" {
		return "image"
	}
	return "text"
}

// PatientRequest is a patient's request for medicines the pharmacy does not
// normally stock.
type PatientRequest struct {
	ID            int64               `db:"id" json:"id"`
	PatientID     string              `db:"patient_id" json:"patient_id"`
	PatientName   string              `db:"patient_name" json:"patient_name"`
	ContactNumber string              `db:"contact_number" json:"contact_number,omitempty"`
	Email         string              `db:"email" json:"email,omitempty"`
	RequestDate   string              `db:"request_date" json:"request_date"`
	Status        RequestStatus       `db:"status" json:"status"`
	Urgency       Urgency             `db:"urgency" json:"urgency"`
	Notes         string              `db:"notes" json:"notes,omitempty"`
	CompletedAt   *time.Time          `db:"completed_at" json:"completed_at,omitempty"`
	UpdatedAt     time.Time           `db:"updated_at" json:"updated_at"`
	Medicines     []RequestedMedicine `db:"-" json:"medicines"`
}

// TotalItems counts requested lines.
func (r PatientRequest) TotalItems() int {
	return len(r.Medicines)
}

// EstimatedTotal sums the known cost estimates of every line.
func (r PatientRequest) EstimatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, m := range r.Medicines {
		if m.EstimatedCost != nil {
			total = total.Add(*m.EstimatedCost)
		}
	}
	return total
}

// SearchFields lists patient identity fields and every line's name and
// description.
func (r PatientRequest) SearchFields() []string {
	fields := make([]string, 0, 2+2*len(r.Medicines))
	fields = append(fields, r.PatientName, r.PatientID)
	for _, m := range r.Medicines {
		fields = append(fields, m.MedicineName, m.Description)
	}
	return fields
}
