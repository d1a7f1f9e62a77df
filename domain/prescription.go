package domain

import (
	"fmt"
	"strings"
)

type PrescriptionStatus string

const (
	PrescriptionPending    PrescriptionStatus = "Pending"
	PrescriptionProcessing PrescriptionStatus = "Processing"
	PrescriptionReady      PrescriptionStatus = "Ready"
	PrescriptionDispensed  PrescriptionStatus = "Dispensed"
)

// PrescriptionStatuses is the dispensing pipeline in order.
var PrescriptionStatuses = []PrescriptionStatus{
	PrescriptionPending,
	PrescriptionProcessing,
	PrescriptionReady,
	PrescriptionDispensed,
}

func ParsePrescriptionStatus(s string) (PrescriptionStatus, error) {
	for _, st := range PrescriptionStatuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown prescription status %q", s)
}

// Next returns the following pipeline stage. Dispensed has none.
func (s PrescriptionStatus) Next() (PrescriptionStatus, bool) {
	for i, st := range PrescriptionStatuses {
		if st == s && i+1 < len(PrescriptionStatuses) {
			return PrescriptionStatuses[i+1], true
		}
	}
	return s, false
}

type Prescription struct {
	ID        int64              `db:"id" json:"id"`
	Patient   string             `db:"patient" json:"patient"`
	Doctor    string             `db:"doctor" json:"doctor"`
	Date      string             `db:"date" json:"date"`
	Status    PrescriptionStatus `db:"status" json:"status"`
	Medicines []string           `db:"-" json:"medicines"`
}

func (p Prescription) SearchFields() []string {
	return append([]string{p.Patient, p.Doctor}, p.Medicines...)
}
