package domain

import (
	"encoding/json"
	"time"

	"helio/pharmacy/internal/stock"
)

// Medicine is one inventory line. Its status is never stored; it is always
// derived from Stock.
type Medicine struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Category     string    `db:"category" json:"category"`
	Manufacturer string    `db:"manufacturer" json:"manufacturer"`
	Stock        int64     `db:"stock" json:"stock"`
	ExpiryDate   string    `db:"expiry_date" json:"expiry_date"`
	BatchNumber  string    `db:"batch_number" json:"batch_number,omitempty"`
	Description  string    `db:"description" json:"description,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Status classifies the current stock level.
func (m Medicine) Status() stock.Status {
	return stock.Classify(m.Stock)
}

// Expiry parses ExpiryDate.
func (m Medicine) Expiry() (time.Time, error) {
	return stock.ParseDate(m.ExpiryDate)
}

// SearchFields lists the text fields matched by free-text search.
func (m Medicine) SearchFields() []string {
	return []string{m.Name, m.Category, m.Manufacturer, m.BatchNumber, m.Description}
}

type medicineAlias Medicine

// MarshalJSON adds the derived status to the encoded record.
func (m Medicine) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		medicineAlias
		Status stock.Status `json:"status"`
	}{medicineAlias(m), m.Status()})
}
