package inventory

import (
	"encoding/json"
	"strings"
	"time"

	"helio/pharmacy/domain"
	"helio/pharmacy/internal/stock"
)

// NewMedicine carries the user supplied fields of a new inventory line.
type NewMedicine struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	Manufacturer string `json:"manufacturer"`
	Stock        int64  `json:"stock"`
	ExpiryDate   string `json:"expiry_date"`
	BatchNumber  string `json:"batch_number"`
	Description  string `json:"description"`
	// Status is accepted from clients and ignored; it is derived from Stock.
	Status json.RawMessage `json:"status,omitempty"`
}

func (n NewMedicine) record() domain.Medicine {
	return domain.Medicine{
		Name:         strings.TrimSpace(n.Name),
		Category:     strings.TrimSpace(n.Category),
		Manufacturer: strings.TrimSpace(n.Manufacturer),
		Stock:        n.Stock,
		ExpiryDate:   strings.TrimSpace(n.ExpiryDate),
		BatchNumber:  strings.TrimSpace(n.BatchNumber),
		Description:  n.Description,
	}
}

// Patch holds a partial update. Nil fields are left untouched.
type Patch struct {
	Name         *string `json:"name,omitempty"`
	Category     *string `json:"category,omitempty"`
	Manufacturer *string `json:"manufacturer,omitempty"`
	Stock        *int64  `json:"stock,omitempty"`
	ExpiryDate   *string `json:"expiry_date,omitempty"`
	BatchNumber  *string `json:"batch_number,omitempty"`
	Description  *string `json:"description,omitempty"`
	// Status is accepted from clients and ignored; it is derived from Stock.
	Status json.RawMessage `json:"status,omitempty"`
}

// Merge returns p overlaid with the fields set in next.
func (p Patch) Merge(next Patch) Patch {
	p.Name = pick(p.Name, next.Name)
	p.Category = pick(p.Category, next.Category)
	p.Manufacturer = pick(p.Manufacturer, next.Manufacturer)
	p.Stock = pick(p.Stock, next.Stock)
	p.ExpiryDate = pick(p.ExpiryDate, next.ExpiryDate)
	p.BatchNumber = pick(p.BatchNumber, next.BatchNumber)
	p.Description = pick(p.Description, next.Description)
	p.Status = nil
	return p
}

func pick[T any](current, next *T) *T {
	if next == nil {
		return current
	}
	v := *next
	return &v
}

// Apply merges p into m and returns the result.
func (p Patch) Apply(m domain.Medicine) domain.Medicine {
	if p.Name != nil {
		m.Name = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		m.Category = strings.TrimSpace(*p.Category)
	}
	if p.Manufacturer != nil {
		m.Manufacturer = strings.TrimSpace(*p.Manufacturer)
	}
	if p.Stock != nil {
		m.Stock = *p.Stock
	}
	if p.ExpiryDate != nil {
		m.ExpiryDate = strings.TrimSpace(*p.ExpiryDate)
	}
	if p.BatchNumber != nil {
		m.BatchNumber = strings.TrimSpace(*p.BatchNumber)
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	return m
}

// Query narrows List results. Zero values disable a filter.
type Query struct {
	Text           string
	Status         stock.Status
	ExpiringWithin time.Duration
}

// Stats summarises the inventory for the dashboard.
type Stats struct {
	stock.Summary
	ExpiringSoon int `json:"expiring_soon"`
	Expired      int `json:"expired"`
}

// validate checks m and rewrites its expiry date into canonical form.
func validate(m *domain.Medicine) error {
	var v ValidationError
	if m.Name == "" {
		v.add("name", "is required")
	}
	if m.Stock < 0 {
		v.add("stock", "must not be negative")
	}
	if m.ExpiryDate == "" {
		v.add("expiry_date", "is required")
	} else if d, err := stock.ParseDate(m.ExpiryDate); err != nil {
		v.add("expiry_date", "must be a YYYY-MM-DD date")
	} else {
		m.ExpiryDate = d.Format(stock.DateLayout)
	}
	return v.orNil()
}
