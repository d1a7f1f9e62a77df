package stock

import (
	"fmt"
	"strings"
	"time"
)

// Status is the stock level label derived from an on-hand quantity.
type Status string

const (
	InStock    Status = "in-stock"
	LowStock   Status = "low-stock"
	OutOfStock Status = "out-of-stock"
)

// LowStockThreshold is the highest quantity still reported as low stock.
const LowStockThreshold int64 = 30

// DefaultExpiryWindow flags batches that expire within roughly three months.
const DefaultExpiryWindow = 90 * 24 * time.Hour

// DateLayout is the calendar date format used for expiry dates.
const DateLayout = "2006-01-02"

// Statuses lists every status in display order.
var Statuses = []Status{InStock, LowStock, OutOfStock}

// Classify maps an on-hand quantity to its status. Negative quantities are
// treated as nothing on hand.
func Classify(quantity int64) Status {
	switch {
	case quantity <= 0:
		return OutOfStock
	case quantity <= LowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}

// ParseStatus accepts a status label in any case. Underscores and spaces are
// read as hyphens so "low_stock" and "Low Stock" both resolve.
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("_", "-", " ", "-").Replace(normalized)
	for _, st := range Statuses {
		if string(st) == normalized {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stock status %q", s)
}

// ParseDate reads an ISO 8601 calendar date. Full RFC 3339 timestamps are
// accepted and truncated to their UTC date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ExpiringSoon reports whether expiry falls before now plus window.
func ExpiringSoon(expiry, now time.Time, window time.Duration) bool {
	return expiry.Before(now.Add(window))
}

// Expired reports whether the expiry date is already behind now.
func Expired(expiry, now time.Time) bool {
	return expiry.Before(now)
}

// DaysUntil returns whole days from now until expiry. The result is negative
// once the date has passed.
func DaysUntil(expiry, now time.Time) int {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// Summary counts records per status.
type Summary struct {
	Total      int `json:"total"`
	InStock    int `json:"in_stock"`
	LowStock   int `json:"low_stock"`
	OutOfStock int `json:"out_of_stock"`
}

// Add counts one more record with the given status.
func (s *Summary) Add(st Status) {
	s.Total++
	switch st {
	case InStock:
		s.InStock++
	case LowStock:
		s.LowStock++
	case OutOfStock:
		s.OutOfStock++
	}
}

// Tally classifies every quantity and returns the counts.
func Tally(quantities []int64) Summary {
	var s Summary
	for _, q := range quantities {
		s.Add(Classify(q))
	}
	return s
}
