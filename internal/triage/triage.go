// Package triage narrows patient medicine requests for staff review.
package triage

import (
	"strings"

	"helio/pharmacy/domain"
	"helio/pharmacy/internal/search"
)

// All disables a status or urgency predicate.
const All = "All"

// Criteria combines a free-text query with optional status and urgency
// filters. Empty values and All are no-ops.
type Criteria struct {
	Query   string
	Status  string
	Urgency string
}

// NewCriteria validates the enum filters so an unknown label is reported
// instead of silently matching nothing.
func NewCriteria(query, status, urgency string) (Criteria, error) {
	c := Criteria{Query: query}
	if !isAll(status) {
		st, err := domain.ParseRequestStatus(status)
		if err != nil {
			return Criteria{}, err
		}
		c.Status = string(st)
	}
	if !isAll(urgency) {
		u, err := domain.ParseUrgency(urgency)
		if err != nil {
			return Criteria{}, err
		}
		c.Urgency = string(u)
	}
	return c, nil
}

// Match reports whether a request passes every predicate. Enum equality runs
// before the text scan.
func (c Criteria) Match(r domain.PatientRequest) bool {
	if !isAll(c.Status) && string(r.Status) != c.Status {
		return false
	}
	if !isAll(c.Urgency) && string(r.Urgency) != c.Urgency {
		return false
	}
	return search.Matches(c.Query, r.SearchFields()...)
}

// Filter returns the requests matching c in their original order.
func Filter(requests []domain.PatientRequest, c Criteria) []domain.PatientRequest {
	out := make([]domain.PatientRequest, 0, len(requests))
	for _, r := range requests {
		if c.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Summary holds the headline counts shown above the request list.
type Summary struct {
	Total          int `json:"total"`
	Pending        int `json:"pending"`
	UnderReview    int `json:"under_review"`
	Available      int `json:"available"`
	ReadyForPickup int `json:"ready_for_pickup"`
	Critical       int `json:"critical"`
}

func Summarize(requests []domain.PatientRequest) Summary {
	s := Summary{Total: len(requests)}
	for _, r := range requests {
		switch r.Status {
		case domain.RequestPending:
			s.Pending++
		case domain.RequestUnderReview:
			s.UnderReview++
		case domain.RequestAvailable:
			s.Available++
		case domain.RequestReadyForPickup:
			s.ReadyForPickup++
		}
		if r.Urgency == domain.UrgencyCritical {
			s.Critical++
		}
	}
	return s
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, All)
}
