package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"helio/pharmacy/domain"
	"helio/pharmacy/internal/requests"
	"helio/pharmacy/internal/triage"
)

type requestLineResponse struct {
	domain.RequestedMedicine
	RequestType string `json:"request_type"`
}

type requestResponse struct {
	domain.PatientRequest
	Medicines      []requestLineResponse `json:"medicines"`
	TotalItems     int                   `json:"total_items"`
	EstimatedTotal decimal.Decimal       `json:"estimated_total"`
}

func requestView(req domain.PatientRequest) requestResponse {
	lines := make([]requestLineResponse, 0, len(req.Medicines))
	for _, m := range req.Medicines {
		lines = append(lines, requestLineResponse{RequestedMedicine: m, RequestType: m.RequestType()})
	}
	return requestResponse{
		PatientRequest: req,
		Medicines:      lines,
		TotalItems:     req.TotalItems(),
		EstimatedTotal: req.EstimatedTotal(),
	}
}

func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria, err := triage.NewCriteria(q.Get("query"), q.Get("status"), q.Get("urgency"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.requests.List(r.Context(), criteria)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	out := make([]requestResponse, 0, len(items))
	for _, req := range items {
		out = append(out, requestView(req))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) createRequest(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, staffRoles...) {
		return
	}
	var body requests.NewRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := h.requests.Create(r.Context(), body)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, requestView(req))
}

func (h *Handler) requestSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.requests.Summary(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) getRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request id")
		return
	}
	req, err := h.requests.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, requestView(req))
}

func (h *Handler) transitionRequest(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, staffRoles...) {
		return
	}
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request id")
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, err := domain.ParseRequestStatus(body.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := h.requests.Transition(r.Context(), id, status)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, requestView(req))
}
