package api

import (
	"net/http"
	"strings"

	"helio/pharmacy/domain"
	"helio/pharmacy/internal/prescriptions"
)

func (h *Handler) listPrescriptions(w http.ResponseWriter, r *http.Request) {
	var status domain.PrescriptionStatus
	if raw := r.URL.Query().Get("status"); raw != "" && !strings.EqualFold(raw, "all") {
		st, err := domain.ParsePrescriptionStatus(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = st
	}
	items, err := h.prescriptions.List(r.Context(), r.URL.Query().Get("query"), status)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) createPrescription(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, staffRoles...) {
		return
	}
	var body prescriptions.NewPrescription
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.prescriptions.Create(r.Context(), body)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handler) prescriptionCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.prescriptions.Counts(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, counts)
}

func (h *Handler) getPrescription(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid prescription id")
		return
	}
	p, err := h.prescriptions.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) advancePrescription(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, staffRoles...) {
		return
	}
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid prescription id")
		return
	}
	p, err := h.prescriptions.Advance(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
