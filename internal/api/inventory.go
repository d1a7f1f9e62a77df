package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"helio/pharmacy/domain"
	"helio/pharmacy/internal/auth"
	"helio/pharmacy/internal/inventory"
	"helio/pharmacy/internal/stock"
)

type medicineFields domain.Medicine

// medicineResponse carries the stored record plus flags derived at response
// time.
type medicineResponse struct {
	medicineFields
	Status       stock.Status `json:"status"`
	ExpiringSoon bool         `json:"expiring_soon"`
	Expired      bool         `json:"expired"`
	DaysToExpiry *int         `json:"days_to_expiry"`
}

func (h *Handler) medicineView(m domain.Medicine, now time.Time) medicineResponse {
	v := medicineResponse{medicineFields: medicineFields(m), Status: m.Status()}
	if exp, err := m.Expiry(); err == nil {
		days := stock.DaysUntil(exp, now)
		v.DaysToExpiry = &days
		v.ExpiringSoon = stock.ExpiringSoon(exp, now, h.expiryWindow)
		v.Expired = stock.Expired(exp, now)
	}
	return v
}

func (h *Handler) medicineViews(items []domain.Medicine) []medicineResponse {
	now := h.inventory.Now()
	out := make([]medicineResponse, 0, len(items))
	for _, m := range items {
		out = append(out, h.medicineView(m, now))
	}
	return out
}

type draftResponse struct {
	MedicineID int64            `json:"medicine_id"`
	Original   medicineResponse `json:"original"`
	Draft      medicineResponse `json:"draft"`
	StartedAt  time.Time        `json:"started_at"`
}

func (h *Handler) draftView(d inventory.Draft) draftResponse {
	now := h.inventory.Now()
	return draftResponse{
		MedicineID: d.MedicineID,
		Original:   h.medicineView(d.Original, now),
		Draft:      h.medicineView(d.Fields, now),
		StartedAt:  d.StartedAt,
	}
}

func parseDays(raw string) (time.Duration, error) {
	days, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || days <= 0 {
		return 0, strconv.ErrSyntax
	}
	return time.Duration(days) * 24 * time.Hour, nil
}

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	q := inventory.Query{Text: r.URL.Query().Get("query")}
	if raw := r.URL.Query().Get("status"); raw != "" && !strings.EqualFold(raw, "all") {
		st, err := stock.ParseStatus(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		q.Status = st
	}
	if raw := r.URL.Query().Get("expiring_within"); raw != "" {
		window, err := parseDays(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "expiring_within must be a positive number of days")
			return
		}
		q.ExpiringWithin = window
	}
	items, err := h.inventory.List(r.Context(), q)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.medicineViews(items))
}

func (h *Handler) addMedicine(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, staffRoles...) {
		return
	}
	var req inventory.NewMedicine
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.inventory.Add(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.medicineView(m, h.inventory.Now()))
}

func (h *Handler) getMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	m, err := h.inventory.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.medicineView(m, h.inventory.Now()))
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, staffRoles...) {
		return
	}
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	var patch inventory.Patch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.inventory.Update(r.Context(), id, patch)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.medicineView(m, h.inventory.Now()))
}

func (h *Handler) inventoryStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.inventory.Stats(r.Context(), h.expiryWindow)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.LowStock(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.medicineViews(items))
}

func (h *Handler) expiryAlerts(w http.ResponseWriter, r *http.Request) {
	window := h.expiryWindow
	if raw := r.URL.Query().Get("days"); raw != "" {
		d, err := parseDays(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "days must be a positive number")
			return
		}
		window = d
	}
	items, err := h.inventory.Expiring(r.Context(), window)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.medicineViews(items))
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.inventory.Categories(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// Edit sessions

func (h *Handler) beginEdit(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, staffRoles...) {
		return
	}
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	d, err := h.inventory.BeginEdit(r.Context(), editor(r), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.draftView(d))
}

func (h *Handler) currentEdit(w http.ResponseWriter, r *http.Request) {
	d, ok := h.inventory.CurrentEdit(editor(r))
	if !ok {
		h.respondServiceError(w, r, inventory.ErrNoEdit)
		return
	}
	respondJSON(w, http.StatusOK, h.draftView(d))
}

func (h *Handler) editDraft(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, staffRoles...) {
		return
	}
	var patch inventory.Patch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	d, err := h.inventory.EditDraft(editor(r), patch)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.draftView(d))
}

func (h *Handler) saveEdit(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, staffRoles...) {
		return
	}
	m, err := h.inventory.SaveEdit(r.Context(), editor(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.medicineView(m, h.inventory.Now()))
}

func (h *Handler) cancelEdit(w http.ResponseWriter, r *http.Request) {
	h.inventory.CancelEdit(editor(r))
	w.WriteHeader(http.StatusNoContent)
}

// Two step delete

func (h *Handler) requestDelete(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, auth.RolePharmacist) {
		return
	}
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	p, err := h.inventory.RequestDelete(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusAccepted, p)
}

func parseToken(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "token"))
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, auth.RolePharmacist) {
		return
	}
	token, err := parseToken(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid confirmation token")
		return
	}
	p, err := h.inventory.ConfirmDelete(r.Context(), token)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "deleted", "medicine_id": p.MedicineID})
}

func (h *Handler) cancelDelete(w http.ResponseWriter, r *http.Request) {
	token, err := parseToken(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid confirmation token")
		return
	}
	if err := h.inventory.CancelDelete(token); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
