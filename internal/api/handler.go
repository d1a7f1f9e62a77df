package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"helio/pharmacy/internal/auth"
	"helio/pharmacy/internal/inventory"
	"helio/pharmacy/internal/logging"
	"helio/pharmacy/internal/metrics"
	"helio/pharmacy/internal/prescriptions"
	"helio/pharmacy/internal/requests"
)

// Deps lists everything the HTTP layer needs.
type Deps struct {
	Inventory     *inventory.Service
	Requests      *requests.Service
	Prescriptions *prescriptions.Service
	Users         *auth.Directory
	Tokens        *auth.Issuer
	Metrics       *metrics.HTTPMetrics
	Logger        zerolog.Logger

	ExpiryWindow time.Duration
	AutoLogin    bool
	DemoEmail    string
	CORSOrigins  []string
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	inventory     *inventory.Service
	requests      *requests.Service
	prescriptions *prescriptions.Service
	users         *auth.Directory
	tokens        *auth.Issuer
	metrics       *metrics.HTTPMetrics
	log           zerolog.Logger

	expiryWindow time.Duration
	autoLogin    bool
	demoEmail    string
	corsOrigins  []string
}

// New constructs a Handler.
func New(d Deps) *Handler {
	return &Handler{
		inventory:     d.Inventory,
		requests:      d.Requests,
		prescriptions: d.Prescriptions,
		users:         d.Users,
		tokens:        d.Tokens,
		metrics:       d.Metrics,
		log:           d.Logger,
		expiryWindow:  d.ExpiryWindow,
		autoLogin:     d.AutoLogin,
		demoEmail:     d.DemoEmail,
		corsOrigins:   d.CORSOrigins,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RequestID)
	r.Use(logging.Middleware(h.log))
	if h.metrics != nil {
		r.Use(h.metrics.Middleware)
	}
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Post("/demo", h.demoLogin)
		r.With(h.authMiddleware).Get("/me", h.me)
		r.With(h.authMiddleware).Post("/register", h.register)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/inventory", func(r chi.Router) {
			r.Get("/", h.listInventory)
			r.Post("/", h.addMedicine)
			r.Get("/stats", h.inventoryStats)
			r.Get("/categories", h.listCategories)
			r.Get("/low-stock", h.lowStock)
			r.Get("/expiry-alert", h.expiryAlerts)

			r.Get("/edit", h.currentEdit)
			r.Patch("/edit", h.editDraft)
			r.Delete("/edit", h.cancelEdit)
			r.Post("/edit/save", h.saveEdit)

			r.Post("/deletions/{token}", h.confirmDelete)
			r.Delete("/deletions/{token}", h.cancelDelete)

			r.Get("/{id}", h.getMedicine)
			r.Put("/{id}", h.updateMedicine)
			r.Post("/{id}/edit", h.beginEdit)
			r.Post("/{id}/delete-request", h.requestDelete)
		})

		pr.Route("/rare-medicines", func(r chi.Router) {
			r.Get("/", h.listRequests)
			r.Post("/", h.createRequest)
			r.Get("/summary", h.requestSummary)
			r.Get("/{id}", h.getRequest)
			r.Post("/{id}/status", h.transitionRequest)
		})

		pr.Route("/prescriptions", func(r chi.Router) {
			r.Get("/", h.listPrescriptions)
			r.Post("/", h.createPrescription)
			r.Get("/counts", h.prescriptionCounts)
			r.Get("/{id}", h.getPrescription)
			r.Post("/{id}/advance", h.advancePrescription)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type validationResponse struct {
	Error  string                 `json:"error"`
	Fields []inventory.FieldError `json:"fields"`
}

// respondServiceError maps domain errors onto status codes. Anything
// unrecognised is logged and reported as a 500.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *inventory.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, validationResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, requests.ErrInvalid), errors.Is(err, prescriptions.ErrInvalid):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, inventory.ErrNotFound), errors.Is(err, requests.ErrNotFound), errors.Is(err, prescriptions.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, inventory.ErrConfirmation), errors.Is(err, inventory.ErrNoEdit),
		errors.Is(err, requests.ErrInvalidTransition), errors.Is(err, prescriptions.ErrDispensed):
		respondError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
