package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"helio/pharmacy/domain"
	"helio/pharmacy/internal/auth"
)

type ctxKey string

const (
	ctxUserID ctxKey = "userID"
	ctxRole   ctxKey = "role"
	ctxEmail  ctxKey = "email"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.users.Authenticate(req.Email, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	h.issue(w, user)
}

// register adds a staff account. Only pharmacists can create accounts.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, auth.RolePharmacist) {
		return
	}
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.users.Register(req.Name, req.Email, req.Password, req.Role)
	if errors.Is(err, auth.ErrDuplicateEmail) {
		respondError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	user.Password = ""
	h.log.Info().Int64("user_id", user.ID).Str("role", user.Role).Str("by", editor(r)).Msg("user registered")
	respondJSON(w, http.StatusCreated, user)
}

// demoLogin signs in as the configured demo account without a password.
func (h *Handler) demoLogin(w http.ResponseWriter, r *http.Request) {
	if !h.autoLogin {
		respondError(w, http.StatusNotFound, "demo login is disabled")
		return
	}
	user, ok := h.users.Lookup(h.demoEmail)
	if !ok {
		respondError(w, http.StatusNotFound, "demo account is not configured")
		return
	}
	h.issue(w, user)
}

func (h *Handler) issue(w http.ResponseWriter, user domain.User) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	user.Password = ""
	h.log.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("user signed in")
	respondJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.users.Lookup(editor(r))
	if !ok {
		respondError(w, http.StatusUnauthorized, "unknown user")
		return
	}
	user.Password = ""
	respondJSON(w, http.StatusOK, user)
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := h.tokens.Parse(strings.TrimSpace(header[len("Bearer "):]))
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxRole, claims.Role)
		ctx = context.WithValue(ctx, ctxEmail, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireRole(w http.ResponseWriter, r *http.Request, allowed ...string) bool {
	current, ok := r.Context().Value(ctxRole).(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing role")
		return false
	}
	for _, allowedRole := range allowed {
		if current == allowedRole {
			return true
		}
	}
	respondError(w, http.StatusForbidden, "insufficient permissions")
	return false
}

// editor identifies the signed-in user owning an edit draft.
func editor(r *http.Request) string {
	email, _ := r.Context().Value(ctxEmail).(string)
	return email
}

var staffRoles = []string{auth.RolePharmacist, auth.RoleAssistant}
