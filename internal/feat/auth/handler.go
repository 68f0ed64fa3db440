package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/foliohq/folio/pkg/fl/config"
	"github.com/foliohq/folio/pkg/fl/logger"
	"github.com/foliohq/folio/pkg/fl/middleware"
	"github.com/go-chi/chi/v5"
)

// Handler exposes login/logout for the admin area.
type Handler struct {
	service Service
	cfg     *config.Config
	log     logger.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(service Service, cfg *config.Config, log logger.Logger) *Handler {
	return &Handler{service: service, cfg: cfg, log: log}
}

// Start initializes the handler.
func (h *Handler) Start(ctx context.Context) error {
	h.log.Info("Auth handler started")
	return nil
}

// RegisterRoutes registers authentication routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)
}

// HandleLogin authenticates the operator and sets the session cookie.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	operator, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.log.Debugf("Login failed for %s: %v", req.Email, err)
		jsonError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	session, err := h.service.CreateSession(r.Context(), operator.ID)
	if err != nil {
		h.log.Errorf("Cannot create session: %v", err)
		jsonError(w, http.StatusInternalServerError, "Cannot create session")
		return
	}

	middleware.SetSessionCookie(w, session.ID, int(h.service.GetSessionTTL().Seconds()))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"email": operator.Email,
		"name":  operator.Name,
	})
}

// HandleLogout deletes the session and clears the cookie.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if sessionID := middleware.GetSessionID(r.Context()); sessionID != "" {
		if err := h.service.DeleteSession(r.Context(), sessionID); err != nil {
			h.log.Errorf("Cannot delete session: %v", err)
		}
	}
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.service.DeleteSession(r.Context(), cookie.Value); err != nil {
			h.log.Errorf("Cannot delete session: %v", err)
		}
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
