package identity

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lifelink-health/portal/pkg/common/logger"
	"github.com/lifelink-health/portal/pkg/common/models"
	"github.com/lifelink-health/portal/pkg/gateway/middleware"
)

type Handler struct {
	service  *Service
	tokens   *TokenManager
	sessions *SessionStore
}

func NewHandler(service *Service, tokens *TokenManager, sessions *SessionStore) *Handler {
	return &Handler{service: service, tokens: tokens, sessions: sessions}
}

// Register mounts the unauthenticated auth routes.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/auth/signup", h.handleSignUp).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.handleLogin).Methods(http.MethodPost)
}

// RegisterProtected mounts the routes that need a resolved session. The
// router is expected to sit under the /auth prefix with authentication
// middleware applied.
func (h *Handler) RegisterProtected(r *mux.Router) {
	r.HandleFunc("/logout", h.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/me", h.handleMe).Methods(http.MethodGet)
}

// handleSignUp creates a donor account. Doctor accounts come from hospital
// registration and admin accounts are seeded out of band.
func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.service.SignUp(r.Context(), req.Email, req.Password, req.Name, models.RoleDonor)
	if err != nil {
		writeAuthError(w, err, "failed to sign up")
		return
	}
	h.issue(w, r, user, http.StatusCreated)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err, "failed to log in")
		return
	}
	h.issue(w, r, user, http.StatusOK)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, user models.User, status int) {
	token, jti, err := h.tokens.IssueToken(user)
	if err != nil {
		logger.Log.WithError(err).Error("failed to issue token")
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return
	}
	if err := h.sessions.Save(r.Context(), jti, user.ID.String()); err != nil {
		logger.Log.WithError(err).Error("failed to save session")
		http.Error(w, "failed to save session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, models.AuthResponse{Token: token, User: user})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	if err := h.sessions.Revoke(r.Context(), session.TokenID); err != nil {
		logger.Log.WithError(err).Error("failed to revoke session")
		http.Error(w, "failed to log out", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "signed_out"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	user, err := h.service.GetUser(r.Context(), session.Principal.ID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load profile")
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user, "session": session})
}

func writeAuthError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrWeakPassword), errors.Is(err, ErrInvalidEmail):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrEmailAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		logger.Log.WithError(err).Error(fallback)
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
