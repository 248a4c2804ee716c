package appointment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lifelink-health/portal/pkg/common/logger"
	"github.com/lifelink-health/portal/pkg/common/models"
	"github.com/lifelink-health/portal/pkg/gateway/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterDoctor mounts the doctor's schedule and verification routes under
// the /doctor prefix.
func (h *Handler) RegisterDoctor(r *mux.Router) {
	r.HandleFunc("/appointments", h.handleDoctorSchedule).Methods(http.MethodGet)
	r.HandleFunc("/appointments/{id}/reschedule", h.handleReschedule).Methods(http.MethodPost)
	r.HandleFunc("/appointments/{id}/verify", h.handleVerify).Methods(http.MethodPost)
	r.HandleFunc("/approved-donors", h.handleApprovedForDoctor).Methods(http.MethodGet)
}

// RegisterDonor mounts the donor's view of their own appointments under the
// /donor prefix.
func (h *Handler) RegisterDonor(r *mux.Router) {
	r.HandleFunc("/appointments", h.handleDonorSchedule).Methods(http.MethodGet)
}

// RegisterAdmin mounts the platform-wide approved donor registry under the
// /admin prefix.
func (h *Handler) RegisterAdmin(r *mux.Router) {
	r.HandleFunc("/approved-donors", h.handleApprovedAll).Methods(http.MethodGet)
}

func (h *Handler) handleDoctorSchedule(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	schedule, err := h.service.ForDoctor(r.Context(), session.Principal.ID, r.URL.Query().Get("search"))
	if err != nil {
		logger.Log.WithError(err).Error("failed to list appointments")
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

func (h *Handler) handleDonorSchedule(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	schedule, err := h.service.ForDonor(r.Context(), session.Principal.ID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list appointments")
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

func (h *Handler) handleReschedule(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}
	var req models.RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	apt, err := h.service.Reschedule(r.Context(), session.Principal.ID, id, req)
	if err != nil {
		writeAppointmentError(w, err, "failed to reschedule appointment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"appointment": apt})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}
	var req models.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	approved, err := h.service.Verify(r.Context(), session.Principal.ID, id, req)
	if err != nil {
		writeAppointmentError(w, err, "failed to verify appointment")
		return
	}
	payload := map[string]interface{}{"decision": string(req.Decision)}
	if approved != nil {
		payload["approved_donor"] = approved
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) handleApprovedForDoctor(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	donors, err := h.service.ApprovedForDoctor(r.Context(), session.Principal.ID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list approved donors")
		http.Error(w, "failed to list approved donors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": donors})
}

func (h *Handler) handleApprovedAll(w http.ResponseWriter, r *http.Request) {
	donors, err := h.service.ApprovedAll(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to list approved donors")
		http.Error(w, "failed to list approved donors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": donors})
}

func writeAppointmentError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidSlot), errors.Is(err, ErrInvalidDecision):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrAppointmentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNotOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrSlotTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrNotReschedulable), errors.Is(err, ErrAlreadyDecided):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
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
