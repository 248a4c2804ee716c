package donor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lifelink-health/portal/pkg/appointment"
	"github.com/lifelink-health/portal/pkg/common/logger"
	"github.com/lifelink-health/portal/pkg/common/models"
	"github.com/lifelink-health/portal/pkg/common/validate"
	"github.com/lifelink-health/portal/pkg/gateway/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterDonor mounts the donor-facing record routes under the /donor
// prefix.
func (h *Handler) RegisterDonor(r *mux.Router) {
	r.HandleFunc("/records", h.handleSubmit).Methods(http.MethodPost)
	r.HandleFunc("/records", h.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/records/latest", h.handleLatest).Methods(http.MethodGet)
	r.HandleFunc("/reapply", h.handleReapply).Methods(http.MethodGet)
}

// RegisterDoctor mounts the hospital review queue routes under the /doctor
// prefix.
func (h *Handler) RegisterDoctor(r *mux.Router) {
	r.HandleFunc("/records", h.handleQueue).Methods(http.MethodGet)
	r.HandleFunc("/records/{id}/approve", h.handleApprove).Methods(http.MethodPost)
	r.HandleFunc("/records/{id}/reject", h.handleReject).Methods(http.MethodPost)
}

// RegisterAdmin mounts the platform-wide record listing under the /admin
// prefix.
func (h *Handler) RegisterAdmin(r *mux.Router) {
	r.HandleFunc("/records", h.handleListAll).Methods(http.MethodGet)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	var req models.MedicalRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	record, err := h.service.Submit(r.Context(), session.Principal.ID, req)
	if err != nil {
		writeDonorError(w, err, "failed to submit medical record")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"record": record})
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	record, err := h.service.Latest(r.Context(), session.Principal.ID)
	if errors.Is(err, ErrRecordNotFound) {
		http.Error(w, "no submission on file", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to load latest record")
		http.Error(w, "failed to load record", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"record": record})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	records, err := h.service.History(r.Context(), session.Principal.ID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load record history")
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": records})
}

func (h *Handler) handleReapply(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	status, err := h.service.Reapply(r.Context(), session.Principal.ID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to compute reapply status")
		http.Error(w, "failed to compute reapply status", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleQueue lists the submissions addressed to the doctor's hospital, newest
// first. Status defaults to pending.
func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	status := models.RecordStatus(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))))
	if status == "" {
		status = models.RecordPending
	}

	records, err := h.service.Queue(r.Context(), session.Principal.ID, status)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list donor queue")
		http.Error(w, "failed to list queue", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": records})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return
	}
	var slot models.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&slot); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	record, booked, err := h.service.Approve(r.Context(), session.Principal.ID, id, slot)
	if err != nil {
		writeDonorError(w, err, "failed to approve record")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"record":      record,
		"appointment": booked,
	})
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return
	}

	record, err := h.service.Reject(r.Context(), session.Principal.ID, id)
	if err != nil {
		writeDonorError(w, err, "failed to reject record")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"record": record})
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListAll(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to list records")
		http.Error(w, "failed to list records", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": records})
}

func writeDonorError(w http.ResponseWriter, err error, fallback string) {
	var fields validate.FieldErrors
	var coolDown *CoolDownError
	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": fields})
	case errors.As(err, &coolDown):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":          err.Error(),
			"days_remaining": coolDown.DaysRemaining,
		})
	case errors.Is(err, ErrHospitalNotEligible), errors.Is(err, ErrLocationMismatch), errors.Is(err, ErrInvalidSlot):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrPendingOnFile), errors.Is(err, ErrApprovedOnFile):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, appointment.ErrSlotTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrRecordNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNotReviewer):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrNotPending):
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
