package admin

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/lifelink-health/portal/pkg/common/logger"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the dashboard routes under the /admin prefix.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/reports", h.handleReport).Methods(http.MethodGet)
	r.HandleFunc("/donors", h.handleDonors).Methods(http.MethodGet)
	r.HandleFunc("/audit", h.handleAuditTrail).Methods(http.MethodGet)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.BuildReport(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to build report")
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleDonors(w http.ResponseWriter, r *http.Request) {
	donors, err := h.service.Donors(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to list donors")
		http.Error(w, "failed to list donors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": donors})
}

func (h *Handler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 100)
	logs, err := h.service.AuditTrail(r.Context(), limit)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list audit trail")
		http.Error(w, "failed to list audit trail", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": logs})
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		return v
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
