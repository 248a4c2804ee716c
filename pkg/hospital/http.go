package hospital

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lifelink-health/portal/pkg/common/logger"
	"github.com/lifelink-health/portal/pkg/common/models"
	"github.com/lifelink-health/portal/pkg/common/validate"
	"github.com/lifelink-health/portal/pkg/gateway/middleware"
	"github.com/lifelink-health/portal/pkg/identity"
)

const maxLicenseFileBytes = 10 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the public routes: registration and the donor form picker
// sources.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/hospitals/register", h.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/geography/provinces", h.handleProvinces).Methods(http.MethodGet)
	r.HandleFunc("/geography/options", h.handleOptions).Methods(http.MethodGet)
}

// RegisterDoctor mounts the owning doctor's application routes under the
// /doctor prefix.
func (h *Handler) RegisterDoctor(r *mux.Router) {
	r.HandleFunc("/applications", h.handleMyApplication).Methods(http.MethodGet)
	r.HandleFunc("/applications/status", h.handleSubmissionStatus).Methods(http.MethodGet)
	r.HandleFunc("/applications/{id}", h.handleEdit).Methods(http.MethodPut)
}

// RegisterAdmin mounts the review routes under the /admin prefix.
func (h *Handler) RegisterAdmin(r *mux.Router) {
	r.HandleFunc("/hospitals", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("/hospitals/{id}/review", h.handleReview).Methods(http.MethodPost)
}

// handleRegister accepts the multipart registration form. The license
// document travels in the "license_file" part.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxLicenseFileBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	req := models.HospitalRegistrationRequest{
		HospitalName:         r.FormValue("hospital_name"),
		Address:              r.FormValue("address"),
		ContactNumber:        r.FormValue("contact_number"),
		Email:                r.FormValue("email"),
		Password:             r.FormValue("password"),
		LicenseNumber:        r.FormValue("license_number"),
		DoctorName:           r.FormValue("doctor_name"),
		DoctorSpecialization: r.FormValue("doctor_specialization"),
		Province:             r.FormValue("province"),
		City:                 r.FormValue("city"),
	}

	file, closer, err := licensePart(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	app, err := h.service.Submit(r.Context(), req, file)
	if err != nil {
		writeHospitalError(w, err, "failed to register hospital")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"application": app})
}

func (h *Handler) handleProvinces(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"provinces": h.service.Provinces()})
}

// handleOptions serves the donor form's dependent pickers: cities for a
// province, approved hospitals for a province and city.
func (h *Handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	province := strings.TrimSpace(r.URL.Query().Get("province"))
	if province == "" {
		http.Error(w, "province is required", http.StatusBadRequest)
		return
	}
	city := strings.TrimSpace(r.URL.Query().Get("city"))

	options, err := h.service.OptionsFor(r.Context(), province, city)
	if err != nil {
		logger.Log.WithError(err).Error("failed to derive hospital options")
		http.Error(w, "failed to derive options", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, options)
}

func (h *Handler) handleMyApplication(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	app, err := h.service.GetByOwner(r.Context(), session.Principal.ID)
	if errors.Is(err, ErrApplicationNotFound) {
		http.Error(w, "no application on file", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to load application")
		http.Error(w, "failed to load application", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"application": app})
}

// handleSubmissionStatus backs the registration screen's existence check: a
// doctor with an application on file sees the status view instead of the
// form.
func (h *Handler) handleSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	submitted, err := h.service.HasSubmitted(r.Context(), session.Principal.ID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to check submission status")
		http.Error(w, "failed to check submission status", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"submitted": submitted})
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}
	if err := r.ParseMultipartForm(maxLicenseFileBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	req := models.HospitalEditRequest{
		HospitalName:         r.FormValue("hospital_name"),
		Address:              r.FormValue("address"),
		ContactNumber:        r.FormValue("contact_number"),
		LicenseNumber:        r.FormValue("license_number"),
		DoctorName:           r.FormValue("doctor_name"),
		DoctorSpecialization: r.FormValue("doctor_specialization"),
		Province:             r.FormValue("province"),
		City:                 r.FormValue("city"),
		KeepLicenseFile:      r.FormValue("keep_license_file") != "false",
	}

	file, closer, err := licensePart(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	app, err := h.service.Edit(r.Context(), id, session.Principal.ID, req, file)
	if err != nil {
		writeHospitalError(w, err, "failed to edit application")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"application": app})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))

	var (
		apps []models.HospitalApplication
		err  error
	)
	if status == "" {
		apps, err = h.service.ListAll(r.Context())
	} else {
		apps, err = h.service.ListByStatus(r.Context(), models.VerificationStatus(status))
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to list applications")
		http.Error(w, "failed to list applications", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": apps})
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}
	var req models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	decision := models.VerificationStatus(strings.ToLower(string(req.Decision)))
	app, err := h.service.Review(r.Context(), id, session.Principal.ID, decision)
	if err != nil {
		writeHospitalError(w, err, "failed to review application")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"application": app})
}

// licensePart extracts the optional license upload. Absence is not an error
// here; the service decides whether a file is required.
func licensePart(r *http.Request) (*LicenseFile, io.Closer, error) {
	part, header, err := r.FormFile("license_file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, errors.New("invalid license file")
	}
	return &LicenseFile{
		Reader:      part,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}, part, nil
}

func writeHospitalError(w http.ResponseWriter, err error, fallback string) {
	var fields validate.FieldErrors
	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": fields})
	case errors.Is(err, identity.ErrEmailAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrAlreadySubmitted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrApplicationNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNotOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrNotPending), errors.Is(err, ErrInvalidDecision):
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
