package hospital

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/lifelink-health/portal/pkg/audit"
	"github.com/lifelink-health/portal/pkg/common/logger"
	"github.com/lifelink-health/portal/pkg/common/models"
	"github.com/lifelink-health/portal/pkg/geography"
	"github.com/lifelink-health/portal/pkg/identity"
	"github.com/lifelink-health/portal/pkg/observability/metrics"
)

var (
	ErrAlreadySubmitted = errors.New("hospital application already submitted")
	ErrNotPending       = errors.New("application is no longer pending")
	ErrNotOwner         = errors.New("application belongs to another principal")
	ErrInvalidDecision  = errors.New("decision must be approved or rejected")
)

// LicenseFile is the uploaded license document accompanying a registration
// or edit.
type LicenseFile struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// Uploader stores a license document and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, reader io.Reader, size int64, contentType, folder, filename string) (string, error)
}

type Service struct {
	repo     *Repository
	identity *identity.Service
	uploader Uploader
	catalog  geography.Catalog
	auditor  audit.Publisher
}

func NewService(repo *Repository, ids *identity.Service, uploader Uploader, catalog geography.Catalog, auditor audit.Publisher) *Service {
	return &Service{
		repo:     repo,
		identity: ids,
		uploader: uploader,
		catalog:  catalog,
		auditor:  auditor,
	}
}

// Submit runs the hospital registration flow: validate everything first, then
// create the doctor credential, upload the license, and insert the pending
// application. A failure after credential creation leaves a partial account;
// that gap is inherent to the multi-step flow and is logged loudly rather
// than hidden.
func (s *Service) Submit(ctx context.Context, req models.HospitalRegistrationRequest, file *LicenseFile) (models.HospitalApplication, error) {
	if err := ValidateRegistration(req, file != nil, s.catalog.Valid(req.Province)); err != nil {
		return models.HospitalApplication{}, err
	}

	user, err := s.identity.SignUp(ctx, req.Email, req.Password, req.DoctorName, models.RoleDoctor)
	if err != nil {
		return models.HospitalApplication{}, err
	}

	fileURL, err := s.uploader.Upload(ctx, file.Reader, file.Size, file.ContentType, "licenses", file.Filename)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("License upload failed after credential creation")
		return models.HospitalApplication{}, err
	}

	app, err := s.repo.Create(ctx, CreateApplicationInput{
		UserID:               user.ID,
		HospitalName:         req.HospitalName,
		Address:              req.Address,
		ContactNumber:        req.ContactNumber,
		Email:                req.Email,
		LicenseNumber:        req.LicenseNumber,
		DoctorName:           req.DoctorName,
		DoctorSpecialization: req.DoctorSpecialization,
		LicenseFileURL:       fileURL,
		Province:             req.Province,
		City:                 req.City,
	})
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Application insert failed after credential creation")
		return models.HospitalApplication{}, err
	}

	metrics.HospitalTransitions.WithLabelValues(string(models.VerificationPending)).Inc()
	s.auditor.Publish(ctx, "hospital_application_submitted", user.ID.String(), map[string]interface{}{
		"application_id": app.ID.String(),
		"hospital_name":  app.HospitalName,
		"province":       app.Province,
		"city":           app.City,
	})
	return app, nil
}

// HasSubmitted backs the pre-submission existence check: the registration
// form is replaced by an "already submitted" notice when this returns true.
func (s *Service) HasSubmitted(ctx context.Context, userID uuid.UUID) (bool, error) {
	_, err := s.repo.GetByOwner(ctx, userID)
	if errors.Is(err, ErrApplicationNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) GetByOwner(ctx context.Context, userID uuid.UUID) (models.HospitalApplication, error) {
	return s.repo.GetByOwner(ctx, userID)
}

// Edit updates a still-pending application. The license reference may be
// replaced; dropping it without a replacement fails validation.
func (s *Service) Edit(ctx context.Context, applicationID, actorID uuid.UUID, req models.HospitalEditRequest, newFile *LicenseFile) (models.HospitalApplication, error) {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return models.HospitalApplication{}, err
	}
	if app.UserID != actorID {
		return models.HospitalApplication{}, ErrNotOwner
	}
	if app.VerificationStatus != models.VerificationPending {
		return models.HospitalApplication{}, ErrNotPending
	}

	hasFile := newFile != nil || (req.KeepLicenseFile && app.LicenseFileURL != "")
	if err := ValidateEdit(req, hasFile, s.catalog.Valid(req.Province)); err != nil {
		return models.HospitalApplication{}, err
	}

	fileURL := app.LicenseFileURL
	if newFile != nil {
		fileURL, err = s.uploader.Upload(ctx, newFile.Reader, newFile.Size, newFile.ContentType, "licenses", newFile.Filename)
		if err != nil {
			return models.HospitalApplication{}, err
		}
	}

	err = s.repo.UpdateFields(ctx, applicationID, UpdateApplicationInput{
		HospitalName:         req.HospitalName,
		Address:              req.Address,
		ContactNumber:        req.ContactNumber,
		LicenseNumber:        req.LicenseNumber,
		DoctorName:           req.DoctorName,
		DoctorSpecialization: req.DoctorSpecialization,
		LicenseFileURL:       fileURL,
		Province:             req.Province,
		City:                 req.City,
	})
	if err != nil {
		return models.HospitalApplication{}, err
	}

	s.auditor.Publish(ctx, "hospital_application_edited", actorID.String(), map[string]interface{}{
		"application_id": applicationID.String(),
	})
	return s.repo.GetByID(ctx, applicationID)
}

// Review is the admin decision: pending to approved or rejected, one way.
func (s *Service) Review(ctx context.Context, applicationID, actorID uuid.UUID, decision models.VerificationStatus) (models.HospitalApplication, error) {
	if decision != models.VerificationApproved && decision != models.VerificationRejected {
		return models.HospitalApplication{}, ErrInvalidDecision
	}

	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return models.HospitalApplication{}, err
	}
	if app.VerificationStatus != models.VerificationPending {
		return models.HospitalApplication{}, ErrNotPending
	}

	if err := s.repo.UpdateStatus(ctx, applicationID, decision); err != nil {
		return models.HospitalApplication{}, err
	}

	metrics.HospitalTransitions.WithLabelValues(string(decision)).Inc()
	s.auditor.Publish(ctx, "hospital_application_reviewed", actorID.String(), map[string]interface{}{
		"application_id": applicationID.String(),
		"decision":       string(decision),
	})
	return s.repo.GetByID(ctx, applicationID)
}

func (s *Service) ListByStatus(ctx context.Context, status models.VerificationStatus) ([]models.HospitalApplication, error) {
	return s.repo.ListByStatus(ctx, status)
}

func (s *Service) ListAll(ctx context.Context) ([]models.HospitalApplication, error) {
	return s.repo.ListAll(ctx)
}

// OptionsFor derives the donor form picker lists for a province (and city,
// when already chosen) from approved hospitals only.
func (s *Service) OptionsFor(ctx context.Context, province, city string) (Options, error) {
	approved, err := s.repo.ListApprovedByProvince(ctx, province)
	if err != nil {
		return Options{}, err
	}
	return DeriveOptions(approved, city), nil
}

func (s *Service) Provinces() []string {
	return s.catalog.Names()
}
