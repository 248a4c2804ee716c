package hospital

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lifelink-health/portal/pkg/common/models"
	"gorm.io/gorm"
)

var ErrApplicationNotFound = errors.New("hospital application not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type applicationModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID               uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	HospitalName         string
	Address              string
	ContactNumber        string
	Email                string
	LicenseNumber        string
	DoctorName           string
	DoctorSpecialization string
	LicenseFileURL       string
	Province             string `gorm:"index"`
	City                 string `gorm:"index"`
	VerificationStatus   string `gorm:"index"`
	CreatedAt            time.Time
	UpdatedAt            *time.Time
}

func (applicationModel) TableName() string {
	return "hospital_applications"
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&applicationModel{})
}

type CreateApplicationInput struct {
	UserID               uuid.UUID
	HospitalName         string
	Address              string
	ContactNumber        string
	Email                string
	LicenseNumber        string
	DoctorName           string
	DoctorSpecialization string
	LicenseFileURL       string
	Province             string
	City                 string
}

func (r *Repository) Create(ctx context.Context, input CreateApplicationInput) (models.HospitalApplication, error) {
	row := applicationModel{
		ID:                   uuid.New(),
		UserID:               input.UserID,
		HospitalName:         strings.TrimSpace(input.HospitalName),
		Address:              strings.TrimSpace(input.Address),
		ContactNumber:        strings.TrimSpace(input.ContactNumber),
		Email:                strings.ToLower(strings.TrimSpace(input.Email)),
		LicenseNumber:        strings.TrimSpace(input.LicenseNumber),
		DoctorName:           strings.TrimSpace(input.DoctorName),
		DoctorSpecialization: strings.TrimSpace(input.DoctorSpecialization),
		LicenseFileURL:       input.LicenseFileURL,
		Province:             strings.TrimSpace(input.Province),
		City:                 strings.TrimSpace(input.City),
		VerificationStatus:   string(models.VerificationPending),
		CreatedAt:            time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		// The unique index on user_id enforces one application per principal.
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return models.HospitalApplication{}, ErrAlreadySubmitted
		}
		return models.HospitalApplication{}, err
	}
	return mapApplication(row), nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (models.HospitalApplication, error) {
	var row applicationModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.HospitalApplication{}, ErrApplicationNotFound
	}
	if err != nil {
		return models.HospitalApplication{}, err
	}
	return mapApplication(row), nil
}

func (r *Repository) GetByOwner(ctx context.Context, userID uuid.UUID) (models.HospitalApplication, error) {
	var row applicationModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.HospitalApplication{}, ErrApplicationNotFound
	}
	if err != nil {
		return models.HospitalApplication{}, err
	}
	return mapApplication(row), nil
}

// StatusForOwner satisfies identity.HospitalStatusLookup. Nil means the
// doctor has no application yet.
func (r *Repository) StatusForOwner(ctx context.Context, userID uuid.UUID) (*models.VerificationStatus, error) {
	app, err := r.GetByOwner(ctx, userID)
	if errors.Is(err, ErrApplicationNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	status := app.VerificationStatus
	return &status, nil
}

type UpdateApplicationInput struct {
	HospitalName         string
	Address              string
	ContactNumber        string
	LicenseNumber        string
	DoctorName           string
	DoctorSpecialization string
	LicenseFileURL       string
	Province             string
	City                 string
}

func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, input UpdateApplicationInput) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&applicationModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"hospital_name":         strings.TrimSpace(input.HospitalName),
		"address":               strings.TrimSpace(input.Address),
		"contact_number":        strings.TrimSpace(input.ContactNumber),
		"license_number":        strings.TrimSpace(input.LicenseNumber),
		"doctor_name":           strings.TrimSpace(input.DoctorName),
		"doctor_specialization": strings.TrimSpace(input.DoctorSpecialization),
		"license_file_url":      input.LicenseFileURL,
		"province":              strings.TrimSpace(input.Province),
		"city":                  strings.TrimSpace(input.City),
		"updated_at":            &now,
	}).Error
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.VerificationStatus) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&applicationModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"verification_status": string(status),
		"updated_at":          &now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *Repository) ListByStatus(ctx context.Context, status models.VerificationStatus) ([]models.HospitalApplication, error) {
	var rows []applicationModel
	if err := r.db.WithContext(ctx).Where("lower(verification_status) = ?", string(status)).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapApplications(rows), nil
}

func (r *Repository) ListAll(ctx context.Context) ([]models.HospitalApplication, error) {
	var rows []applicationModel
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapApplications(rows), nil
}

// ListApprovedByProvince backs the donor form's cascading pickers: only
// verified hospitals are eligible.
func (r *Repository) ListApprovedByProvince(ctx context.Context, province string) ([]models.HospitalApplication, error) {
	var rows []applicationModel
	err := r.db.WithContext(ctx).
		Where("province = ? AND lower(verification_status) = ?", strings.TrimSpace(province), string(models.VerificationApproved)).
		Order("hospital_name asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapApplications(rows), nil
}

func mapApplications(rows []applicationModel) []models.HospitalApplication {
	apps := make([]models.HospitalApplication, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, mapApplication(row))
	}
	return apps
}

func mapApplication(row applicationModel) models.HospitalApplication {
	return models.HospitalApplication{
		ID:                   row.ID,
		UserID:               row.UserID,
		HospitalName:         row.HospitalName,
		Address:              row.Address,
		ContactNumber:        row.ContactNumber,
		Email:                row.Email,
		LicenseNumber:        row.LicenseNumber,
		DoctorName:           row.DoctorName,
		DoctorSpecialization: row.DoctorSpecialization,
		LicenseFileURL:       row.LicenseFileURL,
		Province:             row.Province,
		City:                 row.City,
		VerificationStatus:   NormalizeStatus(row.VerificationStatus),
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
	}
}

// NormalizeStatus folds legacy capitalized statuses ("Pending") into the
// lowercase canonical set.
func NormalizeStatus(raw string) models.VerificationStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(models.VerificationApproved):
		return models.VerificationApproved
	case string(models.VerificationRejected):
		return models.VerificationRejected
	default:
		return models.VerificationPending
	}
}
