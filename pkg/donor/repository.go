package donor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lifelink-health/portal/pkg/common/models"
	"gorm.io/gorm"
)

var ErrRecordNotFound = errors.New("medical record not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type medicalRecordModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	DonorID            uuid.UUID `gorm:"type:uuid;index"`
	DonorName          string
	BloodType          string
	Age                int
	WeightKg           float64
	HeightCm           float64
	BMI                float64
	MedicalHistory     string
	CurrentMedications string
	SurgicalHistory    string
	Allergies          string
	ChronicConditions  string
	BloodPressure      string
	PulseRate          int
	HemoglobinLevel    float64
	LastDonationDate   string
	SmokingStatus      string
	AlcoholConsumption string
	ExerciseFrequency  string
	HasHeartDisease    bool
	HasDiabetes        bool
	HasHIV             bool
	HasHepatitis       bool
	HasCancer          bool
	ContactName        string
	ContactRelation    string
	ContactPhone       string
	Province           string
	City               string
	HospitalID         uuid.UUID `gorm:"type:uuid;index"`
	HospitalName       string
	DonorType          string
	AdditionalNotes    string
	Status             string `gorm:"index"`
	SubmittedAt        time.Time
	VerifiedBy         *uuid.UUID `gorm:"type:uuid"`
	VerifiedAt         *time.Time
	AppointmentDate    string
	AppointmentTime    string
}

func (medicalRecordModel) TableName() string {
	return "medical_records"
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&medicalRecordModel{})
}

type CreateRecordInput struct {
	DonorID      uuid.UUID
	HospitalName string
	Request      models.MedicalRecordRequest
	BMI          float64
}

func (r *Repository) Create(ctx context.Context, input CreateRecordInput) (models.MedicalRecord, error) {
	req := input.Request
	row := medicalRecordModel{
		ID:                 uuid.New(),
		DonorID:            input.DonorID,
		DonorName:          strings.TrimSpace(req.DonorName),
		BloodType:          strings.TrimSpace(req.BloodType),
		Age:                req.Age,
		WeightKg:           req.WeightKg,
		HeightCm:           req.HeightCm,
		BMI:                input.BMI,
		MedicalHistory:     req.MedicalHistory,
		CurrentMedications: req.CurrentMedications,
		SurgicalHistory:    req.SurgicalHistory,
		Allergies:          req.Allergies,
		ChronicConditions:  req.ChronicConditions,
		BloodPressure:      req.BloodPressure,
		PulseRate:          req.PulseRate,
		HemoglobinLevel:    req.HemoglobinLevel,
		LastDonationDate:   req.LastDonationDate,
		SmokingStatus:      req.SmokingStatus,
		AlcoholConsumption: req.AlcoholConsumption,
		ExerciseFrequency:  req.ExerciseFrequency,
		HasHeartDisease:    req.HasHeartDisease,
		HasDiabetes:        req.HasDiabetes,
		HasHIV:             req.HasHIV,
		HasHepatitis:       req.HasHepatitis,
		HasCancer:          req.HasCancer,
		ContactName:        strings.TrimSpace(req.EmergencyContact.Name),
		ContactRelation:    strings.TrimSpace(req.EmergencyContact.Relationship),
		ContactPhone:       strings.TrimSpace(req.EmergencyContact.Phone),
		Province:           strings.TrimSpace(req.Province),
		City:               strings.TrimSpace(req.City),
		HospitalID:         req.HospitalID,
		HospitalName:       input.HospitalName,
		DonorType:          strings.TrimSpace(req.DonorType),
		AdditionalNotes:    req.AdditionalNotes,
		Status:             string(models.RecordPending),
		SubmittedAt:        time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.MedicalRecord{}, err
	}
	return mapRecord(row), nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (models.MedicalRecord, error) {
	var row medicalRecordModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.MedicalRecord{}, ErrRecordNotFound
	}
	if err != nil {
		return models.MedicalRecord{}, err
	}
	return mapRecord(row), nil
}

// Latest returns the donor's most recent submission.
func (r *Repository) Latest(ctx context.Context, donorID uuid.UUID) (models.MedicalRecord, error) {
	var row medicalRecordModel
	err := r.db.WithContext(ctx).Where("donor_id = ?", donorID).Order("submitted_at desc").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.MedicalRecord{}, ErrRecordNotFound
	}
	if err != nil {
		return models.MedicalRecord{}, err
	}
	return mapRecord(row), nil
}

func (r *Repository) History(ctx context.Context, donorID uuid.UUID) ([]models.MedicalRecord, error) {
	var rows []medicalRecordModel
	if err := r.db.WithContext(ctx).Where("donor_id = ?", donorID).Order("submitted_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapRecords(rows), nil
}

// ListForHospital returns the hospital's donor queue for one status, newest
// first, scoped by the sponsoring hospital's owning principal.
func (r *Repository) ListForHospital(ctx context.Context, hospitalID uuid.UUID, status models.RecordStatus) ([]models.MedicalRecord, error) {
	var rows []medicalRecordModel
	err := r.db.WithContext(ctx).
		Where("hospital_id = ? AND status = ?", hospitalID, string(status)).
		Order("submitted_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapRecords(rows), nil
}

func (r *Repository) ListAll(ctx context.Context) ([]models.MedicalRecord, error) {
	var rows []medicalRecordModel
	if err := r.db.WithContext(ctx).Order("submitted_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapRecords(rows), nil
}

type VerifyUpdate struct {
	Status          models.RecordStatus
	VerifiedBy      uuid.UUID
	VerifiedAt      time.Time
	AppointmentDate string
	AppointmentTime string
}

// ApplyVerifyTx writes a status transition inside an enclosing transaction;
// it is only called from the approve/reject composites.
func (r *Repository) ApplyVerifyTx(tx *gorm.DB, id uuid.UUID, update VerifyUpdate) error {
	result := tx.Model(&medicalRecordModel{}).
		Where("id = ? AND status = ?", id, string(models.RecordPending)).
		Updates(map[string]interface{}{
			"status":           string(update.Status),
			"verified_by":      update.VerifiedBy,
			"verified_at":      update.VerifiedAt,
			"appointment_date": update.AppointmentDate,
			"appointment_time": update.AppointmentTime,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// DonorName resolves a display name for appointment rows.
func (r *Repository) DonorName(ctx context.Context, donorID uuid.UUID) (string, error) {
	record, err := r.Latest(ctx, donorID)
	if err != nil {
		return "", err
	}
	if record.DonorName != "" {
		return record.DonorName, nil
	}
	return record.EmergencyContact.Name, nil
}

// Snapshot copies the fixed field set the approved-donor registry keeps.
func (r *Repository) Snapshot(ctx context.Context, donorID uuid.UUID) (models.MedicalSnapshot, string, string, error) {
	record, err := r.Latest(ctx, donorID)
	if err != nil {
		return models.MedicalSnapshot{}, "", "", err
	}
	snapshot := models.MedicalSnapshot{
		HeightCm:          record.HeightCm,
		WeightKg:          record.WeightKg,
		HemoglobinLevel:   record.HemoglobinLevel,
		PulseRate:         record.PulseRate,
		HasHeartDisease:   record.HasHeartDisease,
		HasDiabetes:       record.HasDiabetes,
		HasHIV:            record.HasHIV,
		HasHepatitis:      record.HasHepatitis,
		HasCancer:         record.HasCancer,
		SmokingStatus:     record.SmokingStatus,
		ExerciseFrequency: record.ExerciseFrequency,
		LastDonationDate:  record.LastDonationDate,
	}
	return snapshot, record.DonorType, record.DonorName, nil
}

func mapRecords(rows []medicalRecordModel) []models.MedicalRecord {
	records := make([]models.MedicalRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, mapRecord(row))
	}
	return records
}

func mapRecord(row medicalRecordModel) models.MedicalRecord {
	return models.MedicalRecord{
		ID:                 row.ID,
		DonorID:            row.DonorID,
		DonorName:          row.DonorName,
		BloodType:          row.BloodType,
		Age:                row.Age,
		WeightKg:           row.WeightKg,
		HeightCm:           row.HeightCm,
		BMI:                row.BMI,
		MedicalHistory:     row.MedicalHistory,
		CurrentMedications: row.CurrentMedications,
		SurgicalHistory:    row.SurgicalHistory,
		Allergies:          row.Allergies,
		ChronicConditions:  row.ChronicConditions,
		BloodPressure:      row.BloodPressure,
		PulseRate:          row.PulseRate,
		HemoglobinLevel:    row.HemoglobinLevel,
		LastDonationDate:   row.LastDonationDate,
		SmokingStatus:      row.SmokingStatus,
		AlcoholConsumption: row.AlcoholConsumption,
		ExerciseFrequency:  row.ExerciseFrequency,
		HasHeartDisease:    row.HasHeartDisease,
		HasDiabetes:        row.HasDiabetes,
		HasHIV:             row.HasHIV,
		HasHepatitis:       row.HasHepatitis,
		HasCancer:          row.HasCancer,
		EmergencyContact: models.EmergencyContact{
			Name:         row.ContactName,
			Relationship: row.ContactRelation,
			Phone:        row.ContactPhone,
		},
		Province:        row.Province,
		City:            row.City,
		HospitalID:      row.HospitalID,
		HospitalName:    row.HospitalName,
		DonorType:       row.DonorType,
		AdditionalNotes: row.AdditionalNotes,
		Status:          models.RecordStatus(strings.ToLower(row.Status)),
		SubmittedAt:     row.SubmittedAt,
		VerifiedBy:      row.VerifiedBy,
		VerifiedAt:      row.VerifiedAt,
		AppointmentDate: row.AppointmentDate,
		AppointmentTime: row.AppointmentTime,
	}
}
