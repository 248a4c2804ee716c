package appointment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lifelink-health/portal/pkg/common/models"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSlotTaken           = errors.New("time slot already booked")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type appointmentModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	DonorID    uuid.UUID `gorm:"type:uuid;index"`
	DoctorID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_doctor_slot"`
	HospitalID uuid.UUID `gorm:"type:uuid;index"`
	Date       string    `gorm:"uniqueIndex:idx_doctor_slot"`
	Time       string    `gorm:"uniqueIndex:idx_doctor_slot"`
	Status     string    `gorm:"index"`
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

func (appointmentModel) TableName() string {
	return "appointments"
}

type approvedDonorModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	DonorID         uuid.UUID `gorm:"type:uuid;index"`
	DonorName       string
	DoctorID        uuid.UUID `gorm:"type:uuid;index"`
	HospitalID      uuid.UUID `gorm:"type:uuid;index"`
	AppointmentID   uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	AppointmentDate string
	DonorType       string
	Notes           string

	HeightCm          float64
	WeightKg          float64
	HemoglobinLevel   float64
	PulseRate         int
	HasHeartDisease   bool
	HasDiabetes       bool
	HasHIV            bool
	HasHepatitis      bool
	HasCancer         bool
	SmokingStatus     string
	ExerciseFrequency string
	LastDonationDate  string

	ApprovedAt time.Time
}

func (approvedDonorModel) TableName() string {
	return "approved_donors"
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&appointmentModel{}, &approvedDonorModel{})
}

type CreateAppointmentInput struct {
	DonorID    uuid.UUID
	DoctorID   uuid.UUID
	HospitalID uuid.UUID
	Date       string
	Time       string
}

// CreateTx inserts an appointment inside an enclosing transaction. The
// composite unique index on (doctor_id, date, time) backs the double-booking
// invariant; a duplicate maps to ErrSlotTaken.
func (r *Repository) CreateTx(tx *gorm.DB, input CreateAppointmentInput) (models.Appointment, error) {
	row := appointmentModel{
		ID:         uuid.New(),
		DonorID:    input.DonorID,
		DoctorID:   input.DoctorID,
		HospitalID: input.HospitalID,
		Date:       input.Date,
		Time:       input.Time,
		Status:     string(models.AppointmentScheduled),
		CreatedAt:  time.Now().UTC(),
	}

	if err := tx.Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return models.Appointment{}, ErrSlotTaken
		}
		return models.Appointment{}, err
	}
	return mapAppointment(row, time.Time{}), nil
}

// SlotTaken is the pre-insert conflict check; the unique index remains the
// authority under concurrent writes.
func (r *Repository) SlotTaken(ctx context.Context, doctorID uuid.UUID, date, timeOfDay string, excludeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&appointmentModel{}).
		Where("doctor_id = ? AND date = ? AND time = ?", doctorID, date, timeOfDay)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (models.Appointment, error) {
	var row appointmentModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Appointment{}, ErrAppointmentNotFound
	}
	if err != nil {
		return models.Appointment{}, err
	}
	return mapAppointment(row, time.Now()), nil
}

func (r *Repository) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]models.Appointment, error) {
	var rows []appointmentModel
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("date asc, time asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapAppointments(rows, time.Now()), nil
}

func (r *Repository) ListForDonor(ctx context.Context, donorID uuid.UUID) ([]models.Appointment, error) {
	var rows []appointmentModel
	err := r.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("date asc, time asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapAppointments(rows, time.Now()), nil
}

func (r *Repository) Reschedule(ctx context.Context, id uuid.UUID, date, timeOfDay string) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&appointmentModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"date":       date,
		"time":       timeOfDay,
		"updated_at": &now,
	})
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return ErrSlotTaken
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.AppointmentStatus, notes string) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&appointmentModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     string(status),
		"notes":      notes,
		"updated_at": &now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

type CreateApprovedDonorInput struct {
	DonorID         uuid.UUID
	DonorName       string
	DoctorID        uuid.UUID
	HospitalID      uuid.UUID
	AppointmentID   uuid.UUID
	AppointmentDate string
	DonorType       string
	Notes           string
	Medical         models.MedicalSnapshot
}

// CreateApprovedDonor materializes the registry entry. The unique index on
// appointment_id makes repeated approvals idempotent at the storage layer.
func (r *Repository) CreateApprovedDonor(ctx context.Context, input CreateApprovedDonorInput) (models.ApprovedDonor, error) {
	row := approvedDonorModel{
		ID:                uuid.New(),
		DonorID:           input.DonorID,
		DonorName:         input.DonorName,
		DoctorID:          input.DoctorID,
		HospitalID:        input.HospitalID,
		AppointmentID:     input.AppointmentID,
		AppointmentDate:   input.AppointmentDate,
		DonorType:         input.DonorType,
		Notes:             input.Notes,
		HeightCm:          input.Medical.HeightCm,
		WeightKg:          input.Medical.WeightKg,
		HemoglobinLevel:   input.Medical.HemoglobinLevel,
		PulseRate:         input.Medical.PulseRate,
		HasHeartDisease:   input.Medical.HasHeartDisease,
		HasDiabetes:       input.Medical.HasDiabetes,
		HasHIV:            input.Medical.HasHIV,
		HasHepatitis:      input.Medical.HasHepatitis,
		HasCancer:         input.Medical.HasCancer,
		SmokingStatus:     input.Medical.SmokingStatus,
		ExerciseFrequency: input.Medical.ExerciseFrequency,
		LastDonationDate:  input.Medical.LastDonationDate,
		ApprovedAt:        time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return r.ApprovedDonorByAppointment(ctx, input.AppointmentID)
		}
		return models.ApprovedDonor{}, err
	}
	return mapApprovedDonor(row), nil
}

func (r *Repository) ApprovedDonorByAppointment(ctx context.Context, appointmentID uuid.UUID) (models.ApprovedDonor, error) {
	var row approvedDonorModel
	err := r.db.WithContext(ctx).Where("appointment_id = ?", appointmentID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ApprovedDonor{}, ErrAppointmentNotFound
	}
	if err != nil {
		return models.ApprovedDonor{}, err
	}
	return mapApprovedDonor(row), nil
}

func (r *Repository) ListApprovedForDoctor(ctx context.Context, doctorID uuid.UUID) ([]models.ApprovedDonor, error) {
	var rows []approvedDonorModel
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("approved_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapApprovedDonors(rows), nil
}

func (r *Repository) ListApprovedAll(ctx context.Context) ([]models.ApprovedDonor, error) {
	var rows []approvedDonorModel
	if err := r.db.WithContext(ctx).Order("approved_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapApprovedDonors(rows), nil
}

func mapAppointments(rows []appointmentModel, now time.Time) []models.Appointment {
	appointments := make([]models.Appointment, 0, len(rows))
	for _, row := range rows {
		appointments = append(appointments, mapAppointment(row, now))
	}
	return appointments
}

func mapAppointment(row appointmentModel, now time.Time) models.Appointment {
	apt := models.Appointment{
		ID:         row.ID,
		DonorID:    row.DonorID,
		DoctorID:   row.DoctorID,
		HospitalID: row.HospitalID,
		Date:       row.Date,
		Time:       row.Time,
		Status:     models.AppointmentStatus(strings.ToLower(row.Status)),
		Notes:      row.Notes,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	if !now.IsZero() {
		apt.Bucket = BucketFor(row.Date, row.Time, now)
	}
	return apt
}

func mapApprovedDonors(rows []approvedDonorModel) []models.ApprovedDonor {
	donors := make([]models.ApprovedDonor, 0, len(rows))
	for _, row := range rows {
		donors = append(donors, mapApprovedDonor(row))
	}
	return donors
}

func mapApprovedDonor(row approvedDonorModel) models.ApprovedDonor {
	return models.ApprovedDonor{
		ID:              row.ID,
		DonorID:         row.DonorID,
		DonorName:       row.DonorName,
		DoctorID:        row.DoctorID,
		HospitalID:      row.HospitalID,
		AppointmentID:   row.AppointmentID,
		AppointmentDate: row.AppointmentDate,
		DonorType:       row.DonorType,
		Notes:           row.Notes,
		Medical: models.MedicalSnapshot{
			HeightCm:          row.HeightCm,
			WeightKg:          row.WeightKg,
			HemoglobinLevel:   row.HemoglobinLevel,
			PulseRate:         row.PulseRate,
			HasHeartDisease:   row.HasHeartDisease,
			HasDiabetes:       row.HasDiabetes,
			HasHIV:            row.HasHIV,
			HasHepatitis:      row.HasHepatitis,
			HasCancer:         row.HasCancer,
			SmokingStatus:     row.SmokingStatus,
			ExerciseFrequency: row.ExerciseFrequency,
			LastDonationDate:  row.LastDonationDate,
		},
		ApprovedAt: row.ApprovedAt,
	}
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key")
}
