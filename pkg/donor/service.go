package donor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lifelink-health/portal/pkg/appointment"
	"github.com/lifelink-health/portal/pkg/audit"
	"github.com/lifelink-health/portal/pkg/common/logger"
	"github.com/lifelink-health/portal/pkg/common/models"
	"github.com/lifelink-health/portal/pkg/observability/metrics"
	"gorm.io/gorm"
)

var (
	ErrHospitalNotEligible = errors.New("selected hospital is not approved")
	ErrLocationMismatch    = errors.New("selected hospital is outside the given province and city")
	ErrPendingOnFile       = errors.New("a submission is already awaiting review")
	ErrApprovedOnFile      = errors.New("an approved submission is already on file")
	ErrCoolDownActive      = errors.New("reapplication cool-down has not elapsed")
	ErrNotReviewer         = errors.New("record belongs to another hospital's queue")
	ErrNotPending          = errors.New("record is no longer pending")
	ErrInvalidSlot         = errors.New("invalid appointment date or time")
)

// CoolDownError carries the days remaining alongside ErrCoolDownActive.
type CoolDownError struct {
	DaysRemaining int
}

func (e *CoolDownError) Error() string {
	return fmt.Sprintf("reapplication blocked for %d more day(s)", e.DaysRemaining)
}

func (e *CoolDownError) Unwrap() error {
	return ErrCoolDownActive
}

// HospitalDirectory resolves the hospital a donor selected by its owning
// principal's ID.
type HospitalDirectory interface {
	GetByOwner(ctx context.Context, userID uuid.UUID) (models.HospitalApplication, error)
}

type Service struct {
	db           *gorm.DB
	repo         *Repository
	appointments *appointment.Repository
	hospitals    HospitalDirectory
	gate         ReapplyGate
	auditor      audit.Publisher
}

func NewService(db *gorm.DB, repo *Repository, appointments *appointment.Repository, hospitals HospitalDirectory, gate ReapplyGate, auditor audit.Publisher) *Service {
	if auditor == nil {
		auditor = audit.NewNopPublisher()
	}
	return &Service{
		db:           db,
		repo:         repo,
		appointments: appointments,
		hospitals:    hospitals,
		gate:         gate,
		auditor:      auditor,
	}
}

// Submit records a donor's medical profile for review. All field validation
// runs before any I/O; resubmission rules depend only on the donor's latest
// record.
func (s *Service) Submit(ctx context.Context, donorID uuid.UUID, req models.MedicalRecordRequest) (models.MedicalRecord, error) {
	if err := ValidateSubmission(req); err != nil {
		return models.MedicalRecord{}, err
	}

	hospital, err := s.hospitals.GetByOwner(ctx, req.HospitalID)
	if err != nil {
		return models.MedicalRecord{}, ErrHospitalNotEligible
	}
	if hospital.VerificationStatus != models.VerificationApproved {
		return models.MedicalRecord{}, ErrHospitalNotEligible
	}
	if !strings.EqualFold(hospital.Province, strings.TrimSpace(req.Province)) ||
		!strings.EqualFold(hospital.City, strings.TrimSpace(req.City)) {
		return models.MedicalRecord{}, ErrLocationMismatch
	}

	latest, err := s.repo.Latest(ctx, donorID)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return models.MedicalRecord{}, err
	}
	if err == nil {
		switch latest.Status {
		case models.RecordPending:
			return models.MedicalRecord{}, ErrPendingOnFile
		case models.RecordApproved:
			return models.MedicalRecord{}, ErrApprovedOnFile
		case models.RecordRejected:
			allowed, days := s.gate.Check(latest, time.Now())
			if !allowed {
				return models.MedicalRecord{}, &CoolDownError{DaysRemaining: days}
			}
		}
	}

	record, err := s.repo.Create(ctx, CreateRecordInput{
		DonorID:      donorID,
		HospitalName: hospital.HospitalName,
		Request:      req,
		BMI:          ComputeBMI(req.WeightKg, req.HeightCm),
	})
	if err != nil {
		return models.MedicalRecord{}, err
	}

	metrics.RecordTransitions.WithLabelValues(string(models.RecordPending)).Inc()
	s.auditor.Publish(ctx, "medical_record_submitted", donorID.String(), map[string]interface{}{
		"record_id":   record.ID.String(),
		"hospital_id": record.HospitalID.String(),
		"donor_type":  record.DonorType,
	})

	logger.WithFields(map[string]interface{}{
		"record_id": record.ID,
		"donor_id":  donorID,
	}).Info("medical record submitted")
	return record, nil
}

func (s *Service) Latest(ctx context.Context, donorID uuid.UUID) (models.MedicalRecord, error) {
	return s.repo.Latest(ctx, donorID)
}

func (s *Service) History(ctx context.Context, donorID uuid.UUID) ([]models.MedicalRecord, error) {
	return s.repo.History(ctx, donorID)
}

// ReapplyStatus is the donor-facing view of the cool-down gate.
type ReapplyStatus struct {
	CanReapply    bool                `json:"can_reapply"`
	DaysRemaining int                 `json:"days_remaining"`
	LatestStatus  models.RecordStatus `json:"latest_status,omitempty"`
}

// Reapply reports whether the donor may submit again right now. Donors with
// no history may always apply.
func (s *Service) Reapply(ctx context.Context, donorID uuid.UUID) (ReapplyStatus, error) {
	latest, err := s.repo.Latest(ctx, donorID)
	if errors.Is(err, ErrRecordNotFound) {
		return ReapplyStatus{CanReapply: true}, nil
	}
	if err != nil {
		return ReapplyStatus{}, err
	}

	switch latest.Status {
	case models.RecordRejected:
		allowed, days := s.gate.Check(latest, time.Now())
		return ReapplyStatus{CanReapply: allowed, DaysRemaining: days, LatestStatus: latest.Status}, nil
	default:
		return ReapplyStatus{CanReapply: false, LatestStatus: latest.Status}, nil
	}
}

// Queue returns the pending submissions addressed to the doctor's hospital.
func (s *Service) Queue(ctx context.Context, hospitalID uuid.UUID, status models.RecordStatus) ([]models.MedicalRecord, error) {
	return s.repo.ListForHospital(ctx, hospitalID, status)
}

func (s *Service) ListAll(ctx context.Context) ([]models.MedicalRecord, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (models.MedicalRecord, error) {
	return s.repo.GetByID(ctx, id)
}

// Approve accepts a pending record and books the clearance appointment in one
// transaction. A slot conflict aborts the whole composite and the record
// stays pending.
func (s *Service) Approve(ctx context.Context, doctorID, recordID uuid.UUID, slot models.ScheduleRequest) (models.MedicalRecord, models.Appointment, error) {
	if _, err := appointment.ParseSlot(slot.Date, slot.Time); err != nil {
		return models.MedicalRecord{}, models.Appointment{}, ErrInvalidSlot
	}

	record, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return models.MedicalRecord{}, models.Appointment{}, err
	}
	if record.HospitalID != doctorID {
		return models.MedicalRecord{}, models.Appointment{}, ErrNotReviewer
	}
	if record.Status != models.RecordPending {
		return models.MedicalRecord{}, models.Appointment{}, ErrNotPending
	}

	var booked models.Appointment
	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booked, err = s.appointments.CreateTx(tx, appointment.CreateAppointmentInput{
			DonorID:    record.DonorID,
			DoctorID:   doctorID,
			HospitalID: record.HospitalID,
			Date:       slot.Date,
			Time:       slot.Time,
		})
		if err != nil {
			return err
		}
		return s.repo.ApplyVerifyTx(tx, recordID, VerifyUpdate{
			Status:          models.RecordApproved,
			VerifiedBy:      doctorID,
			VerifiedAt:      now,
			AppointmentDate: slot.Date,
			AppointmentTime: slot.Time,
		})
	})
	if err != nil {
		if errors.Is(err, appointment.ErrSlotTaken) {
			metrics.SlotConflicts.Inc()
		}
		return models.MedicalRecord{}, models.Appointment{}, err
	}

	metrics.RecordTransitions.WithLabelValues(string(models.RecordApproved)).Inc()
	metrics.AppointmentsScheduled.Inc()
	s.auditor.Publish(ctx, "medical_record_approved", doctorID.String(), map[string]interface{}{
		"record_id":      recordID.String(),
		"donor_id":       record.DonorID.String(),
		"appointment_id": booked.ID.String(),
		"date":           slot.Date,
		"time":           slot.Time,
	})

	updated, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return models.MedicalRecord{}, models.Appointment{}, err
	}
	return updated, booked, nil
}

// Reject declines a pending record; this starts the reapplication cool-down.
func (s *Service) Reject(ctx context.Context, doctorID, recordID uuid.UUID) (models.MedicalRecord, error) {
	record, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return models.MedicalRecord{}, err
	}
	if record.HospitalID != doctorID {
		return models.MedicalRecord{}, ErrNotReviewer
	}
	if record.Status != models.RecordPending {
		return models.MedicalRecord{}, ErrNotPending
	}

	if err := s.repo.ApplyVerifyTx(s.db.WithContext(ctx), recordID, VerifyUpdate{
		Status:     models.RecordRejected,
		VerifiedBy: doctorID,
		VerifiedAt: time.Now().UTC(),
	}); err != nil {
		return models.MedicalRecord{}, err
	}

	metrics.RecordTransitions.WithLabelValues(string(models.RecordRejected)).Inc()
	s.auditor.Publish(ctx, "medical_record_rejected", doctorID.String(), map[string]interface{}{
		"record_id": recordID.String(),
		"donor_id":  record.DonorID.String(),
	})

	return s.repo.GetByID(ctx, recordID)
}
