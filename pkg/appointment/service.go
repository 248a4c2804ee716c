package appointment

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lifelink-health/portal/pkg/audit"
	"github.com/lifelink-health/portal/pkg/common/logger"
	"github.com/lifelink-health/portal/pkg/common/models"
	"github.com/lifelink-health/portal/pkg/observability/metrics"
)

var (
	ErrNotOwner         = errors.New("appointment belongs to another doctor")
	ErrNotReschedulable = errors.New("only scheduled appointments can be rescheduled")
	ErrAlreadyDecided   = errors.New("appointment verification already recorded")
	ErrInvalidDecision  = errors.New("decision must be approved or rejected")
	ErrInvalidSlot      = errors.New("invalid appointment date or time")
)

// DonorSource resolves donor display names and the medical snapshot that gets
// copied onto the approved-donor registry entry.
type DonorSource interface {
	DonorName(ctx context.Context, donorID uuid.UUID) (string, error)
	Snapshot(ctx context.Context, donorID uuid.UUID) (models.MedicalSnapshot, string, string, error)
}

type Service struct {
	repo    *Repository
	donors  DonorSource
	auditor audit.Publisher
}

func NewService(repo *Repository, donors DonorSource, auditor audit.Publisher) *Service {
	if auditor == nil {
		auditor = audit.NewNopPublisher()
	}
	return &Service{repo: repo, donors: donors, auditor: auditor}
}

// Schedule is the doctor's appointment list grouped by derived time bucket.
// Grouping is computed against the current clock on every read; nothing
// temporal is stored.
type Schedule struct {
	Appointments []models.Appointment      `json:"appointments"`
	Counts       map[models.TimeBucket]int `json:"counts"`
}

// ForDoctor returns the doctor's appointments with donor names resolved and
// buckets derived. An empty search returns everything; otherwise the term is
// matched case-insensitively against donor name and date.
func (s *Service) ForDoctor(ctx context.Context, doctorID uuid.UUID, search string) (Schedule, error) {
	appointments, err := s.repo.ListForDoctor(ctx, doctorID)
	if err != nil {
		return Schedule{}, err
	}
	return s.buildSchedule(ctx, appointments, search), nil
}

// ForDonor returns the donor's own appointments, buckets derived.
func (s *Service) ForDonor(ctx context.Context, donorID uuid.UUID) (Schedule, error) {
	appointments, err := s.repo.ListForDonor(ctx, donorID)
	if err != nil {
		return Schedule{}, err
	}
	return s.buildSchedule(ctx, appointments, ""), nil
}

func (s *Service) buildSchedule(ctx context.Context, appointments []models.Appointment, search string) Schedule {
	term := strings.ToLower(strings.TrimSpace(search))
	schedule := Schedule{
		Appointments: make([]models.Appointment, 0, len(appointments)),
		Counts:       map[models.TimeBucket]int{models.BucketPast: 0, models.BucketCurrent: 0, models.BucketUpcoming: 0},
	}

	names := map[uuid.UUID]string{}
	for _, apt := range appointments {
		name, ok := names[apt.DonorID]
		if !ok {
			resolved, err := s.donors.DonorName(ctx, apt.DonorID)
			if err != nil {
				logger.Log.WithError(err).WithField("donor_id", apt.DonorID).Warn("failed to resolve donor name")
			}
			name = resolved
			names[apt.DonorID] = name
		}
		apt.DonorName = name

		// Counts reflect the full schedule; search narrows only the listing.
		schedule.Counts[apt.Bucket]++
		if term != "" && !matches(apt, term) {
			continue
		}
		schedule.Appointments = append(schedule.Appointments, apt)
	}
	return schedule
}

func matches(apt models.Appointment, term string) bool {
	return strings.Contains(strings.ToLower(apt.DonorName), term) ||
		strings.Contains(strings.ToLower(apt.DonorID.String()), term) ||
		strings.Contains(apt.Date, term)
}

// Reschedule moves a scheduled appointment to a new slot. Terminal
// appointments stay put, and the new slot is conflict-checked against the
// doctor's other appointments before the move.
func (s *Service) Reschedule(ctx context.Context, doctorID, appointmentID uuid.UUID, req models.RescheduleRequest) (models.Appointment, error) {
	if _, err := ParseSlot(req.Date, req.Time); err != nil {
		return models.Appointment{}, ErrInvalidSlot
	}

	apt, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return models.Appointment{}, err
	}
	if apt.DoctorID != doctorID {
		return models.Appointment{}, ErrNotOwner
	}
	if apt.Status != models.AppointmentScheduled {
		return models.Appointment{}, ErrNotReschedulable
	}

	taken, err := s.repo.SlotTaken(ctx, doctorID, req.Date, req.Time, appointmentID)
	if err != nil {
		return models.Appointment{}, err
	}
	if taken {
		metrics.SlotConflicts.Inc()
		return models.Appointment{}, ErrSlotTaken
	}

	if err := s.repo.Reschedule(ctx, appointmentID, req.Date, req.Time); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			metrics.SlotConflicts.Inc()
		}
		return models.Appointment{}, err
	}

	s.auditor.Publish(ctx, "appointment_rescheduled", doctorID.String(), map[string]interface{}{
		"appointment_id": appointmentID.String(),
		"date":           req.Date,
		"time":           req.Time,
	})

	return s.repo.GetByID(ctx, appointmentID)
}

// Verify records the day-of clearance outcome. Approval materializes the
// approved-donor registry entry; repeating an approval returns the existing
// entry instead of failing.
func (s *Service) Verify(ctx context.Context, doctorID, appointmentID uuid.UUID, req models.VerifyRequest) (*models.ApprovedDonor, error) {
	decision := models.AppointmentStatus(strings.ToLower(string(req.Decision)))
	if decision != models.AppointmentApproved && decision != models.AppointmentRejected {
		return nil, ErrInvalidDecision
	}

	apt, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if apt.DoctorID != doctorID {
		return nil, ErrNotOwner
	}

	switch apt.Status {
	case models.AppointmentScheduled:
		// first decision
	case models.AppointmentApproved:
		if decision != models.AppointmentApproved {
			return nil, ErrAlreadyDecided
		}
	default:
		return nil, ErrAlreadyDecided
	}

	if apt.Status == models.AppointmentScheduled {
		if err := s.repo.UpdateStatus(ctx, appointmentID, decision, req.Notes); err != nil {
			return nil, err
		}
		metrics.DonorsVerified.WithLabelValues(string(decision)).Inc()
		s.auditor.Publish(ctx, "appointment_verified", doctorID.String(), map[string]interface{}{
			"appointment_id": appointmentID.String(),
			"donor_id":       apt.DonorID.String(),
			"decision":       string(decision),
		})
	}

	if decision != models.AppointmentApproved {
		return nil, nil
	}

	snapshot, donorType, donorName, err := s.donors.Snapshot(ctx, apt.DonorID)
	if err != nil {
		return nil, err
	}
	approved, err := s.repo.CreateApprovedDonor(ctx, CreateApprovedDonorInput{
		DonorID:         apt.DonorID,
		DonorName:       donorName,
		DoctorID:        apt.DoctorID,
		HospitalID:      apt.HospitalID,
		AppointmentID:   apt.ID,
		AppointmentDate: apt.Date,
		DonorType:       donorType,
		Notes:           req.Notes,
		Medical:         snapshot,
	})
	if err != nil {
		return nil, err
	}
	return &approved, nil
}

// ApprovedForDoctor lists the doctor's verified donor registry, newest first.
func (s *Service) ApprovedForDoctor(ctx context.Context, doctorID uuid.UUID) ([]models.ApprovedDonor, error) {
	return s.repo.ListApprovedForDoctor(ctx, doctorID)
}

// ApprovedAll is the admin-wide registry view.
func (s *Service) ApprovedAll(ctx context.Context) ([]models.ApprovedDonor, error) {
	return s.repo.ListApprovedAll(ctx)
}
