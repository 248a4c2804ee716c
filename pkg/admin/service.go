package admin

import (
	"context"

	"github.com/lifelink-health/portal/pkg/audit"
	"github.com/lifelink-health/portal/pkg/common/models"
)

// HospitalSource and friends are the read surfaces the report aggregates
// over; the concrete services satisfy them.
type HospitalSource interface {
	ListAll(ctx context.Context) ([]models.HospitalApplication, error)
}

type RecordSource interface {
	ListAll(ctx context.Context) ([]models.MedicalRecord, error)
}

type RegistrySource interface {
	ApprovedAll(ctx context.Context) ([]models.ApprovedDonor, error)
}

type UserSource interface {
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

type Service struct {
	hospitals HospitalSource
	records   RecordSource
	registry  RegistrySource
	users     UserSource
	logs      *audit.Repository
}

func NewService(hospitals HospitalSource, records RecordSource, registry RegistrySource, users UserSource, logs *audit.Repository) *Service {
	return &Service{
		hospitals: hospitals,
		records:   records,
		registry:  registry,
		users:     users,
		logs:      logs,
	}
}

// Report is the admin dashboard rollup: lifecycle counts per entity plus the
// verified donor tally per hospital.
type Report struct {
	Hospitals         map[models.VerificationStatus]int `json:"hospitals"`
	Records           map[models.RecordStatus]int       `json:"records"`
	ApprovedDonors    int                               `json:"approved_donors"`
	DonorsPerHospital map[string]int                    `json:"donors_per_hospital"`
}

func (s *Service) BuildReport(ctx context.Context) (Report, error) {
	report := Report{
		Hospitals: map[models.VerificationStatus]int{
			models.VerificationPending:  0,
			models.VerificationApproved: 0,
			models.VerificationRejected: 0,
		},
		Records: map[models.RecordStatus]int{
			models.RecordPending:  0,
			models.RecordApproved: 0,
			models.RecordRejected: 0,
		},
		DonorsPerHospital: map[string]int{},
	}

	hospitals, err := s.hospitals.ListAll(ctx)
	if err != nil {
		return Report{}, err
	}
	names := map[string]string{}
	for _, app := range hospitals {
		report.Hospitals[app.VerificationStatus]++
		names[app.UserID.String()] = app.HospitalName
	}

	records, err := s.records.ListAll(ctx)
	if err != nil {
		return Report{}, err
	}
	for _, record := range records {
		report.Records[record.Status]++
	}

	approved, err := s.registry.ApprovedAll(ctx)
	if err != nil {
		return Report{}, err
	}
	report.ApprovedDonors = len(approved)
	for _, donor := range approved {
		key := names[donor.HospitalID.String()]
		if key == "" {
			key = donor.HospitalID.String()
		}
		report.DonorsPerHospital[key]++
	}

	return report, nil
}

// Donors lists every donor account for the admin management screen.
func (s *Service) Donors(ctx context.Context) ([]models.User, error) {
	return s.users.ListByRole(ctx, models.RoleDonor)
}

func (s *Service) AuditTrail(ctx context.Context, limit int) ([]audit.AuditLog, error) {
	return s.logs.List(ctx, limit)
}
