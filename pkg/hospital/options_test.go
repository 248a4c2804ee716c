package hospital

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lifelink-health/portal/pkg/common/models"
)

func approvedApp(owner uuid.UUID, name, city string) models.HospitalApplication {
	return models.HospitalApplication{
		UserID:             owner,
		HospitalName:       name,
		City:               city,
		VerificationStatus: models.VerificationApproved,
	}
}

func TestDeriveOptionsCitiesOnly(t *testing.T) {
	apps := []models.HospitalApplication{
		approvedApp(uuid.New(), "Shifa International", "Islamabad"),
		approvedApp(uuid.New(), "Mayo Hospital", "Lahore"),
		approvedApp(uuid.New(), "Services Hospital", "Lahore"),
	}

	opts := DeriveOptions(apps, "")
	if len(opts.Cities) != 2 {
		t.Fatalf("expected 2 cities, got %v", opts.Cities)
	}
	if opts.Cities[0] != "Islamabad" || opts.Cities[1] != "Lahore" {
		t.Fatalf("expected sorted cities, got %v", opts.Cities)
	}
	if len(opts.Hospitals) != 0 {
		t.Fatalf("expected no hospitals before a city is chosen, got %v", opts.Hospitals)
	}
}

func TestDeriveOptionsHospitalsForCity(t *testing.T) {
	owner := uuid.New()
	apps := []models.HospitalApplication{
		approvedApp(owner, "Mayo Hospital", "Lahore"),
		approvedApp(uuid.New(), "Shifa International", "Islamabad"),
	}

	opts := DeriveOptions(apps, "Lahore")
	if len(opts.Hospitals) != 1 {
		t.Fatalf("expected one hospital in Lahore, got %v", opts.Hospitals)
	}
	if opts.Hospitals[0].Name != "Mayo Hospital" {
		t.Fatalf("unexpected hospital %v", opts.Hospitals[0])
	}
	if opts.Hospitals[0].ID != owner.String() {
		t.Fatal("hospital option id must be the owning principal's id")
	}
}

func TestDeriveOptionsSkipsUnapproved(t *testing.T) {
	pending := approvedApp(uuid.New(), "Pending Hospital", "Karachi")
	pending.VerificationStatus = models.VerificationPending
	rejected := approvedApp(uuid.New(), "Rejected Hospital", "Karachi")
	rejected.VerificationStatus = models.VerificationRejected

	opts := DeriveOptions([]models.HospitalApplication{pending, rejected}, "Karachi")
	if len(opts.Cities) != 0 || len(opts.Hospitals) != 0 {
		t.Fatalf("expected unapproved hospitals to be invisible, got %+v", opts)
	}
}

func TestDeriveOptionsSortsHospitals(t *testing.T) {
	apps := []models.HospitalApplication{
		approvedApp(uuid.New(), "Ziauddin Hospital", "Karachi"),
		approvedApp(uuid.New(), "Aga Khan Hospital", "Karachi"),
	}

	opts := DeriveOptions(apps, "Karachi")
	if opts.Hospitals[0].Name != "Aga Khan Hospital" {
		t.Fatalf("expected alphabetical order, got %v", opts.Hospitals)
	}
}
