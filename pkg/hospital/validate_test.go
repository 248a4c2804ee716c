package hospital

import (
	"errors"
	"testing"

	"github.com/lifelink-health/portal/pkg/common/models"
	"github.com/lifelink-health/portal/pkg/common/validate"
)

func validRegistration() models.HospitalRegistrationRequest {
	return models.HospitalRegistrationRequest{
		HospitalName:         "Mayo Hospital",
		Address:              "Hospital Road, Lahore",
		ContactNumber:        "+92 42 1234567",
		Email:                "admin@mayo.example.com",
		Password:             "s3cret-pass",
		LicenseNumber:        "LHR-2024-0042",
		DoctorName:           "Dr. Kamran",
		DoctorSpecialization: "Nephrology",
		Province:             "Punjab",
		City:                 "Lahore",
	}
}

func TestValidateRegistrationAccepts(t *testing.T) {
	if err := ValidateRegistration(validRegistration(), true, true); err != nil {
		t.Fatalf("expected valid registration, got %v", err)
	}
}

func TestValidateRegistrationRequiresLicenseFile(t *testing.T) {
	err := ValidateRegistration(validRegistration(), false, true)
	var fields validate.FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if _, ok := fields["license_file"]; !ok {
		t.Fatalf("expected license_file error, got %v", fields)
	}
}

func TestValidateRegistrationFieldChecks(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.HospitalRegistrationRequest)
		field  string
	}{
		{"bad email", func(r *models.HospitalRegistrationRequest) { r.Email = "not-an-email" }, "email"},
		{"short password", func(r *models.HospitalRegistrationRequest) { r.Password = "abc" }, "password"},
		{"blank name", func(r *models.HospitalRegistrationRequest) { r.HospitalName = "  " }, "hospital_name"},
		{"blank city", func(r *models.HospitalRegistrationRequest) { r.City = "" }, "city"},
		{"blank province", func(r *models.HospitalRegistrationRequest) { r.Province = "" }, "province"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRegistration()
			tc.mutate(&req)
			err := ValidateRegistration(req, true, true)
			var fields validate.FieldErrors
			if !errors.As(err, &fields) {
				t.Fatalf("expected field errors, got %v", err)
			}
			if _, ok := fields[tc.field]; !ok {
				t.Fatalf("expected error on %q, got %v", tc.field, fields)
			}
		})
	}
}

func TestValidateRegistrationUnknownProvince(t *testing.T) {
	err := ValidateRegistration(validRegistration(), true, false)
	var fields validate.FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if fields["province"] != "Unknown province" {
		t.Fatalf("expected unknown province error, got %v", fields)
	}
}

func TestValidateEditLicenseKeepOrReplace(t *testing.T) {
	req := models.HospitalEditRequest{
		HospitalName:         "Mayo Hospital",
		Address:              "Hospital Road, Lahore",
		ContactNumber:        "+92 42 1234567",
		LicenseNumber:        "LHR-2024-0042",
		DoctorName:           "Dr. Kamran",
		DoctorSpecialization: "Nephrology",
		Province:             "Punjab",
		City:                 "Lahore",
	}

	if err := ValidateEdit(req, true, true); err != nil {
		t.Fatalf("kept or replaced license should validate, got %v", err)
	}

	err := ValidateEdit(req, false, true)
	var fields validate.FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if _, ok := fields["license_file"]; !ok {
		t.Fatal("dropping the license without a replacement must fail")
	}
}
