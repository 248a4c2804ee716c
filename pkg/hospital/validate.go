package hospital

import (
	"regexp"
	"strings"

	"github.com/lifelink-health/portal/pkg/common/models"
	"github.com/lifelink-health/portal/pkg/common/validate"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ValidateRegistration checks the full registration form before any I/O is
// issued, so a validation failure can never leave a half-created account.
func ValidateRegistration(req models.HospitalRegistrationRequest, hasLicenseFile bool, provinceKnown bool) error {
	errs := validate.FieldErrors{}
	errs.Required("hospital_name", "Hospital name", req.HospitalName)
	errs.Required("address", "Address", req.Address)
	errs.Required("contact_number", "Contact number", req.ContactNumber)
	errs.Required("license_number", "License number", req.LicenseNumber)
	errs.Required("doctor_name", "Doctor name", req.DoctorName)
	errs.Required("doctor_specialization", "Doctor specialization", req.DoctorSpecialization)
	errs.Required("city", "City", req.City)

	if !emailPattern.MatchString(strings.TrimSpace(req.Email)) {
		errs.Add("email", "Valid email is required")
	}
	if len(strings.TrimSpace(req.Password)) < 6 {
		errs.Add("password", "Password must be at least 6 characters")
	}
	if !hasLicenseFile {
		errs.Add("license_file", "License file is required")
	}
	if strings.TrimSpace(req.Province) == "" {
		errs.Add("province", "Province is required")
	} else if !provinceKnown {
		errs.Add("province", "Unknown province")
	}

	return errs.OrNil()
}

// ValidateEdit re-checks the required fields on an edit. hasLicenseFile must
// account for both the kept reference and any replacement upload: removing
// the existing file without supplying a new one blocks submission.
func ValidateEdit(req models.HospitalEditRequest, hasLicenseFile bool, provinceKnown bool) error {
	errs := validate.FieldErrors{}
	errs.Required("hospital_name", "Hospital name", req.HospitalName)
	errs.Required("address", "Address", req.Address)
	errs.Required("contact_number", "Contact number", req.ContactNumber)
	errs.Required("license_number", "License number", req.LicenseNumber)
	errs.Required("doctor_name", "Doctor name", req.DoctorName)
	errs.Required("doctor_specialization", "Doctor specialization", req.DoctorSpecialization)
	errs.Required("city", "City", req.City)

	if !hasLicenseFile {
		errs.Add("license_file", "License file is required")
	}
	if strings.TrimSpace(req.Province) == "" {
		errs.Add("province", "Province is required")
	} else if !provinceKnown {
		errs.Add("province", "Unknown province")
	}

	return errs.OrNil()
}
