package donor

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lifelink-health/portal/pkg/common/models"
	"github.com/lifelink-health/portal/pkg/common/validate"
)

func validSubmission() models.MedicalRecordRequest {
	return models.MedicalRecordRequest{
		DonorName:          "Ali Raza",
		BloodType:          "B+",
		Age:                30,
		WeightKg:           70,
		HeightCm:           175,
		MedicalHistory:     "None significant",
		BloodPressure:      "120/80",
		PulseRate:          72,
		HemoglobinLevel:    14.5,
		SmokingStatus:      "never",
		AlcoholConsumption: "never",
		ExerciseFrequency:  "regular",
		EmergencyContact: models.EmergencyContact{
			Name:         "Sara Raza",
			Relationship: "Sister",
			Phone:        "+92 300 1234567",
		},
		Province:   "Punjab",
		City:       "Lahore",
		HospitalID: uuid.New(),
		DonorType:  "Kidney",
	}
}

func TestValidateSubmissionAccepts(t *testing.T) {
	if err := ValidateSubmission(validSubmission()); err != nil {
		t.Fatalf("expected valid submission, got %v", err)
	}
}

func fieldErrorsFrom(t *testing.T, err error) validate.FieldErrors {
	t.Helper()
	var fields validate.FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected field errors, got %v", err)
	}
	return fields
}

func TestValidateSubmissionRejectsBadFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.MedicalRecordRequest)
		field  string
	}{
		{"unknown blood type", func(r *models.MedicalRecordRequest) { r.BloodType = "Z+" }, "blood_type"},
		{"underage", func(r *models.MedicalRecordRequest) { r.Age = 17 }, "age"},
		{"over age ceiling", func(r *models.MedicalRecordRequest) { r.Age = 66 }, "age"},
		{"missing weight", func(r *models.MedicalRecordRequest) { r.WeightKg = 0 }, "weight_kg"},
		{"unknown donor type", func(r *models.MedicalRecordRequest) { r.DonorType = "Liver" }, "donor_type"},
		{"missing hospital", func(r *models.MedicalRecordRequest) { r.HospitalID = uuid.Nil }, "hospital_id"},
		{"bad smoking status", func(r *models.MedicalRecordRequest) { r.SmokingStatus = "sometimes" }, "smoking_status"},
		{"short phone", func(r *models.MedicalRecordRequest) { r.EmergencyContact.Phone = "12345" }, "emergency_contact.phone"},
		{"lettered phone", func(r *models.MedicalRecordRequest) { r.EmergencyContact.Phone = "03001234abc" }, "emergency_contact.phone"},
		{"missing name", func(r *models.MedicalRecordRequest) { r.DonorName = " " }, "donor_name"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validSubmission()
			tc.mutate(&req)
			fields := fieldErrorsFrom(t, ValidateSubmission(req))
			if _, ok := fields[tc.field]; !ok {
				t.Fatalf("expected error on %q, got %v", tc.field, fields)
			}
		})
	}
}
