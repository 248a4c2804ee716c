package donor

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lifelink-health/portal/pkg/common/models"
	"github.com/lifelink-health/portal/pkg/common/validate"
)

var bloodTypes = map[string]bool{
	"A+": true, "A-": true, "B+": true, "B-": true,
	"AB+": true, "AB-": true, "O+": true, "O-": true,
}

var donorTypes = map[string]bool{
	"Kidney": true, "Heart": true, "Eye": true, "Leg": true, "Arm": true,
}

var smokingStatuses = map[string]bool{"never": true, "former": true, "current": true}

var consumptionLevels = map[string]bool{
	"never": true, "occasional": true, "regular": true, "frequent": true,
}

const (
	minDonorAge = 18
	maxDonorAge = 65
)

// ValidateSubmission checks the medical form against its schema before any
// write is issued.
func ValidateSubmission(req models.MedicalRecordRequest) error {
	errs := validate.FieldErrors{}
	errs.Required("donor_name", "Name", req.DonorName)
	errs.Required("medical_history", "Medical history", req.MedicalHistory)
	errs.Required("blood_pressure", "Blood pressure", req.BloodPressure)
	errs.Required("city", "City", req.City)
	errs.Required("province", "Province", req.Province)

	if !bloodTypes[strings.TrimSpace(req.BloodType)] {
		errs.Add("blood_type", "Valid blood type is required")
	}
	if req.Age < minDonorAge || req.Age > maxDonorAge {
		errs.Add("age", "Age must be between 18 and 65")
	}
	if req.WeightKg <= 0 {
		errs.Add("weight_kg", "Weight is required")
	}
	if req.HeightCm <= 0 {
		errs.Add("height_cm", "Height is required")
	}
	if req.PulseRate <= 0 {
		errs.Add("pulse_rate", "Pulse rate is required")
	}
	if req.HemoglobinLevel <= 0 {
		errs.Add("hemoglobin_level", "Hemoglobin level is required")
	}
	if !smokingStatuses[req.SmokingStatus] {
		errs.Add("smoking_status", "Smoking status is required")
	}
	if !consumptionLevels[req.AlcoholConsumption] {
		errs.Add("alcohol_consumption", "Alcohol consumption is required")
	}
	if !consumptionLevels[req.ExerciseFrequency] {
		errs.Add("exercise_frequency", "Exercise frequency is required")
	}
	if !donorTypes[strings.TrimSpace(req.DonorType)] {
		errs.Add("donor_type", "Type of donation is required")
	}
	if req.HospitalID == uuid.Nil {
		errs.Add("hospital_id", "Hospital is required")
	}

	errs.Required("emergency_contact.name", "Emergency contact name", req.EmergencyContact.Name)
	errs.Required("emergency_contact.relationship", "Emergency contact relationship", req.EmergencyContact.Relationship)
	if !phoneValid(req.EmergencyContact.Phone) {
		errs.Add("emergency_contact.phone", "Valid phone number is required")
	}

	return errs.OrNil()
}

func phoneValid(phone string) bool {
	trimmed := strings.TrimSpace(phone)
	if len(trimmed) < 10 {
		return false
	}
	for _, r := range trimmed {
		if (r < '0' || r > '9') && r != '+' && r != '-' && r != ' ' {
			return false
		}
	}
	return true
}
