package models

import (
	"time"

	"github.com/google/uuid"
)

// Role determines which portal screens a signed-in principal may use.
type Role string

const (
	RoleNone   Role = ""
	RoleDonor  Role = "donor"
	RoleDoctor Role = "doctor"
	RoleAdmin  Role = "admin"
)

func ParseRole(s string) Role {
	switch s {
	case string(RoleDonor):
		return RoleDonor
	case string(RoleDoctor):
		return RoleDoctor
	case string(RoleAdmin):
		return RoleAdmin
	default:
		return RoleNone
	}
}

// VerificationStatus is the hospital application lifecycle. Stored lowercase;
// legacy capitalized values are normalized at the store boundary.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// RecordStatus is the donor medical record lifecycle.
type RecordStatus string

const (
	RecordPending  RecordStatus = "pending"
	RecordApproved RecordStatus = "approved"
	RecordRejected RecordStatus = "rejected"
)

// AppointmentStatus is the stored verification state of a clearance
// appointment. Temporal grouping (past/current/upcoming) is derived at read
// time and never stored.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentApproved  AppointmentStatus = "approved"
	AppointmentRejected  AppointmentStatus = "rejected"
)

// TimeBucket is the derived temporal grouping of an appointment.
type TimeBucket string

const (
	BucketPast     TimeBucket = "past"
	BucketCurrent  TimeBucket = "current"
	BucketUpcoming TimeBucket = "upcoming"
)

// Principal is an authenticated identity issued by the identity service.
type Principal struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// User is a principal's profile record: role plus display name.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the resolved view of a signed-in principal: who they are, what
// they may see, and (for doctors) the sponsoring hospital's standing.
type Session struct {
	Principal      Principal           `json:"principal"`
	Role           Role                `json:"role"`
	HospitalStatus *VerificationStatus `json:"hospital_status,omitempty"`
	TokenID        string              `json:"-"`
}

// HospitalApplication is one hospital's registration and its verification
// lifecycle. At most one application exists per owning principal.
type HospitalApplication struct {
	ID                   uuid.UUID          `json:"id"`
	UserID               uuid.UUID          `json:"user_id"`
	HospitalName         string             `json:"hospital_name"`
	Address              string             `json:"address"`
	ContactNumber        string             `json:"contact_number"`
	Email                string             `json:"email"`
	LicenseNumber        string             `json:"license_number"`
	DoctorName           string             `json:"doctor_name"`
	DoctorSpecialization string             `json:"doctor_specialization"`
	LicenseFileURL       string             `json:"license_file_url"`
	Province             string             `json:"province"`
	City                 string             `json:"city"`
	VerificationStatus   VerificationStatus `json:"verification_status"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            *time.Time         `json:"updated_at,omitempty"`
}

// EmergencyContact is the donor's declared contact person.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

// MedicalRecord is a donor's submitted medical profile and its review
// lifecycle. HospitalID references the sponsoring hospital's owning principal,
// not the application row.
type MedicalRecord struct {
	ID                 uuid.UUID        `json:"id"`
	DonorID            uuid.UUID        `json:"donor_id"`
	DonorName          string           `json:"donor_name"`
	BloodType          string           `json:"blood_type"`
	Age                int              `json:"age"`
	WeightKg           float64          `json:"weight_kg"`
	HeightCm           float64          `json:"height_cm"`
	BMI                float64          `json:"bmi"`
	MedicalHistory     string           `json:"medical_history"`
	CurrentMedications string           `json:"current_medications"`
	SurgicalHistory    string           `json:"surgical_history"`
	Allergies          string           `json:"allergies"`
	ChronicConditions  string           `json:"chronic_conditions"`
	BloodPressure      string           `json:"blood_pressure"`
	PulseRate          int              `json:"pulse_rate"`
	HemoglobinLevel    float64          `json:"hemoglobin_level"`
	LastDonationDate   string           `json:"last_donation_date,omitempty"`
	SmokingStatus      string           `json:"smoking_status"`
	AlcoholConsumption string           `json:"alcohol_consumption"`
	ExerciseFrequency  string           `json:"exercise_frequency"`
	HasHeartDisease    bool             `json:"has_heart_disease"`
	HasDiabetes        bool             `json:"has_diabetes"`
	HasHIV             bool             `json:"has_hiv"`
	HasHepatitis       bool             `json:"has_hepatitis"`
	HasCancer          bool             `json:"has_cancer"`
	EmergencyContact   EmergencyContact `json:"emergency_contact"`
	Province           string           `json:"province"`
	City               string           `json:"city"`
	HospitalID         uuid.UUID        `json:"hospital_id"`
	HospitalName       string           `json:"hospital_name"`
	DonorType          string           `json:"donor_type"`
	AdditionalNotes    string           `json:"additional_notes,omitempty"`
	Status             RecordStatus     `json:"status"`
	SubmittedAt        time.Time        `json:"submitted_at"`
	VerifiedBy         *uuid.UUID       `json:"verified_by,omitempty"`
	VerifiedAt         *time.Time       `json:"verified_at,omitempty"`
	AppointmentDate    string           `json:"appointment_date,omitempty"`
	AppointmentTime    string           `json:"appointment_time,omitempty"`
}

// Appointment links a donor's approved medical record to a clearance slot at
// the sponsoring hospital. Date is "2006-01-02", Time is "15:04".
type Appointment struct {
	ID         uuid.UUID         `json:"id"`
	DonorID    uuid.UUID         `json:"donor_id"`
	DonorName  string            `json:"donor_name,omitempty"`
	DoctorID   uuid.UUID         `json:"doctor_id"`
	HospitalID uuid.UUID         `json:"hospital_id"`
	Date       string            `json:"date"`
	Time       string            `json:"time"`
	Status     AppointmentStatus `json:"status"`
	Notes      string            `json:"notes,omitempty"`
	Bucket     TimeBucket        `json:"bucket,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  *time.Time        `json:"updated_at,omitempty"`
}

// MedicalSnapshot is the fixed field set copied onto an ApprovedDonor at
// verification time.
type MedicalSnapshot struct {
	HeightCm          float64 `json:"height_cm"`
	WeightKg          float64 `json:"weight_kg"`
	HemoglobinLevel   float64 `json:"hemoglobin_level"`
	PulseRate         int     `json:"pulse_rate"`
	HasHeartDisease   bool    `json:"has_heart_disease"`
	HasDiabetes       bool    `json:"has_diabetes"`
	HasHIV            bool    `json:"has_hiv"`
	HasHepatitis      bool    `json:"has_hepatitis"`
	HasCancer         bool    `json:"has_cancer"`
	SmokingStatus     string  `json:"smoking_status"`
	ExerciseFrequency string  `json:"exercise_frequency"`
	LastDonationDate  string  `json:"last_donation_date,omitempty"`
}

// ApprovedDonor is the write-once registry entry created when an appointment
// passes secondary verification. One per appointment.
type ApprovedDonor struct {
	ID              uuid.UUID       `json:"id"`
	DonorID         uuid.UUID       `json:"donor_id"`
	DonorName       string          `json:"donor_name"`
	DoctorID        uuid.UUID       `json:"doctor_id"`
	HospitalID      uuid.UUID       `json:"hospital_id"`
	AppointmentID   uuid.UUID       `json:"appointment_id"`
	AppointmentDate string          `json:"appointment_date"`
	DonorType       string          `json:"donor_type"`
	Notes           string          `json:"notes,omitempty"`
	Medical         MedicalSnapshot `json:"medical"`
	ApprovedAt      time.Time       `json:"approved_at"`
}

// Event is the envelope published to the audit topic on every state
// transition.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Actor     string                 `json:"actor,omitempty"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// HospitalRegistrationRequest carries the hospital registration form. The
// license file travels alongside as a multipart part.
type HospitalRegistrationRequest struct {
	HospitalName         string `json:"hospital_name"`
	Address              string `json:"address"`
	ContactNumber        string `json:"contact_number"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	LicenseNumber        string `json:"license_number"`
	DoctorName           string `json:"doctor_name"`
	DoctorSpecialization string `json:"doctor_specialization"`
	Province             string `json:"province"`
	City                 string `json:"city"`
}

// HospitalEditRequest updates a still-pending application. KeepLicenseFile
// false with no replacement part fails validation.
type HospitalEditRequest struct {
	HospitalName         string `json:"hospital_name"`
	Address              string `json:"address"`
	ContactNumber        string `json:"contact_number"`
	LicenseNumber        string `json:"license_number"`
	DoctorName           string `json:"doctor_name"`
	DoctorSpecialization string `json:"doctor_specialization"`
	Province             string `json:"province"`
	City                 string `json:"city"`
	KeepLicenseFile      bool   `json:"keep_license_file"`
}

type ReviewRequest struct {
	Decision VerificationStatus `json:"decision"`
}

// MedicalRecordRequest is the donor's medical form submission.
type MedicalRecordRequest struct {
	DonorName          string           `json:"donor_name"`
	BloodType          string           `json:"blood_type"`
	Age                int              `json:"age"`
	WeightKg           float64          `json:"weight_kg"`
	HeightCm           float64          `json:"height_cm"`
	MedicalHistory     string           `json:"medical_history"`
	CurrentMedications string           `json:"current_medications"`
	SurgicalHistory    string           `json:"surgical_history"`
	Allergies          string           `json:"allergies"`
	ChronicConditions  string           `json:"chronic_conditions"`
	BloodPressure      string           `json:"blood_pressure"`
	PulseRate          int              `json:"pulse_rate"`
	HemoglobinLevel    float64          `json:"hemoglobin_level"`
	LastDonationDate   string           `json:"last_donation_date"`
	SmokingStatus      string           `json:"smoking_status"`
	AlcoholConsumption string           `json:"alcohol_consumption"`
	ExerciseFrequency  string           `json:"exercise_frequency"`
	HasHeartDisease    bool             `json:"has_heart_disease"`
	HasDiabetes        bool             `json:"has_diabetes"`
	HasHIV             bool             `json:"has_hiv"`
	HasHepatitis       bool             `json:"has_hepatitis"`
	HasCancer          bool             `json:"has_cancer"`
	EmergencyContact   EmergencyContact `json:"emergency_contact"`
	Province           string           `json:"province"`
	City               string           `json:"city"`
	HospitalID         uuid.UUID        `json:"hospital_id"`
	DonorType          string           `json:"donor_type"`
	AdditionalNotes    string           `json:"additional_notes"`
}

type ScheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type RescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type VerifyRequest struct {
	Decision AppointmentStatus `json:"decision"`
	Notes    string            `json:"notes"`
}
