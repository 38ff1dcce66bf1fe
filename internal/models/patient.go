package models

import (
	"time"

	"gorm.io/datatypes"
)

// PatientPersonal represents the patient_personal table: identity and
// contact details. Joined with PatientClinical on the shared patient_id
// business key, never on row ids, so the two halves can evolve
// independently.
type PatientPersonal struct {
	ID             uint           `gorm:"primaryKey" json:"-"`
	PatientID      string         `gorm:"size:10;not null;uniqueIndex" json:"patient_id"`
	FullName       string         `gorm:"size:255;not null" json:"fullName"`
	DateOfBirth    time.Time      `gorm:"not null" json:"dateOfBirth"`
	// Age is derived from DateOfBirth on every read, never stored: a
	// persisted age would go stale as years pass.
	Age            int            `gorm:"-" json:"age"`
	Gender         string         `gorm:"size:10" json:"gender"`
	Height         float64        `json:"height"`
	Weight         float64        `json:"weight"`
	PhoneNumber    string         `gorm:"size:20;not null;uniqueIndex" json:"phoneNumber"`
	Email          string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	EmergencyPhone string         `gorm:"size:20" json:"emergency_phone"`
	Address        datatypes.JSON `json:"address,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName specifies the table name for PatientPersonal model
func (PatientPersonal) TableName() string {
	return "patient_personal"
}

// Address is the embedded contact address stored as JSON
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

// PatientClinical represents the patient_clinical table: static medical
// data keyed by the same patient_id as the personal half. The insurance
// policy number lives in its own column so the unique constraint applies;
// the remaining insurance fields ride along as JSON.
type PatientClinical struct {
	ID                   uint           `gorm:"primaryKey" json:"-"`
	PatientID            string         `gorm:"size:10;not null;uniqueIndex" json:"patient_id"`
	BloodType            string         `gorm:"size:3" json:"bloodType,omitempty"`
	Allergies            datatypes.JSON `json:"allergies,omitempty"`
	ChronicConditions    datatypes.JSON `json:"chronicConditions,omitempty"`
	FamilyMedicalHistory datatypes.JSON `json:"familyMedicalHistory,omitempty"`
	ImmunizationRecords  datatypes.JSON `json:"immunizationRecords,omitempty"`
	PolicyNumber         *string        `gorm:"size:64;uniqueIndex" json:"policyNumber,omitempty"`
	InsuranceDetails     datatypes.JSON `json:"healthInsuranceDetails,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// TableName specifies the table name for PatientClinical model
func (PatientClinical) TableName() string {
	return "patient_clinical"
}

// Allergy is one entry in the allergies JSON array
type Allergy struct {
	Substance string `json:"substance"`
	Reaction  string `json:"reaction,omitempty"`
}

// ChronicCondition is one entry in the chronic conditions JSON array
type ChronicCondition struct {
	Condition     string     `json:"condition"`
	DateDiagnosed *time.Time `json:"dateDiagnosed,omitempty"`
}

// FamilyHistoryEntry is one entry in the family medical history JSON array
type FamilyHistoryEntry struct {
	Relation  string `json:"relation"`
	Condition string `json:"condition"`
}

// Immunization is one entry in the immunization records JSON array
type Immunization struct {
	Vaccine      string    `json:"vaccine"`
	DateReceived time.Time `json:"dateReceived"`
	BoosterShot  bool      `json:"boosterShot"`
}

// InsuranceDetails holds the non-unique insurance fields stored as JSON
type InsuranceDetails struct {
	Provider    string  `json:"provider,omitempty"`
	Coverage    string  `json:"coverage,omitempty"`
	CoPayAmount float64 `json:"coPayAmount,omitempty"`
}
