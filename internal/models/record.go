package models

import (
	"time"

	"gorm.io/datatypes"
)

// Visit types form a closed set; anything else is a validation error.
const (
	VisitTypeOutpatient = "Outpatient"
	VisitTypeInpatient  = "Inpatient"
	VisitTypeEmergency  = "Emergency"
)

// ValidVisitType reports whether t is one of the known visit types
func ValidVisitType(t string) bool {
	switch t {
	case VisitTypeOutpatient, VisitTypeInpatient, VisitTypeEmergency:
		return true
	}
	return false
}

// VisitRecord represents the visit_records table: one clinical encounter.
// The visit date is immutable once written and diagnostic tests are
// append-only; attachment bytes never live here, only object-store keys.
type VisitRecord struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	PatientID         string         `gorm:"size:10;not null;index" json:"patient_id"`
	VisitDate         time.Time      `gorm:"not null" json:"visitDate"`
	VisitType         string         `gorm:"size:20;not null" json:"visitType"`
	ChiefComplaint    string         `gorm:"type:text" json:"chiefComplaint,omitempty"`
	VitalSigns        datatypes.JSON `json:"vitalSigns"`
	DiagnosticTests   datatypes.JSON `json:"diagnosticTests,omitempty"`
	DischargeSummary  datatypes.JSON `json:"dischargeSummary,omitempty"`
	ProceduralDetails datatypes.JSON `json:"proceduralDetails,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// TableName specifies the table name for VisitRecord model
func (VisitRecord) TableName() string {
	return "visit_records"
}

// VitalSigns is the vitals payload stored as JSON on a visit record
type VitalSigns struct {
	BloodPressure string  `json:"bloodPressure"`
	HeartRate     int     `json:"heartRate"`
	Temperature   float64 `json:"temperature"`
}

// DiagnosticTest is one entry in the diagnostic tests JSON array. The
// report file key references an object-store key, write-once per entry.
type DiagnosticTest struct {
	TestName      string `json:"testName"`
	ReportFileKey string `json:"reportFileKey"`
}

// DischargeSummary is the optional inpatient discharge payload
type DischargeSummary struct {
	AdmissionDate    time.Time `json:"admissionDate"`
	DischargeDate    time.Time `json:"dischargeDate"`
	InpatientSummary string    `json:"inpatientSummary,omitempty"`
}

// ProceduralDetails is the optional surgical payload
type ProceduralDetails struct {
	SurgeryType       string    `json:"surgeryType"`
	SurgeryDate       time.Time `json:"surgeryDate"`
	ProcedureSummary  string    `json:"procedureSummary,omitempty"`
	PostOpInstruction string    `json:"postOpInstructions,omitempty"`
}
