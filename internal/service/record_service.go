package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"clinical-records-backend/internal/models"
	"clinical-records-backend/internal/storage"
	"clinical-records-backend/pkg/apperr"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	recentRecords   = 5
)

type RecordService struct {
	records  RecordStore
	patients PatientStore
	store    storage.ObjectStore
	audit    AuditTrail
}

func NewRecordService(records RecordStore, patients PatientStore, store storage.ObjectStore, audit AuditTrail) *RecordService {
	return &RecordService{
		records:  records,
		patients: patients,
		store:    store,
		audit:    audit,
	}
}

// AddVisitInput is the input contract for one clinical encounter
type AddVisitInput struct {
	VisitType         string
	VisitDate         time.Time
	ChiefComplaint    string
	VitalSigns        models.VitalSigns
	DischargeSummary  *models.DischargeSummary
	ProceduralDetails *models.ProceduralDetails
}

// AttachmentUpload is one diagnostic file handed in with a new record
type AttachmentUpload struct {
	TestName    string
	FileName    string
	ContentType string
	Data        []byte
}

// RecordPage is one page of visit records plus pagination metadata
type RecordPage struct {
	Records     []models.VisitRecord `json:"records"`
	TotalPages  int                  `json:"totalPages"`
	CurrentPage int                  `json:"currentPage"`
}

// BPPoint is one blood-pressure sample for charting, systolic over time
type BPPoint struct {
	X time.Time `json:"x"`
	Y float64   `json:"y"`
}

// ListVisitRecords returns one page of a patient's visit records, most
// recent visit first. A page beyond the last yields an empty list, not an
// error.
func (s *RecordService) ListVisitRecords(patientID string, page, pageSize int) (*RecordPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	total, err := s.records.CountByPatient(patientID)
	if err != nil {
		return nil, err
	}

	records, err := s.records.ListByPatient(patientID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.VisitRecord{}
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &RecordPage{
		Records:     records,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

// GetRecord returns one visit record, scoped to its patient
func (s *RecordService) GetRecord(patientID string, visitID uint) (*models.VisitRecord, error) {
	return s.records.FindByPatientAndID(patientID, visitID)
}

// RecentRecords returns the latest visit records for a summary view
func (s *RecordService) RecentRecords(patientID string) ([]models.VisitRecord, error) {
	records, err := s.records.ListRecent(patientID, recentRecords)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.VisitRecord{}
	}
	return records, nil
}

// AddVisitRecord validates and persists one clinical encounter. Every
// attachment is uploaded before the record is written; if any upload fails
// the whole operation aborts and no record references a missing object.
func (s *RecordService) AddVisitRecord(ctx context.Context, patientID string, input AddVisitInput, attachments []AttachmentUpload) (*models.VisitRecord, error) {
	if !models.ValidVisitType(input.VisitType) {
		return nil, apperr.Validation("visitType must be Outpatient, Inpatient or Emergency")
	}
	if input.VisitDate.IsZero() {
		return nil, apperr.Validation("visitDate is required")
	}

	// A visit record must reference an existing patient; orphans are a
	// data-integrity error.
	if _, err := s.patients.FindPersonalByPatientID(patientID); err != nil {
		return nil, err
	}

	tests := make([]models.DiagnosticTest, 0, len(attachments))
	for _, att := range attachments {
		key := storage.ObjectKey(patientID, att.FileName)
		if err := s.store.Put(ctx, key, att.Data, att.ContentType); err != nil {
			return nil, apperr.Storage("failed to store attachment", err)
		}
		// The record stores the key relative to the patient prefix,
		// matching what the file-resolve endpoint receives.
		tests = append(tests, models.DiagnosticTest{
			TestName:      att.TestName,
			ReportFileKey: strings.TrimPrefix(key, patientID+"/"),
		})
	}

	record := &models.VisitRecord{
		PatientID:      patientID,
		VisitDate:      input.VisitDate,
		VisitType:      input.VisitType,
		ChiefComplaint: input.ChiefComplaint,
		VitalSigns:     mustJSON(input.VitalSigns),
	}
	if len(tests) > 0 {
		record.DiagnosticTests = mustJSON(tests)
	}
	if input.DischargeSummary != nil {
		record.DischargeSummary = mustJSON(input.DischargeSummary)
	}
	if input.ProceduralDetails != nil {
		record.ProceduralDetails = mustJSON(input.ProceduralDetails)
	}

	if err := s.records.Create(record); err != nil {
		return nil, err
	}

	_ = s.audit.CreateAuditLog(nil, "record_create",
		fmt.Sprintf("visit record %d added for patient %s", record.ID, patientID))

	return record, nil
}

// ResolveFileURL mints a fresh short-lived URL for a stored attachment.
// Resolution is a pure read; the record is never touched.
func (s *RecordService) ResolveFileURL(ctx context.Context, patientID, key string) (string, error) {
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "..") {
		return "", apperr.Validation("invalid file key")
	}
	url, err := s.store.SignedURL(ctx, patientID+"/"+key)
	if err != nil {
		return "", apperr.Storage("failed to resolve attachment", err)
	}
	return url, nil
}

// BloodPressureSeries extracts systolic readings over time for charting
func (s *RecordService) BloodPressureSeries(patientID string) ([]BPPoint, error) {
	records, err := s.records.ListChronological(patientID)
	if err != nil {
		return nil, err
	}

	points := make([]BPPoint, 0, len(records))
	for _, record := range records {
		var vitals models.VitalSigns
		if err := json.Unmarshal(record.VitalSigns, &vitals); err != nil {
			continue
		}
		systolic, ok := parseSystolic(vitals.BloodPressure)
		if !ok {
			continue
		}
		points = append(points, BPPoint{X: record.VisitDate, Y: systolic})
	}
	return points, nil
}

// parseSystolic reads the systolic component out of a "120/80" reading
func parseSystolic(bp string) (float64, bool) {
	value := bp
	if idx := strings.IndexByte(bp, '/'); idx >= 0 {
		value = bp[:idx]
	}
	systolic, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, false
	}
	return systolic, true
}
