package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"clinical-records-backend/internal/models"
	"clinical-records-backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func existingPatientStore() *MockPatientStore {
	return &MockPatientStore{
		FindPersonalByPatientIDFunc: func(patientID string) (*models.PatientPersonal, error) {
			return &models.PatientPersonal{PatientID: patientID}, nil
		},
	}
}

func validVisitInput() AddVisitInput {
	return AddVisitInput{
		VisitType:      models.VisitTypeOutpatient,
		VisitDate:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		ChiefComplaint: "persistent cough",
		VitalSigns:     models.VitalSigns{BloodPressure: "120/80", HeartRate: 72, Temperature: 36.8},
	}
}

func TestListVisitRecordsPagination(t *testing.T) {
	tests := []struct {
		name           string
		page, pageSize int
		total          int64
		wantOffset     int
		wantLimit      int
		wantPages      int
		wantPage       int
	}{
		{"first page defaults", 0, 0, 25, 0, 10, 3, 1},
		{"second page", 2, 10, 25, 10, 10, 3, 2},
		{"exact multiple", 2, 5, 10, 5, 5, 2, 2},
		{"oversized page size clamps", 1, 1000, 250, 0, 100, 3, 1},
		{"no records", 1, 10, 0, 0, 10, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotOffset, gotLimit int
			records := &MockRecordStore{
				CountByPatientFunc: func(patientID string) (int64, error) { return tt.total, nil },
				ListByPatientFunc: func(patientID string, offset, limit int) ([]models.VisitRecord, error) {
					gotOffset, gotLimit = offset, limit
					return []models.VisitRecord{}, nil
				},
			}
			svc := NewRecordService(records, existingPatientStore(), &MockObjectStore{}, nopAudit{})

			page, err := svc.ListVisitRecords("1234567890", tt.page, tt.pageSize)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOffset, gotOffset)
			assert.Equal(t, tt.wantLimit, gotLimit)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.wantPage, page.CurrentPage)
		})
	}
}

func TestListVisitRecordsBeyondLastPageIsEmpty(t *testing.T) {
	records := &MockRecordStore{
		CountByPatientFunc: func(patientID string) (int64, error) { return 12, nil },
		ListByPatientFunc: func(patientID string, offset, limit int) ([]models.VisitRecord, error) {
			// The store returns nil past the end, as gorm does.
			return nil, nil
		},
	}
	svc := NewRecordService(records, existingPatientStore(), &MockObjectStore{}, nopAudit{})

	page, err := svc.ListVisitRecords("1234567890", 7, 10)
	require.NoError(t, err)
	require.NotNil(t, page.Records)
	assert.Empty(t, page.Records)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 7, page.CurrentPage)
}

func TestAddVisitRecordUploadsBeforePersisting(t *testing.T) {
	var uploadedKeys []string
	store := &MockObjectStore{
		PutFunc: func(ctx context.Context, key string, data []byte, contentType string) error {
			uploadedKeys = append(uploadedKeys, key)
			return nil
		},
	}
	var created *models.VisitRecord
	records := &MockRecordStore{
		CreateFunc: func(record *models.VisitRecord) error {
			// Every attachment must already be uploaded when the record is
			// written.
			assert.Len(t, uploadedKeys, 2)
			created = record
			return nil
		},
	}
	svc := NewRecordService(records, existingPatientStore(), store, nopAudit{})

	attachments := []AttachmentUpload{
		{TestName: "Blood", FileName: "cbc.pdf", ContentType: "application/pdf", Data: []byte("pdf")},
		{TestName: "Urine", FileName: "urinalysis.pdf", ContentType: "application/pdf", Data: []byte("pdf")},
	}
	record, err := svc.AddVisitRecord(context.Background(), "1234567890", validVisitInput(), attachments)
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "1234567890", record.PatientID)
	assert.Equal(t, models.VisitTypeOutpatient, record.VisitType)
	assert.Contains(t, string(record.VitalSigns), "120/80")

	// Objects live under the patient's prefix; the record keeps the key
	// relative to it.
	for _, key := range uploadedKeys {
		assert.True(t, strings.HasPrefix(key, "1234567890/"), "key %q not under patient prefix", key)
	}
	diagnostics := string(record.DiagnosticTests)
	assert.Contains(t, diagnostics, "cbc.pdf")
	assert.NotContains(t, diagnostics, "1234567890/")
}

func TestAddVisitRecordAbortsWhenUploadFails(t *testing.T) {
	store := &MockObjectStore{
		PutFunc: func(ctx context.Context, key string, data []byte, contentType string) error {
			return errors.New("bucket unavailable")
		},
	}
	createCalled := false
	records := &MockRecordStore{
		CreateFunc: func(record *models.VisitRecord) error {
			createCalled = true
			return nil
		},
	}
	svc := NewRecordService(records, existingPatientStore(), store, nopAudit{})

	attachments := []AttachmentUpload{{TestName: "Blood", FileName: "cbc.pdf", Data: []byte("pdf")}}
	_, err := svc.AddVisitRecord(context.Background(), "1234567890", validVisitInput(), attachments)

	assert.True(t, apperr.IsKind(err, apperr.KindStorage))
	assert.False(t, createCalled, "no record may reference a missing object")
}

func TestAddVisitRecordRejectsUnknownPatient(t *testing.T) {
	patients := &MockPatientStore{
		FindPersonalByPatientIDFunc: func(patientID string) (*models.PatientPersonal, error) {
			return nil, apperr.NotFound("patient not found")
		},
	}
	putCalled := false
	store := &MockObjectStore{
		PutFunc: func(ctx context.Context, key string, data []byte, contentType string) error {
			putCalled = true
			return nil
		},
	}
	svc := NewRecordService(&MockRecordStore{}, patients, store, nopAudit{})

	attachments := []AttachmentUpload{{TestName: "Blood", FileName: "cbc.pdf", Data: []byte("pdf")}}
	_, err := svc.AddVisitRecord(context.Background(), "0000000000", validVisitInput(), attachments)

	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.False(t, putCalled, "nothing is uploaded for an unknown patient")
}

func TestAddVisitRecordValidatesInput(t *testing.T) {
	svc := NewRecordService(&MockRecordStore{}, existingPatientStore(), &MockObjectStore{}, nopAudit{})

	input := validVisitInput()
	input.VisitType = "Telepathy"
	_, err := svc.AddVisitRecord(context.Background(), "1234567890", input, nil)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	input = validVisitInput()
	input.VisitDate = time.Time{}
	_, err = svc.AddVisitRecord(context.Background(), "1234567890", input, nil)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestResolveFileURL(t *testing.T) {
	store := &MockObjectStore{
		SignedURLFunc: func(ctx context.Context, key string) (string, error) {
			return "https://example.com/" + key + "?sig=abc", nil
		},
	}
	svc := NewRecordService(&MockRecordStore{}, existingPatientStore(), store, nopAudit{})

	url, err := svc.ResolveFileURL(context.Background(), "1234567890", "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/1234567890/report.pdf?sig=abc", url)
}

func TestResolveFileURLRejectsTraversal(t *testing.T) {
	svc := NewRecordService(&MockRecordStore{}, existingPatientStore(), &MockObjectStore{}, nopAudit{})

	for _, key := range []string{"", "a/b", "../secret", "..", "x/../y"} {
		_, err := svc.ResolveFileURL(context.Background(), "1234567890", key)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation), "key %q must be rejected", key)
	}
}

func TestBloodPressureSeries(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC) }
	records := &MockRecordStore{
		ListChronologicalFunc: func(patientID string) ([]models.VisitRecord, error) {
			return []models.VisitRecord{
				{VisitDate: day(1), VitalSigns: mustJSON(models.VitalSigns{BloodPressure: "120/80"})},
				{VisitDate: day(2), VitalSigns: mustJSON(models.VitalSigns{BloodPressure: "not a reading"})},
				{VisitDate: day(3), VitalSigns: mustJSON(models.VitalSigns{})},
				{VisitDate: day(4), VitalSigns: mustJSON(models.VitalSigns{BloodPressure: "135/90"})},
			}, nil
		},
	}
	svc := NewRecordService(records, existingPatientStore(), &MockObjectStore{}, nopAudit{})

	points, err := svc.BloodPressureSeries("1234567890")
	require.NoError(t, err)
	// Unreadable vitals are skipped, not zero-filled.
	require.Len(t, points, 2)
	assert.Equal(t, day(1), points[0].X)
	assert.Equal(t, 120.0, points[0].Y)
	assert.Equal(t, day(4), points[1].X)
	assert.Equal(t, 135.0, points[1].Y)
}

func TestRecentRecordsNeverReturnsNil(t *testing.T) {
	records := &MockRecordStore{
		ListRecentFunc: func(patientID string, n int) ([]models.VisitRecord, error) {
			assert.Equal(t, 5, n)
			return nil, nil
		},
	}
	svc := NewRecordService(records, existingPatientStore(), &MockObjectStore{}, nopAudit{})

	recent, err := svc.RecentRecords("1234567890")
	require.NoError(t, err)
	require.NotNil(t, recent)
	assert.Empty(t, recent)
}
