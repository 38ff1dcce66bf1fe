package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"clinical-records-backend/internal/models"
	"clinical-records-backend/internal/service"
	"clinical-records-backend/internal/storage"
	"clinical-records-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Upload limits for add-record: up to 3 files per diagnostic category,
// 10 MiB per file, mirroring the front-end contract.
const (
	maxFilesPerCategory = 3
	maxAttachmentBytes  = 10 << 20
)

// attachmentCategories maps multipart field names to the test name stored
// on the diagnostic entry.
var attachmentCategories = []struct {
	field    string
	testName string
}{
	{"bloodTests", "Blood"},
	{"urineTests", "Urine"},
	{"otherTests", "Other"},
}

type RecordHandler struct {
	recordService *service.RecordService
	localStore    *storage.LocalStore // nil unless the local backend is active
}

func NewRecordHandler(recordService *service.RecordService, localStore *storage.LocalStore) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		localStore:    localStore,
	}
}

// ListRecords returns one page of visit records for a patient
func (h *RecordHandler) ListRecords(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.recordService.ListVisitRecords(c.Param("patientId"), page, limit)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessResponse(c, result)
}

// GetRecord returns one visit record by id, scoped to the patient
func (h *RecordHandler) GetRecord(c *gin.Context) {
	visitID, err := strconv.ParseUint(c.Param("visitId"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid visit id")
		return
	}

	record, err := h.recordService.GetRecord(c.Param("patientId"), uint(visitID))
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessResponse(c, record)
}

// RecentRecords returns the latest visits for a patient summary view
func (h *RecordHandler) RecentRecords(c *gin.Context) {
	records, err := h.recordService.RecentRecords(c.Param("patientId"))
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessResponse(c, records)
}

// BloodPressure returns the systolic time series for charting
func (h *RecordHandler) BloodPressure(c *gin.Context) {
	points, err := h.recordService.BloodPressureSeries(c.Param("patientId"))
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessResponse(c, points)
}

// GetFileURL resolves a stored attachment key to a fresh signed URL
func (h *RecordHandler) GetFileURL(c *gin.Context) {
	url, err := h.recordService.ResolveFileURL(c.Request.Context(), c.Param("patientId"), c.Param("key"))
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"url": url})
}

// RawFile serves attachment bytes for locally minted signed URLs. With a
// cloud backend the signed URL points at the bucket and this route is
// never registered.
func (h *RecordHandler) RawFile(c *gin.Context) {
	if h.localStore == nil {
		utils.ErrorResponse(c, http.StatusNotFound, "not found")
		return
	}

	key := c.Param("objectKey")
	if len(key) > 0 && key[0] == '/' {
		key = key[1:]
	}

	path, err := h.localStore.Open(key, c.Query("exp"), c.Query("sig"))
	if err != nil {
		// Expired, tampered and missing all read the same to the client.
		utils.ErrorResponse(c, http.StatusForbidden, "access denied")
		return
	}
	c.File(path)
}

// AddRecord creates a visit record from a multipart form: JSON-ish scalar
// fields plus up to three files per diagnostic category. All uploads land
// in object storage before the record is written.
func (h *RecordHandler) AddRecord(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid multipart form")
		return
	}

	input, err := parseVisitInput(c)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	attachments, err := collectAttachments(form)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.recordService.AddVisitRecord(c.Request.Context(), c.Param("patientId"), input, attachments)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	utils.CreatedResponse(c, record)
}

func parseVisitInput(c *gin.Context) (service.AddVisitInput, error) {
	input := service.AddVisitInput{
		VisitType:      c.PostForm("visitType"),
		ChiefComplaint: c.PostForm("chiefComplaint"),
	}

	visitDate, err := parseVisitDate(c.PostForm("visitDate"))
	if err != nil {
		return input, err
	}
	input.VisitDate = visitDate

	if raw := c.PostForm("vitalSigns"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.VitalSigns); err != nil {
			return input, errInvalidField("vitalSigns")
		}
	}
	if raw := c.PostForm("dischargeSummary"); raw != "" {
		var summary models.DischargeSummary
		if err := json.Unmarshal([]byte(raw), &summary); err != nil {
			return input, errInvalidField("dischargeSummary")
		}
		input.DischargeSummary = &summary
	}
	if raw := c.PostForm("procedures"); raw != "" {
		var procedures models.ProceduralDetails
		if err := json.Unmarshal([]byte(raw), &procedures); err != nil {
			return input, errInvalidField("procedures")
		}
		input.ProceduralDetails = &procedures
	}

	return input, nil
}

func parseVisitDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errInvalidField("visitDate")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(dateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, errInvalidField("visitDate")
}

func collectAttachments(form *multipart.Form) ([]service.AttachmentUpload, error) {
	var attachments []service.AttachmentUpload
	for _, category := range attachmentCategories {
		files := form.File[category.field]
		if len(files) > maxFilesPerCategory {
			return nil, errTooManyFiles(category.field)
		}
		for _, fh := range files {
			if fh.Size > maxAttachmentBytes {
				return nil, errFileTooLarge(fh.Filename)
			}
			data, err := readMultipartFile(fh)
			if err != nil {
				return nil, err
			}
			attachments = append(attachments, service.AttachmentUpload{
				TestName:    category.testName,
				FileName:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}
	return attachments, nil
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errInvalidField(fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxAttachmentBytes+1))
	if err != nil {
		return nil, errInvalidField(fh.Filename)
	}
	if len(data) > maxAttachmentBytes {
		return nil, errFileTooLarge(fh.Filename)
	}
	return data, nil
}

type formError string

func (e formError) Error() string { return string(e) }

func errInvalidField(name string) error {
	return formError("invalid or missing field: " + name)
}

func errTooManyFiles(field string) error {
	return formError("at most 3 files allowed for " + field)
}

func errFileTooLarge(name string) error {
	return formError("file too large: " + name)
}
