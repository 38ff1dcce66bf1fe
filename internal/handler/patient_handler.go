package handler

import (
	"net/http"

	"clinical-records-backend/internal/models"
	"clinical-records-backend/internal/service"
	"clinical-records-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	patientService *service.PatientService
}

func NewPatientHandler(patientService *service.PatientService) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
	}
}

// GetPersonalData returns the personal half of a patient profile
func (h *PatientHandler) GetPersonalData(c *gin.Context) {
	personal, err := h.patientService.GetPersonalData(c.Param("patientId"))
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessResponse(c, personal)
}

// GetMedicalData returns the static clinical half of a patient profile
func (h *PatientHandler) GetMedicalData(c *gin.Context) {
	clinical, err := h.patientService.GetMedicalData(c.Param("patientId"))
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessResponse(c, clinical)
}

type UpdateMedicalDataRequest struct {
	BloodType            *string                     `json:"bloodType" binding:"omitempty,oneof=A+ A- B+ B- O+ O- AB+ AB-"`
	Allergies            []models.Allergy            `json:"allergies"`
	ChronicConditions    []models.ChronicCondition   `json:"chronicConditions"`
	FamilyMedicalHistory []models.FamilyHistoryEntry `json:"familyMedicalHistory"`
	ImmunizationRecords  []models.Immunization       `json:"immunizationRecords"`
	Insurance            *InsuranceRequest           `json:"healthInsuranceDetails"`
}

// UpdateMedicalData applies an allow-listed partial update to the clinical
// half of a patient profile. Hospital and authority only; the patient id is
// not part of the request model and cannot be overwritten.
func (h *PatientHandler) UpdateMedicalData(c *gin.Context) {
	var req UpdateMedicalDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	input := service.UpdateClinicalInput{
		BloodType:            req.BloodType,
		Allergies:            req.Allergies,
		ChronicConditions:    req.ChronicConditions,
		FamilyMedicalHistory: req.FamilyMedicalHistory,
		ImmunizationRecords:  req.ImmunizationRecords,
	}
	if req.Insurance != nil {
		input.PolicyNumber = &req.Insurance.PolicyNumber
		input.Insurance = &models.InsuranceDetails{
			Provider:    req.Insurance.Provider,
			Coverage:    req.Insurance.Coverage,
			CoPayAmount: req.Insurance.CoPayAmount,
		}
	}

	clinical, err := h.patientService.UpdateClinical(c.Param("patientId"), input)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessResponse(c, clinical)
}

// GetSummary returns the composed view joining both profile halves
func (h *PatientHandler) GetSummary(c *gin.Context) {
	summary, err := h.patientService.GetSummary(c.Param("patientId"))
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessResponse(c, summary)
}
