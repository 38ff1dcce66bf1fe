package handler

import (
	"net/http"
	"time"

	"clinical-records-backend/internal/models"
	"clinical-records-backend/internal/service"
	"clinical-records-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ProvisionHandler covers the authority-only /users routes: creating and
// updating patient and hospital profiles.
type ProvisionHandler struct {
	patientService  *service.PatientService
	hospitalService *service.HospitalService
}

func NewProvisionHandler(patientService *service.PatientService, hospitalService *service.HospitalService) *ProvisionHandler {
	return &ProvisionHandler{
		patientService:  patientService,
		hospitalService: hospitalService,
	}
}

// dateOnly is the wire format for dates of birth
const dateOnly = "2006-01-02"

type AddressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

func (a *AddressRequest) toModel() *models.Address {
	if a == nil {
		return nil
	}
	return &models.Address{
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		ZipCode: a.ZipCode,
	}
}

type InsuranceRequest struct {
	Provider     string  `json:"provider"`
	Coverage     string  `json:"coverage"`
	PolicyNumber string  `json:"policyNumber"`
	CoPayAmount  float64 `json:"coPayAmount"`
}

type CreatePatientRequest struct {
	FullName       string          `json:"fullName" binding:"required"`
	DateOfBirth    string          `json:"dateOfBirth" binding:"required"`
	Gender         string          `json:"gender" binding:"omitempty,oneof=Male Female Other"`
	Height         float64         `json:"height"`
	Weight         float64         `json:"weight"`
	PhoneNumber    string          `json:"phoneNumber" binding:"required"`
	Email          string          `json:"email" binding:"omitempty,email"`
	EmergencyPhone string          `json:"emergency_phone"`
	Address        *AddressRequest `json:"address"`

	BloodType            string                      `json:"bloodType" binding:"omitempty,oneof=A+ A- B+ B- O+ O- AB+ AB-"`
	Allergies            []models.Allergy            `json:"allergies"`
	ChronicConditions    []models.ChronicCondition   `json:"chronicConditions"`
	FamilyMedicalHistory []models.FamilyHistoryEntry `json:"familyMedicalHistory"`
	ImmunizationRecords  []models.Immunization       `json:"immunizationRecords"`
	Insurance            *InsuranceRequest           `json:"healthInsuranceDetails"`
}

// CreatePatient registers a new patient (authority only). The generated
// patient id comes back in the response; the one-time password only ever
// travels by mail.
func (h *ProvisionHandler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	dob, err := time.Parse(dateOnly, req.DateOfBirth)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "dateOfBirth must be formatted as YYYY-MM-DD")
		return
	}

	input := service.CreatePatientInput{
		FullName:             req.FullName,
		DateOfBirth:          dob,
		Gender:               req.Gender,
		Height:               req.Height,
		Weight:               req.Weight,
		PhoneNumber:          req.PhoneNumber,
		Email:                req.Email,
		EmergencyPhone:       req.EmergencyPhone,
		Address:              req.Address.toModel(),
		BloodType:            req.BloodType,
		Allergies:            req.Allergies,
		ChronicConditions:    req.ChronicConditions,
		FamilyMedicalHistory: req.FamilyMedicalHistory,
		ImmunizationRecords:  req.ImmunizationRecords,
	}
	if req.Insurance != nil {
		input.PolicyNumber = req.Insurance.PolicyNumber
		input.Insurance = &models.InsuranceDetails{
			Provider:    req.Insurance.Provider,
			Coverage:    req.Insurance.Coverage,
			CoPayAmount: req.Insurance.CoPayAmount,
		}
	}

	personal, err := h.patientService.CreatePatient(input)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	utils.CreatedResponse(c, personal)
}

type UpdatePatientRequest struct {
	FullName       *string         `json:"fullName"`
	Gender         *string         `json:"gender" binding:"omitempty,oneof=Male Female Other"`
	Height         *float64        `json:"height"`
	Weight         *float64        `json:"weight"`
	PhoneNumber    *string         `json:"phoneNumber"`
	Email          *string         `json:"email" binding:"omitempty,email"`
	EmergencyPhone *string         `json:"emergency_phone"`
	Address        *AddressRequest `json:"address"`
}

// UpdatePatient applies an allow-listed partial update to the personal
// half of a patient profile (authority only). The patient id is not in the
// request model at all, so it cannot be overwritten.
func (h *ProvisionHandler) UpdatePatient(c *gin.Context) {
	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	personal, err := h.patientService.UpdatePersonal(c.Param("patientId"), service.UpdatePersonalInput{
		FullName:       req.FullName,
		Gender:         req.Gender,
		Height:         req.Height,
		Weight:         req.Weight,
		PhoneNumber:    req.PhoneNumber,
		Email:          req.Email,
		EmergencyPhone: req.EmergencyPhone,
		Address:        req.Address.toModel(),
	})
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	utils.SuccessResponse(c, personal)
}

type CreateHospitalRequest struct {
	Name        string          `json:"name" binding:"required"`
	Address     *AddressRequest `json:"address"`
	PhoneNumber string          `json:"phoneNumber" binding:"required"`
	Email       string          `json:"email" binding:"required,email"`
}

// CreateHospital provisions a new hospital (authority only)
func (h *ProvisionHandler) CreateHospital(c *gin.Context) {
	var req CreateHospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	hospital, err := h.hospitalService.CreateHospital(service.CreateHospitalInput{
		Name:        req.Name,
		Address:     req.Address.toModel(),
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
	})
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	utils.CreatedResponse(c, hospital)
}

// GetHospital returns a hospital profile by its business key (authority only)
func (h *ProvisionHandler) GetHospital(c *gin.Context) {
	hospital, err := h.hospitalService.GetHospital(c.Param("hospitalId"))
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessResponse(c, hospital)
}

type UpdateHospitalRequest struct {
	Name        *string         `json:"name"`
	Address     *AddressRequest `json:"address"`
	PhoneNumber *string         `json:"phoneNumber"`
	Email       *string         `json:"email" binding:"omitempty,email"`
}

// UpdateHospital applies an allow-listed partial update (authority only)
func (h *ProvisionHandler) UpdateHospital(c *gin.Context) {
	var req UpdateHospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	hospital, err := h.hospitalService.UpdateHospital(c.Param("hospitalId"), service.UpdateHospitalInput{
		Name:        req.Name,
		Address:     req.Address.toModel(),
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
	})
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	utils.SuccessResponse(c, hospital)
}
