package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medsuite/pharmacare-api/internal/application/service"
	"github.com/medsuite/pharmacare-api/internal/domain/enum"
	"github.com/medsuite/pharmacare-api/internal/domain/repository"
	"github.com/medsuite/pharmacare-api/internal/presentation/http/dto/request"
	"github.com/medsuite/pharmacare-api/internal/presentation/http/dto/response"
	"github.com/medsuite/pharmacare-api/pkg/pagination"
)

// PrescriptionHandler handles prescription-related HTTP requests
type PrescriptionHandler struct {
	prescriptionService *service.PrescriptionService
}

// NewPrescriptionHandler creates a new prescription handler
func NewPrescriptionHandler(prescriptionService *service.PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{prescriptionService: prescriptionService}
}

// Create registers a new prescription
func (h *PrescriptionHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreatePrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	input := &service.CreatePrescriptionInput{
		DoctorName: req.DoctorName,
		Notes:      req.Notes,
	}

	if req.PatientID != nil {
		patientID, err := uuid.Parse(*req.PatientID)
		if err != nil {
			response.BadRequest(c, "Invalid patient id")
			return
		}
		input.PatientID = &patientID
	}

	if req.IssuedAt != "" {
		issuedAt, err := time.Parse("2006-01-02", req.IssuedAt)
		if err != nil {
			response.BadRequest(c, "issued_at must be YYYY-MM-DD")
			return
		}
		input.IssuedAt = issuedAt
	}

	prescription, err := h.prescriptionService.CreatePrescription(c.Request.Context(), *userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Prescription created successfully", prescription)
}

// Get retrieves a prescription
func (h *PrescriptionHandler) Get(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	prescriptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid prescription id")
		return
	}

	prescription, err := h.prescriptionService.GetPrescription(c.Request.Context(), *userID, prescriptionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Prescription retrieved successfully", prescription)
}

// Void marks a prescription as voided
func (h *PrescriptionHandler) Void(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	prescriptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid prescription id")
		return
	}

	if err := h.prescriptionService.VoidPrescription(c.Request.Context(), *userID, prescriptionID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Prescription voided", nil)
}

// List lists prescriptions with filtering
func (h *PrescriptionHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.PrescriptionFilterParams{
		Pagination: &pagination.PaginationParams{Page: page, PerPage: perPage},
		Search:     c.Query("search"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		if statusInt, err := strconv.Atoi(statusStr); err == nil {
			status := enum.PrescriptionStatus(statusInt)
			params.Status = &status
		}
	}

	if patientIDStr := c.Query("patient_id"); patientIDStr != "" {
		if patientID, err := uuid.Parse(patientIDStr); err == nil {
			params.PatientID = &patientID
		}
	}

	result, err := h.prescriptionService.ListPrescriptions(c.Request.Context(), *userID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Prescriptions retrieved successfully", result)
}
