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
	"github.com/medsuite/pharmacare-api/pkg/apperror"
	"github.com/medsuite/pharmacare-api/pkg/pagination"
)

// BillHandler handles bill-related HTTP requests
type BillHandler struct {
	settlementService *service.SettlementService
	billService       *service.BillService
	defaultTaxPercent float64
}

// NewBillHandler creates a new bill handler
func NewBillHandler(settlementService *service.SettlementService, billService *service.BillService, defaultTaxPercent float64) *BillHandler {
	return &BillHandler{
		settlementService: settlementService,
		billService:       billService,
		defaultTaxPercent: defaultTaxPercent,
	}
}

// Settle runs the settlement workflow for a cart. Registered behind the
// idempotency middleware so a retried request replays the original response.
func (h *BillHandler) Settle(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.SettleBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	prescriptionID, err := uuid.Parse(req.PrescriptionID)
	if err != nil {
		response.BadRequest(c, "Invalid prescription id")
		return
	}

	input := &service.SettleInput{
		UserID:         *userID,
		PrescriptionID: prescriptionID,
		PatientName:    req.PatientName,
		PatientPhone:   req.PatientPhone,
		TaxPercent:     req.TaxPercentOrDefault(h.defaultTaxPercent),
		DiscountAmount: req.DiscountAmount,
		PaymentMethod:  enum.PaymentMethod(req.PaymentMethod),
		Items:          make([]service.SettlementItemInput, len(req.Items)),
	}
	for i, item := range req.Items {
		itemID, err := uuid.Parse(item.InventoryItemID)
		if err != nil {
			response.BadRequest(c, "Invalid inventory item id")
			return
		}
		input.Items[i] = service.SettlementItemInput{
			InventoryItemID: itemID,
			Name:            item.Name,
			UnitPrice:       item.UnitPrice,
			Quantity:        item.Quantity,
		}
	}

	result, err := h.settlementService.Settle(c.Request.Context(), input)
	if err != nil {
		// The terminal result carries compensation details the plain error
		// envelope would lose, so failed settlements return it as data.
		if result != nil {
			c.JSON(apperror.GetAppError(err).Code, response.APIResponse{
				Success: false,
				Message: result.Message,
				Data:    result,
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.Created(c, "Bill settled successfully", result)
}

// Get retrieves a bill with its items
func (h *BillHandler) Get(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid bill id")
		return
	}

	bill, err := h.billService.GetBill(c.Request.Context(), *userID, billID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved successfully", bill)
}

// GetByNumber retrieves a bill by the number printed on the receipt
func (h *BillHandler) GetByNumber(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	billNumber := c.Param("number")
	if billNumber == "" {
		response.BadRequest(c, "Bill number is required")
		return
	}

	bill, err := h.billService.GetBillByNumber(c.Request.Context(), *userID, billNumber)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved successfully", bill)
}

// List lists bills with filtering
func (h *BillHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.BillFilterParams{
		Pagination: &pagination.PaginationParams{Page: page, PerPage: perPage},
		Search:     c.Query("search"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		if statusInt, err := strconv.Atoi(statusStr); err == nil {
			status := enum.BillStatus(statusInt)
			params.Status = &status
		}
	}

	if patientIDStr := c.Query("patient_id"); patientIDStr != "" {
		if patientID, err := uuid.Parse(patientIDStr); err == nil {
			params.PatientID = &patientID
		}
	}

	if startDateStr := c.Query("start_date"); startDateStr != "" {
		if startDate, err := time.Parse("2006-01-02", startDateStr); err == nil {
			params.StartDate = &startDate
		}
	}

	if endDateStr := c.Query("end_date"); endDateStr != "" {
		if endDate, err := time.Parse("2006-01-02", endDateStr); err == nil {
			params.EndDate = &endDate
		}
	}

	result, err := h.billService.ListBills(c.Request.Context(), *userID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Bills retrieved successfully", result)
}

// Void voids a bill and restores its stock
func (h *BillHandler) Void(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid bill id")
		return
	}

	if err := h.billService.VoidBill(c.Request.Context(), *userID, billID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill voided successfully", nil)
}
