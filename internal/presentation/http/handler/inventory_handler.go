package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medsuite/pharmacare-api/internal/application/service"
	"github.com/medsuite/pharmacare-api/internal/domain/repository"
	"github.com/medsuite/pharmacare-api/internal/presentation/http/dto/request"
	"github.com/medsuite/pharmacare-api/internal/presentation/http/dto/response"
	"github.com/medsuite/pharmacare-api/pkg/pagination"
)

// InventoryHandler handles inventory-related HTTP requests
type InventoryHandler struct {
	inventoryService *service.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) bindItemInput(c *gin.Context) (*service.InventoryItemInput, bool) {
	var req request.InventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return nil, false
	}

	input := &service.InventoryItemInput{
		Name:          req.Name,
		BatchNumber:   req.BatchNumber,
		Quantity:      req.Quantity,
		QuantityAlert: req.QuantityAlert,
		UnitCost:      req.UnitCost,
		SellingPrice:  req.SellingPrice,
	}

	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			response.BadRequest(c, "Invalid category id")
			return nil, false
		}
		input.CategoryID = &categoryID
	}

	if req.ExpiresAt != nil && *req.ExpiresAt != "" {
		expiresAt, err := time.Parse("2006-01-02", *req.ExpiresAt)
		if err != nil {
			response.BadRequest(c, "expires_at must be YYYY-MM-DD")
			return nil, false
		}
		input.ExpiresAt = &expiresAt
	}

	return input, true
}

// Create handles inventory item creation
func (h *InventoryHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	input, ok := h.bindItemInput(c)
	if !ok {
		return
	}

	item, err := h.inventoryService.CreateItem(c.Request.Context(), *userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Inventory item created successfully", item)
}

// Get retrieves an inventory item
func (h *InventoryHandler) Get(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid item id")
		return
	}

	item, err := h.inventoryService.GetItem(c.Request.Context(), *userID, itemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Inventory item retrieved successfully", item)
}

// Update handles inventory item updates
func (h *InventoryHandler) Update(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid item id")
		return
	}

	input, ok := h.bindItemInput(c)
	if !ok {
		return
	}

	item, err := h.inventoryService.UpdateItem(c.Request.Context(), *userID, itemID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Inventory item updated successfully", item)
}

// Delete handles inventory item deletion
func (h *InventoryHandler) Delete(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid item id")
		return
	}

	if err := h.inventoryService.DeleteItem(c.Request.Context(), *userID, itemID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// List lists inventory items with filtering
func (h *InventoryHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.InventoryFilterParams{
		Pagination: &pagination.PaginationParams{Page: page, PerPage: perPage},
		Search:     c.Query("search"),
		LowStock:   c.Query("low_stock") == "true",
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}

	if categoryIDStr := c.Query("category_id"); categoryIDStr != "" {
		if categoryID, err := uuid.Parse(categoryIDStr); err == nil {
			params.CategoryID = &categoryID
		}
	}

	result, err := h.inventoryService.ListItems(c.Request.Context(), *userID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Inventory retrieved successfully", result)
}

// LowStock returns items at or below their alert threshold
func (h *InventoryHandler) LowStock(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	items, err := h.inventoryService.GetLowStock(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Low stock items retrieved successfully", items)
}

// CreateAdjustment queues a manual stock correction
func (h *InventoryHandler) CreateAdjustment(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	itemID, err := uuid.Parse(req.InventoryItemID)
	if err != nil {
		response.BadRequest(c, "Invalid inventory item id")
		return
	}

	adjustment, err := h.inventoryService.CreateAdjustment(c.Request.Context(), *userID, &service.CreateAdjustmentInput{
		InventoryItemID: itemID,
		Delta:           req.Delta,
		Reason:          req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Stock adjustment created successfully", adjustment)
}

// ResolveAdjustment applies or dismisses a pending adjustment
func (h *InventoryHandler) ResolveAdjustment(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	adjustmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid adjustment id")
		return
	}

	var req request.ResolveAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.inventoryService.ResolveAdjustment(c.Request.Context(), *userID, adjustmentID, req.Apply); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stock adjustment resolved", nil)
}

// ListAdjustments lists pending adjustments
func (h *InventoryHandler) ListAdjustments(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	params := &pagination.PaginationParams{Page: page, PerPage: perPage}

	result, err := h.inventoryService.ListPendingAdjustments(c.Request.Context(), *userID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Pending adjustments retrieved successfully", result)
}

// CreateCategory creates a medicine category
func (h *InventoryHandler) CreateCategory(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.inventoryService.CreateCategory(c.Request.Context(), *userID, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Category created successfully", category)
}

// ListCategories lists the owner's categories
func (h *InventoryHandler) ListCategories(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	categories, err := h.inventoryService.ListCategories(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Categories retrieved successfully", categories)
}

// DeleteCategory deletes a category
func (h *InventoryHandler) DeleteCategory(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid category id")
		return
	}

	if err := h.inventoryService.DeleteCategory(c.Request.Context(), *userID, categoryID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
