package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tillpoint/tillpoint-api/internal/application/service"
	"github.com/tillpoint/tillpoint-api/internal/domain/repository"
	"github.com/tillpoint/tillpoint-api/internal/presentation/http/dto/request"
	"github.com/tillpoint/tillpoint-api/internal/presentation/http/dto/response"
	"github.com/tillpoint/tillpoint-api/pkg/pagination"
)

// ShiftHandler handles shift-related HTTP requests
type ShiftHandler struct {
	shiftService *service.ShiftService
}

// NewShiftHandler creates a new shift handler
func NewShiftHandler(shiftService *service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: shiftService}
}

// Open handles opening a shift
func (h *ShiftHandler) Open(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.OpenShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	shift, err := h.shiftService.OpenShift(c.Request.Context(), *userID, req.StartingCash)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Shift opened successfully", shift)
}

// Close handles closing a shift
func (h *ShiftHandler) Close(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	shiftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid shift ID")
		return
	}

	var req request.CloseShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	shift, err := h.shiftService.CloseShift(c.Request.Context(), shiftID, *userID, req.EndingCash, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Shift closed successfully", shift)
}

// Current returns the authenticated cashier's open shift
func (h *ShiftHandler) Current(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	shift, err := h.shiftService.GetCurrentShift(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if shift == nil {
		response.NotFound(c, "No open shift")
		return
	}

	response.OK(c, "Shift retrieved successfully", shift)
}

// Get handles retrieving a single shift
func (h *ShiftHandler) Get(c *gin.Context) {
	shiftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid shift ID")
		return
	}

	shift, err := h.shiftService.GetShift(c.Request.Context(), shiftID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Shift retrieved successfully", shift)
}

// Totals recomputes the shift's reconciliation totals on demand
func (h *ShiftHandler) Totals(c *gin.Context) {
	shiftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid shift ID")
		return
	}

	totals, err := h.shiftService.GetShiftTotals(c.Request.Context(), shiftID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Shift totals calculated successfully", totals)
}

// List handles listing shifts with filters
func (h *ShiftHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.ShiftFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
	}

	if cashierIDStr := c.Query("cashier_id"); cashierIDStr != "" {
		if cashierID, err := uuid.Parse(cashierIDStr); err == nil {
			params.CashierID = &cashierID
		}
	}
	if statusStr := c.Query("status"); statusStr != "" {
		if status, err := strconv.Atoi(statusStr); err == nil {
			params.Status = &status
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

	shifts, total, err := h.shiftService.ListShifts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(shifts, pagination.NewPagination(page, perPage, total))
	response.SuccessWithPagination(c, 200, "Shifts retrieved successfully", result)
}
