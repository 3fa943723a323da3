package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tillpoint/tillpoint-api/internal/application/service"
	"github.com/tillpoint/tillpoint-api/internal/domain/enum"
	"github.com/tillpoint/tillpoint-api/internal/domain/repository"
	"github.com/tillpoint/tillpoint-api/internal/presentation/http/dto/request"
	"github.com/tillpoint/tillpoint-api/internal/presentation/http/dto/response"
	"github.com/tillpoint/tillpoint-api/pkg/pagination"
)

// SaleHandler handles sale-related HTTP requests
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Commit handles committing a new sale
func (h *SaleHandler) Commit(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CommitSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := &service.CommitSaleInput{
		CustomerID:    req.CustomerID,
		TableID:       req.TableID,
		WaiterID:      req.WaiterID,
		OrderType:     req.OrderType,
		Discount:      req.Discount,
		ServiceCharge: req.ServiceCharge,
		Tip:           req.Tip,
	}

	for _, item := range req.Items {
		input.Items = append(input.Items, service.CommitSaleItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
		})
	}

	for _, p := range req.Payments {
		method, ok := enum.ParsePaymentMethod(p.Method)
		if !ok {
			response.BadRequest(c, "Unknown payment method: "+p.Method)
			return
		}
		input.Payments = append(input.Payments, service.PaymentInput{
			Method:    method,
			Amount:    p.Amount,
			Reference: p.Reference,
		})
	}

	if req.PaymentMethod != "" {
		method, ok := enum.ParsePaymentMethod(req.PaymentMethod)
		if !ok {
			response.BadRequest(c, "Unknown payment method: "+req.PaymentMethod)
			return
		}
		input.PaymentMethod = method
	} else if len(req.Payments) == 0 {
		response.BadRequest(c, "Either payments or payment_method is required")
		return
	}

	sale, err := h.saleService.CommitSale(c.Request.Context(), *userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale committed successfully", sale)
}

// Refund handles refunding a sale
func (h *SaleHandler) Refund(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	var req request.RefundSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	sale, err := h.saleService.RefundSale(c.Request.Context(), *userID, saleID, req.ItemIDs, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale refunded successfully", sale)
}

// Get handles retrieving a single sale
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), saleID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// List handles listing sales with filters
func (h *SaleHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.SaleFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
		Search: c.Query("search"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		if statusInt, err := strconv.Atoi(statusStr); err == nil {
			status := enum.SaleStatus(statusInt)
			params.Status = &status
		}
	}
	if cashierIDStr := c.Query("cashier_id"); cashierIDStr != "" {
		if cashierID, err := uuid.Parse(cashierIDStr); err == nil {
			params.CashierID = &cashierID
		}
	}
	if customerIDStr := c.Query("customer_id"); customerIDStr != "" {
		if customerID, err := uuid.Parse(customerIDStr); err == nil {
			params.CustomerID = &customerID
		}
	}
	if shiftIDStr := c.Query("shift_id"); shiftIDStr != "" {
		if shiftID, err := uuid.Parse(shiftIDStr); err == nil {
			params.ShiftID = &shiftID
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

	sales, total, err := h.saleService.ListSales(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(sales, pagination.NewPagination(page, perPage, total))
	response.SuccessWithPagination(c, 200, "Sales retrieved successfully", result)
}
