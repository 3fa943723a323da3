package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tillpoint/tillpoint-api/internal/application/service"
	"github.com/tillpoint/tillpoint-api/internal/domain/enum"
	"github.com/tillpoint/tillpoint-api/internal/domain/repository"
	"github.com/tillpoint/tillpoint-api/internal/presentation/http/dto/request"
	"github.com/tillpoint/tillpoint-api/internal/presentation/http/dto/response"
)

// KitchenHandler handles kitchen display HTTP requests
type KitchenHandler struct {
	kitchenService *service.KitchenService
}

// NewKitchenHandler creates a new kitchen handler
func NewKitchenHandler(kitchenService *service.KitchenService) *KitchenHandler {
	return &KitchenHandler{kitchenService: kitchenService}
}

// ListTickets handles listing kitchen tickets with filters
func (h *KitchenHandler) ListTickets(c *gin.Context) {
	params := &repository.KitchenTicketFilterParams{}

	if stationIDStr := c.Query("station_id"); stationIDStr != "" {
		if stationID, err := uuid.Parse(stationIDStr); err == nil {
			params.StationID = &stationID
		}
	}
	if statusStr := c.Query("status"); statusStr != "" {
		if status, ok := enum.ParseTicketStatus(statusStr); ok {
			params.Status = &status
		}
	}
	if saleIDStr := c.Query("sale_id"); saleIDStr != "" {
		if saleID, err := uuid.Parse(saleIDStr); err == nil {
			params.SaleID = &saleID
		}
	}

	tickets, err := h.kitchenService.ListTickets(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tickets retrieved successfully", tickets)
}

// UpdateTicketStatus handles moving a ticket through its preparation states
func (h *KitchenHandler) UpdateTicketStatus(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid ticket ID")
		return
	}

	var req request.UpdateTicketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	status, ok := enum.ParseTicketStatus(req.Status)
	if !ok {
		response.BadRequest(c, "Unknown ticket status: "+req.Status)
		return
	}

	ticket, err := h.kitchenService.UpdateTicketStatus(c.Request.Context(), ticketID, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Ticket updated successfully", ticket)
}

// ListStations handles listing kitchen stations
func (h *KitchenHandler) ListStations(c *gin.Context) {
	stations, err := h.kitchenService.ListStations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stations retrieved successfully", stations)
}

// CreateStation handles creating a kitchen station
func (h *KitchenHandler) CreateStation(c *gin.Context) {
	var req request.CreateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	station, err := h.kitchenService.CreateStation(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Station created successfully", station)
}
