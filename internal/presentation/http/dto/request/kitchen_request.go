package request

// UpdateTicketStatusRequest represents a kitchen ticket status update
type UpdateTicketStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=New InProgress Ready Served Cancelled"`
}

// CreateStationRequest represents a kitchen station creation request
type CreateStationRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}
