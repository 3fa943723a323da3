package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tillpoint/tillpoint-api/internal/domain/entity"
	"github.com/tillpoint/tillpoint-api/internal/domain/enum"
)

// KitchenTicketRepository defines the interface for kitchen ticket operations
type KitchenTicketRepository interface {
	CreateBatch(ctx context.Context, tickets []entity.KitchenTicket) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.KitchenTicket, error)
	List(ctx context.Context, params *KitchenTicketFilterParams) ([]entity.KitchenTicket, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.TicketStatus) error
}

// KitchenTicketFilterParams contains filtering parameters for ticket queries
type KitchenTicketFilterParams struct {
	StationID *uuid.UUID
	Status    *enum.TicketStatus
	SaleID    *uuid.UUID
}

// KitchenStationRepository defines the interface for kitchen station operations
type KitchenStationRepository interface {
	Create(ctx context.Context, station *entity.KitchenStation) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.KitchenStation, error)
	List(ctx context.Context) ([]entity.KitchenStation, error)
}
