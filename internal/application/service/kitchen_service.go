package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/tillpoint/tillpoint-api/internal/domain/entity"
	"github.com/tillpoint/tillpoint-api/internal/domain/enum"
	"github.com/tillpoint/tillpoint-api/internal/domain/repository"
	"github.com/tillpoint/tillpoint-api/pkg/apperror"
)

// KitchenService serves the kitchen display: listing tickets per station and
// moving them through their preparation states.
type KitchenService struct {
	ticketRepo  repository.KitchenTicketRepository
	stationRepo repository.KitchenStationRepository
}

// NewKitchenService creates a new kitchen service
func NewKitchenService(ticketRepo repository.KitchenTicketRepository, stationRepo repository.KitchenStationRepository) *KitchenService {
	return &KitchenService{
		ticketRepo:  ticketRepo,
		stationRepo: stationRepo,
	}
}

// ListTickets retrieves kitchen tickets filtered by station, status or sale
func (s *KitchenService) ListTickets(ctx context.Context, params *repository.KitchenTicketFilterParams) ([]entity.KitchenTicket, error) {
	return s.ticketRepo.List(ctx, params)
}

// UpdateTicketStatus moves a ticket to a new preparation state
func (s *KitchenService) UpdateTicketStatus(ctx context.Context, id uuid.UUID, status enum.TicketStatus) (*entity.KitchenTicket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, apperror.NewNotFoundError("Kitchen ticket")
	}

	if err := s.ticketRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	ticket.Status = status
	return ticket, nil
}

// ListStations retrieves all kitchen stations
func (s *KitchenService) ListStations(ctx context.Context) ([]entity.KitchenStation, error) {
	return s.stationRepo.List(ctx)
}

// CreateStation creates a new kitchen station
func (s *KitchenService) CreateStation(ctx context.Context, name string) (*entity.KitchenStation, error) {
	station := &entity.KitchenStation{Name: name, Active: true}
	if err := s.stationRepo.Create(ctx, station); err != nil {
		return nil, err
	}
	return station, nil
}
