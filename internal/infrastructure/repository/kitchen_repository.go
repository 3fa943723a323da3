package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tillpoint/tillpoint-api/internal/domain/entity"
	"github.com/tillpoint/tillpoint-api/internal/domain/enum"
	domainRepo "github.com/tillpoint/tillpoint-api/internal/domain/repository"
	"gorm.io/gorm"
)

type kitchenTicketRepository struct {
	db *gorm.DB
}

// NewKitchenTicketRepository creates a new kitchen ticket repository
func NewKitchenTicketRepository(db *gorm.DB) domainRepo.KitchenTicketRepository {
	return &kitchenTicketRepository{db: db}
}

func (r *kitchenTicketRepository) CreateBatch(ctx context.Context, tickets []entity.KitchenTicket) error {
	if len(tickets) == 0 {
		return nil
	}
	return dbFrom(ctx, r.db).WithContext(ctx).Create(&tickets).Error
}

func (r *kitchenTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.KitchenTicket, error) {
	var ticket entity.KitchenTicket
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Preload("Station").
		Preload("SaleItem").
		Preload("SaleItem.Product").
		First(&ticket, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ticket, err
}

func (r *kitchenTicketRepository) List(ctx context.Context, params *domainRepo.KitchenTicketFilterParams) ([]entity.KitchenTicket, error) {
	var tickets []entity.KitchenTicket

	query := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.KitchenTicket{})

	if params.StationID != nil {
		query = query.Where("station_id = ?", *params.StationID)
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.SaleID != nil {
		query = query.Where("sale_id = ?", *params.SaleID)
	}

	err := query.
		Preload("Station").
		Preload("SaleItem").
		Preload("SaleItem.Product").
		Order("priority DESC, created_at ASC").
		Find(&tickets).Error

	return tickets, err
}

func (r *kitchenTicketRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.TicketStatus) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.KitchenTicket{}).
		Where("id = ?", id).
		Update("status", status).Error
}

type kitchenStationRepository struct {
	db *gorm.DB
}

// NewKitchenStationRepository creates a new kitchen station repository
func NewKitchenStationRepository(db *gorm.DB) domainRepo.KitchenStationRepository {
	return &kitchenStationRepository{db: db}
}

func (r *kitchenStationRepository) Create(ctx context.Context, station *entity.KitchenStation) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(station).Error
}

func (r *kitchenStationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.KitchenStation, error) {
	var station entity.KitchenStation
	err := dbFrom(ctx, r.db).WithContext(ctx).First(&station, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &station, err
}

func (r *kitchenStationRepository) List(ctx context.Context) ([]entity.KitchenStation, error) {
	var stations []entity.KitchenStation
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&stations).Error
	return stations, err
}
