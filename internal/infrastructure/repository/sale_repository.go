package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tillpoint/tillpoint-api/internal/domain/entity"
	"github.com/tillpoint/tillpoint-api/internal/domain/enum"
	domainRepo "github.com/tillpoint/tillpoint-api/internal/domain/repository"
	"gorm.io/gorm"
)

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(sale).Error
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Preload("Payments").
		First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Preload("Cashier").
		Preload("Customer").
		Preload("Table").
		Preload("Table.Floor").
		Preload("Items").
		Preload("Items.Product").
		Preload("Payments").
		First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) List(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	var sales []entity.Sale
	var total int64

	query := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Sale{})

	if params.Search != "" {
		query = query.Where("sale_number ILIKE ?", "%"+params.Search+"%")
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.CashierID != nil {
		query = query.Where("cashier_id = ?", *params.CashierID)
	}

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if params.ShiftID != nil {
		query = query.Where("shift_id = ?", *params.ShiftID)
	}

	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("created_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer").
		Preload("Payments").
		Order("created_at DESC").
		Find(&sales).Error

	return sales, total, err
}

func (r *saleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.SaleStatus) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Sale{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *saleRepository) CountForYear(ctx context.Context, year int) (int64, error) {
	var count int64
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(1, 0, 0)
	err := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Sale{}).
		Unscoped().
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *saleRepository) ListByShiftAndStatus(ctx context.Context, shiftID uuid.UUID, status enum.SaleStatus) ([]entity.Sale, error) {
	var sales []entity.Sale
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Preload("Payments").
		Where("shift_id = ? AND status = ?", shiftID, status).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepository) CountByShiftAndStatus(ctx context.Context, shiftID uuid.UUID, status enum.SaleStatus) (int64, error) {
	var count int64
	err := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Sale{}).
		Where("shift_id = ? AND status = ?", shiftID, status).
		Count(&count).Error
	return count, err
}

func (r *saleRepository) LatestSaleTime(ctx context.Context, shiftID uuid.UUID) (*time.Time, error) {
	var sale entity.Sale
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Select("created_at").
		Where("shift_id = ?", shiftID).
		Order("created_at DESC").
		First(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale.CreatedAt, nil
}

func (r *saleRepository) CreateRefund(ctx context.Context, refund *entity.Refund) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(refund).Error
}
