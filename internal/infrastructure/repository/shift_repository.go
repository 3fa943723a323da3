package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillpoint/tillpoint-api/internal/domain/entity"
	"github.com/tillpoint/tillpoint-api/internal/domain/enum"
	domainRepo "github.com/tillpoint/tillpoint-api/internal/domain/repository"
	"gorm.io/gorm"
)

type shiftRepository struct {
	db *gorm.DB
}

// NewShiftRepository creates a new shift repository
func NewShiftRepository(db *gorm.DB) domainRepo.ShiftRepository {
	return &shiftRepository{db: db}
}

func (r *shiftRepository) Create(ctx context.Context, shift *entity.Shift) error {
	err := dbFrom(ctx, r.db).WithContext(ctx).Create(shift).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainRepo.ErrDuplicateOpenShift
	}
	return err
}

func (r *shiftRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Shift, error) {
	var shift entity.Shift
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Preload("Cashier").
		First(&shift, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &shift, err
}

func (r *shiftRepository) GetOpenByCashier(ctx context.Context, cashierID uuid.UUID) (*entity.Shift, error) {
	var shift entity.Shift
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("cashier_id = ? AND status = ?", cashierID, enum.ShiftStatusOpen).
		First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &shift, err
}

func (r *shiftRepository) ListOpen(ctx context.Context) ([]entity.Shift, error) {
	var shifts []entity.Shift
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("status = ?", enum.ShiftStatusOpen).
		Order("opened_at ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepository) List(ctx context.Context, params *domainRepo.ShiftFilterParams) ([]entity.Shift, int64, error) {
	var shifts []entity.Shift
	var total int64

	query := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Shift{})

	if params.CashierID != nil {
		query = query.Where("cashier_id = ?", *params.CashierID)
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.StartDate != nil {
		query = query.Where("opened_at >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("opened_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Cashier").
		Order("opened_at DESC").
		Find(&shifts).Error

	return shifts, total, err
}

func (r *shiftRepository) Update(ctx context.Context, shift *entity.Shift) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Save(shift).Error
}

func (r *shiftRepository) IncrementCounters(ctx context.Context, id uuid.UUID, saleTotal decimal.Decimal, transactions int) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Shift{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_sales":        gorm.Expr("total_sales + ?", saleTotal),
			"total_transactions": gorm.Expr("total_transactions + ?", transactions),
		}).Error
}

func (r *shiftRepository) CountForDay(ctx context.Context, day time.Time) (int64, error) {
	var count int64
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	err := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Shift{}).
		Where("opened_at >= ? AND opened_at < ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *shiftRepository) ExistsOpenedOnDay(ctx context.Context, day time.Time) (bool, error) {
	count, err := r.CountForDay(ctx, day)
	return count > 0, err
}
