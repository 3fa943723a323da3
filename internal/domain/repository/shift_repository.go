package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillpoint/tillpoint-api/internal/domain/entity"
	"github.com/tillpoint/tillpoint-api/pkg/pagination"
)

// ErrDuplicateOpenShift is returned by Create when the cashier already has an
// open shift. Callers racing on GetOrCreateShift treat it as "lost the race"
// and re-read the winner's shift.
var ErrDuplicateOpenShift = errors.New("cashier already has an open shift")

// ShiftRepository defines the interface for shift data operations
type ShiftRepository interface {
	// Create persists a new open shift. It returns ErrDuplicateOpenShift when
	// the cashier already has an open shift (partial unique index).
	Create(ctx context.Context, shift *entity.Shift) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Shift, error)
	GetOpenByCashier(ctx context.Context, cashierID uuid.UUID) (*entity.Shift, error)
	ListOpen(ctx context.Context) ([]entity.Shift, error)
	List(ctx context.Context, params *ShiftFilterParams) ([]entity.Shift, int64, error)
	Update(ctx context.Context, shift *entity.Shift) error

	// IncrementCounters atomically bumps the running aggregates maintained at
	// sale-commit time.
	IncrementCounters(ctx context.Context, id uuid.UUID, saleTotal decimal.Decimal, transactions int) error

	CountForDay(ctx context.Context, day time.Time) (int64, error)
	ExistsOpenedOnDay(ctx context.Context, day time.Time) (bool, error)
}

// ShiftFilterParams contains filtering parameters for shift queries
type ShiftFilterParams struct {
	Pagination *pagination.PaginationParams
	CashierID  *uuid.UUID
	Status     *int
	StartDate  *time.Time
	EndDate    *time.Time
}
