package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tillpoint/tillpoint-api/internal/domain/entity"
	"github.com/tillpoint/tillpoint-api/internal/domain/enum"
	"github.com/tillpoint/tillpoint-api/pkg/pagination"
)

// SaleRepository defines the interface for sale data operations
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.SaleStatus) error
	CountForYear(ctx context.Context, year int) (int64, error)

	// ListByShiftAndStatus returns the shift's sales in the given status with
	// their payment rows loaded; used by shift reconciliation.
	ListByShiftAndStatus(ctx context.Context, shiftID uuid.UUID, status enum.SaleStatus) ([]entity.Sale, error)
	CountByShiftAndStatus(ctx context.Context, shiftID uuid.UUID, status enum.SaleStatus) (int64, error)

	// LatestSaleTime returns the creation time of the shift's most recent
	// sale, or nil when the shift has none.
	LatestSaleTime(ctx context.Context, shiftID uuid.UUID) (*time.Time, error)

	CreateRefund(ctx context.Context, refund *entity.Refund) error
}

// SaleFilterParams contains filtering parameters for sale queries
type SaleFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.SaleStatus
	CashierID  *uuid.UUID
	CustomerID *uuid.UUID
	ShiftID    *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}
