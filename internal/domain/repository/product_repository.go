package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillpoint/tillpoint-api/internal/domain/entity"
	"github.com/tillpoint/tillpoint-api/pkg/pagination"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	// GetForSale loads the product with its recipe items and kitchen station
	// links, everything sale commit needs in one query.
	GetForSale(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
	GetLowStock(ctx context.Context) ([]entity.Product, error)

	// AdjustStock applies a signed delta to the product's quantity. No floor
	// is enforced; concurrent overselling can drive stock negative.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
}

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	CategoryID *uuid.UUID
	LowStock   bool
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]entity.Category, error)
}

// IngredientRepository defines the interface for ingredient data operations
type IngredientRepository interface {
	Create(ctx context.Context, ingredient *entity.Ingredient) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Ingredient, error)
	Update(ctx context.Context, ingredient *entity.Ingredient) error
	List(ctx context.Context) ([]entity.Ingredient, error)

	// AdjustStock applies a signed delta to the ingredient's stock level.
	AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
}
