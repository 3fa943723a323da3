package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillpoint/tillpoint-api/internal/domain/entity"
	"github.com/tillpoint/tillpoint-api/internal/domain/repository"
	"github.com/tillpoint/tillpoint-api/pkg/apperror"
)

// StockDeduction is one inventory mutation produced by resolving a sold
// product: either an ingredient-level or a product-level quantity.
type StockDeduction struct {
	ProductID    *uuid.UUID
	IngredientID *uuid.UUID
	Quantity     decimal.Decimal
}

// ConsumptionResolver decides how a sold product consumes inventory. A
// product with a recipe consumes its ingredients; one without consumes its
// own stock directly.
type ConsumptionResolver struct {
	productRepo    repository.ProductRepository
	ingredientRepo repository.IngredientRepository
}

// NewConsumptionResolver creates a new consumption resolver
func NewConsumptionResolver(productRepo repository.ProductRepository, ingredientRepo repository.IngredientRepository) *ConsumptionResolver {
	return &ConsumptionResolver{
		productRepo:    productRepo,
		ingredientRepo: ingredientRepo,
	}
}

// ResolveConsumption looks up the product's recipe and returns the deduction
// list for quantity units sold.
func (r *ConsumptionResolver) ResolveConsumption(ctx context.Context, productID uuid.UUID, quantity int) ([]StockDeduction, error) {
	product, err := r.productRepo.GetForSale(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product " + productID.String())
	}
	return r.ResolveForProduct(product, quantity), nil
}

// ResolveForProduct computes the deduction list for an already-loaded
// product. The product must carry its recipe items.
func (r *ConsumptionResolver) ResolveForProduct(product *entity.Product, quantity int) []StockDeduction {
	qty := decimal.NewFromInt(int64(quantity))

	if product.Recipe != nil && len(product.Recipe.Items) > 0 {
		deductions := make([]StockDeduction, 0, len(product.Recipe.Items))
		for _, item := range product.Recipe.Items {
			ingredientID := item.IngredientID
			deductions = append(deductions, StockDeduction{
				IngredientID: &ingredientID,
				Quantity:     item.Quantity.Mul(qty),
			})
		}
		return deductions
	}

	productID := product.ID
	return []StockDeduction{{
		ProductID: &productID,
		Quantity:  qty,
	}}
}

// Apply mutates stock for each deduction. Pass negative deductions by setting
// reverse; commit consumes stock, refund restores it. Must run inside the
// caller's transaction so recorded sales and physical stock never diverge.
func (r *ConsumptionResolver) Apply(ctx context.Context, deductions []StockDeduction, reverse bool) error {
	sign := decimal.NewFromInt(-1)
	if reverse {
		sign = decimal.NewFromInt(1)
	}

	for _, d := range deductions {
		delta := d.Quantity.Mul(sign)
		switch {
		case d.IngredientID != nil:
			if err := r.ingredientRepo.AdjustStock(ctx, *d.IngredientID, delta); err != nil {
				return err
			}
		case d.ProductID != nil:
			if err := r.productRepo.AdjustStock(ctx, *d.ProductID, int(delta.IntPart())); err != nil {
				return err
			}
		}
	}
	return nil
}
