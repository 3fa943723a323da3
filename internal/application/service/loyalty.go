package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillpoint/tillpoint-api/internal/domain/repository"
)

// loyaltyDivisor converts a sale total into points: one point per 10 spent.
var loyaltyDivisor = decimal.NewFromInt(10)

// LoyaltyCalculator converts completed sale totals into loyalty point
// mutations on the customer's balance.
type LoyaltyCalculator struct {
	customerRepo repository.CustomerRepository
}

// NewLoyaltyCalculator creates a new loyalty calculator
func NewLoyaltyCalculator(customerRepo repository.CustomerRepository) *LoyaltyCalculator {
	return &LoyaltyCalculator{customerRepo: customerRepo}
}

// PointsForTotal returns floor(total / 10)
func (c *LoyaltyCalculator) PointsForTotal(total decimal.Decimal) int {
	return int(total.Div(loyaltyDivisor).Floor().IntPart())
}

// Accrue adds the points earned by a sale to the customer's balance and
// returns how many were added.
func (c *LoyaltyCalculator) Accrue(ctx context.Context, customerID uuid.UUID, total decimal.Decimal) (int, error) {
	points := c.PointsForTotal(total)
	if points == 0 {
		return 0, nil
	}
	if err := c.customerRepo.AdjustLoyaltyPoints(ctx, customerID, points); err != nil {
		return 0, err
	}
	return points, nil
}

// Reverse removes the points a refunded sale had earned, using the same
// formula as accrual.
func (c *LoyaltyCalculator) Reverse(ctx context.Context, customerID uuid.UUID, total decimal.Decimal) (int, error) {
	points := c.PointsForTotal(total)
	if points == 0 {
		return 0, nil
	}
	if err := c.customerRepo.AdjustLoyaltyPoints(ctx, customerID, -points); err != nil {
		return 0, err
	}
	return points, nil
}
