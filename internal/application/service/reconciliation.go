package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillpoint/tillpoint-api/internal/domain/entity"
	"github.com/tillpoint/tillpoint-api/internal/domain/enum"
	"github.com/tillpoint/tillpoint-api/internal/domain/repository"
)

// ShiftTotals is the money breakdown of a shift recomputed from its
// persisted sales and payments. Calculating it twice over the same rows
// always yields the same result.
type ShiftTotals struct {
	CashSales   decimal.Decimal `json:"cash_sales"`
	CardSales   decimal.Decimal `json:"card_sales"`
	MobileSales decimal.Decimal `json:"mobile_sales"`
	SplitSales  decimal.Decimal `json:"split_sales"`

	TotalSales          decimal.Decimal `json:"total_sales"`
	TotalTips           decimal.Decimal `json:"total_tips"`
	TotalServiceCharges decimal.Decimal `json:"total_service_charges"`
	TotalDiscounts      decimal.Decimal `json:"total_discounts"`
	TotalTax            decimal.Decimal `json:"total_tax"`
	TotalTransactions   int             `json:"total_transactions"`

	RefundCount int `json:"refund_count"`
	VoidCount   int `json:"void_count"`
}

// ReconciliationService recomputes shift totals purely from committed sale
// and payment records; it holds no state of its own.
type ReconciliationService struct {
	saleRepo repository.SaleRepository
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(saleRepo repository.SaleRepository) *ReconciliationService {
	return &ReconciliationService{saleRepo: saleRepo}
}

// CalculateShiftTotals buckets every completed sale of the shift by payment
// method and aggregates the scalar totals.
//
// Sales carrying payment rows are attributed row by row: each row's amount
// lands in the bucket of its own method, and a sale with two or more rows
// additionally adds its full total to the split bucket. Sales without
// payment rows predate the payments table and are attributed wholesale by
// the legacy payment_method field. Counting split sales only through the
// legacy field used to undercount them; both paths must stay.
func (s *ReconciliationService) CalculateShiftTotals(ctx context.Context, shiftID uuid.UUID) (*ShiftTotals, error) {
	sales, err := s.saleRepo.ListByShiftAndStatus(ctx, shiftID, enum.SaleStatusCompleted)
	if err != nil {
		return nil, err
	}

	totals := &ShiftTotals{}

	for i := range sales {
		sale := &sales[i]

		if len(sale.Payments) > 0 {
			for _, p := range sale.Payments {
				s.addToBucket(totals, p.Method, p.Amount)
			}
			if len(sale.Payments) > 1 {
				totals.SplitSales = totals.SplitSales.Add(sale.Total)
			}
		} else {
			s.addLegacy(totals, sale)
		}

		totals.TotalSales = totals.TotalSales.Add(sale.Total)
		totals.TotalTips = totals.TotalTips.Add(sale.Tip)
		totals.TotalServiceCharges = totals.TotalServiceCharges.Add(sale.ServiceCharge)
		totals.TotalDiscounts = totals.TotalDiscounts.Add(sale.Discount)
		totals.TotalTax = totals.TotalTax.Add(sale.Tax)
		totals.TotalTransactions++
	}

	refunded, err := s.saleRepo.CountByShiftAndStatus(ctx, shiftID, enum.SaleStatusRefunded)
	if err != nil {
		return nil, err
	}
	voided, err := s.saleRepo.CountByShiftAndStatus(ctx, shiftID, enum.SaleStatusVoided)
	if err != nil {
		return nil, err
	}
	totals.RefundCount = int(refunded)
	totals.VoidCount = int(voided)

	return totals, nil
}

func (s *ReconciliationService) addToBucket(totals *ShiftTotals, method enum.PaymentMethod, amount decimal.Decimal) {
	switch method {
	case enum.PaymentMethodCash:
		totals.CashSales = totals.CashSales.Add(amount)
	case enum.PaymentMethodCard:
		totals.CardSales = totals.CardSales.Add(amount)
	case enum.PaymentMethodMobileWallet:
		totals.MobileSales = totals.MobileSales.Add(amount)
	case enum.PaymentMethodSplit:
		totals.SplitSales = totals.SplitSales.Add(amount)
	}
}

// addLegacy attributes a pre-payments-table sale by its single method field.
func (s *ReconciliationService) addLegacy(totals *ShiftTotals, sale *entity.Sale) {
	s.addToBucket(totals, sale.PaymentMethod, sale.Total)
}
