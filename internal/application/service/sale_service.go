package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillpoint/tillpoint-api/internal/domain/entity"
	"github.com/tillpoint/tillpoint-api/internal/domain/enum"
	domainRepo "github.com/tillpoint/tillpoint-api/internal/domain/repository"
	"github.com/tillpoint/tillpoint-api/pkg/apperror"
)

// SaleService commits and refunds register transactions. Every mutation a
// sale causes, from the sale rows themselves through stock deductions,
// kitchen tickets, loyalty points and shift counters, happens inside one
// storage transaction: a failure anywhere leaves no trace of the sale.
type SaleService struct {
	tx           domainRepo.TxManager
	saleRepo     domainRepo.SaleRepository
	shiftRepo    domainRepo.ShiftRepository
	productRepo  domainRepo.ProductRepository
	ticketRepo   domainRepo.KitchenTicketRepository
	shiftService *ShiftService
	consumption  *ConsumptionResolver
	loyalty      *LoyaltyCalculator

	now func() time.Time
}

// NewSaleService creates a new sale service
func NewSaleService(
	tx domainRepo.TxManager,
	saleRepo domainRepo.SaleRepository,
	shiftRepo domainRepo.ShiftRepository,
	productRepo domainRepo.ProductRepository,
	ticketRepo domainRepo.KitchenTicketRepository,
	shiftService *ShiftService,
	consumption *ConsumptionResolver,
	loyalty *LoyaltyCalculator,
) *SaleService {
	return &SaleService{
		tx:           tx,
		saleRepo:     saleRepo,
		shiftRepo:    shiftRepo,
		productRepo:  productRepo,
		ticketRepo:   ticketRepo,
		shiftService: shiftService,
		consumption:  consumption,
		loyalty:      loyalty,
		now:          time.Now,
	}
}

// CommitSaleItemInput is one product line of a sale being committed.
// UnitPrice overrides the catalog price when set.
type CommitSaleItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice *decimal.Decimal
	Discount  decimal.Decimal
}

// PaymentInput is one payment-method/amount pair tendered for a sale
type PaymentInput struct {
	Method    enum.PaymentMethod
	Amount    decimal.Decimal
	Reference *string
}

// CommitSaleInput represents the commit sale input
type CommitSaleInput struct {
	CustomerID *uuid.UUID
	TableID    *uuid.UUID
	WaiterID   *uuid.UUID
	OrderType  string

	Items []CommitSaleItemInput

	// Payments lists how the total was tendered. When empty, a single
	// payment row is derived from PaymentMethod.
	Payments      []PaymentInput
	PaymentMethod enum.PaymentMethod

	Discount      decimal.Decimal
	ServiceCharge decimal.Decimal
	Tip           decimal.Decimal
}

// CommitSale validates and persists a sale with all of its side effects.
// The cashier's shift is resolved first, outside the transaction, so a
// required-but-missing shift rejects the sale before anything is written.
func (s *SaleService) CommitSale(ctx context.Context, cashierID uuid.UUID, input *CommitSaleInput) (*entity.Sale, error) {
	if err := validateSaleInput(input); err != nil {
		return nil, err
	}

	shift, err := s.shiftService.GetOrCreateShift(ctx, cashierID)
	if err != nil {
		return nil, err
	}

	var saleID uuid.UUID
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		sale, err := s.buildSale(ctx, cashierID, shift, input)
		if err != nil {
			return err
		}

		if err := s.saleRepo.Create(ctx, sale); err != nil {
			return err
		}
		saleID = sale.ID

		if err := s.applySideEffects(ctx, sale, shift, input); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.saleRepo.GetWithDetails(ctx, saleID)
}

// RefundSale refunds the whole sale amount and reverses its side effects.
// itemIDs limits the inventory reversal to specific lines; empty means all.
func (s *SaleService) RefundSale(ctx context.Context, approverID, saleID uuid.UUID, itemIDs []uuid.UUID, reason string) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetWithDetails(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	if sale.Status == enum.SaleStatusRefunded {
		return nil, apperror.ErrAlreadyRefunded
	}

	reverse := make(map[uuid.UUID]bool, len(itemIDs))
	for _, id := range itemIDs {
		reverse[id] = true
	}

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		refund := &entity.Refund{
			SaleID:       sale.ID,
			Amount:       sale.Total,
			Reason:       reason,
			ApprovedByID: approverID,
		}
		if err := s.saleRepo.CreateRefund(ctx, refund); err != nil {
			return err
		}

		if err := s.saleRepo.UpdateStatus(ctx, sale.ID, enum.SaleStatusRefunded); err != nil {
			return err
		}

		for _, item := range sale.Items {
			if len(reverse) > 0 && !reverse[item.ID] {
				continue
			}
			deductions, err := s.consumption.ResolveConsumption(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if err := s.consumption.Apply(ctx, deductions, true); err != nil {
				return err
			}
		}

		if sale.CustomerID != nil {
			if _, err := s.loyalty.Reverse(ctx, *sale.CustomerID, sale.Total); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.saleRepo.GetWithDetails(ctx, saleID)
}

// GetSale retrieves a sale with its items, payments and related records
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales retrieves sales with filtering and pagination
func (s *SaleService) ListSales(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	return s.saleRepo.List(ctx, params)
}

// buildSale prices the items against the catalog and assembles the sale
// aggregate with its item and payment rows. Must run inside the commit
// transaction so the sequence-based sale number stays gapless under load.
func (s *SaleService) buildSale(ctx context.Context, cashierID uuid.UUID, shift *entity.Shift, input *CommitSaleInput) (*entity.Sale, error) {
	number, err := s.generateSaleNumber(ctx)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	tax := decimal.Zero
	items := make([]entity.SaleItem, 0, len(input.Items))

	for _, in := range input.Items {
		product, err := s.productRepo.GetForSale(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, apperror.NewNotFoundError("Product " + in.ProductID.String())
		}

		unitPrice := product.Price
		if in.UnitPrice != nil {
			unitPrice = *in.UnitPrice
		}

		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(in.Quantity))).Sub(in.Discount)
		lineTax := lineTotal.Mul(product.TaxRate).Div(decimal.NewFromInt(100)).Round(2)

		subtotal = subtotal.Add(lineTotal)
		tax = tax.Add(lineTax)

		items = append(items, entity.SaleItem{
			ProductID: product.ID,
			Quantity:  in.Quantity,
			UnitPrice: unitPrice,
			TaxRate:   product.TaxRate,
			Discount:  in.Discount,
			Total:     lineTotal,
		})
	}

	total := subtotal.Sub(input.Discount).Add(tax).Add(input.ServiceCharge).Add(input.Tip)

	payments, method, err := buildPayments(input, total)
	if err != nil {
		return nil, err
	}

	status := enum.SaleStatusCompleted
	orderType := input.OrderType
	if orderType == "" {
		orderType = "counter"
	}
	if input.TableID != nil {
		// Table orders stay open for the floor flow until served
		status = enum.SaleStatusPending
		if input.OrderType == "" {
			orderType = "dine_in"
		}
	}

	sale := &entity.Sale{
		SaleNumber:    number,
		CashierID:     cashierID,
		CustomerID:    input.CustomerID,
		TableID:       input.TableID,
		WaiterID:      input.WaiterID,
		Status:        status,
		OrderType:     orderType,
		Subtotal:      subtotal,
		Tax:           tax,
		Discount:      input.Discount,
		ServiceCharge: input.ServiceCharge,
		Tip:           input.Tip,
		Total:         total,
		PaymentMethod: method,
		Items:         items,
		Payments:      payments,
	}
	if shift != nil {
		shiftID := shift.ID
		sale.ShiftID = &shiftID
	}
	return sale, nil
}

// applySideEffects runs the non-sale mutations of a commit: stock
// deductions, kitchen ticket fan-out, loyalty accrual and shift counters.
func (s *SaleService) applySideEffects(ctx context.Context, sale *entity.Sale, shift *entity.Shift, input *CommitSaleInput) error {
	var tickets []entity.KitchenTicket

	for i := range sale.Items {
		item := &sale.Items[i]

		product, err := s.productRepo.GetForSale(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return apperror.NewNotFoundError("Product " + item.ProductID.String())
		}

		deductions := s.consumption.ResolveForProduct(product, item.Quantity)
		if err := s.consumption.Apply(ctx, deductions, false); err != nil {
			return err
		}

		for _, station := range product.KitchenStations {
			tickets = append(tickets, entity.KitchenTicket{
				SaleID:     sale.ID,
				SaleItemID: item.ID,
				StationID:  station.ID,
				Status:     enum.TicketStatusNew,
			})
		}
	}

	if len(tickets) > 0 {
		if err := s.ticketRepo.CreateBatch(ctx, tickets); err != nil {
			return err
		}
	}

	if sale.CustomerID != nil {
		if _, err := s.loyalty.Accrue(ctx, *sale.CustomerID, sale.Total); err != nil {
			return err
		}
	}

	if shift != nil {
		if err := s.shiftRepo.IncrementCounters(ctx, shift.ID, sale.Total, 1); err != nil {
			return err
		}
	}
	return nil
}

// generateSaleNumber builds numbers like POS-2026-000042, sequenced per year
func (s *SaleService) generateSaleNumber(ctx context.Context) (string, error) {
	year := s.now().Year()
	count, err := s.saleRepo.CountForYear(ctx, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("POS-%d-%06d", year, count+1), nil
}

// buildPayments normalizes the tendered payments: explicit rows must sum to
// the total; a missing list collapses to one row of the single method. The
// sale's legacy method field records SPLIT when more than one row exists.
func buildPayments(input *CommitSaleInput, total decimal.Decimal) ([]entity.SalePayment, enum.PaymentMethod, error) {
	if len(input.Payments) == 0 {
		return []entity.SalePayment{{
			Method: input.PaymentMethod,
			Amount: total,
		}}, input.PaymentMethod, nil
	}

	sum := decimal.Zero
	payments := make([]entity.SalePayment, 0, len(input.Payments))
	for _, p := range input.Payments {
		if p.Amount.IsNegative() {
			return nil, 0, apperror.NewValidationError([]apperror.FieldError{
				{Field: "payments", Message: "payment amount cannot be negative"},
			})
		}
		sum = sum.Add(p.Amount)
		payments = append(payments, entity.SalePayment{
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: p.Reference,
		})
	}

	if !sum.Equal(total) {
		return nil, 0, apperror.NewValidationError([]apperror.FieldError{
			{Field: "payments", Message: fmt.Sprintf("payments sum to %s but sale total is %s", sum.String(), total.String())},
		})
	}

	method := payments[0].Method
	if len(payments) > 1 {
		method = enum.PaymentMethodSplit
	}
	return payments, method, nil
}

func validateSaleInput(input *CommitSaleInput) error {
	var fieldErrors []apperror.FieldError

	if len(input.Items) == 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field: "items", Message: "at least one item is required",
		})
	}
	for i, item := range input.Items {
		if item.Quantity < 1 {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field: fmt.Sprintf("items[%d].quantity", i), Message: "quantity must be at least 1",
			})
		}
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field: fmt.Sprintf("items[%d].unit_price", i), Message: "unit price cannot be negative",
			})
		}
		if item.Discount.IsNegative() {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field: fmt.Sprintf("items[%d].discount", i), Message: "discount cannot be negative",
			})
		}
	}
	if input.Discount.IsNegative() || input.ServiceCharge.IsNegative() || input.Tip.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field: "sale", Message: "discount, service charge and tip cannot be negative",
		})
	}

	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}
