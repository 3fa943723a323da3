package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tillpoint/tillpoint-api/internal/config"
	"github.com/tillpoint/tillpoint-api/internal/domain/entity"
	"github.com/tillpoint/tillpoint-api/internal/domain/enum"
	"github.com/tillpoint/tillpoint-api/pkg/apperror"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

type saleFixture struct {
	store     *memStore
	saleRepo  *fakeSaleRepo
	shiftRepo *fakeShiftRepo
	cashierID uuid.UUID
	svc       *SaleService
	shiftSvc  *ShiftService
}

func newSaleFixture(t *testing.T, shiftCfg config.ShiftConfig) *saleFixture {
	t.Helper()
	store := newMemStore()
	saleRepo := &fakeSaleRepo{store: store}
	shiftRepo := &fakeShiftRepo{store: store}
	productRepo := &fakeProductRepo{store: store}
	ingredientRepo := &fakeIngredientRepo{store: store}
	customerRepo := &fakeCustomerRepo{store: store}
	ticketRepo := &fakeTicketRepo{store: store}

	consumption := NewConsumptionResolver(productRepo, ingredientRepo)
	loyalty := NewLoyaltyCalculator(customerRepo)
	reconciliation := NewReconciliationService(saleRepo)
	shiftSvc := NewShiftService(shiftRepo, saleRepo, reconciliation, shiftCfg)
	svc := NewSaleService(&memTxManager{store: store}, saleRepo, shiftRepo, productRepo, ticketRepo, shiftSvc, consumption, loyalty)

	return &saleFixture{
		store:     store,
		saleRepo:  saleRepo,
		shiftRepo: shiftRepo,
		cashierID: uuid.New(),
		svc:       svc,
		shiftSvc:  shiftSvc,
	}
}

func hybridShiftConfig() config.ShiftConfig {
	return config.ShiftConfig{
		Mode:                "hybrid",
		DefaultStartingCash: 100,
		DailyStartTime:      "08:00",
		DailyEndTime:        "23:00",
	}
}

func (f *saleFixture) addProduct(price, taxRate string, quantity int) *entity.Product {
	product := &entity.Product{
		ID:       uuid.New(),
		Name:     "Espresso",
		Code:     "ESP-" + uuid.NewString()[:8],
		Price:    dec(price),
		TaxRate:  dec(taxRate),
		Quantity: quantity,
		Active:   true,
	}
	f.store.products[product.ID] = product
	return product
}

func (f *saleFixture) addIngredient(name, stock string) *entity.Ingredient {
	ingredient := &entity.Ingredient{
		ID:    uuid.New(),
		Name:  name,
		Unit:  "kg",
		Stock: dec(stock),
	}
	f.store.ingredients[ingredient.ID] = ingredient
	return ingredient
}

func (f *saleFixture) addCustomer(points int) *entity.Customer {
	customer := &entity.Customer{
		ID:            uuid.New(),
		Name:          "Dana",
		LoyaltyPoints: points,
	}
	f.store.customers[customer.ID] = customer
	return customer
}

func singleItemInput(productID uuid.UUID, quantity int) *CommitSaleInput {
	return &CommitSaleInput{
		Items: []CommitSaleItemInput{
			{ProductID: productID, Quantity: quantity},
		},
		PaymentMethod: enum.PaymentMethodCash,
	}
}

func TestCommitSale_PersistsSaleWithDerivedTotals(t *testing.T) {
	f := newSaleFixture(t, hybridShiftConfig())
	product := f.addProduct("10.00", "10", 5)

	sale, err := f.svc.CommitSale(context.Background(), f.cashierID, singleItemInput(product.ID, 2))
	require.NoError(t, err)

	assertDecimal(t, "20.00", sale.Subtotal)
	assertDecimal(t, "2.00", sale.Tax)
	assertDecimal(t, "22.00", sale.Total)
	assert.Equal(t, enum.SaleStatusCompleted, sale.Status)
	assert.Equal(t, "POS-"+time.Now().Format("2006")+"-000001", sale.SaleNumber)

	// total identity holds
	identity := sale.Subtotal.Sub(sale.Discount).Add(sale.Tax).Add(sale.ServiceCharge).Add(sale.Tip)
	assert.True(t, identity.Equal(sale.Total))

	// one payment row covering the full total
	require.Len(t, sale.Payments, 1)
	assert.Equal(t, enum.PaymentMethodCash, sale.Payments[0].Method)
	assertDecimal(t, "22.00", sale.Payments[0].Amount)

	// product stock consumed
	assert.Equal(t, 3, f.store.products[product.ID].Quantity)

	// shift auto-opened and counters bumped
	require.NotNil(t, sale.ShiftID)
	shift := f.store.shifts[*sale.ShiftID]
	require.NotNil(t, shift)
	assert.True(t, shift.AutoOpened)
	assert.Equal(t, 1, shift.TotalTransactions)
	assertDecimal(t, "22.00", shift.TotalSales)
}

func TestCommitSale_RecipeConsumesIngredientsNotProductStock(t *testing.T) {
	f := newSaleFixture(t, hybridShiftConfig())
	flour := f.addIngredient("Flour", "10.000")
	product := f.addProduct("6.00", "0", 50)
	product.Recipe = &entity.Recipe{
		ProductID: product.ID,
		Items: []entity.RecipeItem{
			{IngredientID: flour.ID, Quantity: dec("0.250")},
		},
	}

	_, err := f.svc.CommitSale(context.Background(), f.cashierID, singleItemInput(product.ID, 4))
	require.NoError(t, err)

	assertDecimal(t, "9.000", f.store.ingredients[flour.ID].Stock)
	assert.Equal(t, 50, f.store.products[product.ID].Quantity, "recipe products never touch their own stock")
}

func TestCommitSale_StockMayGoNegative(t *testing.T) {
	f := newSaleFixture(t, hybridShiftConfig())
	product := f.addProduct("5.00", "0", 1)

	_, err := f.svc.CommitSale(context.Background(), f.cashierID, singleItemInput(product.ID, 3))
	require.NoError(t, err)

	assert.Equal(t, -2, f.store.products[product.ID].Quantity)
}

func TestCommitSale_SplitPayments(t *testing.T) {
	f := newSaleFixture(t, hybridShiftConfig())
	product := f.addProduct("10.00", "10", 5)

	input := singleItemInput(product.ID, 2)
	input.Payments = []PaymentInput{
		{Method: enum.PaymentMethodCash, Amount: dec("10.00")},
		{Method: enum.PaymentMethodCard, Amount: dec("12.00")},
	}

	sale, err := f.svc.CommitSale(context.Background(), f.cashierID, input)
	require.NoError(t, err)

	require.Len(t, sale.Payments, 2)
	assert.Equal(t, enum.PaymentMethodSplit, sale.PaymentMethod)
}

func TestCommitSale_SplitPaymentSumMismatchRejected(t *testing.T) {
	f := newSaleFixture(t, hybridShiftConfig())
	product := f.addProduct("10.00", "10", 5)

	input := singleItemInput(product.ID, 2)
	input.Payments = []PaymentInput{
		{Method: enum.PaymentMethodCash, Amount: dec("10.00")},
		{Method: enum.PaymentMethodCard, Amount: dec("5.00")},
	}

	_, err := f.svc.CommitSale(context.Background(), f.cashierID, input)
	require.Error(t, err)

	appErr := apperror.GetAppError(err)
	assert.Equal(t, 422, appErr.Code)
	assert.Empty(t, f.store.sales, "rejected sale must leave no rows")
	assert.Equal(t, 5, f.store.products[product.ID].Quantity)
}

func TestCommitSale_RollsBackEverythingOnFailure(t *testing.T) {
	f := newSaleFixture(t, hybridShiftConfig())
	station := entity.KitchenStation{ID: uuid.New(), Name: "Kitchen"}
	product := f.addProduct("10.00", "0", 5)
	product.KitchenStations = []entity.KitchenStation{station}
	customer := f.addCustomer(0)

	f.store.failures["ticket.CreateBatch"] = errors.New("kitchen printer db down")

	input := singleItemInput(product.ID, 2)
	input.CustomerID = &customer.ID

	_, err := f.svc.CommitSale(context.Background(), f.cashierID, input)
	require.Error(t, err)

	assert.Empty(t, f.store.sales)
	assert.Empty(t, f.store.tickets)
	assert.Equal(t, 5, f.store.products[product.ID].Quantity, "stock deduction must roll back")
	assert.Equal(t, 0, f.store.customers[customer.ID].LoyaltyPoints)
}

func TestCommitSale_ManualModeRequiresShift(t *testing.T) {
	cfg := config.ShiftConfig{Mode: "manual", RequireShiftForSales: true, DailyStartTime: "08:00", DailyEndTime: "23:00"}
	f := newSaleFixture(t, cfg)
	product := f.addProduct("10.00", "0", 5)

	_, err := f.svc.CommitSale(context.Background(), f.cashierID, singleItemInput(product.ID, 1))
	require.ErrorIs(t, err, apperror.ErrShiftRequired)
	assert.Empty(t, f.store.sales)
	assert.Empty(t, f.store.shifts)
}

func TestCommitSale_ManualModeWithoutRequirementProceedsShiftless(t *testing.T) {
	cfg := config.ShiftConfig{Mode: "manual", RequireShiftForSales: false, DailyStartTime: "08:00", DailyEndTime: "23:00"}
	f := newSaleFixture(t, cfg)
	product := f.addProduct("10.00", "0", 5)

	sale, err := f.svc.CommitSale(context.Background(), f.cashierID, singleItemInput(product.ID, 1))
	require.NoError(t, err)
	assert.Nil(t, sale.ShiftID)
	assert.Empty(t, f.store.shifts)
}

func TestCommitSale_LoyaltyAccruesFloorOfTotalOverTen(t *testing.T) {
	f := newSaleFixture(t, hybridShiftConfig())
	product := f.addProduct("9.50", "0", 10)
	customer := f.addCustomer(3)

	input := singleItemInput(product.ID, 3) // total 28.50 -> 2 points
	input.CustomerID = &customer.ID

	_, err := f.svc.CommitSale(context.Background(), f.cashierID, input)
	require.NoError(t, err)

	assert.Equal(t, 5, f.store.customers[customer.ID].LoyaltyPoints)
}

func TestCommitSale_ValidationFailures(t *testing.T) {
	f := newSaleFixture(t, hybridShiftConfig())
	product := f.addProduct("10.00", "0", 5)
	negative := dec("-1.00")

	cases := []struct {
		name  string
		input *CommitSaleInput
	}{
		{"no items", &CommitSaleInput{PaymentMethod: enum.PaymentMethodCash}},
		{"zero quantity", &CommitSaleInput{
			Items:         []CommitSaleItemInput{{ProductID: product.ID, Quantity: 0}},
			PaymentMethod: enum.PaymentMethodCash,
		}},
		{"negative unit price", &CommitSaleInput{
			Items:         []CommitSaleItemInput{{ProductID: product.ID, Quantity: 1, UnitPrice: &negative}},
			PaymentMethod: enum.PaymentMethodCash,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CommitSale(context.Background(), f.cashierID, tc.input)
			require.Error(t, err)
			assert.Equal(t, 422, apperror.GetAppError(err).Code)
		})
	}
	assert.Empty(t, f.store.sales)
}

func TestCommitSale_TableBoundSaleStartsPending(t *testing.T) {
	f := newSaleFixture(t, hybridShiftConfig())
	product := f.addProduct("10.00", "0", 5)
	tableID := uuid.New()

	input := singleItemInput(product.ID, 1)
	input.TableID = &tableID

	sale, err := f.svc.CommitSale(context.Background(), f.cashierID, input)
	require.NoError(t, err)
	assert.Equal(t, enum.SaleStatusPending, sale.Status)
	assert.Equal(t, "dine_in", sale.OrderType)
}

func TestCommitSale_FansOutKitchenTicketsPerStation(t *testing.T) {
	f := newSaleFixture(t, hybridShiftConfig())
	kitchen := entity.KitchenStation{ID: uuid.New(), Name: "Kitchen"}
	bar := entity.KitchenStation{ID: uuid.New(), Name: "Bar"}
	product := f.addProduct("10.00", "0", 5)
	product.KitchenStations = []entity.KitchenStation{kitchen, bar}

	sale, err := f.svc.CommitSale(context.Background(), f.cashierID, singleItemInput(product.ID, 1))
	require.NoError(t, err)

	require.Len(t, f.store.tickets, 2)
	for _, ticket := range f.store.tickets {
		assert.Equal(t, sale.ID, ticket.SaleID)
		assert.Equal(t, enum.TicketStatusNew, ticket.Status)
		assert.Equal(t, 0, ticket.Priority)
	}
}

func TestRefundSale_ReversesAllSideEffects(t *testing.T) {
	f := newSaleFixture(t, hybridShiftConfig())
	product := f.addProduct("10.00", "10", 5)
	customer := f.addCustomer(0)
	approver := uuid.New()

	input := singleItemInput(product.ID, 2)
	input.CustomerID = &customer.ID
	sale, err := f.svc.CommitSale(context.Background(), f.cashierID, input)
	require.NoError(t, err)
	require.Equal(t, 3, f.store.products[product.ID].Quantity)
	require.Equal(t, 2, f.store.customers[customer.ID].LoyaltyPoints)

	refunded, err := f.svc.RefundSale(context.Background(), approver, sale.ID, nil, "customer changed mind")
	require.NoError(t, err)

	assert.Equal(t, enum.SaleStatusRefunded, refunded.Status)
	assert.Equal(t, 5, f.store.products[product.ID].Quantity)
	assert.Equal(t, 0, f.store.customers[customer.ID].LoyaltyPoints)

	require.Len(t, f.store.refunds, 1)
	refund := f.store.refunds[0]
	assert.True(t, refund.Amount.Equal(sale.Total))
	assert.Equal(t, approver, refund.ApprovedByID)
	assert.Equal(t, "customer changed mind", refund.Reason)
}

func TestRefundSale_SecondRefundRejected(t *testing.T) {
	f := newSaleFixture(t, hybridShiftConfig())
	product := f.addProduct("10.00", "0", 5)

	sale, err := f.svc.CommitSale(context.Background(), f.cashierID, singleItemInput(product.ID, 1))
	require.NoError(t, err)

	_, err = f.svc.RefundSale(context.Background(), uuid.New(), sale.ID, nil, "first")
	require.NoError(t, err)

	_, err = f.svc.RefundSale(context.Background(), uuid.New(), sale.ID, nil, "second")
	require.ErrorIs(t, err, apperror.ErrAlreadyRefunded)
	assert.Len(t, f.store.refunds, 1)
	assert.Equal(t, 5, f.store.products[product.ID].Quantity, "inventory must not be restored twice")
}

func TestRefundSale_UnknownSale(t *testing.T) {
	f := newSaleFixture(t, hybridShiftConfig())

	_, err := f.svc.RefundSale(context.Background(), uuid.New(), uuid.New(), nil, "missing")
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestRefundSale_RollsBackOnFailure(t *testing.T) {
	f := newSaleFixture(t, hybridShiftConfig())
	product := f.addProduct("10.00", "0", 5)
	customer := f.addCustomer(0)

	input := singleItemInput(product.ID, 2)
	input.CustomerID = &customer.ID
	sale, err := f.svc.CommitSale(context.Background(), f.cashierID, input)
	require.NoError(t, err)

	f.store.failures["customer.AdjustLoyaltyPoints"] = errors.New("customers table locked")

	_, err = f.svc.RefundSale(context.Background(), uuid.New(), sale.ID, nil, "reason")
	require.Error(t, err)

	got := f.store.sales[sale.ID]
	assert.Equal(t, enum.SaleStatusCompleted, got.Status, "status flip must roll back")
	assert.Empty(t, f.store.refunds)
	assert.Equal(t, 3, f.store.products[product.ID].Quantity, "stock restore must roll back")
}

func TestCommitSale_SequentialSaleNumbers(t *testing.T) {
	f := newSaleFixture(t, hybridShiftConfig())
	product := f.addProduct("10.00", "0", 50)

	first, err := f.svc.CommitSale(context.Background(), f.cashierID, singleItemInput(product.ID, 1))
	require.NoError(t, err)
	second, err := f.svc.CommitSale(context.Background(), f.cashierID, singleItemInput(product.ID, 1))
	require.NoError(t, err)

	year := time.Now().Format("2006")
	assert.Equal(t, "POS-"+year+"-000001", first.SaleNumber)
	assert.Equal(t, "POS-"+year+"-000002", second.SaleNumber)
}
