package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillpoint/tillpoint-api/internal/domain/entity"
	"github.com/tillpoint/tillpoint-api/internal/domain/enum"
	domainRepo "github.com/tillpoint/tillpoint-api/internal/domain/repository"
	"github.com/tillpoint/tillpoint-api/pkg/pagination"
)

// memStore is a shared in-memory backing store for the fake repositories.
// Its transaction manager snapshots the whole store before running a unit
// of work and restores the snapshot on error, mirroring rollback semantics.
type memStore struct {
	sales       map[uuid.UUID]*entity.Sale
	refunds     []entity.Refund
	shifts      map[uuid.UUID]*entity.Shift
	products    map[uuid.UUID]*entity.Product
	ingredients map[uuid.UUID]*entity.Ingredient
	customers   map[uuid.UUID]*entity.Customer
	tickets     []entity.KitchenTicket

	// failures maps "repo.Method" keys to injected errors
	failures map[string]error

	clock func() time.Time
}

func newMemStore() *memStore {
	return &memStore{
		sales:       make(map[uuid.UUID]*entity.Sale),
		shifts:      make(map[uuid.UUID]*entity.Shift),
		products:    make(map[uuid.UUID]*entity.Product),
		ingredients: make(map[uuid.UUID]*entity.Ingredient),
		customers:   make(map[uuid.UUID]*entity.Customer),
		failures:    make(map[string]error),
		clock:       time.Now,
	}
}

func (s *memStore) fail(op string) error {
	return s.failures[op]
}

func copySale(src *entity.Sale) *entity.Sale {
	dst := *src
	dst.Items = append([]entity.SaleItem(nil), src.Items...)
	dst.Payments = append([]entity.SalePayment(nil), src.Payments...)
	return &dst
}

func copyShift(src *entity.Shift) *entity.Shift {
	dst := *src
	return &dst
}

func (s *memStore) snapshot() *memStore {
	snap := newMemStore()
	snap.clock = s.clock
	snap.failures = s.failures
	for id, sale := range s.sales {
		snap.sales[id] = copySale(sale)
	}
	snap.refunds = append([]entity.Refund(nil), s.refunds...)
	for id, shift := range s.shifts {
		snap.shifts[id] = copyShift(shift)
	}
	for id, p := range s.products {
		cp := *p
		snap.products[id] = &cp
	}
	for id, ing := range s.ingredients {
		cp := *ing
		snap.ingredients[id] = &cp
	}
	for id, c := range s.customers {
		cp := *c
		snap.customers[id] = &cp
	}
	snap.tickets = append([]entity.KitchenTicket(nil), s.tickets...)
	return snap
}

func (s *memStore) restore(snap *memStore) {
	s.sales = snap.sales
	s.refunds = snap.refunds
	s.shifts = snap.shifts
	s.products = snap.products
	s.ingredients = snap.ingredients
	s.customers = snap.customers
	s.tickets = snap.tickets
}

// memTxManager implements TxManager with snapshot/restore rollback
type memTxManager struct {
	store *memStore
}

func (m *memTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// --- sale repository ---

type fakeSaleRepo struct {
	store *memStore
}

func (r *fakeSaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	if err := r.store.fail("sale.Create"); err != nil {
		return err
	}
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = r.store.clock()
	}
	for i := range sale.Items {
		if sale.Items[i].ID == uuid.Nil {
			sale.Items[i].ID = uuid.New()
		}
		sale.Items[i].SaleID = sale.ID
	}
	for i := range sale.Payments {
		if sale.Payments[i].ID == uuid.Nil {
			sale.Payments[i].ID = uuid.New()
		}
		sale.Payments[i].SaleID = sale.ID
	}
	r.store.sales[sale.ID] = copySale(sale)
	return nil
}

func (r *fakeSaleRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, ok := r.store.sales[id]
	if !ok {
		return nil, nil
	}
	return copySale(sale), nil
}

func (r *fakeSaleRepo) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeSaleRepo) List(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	var out []entity.Sale
	for _, sale := range r.store.sales {
		out = append(out, *copySale(sale))
	}
	return out, int64(len(out)), nil
}

func (r *fakeSaleRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.SaleStatus) error {
	sale, ok := r.store.sales[id]
	if !ok {
		return nil
	}
	sale.Status = status
	return nil
}

func (r *fakeSaleRepo) CountForYear(ctx context.Context, year int) (int64, error) {
	var n int64
	for _, sale := range r.store.sales {
		if sale.CreatedAt.Year() == year {
			n++
		}
	}
	return n, nil
}

func (r *fakeSaleRepo) ListByShiftAndStatus(ctx context.Context, shiftID uuid.UUID, status enum.SaleStatus) ([]entity.Sale, error) {
	var out []entity.Sale
	for _, sale := range r.store.sales {
		if sale.ShiftID != nil && *sale.ShiftID == shiftID && sale.Status == status {
			out = append(out, *copySale(sale))
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) CountByShiftAndStatus(ctx context.Context, shiftID uuid.UUID, status enum.SaleStatus) (int64, error) {
	sales, err := r.ListByShiftAndStatus(ctx, shiftID, status)
	if err != nil {
		return 0, err
	}
	return int64(len(sales)), nil
}

func (r *fakeSaleRepo) LatestSaleTime(ctx context.Context, shiftID uuid.UUID) (*time.Time, error) {
	var latest *time.Time
	for _, sale := range r.store.sales {
		if sale.ShiftID == nil || *sale.ShiftID != shiftID {
			continue
		}
		t := sale.CreatedAt
		if latest == nil || t.After(*latest) {
			latest = &t
		}
	}
	return latest, nil
}

func (r *fakeSaleRepo) CreateRefund(ctx context.Context, refund *entity.Refund) error {
	if err := r.store.fail("sale.CreateRefund"); err != nil {
		return err
	}
	if refund.ID == uuid.Nil {
		refund.ID = uuid.New()
	}
	r.store.refunds = append(r.store.refunds, *refund)
	return nil
}

// --- shift repository ---

type fakeShiftRepo struct {
	store *memStore
}

func (r *fakeShiftRepo) Create(ctx context.Context, shift *entity.Shift) error {
	if err := r.store.fail("shift.Create"); err != nil {
		return err
	}
	for _, existing := range r.store.shifts {
		if existing.CashierID == shift.CashierID && existing.Status == enum.ShiftStatusOpen {
			return domainRepo.ErrDuplicateOpenShift
		}
	}
	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}
	r.store.shifts[shift.ID] = copyShift(shift)
	return nil
}

func (r *fakeShiftRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Shift, error) {
	shift, ok := r.store.shifts[id]
	if !ok {
		return nil, nil
	}
	return copyShift(shift), nil
}

func (r *fakeShiftRepo) GetOpenByCashier(ctx context.Context, cashierID uuid.UUID) (*entity.Shift, error) {
	for _, shift := range r.store.shifts {
		if shift.CashierID == cashierID && shift.Status == enum.ShiftStatusOpen {
			return copyShift(shift), nil
		}
	}
	return nil, nil
}

func (r *fakeShiftRepo) ListOpen(ctx context.Context) ([]entity.Shift, error) {
	var out []entity.Shift
	for _, shift := range r.store.shifts {
		if shift.Status == enum.ShiftStatusOpen {
			out = append(out, *copyShift(shift))
		}
	}
	return out, nil
}

func (r *fakeShiftRepo) List(ctx context.Context, params *domainRepo.ShiftFilterParams) ([]entity.Shift, int64, error) {
	var out []entity.Shift
	for _, shift := range r.store.shifts {
		out = append(out, *copyShift(shift))
	}
	return out, int64(len(out)), nil
}

func (r *fakeShiftRepo) Update(ctx context.Context, shift *entity.Shift) error {
	if err := r.store.fail("shift.Update"); err != nil {
		return err
	}
	r.store.shifts[shift.ID] = copyShift(shift)
	return nil
}

func (r *fakeShiftRepo) IncrementCounters(ctx context.Context, id uuid.UUID, saleTotal decimal.Decimal, transactions int) error {
	if err := r.store.fail("shift.IncrementCounters"); err != nil {
		return err
	}
	shift, ok := r.store.shifts[id]
	if !ok {
		return nil
	}
	shift.TotalSales = shift.TotalSales.Add(saleTotal)
	shift.TotalTransactions += transactions
	return nil
}

func (r *fakeShiftRepo) CountForDay(ctx context.Context, day time.Time) (int64, error) {
	var n int64
	for _, shift := range r.store.shifts {
		if sameDay(shift.OpenedAt, day) {
			n++
		}
	}
	return n, nil
}

func (r *fakeShiftRepo) ExistsOpenedOnDay(ctx context.Context, day time.Time) (bool, error) {
	n, err := r.CountForDay(ctx, day)
	return n > 0, err
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// --- product repository ---

type fakeProductRepo struct {
	store *memStore
}

func (r *fakeProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	cp := *product
	r.store.products[product.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	cp := *product
	return &cp, nil
}

func (r *fakeProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	for _, product := range r.store.products {
		if product.Code == code {
			cp := *product
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetForSale(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeProductRepo) Update(ctx context.Context, product *entity.Product) error {
	cp := *product
	r.store.products[product.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.store.products, id)
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	var out []entity.Product
	for _, product := range r.store.products {
		if params != nil && params.Search != "" && !strings.Contains(strings.ToLower(product.Name), strings.ToLower(params.Search)) {
			continue
		}
		out = append(out, *product)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	var out []entity.Product
	for _, product := range r.store.products {
		if product.Quantity <= product.QuantityAlert {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	if err := r.store.fail("product.AdjustStock"); err != nil {
		return err
	}
	product, ok := r.store.products[id]
	if !ok {
		return nil
	}
	product.Quantity += delta
	return nil
}

// --- ingredient repository ---

type fakeIngredientRepo struct {
	store *memStore
}

func (r *fakeIngredientRepo) Create(ctx context.Context, ingredient *entity.Ingredient) error {
	if ingredient.ID == uuid.Nil {
		ingredient.ID = uuid.New()
	}
	cp := *ingredient
	r.store.ingredients[ingredient.ID] = &cp
	return nil
}

func (r *fakeIngredientRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Ingredient, error) {
	ingredient, ok := r.store.ingredients[id]
	if !ok {
		return nil, nil
	}
	cp := *ingredient
	return &cp, nil
}

func (r *fakeIngredientRepo) Update(ctx context.Context, ingredient *entity.Ingredient) error {
	cp := *ingredient
	r.store.ingredients[ingredient.ID] = &cp
	return nil
}

func (r *fakeIngredientRepo) List(ctx context.Context) ([]entity.Ingredient, error) {
	var out []entity.Ingredient
	for _, ingredient := range r.store.ingredients {
		out = append(out, *ingredient)
	}
	return out, nil
}

func (r *fakeIngredientRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	if err := r.store.fail("ingredient.AdjustStock"); err != nil {
		return err
	}
	ingredient, ok := r.store.ingredients[id]
	if !ok {
		return nil
	}
	ingredient.Stock = ingredient.Stock.Add(delta)
	return nil
}

// --- customer repository ---

type fakeCustomerRepo struct {
	store *memStore
}

func (r *fakeCustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	cp := *customer
	r.store.customers[customer.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, ok := r.store.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *customer
	return &cp, nil
}

func (r *fakeCustomerRepo) Update(ctx context.Context, customer *entity.Customer) error {
	cp := *customer
	r.store.customers[customer.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.store.customers, id)
	return nil
}

func (r *fakeCustomerRepo) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	var out []entity.Customer
	for _, customer := range r.store.customers {
		out = append(out, *customer)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCustomerRepo) AdjustLoyaltyPoints(ctx context.Context, id uuid.UUID, delta int) error {
	if err := r.store.fail("customer.AdjustLoyaltyPoints"); err != nil {
		return err
	}
	customer, ok := r.store.customers[id]
	if !ok {
		return nil
	}
	customer.LoyaltyPoints += delta
	return nil
}

// --- kitchen ticket repository ---

type fakeTicketRepo struct {
	store *memStore
}

func (r *fakeTicketRepo) CreateBatch(ctx context.Context, tickets []entity.KitchenTicket) error {
	if err := r.store.fail("ticket.CreateBatch"); err != nil {
		return err
	}
	for i := range tickets {
		if tickets[i].ID == uuid.Nil {
			tickets[i].ID = uuid.New()
		}
	}
	r.store.tickets = append(r.store.tickets, tickets...)
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.KitchenTicket, error) {
	for i := range r.store.tickets {
		if r.store.tickets[i].ID == id {
			cp := r.store.tickets[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTicketRepo) List(ctx context.Context, params *domainRepo.KitchenTicketFilterParams) ([]entity.KitchenTicket, error) {
	var out []entity.KitchenTicket
	for _, ticket := range r.store.tickets {
		if params.StationID != nil && ticket.StationID != *params.StationID {
			continue
		}
		if params.Status != nil && ticket.Status != *params.Status {
			continue
		}
		if params.SaleID != nil && ticket.SaleID != *params.SaleID {
			continue
		}
		out = append(out, ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.TicketStatus) error {
	for i := range r.store.tickets {
		if r.store.tickets[i].ID == id {
			r.store.tickets[i].Status = status
		}
	}
	return nil
}
