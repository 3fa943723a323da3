package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tillpoint/tillpoint-api/internal/config"
	"github.com/tillpoint/tillpoint-api/internal/domain/entity"
	"github.com/tillpoint/tillpoint-api/internal/domain/enum"
	"github.com/tillpoint/tillpoint-api/pkg/apperror"
)

type shiftFixture struct {
	store    *memStore
	saleRepo *fakeSaleRepo
	svc      *ShiftService
	now      time.Time
}

func newShiftFixture(t *testing.T, cfg config.ShiftConfig) *shiftFixture {
	t.Helper()
	store := newMemStore()
	saleRepo := &fakeSaleRepo{store: store}
	shiftRepo := &fakeShiftRepo{store: store}
	reconciliation := NewReconciliationService(saleRepo)
	svc := NewShiftService(shiftRepo, saleRepo, reconciliation, cfg)

	f := &shiftFixture{
		store:    store,
		saleRepo: saleRepo,
		svc:      svc,
		now:      time.Date(2026, 8, 30, 12, 0, 0, 0, time.Local),
	}
	svc.now = func() time.Time { return f.now }
	store.clock = svc.now
	return f
}

func shiftConfig(mode string) config.ShiftConfig {
	return config.ShiftConfig{
		Mode:                     mode,
		DefaultStartingCash:      100,
		DailyStartTime:           "08:00",
		DailyEndTime:             "23:00",
		InactivityTimeoutMinutes: 120,
	}
}

// addSale writes a completed sale with one payment row straight to the store
func (f *shiftFixture) addSale(shiftID uuid.UUID, method enum.PaymentMethod, total string, at time.Time) *entity.Sale {
	sale := &entity.Sale{
		ID:         uuid.New(),
		SaleNumber: "POS-2026-" + uuid.NewString()[:6],
		CashierID:  uuid.New(),
		ShiftID:    &shiftID,
		Status:     enum.SaleStatusCompleted,
		Total:      dec(total),
		CreatedAt:  at,
		Payments: []entity.SalePayment{
			{ID: uuid.New(), Method: method, Amount: dec(total)},
		},
	}
	f.store.sales[sale.ID] = sale
	return sale
}

func TestOpenShift_NumbersSequencePerDay(t *testing.T) {
	f := newShiftFixture(t, shiftConfig("manual"))

	first, err := f.svc.OpenShift(context.Background(), uuid.New(), dec("100.00"))
	require.NoError(t, err)
	second, err := f.svc.OpenShift(context.Background(), uuid.New(), dec("50.00"))
	require.NoError(t, err)

	assert.Equal(t, "SH-20260830-001", first.ShiftNumber)
	assert.Equal(t, "SH-20260830-002", second.ShiftNumber)
	assert.False(t, first.AutoOpened)
	assert.Equal(t, enum.ShiftStatusOpen, first.Status)
}

func TestOpenShift_SecondOpenForSameCashierRejected(t *testing.T) {
	f := newShiftFixture(t, shiftConfig("manual"))
	cashierID := uuid.New()

	_, err := f.svc.OpenShift(context.Background(), cashierID, dec("100.00"))
	require.NoError(t, err)

	_, err = f.svc.OpenShift(context.Background(), cashierID, dec("100.00"))
	require.ErrorIs(t, err, apperror.ErrShiftAlreadyOpen)
	assert.Len(t, f.store.shifts, 1)
}

func TestGetOrCreateShift_ManualReturnsNilWithoutRequirement(t *testing.T) {
	f := newShiftFixture(t, shiftConfig("manual"))

	shift, err := f.svc.GetOrCreateShift(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, shift)
}

func TestGetOrCreateShift_ManualRequiredRejects(t *testing.T) {
	cfg := shiftConfig("manual")
	cfg.RequireShiftForSales = true
	f := newShiftFixture(t, cfg)

	_, err := f.svc.GetOrCreateShift(context.Background(), uuid.New())
	require.ErrorIs(t, err, apperror.ErrShiftRequired)
}

func TestGetOrCreateShift_OnDemandAutoOpens(t *testing.T) {
	f := newShiftFixture(t, shiftConfig("on_demand"))
	cashierID := uuid.New()

	shift, err := f.svc.GetOrCreateShift(context.Background(), cashierID)
	require.NoError(t, err)
	require.NotNil(t, shift)
	assert.True(t, shift.AutoOpened)
	assertDecimal(t, "100", shift.StartingCash)

	// second call reuses the open shift
	again, err := f.svc.GetOrCreateShift(context.Background(), cashierID)
	require.NoError(t, err)
	assert.Equal(t, shift.ID, again.ID)
	assert.Len(t, f.store.shifts, 1)
}

func TestGetOrCreateShift_LostCreateRaceReadsWinner(t *testing.T) {
	f := newShiftFixture(t, shiftConfig("on_demand"))
	cashierID := uuid.New()

	// winner's shift already exists; force Create to report the unique
	// violation the way the storage layer would under a true race
	winner := &entity.Shift{
		ID:        uuid.New(),
		CashierID: cashierID,
		Status:    enum.ShiftStatusOpen,
		OpenedAt:  f.now,
	}
	f.store.shifts[winner.ID] = winner

	shift, err := f.svc.GetOrCreateShift(context.Background(), cashierID)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, shift.ID)
}

func TestAutoOpenShiftOnLogin(t *testing.T) {
	f := newShiftFixture(t, shiftConfig("automatic"))
	cashierID := uuid.New()

	t.Run("before daily start time does nothing", func(t *testing.T) {
		f.now = time.Date(2026, 8, 30, 7, 30, 0, 0, time.Local)
		shift, err := f.svc.AutoOpenShiftOnLogin(context.Background(), cashierID)
		require.NoError(t, err)
		assert.Nil(t, shift)
	})

	t.Run("first login after start opens the day's shift", func(t *testing.T) {
		f.now = time.Date(2026, 8, 30, 8, 5, 0, 0, time.Local)
		shift, err := f.svc.AutoOpenShiftOnLogin(context.Background(), cashierID)
		require.NoError(t, err)
		require.NotNil(t, shift)
		assert.True(t, shift.AutoOpened)
	})

	t.Run("later logins are suppressed by the existing shift", func(t *testing.T) {
		f.now = time.Date(2026, 8, 30, 9, 0, 0, 0, time.Local)
		shift, err := f.svc.AutoOpenShiftOnLogin(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Nil(t, shift)
		assert.Len(t, f.store.shifts, 1)
	})
}

func TestAutoOpenShiftOnLogin_InertOutsideAutomaticMode(t *testing.T) {
	f := newShiftFixture(t, shiftConfig("hybrid"))

	shift, err := f.svc.AutoOpenShiftOnLogin(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, shift)
	assert.Empty(t, f.store.shifts)
}

func TestCloseShift_ReconcilesTotalsAndDiscrepancy(t *testing.T) {
	f := newShiftFixture(t, shiftConfig("manual"))
	cashierID := uuid.New()

	shift, err := f.svc.OpenShift(context.Background(), cashierID, dec("100.00"))
	require.NoError(t, err)

	f.addSale(shift.ID, enum.PaymentMethodCash, "30.00", f.now)
	f.addSale(shift.ID, enum.PaymentMethodCash, "20.00", f.now)
	f.addSale(shift.ID, enum.PaymentMethodCard, "45.00", f.now)

	// drawer counted 10 short of the expected 150
	notes := "till drawer stuck"
	closed, err := f.svc.CloseShift(context.Background(), shift.ID, cashierID, dec("140.00"), &notes)
	require.NoError(t, err)

	assert.Equal(t, enum.ShiftStatusClosed, closed.Status)
	assertDecimal(t, "50.00", closed.CashSales)
	assertDecimal(t, "45.00", closed.CardSales)
	assertDecimal(t, "150.00", closed.ExpectedCash)
	assertDecimal(t, "-10.00", closed.Discrepancy)
	assertDecimal(t, "95.00", closed.TotalSales)
	assert.Equal(t, 3, closed.TotalTransactions)
	require.NotNil(t, closed.ClosedAt)
	require.NotNil(t, closed.Notes)
	assert.Equal(t, "till drawer stuck", *closed.Notes)
	assert.False(t, closed.AutoClosed)
}

func TestCloseShift_AlreadyClosedRejected(t *testing.T) {
	f := newShiftFixture(t, shiftConfig("manual"))
	cashierID := uuid.New()

	shift, err := f.svc.OpenShift(context.Background(), cashierID, dec("100.00"))
	require.NoError(t, err)
	_, err = f.svc.CloseShift(context.Background(), shift.ID, cashierID, dec("100.00"), nil)
	require.NoError(t, err)

	_, err = f.svc.CloseShift(context.Background(), shift.ID, cashierID, dec("100.00"), nil)
	require.ErrorIs(t, err, apperror.ErrShiftNotOpen)
}

func TestCloseShift_UnknownShift(t *testing.T) {
	f := newShiftFixture(t, shiftConfig("manual"))

	_, err := f.svc.CloseShift(context.Background(), uuid.New(), uuid.New(), dec("0"), nil)
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestCloseShiftAutomatically_AssumesExpectedDrawer(t *testing.T) {
	f := newShiftFixture(t, shiftConfig("automatic"))
	cashierID := uuid.New()

	shift, err := f.svc.OpenShift(context.Background(), cashierID, dec("100.00"))
	require.NoError(t, err)
	f.addSale(shift.ID, enum.PaymentMethodCash, "25.00", f.now)

	stored := f.store.shifts[shift.ID]
	require.NoError(t, f.svc.CloseShiftAutomatically(context.Background(), stored))

	closed := f.store.shifts[shift.ID]
	assert.Equal(t, enum.ShiftStatusClosed, closed.Status)
	assertDecimal(t, "125.00", closed.ExpectedCash)
	assertDecimal(t, "125.00", closed.EndingCash)
	assertDecimal(t, "0", closed.Discrepancy)
	assert.True(t, closed.AutoClosed)
}

func TestCloseShiftAutomatically_SkipsClosedShift(t *testing.T) {
	f := newShiftFixture(t, shiftConfig("automatic"))
	closedAt := f.now.Add(-time.Hour)
	shift := &entity.Shift{
		ID:        uuid.New(),
		CashierID: uuid.New(),
		Status:    enum.ShiftStatusClosed,
		ClosedAt:  &closedAt,
		OpenedAt:  f.now.Add(-8 * time.Hour),
	}
	f.store.shifts[shift.ID] = shift

	require.NoError(t, f.svc.CloseShiftAutomatically(context.Background(), copyShift(shift)))
	assert.Equal(t, closedAt, *f.store.shifts[shift.ID].ClosedAt, "closed shift must stay untouched")
}

func TestAutoCloseShifts_AfterEndOfDay(t *testing.T) {
	f := newShiftFixture(t, shiftConfig("automatic"))

	// opened during the day
	early, err := f.svc.OpenShift(context.Background(), uuid.New(), dec("100.00"))
	require.NoError(t, err)

	// sweep runs past the configured 23:00 end time
	f.now = time.Date(2026, 8, 30, 23, 5, 0, 0, time.Local)

	// opened after the end time, must survive the sweep
	late, err := f.svc.OpenShift(context.Background(), uuid.New(), dec("50.00"))
	require.NoError(t, err)

	require.NoError(t, f.svc.AutoCloseShifts(context.Background()))

	assert.Equal(t, enum.ShiftStatusClosed, f.store.shifts[early.ID].Status)
	assert.True(t, f.store.shifts[early.ID].AutoClosed)
	assert.Equal(t, enum.ShiftStatusOpen, f.store.shifts[late.ID].Status)
}

func TestAutoCloseShifts_BeforeEndOfDayDoesNothing(t *testing.T) {
	f := newShiftFixture(t, shiftConfig("automatic"))
	shift, err := f.svc.OpenShift(context.Background(), uuid.New(), dec("100.00"))
	require.NoError(t, err)

	require.NoError(t, f.svc.AutoCloseShifts(context.Background()))
	assert.Equal(t, enum.ShiftStatusOpen, f.store.shifts[shift.ID].Status)
}

func TestAutoCloseShifts_InertOutsideAutomaticMode(t *testing.T) {
	f := newShiftFixture(t, shiftConfig("manual"))
	shift, err := f.svc.OpenShift(context.Background(), uuid.New(), dec("100.00"))
	require.NoError(t, err)

	f.now = time.Date(2026, 8, 30, 23, 30, 0, 0, time.Local)
	require.NoError(t, f.svc.AutoCloseShifts(context.Background()))
	assert.Equal(t, enum.ShiftStatusOpen, f.store.shifts[shift.ID].Status)
}

func TestAutoCloseShifts_SweepSurvivesPerShiftFailures(t *testing.T) {
	f := newShiftFixture(t, shiftConfig("automatic"))
	shift, err := f.svc.OpenShift(context.Background(), uuid.New(), dec("100.00"))
	require.NoError(t, err)

	f.now = time.Date(2026, 8, 30, 23, 5, 0, 0, time.Local)
	f.store.failures["shift.Update"] = errors.New("connection reset")

	// failures are logged per shift, never surfaced from the sweep
	require.NoError(t, f.svc.AutoCloseShifts(context.Background()))
	assert.Equal(t, enum.ShiftStatusOpen, f.store.shifts[shift.ID].Status)
}

func TestCloseInactiveShifts(t *testing.T) {
	f := newShiftFixture(t, shiftConfig("on_demand"))
	timeout := 2 * time.Hour

	// active shift: last sale 10 minutes ago
	active, err := f.svc.GetOrCreateShift(context.Background(), uuid.New())
	require.NoError(t, err)
	f.store.shifts[active.ID].OpenedAt = f.now.Add(-5 * time.Hour)
	f.addSale(active.ID, enum.PaymentMethodCash, "10.00", f.now.Add(-10*time.Minute))

	// stale shift: last sale 3 hours ago
	stale, err := f.svc.GetOrCreateShift(context.Background(), uuid.New())
	require.NoError(t, err)
	f.store.shifts[stale.ID].OpenedAt = f.now.Add(-5 * time.Hour)
	f.addSale(stale.ID, enum.PaymentMethodCash, "10.00", f.now.Add(-3*time.Hour))

	// zero-sale shift opened long ago
	abandoned, err := f.svc.GetOrCreateShift(context.Background(), uuid.New())
	require.NoError(t, err)
	f.store.shifts[abandoned.ID].OpenedAt = f.now.Add(-4 * time.Hour)

	// zero-sale shift opened just now must not be reaped
	fresh, err := f.svc.GetOrCreateShift(context.Background(), uuid.New())
	require.NoError(t, err)

	require.NoError(t, f.svc.CloseInactiveShifts(context.Background(), timeout))

	assert.Equal(t, enum.ShiftStatusOpen, f.store.shifts[active.ID].Status)
	assert.Equal(t, enum.ShiftStatusClosed, f.store.shifts[stale.ID].Status)
	assert.True(t, f.store.shifts[stale.ID].AutoClosed)
	assert.Equal(t, enum.ShiftStatusClosed, f.store.shifts[abandoned.ID].Status)
	assert.Equal(t, enum.ShiftStatusOpen, f.store.shifts[fresh.ID].Status)
}

func TestCloseInactiveShifts_InertOutsideOnDemandMode(t *testing.T) {
	f := newShiftFixture(t, shiftConfig("automatic"))
	shift, err := f.svc.OpenShift(context.Background(), uuid.New(), dec("100.00"))
	require.NoError(t, err)
	f.store.shifts[shift.ID].OpenedAt = f.now.Add(-6 * time.Hour)

	require.NoError(t, f.svc.CloseInactiveShifts(context.Background(), 2*time.Hour))
	assert.Equal(t, enum.ShiftStatusOpen, f.store.shifts[shift.ID].Status)
}
