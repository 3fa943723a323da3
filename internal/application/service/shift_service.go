package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillpoint/tillpoint-api/internal/config"
	"github.com/tillpoint/tillpoint-api/internal/domain/entity"
	"github.com/tillpoint/tillpoint-api/internal/domain/enum"
	domainRepo "github.com/tillpoint/tillpoint-api/internal/domain/repository"
	"github.com/tillpoint/tillpoint-api/pkg/apperror"
)

// ShiftService manages the cash-drawer shift lifecycle: opening, attaching
// sales, and closing with reconciled totals. Depending on the configured
// mode, shifts are opened explicitly by the cashier, automatically on login,
// or lazily on the first sale.
type ShiftService struct {
	shiftRepo      domainRepo.ShiftRepository
	saleRepo       domainRepo.SaleRepository
	reconciliation *ReconciliationService
	cfg            config.ShiftConfig
	mode           enum.ShiftMode

	// now is swappable in tests
	now func() time.Time
}

// NewShiftService creates a new shift service
func NewShiftService(
	shiftRepo domainRepo.ShiftRepository,
	saleRepo domainRepo.SaleRepository,
	reconciliation *ReconciliationService,
	cfg config.ShiftConfig,
) *ShiftService {
	return &ShiftService{
		shiftRepo:      shiftRepo,
		saleRepo:       saleRepo,
		reconciliation: reconciliation,
		cfg:            cfg,
		mode:           enum.ParseShiftMode(cfg.Mode),
		now:            time.Now,
	}
}

// Mode returns the configured shift mode
func (s *ShiftService) Mode() enum.ShiftMode {
	return s.mode
}

// OpenShift opens a shift for the cashier with the counted starting cash.
// Returns ErrShiftAlreadyOpen when the cashier still has one open.
func (s *ShiftService) OpenShift(ctx context.Context, cashierID uuid.UUID, startingCash decimal.Decimal) (*entity.Shift, error) {
	existing, err := s.shiftRepo.GetOpenByCashier(ctx, cashierID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.ErrShiftAlreadyOpen
	}

	shift, err := s.createShift(ctx, cashierID, startingCash, false)
	if err != nil {
		if errors.Is(err, domainRepo.ErrDuplicateOpenShift) {
			return nil, apperror.ErrShiftAlreadyOpen
		}
		return nil, err
	}
	return shift, nil
}

// GetOrCreateShift resolves the shift a new sale belongs to. In manual mode
// it only looks up the cashier's open shift; whether a missing shift blocks
// the sale depends on RequireShiftForSales. The other modes open one on
// demand with the configured starting float.
func (s *ShiftService) GetOrCreateShift(ctx context.Context, cashierID uuid.UUID) (*entity.Shift, error) {
	shift, err := s.shiftRepo.GetOpenByCashier(ctx, cashierID)
	if err != nil {
		return nil, err
	}
	if shift != nil {
		return shift, nil
	}

	if s.mode == enum.ShiftModeManual {
		if s.cfg.RequireShiftForSales {
			return nil, apperror.ErrShiftRequired
		}
		return nil, nil
	}

	startingCash := decimal.NewFromFloat(s.cfg.DefaultStartingCash)
	shift, err = s.createShift(ctx, cashierID, startingCash, true)
	if err != nil {
		// Another request for the same cashier created the shift first.
		if errors.Is(err, domainRepo.ErrDuplicateOpenShift) {
			return s.shiftRepo.GetOpenByCashier(ctx, cashierID)
		}
		return nil, err
	}
	return shift, nil
}

// AutoOpenShiftOnLogin opens the day's shift for the first cashier logging
// in after the configured start time. Only active in automatic mode; any
// shift already opened today, by anyone, suppresses it.
func (s *ShiftService) AutoOpenShiftOnLogin(ctx context.Context, cashierID uuid.UUID) (*entity.Shift, error) {
	if s.mode != enum.ShiftModeAutomatic {
		return nil, nil
	}

	now := s.now()
	start, err := s.timeOfDayToday(now, s.cfg.DailyStartTime)
	if err != nil {
		return nil, err
	}
	if now.Before(start) {
		return nil, nil
	}

	opened, err := s.shiftRepo.ExistsOpenedOnDay(ctx, now)
	if err != nil {
		return nil, err
	}
	if opened {
		return nil, nil
	}

	startingCash := decimal.NewFromFloat(s.cfg.DefaultStartingCash)
	shift, err := s.createShift(ctx, cashierID, startingCash, true)
	if err != nil {
		if errors.Is(err, domainRepo.ErrDuplicateOpenShift) {
			return s.shiftRepo.GetOpenByCashier(ctx, cashierID)
		}
		return nil, err
	}
	return shift, nil
}

// CloseShift closes the shift with the cashier's counted drawer amount.
// Totals are recomputed from the persisted sales, never from in-memory
// state, and discrepancy = endingCash - (startingCash + cashSales).
func (s *ShiftService) CloseShift(ctx context.Context, shiftID, closedByID uuid.UUID, endingCash decimal.Decimal, notes *string) (*entity.Shift, error) {
	shift, err := s.shiftRepo.GetByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, apperror.NewNotFoundError("Shift")
	}
	if !shift.IsOpen() {
		return nil, apperror.ErrShiftNotOpen
	}

	totals, err := s.reconciliation.CalculateShiftTotals(ctx, shift.ID)
	if err != nil {
		return nil, err
	}

	s.applyTotals(shift, totals)
	shift.EndingCash = endingCash
	shift.Discrepancy = endingCash.Sub(shift.ExpectedCash)

	now := s.now()
	shift.Status = enum.ShiftStatusClosed
	shift.ClosedAt = &now
	shift.ClosedByID = &closedByID
	shift.Notes = notes

	if err := s.shiftRepo.Update(ctx, shift); err != nil {
		return nil, err
	}
	return shift, nil
}

// CloseShiftAutomatically closes a shift without a cashier count: the drawer
// is assumed to hold exactly the expected cash, so the discrepancy is zero.
// Already-closed shifts are left untouched.
func (s *ShiftService) CloseShiftAutomatically(ctx context.Context, shift *entity.Shift) error {
	if !shift.IsOpen() {
		return nil
	}

	totals, err := s.reconciliation.CalculateShiftTotals(ctx, shift.ID)
	if err != nil {
		return err
	}

	s.applyTotals(shift, totals)
	shift.EndingCash = shift.ExpectedCash
	shift.Discrepancy = decimal.Zero

	now := s.now()
	shift.Status = enum.ShiftStatusClosed
	shift.ClosedAt = &now
	shift.AutoClosed = true

	return s.shiftRepo.Update(ctx, shift)
}

// AutoCloseShifts sweeps open shifts after the configured end of day.
// Active only in automatic mode. A shift that fails to close is logged and
// skipped so the rest of the sweep still runs.
func (s *ShiftService) AutoCloseShifts(ctx context.Context) error {
	if s.mode != enum.ShiftModeAutomatic {
		return nil
	}

	now := s.now()
	end, err := s.timeOfDayToday(now, s.cfg.DailyEndTime)
	if err != nil {
		return err
	}
	if now.Before(end) {
		return nil
	}

	shifts, err := s.shiftRepo.ListOpen(ctx)
	if err != nil {
		return err
	}

	for i := range shifts {
		shift := &shifts[i]
		if !shift.OpenedAt.Before(end) {
			continue
		}
		if err := s.CloseShiftAutomatically(ctx, shift); err != nil {
			log.Printf("auto-close: failed to close shift %s: %v", shift.ShiftNumber, err)
		}
	}
	return nil
}

// CloseInactiveShifts closes open shifts that have seen no sales for the
// given timeout. Active only in on-demand mode. A shift with no sales at
// all counts as inactive once its opening time itself is past the cutoff.
func (s *ShiftService) CloseInactiveShifts(ctx context.Context, timeout time.Duration) error {
	if s.mode != enum.ShiftModeOnDemand {
		return nil
	}

	cutoff := s.now().Add(-timeout)

	shifts, err := s.shiftRepo.ListOpen(ctx)
	if err != nil {
		return err
	}

	for i := range shifts {
		shift := &shifts[i]
		if !shift.OpenedAt.Before(cutoff) {
			continue
		}

		last, err := s.saleRepo.LatestSaleTime(ctx, shift.ID)
		if err != nil {
			log.Printf("inactivity-close: failed to read sales for shift %s: %v", shift.ShiftNumber, err)
			continue
		}
		if last != nil && !last.Before(cutoff) {
			continue
		}

		if err := s.CloseShiftAutomatically(ctx, shift); err != nil {
			log.Printf("inactivity-close: failed to close shift %s: %v", shift.ShiftNumber, err)
		}
	}
	return nil
}

// GetShift retrieves a shift by its ID
func (s *ShiftService) GetShift(ctx context.Context, id uuid.UUID) (*entity.Shift, error) {
	shift, err := s.shiftRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, apperror.NewNotFoundError("Shift")
	}
	return shift, nil
}

// GetCurrentShift returns the cashier's open shift, or nil if none exists
func (s *ShiftService) GetCurrentShift(ctx context.Context, cashierID uuid.UUID) (*entity.Shift, error) {
	return s.shiftRepo.GetOpenByCashier(ctx, cashierID)
}

// ListShifts retrieves shifts with filtering and pagination
func (s *ShiftService) ListShifts(ctx context.Context, params *domainRepo.ShiftFilterParams) ([]entity.Shift, int64, error) {
	return s.shiftRepo.List(ctx, params)
}

// GetShiftTotals recomputes the shift's totals from its sales without
// closing it; used for the mid-shift X report.
func (s *ShiftService) GetShiftTotals(ctx context.Context, shiftID uuid.UUID) (*ShiftTotals, error) {
	shift, err := s.shiftRepo.GetByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, apperror.NewNotFoundError("Shift")
	}
	return s.reconciliation.CalculateShiftTotals(ctx, shiftID)
}

func (s *ShiftService) createShift(ctx context.Context, cashierID uuid.UUID, startingCash decimal.Decimal, autoOpened bool) (*entity.Shift, error) {
	now := s.now()

	number, err := s.generateShiftNumber(ctx, now)
	if err != nil {
		return nil, err
	}

	shift := &entity.Shift{
		ShiftNumber:  number,
		CashierID:    cashierID,
		Status:       enum.ShiftStatusOpen,
		StartingCash: startingCash,
		AutoOpened:   autoOpened,
		OpenedAt:     now,
	}
	if err := s.shiftRepo.Create(ctx, shift); err != nil {
		return nil, err
	}
	return shift, nil
}

// generateShiftNumber builds numbers like SH-20260830-001, sequenced per day
func (s *ShiftService) generateShiftNumber(ctx context.Context, day time.Time) (string, error) {
	count, err := s.shiftRepo.CountForDay(ctx, day)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SH-%s-%03d", day.Format("20060102"), count+1), nil
}

func (s *ShiftService) applyTotals(shift *entity.Shift, totals *ShiftTotals) {
	shift.CashSales = totals.CashSales
	shift.CardSales = totals.CardSales
	shift.MobileSales = totals.MobileSales
	shift.SplitSales = totals.SplitSales
	shift.TotalSales = totals.TotalSales
	shift.TotalTips = totals.TotalTips
	shift.TotalServiceCharges = totals.TotalServiceCharges
	shift.TotalDiscounts = totals.TotalDiscounts
	shift.TotalTax = totals.TotalTax
	shift.TotalTransactions = totals.TotalTransactions
	shift.RefundCount = totals.RefundCount
	shift.VoidCount = totals.VoidCount
	shift.ExpectedCash = shift.StartingCash.Add(totals.CashSales)
}

// timeOfDayToday anchors an "HH:MM" config value to today's date in local time.
func (s *ShiftService) timeOfDayToday(now time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid shift time %q: %w", hhmm, err)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
}
