package get_month_view

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// UseCase календарь месяца: бронирования по дням и заполненность каждого дня
type UseCase struct {
	repo         ReservationRepository
	catalog      *domain.SlotCatalog
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(repo ReservationRepository, catalog *domain.SlotCatalog, logger Logger) *UseCase {
	return &UseCase{
		repo:         repo,
		catalog:      catalog,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute собирает месяц одним запросом к хранилищу.
// Занятость дня считается той же функцией, что и дневная доступность.
func (uc *UseCase) Execute(ctx context.Context, req Request) (*MonthView, error) {
	if req.Month < 1 || req.Month > 12 {
		return nil, ErrInvalidMonth
	}
	if req.Year < minYear || req.Year > maxYear {
		return nil, ErrInvalidYear
	}

	first := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	reservations, err := uc.repo.List(ctx, domain.ReservationFilter{
		StartDate:       &first,
		EndDate:         &last,
		IncludeInactive: true,
	})
	if err != nil {
		uc.logger.Error("GetMonthView: repository error for %d-%02d: %v", req.Year, req.Month, err)
		return nil, fmt.Errorf("%w: GetMonthView - repository error: %v", domain.ErrInternal, err)
	}

	byDay := make(map[time.Time][]*domain.Reservation)
	for _, r := range reservations {
		d := domain.NormalizeDate(r.Date)
		byDay[d] = append(byDay[d], r)
	}

	today := uc.catalog.Today(uc.timeProvider.Now())
	view := &MonthView{
		Year:  req.Year,
		Month: time.Month(req.Month),
		Days:  make([]DayView, 0, last.Day()),
	}

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		dayReservations := byDay[d]

		listed := make([]*domain.Reservation, 0, len(dayReservations))
		for _, r := range dayReservations {
			if req.IncludeInactive || r.Status.IsActive() {
				listed = append(listed, r)
			}
		}

		view.Days = append(view.Days, DayView{
			Date:         d,
			Reservations: listed,
			Availability: domain.BuildDayAvailability(d, uc.catalog.SlotsFor(d, today), dayReservations),
		})
	}

	uc.logger.Info("GetMonthView: %d-%02d built from %d reservations", req.Year, req.Month, len(reservations))
	return view, nil
}
