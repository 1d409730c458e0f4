package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// ErrInvalidCatalog некорректные параметры каталога слотов
var ErrInvalidCatalog = errors.New("invalid slot catalog")

// SlotCatalog упорядоченный набор времён начала слотов рабочего дня.
// Каталог один на всех и не зависит от даты; прошедшие даты не имеют слотов.
type SlotCatalog struct {
	slots    []types.TimeString
	index    map[types.TimeString]struct{}
	duration int
	breaks   []types.TimeString
	loc      *time.Location
}

// NewSlotCatalog строит слоты от open с шагом stepMinutes; последний слот заканчивается не позже close.
// Слоты, начинающиеся в breaks, исключаются.
func NewSlotCatalog(open, close string, stepMinutes int, breaks []string, loc *time.Location) (*SlotCatalog, error) {
	if stepMinutes <= 0 {
		return nil, fmt.Errorf("%w: step must be positive, got %d", ErrInvalidCatalog, stepMinutes)
	}
	if loc == nil {
		loc = time.UTC
	}

	openTime, err := types.NewTimeStringFromString(open)
	if err != nil {
		return nil, fmt.Errorf("%w: open time: %v", ErrInvalidCatalog, err)
	}
	closeTime, err := types.NewTimeStringFromString(close)
	if err != nil {
		return nil, fmt.Errorf("%w: close time: %v", ErrInvalidCatalog, err)
	}
	if !openTime.IsBefore(closeTime) {
		return nil, fmt.Errorf("%w: open %s is not before close %s", ErrInvalidCatalog, openTime, closeTime)
	}

	skip := make(map[types.TimeString]struct{}, len(breaks))
	breakTimes := make([]types.TimeString, 0, len(breaks))
	for _, b := range breaks {
		bt, err := types.NewTimeStringFromString(b)
		if err != nil {
			return nil, fmt.Errorf("%w: break time: %v", ErrInvalidCatalog, err)
		}
		skip[bt] = struct{}{}
		breakTimes = append(breakTimes, bt)
	}

	c := &SlotCatalog{
		index:    make(map[types.TimeString]struct{}),
		duration: stepMinutes,
		breaks:   breakTimes,
		loc:      loc,
	}

	for m := openTime.Minutes(); m+stepMinutes <= closeTime.Minutes(); m += stepMinutes {
		slot := types.TimeString(fmt.Sprintf("%02d:%02d", m/60, m%60))
		if _, isBreak := skip[slot]; isBreak {
			continue
		}
		c.slots = append(c.slots, slot)
		c.index[slot] = struct{}{}
	}

	if len(c.slots) == 0 {
		return nil, fmt.Errorf("%w: no bookable slots between %s and %s", ErrInvalidCatalog, openTime, closeTime)
	}

	return c, nil
}

// DefaultSlotCatalog часовые слоты 08:00-18:00 с перерывом в 13:00
func DefaultSlotCatalog(loc *time.Location) *SlotCatalog {
	c, err := NewSlotCatalog(DefaultOpenTime, DefaultCloseTime, DefaultSlotDurationMinutes, []string{DefaultBreakTime}, loc)
	if err != nil {
		panic(err)
	}
	return c
}

// Location часовой пояс бизнеса
func (c *SlotCatalog) Location() *time.Location {
	return c.loc
}

// SlotDuration длительность слота в минутах
func (c *SlotCatalog) SlotDuration() int {
	return c.duration
}

// Breaks времена перерывов
func (c *SlotCatalog) Breaks() []types.TimeString {
	return append([]types.TimeString(nil), c.breaks...)
}

// All все слоты каталога без учёта даты
func (c *SlotCatalog) All() []types.TimeString {
	return append([]types.TimeString(nil), c.slots...)
}

// Today текущая календарная дата в часовом поясе бизнеса
func (c *SlotCatalog) Today(now time.Time) time.Time {
	return NormalizeDate(now.In(c.loc))
}

// SlotsFor слоты на дату; для даты раньше today - пустой список
func (c *SlotCatalog) SlotsFor(date, today time.Time) []types.TimeString {
	if NormalizeDate(date).Before(NormalizeDate(today)) {
		return nil
	}
	return c.All()
}

// IsValidSlot true, если t - слот каталога на дату
func (c *SlotCatalog) IsValidSlot(date, today time.Time, t types.TimeString) bool {
	if NormalizeDate(date).Before(NormalizeDate(today)) {
		return false
	}
	_, ok := c.index[t]
	return ok
}

// Contains true, если t - слот каталога (без учёта даты)
func (c *SlotCatalog) Contains(t types.TimeString) bool {
	_, ok := c.index[t]
	return ok
}

// ReservationDateTime момент начала бронирования в часовом поясе бизнеса
func ReservationDateTime(date time.Time, t types.TimeString, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return t.OnDate(date, loc)
}

// ParseDate разбирает YYYY-MM-DD в полночь UTC
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrValidation, s)
	}
	return d, nil
}

// ValidateBookable проверяет, что на слот можно записаться в момент now:
// дата не в прошлом, время есть в каталоге и слот сегодня ещё не начался.
func (c *SlotCatalog) ValidateBookable(date time.Time, slot types.TimeString, now time.Time) error {
	today := c.Today(now)
	day := NormalizeDate(date)

	if day.Before(today) {
		return fmt.Errorf("%w: %s", ErrPastDate, day.Format(DateFormat))
	}
	if !c.IsValidSlot(day, today, slot) {
		return fmt.Errorf("%w: %s", ErrUnknownSlot, slot)
	}
	if day.Equal(today) && !ReservationDateTime(day, slot, c.loc).After(now) {
		return fmt.Errorf("%w: %s %s", ErrSlotStarted, day.Format(DateFormat), slot)
	}
	return nil
}
