package domain

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// DayState заполненность дня
type DayState string

const (
	DayEmpty       DayState = "empty"
	DayPartial     DayState = "partial"
	DayFull        DayState = "full"
	DayUnavailable DayState = "unavailable" // на дату нет слотов
)

// SlotState занятость одного слота
type SlotState struct {
	Time     types.TimeString
	Occupied bool
}

// DayAvailability занятость слотов на дату
type DayAvailability struct {
	Date     time.Time
	Slots    []SlotState
	Total    int
	Occupied int
	State    DayState
}

// Free количество свободных слотов
func (d DayAvailability) Free() int {
	return d.Total - d.Occupied
}

// BuildDayAvailability считает занятость слотов по активным бронированиям.
// Используется и для дневного, и для месячного представления.
func BuildDayAvailability(date time.Time, slots []types.TimeString, reservations []*Reservation) DayAvailability {
	taken := make(map[types.TimeString]struct{}, len(reservations))
	for _, r := range reservations {
		if r.Status.IsActive() {
			taken[r.Time] = struct{}{}
		}
	}

	day := DayAvailability{
		Date:  NormalizeDate(date),
		Slots: make([]SlotState, 0, len(slots)),
		Total: len(slots),
	}

	for _, s := range slots {
		_, occupied := taken[s]
		if occupied {
			day.Occupied++
		}
		day.Slots = append(day.Slots, SlotState{Time: s, Occupied: occupied})
	}

	switch {
	case day.Total == 0:
		day.State = DayUnavailable
	case day.Occupied == 0:
		day.State = DayEmpty
	case day.Occupied == day.Total:
		day.State = DayFull
	default:
		day.State = DayPartial
	}

	return day
}
