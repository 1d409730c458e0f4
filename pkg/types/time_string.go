package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

const (
	timeLayout        = "15:04"
	timeLayoutSeconds = "15:04:05"
)

// ErrInvalidTimeString возвращается при некорректном формате времени
var ErrInvalidTimeString = errors.New("invalid time string format")

// TimeString время суток в формате HH:MM без даты и часового пояса
type TimeString string

// NewTimeStringFromString разбирает строку "HH:MM" (или "HH:MM:SS")
func NewTimeStringFromString(s string) (TimeString, error) {
	t, err := parse(s)
	if err != nil {
		return "", err
	}
	return TimeString(t.Format(timeLayout)), nil
}

// NewTimeString берёт часы и минуты из time.Time
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(timeLayout))
}

// MustTimeString паникует на некорректном значении. Только для констант и тестов.
func MustTimeString(s string) TimeString {
	ts, err := NewTimeStringFromString(s)
	if err != nil {
		panic(err)
	}
	return ts
}

func parse(s string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(timeLayoutSeconds, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
}

// Validate проверяет формат
func (ts TimeString) Validate() error {
	_, err := parse(string(ts))
	return err
}

// IsZero true для пустого значения
func (ts TimeString) IsZero() bool {
	return ts == ""
}

// String возвращает HH:MM
func (ts TimeString) String() string {
	return string(ts)
}

// Minutes количество минут от полуночи
func (ts TimeString) Minutes() int {
	t, err := parse(string(ts))
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}

// AddMinutes сдвигает время; переход через полночь не поддерживается
func (ts TimeString) AddMinutes(m int) TimeString {
	total := ts.Minutes() + m
	return TimeString(fmt.Sprintf("%02d:%02d", total/60, total%60))
}

// IsBefore сравнивает два времени суток
func (ts TimeString) IsBefore(other TimeString) bool {
	return ts.Minutes() < other.Minutes()
}

// IsAfter сравнивает два времени суток
func (ts TimeString) IsAfter(other TimeString) bool {
	return ts.Minutes() > other.Minutes()
}

// OnDate собирает момент времени из даты и времени суток в указанной зоне
func (ts TimeString) OnDate(date time.Time, loc *time.Location) time.Time {
	m := ts.Minutes()
	return time.Date(date.Year(), date.Month(), date.Day(), m/60, m%60, 0, 0, loc)
}

// Scan реализует sql.Scanner для колонок TIME
func (ts *TimeString) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*ts = ""
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case time.Time:
		*ts = NewTimeString(v)
		return nil
	default:
		return fmt.Errorf("%w: unsupported source type %T", ErrInvalidTimeString, src)
	}

	parsed, err := NewTimeStringFromString(raw)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// Value реализует driver.Valuer
func (ts TimeString) Value() (driver.Value, error) {
	if ts.IsZero() {
		return nil, nil
	}
	return string(ts), nil
}
