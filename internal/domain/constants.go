package domain

// Форматы даты и времени во внешних представлениях
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Бизнес-ограничения
const (
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
)

// Значения каталога слотов по умолчанию
const (
	DefaultOpenTime              = "08:00"
	DefaultCloseTime             = "19:00"
	DefaultSlotDurationMinutes   = 60
	DefaultBreakTime             = "13:00"
	DefaultCancellationLeadHours = 24
)
