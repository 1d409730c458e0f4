package reservation

import (
	"database/sql"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

const tableName = "reservations"

var columns = []string{
	"id",
	"user_id",
	"vehicle_id",
	"service_id",
	"reservation_date",
	"slot_time",
	"status",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"completed_at",
	"created_at",
	"updated_at",
}

// row строка таблицы reservations
type row struct {
	ID                 int64            `db:"id"`
	UserID             int64            `db:"user_id"`
	VehicleID          int64            `db:"vehicle_id"`
	ServiceID          int64            `db:"service_id"`
	ReservationDate    time.Time        `db:"reservation_date"`
	SlotTime           types.TimeString `db:"slot_time"`
	Status             string           `db:"status"`
	Notes              sql.NullString   `db:"notes"`
	CancellationReason sql.NullString   `db:"cancellation_reason"`
	CancelledAt        sql.NullTime     `db:"cancelled_at"`
	CompletedAt        sql.NullTime     `db:"completed_at"`
	CreatedAt          time.Time        `db:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at"`
}

func (r *row) toDomain() *domain.Reservation {
	return &domain.Reservation{
		ID:                 r.ID,
		UserID:             r.UserID,
		VehicleID:          r.VehicleID,
		ServiceID:          r.ServiceID,
		Date:               domain.NormalizeDate(r.ReservationDate),
		Time:               r.SlotTime,
		Status:             domain.ReservationStatus(r.Status),
		Notes:              nullString(r.Notes),
		CancellationReason: nullString(r.CancellationReason),
		CancelledAt:        nullTime(r.CancelledAt),
		CompletedAt:        nullTime(r.CompletedAt),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func toDomainList(rows []row) []*domain.Reservation {
	result := make([]*domain.Reservation, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toDomain())
	}
	return result
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func dateParam(t time.Time) string {
	return t.Format(domain.DateFormat)
}
