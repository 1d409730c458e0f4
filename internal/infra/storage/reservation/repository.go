package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Repository репозиторий бронирований поверх PostgreSQL
type Repository struct {
	db txmanager.Executor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db txmanager.Executor) *Repository {
	return &Repository{db: db}
}

func returningAll() string {
	return "RETURNING " + strings.Join(columns, ", ")
}

// Create вставляет бронирование.
// Занятый активный слот отсекается частичным уникальным индексом и возвращается как ErrSlotTaken.
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"user_id",
			"vehicle_id",
			"service_id",
			"reservation_date",
			"slot_time",
			"status",
			"notes",
		).
		Values(
			res.UserID,
			res.VehicleID,
			res.ServiceID,
			dateParam(res.Date),
			res.Time,
			res.Status,
			res.Notes,
		).
		Suffix(returningAll()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var created row
	if err := executor.GetContext(ctx, &created, query, args...); err != nil {
		if isActiveSlotViolation(err) {
			return nil, fmt.Errorf("%w: %s %s", ErrSlotTaken, dateParam(res.Date), res.Time)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return created.toDomain(), nil
}

// GetByID получает бронирование по ID.
// Внутри транзакции строка блокируется (FOR UPDATE) до её завершения.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"id": id})

	if txmanager.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var found row
	err = executor.GetContext(ctx, &found, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err)
	}

	return found.toDomain(), nil
}

// List возвращает бронирования по фильтру, отсортированные по дате и времени.
// Без явного статуса и IncludeInactive отменённые бронирования исключаются.
func (r *Repository) List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(tableName).
		OrderBy("reservation_date ASC", "slot_time ASC", "id ASC")

	if filter.UserID != nil {
		builder = builder.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.StartDate != nil {
		builder = builder.Where(squirrel.GtOrEq{"reservation_date": dateParam(*filter.StartDate)})
	}
	if filter.EndDate != nil {
		builder = builder.Where(squirrel.LtOrEq{"reservation_date": dateParam(*filter.EndDate)})
	}

	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		builder = builder.Where(squirrel.NotEq{"status": domain.StatusCancelled})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	var rows []row
	if err := executor.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}

	return toDomainList(rows), nil
}

// ActiveSlotHolders возвращает ID активных бронирований на (date, slot), кроме excludeID.
// Внутри транзакции найденные строки блокируются.
func (r *Repository) ActiveSlotHolders(ctx context.Context, date time.Time, slot types.TimeString, excludeID *int64) ([]int64, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select("id").
		From(tableName).
		Where(squirrel.Eq{"reservation_date": dateParam(date)}).
		Where(squirrel.Eq{"slot_time": slot}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled})

	if excludeID != nil {
		builder = builder.Where(squirrel.NotEq{"id": *excludeID})
	}
	if txmanager.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ActiveSlotHolders - build select query: %v", ErrBuildQuery, err)
	}

	ids := make([]int64, 0)
	if err := executor.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("%w: ActiveSlotHolders - execute query: %w", ErrExecQuery, err)
	}

	return ids, nil
}

// UpdateSchedule сохраняет дату, время и заметки. Обновляется только бронирование в статусе PENDING.
func (r *Repository) UpdateSchedule(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("reservation_date", dateParam(res.Date)).
		Set("slot_time", res.Time).
		Set("notes", res.Notes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": res.ID}).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		Suffix(returningAll()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateSchedule - build update query: %v", ErrBuildQuery, err)
	}

	var updated row
	err = executor.GetContext(ctx, &updated, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: reservation %d is no longer %s", ErrStateChanged, res.ID, domain.StatusPending)
	}
	if err != nil {
		if isActiveSlotViolation(err) {
			return nil, fmt.Errorf("%w: %s %s", ErrSlotTaken, dateParam(res.Date), res.Time)
		}
		return nil, fmt.Errorf("%w: UpdateSchedule - execute update: %w", ErrExecQuery, err)
	}

	return updated.toDomain(), nil
}

// UpdateStatus переводит бронирование из from в to (compare-and-set).
// Для CANCELLED сохраняются причина и cancelled_at, для COMPLETED - completed_at.
func (r *Repository) UpdateStatus(
	ctx context.Context,
	id int64,
	from, to domain.ReservationStatus,
	reason *string,
	at time.Time,
) (*domain.Reservation, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update(tableName).
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": from})

	switch to {
	case domain.StatusCancelled:
		builder = builder.Set("cancelled_at", at).Set("cancellation_reason", reason)
	case domain.StatusCompleted:
		builder = builder.Set("completed_at", at)
	}

	query, args, err := builder.Suffix(returningAll()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	var updated row
	err = executor.GetContext(ctx, &updated, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: reservation %d is no longer %s", ErrStateChanged, id, from)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	return updated.toDomain(), nil
}

// Delete физически удаляет бронирование
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}
