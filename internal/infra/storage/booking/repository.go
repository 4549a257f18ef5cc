package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

const (
	uniqueViolation = "23505"

	constraintProfessionalSlot = "bookings_professional_slot_uniq"
	constraintOneInProgress    = "bookings_one_in_progress_uniq"
)

var bookingColumns = []string{
	"id",
	"subject_id",
	"professional_id",
	"service_type",
	"expected_start",
	"expected_end",
	"real_start",
	"real_end",
	"status",
	"rescheduled",
	"note",
	"outcome",
	"rating",
	"comment",
	"payment_token",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// LockProfessional берёт транзакционную advisory-блокировку специалиста.
// Все изменения расписания специалиста сериализуются этой блокировкой,
// поэтому проигравшая транзакция видит уже зафиксированную запись победителя.
func (r *Repository) LockProfessional(ctx context.Context, professionalID int64) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNotInTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", professionalID); err != nil {
		return fmt.Errorf("%w: LockProfessional - professional=%d: %v", ErrExecQuery, professionalID, err)
	}
	return nil
}

// Create создает новое бронирование
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"subject_id",
			"professional_id",
			"service_type",
			"expected_start",
			"expected_end",
			"status",
			"note",
			"payment_token",
		).
		Values(
			booking.SubjectID,
			booking.ProfessionalID,
			booking.ServiceType,
			booking.ExpectedStart,
			booking.ExpectedEnd,
			booking.Status,
			booking.Note,
			booking.PaymentToken,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID.
// Внутри транзакции строка блокируется (FOR UPDATE) до её завершения.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// ListCommitments возвращает не отменённые бронирования специалиста в интервале [from, to).
// Внутри транзакции строки блокируются (FOR UPDATE).
func (r *Repository) ListCommitments(ctx context.Context, professionalID int64, from, to time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"professional_id": professionalID}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		Where(squirrel.GtOrEq{"expected_start": from}).
		Where(squirrel.Lt{"expected_start": to}).
		OrderBy("expected_start ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListCommitments - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListCommitments - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// FindInProgress возвращает бронирование специалиста в статусе in_progress
func (r *Repository) FindInProgress(ctx context.Context, professionalID int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"professional_id": professionalID, "status": domain.StatusInProgress}).
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindInProgress - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindInProgress - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// List получает бронирования по фильтру
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).From("bookings")

	if filter.SubjectID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"subject_id": *filter.SubjectID})
	}
	if filter.ProfessionalID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"professional_id": *filter.ProfessionalID})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"expected_start": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"expected_start": *filter.To})
	}

	// Фильтрация по статусу
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": domain.StatusCancelled})
	}

	if filter.ProfessionalID != nil {
		selectBuilder = selectBuilder.OrderBy("expected_start ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("expected_start DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	return r.update(ctx, "UpdateStatus", id, map[string]interface{}{
		"status": status,
	})
}

// Reschedule переносит ожидаемое время бронирования
func (r *Repository) Reschedule(ctx context.Context, id int64, start, end time.Time, status domain.BookingStatus) error {
	return r.update(ctx, "Reschedule", id, map[string]interface{}{
		"expected_start": start,
		"expected_end":   end,
		"status":         status,
		"rescheduled":    true,
	})
}

// MarkInProgress фиксирует фактическое начало (первая фаза учёта времени)
func (r *Repository) MarkInProgress(ctx context.Context, id int64, realStart time.Time) error {
	return r.update(ctx, "MarkInProgress", id, map[string]interface{}{
		"status":     domain.StatusInProgress,
		"real_start": realStart,
	})
}

// Complete фиксирует фактическое время и результат (вторая фаза учёта времени)
func (r *Repository) Complete(ctx context.Context, id int64, realStart, realEnd time.Time, outcome *string) error {
	return r.update(ctx, "Complete", id, map[string]interface{}{
		"status":     domain.StatusCompleted,
		"real_start": realStart,
		"real_end":   realEnd,
		"outcome":    outcome,
	})
}

// Cancel отменяет бронирование; слот освобождается этим же UPDATE
func (r *Repository) Cancel(ctx context.Context, id int64, reason *string, at time.Time) error {
	return r.update(ctx, "Cancel", id, map[string]interface{}{
		"status":              domain.StatusCancelled,
		"cancellation_reason": reason,
		"cancelled_at":        at,
	})
}

// Evaluate сохраняет оценку завершённого бронирования
func (r *Repository) Evaluate(ctx context.Context, id int64, rating domain.Rating, comment *string) error {
	return r.update(ctx, "Evaluate", id, map[string]interface{}{
		"rating":  rating,
		"comment": comment,
	})
}

func (r *Repository) update(ctx context.Context, op string, id int64, values map[string]interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		SetMap(values).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// mapConstraintError переводит нарушения уникальных индексов в ошибки репозитория
func mapConstraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return nil
	}
	switch pqErr.Constraint {
	case constraintProfessionalSlot:
		return ErrSlotNotAvailable
	case constraintOneInProgress:
		return ErrAlreadyInProgress
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.SubjectID,
		&booking.ProfessionalID,
		&booking.ServiceType,
		&booking.ExpectedStart,
		&booking.ExpectedEnd,
		&booking.RealStart,
		&booking.RealEnd,
		&booking.Status,
		&booking.Rescheduled,
		&booking.Note,
		&booking.Outcome,
		&booking.Rating,
		&booking.Comment,
		&booking.PaymentToken,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
