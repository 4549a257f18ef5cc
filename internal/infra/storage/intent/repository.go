package intent

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// invalidTextRepresentation код Postgres для некорректного UUID
const invalidTextRepresentation = "22P02"

var intentColumns = []string{
	"token",
	"state",
	"payload",
	"amount",
	"method",
	"description",
	"booking_id",
	"transaction_id",
	"discard_reason",
	"created_at",
	"expires_at",
	"updated_at",
}

// Repository хранилище платёжных намерений (durable staging store)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория намерений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новое намерение в состоянии PENDING
func (r *Repository) Create(ctx context.Context, in *domain.PaymentIntent) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	payload, err := json.Marshal(in.Payload)
	if err != nil {
		return fmt.Errorf("%w: Create - marshal payload: %v", ErrPayload, err)
	}

	query, args, err := psqlbuilder.Insert("payment_intents").
		Columns("token", "state", "payload", "amount", "method", "description", "created_at", "expires_at").
		Values(in.Token, in.State, payload, in.Amount, in.Method, in.Description, in.CreatedAt, in.ExpiresAt).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&in.UpdatedAt); err != nil {
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByToken получает намерение по токену.
// Внутри транзакции строка блокируется (FOR UPDATE): параллельные потребители
// одного токена выстраиваются в очередь и видят результат предыдущего.
func (r *Repository) GetByToken(ctx context.Context, token string) (*domain.PaymentIntent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(intentColumns...).
		From("payment_intents").
		Where(squirrel.Eq{"token": token})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByToken - build select query: %v", ErrBuildQuery, err)
	}

	var (
		in      domain.PaymentIntent
		payload []byte
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&in.Token,
		&in.State,
		&payload,
		&in.Amount,
		&in.Method,
		&in.Description,
		&in.BookingID,
		&in.TransactionID,
		&in.DiscardReason,
		&in.CreatedAt,
		&in.ExpiresAt,
		&in.UpdatedAt,
	)

	if err == sql.ErrNoRows || isInvalidToken(err) {
		return nil, ErrIntentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByToken - scan intent: %v", ErrScanRow, err)
	}

	if err := json.Unmarshal(payload, &in.Payload); err != nil {
		return nil, fmt.Errorf("%w: GetByToken - unmarshal payload: %v", ErrPayload, err)
	}

	return &in, nil
}

// MarkConsumed переводит PENDING намерение в CONSUMED и привязывает бронирование
func (r *Repository) MarkConsumed(ctx context.Context, token string, bookingID int64, transactionID string) error {
	return r.transition(ctx, "MarkConsumed", token, map[string]interface{}{
		"state":          domain.IntentConsumed,
		"booking_id":     bookingID,
		"transaction_id": transactionID,
	})
}

// MarkDiscarded переводит PENDING намерение в DISCARDED
func (r *Repository) MarkDiscarded(ctx context.Context, token, reason string, transactionID *string) error {
	return r.transition(ctx, "MarkDiscarded", token, map[string]interface{}{
		"state":          domain.IntentDiscarded,
		"discard_reason": reason,
		"transaction_id": transactionID,
	})
}

// RecordLatePayment сохраняет транзакцию, оплаченную после отбрасывания намерения.
// Намерение, уже хранящее оплату к возврату, не перезаписывается.
func (r *Repository) RecordLatePayment(ctx context.Context, token, transactionID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payment_intents").
		Set("discard_reason", domain.DiscardPaidAfterDiscard).
		Set("transaction_id", transactionID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"token": token, "state": domain.IntentDiscarded}).
		Where(squirrel.NotEq{"discard_reason": []string{domain.DiscardSlotUnavailable, domain.DiscardPaidAfterDiscard}}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: RecordLatePayment - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: RecordLatePayment - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: RecordLatePayment - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrStateChanged
	}
	return nil
}

// DiscardExpired отбрасывает все PENDING намерения с истёкшим сроком
func (r *Repository) DiscardExpired(ctx context.Context, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payment_intents").
		Set("state", domain.IntentDiscarded).
		Set("discard_reason", domain.DiscardExpired).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"state": domain.IntentPending}).
		Where(squirrel.LtOrEq{"expires_at": now}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: DiscardExpired - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DiscardExpired - execute update: %v", ErrExecQuery, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DiscardExpired - get rows affected: %v", ErrExecQuery, err)
	}
	return n, nil
}

// transition меняет состояние только у PENDING намерения (compare-and-swap по state)
func (r *Repository) transition(ctx context.Context, op, token string, values map[string]interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payment_intents").
		SetMap(values).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"token": token, "state": domain.IntentPending}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrStateChanged
	}

	return nil
}

func isInvalidToken(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation
}
