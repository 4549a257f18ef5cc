// Package memory реализует хранилища бронирований и платёжных намерений в памяти
// с той же транзакционной семантикой, что и Postgres-репозитории:
// транзакции сериализуются, ошибка внутри транзакции откатывает все изменения.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

type txKey struct{}

// Store общее состояние in-memory хранилищ
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	bookings map[int64]domain.Booking
	intents  map[string]domain.PaymentIntent
	nextID   int64

	now func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		bookings: make(map[int64]domain.Booking),
		intents:  make(map[string]domain.PaymentIntent),
		now:      time.Now,
	}
}

// Bookings репозиторий бронирований поверх хранилища
func (s *Store) Bookings() *BookingRepository {
	return &BookingRepository{s: s}
}

// Intents репозиторий платёжных намерений поверх хранилища
func (s *Store) Intents() *IntentRepository {
	return &IntentRepository{s: s}
}

// Do выполняет fn как одну транзакцию
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

// DoSerializable транзакции в памяти всегда сериализуемы
func (s *Store) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Do(ctx, fn)
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// write применяет изменение; вне транзакции оно выполняется как отдельная транзакция
func (s *Store) write(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Store) read(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

type snapshot struct {
	bookings map[int64]domain.Booking
	intents  map[string]domain.PaymentIntent
	nextID   int64
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		bookings: make(map[int64]domain.Booking, len(s.bookings)),
		intents:  make(map[string]domain.PaymentIntent, len(s.intents)),
		nextID:   s.nextID,
	}
	for k, v := range s.bookings {
		snap.bookings[k] = v
	}
	for k, v := range s.intents {
		snap.intents[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookings = snap.bookings
	s.intents = snap.intents
	s.nextID = snap.nextID
}
