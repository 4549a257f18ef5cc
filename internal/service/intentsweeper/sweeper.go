package intentsweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule расписание очистки по умолчанию
const DefaultSchedule = "@every 1m"

// Sweeper периодически переводит просроченные PENDING намерения в DISCARDED (expired)
type Sweeper struct {
	repo    IntentRepository
	metrics Metrics
	logger  Logger
	cron    *cron.Cron
	timeout time.Duration
	now     func() time.Time
}

// New создает планировщик; schedule в формате robfig/cron ("@every 1m", "*/5 * * * *")
func New(repo IntentRepository, metrics Metrics, schedule string, logger Logger) (*Sweeper, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	s := &Sweeper{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		timeout: 30 * time.Second,
		now:     time.Now,
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSchedule, schedule, err)
	}
	return s, nil
}

// Start запускает планировщик в фоне
func (s *Sweeper) Start() {
	s.logger.Info("IntentSweeper: started")
	s.cron.Start()
}

// Stop останавливает планировщик и дожидается текущего прохода или отмены ctx
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("IntentSweeper: stopped")
	case <-ctx.Done():
		s.logger.Warn("IntentSweeper: stop interrupted: %v", ctx.Err())
	}
}

// Sweep выполняет один проход очистки
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	n, err := s.repo.DiscardExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	s.metrics.ObserveIntentsExpired(int(n))
	return n, nil
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.Sweep(ctx)
	if err != nil {
		s.logger.Error("IntentSweeper: sweep failed: %v", err)
		return
	}
	if n > 0 {
		s.logger.Info("IntentSweeper: discarded %d expired intents", n)
	}
}
