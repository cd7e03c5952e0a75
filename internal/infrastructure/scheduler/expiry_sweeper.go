package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExpirableFinder lists contracts whose end date has lapsed as of the given
// instant.
type ExpirableFinder interface {
	FindExpirable(ctx context.Context, asOf time.Time) ([]uuid.UUID, error)
}

// FinderFunc adapts a function to the ExpirableFinder interface
type FinderFunc func(ctx context.Context, asOf time.Time) ([]uuid.UUID, error)

func (f FinderFunc) FindExpirable(ctx context.Context, asOf time.Time) ([]uuid.UUID, error) {
	return f(ctx, asOf)
}

// Expirer transitions a single contract to EXPIRED
type Expirer interface {
	Expire(ctx context.Context, id uuid.UUID) error
}

// ExpireFunc adapts a function to the Expirer interface
type ExpireFunc func(ctx context.Context, id uuid.UUID) error

func (f ExpireFunc) Expire(ctx context.Context, id uuid.UUID) error {
	return f(ctx, id)
}

// ExpirySweeperConfig holds configuration for the expiry sweeper
type ExpirySweeperConfig struct {
	Enabled bool

	// SweepInterval is how often lapsed contracts are looked for
	SweepInterval time.Duration

	// SweepTimeout bounds a single sweep, including all expirations
	SweepTimeout time.Duration
}

// DefaultExpirySweeperConfig returns default sweeper configuration
func DefaultExpirySweeperConfig() ExpirySweeperConfig {
	return ExpirySweeperConfig{
		Enabled:       true,
		SweepInterval: time.Hour,
		SweepTimeout:  5 * time.Minute,
	}
}

// ExpirySweeper periodically expires contracts whose end date has passed
// without completion. Each contract is expired individually so one failure
// does not stall the rest of the sweep.
type ExpirySweeper struct {
	config  ExpirySweeperConfig
	finder  ExpirableFinder
	expirer Expirer
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewExpirySweeper creates a new expiry sweeper
func NewExpirySweeper(
	config ExpirySweeperConfig,
	finder ExpirableFinder,
	expirer Expirer,
	logger *zap.Logger,
) *ExpirySweeper {
	return &ExpirySweeper{
		config:  config,
		finder:  finder,
		expirer: expirer,
		logger:  logger,
	}
}

// Start starts the background sweep loop
func (s *ExpirySweeper) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Expiry sweeper disabled")
		return nil
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Expiry sweeper started",
		zap.Duration("sweep_interval", s.config.SweepInterval),
	)

	return nil
}

// Stop stops the sweep loop and waits for an in-flight sweep to finish
func (s *ExpirySweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Expiry sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the sweep loop is active
func (s *ExpirySweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *ExpirySweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass: finds lapsed contracts and expires each of them.
// Returns the number of contracts expired.
func (s *ExpirySweeper) Sweep(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	now := time.Now()
	ids, err := s.finder.FindExpirable(ctx, now)
	if err != nil {
		s.logger.Error("Failed to find expirable contracts", zap.Error(err))
		return 0
	}
	if len(ids) == 0 {
		return 0
	}

	expired := 0
	for _, id := range ids {
		if err := s.expirer.Expire(ctx, id); err != nil {
			s.logger.Error("Failed to expire contract",
				zap.String("contract_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		expired++
	}

	s.logger.Info("Expiry sweep finished",
		zap.Int("found", len(ids)),
		zap.Int("expired", expired),
	)
	return expired
}
