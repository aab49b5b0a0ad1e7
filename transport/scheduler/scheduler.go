package scheduler

import (
	"context"
	"sync"
	"time"

	"stayvista/config"
	"stayvista/infras/otel"
	bookingService "stayvista/internal/domains/booking/service"
	"stayvista/shared/constant"

	"github.com/rs/zerolog/log"
)

const (
	otelSchedulerScopeName = "scheduler"
	defaultSweepInterval   = time.Minute
)

// Scheduler releases the dates of reservations whose payment hold ran out and
// retries refunds that have not gone through.
type Scheduler struct {
	booking  bookingService.Booking
	otel     otel.Otel
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(booking bookingService.Booking, cfg *config.Config, otel otel.Otel) *Scheduler {
	interval := time.Duration(cfg.Booking.ExpirySweepSeconds) * time.Second
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	return &Scheduler{
		booking:  booking,
		otel:     otel,
		interval: interval,
	}
}

// Start runs the sweep every interval until Stop is called or ctx ends.
// Calling Start on a running scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx, s.done)

	log.Info().Dur("interval", s.interval).Msg("Hold expiry scheduler started")
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done

	log.Info().Msg("Hold expiry scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
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

// Sweep expires overdue holds and settles owed refunds once. A failed step does
// not skip the other.
func (s *Scheduler) Sweep(ctx context.Context) {
	ctx, scope := s.otel.NewScope(ctx, otelSchedulerScopeName, otelSchedulerScopeName+".Sweep")
	defer scope.End()

	ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, constant.ContextSystem)

	expired, err := s.booking.ExpireHolds(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to expire booking holds")
	} else if expired > 0 {
		log.Info().Int("expired", expired).Msg("Expired booking holds")
	}

	settled, err := s.booking.SettleRefunds(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to settle owed refunds")
	} else if settled > 0 {
		log.Info().Int("settled", settled).Msg("Settled owed refunds")
	}
}
