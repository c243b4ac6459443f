package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"pricestick/internal/application/service"
	"pricestick/internal/domain"

	"github.com/rs/zerolog/log"
)

type ServiceDeps struct {
	Table     *domain.AssetTable
	Fetcher   Fetcher
	Screen    Screen
	Publisher Publisher // optional
	Store     Store     // optional
	Clock     func() time.Time

	PollInterval    time.Duration
	DisplayDuration time.Duration
	TickInterval    time.Duration
	ErrorHold       time.Duration
}

// Service is the single-goroutine main loop: each tick runs a time-gated
// fetch cycle, then a time-gated rotation, then a diffing render.
type Service struct {
	deps      ServiceDeps
	st        *State
	poll      *Schedule
	rotate    *Schedule
	holdUntil time.Time

	mu     sync.Mutex
	status Status
}

// Status summarizes the last fetch cycle for health checks.
type Status struct {
	LastFetch   time.Time `json:"last_fetch"`
	LastSuccess time.Time `json:"last_success"`
	LastError   string    `json:"last_error,omitempty"`
	Cycles      int       `json:"cycles"`
}

// Status is safe to call from other goroutines.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Service) record(res service.CycleResult, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Cycles++
	s.status.LastFetch = now
	s.status.LastError = res.LastError()
	if res.OK() {
		s.status.LastSuccess = now
	}
}

func NewService(deps ServiceDeps) *Service {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Publisher == nil {
		deps.Publisher = noopPublisher{}
	}
	if deps.Store == nil {
		deps.Store = noopStore{}
	}
	if deps.TickInterval <= 0 {
		deps.TickInterval = 50 * time.Millisecond
	}
	return &Service{
		deps:   deps,
		st:     NewState(deps.Table.Len()),
		poll:   NewSchedule(deps.PollInterval),
		rotate: NewSchedule(deps.DisplayDuration),
	}
}

// Start runs the boot sequence: status screens, cached state restore, the
// initial fetch and the first publish.
func (s *Service) Start(ctx context.Context) error {
	s.showStatus(StatusConnecting)
	if n := s.deps.Store.Restore(ctx, s.deps.Table); n > 0 {
		s.st.loaded = true
	}
	s.showStatus(StatusConnected)

	res := s.deps.Fetcher.RunCycle(ctx)
	now := s.deps.Clock()
	s.record(res, now)
	if res.OK() {
		s.st.loaded = true
		s.afterUpdate(ctx, now)
		log.Info().Msg("initial data loaded")
	} else {
		log.Warn().Str("last_error", res.LastError()).Msg("initial data load failed")
		s.fail(ErrInitialLoad, now)
		if err := s.deps.Publisher.PublishDiscovery(ctx, s.deps.Table.Snapshot()); err != nil {
			log.Debug().Err(err).Msg("discovery deferred")
		}
	}
	s.poll.Mark(now)
	s.rotate.Mark(now)

	if s.deps.Fetcher.Irrecoverable() {
		return domain.ErrIrrecoverable
	}
	return nil
}

// Run starts the loop and blocks until ctx is done or the fetch cycle
// reports the link irrecoverable.
func (s *Service) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.deps.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Step(ctx, s.deps.Clock()); err != nil {
				return err
			}
		}
	}
}

// Step performs one loop iteration at now. It never sleeps; the error screen
// is held by skipping renders until the hold expires.
func (s *Service) Step(ctx context.Context, now time.Time) error {
	if s.poll.Due(now) {
		s.showStatus(StatusUpdating)
		res := s.deps.Fetcher.RunCycle(ctx)
		s.record(res, now)
		if res.OK() {
			s.st.loaded = true
			s.afterUpdate(ctx, now)
			log.Info().Msg("prices updated")
		} else {
			log.Warn().Str("last_error", res.LastError()).Msg("update failed, using cached values")
			s.fail(ErrUpdate, now)
		}
		s.poll.Mark(now)
		s.rotate.Mark(now)

		if s.deps.Fetcher.Irrecoverable() {
			log.Error().Msg("network link down for too long, giving up")
			return domain.ErrIrrecoverable
		}
	}

	if now.Before(s.holdUntil) || !s.st.loaded {
		return nil
	}
	if s.rotate.Due(now) {
		s.st.Advance()
		s.rotate.Mark(now)
	}
	rec, ok := s.deps.Table.Get(s.st.Current())
	if !ok {
		return nil
	}
	if err := s.deps.Screen.Render(rec); err != nil {
		log.Warn().Err(err).Str("symbol", rec.Symbol).Msg("render failed")
	}
	return nil
}

// Current returns the index of the asset on screen.
func (s *Service) Current() int {
	return s.st.Current()
}

func (s *Service) afterUpdate(ctx context.Context, now time.Time) {
	recs := s.deps.Table.Snapshot()
	if err := s.deps.Store.Save(ctx, recs, now.UnixMilli()); err != nil {
		log.Warn().Err(err).Msg("persist prices failed")
	}
	if err := s.deps.Publisher.PublishDiscovery(ctx, recs); err != nil {
		log.Debug().Err(err).Msg("discovery deferred")
	}
	if err := s.deps.Publisher.PublishStates(ctx, recs); err != nil {
		log.Debug().Err(err).Msg("state publish skipped")
	}
}

func (s *Service) fail(text string, now time.Time) {
	if err := s.deps.Screen.ShowError(text); err != nil {
		log.Warn().Err(err).Msg("error screen failed")
	}
	s.holdUntil = now.Add(s.deps.ErrorHold)
}

func (s *Service) showStatus(text string) {
	if err := s.deps.Screen.ShowStatus(text); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Msg("status screen failed")
	}
}
