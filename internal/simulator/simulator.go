package simulator

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
)

const maxUserID = 100

// Dependencies bundles the simulator's collaborators.
type Dependencies struct {
	Activity  repository.ActivityRepository
	Publisher events.Publisher
	Metrics   *Metrics
	Logger    *zap.Logger
	Rand      *rand.Rand
	MinDelay  time.Duration
	MaxDelay  time.Duration
}

// Simulator fabricates user actions, stores them and publishes them.
type Simulator struct {
	activity  repository.ActivityRepository
	publisher events.Publisher
	metrics   *Metrics
	logger    *zap.Logger
	rng       *rand.Rand
	minDelay  time.Duration
	maxDelay  time.Duration
}

// New builds a simulator.
func New(deps Dependencies) *Simulator {
	s := &Simulator{
		activity:  deps.Activity,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		rng:       deps.Rand,
		minDelay:  deps.MinDelay,
		maxDelay:  deps.MaxDelay,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if s.maxDelay < s.minDelay {
		s.maxDelay = s.minDelay
	}
	return s
}

// Run emits one action per pause until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) error {
	s.logger.Info("simulation started",
		zap.Duration("min_delay", s.minDelay),
		zap.Duration("max_delay", s.maxDelay))
	for {
		s.Step(ctx)

		timer := time.NewTimer(s.nextDelay())
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("simulation stopped")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Step fabricates a single action, inserts it and publishes it. Failures are
// logged and do not stop the caller.
func (s *Simulator) Step(ctx context.Context) domain.ActivityEvent {
	event := domain.ActivityEvent{
		UserID: 1 + s.rng.IntN(maxUserID-1),
		Action: domain.Actions[s.rng.IntN(len(domain.Actions))],
	}

	start := time.Now()
	if err := s.activity.Insert(ctx, event); err != nil {
		s.logger.Error("activity insert failed", zap.Error(err))
	} else {
		s.metrics.recordInsert(event.Action, time.Since(start))
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("activity publish failed", zap.Error(err))
	}
	return event
}

func (s *Simulator) nextDelay() time.Duration {
	span := s.maxDelay - s.minDelay
	if span <= 0 {
		return s.minDelay
	}
	return s.minDelay + time.Duration(s.rng.Int64N(int64(span)))
}
