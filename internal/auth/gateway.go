package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/internal/repository"
	"github.com/spec-kit/auth-service/internal/worker"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

type lookupResult struct {
	secret string
	found  bool
}

// Gateway owns access to the credential store. Lookups run on the worker
// pool and pass through a single mutex, so at most one store operation is in
// flight at any time.
type Gateway struct {
	repo    repository.CredentialRepository
	pool    *worker.Pool
	metrics *observability.Metrics
	logger  *zap.Logger

	mu sync.Mutex
}

// NewGateway wires a repository to the blocking-work pool.
func NewGateway(repo repository.CredentialRepository, pool *worker.Pool, metrics *observability.Metrics, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{repo: repo, pool: pool, metrics: metrics, logger: logger}
}

// Lookup returns the stored secret for subject.
//
// Errors wrap apperrors.ErrDispatch when the pool rejects the work or the task
// panics, and apperrors.ErrStore when the repository fails. Request
// cancellation does not abort a lookup that has been dispatched.
func (g *Gateway) Lookup(ctx context.Context, subject string) (string, bool, error) {
	storeCtx := context.WithoutCancel(ctx)

	future, err := worker.Submit(g.pool, func() (lookupResult, error) {
		return g.lockedLookup(storeCtx, subject)
	})
	if err != nil {
		return "", false, apperrors.NewDispatchError(err)
	}

	res, err := future.Await()
	if err != nil {
		if errors.Is(err, worker.ErrTaskPanicked) {
			return "", false, apperrors.NewDispatchError(err)
		}
		return "", false, apperrors.NewStoreError(err)
	}
	return res.secret, res.found, nil
}

func (g *Gateway) lockedLookup(ctx context.Context, subject string) (lookupResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.metrics.StoreLookupStarted()
	start := time.Now()
	var err error
	defer func() { g.metrics.StoreLookupFinished(time.Since(start), err) }()

	secret, found, err := g.repo.FindSecret(ctx, subject)
	if err != nil {
		g.logger.Error("credential lookup failed", zap.Error(err))
		return lookupResult{}, err
	}
	return lookupResult{secret: secret, found: found}, nil
}

// Pinger reports connectivity of a store handle.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Guard returns a Pinger that runs p's ping on the worker pool under the
// gateway's mutex, so health checks never overlap a credential lookup.
func (g *Gateway) Guard(p Pinger) Pinger {
	return guardedPinger{gateway: g, inner: p}
}

type guardedPinger struct {
	gateway *Gateway
	inner   Pinger
}

// Ping waits for the store to be free. A ctx that expires while the ping is
// queued returns ctx.Err(); the queued ping still runs to completion.
func (p guardedPinger) Ping(ctx context.Context) error {
	future, err := worker.Submit(p.gateway.pool, func() (struct{}, error) {
		p.gateway.mu.Lock()
		defer p.gateway.mu.Unlock()
		return struct{}{}, p.inner.Ping(ctx)
	})
	if err != nil {
		return err
	}

	select {
	case <-future.Done():
		_, err := future.Await()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
