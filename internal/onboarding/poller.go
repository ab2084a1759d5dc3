// Package onboarding implements the post-purchase flow: polling for the
// payment-confirmed buyer record, then registering dependent seats.
package onboarding

import (
	"context"
	"errors"
	"onboarding-service/internal/model"
	"onboarding-service/internal/repository"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultMaxRetries = 5
	DefaultRetryDelay = 2 * time.Second
)

var (
	// ErrMissingEmail means the entry link carried no email; there is
	// nothing to poll for, so no retries are attempted.
	ErrMissingEmail = errors.New("no email supplied")

	// ErrProvisioningTimeout means the buyer record never became
	// provisioned within the retry budget.
	ErrProvisioningTimeout = errors.New("buyer record not provisioned within retry budget")
)

// Resolution is the outcome of a successful poll: the provisioned buyer and
// its existing dependents, fetched together so callers never see one without
// the other.
type Resolution struct {
	Buyer      *model.User
	Dependents []*model.User
	Attempts   int
}

// Poller resolves an email to a provisioned buyer record, retrying on a
// fixed schedule while the payment pipeline finishes writing the record.
// Attempts are strictly sequential.
type Poller struct {
	repo       repository.UserRepository
	maxRetries int
	retryDelay time.Duration

	// replaced in tests to observe inter-attempt spacing
	sleep func(ctx context.Context, d time.Duration) error
}

func NewPoller(repo repository.UserRepository, maxRetries int, retryDelay time.Duration) *Poller {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	return &Poller{
		repo:       repo,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		sleep:      sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Resolve looks up the buyer by email, retrying until the record exists and
// carries a seat count. The delay applies between attempts only, never after
// the last one. A record without a seat count means the payment pipeline has
// not finished and counts as a failed attempt.
func (p *Poller) Resolve(ctx context.Context, email string) (*Resolution, error) {
	if email == "" {
		return nil, ErrMissingEmail
	}

	logCtx := log.WithField("email", email)

	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		buyer, err := p.repo.FindBuyerByEmail(ctx, email)
		switch {
		case err == nil && buyer.Provisioned():
			// Fetch dependents before reporting success so the caller
			// never computes capacity from stale data.
			dependents, err := p.repo.FindDependentsByParent(ctx, buyer.ID)
			if err != nil {
				return nil, err
			}
			logCtx.WithFields(log.Fields{
				"attempt":        attempt,
				"max_dependents": buyer.SeatCount(),
			}).Info("buyer record resolved")
			return &Resolution{Buyer: buyer, Dependents: dependents, Attempts: attempt}, nil

		case err == nil:
			logCtx.WithField("attempt", attempt).Debug("buyer record exists but is not provisioned yet")

		case errors.Is(err, repository.ErrBuyerNotFound):
			logCtx.WithField("attempt", attempt).Debug("buyer record not found yet")

		case errors.Is(err, repository.ErrAmbiguousBuyer):
			// The store guarantees email uniqueness; if that is violated
			// we refuse to guess.
			return nil, err

		default:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logCtx.WithError(err).WithField("attempt", attempt).Warn("buyer lookup failed")
		}

		if attempt < p.maxRetries {
			if err := p.sleep(ctx, p.retryDelay); err != nil {
				return nil, err
			}
		}
	}

	logCtx.WithField("attempts", p.maxRetries).Warn("buyer record never became provisioned")
	return nil, ErrProvisioningTimeout
}
