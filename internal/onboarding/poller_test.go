package onboarding

import (
	"context"
	"errors"
	"onboarding-service/internal/model"
	"onboarding-service/internal/repository"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedSleeps swaps the poller's inter-attempt wait for an instant one
// that records each requested duration.
func recordedSleeps(p *Poller) *[]time.Duration {
	var sleeps []time.Duration
	p.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return ctx.Err()
	}
	return &sleeps
}

func TestPollerResolvesOnFifthAttempt(t *testing.T) {
	repo := newFakeUserRepo()
	buyer := provisionedBuyer("buyer-1", "buyer@x.com", 2)
	repo.findBuyer = func(call int) (*model.User, error) {
		if call < 5 {
			return nil, repository.ErrBuyerNotFound
		}
		return buyer, nil
	}

	p := NewPoller(repo, 5, 2*time.Second)
	sleeps := recordedSleeps(p)

	res, err := p.Resolve(context.Background(), "buyer@x.com")
	require.NoError(t, err)

	assert.Equal(t, 5, res.Attempts)
	assert.Equal(t, 5, repo.lookupCount())
	assert.Equal(t, "buyer-1", res.Buyer.ID)

	// delay between attempts only, none after the last
	require.Len(t, *sleeps, 4)
	for _, d := range *sleeps {
		assert.Equal(t, 2*time.Second, d)
	}
}

func TestPollerExhaustsRetries(t *testing.T) {
	repo := newFakeUserRepo()
	repo.findBuyer = func(call int) (*model.User, error) {
		return nil, repository.ErrBuyerNotFound
	}

	p := NewPoller(repo, 5, 2*time.Second)
	sleeps := recordedSleeps(p)

	_, err := p.Resolve(context.Background(), "buyer@x.com")
	assert.ErrorIs(t, err, ErrProvisioningTimeout)

	// exactly MAX_RETRIES lookups, no sixth attempt
	assert.Equal(t, 5, repo.lookupCount())
	assert.Len(t, *sleeps, 4)
}

func TestPollerUnprovisionedRecordCountsAsRetry(t *testing.T) {
	// record exists from the start but the payment pipeline only writes
	// max_dependents before the third attempt
	repo := newFakeUserRepo()
	repo.findBuyer = func(call int) (*model.User, error) {
		u := &model.User{ID: "buyer-1", Email: "buyer@x.com", PlanType: model.PlanIndividual}
		if call >= 3 {
			u.MaxDependents = intPtr(0)
		}
		return u, nil
	}

	p := NewPoller(repo, 5, 2*time.Second)
	recordedSleeps(p)

	res, err := p.Resolve(context.Background(), "buyer@x.com")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 0, res.Buyer.SeatCount())

	// zero seats: the single-seat flow, no registration slots
	sess := NewSession(repo, res, time.Second)
	assert.Empty(t, sess.Slots())
	assert.Equal(t, 0, sess.SlotsRemaining())
}

func TestPollerMissingEmail(t *testing.T) {
	repo := newFakeUserRepo()

	p := NewPoller(repo, 5, 2*time.Second)

	_, err := p.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingEmail)
	assert.Equal(t, 0, repo.lookupCount())
}

func TestPollerFailsClosedOnAmbiguousBuyer(t *testing.T) {
	repo := newFakeUserRepo()
	repo.findBuyer = func(call int) (*model.User, error) {
		return nil, repository.ErrAmbiguousBuyer
	}

	p := NewPoller(repo, 5, 2*time.Second)
	sleeps := recordedSleeps(p)

	_, err := p.Resolve(context.Background(), "buyer@x.com")
	assert.ErrorIs(t, err, repository.ErrAmbiguousBuyer)
	assert.Equal(t, 1, repo.lookupCount())
	assert.Empty(t, *sleeps)
}

func TestPollerSuccessIncludesDependents(t *testing.T) {
	repo := newFakeUserRepo()
	buyer := provisionedBuyer("buyer-1", "buyer@x.com", 2)
	repo.dependents["buyer-1"] = []*model.User{
		{ID: "dep-1", Phone: "5511966113170", ParentID: "buyer-1"},
	}
	repo.findBuyer = func(call int) (*model.User, error) {
		return buyer, nil
	}

	p := NewPoller(repo, 5, 2*time.Second)

	res, err := p.Resolve(context.Background(), "buyer@x.com")
	require.NoError(t, err)
	require.Len(t, res.Dependents, 1)
	assert.Equal(t, "dep-1", res.Dependents[0].ID)
}

func TestPollerStopsOnCancelledContext(t *testing.T) {
	repo := newFakeUserRepo()
	repo.findBuyer = func(call int) (*model.User, error) {
		return nil, repository.ErrBuyerNotFound
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := NewPoller(repo, 5, 2*time.Second)
	p.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := p.Resolve(ctx, "buyer@x.com")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, repo.lookupCount())
}

func TestPollerDefaults(t *testing.T) {
	p := NewPoller(newFakeUserRepo(), 0, 0)
	assert.Equal(t, DefaultMaxRetries, p.maxRetries)
	assert.Equal(t, DefaultRetryDelay, p.retryDelay)
}

func TestPollerRetriesTransientLookupError(t *testing.T) {
	repo := newFakeUserRepo()
	buyer := provisionedBuyer("buyer-1", "buyer@x.com", 1)
	repo.findBuyer = func(call int) (*model.User, error) {
		if call == 1 {
			return nil, errors.New("store unavailable")
		}
		return buyer, nil
	}

	p := NewPoller(repo, 5, 2*time.Second)
	recordedSleeps(p)

	res, err := p.Resolve(context.Background(), "buyer@x.com")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempts)
}
