package onboarding

import (
	"context"
	"onboarding-service/internal/model"
	"onboarding-service/internal/repository"
	"sync"
)

// fakeUserRepo implements repository.UserRepository in memory. Buyer lookups
// are scripted per call so tests can model a record that appears (or becomes
// provisioned) after a few attempts.
type fakeUserRepo struct {
	mu sync.Mutex

	findBuyer func(call int) (*model.User, error)
	lookups   int

	dependents map[string][]*model.User
	depErr     error

	inserted  []*model.User
	insertErr error
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		dependents: make(map[string][]*model.User),
	}
}

func (f *fakeUserRepo) FindBuyerByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.findBuyer == nil {
		return nil, repository.ErrBuyerNotFound
	}
	return f.findBuyer(f.lookups)
}

func (f *fakeUserRepo) FindDependentsByParent(ctx context.Context, parentID string) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.depErr != nil {
		return nil, f.depErr
	}
	out := make([]*model.User, len(f.dependents[parentID]))
	copy(out, f.dependents[parentID])
	return out, nil
}

// CreateDependent records the insert and attaches the row to its parent, so
// a subsequent FindDependentsByParent sees it like the real store would.
func (f *fakeUserRepo) CreateDependent(ctx context.Context, dependent *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, dependent)
	f.dependents[dependent.ParentID] = append(f.dependents[dependent.ParentID], dependent)
	return nil
}

func (f *fakeUserRepo) lookupCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups
}

func (f *fakeUserRepo) insertedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

func intPtr(n int) *int {
	return &n
}

func provisionedBuyer(id, email string, seats int) *model.User {
	return &model.User{
		ID:                 id,
		Email:              email,
		MaxDependents:      intPtr(seats),
		PlanType:           model.PlanDuo,
		SubscriptionStatus: model.SubscriptionActive,
	}
}
