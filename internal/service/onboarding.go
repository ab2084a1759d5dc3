package service

import (
	"context"
	"errors"
	"onboarding-service/internal/onboarding"
	"onboarding-service/internal/repository"
	"time"
)

var ErrSessionNotFound = errors.New("onboarding session not found")

type OnboardingService interface {
	// StartOnboarding polls for the provisioned buyer record and opens a
	// registration session for it.
	StartOnboarding(ctx context.Context, email string) (*onboarding.Session, error)
	Session(id string) (*onboarding.Session, error)
	RegisterDependent(ctx context.Context, sessionID, slotID, rawPhone string) (*onboarding.Session, error)
}

type onboardingServiceImpl struct {
	poller       *onboarding.Poller
	repo         repository.UserRepository
	sessions     *onboarding.SessionStore
	successDelay time.Duration
}

func NewOnboardingService(
	poller *onboarding.Poller,
	repo repository.UserRepository,
	sessions *onboarding.SessionStore,
	successDelay time.Duration,
) OnboardingService {
	return &onboardingServiceImpl{
		poller:       poller,
		repo:         repo,
		sessions:     sessions,
		successDelay: successDelay,
	}
}

func (s *onboardingServiceImpl) StartOnboarding(ctx context.Context, email string) (*onboarding.Session, error) {
	res, err := s.poller.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}

	sess := onboarding.NewSession(s.repo, res, s.successDelay)
	s.sessions.Put(sess)
	return sess, nil
}

func (s *onboardingServiceImpl) Session(id string) (*onboarding.Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *onboardingServiceImpl) RegisterDependent(ctx context.Context, sessionID, slotID, rawPhone string) (*onboarding.Session, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	if err := sess.Register(ctx, slotID, rawPhone); err != nil {
		return nil, err
	}
	return sess, nil
}
