package onboarding

import (
	"context"
	"errors"
	"fmt"
	"onboarding-service/internal/model"
	"onboarding-service/internal/phone"
	"onboarding-service/internal/repository"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const DefaultSlotSuccessDelay = 2 * time.Second

var (
	ErrNoSuchSlot    = errors.New("no such slot")
	ErrSlotBusy      = errors.New("slot submission already in flight")
	ErrNoCapacity    = errors.New("all seats are filled")
	ErrSessionClosed = errors.New("onboarding session is closed")

	// ErrStoreRejected and ErrConnectivity split insert failures so the
	// page can word the retry prompt accordingly.
	ErrStoreRejected = errors.New("store rejected the registration")
	ErrConnectivity  = errors.New("connection failed during registration")
)

// Slot is one unfilled seat the buyer can register a phone number into.
type Slot struct {
	ID            string
	Input         string
	Submitting    bool
	JustSucceeded bool
}

// Session owns the registration state for one resolved buyer: the remaining
// input slots, the latest fetched dependent list, and the per-slot success
// timers. All mutation goes through the session mutex; distinct slots may
// submit concurrently.
type Session struct {
	ID    string
	buyer *model.User

	repo         repository.UserRepository
	successDelay time.Duration

	mu               sync.Mutex
	dependents       []*model.User
	slots            []*Slot
	slotsInitialized bool
	timers           map[string]*time.Timer
	closed           bool
}

func NewSession(repo repository.UserRepository, res *Resolution, successDelay time.Duration) *Session {
	if successDelay <= 0 {
		successDelay = DefaultSlotSuccessDelay
	}
	s := &Session{
		ID:           uuid.NewString(),
		buyer:        res.Buyer,
		repo:         repo,
		successDelay: successDelay,
		dependents:   res.Dependents,
		timers:       make(map[string]*time.Timer),
	}
	s.mu.Lock()
	s.initSlotsLocked()
	s.mu.Unlock()
	return s
}

// initSlotsLocked materializes one blank slot per free seat. It runs at most
// once per session, guarded by an explicit flag rather than by the slot list
// being empty: the list legitimately empties again once every seat fills, and
// re-deriving on a later dependent refresh would wipe a slot the buyer is
// mid-typing in.
func (s *Session) initSlotsLocked() {
	if s.slotsInitialized {
		return
	}
	s.slotsInitialized = true

	available := s.buyer.SeatCount() - len(s.dependents)
	for i := 0; i < available; i++ {
		s.slots = append(s.slots, &Slot{ID: uuid.NewString()})
	}
}

func (s *Session) Buyer() *model.User {
	return s.buyer
}

// Dependents returns the latest fetched dependent list.
func (s *Session) Dependents() []*model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.User, len(s.dependents))
	copy(out, s.dependents)
	return out
}

// Slots returns a snapshot of the pending input slots.
func (s *Session) Slots() []Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Slot, len(s.slots))
	for i, slot := range s.slots {
		out[i] = *slot
	}
	return out
}

// SlotsRemaining is seat capacity minus persisted dependents, recomputed from
// the latest fetched list. Never negative for display purposes.
func (s *Session) SlotsRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slotsRemainingLocked()
}

func (s *Session) slotsRemainingLocked() int {
	remaining := s.buyer.SeatCount() - len(s.dependents)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// SetInput records in-progress slot text without submitting it.
func (s *Session) SetInput(slotID, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	slot := s.findSlotLocked(slotID)
	if slot == nil {
		return ErrNoSuchSlot
	}
	slot.Input = phone.Sanitize(raw)
	return nil
}

func (s *Session) findSlotLocked(slotID string) *Slot {
	for _, slot := range s.slots {
		if slot.ID == slotID {
			return slot
		}
	}
	return nil
}

// Register validates the slot's phone number and persists it as a dependent
// of the session's buyer. On success the dependent list is re-fetched from
// the store before any capacity is recomputed, the slot briefly shows its
// success state, and then leaves the pending list. Other slots are never
// touched. A slot with a submission already in flight rejects a second one.
func (s *Session) Register(ctx context.Context, slotID, raw string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	slot := s.findSlotLocked(slotID)
	if slot == nil {
		if len(s.slots) == 0 && s.slotsRemainingLocked() == 0 {
			s.mu.Unlock()
			return ErrNoCapacity
		}
		s.mu.Unlock()
		return ErrNoSuchSlot
	}
	if slot.Submitting {
		s.mu.Unlock()
		return ErrSlotBusy
	}
	if raw != "" {
		slot.Input = phone.Sanitize(raw)
	}
	input := slot.Input

	normalized, err := phone.Validate(input)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	slot.Submitting = true
	s.mu.Unlock()

	dependent := &model.User{
		ID:                 uuid.NewString(),
		Phone:              normalized,
		ParentID:           s.buyer.ID,
		SubscriptionStatus: model.SubscriptionActive,
		PlanType:           model.PlanDependent,
		FunnelStage:        model.StageNew,
	}

	if err := s.repo.CreateDependent(ctx, dependent); err != nil {
		s.mu.Lock()
		slot.Submitting = false
		s.mu.Unlock()

		log.WithError(err).WithFields(log.Fields{
			"buyer_id": s.buyer.ID,
			"slot_id":  slotID,
		}).Error("failed to register dependent")

		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ErrConnectivity, err)
		}
		return fmt.Errorf("%w: %v", ErrStoreRejected, err)
	}

	// Source-of-truth refresh: capacity is recomputed from what the store
	// actually holds, not from a local append, so a seat registered by a
	// concurrent session is picked up here.
	dependents, err := s.repo.FindDependentsByParent(ctx, s.buyer.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	slot.Submitting = false
	if s.closed {
		// session torn down while the insert was in flight; discard
		return nil
	}
	if err != nil {
		log.WithError(err).WithField("buyer_id", s.buyer.ID).Warn("dependent refresh failed after insert")
	} else {
		s.dependents = dependents
	}

	slot.JustSucceeded = true
	s.scheduleSlotRemovalLocked(slot.ID)

	log.WithFields(log.Fields{
		"buyer_id":        s.buyer.ID,
		"slots_remaining": s.slotsRemainingLocked(),
	}).Info("dependent registered")
	return nil
}

// scheduleSlotRemovalLocked keeps the success state visible for a moment,
// then drops the slot from the pending list. The timer is cancelled if the
// session closes first.
func (s *Session) scheduleSlotRemovalLocked(slotID string) {
	s.timers[slotID] = time.AfterFunc(s.successDelay, func() {
		s.removeSlot(slotID)
	})
}

func (s *Session) removeSlot(slotID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	delete(s.timers, slotID)
	for i, slot := range s.slots {
		if slot.ID == slotID {
			s.slots = append(s.slots[:i], s.slots[i+1:]...)
			break
		}
	}
}

// Close cancels pending success timers and freezes the session. A timer that
// fires after Close must not mutate state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
