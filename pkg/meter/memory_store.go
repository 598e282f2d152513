package meter

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests and
// single-process deployments that do not need durability.
type MemoryStore struct {
	mu       sync.RWMutex
	subs     map[uuid.UUID]*Subscription // keyed by subject ID
	subjects map[uuid.UUID]struct{}      // subjects known without a subscription
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subs:     make(map[uuid.UUID]*Subscription),
		subjects: make(map[uuid.UUID]struct{}),
	}
}

// TrackSubject registers a subject that exists without a subscription
// reference, so lookups for it report ErrNoActiveSubscription instead of
// ErrSubscriptionNotFound. In production this distinction comes from the
// entity layer owning the subject -> subscription association.
func (s *MemoryStore) TrackSubject(subjectID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects[subjectID] = struct{}{}
}

func (s *MemoryStore) Get(_ context.Context, subjectID uuid.UUID) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, exists := s.subs[subjectID]
	if !exists {
		if _, known := s.subjects[subjectID]; known {
			return nil, ErrNoActiveSubscription
		}
		return nil, ErrSubscriptionNotFound
	}
	return sub.clone(), nil
}

func (s *MemoryStore) Create(_ context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subs[sub.SubjectID]; exists {
		return ErrSubscriptionExists
	}
	s.subs[sub.SubjectID] = sub.clone()
	delete(s.subjects, sub.SubjectID)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, subjectID uuid.UUID, fn UpdateFunc) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	committed, exists := s.subs[subjectID]
	if !exists {
		if _, known := s.subjects[subjectID]; known {
			return nil, ErrNoActiveSubscription
		}
		return nil, ErrSubscriptionNotFound
	}

	// fn works on a copy so an aborted update leaves the committed state
	// untouched.
	next := committed.clone()
	if err := fn(next); err != nil {
		return nil, err
	}

	s.subs[subjectID] = next
	return next.clone(), nil
}
