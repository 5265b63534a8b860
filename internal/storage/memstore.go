package storage

import (
	"context"
	"sync"
	"time"

	"github.com/jwgray1010/unsaid/pkg/types"
)

// MemoryProfileStore is an in-memory ProfileStore. It backs tests and the
// degraded mode used when the sqlite store fails to open: the session still
// works, the profile just doesn't survive a restart.
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*types.UserAttachmentProfile
}

// NewMemoryProfileStore creates an empty in-memory store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{
		profiles: make(map[string]*types.UserAttachmentProfile),
	}
}

// GetProfile retrieves a stored profile copy.
func (s *MemoryProfileStore) GetProfile(_ context.Context, userID string) (*types.UserAttachmentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := clone(p)
	return &cp, nil
}

// SaveProfile upserts a profile copy.
func (s *MemoryProfileStore) SaveProfile(_ context.Context, profile *types.UserAttachmentProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := clone(profile)
	cp.UpdatedAt = time.Now().UTC()
	s.profiles[profile.UserID] = &cp
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryProfileStore) Close() error {
	return nil
}

// clone deep-copies a profile so callers can't mutate stored state.
func clone(p *types.UserAttachmentProfile) types.UserAttachmentProfile {
	cp := *p
	cp.ChildrenNames = append([]string(nil), p.ChildrenNames...)
	cp.Preferences.Accepted = append([]string(nil), p.Preferences.Accepted...)
	cp.Preferences.Rejected = append([]string(nil), p.Preferences.Rejected...)
	if p.Preferences.PatternUses != nil {
		cp.Preferences.PatternUses = make(map[string]int, len(p.Preferences.PatternUses))
		for k, v := range p.Preferences.PatternUses {
			cp.Preferences.PatternUses[k] = v
		}
	}
	return cp
}
