// Package storage provides the persistence interfaces for the Unsaid coaching
// pipeline. The core pipeline only sees the ProfileStore interface; concrete
// backends (sqlite, in-memory) are composed in by the caller, keeping the
// pipeline free of global state and independently testable.
package storage

import (
	"context"
	"errors"

	"github.com/jwgray1010/unsaid/pkg/types"
)

// ErrNotFound is returned when the requested profile does not exist.
var ErrNotFound = errors.New("profile not found")

// ProfileNamespace is the fixed namespace all preference data persists under.
const ProfileNamespace = "unsaid.attachment_profile"

// ProfileStore persists user attachment profiles across sessions.
//
// Implementations must serialise writes per user so the preference-list caps
// hold under interleaved updates; callers hold no locks of their own.
type ProfileStore interface {
	// GetProfile retrieves the profile for userID.
	// Returns ErrNotFound if the user has no stored profile.
	GetProfile(ctx context.Context, userID string) (*types.UserAttachmentProfile, error)

	// SaveProfile creates or updates a profile (upsert semantics).
	SaveProfile(ctx context.Context, profile *types.UserAttachmentProfile) error

	// Close releases backend resources.
	Close() error
}
