package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwgray1010/unsaid/internal/storage"
	"github.com/jwgray1010/unsaid/pkg/types"
)

func newTestStore(t *testing.T) *ProfileStore {
	t.Helper()
	store, err := NewProfileStore(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestProfileStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	profile := types.NewUserAttachmentProfile("user-1")
	profile.Style = types.StyleAnxious
	profile.PartnerStyle = types.StyleAvoidant
	profile.RelationshipContext = "romantic"
	profile.ChildrenNames = []string{"Maya"}
	profile.Preferences.RecordAccepted("I feel unheard when plans change")
	profile.Preferences.IStatementUses = 3

	require.NoError(t, store.SaveProfile(ctx, profile))

	got, err := store.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, types.StyleAnxious, got.Style)
	assert.Equal(t, types.StyleAvoidant, got.PartnerStyle)
	assert.Equal(t, "romantic", got.RelationshipContext)
	assert.Equal(t, []string{"Maya"}, got.ChildrenNames)
	assert.Equal(t, 3, got.Preferences.IStatementUses)
	assert.Len(t, got.Preferences.Accepted, 1)
}

func TestProfileStore_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetProfile(context.Background(), "nobody")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestProfileStore_UpsertOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	profile := types.NewUserAttachmentProfile("user-1")
	profile.Style = types.StyleSecure
	require.NoError(t, store.SaveProfile(ctx, profile))

	profile.Style = types.StyleAvoidant
	require.NoError(t, store.SaveProfile(ctx, profile))

	got, err := store.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, types.StyleAvoidant, got.Style)
}
