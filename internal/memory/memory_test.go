package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwgray1010/unsaid/internal/storage"
	"github.com/jwgray1010/unsaid/pkg/types"
)

// failingStore simulates an unavailable backend.
type failingStore struct{}

func (failingStore) GetProfile(context.Context, string) (*types.UserAttachmentProfile, error) {
	return nil, errors.New("disk on fire")
}
func (failingStore) SaveProfile(context.Context, *types.UserAttachmentProfile) error {
	return errors.New("disk on fire")
}
func (failingStore) Close() error { return nil }

func newTestMemory(t *testing.T) *Contextual {
	t.Helper()
	return New(context.Background(), storage.NewMemoryProfileStore(), "user-1")
}

func TestRecord_BufferEvictsOldest(t *testing.T) {
	m := newTestMemory(t)

	for i := 0; i < 11; i++ {
		m.Record(context.Background(), fmt.Sprintf("message %d", i), "neutral", types.DeepTextAnalysis{})
	}

	assert.Equal(t, BufferLimit, m.Len())

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Equal(t, "message 1", m.entries[0].Text, "oldest entry should be evicted first")
	assert.Equal(t, "message 10", m.entries[len(m.entries)-1].Text)
}

func TestRecentPattern_NeedsThreeEntries(t *testing.T) {
	m := newTestMemory(t)

	m.Record(context.Background(), "a", "anger", types.DeepTextAnalysis{})
	m.Record(context.Background(), "b", "anger", types.DeepTextAnalysis{})
	assert.Equal(t, types.PatternNone, m.RecentPattern())

	m.Record(context.Background(), "c", "anger", types.DeepTextAnalysis{})
	assert.Equal(t, types.PatternEscalatingAnger, m.RecentPattern())
}

func TestRecentPattern_Classification(t *testing.T) {
	tests := []struct {
		name     string
		emotions []string
		want     types.EmotionPattern
	}{
		{"escalating anger", []string{"anger", "frustration", "anger"}, types.PatternEscalatingAnger},
		{"persistent sadness", []string{"sadness", "disappointment", "sadness"}, types.PatternPersistentSadness},
		{"anxiety two of three", []string{"anxiety", "neutral", "anxiety"}, types.PatternAnxiety},
		{"mixed", []string{"anger", "joy", "sadness"}, types.PatternNone},
		{"single anxiety", []string{"neutral", "neutral", "anxiety"}, types.PatternNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMemory(t)
			for i, e := range tt.emotions {
				m.Record(context.Background(), fmt.Sprintf("m%d", i), e, types.DeepTextAnalysis{})
			}
			assert.Equal(t, tt.want, m.RecentPattern())
		})
	}
}

func TestRecordFeedback_RejectionRemembered(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	m.RecordFeedback(ctx, "try saying it softer", false)

	prefs := m.Preferences()
	assert.True(t, prefs.HasRejected("try saying it softer"))
	assert.False(t, prefs.HasRejected("something else"))
}

func TestRecordFeedback_IStatementCounter(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	m.RecordFeedback(ctx, "I feel hurt when plans change last minute", true)
	m.RecordFeedback(ctx, "sounds good", true)

	assert.Equal(t, 1, m.Preferences().IStatementUses)
}

func TestRecordFeedback_ListsCapped(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		m.RecordFeedback(ctx, fmt.Sprintf("rejected %d", i), false)
	}

	prefs := m.Preferences()
	assert.Len(t, prefs.Rejected, types.PreferenceLimit)
	assert.False(t, prefs.HasRejected("rejected 0"), "oldest rejection should have been evicted")
	assert.True(t, prefs.HasRejected("rejected 24"))
}

func TestNew_StorageFailureDegradesToDefault(t *testing.T) {
	m := New(context.Background(), failingStore{}, "user-1")

	// The memory still works; nothing errors.
	m.Record(context.Background(), "hello", "neutral", types.DeepTextAnalysis{})
	m.RecordFeedback(context.Background(), "suggestion", true)

	profile := m.Profile()
	assert.Equal(t, types.StyleUnknown, profile.Style)
	assert.Len(t, profile.Preferences.Accepted, 1)
}

func TestUpdateSetters_PersistAndIdempotent(t *testing.T) {
	store := storage.NewMemoryProfileStore()
	ctx := context.Background()
	m := New(ctx, store, "user-1")

	m.UpdateStyle(ctx, types.StyleAnxious)
	m.UpdateStyle(ctx, types.StyleAnxious) // repeat is a no-op in effect
	m.UpdatePartnerStyle(ctx, types.StyleAvoidant)
	m.UpdateRelationshipContext(ctx, "coparenting")
	m.UpdateChildrenNames(ctx, []string{"Maya"})

	// A fresh memory over the same store sees the persisted profile.
	reloaded := New(ctx, store, "user-1")
	profile := reloaded.Profile()
	assert.Equal(t, types.StyleAnxious, profile.Style)
	assert.Equal(t, types.StyleAvoidant, profile.PartnerStyle)
	assert.Equal(t, "coparenting", profile.RelationshipContext)
	assert.Equal(t, []string{"Maya"}, profile.ChildrenNames)
}

func TestRecord_UsageCounters(t *testing.T) {
	m := newTestMemory(t)

	m.Record(context.Background(), "you always do this", "anger", types.DeepTextAnalysis{
		Linguistic: types.LinguisticFlags{HasAbsolutes: true},
		Pattern:    types.PatternCriticism,
	})
	m.Record(context.Background(), "you never listen", "anger", types.DeepTextAnalysis{
		Linguistic: types.LinguisticFlags{HasAbsolutes: true},
		Pattern:    types.PatternCriticism,
	})

	prefs := m.Preferences()
	assert.Equal(t, 2, prefs.AbsoluteUses)
	assert.Equal(t, 2, prefs.PatternUses[string(types.PatternCriticism)])
	require.NotNil(t, prefs.PatternUses)
}

func TestRecord_CountersPersistWithoutFeedback(t *testing.T) {
	store := storage.NewMemoryProfileStore()

	m := New(context.Background(), store, "user-1")
	m.Record(context.Background(), "you always do this", "anger", types.DeepTextAnalysis{
		Linguistic: types.LinguisticFlags{HasAbsolutes: true},
		Pattern:    types.PatternCriticism,
	})

	// A later session over the same store sees the counters; no feedback or
	// setter call was needed to flush them.
	reloaded := New(context.Background(), store, "user-1")
	prefs := reloaded.Preferences()
	assert.Equal(t, 1, prefs.AbsoluteUses)
	assert.Equal(t, 1, prefs.PatternUses[string(types.PatternCriticism)])
}

func TestRecord_StoreFailureKeepsCounting(t *testing.T) {
	m := New(context.Background(), failingStore{}, "user-1")

	m.Record(context.Background(), "you always do this", "anger", types.DeepTextAnalysis{
		Linguistic: types.LinguisticFlags{HasAbsolutes: true},
	})

	assert.Equal(t, 1, m.Preferences().AbsoluteUses)
}
