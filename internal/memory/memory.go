// Package memory implements the bounded contextual memory: a rolling
// message/emotion buffer plus the feedback-driven preference profile persisted
// through a ProfileStore. All mutation goes through one mutex so the FIFO
// bound and preference-list caps hold under interleaved updates.
package memory

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jwgray1010/unsaid/internal/storage"
	"github.com/jwgray1010/unsaid/pkg/types"
)

// BufferLimit caps the rolling message buffer.
const BufferLimit = 10

// Entry is one remembered message with its dominant emotion label.
type Entry struct {
	Text      string
	Timestamp time.Time
	Emotion   string
}

// Contextual is the per-user contextual memory. Safe for concurrent use.
type Contextual struct {
	mu      sync.Mutex
	entries []Entry
	profile *types.UserAttachmentProfile
	store   storage.ProfileStore
}

// New loads (or creates) the profile for userID from store. A store failure
// degrades to a fresh in-memory profile, logged, never returned as an error.
func New(ctx context.Context, store storage.ProfileStore, userID string) *Contextual {
	profile, err := store.GetProfile(ctx, userID)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		profile = types.NewUserAttachmentProfile(userID)
	default:
		log.Printf("memory: profile load failed, using session-scoped default: %v", err)
		profile = types.NewUserAttachmentProfile(userID)
	}
	if profile.Preferences.PatternUses == nil {
		profile.Preferences.PatternUses = make(map[string]int)
	}

	return &Contextual{profile: profile, store: store}
}

// Record appends a processed message to the buffer, evicting the oldest entry
// beyond BufferLimit, and bumps the usage counters derived from the analysis.
// The counters feed score adjustment across sessions, so the profile persists
// here too, not only on feedback.
func (c *Contextual) Record(ctx context.Context, text, emotion string, analysis types.DeepTextAnalysis) {
	c.mu.Lock()
	c.entries = append(c.entries, Entry{Text: text, Timestamp: time.Now(), Emotion: emotion})
	if len(c.entries) > BufferLimit {
		c.entries = c.entries[len(c.entries)-BufferLimit:]
	}

	if analysis.Linguistic.HasAbsolutes {
		c.profile.Preferences.AbsoluteUses++
	}
	c.profile.Preferences.PatternUses[string(analysis.Pattern)]++
	c.mu.Unlock()

	c.persist(ctx)
}

// Len returns the current buffer length.
func (c *Contextual) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// RecentPattern inspects the last three buffered emotions. It needs at least
// three entries and returns PatternNone otherwise.
func (c *Contextual) RecentPattern() types.EmotionPattern {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) < 3 {
		return types.PatternNone
	}
	last := c.entries[len(c.entries)-3:]

	if all(last, "anger", "frustration") {
		return types.PatternEscalatingAnger
	}
	if all(last, "sadness", "disappointment") {
		return types.PatternPersistentSadness
	}
	anxious := 0
	for _, e := range last {
		if e.Emotion == "anxiety" {
			anxious++
		}
	}
	if anxious >= 2 {
		return types.PatternAnxiety
	}
	return types.PatternNone
}

// Preferences returns a snapshot of the preference profile.
func (c *Contextual) Preferences() types.PreferenceProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preferencesLocked()
}

// Profile returns a snapshot of the full attachment profile.
func (c *Contextual) Profile() types.UserAttachmentProfile {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := *c.profile
	snap.Preferences = c.preferencesLocked()
	snap.ChildrenNames = append([]string(nil), c.profile.ChildrenNames...)
	return snap
}

// RecordFeedback registers an accept/reject decision for a suggestion and
// persists the profile. Persistence failure is logged, never surfaced.
// Recording the same decision twice is idempotent in effect: the lists are
// capped and rejection matching is by exact text.
func (c *Contextual) RecordFeedback(ctx context.Context, suggestion string, accepted bool) {
	c.mu.Lock()
	if accepted {
		c.profile.Preferences.RecordAccepted(suggestion)
		if looksLikeIStatement(suggestion) {
			c.profile.Preferences.IStatementUses++
		}
	} else {
		c.profile.Preferences.RecordRejected(suggestion)
	}
	c.mu.Unlock()

	c.persist(ctx)
}

// UpdateStyle sets the user's attachment style. Idempotent.
func (c *Contextual) UpdateStyle(ctx context.Context, style types.AttachmentStyle) {
	c.updateProfile(ctx, func(p *types.UserAttachmentProfile) { p.Style = style })
}

// UpdatePartnerStyle sets the configured partner style. Idempotent.
func (c *Contextual) UpdatePartnerStyle(ctx context.Context, style types.AttachmentStyle) {
	c.updateProfile(ctx, func(p *types.UserAttachmentProfile) { p.PartnerStyle = style })
}

// UpdateRelationshipContext sets the relationship context label. Idempotent.
func (c *Contextual) UpdateRelationshipContext(ctx context.Context, rc string) {
	c.updateProfile(ctx, func(p *types.UserAttachmentProfile) { p.RelationshipContext = rc })
}

// UpdateChildrenNames sets the configured child names. Idempotent.
func (c *Contextual) UpdateChildrenNames(ctx context.Context, names []string) {
	c.updateProfile(ctx, func(p *types.UserAttachmentProfile) {
		p.ChildrenNames = append([]string(nil), names...)
	})
}

// UpdateEmotionalBaseline sets the baseline emotional-state label. Idempotent.
func (c *Contextual) UpdateEmotionalBaseline(ctx context.Context, baseline string) {
	c.updateProfile(ctx, func(p *types.UserAttachmentProfile) { p.EmotionalBaseline = baseline })
}

func (c *Contextual) updateProfile(ctx context.Context, fn func(*types.UserAttachmentProfile)) {
	c.mu.Lock()
	fn(c.profile)
	c.mu.Unlock()
	c.persist(ctx)
}

func (c *Contextual) persist(ctx context.Context) {
	c.mu.Lock()
	snap := *c.profile
	snap.Preferences = c.preferencesLocked()
	c.mu.Unlock()

	if err := c.store.SaveProfile(ctx, &snap); err != nil {
		log.Printf("memory: profile save failed, keeping in-memory state: %v", err)
	}
}

// preferencesLocked snapshots preferences; caller must hold c.mu.
func (c *Contextual) preferencesLocked() types.PreferenceProfile {
	snap := c.profile.Preferences
	snap.Accepted = append([]string(nil), c.profile.Preferences.Accepted...)
	snap.Rejected = append([]string(nil), c.profile.Preferences.Rejected...)
	snap.PatternUses = make(map[string]int, len(c.profile.Preferences.PatternUses))
	for k, v := range c.profile.Preferences.PatternUses {
		snap.PatternUses[k] = v
	}
	return snap
}

func all(entries []Entry, emotions ...string) bool {
	for _, e := range entries {
		matched := false
		for _, em := range emotions {
			if e.Emotion == em {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// looksLikeIStatement is a cheap structural check for "I feel ... when ..."
// phrasings used by the acceptance counter.
func looksLikeIStatement(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "i feel ") && strings.Contains(lower, " when ")
}
