package types

import "time"

// PreferenceLimit caps the accepted/rejected suggestion lists kept per user.
const PreferenceLimit = 20

// UserAttachmentProfile is the long-lived per-user state: attachment styles,
// relationship context, emotional baseline, and feedback-derived preference
// counters. Created on first use and persisted across sessions.
type UserAttachmentProfile struct {
	// UserID identifies the profile owner.
	UserID string `json:"user_id"`

	// Style is the user's own attachment style.
	Style AttachmentStyle `json:"style"`

	// PartnerStyle is the explicitly configured partner style, if any.
	// StyleUnknown means not configured; the pipeline then infers one from
	// conversation signals.
	PartnerStyle AttachmentStyle `json:"partner_style"`

	// RelationshipContext is a free-text label (e.g. "romantic", "coparenting").
	RelationshipContext string `json:"relationship_context,omitempty"`

	// EmotionalBaseline is the user's typical emotional-state label.
	EmotionalBaseline string `json:"emotional_baseline,omitempty"`

	// ChildrenNames, when set, enables child-centered candidate generation.
	ChildrenNames []string `json:"children_names,omitempty"`

	// Preferences holds feedback-derived counters and lists.
	Preferences PreferenceProfile `json:"preferences"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PreferenceProfile accumulates implicit feedback about which suggestions the
// user accepts or rejects, plus usage counters for linguistic habits.
type PreferenceProfile struct {
	// Accepted holds the most recent accepted suggestion texts (max 20,
	// oldest evicted first).
	Accepted []string `json:"accepted,omitempty"`

	// Rejected holds the most recent rejected suggestion texts (max 20).
	Rejected []string `json:"rejected,omitempty"`

	// IStatementUses counts accepted I-statement phrasings.
	IStatementUses int `json:"i_statement_uses"`

	// AbsoluteUses counts messages where the user kept absolute language.
	AbsoluteUses int `json:"absolute_uses"`

	// PatternUses counts per communication-pattern message occurrences.
	PatternUses map[string]int `json:"pattern_uses,omitempty"`
}

// NewUserAttachmentProfile returns a profile with unknown styles and empty
// preferences, timestamped at now.
func NewUserAttachmentProfile(userID string) *UserAttachmentProfile {
	now := time.Now().UTC()
	return &UserAttachmentProfile{
		UserID:       userID,
		Style:        StyleUnknown,
		PartnerStyle: StyleUnknown,
		Preferences: PreferenceProfile{
			PatternUses: make(map[string]int),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RecordAccepted appends text to the accepted list, evicting the oldest entry
// beyond PreferenceLimit.
func (p *PreferenceProfile) RecordAccepted(text string) {
	p.Accepted = appendCapped(p.Accepted, text, PreferenceLimit)
}

// RecordRejected appends text to the rejected list, evicting the oldest entry
// beyond PreferenceLimit.
func (p *PreferenceProfile) RecordRejected(text string) {
	p.Rejected = appendCapped(p.Rejected, text, PreferenceLimit)
}

// HasRejected reports whether text matches a previously rejected suggestion.
func (p *PreferenceProfile) HasRejected(text string) bool {
	for _, r := range p.Rejected {
		if r == text {
			return true
		}
	}
	return false
}

func appendCapped(list []string, text string, limit int) []string {
	list = append(list, text)
	if len(list) > limit {
		list = list[len(list)-limit:]
	}
	return list
}
