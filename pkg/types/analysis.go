// Package types defines the core data structures for the Unsaid coaching
// pipeline. These types represent per-message analyses, suggestion candidates,
// and the long-lived user attachment profile shared across components.
package types

// Tone represents the emotional-risk bucket of a message.
type Tone string

// Tone bucket constants, ordered by severity.
const (
	// ToneAlert indicates high-risk language (hostility, contempt, threats)
	ToneAlert Tone = "alert"

	// ToneCaution indicates elevated-risk language (frustration, absolutes)
	ToneCaution Tone = "caution"

	// ToneClear indicates explicitly positive or connective language
	ToneClear Tone = "clear"

	// ToneNeutral indicates no detected risk signal
	ToneNeutral Tone = "neutral"
)

// ValidTones is a slice of all valid tone buckets for validation.
var ValidTones = []Tone{ToneAlert, ToneCaution, ToneClear, ToneNeutral}

// AttachmentStyle classifies a person's relational communication pattern.
type AttachmentStyle string

// Attachment style constants.
const (
	StyleSecure       AttachmentStyle = "secure"
	StyleAnxious      AttachmentStyle = "anxious"
	StyleAvoidant     AttachmentStyle = "avoidant"
	StyleDisorganized AttachmentStyle = "disorganized"
	StyleUnknown      AttachmentStyle = "unknown"
)

// ValidAttachmentStyles is a slice of all valid attachment styles for validation.
var ValidAttachmentStyles = []AttachmentStyle{
	StyleSecure,
	StyleAnxious,
	StyleAvoidant,
	StyleDisorganized,
	StyleUnknown,
}

// IsValid reports whether the style is one of the known classifications.
func (s AttachmentStyle) IsValid() bool {
	for _, v := range ValidAttachmentStyles {
		if s == v {
			return true
		}
	}
	return false
}

// CommunicationPattern labels the dominant communication behaviour of a message.
type CommunicationPattern string

// Communication pattern constants.
const (
	PatternCriticism     CommunicationPattern = "criticism"
	PatternDefensiveness CommunicationPattern = "defensiveness"
	PatternContempt      CommunicationPattern = "contempt"
	PatternStonewalling  CommunicationPattern = "stonewalling"
	PatternDemand        CommunicationPattern = "demand"
	PatternWithdrawal    CommunicationPattern = "withdrawal"
	PatternRepair        CommunicationPattern = "repair"
	PatternNeutralTalk   CommunicationPattern = "neutral"
)

// AttachmentSignal is the attachment classification derived from a single
// message, with the strength of the detected signal.
type AttachmentSignal struct {
	// Style is the winning attachment style, or StyleUnknown when no
	// family scored.
	Style AttachmentStyle `json:"style"`

	// Intensity is the normalized strength of the winning family (0.0 to 1.0).
	Intensity float64 `json:"intensity"`
}

// ToneProfile is the tone classification with its confidence.
type ToneProfile struct {
	Primary    Tone    `json:"primary"`
	Confidence float64 `json:"confidence"`
}

// LinguisticFlags captures structural observations about the text that the
// generators use independently of tone.
type LinguisticFlags struct {
	// HasAbsolutes is true when all-or-nothing words (always, never, ...) appear.
	HasAbsolutes bool `json:"has_absolutes"`

	// Disorganized is true when the text is long, sparsely terminated, and
	// exclamation-dense.
	Disorganized bool `json:"disorganized"`

	// ClarityHeadroom is true when filler words or doubled spaces suggest the
	// message could be tightened without changing meaning.
	ClarityHeadroom bool `json:"clarity_headroom"`
}

// RelationshipDynamics summarises relational signals in the message.
type RelationshipDynamics struct {
	// Distancing is true when the text asks for space or signals withdrawal.
	Distancing bool `json:"distancing"`

	// Context is the configured relationship context carried through from the
	// session (e.g. "romantic", "coparenting").
	Context string `json:"context,omitempty"`

	// NegativeIntensity is the strength of negative relational language (0-1).
	NegativeIntensity float64 `json:"negative_intensity"`
}

// DeepTextAnalysis is the immutable per-call classification bundle produced by
// the lexical classifier. All downstream components read from it; none mutate it.
type DeepTextAnalysis struct {
	// Sentiment is a coarse polarity in [-1, 1] (negative to positive).
	Sentiment float64 `json:"sentiment"`

	// EmotionalIntensity is the additive keyword intensity, capped at 1.0.
	EmotionalIntensity float64 `json:"emotional_intensity"`

	// Linguistic holds structural flags about the text.
	Linguistic LinguisticFlags `json:"linguistic"`

	// Attachment is the per-message attachment signal.
	Attachment AttachmentSignal `json:"attachment"`

	// DefensiveMechanisms lists detected defensive behaviours (blame-shift,
	// minimising, counter-attack). Empty when none detected.
	DefensiveMechanisms []string `json:"defensive_mechanisms,omitempty"`

	// EmotionalNeeds lists inferred needs behind the message (reassurance,
	// space, acknowledgement). Empty when none inferred.
	EmotionalNeeds []string `json:"emotional_needs,omitempty"`

	// Pattern is the dominant communication pattern.
	Pattern CommunicationPattern `json:"pattern"`

	// Tone is the tone classification with confidence.
	Tone ToneProfile `json:"tone"`

	// Dynamics summarises relational signals.
	Dynamics RelationshipDynamics `json:"dynamics"`

	// UrgencyLevel, ConflictLevel and IntimacyLevel are additive keyword
	// scores, each capped at 1.0.
	UrgencyLevel  float64 `json:"urgency_level"`
	ConflictLevel float64 `json:"conflict_level"`
	IntimacyLevel float64 `json:"intimacy_level"`
}
