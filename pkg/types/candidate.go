package types

// RelevanceTier grades how strongly a candidate targets the user's attachment
// style.
type RelevanceTier string

// Relevance tier constants.
const (
	RelevanceHigh   RelevanceTier = "high"
	RelevanceMedium RelevanceTier = "medium"
	RelevanceLow    RelevanceTier = "low"
)

// AlignmentWeight maps a relevance tier to its attachment-alignment score
// component. Unknown tiers score as low.
func (r RelevanceTier) AlignmentWeight() float64 {
	switch r {
	case RelevanceHigh:
		return 1.0
	case RelevanceMedium:
		return 0.6
	default:
		return 0.3
	}
}

// Priority grades a knowledge-base template's importance.
type Priority string

// Priority constants.
const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Confidence maps a priority tier to a candidate confidence in (0, 1].
// The mapping is monotonic: critical > high > medium > low.
func (p Priority) Confidence() float64 {
	switch p {
	case PriorityCritical:
		return 0.95
	case PriorityHigh:
		return 0.85
	case PriorityMedium:
		return 0.7
	default:
		return 0.5
	}
}

// Candidate type tags. Each generator stamps its outputs so the scorer can
// recognise the concern a candidate addresses.
const (
	CandidateAttachment       = "attachment_template"
	CandidateToneBucket       = "tone_suggestion"
	CandidatePattern          = "pattern_suggestion"
	CandidateContextual       = "emotional_context"
	CandidateAutoFix          = "auto_fix"
	CandidateRepairScript     = "repair_script"
	CandidateChildCentered    = "child_centered"
	CandidateIStatement       = "feeling_transformation"
	CandidateCrossStyle       = "connection_bridging"
	CandidateMindfulness      = "mindfulness"
	CandidateEmpathy          = "empathy"
	CandidateStructure        = "structure"
	CandidateClarity          = "clarity"
	CandidateAbsoluteSoftener = "absolute_reduction"
	CandidateReassurance      = "reassurance"
	CandidateContradiction    = "contradiction_resolution"
	CandidateFallback         = "generic_fallback"
)

// FixCandidate is a single proposed replacement or coaching message awaiting
// scoring. Candidates are ephemeral: generated, scored, and discarded per call.
type FixCandidate struct {
	// Text is the proposed replacement or coaching message.
	Text string `json:"text"`

	// Type is a candidate type tag (see Candidate* constants).
	Type string `json:"type"`

	// Relevance grades attachment-style fit.
	Relevance RelevanceTier `json:"relevance"`

	// Reasoning explains why this candidate was generated.
	Reasoning string `json:"reasoning,omitempty"`

	// Source identifies the generator that emitted the candidate.
	Source string `json:"source"`

	// Confidence is the generator's own confidence, always in [0, 1].
	Confidence float64 `json:"confidence"`
}

// RankedFix wraps a FixCandidate with its composite score and adjusted
// confidence. Ranked lists are totally ordered by Score descending; the sort is
// stable so equal scores keep generation order.
type RankedFix struct {
	Candidate FixCandidate `json:"candidate"`

	// Score is the weighted multi-factor composite (0.0 to 1.0+after boosts).
	Score float64 `json:"score"`

	// AdjustedConfidence is the candidate confidence after feedback and
	// conversation-pattern adjustments.
	AdjustedConfidence float64 `json:"adjusted_confidence"`

	// Reasoning summarises the dominant scoring factors.
	Reasoning string `json:"reasoning,omitempty"`

	// ExpectedOutcome describes the likely effect of sending this phrasing.
	ExpectedOutcome string `json:"expected_outcome,omitempty"`
}
