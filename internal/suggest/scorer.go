package suggest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jwgray1010/unsaid/pkg/types"
)

// Composite score weights. They sum to 1.0; adjustment multipliers can push
// individual scores above it.
const (
	weightAttachment    = 0.30
	weightEmotionalIQ   = 0.25
	weightEffectiveness = 0.20
	weightPreservation  = 0.15
	weightLengthFit     = 0.10
)

// confidenceFloor is the minimum adjusted confidence a candidate must clear;
// below it the engine falls back to a generic clarity-preserving response.
const confidenceFloor = 0.4

// Adjuster mutates a candidate's score and confidence from feedback and
// conversation signals. It is pluggable so the heuristic version can later be
// replaced by a learned model without touching generation.
type Adjuster interface {
	// Adjust returns the multiplier for the candidate, or false to exclude it
	// entirely.
	Adjust(c types.FixCandidate, req Request) (float64, bool)
}

// Ranker scores and orders candidates.
type Ranker struct {
	adjuster Adjuster
}

// NewRanker creates a ranker with the default preference adjuster.
func NewRanker() *Ranker {
	return &Ranker{adjuster: PreferenceAdjuster{}}
}

// NewRankerWithAdjuster creates a ranker with a custom adjustment strategy.
func NewRankerWithAdjuster(a Adjuster) *Ranker {
	return &Ranker{adjuster: a}
}

// Rank scores every candidate and returns them in stable descending score
// order; ties keep generation order. Candidates matching previously rejected
// suggestions are excluded. When nothing clears the confidence floor, a single
// generic fallback is returned, so the result is never empty.
func (r *Ranker) Rank(candidates []types.FixCandidate, req Request) []types.RankedFix {
	ranked := make([]types.RankedFix, 0, len(candidates))

	for _, c := range candidates {
		if req.Profile.Preferences.HasRejected(c.Text) {
			continue
		}

		mult, ok := r.adjuster.Adjust(c, req)
		if !ok {
			continue
		}

		score := r.composite(c, req) * mult
		conf := clamp01(c.Confidence * mult)

		ranked = append(ranked, types.RankedFix{
			Candidate:          c,
			Score:              score,
			AdjustedConfidence: conf,
			Reasoning:          reasoningFor(c),
			ExpectedOutcome:    expectedOutcome(c.Type),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if !anyAboveFloor(ranked) {
		return []types.RankedFix{fallbackFix(req)}
	}
	return ranked
}

func anyAboveFloor(ranked []types.RankedFix) bool {
	for _, r := range ranked {
		if r.AdjustedConfidence >= confidenceFloor {
			return true
		}
	}
	return false
}

// composite is the weighted multi-factor score.
func (r *Ranker) composite(c types.FixCandidate, req Request) float64 {
	return weightAttachment*c.Relevance.AlignmentWeight() +
		weightEmotionalIQ*emotionalScore(c) +
		weightEffectiveness*effectivenessScore(c) +
		weightPreservation*preservationScore(c) +
		weightLengthFit*lengthFit(c.Text, req.Text)
}

// emotionalScore rewards candidates that work on the feeling layer.
func emotionalScore(c types.FixCandidate) float64 {
	switch c.Type {
	case types.CandidateContextual, types.CandidateEmpathy, types.CandidateIStatement:
		return 0.9
	case types.CandidateMindfulness, types.CandidateRepairScript:
		return 0.75
	default:
		return 0.5
	}
}

// effectivenessScore rewards structural and clarity improvements.
func effectivenessScore(c types.FixCandidate) float64 {
	switch c.Type {
	case types.CandidateStructure, types.CandidateClarity, types.CandidateAbsoluteSoftener:
		return 0.9
	case types.CandidateAutoFix, types.CandidateToneBucket:
		return 0.75
	default:
		return 0.5
	}
}

// preservationScore rewards connection-keeping candidates.
func preservationScore(c types.FixCandidate) float64 {
	switch c.Type {
	case types.CandidateCrossStyle, types.CandidateReassurance, types.CandidateContradiction:
		return 0.9
	case types.CandidateChildCentered, types.CandidateRepairScript:
		return 0.75
	default:
		return 0.5
	}
}

// lengthFit scores how close the candidate length is to the original:
// within [0.8, 1.5]x is ideal, within [0.5, 2.0]x acceptable, else poor.
func lengthFit(candidate, original string) float64 {
	if len(original) == 0 {
		return 1.0
	}
	ratio := float64(len(candidate)) / float64(len(original))
	switch {
	case ratio >= 0.8 && ratio <= 1.5:
		return 1.0
	case ratio >= 0.5 && ratio <= 2.0:
		return 0.7
	default:
		return 0.3
	}
}

// PreferenceAdjuster is the default feedback-driven adjustment strategy.
type PreferenceAdjuster struct{}

// Thresholds for preference-derived multipliers.
const (
	iStatementHabit  = 3 // accepted I-statements before the boost kicks in
	absoluteOveruse  = 5 // absolute-bearing messages before the penalty
	boostIStatement  = 1.2
	penaltyAbsolutes = 0.8
	boostEscalation  = 1.3
	boostMoodPattern = 1.2
)

// Adjust applies the documented multipliers. It never excludes candidates;
// rejection filtering happens before scoring.
func (PreferenceAdjuster) Adjust(c types.FixCandidate, req Request) (float64, bool) {
	mult := 1.0
	prefs := req.Profile.Preferences

	// Users who keep accepting I-statement phrasing get more of it.
	if prefs.IStatementUses >= iStatementHabit && c.Type == types.CandidateIStatement {
		mult *= boostIStatement
	}

	// Users who overuse absolutes need candidates that address them; ones
	// that don't are discounted.
	if prefs.AbsoluteUses >= absoluteOveruse &&
		req.Analysis.Linguistic.HasAbsolutes &&
		c.Type != types.CandidateAbsoluteSoftener && c.Type != types.CandidateAutoFix {
		mult *= penaltyAbsolutes
	}

	// Conversation trends boost the candidate families that counter them.
	switch req.RecentPattern {
	case types.PatternEscalatingAnger:
		if c.Type == types.CandidateMindfulness || c.Type == types.CandidateRepairScript {
			mult *= boostEscalation
		}
	case types.PatternPersistentSadness:
		if c.Type == types.CandidateContextual || c.Type == types.CandidateEmpathy || c.Type == types.CandidateIStatement {
			mult *= boostMoodPattern
		}
	case types.PatternAnxiety:
		if c.Type == types.CandidateReassurance || c.Type == types.CandidateIStatement || c.Type == types.CandidateCrossStyle {
			mult *= boostMoodPattern
		}
	}

	return mult, true
}

// fallbackFix is the generic clarity-preserving response used when no
// candidate clears the confidence floor: simple messages pass through
// unchanged, anything else gets a neutral rephrase prompt.
func fallbackFix(req Request) types.RankedFix {
	text := req.Text
	reasoning := "Your message reads clearly as written."
	if req.Analysis.Linguistic.Disorganized || req.Analysis.Linguistic.HasAbsolutes || len(req.Text) > 200 {
		text = "Try restating this in one or two sentences: what happened, and what you need next."
		reasoning = "No strong rewrite applied; a short restatement keeps the message clear."
	}

	return types.RankedFix{
		Candidate: types.FixCandidate{
			Text:       text,
			Type:       types.CandidateFallback,
			Relevance:  types.RelevanceLow,
			Source:     "fallback",
			Confidence: confidenceFloor,
		},
		Score:              weightLengthFit, // only the length factor applies
		AdjustedConfidence: confidenceFloor,
		Reasoning:          reasoning,
		ExpectedOutcome:    "Message is delivered without added risk.",
	}
}

// reasoningFor keeps the template's own reasoning when present and otherwise
// summarises the dominant scoring factor.
func reasoningFor(c types.FixCandidate) string {
	if c.Reasoning != "" {
		return c.Reasoning
	}
	return fmt.Sprintf("Suggested by the %s engine.", strings.ReplaceAll(c.Source, "_", " "))
}

// expectedOutcome maps candidate types to the likely effect of sending them.
func expectedOutcome(typ string) string {
	switch typ {
	case types.CandidateIStatement:
		return "Lowers defensiveness by owning the feeling instead of assigning blame."
	case types.CandidateAbsoluteSoftener, types.CandidateAutoFix:
		return "Reduces the chance of a defensive reply to charged wording."
	case types.CandidateCrossStyle:
		return "Phrased for how your partner's style receives messages."
	case types.CandidateRepairScript:
		return "Opens a path back from the conflict."
	case types.CandidateMindfulness:
		return "A calmer send after a short pause."
	case types.CandidateChildCentered:
		return "Keeps the focus on your child rather than the conflict."
	case types.CandidateToneBucket, types.CandidatePattern:
		return "Same content, lower emotional risk."
	default:
		return "Clearer, lower-conflict phrasing."
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
