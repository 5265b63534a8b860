package classifier

import (
	"sort"
	"strings"

	"github.com/jwgray1010/unsaid/pkg/types"
)

// Classifier evaluates the rule tables in rules.go over a single message.
// It is stateless and performs no I/O; Classify is safe for concurrent use.
type Classifier struct{}

// New creates a lexical classifier.
func New() *Classifier {
	return &Classifier{}
}

// maxToneConfidence caps tone confidence after structural adjustments.
const maxToneConfidence = 0.95

// Classify produces the full per-message analysis bundle. Empty or
// whitespace-only input yields a neutral, zero-valued analysis, never an error.
func (c *Classifier) Classify(text string) types.DeepTextAnalysis {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return types.DeepTextAnalysis{
			Attachment: types.AttachmentSignal{Style: types.StyleUnknown},
			Pattern:    types.PatternNeutralTalk,
			Tone:       types.ToneProfile{Primary: types.ToneNeutral},
		}
	}

	lower := strings.ToLower(trimmed)

	analysis := types.DeepTextAnalysis{
		Sentiment:           sentiment(lower),
		EmotionalIntensity:  additiveScore(lower, intensityWords, 0.2),
		Linguistic:          linguisticFlags(trimmed, lower),
		Attachment:          attachmentSignal(lower),
		DefensiveMechanisms: matchLabels(lower, defensiveMechanisms),
		EmotionalNeeds:      matchLabels(lower, emotionalNeeds),
		Pattern:             communicationPattern(lower),
		Tone:                toneProfile(trimmed, lower),
		UrgencyLevel:        additiveScore(lower, urgencyWords, 0.25),
		ConflictLevel:       additiveScore(lower, conflictWords, 0.15),
		IntimacyLevel:       additiveScore(lower, intimacyWords, 0.2),
	}

	analysis.Dynamics = types.RelationshipDynamics{
		Distancing:        containsAny(lower, distancingPhrases),
		NegativeIntensity: additiveScore(lower, negativeWords, 0.15),
	}

	return analysis
}

// toneProfile runs the first-match tier interpreter and adjusts the tier base
// confidence by message length, exclamation count, and caps ratio.
func toneProfile(raw, lower string) types.ToneProfile {
	for _, tier := range toneTiers {
		if !containsAny(lower, tier.phrases) {
			continue
		}

		conf := tier.base

		// Longer messages give the lexical match more supporting context.
		if len(lower) > 80 {
			conf += 0.05
		}

		// Exclamations raise confidence in alert/caution reads.
		if n := strings.Count(raw, "!"); n > 0 {
			conf += 0.03 * float64(min(n, 3))
		}

		if capsRatio(raw) > 0.5 && len(raw) > 10 {
			conf += 0.1
		}

		return types.ToneProfile{Primary: tier.tone, Confidence: min(conf, maxToneConfidence)}
	}

	return types.ToneProfile{Primary: types.ToneNeutral, Confidence: 0.5}
}

// attachmentSignal runs the max-score interpreter over the four style
// families. The winner must strictly exceed every other family; ties and
// all-zero results classify as unknown.
func attachmentSignal(lower string) types.AttachmentSignal {
	best := types.StyleUnknown
	var bestScore, secondScore float64

	for _, fam := range attachmentFamilies {
		score := float64(countAny(lower, fam.phrases)) * fam.weight
		if score > bestScore {
			secondScore = bestScore
			bestScore = score
			best = types.AttachmentStyle(fam.name)
		} else if score > secondScore {
			secondScore = score
		}
	}

	if bestScore == 0 || bestScore == secondScore {
		return types.AttachmentSignal{Style: types.StyleUnknown}
	}

	return types.AttachmentSignal{
		Style:     best,
		Intensity: min(bestScore*0.3, 1.0),
	}
}

// communicationPattern runs the first-match interpreter over the ordered
// pattern families.
func communicationPattern(lower string) types.CommunicationPattern {
	for _, fam := range patternFamilies {
		if containsAny(lower, fam.phrases) {
			return fam.pattern
		}
	}
	return types.PatternNeutralTalk
}

func linguisticFlags(raw, lower string) types.LinguisticFlags {
	return types.LinguisticFlags{
		HasAbsolutes:    containsAny(lower, absoluteWords),
		Disorganized:    isDisorganized(raw),
		ClarityHeadroom: containsAny(lower, fillerWords) || strings.Contains(raw, "  "),
	}
}

// isDisorganized flags long text with sparse sentence terminators and a high
// exclamation density.
func isDisorganized(raw string) bool {
	if len(raw) < 120 {
		return false
	}
	terminators := strings.Count(raw, ".") + strings.Count(raw, "?")
	exclaims := strings.Count(raw, "!")
	return terminators < len(raw)/120 && exclaims >= 3
}

// sentiment is a coarse polarity: positive hits minus negative hits, scaled
// and clamped to [-1, 1].
func sentiment(lower string) float64 {
	pos := countAny(lower, positiveWords)
	neg := countAny(lower, negativeWords)
	s := float64(pos-neg) * 0.25
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// additiveScore sums perHit for every occurrence of every phrase, capped at 1.0.
func additiveScore(lower string, phrases []string, perHit float64) float64 {
	return min(float64(countAny(lower, phrases))*perHit, 1.0)
}

// matchLabels returns the labels whose phrase list hits the text, in a
// deterministic order.
func matchLabels(lower string, table map[string][]string) []string {
	// Iterate in sorted-key order so results are deterministic.
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var labels []string
	for _, k := range keys {
		if containsAny(lower, table[k]) {
			labels = append(labels, k)
		}
	}
	return labels
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func countAny(lower string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		n += strings.Count(lower, p)
	}
	return n
}

func capsRatio(raw string) float64 {
	var letters, upper int
	for _, r := range raw {
		if r >= 'a' && r <= 'z' {
			letters++
		} else if r >= 'A' && r <= 'Z' {
			letters++
			upper++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}
