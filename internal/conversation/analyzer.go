// Package conversation derives escalation, turn-taking, emotional trajectory,
// and attachment-dynamic signals from a recent message window. All thresholds
// are fixed; no learning happens here.
package conversation

import (
	"math"
	"strings"

	"github.com/jwgray1010/unsaid/internal/classifier"
	"github.com/jwgray1010/unsaid/pkg/types"
)

// windowSize caps the analyzed message window.
const windowSize = 10

// Timing thresholds for turn-taking classification.
const (
	rapidFireGap    = 10.0  // seconds; mean gap below this is rapid fire
	slowResponseGap = 300.0 // seconds; mean gap above this is slow response
)

// Analyzer computes ConversationAnalysis over message histories.
type Analyzer struct {
	classifier *classifier.Classifier
}

// NewAnalyzer creates a conversation analyzer using the given classifier to
// fill missing message tones.
func NewAnalyzer(c *classifier.Classifier) *Analyzer {
	return &Analyzer{classifier: c}
}

// AnalyzeFlow derives the conversation signals from the last ten messages.
// An empty history yields a neutral, balanced, stable analysis.
func (a *Analyzer) AnalyzeFlow(history types.ConversationHistory) types.ConversationAnalysis {
	window := history.Window(windowSize)
	if len(window) == 0 {
		return types.ConversationAnalysis{
			DominantTone: types.ToneNeutral,
			TurnTaking:   types.TurnBalanced,
			Trajectory:   types.TrajectoryStable,
			Dynamic:      types.DynamicSecure,
			Quality:      types.QualityHealthy,
		}
	}

	// Fill tones the caller didn't provide.
	toned := make([]types.ConversationMessage, len(window))
	copy(toned, window)
	for i := range toned {
		if toned[i].Tone == "" {
			toned[i].Tone = a.classifier.Classify(toned[i].Text).Tone.Primary
		}
	}

	trajectory := trajectory(toned)

	return types.ConversationAnalysis{
		IsEscalating: isEscalating(toned),
		DominantTone: dominantTone(toned),
		TurnTaking:   turnTaking(toned),
		Trajectory:   trajectory,
		Dynamic:      attachmentDynamic(toned),
		Quality:      quality(toned, trajectory),
		MessageCount: len(toned),
	}
}

// isEscalating checks the most recent three messages: two alerts, or three
// messages that are all alert or caution.
func isEscalating(msgs []types.ConversationMessage) bool {
	recent := msgs
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}

	alerts, heated := 0, 0
	for _, m := range recent {
		switch m.Tone {
		case types.ToneAlert:
			alerts++
			heated++
		case types.ToneCaution:
			heated++
		}
	}
	return alerts >= 2 || heated >= 3
}

// dominantTone is a plurality vote over the window. Ties resolve toward the
// more severe tone (alert > caution > clear > neutral).
func dominantTone(msgs []types.ConversationMessage) types.Tone {
	counts := make(map[types.Tone]int)
	for _, m := range msgs {
		counts[m.Tone]++
	}

	best := types.ToneNeutral
	bestCount := -1
	for _, tone := range []types.Tone{types.ToneAlert, types.ToneCaution, types.ToneClear, types.ToneNeutral} {
		if counts[tone] > bestCount {
			best = tone
			bestCount = counts[tone]
		}
	}
	return best
}

// turnTaking classifies rhythm: sender dominance first, then timing.
func turnTaking(msgs []types.ConversationMessage) types.TurnTaking {
	var user, partner int
	for _, m := range msgs {
		if m.Sender == types.SenderPartner {
			partner++
		} else {
			user++
		}
	}

	total := user + partner
	if total >= 3 {
		ratio := float64(user) / float64(total)
		if ratio > 0.7 {
			return types.TurnUserDominated
		}
		if ratio < 0.3 {
			return types.TurnPartnerDominated
		}
	}

	if gap, ok := meanGapSeconds(msgs); ok {
		if gap < rapidFireGap {
			return types.TurnRapidFire
		}
		if gap > slowResponseGap {
			return types.TurnSlowResponse
		}
	}

	return types.TurnBalanced
}

func meanGapSeconds(msgs []types.ConversationMessage) (float64, bool) {
	var sum float64
	var n int
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Timestamp.IsZero() || msgs[i-1].Timestamp.IsZero() {
			continue
		}
		sum += msgs[i].Timestamp.Sub(msgs[i-1].Timestamp).Seconds()
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// toneValue maps a tone bucket onto a signed scale for trajectory math.
func toneValue(t types.Tone) float64 {
	switch t {
	case types.ToneClear:
		return 1.0
	case types.ToneNeutral:
		return 0.5
	case types.ToneCaution:
		return -0.5
	case types.ToneAlert:
		return -1.0
	default:
		return 0.5
	}
}

// trajectory compares first-half and second-half mean tone values. A small
// delta is stable; a high variance flags volatile regardless of direction.
func trajectory(msgs []types.ConversationMessage) types.Trajectory {
	if len(msgs) < 2 {
		return types.TrajectoryStable
	}

	values := make([]float64, len(msgs))
	for i, m := range msgs {
		values[i] = toneValue(m.Tone)
	}

	if variance(values) > 0.8 {
		return types.TrajectoryVolatile
	}

	mid := len(values) / 2
	delta := mean(values[mid:]) - mean(values[:mid])
	if math.Abs(delta) < 0.5 {
		return types.TrajectoryStable
	}
	if delta > 0 {
		return types.TrajectoryImproving
	}
	return types.TrajectoryDeclining
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func variance(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var sum float64
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(vals))
}

// Attachment keyword families for the dynamics vote. Deliberately smaller than
// the classifier's per-message families: across a window, a few strong markers
// vote more reliably than broad phrase lists.
var dynamicFamilies = map[types.AttachmentStyle][]string{
	types.StyleAnxious:      {"are you mad", "don't leave", "why haven't you", "are we okay", "need to know"},
	types.StyleAvoidant:     {"need space", "leave me alone", "i'm fine", "drop it", "stop pushing"},
	types.StyleSecure:       {"i hear you", "let's talk", "i understand", "makes sense", "work this out"},
	types.StyleDisorganized: {"i don't know what", "falling apart", "can't do this", "love you but"},
}

// attachmentDynamic runs a per-sender keyword-family vote and pairs the two
// winners into a dynamic label.
func attachmentDynamic(msgs []types.ConversationMessage) types.AttachmentDynamic {
	userStyle := voteStyle(msgs, types.SenderUser)
	partnerStyle := voteStyle(msgs, types.SenderPartner)
	return pairDynamic(userStyle, partnerStyle)
}

func voteStyle(msgs []types.ConversationMessage, sender types.Sender) types.AttachmentStyle {
	votes := make(map[types.AttachmentStyle]int)
	for _, m := range msgs {
		if m.Sender != sender {
			continue
		}
		lower := strings.ToLower(m.Text)
		for style, phrases := range dynamicFamilies {
			for _, p := range phrases {
				if strings.Contains(lower, p) {
					votes[style]++
				}
			}
		}
	}

	best := types.StyleSecure
	bestVotes := 0
	// Fixed iteration order keeps ties deterministic.
	for _, style := range []types.AttachmentStyle{
		types.StyleAnxious, types.StyleAvoidant, types.StyleDisorganized, types.StyleSecure,
	} {
		if votes[style] > bestVotes {
			best = style
			bestVotes = votes[style]
		}
	}
	return best
}

func pairDynamic(a, b types.AttachmentStyle) types.AttachmentDynamic {
	if a == types.StyleDisorganized || b == types.StyleDisorganized {
		return types.DynamicChaotic
	}
	anxious := boolToInt(a == types.StyleAnxious) + boolToInt(b == types.StyleAnxious)
	avoidant := boolToInt(a == types.StyleAvoidant) + boolToInt(b == types.StyleAvoidant)

	switch {
	case anxious == 2:
		return types.DynamicAnxiousAnxious
	case avoidant == 2:
		return types.DynamicAvoidantAvoidant
	case anxious == 1 && avoidant == 1:
		return types.DynamicAnxiousAvoidant
	case anxious == 1 || avoidant == 1:
		// One insecure pole paired with secure still leans toward that pole's
		// pursue/withdraw pattern.
		if anxious == 1 {
			return types.DynamicAnxiousAnxious
		}
		return types.DynamicAvoidantAvoidant
	default:
		return types.DynamicSecure
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// quality buckets the window from its alert/clear ratios.
func quality(msgs []types.ConversationMessage, traj types.Trajectory) types.ConversationQuality {
	var alerts, clears, neutrals int
	for _, m := range msgs {
		switch m.Tone {
		case types.ToneAlert:
			alerts++
		case types.ToneClear:
			clears++
		case types.ToneNeutral:
			neutrals++
		}
	}

	n := float64(len(msgs))
	alertRatio := float64(alerts) / n
	clearRatio := float64(clears) / n

	switch {
	case alertRatio >= 0.3:
		return types.QualityConflicted
	case traj == types.TrajectoryImproving:
		return types.QualityImproving
	case alertRatio > 0.1:
		return types.QualityStrained
	case clearRatio >= 0.4:
		return types.QualityHealthy
	case float64(neutrals)/n >= 0.8:
		return types.QualityDisconnected
	default:
		return types.QualityHealthy
	}
}
