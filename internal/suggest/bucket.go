package suggest

import (
	"strings"

	"github.com/jwgray1010/unsaid/internal/knowledge"
	"github.com/jwgray1010/unsaid/pkg/types"
)

// intensityBucket classifies the current emotional-state label.
type intensityBucket string

const (
	bucketHighIntensity intensityBucket = "highIntensity"
	bucketModerate      intensityBucket = "moderate"
	bucketRegulated     intensityBucket = "regulated"
)

// bucketFor matches the free-text state label against the emotion-bucket
// vocabularies by substring, defaulting to moderate.
func bucketFor(kb *knowledge.Base, state string) intensityBucket {
	state = strings.ToLower(strings.TrimSpace(state))
	if state == "" {
		return bucketModerate
	}

	buckets := kb.EmotionBuckets()
	for _, bucket := range []intensityBucket{bucketHighIntensity, bucketModerate, bucketRegulated} {
		for _, word := range buckets[string(bucket)] {
			if strings.Contains(state, word) {
				return bucket
			}
		}
	}
	return bucketModerate
}

// selectIndex picks a deterministic index into a multi-option template list
// from (bucket, attachment style).
//
// High intensity always takes the first (most urgent) option. Moderate picks
// first for anxious and the middle otherwise. Regulated picks the last option
// for secure users (variety) and a per-style index for the rest. The
// moderate/regulated asymmetry is intentional-as-observed and kept literal;
// see DESIGN.md.
func selectIndex(bucket intensityBucket, style types.AttachmentStyle, n int) int {
	if n <= 1 {
		return 0
	}

	switch bucket {
	case bucketHighIntensity:
		return 0

	case bucketRegulated:
		switch style {
		case types.StyleSecure:
			return n - 1
		case types.StyleAnxious, types.StyleDisorganized:
			return 0
		case types.StyleAvoidant:
			return n - 1
		default:
			return n / 2
		}

	default: // moderate
		if style == types.StyleAnxious {
			return 0
		}
		return n / 2
	}
}
