// Package knowledge loads the fixed set of coaching knowledge-base documents
// into strongly-typed, validated template records. The rest of the pipeline
// never touches untyped document data: everything is keyed lookups over the
// structures defined here, read-only after Load.
package knowledge

import "github.com/jwgray1010/unsaid/pkg/types"

// Category names the fixed document set. Lookup takes one of these.
type Category string

// Document categories.
const (
	CategoryAttachment    Category = "attachment_suggestions"
	CategoryTone          Category = "tone_suggestions"
	CategoryPattern       Category = "pattern_suggestions"
	CategoryContextual    Category = "contextual_suggestions"
	CategoryEmotionBucket Category = "emotion_buckets"
	CategoryTriggers      Category = "attachment_triggers"
	CategoryRepair        Category = "repair_scripts"
	CategoryAutoFix       Category = "auto_fixes"
	CategoryIStatement    Category = "i_statements"
	CategoryCrossStyle    Category = "cross_style"
	CategoryMindfulness   Category = "mindfulness"
	CategoryChildCentered Category = "child_centered"
	CategoryTherapeutic   Category = "therapeutic_advice"
	CategoryActionSteps   Category = "action_steps"
)

// AllCategories lists every document the adapter attempts to load.
var AllCategories = []Category{
	CategoryAttachment,
	CategoryTone,
	CategoryPattern,
	CategoryContextual,
	CategoryEmotionBucket,
	CategoryTriggers,
	CategoryRepair,
	CategoryAutoFix,
	CategoryIStatement,
	CategoryCrossStyle,
	CategoryMindfulness,
	CategoryChildCentered,
	CategoryTherapeutic,
	CategoryActionSteps,
}

// Placeholder tokens that templates may carry. The candidate generator owns
// placeholder filling; the adapter only validates that templates use known
// tokens.
const (
	TokenEmotion   = "{emotion}"
	TokenBehavior  = "{behavior}"
	TokenFear      = "{fear}"
	TokenRequest   = "{request}"
	TokenChildName = "{child_name}"
)

// Template is one priority-tagged suggestion template.
type Template struct {
	// Text is the suggestion body, possibly containing placeholder tokens.
	Text string `yaml:"text"`

	// Priority grades the template; it maps to candidate confidence.
	Priority types.Priority `yaml:"priority"`

	// Requires lists substrings that must all be present in the source
	// message for this template to apply. Empty means unconditional.
	Requires []string `yaml:"requires,omitempty"`

	// Reasoning is an optional explanation surfaced with the candidate.
	Reasoning string `yaml:"reasoning,omitempty"`
}

// ReplacePair is one ordered find/replace entry of the auto-fix table.
type ReplacePair struct {
	Find    string `yaml:"find"`
	Replace string `yaml:"replace"`
}

// keyedTemplates is the on-disk shape of most documents: key → templates.
type keyedTemplates struct {
	Entries map[string][]Template `yaml:"entries"`
}

// attachmentDoc separates conditional templates from style defaults.
type attachmentDoc struct {
	// Conditional templates per style; Requires gates each one.
	Conditional map[string][]Template `yaml:"conditional"`

	// Defaults per style, used when no conditional template applies.
	Defaults map[string][]Template `yaml:"defaults"`
}

// autoFixDoc is the ordered find/replace table for the alert bucket.
type autoFixDoc struct {
	Pairs []ReplacePair `yaml:"pairs"`
}

// emotionBucketDoc maps intensity bucket labels to emotion vocabularies.
type emotionBucketDoc struct {
	Buckets map[string][]string `yaml:"buckets"`
}

// triggersDoc maps attachment styles to trigger keyword families.
type triggersDoc struct {
	Triggers map[string][]string `yaml:"triggers"`
}
