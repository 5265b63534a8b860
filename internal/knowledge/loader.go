package knowledge

import (
	"embed"
	"fmt"
	"log"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwgray1010/unsaid/pkg/types"
)

//go:embed data/*.yaml
var documents embed.FS

// Base holds every loaded document. It is immutable after Load; all accessors
// are safe for concurrent use.
type Base struct {
	attachment attachmentDoc
	keyed      map[Category]map[string][]Template
	autoFixes  []ReplacePair
	buckets    map[string][]string
	triggers   map[string][]string
}

// Load parses the full document set from the embedded data directory.
// A document that is missing or fails to decode degrades to an empty category
// with a logged warning; Load itself never fails.
func Load() *Base {
	b := &Base{
		keyed:    make(map[Category]map[string][]Template),
		buckets:  make(map[string][]string),
		triggers: make(map[string][]string),
	}

	for _, cat := range AllCategories {
		raw, err := documents.ReadFile(fmt.Sprintf("data/%s.yaml", cat))
		if err != nil {
			log.Printf("knowledge: document %s missing, category degrades to empty: %v", cat, err)
			continue
		}
		if err := b.decode(cat, raw); err != nil {
			log.Printf("knowledge: document %s malformed, category degrades to empty: %v", cat, err)
		}
	}

	return b
}

// Empty returns a Base with no documents loaded, the state every category
// degrades to when its document is missing. Used by tests and degraded paths.
func Empty() *Base {
	return &Base{
		keyed:    make(map[Category]map[string][]Template),
		buckets:  make(map[string][]string),
		triggers: make(map[string][]string),
	}
}

func (b *Base) decode(cat Category, raw []byte) error {
	switch cat {
	case CategoryAttachment:
		var doc attachmentDoc
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return err
		}
		if err := validateKeyed(doc.Conditional); err != nil {
			return err
		}
		if err := validateKeyed(doc.Defaults); err != nil {
			return err
		}
		b.attachment = doc

	case CategoryAutoFix:
		var doc autoFixDoc
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return err
		}
		for i, p := range doc.Pairs {
			if p.Find == "" {
				return fmt.Errorf("pair %d has empty find", i)
			}
		}
		b.autoFixes = doc.Pairs

	case CategoryEmotionBucket:
		var doc emotionBucketDoc
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return err
		}
		b.buckets = doc.Buckets

	case CategoryTriggers:
		var doc triggersDoc
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return err
		}
		b.triggers = doc.Triggers

	default:
		var doc keyedTemplates
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return err
		}
		if err := validateKeyed(doc.Entries); err != nil {
			return err
		}
		b.keyed[cat] = doc.Entries
	}

	return nil
}

// validateKeyed checks that every template has text and a known priority.
// A missing priority defaults to low rather than failing the document.
func validateKeyed(entries map[string][]Template) error {
	for key, list := range entries {
		for i := range list {
			t := &list[i]
			if strings.TrimSpace(t.Text) == "" {
				return fmt.Errorf("key %q template %d has empty text", key, i)
			}
			switch t.Priority {
			case types.PriorityCritical, types.PriorityHigh, types.PriorityMedium, types.PriorityLow:
			case "":
				t.Priority = types.PriorityLow
			default:
				return fmt.Errorf("key %q template %d has unknown priority %q", key, i, t.Priority)
			}
		}
	}
	return nil
}

// Lookup returns the templates for (category, key). Unknown categories and
// keys return nil, never an error.
func (b *Base) Lookup(cat Category, key string) []Template {
	if m, ok := b.keyed[cat]; ok {
		return m[key]
	}
	return nil
}

// AttachmentConditional returns the gated templates for a style.
func (b *Base) AttachmentConditional(style types.AttachmentStyle) []Template {
	return b.attachment.Conditional[string(style)]
}

// AttachmentDefaults returns the fallback templates for a style.
func (b *Base) AttachmentDefaults(style types.AttachmentStyle) []Template {
	return b.attachment.Defaults[string(style)]
}

// AutoFixes returns the ordered find/replace table for alert-bucket text.
func (b *Base) AutoFixes() []ReplacePair {
	return b.autoFixes
}

// EmotionBuckets returns the bucket-label → vocabulary map.
func (b *Base) EmotionBuckets() map[string][]string {
	return b.buckets
}

// Triggers returns the trigger keyword family for a style.
func (b *Base) Triggers(style types.AttachmentStyle) []string {
	return b.triggers[string(style)]
}

// CrossStyleKey builds the matrix key for a (user, partner) style pair.
func CrossStyleKey(user, partner types.AttachmentStyle) string {
	return string(user) + "->" + string(partner)
}
