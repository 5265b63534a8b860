package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwgray1010/unsaid/pkg/types"
)

func TestLoad_AllCategoriesPresent(t *testing.T) {
	b := Load()

	// Every keyed document in the embedded set should have decoded.
	for _, cat := range []Category{
		CategoryTone, CategoryPattern, CategoryContextual, CategoryRepair,
		CategoryIStatement, CategoryCrossStyle, CategoryMindfulness,
		CategoryChildCentered, CategoryTherapeutic, CategoryActionSteps,
	} {
		assert.NotEmpty(t, b.keyed[cat], "category %s should load", cat)
	}

	assert.NotEmpty(t, b.AutoFixes())
	assert.NotEmpty(t, b.EmotionBuckets())
	assert.NotEmpty(t, b.Triggers(types.StyleAnxious))
	assert.NotEmpty(t, b.AttachmentDefaults(types.StyleAnxious))
	assert.NotEmpty(t, b.AttachmentConditional(types.StyleAvoidant))
}

func TestLoad_TemplatesValidated(t *testing.T) {
	b := Load()

	for cat, entries := range b.keyed {
		for key, list := range entries {
			for _, tmpl := range list {
				assert.NotEmpty(t, tmpl.Text, "%s/%s has empty template", cat, key)
				assert.Contains(t,
					[]types.Priority{types.PriorityCritical, types.PriorityHigh, types.PriorityMedium, types.PriorityLow},
					tmpl.Priority,
					"%s/%s has invalid priority", cat, key)
			}
		}
	}
}

func TestDecode_MalformedDocumentDegrades(t *testing.T) {
	b := &Base{
		keyed:    make(map[Category]map[string][]Template),
		buckets:  make(map[string][]string),
		triggers: make(map[string][]string),
	}

	err := b.decode(CategoryTone, []byte("entries: [not, a, map"))
	require.Error(t, err)

	// The category stays empty and lookups return nil.
	assert.Nil(t, b.Lookup(CategoryTone, "alert"))
}

func TestDecode_UnknownPriorityRejected(t *testing.T) {
	b := &Base{keyed: make(map[Category]map[string][]Template)}

	raw := []byte("entries:\n  alert:\n    - text: hello\n      priority: extreme\n")
	err := b.decode(CategoryTone, raw)
	require.Error(t, err)
}

func TestDecode_MissingPriorityDefaultsToLow(t *testing.T) {
	b := &Base{keyed: make(map[Category]map[string][]Template)}

	raw := []byte("entries:\n  alert:\n    - text: hello\n")
	require.NoError(t, b.decode(CategoryTone, raw))

	got := b.Lookup(CategoryTone, "alert")
	require.Len(t, got, 1)
	assert.Equal(t, types.PriorityLow, got[0].Priority)
}

func TestLookup_UnknownCategoryAndKey(t *testing.T) {
	b := Load()

	assert.Nil(t, b.Lookup(Category("no_such_doc"), "alert"))
	assert.Nil(t, b.Lookup(CategoryTone, "no_such_key"))
}

func TestAutoFixes_OrderPreserved(t *testing.T) {
	b := Load()
	pairs := b.AutoFixes()
	require.NotEmpty(t, pairs)

	// Longer phrases must come before their substrings so replacement order
	// stays meaningful ("you always" before "always").
	idx := func(find string) int {
		for i, p := range pairs {
			if p.Find == find {
				return i
			}
		}
		return -1
	}
	require.GreaterOrEqual(t, idx("you always"), 0)
	require.GreaterOrEqual(t, idx("always"), 0)
	assert.Less(t, idx("you always"), idx("always"))
}

func TestCrossStyleKey(t *testing.T) {
	key := CrossStyleKey(types.StyleAnxious, types.StyleAvoidant)
	assert.Equal(t, "anxious->avoidant", key)
	assert.NotEmpty(t, Load().Lookup(CategoryCrossStyle, key))
}

func TestPriorityConfidenceMonotonic(t *testing.T) {
	crit := types.PriorityCritical.Confidence()
	high := types.PriorityHigh.Confidence()
	med := types.PriorityMedium.Confidence()
	low := types.PriorityLow.Confidence()

	assert.Greater(t, crit, high)
	assert.Greater(t, high, med)
	assert.Greater(t, med, low)
	assert.Greater(t, low, 0.0)
	assert.LessOrEqual(t, crit, 1.0)
}
