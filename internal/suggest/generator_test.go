package suggest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwgray1010/unsaid/internal/classifier"
	"github.com/jwgray1010/unsaid/internal/knowledge"
	"github.com/jwgray1010/unsaid/pkg/types"
)

func newTestGenerator() *Generator {
	return NewGenerator(knowledge.Load())
}

// buildRequest classifies text and assembles a request with the given style.
func buildRequest(text string, style types.AttachmentStyle) Request {
	profile := types.NewUserAttachmentProfile("user-1")
	profile.Style = style
	return Request{
		Text:     text,
		Analysis: classifier.New().Classify(text),
		Profile:  *profile,
	}
}

func TestGenerate_AvoidantSpaceRequest(t *testing.T) {
	g := newTestGenerator()
	req := buildRequest("I need space right now", types.StyleAvoidant)

	// The classifier reads the message as avoidant on its own.
	assert.Equal(t, types.StyleAvoidant, req.Analysis.Attachment.Style)

	candidates := g.Generate(req)
	require.NotEmpty(t, candidates)

	// The conditional avoidant template keeps the space request but adds a
	// concrete return time.
	var found bool
	for _, c := range candidates {
		if c.Type == types.CandidateAttachment && strings.Contains(c.Text, "tonight at 8") {
			found = true
		}
	}
	assert.True(t, found, "expected the time-bounded space-request template")
}

func TestGenerate_HighConflictRepairScripts(t *testing.T) {
	g := newTestGenerator()
	req := buildRequest("I hate you, you're always wrong and ruining everything", types.StyleUnknown)

	require.Greater(t, req.Analysis.ConflictLevel, 0.7)

	candidates := g.Generate(req)
	var repair, mindful int
	for _, c := range candidates {
		switch c.Type {
		case types.CandidateRepairScript:
			repair++
		case types.CandidateMindfulness:
			mindful++
		}
	}
	assert.Greater(t, repair, 0, "high conflict should produce repair scripts")
	assert.Greater(t, mindful, 0, "high conflict should produce a mindfulness prompt")
}

func TestGenerate_NoRepairScriptsBelowThreshold(t *testing.T) {
	g := newTestGenerator()
	req := buildRequest("could you grab milk on the way home?", types.StyleSecure)

	for _, c := range g.Generate(req) {
		assert.NotEqual(t, types.CandidateRepairScript, c.Type)
		assert.NotEqual(t, types.CandidateMindfulness, c.Type)
	}
}

func TestGenerate_SourceCaps(t *testing.T) {
	g := newTestGenerator()
	req := buildRequest("you always do this and you never listen", types.StyleAnxious)

	counts := make(map[string]int)
	for _, c := range g.Generate(req) {
		counts[c.Type]++
	}
	assert.LessOrEqual(t, counts[types.CandidateToneBucket], maxToneCandidates)
	assert.LessOrEqual(t, counts[types.CandidatePattern], maxPatternCandidates)
	assert.LessOrEqual(t, counts[types.CandidateContextual], maxContextualCandidates)
}

func TestGenerate_CandidateInvariants(t *testing.T) {
	g := newTestGenerator()
	texts := []string{
		"I hate you, you're always wrong and ruining everything",
		"I need space right now",
		"are you mad at me?",
		"see you at 6",
		"",
	}

	for _, text := range texts {
		for _, style := range types.ValidAttachmentStyles {
			req := buildRequest(text, style)
			for _, c := range g.Generate(req) {
				assert.NotEmpty(t, c.Text, "candidate text must not be empty")
				assert.NotEmpty(t, c.Source)
				assert.GreaterOrEqual(t, c.Confidence, 0.0)
				assert.LessOrEqual(t, c.Confidence, 1.0)
			}
		}
	}
}

func TestGenerateParallel_MatchesSequential(t *testing.T) {
	g := newTestGenerator()
	req := buildRequest("I hate you, you're always wrong and ruining everything", types.StyleAnxious)

	sequential := g.Generate(req)
	for _, workers := range []int{1, 2, 4, 16} {
		assert.Equal(t, sequential, g.GenerateParallel(req, workers), "workers=%d", workers)
	}
}

func TestAutoFix_EmitsOnlyOnChange(t *testing.T) {
	g := newTestGenerator()

	// Alert text with fixable phrases changes.
	req := buildRequest("I hate you, this is your fault", types.StyleUnknown)
	var autoFixed []types.FixCandidate
	for _, c := range g.Generate(req) {
		if c.Source == "auto_fix" {
			autoFixed = append(autoFixed, c)
		}
	}
	require.Len(t, autoFixed, 1)
	assert.NotEqual(t, req.Text, autoFixed[0].Text)
	assert.NotContains(t, strings.ToLower(autoFixed[0].Text), "i hate you")

	// Neutral text without fixable phrases emits nothing.
	req = buildRequest("lunch at noon works for me", types.StyleUnknown)
	for _, c := range g.Generate(req) {
		assert.NotEqual(t, "auto_fix", c.Source)
	}
}

func TestApplyAutoFixes_Idempotent(t *testing.T) {
	kb := knowledge.Load()
	pairs := kb.AutoFixes()

	// Text with no alert terms: applying the table is a no-op, twice too.
	clean := "could we talk about the schedule tomorrow?"
	once, _ := ApplyAutoFixes(clean, pairs)
	twice, _ := ApplyAutoFixes(once, pairs)
	assert.Equal(t, clean, once)
	assert.Equal(t, once, twice)

	// Text with alert terms converges after one pass.
	hot := "you always do this and I hate you"
	once, _ = ApplyAutoFixes(hot, pairs)
	twice, _ = ApplyAutoFixes(once, pairs)
	assert.Equal(t, once, twice)
}

func TestApplyAutoFixes_AbsoluteDetection(t *testing.T) {
	kb := knowledge.Load()

	fixed, touched := ApplyAutoFixes("You always ignore me!", kb.AutoFixes())
	assert.True(t, touched)
	assert.Contains(t, strings.ToLower(fixed), "often")
	assert.NotContains(t, strings.ToLower(fixed), "always")
}

func TestChildCentered_FillsName(t *testing.T) {
	g := newTestGenerator()
	req := buildRequest("you always forget Maya's pickup time", types.StyleAnxious)
	req.Profile.ChildrenNames = []string{"Maya"}

	var childCandidates []types.FixCandidate
	for _, c := range g.Generate(req) {
		if c.Type == types.CandidateChildCentered {
			childCandidates = append(childCandidates, c)
		}
	}
	require.NotEmpty(t, childCandidates)
	for _, c := range childCandidates {
		assert.Contains(t, c.Text, "Maya")
		assert.NotContains(t, c.Text, knowledge.TokenChildName)
	}
}

func TestChildCentered_SkipsCalmLogisticsWithoutMention(t *testing.T) {
	g := newTestGenerator()
	req := buildRequest("running five minutes late", types.StyleSecure)
	req.Profile.ChildrenNames = []string{"Maya"}

	for _, c := range g.Generate(req) {
		assert.NotEqual(t, types.CandidateChildCentered, c.Type)
	}
}

func TestIStatements_SlotsFilled(t *testing.T) {
	g := newTestGenerator()
	req := buildRequest("you never listen to me", types.StyleAnxious)

	var found bool
	for _, c := range g.Generate(req) {
		if c.Type == types.CandidateIStatement {
			found = true
			assert.Contains(t, c.Text, "I feel")
			assert.NotContains(t, c.Text, "{")
			assert.NotContains(t, c.Text, "}")
		}
	}
	assert.True(t, found)
}

func TestAttachmentTemplates_TherapeuticRideAlong(t *testing.T) {
	g := newTestGenerator()
	req := buildRequest("why haven't you answered me yet", types.StyleAnxious)

	candidates := g.attachmentTemplates(req)
	require.NotEmpty(t, candidates)

	var rewrites, framings int
	for _, c := range candidates {
		switch c.Type {
		case types.CandidateAttachment:
			rewrites++
		case types.CandidateEmpathy:
			framings++
			assert.Equal(t, types.RelevanceLow, c.Relevance)
			assert.NotEmpty(t, c.Text)
		}
	}
	assert.Equal(t, 1, rewrites)
	assert.Equal(t, 1, framings, "style psychoeducation rides along with the rewrite")

	// No style, no candidates of either kind.
	unknown := buildRequest("see you at 7", types.StyleUnknown)
	unknown.Analysis.Attachment.Style = types.StyleUnknown
	assert.Empty(t, g.attachmentTemplates(unknown))
}

func TestCrossStyle_ConfiguredPartnerWins(t *testing.T) {
	// Distancing text would infer an avoidant partner, but the configured
	// style takes precedence.
	req := buildRequest("I need space right now", types.StyleAnxious)
	req.Profile.Style = types.StyleAnxious
	req.Profile.PartnerStyle = types.StyleSecure

	assert.Equal(t, types.StyleSecure, partnerStyle(req))

	req.Profile.PartnerStyle = types.StyleUnknown
	assert.Equal(t, types.StyleAvoidant, partnerStyle(req), "distancing text infers avoidant")
}

func TestPartnerStyle_InferenceOrder(t *testing.T) {
	base := types.NewUserAttachmentProfile("u")

	tests := []struct {
		name     string
		analysis types.DeepTextAnalysis
		want     types.AttachmentStyle
	}{
		{"distancing", types.DeepTextAnalysis{Dynamics: types.RelationshipDynamics{Distancing: true}}, types.StyleAvoidant},
		{"high conflict", types.DeepTextAnalysis{ConflictLevel: 0.8}, types.StyleAnxious},
		{"high intensity", types.DeepTextAnalysis{EmotionalIntensity: 0.8}, types.StyleDisorganized},
		{"calm", types.DeepTextAnalysis{}, types.StyleSecure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{Analysis: tt.analysis, Profile: *base}
			assert.Equal(t, tt.want, partnerStyle(req))
		})
	}
}

func TestGenerate_EmptyKnowledgeBaseYieldsNothingButNeverPanics(t *testing.T) {
	// A base built from nothing simulates every document failing to load.
	g := NewGenerator(knowledge.Empty())
	req := buildRequest("I hate you, you're always wrong", types.StyleAnxious)

	assert.NotPanics(t, func() {
		candidates := g.Generate(req)
		assert.Empty(t, candidates)
	})
}
