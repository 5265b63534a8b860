// Package suggest produces and ranks rewritten-message candidates. Generation
// is a union of independent, side-effect-free sources over the classifier
// output and the knowledge base; ranking is a weighted multi-factor score with
// feedback-driven adjustment. Scoring is order-independent, so the generator
// sources can fan out across workers and merge.
package suggest

import (
	"strings"
	"sync"

	"github.com/jwgray1010/unsaid/internal/knowledge"
	"github.com/jwgray1010/unsaid/pkg/types"
)

// Per-source candidate caps.
const (
	maxToneCandidates       = 3
	maxPatternCandidates    = 3
	maxContextualCandidates = 2
)

// highConflictThreshold gates the repair-script and mindfulness sources.
const highConflictThreshold = 0.7

// Request carries everything one generation call needs. It is read-only for
// all sources.
type Request struct {
	// Text is the raw message being composed.
	Text string

	// Analysis is the classifier output for Text.
	Analysis types.DeepTextAnalysis

	// Profile is a snapshot of the user's attachment profile.
	Profile types.UserAttachmentProfile

	// EmotionalState is the session's current free-text emotional-state label.
	EmotionalState string

	// Conversation is the analyzed recent conversation, zero-valued when no
	// history was supplied.
	Conversation types.ConversationAnalysis

	// RecentPattern is the contextual-memory emotion trend, if any.
	RecentPattern types.EmotionPattern
}

// Generator runs the candidate sources against the knowledge base.
type Generator struct {
	kb *knowledge.Base
}

// NewGenerator creates a candidate generator over the given knowledge base.
func NewGenerator(kb *knowledge.Base) *Generator {
	return &Generator{kb: kb}
}

// source is one independent candidate source. Sources never fail: an
// unavailable knowledge-base category simply yields nothing.
type source func(req Request) []types.FixCandidate

func (g *Generator) sources() []source {
	return []source{
		g.attachmentTemplates,
		g.toneBucketTemplates,
		g.patternTemplates,
		g.contextualTemplates,
		g.autoFix,
		g.repairScripts,
		g.childCentered,
		g.iStatements,
		g.crossStyle,
		g.mindfulness,
	}
}

// Generate runs every source sequentially and returns the merged candidate set
// in source order.
func (g *Generator) Generate(req Request) []types.FixCandidate {
	var out []types.FixCandidate
	for _, src := range g.sources() {
		out = append(out, src(req)...)
	}
	return out
}

// GenerateParallel fans the sources out across workers and merges results in
// source order, so output is identical to Generate.
func (g *Generator) GenerateParallel(req Request, workers int) []types.FixCandidate {
	srcs := g.sources()
	if workers < 1 {
		workers = 1
	}

	results := make([][]types.FixCandidate, len(srcs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = srcs[i](req)
			}
		}()
	}
	for i := range srcs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var out []types.FixCandidate
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// effectiveStyle resolves the style used for attachment-aware sources:
// configured style first, then the per-message signal.
func effectiveStyle(req Request) types.AttachmentStyle {
	if req.Profile.Style != "" && req.Profile.Style != types.StyleUnknown {
		return req.Profile.Style
	}
	return req.Analysis.Attachment.Style
}

// partnerStyle resolves the partner style: an explicitly configured style
// always wins over one inferred from message signals.
func partnerStyle(req Request) types.AttachmentStyle {
	if req.Profile.PartnerStyle != "" && req.Profile.PartnerStyle != types.StyleUnknown {
		return req.Profile.PartnerStyle
	}
	switch {
	case req.Analysis.Dynamics.Distancing:
		return types.StyleAvoidant
	case req.Analysis.ConflictLevel > highConflictThreshold:
		return types.StyleAnxious
	case req.Analysis.EmotionalIntensity > 0.7:
		return types.StyleDisorganized
	default:
		return types.StyleSecure
	}
}

// attachmentTemplates emits the first conditional template whose required
// substrings all appear in the text, falling back to a bucket-selected style
// default.
func (g *Generator) attachmentTemplates(req Request) []types.FixCandidate {
	style := effectiveStyle(req)
	if style == types.StyleUnknown {
		return nil
	}

	var out []types.FixCandidate
	lower := strings.ToLower(req.Text)
	for _, tmpl := range g.kb.AttachmentConditional(style) {
		if requiresAll(lower, tmpl.Requires) {
			out = append(out, candidateFrom(tmpl, types.CandidateAttachment, "attachment", types.RelevanceHigh))
			break
		}
	}

	if len(out) == 0 {
		defaults := g.kb.AttachmentDefaults(style)
		if len(defaults) == 0 {
			return nil
		}
		idx := selectIndex(bucketFor(g.kb, currentState(req)), style, len(defaults))
		out = append(out, candidateFrom(defaults[idx], types.CandidateAttachment, "attachment", types.RelevanceHigh))
	}

	// Style psychoeducation rides along with the rewrite.
	for _, tmpl := range g.kb.Lookup(knowledge.CategoryTherapeutic, string(style)) {
		out = append(out, candidateFrom(tmpl, types.CandidateEmpathy, "therapeutic", types.RelevanceLow))
		break
	}
	return out
}

// toneBucketTemplates emits up to three rewrites for the tone bucket.
// Clear-tone messages need no rewrite; neutral ones get the neutral nudges.
func (g *Generator) toneBucketTemplates(req Request) []types.FixCandidate {
	key := toneKey(req.Analysis.Tone.Primary)
	if key == "" {
		return nil
	}

	var out []types.FixCandidate
	for _, tmpl := range g.kb.Lookup(knowledge.CategoryTone, key) {
		out = append(out, candidateFrom(tmpl, types.CandidateToneBucket, "tone", types.RelevanceMedium))
		if len(out) == maxToneCandidates {
			break
		}
	}
	return out
}

// toneKey maps tone buckets to document keys: alert, caution, neutral.
func toneKey(t types.Tone) string {
	switch t {
	case types.ToneAlert:
		return "alert"
	case types.ToneCaution:
		return "caution"
	case types.ToneNeutral:
		return "neutral"
	default:
		return ""
	}
}

func (g *Generator) patternTemplates(req Request) []types.FixCandidate {
	if req.Analysis.Pattern == types.PatternNeutralTalk {
		return nil
	}

	var out []types.FixCandidate
	for _, tmpl := range g.kb.Lookup(knowledge.CategoryPattern, string(req.Analysis.Pattern)) {
		out = append(out, candidateFrom(tmpl, types.CandidatePattern, "pattern", types.RelevanceMedium))
		if len(out) == maxPatternCandidates {
			break
		}
	}

	// Pattern-specific action steps ride along with the rewrites.
	for _, tmpl := range g.kb.Lookup(knowledge.CategoryActionSteps, string(req.Analysis.Pattern)) {
		out = append(out, candidateFrom(tmpl, types.CandidateStructure, "action_steps", types.RelevanceLow))
		break
	}
	return out
}

func (g *Generator) contextualTemplates(req Request) []types.FixCandidate {
	key := toneKey(req.Analysis.Tone.Primary)
	if key == "" {
		return nil
	}

	var out []types.FixCandidate
	for _, tmpl := range g.kb.Lookup(knowledge.CategoryContextual, key) {
		out = append(out, candidateFrom(tmpl, types.CandidateContextual, "contextual", types.RelevanceLow))
		if len(out) == maxContextualCandidates {
			break
		}
	}
	return out
}

// autoFix applies the ordered find/replace table to alert-bucket text and
// emits a candidate only when the text actually changed. Replacements that
// touched absolute words are tagged as absolute reduction.
func (g *Generator) autoFix(req Request) []types.FixCandidate {
	if req.Analysis.Tone.Primary != types.ToneAlert && !req.Analysis.Linguistic.HasAbsolutes {
		return nil
	}

	fixed, touchedAbsolute := ApplyAutoFixes(req.Text, g.kb.AutoFixes())
	if fixed == req.Text {
		return nil
	}

	typ := types.CandidateAutoFix
	reason := "Softened the highest-risk phrases while keeping your meaning."
	if touchedAbsolute {
		typ = types.CandidateAbsoluteSoftener
		reason = "Replaced all-or-nothing words so the message describes this instance, not a verdict."
	}

	return []types.FixCandidate{{
		Text:       fixed,
		Type:       typ,
		Relevance:  types.RelevanceMedium,
		Reasoning:  reason,
		Source:     "auto_fix",
		Confidence: types.PriorityHigh.Confidence(),
	}}
}

// ApplyAutoFixes runs the ordered find/replace table case-insensitively and
// reports whether any replaced phrase was an absolute. Applying the table to
// text with no matching phrases is a no-op, which makes the operation
// idempotent once all finds are gone.
func ApplyAutoFixes(text string, pairs []knowledge.ReplacePair) (string, bool) {
	touchedAbsolute := false
	for _, p := range pairs {
		replaced := replaceFold(text, p.Find, p.Replace)
		if replaced != text {
			if isAbsolutePhrase(p.Find) {
				touchedAbsolute = true
			}
			text = replaced
		}
	}
	return text, touchedAbsolute
}

var absoluteFinds = map[string]bool{
	"always": true, "never": true, "you always": true, "you never": true,
	"everything": true, "nothing": true, "everyone": true, "no one": true,
}

func isAbsolutePhrase(find string) bool {
	return absoluteFinds[strings.ToLower(find)]
}

// replaceFold replaces every case-insensitive occurrence of find.
func replaceFold(s, find, replace string) string {
	if find == "" {
		return s
	}
	lower := strings.ToLower(s)
	lowerFind := strings.ToLower(find)

	var b strings.Builder
	for {
		idx := strings.Index(lower, lowerFind)
		if idx < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:idx])
		b.WriteString(replace)
		s = s[idx+len(find):]
		lower = lower[idx+len(lowerFind):]
	}
}

// repairScripts emits high-conflict repair candidates, filtered to the
// attachment styles whose trigger families the message actually activates.
func (g *Generator) repairScripts(req Request) []types.FixCandidate {
	if req.Analysis.ConflictLevel <= highConflictThreshold {
		return nil
	}

	lower := strings.ToLower(req.Text)
	styles := []types.AttachmentStyle{
		types.StyleAnxious, types.StyleAvoidant, types.StyleDisorganized, types.StyleSecure,
	}

	var matched []types.AttachmentStyle
	for _, style := range styles {
		if containsAnyFold(lower, g.kb.Triggers(style)) {
			matched = append(matched, style)
		}
	}
	if len(matched) == 0 {
		// No trigger family fired; fall back to the user's own style.
		if s := effectiveStyle(req); s != types.StyleUnknown {
			matched = []types.AttachmentStyle{s}
		} else {
			matched = []types.AttachmentStyle{types.StyleSecure}
		}
	}

	var out []types.FixCandidate
	for _, style := range matched {
		scripts := g.kb.Lookup(knowledge.CategoryRepair, string(style))
		if len(scripts) == 0 {
			continue
		}
		idx := selectIndex(bucketFor(g.kb, currentState(req)), style, len(scripts))
		out = append(out, candidateFrom(scripts[idx], types.CandidateRepairScript, "repair", types.RelevanceHigh))
	}
	return out
}

// childCentered emits coparenting candidates when a configured child name is
// present, filling the {child_name} slot. Detection prefers a name mentioned
// in the text; otherwise the first configured name is used.
func (g *Generator) childCentered(req Request) []types.FixCandidate {
	if len(req.Profile.ChildrenNames) == 0 {
		return nil
	}

	name := req.Profile.ChildrenNames[0]
	lower := strings.ToLower(req.Text)
	mentioned := false
	for _, n := range req.Profile.ChildrenNames {
		if strings.Contains(lower, strings.ToLower(n)) {
			name = n
			mentioned = true
			break
		}
	}

	// Without a mention, only conflict-bearing messages get the coparenting
	// reframe; calm logistics don't need it.
	if !mentioned && req.Analysis.ConflictLevel < 0.4 {
		return nil
	}

	var out []types.FixCandidate
	for _, tmpl := range g.kb.Lookup(knowledge.CategoryChildCentered, "default") {
		c := candidateFrom(tmpl, types.CandidateChildCentered, "child_centered", types.RelevanceMedium)
		c.Text = strings.ReplaceAll(c.Text, knowledge.TokenChildName, name)
		out = append(out, c)
		if len(out) == 2 {
			break
		}
	}
	return out
}

// iStatements fills the style-specific I-statement template from slots
// extracted out of the analysis.
func (g *Generator) iStatements(req Request) []types.FixCandidate {
	style := effectiveStyle(req)
	if style == types.StyleUnknown {
		style = types.StyleSecure
	}

	templates := g.kb.Lookup(knowledge.CategoryIStatement, string(style))
	if len(templates) == 0 {
		return nil
	}

	slots := extractSlots(req)
	idx := selectIndex(bucketFor(g.kb, currentState(req)), style, len(templates))
	c := candidateFrom(templates[idx], types.CandidateIStatement, "i_statement", types.RelevanceHigh)
	c.Text = fillSlots(c.Text, slots)
	return []types.FixCandidate{c}
}

// crossStyle emits candidates from the (user style, partner style) matrix.
func (g *Generator) crossStyle(req Request) []types.FixCandidate {
	user := effectiveStyle(req)
	if user == types.StyleUnknown {
		return nil
	}

	key := knowledge.CrossStyleKey(user, partnerStyle(req))
	templates := g.kb.Lookup(knowledge.CategoryCrossStyle, key)
	if len(templates) == 0 {
		return nil
	}

	idx := selectIndex(bucketFor(g.kb, currentState(req)), user, len(templates))
	return []types.FixCandidate{candidateFrom(templates[idx], types.CandidateCrossStyle, "cross_style", types.RelevanceHigh)}
}

// mindfulness emits a grounding prompt in high conflict, keyed by the
// dominant emotion.
func (g *Generator) mindfulness(req Request) []types.FixCandidate {
	if req.Analysis.ConflictLevel <= highConflictThreshold {
		return nil
	}

	key := dominantEmotion(req.Analysis)
	templates := g.kb.Lookup(knowledge.CategoryMindfulness, key)
	if len(templates) == 0 {
		templates = g.kb.Lookup(knowledge.CategoryMindfulness, "default")
	}
	if len(templates) == 0 {
		return nil
	}

	style := effectiveStyle(req)
	idx := selectIndex(bucketFor(g.kb, currentState(req)), style, len(templates))
	return []types.FixCandidate{candidateFrom(templates[idx], types.CandidateMindfulness, "mindfulness", types.RelevanceMedium)}
}

// dominantEmotion reduces the analysis to a mindfulness key.
func dominantEmotion(a types.DeepTextAnalysis) string {
	switch {
	case a.Tone.Primary == types.ToneAlert:
		return "anger"
	case hasNeed(a, "reassurance"):
		return "anxiety"
	case a.Sentiment < -0.3 && a.ConflictLevel < 0.5:
		return "sadness"
	default:
		return "default"
	}
}

func hasNeed(a types.DeepTextAnalysis, need string) bool {
	for _, n := range a.EmotionalNeeds {
		if n == need {
			return true
		}
	}
	return false
}

// currentState picks the emotional-state label for bucket selection: the
// session label when present, else the profile baseline.
func currentState(req Request) string {
	if req.EmotionalState != "" {
		return req.EmotionalState
	}
	return req.Profile.EmotionalBaseline
}

// slotValues carries the extracted I-statement slots.
type slotValues struct {
	emotion  string
	behavior string
	fear     string
	request  string
}

// extractSlots derives the four I-statement slots from the analysis.
// Everything is a deterministic table lookup; no text generation.
func extractSlots(req Request) slotValues {
	a := req.Analysis

	emotion := "unsettled"
	switch {
	case hasNeed(a, "reassurance"):
		emotion = "anxious"
	case a.Tone.Primary == types.ToneAlert:
		emotion = "hurt and angry"
	case a.Tone.Primary == types.ToneCaution:
		emotion = "frustrated"
	case a.Sentiment < -0.3:
		emotion = "sad"
	}

	behavior := "this comes up between us"
	switch {
	case a.Pattern == types.PatternCriticism || a.Linguistic.HasAbsolutes:
		behavior = "this keeps happening"
	case a.Dynamics.Distancing:
		behavior = "we go quiet on each other"
	case a.Pattern == types.PatternDemand:
		behavior = "things feel urgent and pressured"
	}

	fear := "us drifting apart"
	switch effectiveStyle(req) {
	case types.StyleAnxious:
		fear = "being left out of what you're feeling"
	case types.StyleAvoidant:
		fear = "losing room to think"
	case types.StyleDisorganized:
		fear = "wanting you close and pushing you away at once"
	}

	request := "we talk this through calmly"
	if len(a.EmotionalNeeds) > 0 {
		switch a.EmotionalNeeds[0] {
		case "reassurance":
			request = "you tell me where we stand"
		case "space":
			request = "we take a short break and set a time to continue"
		case "acknowledgement":
			request = "you tell me what you heard me say"
		case "support":
			request = "we tackle this together"
		}
	}

	return slotValues{emotion: emotion, behavior: behavior, fear: fear, request: request}
}

func fillSlots(text string, s slotValues) string {
	r := strings.NewReplacer(
		knowledge.TokenEmotion, s.emotion,
		knowledge.TokenBehavior, s.behavior,
		knowledge.TokenFear, s.fear,
		knowledge.TokenRequest, s.request,
	)
	return r.Replace(text)
}

func candidateFrom(tmpl knowledge.Template, typ, source string, rel types.RelevanceTier) types.FixCandidate {
	return types.FixCandidate{
		Text:       tmpl.Text,
		Type:       typ,
		Relevance:  rel,
		Reasoning:  tmpl.Reasoning,
		Source:     source,
		Confidence: tmpl.Priority.Confidence(),
	}
}

func requiresAll(lower string, requires []string) bool {
	if len(requires) == 0 {
		return false
	}
	for _, r := range requires {
		if !strings.Contains(lower, strings.ToLower(r)) {
			return false
		}
	}
	return true
}

func containsAnyFold(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
