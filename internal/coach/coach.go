// Package coach ties the pipeline together: classification, conversation
// analysis, candidate generation, ranking, contextual memory and the optional
// remote enhancement. One Coach serves one user session.
package coach

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jwgray1010/unsaid/internal/classifier"
	"github.com/jwgray1010/unsaid/internal/conversation"
	"github.com/jwgray1010/unsaid/internal/knowledge"
	"github.com/jwgray1010/unsaid/internal/memory"
	"github.com/jwgray1010/unsaid/internal/remote"
	"github.com/jwgray1010/unsaid/internal/storage"
	"github.com/jwgray1010/unsaid/internal/suggest"
	"github.com/jwgray1010/unsaid/pkg/types"
)

// defaultCacheSize bounds the analysis cache. Debounced typing re-sends the
// same prefix constantly, so even a small cache absorbs most repeats.
const defaultCacheSize = 256

// Options configures a Coach.
type Options struct {
	// Store persists the user's attachment profile. Required.
	Store storage.ProfileStore

	// UserID identifies the profile to load. Required.
	UserID string

	// Remote is the optional enhancement client; nil disables enhancement.
	Remote *remote.Client

	// Workers is the candidate-source fan-out; 0 runs sources sequentially.
	Workers int

	// CacheSize overrides the analysis cache bound when > 0.
	CacheSize int
}

// Request is one analyze call.
type Request struct {
	// Text is the message being composed.
	Text string

	// EmotionalState is the session's current free-text emotional-state label.
	EmotionalState string

	// History is the structured recent conversation, newest last.
	History types.ConversationHistory

	// Transcript is raw surrounding text, parsed best-effort into a history
	// when History is empty.
	Transcript string
}

// Result is the synchronous local outcome. Suggestions are never empty.
type Result struct {
	// ID tags this analysis so feedback can reference it.
	ID string `json:"id"`

	Analysis     types.DeepTextAnalysis     `json:"analysis"`
	Conversation types.ConversationAnalysis `json:"conversation"`
	Suggestions  []types.RankedFix          `json:"suggestions"`

	// Immediate is the calm-down prompt surfaced ahead of the ranked list
	// when the message is an alert-tone, high-conflict one. Nil otherwise.
	Immediate *types.RankedFix `json:"immediate,omitempty"`
}

// Coach orchestrates the pipeline for one user.
type Coach struct {
	classifier *classifier.Classifier
	kb         *knowledge.Base
	generator  *suggest.Generator
	ranker     *suggest.Ranker
	flow       *conversation.Analyzer
	memory     *memory.Contextual
	remote     *remote.Client
	workers    int
	cache      *lru.Cache[string, types.DeepTextAnalysis]

	mu      sync.Mutex
	pending context.CancelFunc
}

// New builds a Coach over the given profile store. Knowledge-base and profile
// load problems degrade (empty category, fresh profile) rather than fail; the
// only hard error is an invalid cache size, which cannot happen with the
// defaults.
func New(ctx context.Context, opts Options) (*Coach, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, types.DeepTextAnalysis](size)
	if err != nil {
		return nil, err
	}

	cls := classifier.New()
	kb := knowledge.Load()

	return &Coach{
		classifier: cls,
		kb:         kb,
		generator:  suggest.NewGenerator(kb),
		ranker:     suggest.NewRanker(),
		flow:       conversation.NewAnalyzer(cls),
		memory:     memory.New(ctx, opts.Store, opts.UserID),
		remote:     opts.Remote,
		workers:    opts.Workers,
		cache:      cache,
	}, nil
}

// Analyze runs the synchronous local pipeline: classify, analyze conversation
// flow, record to memory, generate and rank. It always returns a
// classification and at least one suggestion.
func (c *Coach) Analyze(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	analysis := c.classify(req.Text)

	history := req.History
	if len(history.Messages) == 0 && req.Transcript != "" {
		history = conversation.ParseTranscript(req.Transcript)
	}
	var conv types.ConversationAnalysis
	if len(history.Messages) > 0 {
		conv = c.flow.AnalyzeFlow(history)
	}

	c.memory.Record(ctx, req.Text, emotionLabel(analysis), analysis)

	sreq := suggest.Request{
		Text:           req.Text,
		Analysis:       analysis,
		Profile:        c.memory.Profile(),
		EmotionalState: req.EmotionalState,
		Conversation:   conv,
		RecentPattern:  c.memory.RecentPattern(),
	}

	var candidates []types.FixCandidate
	if c.workers > 1 {
		candidates = c.generator.GenerateParallel(sreq, c.workers)
	} else {
		candidates = c.generator.Generate(sreq)
	}

	return Result{
		ID:           uuid.NewString(),
		Analysis:     analysis,
		Conversation: conv,
		Suggestions:  c.ranker.Rank(candidates, sreq),
		Immediate:    c.immediate(analysis),
	}, nil
}

// classify runs the lexical classifier behind the LRU cache. Classification
// is pure, so cached results are always valid.
func (c *Coach) classify(text string) types.DeepTextAnalysis {
	if analysis, ok := c.cache.Get(text); ok {
		return analysis
	}
	analysis := c.classifier.Classify(text)
	c.cache.Add(text, analysis)
	return analysis
}

// immediate returns the calm-down prompt for alert-tone, high-conflict
// messages. It short-circuits ahead of the ranked list so the UI can surface
// it without waiting for a choice.
func (c *Coach) immediate(analysis types.DeepTextAnalysis) *types.RankedFix {
	if analysis.Tone.Primary != types.ToneAlert || analysis.ConflictLevel <= 0.7 {
		return nil
	}

	prompts := c.kb.Lookup(knowledge.CategoryMindfulness, "anger")
	if len(prompts) == 0 {
		return nil
	}
	tmpl := prompts[0]
	return &types.RankedFix{
		Candidate: types.FixCandidate{
			Text:       tmpl.Text,
			Type:       types.CandidateMindfulness,
			Relevance:  types.RelevanceHigh,
			Reasoning:  "This message will escalate the conflict. Pause before sending.",
			Confidence: tmpl.Priority.Confidence(),
		},
		Score:              1.0,
		AdjustedConfidence: tmpl.Priority.Confidence(),
		Reasoning:          "High-conflict message detected.",
		ExpectedOutcome:    "A short pause usually prevents saying something hard to take back.",
	}
}

// Enhance launches the remote enhancement for a request off the calling
// goroutine and delivers the parsed suggestions to deliver. A newer Enhance
// call cancels the previous in-flight one, so superseded input never reports.
// Failures are logged and dropped; the local result stands.
func (c *Coach) Enhance(ctx context.Context, req Request, result Result, deliver func(id string, suggestions []remote.Suggestion)) {
	if c.remote == nil || !c.remote.Enabled() {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	if c.pending != nil {
		c.pending()
	}
	c.pending = cancel
	c.mu.Unlock()

	profile := c.memory.Profile()
	rreq := remote.Request{
		Text:                req.Text,
		AttachmentStyle:     profile.Style,
		PartnerStyle:        profile.PartnerStyle,
		RelationshipContext: profile.RelationshipContext,
		ToneStatus:          result.Analysis.Tone.Primary,
		History:             req.History.Messages,
		PersonalityContext:  req.EmotionalState,
	}

	go func() {
		defer cancel()
		suggestions, err := c.remote.Enhance(ctx, rreq)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("coach: remote enhancement failed: %v", err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		deliver(result.ID, suggestions)
	}()
}

// RecordFeedback records an accepted or rejected suggestion.
func (c *Coach) RecordFeedback(ctx context.Context, suggestion string, accepted bool) {
	c.memory.RecordFeedback(ctx, suggestion, accepted)
}

// Profile returns a snapshot of the user's attachment profile.
func (c *Coach) Profile() types.UserAttachmentProfile {
	return c.memory.Profile()
}

// ProfileUpdate carries the settable profile fields; nil / zero fields are
// left unchanged. Updates are idempotent.
type ProfileUpdate struct {
	Style               types.AttachmentStyle `json:"style,omitempty"`
	PartnerStyle        types.AttachmentStyle `json:"partner_style,omitempty"`
	RelationshipContext string                `json:"relationship_context,omitempty"`
	ChildrenNames       []string              `json:"children_names,omitempty"`
	EmotionalBaseline   string                `json:"emotional_baseline,omitempty"`
}

// UpdateProfile applies the non-zero fields of the update.
func (c *Coach) UpdateProfile(ctx context.Context, update ProfileUpdate) {
	if update.Style.IsValid() {
		c.memory.UpdateStyle(ctx, update.Style)
	}
	if update.PartnerStyle.IsValid() {
		c.memory.UpdatePartnerStyle(ctx, update.PartnerStyle)
	}
	if update.RelationshipContext != "" {
		c.memory.UpdateRelationshipContext(ctx, update.RelationshipContext)
	}
	if update.ChildrenNames != nil {
		c.memory.UpdateChildrenNames(ctx, update.ChildrenNames)
	}
	if update.EmotionalBaseline != "" {
		c.memory.UpdateEmotionalBaseline(ctx, update.EmotionalBaseline)
	}
}

// Close cancels any in-flight remote work.
func (c *Coach) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.pending()
		c.pending = nil
	}
}

// emotionLabel maps an analysis to the coarse emotion recorded in memory,
// matching the labels RecentPattern watches for.
func emotionLabel(a types.DeepTextAnalysis) string {
	switch {
	case a.Tone.Primary == types.ToneAlert && a.ConflictLevel > 0.3:
		return "anger"
	case a.Tone.Primary == types.ToneAlert || a.Tone.Primary == types.ToneCaution:
		return "frustration"
	case a.Attachment.Style == types.StyleAnxious && a.Attachment.Intensity > 0:
		return "anxiety"
	case a.Sentiment < -0.3:
		return "sadness"
	default:
		return "neutral"
	}
}
