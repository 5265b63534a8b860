package types

import "time"

// Sender identifies which party authored a conversation message.
type Sender string

// Sender constants.
const (
	SenderUser    Sender = "user"
	SenderPartner Sender = "partner"
)

// ConversationMessage is a single message in the recent conversation window.
// Histories are read-only per analysis call.
type ConversationMessage struct {
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`

	// Tone is the classified tone of the message, filled by the analyzer when
	// absent from the input.
	Tone Tone `json:"tone,omitempty"`
}

// ConversationHistory is an ordered, read-only window of recent messages,
// oldest first.
type ConversationHistory struct {
	Messages []ConversationMessage `json:"messages"`
}

// Window returns the most recent n messages (all when fewer exist).
func (h ConversationHistory) Window(n int) []ConversationMessage {
	if len(h.Messages) <= n {
		return h.Messages
	}
	return h.Messages[len(h.Messages)-n:]
}

// TurnTaking classifies the rhythm of a conversation window.
type TurnTaking string

// Turn-taking constants.
const (
	TurnBalanced         TurnTaking = "balanced"
	TurnUserDominated    TurnTaking = "user_dominated"
	TurnPartnerDominated TurnTaking = "partner_dominated"
	TurnRapidFire        TurnTaking = "rapid_fire"
	TurnSlowResponse     TurnTaking = "slow_response"
)

// Trajectory classifies the emotional direction of a conversation window.
type Trajectory string

// Trajectory constants.
const (
	TrajectoryStable    Trajectory = "stable"
	TrajectoryImproving Trajectory = "improving"
	TrajectoryDeclining Trajectory = "declining"
	TrajectoryVolatile  Trajectory = "volatile"
)

// AttachmentDynamic pairs the two parties' inferred styles.
type AttachmentDynamic string

// Attachment dynamic constants.
const (
	DynamicSecure           AttachmentDynamic = "secure"
	DynamicAnxiousAvoidant  AttachmentDynamic = "anxious_avoidant"
	DynamicAnxiousAnxious   AttachmentDynamic = "anxious_anxious"
	DynamicAvoidantAvoidant AttachmentDynamic = "avoidant_avoidant"
	DynamicChaotic          AttachmentDynamic = "chaotic"
)

// ConversationQuality buckets the overall health of a conversation window.
type ConversationQuality string

// Conversation quality constants.
const (
	QualityHealthy      ConversationQuality = "healthy"
	QualityStrained     ConversationQuality = "strained"
	QualityConflicted   ConversationQuality = "conflicted"
	QualityDisconnected ConversationQuality = "disconnected"
	QualityImproving    ConversationQuality = "improving"
)

// EmotionPattern labels a trend detected in the contextual memory buffer.
type EmotionPattern string

// Emotion pattern constants.
const (
	PatternEscalatingAnger   EmotionPattern = "escalating_anger"
	PatternPersistentSadness EmotionPattern = "persistent_sadness"
	PatternAnxiety           EmotionPattern = "anxiety_pattern"
	PatternNone              EmotionPattern = ""
)

// ConversationAnalysis is the derived view of a conversation window: fixed
// thresholds, no learning.
type ConversationAnalysis struct {
	IsEscalating bool                `json:"is_escalating"`
	DominantTone Tone                `json:"dominant_tone"`
	TurnTaking   TurnTaking          `json:"turn_taking"`
	Trajectory   Trajectory          `json:"trajectory"`
	Dynamic      AttachmentDynamic   `json:"dynamic"`
	Quality      ConversationQuality `json:"quality"`

	// MessageCount is the size of the analyzed window.
	MessageCount int `json:"message_count"`
}
