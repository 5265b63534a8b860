// Package classifier implements the lexical classifier: pure, deterministic
// keyword and pattern detection over a single message. All detectors are
// expressed as declarative rule tables evaluated by two small interpreters
// (first-match for tiered families, max-score for weighted families) instead of
// bespoke conditionals per concern.
package classifier

import "github.com/jwgray1010/unsaid/pkg/types"

// toneTier is one priority tier of tone trigger phrases. Tiers are evaluated
// in order; the first tier with a hit wins.
type toneTier struct {
	tone    types.Tone
	base    float64 // base confidence before structural adjustments
	phrases []string
}

// toneTiers lists the tone rules in strict priority order: alert > caution > clear.
// No hit in any tier classifies as neutral.
var toneTiers = []toneTier{
	{
		tone: types.ToneAlert,
		base: 0.8,
		phrases: []string{
			"hate you", "i hate", "shut up", "screw you", "you disgust",
			"worthless", "pathetic", "ruining everything", "your fault",
			"can't stand you", "divorce", "i'm done with you", "never speak",
			"you always ruin", "despise",
		},
	},
	{
		tone: types.ToneCaution,
		base: 0.65,
		phrases: []string{
			"always", "never", "whatever", "fine.", "you don't care",
			"you never listen", "you always", "so annoying", "fed up",
			"sick of", "don't bother", "forget it", "why do you even",
		},
	},
	{
		tone: types.ToneClear,
		base: 0.6,
		phrases: []string{
			"i appreciate", "thank you", "i love", "i'm grateful",
			"i understand", "let's work", "i hear you", "that makes sense",
			"i'm sorry", "i feel", "can we talk",
		},
	},
}

// weightedFamily is one named keyword family scored by occurrence count times
// weight. Used for attachment signals and emotion vocabularies.
type weightedFamily struct {
	name    string
	weight  float64
	phrases []string
}

// attachmentFamilies are the four attachment-style vocabularies. Occurrence
// counts are multiplied by the family weight; the strict maximum wins and an
// all-zero result classifies as unknown.
var attachmentFamilies = []weightedFamily{
	{
		name:   string(types.StyleAnxious),
		weight: 1.0,
		phrases: []string{
			"do you still love", "are you mad at me", "please don't leave",
			"why haven't you answered", "i need to know", "are we okay",
			"you're going to leave", "i can't lose you", "reassure me",
			"did i do something wrong", "ignoring me",
		},
	},
	{
		name:   string(types.StyleAvoidant),
		weight: 1.0,
		phrases: []string{
			"i need space", "leave me alone", "i'm fine", "it doesn't matter",
			"i don't want to talk", "let's drop it", "stop pushing",
			"i can handle it myself", "i just need time", "back off",
		},
	},
	{
		name:   string(types.StyleDisorganized),
		weight: 1.1,
		phrases: []string{
			"i don't know what i want", "come here no go away",
			"i love you but i hate", "everything is falling apart",
			"i can't do this anymore", "nothing makes sense",
			"part of me wants",
		},
	},
	{
		name:   string(types.StyleSecure),
		weight: 0.9,
		phrases: []string{
			"let's talk about", "i feel", "help me understand",
			"i hear you", "can we find", "what do you need",
			"i appreciate you", "we can figure this out",
		},
	},
}

// patternFamily is one ordered communication-pattern family; first family
// with a hit wins, default neutral.
type patternFamily struct {
	pattern types.CommunicationPattern
	phrases []string
}

var patternFamilies = []patternFamily{
	{types.PatternContempt, []string{
		"you disgust", "pathetic", "worthless", "what is wrong with you",
		"you're an idiot", "eye roll",
	}},
	{types.PatternCriticism, []string{
		"you always", "you never", "your fault", "you can't even",
		"why can't you", "what's wrong with you",
	}},
	{types.PatternDefensiveness, []string{
		"it's not my fault", "i didn't do anything", "you're the one who",
		"well you started", "i was just",
	}},
	{types.PatternStonewalling, []string{
		"whatever", "i'm done talking", "forget it", "not discussing this",
		"end of conversation",
	}},
	{types.PatternDemand, []string{
		"you need to", "you have to", "right now", "answer me", "i expect you",
	}},
	{types.PatternWithdrawal, []string{
		"i need space", "leave me alone", "i'm going out", "don't wait up",
		"i just can't right now",
	}},
	{types.PatternRepair, []string{
		"i'm sorry", "let's start over", "i didn't mean", "can we try again",
		"i want to fix this",
	}},
}

// Additive vocabularies. Each hit contributes its per-hit weight; sums are
// capped at 1.0 by the interpreter.

var intensityWords = []string{
	"furious", "devastated", "terrified", "desperate", "overwhelmed",
	"heartbroken", "enraged", "panicking", "hysterical", "unbearable",
	"hate", "screaming", "exhausted", "miserable",
}

var conflictWords = []string{
	"fight", "argue", "hate", "wrong", "fault", "blame", "ruin", "stupid",
	"angry", "furious", "yell", "done with", "worst", "can't stand",
	"always", "never", "everything",
}

var urgencyWords = []string{
	"now", "immediately", "right away", "urgent", "asap", "can't wait",
	"emergency", "before it's too late", "hurry",
}

var intimacyWords = []string{
	"love", "miss you", "close to you", "hold you", "us", "together",
	"our", "babe", "honey", "sweetheart",
}

var positiveWords = []string{
	"love", "appreciate", "thank", "grateful", "happy", "glad", "wonderful",
	"great", "understand", "care",
}

var negativeWords = []string{
	"hate", "angry", "hurt", "sad", "awful", "terrible", "wrong", "fault",
	"ruin", "worst", "annoying", "sick of",
}

// absoluteWords are the all-or-nothing markers used by the linguistic flags and
// the absolute-softening generator.
var absoluteWords = []string{
	"always", "never", "everyone", "no one", "everything", "nothing",
	"every time", "constantly", "completely",
}

// fillerWords flag clarity-optimization headroom.
var fillerWords = []string{
	"just", "really", "basically", "actually", "literally", "kind of",
	"sort of", "you know", "i mean", "like,",
}

// defensiveMechanisms maps a mechanism label to its trigger phrases.
var defensiveMechanisms = map[string][]string{
	"blame_shift":    {"your fault", "you made me", "because of you", "you're the one"},
	"minimising":     {"it's not a big deal", "you're overreacting", "calm down", "it's nothing"},
	"counter_attack": {"well you", "what about when you", "you do it too"},
}

// emotionalNeeds maps an inferred need to its trigger phrases.
var emotionalNeeds = map[string][]string{
	"reassurance":     {"do you still", "are we okay", "promise me", "tell me you"},
	"space":           {"i need space", "i need time", "leave me alone", "some room"},
	"acknowledgement": {"you never listen", "hear me out", "nobody notices", "i do everything"},
	"support":         {"i can't do this alone", "help me", "i'm struggling", "overwhelmed"},
}

// distancingPhrases signal withdrawal for the relationship-dynamics flag.
var distancingPhrases = []string{
	"i need space", "leave me alone", "don't call", "i'm leaving",
	"stay away", "i need time apart", "don't wait up",
}
