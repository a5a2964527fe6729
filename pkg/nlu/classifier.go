// Package nlu provides rule-based intent classification for user
// utterances. It covers the phrases that matter for escalation and language
// handling; anything else comes back as unknown and is treated as
// information the dialogue layer scores but does not act on.
package nlu

import (
	"regexp"
	"strings"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/conversation"
)

type rule struct {
	intent     conversation.Intent
	confidence float64
	patterns   []*regexp.Regexp
}

// Rules are evaluated in order; the first match wins. Affirmative and
// negative run before the human-request rules so short confirmations are not
// misread as transfer requests.
var rules = []rule{
	{
		intent:     conversation.IntentAffirmative,
		confidence: 0.9,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(yes|yeah|yep|sure|correct|right|okay|ok|haan|ha|bilkul)\b`),
			regexp.MustCompile(`^(y|yes)$`),
		},
	},
	{
		intent:     conversation.IntentNegative,
		confidence: 0.9,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(no|nope|nah|not|nahi|na|galat)\b`),
			regexp.MustCompile(`^(n|no)$`),
		},
	},
	{
		intent:     conversation.IntentRequestHuman,
		confidence: 0.85,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(speak|talk|connect|transfer).*(person|human|agent|expert|counselor)\b`),
			regexp.MustCompile(`\b(person|human|agent|expert|counselor).*(speak|talk)\b`),
			regexp.MustCompile(`\bkisi se baat\b`),
		},
	},
	{
		intent:     conversation.IntentClarificationNeeded,
		confidence: 0.8,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(what|pardon|sorry|repeat|again|samajh nahi aaya)\b`),
			regexp.MustCompile(`\bkya\b.*\?`),
			regexp.MustCompile(`\bdobara\b`),
		},
	},
	{
		intent:     conversation.IntentGreeting,
		confidence: 0.85,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(hello|hi|hey|namaste|namaskar)\b`),
		},
	},
	{
		intent:     conversation.IntentFarewell,
		confidence: 0.85,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(bye|goodbye|thank you|thanks|dhanyavaad|shukriya)\b`),
		},
	},
	{
		intent:     conversation.IntentLanguageSwitch,
		confidence: 0.85,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(english|hindi|telugu|hinglish).*(speak|talk|switch|change)\b`),
			regexp.MustCompile(`\b(speak|talk|switch|change).*(english|hindi|telugu|hinglish)\b`),
		},
	},
}

// Classify returns the first matching intent and its confidence. Unmatched
// utterances return IntentUnknown with zero confidence.
func Classify(utterance string) (conversation.Intent, float64) {
	lower := strings.ToLower(strings.TrimSpace(utterance))
	if lower == "" {
		return conversation.IntentUnknown, 0.0
	}
	for _, r := range rules {
		for _, p := range r.patterns {
			if p.MatchString(lower) {
				return r.intent, r.confidence
			}
		}
	}
	return conversation.IntentUnknown, 0.0
}
