package nlu

import (
	"testing"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/conversation"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		utterance string
		want      conversation.Intent
	}{
		{"haan bilkul", conversation.IntentAffirmative},
		{"y", conversation.IntentAffirmative},
		{"nahi chahiye", conversation.IntentNegative},
		{"I want to speak with a human agent", conversation.IntentRequestHuman},
		{"mujhe kisi se baat karni hai", conversation.IntentRequestHuman},
		{"dobara boliye please", conversation.IntentClarificationNeeded},
		{"namaste madam", conversation.IntentGreeting},
		{"dhanyavaad, bye", conversation.IntentFarewell},
		{"can we switch to telugu please", conversation.IntentLanguageSwitch},
		{"loan amount 40 lakh hai", conversation.IntentUnknown},
		{"", conversation.IntentUnknown},
	}
	for _, tc := range cases {
		got, conf := Classify(tc.utterance)
		if got != tc.want {
			t.Fatalf("Classify(%q) = %q, want %q", tc.utterance, got, tc.want)
		}
		if tc.want == conversation.IntentUnknown && conf != 0 {
			t.Fatalf("Classify(%q) confidence = %v, want 0", tc.utterance, conf)
		}
		if tc.want != conversation.IntentUnknown && conf <= 0 {
			t.Fatalf("Classify(%q) confidence = %v, want > 0", tc.utterance, conf)
		}
	}
}

func TestClassifyOrderPrefersAffirmative(t *testing.T) {
	// "yes, connect me to an agent" carries both signals; the affirmative
	// rule runs first.
	got, _ := Classify("yes, connect me to an agent")
	if got != conversation.IntentAffirmative {
		t.Fatalf("expected affirmative, got %q", got)
	}
}
