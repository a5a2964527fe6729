// Package conversation defines the per-call dialogue state mutated by the
// sentiment, language, and escalation components. One State belongs to
// exactly one active call; callers must serialize utterance processing per
// call (see pkg/dialog).
package conversation

import (
	"time"

	"github.com/google/uuid"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/lexicon"
)

// Intent is the classification of a user utterance, produced by the NLU
// collaborator and consumed here as an escalation input.
type Intent string

const (
	IntentAffirmative        Intent = "affirmative"
	IntentNegative           Intent = "negative"
	IntentProvideInfo        Intent = "provide_info"
	IntentRequestHuman       Intent = "request_human"
	IntentClarificationNeeded Intent = "clarification_needed"
	IntentGreeting           Intent = "greeting"
	IntentFarewell           Intent = "farewell"
	IntentLanguageSwitch     Intent = "language_switch"
	IntentUnknown            Intent = "unknown"
)

// Turn is a single exchange in the conversation.
type Turn struct {
	ID             int
	Timestamp      time.Time
	Speaker        string // "user" or "agent"
	Transcript     string
	Intent         Intent
	SentimentScore float64
	HasSentiment   bool
	Confidence     float64
}

// SentimentRecord is one analyzed utterance in the sentiment history.
type SentimentRecord struct {
	Score       float64
	Timestamp   time.Time
	TextPreview string
	Aggressive  bool
}

// LanguageSwitch records one accepted language change.
type LanguageSwitch struct {
	From lexicon.Language
	To   lexicon.Language
	Turn int
}

// EscalationEvent is one audit entry. Entries may outnumber the terminal
// EscalationTriggered flag: near misses are logged too.
type EscalationEvent struct {
	Reason             string
	Explanation        string
	Turn               int
	NegativeTurnCount  int
	ClarificationCount int
	AverageSentiment   float64
}

// State is the full conversation state for one call.
type State struct {
	CallID string
	LeadID string

	Language lexicon.Language

	Turns            []Turn
	SentimentHistory []SentimentRecord

	NegativeTurnCount      int
	ClarificationCount     int
	AggressiveToneDetected bool

	EscalationTriggered bool
	EscalationReason    string
	EscalationAt        time.Time

	LanguageSwitches []LanguageSwitch
	Escalations      []EscalationEvent

	CreatedAt    time.Time
	LastActivity time.Time
	Finalized    bool
}

// NewState creates the state for a freshly started call. An invalid or empty
// language falls back to the configured default so Language is never unset.
func NewState(leadID string, language lexicon.Language) *State {
	if !lexicon.Valid(language) {
		language = lexicon.Default
	}
	now := time.Now().UTC()
	return &State{
		CallID:       uuid.NewString(),
		LeadID:       leadID,
		Language:     language,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// AddTurn appends a turn to the history and returns it.
func (s *State) AddTurn(speaker, transcript string, intent Intent, confidence float64) Turn {
	turn := Turn{
		ID:         len(s.Turns) + 1,
		Timestamp:  time.Now().UTC(),
		Speaker:    speaker,
		Transcript: transcript,
		Intent:     intent,
		Confidence: confidence,
	}
	s.Turns = append(s.Turns, turn)
	s.LastActivity = turn.Timestamp
	return turn
}

// AddScoredTurn appends a user turn carrying a sentiment score.
func (s *State) AddScoredTurn(transcript string, intent Intent, confidence, score float64) Turn {
	_ = s.AddTurn("user", transcript, intent, confidence)
	s.Turns[len(s.Turns)-1].SentimentScore = score
	s.Turns[len(s.Turns)-1].HasSentiment = true
	return s.Turns[len(s.Turns)-1]
}

// IncrementClarification bumps the clarification counter. Called by the
// orchestrator when it asks the user to repeat or rephrase.
func (s *State) IncrementClarification() {
	s.ClarificationCount++
	s.LastActivity = time.Now().UTC()
}

// AverageSentiment returns the mean score across the sentiment history,
// 0.0 when no utterance has been analyzed yet.
func (s *State) AverageSentiment() float64 {
	if len(s.SentimentHistory) == 0 {
		return 0.0
	}
	var sum float64
	for _, rec := range s.SentimentHistory {
		sum += rec.Score
	}
	return sum / float64(len(s.SentimentHistory))
}

// PruneTurns drops turns older than window. Sentiment history and audit
// trails are never pruned; only the raw turn transcript window is bounded.
func (s *State) PruneTurns(window time.Duration) {
	if window <= 0 {
		return
	}
	cutoff := time.Now().UTC().Add(-window)
	kept := s.Turns[:0]
	for _, turn := range s.Turns {
		if !turn.Timestamp.Before(cutoff) {
			kept = append(kept, turn)
		}
	}
	s.Turns = kept
}

// Finalize marks the state read-only for the caller once the call ends or
// hand-off completes. Components treat a finalized state as immutable.
func (s *State) Finalize() {
	s.Finalized = true
	s.LastActivity = time.Now().UTC()
}
