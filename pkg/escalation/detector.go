// Package escalation decides when a call must be handed to a human expert.
// The detector is a pure decision function over already-validated state: it
// performs no I/O and cannot fail.
package escalation

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/conversation"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/lexicon"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/logging"
)

// Reason identifies why a conversation escalates.
type Reason string

const (
	ReasonExplicitRequest        Reason = "explicit_request"
	ReasonNegativeSentiment      Reason = "negative_sentiment"
	ReasonClarificationThreshold Reason = "clarification_threshold"
	ReasonAggressiveTone         Reason = "aggressive_tone"
	ReasonComplexQuery           Reason = "complex_query"
	ReasonSystemError            Reason = "system_error"
)

// Aggressive-tone keywords checked directly against the current utterance.
// This table is deliberately separate from the sentiment lexicon: it mixes
// borrowed English insults into each language because callers do.
var aggressiveKeywords = map[lexicon.Language][]string{
	lexicon.Hinglish: {
		"stupid", "bewakoof", "pagal", "useless", "faltu",
		"waste", "bakwas", "nonsense", "shut up", "chup",
	},
	lexicon.English: {
		"stupid", "idiot", "useless", "waste", "nonsense",
		"shut up", "ridiculous", "pathetic", "terrible",
	},
	lexicon.Telugu: {
		"stupid", "waste", "useless", "nonsense",
		"buddi ledu", "pani ledu",
	},
}

type DetectorConfig struct {
	// NegativeTurnThreshold and ClarificationThreshold take a default of 2
	// when zero.
	NegativeTurnThreshold  int
	ClarificationThreshold int
}

func (c DetectorConfig) withDefaults() DetectorConfig {
	if c.NegativeTurnThreshold <= 0 {
		c.NegativeTurnThreshold = 2
	}
	if c.ClarificationThreshold <= 0 {
		c.ClarificationThreshold = 2
	}
	return c
}

// Detector evaluates every escalation trigger in strict priority order.
type Detector struct {
	cfg    DetectorConfig
	logger *slog.Logger
}

func NewDetector(cfg DetectorConfig, logger *slog.Logger) *Detector {
	return &Detector{
		cfg:    cfg.withDefaults(),
		logger: logging.NewComponentLogger(logger, "escalation_detector"),
	}
}

// ShouldEscalate evaluates triggers in priority order; the first match wins:
// explicit request, negative streak, clarification loop, aggressive tone.
// Returns the reason and a human-readable explanation when escalating.
func (d *Detector) ShouldEscalate(state *conversation.State, intent conversation.Intent, utterance string) (bool, Reason, string) {
	if intent == conversation.IntentRequestHuman {
		return true, ReasonExplicitRequest, "User requested to speak with human expert"
	}

	if state.NegativeTurnCount >= d.cfg.NegativeTurnThreshold {
		return true, ReasonNegativeSentiment,
			fmt.Sprintf("Negative sentiment detected for %d consecutive turns", state.NegativeTurnCount)
	}

	if state.ClarificationCount >= d.cfg.ClarificationThreshold {
		return true, ReasonClarificationThreshold,
			fmt.Sprintf("Clarification requested %d times", state.ClarificationCount)
	}

	if utterance != "" {
		if aggressive, matched := d.detectAggressiveTone(utterance, state.Language); aggressive {
			return true, ReasonAggressiveTone,
				"Aggressive tone detected: " + strings.Join(matched, ", ")
		}
	}

	return false, "", ""
}

// detectAggressiveTone matches the utterance against the language's
// aggressive-keyword table, falling back to English when the language has
// none.
func (d *Detector) detectAggressiveTone(utterance string, language lexicon.Language) (bool, []string) {
	lower := strings.ToLower(utterance)
	keywords, ok := aggressiveKeywords[language]
	if !ok {
		keywords = aggressiveKeywords[lexicon.English]
	}

	var matched []string
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}
	return len(matched) > 0, matched
}

// Priority maps a reason to its hand-off priority.
func Priority(reason Reason) string {
	switch reason {
	case ReasonAggressiveTone, ReasonSystemError:
		return "high"
	case ReasonNegativeSentiment, ReasonExplicitRequest:
		return "medium"
	default:
		return "low"
	}
}

// LogEscalation appends an audit entry to the state's escalation trail.
// The trail is independent of the terminal escalation flag: near misses
// before the authoritative trigger are recorded too.
func (d *Detector) LogEscalation(state *conversation.State, reason Reason, explanation string) {
	state.Escalations = append(state.Escalations, conversation.EscalationEvent{
		Reason:             string(reason),
		Explanation:        explanation,
		Turn:               len(state.Turns),
		NegativeTurnCount:  state.NegativeTurnCount,
		ClarificationCount: state.ClarificationCount,
		AverageSentiment:   state.AverageSentiment(),
	})

	d.logger.Info("escalation logged",
		slog.String("reason", string(reason)),
		slog.String("explanation", explanation),
		slog.String("call_id", state.CallID))
}

// Summary reports the escalation events recorded for a call.
type Summary struct {
	EscalationCount       int
	Escalations           []conversation.EscalationEvent
	CurrentNegativeTurns  int
	CurrentClarifications int
	AverageSentiment      float64
}

// GetSummary aggregates the escalation audit trail.
func (d *Detector) GetSummary(state *conversation.State) Summary {
	return Summary{
		EscalationCount:       len(state.Escalations),
		Escalations:           state.Escalations,
		CurrentNegativeTurns:  state.NegativeTurnCount,
		CurrentClarifications: state.ClarificationCount,
		AverageSentiment:      state.AverageSentiment(),
	}
}
