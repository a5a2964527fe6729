package sentiment

import (
	"log/slog"
	"time"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/conversation"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/logging"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/redact"
)

// Reporting bucket edges. These differ from the -0.3 escalation threshold
// on purpose: they serve summaries, not control flow.
const (
	bucketNegativeEdge = -0.1
	bucketPositiveEdge = 0.1
)

const previewRunes = 50

type TrackerConfig struct {
	// NegativeTurnThreshold is the consecutive-negative streak that makes
	// the tracker vote for escalation. Zero takes the default of 2.
	NegativeTurnThreshold int
}

func (c TrackerConfig) withDefaults() TrackerConfig {
	if c.NegativeTurnThreshold <= 0 {
		c.NegativeTurnThreshold = 2
	}
	return c
}

// Tracker maintains rolling sentiment history and the consecutive
// negative-turn streak for a conversation.
type Tracker struct {
	cfg    TrackerConfig
	logger *slog.Logger
}

func NewTracker(cfg TrackerConfig, logger *slog.Logger) *Tracker {
	return &Tracker{
		cfg:    cfg.withDefaults(),
		logger: logging.NewComponentLogger(logger, "sentiment_tracker"),
	}
}

// Track records one analyzed utterance: appends to the sentiment history,
// updates the negative streak (any non-negative turn resets it), and makes
// the aggressive-tone flag sticky for the call.
func (t *Tracker) Track(state *conversation.State, score float64, text string, aggressive bool) {
	state.SentimentHistory = append(state.SentimentHistory, conversation.SentimentRecord{
		Score:       score,
		Timestamp:   time.Now().UTC(),
		TextPreview: redact.Preview(text, previewRunes),
		Aggressive:  aggressive,
	})

	if IsNegative(score) {
		state.NegativeTurnCount++
		t.logger.Info("negative sentiment",
			slog.Float64("score", score),
			slog.Int("negative_turn_count", state.NegativeTurnCount),
			slog.String("call_id", state.CallID))
	} else {
		if state.NegativeTurnCount > 0 {
			t.logger.Info("sentiment improved, resetting streak",
				slog.Float64("score", score),
				slog.String("call_id", state.CallID))
		}
		state.NegativeTurnCount = 0
	}

	if aggressive {
		t.logger.Warn("aggressive tone detected",
			slog.String("call_id", state.CallID))
		state.AggressiveToneDetected = true
	}
}

// ShouldEscalate is the tracker-local trigger surface: aggression or a
// negative streak at threshold. It is narrower than the escalation engine,
// which also covers explicit requests and clarification loops; the
// orchestrator consults both. Always false once the call is escalated.
func (t *Tracker) ShouldEscalate(state *conversation.State, aggressive bool) bool {
	if state.EscalationTriggered {
		return false
	}
	if aggressive {
		return true
	}
	return state.NegativeTurnCount >= t.cfg.NegativeTurnThreshold
}

// MarkEscalationTriggered sets the terminal escalation flag. Re-invocation
// is a no-op: the first reason and timestamp win for the life of the call.
func (t *Tracker) MarkEscalationTriggered(state *conversation.State, reason string) {
	if state.EscalationTriggered {
		return
	}
	state.EscalationTriggered = true
	state.EscalationReason = reason
	state.EscalationAt = time.Now().UTC()

	t.logger.Info("escalation marked",
		slog.String("reason", reason),
		slog.String("call_id", state.CallID))
}

// ResetNegativeCounter clears the streak, e.g. after a successful
// clarification.
func (t *Tracker) ResetNegativeCounter(state *conversation.State) {
	state.NegativeTurnCount = 0
}

// Summary aggregates the sentiment history for reporting.
type Summary struct {
	AverageSentiment      float64
	MinSentiment          float64
	MaxSentiment          float64
	TotalTurns            int
	NegativeTurns         int
	PositiveTurns         int
	NeutralTurns          int
	CurrentNegativeStreak int
	EscalationTriggered   bool
}

// GetSummary computes sentiment statistics over the whole call.
func (t *Tracker) GetSummary(state *conversation.State) Summary {
	history := state.SentimentHistory
	if len(history) == 0 {
		return Summary{
			CurrentNegativeStreak: state.NegativeTurnCount,
			EscalationTriggered:   state.EscalationTriggered,
		}
	}

	sum := 0.0
	minScore := history[0].Score
	maxScore := history[0].Score
	negative, positive := 0, 0
	for _, rec := range history {
		sum += rec.Score
		if rec.Score < minScore {
			minScore = rec.Score
		}
		if rec.Score > maxScore {
			maxScore = rec.Score
		}
		switch {
		case rec.Score < bucketNegativeEdge:
			negative++
		case rec.Score > bucketPositiveEdge:
			positive++
		}
	}

	return Summary{
		AverageSentiment:      sum / float64(len(history)),
		MinSentiment:          minScore,
		MaxSentiment:          maxScore,
		TotalTurns:            len(history),
		NegativeTurns:         negative,
		PositiveTurns:         positive,
		NeutralTurns:          len(history) - negative - positive,
		CurrentNegativeStreak: state.NegativeTurnCount,
		EscalationTriggered:   state.EscalationTriggered,
	}
}

// Trend labels returned by RecentTrend.
const (
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// RecentTrend compares the means of the first and second halves of the last
// lastN scores. A difference above 0.2 is improving, below -0.2 declining.
func (t *Tracker) RecentTrend(state *conversation.State, lastN int) string {
	if lastN <= 0 {
		lastN = 3
	}
	history := state.SentimentHistory
	if len(history) < 2 {
		return TrendInsufficientData
	}

	start := len(history) - lastN
	if start < 0 {
		start = 0
	}
	recent := history[start:]
	if len(recent) < 2 {
		return TrendInsufficientData
	}

	half := len(recent) / 2
	var firstSum, secondSum float64
	for _, rec := range recent[:half] {
		firstSum += rec.Score
	}
	for _, rec := range recent[half:] {
		secondSum += rec.Score
	}
	firstAvg := firstSum / float64(half)
	secondAvg := secondSum / float64(len(recent)-half)

	diff := secondAvg - firstAvg
	switch {
	case diff > 0.2:
		return TrendImproving
	case diff < -0.2:
		return TrendDeclining
	default:
		return TrendStable
	}
}
