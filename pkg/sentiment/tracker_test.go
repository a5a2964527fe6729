package sentiment

import (
	"testing"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/conversation"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/lexicon"
)

func newTestState() *conversation.State {
	return conversation.NewState("lead-1", lexicon.Hinglish)
}

func TestTrackAppendsHistoryWithPreview(t *testing.T) {
	tracker := NewTracker(TrackerConfig{}, nil)
	state := newTestState()

	long := "this utterance is definitely longer than fifty characters in total length"
	tracker.Track(state, -0.2, long, false)

	if len(state.SentimentHistory) != 1 {
		t.Fatalf("expected one record, got %d", len(state.SentimentHistory))
	}
	rec := state.SentimentHistory[0]
	if rec.Score != -0.2 {
		t.Fatalf("unexpected score %f", rec.Score)
	}
	if got := len([]rune(rec.TextPreview)); got != 50 {
		t.Fatalf("expected 50-rune preview, got %d", got)
	}
}

func TestNegativeStreakCounterResetLaw(t *testing.T) {
	tracker := NewTracker(TrackerConfig{}, nil)
	state := newTestState()

	scores := []float64{-0.5, -0.4, 0.0, -0.31, -0.6, -0.9}
	for _, score := range scores {
		tracker.Track(state, score, "turn", false)
	}
	// Trailing run of scores < -0.3 is the last three.
	if state.NegativeTurnCount != 3 {
		t.Fatalf("expected streak 3, got %d", state.NegativeTurnCount)
	}

	tracker.Track(state, -0.3, "boundary is not negative", false)
	if state.NegativeTurnCount != 0 {
		t.Fatalf("expected reset at -0.3, got %d", state.NegativeTurnCount)
	}
}

func TestAggressiveToneIsSticky(t *testing.T) {
	tracker := NewTracker(TrackerConfig{}, nil)
	state := newTestState()

	tracker.Track(state, 0.2, "calm words", true)
	tracker.Track(state, 0.5, "still calm", false)
	if !state.AggressiveToneDetected {
		t.Fatalf("aggressive flag must stay set for the call")
	}
}

func TestShouldEscalateTriggers(t *testing.T) {
	tracker := NewTracker(TrackerConfig{}, nil)
	state := newTestState()

	if tracker.ShouldEscalate(state, false) {
		t.Fatalf("fresh state must not escalate")
	}
	if !tracker.ShouldEscalate(state, true) {
		t.Fatalf("aggressive tone must escalate")
	}

	tracker.Track(state, -0.5, "a", false)
	if tracker.ShouldEscalate(state, false) {
		t.Fatalf("one negative turn is below threshold")
	}
	tracker.Track(state, -0.4, "b", false)
	if !tracker.ShouldEscalate(state, false) {
		t.Fatalf("two consecutive negative turns must escalate")
	}
}

func TestEscalationIdempotence(t *testing.T) {
	tracker := NewTracker(TrackerConfig{}, nil)
	state := newTestState()

	tracker.Track(state, -0.5, "a", false)
	tracker.Track(state, -0.4, "b", false)
	if !tracker.ShouldEscalate(state, false) {
		t.Fatalf("expected escalation vote")
	}

	tracker.MarkEscalationTriggered(state, "negative_sentiment")
	first := state.EscalationAt

	if tracker.ShouldEscalate(state, true) {
		t.Fatalf("escalated call must not escalate again")
	}

	tracker.MarkEscalationTriggered(state, "aggressive_tone")
	if state.EscalationReason != "negative_sentiment" {
		t.Fatalf("first reason must win, got %s", state.EscalationReason)
	}
	if !state.EscalationAt.Equal(first) {
		t.Fatalf("first timestamp must win")
	}
}

func TestGetSummaryBuckets(t *testing.T) {
	tracker := NewTracker(TrackerConfig{}, nil)
	state := newTestState()

	empty := tracker.GetSummary(state)
	if empty.TotalTurns != 0 || empty.AverageSentiment != 0.0 {
		t.Fatalf("unexpected empty summary %+v", empty)
	}

	// Bucket edges are +-0.1, not the -0.3 escalation threshold.
	for _, score := range []float64{-0.2, -0.05, 0.05, 0.2, 0.6} {
		tracker.Track(state, score, "turn", false)
	}
	summary := tracker.GetSummary(state)
	if summary.TotalTurns != 5 {
		t.Fatalf("expected 5 turns, got %d", summary.TotalTurns)
	}
	if summary.NegativeTurns != 1 || summary.PositiveTurns != 2 || summary.NeutralTurns != 2 {
		t.Fatalf("unexpected buckets %+v", summary)
	}
	if summary.MinSentiment != -0.2 || summary.MaxSentiment != 0.6 {
		t.Fatalf("unexpected min/max %+v", summary)
	}
}

func TestRecentTrend(t *testing.T) {
	tracker := NewTracker(TrackerConfig{}, nil)

	state := newTestState()
	if got := tracker.RecentTrend(state, 3); got != TrendInsufficientData {
		t.Fatalf("expected insufficient_data, got %s", got)
	}

	tracker.Track(state, -0.6, "a", false)
	tracker.Track(state, -0.5, "b", false)
	tracker.Track(state, 0.4, "c", false)
	if got := tracker.RecentTrend(state, 3); got != TrendImproving {
		t.Fatalf("expected improving, got %s", got)
	}

	declining := newTestState()
	tracker.Track(declining, 0.5, "a", false)
	tracker.Track(declining, 0.4, "b", false)
	tracker.Track(declining, -0.5, "c", false)
	if got := tracker.RecentTrend(declining, 3); got != TrendDeclining {
		t.Fatalf("expected declining, got %s", got)
	}

	stable := newTestState()
	tracker.Track(stable, 0.1, "a", false)
	tracker.Track(stable, 0.15, "b", false)
	if got := tracker.RecentTrend(stable, 3); got != TrendStable {
		t.Fatalf("expected stable, got %s", got)
	}
}

func TestResetNegativeCounter(t *testing.T) {
	tracker := NewTracker(TrackerConfig{}, nil)
	state := newTestState()
	tracker.Track(state, -0.9, "a", false)
	tracker.ResetNegativeCounter(state)
	if state.NegativeTurnCount != 0 {
		t.Fatalf("expected counter reset")
	}
}
