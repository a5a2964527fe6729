package conversation

import (
	"testing"
	"time"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/lexicon"
)

func TestNewStateDefaultsLanguage(t *testing.T) {
	s := NewState("lead-1", lexicon.Language("klingon"))
	if s.Language != lexicon.Default {
		t.Fatalf("expected default language, got %s", s.Language)
	}
	if s.CallID == "" {
		t.Fatalf("expected call id")
	}
	if s.NegativeTurnCount != 0 || s.ClarificationCount != 0 {
		t.Fatalf("counters must start at zero")
	}
}

func TestAddTurnNumbersSequentially(t *testing.T) {
	s := NewState("lead-1", lexicon.English)
	first := s.AddTurn("user", "hello", IntentGreeting, 0.9)
	second := s.AddTurn("agent", "hi there", IntentUnknown, 0)
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected sequential turn ids, got %d and %d", first.ID, second.ID)
	}
}

func TestAddScoredTurnKeepsScore(t *testing.T) {
	s := NewState("lead-1", lexicon.English)
	turn := s.AddScoredTurn("this is useless", IntentUnknown, 0.8, -0.6)
	if !turn.HasSentiment || turn.SentimentScore != -0.6 {
		t.Fatalf("expected scored turn, got %+v", turn)
	}
}

func TestAverageSentiment(t *testing.T) {
	s := NewState("lead-1", lexicon.English)
	if s.AverageSentiment() != 0.0 {
		t.Fatalf("expected 0.0 for empty history")
	}
	s.SentimentHistory = append(s.SentimentHistory,
		SentimentRecord{Score: -0.5},
		SentimentRecord{Score: 0.1},
	)
	avg := s.AverageSentiment()
	if avg < -0.201 || avg > -0.199 {
		t.Fatalf("expected -0.2, got %f", avg)
	}
}

func TestPruneTurnsKeepsRecent(t *testing.T) {
	s := NewState("lead-1", lexicon.English)
	s.Turns = []Turn{
		{ID: 1, Timestamp: time.Now().UTC().Add(-10 * time.Minute)},
		{ID: 2, Timestamp: time.Now().UTC()},
	}
	s.PruneTurns(3 * time.Minute)
	if len(s.Turns) != 1 || s.Turns[0].ID != 2 {
		t.Fatalf("expected only the recent turn, got %+v", s.Turns)
	}
	s.PruneTurns(0)
	if len(s.Turns) != 1 {
		t.Fatalf("zero window must not prune")
	}
}
