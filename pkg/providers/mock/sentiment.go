// Package mock provides deterministic provider doubles for tests and
// dry-run drivers.
package mock

import (
	"context"
	"sync"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/lexicon"
)

// SentimentScorer returns a fixed score, or a fixed error when Err is set.
type SentimentScorer struct {
	mu         sync.Mutex
	FixedScore float64
	Err        error
	Calls      int
}

func NewSentimentScorer(score float64) *SentimentScorer {
	return &SentimentScorer{FixedScore: score}
}

func (m *SentimentScorer) Score(ctx context.Context, text string, language lexicon.Language) (float64, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return m.FixedScore, nil
}

func (m *SentimentScorer) Name() string { return "mock" }
