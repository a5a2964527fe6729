package sentiment

import (
	"context"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/lexicon"
)

// Provider scores utterance polarity via an external model. Implementations
// return a score in [-1, 1] or an error; they never block past their own
// bounded timeout. Failures are collapsed to a neutral score at the
// Analyzer boundary, not here, so causes stay observable.
type Provider interface {
	Score(ctx context.Context, text string, language lexicon.Language) (float64, error)
	Name() string
}
