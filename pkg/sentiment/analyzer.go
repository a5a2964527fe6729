// Package sentiment scores utterance polarity and tracks the rolling
// emotional state of a call. Scoring blends a model-based estimate with
// keyword-based frustration/aggression detection so a provider outage can
// never suppress the safety-critical keyword signals.
package sentiment

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/errorsx"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/lexicon"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/logging"
)

// NegativeThreshold is the score below which a turn counts as negative for
// escalation. Reporting buckets and label edges are intentionally different
// thresholds; see Summary and Label.
const NegativeThreshold = -0.3

// Default blend weights: 70% model estimate, 30% keyword score.
const (
	defaultMLWeight      = 0.7
	defaultKeywordWeight = 0.3
)

type AnalyzerConfig struct {
	// MLWeight and KeywordWeight control the score blend. Zero values take
	// the 0.7/0.3 defaults.
	MLWeight      float64
	KeywordWeight float64
	// LocalLanguage is scored by the embedded lexical polarity model instead
	// of the remote provider.
	LocalLanguage lexicon.Language
	// ProviderTimeout bounds each remote scoring call.
	ProviderTimeout time.Duration
}

func (c AnalyzerConfig) withDefaults() AnalyzerConfig {
	if c.MLWeight == 0 {
		c.MLWeight = defaultMLWeight
	}
	if c.KeywordWeight == 0 {
		c.KeywordWeight = defaultKeywordWeight
	}
	if !lexicon.Valid(c.LocalLanguage) {
		c.LocalLanguage = lexicon.English
	}
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = 3 * time.Second
	}
	return c
}

// Analyzer combines the model-based polarity estimate with keyword
// detection. It is stateless across calls and safe for concurrent use.
type Analyzer struct {
	cfg      AnalyzerConfig
	provider Provider
	logger   *slog.Logger
}

func NewAnalyzer(provider Provider, cfg AnalyzerConfig, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		cfg:      cfg.withDefaults(),
		provider: provider,
		logger:   logging.NewComponentLogger(logger, "sentiment_analyzer"),
	}
}

// Analyze scores text in [-1, 1]. Provider failures degrade to a neutral
// model score; the keyword path always runs, so the combined score still
// reflects frustration or aggression in the utterance.
func (a *Analyzer) Analyze(ctx context.Context, text string, language lexicon.Language) float64 {
	mlScore := a.modelScore(ctx, text, language)
	keywordScore := a.KeywordScore(text, language)

	combined := clamp(mlScore*a.cfg.MLWeight + keywordScore*a.cfg.KeywordWeight)

	a.logger.Debug("sentiment analyzed",
		slog.Float64("ml_score", mlScore),
		slog.Float64("keyword_score", keywordScore),
		slog.Float64("combined", combined),
		slog.String("language", string(language)))

	return combined
}

func (a *Analyzer) modelScore(ctx context.Context, text string, language lexicon.Language) float64 {
	if language == a.cfg.LocalLanguage {
		return localPolarity(text)
	}
	if a.provider == nil {
		a.logger.Warn("no sentiment provider configured, using neutral model score",
			slog.String("language", string(language)))
		return 0.0
	}

	scoreCtx, cancel := context.WithTimeout(ctx, a.cfg.ProviderTimeout)
	defer cancel()

	score, err := a.provider.Score(scoreCtx, text, language)
	if err != nil {
		a.logger.Error("sentiment provider failed, falling back to neutral",
			slog.String("provider", a.provider.Name()),
			slog.String("reason", string(errorsx.Reason(err))),
			slog.String("error", err.Error()))
		return 0.0
	}
	return clamp(score)
}

// KeywordScore maps lexicon matches to a fixed negative score:
// any aggression match -0.9, two or more frustration matches -0.7,
// exactly one frustration match -0.4, otherwise 0.0.
func (a *Analyzer) KeywordScore(text string, language lexicon.Language) float64 {
	lower := strings.ToLower(text)
	tbl := lexicon.For(language)

	aggressive := 0
	for _, kw := range tbl.Aggression {
		if strings.Contains(lower, kw) {
			aggressive++
		}
	}
	frustration := 0
	for _, kw := range tbl.Frustration {
		if strings.Contains(lower, kw) {
			frustration++
		}
	}

	switch {
	case aggressive > 0:
		return -0.9
	case frustration >= 2:
		return -0.7
	case frustration == 1:
		return -0.4
	default:
		return 0.0
	}
}

// DetectFrustration reports whether text matches any frustration keyword.
func (a *Analyzer) DetectFrustration(text string, language lexicon.Language) bool {
	lower := strings.ToLower(text)
	for _, kw := range lexicon.For(language).Frustration {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DetectAggression reports whether text matches any aggression keyword.
// Exposed independently because the escalation trigger must fire even when
// the combined score is not strongly negative.
func (a *Analyzer) DetectAggression(text string, language lexicon.Language) bool {
	lower := strings.ToLower(text)
	for _, kw := range lexicon.For(language).Aggression {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// IsNegative reports whether score is below the escalation threshold.
func IsNegative(score float64) bool {
	return score < NegativeThreshold
}

// Label maps a score to a human-readable bucket.
func Label(score float64) string {
	switch {
	case score <= -0.5:
		return "very_negative"
	case score <= -0.1:
		return "negative"
	case score <= 0.1:
		return "neutral"
	case score <= 0.5:
		return "positive"
	default:
		return "very_positive"
	}
}
