package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/lexicon"
)

type stubProvider struct {
	score float64
	err   error
	calls int
}

func (s *stubProvider) Score(ctx context.Context, text string, language lexicon.Language) (float64, error) {
	s.calls++
	return s.score, s.err
}

func (s *stubProvider) Name() string { return "stub" }

func TestAnalyzeBlendsProviderAndKeywords(t *testing.T) {
	provider := &stubProvider{score: -0.5}
	a := NewAnalyzer(provider, AnalyzerConfig{}, nil)

	// "kya bakwas" and "time waste" are two hinglish frustration keywords.
	score := a.Analyze(context.Background(), "kya bakwas, pura time waste", lexicon.Hinglish)

	want := -0.5*0.7 + -0.7*0.3
	if diff := score - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected %f, got %f", want, score)
	}
	if provider.calls != 1 {
		t.Fatalf("expected one provider call, got %d", provider.calls)
	}
}

func TestAnalyzeUsesLocalModelForLocalLanguage(t *testing.T) {
	provider := &stubProvider{score: 1.0}
	a := NewAnalyzer(provider, AnalyzerConfig{LocalLanguage: lexicon.English}, nil)

	a.Analyze(context.Background(), "this is great, thanks", lexicon.English)
	if provider.calls != 0 {
		t.Fatalf("local language must not hit the provider")
	}
}

func TestAnalyzeProviderFailureIsNeutral(t *testing.T) {
	provider := &stubProvider{err: errors.New("provider down")}
	a := NewAnalyzer(provider, AnalyzerConfig{}, nil)

	score := a.Analyze(context.Background(), "sab theek hai", lexicon.Hinglish)
	if score != 0.0 {
		t.Fatalf("expected neutral score on provider failure, got %f", score)
	}
}

func TestAnalyzeNilProviderIsNeutral(t *testing.T) {
	a := NewAnalyzer(nil, AnalyzerConfig{}, nil)
	if score := a.Analyze(context.Background(), "emi kavali", lexicon.Telugu); score != 0.0 {
		t.Fatalf("expected neutral score without provider, got %f", score)
	}
}

func TestAnalyzeScoreBounds(t *testing.T) {
	cases := []struct {
		provider float64
		text     string
		language lexicon.Language
	}{
		{-5.0, "chup, bewakoof", lexicon.Hinglish},
		{5.0, "excellent perfect wonderful", lexicon.English},
		{-1.0, "moham muyyi vellipo", lexicon.Telugu},
		{0.0, "", lexicon.English},
	}
	for _, tc := range cases {
		a := NewAnalyzer(&stubProvider{score: tc.provider}, AnalyzerConfig{}, nil)
		score := a.Analyze(context.Background(), tc.text, tc.language)
		if score < -1.0 || score > 1.0 {
			t.Fatalf("score %f out of bounds for %q", score, tc.text)
		}
	}
}

func TestKeywordScoreTiers(t *testing.T) {
	a := NewAnalyzer(nil, AnalyzerConfig{}, nil)
	cases := []struct {
		text     string
		language lexicon.Language
		want     float64
	}{
		{"shut up and leave me alone", lexicon.English, -0.9}, // aggression wins
		{"i am frustrated and fed up", lexicon.English, -0.7}, // two frustration
		{"i am confused", lexicon.English, -0.4},              // one frustration
		{"all good here", lexicon.English, 0.0},
		{"", lexicon.English, 0.0},
		{"phone mat karo", lexicon.Hinglish, -0.9},
	}
	for _, tc := range cases {
		if got := a.KeywordScore(tc.text, tc.language); got != tc.want {
			t.Fatalf("KeywordScore(%q) = %f, want %f", tc.text, got, tc.want)
		}
	}
}

func TestAggressionDominatesMLScore(t *testing.T) {
	// Even with a maximally positive model score, an aggression match must
	// pull the combined score down by 0.27.
	withAggression := NewAnalyzer(&stubProvider{score: 1.0}, AnalyzerConfig{}, nil)
	score := withAggression.Analyze(context.Background(), "chup karo", lexicon.Hinglish)
	want := 1.0*0.7 + -0.9*0.3
	if diff := score - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected %f, got %f", want, score)
	}
}

func TestDetectAggressionAndFrustration(t *testing.T) {
	a := NewAnalyzer(nil, AnalyzerConfig{}, nil)
	if !a.DetectAggression("SHUT UP", lexicon.English) {
		t.Fatalf("expected case-insensitive aggression match")
	}
	if a.DetectAggression("hello there", lexicon.English) {
		t.Fatalf("unexpected aggression match")
	}
	if !a.DetectFrustration("samajh nahi aa raha", lexicon.Hinglish) {
		t.Fatalf("expected frustration match")
	}
	if a.DetectFrustration("", lexicon.Telugu) {
		t.Fatalf("empty utterance must not match")
	}
}

func TestIsNegative(t *testing.T) {
	if IsNegative(-0.3) {
		t.Fatalf("-0.3 is not below the threshold")
	}
	if !IsNegative(-0.31) {
		t.Fatalf("-0.31 is below the threshold")
	}
}

func TestLabel(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{-1.0, "very_negative"},
		{-0.5, "very_negative"},
		{-0.49, "negative"},
		{-0.1, "negative"},
		{0.0, "neutral"},
		{0.1, "neutral"},
		{0.5, "positive"},
		{0.51, "very_positive"},
	}
	for _, tc := range cases {
		if got := Label(tc.score); got != tc.want {
			t.Fatalf("Label(%f) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
