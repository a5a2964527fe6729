// Package openai scores utterance sentiment through the OpenAI chat
// completions API. Used for languages the local polarity model cannot
// cover; the model is instructed to reply with a single calibrated float.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/errorsx"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/lexicon"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/resilience"
)

type SentimentScorer struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client

	breaker *resilience.CircuitBreaker
	retry   resilience.RetryPolicy
}

func NewSentimentScorer(apiKey, model string) *SentimentScorer {
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	return &SentimentScorer{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: "https://api.openai.com/v1",
		Client:  &http.Client{Timeout: 10 * time.Second},
		retry:   resilience.NewRetryPolicy(1, 200*time.Millisecond),
	}
}

func (s *SentimentScorer) Name() string { return "openai" }

// UseCircuitBreaker enables rate-limit circuit breaking.
func (s *SentimentScorer) UseCircuitBreaker(threshold int, cooldown time.Duration) {
	s.breaker = resilience.NewCircuitBreaker(threshold, cooldown)
}

// Score asks the model for a single polarity float in [-1, 1]. Any
// non-numeric or missing reply is a parse failure; the caller's analyzer
// collapses all failures to the neutral fallback.
func (s *SentimentScorer) Score(ctx context.Context, text string, language lexicon.Language) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0.0, nil
	}
	if s.breaker != nil && !s.breaker.Allow() {
		return 0, errorsx.Wrap(errors.New("circuit open"), errorsx.ReasonSentimentCircuitOpen)
	}

	var score float64
	err := s.retry.DoContext(ctx, func() error {
		var attemptErr error
		score, attemptErr = s.scoreOnce(ctx, text, language)
		return attemptErr
	})
	if s.breaker != nil {
		if err != nil {
			s.breaker.OnError(err)
		} else {
			s.breaker.OnSuccess()
		}
	}
	return score, err
}

func (s *SentimentScorer) scoreOnce(ctx context.Context, text string, language lexicon.Language) (float64, error) {
	payload := map[string]any{
		"model": s.Model,
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": scorePrompt(text, language)},
		},
		"temperature": 0.3,
		"max_tokens":  10,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, errorsx.Wrap(err, errorsx.ReasonSentimentGenerate)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return 0, errorsx.Wrap(err, errorsx.ReasonSentimentGenerate)
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, errorsx.Wrap(err, errorsx.ReasonSentimentTimeout)
		}
		return 0, errorsx.Wrap(err, errorsx.ReasonSentimentGenerate)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return 0, errorsx.Wrap(resilience.RateLimitError{Provider: s.Name()}, errorsx.ReasonSentimentRateLimit)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, errorsx.Wrap(fmt.Errorf("status %d", resp.StatusCode), errorsx.ReasonSentimentGenerate)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, errorsx.Wrap(err, errorsx.ReasonSentimentGenerate)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return 0, errorsx.Wrap(err, errorsx.ReasonSentimentParse)
	}
	if len(parsed.Choices) == 0 {
		return 0, errorsx.Wrap(errors.New("no choices"), errorsx.ReasonSentimentParse)
	}

	return parseScore(parsed.Choices[0].Message.Content)
}

func (s *SentimentScorer) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

// parseScore extracts a float from the model reply and clamps it to [-1, 1].
func parseScore(reply string) (float64, error) {
	reply = strings.TrimSpace(reply)
	score, err := strconv.ParseFloat(reply, 64)
	if err != nil {
		// Models sometimes wrap the number in prose; take the first token
		// that parses before giving up.
		for _, field := range strings.Fields(reply) {
			field = strings.Trim(field, ".,:;")
			if score, err = strconv.ParseFloat(field, 64); err == nil {
				break
			}
		}
	}
	if err != nil {
		return 0, errorsx.Wrap(fmt.Errorf("unparseable reply %q", reply), errorsx.ReasonSentimentParse)
	}
	if score < -1.0 {
		score = -1.0
	}
	if score > 1.0 {
		score = 1.0
	}
	return score, nil
}

const systemPrompt = "You are an expert at analyzing sentiment in multilingual text, especially Hinglish (Hindi-English mix) and Telugu."

func scorePrompt(text string, language lexicon.Language) string {
	return fmt.Sprintf(`Analyze the sentiment of the following %s text.

Text: %q

Respond with ONLY a sentiment score from -1.0 (very negative) to +1.0 (very positive).
Consider:
- -1.0 to -0.5: Very negative (angry, frustrated, upset)
- -0.5 to -0.1: Slightly negative (disappointed, confused)
- -0.1 to +0.1: Neutral
- +0.1 to +0.5: Slightly positive (satisfied, calm)
- +0.5 to +1.0: Very positive (happy, excited, grateful)

Respond with only the number, nothing else.
Example: -0.7
`, language, text)
}
