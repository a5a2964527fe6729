// Package dialog drives the per-utterance decision flow for one call:
// language management first, then sentiment scoring, then tracking, then
// escalation evaluation. The caller (call orchestrator) acts on the
// returned decision and persists the mutated state.
package dialog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/conversation"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/escalation"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/language"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/lexicon"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/logging"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/metrics"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/redact"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/sentiment"
)

// Engine owns the per-call components. One engine serves many calls; each
// call gets a Session that serializes its utterance processing.
type Engine struct {
	analyzer  *sentiment.Analyzer
	tracker   *sentiment.Tracker
	detector  *escalation.Detector
	languages *language.Manager
	obs       metrics.Observer
	logger    *slog.Logger
}

func NewEngine(
	analyzer *sentiment.Analyzer,
	tracker *sentiment.Tracker,
	detector *escalation.Detector,
	languages *language.Manager,
	obs metrics.Observer,
	logger *slog.Logger,
) *Engine {
	if obs == nil {
		obs = metrics.NoopObserver{}
	}
	return &Engine{
		analyzer:  analyzer,
		tracker:   tracker,
		detector:  detector,
		languages: languages,
		obs:       obs,
		logger:    logging.NewComponentLogger(logger, "dialog_engine"),
	}
}

// Session binds an engine to one call's state. All utterance processing for
// the call goes through the session mutex; distinct calls run in parallel.
type Session struct {
	engine *Engine
	state  *conversation.State
	logger *slog.Logger
	mu     sync.Mutex
}

func (e *Engine) NewSession(state *conversation.State) *Session {
	return &Session{
		engine: e,
		state:  state,
		logger: logging.NewCallLogger(e.logger, state.CallID),
	}
}

// State returns the session's conversation state. Hold no reference across
// concurrent ProcessUtterance calls.
func (s *Session) State() *conversation.State {
	return s.state
}

// Input carries one user utterance plus the collaborator signals that
// arrive with it.
type Input struct {
	Utterance     string
	Intent        conversation.Intent
	ASRConfidence float64
}

// Decision is the engine's verdict for one utterance.
type Decision struct {
	Score          float64
	Label          string
	Aggressive     bool
	Language       lexicon.Language
	SwitchedFrom   lexicon.Language
	LanguageSwitch bool

	Escalate    bool
	Reason      escalation.Reason
	Explanation string
	Priority    string
	Message     string
}

// ProcessUtterance runs the full decision flow for one utterance. It never
// returns an error for provider failures; those degrade to neutral scores
// inside the analyzer. The returned decision reflects the updated state.
func (s *Session) ProcessUtterance(ctx context.Context, in Input) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state
	began := time.Now()

	// Language first: the score must be computed in the active language.
	var decision Decision
	if switched, to := s.engine.languages.ShouldSwitch(in.Utterance, state.Language, in.ASRConfidence); switched {
		from := state.Language
		if s.engine.languages.Switch(state, to) {
			decision.LanguageSwitch = true
			decision.SwitchedFrom = from
			s.engine.obs.RecordEvent(metrics.MetricsEvent{
				Name:  metrics.EventLanguageSwitch,
				Time:  time.Now(),
				Value: 1,
				Tags: map[string]string{
					"call_id": state.CallID,
					"from":    string(from),
					"to":      string(to),
				},
			})
		}
	}
	decision.Language = state.Language

	score := s.engine.analyzer.Analyze(ctx, in.Utterance, state.Language)
	aggressive := s.engine.analyzer.DetectAggression(in.Utterance, state.Language)
	decision.Score = score
	decision.Label = sentiment.Label(score)
	decision.Aggressive = aggressive

	s.engine.tracker.Track(state, score, in.Utterance, aggressive)
	state.AddScoredTurn(in.Utterance, in.Intent, in.ASRConfidence, score)

	s.engine.obs.RecordEvent(metrics.MetricsEvent{
		Name:  metrics.EventSentimentScore,
		Time:  time.Now(),
		Value: score,
		Tags:  map[string]string{"call_id": state.CallID, "language": string(state.Language)},
	})
	if state.NegativeTurnCount > 0 {
		s.engine.obs.RecordEvent(metrics.MetricsEvent{
			Name:  metrics.EventNegativeStreak,
			Time:  time.Now(),
			Value: float64(state.NegativeTurnCount),
			Tags:  map[string]string{"call_id": state.CallID},
		})
	}

	s.evaluateEscalation(&decision, in)

	s.logger.Debug("utterance processed",
		slog.String("utterance", redact.Text(in.Utterance)),
		slog.Float64("score", score),
		slog.String("label", decision.Label),
		slog.Bool("escalate", decision.Escalate),
		slog.Duration("took", time.Since(began)))

	return decision
}

// evaluateEscalation consults both trigger surfaces: the full engine
// (explicit request, streak, clarification loop, aggression keywords) and
// the tracker's narrow vote. Either firing is sufficient. Only the first
// firing flips the terminal flag and produces an escalating decision;
// later firings are recorded as audit entries and near-miss events.
func (s *Session) evaluateEscalation(decision *Decision, in Input) {
	state := s.state

	fired, reason, explanation := s.engine.detector.ShouldEscalate(state, in.Intent, in.Utterance)
	if !fired && s.engine.tracker.ShouldEscalate(state, decision.Aggressive) {
		fired = true
		if decision.Aggressive {
			reason = escalation.ReasonAggressiveTone
			explanation = "Aggressive tone detected in utterance"
		} else {
			reason = escalation.ReasonNegativeSentiment
			explanation = "Consecutive negative sentiment turns"
		}
	}
	if !fired {
		return
	}

	// The first trigger is terminal. Later triggers still hit the audit
	// trail so post-call review sees every firing, not just the first.
	if state.EscalationTriggered {
		s.engine.detector.LogEscalation(state, reason, explanation)
		s.engine.obs.RecordEvent(metrics.MetricsEvent{
			Name:  metrics.EventEscalationNearMiss,
			Time:  time.Now(),
			Value: 1,
			Tags:  map[string]string{"call_id": state.CallID, "reason": string(reason)},
		})
		return
	}

	s.engine.detector.LogEscalation(state, reason, explanation)
	s.engine.tracker.MarkEscalationTriggered(state, string(reason))

	decision.Escalate = true
	decision.Reason = reason
	decision.Explanation = explanation
	decision.Priority = escalation.Priority(reason)
	decision.Message = escalation.Message(reason, state.Language)

	s.engine.obs.RecordEvent(metrics.MetricsEvent{
		Name:  metrics.EventEscalationTriggered,
		Time:  time.Now(),
		Value: 1,
		Tags: map[string]string{
			"call_id":  state.CallID,
			"reason":   string(reason),
			"priority": decision.Priority,
		},
	})

	s.logger.Info("escalation triggered",
		slog.String("reason", string(reason)),
		slog.String("priority", decision.Priority))
}

// RequestClarification bumps the clarification counter on behalf of the
// orchestrator when the agent asks the user to repeat or rephrase.
func (s *Session) RequestClarification() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IncrementClarification()
}

// SentimentSummary exposes the tracker's reporting view of the call.
func (s *Session) SentimentSummary() sentiment.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.tracker.GetSummary(s.state)
}

// SentimentTrend exposes the tracker's trend over the last n analyzed turns.
func (s *Session) SentimentTrend(lastN int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.tracker.RecentTrend(s.state, lastN)
}

// EscalationSummary exposes the escalation audit view of the call.
func (s *Session) EscalationSummary() escalation.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.detector.GetSummary(s.state)
}

// LanguageStats exposes language usage for the call.
func (s *Session) LanguageStats() language.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.languages.GetStats(s.state)
}

// End finalizes the call state; subsequent processing is the caller's bug.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Finalize()
}
