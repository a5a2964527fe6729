package metrics

import "time"

type MetricsEvent struct {
	Name   string
	Time   time.Time
	Value  float64
	Tags   map[string]string
	Fields map[string]any
}

type Observer interface {
	RecordEvent(ev MetricsEvent)
}

type NoopObserver struct{}

func (NoopObserver) RecordEvent(MetricsEvent) {}

// Event names emitted by the dialog engine.
const (
	EventSentimentScore      = "sentiment_score"
	EventNegativeStreak      = "negative_streak"
	EventEscalationTriggered = "escalation_triggered"
	EventEscalationNearMiss  = "escalation_near_miss"
	EventLanguageSwitch      = "language_switch"
)
