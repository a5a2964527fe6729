// Package language detects the spoken language per utterance and decides
// when the active conversation language should change.
package language

import (
	"log/slog"
	"strings"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/conversation"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/lexicon"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/logging"
)

type ManagerConfig struct {
	// DetectConfidenceGate is the detection confidence required to switch on
	// an explicit/implicit language signal. Zero takes 0.8.
	DetectConfidenceGate float64
	// ASRConfidenceFloor is the recognition confidence below which the call
	// degrades to the fallback language. Zero takes 0.6.
	ASRConfidenceFloor float64
}

func (c ManagerConfig) withDefaults() ManagerConfig {
	if c.DetectConfidenceGate <= 0 {
		c.DetectConfidenceGate = 0.8
	}
	if c.ASRConfidenceFloor <= 0 {
		c.ASRConfidenceFloor = 0.6
	}
	return c
}

// Manager runs language detection and switching over the closed set of
// supported languages. Stateless across calls; safe for concurrent use.
type Manager struct {
	cfg    ManagerConfig
	logger *slog.Logger
}

func NewManager(cfg ManagerConfig, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg.withDefaults(),
		logger: logging.NewComponentLogger(logger, "language_manager"),
	}
}

// Detect identifies the language of an utterance. Explicit switch phrases
// win outright with confidence 1.0; otherwise each language is scored by
// pattern matches and confidence is the winner's share of all matches. When
// nothing matches, the current (or default) language is retained at 0.5.
func (m *Manager) Detect(utterance string, current lexicon.Language) (lexicon.Language, float64) {
	lower := strings.ToLower(utterance)

	for _, lang := range lexicon.Supported() {
		for _, phrase := range lexicon.For(lang).SwitchPhrases {
			if strings.Contains(lower, phrase) {
				return lang, 1.0
			}
		}
	}

	scores := make(map[lexicon.Language]int, len(lexicon.Supported()))
	total := 0
	for _, lang := range lexicon.Supported() {
		count := 0
		for _, pattern := range lexicon.For(lang).Patterns {
			count += len(pattern.FindAllString(lower, -1))
		}
		scores[lang] = count
		total += count
	}

	if total > 0 {
		best := lexicon.Supported()[0]
		for _, lang := range lexicon.Supported() {
			if scores[lang] > scores[best] {
				best = lang
			}
		}
		return best, float64(scores[best]) / float64(total)
	}

	if lexicon.Valid(current) {
		return current, 0.5
	}
	return lexicon.Default, 0.5
}

// ShouldSwitch decides whether the active language changes for this
// utterance. The explicit-detection path is checked before the low-ASR
// degradation path, so a clear switch request always wins.
func (m *Manager) ShouldSwitch(utterance string, current lexicon.Language, asrConfidence float64) (bool, lexicon.Language) {
	detected, confidence := m.Detect(utterance, current)

	if confidence >= m.cfg.DetectConfidenceGate && detected != current {
		return true, detected
	}

	if asrConfidence < m.cfg.ASRConfidenceFloor && current != lexicon.Fallback {
		return true, lexicon.Fallback
	}

	return false, ""
}

// Switch changes the conversation language and appends an audit entry.
// Unsupported codes are rejected without mutation.
func (m *Manager) Switch(state *conversation.State, to lexicon.Language) bool {
	if !lexicon.Valid(to) {
		return false
	}

	from := state.Language
	state.Language = to
	state.LanguageSwitches = append(state.LanguageSwitches, conversation.LanguageSwitch{
		From: from,
		To:   to,
		Turn: len(state.Turns),
	})

	m.logger.Info("language switched",
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.String("call_id", state.CallID))

	return true
}

// Validate reports whether a language code is supported.
func (m *Manager) Validate(code lexicon.Language) bool {
	return lexicon.Valid(code)
}

// Name returns the display name of a language. Supported names are shared
// across display languages, so the second argument only matters for
// forward compatibility with localized name tables.
func (m *Manager) Name(code, in lexicon.Language) string {
	_ = in
	return lexicon.DisplayName(code)
}

// Stats summarizes language usage across a call.
type Stats struct {
	CurrentLanguage lexicon.Language
	SwitchCount     int
	LanguagesUsed   []lexicon.Language
}

// GetStats reports current language, switch count, and the distinct
// languages used during the call.
func (m *Manager) GetStats(state *conversation.State) Stats {
	used := map[lexicon.Language]struct{}{state.Language: {}}
	for _, sw := range state.LanguageSwitches {
		used[sw.From] = struct{}{}
		used[sw.To] = struct{}{}
	}

	languages := make([]lexicon.Language, 0, len(used))
	for _, lang := range lexicon.Supported() {
		if _, ok := used[lang]; ok {
			languages = append(languages, lang)
		}
	}

	return Stats{
		CurrentLanguage: state.Language,
		SwitchCount:     len(state.LanguageSwitches),
		LanguagesUsed:   languages,
	}
}
