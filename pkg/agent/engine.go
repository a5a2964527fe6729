package agent

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/configutil"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/conversation"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/dialog"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/escalation"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/language"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/lexicon"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/logging"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/metrics"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/providers/deepgram"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/providers/mock"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/providers/openai"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/redact"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/sentiment"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/transports/twilio"
)

// Engine assembles the call-handling stack from configuration: sentiment
// scoring, escalation detection, language management and telephony.
type Engine struct {
	cfg    Config
	logger *slog.Logger
	obs    metrics.Observer

	dialog     *dialog.Engine
	dialer     *twilio.Dialer
	transferer *twilio.Transferer
	transport  *twilio.Transport

	metricsFile *os.File
}

func New(cfg Config) (*Engine, error) {
	logger := logging.InitLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	slog.SetDefault(logger)
	redact.SetEnabled(cfg.Privacy.RedactPII)

	if err := lexicon.Validate(); err != nil {
		return nil, fmt.Errorf("lexicon: %w", err)
	}

	e := &Engine{cfg: cfg, logger: logger}

	obs, metricsFile, err := buildObserver(cfg.Observability)
	if err != nil {
		return nil, err
	}
	e.obs = obs
	e.metricsFile = metricsFile

	provider, err := buildSentimentProvider(cfg.Vendors.Sentiment)
	if err != nil {
		return nil, err
	}

	localLang, _ := lexicon.Parse(cfg.Sentiment.LocalLanguage)
	analyzer := sentiment.NewAnalyzer(provider, sentiment.AnalyzerConfig{
		MLWeight:        cfg.Sentiment.MLWeight,
		KeywordWeight:   cfg.Sentiment.KeywordWeight,
		LocalLanguage:   localLang,
		ProviderTimeout: time.Duration(cfg.Sentiment.ProviderTimeoutMS) * time.Millisecond,
	}, logger)

	tracker := sentiment.NewTracker(sentiment.TrackerConfig{
		NegativeTurnThreshold: cfg.Escalation.NegativeTurnThreshold,
	}, logger)

	detector := escalation.NewDetector(escalation.DetectorConfig{
		NegativeTurnThreshold:  cfg.Escalation.NegativeTurnThreshold,
		ClarificationThreshold: cfg.Escalation.ClarificationThreshold,
	}, logger)

	languages := language.NewManager(language.ManagerConfig{
		DetectConfidenceGate: cfg.Languages.DetectConfidenceGate,
		ASRConfidenceFloor:   cfg.Languages.ASRConfidenceFloor,
	}, logger)

	e.dialog = dialog.NewEngine(analyzer, tracker, detector, languages, obs, logger)

	if strings.EqualFold(strings.TrimSpace(cfg.Transports.Provider), "twilio") {
		var tcfg twilio.Config
		if err := configutil.DecodeSettings(cfg.Transports.Settings, &tcfg); err != nil {
			return nil, fmt.Errorf("transports.settings: %w", err)
		}
		e.dialer = twilio.NewDialer(tcfg)
		e.transferer = twilio.NewTransferer(tcfg)
		e.transport = twilio.NewTransport(tcfg)
	}

	logger.Info("engine assembled",
		slog.String("environment", cfg.Environment),
		slog.String("sentiment_provider", cfg.Vendors.Sentiment.Provider),
		slog.String("default_language", cfg.Languages.Default),
		slog.Bool("telephony", e.transport != nil))

	return e, nil
}

func (e *Engine) Dialog() *dialog.Engine { return e.dialog }

func (e *Engine) Observer() metrics.Observer { return e.obs }

// Dialer is nil unless a twilio transport is configured.
func (e *Engine) Dialer() *twilio.Dialer { return e.dialer }

func (e *Engine) Transferer() *twilio.Transferer { return e.transferer }

func (e *Engine) Transport() *twilio.Transport { return e.transport }

// StartCall opens a session for a new lead conversation in the configured
// default language.
func (e *Engine) StartCall(leadID string) *dialog.Session {
	lang, _ := lexicon.Parse(e.cfg.Languages.Default)
	state := conversation.NewState(leadID, lang)
	return e.dialog.NewSession(state)
}

// TurnWindow is how long raw turns are retained; zero means keep all.
func (e *Engine) TurnWindow() time.Duration {
	return time.Duration(e.cfg.Conversation.TurnWindowMinutes) * time.Minute
}

func (e *Engine) Close() error {
	if e.metricsFile != nil {
		return e.metricsFile.Close()
	}
	return nil
}

type openaiSettings struct {
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	BaseURL           string `mapstructure:"base_url"`
	BreakerThreshold  int    `mapstructure:"breaker_threshold"`
	BreakerCooldownMS int    `mapstructure:"breaker_cooldown_ms"`
}

func buildSentimentProvider(vendor VendorConfig) (sentiment.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(vendor.Provider)) {
	case "openai":
		if err := configutil.ValidateSettings(vendor.Settings, configutil.Schema{
			Required: []string{"api_key"},
			Optional: []string{"model", "base_url", "breaker_threshold", "breaker_cooldown_ms"},
		}); err != nil {
			return nil, fmt.Errorf("vendors.sentiment.settings: %w", err)
		}
		var settings openaiSettings
		if err := configutil.DecodeSettings(vendor.Settings, &settings); err != nil {
			return nil, fmt.Errorf("vendors.sentiment.settings: %w", err)
		}
		if err := configutil.RequireString(settings.APIKey, "vendors.sentiment.settings.api_key"); err != nil {
			return nil, err
		}
		scorer := openai.NewSentimentScorer(settings.APIKey, settings.Model)
		if settings.BaseURL != "" {
			scorer.BaseURL = settings.BaseURL
		}
		if settings.BreakerThreshold > 0 {
			cooldown := time.Duration(settings.BreakerCooldownMS) * time.Millisecond
			if cooldown <= 0 {
				cooldown = 30 * time.Second
			}
			scorer.UseCircuitBreaker(settings.BreakerThreshold, cooldown)
		}
		return scorer, nil
	case "mock":
		var settings struct {
			Score float64 `mapstructure:"score"`
		}
		if err := configutil.DecodeSettings(vendor.Settings, &settings); err != nil {
			return nil, fmt.Errorf("vendors.sentiment.settings: %w", err)
		}
		return &mock.SentimentScorer{FixedScore: settings.Score}, nil
	default:
		return nil, fmt.Errorf("sentiment provider not registered: %s", vendor.Provider)
	}
}

type deepgramSettings struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	SampleRate     int    `mapstructure:"sample_rate"`
	Encoding       string `mapstructure:"encoding"`
	Interim        bool   `mapstructure:"interim"`
	VADEvents      bool   `mapstructure:"vad_events"`
	UtteranceEndMS int    `mapstructure:"utterance_end_ms"`
}

// NewASR builds a streaming recognizer for one call. Returns an error when
// no ASR vendor is configured.
func (e *Engine) NewASR(callID string, lang lexicon.Language) (*deepgram.StreamingASR, error) {
	vendor := e.cfg.Vendors.ASR
	switch strings.ToLower(strings.TrimSpace(vendor.Provider)) {
	case "deepgram":
		if err := configutil.ValidateSettings(vendor.Settings, configutil.Schema{
			Required: []string{"api_key", "model"},
			Optional: []string{"sample_rate", "encoding", "interim", "vad_events", "utterance_end_ms"},
		}); err != nil {
			return nil, fmt.Errorf("vendors.asr.settings: %w", err)
		}
		var settings deepgramSettings
		if err := configutil.DecodeSettings(vendor.Settings, &settings); err != nil {
			return nil, fmt.Errorf("vendors.asr.settings: %w", err)
		}
		return deepgram.New(deepgram.Config{
			APIKey:         settings.APIKey,
			Model:          settings.Model,
			Language:       lang,
			SampleRate:     settings.SampleRate,
			Encoding:       settings.Encoding,
			Interim:        settings.Interim,
			VADEvents:      settings.VADEvents,
			UtteranceEndMS: settings.UtteranceEndMS,
			CallID:         callID,
		}), nil
	default:
		return nil, fmt.Errorf("asr provider not registered: %s", vendor.Provider)
	}
}

func buildObserver(cfg ObservabilityConfig) (metrics.Observer, *os.File, error) {
	if strings.TrimSpace(cfg.MetricsFile) == "" {
		return metrics.NoopObserver{}, nil, nil
	}
	f, err := os.OpenFile(cfg.MetricsFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open metrics file: %w", err)
	}
	return metrics.NewJSONLObserver(f), f, nil
}
