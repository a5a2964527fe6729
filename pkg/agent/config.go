package agent

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/lexicon"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`

	Sentiment     SentimentConfig     `mapstructure:"sentiment"`
	Escalation    EscalationConfig    `mapstructure:"escalation"`
	Languages     LanguageConfig      `mapstructure:"languages"`
	Conversation  ConversationConfig  `mapstructure:"conversation"`
	Vendors       VendorsConfig       `mapstructure:"vendors"`
	Transports    TransportsConfig    `mapstructure:"transports"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Privacy       PrivacyConfig       `mapstructure:"privacy"`
}

type SentimentConfig struct {
	MLWeight          float64 `mapstructure:"ml_weight"`
	KeywordWeight     float64 `mapstructure:"keyword_weight"`
	LocalLanguage     string  `mapstructure:"local_language"`
	ProviderTimeoutMS int     `mapstructure:"provider_timeout_ms"`
}

type EscalationConfig struct {
	NegativeTurnThreshold  int `mapstructure:"negative_turn_threshold"`
	ClarificationThreshold int `mapstructure:"clarification_threshold"`
}

type LanguageConfig struct {
	Default              string  `mapstructure:"default"`
	DetectConfidenceGate float64 `mapstructure:"detect_confidence_gate"`
	ASRConfidenceFloor   float64 `mapstructure:"asr_confidence_floor"`
}

type ConversationConfig struct {
	// TurnWindowMinutes bounds how long raw turns are retained in memory.
	// Zero disables pruning.
	TurnWindowMinutes int `mapstructure:"turn_window_minutes"`
}

type VendorConfig struct {
	Provider string         `mapstructure:"provider"`
	Settings map[string]any `mapstructure:"settings"`
}

type VendorsConfig struct {
	Sentiment VendorConfig `mapstructure:"sentiment"`
	ASR       VendorConfig `mapstructure:"asr"`
}

type TransportsConfig struct {
	Provider string         `mapstructure:"provider"`
	Settings map[string]any `mapstructure:"settings"`
}

type ObservabilityConfig struct {
	MetricsFile string `mapstructure:"metrics_file"`
}

type PrivacyConfig struct {
	RedactPII bool `mapstructure:"redact_pii"`
}

func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("sentiment.ml_weight", 0.7)
	v.SetDefault("sentiment.keyword_weight", 0.3)
	v.SetDefault("sentiment.local_language", "english")
	v.SetDefault("sentiment.provider_timeout_ms", 3000)
	v.SetDefault("escalation.negative_turn_threshold", 2)
	v.SetDefault("escalation.clarification_threshold", 2)
	v.SetDefault("languages.default", string(lexicon.Default))
	v.SetDefault("languages.detect_confidence_gate", 0.8)
	v.SetDefault("languages.asr_confidence_floor", 0.6)
	v.SetDefault("conversation.turn_window_minutes", 0)
	v.SetDefault("observability.metrics_file", "")
	v.SetDefault("privacy.redact_pii", true)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}

	expandEnvStrings(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Vendors.Sentiment.Provider) == "" {
		return fmt.Errorf("vendors.sentiment.provider is required")
	}
	if _, ok := lexicon.Parse(c.Languages.Default); !ok {
		return fmt.Errorf("languages.default %q is not supported", c.Languages.Default)
	}
	if _, ok := lexicon.Parse(c.Sentiment.LocalLanguage); !ok {
		return fmt.Errorf("sentiment.local_language %q is not supported", c.Sentiment.LocalLanguage)
	}
	if c.Sentiment.MLWeight < 0 || c.Sentiment.KeywordWeight < 0 {
		return fmt.Errorf("sentiment weights must be non-negative")
	}
	return nil
}

func expandEnvStrings(cfg *Config) {
	expandValue(reflect.ValueOf(cfg))
	cfg.Vendors.Sentiment.Settings = expandSettings(cfg.Vendors.Sentiment.Settings)
	cfg.Vendors.ASR.Settings = expandSettings(cfg.Vendors.ASR.Settings)
	cfg.Transports.Settings = expandSettings(cfg.Transports.Settings)
}

func expandSettings(settings map[string]any) map[string]any {
	if settings == nil {
		return nil
	}
	for k, v := range settings {
		settings[k] = expandAny(v)
	}
	return settings
}

func expandAny(v any) any {
	switch val := v.(type) {
	case string:
		return os.ExpandEnv(val)
	case []any:
		for i := range val {
			val[i] = expandAny(val[i])
		}
		return val
	case map[string]any:
		for k, v := range val {
			val[k] = expandAny(v)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = expandAny(v)
		}
		return out
	default:
		return v
	}
}

func expandValue(v reflect.Value) {
	if !v.IsValid() {
		return
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		expandValue(v.Elem())
		return
	}
	switch v.Kind() {
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			expandValue(v.Field(i))
		}
	case reflect.String:
		if v.CanSet() {
			v.SetString(os.ExpandEnv(v.String()))
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			expandValue(v.Index(i))
		}
	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String && v.Type().Elem().Kind() == reflect.String {
			for _, key := range v.MapKeys() {
				val := v.MapIndex(key)
				expanded := os.ExpandEnv(val.String())
				v.SetMapIndex(key, reflect.ValueOf(expanded))
			}
		}
	}
}
