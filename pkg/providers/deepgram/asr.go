package deepgram

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/errorsx"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/lexicon"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/logging"

	msginterfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/websocket/interfaces"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
)

// Utterance is one finalized (or interim) recognition result. Confidence is
// the recognizer's own estimate for the top alternative; downstream language
// handling uses it to decide whether a low-quality transcript should force a
// fallback to the fallback language.
type Utterance struct {
	Text       string
	Confidence float64
	Final      bool
}

type Config struct {
	APIKey         string
	Model          string
	Language       lexicon.Language
	SampleRate     int
	Encoding       string
	Interim        bool
	VADEvents      bool
	UtteranceEndMS int
	CallID         string
}

// deepgramLanguageTags maps conversation languages onto Deepgram language
// tags. Hinglish is transcribed under the hi model family; Deepgram handles
// the embedded English tokens itself.
var deepgramLanguageTags = map[lexicon.Language]string{
	lexicon.Hinglish: "hi",
	lexicon.English:  "en",
	lexicon.Telugu:   "te",
}

// StreamingASR wraps a Deepgram live-transcription websocket and surfaces
// recognized caller utterances on a channel. One instance serves one call.
type StreamingASR struct {
	cfg        Config
	dgClient   *client.WSCallback
	out        chan Utterance
	ctx        context.Context
	cancel     context.CancelFunc
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	metaLogged bool
	logger     *slog.Logger
}

func New(cfg Config) *StreamingASR {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Encoding == "" {
		cfg.Encoding = "mulaw"
	}
	if !lexicon.Valid(cfg.Language) {
		cfg.Language = lexicon.Default
	}

	baseLogger := slog.Default()
	logger := logging.NewComponentLogger(baseLogger, "deepgram_asr")

	return &StreamingASR{
		cfg:    cfg,
		out:    make(chan Utterance, 64),
		logger: logger,
	}
}

func (s *StreamingASR) Name() string { return "deepgram_streaming" }

func (s *StreamingASR) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.pipeReader, s.pipeWriter = io.Pipe()

	clientOptions := &interfaces.ClientOptions{
		EnableKeepAlive: true,
	}

	transcriptOptions := &interfaces.LiveTranscriptionOptions{
		Model:          s.cfg.Model,
		Language:       deepgramLanguageTags[s.cfg.Language],
		Encoding:       s.cfg.Encoding,
		SampleRate:     s.cfg.SampleRate,
		InterimResults: s.cfg.Interim,
		VadEvents:      s.cfg.VADEvents,
		SmartFormat:    true,
	}

	if s.cfg.UtteranceEndMS > 0 {
		transcriptOptions.UtteranceEndMs = fmt.Sprintf("%d", s.cfg.UtteranceEndMS)
		s.logger.Info("configured native utterance detection",
			slog.Int("utterance_end_ms", s.cfg.UtteranceEndMS),
			slog.String("call_id", s.cfg.CallID))
	}

	s.logger.Info("initializing deepgram connection",
		slog.String("call_id", s.cfg.CallID),
		slog.String("model", s.cfg.Model),
		slog.String("language", deepgramLanguageTags[s.cfg.Language]),
		slog.Int("sample_rate", s.cfg.SampleRate))

	cb := &callback{parent: s}

	dgClient, err := client.NewWSUsingCallback(s.ctx, s.cfg.APIKey, clientOptions, transcriptOptions, cb)
	if err != nil {
		s.logger.Error("deepgram_client_create_error",
			slog.String("error", err.Error()),
			slog.String("call_id", s.cfg.CallID))
		return errorsx.Wrap(err, errorsx.ReasonASRConnect)
	}
	s.dgClient = dgClient

	if connected := s.dgClient.Connect(); !connected {
		s.logger.Error("deepgram_connect_failed",
			slog.String("call_id", s.cfg.CallID))
		return errorsx.Wrap(fmt.Errorf("websocket refused"), errorsx.ReasonASRConnect)
	}

	s.logger.Info("deepgram_connected",
		slog.String("call_id", s.cfg.CallID),
		slog.String("model", s.cfg.Model))

	go func() {
		if err := s.dgClient.Stream(s.pipeReader); err != nil && s.ctx.Err() == nil {
			s.logger.Error("deepgram_stream_error",
				slog.String("error", err.Error()),
				slog.String("call_id", s.cfg.CallID))
		}
	}()

	return nil
}

func (s *StreamingASR) Close() error {
	s.logger.Info("closing deepgram connection",
		slog.String("call_id", s.cfg.CallID))

	if s.cancel != nil {
		s.cancel()
	}
	if s.pipeWriter != nil {
		_ = s.pipeWriter.Close()
	}
	if s.dgClient != nil {
		s.dgClient.Stop()
	}
	return nil
}

// SendAudio forwards raw caller audio (mulaw by default) to the recognizer.
func (s *StreamingASR) SendAudio(payload []byte) error {
	if s.pipeWriter == nil {
		return errorsx.Wrap(fmt.Errorf("not started"), errorsx.ReasonASRSend)
	}

	_, err := s.pipeWriter.Write(payload)
	if err != nil {
		s.logger.Error("failed to send audio to deepgram",
			slog.String("error", err.Error()),
			slog.String("call_id", s.cfg.CallID))
		return errorsx.Wrap(err, errorsx.ReasonASRSend)
	}
	return nil
}

// Results yields recognized utterances as they arrive. The channel is not
// closed on Close; callers should stop reading once Close returns.
func (s *StreamingASR) Results() <-chan Utterance { return s.out }

// --- Callback Implementation ---

type callback struct {
	parent *StreamingASR
}

func (c *callback) Open(or *msginterfaces.OpenResponse) error {
	c.parent.logger.Info("deepgram_connection_opened",
		slog.String("call_id", c.parent.cfg.CallID))
	return nil
}

func (c *callback) Message(mr *msginterfaces.MessageResponse) error {
	if len(mr.Channel.Alternatives) == 0 {
		return nil
	}
	alt := mr.Channel.Alternatives[0]
	if alt.Transcript == "" {
		return nil
	}

	isFinal := mr.IsFinal || mr.SpeechFinal

	c.parent.logger.Debug("transcript_received",
		slog.String("call_id", c.parent.cfg.CallID),
		slog.Float64("confidence", alt.Confidence),
		slog.Bool("is_final", isFinal))

	u := Utterance{
		Text:       alt.Transcript,
		Confidence: alt.Confidence,
		Final:      isFinal,
	}

	select {
	case c.parent.out <- u:
	default:
		c.parent.logger.Warn("deepgram_out_channel_full",
			slog.String("call_id", c.parent.cfg.CallID))
	}
	return nil
}

func (c *callback) Metadata(md *msginterfaces.MetadataResponse) error {
	if !c.parent.metaLogged {
		c.parent.metaLogged = true
		c.parent.logger.Info("deepgram_metadata_received",
			slog.String("call_id", c.parent.cfg.CallID),
			slog.String("request_id", md.RequestID))
	}
	return nil
}

func (c *callback) SpeechStarted(ssr *msginterfaces.SpeechStartedResponse) error {
	c.parent.logger.Debug("speech_started_event",
		slog.String("call_id", c.parent.cfg.CallID))
	return nil
}

func (c *callback) UtteranceEnd(ur *msginterfaces.UtteranceEndResponse) error {
	c.parent.logger.Debug("utterance_end_event",
		slog.String("call_id", c.parent.cfg.CallID),
		slog.Int("utterance_end_ms", c.parent.cfg.UtteranceEndMS))
	return nil
}

func (c *callback) Close(cr *msginterfaces.CloseResponse) error {
	c.parent.logger.Info("deepgram_connection_closed",
		slog.String("call_id", c.parent.cfg.CallID))
	return nil
}

func (c *callback) Error(er *msginterfaces.ErrorResponse) error {
	c.parent.logger.Error("deepgram_error",
		slog.String("call_id", c.parent.cfg.CallID),
		slog.String("error_code", er.ErrCode),
		slog.String("error_message", er.ErrMsg))
	return nil
}

func (c *callback) UnhandledEvent(byData []byte) error {
	c.parent.logger.Debug("deepgram_unhandled_event",
		slog.String("call_id", c.parent.cfg.CallID))
	return nil
}
