package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/agent"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/conversation"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/dialog"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/nlu"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/providers/deepgram"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/runner"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/transports/twilio"
)

func main() {
	configPath := flag.String("config", "config.yaml", "")
	transcript := flag.String("transcript", "", "transcript file for an offline dry run")
	dialTo := flag.String("dial_to", "", "destination number for outbound call")
	dialURL := flag.String("dial_url", "", "override voice URL for outbound call")
	flag.Parse()

	runner.PrintBanner()

	cfg, err := agent.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}
	eng, err := agent.New(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = eng.Close() }()

	if *transcript != "" {
		runTranscript(eng, *transcript)
		return
	}

	runTelephony(eng, *dialTo, *dialURL)
}

// runTranscript replays a transcript file as one call, one utterance per
// line. Lines starting with # are skipped. Useful for tuning thresholds
// without telephony credentials.
func runTranscript(eng *agent.Engine, path string) {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("transcript_open_failed", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	ctx := context.Background()
	session := eng.StartCall("dry-run")
	state := session.State()
	slog.Info("dry_run_started", "call_id", state.CallID, "language", string(state.Language))

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		intent, _ := nlu.Classify(line)
		decision := session.ProcessUtterance(ctx, dialog.Input{
			Utterance:     line,
			Intent:        intent,
			ASRConfidence: 1.0,
		})
		if intent == conversation.IntentClarificationNeeded {
			session.RequestClarification()
		}
		slog.Info("utterance_decided",
			"utterance", line,
			"intent", string(intent),
			"score", decision.Score,
			"label", decision.Label,
			"language", string(decision.Language),
			"switched", decision.LanguageSwitch,
			"escalate", decision.Escalate)
		if decision.Escalate {
			slog.Info("handoff",
				"reason", string(decision.Reason),
				"priority", decision.Priority,
				"message", decision.Message)
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Error("transcript_read_failed", "error", err)
	}

	session.End()
	summary := session.SentimentSummary()
	slog.Info("dry_run_finished",
		"turns", len(state.Turns),
		"average_sentiment", summary.AverageSentiment,
		"trend", session.SentimentTrend(6),
		"escalations", session.EscalationSummary().EscalationCount)
}

type liveCall struct {
	session *dialog.Session
	asr     *deepgram.StreamingASR
	cancel  context.CancelFunc
}

// runTelephony serves inbound media streams and drives one dialogue session
// per call, transferring to the configured expert line on escalation.
func runTelephony(eng *agent.Engine, dialTo, dialURL string) {
	transport := eng.Transport()
	if transport == nil {
		slog.Error("no_transport_configured")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := transport.Start(ctx); err != nil {
		slog.Error("transport_start_failed", "error", err)
		os.Exit(1)
	}

	if dialTo != "" {
		if dialer := eng.Dialer(); dialer != nil {
			callSID, err := dialer.Dial(ctx, dialTo, "", dialURL)
			if err != nil {
				slog.Error("outbound_dial_failed", "error", err)
			} else {
				slog.Info("outbound_dial_started", "call_sid", callSID)
			}
		}
	}

	var mu sync.Mutex
	calls := make(map[string]*liveCall)

	go func() {
		for evt := range transport.Recv() {
			switch evt.Kind {
			case twilio.EventCallStart:
				startCall(ctx, eng, evt, calls, &mu)
			case twilio.EventAudio:
				mu.Lock()
				call := calls[evt.StreamSID]
				mu.Unlock()
				if call != nil && call.asr != nil {
					_ = call.asr.SendAudio(evt.Audio)
				}
			case twilio.EventCallEnd:
				endCall(eng, evt, calls, &mu)
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	_ = transport.Stop()
}

func startCall(ctx context.Context, eng *agent.Engine, evt twilio.StreamEvent, calls map[string]*liveCall, mu *sync.Mutex) {
	session := eng.StartCall(evt.From)
	callCtx, cancel := context.WithCancel(ctx)

	asr, err := eng.NewASR(evt.CallSID, session.State().Language)
	if err != nil {
		slog.Error("asr_unavailable", "error", err, "call_sid", evt.CallSID)
		cancel()
		return
	}
	if err := asr.Start(callCtx); err != nil {
		slog.Error("asr_start_failed", "error", err, "call_sid", evt.CallSID)
		cancel()
		return
	}

	call := &liveCall{session: session, asr: asr, cancel: cancel}
	mu.Lock()
	calls[evt.StreamSID] = call
	mu.Unlock()

	slog.Info("call_started",
		"call_sid", evt.CallSID,
		"call_id", session.State().CallID,
		"from", evt.From)

	go func() {
		for u := range asr.Results() {
			if !u.Final {
				continue
			}
			intent, _ := nlu.Classify(u.Text)
			decision := session.ProcessUtterance(callCtx, dialog.Input{
				Utterance:     u.Text,
				Intent:        intent,
				ASRConfidence: u.Confidence,
			})
			if intent == conversation.IntentClarificationNeeded {
				session.RequestClarification()
			}
			if decision.Escalate {
				slog.Info("escalation",
					"call_sid", evt.CallSID,
					"reason", string(decision.Reason),
					"message", decision.Message)
				if transferer := eng.Transferer(); transferer != nil {
					if err := transferer.Transfer(callCtx, evt.CallSID, "", decision.Language); err != nil {
						slog.Error("transfer_failed", "error", err, "call_sid", evt.CallSID)
					}
				}
			}
			if window := eng.TurnWindow(); window > 0 {
				session.State().PruneTurns(window)
			}
		}
	}()
}

func endCall(eng *agent.Engine, evt twilio.StreamEvent, calls map[string]*liveCall, mu *sync.Mutex) {
	mu.Lock()
	call := calls[evt.StreamSID]
	delete(calls, evt.StreamSID)
	mu.Unlock()
	if call == nil {
		return
	}

	_ = call.asr.Close()
	call.cancel()
	call.session.End()

	summary := call.session.SentimentSummary()
	slog.Info("call_ended",
		"call_sid", evt.CallSID,
		"reason", evt.EndReason,
		"average_sentiment", summary.AverageSentiment,
		"trend", call.session.SentimentTrend(6),
		"escalated", call.session.State().EscalationTriggered)
}
