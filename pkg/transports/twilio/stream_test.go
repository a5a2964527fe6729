package twilio

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestHandleVoiceReturnsStreamConnect(t *testing.T) {
	tr := NewTransport(Config{PublicURL: "https://example.com", VoiceGreeting: "Namaste"})

	req := httptest.NewRequest(http.MethodPost, "https://example.com/voice", nil)
	w := httptest.NewRecorder()
	tr.handleVoice(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `<Stream url="wss://example.com/ws"/>`) {
		t.Fatalf("expected stream connect, got %q", body)
	}
	if !strings.Contains(body, "<Say>Namaste</Say>") {
		t.Fatalf("expected greeting, got %q", body)
	}
}

func TestHandleVoiceRejectsBadSignature(t *testing.T) {
	tr := NewTransport(Config{AuthToken: "token", PublicURL: "https://example.com"})

	req := httptest.NewRequest(http.MethodPost, "https://example.com/voice", strings.NewReader(""))
	req.Header.Set("X-Twilio-Signature", "invalid")
	w := httptest.NewRecorder()
	tr.handleVoice(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	reqNoSig := httptest.NewRequest(http.MethodPost, "https://example.com/voice", strings.NewReader(""))
	wNoSig := httptest.NewRecorder()
	tr.handleVoice(wNoSig, reqNoSig)
	if wNoSig.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without signature, got %d", wNoSig.Code)
	}
}

func TestHandleStatusCallbackMapping(t *testing.T) {
	tr := NewTransport(Config{PublicURL: "https://example.com"})
	streamID := "stream-1"
	callSID := "CA123"

	tr.mu.Lock()
	tr.callStreams[callSID] = streamID
	tr.callSIDs[streamID] = callSID
	tr.fromNumbers[streamID] = "+100"
	tr.mu.Unlock()

	form := url.Values{}
	form.Set("CallSid", callSID)
	form.Set("CallStatus", "no-answer")
	req := httptest.NewRequest(http.MethodPost, "https://example.com/status", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	tr.handleStatusCallback(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	select {
	case evt := <-tr.Recv():
		if evt.Kind != EventCallEnd {
			t.Fatalf("expected call_end event, got %q", evt.Kind)
		}
		if evt.EndReason != "no_answer" {
			t.Fatalf("expected no_answer reason, got %q", evt.EndReason)
		}
		if evt.CallSID != callSID {
			t.Fatalf("expected call sid %q, got %q", callSID, evt.CallSID)
		}
		if evt.From != "+100" {
			t.Fatalf("expected from number, got %q", evt.From)
		}
	case <-time.After(1 * time.Second):
		t.Fatalf("expected call_end event")
	}

	if got := tr.streamForCall(callSID); got != "" {
		t.Fatalf("expected stream detached, got %q", got)
	}
}

func TestNormalizeCallEndReason(t *testing.T) {
	cases := map[string]string{
		"completed":        "completed",
		"Hangup":           "completed",
		"busy":             "busy",
		"no-answer":        "no_answer",
		"canceled":         "failed",
		"transport_closed": "failed",
		"ringing":          "",
		"":                 "",
		"weird":            "unknown",
	}
	for raw, want := range cases {
		if got := normalizeCallEndReason(raw); got != want {
			t.Fatalf("normalizeCallEndReason(%q) = %q, want %q", raw, got, want)
		}
	}
}
