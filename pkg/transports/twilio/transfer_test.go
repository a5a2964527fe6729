package twilio

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/errorsx"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/lexicon"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

type stubCallUpdater struct {
	lastSID   string
	lastTwiml string
	err       error
}

func (s *stubCallUpdater) UpdateCall(sid string, params *api.UpdateCallParams) (*api.ApiV2010Call, error) {
	s.lastSID = sid
	if params != nil && params.Twiml != nil {
		s.lastTwiml = *params.Twiml
	}
	if s.err != nil {
		return nil, s.err
	}
	return &api.ApiV2010Call{}, nil
}

func TestTransferBuildsLocalizedTwiml(t *testing.T) {
	stub := &stubCallUpdater{}
	tr := NewTransferer(Config{AccountSID: "AC1", AuthToken: "token"})
	tr.client = stub

	if err := tr.Transfer(context.Background(), "CA123", "+911234567890", lexicon.Telugu); err != nil {
		t.Fatalf("transfer error: %v", err)
	}
	if stub.lastSID != "CA123" {
		t.Fatalf("expected call sid CA123, got %q", stub.lastSID)
	}
	if !strings.Contains(stub.lastTwiml, transferMessages[lexicon.Telugu]) {
		t.Fatalf("expected telugu announcement in TwiML, got %q", stub.lastTwiml)
	}
	if !strings.Contains(stub.lastTwiml, ">+911234567890</Dial>") {
		t.Fatalf("expected dial to expert number, got %q", stub.lastTwiml)
	}
	if !strings.Contains(stub.lastTwiml, `timeout="30"`) {
		t.Fatalf("expected default dial timeout, got %q", stub.lastTwiml)
	}
}

func TestTransferFallsBackToConfiguredExpert(t *testing.T) {
	stub := &stubCallUpdater{}
	tr := NewTransferer(Config{AccountSID: "AC1", AuthToken: "token", ExpertNumber: "+919999999999"})
	tr.client = stub

	if err := tr.Transfer(context.Background(), "CA123", "", lexicon.Hinglish); err != nil {
		t.Fatalf("transfer error: %v", err)
	}
	if !strings.Contains(stub.lastTwiml, "+919999999999") {
		t.Fatalf("expected configured expert number, got %q", stub.lastTwiml)
	}
}

func TestTransferUnknownLanguageUsesEnglish(t *testing.T) {
	twiml := buildTransferTwiml("+100", lexicon.Language("french"), 30)
	if !strings.Contains(twiml, transferMessages[lexicon.English]) {
		t.Fatalf("expected english announcement, got %q", twiml)
	}
}

func TestTransferFailures(t *testing.T) {
	tr := NewTransferer(Config{AccountSID: "AC1", AuthToken: "token", ExpertNumber: "+100"})
	tr.client = &stubCallUpdater{}

	if err := tr.Transfer(context.Background(), "", "", lexicon.English); err == nil {
		t.Fatalf("expected error without call sid")
	}

	noExpert := NewTransferer(Config{AccountSID: "AC1", AuthToken: "token"})
	noExpert.client = &stubCallUpdater{}
	if err := noExpert.Transfer(context.Background(), "CA1", "", lexicon.English); err == nil {
		t.Fatalf("expected error without expert number")
	}

	failing := NewTransferer(Config{AccountSID: "AC1", AuthToken: "token", ExpertNumber: "+100"})
	failing.client = &stubCallUpdater{err: errors.New("boom")}
	err := failing.Transfer(context.Background(), "CA1", "", lexicon.English)
	if err == nil {
		t.Fatalf("expected error on update failure")
	}
	if !errorsx.HasReason(err, errorsx.ReasonTelephonyTransfer) {
		t.Fatalf("expected telephony_transfer reason, got %v", err)
	}
}
