package twilio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/errorsx"
	"github.com/gk2work/ai-voice-agent-sub001/pkg/lexicon"
	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

type callUpdater interface {
	UpdateCall(sid string, params *api.UpdateCallParams) (*api.ApiV2010Call, error)
}

// transferMessages is spoken to the caller right before the dial to the
// expert starts, in the language the conversation was running in.
var transferMessages = map[lexicon.Language]string{
	lexicon.Hinglish: "Main aapko abhi expert se connect kar rahi hoon. Kripya line par rahein.",
	lexicon.English:  "I'm connecting you with an expert now. Please stay on the line.",
	lexicon.Telugu:   "Nenu mimmalini expert tho connect chestunnanu. Dayachesi line lo undandi.",
}

// Transferer redirects an active call to a human expert by updating the
// call's TwiML. Used once escalation has been triggered for the call.
type Transferer struct {
	cfg    Config
	client callUpdater
}

func NewTransferer(cfg Config) *Transferer {
	return &Transferer{cfg: cfg.withDefaults()}
}

// Transfer moves the live call identified by callSID to expertNumber. When
// expertNumber is empty the configured expert line is used. The caller hears
// a short localized announcement before the dial.
func (t *Transferer) Transfer(ctx context.Context, callSID, expertNumber string, lang lexicon.Language) error {
	_ = ctx
	if strings.TrimSpace(callSID) == "" {
		return errorsx.Wrap(errors.New("call sid required"), errorsx.ReasonTelephonyTransfer)
	}
	if expertNumber == "" {
		expertNumber = t.cfg.ExpertNumber
	}
	if strings.TrimSpace(expertNumber) == "" {
		return errorsx.Wrap(errors.New("expert number required"), errorsx.ReasonTelephonyTransfer)
	}
	if t.cfg.AccountSID == "" || t.cfg.AuthToken == "" {
		return errorsx.Wrap(errors.New("missing twilio credentials"), errorsx.ReasonTelephonyTransfer)
	}
	client := t.client
	if client == nil {
		rest := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: t.cfg.AccountSID,
			Password: t.cfg.AuthToken,
		})
		client = rest.Api
	}
	params := &api.UpdateCallParams{}
	params.SetTwiml(buildTransferTwiml(expertNumber, lang, t.cfg.TransferTimeoutSec))
	if _, err := client.UpdateCall(callSID, params); err != nil {
		return errorsx.Wrap(err, errorsx.ReasonTelephonyTransfer)
	}
	return nil
}

func buildTransferTwiml(expertNumber string, lang lexicon.Language, timeoutSec int) string {
	msg, ok := transferMessages[lang]
	if !ok {
		msg = transferMessages[lexicon.English]
	}
	return fmt.Sprintf(`<Response><Say>%s</Say><Dial timeout="%d">%s</Dial></Response>`,
		xmlEscape(msg), timeoutSec, xmlEscape(expertNumber))
}
