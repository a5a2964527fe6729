package twilio

import (
	"context"
	"errors"

	"github.com/gk2work/ai-voice-agent-sub001/pkg/errorsx"
	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

type callCreator interface {
	CreateCall(params *api.CreateCallParams) (*api.ApiV2010Call, error)
}

// Dialer places outbound qualification calls via the Twilio REST API.
type Dialer struct {
	cfg    Config
	client callCreator
}

func NewDialer(cfg Config) *Dialer {
	return &Dialer{cfg: cfg.withDefaults()}
}

// Dial starts an outbound call to the lead's number. When url is empty the
// configured voice webhook is used, which answers with a media-stream connect.
// The returned value is the provider call SID.
func (d *Dialer) Dial(ctx context.Context, to, from, url string) (string, error) {
	_ = ctx
	if from == "" {
		from = d.cfg.FromNumber
	}
	if to == "" || from == "" {
		return "", errorsx.Wrap(errors.New("to/from required"), errorsx.ReasonTelephonyDial)
	}
	if d.cfg.AccountSID == "" || d.cfg.AuthToken == "" {
		return "", errorsx.Wrap(errors.New("missing twilio credentials"), errorsx.ReasonTelephonyDial)
	}
	if url == "" {
		url = d.voiceWebhookURL()
	}
	client := d.client
	if client == nil {
		rest := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: d.cfg.AccountSID,
			Password: d.cfg.AuthToken,
		})
		client = rest.Api
	}
	params := &api.CreateCallParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetUrl(url)
	params.SetStatusCallback(d.statusCallbackURL())
	resp, err := client.CreateCall(params)
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonTelephonyDial)
	}
	if resp == nil || resp.Sid == nil {
		return "", errorsx.Wrap(errors.New("missing call sid"), errorsx.ReasonTelephonyDial)
	}
	return *resp.Sid, nil
}

func (d *Dialer) voiceWebhookURL() string {
	if d.cfg.PublicURL != "" {
		return "https://" + normalizePublicURL(d.cfg.PublicURL) + d.cfg.VoicePath
	}
	addr := d.cfg.ServerAddr
	if addr == "" {
		addr = ":8080"
	}
	if addr[0] == ':' {
		addr = "localhost" + addr
	}
	return "http://" + addr + d.cfg.VoicePath
}

func (d *Dialer) statusCallbackURL() string {
	if d.cfg.PublicURL != "" {
		return "https://" + normalizePublicURL(d.cfg.PublicURL) + d.cfg.StatusCallbackPath
	}
	addr := d.cfg.ServerAddr
	if addr == "" {
		addr = ":8080"
	}
	if addr[0] == ':' {
		addr = "localhost" + addr
	}
	return "http://" + addr + d.cfg.StatusCallbackPath
}
