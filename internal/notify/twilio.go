// Package notify sends staff alerts when a new lead is captured.
//
// This file implements the WhatsApp channel through the Twilio REST API.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/learningcurve/enrollbot/internal/models"
)

// TwilioOpts holds configuration options for the Twilio WhatsApp notifier.
type TwilioOpts struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
}

// TwilioOption defines a configuration option for the Twilio WhatsApp notifier.
type TwilioOption func(*TwilioOpts)

// WithAccountSID sets the Twilio account SID.
func WithAccountSID(sid string) TwilioOption {
	return func(o *TwilioOpts) { o.AccountSID = sid }
}

// WithAuthToken sets the Twilio auth token.
func WithAuthToken(token string) TwilioOption {
	return func(o *TwilioOpts) { o.AuthToken = token }
}

// WithFromNumber sets the sending WhatsApp number.
func WithFromNumber(from string) TwilioOption {
	return func(o *TwilioOpts) { o.From = from }
}

// WithStaffNumber sets the staff WhatsApp number that receives alerts.
func WithStaffNumber(to string) TwilioOption {
	return func(o *TwilioOpts) { o.To = to }
}

// TwilioNotifier sends new-lead alerts to a staff WhatsApp number.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
	to     string
}

// NewTwilioNotifier creates the WhatsApp notifier, falling back to
// environment variables for anything not provided via options.
func NewTwilioNotifier(opts ...TwilioOption) (*TwilioNotifier, error) {
	var cfg TwilioOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.From == "" {
		cfg.From = os.Getenv("TWILIO_FROM_NUMBER")
	}
	if cfg.To == "" {
		cfg.To = os.Getenv("STAFF_WHATSAPP_NUMBER")
	}
	slog.Debug("Twilio notifier config loaded",
		"AccountSID_set", cfg.AccountSID != "",
		"AuthToken_set", cfg.AuthToken != "",
		"From_set", cfg.From != "",
		"To_set", cfg.To != "")

	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if cfg.From == "" || cfg.To == "" {
		return nil, fmt.Errorf("from and staff WhatsApp numbers must be provided")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioNotifier{client: client, from: cfg.From, to: cfg.To}, nil
}

// NotifyLead sends the lead alert as a WhatsApp message.
func (n *TwilioNotifier) NotifyLead(ctx context.Context, lead models.Lead) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo("whatsapp:" + n.to)
	params.SetFrom("whatsapp:" + n.from)
	params.SetBody(FormatLeadMessage(lead))

	_, err := n.client.Api.CreateMessage(params)
	if err != nil {
		slog.Error("Twilio NotifyLead failed", "error", err, "parent", lead.ParentName)
		return fmt.Errorf("failed to send WhatsApp alert for %s: %w", lead.ParentName, err)
	}
	slog.Debug("Twilio NotifyLead succeeded", "parent", lead.ParentName)
	return nil
}
