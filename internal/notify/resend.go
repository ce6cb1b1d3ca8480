// Package notify sends staff alerts when a new lead is captured.
//
// This file implements the email channel through the Resend REST API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/learningcurve/enrollbot/internal/models"
)

// Resend API defaults.
const (
	DefaultResendBaseURL = "https://api.resend.com"
	DefaultFromAddress   = "Learning Curve Bot <onboarding@resend.dev>"
	DefaultAdminEmail    = "admin@learningcurveschool.com"

	resendRequestTimeout = 10 * time.Second
)

// ResendOpts holds configuration options for the Resend email notifier.
type ResendOpts struct {
	APIKey     string
	AdminEmail string
	From       string
	BaseURL    string
}

// ResendOption defines a configuration option for the Resend email notifier.
type ResendOption func(*ResendOpts)

// WithResendAPIKey sets the Resend API key.
func WithResendAPIKey(key string) ResendOption {
	return func(o *ResendOpts) { o.APIKey = key }
}

// WithAdminEmail sets the recipient for lead alerts.
func WithAdminEmail(email string) ResendOption {
	return func(o *ResendOpts) { o.AdminEmail = email }
}

// WithResendBaseURL overrides the API base URL (used in tests).
func WithResendBaseURL(url string) ResendOption {
	return func(o *ResendOpts) { o.BaseURL = url }
}

// ResendNotifier emails new-lead alerts to the admissions inbox.
type ResendNotifier struct {
	apiKey     string
	adminEmail string
	from       string
	baseURL    string
	httpClient *http.Client
}

// NewResendNotifier creates the email notifier, falling back to environment
// variables for anything not provided via options.
func NewResendNotifier(opts ...ResendOption) (*ResendNotifier, error) {
	var cfg ResendOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("RESEND_API_KEY")
	}
	if cfg.AdminEmail == "" {
		cfg.AdminEmail = os.Getenv("ADMIN_EMAIL")
	}
	if cfg.AdminEmail == "" {
		cfg.AdminEmail = DefaultAdminEmail
	}
	if cfg.From == "" {
		cfg.From = DefaultFromAddress
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultResendBaseURL
	}
	slog.Debug("Resend notifier config loaded", "APIKey_set", cfg.APIKey != "", "admin_email", cfg.AdminEmail)

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY not set")
	}
	return &ResendNotifier{
		apiKey:     cfg.APIKey,
		adminEmail: cfg.AdminEmail,
		from:       cfg.From,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: resendRequestTimeout},
	}, nil
}

// resendEmailRequest is the POST /emails payload.
type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// NotifyLead emails the lead alert to the admissions inbox.
func (n *ResendNotifier) NotifyLead(ctx context.Context, lead models.Lead) error {
	payload := resendEmailRequest{
		From:    n.from,
		To:      []string{n.adminEmail},
		Subject: fmt.Sprintf("New Enquiry: %s - %s - Learning Curve", lead.ParentName, lead.ProgramInterest),
		HTML:    leadEmailHTML(lead),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		slog.Error("Resend NotifyLead request failed", "error", err, "parent", lead.ParentName)
		return fmt.Errorf("failed to send email for %s: %w", lead.ParentName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		slog.Error("Resend NotifyLead rejected", "status", resp.StatusCode, "detail", string(detail))
		return fmt.Errorf("resend returned status %d", resp.StatusCode)
	}
	slog.Debug("Resend NotifyLead succeeded", "parent", lead.ParentName, "to", n.adminEmail)
	return nil
}

// leadEmailHTML renders the HTML alert body.
func leadEmailHTML(lead models.Lead) string {
	row := func(label, value string) string {
		return fmt.Sprintf(`<tr><td style="padding: 8px 0; font-weight: bold;">%s</td><td>%s</td></tr>`, label, value)
	}
	return `<div style="font-family: Arial, sans-serif; max-width: 500px; margin: 0 auto;">
<div style="background: linear-gradient(135deg, #FF6B6B, #4ECDC4); padding: 20px; border-radius: 12px 12px 0 0;">
<h2 style="color: white; margin: 0;">🏫 New Admission Enquiry!</h2>
</div>
<div style="background: #f9f9f9; padding: 20px; border-radius: 0 0 12px 12px;">
<table style="width: 100%; border-collapse: collapse;">` +
		row("👤 Parent", lead.ParentName) +
		row("📞 Phone", lead.Phone) +
		row("👶 Age Group", orNotSpecified(lead.ChildAgeGroup)) +
		row("📚 Program", orNotSpecified(lead.ProgramInterest)) +
		row("📅 Visit Pref.", orNotSpecified(lead.VisitPreference)) +
		row("📋 Type", orNotSpecified(lead.InquiryType)) +
		row("⏰ Received", localTimestamp(lead.CreatedAt)) +
		`</table>
<div style="margin-top: 16px; padding: 12px; background: #FF6B6B; color: white; border-radius: 8px; text-align: center;">
<strong>⚡ Action: Call within 24 hours!</strong>
</div>
</div>
</div>`
}
