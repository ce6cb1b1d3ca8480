package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/learningcurve/enrollbot/internal/models"
)

func sampleLead() models.Lead {
	return models.Lead{
		ID:              1,
		ParentName:      "Asha Patil",
		Phone:           "9876543210",
		ChildAgeGroup:   "2.5 - 3.5 years",
		ProgramInterest: "Nursery 🌸",
		VisitPreference: "Tomorrow Morning",
		InquiryType:     models.InquiryTypeVisit,
		Status:          models.LeadStatusNew,
		CreatedAt:       time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestFormatLeadMessage(t *testing.T) {
	msg := FormatLeadMessage(sampleLead())
	for _, want := range []string{
		"New Admission Enquiry",
		"Parent: Asha Patil",
		"Phone: 9876543210",
		"Child Age: 2.5 - 3.5 years",
		"Program: Nursery 🌸",
		"Visit Preference: Tomorrow Morning",
		"Call within 24 hours",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatLeadMessagePlaceholders(t *testing.T) {
	lead := sampleLead()
	lead.ChildAgeGroup = ""
	lead.ProgramInterest = ""
	lead.VisitPreference = ""
	msg := FormatLeadMessage(lead)
	if strings.Count(msg, "Not specified") != 3 {
		t.Errorf("expected 3 placeholders in:\n%s", msg)
	}
}

func TestResendNotifier(t *testing.T) {
	var got resendEmailRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n, err := NewResendNotifier(
		WithResendAPIKey("re_test"),
		WithAdminEmail("admissions@example.com"),
		WithResendBaseURL(srv.URL),
	)
	if err != nil {
		t.Fatalf("NewResendNotifier failed: %v", err)
	}
	if err := n.NotifyLead(context.Background(), sampleLead()); err != nil {
		t.Fatalf("NotifyLead failed: %v", err)
	}
	if auth != "Bearer re_test" {
		t.Errorf("Authorization = %q", auth)
	}
	if len(got.To) != 1 || got.To[0] != "admissions@example.com" {
		t.Errorf("To = %v", got.To)
	}
	if !strings.Contains(got.Subject, "Asha Patil") {
		t.Errorf("Subject = %q", got.Subject)
	}
	if !strings.Contains(got.HTML, "New Admission Enquiry") || !strings.Contains(got.HTML, "9876543210") {
		t.Errorf("HTML body missing lead details")
	}
}

func TestResendNotifierRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	n, err := NewResendNotifier(WithResendAPIKey("bad"), WithResendBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewResendNotifier failed: %v", err)
	}
	if err := n.NotifyLead(context.Background(), sampleLead()); err == nil {
		t.Error("expected error for non-2xx response")
	}
}

func TestNewResendNotifierRequiresKey(t *testing.T) {
	t.Setenv("RESEND_API_KEY", "")
	if _, err := NewResendNotifier(); err == nil {
		t.Error("expected error when no API key is configured")
	}
}

func TestMultiNotifierFansOutAndReportsFirstError(t *testing.T) {
	ok := NewMockNotifier()
	bad := &MockNotifier{Err: errors.New("channel down")}
	also := NewMockNotifier()

	m := MultiNotifier{ok, bad, also}
	err := m.NotifyLead(context.Background(), sampleLead())
	if err == nil || err.Error() != "channel down" {
		t.Errorf("err = %v", err)
	}
	// Every channel still runs despite the failure in the middle.
	if len(ok.Notified()) != 1 || len(bad.Notified()) != 1 || len(also.Notified()) != 1 {
		t.Errorf("fan-out incomplete: %d %d %d", len(ok.Notified()), len(bad.Notified()), len(also.Notified()))
	}
}

func TestNoopNotifier(t *testing.T) {
	if err := (NoopNotifier{}).NotifyLead(context.Background(), sampleLead()); err != nil {
		t.Errorf("noop should never fail: %v", err)
	}
}

func TestNewTwilioNotifierRequiresCredentials(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_FROM_NUMBER", "")
	t.Setenv("STAFF_WHATSAPP_NUMBER", "")
	if _, err := NewTwilioNotifier(); err == nil {
		t.Error("expected error when credentials are missing")
	}
	if _, err := NewTwilioNotifier(WithAccountSID("AC123"), WithAuthToken("tok")); err == nil {
		t.Error("expected error when numbers are missing")
	}
	n, err := NewTwilioNotifier(
		WithAccountSID("AC123"),
		WithAuthToken("tok"),
		WithFromNumber("+14155238886"),
		WithStaffNumber("+919876543210"),
	)
	if err != nil {
		t.Fatalf("NewTwilioNotifier failed: %v", err)
	}
	if n.from != "+14155238886" || n.to != "+919876543210" {
		t.Errorf("numbers not stored: from=%q to=%q", n.from, n.to)
	}
}
