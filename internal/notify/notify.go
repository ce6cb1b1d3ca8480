// Package notify sends staff alerts when a new lead is captured.
//
// Notifications are best-effort and fire-and-forget: failures are logged and
// swallowed, and must never block or fail the request that captured the lead.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/learningcurve/enrollbot/internal/models"
)

// Notifier delivers a new-lead alert over one channel.
type Notifier interface {
	NotifyLead(ctx context.Context, lead models.Lead) error
}

// schoolTimezone is the timezone staff read timestamps in.
const schoolTimezone = "Asia/Kolkata"

// orNotSpecified substitutes the placeholder staff expect for blank fields.
func orNotSpecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}

// localTimestamp renders the lead's capture time in the school's timezone.
func localTimestamp(t time.Time) string {
	if loc, err := time.LoadLocation(schoolTimezone); err == nil {
		t = t.In(loc)
	}
	return t.Format("2/1/2006, 3:04:05 PM")
}

// FormatLeadMessage renders the plain-text WhatsApp alert for a lead.
func FormatLeadMessage(lead models.Lead) string {
	return fmt.Sprintf(`🏫 New Admission Enquiry!
━━━━━━━━━━━━━━
👤 Parent: %s
📞 Phone: %s
👶 Child Age: %s
📚 Program: %s
📅 Visit Preference: %s
⏰ Received: %s
━━━━━━━━━━━━━━
Action: Call within 24 hours!`,
		lead.ParentName,
		lead.Phone,
		orNotSpecified(lead.ChildAgeGroup),
		orNotSpecified(lead.ProgramInterest),
		orNotSpecified(lead.VisitPreference),
		localTimestamp(lead.CreatedAt),
	)
}

// MultiNotifier fans a lead out to several channels. Each channel fails
// independently; the first error is returned after all channels have run.
type MultiNotifier []Notifier

// NotifyLead sends the lead to every configured channel.
func (m MultiNotifier) NotifyLead(ctx context.Context, lead models.Lead) error {
	var firstErr error
	for _, n := range m {
		if err := n.NotifyLead(ctx, lead); err != nil {
			slog.Error("MultiNotifier channel failed", "error", err, "parent", lead.ParentName)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// NoopNotifier is used when no notification channel is configured.
type NoopNotifier struct{}

// NotifyLead logs that the notification was skipped.
func (NoopNotifier) NotifyLead(ctx context.Context, lead models.Lead) error {
	slog.Info("Lead notification skipped (no channel configured)", "parent", lead.ParentName)
	return nil
}

// MockNotifier records notified leads for tests. Safe for concurrent use
// because the API layer delivers alerts from a goroutine.
type MockNotifier struct {
	mu       sync.Mutex
	notified []models.Lead
	Err      error
}

// NewMockNotifier creates an empty mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// NotifyLead records the lead and returns the configured error.
func (m *MockNotifier) NotifyLead(ctx context.Context, lead models.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified = append(m.notified, lead)
	return m.Err
}

// Notified returns a copy of the leads recorded so far.
func (m *MockNotifier) Notified() []models.Lead {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Lead, len(m.notified))
	copy(out, m.notified)
	return out
}
