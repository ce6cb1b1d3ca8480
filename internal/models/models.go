// Package models defines the core data structures for enrollbot.
//
// It includes the persisted lead record, the conversation step contract shared
// by the dialogue engine and the HTTP layer, and API response helpers.
package models

import (
	"errors"
	"time"
)

// LeadStatus represents the staff-managed follow-up status of a lead.
type LeadStatus string

const (
	// LeadStatusNew indicates a freshly captured lead nobody has acted on.
	LeadStatusNew LeadStatus = "new"
	// LeadStatusCalled indicates staff have called the parent.
	LeadStatusCalled LeadStatus = "called"
	// LeadStatusVisited indicates the family visited the school.
	LeadStatusVisited LeadStatus = "visited"
	// LeadStatusAdmitted indicates the child was admitted.
	LeadStatusAdmitted LeadStatus = "admitted"
	// LeadStatusLost indicates the lead did not convert.
	LeadStatusLost LeadStatus = "lost"
)

// IsValidLeadStatus checks if the given lead status is supported.
func IsValidLeadStatus(s LeadStatus) bool {
	switch s {
	case LeadStatusNew, LeadStatusCalled, LeadStatusVisited, LeadStatusAdmitted, LeadStatusLost:
		return true
	default:
		return false
	}
}

// Error variables for better error handling and testability
var (
	ErrMissingParentName = errors.New("parent_name is required")
	ErrMissingPhone      = errors.New("phone is required")
	ErrInvalidLeadStatus = errors.New("status must be one of: new, called, visited, admitted, lost")
	ErrLeadNotFound      = errors.New("lead not found")
)

// Lead is a persisted snapshot of a parent's completed or partial intake.
// It is created once when the conversation finalizes and mutated afterwards
// only through status updates by staff; it is never deleted.
type Lead struct {
	ID              int64      `json:"id"`
	ParentName      string     `json:"parent_name"`
	Phone           string     `json:"phone"`
	ChildAgeGroup   string     `json:"child_age_group,omitempty"`
	ProgramInterest string     `json:"program_interest,omitempty"`
	VisitPreference string     `json:"visit_preference,omitempty"`
	InquiryType     string     `json:"inquiry_type,omitempty"`
	Status          LeadStatus `json:"status"`
	Conversation    string     `json:"conversation,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Validate performs validation on a Lead before it is stored.
func (l *Lead) Validate() error {
	if l.ParentName == "" {
		return ErrMissingParentName
	}
	if l.Phone == "" {
		return ErrMissingPhone
	}
	if l.Status != "" && !IsValidLeadStatus(l.Status) {
		return ErrInvalidLeadStatus
	}
	return nil
}

// Lead listing defaults.
const (
	// DefaultLeadPageSize is the page size applied when the caller omits one.
	DefaultLeadPageSize = 50
	// MaxLeadPageSize caps the page size a caller may request.
	MaxLeadPageSize = 200
)

// LeadFilter describes the optional filters and pagination for listing leads.
type LeadFilter struct {
	Status   LeadStatus
	Program  string
	DateFrom time.Time
	DateTo   time.Time
	Page     int
	Limit    int
}

// Normalize applies pagination defaults and caps.
func (f *LeadFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultLeadPageSize
	}
	if f.Limit > MaxLeadPageSize {
		f.Limit = MaxLeadPageSize
	}
}

// Offset returns the row offset implied by the filter's page and limit.
func (f LeadFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
