package store

import (
	"database/sql"
	"fmt"

	"github.com/learningcurve/enrollbot/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// leadColumns is the column list shared by every lead SELECT.
const leadColumns = "id, parent_name, phone, child_age_group, program_interest, visit_preference, inquiry_type, status, conversation, created_at"

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanLead scans a lead row produced by a leadColumns SELECT.
func scanLead(row rowScanner) (models.Lead, error) {
	var l models.Lead
	var ageGroup, program, visitPref, inquiryType, conversation sql.NullString
	err := row.Scan(
		&l.ID, &l.ParentName, &l.Phone, &ageGroup, &program, &visitPref,
		&inquiryType, &l.Status, &conversation, &l.CreatedAt,
	)
	if err != nil {
		return l, fmt.Errorf("scan lead failed: %w", err)
	}
	l.ChildAgeGroup = ageGroup.String
	l.ProgramInterest = program.String
	l.VisitPreference = visitPref.String
	l.InquiryType = inquiryType.String
	l.Conversation = conversation.String
	return l, nil
}
