// Package models defines dialogue step identifiers shared by the engine and
// the HTTP layer, kept here to avoid circular imports.
package models

// Step identifies a node in the dialogue graph.
type Step string

// Reserved pseudo-steps handled by the transport layer, not the engine.
const (
	// StepInit restarts the conversation at the welcome node with fresh data.
	StepInit Step = "init"
	// StepFreeform routes the message to the free-form responder instead of
	// the guided flow.
	StepFreeform Step = "freeform"
)

// Guided flow steps. The *Response steps consume the user's answer to the
// question the previous step asked.
const (
	StepWelcome               Step = "welcome"
	StepWelcomeResponse       Step = "welcome_response"
	StepAskAge                Step = "ask_age"
	StepAgeResponse           Step = "age_response"
	StepScheduleResponse      Step = "schedule_response"
	StepFeeResponse           Step = "fee_response"
	StepBookingChoice         Step = "booking_choice"
	StepNameResponse          Step = "name_response"
	StepPhoneResponse         Step = "phone_response"
	StepVisitTimeResponse     Step = "visit_time_response"
	StepBrowsingMenu          Step = "browsing_menu"
	StepBrowsingResponse      Step = "browsing_response"
	StepProgramDetailResponse Step = "program_detail_response"
	StepInfoActionResponse    Step = "info_action_response"
	StepContactResponse       Step = "contact_response"
	StepEnd                   Step = "end"
	StepEndResponse           Step = "end_response"
	// StepClosed is the terminal goodbye node. No transitions are defined for
	// it; input sent after reaching it restarts at the welcome node.
	StepClosed Step = "closed"
)

// InputType selects which validation the widget applies to the next
// free-text input.
type InputType string

const (
	// InputTypeText expects arbitrary text (e.g. the parent's name).
	InputTypeText InputType = "text"
	// InputTypePhone expects a 10-digit phone number.
	InputTypePhone InputType = "phone"
)

// Inquiry type values recorded on a lead.
const (
	// InquiryTypeVisit marks a lead who asked for a school visit.
	InquiryTypeVisit = "visit"
	// InquiryTypeCallback marks a lead who asked to be called back.
	InquiryTypeCallback = "callback"
)
