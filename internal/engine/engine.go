// Package engine implements the guided admission dialogue for Learning Curve
// Preschool as a pure state machine.
//
// The dialogue is a directed graph: each node is a handler mapping the user's
// input and the accumulated data to a StepResult, and nodes reached from
// several predecessors are shared by direct tail calls between handlers. The
// whole conversation state travels with the client on every turn, so
// ProcessStep needs no session, no I/O and no clock, and is safe to call
// concurrently from independent requests.
package engine

import (
	"fmt"
	"strings"

	"github.com/learningcurve/enrollbot/internal/models"
)

// PhoneDigits is the exact number of digits a phone number must have after
// normalization.
const PhoneDigits = 10

// Handler produces the result for one dialogue node given the user's input
// and the accumulated data. Data is passed by value; handlers return their
// updates in the result.
type Handler func(input string, data models.ConversationData) models.StepResult

// handlers is the dialogue graph. Edges live in the NextStep each handler
// emits and in the tail calls between handlers. The reserved pseudo-steps
// (init, freeform) and the closed terminal are deliberately absent: the first
// two are dispatched by the transport layer and the last has no transitions.
var handlers = map[models.Step]Handler{
	models.StepWelcome:               welcome,
	models.StepWelcomeResponse:       welcomeResponse,
	models.StepAskAge:                askAge,
	models.StepAgeResponse:           ageResponse,
	models.StepScheduleResponse:      scheduleResponse,
	models.StepFeeResponse:           feeResponse,
	models.StepBookingChoice:         bookingChoice,
	models.StepNameResponse:          nameResponse,
	models.StepPhoneResponse:         phoneResponse,
	models.StepVisitTimeResponse:     visitTimeResponse,
	models.StepBrowsingMenu:          browsingMenu,
	models.StepBrowsingResponse:      browsingResponse,
	models.StepProgramDetailResponse: programDetailResponse,
	models.StepInfoActionResponse:    infoActionResponse,
	models.StepContactResponse:       contactResponse,
	models.StepEnd:                   end,
	models.StepEndResponse:           endResponse,
}

// ProcessStep advances the conversation one turn. It is total: every step
// produces a result, and an unrecognized step (including the closed terminal)
// restarts at the welcome node with fresh data rather than failing.
func ProcessStep(step models.Step, input string, data models.ConversationData) models.StepResult {
	if h, ok := handlers[step]; ok {
		return h(input, data)
	}
	return welcome("", models.ConversationData{})
}

// Restart returns the entry node's result with fresh data.
func Restart() models.StepResult {
	return welcome("", models.ConversationData{})
}

// KnownStep reports whether step is a node in the dialogue graph.
func KnownStep(step models.Step) bool {
	_, ok := handlers[step]
	return ok
}

// NormalizePhone strips every non-digit character from s.
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func welcome(input string, data models.ConversationData) models.StepResult {
	return models.StepResult{
		Message:  "👋 Hi! Welcome to Learning Curve Preschool, Viman Nagar! I'm here to help you find the perfect program for your little one. Shall we get started?",
		Options:  []string{"Yes, Let's Go! 🎉", "Just Browsing"},
		NextStep: models.StepWelcomeResponse,
		Data:     data,
	}
}

func welcomeResponse(input string, data models.ConversationData) models.StepResult {
	if input == "Just Browsing" {
		return browsingMenu(input, data)
	}
	return askAge(input, data)
}

func askAge(input string, data models.ConversationData) models.StepResult {
	return models.StepResult{
		Message:  "How old is your child? 👶",
		Options:  ageOptions,
		NextStep: models.StepAgeResponse,
		Data:     data,
	}
}

// ageResponse records the age group and maps it onto a program. An unknown
// age string passes through as the program interest verbatim; that is
// graceful degradation, not an error.
func ageResponse(input string, data models.ConversationData) models.StepResult {
	data.ChildAgeGroup = input
	emoji, name := "", "program"
	if p, ok := programsByAge[input]; ok {
		emoji, name = p.Emoji, p.Name
		data.ProgramInterest = p.Name
	} else {
		data.ProgramInterest = input
	}
	return models.StepResult{
		Message:  fmt.Sprintf("Perfect! Based on your child's age, our %s **%s** would be ideal!\n\nAre you looking for:", emoji, name),
		Options:  []string{"Half Day (Morning)", "Full Day (Daycare)"},
		NextStep: models.StepScheduleResponse,
		Data:     data,
	}
}

func scheduleResponse(input string, data models.ConversationData) models.StepResult {
	data.SchedulePreference = input
	return models.StepResult{
		Message:  "Would you like to know about our fee structure?",
		Options:  []string{"Yes Please", "Maybe Later"},
		NextStep: models.StepFeeResponse,
		Data:     data,
	}
}

// feeResponse converges on the booking choice either way; the business rule
// is "always attempt to book".
func feeResponse(input string, data models.ConversationData) models.StepResult {
	if input == "Yes Please" {
		return models.StepResult{
			Message:  "Our fees vary based on the program and batch. Our admissions coordinator will share the complete details during your school visit — it's much clearer in person! 😊\n\nShall I book a visit for you?",
			Options:  []string{"Book a Visit", "Call Me Instead"},
			NextStep: models.StepBookingChoice,
			Data:     data,
		}
	}
	return models.StepResult{
		Message:  "No worries! Would you like to schedule a visit to see our campus?",
		Options:  []string{"Book a Visit", "Call Me Instead", "Not Now"},
		NextStep: models.StepBookingChoice,
		Data:     data,
	}
}

// bookingChoice is the shared branch point reached from the fee question, the
// program detail view and the info views. "Not Now" is the one terminal exit;
// everything else proceeds to contact collection.
func bookingChoice(input string, data models.ConversationData) models.StepResult {
	if input == "Not Now" {
		return models.StepResult{
			Message: fmt.Sprintf("Thank you for your interest in Learning Curve! 🏫\n\nFeel free to reach out anytime:\n📞 %s\n📍 %s\n⏰ %s\n\nWe'd love to meet you and your little one! 👶",
				SchoolPhone, SchoolLocation, SchoolHours),
			NextStep: models.StepEnd,
			Data:     data,
		}
	}
	if input == "Call Me Instead" {
		data.InquiryType = models.InquiryTypeCallback
	} else {
		data.InquiryType = models.InquiryTypeVisit
	}
	return models.StepResult{
		Message:          "Wonderful! May I know your name? 😊",
		InputType:        models.InputTypeText,
		InputPlaceholder: "Enter your name",
		NextStep:         models.StepNameResponse,
		Data:             data,
	}
}

func nameResponse(input string, data models.ConversationData) models.StepResult {
	data.ParentName = strings.TrimSpace(input)
	return models.StepResult{
		Message:          fmt.Sprintf("Nice to meet you, %s! And your phone number? Our team will confirm your visit! 📱", data.ParentName),
		InputType:        models.InputTypePhone,
		InputPlaceholder: "Enter 10-digit phone number",
		NextStep:         models.StepPhoneResponse,
		Data:             data,
	}
}

// phoneResponse is the one node with a local retry: anything that does not
// normalize to exactly ten digits re-emits the same node with a corrective
// message instead of advancing.
func phoneResponse(input string, data models.ConversationData) models.StepResult {
	phone := NormalizePhone(input)
	if len(phone) != PhoneDigits {
		return models.StepResult{
			Message:          "Please enter a valid 10-digit phone number 📱",
			InputType:        models.InputTypePhone,
			InputPlaceholder: "Enter 10-digit phone number",
			NextStep:         models.StepPhoneResponse,
			Data:             data,
		}
	}
	data.Phone = phone
	return models.StepResult{
		Message:  "When would you prefer to visit? 📅",
		Options:  []string{"This Week", "Next Week", "Just Call Me"},
		NextStep: models.StepVisitTimeResponse,
		Data:     data,
	}
}

// visitTimeResponse finalizes the intake. It is the only node that sets
// CaptureComplete.
func visitTimeResponse(input string, data models.ConversationData) models.StepResult {
	data.VisitPreference = input
	return models.StepResult{
		Message: fmt.Sprintf("🎉 Thank you %s!\n\nOur admissions team will call you at %s within 24 hours to confirm your visit to Learning Curve!\n\n📍 %s\n📞 %s\n⏰ %s\n\nWe look forward to meeting you and your little one! 👶",
			data.ParentName, data.Phone, SchoolLocation, SchoolPhone, SchoolHours),
		NextStep:        models.StepEnd,
		Data:            data,
		CaptureComplete: true,
	}
}

func browsingMenu(input string, data models.ConversationData) models.StepResult {
	return models.StepResult{
		Message:  "No problem at all! Feel free to explore. Can I answer any quick questions about our programs? 😊",
		Options:  []string{"Programs & Age Groups", "School Timings", "Safety & Facilities", "How to Reach Us"},
		NextStep: models.StepBrowsingResponse,
		Data:     data,
	}
}

func browsingResponse(input string, data models.ConversationData) models.StepResult {
	switch input {
	case "Programs & Age Groups":
		return models.StepResult{
			Message:  "We offer 4 programs:\n\n🌱 **Playgroup**: 1.5 - 2.5 years\n🌸 **Nursery**: 2.5 - 3.5 years\n⭐ **Junior KG**: 3.5 - 4.5 years\n🚀 **Senior KG**: 4.5 - 6 years\n+ Daycare for all age groups\n\nWhich would you like to know more about?",
			Options:  []string{"Playgroup", "Nursery", "Junior KG", "Senior KG", "Book a Visit"},
			NextStep: models.StepProgramDetailResponse,
			Data:     data,
		}
	case "School Timings":
		return models.StepResult{
			Message: fmt.Sprintf("Our timings are:\n\n🕘 **Morning Batch**: %s\n🕑 **Afternoon Batch**: %s\n🌞 **Daycare**: %s\n\nMonday to Saturday\n\nWould you like to book a visit?",
				MorningBatchTiming, AfternoonBatchTiming, DaycareTiming),
			Options:  []string{"Book a Visit", "Back to Menu"},
			NextStep: models.StepInfoActionResponse,
			Data:     data,
		}
	case "Safety & Facilities":
		return models.StepResult{
			Message:  "At Learning Curve we have:\n\n✅ CCTV surveillance\n✅ Female security staff\n✅ Safe pickup/drop protocols\n✅ First aid trained staff\n✅ Nutritionist planned meals\n✅ Clean sanitized classrooms\n\nWould you like to see our facilities in person?",
			Options:  []string{"Book a Visit", "Not Now"},
			NextStep: models.StepInfoActionResponse,
			Data:     data,
		}
	case "How to Reach Us":
		return models.StepResult{
			Message: fmt.Sprintf("📍 **Learning Curve School**\n%s\n\n📞 %s\n🕘 %s\n\nWould you like us to call you?",
				SchoolLocation, SchoolPhone, SchoolHours),
			Options:  []string{"Yes, Call Me", "I'll Call You"},
			NextStep: models.StepContactResponse,
			Data:     data,
		}
	default:
		return browsingMenu(input, data)
	}
}

// programDetailResponse maps a program selection back onto the age-selected
// transition, re-entering the main flow at an interior node.
func programDetailResponse(input string, data models.ConversationData) models.StepResult {
	if input == "Book a Visit" {
		return bookingChoice("Book a Visit", data)
	}
	if age, ok := agesByProgram[input]; ok {
		return ageResponse(age, data)
	}
	return browsingMenu(input, data)
}

func infoActionResponse(input string, data models.ConversationData) models.StepResult {
	if input == "Book a Visit" {
		return bookingChoice("Book a Visit", data)
	}
	return browsingMenu(input, data)
}

func contactResponse(input string, data models.ConversationData) models.StepResult {
	if input == "Yes, Call Me" {
		data.InquiryType = models.InquiryTypeCallback
		return models.StepResult{
			Message:          "Wonderful! May I know your name? 😊",
			InputType:        models.InputTypeText,
			InputPlaceholder: "Enter your name",
			NextStep:         models.StepNameResponse,
			Data:             data,
		}
	}
	return models.StepResult{
		Message: fmt.Sprintf("Great! You can reach us at:\n\n📞 %s\n⏰ %s\n\nWe look forward to hearing from you! 😊",
			SchoolPhone, SchoolHours),
		NextStep: models.StepEnd,
		Data:     data,
	}
}

func end(input string, data models.ConversationData) models.StepResult {
	return models.StepResult{
		Message:  "Is there anything else I can help you with?",
		Options:  []string{"Start Over", "No, Thank You"},
		NextStep: models.StepEndResponse,
		Data:     data,
	}
}

func endResponse(input string, data models.ConversationData) models.StepResult {
	if input == "Start Over" {
		return welcome("", models.ConversationData{})
	}
	return models.StepResult{
		Message: fmt.Sprintf("Thank you for chatting with us! 💛\n\n📞 %s\n📍 %s\n\nHave a wonderful day! 🌟",
			SchoolPhone, SchoolLocation),
		NextStep: models.StepClosed,
		Data:     data,
	}
}
