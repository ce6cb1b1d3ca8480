package engine

import (
	"strings"
	"testing"

	"github.com/learningcurve/enrollbot/internal/models"
)

// allSteps is every step the dialogue graph defines plus the reserved and
// terminal identifiers the transport layer may echo back.
var allSteps = []models.Step{
	models.StepWelcome, models.StepWelcomeResponse, models.StepAskAge,
	models.StepAgeResponse, models.StepScheduleResponse, models.StepFeeResponse,
	models.StepBookingChoice, models.StepNameResponse, models.StepPhoneResponse,
	models.StepVisitTimeResponse, models.StepBrowsingMenu, models.StepBrowsingResponse,
	models.StepProgramDetailResponse, models.StepInfoActionResponse,
	models.StepContactResponse, models.StepEnd, models.StepEndResponse,
	models.StepClosed, models.StepInit, models.StepFreeform, models.Step("bogus"),
}

func TestProcessStepIsTotal(t *testing.T) {
	inputs := []string{"", "garbage", "Yes, Let's Go! 🎉", "Not Now", "0"}
	data := models.ConversationData{ParentName: "Asha", Phone: "9876543210"}
	for _, step := range allSteps {
		for _, in := range inputs {
			res := ProcessStep(step, in, data)
			if res.Message == "" {
				t.Errorf("ProcessStep(%q, %q) returned empty message", step, in)
			}
			if res.NextStep == "" {
				t.Errorf("ProcessStep(%q, %q) returned empty next step", step, in)
			}
		}
	}
}

func TestUnknownStepRestartsFresh(t *testing.T) {
	res := ProcessStep("no_such_step", "anything", models.ConversationData{ParentName: "stale"})
	if res.NextStep != models.StepWelcomeResponse {
		t.Errorf("unknown step should restart at welcome, got next step %q", res.NextStep)
	}
	if res.Data != (models.ConversationData{}) {
		t.Errorf("restart should clear data, got %+v", res.Data)
	}
}

func TestMenuMismatchRedisplays(t *testing.T) {
	menuSteps := []models.Step{
		models.StepWelcomeResponse, models.StepFeeResponse, models.StepBookingChoice,
		models.StepBrowsingResponse, models.StepProgramDetailResponse,
		models.StepInfoActionResponse, models.StepContactResponse, models.StepEndResponse,
	}
	data := models.ConversationData{ChildAgeGroup: "2.5 - 3.5 years"}
	for _, step := range menuSteps {
		garbage := ProcessStep(step, "garbage", data)
		empty := ProcessStep(step, "", data)
		if garbage.NextStep != empty.NextStep {
			t.Errorf("step %q: garbage input advanced to %q but empty input to %q",
				step, garbage.NextStep, empty.NextStep)
		}
	}
}

func TestWelcomeBranches(t *testing.T) {
	browse := ProcessStep(models.StepWelcomeResponse, "Just Browsing", models.ConversationData{})
	if browse.NextStep != models.StepBrowsingResponse {
		t.Errorf("Just Browsing should enter the browsing menu, got %q", browse.NextStep)
	}
	main := ProcessStep(models.StepWelcomeResponse, "Yes, Let's Go! 🎉", models.ConversationData{})
	if main.NextStep != models.StepAgeResponse {
		t.Errorf("accepting should ask for the child's age, got %q", main.NextStep)
	}
}

func TestAgeMapping(t *testing.T) {
	cases := []struct {
		age     string
		program string
	}{
		{"1.5 - 2.5 years", "Playgroup"},
		{"2.5 - 3.5 years", "Nursery"},
		{"3.5 - 4.5 years", "Junior KG"},
		{"4.5 - 6 years", "Senior KG"},
		{"teen", "teen"}, // unmapped input passes through verbatim
	}
	for _, c := range cases {
		res := ProcessStep(models.StepAgeResponse, c.age, models.ConversationData{})
		if res.Data.ProgramInterest != c.program {
			t.Errorf("age %q: program interest = %q, want %q", c.age, res.Data.ProgramInterest, c.program)
		}
		if res.Data.ChildAgeGroup != c.age {
			t.Errorf("age %q not recorded, got %q", c.age, res.Data.ChildAgeGroup)
		}
		if res.NextStep != models.StepScheduleResponse {
			t.Errorf("age %q: next step = %q, want schedule_response", c.age, res.NextStep)
		}
	}
}

func TestFeeResponseConverges(t *testing.T) {
	yes := ProcessStep(models.StepFeeResponse, "Yes Please", models.ConversationData{})
	no := ProcessStep(models.StepFeeResponse, "Maybe Later", models.ConversationData{})
	if yes.NextStep != models.StepBookingChoice || no.NextStep != models.StepBookingChoice {
		t.Errorf("fee question must converge on booking_choice, got %q and %q", yes.NextStep, no.NextStep)
	}
	if yes.Message == no.Message {
		t.Error("the two fee answers should get different preceding messages")
	}
	if len(no.Options) != 3 || no.Options[2] != "Not Now" {
		t.Errorf("declining the fee info should offer Not Now, got %v", no.Options)
	}
}

func TestBookingChoice(t *testing.T) {
	decline := ProcessStep(models.StepBookingChoice, "Not Now", models.ConversationData{})
	if decline.NextStep != models.StepEnd {
		t.Errorf("Not Now should be terminal, got next step %q", decline.NextStep)
	}
	visit := ProcessStep(models.StepBookingChoice, "Book a Visit", models.ConversationData{})
	if visit.Data.InquiryType != models.InquiryTypeVisit {
		t.Errorf("Book a Visit inquiry type = %q, want visit", visit.Data.InquiryType)
	}
	callback := ProcessStep(models.StepBookingChoice, "Call Me Instead", models.ConversationData{})
	if callback.Data.InquiryType != models.InquiryTypeCallback {
		t.Errorf("Call Me Instead inquiry type = %q, want callback", callback.Data.InquiryType)
	}
	if visit.InputType != models.InputTypeText || visit.NextStep != models.StepNameResponse {
		t.Errorf("booking should collect the name next, got %q/%q", visit.InputType, visit.NextStep)
	}
}

func TestNameTrimmed(t *testing.T) {
	res := ProcessStep(models.StepNameResponse, "  Asha Kulkarni \n", models.ConversationData{})
	if res.Data.ParentName != "Asha Kulkarni" {
		t.Errorf("name not trimmed, got %q", res.Data.ParentName)
	}
	if res.InputType != models.InputTypePhone {
		t.Errorf("expected phone input next, got %q", res.InputType)
	}
}

func TestPhoneValidationRetry(t *testing.T) {
	invalid := []string{"abc", "12345", "98765 4321 00", ""}
	for _, in := range invalid {
		res := ProcessStep(models.StepPhoneResponse, in, models.ConversationData{})
		if res.NextStep != models.StepPhoneResponse {
			t.Errorf("invalid phone %q should retry the same node, advanced to %q", in, res.NextStep)
		}
		if res.Data.Phone != "" {
			t.Errorf("invalid phone %q must not be recorded, got %q", in, res.Data.Phone)
		}
		if !strings.Contains(res.Message, "valid 10-digit") {
			t.Errorf("retry should carry a corrective message, got %q", res.Message)
		}
	}
}

func TestPhoneNormalizedAndAccepted(t *testing.T) {
	res := ProcessStep(models.StepPhoneResponse, "98765-43210", models.ConversationData{})
	if res.NextStep != models.StepVisitTimeResponse {
		t.Errorf("valid phone should advance to visit_time_response, got %q", res.NextStep)
	}
	if res.Data.Phone != "9876543210" {
		t.Errorf("phone should be stripped to digits, got %q", res.Data.Phone)
	}
}

func TestCaptureCompleteExactlyOnce(t *testing.T) {
	data := models.ConversationData{ParentName: "Asha", Phone: "9876543210"}
	for _, step := range allSteps {
		res := ProcessStep(step, "This Week", data)
		want := step == models.StepVisitTimeResponse
		if res.CaptureComplete != want {
			t.Errorf("step %q: captureComplete = %v, want %v", step, res.CaptureComplete, want)
		}
	}
}

// TestHappyPathAccumulatesData walks entry → capture and checks that every
// collected field carries the literal input supplied along the way.
func TestHappyPathAccumulatesData(t *testing.T) {
	res := Restart()
	turns := []string{
		"Yes, Let's Go! 🎉",
		"2.5 - 3.5 years",
		"Half Day (Morning)",
		"Yes Please",
		"Book a Visit",
		"Asha Kulkarni",
		"(98765) 43210",
		"This Week",
	}
	for _, in := range turns {
		res = ProcessStep(res.NextStep, in, res.Data)
	}
	if !res.CaptureComplete {
		t.Fatal("happy path did not finalize the lead")
	}
	d := res.Data
	if d.ParentName != "Asha Kulkarni" ||
		d.Phone != "9876543210" ||
		d.ChildAgeGroup != "2.5 - 3.5 years" ||
		d.ProgramInterest != "Nursery" ||
		d.SchedulePreference != "Half Day (Morning)" ||
		d.InquiryType != models.InquiryTypeVisit ||
		d.VisitPreference != "This Week" {
		t.Errorf("accumulated data incomplete: %+v", d)
	}
	if !strings.Contains(res.Message, "Asha Kulkarni") || !strings.Contains(res.Message, "9876543210") {
		t.Errorf("confirmation should echo name and phone, got %q", res.Message)
	}
}

// TestBrowsingReentersMainFlow checks the browsing sub-graph edges: a program
// selection maps back onto the age-selected transition, and Book a Visit from
// any menu funnels into the one booking node.
func TestBrowsingReentersMainFlow(t *testing.T) {
	detail := ProcessStep(models.StepBrowsingResponse, "Programs & Age Groups", models.ConversationData{})
	if detail.NextStep != models.StepProgramDetailResponse {
		t.Fatalf("program list next step = %q", detail.NextStep)
	}
	nursery := ProcessStep(detail.NextStep, "Nursery", detail.Data)
	if nursery.Data.ProgramInterest != "Nursery" || nursery.Data.ChildAgeGroup != "2.5 - 3.5 years" {
		t.Errorf("program selection should re-enter via the age transition, got %+v", nursery.Data)
	}
	for _, step := range []models.Step{models.StepProgramDetailResponse, models.StepInfoActionResponse} {
		book := ProcessStep(step, "Book a Visit", models.ConversationData{})
		if book.NextStep != models.StepNameResponse || book.Data.InquiryType != models.InquiryTypeVisit {
			t.Errorf("step %q: Book a Visit should funnel into booking, got %q", step, book.NextStep)
		}
	}
}

func TestContactBranch(t *testing.T) {
	call := ProcessStep(models.StepContactResponse, "Yes, Call Me", models.ConversationData{})
	if call.Data.InquiryType != models.InquiryTypeCallback || call.NextStep != models.StepNameResponse {
		t.Errorf("Yes, Call Me should start contact collection as callback, got %+v", call)
	}
	selfServe := ProcessStep(models.StepContactResponse, "I'll Call You", models.ConversationData{})
	if selfServe.NextStep != models.StepEnd {
		t.Errorf("declining the callback should end the flow, got %q", selfServe.NextStep)
	}
	if !strings.Contains(selfServe.Message, SchoolPhone) {
		t.Errorf("goodbye should include the school phone, got %q", selfServe.Message)
	}
}

func TestRestartClearsData(t *testing.T) {
	res := ProcessStep(models.StepEndResponse, "Start Over", models.ConversationData{ParentName: "old", Phone: "1112223334"})
	if res.Data != (models.ConversationData{}) {
		t.Errorf("Start Over should clear data, got %+v", res.Data)
	}
	if res.NextStep != models.StepWelcomeResponse {
		t.Errorf("Start Over should re-enter the welcome node, got %q", res.NextStep)
	}
}

func TestGoodbyeReachesClosed(t *testing.T) {
	res := ProcessStep(models.StepEndResponse, "No, Thank You", models.ConversationData{})
	if res.NextStep != models.StepClosed {
		t.Errorf("goodbye should close the session, got %q", res.NextStep)
	}
	// closed has no transitions; further input restarts from scratch.
	after := ProcessStep(res.NextStep, "hello?", res.Data)
	if after.NextStep != models.StepWelcomeResponse {
		t.Errorf("input after close should restart, got %q", after.NextStep)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"98765-43210":     "9876543210",
		"(987) 654-3210":  "9876543210",
		"abc":             "",
		"+91 98765 43210": "919876543210",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDeterminism(t *testing.T) {
	data := models.ConversationData{ChildAgeGroup: "4.5 - 6 years"}
	for _, step := range allSteps {
		a := ProcessStep(step, "Book a Visit", data)
		b := ProcessStep(step, "Book a Visit", data)
		if a.Message != b.Message || a.NextStep != b.NextStep || a.Data != b.Data {
			t.Errorf("step %q is not deterministic", step)
		}
	}
}
