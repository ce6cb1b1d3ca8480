// Package models defines the conversation state passed between the widget and
// the dialogue engine on every turn.
package models

// ConversationData is the accumulating answer set for one conversation. It is
// held entirely by the client and echoed back on every call; the server keeps
// no session. Fields populate monotonically: later steps only add or
// overwrite, never remove, except on an explicit restart which begins from a
// fresh zero value.
type ConversationData struct {
	ChildAgeGroup      string `json:"childAgeGroup,omitempty"`
	ProgramInterest    string `json:"programInterest,omitempty"`
	SchedulePreference string `json:"schedulePreference,omitempty"`
	InquiryType        string `json:"inquiryType,omitempty"`
	ParentName         string `json:"parentName,omitempty"`
	Phone              string `json:"phone,omitempty"`
	VisitPreference    string `json:"visitPreference,omitempty"`
}

// StepResult is the engine's only output type: the bot utterance plus
// everything the client needs to render the turn and make the next call.
type StepResult struct {
	Message          string           `json:"message"`
	Options          []string         `json:"options,omitempty"`
	InputType        InputType        `json:"inputType,omitempty"`
	InputPlaceholder string           `json:"inputPlaceholder,omitempty"`
	NextStep         Step             `json:"nextStep"`
	Data             ConversationData `json:"data"`
	// CaptureComplete is true on exactly one step, the one that finalizes a
	// lead; it signals the caller to persist Data as a new lead record.
	CaptureComplete bool `json:"captureComplete,omitempty"`
}

// ChatRequest is the transport request shape: the client echoes back the step
// and data from the previous StepResult together with the user's input.
type ChatRequest struct {
	Step    Step             `json:"step"`
	Message string           `json:"message"`
	Data    ConversationData `json:"data"`
}
