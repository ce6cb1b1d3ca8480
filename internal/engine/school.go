package engine

// School contact details surfaced in bot messages.
const (
	SchoolName     = "Learning Curve Preschool"
	SchoolLocation = "Viman Nagar, Pune - 411014"
	SchoolPhone    = "+91 98765 43210"
	SchoolHours    = "Mon-Sat: 9 AM to 5 PM"
)

// Batch timings quoted in the browsing flow.
const (
	MorningBatchTiming   = "9:00 AM - 12:00 PM"
	AfternoonBatchTiming = "12:30 PM - 3:30 PM"
	DaycareTiming        = "8:00 AM - 6:00 PM"
)

// Program describes one program offered by the school.
type Program struct {
	Name  string
	Ages  string
	Emoji string
}

// ageOptions is the age menu in presentation order. The strings double as
// keys into programsByAge, so menu text and lookup table cannot drift apart.
var ageOptions = []string{
	"1.5 - 2.5 years",
	"2.5 - 3.5 years",
	"3.5 - 4.5 years",
	"4.5 - 6 years",
}

// programsByAge maps a submitted age-range string to its program. Built once
// at package init, never mutated, safe to share across concurrent requests.
var programsByAge = map[string]Program{
	"1.5 - 2.5 years": {Name: "Playgroup", Ages: "1.5 - 2.5 years", Emoji: "🌱"},
	"2.5 - 3.5 years": {Name: "Nursery", Ages: "2.5 - 3.5 years", Emoji: "🌸"},
	"3.5 - 4.5 years": {Name: "Junior KG", Ages: "3.5 - 4.5 years", Emoji: "⭐"},
	"4.5 - 6 years":   {Name: "Senior KG", Ages: "4.5 - 6 years", Emoji: "🚀"},
}

// agesByProgram is the inverse mapping, used when the browsing flow re-enters
// the main flow through a program selection.
var agesByProgram = map[string]string{
	"Playgroup": "1.5 - 2.5 years",
	"Nursery":   "2.5 - 3.5 years",
	"Junior KG": "3.5 - 4.5 years",
	"Senior KG": "4.5 - 6 years",
}
