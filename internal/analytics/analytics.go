// Package analytics computes the admissions dashboard summary from captured
// leads. All computation is pure and in-memory; the API layer fetches the
// leads and passes them in.
package analytics

import (
	"math"
	"time"

	"github.com/learningcurve/enrollbot/internal/models"
)

// Summary is the dashboard payload.
type Summary struct {
	Total          int            `json:"total"`
	NewToday       int            `json:"newToday"`
	ByStatus       map[string]int `json:"byStatus"`
	ByProgram      map[string]int `json:"byProgram"`
	ByDayOfWeek    map[string]int `json:"byDayOfWeek"`
	PeakHours      map[int]int    `json:"peakHours"`
	ConversionRate float64        `json:"conversionRate"`
}

// dayNames follows time.Weekday ordering (Sunday first).
var dayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Summarize aggregates leads into the dashboard summary. Timestamps are
// bucketed in now's location, so callers pass now in the school's timezone.
func Summarize(leads []models.Lead, now time.Time) Summary {
	s := Summary{
		ByStatus:    make(map[string]int),
		ByProgram:   make(map[string]int),
		ByDayOfWeek: make(map[string]int, len(dayNames)),
		PeakHours:   make(map[int]int, 24),
	}
	for _, day := range dayNames {
		s.ByDayOfWeek[day] = 0
	}
	for h := 0; h < 24; h++ {
		s.PeakHours[h] = 0
	}

	today := now.Format("2006-01-02")
	admitted := 0
	for _, lead := range leads {
		s.Total++
		local := lead.CreatedAt.In(now.Location())
		if local.Format("2006-01-02") == today {
			s.NewToday++
		}
		s.ByStatus[string(lead.Status)]++
		// Blank programs get their own bucket so per-program counts sum to total.
		program := lead.ProgramInterest
		if program == "" {
			program = "Not specified"
		}
		s.ByProgram[program]++
		s.ByDayOfWeek[dayNames[local.Weekday()]]++
		s.PeakHours[local.Hour()]++
		if lead.Status == models.LeadStatusAdmitted {
			admitted++
		}
	}
	if s.Total > 0 {
		s.ConversionRate = math.Round(float64(admitted) / float64(s.Total) * 100)
	}
	return s
}
