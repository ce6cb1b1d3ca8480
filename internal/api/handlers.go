// Package api provides HTTP handlers for enrollbot endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/learningcurve/enrollbot/internal/analytics"
	"github.com/learningcurve/enrollbot/internal/engine"
	"github.com/learningcurve/enrollbot/internal/genai"
	"github.com/learningcurve/enrollbot/internal/models"
)

// freeformFollowupOptions are offered after every free-form answer to pull the
// visitor back into the guided flow.
var freeformFollowupOptions = []string{"Programs & Age Groups", "Book a Visit", "Back to Menu"}

// chatHandler drives one dialogue turn (POST /api/chat). It never fails a
// turn: bad input restarts the conversation and an unreachable AI backend
// degrades to the static fallback.
func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.chatHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	slog.Debug("Server.chatHandler: processing turn", "step", req.Step)
	chatTurnsTotal.WithLabelValues(stepLabel(req.Step)).Inc()

	var result models.StepResult
	switch req.Step {
	case "", models.StepInit:
		result = engine.Restart()
	case models.StepFreeform:
		result = s.answerFreeform(r.Context(), req)
	default:
		result = engine.ProcessStep(req.Step, req.Message, req.Data)
	}

	writeJSONResponse(w, http.StatusOK, result)
}

// stepLabel maps the client-supplied step onto a fixed metric label set. The
// step string comes straight off the wire, so anything outside the dialogue
// graph shares one bucket to keep series cardinality bounded.
func stepLabel(step models.Step) string {
	switch step {
	case "", models.StepInit:
		return string(models.StepInit)
	case models.StepFreeform, models.StepClosed:
		return string(step)
	}
	if engine.KnownStep(step) {
		return string(step)
	}
	return "unknown"
}

// answerFreeform asks the AI responder and falls back to the canned answer on
// any failure. The reply always routes back into the browsing menu.
func (s *Server) answerFreeform(ctx context.Context, req models.ChatRequest) models.StepResult {
	ctx, cancel := context.WithTimeout(ctx, DefaultFreeformTimeout)
	defer cancel()

	answer, err := s.responder.Answer(ctx, req.Message)
	if err != nil || answer == "" {
		slog.Warn("Server.answerFreeform: falling back to static answer", "error", err)
		freeformFallbacksTotal.Inc()
		answer = genai.FallbackAnswer
	}
	return models.StepResult{
		Message:  answer,
		Options:  freeformFollowupOptions,
		NextStep: models.StepBrowsingResponse,
		Data:     req.Data,
	}
}

// createLeadHandler captures a finished conversation as a lead
// (POST /api/leads). Persistence failures are logged but the caller is still
// acknowledged; losing an alert is better than showing an error to a parent
// who just handed over their phone number.
func (s *Server) createLeadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	var lead models.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		slog.Warn("Server.createLeadHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	lead.Phone = engine.NormalizePhone(lead.Phone)
	if err := lead.Validate(); err != nil {
		slog.Warn("Server.createLeadHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	lead.ID = 0
	lead.Status = models.LeadStatusNew
	lead.CreatedAt = time.Now().UTC()
	if lead.InquiryType == "" {
		lead.InquiryType = models.InquiryTypeVisit
	}

	id, storeErr := s.st.AddLead(lead)
	if storeErr != nil {
		slog.Error("Server.createLeadHandler: failed to store lead", "error", storeErr, "parent", lead.ParentName)
	} else {
		lead.ID = id
		leadsCapturedTotal.Inc()
		slog.Info("Server.createLeadHandler: lead captured", "id", id, "parent", lead.ParentName, "inquiry_type", lead.InquiryType)
	}

	// Alerts are fire-and-forget; the parent never waits on Twilio or Resend.
	// The alert goes out even when persistence failed: staff getting the phone
	// number is the last line of defense against losing the enquiry.
	go func(lead models.Lead) {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultNotifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyLead(ctx, lead); err != nil {
			notifyFailuresTotal.Inc()
			slog.Error("Server.createLeadHandler: lead notification failed", "error", err, "id", lead.ID)
		}
	}(lead)

	if storeErr != nil {
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Lead received", nil))
		return
	}
	writeJSONResponse(w, http.StatusCreated, models.SuccessWithMessage("Lead captured successfully", map[string]interface{}{"id": id}))
}

// listLeadsHandler returns one filtered page of leads (GET /api/leads).
func (s *Server) listLeadsHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := parseLeadFilter(r)
	if err != nil {
		slog.Warn("Server.listLeadsHandler: bad filter", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	leads, total, err := s.st.ListLeads(filter)
	if err != nil {
		slog.Error("Server.listLeadsHandler: failed to list leads", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch leads"))
		return
	}
	slog.Debug("Server.listLeadsHandler: leads fetched", "count", len(leads), "total", total)
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"leads": leads,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	}))
}

// parseLeadFilter builds a LeadFilter from list query parameters.
func parseLeadFilter(r *http.Request) (models.LeadFilter, error) {
	q := r.URL.Query()
	var filter models.LeadFilter

	if v := q.Get("status"); v != "" {
		status := models.LeadStatus(v)
		if !models.IsValidLeadStatus(status) {
			return filter, models.ErrInvalidLeadStatus
		}
		filter.Status = status
	}
	filter.Program = q.Get("program")
	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errors.New("date_from must be YYYY-MM-DD")
		}
		filter.DateFrom = t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errors.New("date_to must be YYYY-MM-DD")
		}
		// Inclusive upper bound: the whole named day.
		filter.DateTo = t.Add(24*time.Hour - time.Nanosecond)
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, errors.New("page must be an integer")
		}
		filter.Page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, errors.New("limit must be an integer")
		}
		filter.Limit = n
	}
	filter.Normalize()
	return filter, nil
}

// updateLeadStatusHandler moves a lead through the follow-up pipeline
// (PUT /api/leads/{id}).
func (s *Server) updateLeadStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Lead id must be an integer"))
		return
	}
	var body struct {
		Status models.LeadStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		slog.Warn("Server.updateLeadStatusHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	lead, err := s.st.UpdateLeadStatus(id, body.Status)
	switch {
	case errors.Is(err, models.ErrInvalidLeadStatus):
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	case errors.Is(err, models.ErrLeadNotFound):
		writeJSONResponse(w, http.StatusNotFound, models.Error("Lead not found"))
		return
	case err != nil:
		slog.Error("Server.updateLeadStatusHandler: failed to update status", "error", err, "id", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to update lead"))
		return
	}
	slog.Info("Server.updateLeadStatusHandler: status updated", "id", id, "status", body.Status)
	writeJSONResponse(w, http.StatusOK, models.Success(lead))
}

// analyticsHandler returns the dashboard summary (GET /api/analytics).
// Day and hour buckets follow the school's local clock.
func (s *Server) analyticsHandler(w http.ResponseWriter, r *http.Request) {
	leads, err := s.st.AllLeads()
	if err != nil {
		slog.Error("Server.analyticsHandler: failed to fetch leads", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch analytics"))
		return
	}
	now := time.Now()
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		now = now.In(loc)
	}
	summary := analytics.Summarize(leads, now)
	slog.Debug("Server.analyticsHandler: summary computed", "total", summary.Total)
	writeJSONResponse(w, http.StatusOK, models.Success(summary))
}

// healthHandler provides a health check endpoint for monitoring and load balancing
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	// Probe the store with the cheapest read it supports.
	if _, total, err := s.st.ListLeads(models.LeadFilter{Limit: 1}); err != nil {
		slog.Warn("Server.healthHandler: store probe failed", "error", err)
		healthData["status"] = "degraded"
		healthData["error"] = "Failed to reach lead store"
	} else {
		healthData["leads_total"] = total
	}

	statusCode := http.StatusOK
	if healthData["status"] == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSONResponse(w, statusCode, healthData)
}
