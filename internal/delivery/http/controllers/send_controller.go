package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"certforge/internal/delivery/http/helpers"
	"certforge/internal/delivery/http/middleware"
	"certforge/internal/dispatch"
	"certforge/internal/domain"
)

// RunDispatcher starts and observes bulk dispatch runs.
type RunDispatcher interface {
	StartRun(ctx context.Context, eventID, callerID, subject, transcript string) (*dispatch.RunSnapshot, error)
	Snapshot(runID string) (*dispatch.RunSnapshot, error)
}

type SendController struct {
	Logger       *slog.Logger
	Certificates domain.CertificateService
	Dispatcher   RunDispatcher
}

func NewSendController(logger *slog.Logger, certificates domain.CertificateService, dispatcher RunDispatcher) *SendController {
	return &SendController{
		Logger:       logger,
		Certificates: certificates,
		Dispatcher:   dispatcher,
	}
}

// SingleSendRequest is the request body for POST /api/send-email/single.
// Subject and transcript may contain {name} and {event} placeholders.
type SingleSendRequest struct {
	EventID       string `json:"event_id"`
	ParticipantID string `json:"participant_id"`
	Subject       string `json:"subject"`
	Transcript    string `json:"transcript"`
}

// Validate implements helpers.Validator.
func (s SingleSendRequest) Validate() []string {
	var errs []string
	if !uuidRegex.MatchString(s.EventID) {
		errs = append(errs, "event_id must be a UUID")
	}
	if !uuidRegex.MatchString(s.ParticipantID) {
		errs = append(errs, "participant_id must be a UUID")
	}
	if strings.TrimSpace(s.Subject) == "" {
		errs = append(errs, "subject is required")
	}
	if strings.TrimSpace(s.Transcript) == "" {
		errs = append(errs, "transcript is required")
	}
	return errs
}

// BulkSendRequest is the request body for POST /api/send-email/bulk.
type BulkSendRequest struct {
	EventID    string `json:"event_id"`
	Subject    string `json:"subject"`
	Transcript string `json:"transcript"`
}

// Validate implements helpers.Validator.
func (b BulkSendRequest) Validate() []string {
	var errs []string
	if !uuidRegex.MatchString(b.EventID) {
		errs = append(errs, "event_id must be a UUID")
	}
	if strings.TrimSpace(b.Subject) == "" {
		errs = append(errs, "subject is required")
	}
	if strings.TrimSpace(b.Transcript) == "" {
		errs = append(errs, "transcript is required")
	}
	return errs
}

// SendSingle godoc
// @Summary Send one certificate email
// @Description Issues the certificate for a single participant and emails it. Used for first sends and for retrying failed ones. Owner only.
// @Tags send-email
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SingleSendRequest true "Send request"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 502 {object} helpers.APIResponse "error.code: internal_error (provider send failed)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /send-email/single [post]
func (c *SendController) SendSingle(w http.ResponseWriter, r *http.Request) {
	var req SingleSendRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	err := c.Certificates.SendCertificate(r.Context(), req.ParticipantID, req.EventID, userID, req.Subject, req.Transcript)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "participant or event not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not the event owner")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		if errors.Is(err, domain.ErrSendFailed) {
			helpers.WriteJSONError(w, http.StatusBadGateway, helpers.ErrCodeInternalError, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "sent"})
}

// SendBulk godoc
// @Summary Start a bulk certificate send
// @Description Starts a background run over the event's unsent participants. Returns the initial run state; poll GET /send-email/runs/{runID} for progress. Owner only.
// @Tags send-email
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body BulkSendRequest true "Bulk send request"
// @Success 202 {object} helpers.APIResponse "data contains the run snapshot"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (a run is already active)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /send-email/bulk [post]
func (c *SendController) SendBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkSendRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	snap, err := c.Dispatcher.StartRun(r.Context(), req.EventID, userID, req.Subject, req.Transcript)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not the event owner")
			return
		}
		if errors.Is(err, dispatch.ErrRunActive) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusAccepted, snap)
}

// GetRun godoc
// @Summary Get bulk send progress
// @Description Returns the current state of a dispatch run, including per-recipient statuses.
// @Tags send-email
// @Produce json
// @Security BearerAuth
// @Param runID path string true "Run ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the run snapshot"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /send-email/runs/{runID} [get]
func (c *SendController) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("runID")
	if !uuidRegex.MatchString(runID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid runID")
		return
	}

	snap, err := c.Dispatcher.Snapshot(runID)
	if err != nil {
		if errors.Is(err, dispatch.ErrRunNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "run not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, snap)
}
