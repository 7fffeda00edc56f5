package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"certforge/internal/delivery/http/helpers"
	"certforge/internal/delivery/http/middleware"
	"certforge/internal/domain"
)

type TemplateController struct {
	Logger  *slog.Logger
	Service domain.TemplateService
}

func NewTemplateController(logger *slog.Logger, svc domain.TemplateService) *TemplateController {
	return &TemplateController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateTemplateRequest is the request body for POST /api/templates.
// Omitted settings get the defaults: Arial 48 #000000, box centered at
// x=50 y=50 with width 80 and height 15 (all percentages).
type CreateTemplateRequest struct {
	ImageURL   string   `json:"image_url"`
	PositionX  *float64 `json:"position_x"`
	PositionY  *float64 `json:"position_y"`
	Width      *float64 `json:"width"`
	Height     *float64 `json:"height"`
	FontFamily string   `json:"font_family"`
	FontSize   int      `json:"font_size"`
	FontColor  string   `json:"font_color"`
}

// Validate implements helpers.Validator.
func (c CreateTemplateRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.ImageURL) == "" {
		errs = append(errs, "image_url is required")
	}
	check := func(name string, v *float64) {
		if v != nil && (*v < 0 || *v > 100) {
			errs = append(errs, name+" must be between 0 and 100")
		}
	}
	check("position_x", c.PositionX)
	check("position_y", c.PositionY)
	check("width", c.Width)
	check("height", c.Height)
	if c.FontSize < 0 || c.FontSize > 500 {
		errs = append(errs, "font_size must be between 1 and 500")
	}
	if c.FontColor != "" && !strings.HasPrefix(c.FontColor, "#") {
		errs = append(errs, "font_color must be a hex color like #000000")
	}
	return errs
}

// CreateTemplate godoc
// @Summary Create a certificate template
// @Description Create a standalone certificate template owned by the authenticated user. Attach it to an event via PATCH /events/{eventID}/template.
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTemplateRequest true "Template data"
// @Success 201 {object} helpers.APIResponse "data contains the created template"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /templates [post]
func (c *TemplateController) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	template := &domain.CertificateTemplate{
		OwnerID:    userID,
		ImageURL:   strings.TrimSpace(req.ImageURL),
		PositionX:  domain.DefaultPositionX,
		PositionY:  domain.DefaultPositionY,
		Width:      domain.DefaultBoxWidth,
		Height:     domain.DefaultBoxHeight,
		FontFamily: req.FontFamily,
		FontSize:   req.FontSize,
		FontColor:  req.FontColor,
	}
	if req.PositionX != nil {
		template.PositionX = *req.PositionX
	}
	if req.PositionY != nil {
		template.PositionY = *req.PositionY
	}
	if req.Width != nil {
		template.Width = *req.Width
	}
	if req.Height != nil {
		template.Height = *req.Height
	}

	if err := c.Service.CreateTemplate(r.Context(), template); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusCreated, template)
}

// ListMyTemplates godoc
// @Summary List my certificate templates
// @Description Returns all templates owned by the authenticated user.
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of templates"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /templates/me [get]
func (c *TemplateController) ListMyTemplates(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	templates, err := c.Service.ListTemplatesByOwner(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if templates == nil {
		templates = []*domain.CertificateTemplate{}
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, templates)
}

// GetTemplate godoc
// @Summary Get a certificate template
// @Description Returns one template. Owner only.
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param templateID path string true "Template ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the template"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /templates/{templateID} [get]
func (c *TemplateController) GetTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := r.PathValue("templateID")
	if !uuidRegex.MatchString(templateID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid templateID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	template, err := c.Service.GetTemplateByID(r.Context(), templateID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "template not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not the template owner")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, template)
}
