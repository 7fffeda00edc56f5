package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"certforge/internal/delivery/http/helpers"
	"certforge/internal/domain"
)

// VerifyController serves the public certificate verification endpoint.
// It requires no authentication.
type VerifyController struct {
	Logger       *slog.Logger
	Certificates domain.CertificateService
}

func NewVerifyController(logger *slog.Logger, certificates domain.CertificateService) *VerifyController {
	return &VerifyController{
		Logger:       logger,
		Certificates: certificates,
	}
}

// Verify godoc
// @Summary Verify a certificate
// @Description Look up a certificate by its verification code. Public endpoint.
// @Tags verify
// @Produce json
// @Param code path string true "Verification code (VF- followed by 6 characters)"
// @Success 200 {object} helpers.APIResponse "data contains the verified certificate"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /verify/{code} [get]
func (c *VerifyController) Verify(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	cert, err := c.Certificates.VerifyCertificate(r.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "malformed verification code")
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "certificate not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, cert)
}
