package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"certforge/internal/delivery/http/controllers"
	"certforge/internal/delivery/http/middleware"
	"certforge/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// All /api routes except auth and verify require a Bearer token.
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	templateController *controllers.TemplateController,
	sendController *controllers.SendController,
	verifyController *controllers.VerifyController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /api/auth/signup", authController.SignUp)
	mux.HandleFunc("POST /api/auth/login", authController.Login)

	// Events
	mux.HandleFunc("POST /api/events", auth(eventController.CreateEvent))
	mux.HandleFunc("GET /api/events/me", auth(eventController.ListMyEvents))
	mux.HandleFunc("GET /api/events/{eventID}", auth(eventController.GetEvent))
	mux.HandleFunc("PATCH /api/events/{eventID}", auth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /api/events/{eventID}", auth(eventController.DeleteEvent))
	mux.HandleFunc("PATCH /api/events/{eventID}/template", auth(eventController.UpdateEventTemplate))

	// Templates
	mux.HandleFunc("POST /api/templates", auth(templateController.CreateTemplate))
	mux.HandleFunc("GET /api/templates/me", auth(templateController.ListMyTemplates))
	mux.HandleFunc("GET /api/templates/{templateID}", auth(templateController.GetTemplate))

	// Participants
	mux.HandleFunc("POST /api/events/{eventID}/participants", auth(eventController.AddParticipants))
	mux.HandleFunc("GET /api/events/{eventID}/participants", auth(eventController.ListParticipants))
	mux.HandleFunc("DELETE /api/events/{eventID}/participants/{participantID}", auth(eventController.DeleteParticipant))

	// Certificate emails
	mux.HandleFunc("POST /api/send-email/single", auth(sendController.SendSingle))
	mux.HandleFunc("POST /api/send-email/bulk", auth(sendController.SendBulk))
	mux.HandleFunc("GET /api/send-email/runs/{runID}", auth(sendController.GetRun))

	// Public verification
	mux.HandleFunc("GET /api/verify/{code}", verifyController.Verify)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
