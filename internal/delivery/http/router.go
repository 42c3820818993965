package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventsignup/internal/delivery/http/controllers"
	"eventsignup/internal/delivery/http/middleware"
	"eventsignup/internal/domain"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Logger           *slog.Logger
	Sessions         domain.SessionRepository
	AuthController   *controllers.AuthController
	EventController  *controllers.EventController
	PublicController *controllers.PublicController
	AuthLimiter      *middleware.RateLimiter
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(deps RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(deps.Sessions, deps.Logger)
	authLimited := deps.AuthLimiter.Wrap

	// Public pages and sign-up
	mux.HandleFunc("GET /{$}", deps.PublicController.Home)
	mux.HandleFunc("GET /event", deps.PublicController.ListEvents)
	mux.HandleFunc("GET /event/{eventID}", deps.PublicController.ShowEvent)
	mux.HandleFunc("POST /event/{eventID}/register", deps.PublicController.RegisterParticipant)

	// Auth (login and register carry the strict limiter)
	mux.HandleFunc("GET /register", deps.AuthController.ShowRegister)
	mux.HandleFunc("POST /register", authLimited(deps.AuthController.Register))
	mux.HandleFunc("GET /login", deps.AuthController.ShowLogin)
	mux.HandleFunc("POST /login", authLimited(deps.AuthController.Login))
	mux.HandleFunc("POST /logout", deps.AuthController.Logout)

	// Provider API
	mux.HandleFunc("POST /api/events", auth(deps.EventController.CreateEvent))
	mux.HandleFunc("GET /api/events", auth(deps.EventController.ListEvents))
	mux.HandleFunc("GET /api/events/{eventID}/participants", auth(deps.EventController.GetParticipants))
	mux.HandleFunc("GET /api/events/{eventID}/participants/csv", auth(deps.EventController.ExportParticipantsCSV))

	// Provider pages
	mux.HandleFunc("GET /admin/dashboard", auth(deps.EventController.Dashboard))
	mux.HandleFunc("GET /admin/event/create", auth(deps.EventController.ShowCreateForm))
	mux.HandleFunc("POST /admin/event", auth(deps.EventController.CreateFromForm))
	mux.HandleFunc("GET /admin/event/{eventID}/edit", auth(deps.EventController.ShowEditForm))
	mux.HandleFunc("POST /admin/event/{eventID}/edit", auth(deps.EventController.UpdateFromForm))
	mux.HandleFunc("PUT /admin/event/{eventID}", auth(deps.EventController.UpdateEvent))
	mux.HandleFunc("GET /admin/event/{eventID}/participants", auth(deps.EventController.ParticipantsPage))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
