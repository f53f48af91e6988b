package routes

import (
	"net/http"

	"socialnet_server/controllers"
	"socialnet_server/middleware"
	"socialnet_server/services"

	"github.com/gorilla/mux"
)

// APIPrefix is the base path of every versioned endpoint.
const APIPrefix = "/api/v1"

// authed rejects anonymous callers before h runs.
func authed(h http.HandlerFunc) http.Handler {
	return middleware.RequireUser(h)
}

// RegisterRoutes sets up the health and fallback routes for the application
func RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/", controllers.WelcomeHandler).Methods("GET")
	r.NotFoundHandler = http.HandlerFunc(controllers.NotFoundHandler)
}

// RegisterAPIRoutes registers every engagement route backed by app.
func RegisterAPIRoutes(r *mux.Router, app *services.Services, adminIDs []string) {
	RegisterRoutes(r)
	RegisterPostRoutes(r, app.Posts)
	RegisterCommentRoutes(r, app.Comments, app.Listing)
	RegisterReactionRoutes(r, app.Reactions, app.Listing)
	RegisterShareRoutes(r, app.Shares)
	RegisterNotificationRoutes(r, app.Notifications, adminIDs)
	RegisterThresholdRoutes(r, app.Thresholds, adminIDs)
}
