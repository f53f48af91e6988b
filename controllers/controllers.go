package controllers

import (
	"context"
	"net/http"
	"time"

	"socialnet_server/apperr"
	"socialnet_server/middleware"
	"socialnet_server/models"
	"socialnet_server/utils"
)

// requestTimeout bounds the store work done for a single request.
const requestTimeout = 5 * time.Second

var startedAt = time.Now()

// HealthCheckHandler provides a basic health check
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// WelcomeHandler reports that the server is up
func WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "OK",
		"message":   "Server is up",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(startedAt).Round(time.Second).Seconds(),
	})
}

// NotFoundHandler answers unknown routes.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusNotFound, map[string]string{"error": "route does not exist"})
}

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

// currentUser returns the authenticated user id or writes a 401.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := middleware.UserID(r.Context())
	if id == "" {
		utils.WriteError(w, r, apperr.ErrUnauthenticated)
		return "", false
	}
	return id, true
}

func pagination(r *http.Request, defaultLimit int) (int, int) {
	return utils.Pagination(r, defaultLimit, models.MaxPageLimit)
}

// viewer is the caller's id for read endpoints that also serve anonymous users.
func viewer(r *http.Request) string {
	return middleware.UserID(r.Context())
}
