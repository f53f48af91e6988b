package routes

import (
	"net/http"

	"socialnet_server/controllers"
	"socialnet_server/middleware"
	"socialnet_server/services"

	"github.com/gorilla/mux"
)

// RegisterNotificationRoutes sets up routes for notifications under
// /api/v1/notification. Creating a notification is reserved to admins.
func RegisterNotificationRoutes(r *mux.Router, notificationService *services.NotificationService, adminIDs []string) {
	controller := controllers.NewNotificationController(notificationService)
	requireAdmin := middleware.RequireAdmin(adminIDs)

	notificationRouter := r.PathPrefix(APIPrefix + "/notification").Subrouter()
	notificationRouter.Use(middleware.RequireUser)
	notificationRouter.Handle("", requireAdmin(http.HandlerFunc(controller.CreateNotification))).Methods("POST")
	notificationRouter.HandleFunc("", controller.GetNotifications).Methods("GET")
	notificationRouter.HandleFunc("", controller.DeleteAll).Methods("DELETE")
	notificationRouter.HandleFunc("/unread/count", controller.GetUnreadCount).Methods("GET")
	notificationRouter.HandleFunc("/{notificationId}/read", controller.MarkRead).Methods("PUT")
	notificationRouter.HandleFunc("/{notificationId}", controller.DeleteNotification).Methods("DELETE")
}
