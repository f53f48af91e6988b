package routes

import (
	"socialnet_server/controllers"
	"socialnet_server/middleware"
	"socialnet_server/services"

	"github.com/gorilla/mux"
)

// RegisterThresholdRoutes sets up the admin routes for outlier thresholds
// under /api/v1/threshold
func RegisterThresholdRoutes(r *mux.Router, thresholdService *services.ThresholdService, adminIDs []string) {
	controller := controllers.NewThresholdController(thresholdService)

	thresholdRouter := r.PathPrefix(APIPrefix + "/threshold").Subrouter()
	thresholdRouter.Use(middleware.RequireAdmin(adminIDs))

	thresholdRouter.HandleFunc("/current", controller.GetCurrent).Methods("GET")
	thresholdRouter.HandleFunc("/all", controller.GetAll).Methods("GET")
	thresholdRouter.HandleFunc("", controller.Create).Methods("POST")
	thresholdRouter.HandleFunc("/{thresholdId}", controller.Update).Methods("PATCH")
	thresholdRouter.HandleFunc("/{thresholdId}/enable", controller.Enable).Methods("PATCH")
	thresholdRouter.HandleFunc("/{thresholdId}/disable", controller.Disable).Methods("PATCH")
	thresholdRouter.HandleFunc("/{thresholdId}", controller.Delete).Methods("DELETE")
}
