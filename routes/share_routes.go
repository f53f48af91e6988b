package routes

import (
	"socialnet_server/controllers"
	"socialnet_server/services"

	"github.com/gorilla/mux"
)

// RegisterShareRoutes sets up routes for shares under /api/v1/share
func RegisterShareRoutes(r *mux.Router, shareService *services.ShareService) {
	controller := controllers.NewShareController(shareService)

	shareRouter := r.PathPrefix(APIPrefix + "/share").Subrouter()
	// before /{postId}/shares so "user" is not taken as a post id
	shareRouter.Handle("/user/shares", authed(controller.GetUserShares)).Methods("GET")
	shareRouter.Handle("/{postId}", authed(controller.SharePost)).Methods("POST")
	shareRouter.Handle("/{postId}", authed(controller.UnsharePost)).Methods("DELETE")
	shareRouter.HandleFunc("/{postId}/shares", controller.GetPostShares).Methods("GET")
	shareRouter.Handle("/{postId}/check", authed(controller.CheckShared)).Methods("GET")
}
