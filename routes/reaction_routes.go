package routes

import (
	"socialnet_server/controllers"
	"socialnet_server/services"

	"github.com/gorilla/mux"
)

// RegisterReactionRoutes sets up routes for reactions under /api/v1/reaction
func RegisterReactionRoutes(r *mux.Router, reactionService *services.ReactionService, listing *services.ListingService) {
	controller := controllers.NewReactionController(reactionService, listing)

	reactionRouter := r.PathPrefix(APIPrefix + "/reaction").Subrouter()
	reactionRouter.Handle("/{postId}", authed(controller.React)).Methods("POST")
	reactionRouter.Handle("/{postId}", authed(controller.RemoveReaction)).Methods("DELETE")
	reactionRouter.HandleFunc("/{postId}", controller.GetReactions).Methods("GET")
	reactionRouter.HandleFunc("/{postId}/summary", controller.GetSummary).Methods("GET")
	reactionRouter.Handle("/{postId}/user", authed(controller.GetUserReaction)).Methods("GET")
}
