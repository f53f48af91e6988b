package routes

import (
	"socialnet_server/controllers"
	"socialnet_server/services"

	"github.com/gorilla/mux"
)

// RegisterCommentRoutes sets up routes for comments under /api/v1/comment
func RegisterCommentRoutes(r *mux.Router, commentService *services.CommentService, listing *services.ListingService) {
	controller := controllers.NewCommentController(commentService, listing)

	commentRouter := r.PathPrefix(APIPrefix + "/comment").Subrouter()
	commentRouter.Handle("/{postId}", authed(controller.CreateComment)).Methods("POST")
	commentRouter.HandleFunc("/{postId}", controller.GetComments).Methods("GET")
	commentRouter.HandleFunc("/{commentId}/replies", controller.GetReplies).Methods("GET")
	commentRouter.Handle("/{commentId}", authed(controller.UpdateComment)).Methods("PUT")
	commentRouter.Handle("/{commentId}", authed(controller.DeleteComment)).Methods("DELETE")
}
