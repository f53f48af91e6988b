package routes

import (
	"socialnet_server/controllers"
	"socialnet_server/services"

	"github.com/gorilla/mux"
)

// RegisterPostRoutes sets up routes for posts under /api/v1/post
func RegisterPostRoutes(r *mux.Router, postService *services.PostService) {
	controller := controllers.NewPostController(postService)

	postRouter := r.PathPrefix(APIPrefix + "/post").Subrouter()
	postRouter.Handle("/create", authed(controller.CreatePost)).Methods("POST")
	postRouter.HandleFunc("/{postId}", controller.GetPost).Methods("GET")
}
