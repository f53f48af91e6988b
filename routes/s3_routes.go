package routes

import (
	"socialnet_server/controllers"
	"socialnet_server/services"

	"github.com/gorilla/mux"
)

// RegisterS3Routes sets up routes for media presigning
func RegisterS3Routes(r *mux.Router, mediaService *services.MediaService) {
	controller := controllers.NewMediaController(mediaService)

	mediaRouter := r.PathPrefix(APIPrefix + "/media").Subrouter()
	mediaRouter.HandleFunc("/generate-presigned-url", controller.GeneratePresignedURL).Methods("POST")
	mediaRouter.HandleFunc("/get-presigned-read-url", controller.GetPresignedReadURL).Methods("POST")
}
