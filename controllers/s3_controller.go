package controllers

import (
	"net/http"

	"socialnet_server/services"
	"socialnet_server/utils"

	"github.com/rs/zerolog/log"
)

// MediaController hands out presigned S3 URLs
type MediaController struct {
	MediaService *services.MediaService
}

func NewMediaController(mediaService *services.MediaService) *MediaController {
	return &MediaController{MediaService: mediaService}
}

// GeneratePresignedURL generates a presigned URL for comment or post media uploads
func (c *MediaController) GeneratePresignedURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Scope    string `json:"scope"`
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if payload.Scope == "" {
		payload.Scope = "post"
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	url, key, err := c.MediaService.GenerateUploadURL(ctx, payload.Scope, payload.FileName, payload.FileType)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	log.Debug().Str("key", key).Msg("presigned upload URL issued")
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"url": url, "fileName": key})
}

// GetPresignedReadURL generates a presigned URL for reading S3 objects
func (c *MediaController) GetPresignedReadURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Key string `json:"key"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	url, err := c.MediaService.GenerateReadURL(ctx, payload.Key)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"url": url})
}
