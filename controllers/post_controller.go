package controllers

import (
	"net/http"

	"socialnet_server/services"
	"socialnet_server/utils"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// PostController handles API requests related to posts
type PostController struct {
	PostService *services.PostService
}

func NewPostController(postService *services.PostService) *PostController {
	return &PostController{PostService: postService}
}

// CreatePost creates a post owned by the caller
func (c *PostController) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input services.CreatePostInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		log.Warn().Err(err).Msg("⚠️ Invalid post payload")
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	post, err := c.PostService.CreatePost(ctx, userID, input)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"message": "Post created successfully",
		"post":    post,
	})
}

// GetPost returns a post the caller may see
func (c *PostController) GetPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	post, err := c.PostService.GetPost(ctx, mux.Vars(r)["postId"], viewer(r))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, post)
}
