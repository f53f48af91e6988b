package controllers

import (
	"net/http"

	"socialnet_server/services"
	"socialnet_server/utils"

	"github.com/gorilla/mux"
)

// CommentController serves comment writes and the merged comment listings
type CommentController struct {
	CommentService *services.CommentService
	Listing        *services.ListingService
}

func NewCommentController(commentService *services.CommentService, listing *services.ListingService) *CommentController {
	return &CommentController{CommentService: commentService, Listing: listing}
}

// CreateComment adds a comment or a reply to a post
func (c *CommentController) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input services.CreateCommentInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	comment, err := c.CommentService.CreateComment(ctx, mux.Vars(r)["postId"], userID, input)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"message": "Comment added successfully",
		"comment": comment,
	})
}

func (c *CommentController) GetComments(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r, services.DefaultCommentsLimit)

	ctx, cancel := requestContext(r)
	defer cancel()

	result, err := c.Listing.ListComments(ctx, mux.Vars(r)["postId"], viewer(r), page, limit)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

func (c *CommentController) GetReplies(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r, services.DefaultRepliesLimit)

	ctx, cancel := requestContext(r)
	defer cancel()

	result, err := c.Listing.ListReplies(ctx, mux.Vars(r)["commentId"], viewer(r), page, limit)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

// UpdateComment edits the caller's own comment
func (c *CommentController) UpdateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var request struct {
		Comment string `json:"comment"`
	}
	if err := utils.DecodeJSON(r, &request); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	comment, err := c.CommentService.UpdateComment(ctx, mux.Vars(r)["commentId"], userID, request.Comment)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message": "Comment updated successfully",
		"comment": comment,
	})
}

func (c *CommentController) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := c.CommentService.DeleteComment(ctx, mux.Vars(r)["commentId"], userID); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Comment deleted successfully"})
}
