package controllers

import (
	"net/http"

	"socialnet_server/services"
	"socialnet_server/utils"

	"github.com/gorilla/mux"
)

const defaultSharesLimit = 20

type ShareController struct {
	ShareService *services.ShareService
}

func NewShareController(shareService *services.ShareService) *ShareController {
	return &ShareController{ShareService: shareService}
}

func (c *ShareController) SharePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	share, err := c.ShareService.SharePost(ctx, mux.Vars(r)["postId"], userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"message": "Post shared successfully",
		"share":   share,
	})
}

func (c *ShareController) UnsharePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := c.ShareService.UnsharePost(ctx, mux.Vars(r)["postId"], userID); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Post unshared successfully"})
}

func (c *ShareController) GetPostShares(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r, defaultSharesLimit)

	ctx, cancel := requestContext(r)
	defer cancel()

	result, err := c.ShareService.ListPostShares(ctx, mux.Vars(r)["postId"], viewer(r), page, limit)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

func (c *ShareController) GetUserShares(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	page, limit := pagination(r, defaultSharesLimit)

	ctx, cancel := requestContext(r)
	defer cancel()

	result, err := c.ShareService.ListUserShares(ctx, userID, page, limit)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

func (c *ShareController) CheckShared(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	shared, err := c.ShareService.HasShared(ctx, mux.Vars(r)["postId"], userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]bool{"hasShared": shared})
}
