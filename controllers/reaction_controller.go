package controllers

import (
	"net/http"

	"socialnet_server/services"
	"socialnet_server/utils"

	"github.com/gorilla/mux"
)

type ReactionController struct {
	ReactionService *services.ReactionService
	Listing         *services.ListingService
}

func NewReactionController(reactionService *services.ReactionService, listing *services.ListingService) *ReactionController {
	return &ReactionController{ReactionService: reactionService, Listing: listing}
}

// React creates the caller's reaction or changes its type
func (c *ReactionController) React(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var request struct {
		ReactionType string `json:"reactionType"`
	}
	if err := utils.DecodeJSON(r, &request); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	result, err := c.ReactionService.React(ctx, mux.Vars(r)["postId"], userID, request.ReactionType)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	status, message := http.StatusOK, "Reaction updated successfully"
	if result.Created {
		status, message = http.StatusCreated, "Reaction added successfully"
	}
	utils.WriteJSONResponse(w, status, map[string]interface{}{
		"message":  message,
		"reaction": result.Reaction,
	})
}

// RemoveReaction removes the caller's reaction. The post owner may pass
// ?userId= to remove someone else's.
func (c *ReactionController) RemoveReaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	err := c.ReactionService.RemoveReaction(ctx, mux.Vars(r)["postId"], userID, r.URL.Query().Get("userId"))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Reaction removed successfully"})
}

func (c *ReactionController) GetReactions(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r, services.DefaultReactionsLimit)

	ctx, cancel := requestContext(r)
	defer cancel()

	result, err := c.Listing.ListReactions(ctx, mux.Vars(r)["postId"], viewer(r), page, limit, r.URL.Query().Get("reactionType"))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

func (c *ReactionController) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	summary, err := c.Listing.ReactionSummary(ctx, mux.Vars(r)["postId"], viewer(r))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, summary)
}

func (c *ReactionController) GetUserReaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	reaction, err := c.Listing.GetUserReaction(ctx, mux.Vars(r)["postId"], userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"reaction": reaction})
}
