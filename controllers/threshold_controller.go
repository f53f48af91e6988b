package controllers

import (
	"net/http"

	"socialnet_server/apperr"
	"socialnet_server/models"
	"socialnet_server/services"
	"socialnet_server/utils"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// ThresholdController manages outlier threshold versions
type ThresholdController struct {
	ThresholdService *services.ThresholdService
}

func NewThresholdController(thresholdService *services.ThresholdService) *ThresholdController {
	return &ThresholdController{ThresholdService: thresholdService}
}

// GetCurrent returns the enabled threshold.
func (c *ThresholdController) GetCurrent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	current, err := c.ThresholdService.GetCurrentThreshold(ctx)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if current == nil {
		utils.WriteError(w, r, apperr.NotFound("no threshold is enabled"))
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, current)
}

func (c *ThresholdController) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	all, err := c.ThresholdService.ListThresholds(ctx)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"thresholds": all,
		"count":      len(all),
	})
}

func (c *ThresholdController) Create(w http.ResponseWriter, r *http.Request) {
	var input models.ThresholdInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	threshold, err := c.ThresholdService.CreateThreshold(ctx, input)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	log.Info().Str("by", viewer(r)).Str("thresholdId", threshold.ThresholdID).Msg("threshold created via API")
	utils.WriteJSONResponse(w, http.StatusCreated, threshold)
}

func (c *ThresholdController) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.ThresholdPatch
	if err := utils.DecodeJSON(r, &patch); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	threshold, err := c.ThresholdService.UpdateThreshold(ctx, mux.Vars(r)["thresholdId"], patch)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, threshold)
}

func (c *ThresholdController) Enable(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	threshold, err := c.ThresholdService.EnableThreshold(ctx, mux.Vars(r)["thresholdId"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, threshold)
}

func (c *ThresholdController) Disable(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	threshold, err := c.ThresholdService.DisableThreshold(ctx, mux.Vars(r)["thresholdId"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, threshold)
}

func (c *ThresholdController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	if err := c.ThresholdService.DeleteThreshold(ctx, mux.Vars(r)["thresholdId"]); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Threshold deleted successfully"})
}
