package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/searchlab/services"
)

// SearchHandler handles a search against one preset.
// Request Body: services.SearchRequest
func (api *API) SearchHandler(c *gin.Context) {
	accessor, ok := api.lookupPreset(c)
	if !ok {
		return
	}

	var req services.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if result := ValidateSearchRequest(req, ""); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	results, err := accessor.Search(req)
	if err != nil {
		SendServiceError(c, "search", err)
		return
	}
	if api.analytics != nil {
		api.analytics.TrackSearch(accessor.Info().Name, req, results)
	}

	c.JSON(http.StatusOK, results)
}

// MultiSearchHandler handles several named searches against one preset.
// Request Body: services.MultiSearchRequest
func (api *API) MultiSearchHandler(c *gin.Context) {
	accessor, ok := api.lookupPreset(c)
	if !ok {
		return
	}

	var req services.MultiSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if result := ValidateMultiSearchRequest(req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	results, err := accessor.MultiSearch(c.Request.Context(), req)
	if err != nil {
		SendServiceError(c, "multi-search", err)
		return
	}
	if api.analytics != nil {
		name := accessor.Info().Name
		for _, nq := range req.Queries {
			api.analytics.TrackSearch(name, nq.SearchRequest, results.Results[nq.Name])
		}
	}

	c.JSON(http.StatusOK, results)
}
