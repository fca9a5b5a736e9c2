package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetAnalyticsHandler returns the dashboard over recorded searches.
// Query parameter "window" (a Go duration such as "1h") limits it to recent searches.
func (api *API) GetAnalyticsHandler(c *gin.Context) {
	if api.analytics == nil {
		SendNotSupportedError(c, "Search analytics")
		return
	}

	var since time.Time
	if raw := c.Query("window"); raw != "" {
		window, err := time.ParseDuration(raw)
		if err != nil || window <= 0 {
			result := &ValidationResult{Valid: true}
			result.AddError("window", "must be a positive duration such as 30m or 24h")
			SendValidationError(c, result)
			return
		}
		since = time.Now().Add(-window)
	}

	c.JSON(http.StatusOK, api.analytics.GetDashboardData(since))
}

// ResetAnalyticsHandler discards every recorded search.
func (api *API) ResetAnalyticsHandler(c *gin.Context) {
	if api.analytics == nil {
		SendNotSupportedError(c, "Search analytics")
		return
	}
	api.analytics.Reset()
	c.JSON(http.StatusOK, gin.H{"message": "Analytics reset"})
}
