package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/searchlab/internal/analytics"
	"github.com/gcbaptista/searchlab/internal/logger"
	"github.com/gcbaptista/searchlab/internal/metrics"
	"github.com/gcbaptista/searchlab/services"
)

const defaultMaxBodyBytes = 1 << 20

// API holds dependencies for API handlers, primarily the preset manager.
type API struct {
	presets   services.PresetManager
	analytics *analytics.Service // optional search log
	logger    *slog.Logger
}

// NewAPI creates a new API handler structure.
func NewAPI(presets services.PresetManager, l *slog.Logger) *API {
	if l == nil {
		l = logger.WithComponent("api")
	}
	return &API{presets: presets, logger: l}
}

// RouterOptions configures the middleware chain built by NewRouter.
type RouterOptions struct {
	Metrics        *metrics.Metrics   // nil disables /metrics and request metrics
	Analytics      *analytics.Service // nil disables search tracking
	Logger         *slog.Logger
	AllowedOrigins []string // empty allows every origin
	RateLimit      float64  // requests per second; 0 disables limiting
	RateBurst      int
	MaxBodyBytes   int64
}

// NewRouter builds a gin engine with the standard middleware chain and every route.
func NewRouter(presets services.PresetManager, opts RouterOptions) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = logger.WithComponent("api")
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(opts.Logger))
	if opts.Metrics != nil {
		router.Use(MetricsMiddleware(opts.Metrics))
	}
	router.Use(CORSMiddleware(opts.AllowedOrigins), RequestSizeLimitMiddleware(opts.MaxBodyBytes))
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = int(opts.RateLimit) + 1
		}
		router.Use(RateLimitMiddleware(opts.RateLimit, burst))
	}

	apiHandler := NewAPI(presets, opts.Logger)
	apiHandler.analytics = opts.Analytics
	SetupRoutes(router, apiHandler)
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	return router
}

// SetupRoutes defines all the API routes of the test bench.
func SetupRoutes(router *gin.Engine, apiHandler *API) {
	router.GET("/health", apiHandler.HealthCheckHandler)

	analyticsRoutes := router.Group("/analytics")
	{
		analyticsRoutes.GET("", apiHandler.GetAnalyticsHandler)      // Aggregated view over recorded searches
		analyticsRoutes.DELETE("", apiHandler.ResetAnalyticsHandler) // Discard recorded searches
	}

	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", apiHandler.ListJobsHandler)            // List jobs of every preset
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)       // Get job status by ID
		jobRoutes.DELETE("/:jobId", apiHandler.CancelJobHandler) // Cancel a pending or running job
	}

	presetRoutes := router.Group("/presets")
	{
		presetRoutes.GET("", apiHandler.ListPresetsHandler)                      // List built presets
		presetRoutes.GET("/:name", apiHandler.GetPresetHandler)                  // Describe one preset
		presetRoutes.DELETE("/:name", apiHandler.DropPresetHandler)              // Drop the index of a preset
		presetRoutes.GET("/:name/stats", apiHandler.GetPresetStatsHandler)       // Per-field index statistics
		presetRoutes.GET("/:name/jobs", apiHandler.ListJobsHandler)              // List jobs of a preset
		presetRoutes.POST("/:name/_build", apiHandler.BuildPresetHandler)        // (Re)build a preset in the background
		presetRoutes.POST("/:name/_search", apiHandler.SearchHandler)            // Search one preset
		presetRoutes.POST("/:name/_multi_search", apiHandler.MultiSearchHandler) // Run named searches on one preset
	}
}

// HealthCheckHandler reports liveness and the number of built presets.
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"presets": len(api.presets.ListPresets()),
	})
}

// ListPresetsHandler lists every built preset.
func (api *API) ListPresetsHandler(c *gin.Context) {
	presets := api.presets.ListPresets()
	c.JSON(http.StatusOK, gin.H{
		"presets": presets,
		"total":   len(presets),
	})
}

// GetPresetHandler describes one built preset.
func (api *API) GetPresetHandler(c *gin.Context) {
	accessor, ok := api.lookupPreset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, accessor.Info())
}

// GetPresetStatsHandler returns the per-field statistics of a preset's index.
func (api *API) GetPresetStatsHandler(c *gin.Context) {
	accessor, ok := api.lookupPreset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"preset": accessor.Info(),
		"stats":  accessor.Stats(),
	})
}

// BuildPresetHandler starts a background build of a named preset.
func (api *API) BuildPresetHandler(c *gin.Context) {
	name := c.Param("name")
	if result := ValidatePresetName(name); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	builder, ok := api.presets.(services.PresetBuilder)
	if !ok {
		SendNotSupportedError(c, "Building presets")
		return
	}

	jobID, err := builder.BuildPresetAsync(name)
	if err != nil {
		SendServiceError(c, "build preset", err)
		return
	}

	api.logger.Info("preset build accepted", "preset", name, "job_id", jobID)
	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Build started for preset '" + name + "'",
		"job_id":  jobID,
	})
}

// DropPresetHandler removes the index of a preset.
func (api *API) DropPresetHandler(c *gin.Context) {
	name := c.Param("name")
	if result := ValidatePresetName(name); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	builder, ok := api.presets.(services.PresetBuilder)
	if !ok {
		SendNotSupportedError(c, "Dropping presets")
		return
	}

	if err := builder.DropPreset(name); err != nil {
		SendServiceError(c, "drop preset", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Preset '" + name + "' dropped"})
}

// lookupPreset validates the :name parameter and resolves it, writing the error response on failure.
func (api *API) lookupPreset(c *gin.Context) (services.PresetAccessor, bool) {
	name := c.Param("name")
	if result := ValidatePresetName(name); result.HasErrors() {
		SendValidationError(c, result)
		return nil, false
	}
	accessor, err := api.presets.GetPreset(name)
	if err != nil {
		SendServiceError(c, "get preset", err)
		return nil, false
	}
	return accessor, true
}
