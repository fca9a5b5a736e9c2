package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/searchlab/model"
	"github.com/gcbaptista/searchlab/services"
)

// GetJobHandler handles requests to get job status by ID
func (api *API) GetJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")
	if result := ValidateJobID(jobID); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	tracker, ok := api.presets.(services.JobTracker)
	if !ok {
		SendNotSupportedError(c, "Job tracking")
		return
	}

	job, err := tracker.GetJob(jobID)
	if err != nil {
		SendServiceError(c, "get job", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListJobsHandler lists the jobs of the :name preset, or of every preset on /jobs.
// Query: status filters by job status.
func (api *API) ListJobsHandler(c *gin.Context) {
	name := c.Param("name")
	var statusFilter *model.JobStatus
	if statusParam := c.Query("status"); statusParam != "" {
		status := model.JobStatus(statusParam)
		statusFilter = &status
	}

	tracker, ok := api.presets.(services.JobTracker)
	if !ok {
		SendNotSupportedError(c, "Job tracking")
		return
	}

	jobs := tracker.ListJobs(name, statusFilter)
	c.JSON(http.StatusOK, gin.H{
		"jobs":   jobs,
		"preset": name,
		"total":  len(jobs),
	})
}

// CancelJobHandler cancels a pending or running job
func (api *API) CancelJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")
	if result := ValidateJobID(jobID); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	tracker, ok := api.presets.(services.JobTracker)
	if !ok {
		SendNotSupportedError(c, "Job tracking")
		return
	}

	if err := tracker.CancelJob(jobID); err != nil {
		if _, lookupErr := tracker.GetJob(jobID); lookupErr != nil {
			SendServiceError(c, "cancel job", lookupErr)
			return
		}
		SendError(c, http.StatusConflict, ErrorCodeJobExecutionFailed, err.Error())
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Cancellation requested for job '" + jobID + "'"})
}
