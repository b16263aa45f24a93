package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"incident-verifier/internal/logger"
	"incident-verifier/internal/services"
)

type VerificationHandler struct {
	verificationService services.VerificationServiceInterface
}

func NewVerificationHandler(verificationService services.VerificationServiceInterface) *VerificationHandler {
	return &VerificationHandler{
		verificationService: verificationService,
	}
}

// StartVerification queues a verification job for an incident
func (h *VerificationHandler) StartVerification(c *gin.Context) {
	correlationID := getCorrelationID(c)

	incidentID, err := uuid.Parse(c.Param("incident_id"))
	if err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"correlation_id":  correlationID,
			"incident_id_raw": c.Param("incident_id"),
			"error":           err.Error(),
		}).Error("Invalid incident ID format")

		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":           "INVALID_UUID",
				"message":        "Invalid incident ID format",
				"correlation_id": correlationID,
			},
		})
		return
	}

	logger.Log.WithFields(map[string]interface{}{
		"correlation_id": correlationID,
		"incident_id":    incidentID,
		"client_ip":      c.ClientIP(),
	}).Info("Verification job request received")

	response, err := h.verificationService.CreateVerificationJob(incidentID, correlationID)
	if err != nil {
		statusCode := http.StatusBadRequest
		errorCode := "VERIFICATION_CREATION_ERROR"

		if contains(err.Error(), "not found") {
			statusCode = http.StatusNotFound
			errorCode = "INCIDENT_NOT_FOUND"
		}

		logger.LogErrorWithStackAndCorrelation(err, correlationID, map[string]interface{}{
			"incident_id": incidentID,
			"error_code":  errorCode,
			"status_code": statusCode,
			"operation":   "verification_job_creation",
		})

		c.JSON(statusCode, gin.H{
			"error": gin.H{
				"code":           errorCode,
				"message":        err.Error(),
				"correlation_id": correlationID,
			},
		})
		return
	}

	logger.Log.WithFields(map[string]interface{}{
		"correlation_id": correlationID,
		"job_id":         response.JobID,
		"incident_id":    response.IncidentID,
		"status":         response.Status,
	}).Info("Verification job created successfully")

	c.JSON(http.StatusAccepted, response)
}

// GetJobStatus returns the lifecycle state of a verification job
func (h *VerificationHandler) GetJobStatus(c *gin.Context) {
	correlationID := getCorrelationID(c)

	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_UUID",
				"message": "Invalid job ID format",
			},
		})
		return
	}

	response, err := h.verificationService.GetJobStatus(jobID)
	if err != nil {
		statusCode := http.StatusNotFound
		errorCode := "JOB_NOT_FOUND"

		if !contains(err.Error(), "not found") {
			statusCode = http.StatusInternalServerError
			errorCode = "INTERNAL_ERROR"
		}

		logger.LogErrorWithStackAndCorrelation(err, correlationID, map[string]interface{}{
			"job_id":      jobID,
			"error_code":  errorCode,
			"status_code": statusCode,
			"operation":   "get_job_status",
		})

		c.JSON(statusCode, gin.H{
			"error": gin.H{
				"code":           errorCode,
				"message":        err.Error(),
				"correlation_id": correlationID,
			},
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetVerificationResults returns complete verification results
func (h *VerificationHandler) GetVerificationResults(c *gin.Context) {
	correlationID := getCorrelationID(c)

	verificationID, err := uuid.Parse(c.Param("verification_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_UUID",
				"message": "Invalid verification ID format",
			},
		})
		return
	}

	response, err := h.verificationService.GetVerificationResults(verificationID)
	if err != nil {
		statusCode := http.StatusNotFound
		errorCode := "VERIFICATION_NOT_FOUND"

		if !contains(err.Error(), "not found") {
			statusCode = http.StatusInternalServerError
			errorCode = "INTERNAL_ERROR"
		}

		logger.LogErrorWithStackAndCorrelation(err, correlationID, map[string]interface{}{
			"verification_id": verificationID,
			"error_code":      errorCode,
			"status_code":     statusCode,
			"operation":       "get_verification_results",
		})

		c.JSON(statusCode, gin.H{
			"error": gin.H{
				"code":           errorCode,
				"message":        err.Error(),
				"correlation_id": correlationID,
			},
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListVerificationResults returns a paginated list of verification results
func (h *VerificationHandler) ListVerificationResults(c *gin.Context) {
	page := getQueryParamInt(c, "page", 1)
	perPage := getQueryParamInt(c, "per_page", 20)

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	results, total, err := h.verificationService.ListVerificationResults(page, perPage)
	if err != nil {
		logger.LogErrorWithStack(err, map[string]interface{}{
			"operation": "list_verification_results",
			"page":      page,
			"per_page":  perPage,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to retrieve verification results",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results":  results,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}
