package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"incident-verifier/internal/logger"
	"incident-verifier/internal/services"
)

type IncidentHandler struct {
	incidentService services.IncidentServiceInterface
}

func NewIncidentHandler(incidentService services.IncidentServiceInterface) *IncidentHandler {
	return &IncidentHandler{
		incidentService: incidentService,
	}
}

// SubmitIncident accepts a multipart form with the claim text, an optional
// image upload, and an optional public image URL
func (h *IncidentHandler) SubmitIncident(c *gin.Context) {
	correlationID := getCorrelationID(c)

	logger.Log.WithFields(map[string]interface{}{
		"correlation_id": correlationID,
		"client_ip":      c.ClientIP(),
	}).Info("Incident submission received")

	req := &services.SubmitIncidentRequest{
		ClaimText: c.PostForm("claim_text"),
		ImageURL:  c.PostForm("image_url"),
	}

	if file, err := c.FormFile("image"); err == nil {
		req.Image = file
	}

	response, err := h.incidentService.SubmitIncident(req, correlationID)
	if err != nil {
		statusCode := http.StatusBadRequest
		errorCode := "INCIDENT_VALIDATION_ERROR"

		if contains(err.Error(), "duplicate") {
			statusCode = http.StatusConflict
			errorCode = "DUPLICATE_INCIDENT"
		}

		logger.LogErrorWithStackAndCorrelation(err, correlationID, map[string]interface{}{
			"error_code":  errorCode,
			"status_code": statusCode,
			"operation":   "submit_incident",
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
		"incident_id":    response.IncidentID,
		"event_type":     response.EventType,
	}).Info("Incident submitted successfully")

	c.JSON(http.StatusCreated, response)
}

// GetIncident returns a single incident
func (h *IncidentHandler) GetIncident(c *gin.Context) {
	incidentID, err := uuid.Parse(c.Param("incident_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_UUID",
				"message": "Invalid incident ID format",
			},
		})
		return
	}

	incident, err := h.incidentService.GetIncident(incidentID)
	if err != nil {
		statusCode := http.StatusNotFound
		errorCode := "INCIDENT_NOT_FOUND"

		if !contains(err.Error(), "not found") {
			statusCode = http.StatusInternalServerError
			errorCode = "INTERNAL_ERROR"
		}

		logger.LogErrorWithStack(err, map[string]interface{}{
			"incident_id": incidentID,
			"error_code":  errorCode,
			"status_code": statusCode,
			"operation":   "get_incident",
		})

		c.JSON(statusCode, gin.H{
			"error": gin.H{
				"code":    errorCode,
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, incident)
}

// ListIncidents returns a paginated list of incidents
func (h *IncidentHandler) ListIncidents(c *gin.Context) {
	page := getQueryParamInt(c, "page", 1)
	perPage := getQueryParamInt(c, "per_page", 20)

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	incidents, total, err := h.incidentService.ListIncidents(page, perPage)
	if err != nil {
		logger.LogErrorWithStack(err, map[string]interface{}{
			"operation": "list_incidents",
			"page":      page,
			"per_page":  perPage,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to retrieve incidents",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"incidents": incidents,
		"total":     total,
		"page":      page,
		"per_page":  perPage,
	})
}
