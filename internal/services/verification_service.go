package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"incident-verifier/internal/config"
	"incident-verifier/internal/logger"
	"incident-verifier/internal/models"
	"incident-verifier/internal/verify"
	"incident-verifier/pkg/kafka"
)

// VerificationServiceInterface defines the interface for verification job
// operations
type VerificationServiceInterface interface {
	CreateVerificationJob(incidentID uuid.UUID, correlationID string) (*VerificationJobResponse, error)
	GetJobStatus(jobID uuid.UUID) (*JobStatusResponse, error)
	ListVerificationResults(page, perPage int) ([]*VerificationResultResponse, int64, error)
	GetVerificationResults(verificationID uuid.UUID) (*VerificationResultResponse, error)
	UpdateJobStatus(jobID uuid.UUID, status string, errorMessage string) error
	CompleteVerification(jobID uuid.UUID, verdict verify.FusedVerdict) error
}

// JobPublisher is the producer side of the job queue
type JobPublisher interface {
	PublishVerificationJob(ctx context.Context, msg kafka.VerificationJobMessage) error
	Close() error
}

type VerificationService struct {
	db        *gorm.DB
	config    *config.Config
	publisher JobPublisher
}

func NewVerificationService(db *gorm.DB, cfg *config.Config, publisher JobPublisher) *VerificationService {
	return &VerificationService{
		db:        db,
		config:    cfg,
		publisher: publisher,
	}
}

// VerificationJobResponse represents the job creation response
type VerificationJobResponse struct {
	JobID      uuid.UUID `json:"job_id"`
	IncidentID uuid.UUID `json:"incident_id"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
}

// JobStatusResponse represents the job status polling response
type JobStatusResponse struct {
	JobID        uuid.UUID  `json:"job_id"`
	IncidentID   uuid.UUID  `json:"incident_id"`
	Status       string     `json:"status"` // pending, processing, completed, failed
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
}

// VerificationResultResponse represents complete verification results
type VerificationResultResponse struct {
	ID                uuid.UUID              `json:"id"`
	JobID             uuid.UUID              `json:"job_id"`
	IncidentID        uuid.UUID              `json:"incident_id"`
	Status            string                 `json:"status"`
	Verdict           *string                `json:"verdict,omitempty"`
	MainMessage       *string                `json:"main_message,omitempty"`
	Confidence        *int                   `json:"confidence,omitempty"`
	AuthenticityScore *float64               `json:"authenticity_score,omitempty"`
	AttentionWeights  map[string]float64     `json:"attention_weights,omitempty"`
	Explanation       *string                `json:"explanation,omitempty"`
	Contradictions    []ContradictionDetail  `json:"contradictions"`
	ResultDetail      *verify.FusedVerdict   `json:"result_detail,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	CompletedAt       *time.Time             `json:"completed_at,omitempty"`
	ClaimText         string                 `json:"claim_text,omitempty"`
}

// ContradictionDetail represents one stored contradiction
type ContradictionDetail struct {
	Kind        string `json:"kind"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Confidence  int    `json:"confidence"`
}

// CreateVerificationJob creates a verification record and queues the job
func (s *VerificationService) CreateVerificationJob(incidentID uuid.UUID, correlationID string) (*VerificationJobResponse, error) {
	log := logger.WithCorrelationID(correlationID)

	var incident models.Incident
	if err := s.db.Where("id = ?", incidentID).First(&incident).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			log.WithField("incident_id", incidentID).Error("Incident not found for verification")
			return nil, fmt.Errorf("incident %s not found", incidentID)
		}
		logger.LogErrorWithStackAndCorrelation(err, correlationID, map[string]interface{}{
			"incident_id": incidentID,
			"operation":   "find_incident_for_verification",
		})
		return nil, fmt.Errorf("failed to find incident: %w", err)
	}

	verification := &models.Verification{
		IncidentID: incidentID,
		Status:     models.StatusPending,
	}
	if err := s.db.Create(verification).Error; err != nil {
		logger.LogErrorWithStackAndCorrelation(err, correlationID, map[string]interface{}{
			"incident_id": incidentID,
			"operation":   "create_verification",
		})
		return nil, fmt.Errorf("failed to create verification job: %w", err)
	}

	message := kafka.VerificationJobMessage{
		JobID:         verification.JobID.String(),
		IncidentID:    incidentID.String(),
		CorrelationID: correlationID,
		SubmittedAt:   time.Now(),
	}
	if err := s.publisher.PublishVerificationJob(context.Background(), message); err != nil {
		// The job row stays pending; a requeue sweep can pick it up later.
		logger.LogErrorWithStackAndCorrelation(err, correlationID, map[string]interface{}{
			"job_id":    verification.JobID,
			"operation": "publish_verification_job",
		})
		return nil, fmt.Errorf("failed to queue verification job: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"job_id":      verification.JobID,
		"incident_id": incidentID,
	}).Info("Verification job created")

	return &VerificationJobResponse{
		JobID:      verification.JobID,
		IncidentID: incidentID,
		Status:     models.StatusPending,
		Message:    "Verification job queued",
	}, nil
}

// GetJobStatus returns the lifecycle state of one job
func (s *VerificationService) GetJobStatus(jobID uuid.UUID) (*JobStatusResponse, error) {
	var verification models.Verification
	if err := s.db.Where("job_id = ?", jobID).First(&verification).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("job %s not found", jobID)
		}
		return nil, fmt.Errorf("failed to load job: %w", err)
	}

	return &JobStatusResponse{
		JobID:        verification.JobID,
		IncidentID:   verification.IncidentID,
		Status:       verification.Status,
		CreatedAt:    verification.CreatedAt,
		CompletedAt:  verification.CompletedAt,
		ErrorMessage: verification.ErrorMessage,
	}, nil
}

// ListVerificationResults returns a page of results, newest first
func (s *VerificationService) ListVerificationResults(page, perPage int) ([]*VerificationResultResponse, int64, error) {
	var total int64
	if err := s.db.Model(&models.Verification{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count verifications: %w", err)
	}

	var verifications []models.Verification
	offset := (page - 1) * perPage
	err := s.db.Preload("Contradictions").Preload("Incident").
		Order("created_at DESC").Offset(offset).Limit(perPage).
		Find(&verifications).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list verifications: %w", err)
	}

	responses := make([]*VerificationResultResponse, 0, len(verifications))
	for i := range verifications {
		responses = append(responses, s.toResultResponse(&verifications[i]))
	}
	return responses, total, nil
}

// GetVerificationResults returns one verification with full detail
func (s *VerificationService) GetVerificationResults(verificationID uuid.UUID) (*VerificationResultResponse, error) {
	var verification models.Verification
	err := s.db.Preload("Contradictions").Preload("Incident").
		Where("id = ?", verificationID).First(&verification).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("verification %s not found", verificationID)
		}
		return nil, fmt.Errorf("failed to load verification: %w", err)
	}

	return s.toResultResponse(&verification), nil
}

// UpdateJobStatus transitions a job's lifecycle state
func (s *VerificationService) UpdateJobStatus(jobID uuid.UUID, status string, errorMessage string) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if errorMessage != "" {
		updates["error_message"] = errorMessage
	}
	if status == models.StatusCompleted || status == models.StatusFailed {
		now := time.Now()
		updates["completed_at"] = &now
	}

	result := s.db.Model(&models.Verification{}).Where("job_id = ?", jobID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update job status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("job %s not found", jobID)
	}
	return nil
}

// CompleteVerification persists the fused verdict and its contradictions
func (s *VerificationService) CompleteVerification(jobID uuid.UUID, verdict verify.FusedVerdict) error {
	var verification models.Verification
	if err := s.db.Where("job_id = ?", jobID).First(&verification).Error; err != nil {
		return fmt.Errorf("failed to load job %s: %w", jobID, err)
	}

	detailJSON, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("failed to serialize verdict: %w", err)
	}
	weightsJSON, err := json.Marshal(verdict.AttentionWeights)
	if err != nil {
		return fmt.Errorf("failed to serialize attention weights: %w", err)
	}

	now := time.Now()
	verdictType := string(verdict.Verdict)
	status := models.StatusCompleted
	if verdict.Verdict == verify.VerdictError {
		status = models.StatusFailed
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":             status,
			"verdict":            &verdictType,
			"main_message":       &verdict.MainMessage,
			"confidence":         &verdict.Confidence,
			"authenticity_score": &verdict.AuthenticityScore,
			"attention_weights":  datatypes.JSON(weightsJSON),
			"explanation":        &verdict.Explanation,
			"result_detail":      datatypes.JSON(detailJSON),
			"completed_at":       &now,
		}
		if err := tx.Model(&verification).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to persist verdict: %w", err)
		}

		for _, contradiction := range verdict.Contradictions {
			record := models.ContradictionRecord{
				VerificationID: verification.ID,
				Kind:           string(contradiction.Kind),
				Severity:       string(contradiction.Severity),
				Description:    contradiction.Description,
				Confidence:     contradiction.Confidence,
			}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to persist contradiction: %w", err)
			}
		}
		return nil
	})
}

func (s *VerificationService) toResultResponse(verification *models.Verification) *VerificationResultResponse {
	response := &VerificationResultResponse{
		ID:                verification.ID,
		JobID:             verification.JobID,
		IncidentID:        verification.IncidentID,
		Status:            verification.Status,
		Verdict:           verification.Verdict,
		MainMessage:       verification.MainMessage,
		Confidence:        verification.Confidence,
		AuthenticityScore: verification.AuthenticityScore,
		Explanation:       verification.Explanation,
		Contradictions:    make([]ContradictionDetail, 0, len(verification.Contradictions)),
		CreatedAt:         verification.CreatedAt,
		CompletedAt:       verification.CompletedAt,
		ClaimText:         verification.Incident.ClaimText,
	}

	if len(verification.AttentionWeights) > 0 {
		_ = json.Unmarshal(verification.AttentionWeights, &response.AttentionWeights)
	}
	if len(verification.ResultDetail) > 0 {
		var detail verify.FusedVerdict
		if json.Unmarshal(verification.ResultDetail, &detail) == nil {
			response.ResultDetail = &detail
		}
	}

	for _, record := range verification.Contradictions {
		response.Contradictions = append(response.Contradictions, ContradictionDetail{
			Kind:        record.Kind,
			Severity:    record.Severity,
			Description: record.Description,
			Confidence:  record.Confidence,
		})
	}

	return response
}
