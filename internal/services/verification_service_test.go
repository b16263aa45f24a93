package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incident-verifier/internal/config"
	"incident-verifier/internal/models"
	"incident-verifier/internal/verify"
	"incident-verifier/pkg/kafka"
)

type fakePublisher struct {
	published []kafka.VerificationJobMessage
	err       error
}

func (p *fakePublisher) PublishVerificationJob(ctx context.Context, msg kafka.VerificationJobMessage) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func createTestIncident(t *testing.T, service *VerificationService, claim string) uuid.UUID {
	incident := &models.Incident{ClaimText: claim, ContentHash: uuid.NewString()}
	require.NoError(t, service.db.Create(incident).Error)
	return incident.ID
}

func TestCreateVerificationJob_QueuesMessage(t *testing.T) {
	db := setupServiceDB(t)
	publisher := &fakePublisher{}
	service := NewVerificationService(db, &config.Config{}, publisher)
	incidentID := createTestIncident(t, service, "Flood in Chennai")

	response, err := service.CreateVerificationJob(incidentID, "corr-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, response.Status)
	assert.Equal(t, incidentID, response.IncidentID)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, response.JobID.String(), publisher.published[0].JobID)
	assert.Equal(t, incidentID.String(), publisher.published[0].IncidentID)
	assert.Equal(t, "corr-1", publisher.published[0].CorrelationID)
}

func TestCreateVerificationJob_UnknownIncident(t *testing.T) {
	db := setupServiceDB(t)
	service := NewVerificationService(db, &config.Config{}, &fakePublisher{})

	_, err := service.CreateVerificationJob(uuid.New(), "corr-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCreateVerificationJob_PublishFailure(t *testing.T) {
	db := setupServiceDB(t)
	publisher := &fakePublisher{err: fmt.Errorf("broker unreachable")}
	service := NewVerificationService(db, &config.Config{}, publisher)
	incidentID := createTestIncident(t, service, "Flood in Chennai")

	_, err := service.CreateVerificationJob(incidentID, "corr-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to queue verification job")
}

func TestGetJobStatus(t *testing.T) {
	db := setupServiceDB(t)
	service := NewVerificationService(db, &config.Config{}, &fakePublisher{})
	incidentID := createTestIncident(t, service, "Flood in Chennai")

	created, err := service.CreateVerificationJob(incidentID, "corr-1")
	require.NoError(t, err)

	status, err := service.GetJobStatus(created.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, status.Status)
	assert.Equal(t, incidentID, status.IncidentID)
	assert.Nil(t, status.CompletedAt)
}

func TestUpdateJobStatus_CompletedSetsCompletedAt(t *testing.T) {
	db := setupServiceDB(t)
	service := NewVerificationService(db, &config.Config{}, &fakePublisher{})
	incidentID := createTestIncident(t, service, "Flood in Chennai")

	created, err := service.CreateVerificationJob(incidentID, "corr-1")
	require.NoError(t, err)

	require.NoError(t, service.UpdateJobStatus(created.JobID, models.StatusProcessing, ""))
	status, err := service.GetJobStatus(created.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, status.Status)
	assert.Nil(t, status.CompletedAt)

	require.NoError(t, service.UpdateJobStatus(created.JobID, models.StatusFailed, "engine panic"))
	status, err = service.GetJobStatus(created.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, status.Status)
	assert.NotNil(t, status.CompletedAt)
	require.NotNil(t, status.ErrorMessage)
	assert.Equal(t, "engine panic", *status.ErrorMessage)
}

func TestUpdateJobStatus_UnknownJob(t *testing.T) {
	db := setupServiceDB(t)
	service := NewVerificationService(db, &config.Config{}, &fakePublisher{})

	err := service.UpdateJobStatus(uuid.New(), models.StatusProcessing, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCompleteVerification_PersistsVerdictAndContradictions(t *testing.T) {
	db := setupServiceDB(t)
	service := NewVerificationService(db, &config.Config{}, &fakePublisher{})
	incidentID := createTestIncident(t, service, "Flood in Chennai claimed for June 2023")

	created, err := service.CreateVerificationJob(incidentID, "corr-1")
	require.NoError(t, err)

	verdict := verify.FusedVerdict{
		Verdict:           verify.CriticalContradictions,
		MainMessage:       "Temporal contradiction detected",
		Confidence:        95,
		AuthenticityScore: 22.5,
		AttentionWeights:  map[string]float64{"text": 0.4, "temporal": 0.6},
		Explanation:       "The claimed year does not match the corroborated event date",
		Contradictions: []verify.Contradiction{
			{
				Kind:        verify.TemporalMismatch,
				Severity:    verify.SeverityCritical,
				Description: "Claimed 2023 but the event happened in 2024",
				Confidence:  95,
			},
		},
	}
	require.NoError(t, service.CompleteVerification(created.JobID, verdict))

	var verification models.Verification
	require.NoError(t, db.First(&verification, "job_id = ?", created.JobID).Error)

	result, err := service.GetVerificationResults(verification.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, result.Status)
	require.NotNil(t, result.Verdict)
	assert.Equal(t, string(verify.CriticalContradictions), *result.Verdict)
	require.NotNil(t, result.Confidence)
	assert.Equal(t, 95, *result.Confidence)
	require.NotNil(t, result.AuthenticityScore)
	assert.InDelta(t, 22.5, *result.AuthenticityScore, 1e-9)
	assert.InDelta(t, 0.6, result.AttentionWeights["temporal"], 1e-9)
	assert.NotNil(t, result.CompletedAt)

	require.Len(t, result.Contradictions, 1)
	assert.Equal(t, string(verify.TemporalMismatch), result.Contradictions[0].Kind)
	assert.Equal(t, string(verify.SeverityCritical), result.Contradictions[0].Severity)

	require.NotNil(t, result.ResultDetail)
	assert.Equal(t, verify.CriticalContradictions, result.ResultDetail.Verdict)
	assert.Equal(t, "Flood in Chennai claimed for June 2023", result.ClaimText)
}

func TestCompleteVerification_ErrorVerdictMarksJobFailed(t *testing.T) {
	db := setupServiceDB(t)
	service := NewVerificationService(db, &config.Config{}, &fakePublisher{})
	incidentID := createTestIncident(t, service, "Flood in Chennai")

	created, err := service.CreateVerificationJob(incidentID, "corr-1")
	require.NoError(t, err)

	verdict := verify.FusedVerdict{
		Verdict:          verify.VerdictError,
		MainMessage:      "Verification failed due to an internal error",
		AttentionWeights: map[string]float64{},
	}
	require.NoError(t, service.CompleteVerification(created.JobID, verdict))

	status, err := service.GetJobStatus(created.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, status.Status)
}

func TestListVerificationResults_Pagination(t *testing.T) {
	db := setupServiceDB(t)
	service := NewVerificationService(db, &config.Config{}, &fakePublisher{})

	for i := 0; i < 3; i++ {
		incidentID := createTestIncident(t, service, fmt.Sprintf("Claim %d", i))
		_, err := service.CreateVerificationJob(incidentID, "corr-1")
		require.NoError(t, err)
	}

	page, total, err := service.ListVerificationResults(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	page, _, err = service.ListVerificationResults(2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}
