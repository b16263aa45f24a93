package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/google/uuid"

	"incident-verifier/internal/imagemeta"
	"incident-verifier/internal/logger"
	"incident-verifier/internal/models"
	"incident-verifier/internal/retrieval"
	"incident-verifier/internal/textproc"
	"incident-verifier/internal/verify"
	"incident-verifier/pkg/kafka"
)

// JobProcessor runs one queued verification job end to end: load the
// incident, gather evidence, run the verification engine, persist the
// verdict. Engine failures become failed jobs, never worker crashes.
type JobProcessor struct {
	incidents    IncidentServiceInterface
	verification VerificationServiceInterface
	retriever    retrieval.Retriever
	collector    EvidenceCollectorInterface
	orchestrator *verify.VerificationOrchestrator
	processor    *textproc.Processor

	maxEvidenceItems int
}

// NewJobProcessor wires the worker pipeline.
func NewJobProcessor(
	incidents IncidentServiceInterface,
	verification VerificationServiceInterface,
	retriever retrieval.Retriever,
	collector EvidenceCollectorInterface,
	orchestrator *verify.VerificationOrchestrator,
	maxEvidenceItems int,
) *JobProcessor {
	return &JobProcessor{
		incidents:        incidents,
		verification:     verification,
		retriever:        retriever,
		collector:        collector,
		orchestrator:     orchestrator,
		processor:        textproc.NewProcessor(),
		maxEvidenceItems: maxEvidenceItems,
	}
}

// ProcessJob handles one job message from the queue.
func (p *JobProcessor) ProcessJob(ctx context.Context, job *kafka.VerificationJobMessage) error {
	log := logger.WithCorrelationID(job.CorrelationID)

	jobID, err := uuid.Parse(job.JobID)
	if err != nil {
		return fmt.Errorf("invalid job ID %q: %w", job.JobID, err)
	}
	incidentID, err := uuid.Parse(job.IncidentID)
	if err != nil {
		p.failJob(jobID, fmt.Sprintf("invalid incident ID %q", job.IncidentID))
		return fmt.Errorf("invalid incident ID %q: %w", job.IncidentID, err)
	}

	if err := p.verification.UpdateJobStatus(jobID, models.StatusProcessing, ""); err != nil {
		return err
	}

	incident, err := p.incidents.GetIncident(incidentID)
	if err != nil {
		p.failJob(jobID, err.Error())
		return err
	}

	start := time.Now()
	verdict := p.runVerification(ctx, incident)

	log.WithFields(map[string]interface{}{
		"job_id":      jobID,
		"incident_id": incidentID,
		"verdict":     string(verdict.Verdict),
		"confidence":  verdict.Confidence,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Verification completed")

	if err := p.verification.CompleteVerification(jobID, verdict); err != nil {
		logger.LogErrorWithStackAndCorrelation(err, job.CorrelationID, map[string]interface{}{
			"job_id":    jobID,
			"operation": "complete_verification",
		})
		return err
	}
	return nil
}

// runVerification executes the evidence-gathering and fusion pipeline for
// one incident.
func (p *JobProcessor) runVerification(ctx context.Context, incident *models.Incident) verify.FusedVerdict {
	signal := p.textSignal(incident)
	query := p.processor.BuildSearchQuery(signal)
	topic := knowledgeTopic(signal)

	textEvidence := p.retriever.RetrieveEvidence(ctx, query, p.maxEvidenceItems, signal.Location, signal.EventType)
	external := p.collector.Collect(ctx, incident.ClaimText, topic)
	actualDate := corroboratedDate(external.News)

	userImage, imageDate := p.loadIncidentImage(incident)
	if userImage == nil {
		result := p.orchestrator.VerifyTextOnly(ctx, signal, textEvidence, &external)
		return wrapTextOnlyResult(result)
	}

	imageEvidence := p.retriever.RetrieveEvidence(ctx, query, p.maxEvidenceItems, signal.Location, signal.EventType)
	if incident.ImageURL != nil && *incident.ImageURL != "" {
		reverse := p.retriever.ReverseSearch(ctx, *incident.ImageURL)
		imageEvidence = append(imageEvidence, reverse.AllOccurrences...)
	}

	return p.orchestrator.VerifyTextAndImage(ctx, verify.Request{
		Text:          signal,
		UserImage:     userImage,
		TextEvidence:  textEvidence,
		ImageEvidence: imageEvidence,
		External:      &external,
		ActualDate:    actualDate,
		ImageDate:     imageDate,
	})
}

// textSignal restores the signal extracted at submission time, falling back
// to reprocessing the claim text.
func (p *JobProcessor) textSignal(incident *models.Incident) verify.TextSignal {
	if len(incident.TextSignal) > 0 {
		var signal verify.TextSignal
		if json.Unmarshal(incident.TextSignal, &signal) == nil && signal.RawText != "" {
			return signal
		}
	}
	return p.processor.Process(incident.ClaimText)
}

// loadIncidentImage reads the stored upload and its EXIF capture date.
func (p *JobProcessor) loadIncidentImage(incident *models.Incident) (image.Image, *time.Time) {
	if incident.ImagePath == nil || *incident.ImagePath == "" {
		return nil, nil
	}

	content, err := os.ReadFile(*incident.ImagePath)
	if err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"incident_id": incident.ID,
			"path":        *incident.ImagePath,
			"error":       err.Error(),
		}).Warn("Stored incident image unreadable, verifying text only")
		return nil, nil
	}

	var imageDate *time.Time
	if captured, ok := imagemeta.CaptureDate(bytes.NewReader(content)); ok {
		imageDate = &captured
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"incident_id": incident.ID,
			"error":       err.Error(),
		}).Warn("Stored incident image undecodable, verifying text only")
		return nil, imageDate
	}

	return decoded, imageDate
}

func (p *JobProcessor) failJob(jobID uuid.UUID, message string) {
	if err := p.verification.UpdateJobStatus(jobID, models.StatusFailed, message); err != nil {
		logger.LogErrorWithStack(err, map[string]interface{}{
			"job_id":    jobID,
			"operation": "mark_job_failed",
		})
	}
}

// knowledgeTopic builds the short lookup topic, typically
// "<location> <event type>".
func knowledgeTopic(signal verify.TextSignal) string {
	if signal.Location != "" {
		return signal.Location + " " + signal.EventType
	}
	return signal.EventType
}

// corroboratedDate picks the earliest publication date among credible news
// hits as the independently corroborated event date.
func corroboratedDate(news []verify.NewsHit) *time.Time {
	var earliest *time.Time
	for _, hit := range news {
		if !hit.Credible || hit.PublishedAt == nil {
			continue
		}
		if earliest == nil || hit.PublishedAt.Before(*earliest) {
			earliest = hit.PublishedAt
		}
	}
	return earliest
}

// wrapTextOnlyResult lifts a single-signal result into the terminal verdict
// shape used for persistence.
func wrapTextOnlyResult(result verify.SignalResult) verify.FusedVerdict {
	score := float64(result.Confidence)
	if !result.IsReal {
		score = float64(100 - result.Confidence)
	}

	verdictType := verify.LikelyFake
	mainMessage := "Claim could not be corroborated"
	switch {
	case result.Authenticity == verify.LabelFactCheckedFalse:
		verdictType = verify.CriticalContradictions
		mainMessage = "Claim has been fact-checked as false"
	case result.Authenticity == verify.LabelError:
		verdictType = verify.VerdictError
		mainMessage = "Verification failed due to an internal error"
	case result.IsReal:
		verdictType = verify.VerifiedAuthentic
		mainMessage = "Claim corroborated by retrieved evidence"
	}

	resultCopy := result
	return verify.FusedVerdict{
		Verdict:           verdictType,
		MainMessage:       mainMessage,
		Confidence:        result.Confidence,
		AuthenticityScore: score,
		AttentionWeights:  map[string]float64{"text": 1.0},
		Explanation:       result.Rationale,
		TextVerification:  &resultCopy,
	}
}
