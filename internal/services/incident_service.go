package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"incident-verifier/internal/config"
	"incident-verifier/internal/logger"
	"incident-verifier/internal/models"
	"incident-verifier/internal/textproc"
)

// IncidentServiceInterface defines the interface for incident operations
type IncidentServiceInterface interface {
	SubmitIncident(req *SubmitIncidentRequest, correlationID string) (*SubmitIncidentResponse, error)
	GetIncident(id uuid.UUID) (*models.Incident, error)
	ListIncidents(page, perPage int) ([]*models.Incident, int64, error)
}

type IncidentService struct {
	db        *gorm.DB
	config    *config.Config
	processor *textproc.Processor
}

func NewIncidentService(db *gorm.DB, cfg *config.Config) *IncidentService {
	return &IncidentService{
		db:        db,
		config:    cfg,
		processor: textproc.NewProcessor(),
	}
}

// SubmitIncidentRequest represents an incident submission. ImageURL is an
// optional public URL of the same image, used for reverse image search.
type SubmitIncidentRequest struct {
	ClaimText string
	Image     *multipart.FileHeader
	ImageURL  string
}

// SubmitIncidentResponse represents the submission response
type SubmitIncidentResponse struct {
	IncidentID uuid.UUID `json:"incident_id"`
	EventType  string    `json:"event_type"`
	Location   string    `json:"location,omitempty"`
	Message    string    `json:"message"`
}

// SubmitIncident validates and stores a new incident report
func (s *IncidentService) SubmitIncident(req *SubmitIncidentRequest, correlationID string) (*SubmitIncidentResponse, error) {
	log := logger.WithCorrelationID(correlationID)

	claimText := strings.TrimSpace(req.ClaimText)
	if claimText == "" {
		return nil, fmt.Errorf("claim text is required")
	}

	var imageContent []byte
	if req.Image != nil {
		content, err := s.readImageUpload(req.Image, correlationID)
		if err != nil {
			return nil, err
		}
		imageContent = content
	}

	// Content hash covers both the claim and the image so resubmissions of
	// the same report are rejected.
	hasher := sha256.New()
	hasher.Write([]byte(claimText))
	hasher.Write(imageContent)
	contentHash := hex.EncodeToString(hasher.Sum(nil))

	var existing models.Incident
	if err := s.db.Where("content_hash = ?", contentHash).First(&existing).Error; err == nil {
		log.WithField("existing_id", existing.ID).Info("Duplicate incident detected")
		return nil, fmt.Errorf("duplicate incident already exists with ID: %s", existing.ID)
	}

	signal := s.processor.Process(claimText)
	signalJSON, err := json.Marshal(signal)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize text signal: %w", err)
	}

	incident := &models.Incident{
		ClaimText:   claimText,
		ContentHash: contentHash,
		SubmittedAt: time.Now(),
		TextSignal:  datatypes.JSON(signalJSON),
	}

	if imageContent != nil {
		imagePath, err := s.storeImage(incident, req.Image.Filename, imageContent, correlationID)
		if err != nil {
			return nil, err
		}
		incident.ImagePath = &imagePath
	}
	if imageURL := strings.TrimSpace(req.ImageURL); imageURL != "" {
		incident.ImageURL = &imageURL
	}

	if err := s.db.Create(incident).Error; err != nil {
		logger.LogErrorWithStackAndCorrelation(err, correlationID, map[string]interface{}{
			"operation": "create_incident",
		})
		return nil, fmt.Errorf("failed to store incident: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"incident_id": incident.ID,
		"event_type":  signal.EventType,
		"has_image":   imageContent != nil,
	}).Info("Incident submitted")

	return &SubmitIncidentResponse{
		IncidentID: incident.ID,
		EventType:  signal.EventType,
		Location:   signal.Location,
		Message:    "Incident submitted successfully",
	}, nil
}

// GetIncident loads one incident by ID
func (s *IncidentService) GetIncident(id uuid.UUID) (*models.Incident, error) {
	var incident models.Incident
	if err := s.db.Where("id = ?", id).First(&incident).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("incident %s not found", id)
		}
		return nil, fmt.Errorf("failed to load incident: %w", err)
	}
	return &incident, nil
}

// ListIncidents returns a page of incidents, newest first
func (s *IncidentService) ListIncidents(page, perPage int) ([]*models.Incident, int64, error) {
	var incidents []*models.Incident
	var total int64

	if err := s.db.Model(&models.Incident{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count incidents: %w", err)
	}

	offset := (page - 1) * perPage
	if err := s.db.Order("submitted_at DESC").Offset(offset).Limit(perPage).Find(&incidents).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list incidents: %w", err)
	}

	return incidents, total, nil
}

func (s *IncidentService) readImageUpload(header *multipart.FileHeader, correlationID string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	isValidExt := false
	for _, allowedExt := range s.config.AllowedExts {
		if ext == allowedExt {
			isValidExt = true
			break
		}
	}
	if !isValidExt {
		return nil, fmt.Errorf("invalid image extension: %s. Allowed: %v", ext, s.config.AllowedExts)
	}

	if header.Size > s.config.MaxFileSize {
		return nil, fmt.Errorf("image too large: %d bytes. Maximum: %d bytes", header.Size, s.config.MaxFileSize)
	}

	file, err := header.Open()
	if err != nil {
		logger.LogErrorWithStackAndCorrelation(err, correlationID, map[string]interface{}{
			"filename":  header.Filename,
			"operation": "open_image_upload",
		})
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		logger.LogErrorWithStackAndCorrelation(err, correlationID, map[string]interface{}{
			"filename":  header.Filename,
			"operation": "read_image_upload",
		})
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	return content, nil
}

func (s *IncidentService) storeImage(incident *models.Incident, filename string, content []byte, correlationID string) (string, error) {
	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	storedName := fmt.Sprintf("%s%s", incident.ContentHash[:16], ext)
	imagePath := filepath.Join(s.config.StoragePath, storedName)

	if err := os.WriteFile(imagePath, content, 0o644); err != nil {
		logger.LogErrorWithStackAndCorrelation(err, correlationID, map[string]interface{}{
			"path":      imagePath,
			"operation": "store_incident_image",
		})
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	return imagePath, nil
}
