package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Incident represents a submitted incident report: claim text plus an
// optional uploaded image
type Incident struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ClaimText   string         `gorm:"type:text;not null" json:"claim_text"`
	ImagePath   *string        `gorm:"size:500" json:"image_path,omitempty"`
	ImageURL    *string        `gorm:"size:500" json:"image_url,omitempty"`
	ContentHash string         `gorm:"size:64;not null;unique" json:"content_hash"`
	SubmittedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"submitted_at"`
	TextSignal  datatypes.JSON `gorm:"type:jsonb" json:"text_signal,omitempty"`

	// Relationships
	Verifications []Verification `gorm:"foreignKey:IncidentID" json:"verifications,omitempty"`
}

// Verification represents one verification run over an incident
type Verification struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	IncidentID uuid.UUID `gorm:"type:uuid;not null;index" json:"incident_id"`
	JobID      uuid.UUID `gorm:"type:uuid;not null;unique;index" json:"job_id"`
	Status     string    `gorm:"size:20;not null;default:'pending';index" json:"status"` // pending, processing, completed, failed

	Verdict           *string        `gorm:"size:40" json:"verdict,omitempty"`
	MainMessage       *string        `gorm:"type:text" json:"main_message,omitempty"`
	Confidence        *int           `gorm:"check:confidence >= 0 AND confidence <= 100" json:"confidence,omitempty"`
	AuthenticityScore *float64       `json:"authenticity_score,omitempty"`
	AttentionWeights  datatypes.JSON `gorm:"type:jsonb" json:"attention_weights,omitempty"`
	Explanation       *string        `gorm:"type:text" json:"explanation,omitempty"`
	ResultDetail      datatypes.JSON `gorm:"type:jsonb" json:"result_detail,omitempty"` // full FusedVerdict

	CreatedAt    time.Time  `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ErrorMessage *string    `gorm:"type:text" json:"error_message,omitempty"`

	// Relationships
	Incident       Incident              `gorm:"foreignKey:IncidentID" json:"incident,omitempty"`
	Contradictions []ContradictionRecord `gorm:"foreignKey:VerificationID;constraint:OnDelete:CASCADE" json:"contradictions,omitempty"`
}

// ContradictionRecord represents one detected inconsistency between
// evidence sources
type ContradictionRecord struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	VerificationID uuid.UUID `gorm:"type:uuid;not null;index" json:"verification_id"`
	Kind           string    `gorm:"size:40;not null" json:"kind"`
	Severity       string    `gorm:"size:20;not null" json:"severity"`
	Description    string    `gorm:"type:text;not null" json:"description"`
	Confidence     int       `gorm:"not null;check:confidence >= 0 AND confidence <= 100" json:"confidence"`
	DetectedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"detected_at"`

	// Relationships
	Verification Verification `gorm:"foreignKey:VerificationID" json:"verification,omitempty"`
}

// Verification job statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// BeforeCreate will set a UUID rather than numeric ID
func (i *Incident) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (v *Verification) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.JobID == uuid.Nil {
		v.JobID = uuid.New()
	}
	return nil
}

func (c *ContradictionRecord) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// AutoMigrate creates or updates database tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Incident{}, &Verification{}, &ContradictionRecord{})
}
