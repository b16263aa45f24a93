package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestIncident_BeforeCreate(t *testing.T) {
	db := setupTestDB(t)

	incident := Incident{
		ClaimText:   "Flood in Chennai",
		ContentHash: "hash-1",
	}
	require.NoError(t, db.Create(&incident).Error)

	assert.NotEqual(t, uuid.Nil, incident.ID)
}

func TestVerification_BeforeCreateAssignsJobID(t *testing.T) {
	db := setupTestDB(t)

	incident := Incident{ClaimText: "claim", ContentHash: "hash-2"}
	require.NoError(t, db.Create(&incident).Error)

	verification := Verification{IncidentID: incident.ID, Status: StatusPending}
	require.NoError(t, db.Create(&verification).Error)

	assert.NotEqual(t, uuid.Nil, verification.ID)
	assert.NotEqual(t, uuid.Nil, verification.JobID)
}

func TestVerification_ContentHashUnique(t *testing.T) {
	db := setupTestDB(t)

	first := Incident{ClaimText: "claim", ContentHash: "same-hash"}
	require.NoError(t, db.Create(&first).Error)

	second := Incident{ClaimText: "other claim", ContentHash: "same-hash"}
	err := db.Create(&second).Error

	assert.Error(t, err)
}

func TestVerification_LoadsContradictions(t *testing.T) {
	db := setupTestDB(t)

	incident := Incident{ClaimText: "claim", ContentHash: "hash-3"}
	require.NoError(t, db.Create(&incident).Error)

	verification := Verification{IncidentID: incident.ID, Status: StatusCompleted}
	require.NoError(t, db.Create(&verification).Error)

	record := ContradictionRecord{
		VerificationID: verification.ID,
		Kind:           "TEMPORAL_MISMATCH",
		Severity:       "CRITICAL",
		Description:    "Claimed year 2023 but the event actually happened in 2024",
		Confidence:     95,
	}
	require.NoError(t, db.Create(&record).Error)

	var loaded Verification
	require.NoError(t, db.Preload("Contradictions").First(&loaded, "id = ?", verification.ID).Error)

	require.Len(t, loaded.Contradictions, 1)
	assert.Equal(t, "TEMPORAL_MISMATCH", loaded.Contradictions[0].Kind)
}

func TestVerification_StatusLifecycle(t *testing.T) {
	db := setupTestDB(t)

	incident := Incident{ClaimText: "claim", ContentHash: "hash-4"}
	require.NoError(t, db.Create(&incident).Error)

	verification := Verification{IncidentID: incident.ID, Status: StatusPending}
	require.NoError(t, db.Create(&verification).Error)

	require.NoError(t, db.Model(&verification).Update("status", StatusProcessing).Error)

	var loaded Verification
	require.NoError(t, db.First(&loaded, "job_id = ?", verification.JobID).Error)
	assert.Equal(t, StatusProcessing, loaded.Status)
}
