package services

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"incident-verifier/internal/config"
	"incident-verifier/internal/models"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		StoragePath: t.TempDir(),
		MaxFileSize: 1 << 20,
		AllowedExts: []string{".jpg", ".jpeg", ".png", ".webp"},
	}
}

func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["image"][0]
}

func TestSubmitIncident_TextOnly(t *testing.T) {
	db := setupServiceDB(t)
	service := NewIncidentService(db, testConfig(t))

	response, err := service.SubmitIncident(&SubmitIncidentRequest{
		ClaimText: "Massive flood in Chennai on 15 June 2024",
	}, "corr-1")

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, response.IncidentID)
	assert.Equal(t, "flood", response.EventType)
	assert.Equal(t, "chennai", response.Location)

	var stored models.Incident
	require.NoError(t, db.First(&stored, "id = ?", response.IncidentID).Error)
	assert.Equal(t, "Massive flood in Chennai on 15 June 2024", stored.ClaimText)
	assert.NotEmpty(t, stored.ContentHash)
	assert.NotEmpty(t, stored.TextSignal)
	assert.Nil(t, stored.ImagePath)
}

func TestSubmitIncident_EmptyClaimRejected(t *testing.T) {
	db := setupServiceDB(t)
	service := NewIncidentService(db, testConfig(t))

	_, err := service.SubmitIncident(&SubmitIncidentRequest{ClaimText: "   "}, "corr-1")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "claim text is required")
}

func TestSubmitIncident_DuplicateRejected(t *testing.T) {
	db := setupServiceDB(t)
	service := NewIncidentService(db, testConfig(t))

	first, err := service.SubmitIncident(&SubmitIncidentRequest{
		ClaimText: "Fire in Mumbai warehouse",
	}, "corr-1")
	require.NoError(t, err)

	_, err = service.SubmitIncident(&SubmitIncidentRequest{
		ClaimText: "Fire in Mumbai warehouse",
	}, "corr-2")

	require.Error(t, err)
	assert.Contains(t, err.Error(), first.IncidentID.String())
}

func TestSubmitIncident_StoresImage(t *testing.T) {
	db := setupServiceDB(t)
	cfg := testConfig(t)
	service := NewIncidentService(db, cfg)

	header := makeFileHeader(t, "scene.jpg", []byte("fake jpeg bytes"))
	response, err := service.SubmitIncident(&SubmitIncidentRequest{
		ClaimText: "Building collapse in Delhi",
		Image:     header,
	}, "corr-1")
	require.NoError(t, err)

	var stored models.Incident
	require.NoError(t, db.First(&stored, "id = ?", response.IncidentID).Error)
	require.NotNil(t, stored.ImagePath)

	content, err := os.ReadFile(*stored.ImagePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake jpeg bytes"), content)
}

func TestSubmitIncident_RejectsInvalidExtension(t *testing.T) {
	db := setupServiceDB(t)
	service := NewIncidentService(db, testConfig(t))

	header := makeFileHeader(t, "payload.exe", []byte("not an image"))
	_, err := service.SubmitIncident(&SubmitIncidentRequest{
		ClaimText: "Flood in Chennai",
		Image:     header,
	}, "corr-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid image extension")
}

func TestSubmitIncident_RejectsOversizedImage(t *testing.T) {
	db := setupServiceDB(t)
	cfg := testConfig(t)
	cfg.MaxFileSize = 10
	service := NewIncidentService(db, cfg)

	header := makeFileHeader(t, "big.png", bytes.Repeat([]byte("x"), 100))
	_, err := service.SubmitIncident(&SubmitIncidentRequest{
		ClaimText: "Flood in Chennai",
		Image:     header,
	}, "corr-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "image too large")
}

func TestGetIncident_NotFound(t *testing.T) {
	db := setupServiceDB(t)
	service := NewIncidentService(db, testConfig(t))

	_, err := service.GetIncident(uuid.New())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListIncidents_Pagination(t *testing.T) {
	db := setupServiceDB(t)
	service := NewIncidentService(db, testConfig(t))

	claims := []string{
		"Flood in Chennai",
		"Fire in Mumbai",
		"Earthquake near Delhi",
	}
	for _, claim := range claims {
		_, err := service.SubmitIncident(&SubmitIncidentRequest{ClaimText: claim}, "corr-1")
		require.NoError(t, err)
	}

	page, total, err := service.ListIncidents(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	page, _, err = service.ListIncidents(2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}
