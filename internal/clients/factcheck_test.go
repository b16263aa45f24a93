package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestFactCheckClient() *FactCheckClient {
	logger, _ := test.NewNullLogger()
	client := NewFactCheckClient("test-key")
	client.logger = logger
	return client
}

func TestFactCheckClient_CheckClaim_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "flood footage chennai", r.URL.Query().Get("query"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"claims": [
				{
					"text": "Video shows 2023 Chennai flood",
					"claimReview": [
						{
							"publisher": {"name": "Snopes", "site": "snopes.com"},
							"url": "https://snopes.com/check/1",
							"textualRating": "False"
						}
					]
				}
			]
		}`))
	}))
	defer server.Close()

	client := setupTestFactCheckClient()
	client.baseURL = server.URL

	findings, err := client.CheckClaim(context.Background(), "flood footage chennai")

	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "Snopes", findings[0].Publisher)
	assert.Equal(t, "False", findings[0].Rating)
	assert.Equal(t, "Video shows 2023 Chennai flood", findings[0].Claim)
}

func TestFactCheckClient_CheckClaim_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := setupTestFactCheckClient()
	client.baseURL = server.URL

	findings, err := client.CheckClaim(context.Background(), "claim")

	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestFactCheckClient_CheckClaim_NoAPIKey(t *testing.T) {
	client := setupTestFactCheckClient()
	client.apiKey = ""

	_, err := client.CheckClaim(context.Background(), "claim")

	assert.Error(t, err)
}

func TestFactCheckClient_CheckClaim_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := setupTestFactCheckClient()
	client.baseURL = server.URL

	_, err := client.CheckClaim(context.Background(), "claim")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestKnowledgeClient_Lookup_Found(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"title": "2023 Chennai floods",
			"extract": "Severe flooding struck Chennai in December 2023.",
			"type": "standard",
			"content_urls": {"desktop": {"page": "https://en.wikipedia.org/wiki/2023_Chennai_floods"}}
		}`))
	}))
	defer server.Close()

	logger, _ := test.NewNullLogger()
	client := NewKnowledgeClient()
	client.logger = logger
	client.baseURL = server.URL

	hit, err := client.Lookup(context.Background(), "2023 Chennai floods")

	require.NoError(t, err)
	assert.True(t, hit.Found)
	assert.Equal(t, "2023 Chennai floods", hit.Title)
	assert.Contains(t, hit.Extract, "December 2023")
}

func TestKnowledgeClient_Lookup_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	logger, _ := test.NewNullLogger()
	client := NewKnowledgeClient()
	client.logger = logger
	client.baseURL = server.URL

	hit, err := client.Lookup(context.Background(), "nonexistent incident")

	require.NoError(t, err)
	assert.False(t, hit.Found)
}

func TestKnowledgeClient_Lookup_Disambiguation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": "Flood", "extract": "Flood may refer to:", "type": "disambiguation"}`))
	}))
	defer server.Close()

	logger, _ := test.NewNullLogger()
	client := NewKnowledgeClient()
	client.logger = logger
	client.baseURL = server.URL

	hit, err := client.Lookup(context.Background(), "Flood")

	require.NoError(t, err)
	assert.False(t, hit.Found)
}

func TestKnowledgeClient_Lookup_EmptyTopic(t *testing.T) {
	logger, _ := test.NewNullLogger()
	client := NewKnowledgeClient()
	client.logger = logger

	hit, err := client.Lookup(context.Background(), "   ")

	require.NoError(t, err)
	assert.False(t, hit.Found)
}
