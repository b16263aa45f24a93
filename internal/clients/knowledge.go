package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"incident-verifier/internal/logger"
	"incident-verifier/internal/verify"

	"github.com/sirupsen/logrus"
)

// KnowledgeClientInterface defines the interface for the knowledge-base client
type KnowledgeClientInterface interface {
	Lookup(ctx context.Context, topic string) (verify.KnowledgeHit, error)
}

// KnowledgeClient queries the Wikipedia REST summary endpoint
type KnowledgeClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// wikipediaSummary mirrors the REST page summary response shape
type wikipediaSummary struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	Type    string `json:"type"`
	Content struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// NewKnowledgeClient creates a new knowledge-base client
func NewKnowledgeClient() *KnowledgeClient {
	return &KnowledgeClient{
		baseURL: "https://en.wikipedia.org/api/rest_v1/page/summary",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.Log,
	}
}

// Lookup fetches the encyclopedia summary for a topic. A missing page is a
// normal not-found result, not an error.
func (c *KnowledgeClient) Lookup(ctx context.Context, topic string) (verify.KnowledgeHit, error) {
	title := strings.ReplaceAll(strings.TrimSpace(topic), " ", "_")
	if title == "" {
		return verify.KnowledgeHit{}, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/"+url.PathEscape(title), nil)
	if err != nil {
		return verify.KnowledgeHit{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return verify.KnowledgeHit{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return verify.KnowledgeHit{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return verify.KnowledgeHit{}, fmt.Errorf("knowledge API error (status %d)", resp.StatusCode)
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return verify.KnowledgeHit{}, fmt.Errorf("failed to read response body: %w", err)
	}

	var summary wikipediaSummary
	if err := json.Unmarshal(responseBody, &summary); err != nil {
		return verify.KnowledgeHit{}, fmt.Errorf("failed to parse response: %w", err)
	}

	// Disambiguation pages describe the title, not the event.
	if summary.Type == "disambiguation" || summary.Extract == "" {
		return verify.KnowledgeHit{}, nil
	}

	c.logger.WithFields(map[string]interface{}{
		"correlation_id": getCorrelationIDFromContext(ctx),
		"topic":          topic,
		"title":          summary.Title,
	}).Info("Knowledge-base lookup completed")

	return verify.KnowledgeHit{
		Found:   true,
		Title:   summary.Title,
		Extract: summary.Extract,
		URL:     summary.Content.Desktop.Page,
	}, nil
}
