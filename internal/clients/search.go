package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"incident-verifier/internal/config"
	"incident-verifier/internal/logger"

	"github.com/sirupsen/logrus"
)

// SearchClientInterface defines the interface for the Serper search client
type SearchClientInterface interface {
	Search(ctx context.Context, query string, numResults int) (*SearchResponse, error)
	ImageSearch(ctx context.Context, query string, numResults int) (*ImageSearchResponse, error)
	NewsSearch(ctx context.Context, query string, numResults int) (*NewsSearchResponse, error)
	LensSearch(ctx context.Context, imageURL string) (*LensResponse, error)
}

// SearchClient handles communication with the Serper API for web, image,
// and news search
type SearchClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// SearchRequest represents a request to the Serper API
type SearchRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
}

// SearchResponse represents a web search response from the Serper API
type SearchResponse struct {
	Organic        []SearchResult  `json:"organic"`
	KnowledgeGraph *KnowledgeGraph `json:"knowledgeGraph,omitempty"`
}

// SearchResult represents a single organic search result
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date,omitempty"`
}

// KnowledgeGraph represents a knowledge graph panel in a search response
type KnowledgeGraph struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

// ImageSearchResponse represents an image search response
type ImageSearchResponse struct {
	Images []ImageResult `json:"images"`
}

// ImageResult represents a single image search result
type ImageResult struct {
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
	Link     string `json:"link"`
	Source   string `json:"source"`
	Domain   string `json:"domain"`
}

// NewsSearchResponse represents a news search response
type NewsSearchResponse struct {
	News []NewsResult `json:"news"`
}

// NewsResult represents a single news search result
type NewsResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
	Date    string `json:"date,omitempty"`
}

// LensRequest represents a reverse image search request
type LensRequest struct {
	URL string `json:"url"`
}

// LensResponse represents a reverse image search response
type LensResponse struct {
	Organic []LensResult `json:"organic"`
}

// LensResult represents one page where the image appears
type LensResult struct {
	Title  string `json:"title"`
	Link   string `json:"link"`
	Source string `json:"source"`
}

// SearchError represents an error response from the Serper API
type SearchError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search API error (%s): %s", e.Type, e.Message)
}

// NewSearchClient creates a new Serper API client
func NewSearchClient(cfg *config.Config) *SearchClient {
	return &SearchClient{
		apiKey:  cfg.SerperAPIKey,
		baseURL: "https://google.serper.dev",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.Log,
	}
}

// Search performs a web search using the Serper API
func (c *SearchClient) Search(ctx context.Context, query string, numResults int) (*SearchResponse, error) {
	var response SearchResponse
	if err := c.post(ctx, "/search", query, numResults, &response); err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"correlation_id": getCorrelationIDFromContext(ctx),
		"query":          query,
		"results_count":  len(response.Organic),
	}).Info("Web search completed")

	return &response, nil
}

// ImageSearch performs an image search using the Serper API
func (c *SearchClient) ImageSearch(ctx context.Context, query string, numResults int) (*ImageSearchResponse, error) {
	var response ImageSearchResponse
	if err := c.post(ctx, "/images", query, numResults, &response); err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"correlation_id": getCorrelationIDFromContext(ctx),
		"query":          query,
		"results_count":  len(response.Images),
	}).Info("Image search completed")

	return &response, nil
}

// NewsSearch performs a news search using the Serper API
func (c *SearchClient) NewsSearch(ctx context.Context, query string, numResults int) (*NewsSearchResponse, error) {
	var response NewsSearchResponse
	if err := c.post(ctx, "/news", query, numResults, &response); err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"correlation_id": getCorrelationIDFromContext(ctx),
		"query":          query,
		"results_count":  len(response.News),
	}).Info("News search completed")

	return &response, nil
}

// LensSearch performs a reverse image search on a hosted image URL
func (c *SearchClient) LensSearch(ctx context.Context, imageURL string) (*LensResponse, error) {
	var response LensResponse
	if err := c.postBody(ctx, "/lens", LensRequest{URL: imageURL}, &response); err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"correlation_id": getCorrelationIDFromContext(ctx),
		"results_count":  len(response.Organic),
	}).Info("Reverse image search completed")

	return &response, nil
}

func (c *SearchClient) post(ctx context.Context, endpoint, query string, numResults int, out interface{}) error {
	return c.postBody(ctx, endpoint, SearchRequest{Query: query, Num: numResults}, out)
}

func (c *SearchClient) postBody(ctx context.Context, endpoint string, payload interface{}, out interface{}) error {
	if c.apiKey == "" {
		return fmt.Errorf("Serper API key not configured")
	}

	requestBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+endpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr SearchError
		if json.Unmarshal(responseBody, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("API error (status %d): %w", resp.StatusCode, &apiErr)
		}
		return fmt.Errorf("unknown API error (status %d)", resp.StatusCode)
	}

	if err := json.Unmarshal(responseBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
