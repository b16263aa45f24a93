package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"incident-verifier/internal/logger"
	"incident-verifier/internal/verify"

	"github.com/sirupsen/logrus"
)

// FactCheckClientInterface defines the interface for the fact-check client
type FactCheckClientInterface interface {
	CheckClaim(ctx context.Context, claim string) ([]verify.FactCheckFinding, error)
}

// FactCheckClient queries the Google Fact Check Tools claim search API
type FactCheckClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// factCheckResponse mirrors the claim search response shape
type factCheckResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		ClaimReview []struct {
			Publisher struct {
				Name string `json:"name"`
				Site string `json:"site"`
			} `json:"publisher"`
			URL           string `json:"url"`
			TextualRating string `json:"textualRating"`
		} `json:"claimReview"`
	} `json:"claims"`
}

// NewFactCheckClient creates a new fact-check API client
func NewFactCheckClient(apiKey string) *FactCheckClient {
	return &FactCheckClient{
		apiKey:  apiKey,
		baseURL: "https://factchecktools.googleapis.com/v1alpha1/claims:search",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.Log,
	}
}

// CheckClaim searches published fact-checks matching the claim text
func (c *FactCheckClient) CheckClaim(ctx context.Context, claim string) ([]verify.FactCheckFinding, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("fact-check API key not configured")
	}

	params := url.Values{}
	params.Set("query", claim)
	params.Set("key", c.apiKey)
	params.Set("languageCode", "en")

	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fact-check API error (status %d)", resp.StatusCode)
	}

	var parsed factCheckResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	var findings []verify.FactCheckFinding
	for _, claimEntry := range parsed.Claims {
		for _, review := range claimEntry.ClaimReview {
			findings = append(findings, verify.FactCheckFinding{
				Publisher: review.Publisher.Name,
				Rating:    review.TextualRating,
				Claim:     claimEntry.Text,
				URL:       review.URL,
			})
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"correlation_id": getCorrelationIDFromContext(ctx),
		"claim":          claim,
		"findings":       len(findings),
	}).Info("Fact-check search completed")

	return findings, nil
}
