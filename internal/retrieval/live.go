package retrieval

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"strings"
	"time"

	// Register decoders for the formats evidence images arrive in.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/sirupsen/logrus"

	"incident-verifier/internal/clients"
	"incident-verifier/internal/logger"
	"incident-verifier/internal/verify"
)

// LiveRetriever finds evidence through the Serper search API and downloads
// candidate images for similarity comparison. All failures degrade to empty
// results.
type LiveRetriever struct {
	search      clients.SearchClientInterface
	imageClient *http.Client
	log         *logrus.Logger
}

// NewLiveRetriever creates a retriever backed by the live search API.
func NewLiveRetriever(search clients.SearchClientInterface) *LiveRetriever {
	return &LiveRetriever{
		search: search,
		imageClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: logger.Log,
	}
}

// RetrieveEvidence searches for images matching the query and classifies
// each hit's source credibility.
func (r *LiveRetriever) RetrieveEvidence(ctx context.Context, query string, maxItems int, location, eventType string) []verify.EvidenceItem {
	fullQuery := query
	if location != "" && !strings.Contains(strings.ToLower(query), strings.ToLower(location)) {
		fullQuery = location + " " + fullQuery
	}
	if eventType != "" && !strings.Contains(strings.ToLower(fullQuery), eventType) {
		fullQuery = fullQuery + " " + eventType
	}

	response, err := r.search.ImageSearch(ctx, fullQuery, maxItems)
	if err != nil {
		r.log.WithFields(map[string]interface{}{
			"query": fullQuery,
			"error": err.Error(),
		}).Warn("Evidence image search failed, returning no evidence")
		return nil
	}

	items := make([]verify.EvidenceItem, 0, len(response.Images))
	for _, hit := range response.Images {
		if len(items) >= maxItems {
			break
		}
		domain := hit.Domain
		if domain == "" {
			domain = hit.Link
		}
		items = append(items, verify.EvidenceItem{
			Image:        r.fetchImage(ctx, hit.ImageURL),
			SourceDomain: domain,
			Title:        hit.Title,
			URL:          hit.Link,
			Credibility:  DomainTier(domain),
		})
	}

	SortByCredibility(items)
	return items
}

// ReverseSearch finds pages where the hosted image already appears.
func (r *LiveRetriever) ReverseSearch(ctx context.Context, imageURL string) ReverseSearchResult {
	response, err := r.search.LensSearch(ctx, imageURL)
	if err != nil {
		r.log.WithFields(map[string]interface{}{
			"error": err.Error(),
		}).Warn("Reverse image search failed, returning no occurrences")
		return ReverseSearchResult{}
	}

	occurrences := make([]verify.EvidenceItem, 0, len(response.Organic))
	for _, hit := range response.Organic {
		domain := hit.Source
		if domain == "" {
			domain = hit.Link
		}
		occurrences = append(occurrences, verify.EvidenceItem{
			SourceDomain: domain,
			Title:        hit.Title,
			URL:          hit.Link,
			Credibility:  DomainTier(domain),
		})
	}

	return analyzeOccurrences(occurrences)
}

// fetchImage downloads and decodes one candidate image. Any failure yields
// nil; the image scorer skips items without pixel data.
func (r *LiveRetriever) fetchImage(ctx context.Context, imageURL string) image.Image {
	if imageURL == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil
	}

	resp, err := r.imageClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	decoded, _, err := image.Decode(resp.Body)
	if err != nil {
		r.log.WithFields(map[string]interface{}{
			"url":   imageURL,
			"error": fmt.Sprintf("%v", err),
		}).Debug("Evidence image could not be decoded")
		return nil
	}

	return decoded
}
