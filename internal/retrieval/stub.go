package retrieval

import (
	"context"
	"strings"

	"incident-verifier/internal/verify"
)

// OfflineRetriever serves canned evidence without network access. Used in
// tests and in deployments without a search API key.
type OfflineRetriever struct {
	// Items are returned from RetrieveEvidence when their title or domain
	// shares a word with the query.
	Items []verify.EvidenceItem

	// Occurrences are returned from ReverseSearch.
	Occurrences []verify.EvidenceItem
}

// NewOfflineRetriever creates an empty offline retriever.
func NewOfflineRetriever() *OfflineRetriever {
	return &OfflineRetriever{}
}

// RetrieveEvidence filters the canned items against the query.
func (r *OfflineRetriever) RetrieveEvidence(ctx context.Context, query string, maxItems int, location, eventType string) []verify.EvidenceItem {
	words := strings.Fields(strings.ToLower(query))

	var matched []verify.EvidenceItem
	for _, item := range r.Items {
		if len(matched) >= maxItems {
			break
		}
		haystack := strings.ToLower(item.SourceDomain + " " + item.Title)
		for _, word := range words {
			if strings.Contains(haystack, word) {
				matched = append(matched, item)
				break
			}
		}
	}

	SortByCredibility(matched)
	return matched
}

// ReverseSearch returns the canned occurrences.
func (r *OfflineRetriever) ReverseSearch(ctx context.Context, imageURL string) ReverseSearchResult {
	return analyzeOccurrences(r.Occurrences)
}
