package retrieval

import (
	"context"
	"sort"

	"incident-verifier/internal/verify"
)

// ReverseSearchResult lists every page an image was found on. OriginalSource
// is the highest-credibility occurrence; source trust stands in for temporal
// priority here since occurrence dates are rarely available.
type ReverseSearchResult struct {
	AllOccurrences []verify.EvidenceItem `json:"all_occurrences"`
	OriginalSource *verify.EvidenceItem  `json:"original_source,omitempty"`
	ReuseDetected  bool                  `json:"reuse_detected"`
}

// Retriever finds corroborating evidence for a claim. Implementations must
// return empty results on network failure, never an error; the verification
// engine treats "no evidence" as a valid input.
type Retriever interface {
	// RetrieveEvidence searches for evidence items matching the query.
	// Location and event type narrow the search when present.
	RetrieveEvidence(ctx context.Context, query string, maxItems int, location, eventType string) []verify.EvidenceItem

	// ReverseSearch finds occurrences of an uploaded image by its hosted URL.
	ReverseSearch(ctx context.Context, imageURL string) ReverseSearchResult
}

// reuseThreshold is the occurrence count above which an image is considered
// widely circulated.
const reuseThreshold = 3

// SortByCredibility orders items by tier score, best first. Order within a
// tier is preserved.
func SortByCredibility(items []verify.EvidenceItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return TierScore(items[i].Credibility) > TierScore(items[j].Credibility)
	})
}

// analyzeOccurrences derives the original source and reuse flag from raw
// occurrences.
func analyzeOccurrences(occurrences []verify.EvidenceItem) ReverseSearchResult {
	result := ReverseSearchResult{
		AllOccurrences: occurrences,
		ReuseDetected:  len(occurrences) > reuseThreshold,
	}

	if len(occurrences) == 0 {
		return result
	}

	sorted := make([]verify.EvidenceItem, len(occurrences))
	copy(sorted, occurrences)
	SortByCredibility(sorted)

	original := sorted[0]
	result.OriginalSource = &original
	return result
}
