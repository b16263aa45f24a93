package verify

import (
	"fmt"
	"strings"
)

// TextEvidenceScorer converts a text claim plus retrieved evidence items
// into a SignalResult. Pure function of its inputs; no retrieval happens
// here.
type TextEvidenceScorer struct {
	thresholds Thresholds
}

// NewTextEvidenceScorer creates a new text evidence scorer.
func NewTextEvidenceScorer(thresholds Thresholds) *TextEvidenceScorer {
	return &TextEvidenceScorer{thresholds: thresholds}
}

const (
	textCountPointsPerItem = 8
	textCountScoreCap      = 60
	textKeywordPoints      = 5
	textKeywordScoreCap    = 30
	textCredibilityPoints  = 8
	textCredibilityCap     = 30
)

// Score verifies a text claim against retrieved evidence items.
func (s *TextEvidenceScorer) Score(signal TextSignal, items []EvidenceItem) SignalResult {
	if len(items) == 0 {
		return SignalResult{
			IsReal:           false,
			Authenticity:     LabelInsufficientEvidence,
			Confidence:       insufficientEvidenceConfidence,
			Rationale:        "No supporting evidence found online",
			RawEvidenceCount: 0,
		}
	}

	if len(items) > s.thresholds.MaxEvidenceItems {
		items = items[:s.thresholds.MaxEvidenceItems]
	}

	countScore := min(len(items)*textCountPointsPerItem, textCountScoreCap)
	keywordScore := min(textKeywordPoints*s.countKeywordMatches(signal.Keywords, items), textKeywordScoreCap)
	credibilityScore := min(textCredibilityPoints*countCredibleItems(items), textCredibilityCap)

	confidence := min(countScore+keywordScore+credibilityScore, maxSignalConfidence)
	label, isReal := s.classify(confidence)

	return SignalResult{
		IsReal:       isReal,
		Authenticity: label,
		Confidence:   confidence,
		Rationale: fmt.Sprintf(
			"Found %d supporting items (%d from credible sources, %d keyword matches)",
			len(items), countCredibleItems(items), s.countKeywordMatches(signal.Keywords, items)),
		RawEvidenceCount: len(items),
	}
}

// countKeywordMatches counts keyword hits across the items' source domain
// and title text. Each (keyword, item) hit counts once.
func (s *TextEvidenceScorer) countKeywordMatches(keywords []string, items []EvidenceItem) int {
	if len(keywords) == 0 {
		return 0
	}

	matches := 0
	for _, item := range items {
		haystack := strings.ToLower(item.SourceDomain + " " + item.Title)
		for _, keyword := range keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(haystack, strings.ToLower(keyword)) {
				matches++
			}
		}
	}
	return matches
}

func (s *TextEvidenceScorer) classify(confidence int) (AuthenticityLabel, bool) {
	switch {
	case confidence >= s.thresholds.RealConfidence:
		return LabelReal, true
	case confidence >= s.thresholds.LikelyRealConfidence:
		return LabelLikelyReal, true
	default:
		return LabelUncertain, false
	}
}

func countCredibleItems(items []EvidenceItem) int {
	count := 0
	for _, item := range items {
		if item.Credibility == Tier1Global || item.Credibility == Tier2National {
			count++
		}
	}
	return count
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
