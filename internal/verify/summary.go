package verify

import (
	"fmt"
	"strings"
)

// Source-type credibility weights and per-bucket multipliers used by the
// evidence summarizer. Read-only, safe for concurrent reads.
const (
	factCheckWeight = 0.95
	newsWeight      = 0.85
	knowledgeWeight = 0.80
	webWeight       = 0.60

	factCheckMultiplier = 15
	newsMultiplier      = 10
	knowledgeMultiplier = 10
	webMultiplier       = 5

	maxKeyFindings = 5
)

// falsehoodRatings are fact-check rating substrings that must always surface
// as key findings, ahead of everything else.
var falsehoodRatings = []string{"false", "fake", "misleading"}

// ExternalEvidenceSummarizer reduces heterogeneous multi-source evidence
// into a single EvidenceSummary.
type ExternalEvidenceSummarizer struct{}

// NewExternalEvidenceSummarizer creates a new evidence summarizer.
func NewExternalEvidenceSummarizer() *ExternalEvidenceSummarizer {
	return &ExternalEvidenceSummarizer{}
}

// Summarize computes the weighted evidence score, verdict, and key findings
// across all buckets. Empty buckets contribute zero, never an error.
func (s *ExternalEvidenceSummarizer) Summarize(evidence ExternalEvidence) EvidenceSummary {
	totalSources := 0
	credibleSources := 0
	weightedScore := 0.0

	// Findings are collected in two groups so falsehood-rated fact-checks
	// survive the cap regardless of insertion order.
	var flaggedFindings []string
	var findings []string

	credibleNews := 0
	for _, hit := range evidence.News {
		if hit.Credible {
			credibleNews++
		}
	}
	if len(evidence.News) > 0 {
		totalSources += len(evidence.News)
		credibleSources += credibleNews
		weightedScore += float64(credibleNews) * newsWeight * newsMultiplier
		if credibleNews > 0 {
			findings = append(findings, fmt.Sprintf("Found %d credible news sources", credibleNews))
		}
	}

	if len(evidence.FactChecks) > 0 {
		totalSources += len(evidence.FactChecks)
		credibleSources += len(evidence.FactChecks)
		weightedScore += float64(len(evidence.FactChecks)) * factCheckWeight * factCheckMultiplier

		for _, fc := range evidence.FactChecks {
			if RatingIndicatesFalsehood(fc.Rating) {
				flaggedFindings = append(flaggedFindings,
					fmt.Sprintf("Fact-check by %s rated this claim as '%s'", fc.Publisher, fc.Rating))
			} else {
				findings = append(findings,
					fmt.Sprintf("Fact-check by %s: %s", fc.Publisher, fc.Rating))
			}
		}
	}

	if evidence.Knowledge.Found {
		totalSources++
		credibleSources++
		weightedScore += knowledgeWeight * knowledgeMultiplier
		findings = append(findings, fmt.Sprintf("Knowledge-base entry found: %s", evidence.Knowledge.Title))
	}

	if len(evidence.Web) > 0 {
		totalSources += len(evidence.Web)
		weightedScore += float64(len(evidence.Web)) * webWeight * webMultiplier
	}

	evidenceScore := weightedScore
	if evidenceScore > 100 {
		evidenceScore = 100
	}
	if evidenceScore < 0 {
		evidenceScore = 0
	}

	keyFindings := append(flaggedFindings, findings...)
	if len(keyFindings) > maxKeyFindings {
		keyFindings = keyFindings[:maxKeyFindings]
	}

	return EvidenceSummary{
		TotalSources:      totalSources,
		CredibleSources:   credibleSources,
		EvidenceScore:     evidenceScore,
		Verdict:           evidenceVerdict(evidenceScore),
		KeyFindings:       keyFindings,
		FactChecks:        evidence.FactChecks,
		NewsCount:         len(evidence.News),
		CredibleNewsCount: credibleNews,
		WebCount:          len(evidence.Web),
		KnowledgeFound:    evidence.Knowledge.Found,
	}
}

func evidenceVerdict(score float64) EvidenceVerdict {
	switch {
	case score >= 70:
		return StrongEvidenceFound
	case score >= 50:
		return ModerateEvidenceFound
	case score >= 30:
		return LimitedEvidenceFound
	default:
		return NoEvidenceFound
	}
}

// RatingIndicatesFalsehood reports whether a fact-check rating flags the
// claim as untrue.
func RatingIndicatesFalsehood(rating string) bool {
	lowered := strings.ToLower(rating)
	for _, marker := range falsehoodRatings {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
