package verify

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Fixed base credibilities per evidence source. Higher credibility wins the
// weight ordering whenever raw scores would tie.
var sourceCredibility = map[string]float64{
	"factcheck":    0.95,
	"temporal":     0.90,
	"news":         0.85,
	"knowledge":    0.80,
	"image":        0.75,
	"news_general": 0.70,
	"text":         0.65,
	"web":          0.60,
}

// ratingScores maps fact-check rating substrings to a directional score.
// Ordered: compound ratings ("mostly true") must match before their suffix
// ("true").
var ratingScores = []struct {
	marker string
	score  float64
}{
	{"mostly true", 85},
	{"partly true", 60},
	{"mixture", 50},
	{"mostly false", 30},
	{"misleading", 20},
	{"fake", 5},
	{"false", 10},
	{"true", 100},
}

const neutralScore = 50

// contradictionRatings flag a fact-check as contradicting the claim.
var contradictionRatings = []string{"false", "fake", "misleading", "incorrect"}

// sourceContribution is one evidence source's input to the weighted fusion.
type sourceContribution struct {
	name        string
	raw         float64
	directional float64
}

// AttentionFusionEngine combines the text, image, temporal, and external
// evidence results into one FusedVerdict. Fusion is a pure function of its
// inputs; calling it twice with identical inputs yields identical output.
type AttentionFusionEngine struct {
	observer Observer
}

// NewAttentionFusionEngine creates a fusion engine. A nil observer disables
// checkpoint notifications.
func NewAttentionFusionEngine(observer Observer) *AttentionFusionEngine {
	if observer == nil {
		observer = NopObserver{}
	}
	return &AttentionFusionEngine{observer: observer}
}

// Fuse computes attention weights over the contributing sources, aggregates
// their directional scores, detects contradictions, and selects a verdict.
// Any input may be nil; a nil or empty input contributes nothing instead of
// skewing the weights.
func (e *AttentionFusionEngine) Fuse(text, image *SignalResult, temporal *TemporalResult, summary *EvidenceSummary) FusedVerdict {
	contributions := e.collectContributions(text, image, temporal, summary)
	weights := normalizeWeights(contributions)

	authenticityScore := float64(neutralScore)
	if len(weights) > 0 {
		weighted := 0.0
		for _, c := range contributions {
			weighted += c.directional * weights[c.name]
		}
		authenticityScore = weighted
	}

	isAuthentic := authenticityScore >= 50
	confidence := authenticityScore
	if !isAuthentic {
		confidence = 100 - authenticityScore
	}
	confidenceInt := int(math.Round(math.Min(confidence, float64(maxSignalConfidence))))

	contradictions := e.detectContradictions(text, image, temporal, summary)
	verdict, mainMessage := selectVerdict(isAuthentic, contradictions)

	result := FusedVerdict{
		Verdict:              verdict,
		MainMessage:          mainMessage,
		Confidence:           confidenceInt,
		AuthenticityScore:    authenticityScore,
		AttentionWeights:     weights,
		Contradictions:       contradictions,
		Explanation:          buildExplanation(authenticityScore, weights, summary, contradictions),
		TextVerification:     text,
		ImageVerification:    image,
		TemporalVerification: temporal,
		ExternalSummary:      summary,
	}

	e.observer.FusionComputed(verdict, authenticityScore, map[string]interface{}{
		"confidence":     confidenceInt,
		"sources":        len(weights),
		"contradictions": len(contradictions),
	})

	return result
}

// FuseDual is the reduced two-source mode used when temporal and external
// evidence components are unavailable. sameIncident reports whether the two
// evidence sets corroborate the same underlying event.
func (e *AttentionFusionEngine) FuseDual(text, image SignalResult, sameIncident bool) FusedVerdict {
	var verdict VerdictType
	var mainMessage string

	switch {
	case text.IsReal && image.IsReal && sameIncident:
		verdict = MatchAndReal
		mainMessage = "Text and image both corroborated and describe the same incident"
	case text.IsReal && image.IsReal:
		verdict = BothRealDifferentIncidents
		mainMessage = "Text and image are both corroborated but appear to describe different incidents"
	case !text.IsReal && !image.IsReal:
		verdict = BothFake
		mainMessage = "Neither the text claim nor the image could be corroborated"
	default:
		verdict = PartialVerification
		mainMessage = "Only one of the text claim and the image could be corroborated"
	}

	confidence := min((text.Confidence+image.Confidence)/2, maxSignalConfidence)

	result := FusedVerdict{
		Verdict:           verdict,
		MainMessage:       mainMessage,
		Confidence:        confidence,
		AuthenticityScore: float64(confidence),
		AttentionWeights: map[string]float64{
			"text":  0.5,
			"image": 0.5,
		},
		Explanation:       fmt.Sprintf("%s. Text: %s. Image: %s.", mainMessage, text.Rationale, image.Rationale),
		TextVerification:  &text,
		ImageVerification: &image,
	}

	e.observer.FusionComputed(verdict, result.AuthenticityScore, map[string]interface{}{
		"confidence": confidence,
		"mode":       "dual",
	})

	return result
}

// collectContributions gathers the sources that actually contributed
// evidence. A scorer result with zero retrieved items, a temporal result
// without dates, and empty evidence buckets are all excluded here.
func (e *AttentionFusionEngine) collectContributions(text, image *SignalResult, temporal *TemporalResult, summary *EvidenceSummary) []sourceContribution {
	var contributions []sourceContribution

	if text != nil && text.RawEvidenceCount > 0 {
		contributions = append(contributions, sourceContribution{
			name:        "text",
			raw:         float64(text.Confidence) / 100 * sourceCredibility["text"],
			directional: directionalSignalScore(*text),
		})
	}

	if image != nil && image.RawEvidenceCount > 0 {
		contributions = append(contributions, sourceContribution{
			name:        "image",
			raw:         float64(image.Confidence) / 100 * sourceCredibility["image"],
			directional: directionalSignalScore(*image),
		})
	}

	if temporal != nil && temporal.Verdict != NoTemporalInfo {
		directional := float64(neutralScore)
		if temporal.HasMismatch {
			directional = float64(100 - temporal.Confidence)
		}
		contributions = append(contributions, sourceContribution{
			name:        "temporal",
			raw:         float64(temporal.Confidence) / 100 * sourceCredibility["temporal"],
			directional: directional,
		})
	}

	if summary != nil {
		if len(summary.FactChecks) > 0 {
			contributions = append(contributions, sourceContribution{
				name:        "factcheck",
				raw:         sourceCredibility["factcheck"],
				directional: averageRatingScore(summary.FactChecks),
			})
		}

		if summary.NewsCount > 0 {
			credibility := sourceCredibility["news_general"]
			if summary.CredibleNewsCount > 0 {
				credibility = sourceCredibility["news"]
			}
			contributions = append(contributions, sourceContribution{
				name:        "news",
				raw:         credibility * summary.EvidenceScore / 100,
				directional: summary.EvidenceScore,
			})
		}

		if summary.KnowledgeFound {
			contributions = append(contributions, sourceContribution{
				name:        "knowledge",
				raw:         sourceCredibility["knowledge"],
				directional: 80,
			})
		}

		if summary.WebCount > 0 {
			contributions = append(contributions, sourceContribution{
				name:        "web",
				raw:         sourceCredibility["web"] * summary.EvidenceScore / 100,
				directional: summary.EvidenceScore,
			})
		}
	}

	return contributions
}

// normalizeWeights linearly normalizes non-zero raw scores to sum to 1.0.
// When every raw score is zero the present sources share equal weight.
func normalizeWeights(contributions []sourceContribution) map[string]float64 {
	weights := make(map[string]float64, len(contributions))
	if len(contributions) == 0 {
		return weights
	}

	total := 0.0
	for _, c := range contributions {
		total += c.raw
	}

	if total == 0 {
		equal := 1.0 / float64(len(contributions))
		for _, c := range contributions {
			weights[c.name] = equal
		}
		return weights
	}

	for _, c := range contributions {
		if c.raw == 0 {
			continue
		}
		weights[c.name] = c.raw / total
	}
	return weights
}

// directionalSignalScore orients a scorer confidence: supportive when the
// signal says real, inverted when it says fake.
func directionalSignalScore(signal SignalResult) float64 {
	if signal.IsReal {
		return float64(signal.Confidence)
	}
	return float64(100 - signal.Confidence)
}

// averageRatingScore maps each fact-check rating to its directional score
// and averages them.
func averageRatingScore(factChecks []FactCheckFinding) float64 {
	if len(factChecks) == 0 {
		return neutralScore
	}

	total := 0.0
	for _, fc := range factChecks {
		total += ratingScore(fc.Rating)
	}
	return total / float64(len(factChecks))
}

func ratingScore(rating string) float64 {
	lowered := strings.ToLower(rating)
	for _, entry := range ratingScores {
		if strings.Contains(lowered, entry.marker) {
			return entry.score
		}
	}
	return neutralScore
}

// detectContradictions runs all contradiction checks. Detection is
// independent of the weighted score and always runs.
func (e *AttentionFusionEngine) detectContradictions(text, image *SignalResult, temporal *TemporalResult, summary *EvidenceSummary) []Contradiction {
	var contradictions []Contradiction

	if text != nil && image != nil && text.IsReal != image.IsReal {
		diff := text.Confidence - image.Confidence
		if diff < 0 {
			diff = -diff
		}
		contradictions = append(contradictions, Contradiction{
			Kind:     TextImageMismatch,
			Severity: SeverityHigh,
			Description: fmt.Sprintf(
				"Text signal says %s while image signal says %s",
				realityWord(text.IsReal), realityWord(image.IsReal)),
			Confidence: diff,
		})
	}

	if temporal != nil && temporal.HasMismatch {
		description := temporal.CorrectionMessage
		if description == "" {
			description = string(temporal.Verdict)
		}
		contradictions = append(contradictions, Contradiction{
			Kind:        TemporalMismatch,
			Severity:    temporal.Severity,
			Description: description,
			Confidence:  temporal.Confidence,
		})
	}

	if summary != nil {
		for _, fc := range summary.FactChecks {
			if ratingContradictsClaim(fc.Rating) {
				contradictions = append(contradictions, Contradiction{
					Kind:     FactCheckContradiction,
					Severity: SeverityHigh,
					Description: fmt.Sprintf(
						"Fact-check by %s rated the claim '%s'", fc.Publisher, fc.Rating),
					Confidence: 95,
				})
			}
		}

		claimsReal := (text != nil && text.IsReal) || (image != nil && image.IsReal)
		if summary.Verdict == NoEvidenceFound && claimsReal {
			contradictions = append(contradictions, Contradiction{
				Kind:        EvidenceAbsence,
				Severity:    SeverityMedium,
				Description: "Signals claim a real incident but no external evidence was found",
				Confidence:  60,
			})
		}
	}

	return contradictions
}

func ratingContradictsClaim(rating string) bool {
	lowered := strings.ToLower(rating)
	for _, marker := range contradictionRatings {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

func realityWord(isReal bool) string {
	if isReal {
		return "real"
	}
	return "fake"
}

func selectVerdict(isAuthentic bool, contradictions []Contradiction) (VerdictType, string) {
	if len(contradictions) == 0 {
		if isAuthentic {
			return VerifiedAuthentic, "Content verified as authentic"
		}
		return LikelyFake, "Content is likely fake"
	}

	for _, c := range contradictions {
		if c.Severity == SeverityHigh || c.Severity == SeverityCritical {
			return CriticalContradictions, "Critical contradictions detected between evidence sources"
		}
	}
	return ModerateConcerns, "Moderate concerns found during verification"
}

// buildExplanation assembles the human-readable explanation: overall score,
// dominant source, up to 3 key findings, up to 3 contradictions.
func buildExplanation(score float64, weights map[string]float64, summary *EvidenceSummary, contradictions []Contradiction) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Authenticity score %.0f/100.", score))

	if dominant := dominantSource(weights); dominant != "" {
		parts = append(parts, fmt.Sprintf("Dominant evidence source: %s.", dominant))
	}

	if summary != nil {
		findings := summary.KeyFindings
		if len(findings) > 3 {
			findings = findings[:3]
		}
		for _, finding := range findings {
			parts = append(parts, finding+".")
		}
	}

	shown := contradictions
	if len(shown) > 3 {
		shown = shown[:3]
	}
	for _, c := range shown {
		parts = append(parts, c.Description+".")
	}

	return strings.Join(parts, " ")
}

// dominantSource returns the source with the highest attention weight. Ties
// resolve by fixed credibility, then name, so the result is deterministic.
func dominantSource(weights map[string]float64) string {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		wi, wj := weights[names[i]], weights[names[j]]
		if wi != wj {
			return wi > wj
		}
		ci, cj := sourceCredibility[names[i]], sourceCredibility[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})

	if len(names) == 0 {
		return ""
	}
	return names[0]
}
