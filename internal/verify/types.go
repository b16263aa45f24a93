package verify

import (
	"image"
	"time"
)

// CredibilityTier is a coarse trust ranking of a source domain.
type CredibilityTier string

const (
	Tier1Global   CredibilityTier = "TIER1_GLOBAL"
	Tier2National CredibilityTier = "TIER2_NATIONAL"
	Tier3Regional CredibilityTier = "TIER3_REGIONAL"
	SocialMedia   CredibilityTier = "SOCIAL_MEDIA"
	TierUnknown   CredibilityTier = "UNKNOWN"
)

// EvidenceItem is a single retrieved artifact (image plus source metadata)
// used as corroboration for a claim. Produced by the retrieval collaborator
// and consumed read-only by the scorers.
type EvidenceItem struct {
	Image        image.Image     `json:"-"`
	SourceDomain string          `json:"source_domain"`
	Title        string          `json:"title"`
	URL          string          `json:"url"`
	Credibility  CredibilityTier `json:"credibility"`
}

// ClaimedDate is one date extracted from free text with the extractor's
// confidence in the parse and the span it came from.
type ClaimedDate struct {
	Date       time.Time `json:"date"`
	Confidence float64   `json:"confidence"`
	SourceSpan string    `json:"source_span"`
}

// TextSignal is the structured output of the text-processing collaborator,
// produced once per verification request.
type TextSignal struct {
	RawText      string        `json:"raw_text"`
	Keywords     []string      `json:"keywords"`
	Location     string        `json:"location,omitempty"`
	EventType    string        `json:"event_type"`
	ClaimedDates []ClaimedDate `json:"claimed_dates,omitempty"`
}

// AuthenticityLabel classifies a single-signal verification outcome.
type AuthenticityLabel string

const (
	LabelReal                 AuthenticityLabel = "REAL"
	LabelLikelyReal           AuthenticityLabel = "LIKELY_REAL"
	LabelUncertain            AuthenticityLabel = "UNCERTAIN"
	LabelInsufficientEvidence AuthenticityLabel = "INSUFFICIENT_EVIDENCE"
	LabelFake                 AuthenticityLabel = "FAKE"
	LabelFactCheckedFalse     AuthenticityLabel = "FACT-CHECKED AS FALSE"
	LabelError                AuthenticityLabel = "ERROR"
)

// SignalResult is the common output shape of the text and image scorers.
// Confidence is in [0,95]; never mutated after construction.
type SignalResult struct {
	IsReal           bool              `json:"is_real"`
	Authenticity     AuthenticityLabel `json:"authenticity"`
	Confidence       int               `json:"confidence"`
	Rationale        string            `json:"rationale"`
	RawEvidenceCount int               `json:"raw_evidence_count"`
}

// Severity grades how serious a detected inconsistency is.
type Severity string

const (
	SeverityNone     Severity = "NONE"
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// TemporalVerdict names the terminal state of the temporal state machine.
type TemporalVerdict string

const (
	NoTemporalInfo    TemporalVerdict = "NO_TEMPORAL_INFO"
	WrongYearClaimed  TemporalVerdict = "WRONG_YEAR_CLAIMED"
	WrongMonthClaimed TemporalVerdict = "WRONG_MONTH_CLAIMED"
	OldImageReused    TemporalVerdict = "OLD_IMAGE_REUSED"
	DatesConsistent   TemporalVerdict = "DATES_CONSISTENT"
)

// TemporalResult reports date deltas between the claimed, independently
// corroborated, and image-capture dates. It never infers intent; the fusion
// engine decides how much the deltas matter.
type TemporalResult struct {
	HasMismatch       bool            `json:"has_mismatch"`
	Verdict           TemporalVerdict `json:"verdict"`
	Severity          Severity        `json:"severity"`
	ClaimedDate       *time.Time      `json:"claimed_date,omitempty"`
	ActualDate        *time.Time      `json:"actual_date,omitempty"`
	ImageDate         *time.Time      `json:"image_date,omitempty"`
	CorrectionMessage string          `json:"correction_message,omitempty"`
	Confidence        int             `json:"confidence"`
}

// FactCheckFinding is one published fact-check hit about the claim.
type FactCheckFinding struct {
	Publisher string `json:"publisher"`
	Rating    string `json:"rating"`
	Claim     string `json:"claim"`
	URL       string `json:"url,omitempty"`
}

// NewsHit is one news article matched against the claim.
type NewsHit struct {
	Title       string          `json:"title"`
	Source      string          `json:"source"`
	URL         string          `json:"url,omitempty"`
	Credible    bool            `json:"credible"`
	Tier        CredibilityTier `json:"tier"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
}

// WebHit is one general web search result matched against the claim.
type WebHit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url,omitempty"`
}

// KnowledgeHit is a structured knowledge-base lookup result (one entry at
// most per request).
type KnowledgeHit struct {
	Found   bool   `json:"found"`
	Title   string `json:"title,omitempty"`
	Extract string `json:"extract,omitempty"`
	URL     string `json:"url,omitempty"`
}

// ExternalEvidence holds the heterogeneous multi-source buckets collected by
// the evidence collector. A failed or timed-out bucket is simply empty.
type ExternalEvidence struct {
	News       []NewsHit          `json:"news"`
	FactChecks []FactCheckFinding `json:"factchecks"`
	Knowledge  KnowledgeHit       `json:"knowledge"`
	Web        []WebHit           `json:"web"`
}

// EvidenceVerdict buckets the overall external evidence strength.
type EvidenceVerdict string

const (
	NoEvidenceFound       EvidenceVerdict = "NO_EVIDENCE_FOUND"
	LimitedEvidenceFound  EvidenceVerdict = "LIMITED_EVIDENCE_FOUND"
	ModerateEvidenceFound EvidenceVerdict = "MODERATE_EVIDENCE_FOUND"
	StrongEvidenceFound   EvidenceVerdict = "STRONG_EVIDENCE_FOUND"
)

// EvidenceSummary reduces the external evidence buckets to one record.
// Per-bucket counts are retained so downstream fusion can weigh each source
// type without re-reading the raw buckets.
type EvidenceSummary struct {
	TotalSources    int                `json:"total_sources"`
	CredibleSources int                `json:"credible_sources"`
	EvidenceScore   float64            `json:"evidence_score"`
	Verdict         EvidenceVerdict    `json:"verdict"`
	KeyFindings     []string           `json:"key_findings"`
	FactChecks      []FactCheckFinding `json:"factchecks"`

	NewsCount         int  `json:"news_count"`
	CredibleNewsCount int  `json:"credible_news_count"`
	WebCount          int  `json:"web_count"`
	KnowledgeFound    bool `json:"knowledge_found"`
}

// ContradictionKind names a discrete inconsistency between evidence sources.
type ContradictionKind string

const (
	TextImageMismatch      ContradictionKind = "TEXT_IMAGE_MISMATCH"
	TemporalMismatch       ContradictionKind = "TEMPORAL_MISMATCH"
	FactCheckContradiction ContradictionKind = "FACTCHECK_CONTRADICTION"
	EvidenceAbsence        ContradictionKind = "EVIDENCE_ABSENCE"
)

// Contradiction is a named inconsistency between two or more evidence
// sources, distinct from the continuous authenticity score.
type Contradiction struct {
	Kind        ContradictionKind `json:"kind"`
	Severity    Severity          `json:"severity"`
	Description string            `json:"description"`
	Confidence  int               `json:"confidence"`
}

// VerdictType is the terminal classification of a fused verification.
type VerdictType string

const (
	VerifiedAuthentic          VerdictType = "VERIFIED_AUTHENTIC"
	LikelyFake                 VerdictType = "LIKELY_FAKE"
	CriticalContradictions     VerdictType = "CRITICAL_CONTRADICTIONS"
	ModerateConcerns           VerdictType = "MODERATE_CONCERNS"
	MatchAndReal               VerdictType = "MATCH_AND_REAL"
	BothRealDifferentIncidents VerdictType = "BOTH_REAL_DIFFERENT_INCIDENTS"
	BothFake                   VerdictType = "BOTH_FAKE"
	PartialVerification        VerdictType = "PARTIAL_VERIFICATION"
	VerdictError               VerdictType = "ERROR"
)

// FusedVerdict is the terminal artifact of the engine. Upstream results are
// retained for traceability and are not mutated after fusion.
type FusedVerdict struct {
	Verdict           VerdictType        `json:"verdict"`
	MainMessage       string             `json:"main_message"`
	Confidence        int                `json:"confidence"`
	AuthenticityScore float64            `json:"authenticity_score"`
	AttentionWeights  map[string]float64 `json:"attention_weights"`
	Contradictions    []Contradiction    `json:"contradictions"`
	Explanation       string             `json:"explanation"`

	TextVerification     *SignalResult    `json:"text_verification,omitempty"`
	ImageVerification    *SignalResult    `json:"image_verification,omitempty"`
	TemporalVerification *TemporalResult  `json:"temporal_verification,omitempty"`
	ExternalSummary      *EvidenceSummary `json:"external_summary,omitempty"`
}
