package verify

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

// Text-only verification blends the local evidence signal with the external
// evidence score at a fixed ratio.
const (
	textOnlyLocalWeight    = 0.6
	textOnlyExternalWeight = 0.4

	factCheckOverrideConfidence = 95
	oldImageNoteDays            = 365
)

// Request carries everything a combined verification needs. Evidence items
// and external buckets are collected upstream; the orchestrator only scores
// and fuses.
type Request struct {
	Text          TextSignal
	UserImage     image.Image
	TextEvidence  []EvidenceItem
	ImageEvidence []EvidenceItem
	External      *ExternalEvidence

	// ActualDate is the independently corroborated event date, when the
	// evidence collector found one.
	ActualDate *time.Time

	// ImageDate is the capture date extracted from the user image metadata.
	ImageDate *time.Time
}

// VerificationOrchestrator composes the scorers, the temporal checker, the
// evidence summarizer, and the fusion engine. It holds no decision logic of
// its own and no per-request state.
type VerificationOrchestrator struct {
	textScorer  *TextEvidenceScorer
	imageScorer *ImageEvidenceScorer
	temporal    *TemporalConsistencyChecker
	summarizer  *ExternalEvidenceSummarizer
	fusion      *AttentionFusionEngine
	observer    Observer
}

// NewVerificationOrchestrator wires the engine components with shared
// thresholds. A nil observer disables checkpoint notifications.
func NewVerificationOrchestrator(thresholds Thresholds, observer Observer) *VerificationOrchestrator {
	if observer == nil {
		observer = NopObserver{}
	}
	return &VerificationOrchestrator{
		textScorer:  NewTextEvidenceScorer(thresholds),
		imageScorer: NewImageEvidenceScorer(thresholds),
		temporal:    NewTemporalConsistencyChecker(thresholds),
		summarizer:  NewExternalEvidenceSummarizer(),
		fusion:      NewAttentionFusionEngine(observer),
		observer:    observer,
	}
}

// VerifyTextAndImage runs the full pipeline: the four sub-computations are
// independent and run concurrently, then fusion waits on all of them. Any
// panic inside the pipeline is converted to the terminal ERROR verdict and
// never propagated.
func (o *VerificationOrchestrator) VerifyTextAndImage(ctx context.Context, req Request) (verdict FusedVerdict) {
	defer func() {
		if r := recover(); r != nil {
			verdict = errorVerdict(fmt.Sprintf("%v", r))
		}
	}()

	var (
		textResult     SignalResult
		imageResult    SignalResult
		temporalResult TemporalResult
		summary        *EvidenceSummary
	)

	group, _ := errgroup.WithContext(ctx)

	group.Go(guardPanic(func() {
		textResult = o.textScorer.Score(req.Text, req.TextEvidence)
		o.observer.SignalComputed("text", map[string]interface{}{
			"confidence": textResult.Confidence,
			"label":      string(textResult.Authenticity),
		})
	}))

	group.Go(guardPanic(func() {
		imageResult = o.imageScorer.Score(req.UserImage, req.ImageEvidence)
		o.observer.SignalComputed("image", map[string]interface{}{
			"confidence": imageResult.Confidence,
			"label":      string(imageResult.Authenticity),
		})
	}))

	group.Go(guardPanic(func() {
		temporalResult = o.temporal.Check(claimedDate(req.Text), req.ActualDate, req.ImageDate)
		o.observer.SignalComputed("temporal", map[string]interface{}{
			"verdict":  string(temporalResult.Verdict),
			"mismatch": temporalResult.HasMismatch,
		})
	}))

	group.Go(guardPanic(func() {
		if req.External != nil {
			summarized := o.summarizer.Summarize(*req.External)
			summary = &summarized
			o.observer.SignalComputed("evidence", map[string]interface{}{
				"score":   summarized.EvidenceScore,
				"verdict": string(summarized.Verdict),
			})
		}
	}))

	// Fusion barrier: all four results must be ready.
	if err := group.Wait(); err != nil {
		return errorVerdict(err.Error())
	}

	if summary == nil && temporalResult.Verdict == NoTemporalInfo {
		return o.fusion.FuseDual(textResult, imageResult, shareSourceDomain(req.TextEvidence, req.ImageEvidence))
	}

	return o.fusion.Fuse(&textResult, &imageResult, &temporalResult, summary)
}

// VerifyTextOnly scores the text claim and blends in the external evidence
// score. A fact-check that rates the claim false overrides the blend
// entirely.
func (o *VerificationOrchestrator) VerifyTextOnly(ctx context.Context, signal TextSignal, items []EvidenceItem, external *ExternalEvidence) (result SignalResult) {
	defer func() {
		if r := recover(); r != nil {
			result = errorSignal(fmt.Sprintf("%v", r))
		}
	}()

	result = o.textScorer.Score(signal, items)
	o.observer.SignalComputed("text", map[string]interface{}{
		"confidence": result.Confidence,
		"label":      string(result.Authenticity),
	})

	if external == nil {
		return result
	}

	summary := o.summarizer.Summarize(*external)

	for _, fc := range summary.FactChecks {
		if RatingIndicatesFalsehood(fc.Rating) {
			return SignalResult{
				IsReal:       false,
				Authenticity: LabelFactCheckedFalse,
				Confidence:   factCheckOverrideConfidence,
				Rationale: fmt.Sprintf(
					"Fact-check by %s rated this claim '%s'", fc.Publisher, fc.Rating),
				RawEvidenceCount: result.RawEvidenceCount,
			}
		}
	}

	blended := int(math.Round(
		textOnlyLocalWeight*float64(result.Confidence) + textOnlyExternalWeight*summary.EvidenceScore))
	blended = min(blended, maxSignalConfidence)

	label, isReal := o.textScorer.classify(blended)
	if result.RawEvidenceCount == 0 && summary.TotalSources == 0 {
		label, isReal = LabelInsufficientEvidence, false
	}

	return SignalResult{
		IsReal:       isReal,
		Authenticity: label,
		Confidence:   blended,
		Rationale: fmt.Sprintf("%s; external evidence score %.0f/100 (%s)",
			result.Rationale, summary.EvidenceScore, summary.Verdict),
		RawEvidenceCount: result.RawEvidenceCount,
	}
}

// VerifyImageOnly scores the user image against reverse-search evidence. An
// image older than a year gets a reuse warning appended to the rationale.
func (o *VerificationOrchestrator) VerifyImageOnly(ctx context.Context, userImage image.Image, items []EvidenceItem, imageDate *time.Time) (result SignalResult) {
	defer func() {
		if r := recover(); r != nil {
			result = errorSignal(fmt.Sprintf("%v", r))
		}
	}()

	result = o.imageScorer.Score(userImage, items)
	o.observer.SignalComputed("image", map[string]interface{}{
		"confidence": result.Confidence,
		"label":      string(result.Authenticity),
	})

	if imageDate != nil {
		ageDays := int(time.Since(*imageDate).Hours() / 24)
		if ageDays > oldImageNoteDays {
			result.Rationale = fmt.Sprintf(
				"%s. Note: image was captured %d days ago and may be reused from an older event",
				result.Rationale, ageDays)
		}
	}

	return result
}

// guardPanic wraps a concurrent sub-computation so a panic inside its
// goroutine comes back as an error through the group barrier instead of
// killing the process.
func guardPanic(fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%v", r)
			}
		}()
		fn()
		return nil
	}
}

// claimedDate picks the highest-confidence extracted date, if any.
func claimedDate(signal TextSignal) *time.Time {
	var best *ClaimedDate
	for i := range signal.ClaimedDates {
		candidate := &signal.ClaimedDates[i]
		if best == nil || candidate.Confidence > best.Confidence {
			best = candidate
		}
	}
	if best == nil {
		return nil
	}
	date := best.Date
	return &date
}

// shareSourceDomain reports whether the two evidence sets have any source
// domain in common, a weak proxy for describing the same incident.
func shareSourceDomain(textItems, imageItems []EvidenceItem) bool {
	domains := make(map[string]struct{}, len(textItems))
	for _, item := range textItems {
		if item.SourceDomain != "" {
			domains[item.SourceDomain] = struct{}{}
		}
	}
	for _, item := range imageItems {
		if _, ok := domains[item.SourceDomain]; ok && item.SourceDomain != "" {
			return true
		}
	}
	return false
}

func errorVerdict(detail string) FusedVerdict {
	errResult := errorSignal(detail)
	return FusedVerdict{
		Verdict:           VerdictError,
		MainMessage:       "Verification failed due to an internal error",
		Confidence:        0,
		AuthenticityScore: 0,
		AttentionWeights:  map[string]float64{},
		Explanation:       "An internal error prevented verification; the content could not be assessed",
		TextVerification:  &errResult,
		ImageVerification: &errResult,
	}
}

func errorSignal(detail string) SignalResult {
	return SignalResult{
		IsReal:       false,
		Authenticity: LabelError,
		Confidence:   0,
		Rationale:    "Internal error during verification: " + detail,
	}
}
