package verify

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
)

// ImageEvidenceScorer verifies a user image against similar images found
// online using a naive pixel-correlation similarity. Items whose similarity
// cannot be computed are skipped, never abort the batch.
type ImageEvidenceScorer struct {
	thresholds Thresholds
}

// NewImageEvidenceScorer creates a new image evidence scorer.
func NewImageEvidenceScorer(thresholds Thresholds) *ImageEvidenceScorer {
	return &ImageEvidenceScorer{thresholds: thresholds}
}

const (
	imageSimilarityPoints = 60
	imageCountPoints      = 5
	imageBaseConfidence   = 20
	similarityCanvasSize  = 100
)

// Score verifies a user image against retrieved similar images.
func (s *ImageEvidenceScorer) Score(userImage image.Image, items []EvidenceItem) SignalResult {
	if len(items) == 0 {
		return SignalResult{
			IsReal:           false,
			Authenticity:     LabelInsufficientEvidence,
			Confidence:       insufficientEvidenceConfidence,
			Rationale:        "No similar images found online",
			RawEvidenceCount: 0,
		}
	}

	if len(items) > s.thresholds.MaxEvidenceItems {
		items = items[:s.thresholds.MaxEvidenceItems]
	}

	var similarities []float64
	for _, item := range items {
		similarity, err := ImageSimilarity(userImage, item.Image)
		if err != nil {
			// Corrupt or missing image: skip this item, keep the batch.
			continue
		}
		similarities = append(similarities, similarity)
	}

	avgSimilarity := 0.0
	if len(similarities) > 0 {
		sum := 0.0
		for _, sim := range similarities {
			sum += sim
		}
		avgSimilarity = sum / float64(len(similarities))
	}

	confidence := min(
		int(math.Round(avgSimilarity*imageSimilarityPoints))+len(items)*imageCountPoints+imageBaseConfidence,
		maxSignalConfidence,
	)

	label, isReal := s.classify(confidence)

	return SignalResult{
		IsReal:       isReal,
		Authenticity: label,
		Confidence:   confidence,
		Rationale: fmt.Sprintf(
			"Compared against %d similar images (%d comparable, average similarity %.0f%%)",
			len(items), len(similarities), avgSimilarity*100),
		RawEvidenceCount: len(items),
	}
}

func (s *ImageEvidenceScorer) classify(confidence int) (AuthenticityLabel, bool) {
	switch {
	case confidence >= s.thresholds.RealConfidence:
		return LabelReal, true
	case confidence >= s.thresholds.LikelyRealConfidence:
		return LabelLikelyReal, true
	default:
		return LabelUncertain, false
	}
}

// ImageSimilarity computes a normalized [0,1] similarity between two images:
// both are resampled onto a fixed small canvas, flattened to grayscale
// vectors, and compared by Pearson correlation mapped from [-1,1] to [0,1].
func ImageSimilarity(a, b image.Image) (float64, error) {
	if a == nil || b == nil {
		return 0, NewDegradedError("image_similarity", "missing image data")
	}

	vecA := flattenToGray(a)
	vecB := flattenToGray(b)

	correlation, err := pearson(vecA, vecB)
	if err != nil {
		return 0, err
	}

	similarity := (correlation + 1) / 2
	return math.Max(0, math.Min(1, similarity)), nil
}

// flattenToGray resamples the image to the similarity canvas and returns its
// grayscale pixel vector.
func flattenToGray(img image.Image) []float64 {
	canvas := image.NewGray(image.Rect(0, 0, similarityCanvasSize, similarityCanvasSize))
	draw.ApproxBiLinear.Scale(canvas, canvas.Bounds(), img, img.Bounds(), draw.Src, nil)

	vector := make([]float64, 0, similarityCanvasSize*similarityCanvasSize)
	for _, pixel := range canvas.Pix {
		vector = append(vector, float64(pixel))
	}
	return vector
}

// pearson computes the Pearson correlation coefficient of two equal-length
// vectors. Constant vectors have undefined correlation and degrade.
func pearson(x, y []float64) (float64, error) {
	if len(x) != len(y) || len(x) == 0 {
		return 0, NewDegradedError("image_similarity", "vector length mismatch")
	}

	n := float64(len(x))
	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX := sumX / n
	meanY := sumY / n

	var covariance, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		covariance += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return 0, NewDegradedError("image_similarity", "constant pixel vector")
	}

	return covariance / math.Sqrt(varX*varY), nil
}
