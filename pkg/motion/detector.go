// Package motion compares consecutive screen samples and decides whether the
// screen changed enough to count as user activity.
package motion

import (
	"image"
	"time"
)

const (
	// DefaultThreshold is the similarity score below which motion is detected.
	DefaultThreshold = 0.95
	// DefaultDiffThreshold binarizes the per-pixel difference map.
	DefaultDiffThreshold = 55
)

// Sample is one grayscale capture at the detector's fixed resolution.
type Sample struct {
	Time   time.Time
	Image  *image.Gray
	Region image.Rectangle
}

// Result is the outcome of comparing two samples.
type Result struct {
	// Similarity is the mean structural similarity in [0, 1].
	Similarity float64
	// Intensity is the share of changed pixels, in percent.
	Intensity float64
	// Detected is Similarity < threshold. Intensity does not take part.
	Detected bool
}

// Detector holds the previous sample between ticks. It is not safe for
// concurrent use; the sampling loop is its only caller.
type Detector struct {
	threshold     float64
	diffThreshold uint8

	previous *Sample
	scratch  ssimScratch
}

// NewDetector creates a detector. Zero values select the defaults.
func NewDetector(threshold float64, diffThreshold int) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if diffThreshold <= 0 || diffThreshold > 255 {
		diffThreshold = DefaultDiffThreshold
	}
	return &Detector{
		threshold:     threshold,
		diffThreshold: uint8(diffThreshold),
	}
}

// Observe compares current with the stored previous sample and then makes
// current the new baseline. A nil current replaces the baseline as well, so
// the following call also fails open.
func (d *Detector) Observe(current *Sample) Result {
	res := d.Compare(d.previous, current)
	d.previous = current
	return res
}

// Compare scores two samples. A missing sample, or a pair of different
// sizes, fails open: motion is reported with zero intensity.
func (d *Detector) Compare(prev, cur *Sample) Result {
	if prev == nil || cur == nil || prev.Image == nil || cur.Image == nil {
		return Result{Detected: true}
	}
	if prev.Image.Rect.Dx() != cur.Image.Rect.Dx() || prev.Image.Rect.Dy() != cur.Image.Rect.Dy() {
		return Result{Detected: true}
	}

	score, changed, total := d.scratch.compute(prev.Image, cur.Image, d.diffThreshold)
	intensity := 0.0
	if total > 0 {
		intensity = float64(changed) / float64(total) * 100
	}

	return Result{
		Similarity: score,
		Intensity:  intensity,
		Detected:   score < d.threshold,
	}
}

// Reset drops the stored baseline.
func (d *Detector) Reset() {
	d.previous = nil
}
