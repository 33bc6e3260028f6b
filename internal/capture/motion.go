package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	blurKernel = 21
	// pixelDelta is the grey-level change a pixel needs to count as moved.
	pixelDelta = 25
)

// MotionDetector reports the fraction of pixels that changed between
// consecutive frames. The pipeline uses it to pick the idle or active frame
// rate.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64
	// baseline is the previous frame, greyscale and blurred. Nil until the
	// first frame arrives.
	baseline *gocv.Mat
}

// NewMotionDetector fires when more than threshold (a fraction in [0,1]) of
// the pixels change.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{threshold: threshold}
}

// Detect compares frame with the previous one. The first frame, and the first
// after a resolution change, only sets the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	if frame == nil || frame.Empty() {
		return false, 0
	}
	cur := smoothGray(frame)

	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.baseline
	m.baseline = &cur
	if prev == nil {
		return false, 0
	}
	defer prev.Close()
	if prev.Rows() != cur.Rows() || prev.Cols() != cur.Cols() {
		return false, 0
	}

	fraction := changedFraction(*prev, cur)
	return fraction > m.threshold, fraction
}

// smoothGray returns a blurred single-channel copy of frame.
func smoothGray(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() == 1 {
		frame.CopyTo(&gray)
	} else {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	}

	out := gocv.NewMat()
	gocv.GaussianBlur(gray, &out, image.Pt(blurKernel, blurKernel), 0, 0, gocv.BorderDefault)
	return out
}

func changedFraction(a, b gocv.Mat) float64 {
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(a, b, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, pixelDelta, 255, gocv.ThresholdBinary)

	return float64(gocv.CountNonZero(mask)) / float64(mask.Total())
}

// Reset drops the baseline so the next frame starts over.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropBaseline()
}

// Close releases the baseline frame. Detect may still be called afterwards.
func (m *MotionDetector) Close() {
	m.Reset()
}

func (m *MotionDetector) dropBaseline() {
	if m.baseline != nil {
		m.baseline.Close()
		m.baseline = nil
	}
}

// SetThreshold changes the changed-pixel fraction. Values outside (0,1] are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 || threshold > 1 {
		return
	}
	m.mu.Lock()
	m.threshold = threshold
	m.mu.Unlock()
}

func (m *MotionDetector) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}
