package gesture

import (
	"math"

	"github.com/ayusman/fingerspell/internal/detector"
)

// Finger identifies a digit. The numeric value is the finger's position in
// the landmark layout.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
)

var fingerNames = [...]string{"thumb", "index", "middle", "ring", "pinky"}

func (f Finger) String() string {
	if f < Thumb || f > Pinky {
		return "unknown"
	}
	return fingerNames[f]
}

// CurlRatio is the straightness below which a finger counts as closed: the
// base-to-tip distance compared to the length of the path through the
// middle joint.
const CurlRatio = 0.7

// Distance is the Euclidean distance between two landmarks in 3-D.
func Distance(p1, p2 detector.Point3D) float64 {
	dx := p1.X - p2.X
	dy := p1.Y - p2.Y
	dz := p1.Z - p2.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// IsFingerClosed reports whether a finger is folded.
//
// The thumb is closed when its tip sits lower in the image than its IP
// joint. Any other finger is closed when its base-to-tip distance is
// strictly less than CurlRatio times the base-mid-tip path; a finger whose
// three points coincide is folded onto itself and counts as closed. Values
// outside Thumb..Pinky report open.
func IsFingerClosed(points [detector.NumLandmarks]detector.Point3D, finger Finger) bool {
	switch {
	case finger == Thumb:
		return points[detector.ThumbTip].Y > points[detector.ThumbIP].Y
	case finger < Thumb || finger > Pinky:
		return false
	}

	f := int(finger)
	base := points[f*4+1]
	mid := points[f*4+2]
	tip := points[f*4+3]

	path := Distance(base, mid) + Distance(mid, tip)
	if path == 0 {
		return true
	}
	return Distance(base, tip) < CurlRatio*path
}
