package gesture

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/fingerspell/internal/detector"
)

var (
	// ErrLandmarkCount is returned when a pose does not have exactly 21 points.
	ErrLandmarkCount = errors.New("hand pose needs exactly 21 landmarks")
	// ErrNonFinite is returned when a coordinate is NaN or infinite.
	ErrNonFinite = errors.New("landmark coordinate is not finite")
)

// Pose is a validated hand pose for one frame. The open/closed state of each
// finger is computed once on construction.
type Pose struct {
	points [detector.NumLandmarks]detector.Point3D
	closed [Pinky + 1]bool
}

// NewPose validates points and builds a Pose.
func NewPose(points []detector.Point3D) (*Pose, error) {
	if len(points) != detector.NumLandmarks {
		return nil, fmt.Errorf("%w: got %d", ErrLandmarkCount, len(points))
	}
	var arr [detector.NumLandmarks]detector.Point3D
	copy(arr[:], points)
	return newPose(arr)
}

// PoseFromHand builds a Pose from a detector hand.
func PoseFromHand(hand detector.HandLandmarks) (*Pose, error) {
	return newPose(hand.Points)
}

func newPose(points [detector.NumLandmarks]detector.Point3D) (*Pose, error) {
	for i, p := range points {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			return nil, fmt.Errorf("%w: landmark %d", ErrNonFinite, i)
		}
	}

	pose := &Pose{points: points}
	for f := Thumb; f <= Pinky; f++ {
		pose.closed[f] = IsFingerClosed(points, f)
	}
	return pose, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Point returns landmark i.
func (p *Pose) Point(i int) detector.Point3D {
	return p.points[i]
}

// Points returns a copy of all landmarks.
func (p *Pose) Points() [detector.NumLandmarks]detector.Point3D {
	return p.points
}

// Closed reports whether every listed finger is closed.
func (p *Pose) Closed(fingers ...Finger) bool {
	for _, f := range fingers {
		if !p.closed[f] {
			return false
		}
	}
	return true
}

// Open reports whether every listed finger is open.
func (p *Pose) Open(fingers ...Finger) bool {
	for _, f := range fingers {
		if p.closed[f] {
			return false
		}
	}
	return true
}

// Wrist returns landmark 0.
func (p *Pose) Wrist() detector.Point3D {
	return p.points[detector.Wrist]
}

func (p *Pose) dist(i, j int) float64 {
	return Distance(p.points[i], p.points[j])
}
