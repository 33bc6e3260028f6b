// Package detector turns camera frames into hand landmarks.
package detector

// Landmark indices in MediaPipe hand order. Each finger runs from the joint
// nearest the wrist out to its tip, and the classifier relies on that.
const (
	Wrist = iota
	ThumbCMC
	ThumbMCP
	ThumbIP
	ThumbTip
	IndexMCP
	IndexPIP
	IndexDIP
	IndexTip
	MiddleMCP
	MiddlePIP
	MiddleDIP
	MiddleTip
	RingMCP
	RingPIP
	RingDIP
	RingTip
	PinkyMCP
	PinkyPIP
	PinkyDIP
	PinkyTip

	NumLandmarks
)

// Point3D is a single landmark. X and Y are relative to the image
// (0..1, Y grows downward); Z is depth relative to the wrist, not metric.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks is one detected hand.
type HandLandmarks struct {
	Points [NumLandmarks]Point3D `json:"points"`
	// Handedness is "Left" or "Right" as reported by the detector.
	Handedness string  `json:"handedness"`
	Score      float64 `json:"score"`
}

// Slice copies the points into a new slice; nil for a nil hand.
func (h *HandLandmarks) Slice() []Point3D {
	if h == nil {
		return nil
	}
	return append([]Point3D(nil), h.Points[:]...)
}
