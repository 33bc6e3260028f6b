package detector

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMissingCoordinate is returned when a landmark on the wire lacks x, y or z.
var ErrMissingCoordinate = errors.New("landmark coordinate missing")

// WirePoint is a landmark as it arrives over JSON. Pointers distinguish an
// absent coordinate from a zero one.
type WirePoint struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

// Point converts the wire form, failing if any coordinate is absent.
func (w WirePoint) Point() (Point3D, error) {
	if w.X == nil || w.Y == nil || w.Z == nil {
		return Point3D{}, ErrMissingCoordinate
	}
	return Point3D{X: *w.X, Y: *w.Y, Z: *w.Z}, nil
}

// WireHand is one hand as produced by the landmark service or posted by a client.
type WireHand struct {
	Points     []WirePoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

// ToPoints converts wire points without checking the count; the classifier
// owns that decision.
func ToPoints(ws []WirePoint) ([]Point3D, error) {
	points := make([]Point3D, len(ws))
	for i, w := range ws {
		p, err := w.Point()
		if err != nil {
			return nil, fmt.Errorf("landmark %d: %w", i, err)
		}
		points[i] = p
	}
	return points, nil
}

// Landmarks converts a wire hand into HandLandmarks. The hand must carry
// exactly NumLandmarks complete points.
func (h WireHand) Landmarks() (HandLandmarks, error) {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	if len(h.Points) != NumLandmarks {
		return lm, fmt.Errorf("hand has %d landmarks, expected %d", len(h.Points), NumLandmarks)
	}
	points, err := ToPoints(h.Points)
	if err != nil {
		return lm, err
	}
	copy(lm.Points[:], points)
	return lm, nil
}

// ParseHand decodes a single JSON hand document.
func ParseHand(data []byte) (HandLandmarks, error) {
	var h WireHand
	if err := json.Unmarshal(data, &h); err != nil {
		return HandLandmarks{}, fmt.Errorf("parse hand: %w", err)
	}
	return h.Landmarks()
}
