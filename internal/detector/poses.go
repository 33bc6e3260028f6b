package detector

// ThumbPose selects one of the preset thumb placements used by BuildHand.
type ThumbPose int

const (
	// ThumbTucked folds the thumb tip down across the palm.
	ThumbTucked ThumbPose = iota
	// ThumbUp points the thumb straight up.
	ThumbUp
	// ThumbOut holds the thumb out to the side, away from the index finger.
	ThumbOut
)

// Column x-positions of the index, middle, ring and pinky knuckles.
var fingerColumns = [4]float64{0.56, 0.50, 0.44, 0.38}

var thumbPoints = map[ThumbPose][4]Point3D{
	ThumbTucked: {
		{X: 0.56, Y: 0.74}, {X: 0.61, Y: 0.70}, {X: 0.63, Y: 0.66}, {X: 0.62, Y: 0.72, Z: 0.02},
	},
	ThumbUp: {
		{X: 0.56, Y: 0.74}, {X: 0.61, Y: 0.70}, {X: 0.64, Y: 0.60}, {X: 0.64, Y: 0.46},
	},
	ThumbOut: {
		{X: 0.56, Y: 0.74}, {X: 0.61, Y: 0.70}, {X: 0.68, Y: 0.64}, {X: 0.75, Y: 0.60},
	},
}

// BuildHand lays out a synthetic right hand, palm facing the camera, with
// the wrist near the center of the frame. extended lists the index, middle,
// ring and pinky fingers; a finger that is not extended is curled toward
// the palm.
func BuildHand(thumb ThumbPose, extended [4]bool) HandLandmarks {
	hand := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	hand.Points[Wrist] = Point3D{X: 0.5, Y: 0.78}
	thumbPts := thumbPoints[thumb]
	copy(hand.Points[ThumbCMC:ThumbTip+1], thumbPts[:])

	for f, x := range fingerColumns {
		base := IndexMCP + f*4
		if extended[f] {
			hand.Points[base] = Point3D{X: x, Y: 0.60}
			hand.Points[base+1] = Point3D{X: x, Y: 0.50}
			hand.Points[base+2] = Point3D{X: x, Y: 0.42}
			hand.Points[base+3] = Point3D{X: x, Y: 0.35}
		} else {
			hand.Points[base] = Point3D{X: x, Y: 0.60}
			hand.Points[base+1] = Point3D{X: x, Y: 0.55, Z: -0.03}
			hand.Points[base+2] = Point3D{X: x, Y: 0.60, Z: -0.05}
			hand.Points[base+3] = Point3D{X: x, Y: 0.63, Z: -0.03}
		}
	}

	return hand
}

// ThumbsUpLandmarks returns a fist with the thumb pointing up (letter A).
func ThumbsUpLandmarks() HandLandmarks {
	return BuildHand(ThumbUp, [4]bool{})
}

// OpenPalmLandmarks returns a flat hand, all fingers extended (letter B).
func OpenPalmLandmarks() HandLandmarks {
	return BuildHand(ThumbOut, [4]bool{true, true, true, true})
}

// IndexUpLandmarks returns the index finger pointing up with the other
// fingers and the thumb folded (letter D).
func IndexUpLandmarks() HandLandmarks {
	return BuildHand(ThumbTucked, [4]bool{true, false, false, false})
}

// FistLandmarks returns a closed fist with the thumb tucked (letter E).
func FistLandmarks() HandLandmarks {
	return BuildHand(ThumbTucked, [4]bool{})
}

// ThreeFingersLandmarks returns index, middle and ring extended (letter W).
func ThreeFingersLandmarks() HandLandmarks {
	return BuildHand(ThumbTucked, [4]bool{true, true, true, false})
}

// ThumbPinkyLandmarks returns thumb and pinky extended (letter Y).
func ThumbPinkyLandmarks() HandLandmarks {
	return BuildHand(ThumbOut, [4]bool{false, false, false, true})
}
