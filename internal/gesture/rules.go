package gesture

import "github.com/ayusman/fingerspell/internal/detector"

// Rule decides whether a pose shows one letter. Rules are pure and total
// over any validated Pose.
type Rule func(p *Pose) bool

// Distance thresholds between landmarks, in normalized image units.
const (
	touchDistance      = 0.05
	circleDistance     = 0.08
	nearDistance       = 0.1
	separateDistance   = 0.15
	wideSpreadDistance = 0.2
)

var fourFingers = []Finger{Index, Middle, Ring, Pinky}

// A
func thumbUpFist(p *Pose) bool {
	return p.Closed(fourFingers...) && p.Open(Thumb)
}

// B
func flatHand(p *Pose) bool {
	return p.Open(fourFingers...)
}

// C
func curvedHand(p *Pose) bool {
	return p.dist(detector.ThumbTip, detector.IndexTip) < nearDistance && p.Open(fourFingers...)
}

// D
func indexUp(p *Pose) bool {
	return p.Open(Index) && p.Closed(Middle, Ring, Pinky)
}

// E
func curledFist(p *Pose) bool {
	return p.Closed(fourFingers...)
}

// F
func thumbIndexTouch(p *Pose) bool {
	return p.dist(detector.ThumbTip, detector.IndexTip) < touchDistance && p.Open(Middle, Ring, Pinky)
}

// G
func indexPointThumbOut(p *Pose) bool {
	return indexUp(p) && p.Open(Thumb)
}

// H
func twoFingersOut(p *Pose) bool {
	return p.Open(Index, Middle) && p.Closed(Ring, Pinky)
}

// I
func pinkyUp(p *Pose) bool {
	return p.Closed(Index, Middle, Ring) && p.Open(Pinky)
}

// J is I drawn through the air; a single frame only sees the start shape.
func pinkyHook(p *Pose) bool {
	return p.Closed(Index, Middle, Ring) && p.Open(Pinky)
}

// K
func twoFingersThumbBetween(p *Pose) bool {
	return twoFingersOut(p) && p.dist(detector.ThumbTip, detector.MiddlePIP) < nearDistance
}

// L
func indexThumbL(p *Pose) bool {
	return indexUp(p) && p.Point(detector.ThumbTip).X > p.Point(detector.ThumbIP).X
}

// M
func thumbUnderThree(p *Pose) bool {
	return p.Closed(Index, Middle, Ring) && p.Point(detector.ThumbTip).X < p.Point(detector.IndexMCP).X
}

// N
func thumbUnderTwo(p *Pose) bool {
	return p.Closed(fourFingers...) && p.Point(detector.ThumbTip).X < p.Point(detector.MiddleMCP).X
}

// O
func fingertipCircle(p *Pose) bool {
	return p.dist(detector.ThumbTip, detector.IndexTip) < circleDistance
}

// P
func indexDownThumbSide(p *Pose) bool {
	return indexUp(p) && indexTipBelowKnuckle(p)
}

// Q
func indexDownPinkyOut(p *Pose) bool {
	return p.Open(Index) && p.Closed(Middle, Ring) && p.Open(Pinky) && indexTipBelowKnuckle(p)
}

// R
func crossedFingers(p *Pose) bool {
	return twoFingersOut(p) && p.dist(detector.IndexTip, detector.MiddleTip) < nearDistance
}

// S
func thumbOverFist(p *Pose) bool {
	return p.Closed(fourFingers...) && p.Point(detector.ThumbTip).Z < p.Point(detector.IndexTip).Z
}

// T
func thumbBetweenIndexMiddle(p *Pose) bool {
	x := p.Point(detector.ThumbTip).X
	return p.Closed(fourFingers...) &&
		x > p.Point(detector.IndexPIP).X &&
		x < p.Point(detector.MiddlePIP).X
}

// U
func twoFingersTogether(p *Pose) bool {
	return twoFingersOut(p) && p.dist(detector.IndexTip, detector.MiddleTip) < separateDistance
}

// V
func twoFingersSpread(p *Pose) bool {
	return twoFingersOut(p) && p.dist(detector.IndexTip, detector.MiddleTip) > separateDistance
}

// W
func threeFingersUp(p *Pose) bool {
	return p.Open(Index, Middle, Ring) && p.Closed(Pinky)
}

// X
func hookedIndex(p *Pose) bool {
	tip := p.Point(detector.IndexTip).Y
	dip := p.Point(detector.IndexDIP).Y
	return tip > dip && dip < p.Point(detector.IndexPIP).Y && p.Closed(Middle, Ring, Pinky)
}

// Y
func thumbPinkyOut(p *Pose) bool {
	return p.Closed(Index, Middle, Ring) && p.Open(Pinky) && p.Open(Thumb)
}

// Z is traced with the index finger; the single-frame shape is index out,
// tip dropped below the knuckle.
func indexTraceDown(p *Pose) bool {
	return indexUp(p) && indexTipBelowKnuckle(p)
}

func indexTipBelowKnuckle(p *Pose) bool {
	return p.Point(detector.IndexTip).Y > p.Point(detector.IndexMCP).Y
}
