package gesture

import (
	"github.com/ayusman/fingerspell/internal/detector"
)

// Confidence adjustments, applied in this order and clamped to [0, 1].
const (
	BaseConfidence   = 0.75
	ReinforceBonus   = 0.15
	OpenHandPenalty  = 0.3
	AmbiguityPenalty = 0.1
	CenteringBonus   = 0.05

	centerMin = 0.2
	centerMax = 0.8
)

// Confidence scores how well points show letter. Malformed input and
// letters outside the Alphabet score 0.
func Confidence(points []detector.Point3D, letter Letter) float64 {
	pose, err := NewPose(points)
	if err != nil {
		return 0
	}
	return Alphabet.Confidence(pose, letter)
}

// Confidence scores letter against a validated pose using this table's rules.
func (t *Table) Confidence(p *Pose, letter Letter) float64 {
	for i, s := range t.signs {
		if s.Letter == letter {
			return t.score(p, i, t.matches(p))
		}
	}
	return 0
}

// score computes sign i's confidence given every rule's result for the frame.
func (t *Table) score(p *Pose, i int, matched []bool) float64 {
	c := BaseConfidence
	if r := t.signs[i].Reinforce; r != nil {
		c += r(p)
	}

	others := 0
	for j, ok := range matched {
		if ok && j != i {
			others++
		}
	}
	c -= AmbiguityPenalty * float64(others)

	if centered(p.Wrist()) {
		c += CenteringBonus
	}

	return min(max(c, 0), 1)
}

func centered(w detector.Point3D) bool {
	return w.X > centerMin && w.X < centerMax && w.Y > centerMin && w.Y < centerMax
}

func bonusIf(ok bool) float64 {
	if ok {
		return ReinforceBonus
	}
	return 0
}

func thumbRaised(p *Pose) float64 {
	return bonusIf(p.Point(detector.ThumbTip).Y < p.Point(detector.ThumbIP).Y-0.1)
}

func allFingersOpen(p *Pose) float64 {
	if p.Open(fourFingers...) {
		return ReinforceBonus
	}
	return -OpenHandPenalty
}

// thumbIndexGap rewards a thumb-to-index distance strictly between lo and hi.
func thumbIndexGap(lo, hi float64) Reinforcement {
	return func(p *Pose) float64 {
		d := p.dist(detector.ThumbTip, detector.IndexTip)
		return bonusIf(d > lo && d < hi)
	}
}

func indexOverMiddle(p *Pose) float64 {
	return bonusIf(p.Open(Index) && p.Closed(Middle))
}

func thumbBesideIndex(p *Pose) float64 {
	return bonusIf(p.Open(Index) && p.Point(detector.ThumbTip).X > p.Point(detector.ThumbIP).X)
}

func wideV(p *Pose) float64 {
	return bonusIf(p.Open(Index, Middle) && p.dist(detector.IndexTip, detector.MiddleTip) > wideSpreadDistance)
}

func threeOpen(p *Pose) float64 {
	return bonusIf(p.Open(Index, Middle, Ring))
}

func thumbAndPinkyOpen(p *Pose) float64 {
	return bonusIf(p.Open(Pinky, Thumb))
}
