package gesture

import (
	"slices"

	"github.com/ayusman/fingerspell/internal/detector"
)

// DefaultRejectThreshold is the confidence a best match must exceed to be
// reported at all.
const DefaultRejectThreshold = 0.7

// Result is the outcome of classifying one frame. A rejected frame has
// Letter None and Confidence 0.
type Result struct {
	Letter     Letter  `json:"letter"`
	Confidence float64 `json:"confidence"`
}

// Accepted reports whether a letter was recognized with confidence above
// threshold.
func (r Result) Accepted(threshold float64) bool {
	return r.Letter != None && r.Confidence > threshold
}

// Candidate is a letter whose rule matched, with its confidence.
type Candidate struct {
	Letter     Letter  `json:"letter"`
	Confidence float64 `json:"confidence"`
}

// Classifier picks the best letter for a pose. It holds no per-frame state
// and is safe for concurrent use.
type Classifier struct {
	table  *Table
	reject float64
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithTable replaces the Alphabet with another rule table.
func WithTable(t *Table) Option {
	return func(c *Classifier) {
		if t != nil {
			c.table = t
		}
	}
}

// WithRejectThreshold overrides DefaultRejectThreshold.
func WithRejectThreshold(threshold float64) Option {
	return func(c *Classifier) {
		c.reject = threshold
	}
}

// NewClassifier creates a Classifier over the Alphabet.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		table:  Alphabet,
		reject: DefaultRejectThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Table returns the rule table the classifier scores against.
func (c *Classifier) Table() *Table {
	return c.table
}

// RejectThreshold returns the configured reject threshold.
func (c *Classifier) RejectThreshold() float64 {
	return c.reject
}

// Classify returns the best letter for points. Anything other than 21
// finite landmarks is rejected.
func (c *Classifier) Classify(points []detector.Point3D) Result {
	pose, err := NewPose(points)
	if err != nil {
		return Result{}
	}
	return c.ClassifyPose(pose)
}

// ClassifyHand classifies a detector hand. A nil hand is rejected.
func (c *Classifier) ClassifyHand(hand *detector.HandLandmarks) Result {
	if hand == nil {
		return Result{}
	}
	pose, err := PoseFromHand(*hand)
	if err != nil {
		return Result{}
	}
	return c.ClassifyPose(pose)
}

// ClassifyPose selects the highest scoring matching letter. The best score
// must exceed the reject threshold.
func (c *Classifier) ClassifyPose(p *Pose) Result {
	best := Result{}
	// Candidates come in table order, which NewTable sorts by letter, so a
	// strict comparison leaves ties with the earlier letter.
	for _, cand := range c.candidates(p) {
		if cand.Confidence > best.Confidence {
			best = Result(cand)
		}
	}
	if best.Letter == None || best.Confidence <= c.reject {
		return Result{}
	}
	return best
}

// Candidates lists every matching letter, best first. Malformed input has
// no candidates.
func (c *Classifier) Candidates(points []detector.Point3D) []Candidate {
	pose, err := NewPose(points)
	if err != nil {
		return nil
	}
	out := c.candidates(pose)
	slices.SortStableFunc(out, func(a, b Candidate) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		}
		return int(a.Letter) - int(b.Letter)
	})
	return out
}

func (c *Classifier) candidates(p *Pose) []Candidate {
	matched := c.table.matches(p)
	var out []Candidate
	for i, ok := range matched {
		if !ok {
			continue
		}
		out = append(out, Candidate{
			Letter:     c.table.signs[i].Letter,
			Confidence: c.table.score(p, i, matched),
		})
	}
	return out
}
