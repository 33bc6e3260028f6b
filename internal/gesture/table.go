package gesture

import (
	"errors"
	"fmt"
	"slices"
)

// Reinforcement adjusts a letter's confidence with a check that goes beyond
// its rule. It returns the amount to add, which may be negative.
type Reinforcement func(p *Pose) float64

// Sign is one entry of a rule table.
type Sign struct {
	Letter      Letter
	Description string
	Difficulty  int // 1 (easiest) to 5, for practice ordering only
	Match       Rule
	Reinforce   Reinforcement
}

// Table is an immutable set of signs ordered by letter.
type Table struct {
	signs []Sign
}

// NewTable builds a table. Letters must be valid and unique and every sign
// needs a rule.
func NewTable(signs ...Sign) (*Table, error) {
	if len(signs) == 0 {
		return nil, errors.New("table has no signs")
	}

	sorted := slices.Clone(signs)
	slices.SortFunc(sorted, func(a, b Sign) int { return int(a.Letter) - int(b.Letter) })

	for i, s := range sorted {
		if !s.Letter.Valid() {
			return nil, fmt.Errorf("invalid letter %d", s.Letter)
		}
		if s.Match == nil {
			return nil, fmt.Errorf("letter %s has no rule", s.Letter)
		}
		if i > 0 && sorted[i-1].Letter == s.Letter {
			return nil, fmt.Errorf("duplicate letter %s", s.Letter)
		}
	}

	return &Table{signs: sorted}, nil
}

// Signs returns a copy of the table's signs in letter order.
func (t *Table) Signs() []Sign {
	return slices.Clone(t.signs)
}

// Len returns the number of signs.
func (t *Table) Len() int {
	return len(t.signs)
}

// Lookup returns the sign for a letter.
func (t *Table) Lookup(l Letter) (Sign, bool) {
	i, ok := slices.BinarySearchFunc(t.signs, l, func(s Sign, l Letter) int {
		return int(s.Letter) - int(l)
	})
	if !ok {
		return Sign{}, false
	}
	return t.signs[i], true
}

// matches evaluates every rule once for the pose.
func (t *Table) matches(p *Pose) []bool {
	out := make([]bool, len(t.signs))
	for i, s := range t.signs {
		out[i] = s.Match(p)
	}
	return out
}

// Alphabet is the standard A-Z fingerspelling table.
var Alphabet = mustTable(
	Sign{Letter: 'A', Description: "Fist with thumb pointing up", Difficulty: 1,
		Match: thumbUpFist, Reinforce: thumbRaised},
	Sign{Letter: 'B', Description: "All fingers extended and together", Difficulty: 1,
		Match: flatHand, Reinforce: allFingersOpen},
	Sign{Letter: 'C', Description: "Fingers together curved in C shape", Difficulty: 2,
		Match: curvedHand, Reinforce: thumbIndexGap(touchDistance, separateDistance)},
	Sign{Letter: 'D', Description: "Index finger pointing up, others closed", Difficulty: 2,
		Match: indexUp, Reinforce: indexOverMiddle},
	Sign{Letter: 'E', Description: "All fingers curled, palm facing out", Difficulty: 1,
		Match: curledFist},
	Sign{Letter: 'F', Description: "Index finger and thumb touch, other fingers extended", Difficulty: 3,
		Match: thumbIndexTouch},
	Sign{Letter: 'G', Description: "Index pointing, thumb extended", Difficulty: 2,
		Match: indexPointThumbOut},
	Sign{Letter: 'H', Description: "Index and middle finger extended together", Difficulty: 2,
		Match: twoFingersOut},
	Sign{Letter: 'I', Description: "Pinky finger extended, others closed", Difficulty: 1,
		Match: pinkyUp},
	Sign{Letter: 'J', Description: "Pinky extended with J motion", Difficulty: 3,
		Match: pinkyHook},
	Sign{Letter: 'K', Description: "Index and middle finger in V, thumb between", Difficulty: 3,
		Match: twoFingersThumbBetween},
	Sign{Letter: 'L', Description: "Index finger and thumb in L shape", Difficulty: 1,
		Match: indexThumbL, Reinforce: thumbBesideIndex},
	Sign{Letter: 'M', Description: "Thumb tucked between folded fingers", Difficulty: 2,
		Match: thumbUnderThree},
	Sign{Letter: 'N', Description: "Thumb tucked under index and middle fingers", Difficulty: 2,
		Match: thumbUnderTwo},
	Sign{Letter: 'O', Description: "Fingertips and thumb form circle", Difficulty: 1,
		Match: fingertipCircle, Reinforce: thumbIndexGap(touchDistance, nearDistance)},
	Sign{Letter: 'P', Description: "Index pointing down, thumb to side", Difficulty: 3,
		Match: indexDownThumbSide},
	Sign{Letter: 'Q', Description: "Finger pointing down, thumb and pinky out", Difficulty: 3,
		Match: indexDownPinkyOut},
	Sign{Letter: 'R', Description: "Crossed index and middle fingers", Difficulty: 3,
		Match: crossedFingers},
	Sign{Letter: 'S', Description: "Fist with thumb over fingers", Difficulty: 2,
		Match: thumbOverFist},
	Sign{Letter: 'T', Description: "Thumb between index and middle finger", Difficulty: 2,
		Match: thumbBetweenIndexMiddle},
	Sign{Letter: 'U', Description: "Index and middle finger extended together", Difficulty: 2,
		Match: twoFingersTogether},
	Sign{Letter: 'V', Description: "Index and middle finger in V shape", Difficulty: 1,
		Match: twoFingersSpread, Reinforce: wideV},
	Sign{Letter: 'W', Description: "Index, middle, and ring fingers extended", Difficulty: 2,
		Match: threeFingersUp, Reinforce: threeOpen},
	Sign{Letter: 'X', Description: "Index finger bent at middle joint", Difficulty: 3,
		Match: hookedIndex},
	Sign{Letter: 'Y', Description: "Thumb and pinky extended, others closed", Difficulty: 2,
		Match: thumbPinkyOut, Reinforce: thumbAndPinkyOpen},
	Sign{Letter: 'Z', Description: "Index finger traces Z shape", Difficulty: 4,
		Match: indexTraceDown},
)

func mustTable(signs ...Sign) *Table {
	t, err := NewTable(signs...)
	if err != nil {
		panic(err)
	}
	return t
}
