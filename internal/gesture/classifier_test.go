package gesture

import (
	"math"
	"math/rand"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/fingerspell/internal/detector"
)

const confDelta = 1e-9

func points(h detector.HandLandmarks) []detector.Point3D {
	return h.Slice()
}

// spreadV is two fingers out and apart with the thumb tucked.
func spreadV() detector.HandLandmarks {
	h := detector.BuildHand(detector.ThumbTucked, [4]bool{true, true, false, false})
	h.Points[detector.IndexMCP] = detector.Point3D{X: 0.56, Y: 0.60}
	h.Points[detector.IndexPIP] = detector.Point3D{X: 0.59, Y: 0.52}
	h.Points[detector.IndexDIP] = detector.Point3D{X: 0.62, Y: 0.44}
	h.Points[detector.IndexTip] = detector.Point3D{X: 0.65, Y: 0.37}
	h.Points[detector.MiddleMCP] = detector.Point3D{X: 0.50, Y: 0.60}
	h.Points[detector.MiddlePIP] = detector.Point3D{X: 0.48, Y: 0.52}
	h.Points[detector.MiddleDIP] = detector.Point3D{X: 0.46, Y: 0.44}
	h.Points[detector.MiddleTip] = detector.Point3D{X: 0.44, Y: 0.37}
	return h
}

// indexDown points the index finger toward the floor.
func indexDown() detector.HandLandmarks {
	h := detector.IndexUpLandmarks()
	h.Points[detector.IndexPIP] = detector.Point3D{X: 0.56, Y: 0.70}
	h.Points[detector.IndexDIP] = detector.Point3D{X: 0.56, Y: 0.78}
	h.Points[detector.IndexTip] = detector.Point3D{X: 0.56, Y: 0.85}
	return h
}

// hookedIndexHand bends the index tip back down below its last joint.
func hookedIndexHand() detector.HandLandmarks {
	h := detector.IndexUpLandmarks()
	h.Points[detector.IndexPIP] = detector.Point3D{X: 0.56, Y: 0.50}
	h.Points[detector.IndexDIP] = detector.Point3D{X: 0.56, Y: 0.45}
	h.Points[detector.IndexTip] = detector.Point3D{X: 0.56, Y: 0.48}
	return h
}

func degenerateHand() []detector.Point3D {
	pts := make([]detector.Point3D, detector.NumLandmarks)
	for i := range pts {
		pts[i] = detector.Point3D{X: 0.5, Y: 0.5}
	}
	return pts
}

func noMatchHand() detector.HandLandmarks {
	return detector.BuildHand(detector.ThumbTucked, [4]bool{false, true, true, false})
}

func candidateLetters(cands []Candidate) []Letter {
	out := make([]Letter, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Letter)
	}
	slices.Sort(out)
	return out
}

func letters(s string) []Letter {
	out := make([]Letter, 0, len(s))
	for i := 0; i < len(s); i++ {
		out = append(out, Letter(s[i]))
	}
	return out
}

func TestClassifier_Presets(t *testing.T) {
	thumbOutIndex := detector.BuildHand(detector.ThumbOut, [4]bool{true, false, false, false})
	thumbUpIndex := detector.BuildHand(detector.ThumbUp, [4]bool{true, false, false, false})
	thumbFront := detector.FistLandmarks()
	thumbFront.Points[detector.ThumbTip].Z = -0.1

	tests := []struct {
		name    string
		hand    detector.HandLandmarks
		matches string
		want    Letter
		conf    float64
	}{
		{name: "thumbs up", hand: detector.ThumbsUpLandmarks(), matches: "AE", want: 'A', conf: 0.85},
		{name: "open palm", hand: detector.OpenPalmLandmarks(), matches: "B", want: 'B', conf: 0.95},
		{name: "index up", hand: detector.IndexUpLandmarks(), matches: "D", want: 'D', conf: 0.95},
		{name: "fist", hand: detector.FistLandmarks(), matches: "E", want: 'E', conf: 0.8},
		{name: "three fingers", hand: detector.ThreeFingersLandmarks(), matches: "W", want: 'W', conf: 0.95},
		{name: "thumb and pinky", hand: detector.ThumbPinkyLandmarks(), matches: "IJY", want: 'Y', conf: 0.75},
		{name: "index with thumb up", hand: thumbUpIndex, matches: "DG", want: 'D', conf: 0.85},
		{name: "index with thumb out", hand: thumbOutIndex, matches: "DGL", want: 'D', conf: 0.75},
		{name: "spread fingers", hand: spreadV(), matches: "HV", want: 'V', conf: 0.85},
		{name: "index down", hand: indexDown(), matches: "DPZ", want: 'D', conf: 0.75},
		{name: "hooked index", hand: hookedIndexHand(), matches: "DX", want: 'D', conf: 0.85},
		{name: "thumb in front of fist", hand: thumbFront, matches: "ES"},
	}

	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts := points(tt.hand)
			assert.Equal(t, letters(tt.matches), candidateLetters(c.Candidates(pts)))

			if tt.want == None {
				return
			}
			got := c.Classify(pts)
			assert.Equal(t, tt.want, got.Letter)
			assert.InDelta(t, tt.conf, got.Confidence, confDelta)
		})
	}
}

func TestClassifier_DegenerateHand(t *testing.T) {
	c := NewClassifier()
	pts := degenerateHand()

	cands := c.Candidates(pts)
	assert.Contains(t, candidateLetters(cands), Letter('E'), "all fingers closed matches E")

	got := c.Classify(pts)
	best := cands[0]
	if best.Letter == 'E' && best.Confidence > DefaultRejectThreshold {
		assert.Equal(t, Letter('E'), got.Letter)
	} else {
		assert.Equal(t, Result{}, got)
	}
}

func TestClassifier_IndexExtended(t *testing.T) {
	got := NewClassifier().Classify(points(detector.IndexUpLandmarks()))

	assert.Equal(t, Letter('D'), got.Letter)
	assert.Greater(t, got.Confidence, DefaultRejectThreshold)
}

func TestClassifier_ThumbIndexTouch(t *testing.T) {
	h := detector.OpenPalmLandmarks()
	h.Points[detector.ThumbTip] = h.Points[detector.IndexTip]

	cands := NewClassifier().Candidates(points(h))
	assert.Contains(t, candidateLetters(cands), Letter('F'))
}

func TestClassifier_NoMatch(t *testing.T) {
	c := NewClassifier()
	pts := points(noMatchHand())

	assert.Empty(t, c.Candidates(pts))
	assert.Equal(t, Result{Letter: None, Confidence: 0}, c.Classify(pts))
}

func TestClassifier_MalformedInput(t *testing.T) {
	c := NewClassifier()
	valid := points(detector.IndexUpLandmarks())

	nan := slices.Clone(valid)
	nan[detector.IndexTip].Y = math.NaN()
	inf := slices.Clone(valid)
	inf[detector.Wrist].X = math.Inf(-1)

	tests := map[string][]detector.Point3D{
		"empty":    nil,
		"too few":  valid[:20],
		"too many": append(slices.Clone(valid), detector.Point3D{}),
		"nan":      nan,
		"infinity": inf,
	}

	for name, pts := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, Result{}, c.Classify(pts))
			assert.Nil(t, c.Candidates(pts))
			assert.Zero(t, Confidence(pts, 'D'))
		})
	}

	assert.Equal(t, Result{}, c.ClassifyHand(nil))
}

func TestNewPose_Errors(t *testing.T) {
	_, err := NewPose(make([]detector.Point3D, 5))
	assert.ErrorIs(t, err, ErrLandmarkCount)

	pts := points(detector.FistLandmarks())
	pts[3].Z = math.Inf(1)
	_, err = NewPose(pts)
	assert.ErrorIs(t, err, ErrNonFinite)

	pose, err := NewPose(points(detector.FistLandmarks()))
	require.NoError(t, err)
	assert.True(t, pose.Closed(Index, Middle, Ring, Pinky))
	assert.False(t, pose.Open(Thumb))
}

func TestClassifier_Deterministic(t *testing.T) {
	c := NewClassifier()
	pts := points(spreadV())
	first := c.Classify(pts)

	for i := 0; i < 100; i++ {
		got := c.Classify(pts)
		assert.Equal(t, first, got)
		assert.Equal(t, math.Float64bits(first.Confidence), math.Float64bits(got.Confidence))
	}
}

func TestClassifier_Concurrent(t *testing.T) {
	c := NewClassifier()
	hands := []detector.HandLandmarks{
		detector.IndexUpLandmarks(), detector.OpenPalmLandmarks(), spreadV(), noMatchHand(),
	}
	want := make([]Result, len(hands))
	for i, h := range hands {
		want[i] = c.Classify(points(h))
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				idx := i % len(hands)
				assert.Equal(t, want[idx], c.ClassifyHand(&hands[idx]))
			}
		}()
	}
	wg.Wait()
}

func TestClassifier_OrderIndependent(t *testing.T) {
	signs := Alphabet.Signs()
	slices.Reverse(signs)
	reversed, err := NewTable(signs...)
	require.NoError(t, err)

	rand.New(rand.NewSource(7)).Shuffle(len(signs), func(i, j int) { signs[i], signs[j] = signs[j], signs[i] })
	shuffled, err := NewTable(signs...)
	require.NoError(t, err)

	std := NewClassifier()
	for _, c := range []*Classifier{NewClassifier(WithTable(reversed)), NewClassifier(WithTable(shuffled))} {
		for _, h := range []detector.HandLandmarks{
			detector.ThumbsUpLandmarks(),
			detector.BuildHand(detector.ThumbOut, [4]bool{true, false, false, false}),
			spreadV(),
			indexDown(),
		} {
			assert.Equal(t, std.Classify(points(h)), c.Classify(points(h)))
		}
	}
}

func TestClassifier_TieGoesToEarlierLetter(t *testing.T) {
	always := func(*Pose) bool { return true }
	for _, order := range [][]Sign{
		{{Letter: 'Q', Match: always}, {Letter: 'K', Match: always}},
		{{Letter: 'K', Match: always}, {Letter: 'Q', Match: always}},
	} {
		table, err := NewTable(order...)
		require.NoError(t, err)

		// Each letter: 0.75 - 0.1 (the other matches) + 0.05 (centered) = 0.7,
		// so lower the threshold to see the pick.
		c := NewClassifier(WithTable(table), WithRejectThreshold(0.5))
		got := c.Classify(points(detector.FistLandmarks()))
		assert.Equal(t, Letter('K'), got.Letter)
	}

	// The D and L scores tie on this hand.
	h := detector.BuildHand(detector.ThumbOut, [4]bool{true, false, false, false})
	cands := NewClassifier().Candidates(points(h))
	require.Len(t, cands, 3)
	assert.Equal(t, Letter('D'), cands[0].Letter)
	assert.Equal(t, Letter('L'), cands[1].Letter)
	assert.Equal(t, cands[0].Confidence, cands[1].Confidence)
}

func TestClassifier_AmbiguityPenalty(t *testing.T) {
	indexOpen := func(p *Pose) bool { return p.Open(Index) }
	pinkyOpen := func(p *Pose) bool { return p.Open(Pinky) }
	table, err := NewTable(
		Sign{Letter: 'X', Match: indexOpen},
		Sign{Letter: 'Y', Match: pinkyOpen},
	)
	require.NoError(t, err)

	both, _ := PoseFromHand(detector.BuildHand(detector.ThumbTucked, [4]bool{true, false, false, true}))
	onlyIndex, _ := PoseFromHand(detector.BuildHand(detector.ThumbTucked, [4]bool{true, false, false, false}))
	onlyPinky, _ := PoseFromHand(detector.BuildHand(detector.ThumbTucked, [4]bool{false, false, false, true}))

	assert.Less(t, table.Confidence(both, 'X'), table.Confidence(onlyIndex, 'X'))
	assert.Less(t, table.Confidence(both, 'Y'), table.Confidence(onlyPinky, 'Y'))
	assert.InDelta(t, AmbiguityPenalty, table.Confidence(onlyIndex, 'X')-table.Confidence(both, 'X'), confDelta)

	// Same hand under the alphabet: G joining D costs D one penalty.
	alone := Confidence(points(detector.IndexUpLandmarks()), 'D')
	withG := Confidence(points(detector.BuildHand(detector.ThumbUp, [4]bool{true, false, false, false})), 'D')
	assert.Less(t, withG, alone)
}

func TestConfidence_Range(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	extremes := []float64{0, -1, 1, 1e-300, -1e300, 1e300, math.MaxFloat64, -math.MaxFloat64, math.SmallestNonzeroFloat64}

	check := func(pts []detector.Point3D) {
		pose, err := NewPose(pts)
		require.NoError(t, err)
		for _, s := range Alphabet.Signs() {
			c := Alphabet.Confidence(pose, s.Letter)
			assert.GreaterOrEqual(t, c, 0.0)
			assert.LessOrEqual(t, c, 1.0)
		}
		r := NewClassifier().ClassifyPose(pose)
		assert.GreaterOrEqual(t, r.Confidence, 0.0)
		assert.LessOrEqual(t, r.Confidence, 1.0)
	}

	for i := 0; i < 200; i++ {
		pts := make([]detector.Point3D, detector.NumLandmarks)
		for j := range pts {
			pick := func() float64 {
				if rng.Intn(4) == 0 {
					return extremes[rng.Intn(len(extremes))]
				}
				return rng.Float64()*4 - 2
			}
			pts[j] = detector.Point3D{X: pick(), Y: pick(), Z: pick()}
		}
		check(pts)
	}
}

func TestConfidence_CenteringBonus(t *testing.T) {
	centered := detector.IndexUpLandmarks()
	offCenter := detector.IndexUpLandmarks()
	offCenter.Points[detector.Wrist].X = 0.9

	diff := Confidence(points(centered), 'D') - Confidence(points(offCenter), 'D')
	assert.InDelta(t, CenteringBonus, diff, confDelta)

	edge := detector.IndexUpLandmarks()
	edge.Points[detector.Wrist].X = 0.8
	assert.InDelta(t, Confidence(points(offCenter), 'D'), Confidence(points(edge), 'D'), confDelta)
}

func TestConfidence_OpenHandPenalty(t *testing.T) {
	// Scored as B even though B's rule fails.
	got := Confidence(points(detector.FistLandmarks()), 'B')
	want := BaseConfidence - OpenHandPenalty - AmbiguityPenalty + CenteringBonus
	assert.InDelta(t, want, got, confDelta)
}

func TestConfidence_UnknownLetter(t *testing.T) {
	assert.Zero(t, Confidence(points(detector.IndexUpLandmarks()), None))
	assert.Zero(t, Confidence(points(detector.IndexUpLandmarks()), '?'))
}

func TestResult_Accepted(t *testing.T) {
	assert.True(t, Result{Letter: 'A', Confidence: 0.8}.Accepted(0.6))
	assert.False(t, Result{Letter: 'A', Confidence: 0.6}.Accepted(0.6))
	assert.False(t, Result{}.Accepted(0))
}
