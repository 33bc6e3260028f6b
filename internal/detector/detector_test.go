package detector

import (
	"errors"
	"testing"
)

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hand", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{IndexUpLandmarks()})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 1 {
			t.Errorf("expected 1 hand, got %d", len(hands))
		}
		if mock.Calls() != 1 {
			t.Errorf("expected 1 call, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestBuildHand(t *testing.T) {
	t.Run("extended finger tip is above its knuckle", func(t *testing.T) {
		hand := BuildHand(ThumbTucked, [4]bool{true, false, true, false})

		if hand.Points[IndexTip].Y >= hand.Points[IndexMCP].Y {
			t.Error("index tip should be above index MCP (lower Y value)")
		}
		if hand.Points[RingTip].Y >= hand.Points[RingMCP].Y {
			t.Error("ring tip should be above ring MCP (lower Y value)")
		}
	})

	t.Run("curled finger tip folds back below its middle joint", func(t *testing.T) {
		hand := BuildHand(ThumbTucked, [4]bool{})

		if hand.Points[MiddleTip].Y <= hand.Points[MiddlePIP].Y {
			t.Error("curled middle tip should sit below the PIP joint")
		}
	})

	t.Run("thumb placements", func(t *testing.T) {
		tucked := BuildHand(ThumbTucked, [4]bool{})
		if tucked.Points[ThumbTip].Y <= tucked.Points[ThumbIP].Y {
			t.Error("tucked thumb tip should be below its IP joint")
		}

		up := BuildHand(ThumbUp, [4]bool{})
		if up.Points[ThumbTip].Y >= up.Points[ThumbIP].Y {
			t.Error("raised thumb tip should be above its IP joint")
		}

		out := BuildHand(ThumbOut, [4]bool{})
		if out.Points[ThumbTip].X <= out.Points[ThumbIP].X {
			t.Error("thumb held out should extend away from the palm")
		}
	})

	t.Run("fingers are ordered left to right", func(t *testing.T) {
		hand := OpenPalmLandmarks()
		if hand.Points[PinkyMCP].X >= hand.Points[RingMCP].X {
			t.Error("pinky should be to the left of ring finger")
		}
		if hand.Points[RingMCP].X >= hand.Points[MiddleMCP].X {
			t.Error("ring should be to the left of middle finger")
		}
		if hand.Points[MiddleMCP].X >= hand.Points[IndexMCP].X {
			t.Error("middle should be to the left of index finger")
		}
	})

	t.Run("presets are right hands with a score", func(t *testing.T) {
		for _, hand := range []HandLandmarks{
			ThumbsUpLandmarks(), OpenPalmLandmarks(), IndexUpLandmarks(),
			FistLandmarks(), ThreeFingersLandmarks(), ThumbPinkyLandmarks(),
		} {
			if hand.Handedness != "Right" {
				t.Errorf("expected handedness Right, got %s", hand.Handedness)
			}
			if hand.Score < 0.9 {
				t.Errorf("expected score >= 0.9, got %f", hand.Score)
			}
		}
	})
}

func TestHandLandmarks_Slice(t *testing.T) {
	hand := IndexUpLandmarks()
	points := hand.Slice()

	if len(points) != NumLandmarks {
		t.Fatalf("expected %d points, got %d", NumLandmarks, len(points))
	}

	points[Wrist].X = 99
	if hand.Points[Wrist].X == 99 {
		t.Error("Slice should return a copy")
	}

	var nilHand *HandLandmarks
	if nilHand.Slice() != nil {
		t.Error("expected nil slice for nil hand")
	}
}

func TestParseHand(t *testing.T) {
	t.Run("complete hand", func(t *testing.T) {
		data := []byte(`{"handedness":"Left","score":0.8,"points":[` + repeatPoint(NumLandmarks) + `]}`)

		hand, err := ParseHand(data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hand.Handedness != "Left" {
			t.Errorf("expected handedness Left, got %s", hand.Handedness)
		}
		if hand.Points[PinkyTip].Y != 0.2 {
			t.Errorf("expected pinky tip y 0.2, got %f", hand.Points[PinkyTip].Y)
		}
	})

	t.Run("wrong landmark count", func(t *testing.T) {
		data := []byte(`{"points":[` + repeatPoint(20) + `]}`)

		if _, err := ParseHand(data); err == nil {
			t.Error("expected error for 20 landmarks")
		}
	})

	t.Run("missing coordinate", func(t *testing.T) {
		points := repeatPoint(NumLandmarks-1) + `,{"x":0.1,"y":0.2}`
		data := []byte(`{"points":[` + points + `]}`)

		_, err := ParseHand(data)
		if !errors.Is(err, ErrMissingCoordinate) {
			t.Errorf("expected ErrMissingCoordinate, got %v", err)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := ParseHand([]byte(`{"points":`)); err == nil {
			t.Error("expected error for truncated JSON")
		}
	})
}

func TestToPoints_ZeroIsNotMissing(t *testing.T) {
	zero := 0.0
	points, err := ToPoints([]WirePoint{{X: &zero, Y: &zero, Z: &zero}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 1 || points[0] != (Point3D{}) {
		t.Errorf("expected one zero point, got %v", points)
	}
}

func repeatPoint(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			s += ","
		}
		s += `{"x":0.1,"y":0.2,"z":0.3}`
	}
	return s
}
