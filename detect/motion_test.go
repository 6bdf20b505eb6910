package detect

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

// TestMotionDetector learns a static black background and then checks that
// a bright square slid into the frame is reported as a motion box
func TestMotionDetector(t *testing.T) {

	m := NewMotionDetector(DefaultMotionConfig())
	defer m.Close()

	background := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer background.Close()

	// settle the background model on an empty scene
	for i := 0; i < 10; i++ {
		m.Detect(background)
	}

	moving := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer moving.Close()

	square := image.Rect(60, 40, 160, 140)
	white := color.RGBA{R: 255, G: 255, B: 255, A: 0}

	gocv.Rectangle(&moving, square, white, -1)

	results := m.Detect(moving)

	if len(results) == 0 {
		t.Fatal("expected at least one motion box")
	}

	found := false

	for _, res := range results {
		box := image.Rect(res.Box.Left, res.Box.Top, res.Box.Right, res.Box.Bottom)

		if box.Overlaps(square) {
			found = true
		}
	}

	if !found {
		t.Errorf("no motion box overlaps the moving square, got %+v", results)
	}
}

// TestMotionDetectorMinArea verifies that blobs below the area floor are
// dropped
func TestMotionDetectorMinArea(t *testing.T) {

	cfg := DefaultMotionConfig()
	cfg.MinArea = 50000
	cfg.DilateIterations = 0

	m := NewMotionDetector(cfg)
	defer m.Close()

	background := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer background.Close()

	for i := 0; i < 10; i++ {
		m.Detect(background)
	}

	moving := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer moving.Close()

	// a 100x100 square is only 10000 pixels, below the 50000 floor
	gocv.Rectangle(&moving, image.Rect(60, 40, 160, 140),
		color.RGBA{R: 255, G: 255, B: 255, A: 0}, -1)

	if results := m.Detect(moving); len(results) != 0 {
		t.Errorf("expected no boxes under the area floor, got %+v", results)
	}
}
